package commands

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/mfigueira/bananachat/internal/chat"
	"github.com/mfigueira/bananachat/internal/config"
	"github.com/mfigueira/bananachat/internal/genai"
	"github.com/mfigueira/bananachat/internal/logfeed"
	"github.com/mfigueira/bananachat/internal/store"
)

// App bundles the wired application: configuration, the activity feed and the
// chat controller over a live API client. Commands build one per invocation.
type App struct {
	Config     config.Config
	Feed       *logfeed.Feed
	Controller *chat.Controller
	Client     *genai.Client
}

// Close releases the app's API client.
func (a *App) Close() {
	if a.Client != nil {
		a.Client.Close()
	}
}

// newApp loads configuration and wires the session store, cache, client and
// controller together. The API key comes from the environment only.
func newApp() (*App, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	applyFlags(&cfg)

	env, err := config.LoadEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if env.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is not set")
	}

	logLevel := slog.LevelWarn
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	feed := logfeed.New(logger)

	sessStore, err := store.NewStore(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	cache, err := store.NewLocalCache(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open local cache: %w", err)
	}

	// Endpoint precedence: flag, environment, cached override, default.
	baseURL := baseURLFlag
	if baseURL == "" {
		baseURL = env.BaseURL
	}
	if baseURL == "" {
		baseURL = cache.Get(chat.KeyBaseURL)
	}

	var clientOpts []genai.ClientOption
	if baseURL != "" {
		clientOpts = append(clientOpts, genai.WithBaseURL(baseURL))
	}
	client, err := genai.NewClient(env.APIKey, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	mgr := chat.NewManager(sessStore, cache, feed)
	if err := mgr.Load(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}

	orch := chat.NewOrchestrator(client, mgr, feed)

	return &App{
		Config:     cfg,
		Feed:       feed,
		Controller: chat.NewController(mgr, orch, feed),
		Client:     client,
	}, nil
}

// applyFlags overlays command-line flags on the loaded configuration.
func applyFlags(cfg *config.Config) {
	if assistantFlag != "" {
		cfg.DefaultAssistant = assistantFlag
	}
	if aspectFlag != "" {
		cfg.AspectRatio = aspectFlag
	}
	if countFlag > 0 {
		cfg.GenerationCount = countFlag
	}
	if saveDirFlag != "" {
		cfg.DownloadDir = saveDirFlag
	}
	if verboseFlag {
		cfg.Verbose = true
	}
}

// turnOptions derives the per-turn options from the effective configuration.
func turnOptions(cfg config.Config) chat.Options {
	return chat.Options{
		AspectRatio:     cfg.AspectRatio,
		GenerationCount: cfg.GenerationCount,
	}
}
