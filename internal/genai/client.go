// Package genai implements the client for the generative image API.
package genai

import (
	"fmt"
	"strings"
	"sync"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/mfigueira/bananachat/internal/errors"
	"github.com/mfigueira/bananachat/internal/models"
)

// DefaultBaseURL is the production endpoint of the generative API.
const DefaultBaseURL = "https://generativelanguage.googleapis.com"

// Client talks to the generateContent endpoint. It is safe for concurrent
// use; a turn's batch issues several calls against one client at once.
type Client struct {
	httpClient tls_client.HttpClient
	apiKey     string
	baseURL    string
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithBaseURL overrides the API endpoint, e.g. to route through a proxy.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// NewClient creates a new Client. The API key is required; the ambient
// default must be resolved by the caller, never inside this package.
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, apierrors.ErrMissingAPIKey
	}

	options := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(300),
		tls_client.WithClientProfile(profiles.Chrome_120),
	}

	httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	client := &Client{
		httpClient: httpClient,
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close shuts down the client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *Client) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// BaseURL returns the endpoint the client targets.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL
}

// Generator is the narrow contract the chat core consumes. The orchestrator
// depends on this interface only, so turns are testable without a network.
type Generator interface {
	GenerateContent(prompt string, attachments []models.Attachment, opts *GenerateOptions) ([]models.MessagePart, error)
}

// Ensure Client implements Generator
var _ Generator = (*Client)(nil)
