// Package commands provides the CLI commands for bananachat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	assistantFlag string
	aspectFlag    string
	countFlag     int
	imageFlags    []string
	saveDirFlag   string
	baseURLFlag   string
	verboseFlag   bool

	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "bananachat [prompt]",
	Short: "Terminal client for Nano Banana image generation",
	Long: `bananachat is a terminal client for the Nano Banana image assistants.
Each prompt fans out into several parallel image generations and the
results are merged into a single reply.

Examples:
  bananachat chat                          Start the interactive chat
  bananachat "a banana on the moon"        Generate images for one prompt
  bananachat -i photo.png "make it night"  Edit an attached image
  bananachat -n 2 --aspect 16:9 "a cat"    Two wide generations
  cat prompt.txt | bananachat              Read the prompt from stdin
  bananachat sessions list                 List stored sessions`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("bananachat %s (built %s)\n", Version, BuildTime)
			return nil
		}

		// Check for stdin input
		stat, _ := os.Stdin.Stat()
		hasStdin := (stat.Mode() & os.ModeCharDevice) == 0

		if hasStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("failed to read stdin: %w", err)
			}
			return runGenerate(string(data))
		}

		if len(args) > 0 {
			return runGenerate(args[0])
		}

		// No input - show help
		return cmd.Help()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&assistantFlag, "assistant", "a", "", "Assistant to use (nano-banana, nano-banana-pro)")
	rootCmd.PersistentFlags().StringVar(&aspectFlag, "aspect", "", "Aspect ratio (Default, 1:1, 16:9, 9:16, 4:3, 3:4)")
	rootCmd.PersistentFlags().IntVarP(&countFlag, "count", "n", 0, "Parallel generations per turn (1, 2 or 4)")
	rootCmd.PersistentFlags().StringVar(&baseURLFlag, "base-url", "", "Override the API endpoint")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "verbose", false, "Enable detailed logging")
	rootCmd.Flags().StringArrayVarP(&imageFlags, "image", "i", nil, "Path to an image to attach (repeatable)")
	rootCmd.Flags().StringVarP(&saveDirFlag, "save-dir", "d", "", "Directory for generated images")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(configCmd)
}
