package commands

import (
	"github.com/spf13/cobra"

	"github.com/mfigueira/bananachat/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start the interactive chat",
	Long: `Start the interactive chat interface.

Every prompt runs a batch of parallel image generations and the reply
shows the saved image paths. Press Ctrl+C or type /quit to exit.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChat()
	},
}

func runChat() error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	// No speech recorder ships with the CLI yet.
	return tui.Run(app.Controller, app.Feed, app.Config, nil)
}
