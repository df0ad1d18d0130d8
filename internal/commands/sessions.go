package commands

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/mfigueira/bananachat/internal/config"
	"github.com/mfigueira/bananachat/internal/models"
	"github.com/mfigueira/bananachat/internal/store"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage stored chat sessions",
	Long:  `List, inspect and manage the locally stored chat sessions.`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all sessions",
	RunE:  runSessionsList,
}

var sessionsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsShow,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var sessionsRenameCmd = &cobra.Command{
	Use:   "rename <id> <title>",
	Short: "Rename a session",
	Args:  cobra.ExactArgs(2),
	RunE:  runSessionsRename,
}

func init() {
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsShowCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)
	sessionsCmd.AddCommand(sessionsRenameCmd)
}

// openStore opens the session store without wiring the API client, so the
// sessions commands work with no API key set.
func openStore() (*store.Store, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	return store.NewStore(cfg.DataDir)
}

func findSession(sessions []*models.Session, id string) *models.Session {
	for _, s := range sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	sessions, err := st.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTITLE\tASSISTANT\tMESSAGES\tCREATED")
	_, _ = fmt.Fprintln(w, "--\t-----\t---------\t--------\t-------")

	for _, sess := range sessions {
		created := time.UnixMilli(sess.CreatedAt).Format("2006-01-02 15:04")
		title := sess.Title
		if len(title) > 40 {
			title = title[:40] + "..."
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			sess.ID, title, sess.AssistantID, len(sess.Messages), created)
	}

	return w.Flush()
}

func runSessionsShow(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	sessions, err := st.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	sess := findSession(sessions, args[0])
	if sess == nil {
		return fmt.Errorf("session not found: %s", args[0])
	}

	assistant := models.AssistantByID(sess.AssistantID)
	fmt.Printf("ID: %s\n", sess.ID)
	fmt.Printf("Title: %s\n", sess.Title)
	fmt.Printf("Assistant: %s %s\n", assistant.Icon, assistant.Name)
	fmt.Printf("Created: %s\n", time.UnixMilli(sess.CreatedAt).Format("2006-01-02 15:04:05"))
	fmt.Printf("Messages: %d\n", len(sess.Messages))
	fmt.Println()

	for i, msg := range sess.Messages {
		role := "You"
		if msg.Role == models.RoleModel {
			role = assistant.Name
		}
		ts := time.UnixMilli(msg.Timestamp).Format("15:04")
		fmt.Printf("[%d] %s (%s):\n", i+1, role, ts)

		if text := msg.FirstText(); text != "" {
			if len(text) > 500 {
				text = text[:500] + "..."
			}
			fmt.Printf("  %s\n", text)
		}
		if n := msg.ImageCount(); n > 0 {
			fmt.Printf("  🖼  %d image(s)\n", n)
		}
		fmt.Println()
	}

	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	if err := st.Delete(args[0]); err != nil {
		return fmt.Errorf("failed to delete: %w", err)
	}

	fmt.Printf("Deleted session: %s\n", args[0])
	return nil
}

func runSessionsRename(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open session store: %w", err)
	}

	sessions, err := st.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}
	sess := findSession(sessions, args[0])
	if sess == nil {
		return fmt.Errorf("session not found: %s", args[0])
	}

	sess.Title = args[1]
	if err := st.Upsert(sess); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}

	fmt.Printf("Renamed session %s to %q\n", args[0], args[1])
	return nil
}
