// internal/cli/sessions.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/law-makers/rostercrawl/internal/auth"
	"github.com/law-makers/rostercrawl/internal/ui"
	"github.com/spf13/cobra"
)

// sessionsCmd represents the sessions command
var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Manage saved cookie sessions",
	Long: `List, view, import and delete saved cookie sessions.

Sessions are stored in your OS keyring (or ~/.rostercrawl/sessions when no
keyring is available). Pass --session=<name> to scrape or snapshot to
inject a session's cookies before the roster is opened.`,
	Example: `  # List all saved sessions
  rostercrawl sessions list

  # View details of a specific session
  rostercrawl sessions view skaters

  # Delete a session without confirmation
  rostercrawl sessions delete skaters --yes`,
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved sessions",
	Args:  cobra.NoArgs,
	RunE:  runSessionsList,
}

var sessionsViewCmd = &cobra.Command{
	Use:   "view <session-name>",
	Short: "View details of a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsView,
}

var sessionsDeleteCmd = &cobra.Command{
	Use:   "delete <session-name>",
	Short: "Delete a saved session",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionsDelete,
}

var deleteYes bool

func init() {
	rootCmd.AddCommand(sessionsCmd)
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsViewCmd)
	sessionsCmd.AddCommand(sessionsDeleteCmd)

	sessionsDeleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "Delete without asking")
}

func sessionStore(cmd *cobra.Command) (*auth.Store, error) {
	a := GetApp(cmd)
	if a == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return a.Sessions()
}

func runSessionsList(cmd *cobra.Command, args []string) error {
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}
	names, err := store.List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(names) == 0 {
		fmt.Fprintln(out, "\nNo saved sessions found.")
		fmt.Fprintln(out, "\nCreate a session with:")
		fmt.Fprintln(out, "  rostercrawl sessions login <name>")
		fmt.Fprintln(out, "  rostercrawl sessions import <name> --format=json < cookies.json")
		fmt.Fprintln(out)
		return nil
	}

	fmt.Fprintf(out, "\n%s (%d, %s)\n\n", ui.Bold("Saved Sessions"), len(names), store.Backend())
	for i, name := range names {
		fmt.Fprintf(out, "%d. %s\n", i+1, name)

		session, err := store.Load(name)
		if session == nil {
			fmt.Fprintf(out, "   %s %v\n", ui.Error("Error loading:"), err)
			continue
		}
		fmt.Fprintf(out, "   URL: %s\n", session.URL)
		fmt.Fprintf(out, "   Cookies: %d\n", len(session.Cookies))
		fmt.Fprintf(out, "   Created: %s\n", session.CreatedAt.Format(time.RFC1123))
		if !session.ExpiresAt.IsZero() {
			if err != nil {
				fmt.Fprintf(out, "   Status: %s (%s ago)\n", ui.Error("expired"), time.Since(session.ExpiresAt).Round(time.Hour))
			} else {
				fmt.Fprintf(out, "   Expires: %s (in %s)\n", session.ExpiresAt.Format(time.RFC1123), time.Until(session.ExpiresAt).Round(time.Hour))
			}
		}
		if i < len(names)-1 {
			fmt.Fprintln(out)
		}
	}
	fmt.Fprintln(out)
	return nil
}

func runSessionsView(cmd *cobra.Command, args []string) error {
	name := args[0]
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	session, err := store.Load(name)
	if session == nil {
		return fmt.Errorf("failed to load session '%s': %w", name, err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s %s\n\n", ui.Bold("Session Details:"), name)
	fmt.Fprintf(out, "Name:     %s\n", session.Name)
	fmt.Fprintf(out, "URL:      %s\n", session.URL)
	fmt.Fprintf(out, "Created:  %s\n", session.CreatedAt.Format(time.RFC1123))
	if !session.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "Expires:  %s\n", session.ExpiresAt.Format(time.RFC1123))
		if err != nil {
			fmt.Fprintf(out, "Status:   %s\n", ui.Error("expired"))
		} else {
			fmt.Fprintf(out, "Status:   %s (expires in %s)\n", ui.Success("valid"), time.Until(session.ExpiresAt).Round(time.Hour))
		}
	}

	fmt.Fprintf(out, "\nCookies (%d):\n", len(session.Cookies))
	for i, cookie := range session.Cookies {
		if i >= 5 {
			fmt.Fprintf(out, "  ... and %d more\n", len(session.Cookies)-5)
			break
		}
		fmt.Fprintf(out, "  • %s (domain: %s)\n", cookie.Name, cookie.Domain)
	}
	fmt.Fprintln(out)
	return nil
}

func runSessionsDelete(cmd *cobra.Command, args []string) error {
	name := args[0]
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	if !deleteYes {
		fmt.Fprintf(cmd.OutOrStdout(), "\nDelete session '%s'? [y/N]: ", name)
		answer, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if a := strings.TrimSpace(answer); a != "y" && a != "Y" {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := store.Delete(name); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%s Session '%s' deleted.\n\n", ui.Success("✓"), name)
	return nil
}

// openInput returns path's contents, or stdin when path is empty or "-"
func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}
