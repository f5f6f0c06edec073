// internal/cli/login.go
package cli

import (
	"bufio"
	"fmt"

	"github.com/law-makers/rostercrawl/internal/auth"
	"github.com/law-makers/rostercrawl/internal/browser"
	"github.com/law-makers/rostercrawl/internal/engine"
	"github.com/spf13/cobra"
)

var (
	loginURL          string
	loginWaitSelector string
)

// sessionsLoginCmd represents the sessions login command
var sessionsLoginCmd = &cobra.Command{
	Use:   "login <session-name>",
	Short: "Log in through a visible browser and save its cookies",
	Long: `Opens a visible Chrome window on the site. Log in by hand, then press
Enter (or let --wait-selector detect the logged-in page). Every cookie the
browser holds is saved under the given session name.

Requires a display. In headless environments use "sessions import".`,
	Example: `  # Press Enter when done
  rostercrawl sessions login skaters

  # Finish automatically once the account menu appears
  rostercrawl sessions login skaters --wait-selector "#wp-admin-bar-my-account"`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsLogin,
}

func init() {
	sessionsCmd.AddCommand(sessionsLoginCmd)

	sessionsLoginCmd.Flags().StringVar(&loginURL, "url", "https://allskaters.info/", "Page to open for login")
	sessionsLoginCmd.Flags().StringVar(&loginWaitSelector, "wait-selector", "", "CSS selector that appears once logged in")
}

func runSessionsLogin(cmd *cobra.Command, args []string) error {
	name := args[0]
	a := GetApp(cmd)
	if a == nil {
		return fmt.Errorf("application not initialized")
	}
	store, err := a.Sessions()
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	opts, err := a.BrowserOptions()
	if err != nil {
		return err
	}
	opts.Headless = false
	// A login can take a while; only ctx bounds it.
	opts.ActionTimeout = 0

	s, err := browser.NewSession(ctx, opts)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.Navigate(ctx, loginURL); err != nil {
		return fmt.Errorf("failed to open %s: %w", loginURL, err)
	}

	out := cmd.OutOrStdout()
	if loginWaitSelector != "" {
		fmt.Fprintf(out, "Waiting for %s ...\n", loginWaitSelector)
		if err := s.WaitReady(ctx, engine.CSS(loginWaitSelector)); err != nil {
			return fmt.Errorf("login not detected: %w", err)
		}
	} else {
		fmt.Fprintln(out, "Complete the login in the browser, then press Enter...")
		bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	}

	cookies, err := s.Cookies(ctx)
	if err != nil {
		return err
	}
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies found - login may have failed")
	}

	session := auth.NewSessionData(name, loginURL, cookies)
	if err := store.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	printSessionSaved(out, session)
	return nil
}
