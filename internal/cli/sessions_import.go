// internal/cli/sessions_import.go
package cli

import (
	"bufio"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/law-makers/rostercrawl/internal/auth"
	"github.com/law-makers/rostercrawl/internal/ui"
	"github.com/spf13/cobra"
)

var (
	importURL    string
	importFormat string
	importFile   string
)

// sessionsImportCmd represents the sessions import command
var sessionsImportCmd = &cobra.Command{
	Use:   "import <session-name>",
	Short: "Import cookies from your browser to create a session",
	Long: `Import cookies exported from your regular browser to create a session.

This is useful in headless environments (CI, dev containers) where
"sessions login" cannot show a browser window.`,
	Example: `  # Import from a JSON export (DevTools or a cookie editor extension)
  rostercrawl sessions import skaters --format=json < cookies.json

  # Import a Netscape/curl cookies.txt file
  rostercrawl sessions import skaters --format=netscape --file cookies.txt

  # Type cookies in by hand
  rostercrawl sessions import skaters`,
	Args: cobra.ExactArgs(1),
	RunE: runSessionsImport,
}

func init() {
	sessionsCmd.AddCommand(sessionsImportCmd)

	sessionsImportCmd.Flags().StringVar(&importURL, "url", "https://allskaters.info/", "Website URL for this session")
	sessionsImportCmd.Flags().StringVar(&importFormat, "format", "interactive", "Import format: interactive, json, netscape")
	sessionsImportCmd.Flags().StringVar(&importFile, "file", "", "Read cookies from this file instead of stdin")
}

func runSessionsImport(cmd *cobra.Command, args []string) error {
	name := args[0]
	store, err := sessionStore(cmd)
	if err != nil {
		return err
	}

	in, closeIn, err := openInput(cmd, importFile)
	if err != nil {
		return err
	}
	defer closeIn()

	var cookies []auth.Cookie
	switch importFormat {
	case "interactive":
		cookies, err = importInteractive(cmd.OutOrStdout(), in, cookieDomain(importURL))
	case "json":
		cookies, err = auth.ParseJSONCookies(in)
	case "netscape":
		cookies, err = auth.ParseNetscapeCookies(in)
	default:
		return fmt.Errorf("unsupported format: %s (use: interactive, json, netscape)", importFormat)
	}
	if err != nil {
		return fmt.Errorf("failed to import cookies: %w", err)
	}
	if len(cookies) == 0 {
		return fmt.Errorf("no cookies imported")
	}

	session := auth.NewSessionData(name, importURL, cookies)
	if err := store.Save(session); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	printSessionSaved(cmd.OutOrStdout(), session)
	return nil
}

func printSessionSaved(out io.Writer, session *auth.SessionData) {
	fmt.Fprintf(out, "\n%s Session '%s' saved\n", ui.Success("✓"), session.Name)
	fmt.Fprintf(out, "   Cookies: %d\n", len(session.Cookies))
	if !session.ExpiresAt.IsZero() {
		fmt.Fprintf(out, "   Expires: %s\n", session.ExpiresAt.Format(time.RFC1123))
	}
	fmt.Fprintf(out, "\nUse with:\n  rostercrawl scrape --session=%s\n\n", session.Name)
}

// cookieDomain derives the default cookie domain from a site URL
func cookieDomain(site string) string {
	u, err := url.Parse(site)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return "." + strings.TrimPrefix(u.Hostname(), "www.")
}

func importInteractive(out io.Writer, in io.Reader, domain string) ([]auth.Cookie, error) {
	fmt.Fprintln(out, "Cookie Import Guide:")
	fmt.Fprintln(out, "1. Open the website in your browser and login")
	fmt.Fprintln(out, "2. Press F12 to open DevTools")
	fmt.Fprintln(out, "3. Go to: Application → Storage → Cookies")
	fmt.Fprintln(out, "4. For each cookie, copy the Name and Value")

	var cookies []auth.Cookie
	scanner := bufio.NewScanner(in)
	prompt := func(label string) (string, bool) {
		fmt.Fprint(out, label)
		if !scanner.Scan() {
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	for {
		name, ok := prompt("\nCookie Name (or press Enter to finish): ")
		if !ok || name == "" {
			break
		}
		value, ok := prompt("Cookie Value: ")
		if !ok {
			break
		}
		if value == "" {
			fmt.Fprintln(out, "Skipping cookie with empty value")
			continue
		}
		d, ok := prompt(fmt.Sprintf("Domain [%s]: ", domain))
		if !ok {
			break
		}
		if d == "" {
			d = domain
		}

		cookies = append(cookies, auth.Cookie{
			Name:     name,
			Value:    value,
			Domain:   d,
			Path:     "/",
			Secure:   true,
			HTTPOnly: true,
		})
		fmt.Fprintf(out, "%s Added: %s (domain: %s)\n", ui.Success("✓"), name, d)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return cookies, nil
}
