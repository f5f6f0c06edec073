// internal/auth/session.go
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage
	KeyringService = "rostercrawl"
	// FallbackDir holds session files when no keyring is available
	FallbackDir = ".rostercrawl/sessions"

	manifestKey = "_manifest"
	probeKey    = "_test_keyring_access_"
)

// ErrSessionExpired is returned when loading a session past its expiry
var ErrSessionExpired = errors.New("session expired")

// SessionData is a named set of cookies injected into the browser before
// the listing is opened.
type SessionData struct {
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Cookies   []Cookie  `json:"cookies"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
}

// Cookie represents a browser cookie
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite,omitempty"`
}

// NewSessionData builds a session expiring with its earliest cookie
func NewSessionData(name, url string, cookies []Cookie) *SessionData {
	s := &SessionData{
		Name:      name,
		URL:       url,
		Cookies:   cookies,
		CreatedAt: time.Now(),
	}
	for _, c := range cookies {
		if c.Expires <= 0 {
			continue
		}
		expiry := time.Unix(int64(c.Expires), 0)
		if s.ExpiresAt.IsZero() || expiry.Before(s.ExpiresAt) {
			s.ExpiresAt = expiry
		}
	}
	return s
}

// Store persists sessions in the OS keyring, or as files under dir when
// the keyring is unavailable (CI, containers).
type Store struct {
	dir     string
	useFile bool
}

// NewStore probes the keyring once and picks the backend
func NewStore() (*Store, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(home, FallbackDir)

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		return NewFileStore(dir), nil
	}
	if err := keyring.Set(KeyringService, probeKey, "test"); err != nil {
		log.Debug().Err(err).Msg("Keyring unavailable, using file-based session storage")
		return NewFileStore(dir), nil
	}
	keyring.Delete(KeyringService, probeKey)
	return &Store{dir: dir}, nil
}

// NewFileStore stores sessions as JSON files in dir
func NewFileStore(dir string) *Store {
	return &Store{dir: dir, useFile: true}
}

// Backend names the storage in use
func (s *Store) Backend() string {
	if s.useFile {
		return "file:" + s.dir
	}
	return "keyring"
}

func (s *Store) path(name string) (string, error) {
	if err := os.MkdirAll(s.dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(s.dir, name+".json"), nil
}

// Save stores a session, replacing one with the same name
func (s *Store) Save(session *SessionData) error {
	if session.Name == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if s.useFile {
		path, err := s.path(session.Name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.WriteFile(path, data, 0600); err != nil {
			return fmt.Errorf("failed to save session file: %w", err)
		}
		return nil
	}

	if err := keyring.Set(KeyringService, session.Name, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return s.updateManifest(session.Name, true)
}

// Load returns a stored session. Expired sessions yield ErrSessionExpired.
func (s *Store) Load(name string) (*SessionData, error) {
	if name == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}

	var data string
	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return nil, fmt.Errorf("failed to get session path: %w", err)
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		data = string(raw)
	} else {
		var err error
		if data, err = keyring.Get(KeyringService, name); err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
	}

	var session SessionData
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}
	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return &session, fmt.Errorf("%s: %w", name, ErrSessionExpired)
	}
	return &session, nil
}

// Delete removes a session. Deleting a missing file session is not an error.
func (s *Store) Delete(name string) error {
	if name == "" {
		return fmt.Errorf("session name cannot be empty")
	}

	if s.useFile {
		path, err := s.path(name)
		if err != nil {
			return fmt.Errorf("failed to get session path: %w", err)
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, name); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return s.updateManifest(name, false)
}

// List returns stored session names in sorted order
func (s *Store) List() ([]string, error) {
	if s.useFile {
		entries, err := os.ReadDir(s.dir)
		if err != nil {
			if os.IsNotExist(err) {
				return []string{}, nil
			}
			return nil, err
		}
		names := []string{}
		for _, e := range entries {
			if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
				names = append(names, strings.TrimSuffix(e.Name(), ".json"))
			}
		}
		slices.Sort(names)
		return names, nil
	}

	// The keyring cannot enumerate entries, so names are tracked separately.
	manifest, err := keyring.Get(KeyringService, manifestKey)
	if err != nil {
		return []string{}, nil
	}
	var names []string
	if err := json.Unmarshal([]byte(manifest), &names); err != nil {
		return nil, fmt.Errorf("failed to deserialize manifest: %w", err)
	}
	slices.Sort(names)
	return names, nil
}

func (s *Store) updateManifest(name string, add bool) error {
	names, err := s.List()
	if err != nil {
		return err
	}
	names = slices.DeleteFunc(names, func(n string) bool { return n == name })
	if add {
		names = append(names, name)
	}
	data, err := json.Marshal(names)
	if err != nil {
		return err
	}
	return keyring.Set(KeyringService, manifestKey, string(data))
}
