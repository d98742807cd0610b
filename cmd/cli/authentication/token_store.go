package authentication

// Token storage for the CLI, split across two tiers: the OS keychain for
// credentials that should survive the login session, and a temp file for
// session-scoped ones. Reads prefer the durable tier.

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName = "bookhub-cli"
	tokenKey    = "access_token"

	sessionFileName = "bookhub-session-token"
)

type Store struct {
	service     string
	sessionPath string
}

func NewStore() *Store {
	return &Store{
		service:     serviceName,
		sessionPath: filepath.Join(os.TempDir(), sessionFileName),
	}
}

// Read resolves the stored credential, durable tier first. Absence is a
// normal outcome, not a failure.
func (s *Store) Read() (string, bool) {
	if value, err := keyring.Get(s.service, tokenKey); err == nil && value != "" {
		return value, true
	}
	data, err := os.ReadFile(s.sessionPath)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	return token, token != ""
}

// Write persists the credential to the chosen tier.
func (s *Store) Write(token string, durable bool) error {
	if durable {
		return keyring.Set(s.service, tokenKey, token)
	}
	return os.WriteFile(s.sessionPath, []byte(token), 0o600)
}

// Clear removes the credential from both tiers unconditionally. Calling it
// on an already-empty store is a no-op.
func (s *Store) Clear() error {
	if err := keyring.Delete(s.service, tokenKey); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	if err := os.Remove(s.sessionPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
