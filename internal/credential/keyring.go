package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const (
	serviceName = "voterroll"

	// sessionKey is the keyring entry holding the API bearer token.
	sessionKey = "session-token"

	// EnvToken overrides the stored token when set.
	EnvToken = "VOTERROLL_TOKEN"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  filepath.Join(home, ".config", "voterroll", "credentials"),
		FilePasswordFunc:         keyring.FixedStringPrompt("voterroll-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// SessionToken returns the bearer token for API requests. The environment
// override wins; a missing keyring entry yields "" without error.
func SessionToken() (string, error) {
	if token := os.Getenv(EnvToken); token != "" {
		return token, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(sessionKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("getting session token: %w", err)
	}

	return string(item.Data), nil
}

// SetSessionToken stores the bearer token in the system keyring.
func SetSessionToken(token string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   sessionKey,
		Data:  []byte(token),
		Label: "voterroll session token",
	})
	if err != nil {
		return fmt.Errorf("setting session token: %w", err)
	}

	return nil
}

// ClearSessionToken removes the stored bearer token. Clearing an absent
// token is not an error.
func ClearSessionToken() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(sessionKey)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting session token: %w", err)
	}

	return nil
}
