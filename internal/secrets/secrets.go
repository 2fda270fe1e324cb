package secrets

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"contactpilot-engine/internal/config"
)

const (
	// KeyringService groups the engine's secrets in the OS keychain.
	KeyringService = "contactpilot"

	backendTokenAccount = "contactpilot:backend:token"
)

func GetIMAPPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) != "" {
		pw, err := keyring.Get(KeyringService, keyringAccount)
		if err == nil && strings.TrimSpace(pw) != "" {
			return pw, nil
		}
	}
	return "", errors.New("IMAP password not found (set it via the secrets endpoint)")
}

func SetIMAPPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteIMAPPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func IMAPKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf(
		"contactpilot:imap:%s@%s",
		cfg.Ingest.Username,
		cfg.Ingest.IMAPHost,
	)
}

// GetBackendToken returns the API token the sync client presents to the
// backend. Never read from config or env; keychain only.
func GetBackendToken() (string, error) {
	tok, err := keyring.Get(KeyringService, backendTokenAccount)
	if err != nil || strings.TrimSpace(tok) == "" {
		return "", errors.New("backend token not found (set it via the secrets endpoint)")
	}
	return tok, nil
}

func SetBackendToken(token string) error {
	if strings.TrimSpace(token) == "" {
		return errors.New("token is empty")
	}
	return keyring.Set(KeyringService, backendTokenAccount, token)
}
