package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringService groups the app's secrets in the OS keychain.
const KeyringService = "jobfinder"

const (
	AccountGeminiAPIKey = "gemini_api_key"
	AccountSMTPPassword = "smtp_password"
	AccountIMAPPassword = "imap_password"
)

// Env fallbacks for headless hosts without a keychain (cron boxes).
var envFallback = map[string]string{
	AccountGeminiAPIKey: "GEMINI_API_KEY",
	AccountSMTPPassword: "JOBFINDER_SMTP_PASSWORD",
	AccountIMAPPassword: "JOBFINDER_IMAP_PASSWORD",
}

// Get looks up a secret in the keychain first, then the corresponding
// environment variable.
func Get(account string) (string, error) {
	if strings.TrimSpace(account) == "" {
		return "", errors.New("secret account name is empty")
	}

	if v, err := keyring.Get(KeyringService, account); err == nil && strings.TrimSpace(v) != "" {
		return v, nil
	}

	if env := envFallback[account]; env != "" {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			return v, nil
		}
	}

	return "", fmt.Errorf("secret %q not found (set it in the keychain or via %s)", account, envFallback[account])
}

func Set(account, value string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("secret account name is empty")
	}
	if strings.TrimSpace(value) == "" {
		return errors.New("secret value is empty")
	}
	return keyring.Set(KeyringService, account, value)
}

func Delete(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("secret account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
