// Package secrets resolves provider API keys and other credentials using
// the OS keyring, grounded on the teacher's keyring.go. The resolution
// priority chain is the same: OS keyring, then environment variable, then
// config value — generalized from the teacher's single GoClaw API key to
// one secret per named provider.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const keyringService = "rrclaw"

// Store saves a secret under name in the OS keyring.
func Store(name, value string) error {
	return keyring.Set(keyringService, name, value)
}

// Get retrieves a secret from the OS keyring. Returns "" if not found.
func Get(name string) string {
	val, err := keyring.Get(keyringService, name)
	if err != nil {
		return ""
	}
	return val
}

// Delete removes a secret from the OS keyring.
func Delete(name string) error {
	return keyring.Delete(keyringService, name)
}

// Available checks whether the OS keyring is accessible by attempting a
// write+delete cycle with a throwaway key.
func Available() bool {
	const probe = "__rrclaw_probe__"
	if err := keyring.Set(keyringService, probe, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(keyringService, probe)
	return true
}

// envVarName returns the RRCLAW_-prefixed environment variable name for a
// given provider, e.g. "openai" -> "RRCLAW_OPENAI_API_KEY".
func envVarName(provider string) string {
	return "RRCLAW_" + strings.ToUpper(provider) + "_API_KEY"
}

// ResolveAPIKey resolves a provider's API key using the priority chain:
// keyring -> RRCLAW_{PROVIDER}_API_KEY env var -> configValue (already
// loaded from config.toml). It only returns the resolved value; nothing is
// written to disk or back into the config.
func ResolveAPIKey(provider, configValue string, logger *slog.Logger) string {
	if val := Get(provider); val != "" {
		logger.Debug("api key loaded from OS keyring", "provider", provider)
		return val
	}
	if val := os.Getenv(envVarName(provider)); val != "" {
		logger.Debug("api key loaded from environment", "provider", provider)
		return val
	}
	if configValue != "" {
		logger.Debug("api key loaded from config", "provider", provider)
		return configValue
	}
	logger.Warn("no api key found for provider", "provider", provider, "hint", fmt.Sprintf("set one with: rrclaw config set-key %s", provider))
	return ""
}

// Migrate moves an API key from config/env into the OS keyring.
func Migrate(provider, apiKey string, logger *slog.Logger) error {
	if err := Store(provider, apiKey); err != nil {
		return fmt.Errorf("storing %s key in keyring: %w", provider, err)
	}
	logger.Info("api key stored in OS keyring", "service", keyringService, "provider", provider)
	return nil
}
