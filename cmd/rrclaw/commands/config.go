package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/yzzting/rrclaw/internal/config"
	"github.com/yzzting/rrclaw/internal/secrets"
)

// newConfigCmd builds the `rrclaw config` subcommand tree, grounded on the
// teacher's cmd/copilot/commands/config.go — same init/show/validate and
// keyring set-key/delete-key/key-status shape, adapted from a single
// implicit provider's api_key to rrclaw's per-provider keyring entries.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage rrclaw configuration",
		Long: `Manage rrclaw configuration.

Examples:
  rrclaw config init
  rrclaw config show
  rrclaw config validate
  rrclaw config set-key openai`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigValidateCmd(),
		newConfigSetKeyCmd(),
		newConfigDeleteKeyCmd(),
		newConfigKeyStatusCmd(),
	)

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create a default config.toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			target := config.DefaultConfigPath()

			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("%s already exists; remove it first or edit it directly", target)
			}

			cfg := config.DefaultConfig()
			if err := config.Save(cfg, target); err != nil {
				return err
			}

			fmt.Printf("Created %s with default configuration.\n", target)
			fmt.Println("\nNext steps:")
			fmt.Println("  1. Edit", target, "and choose your provider/model under [default]")
			fmt.Println("  2. Run: rrclaw config set-key <provider>")
			fmt.Println("  3. Run: rrclaw serve")
			return nil
		},
	}
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Printf("# Loaded from: %s\n\n", path)

			var buf bytes.Buffer
			if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
				return err
			}
			fmt.Print(buf.String())
			return nil
		},
	}
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			fmt.Printf("Config: %s\n", path)
			fmt.Printf("  Provider:  %s\n", cfg.Default.Provider)
			fmt.Printf("  Model:     %s\n", cfg.Default.Model)
			fmt.Printf("  Language:  %s\n", cfg.Default.Language)
			fmt.Printf("  Autonomy:  %s\n", cfg.Security.Autonomy)
			fmt.Printf("  Providers: %d configured\n", len(cfg.Providers))
			fmt.Printf("  MCP servers: %d\n", len(cfg.MCP.Servers))
			fmt.Printf("  Routine jobs: %d\n", len(cfg.Routines.Jobs))

			if _, ok := cfg.Providers[cfg.Default.Provider]; !ok {
				return fmt.Errorf("default.provider %q has no matching [providers.%s] table", cfg.Default.Provider, cfg.Default.Provider)
			}

			fmt.Println("\nConfiguration is valid.")
			return nil
		},
	}
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider>",
		Short: "Store a provider API key in the OS keyring (encrypted)",
		Long: `Securely stores a provider's API key in the operating system's native
keyring. This is the most secure option — the key is encrypted by the OS
and never stored as plaintext on disk.

Linux:   GNOME Keyring / KDE Wallet / Secret Service
macOS:   Keychain
Windows: Credential Manager

Examples:
  rrclaw config set-key openai
  rrclaw config set-key anthropic`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			provider := args[0]

			if !secrets.Available() {
				fmt.Println("OS keyring is not available on this system.")
				fmt.Println("Make sure you have a keyring service running:")
				fmt.Println("  Linux:   gnome-keyring-daemon or kwallet")
				fmt.Println("  macOS:   Keychain (built-in)")
				fmt.Println("  Windows: Credential Manager (built-in)")
				return fmt.Errorf("keyring not available")
			}

			reader := bufio.NewReader(os.Stdin)

			if existing := secrets.Get(provider); existing != "" {
				fmt.Printf("API key already in keyring for %s: %s\n", provider, maskSecret(existing))
				fmt.Print("Overwrite? (y/n) [n]: ")
				if ans := strings.TrimSpace(readKeyLine(reader)); strings.ToLower(ans) != "y" {
					fmt.Println("Cancelled.")
					return nil
				}
			}

			fmt.Printf("Enter API key for %s: ", provider)
			key := strings.TrimSpace(readKeyLine(reader))
			if key == "" {
				return fmt.Errorf("no key provided")
			}

			if err := secrets.Migrate(provider, key, slog.Default()); err != nil {
				return err
			}

			fmt.Println()
			fmt.Printf("API key for %s stored in OS keyring (encrypted).\n", provider)
			fmt.Println("You can now safely remove it from config.toml's [providers.", provider, "] table.")
			return nil
		},
	}
}

func newConfigDeleteKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete-key <provider>",
		Short: "Remove a provider API key from the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			provider := args[0]
			if err := secrets.Delete(provider); err != nil {
				return fmt.Errorf("deleting from keyring: %w", err)
			}
			fmt.Printf("API key for %s removed from OS keyring.\n", provider)
			return nil
		},
	}
}

func newConfigKeyStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "key-status <provider>",
		Short: "Show where a provider's API key is loaded from",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			provider := args[0]
			fmt.Printf("API key resolution order for %s:\n\n", provider)

			if secrets.Available() {
				if val := secrets.Get(provider); val != "" {
					fmt.Printf("  1. [OK] OS keyring:   %s\n", maskSecret(val))
				} else {
					fmt.Println("  1. [--] OS keyring:   (not set)")
				}
			} else {
				fmt.Println("  1. [--] OS keyring:   (unavailable on this system)")
			}

			envName := "RRCLAW_" + strings.ToUpper(provider) + "_API_KEY"
			if val := os.Getenv(envName); val != "" {
				fmt.Printf("  2. [OK] %s:  %s\n", envName, maskSecret(val))
			} else {
				fmt.Printf("  2. [--] %s:  (not set)\n", envName)
			}

			cfg, _, err := resolveConfig(cmd)
			if err == nil {
				if section, ok := cfg.Providers[provider]; ok && section.APIKey != "" {
					fmt.Printf("  3. [OK] config.toml:  %s\n", maskSecret(section.APIKey))
				} else {
					fmt.Println("  3. [--] config.toml:  (not set)")
				}
			}

			return nil
		},
	}
}

func readKeyLine(reader *bufio.Reader) string {
	line, _ := reader.ReadString('\n')
	return line
}

func maskSecret(val string) string {
	if len(val) <= 8 {
		return "****"
	}
	return val[:4] + "****" + val[len(val)-4:]
}
