package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pratik-mahalle/mediremind/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigSetCmd())
	cmd.AddCommand(newConfigGetCmd())
	cmd.AddCommand(newConfigListCmd())

	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Interactive first-time setup",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())

			url := promptDefault(cmd, reader, "Enter server URL", defaultServerURL)
			format := promptDefault(cmd, reader, "Default output format (table/json/yaml)", "table")
			backend := promptDefault(cmd, reader, "Session store (file/memory/redis)", "file")

			viper.Set("server_url", url)
			viper.Set("output", format)
			viper.Set("session.backend", backend)
			if backend == "redis" {
				viper.Set("session.redis_url", promptDefault(cmd, reader, "Redis URL", "redis://localhost:6379/0"))
			}

			path, err := writeConfig()
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
			return nil
		},
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(args[0], args[1])
			if _, err := writeConfig(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s\n", args[0], maskValue(args[0], args[1]))
			return nil
		},
	}
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			val := viper.Get(args[0])
			if val == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: (not set)\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", args[0], maskValue(args[0], val))
			}
			return nil
		},
	}
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Show all configuration values",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := viper.AllKeys()
			sort.Strings(keys)

			table := NewTable(cmd.OutOrStdout(), "KEY", "VALUE")
			for _, key := range keys {
				table.AddRow(key, fmt.Sprint(maskValue(key, viper.Get(key))))
			}
			table.Render()
			return nil
		},
	}
}

// maskValue hides stored credentials
func maskValue(key string, val interface{}) interface{} {
	if key != session.TokenKey {
		return val
	}
	if s, ok := val.(string); ok && s == "" {
		return "(not set)"
	}
	return "(credentials stored)"
}

func promptDefault(cmd *cobra.Command, r *bufio.Reader, prompt, def string) string {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s [%s]: ", prompt, def)
	val, _ := r.ReadString('\n')
	val = strings.TrimSpace(val)
	if val == "" {
		return def
	}
	return val
}

func writeConfig() (string, error) {
	path, err := configPath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
