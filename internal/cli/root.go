package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pratik-mahalle/mediremind/internal/pkg/logger"
	"github.com/pratik-mahalle/mediremind/internal/session"
	"github.com/pratik-mahalle/mediremind/pkg/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultServerURL = "http://localhost:8080"

var (
	cfgFile        string
	outputFormat   string
	serverURL      string
	sessionBackend string
	apiClient      *client.Client
	sessionStore   session.Store
	authCtx        *session.Context
	log            *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mediremind",
	Short: "MediRemind CLI - medication reminders from the terminal",
	Long: `MediRemind CLI signs you in to a MediRemind server, creates patient and
caregiver accounts, and keeps your session between commands.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log = logger.Init(logger.Config{
			Level:  viper.GetString("log_level"),
			Format: "console",
			Output: cmd.ErrOrStderr(),
		})

		// Skip client init for config commands
		if cmd.Parent() != nil && cmd.Parent().Name() == "config" {
			return nil
		}
		if err := initSession(cmd.Context()); err != nil {
			return err
		}
		switch cmd.Name() {
		case "login", "register", "logout", "status":
			return initClient()
		}
		return initAuthenticatedClient()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if c, ok := sessionStore.(interface{ Close() error }); ok {
			return c.Close()
		}
		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command with ctx
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.mediremind/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "server URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&sessionBackend, "session", "", "session store: file, memory, redis")
	rootCmd.PersistentFlags().String("redis-url", "", "redis URL for the redis session store")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("server_url", rootCmd.PersistentFlags().Lookup("server"))
	_ = viper.BindPFlag("session.backend", rootCmd.PersistentFlags().Lookup("session"))
	_ = viper.BindPFlag("session.redis_url", rootCmd.PersistentFlags().Lookup("redis-url"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newStatusCmd())
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			return
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MEDIREMIND")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("server_url", defaultServerURL)
	viper.SetDefault("output", "table")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("session.backend", "file")
	viper.SetDefault("session.profile", "default")
	viper.SetDefault("session.ttl", "0s")

	_ = viper.ReadInConfig()
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".mediremind"), nil
}

// configPath is the file config writes go to
func configPath() (string, error) {
	if cfgFile != "" {
		return cfgFile, nil
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used, nil
	}
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func initSession(ctx context.Context) error {
	store, err := newSessionStore(ctx, viper.GetString("session.backend"))
	if err != nil {
		return err
	}
	sessionStore = store

	authCtx, err = session.NewContext(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	return nil
}

func newSessionStore(ctx context.Context, backend string) (session.Store, error) {
	switch backend {
	case "", "file":
		path, err := configPath()
		if err != nil {
			return nil, err
		}
		return session.NewConfigStore(viper.GetViper(), path), nil
	case "memory":
		return session.NewMemoryStore(), nil
	case "redis":
		url := viper.GetString("session.redis_url")
		if url == "" {
			return nil, errors.New("session.redis_url is required for the redis session store")
		}
		return session.NewRedisStore(ctx, url,
			viper.GetString("session.profile"),
			viper.GetDuration("session.ttl"))
	default:
		return nil, fmt.Errorf("unknown session store %q (want file, memory or redis)", backend)
	}
}

func initClient() error {
	url := viper.GetString("server_url")
	if serverURL != "" {
		url = serverURL
	}

	apiClient = client.NewClient(client.Config{
		BaseURL:   url,
		Token:     authCtx.Token(),
		UserAgent: "mediremind-cli",
	})
	return nil
}

func initAuthenticatedClient() error {
	if err := initClient(); err != nil {
		return err
	}

	if !authCtx.Authenticated() {
		return fmt.Errorf("not authenticated. Run 'mediremind auth login' first")
	}
	return nil
}

func getOutputFormat() string {
	if outputFormat != "" && outputFormat != "table" {
		return outputFormat
	}
	return viper.GetString("output")
}

// reportedError is a failure the user has already been notified about
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// Reported reports whether err was already shown to the user, so main
// should only set the exit code.
func Reported(err error) bool {
	var r *reportedError
	return errors.As(err, &r)
}
