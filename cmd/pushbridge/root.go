package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	pushbridge "github.com/pushbridge-dev/pushbridge"
	"github.com/pushbridge-dev/pushbridge/fcm"
)

var (
	sessionDir    string
	configPath    string
	verbose       bool
	redisAddr     string
	redisPassword string
)

func defaultSessionDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".pushbridge")
}

var rootCmd = &cobra.Command{
	Use:   "pushbridge",
	Short: "Device-side push registration coordinator CLI",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&sessionDir, "session-dir", defaultSessionDir(), "Directory for token and credential storage")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (app_id, sender_id, urls)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&redisAddr, "redis-addr", "", "Store the token record in Redis at this address instead of the session directory")
	rootCmd.PersistentFlags().StringVar(&redisPassword, "redis-password", "", "Password for --redis-addr")

	// Allow env override
	if envDir := os.Getenv("PUSHBRIDGE_SESSION_DIR"); envDir != "" {
		sessionDir = envDir
	}
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runtime bundles the wired coordinator and its collaborators.
type runtime struct {
	coord *pushbridge.Coordinator
	bus   *pushbridge.MemoryBus
	close func() error
}

// newRuntime wires config, store, service client and the FCM plugin into a
// coordinator.
func newRuntime() (*runtime, error) {
	cfg := pushbridge.NewConfig(nil, nil)
	if configPath != "" {
		loaded, err := pushbridge.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	var (
		store   pushbridge.TokenStore
		closeFn = func() error { return nil }
	)
	if redisAddr != "" {
		redisStore, err := pushbridge.NewRedisStore(redisAddr, redisPassword, 0)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closeFn = redisStore.Close
	} else {
		store = pushbridge.NewFileStore(sessionDir)
	}

	appPackage := cfg.GetString("app_package")
	if appPackage == "" {
		appPackage = cfg.GetString(pushbridge.SettingAppID)
	}

	bus := pushbridge.NewMemoryBus()
	client := pushbridge.NewServiceClient(cfg.GetURL("push"))
	plugin := fcm.New(sessionDir, appPackage)

	coord := pushbridge.NewCoordinator(
		cfg,
		bus,
		store,
		client,
		pushbridge.StaticPluginProvider(plugin),
		pushbridge.PlatformAndroid,
	)

	return &runtime{coord: coord, bus: bus, close: closeFn}, nil
}

// requireToken returns the flag token if set, otherwise the stored token, or
// exits with a helpful message.
func requireToken(cmd *cobra.Command, rt *runtime) pushbridge.PushToken {
	if flagToken, _ := cmd.Flags().GetString("token"); flagToken != "" {
		return pushbridge.PushToken{Token: flagToken}
	}
	tok := rt.coord.Token(cmd.Context())
	if tok.IsZero() {
		fmt.Fprintln(os.Stderr, "Error: no push token stored")
		fmt.Fprintln(os.Stderr, "Run 'pushbridge register' first to acquire one.")
		os.Exit(1)
	}
	return tok
}
