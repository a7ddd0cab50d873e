package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"sectionsite/internal/app"
)

var (
	cfgFile  string
	cfg      app.Config
	logger   *slog.Logger
	registry *app.Registry
)

var rootCmd = &cobra.Command{
	Use:   "sectionsite",
	Short: "Serve content-type archives with selectable homepages",
	Long: `sectionsite hosts mini-sites such as /about or /services inside one site.

Each configured content type gets an archive view at its URL prefix that
renders the item an administrator picked as that section's homepage.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./sectionsite.yaml)")
	rootCmd.AddCommand(serveCmd, activateCmd, homepageCmd, treeCmd)
}

func initConfig() error {
	v := viper.New()
	app.Defaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("sectionsite")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || cfgFile != "" {
			return fmt.Errorf("read config: %w", err)
		}
	}

	var err error
	cfg, err = app.LoadConfig(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = app.NewLogger(os.Stdout, cfg.LogLevel)
	if used := v.ConfigFileUsed(); used != "" {
		logger.Debug("configuration loaded", "file", used)
	}

	registry, err = app.NewRegistry(cfg.ContentTypes...)
	if err != nil {
		return fmt.Errorf("register content types: %w", err)
	}
	return nil
}

// openStore connects the configured backend.
func openStore(ctx context.Context) (app.Store, error) {
	if cfg.Store == app.StoreMemory {
		logger.Warn("using in-memory store; content is lost on exit")
		return app.NewMemoryStore(), nil
	}

	db, err := app.NewDB(cfg)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return app.NewMySQLStore(db), nil
}
