package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/at-ishikawa/langdict/internal/bootstrap"
	"github.com/at-ishikawa/langdict/internal/bundle"
	"github.com/at-ishikawa/langdict/internal/config"
	"github.com/at-ishikawa/langdict/internal/database"
	"github.com/at-ishikawa/langdict/internal/dictionary"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// runWithService loads the configuration, builds the dictionary service and
// runs fn with it. Everything opened on the way is closed when fn returns.
func runWithService(cmd *cobra.Command, fn func(ctx context.Context, svc *dictionary.Service) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	app := bootstrap.New()
	return app.Run(cmd.Context(), func(ctx context.Context) error {
		store, err := openStore(ctx, app, cfg)
		if err != nil {
			return err
		}
		svc := dictionary.NewService(store, newLoader(app, cfg),
			dictionary.WithLogger(slog.Default()),
			dictionary.WithLanguages(cfg.Languages...),
			dictionary.WithDefaultBundles(cfg.Bundles.Names...),
			dictionary.WithPrewarm(cfg.Cache.Prewarm),
		)
		return fn(ctx, svc)
	})
}

func openStore(ctx context.Context, app *bootstrap.App, cfg *config.Config) (dictionary.Store, error) {
	switch cfg.Store.Driver {
	case config.DriverMemory:
		slog.Warn("the memory store keeps dictionaries only until the command exits",
			slog.String("driver", cfg.Store.Driver),
		)
		return dictionary.NewMemoryStore(), nil
	case config.DriverYAML:
		store, err := dictionary.NewYAMLStore(cfg.YAML.Directory)
		if err != nil {
			return nil, fmt.Errorf("dictionary.NewYAMLStore > %w", err)
		}
		return store, nil
	case config.DriverMySQL, config.DriverSQLite3:
		db, err := openDatabase(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.Manage(db)
		// a local SQLite file is created and migrated on first use
		if cfg.Store.Driver == config.DriverSQLite3 {
			if _, err := database.Migrate(db); err != nil {
				return nil, err
			}
		}
		return dictionary.NewDBStore(db), nil
	case config.DriverRedis:
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("redis.ParseURL > %w", err)
		}
		store := dictionary.NewRedisStore(redis.NewClient(opts), cfg.Redis.KeyPrefix)
		app.Manage(store)
		return store, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func newLoader(app *bootstrap.App, cfg *config.Config) bundle.Loader {
	switch cfg.Bundles.Source {
	case config.BundleSourceDirectory:
		return bundle.NewDirectoryLoader(cfg.Bundles.Directory)
	case config.BundleSourceHTTP:
		loader := bundle.NewHTTPLoader(
			cfg.Bundles.BaseURL,
			time.Duration(cfg.Bundles.TimeoutSeconds)*time.Second,
			cfg.Bundles.RetryAttempts,
		)
		app.Manage(loader)
		return loader
	default:
		return bundle.NewFSLoader(bundle.Defaults())
	}
}

// parseDescs parses lang=value pairs given with --desc.
func parseDescs(values []string) ([]dictionary.Desc, error) {
	descs := make([]dictionary.Desc, 0, len(values))
	for _, v := range values {
		lang, value, ok := strings.Cut(v, "=")
		lang = strings.TrimSpace(lang)
		if !ok || lang == "" {
			return nil, fmt.Errorf("invalid description %q, expected lang=value", v)
		}
		descs = append(descs, dictionary.Desc{Lang: lang, Value: value})
	}
	return descs, nil
}
