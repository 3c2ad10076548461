package main

import (
	"context"
	"os"

	"claudehub/internal/records"
	"claudehub/pkg/config"
	"claudehub/pkg/db"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "claudehub",
	Short: "ClaudeHub dashboard backend",
	Long: `ClaudeHub serves the business dashboard API: auth, dashboard data,
form entry, profiles and a chat assistant backed by a hosted LLM.`,
	PersistentPreRun: loadRootConfig,
	SilenceUsage:     true,
}

func loadRootConfig(_ *cobra.Command, _ []string) {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)

	cfg = config.LoadConfig()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.Warnf("Unknown log level %q, using info", cfg.LogLevel)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}

// openRecords picks the demo store when the records backend is not
// configured and a Postgres store otherwise. The returned func releases the
// connection pool.
func openRecords(ctx context.Context, migrate bool, opts ...records.StoreOption) (records.Client, func(), error) {
	if cfg.RecordsDemo() {
		logrus.Warn("Records backend not configured, running in demo mode")
		return records.NewDemoStore(), func() {}, nil
	}

	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() {
		if err := database.Close(); err != nil {
			logrus.Errorf("Failed to close records database: %v", err)
		}
	}

	opts = append([]records.StoreOption{
		records.WithSessionTTL(cfg.SessionTTL),
		records.WithResetNotifier(records.LogResetNotifier),
	}, opts...)
	store := records.NewStore(database, cfg.RecordsAnonKey, opts...)

	if migrate {
		if err := store.Migrate(ctx); err != nil {
			closeDB()
			return nil, nil, err
		}
		logrus.Info("Records schema is up to date")
	}
	return store, closeDB, nil
}
