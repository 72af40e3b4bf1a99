package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/ravithakur-bit/tracker/internal/config"
	"github.com/ravithakur-bit/tracker/internal/db"
	"github.com/ravithakur-bit/tracker/internal/web"
)

var configPath string

var logger = slog.New(slog.NewTextHandler(os.Stderr, nil))

var rootCmd = &cobra.Command{
	Use:   "tracker",
	Short: "Internal bug and task tracker",
	Long:  `A small issue tracker: bugs and tasks with status workflows, activity logs, field-change history, link attachments, search, and a combined dashboard.`,
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the database schema and seed the status catalogs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		database, path, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		logger.Info("database ready", "path", path)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		database, path, err := openDB(cfg)
		if err != nil {
			return err
		}
		defer func() { _ = database.Close() }()

		srv := web.New(database, logger, cfg.PageSize)
		logger.Info("listening", "addr", cfg.Addr, "database", path)
		return http.ListenAndServe(cfg.Addr, srv.Handler())
	},
}

// openDB opens the configured database, creates the schema, and reseeds
// the status catalogs. Seeding is idempotent, so every start is safe.
func openDB(cfg config.Config) (*db.DB, string, error) {
	path := cfg.DatabasePath
	if path == "" {
		var err error
		path, err = db.DefaultPath()
		if err != nil {
			return nil, "", err
		}
	}

	database, err := db.Open(path)
	if err != nil {
		return nil, "", err
	}
	if err := database.Init(); err != nil {
		_ = database.Close()
		return nil, "", err
	}
	if err := database.Seed(); err != nil {
		_ = database.Close()
		return nil, "", err
	}
	return database, path, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "tracker.yaml", "path to the config file")
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
