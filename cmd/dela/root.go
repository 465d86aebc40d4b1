package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dela/internal/config"
	"dela/internal/storage"
	"dela/internal/ui"
)

type rootFlags struct {
	configPath string
	dbPath     string
}

func newRootCmd() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:          "dela",
		Short:        "A local task tracker",
		Long:         "Dela keeps short text tasks in a local SQLite database:\nadd, edit, search, and delete them from a terminal UI.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrCreate(flags.configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if flags.dbPath != "" {
				cfg.DBPath = flags.dbPath
			}

			store, err := storage.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer store.Close()

			if cfg.Seed {
				if err := store.SeedIfEmpty(); err != nil {
					return fmt.Errorf("seeding database: %w", err)
				}
			}

			return ui.Run(store, cfg)
		},
	}

	root.PersistentFlags().StringVar(&flags.configPath, "config", config.DefaultConfigFileName, "path to the config file")
	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "path to the database file (overrides config)")

	root.AddCommand(newVersionCmd())

	return root
}
