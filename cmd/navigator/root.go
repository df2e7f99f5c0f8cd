package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nathoo/worldnav/config"
	"github.com/nathoo/worldnav/engine"
	"github.com/nathoo/worldnav/loader"
	"github.com/nathoo/worldnav/logging"
	"github.com/nathoo/worldnav/store"
	"github.com/nathoo/worldnav/types"
)

var (
	configPath string
	worldPath  string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
)

// sessionStore is what the commands need from either store driver.
type sessionStore interface {
	engine.Store
	List() ([]store.Record, error)
	Close() error
}

var rootCmd = &cobra.Command{
	Use:          "navigator",
	Short:        "Resolve story locations against a world map and track them per chat session",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		if cmd.Flags().Changed("world") {
			cfg.World.File = worldPath
		}
		if verbose {
			cfg.Log.Level = "debug"
		}

		log, err = logging.New(cfg.Log)
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.SetVersionTemplate(versionString() + "\n")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "navigator.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&worldPath, "world", "", "World file (.json, .yaml) or Lua directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

// openStore opens the configured session store.
func openStore() (sessionStore, error) {
	if cfg.Store.Driver == config.DriverMemory {
		return store.NewMemory(), nil
	}
	s, err := store.OpenSQLite(cfg.Store.Path, log)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// loadWorld imports the configured world. No world file is not an error:
// the navigator then answers every lookup with the no-map message.
func loadWorld() (*types.World, error) {
	if cfg.World.File == "" {
		log.Warn("no world file configured")
		return nil, nil
	}
	w, warnings, err := loader.Load(cfg.World.File, log)
	if err != nil {
		return nil, err
	}
	for _, msg := range warnings {
		log.Warn("world import", zap.String("warning", msg))
	}
	return w, nil
}
