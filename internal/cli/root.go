// Package cli implements the command-line interface for cubesim.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/SeamusWaldron/cubesim/internal/config"
)

const version = "0.1.0"

var (
	// Global flags
	configPath string
	dbPath     string
	verbose    bool
	noRecord   bool

	// Set up by the root command before any subcommand runs.
	cfg       config.Config
	logger    *slog.Logger
	logCloser io.Closer
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "cubesim",
	Short: "3x3x3 twisty puzzle simulator",
	Long: `cubesim - a 3x3x3 twisty puzzle simulator.

Nine layers turn by a quarter with the keys q w e / a s d / z x c (shift
reverses). Every move is recorded, and a replay undoes them all, newest
first, until the puzzle is back where it started.

Play in the terminal, drive it headless, stream frames to a browser over
websocket, or turn the layers with a GoCube smart cube.`,
	Version:           version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			logCloser.Close()
		}
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.cubesim/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database file path (default: ~/.cubesim/cubesim.db)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noRecord, "no-record", false, "Do not record moves to the database")
}

// setup loads the config file and builds the logger.
func setup(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	configPath = path

	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	if dbPath != "" {
		cfg.DBPath = dbPath
	}
	if noRecord {
		cfg.Record = false
	}

	w, closer, err := cfg.Log.Open(os.Stderr)
	if err != nil {
		return err
	}
	logCloser = closer

	logger, err = cfg.Log.NewLogger(w, verbose)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	logger.Debug("config loaded", "path", path, "frames_per_turn", cfg.FramesPerTurn, "tick_interval", cfg.TickInterval)
	return nil
}
