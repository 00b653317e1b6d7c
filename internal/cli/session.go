package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/recorder"
	"github.com/SeamusWaldron/cubesim/internal/storage"
)

// resolveDBPath picks the database: --db or config, then the state file,
// then the default location.
func resolveDBPath(stateFile *recorder.StateFile) (string, error) {
	if cfg.DBPath != "" {
		return cfg.DBPath, nil
	}
	if stateFile != nil {
		if path := stateFile.Snapshot().DBPath; path != "" {
			return path, nil
		}
	}
	return storage.DefaultDBPath()
}

// openDB opens the database and remembers its path in the state file.
func openDB() (*storage.DB, *recorder.StateFile, error) {
	stateFile, err := recorder.NewDefaultStateFile()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load state: %w", err)
	}

	path, err := resolveDBPath(stateFile)
	if err != nil {
		return nil, nil, err
	}

	db, err := storage.Open(path)
	if err != nil {
		return nil, nil, err
	}

	if stateFile.Snapshot().DBPath != path {
		if err := stateFile.SetDBPath(path); err != nil {
			logger.Warn("failed to save state file", "error", err)
		}
	}

	return db, stateFile, nil
}

// puzzleSession bundles a puzzle with its optional recorder.
type puzzleSession struct {
	puzzle   *cubesim.Puzzle
	db       *storage.DB
	recorder *recorder.Recorder
}

// openSession creates a puzzle for host. When recording is enabled every
// completed turn is written to the database.
func openSession(host string, log *slog.Logger, opts ...cubesim.Option) (*puzzleSession, error) {
	s := &puzzleSession{}

	if cfg.Record {
		db, stateFile, err := openDB()
		if err != nil {
			return nil, err
		}
		s.db = db
		s.recorder = recorder.New(db, stateFile, log)
		opts = append(opts, cubesim.WithObserver(s.recorder))
	}

	base := []cubesim.Option{
		cubesim.WithFramesPerTurn(cfg.FramesPerTurn),
		cubesim.WithLogger(log),
	}
	s.puzzle = cubesim.New(append(base, opts...)...)

	if s.recorder != nil {
		if _, err := s.recorder.Start(host, s.puzzle.FramesPerTurn()); err != nil {
			s.puzzle.Close()
			s.db.Close()
			return nil, err
		}
	}

	return s, nil
}

// SessionID returns the recorded session ID, or "" when not recording.
func (s *puzzleSession) SessionID() string {
	if s.recorder == nil {
		return ""
	}
	return s.recorder.SessionID()
}

// Close stops the puzzle, flushes the recorder and closes the database.
func (s *puzzleSession) Close() error {
	var errs []error
	if err := s.puzzle.Close(); err != nil {
		errs = append(errs, err)
	}
	if s.recorder != nil {
		if err := s.recorder.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
