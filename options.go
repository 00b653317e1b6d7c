package cubesim

import (
	"io"
	"log/slog"

	"github.com/SeamusWaldron/cubesim/internal/cube"
)

// Option configures Puzzle behavior.
type Option func(*config)

type config struct {
	framesPerTurn int
	logger        *slog.Logger
	observers     []Observer
}

func defaultConfig() *config {
	return &config{
		framesPerTurn: cube.DefaultFrames,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithFramesPerTurn sets how many ticks a quarter turn is animated over.
// The default is 25. Values below 1 are ignored.
func WithFramesPerTurn(frames int) Option {
	return func(c *config) {
		if frames > 0 {
			c.framesPerTurn = frames
		}
	}
}

// WithLogger sets the logger used for move and replay events.
// By default nothing is logged.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithObserver registers an observer. May be given more than once.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}
