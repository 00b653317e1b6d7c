// Package recorder persists completed turns of a puzzle session.
package recorder

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/SeamusWaldron/cubesim"
	"github.com/SeamusWaldron/cubesim/internal/storage"
)

// ErrNotRecording is returned when the recorder has no open session.
var ErrNotRecording = errors.New("recorder: not recording")

// DefaultQueueSize is the number of completed turns buffered ahead of the
// database writer.
const DefaultQueueSize = 256

// SessionState represents the current state of a recording session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateRecording
	StateEnded
)

// String returns the string representation of the session state.
func (s SessionState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRecording:
		return "recording"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

type entry struct {
	index  int
	tsMs   int64
	move   cubesim.Move
	source cubesim.Source
}

// Recorder writes every completed turn of a puzzle to the database. It is a
// cubesim.Observer; turns are queued and written on a separate goroutine so
// the tick path never waits on sqlite.
type Recorder struct {
	cubesim.NopObserver

	sessions  *storage.SessionRepository
	moves     *storage.MoveRepository
	stateFile *StateFile
	logger    *slog.Logger

	mu        sync.RWMutex
	state     SessionState
	sessionID string
	startTime time.Time
	moveIndex int
	solved    bool
	dropped   int

	queue chan entry
	wg    sync.WaitGroup
}

// New creates a recorder. stateFile and logger may be nil.
func New(db *storage.DB, stateFile *StateFile, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{
		sessions:  storage.NewSessionRepository(db),
		moves:     storage.NewMoveRepository(db),
		stateFile: stateFile,
		logger:    logger,
		state:     StateIdle,
		solved:    true,
	}
}

// Start opens a new session and starts the writer goroutine.
func (r *Recorder) Start(host string, framesPerTurn int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == StateRecording {
		return "", fmt.Errorf("failed to start session: already recording %s", r.sessionID)
	}

	id, err := r.sessions.Create(host, framesPerTurn)
	if err != nil {
		return "", err
	}

	r.state = StateRecording
	r.sessionID = id
	r.startTime = time.Now()
	r.moveIndex = 0
	r.solved = true
	r.dropped = 0
	r.queue = make(chan entry, DefaultQueueSize)

	r.wg.Add(1)
	go r.writeLoop(id, r.queue)

	if r.stateFile != nil {
		if err := r.stateFile.SetLastSession(id); err != nil {
			r.logger.Warn("failed to save state file", "error", err)
		}
	}

	r.logger.Info("recording started", "session", id, "host", host)
	return id, nil
}

// State returns the current session state.
func (r *Recorder) State() SessionState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// SessionID returns the current session ID.
func (r *Recorder) SessionID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessionID
}

// MoveCount returns the number of turns queued in this session.
func (r *Recorder) MoveCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.moveIndex
}

// Dropped returns the number of turns lost because the queue was full.
func (r *Recorder) Dropped() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.dropped
}

// TurnCompleted queues the turn for writing. It never blocks.
func (r *Recorder) TurnCompleted(m cubesim.Move, src cubesim.Source, table cubesim.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != StateRecording {
		return
	}

	r.solved = table.IsSolved()
	e := entry{
		index:  r.moveIndex,
		tsMs:   time.Since(r.startTime).Milliseconds(),
		move:   m,
		source: src,
	}

	select {
	case r.queue <- e:
		r.moveIndex++
	default:
		r.dropped++
		r.logger.Warn("record queue full, turn dropped", "move", m.Notation(), "session", r.sessionID)
	}
}

func (r *Recorder) writeLoop(sessionID string, queue <-chan entry) {
	defer r.wg.Done()

	for e := range queue {
		if _, err := r.moves.Create(sessionID, e.index, e.tsMs, e.move, e.source); err != nil {
			r.logger.Error("failed to record move", "session", sessionID, "index", e.index, "error", err)
		}
	}
}

// Close drains the queue and marks the session ended.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return ErrNotRecording
	}
	r.state = StateEnded
	id := r.sessionID
	solved := r.solved
	count := r.moveIndex
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()

	if err := r.sessions.End(id, solved); err != nil {
		return fmt.Errorf("failed to end session: %w", err)
	}

	r.logger.Info("recording ended", "session", id, "moves", count, "solved", solved)
	return nil
}
