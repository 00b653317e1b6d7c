package cubesim

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/SeamusWaldron/cubesim/internal/cube"
	"github.com/SeamusWaldron/cubesim/pkg/types"
)

// Puzzle owns the slot table, the rotation session and the move history.
// Every read and mutation goes through one mutex, so the tick path, input
// handlers and the replay task may run on different goroutines.
type Puzzle struct {
	cfg    *config
	logger *slog.Logger

	mu         sync.Mutex
	table      cube.Table
	session    *cube.Session
	source     Source // source of the active turn
	history    *cube.History
	replaying  bool
	announcing bool // observers are being told about the last state change
	seq        uint64
	closed     bool
	changed    chan struct{} // closed and replaced on every state change

	done chan struct{}
	wg   sync.WaitGroup
}

// Frame is a snapshot of everything a renderer needs for one frame.
type Frame struct {
	Seq        uint64               `json:"seq"`
	Active     bool                 `json:"active"`
	Move       Move                 `json:"move"`
	Source     Source               `json:"source,omitempty"`
	Axis       Axis                 `json:"axis"`
	Frames     int                  `json:"frames"`
	Elapsed    int                  `json:"elapsed"`
	Remaining  int                  `json:"remaining"`
	Angle      float64              `json:"angle"`
	Step       float64              `json:"step"`
	Replaying  bool                 `json:"replaying"`
	Pending    int                  `json:"pending"`
	Table      Table                `json:"table"`
	Layer      [SlotCount]bool      `json:"layer"` // slots in the turning layer
	Transforms [SlotCount]Transform `json:"transforms"`
}

// Members reports whether slot belongs to the turning layer. It holds for
// the whole turn, including before the first tick.
func (f *Frame) Members(slot Slot) bool {
	return f.Active && slot.Valid() && f.Layer[slot]
}

// New creates a solved puzzle.
func New(opts ...Option) *Puzzle {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return &Puzzle{
		cfg:     cfg,
		logger:  cfg.logger,
		table:   cube.Solved(),
		session: cube.NewSession(cfg.framesPerTurn),
		history: cube.NewHistory(),
		changed: make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// InitialState returns the table a new puzzle starts from: slot i holds
// cubie i.
func (p *Puzzle) InitialState() Table {
	return cube.Solved()
}

// FramesPerTurn returns the number of ticks a quarter turn takes.
func (p *Puzzle) FramesPerTurn() int {
	return p.session.Frames()
}

// Table returns a copy of the current slot table.
func (p *Puzzle) Table() Table {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.table
}

// History returns the recorded live moves, oldest first.
func (p *Puzzle) History() []Move {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Entries()
}

// HistoryLen returns the number of recorded live moves.
func (p *Puzzle) HistoryLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history.Len()
}

// Active returns true while a turn is animating.
func (p *Puzzle) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Active()
}

// Replaying returns true while a replay is running.
func (p *Puzzle) Replaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.replaying
}

// Busy returns true while a turn is animating, a replay is running or
// observers are still being told about the last change. Live input is
// dropped while the puzzle is busy.
func (p *Puzzle) Busy() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.busyLocked()
}

func (p *Puzzle) busyLocked() bool {
	return p.session.Active() || p.replaying || p.announcing
}

// SubmitKey turns face forward, or reversed when the shift modifier is held.
// It returns false if the input was dropped.
func (p *Puzzle) SubmitKey(face Face, reversed bool) bool {
	return p.Submit(Move{Face: face, Direction: types.DirectionOf(reversed)}, SourceLive)
}

// Submit starts m if no turn is animating and no replay is running, and
// records it in the history. Otherwise the move is dropped, not queued.
// A move submitted from inside an observer callback is dropped as
// RejectTurning, so MoveAccepted never overtakes the event being delivered.
func (p *Puzzle) Submit(m Move, src Source) bool {
	if m.Validate() != nil || src == SourceReplay {
		p.reject(m, RejectInvalid)
		return false
	}

	p.mu.Lock()
	var reason RejectReason
	switch {
	case p.closed:
		reason = RejectClosed
	case p.replaying:
		reason = RejectReplaying
	case p.session.Active(), p.announcing:
		reason = RejectTurning
	}
	if reason != "" {
		p.mu.Unlock()
		p.reject(m, reason)
		return false
	}

	p.history.Push(m)
	p.startLocked(m, src)

	p.logger.Debug("move accepted", "move", m.Notation(), "source", src)
	p.announceLocked(func(o Observer) { o.MoveAccepted(m, src) })
	return true
}

func (p *Puzzle) reject(m Move, reason RejectReason) {
	p.logger.Debug("move dropped", "move", m.Notation(), "reason", reason)
	p.notify(func(o Observer) { o.MoveRejected(m, reason) })
}

// startLocked begins animating m. The caller holds p.mu and has checked
// that no turn is active.
func (p *Puzzle) startLocked(m Move, src Source) {
	if err := p.session.Start(m); err != nil {
		p.logger.Error("failed to start turn", "move", m.Notation(), "error", err)
		return
	}
	p.source = src
	p.broadcastLocked()
}

// broadcastLocked wakes everything waiting for a state change.
func (p *Puzzle) broadcastLocked() {
	close(p.changed)
	p.changed = make(chan struct{})
}

// announceLocked releases p.mu and delivers an event to observers. Until
// they return, Submit rejects, Tick holds the frame and replay waits, so
// observers see events in the order the state changed. Waiters are woken
// afterwards. The caller holds p.mu; it is released on return.
func (p *Puzzle) announceLocked(fn func(Observer)) {
	p.announcing = true
	p.mu.Unlock()

	p.notify(fn)

	p.mu.Lock()
	p.announcing = false
	p.broadcastLocked()
	p.mu.Unlock()
}

// Tick advances the animation by one frame. On the last frame of a turn the
// table is permuted exactly once, observers are notified and waiters are
// woken. A tick that arrives while observers are being notified is skipped.
func (p *Puzzle) Tick() {
	p.mu.Lock()
	if p.announcing {
		p.mu.Unlock()
		return
	}
	p.seq++
	m, done := p.session.Tick()
	if !done {
		p.mu.Unlock()
		return
	}

	src := p.source
	if err := cube.Apply(&p.table, m); err != nil {
		p.logger.Error("failed to apply turn", "move", m.Notation(), "error", err)
	}
	table := p.table

	p.logger.Debug("turn completed", "move", m.Notation(), "source", src, "solved", table.IsSolved())
	p.announceLocked(func(o Observer) { o.TurnCompleted(m, src, table) })
}

// TransformFor returns the transform for slot in the current frame: the
// partial rotation of the turning layer, or the identity.
func (p *Puzzle) TransformFor(slot Slot) Transform {
	if !slot.Valid() {
		return cube.Identity
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.session.Transform(slot)
}

// Frame returns a consistent snapshot of the table and every slot
// transform.
func (p *Puzzle) Frame() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()

	f := Frame{
		Seq:       p.seq,
		Active:    p.session.Active(),
		Frames:    p.session.Frames(),
		Replaying: p.replaying,
		Pending:   p.history.Len(),
		Table:     p.table,
	}
	if f.Active {
		f.Move = p.session.Move()
		f.Source = p.source
		f.Axis = p.session.Selection().Axis
		f.Elapsed = p.session.Elapsed()
		f.Remaining = p.session.Remaining()
		f.Angle = p.session.Angle()
		f.Step = p.session.StepAngle()

		sel := p.session.Selection()
		for s := Slot(0); s < SlotCount; s++ {
			f.Layer[s] = sel.Contains(s)
		}
	}
	for s := Slot(0); s < SlotCount; s++ {
		f.Transforms[s] = p.session.Transform(s)
	}
	return f
}

// WaitIdle blocks until no turn is animating and no replay is running.
// Something else must keep calling Tick.
func (p *Puzzle) WaitIdle(ctx context.Context) error {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return ErrClosed
		}
		if !p.busyLocked() {
			p.mu.Unlock()
			return nil
		}
		changed := p.changed
		p.mu.Unlock()

		select {
		case <-changed:
		case <-p.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Run calls Tick every interval until ctx is cancelled or the puzzle is
// closed.
func (p *Puzzle) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.done:
			return ErrClosed
		case <-ticker.C:
			p.Tick()
		}
	}
}

// Close stops a running replay and waits for it to exit. Input submitted
// after Close is rejected.
func (p *Puzzle) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.done)
	p.mu.Unlock()

	p.wg.Wait()
	return nil
}

func (p *Puzzle) notify(fn func(Observer)) {
	for _, o := range p.cfg.observers {
		fn(o)
	}
}
