package cubesim

// RequestReplay starts undoing every recorded move, newest first, in the
// background. It returns false if a replay is already running or the puzzle
// is closed. Live input is dropped until the replay finishes.
func (p *Puzzle) RequestReplay() bool {
	p.mu.Lock()
	if p.closed || p.replaying {
		p.mu.Unlock()
		return false
	}
	p.replaying = true
	pending := p.history.Len()
	p.wg.Add(1)
	p.broadcastLocked()
	p.mu.Unlock()

	p.logger.Info("replay started", "pending", pending)
	p.notify(func(o Observer) { o.ReplayStarted(pending) })

	go p.replay()
	return true
}

// replay pops the history one move at a time. Each undo step waits for the
// previous turn to finish, and for observers to hear about it, by blocking
// on the change channel, never while holding the lock.
func (p *Puzzle) replay() {
	defer p.wg.Done()

	undone := 0
	for {
		p.mu.Lock()
		if p.closed {
			p.replaying = false
			p.mu.Unlock()
			p.logger.Info("replay stopped", "undone", undone)
			return
		}

		if p.session.Active() || p.announcing {
			changed := p.changed
			p.mu.Unlock()
			select {
			case <-changed:
			case <-p.done:
			}
			continue
		}

		entry, ok := p.history.Pop()
		if !ok {
			p.mu.Unlock()
			p.logger.Info("replay finished", "undone", undone)
			p.notify(func(o Observer) { o.ReplayFinished(undone) })

			p.mu.Lock()
			p.replaying = false
			p.broadcastLocked()
			p.mu.Unlock()
			return
		}

		m := entry.Inverse()
		p.startLocked(m, SourceReplay)

		undone++
		p.logger.Debug("replay step", "move", m.Notation(), "step", undone)
		p.announceLocked(func(o Observer) { o.MoveAccepted(m, SourceReplay) })
	}
}
