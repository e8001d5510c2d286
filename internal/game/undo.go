package game

// historyLimit bounds both history stacks.
const historyLimit = 50

// History holds bounded undo/redo stacks of pre-mutation snapshots.
// Linear-history discipline: a new action after an undo discards the redo
// branch.
type History struct {
	limit int
	undo  []Snapshot
	redo  []Snapshot
}

func newHistory(limit int) *History {
	return &History{limit: limit}
}

func (h *History) push(s Snapshot) {
	h.undo = append(h.undo, s)
	if len(h.undo) > h.limit {
		h.undo = h.undo[1:]
	}
	h.redo = nil
}

// recordUndoLocked captures the pre-mutation state. Called at the top of
// every accepted placement/removal.
func (g *Game) recordUndoLocked() {
	g.history.push(g.snapshotLocked())
}

// CanUndo reports whether an action can be undone.
func (g *Game) CanUndo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history.undo) > 0
}

// CanRedo reports whether an undone action can be reapplied.
func (g *Game) CanRedo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.history.redo) > 0
}

// Undo restores the most recent pre-mutation snapshot. No-op on an empty
// stack.
func (g *Game) Undo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.history.undo)
	if n == 0 {
		return false
	}
	prev := g.history.undo[n-1]
	g.history.undo = g.history.undo[:n-1]
	g.history.redo = append(g.history.redo, g.snapshotLocked())
	g.restoreLocked(prev)
	return true
}

// Redo reapplies the most recently undone state. No-op on an empty stack.
func (g *Game) Redo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := len(g.history.redo)
	if n == 0 {
		return false
	}
	next := g.history.redo[n-1]
	g.history.redo = g.history.redo[:n-1]
	g.history.undo = append(g.history.undo, g.snapshotLocked())
	g.restoreLocked(next)
	return true
}
