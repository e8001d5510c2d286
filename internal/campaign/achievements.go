package campaign

import (
	"log/slog"
	"time"

	"github.com/talgya/xenopark/internal/game"
)

// EvaluateAchievements checks every locked achievement's trigger against
// current state and unlocks the ones that hold. Unlock records persist in
// their own namespace and survive game resets.
func (e *Evaluator) EvaluateAchievements() {
	view := e.g.EvalView()

	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	for _, a := range e.defs.Achievements {
		st := e.achievements[a.ID]
		if st.Unlocked {
			continue
		}
		if !e.evalTrigger(a.Trigger, view) {
			continue
		}
		now := time.Now()
		st.Unlocked = true
		st.UnlockedAt = &now
		st.Progress = 100
		e.achievements[a.ID] = st
		changed = true
		slog.Info("achievement unlocked", "achievement", a.ID)
		e.notify.Notify("Achievement unlocked: "+a.Name, game.SeveritySuccess)
	}
	if changed {
		e.persist(keyAchievements, e.achievements)
	}
}

// Achievements returns a copy of the unlock records keyed by id.
func (e *Evaluator) Achievements() map[string]AchievementState {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]AchievementState, len(e.achievements))
	for id, st := range e.achievements {
		out[id] = st
	}
	return out
}
