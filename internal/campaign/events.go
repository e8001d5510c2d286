package campaign

import (
	"log/slog"

	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
)

// CheckForEvents polls the event catalog and surfaces at most one candidate
// for player choice. Runs only while a scenario is active. A surfaced event
// stays pending until resolved; one-time events that have ever been
// resolved are never candidates again, even across game resets.
//
// Among simultaneous candidates, higher priority wins; within equal
// priority, catalog declaration order wins.
func (e *Evaluator) CheckForEvents() *catalog.Event {
	view := e.g.EvalView()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == "" {
		return nil
	}
	if e.pending != nil {
		return e.pending
	}

	var best *catalog.Event
	for i := range e.defs.Events {
		ev := &e.defs.Events[i]
		if ev.OneTime && e.firedEvents[ev.ID] {
			continue
		}
		if !e.evalTrigger(ev.Trigger, view) {
			continue
		}
		if ev.Probability > 0 && e.rng.Float64() >= ev.Probability {
			continue
		}
		if best == nil || ev.Priority > best.Priority {
			best = ev
		}
	}

	if best != nil {
		e.pending = best
		slog.Info("event surfaced", "event", best.ID, "priority", best.Priority.String())
	}
	return best
}

// PendingEvent returns the surfaced, unresolved event if any.
func (e *Evaluator) PendingEvent() *catalog.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pending
}

// ResolveEvent applies one choice of an event. The choice's requirements
// are checked against current state; on acceptance its consequences are
// applied, story flags recorded, and — for one-time events — the event is
// permanently marked as fired before the prompt closes.
func (e *Evaluator) ResolveEvent(eventID, choiceID string) game.Result {
	view := e.g.EvalView()

	e.mu.Lock()
	defer e.mu.Unlock()

	ev, ok := e.defs.EventByID(eventID)
	if !ok {
		return game.Result{Reason: game.ReasonNotFound}
	}
	var choice *catalog.Choice
	for i := range ev.Choices {
		if ev.Choices[i].ID == choiceID {
			choice = &ev.Choices[i]
			break
		}
	}
	if choice == nil {
		return game.Result{Reason: game.ReasonNotFound}
	}

	for _, req := range choice.Requirements {
		if !e.requirementMet(req, view) {
			return game.Result{Reason: game.ReasonRequirementNotMet}
		}
	}

	e.g.ApplyConsequences(choice.Consequences)

	flagsChanged := false
	for _, con := range choice.Consequences {
		if con.Flag != "" {
			e.flags[con.Flag] = con.FlagValue
			flagsChanged = true
		}
		if con.Crisis != "" {
			e.flags["crisis:"+con.Crisis] = true
			flagsChanged = true
			e.notify.Notify("CRISIS: "+con.Crisis, game.SeverityDanger)
		}
	}
	if flagsChanged {
		e.persist(keyStoryFlags, e.flags)
	}

	if ev.OneTime {
		e.firedEvents[ev.ID] = true
		e.persist(keyFiredEvents, e.firedEvents)
	}
	if e.pending != nil && e.pending.ID == ev.ID {
		e.pending = nil
	}

	slog.Info("event resolved", "event", ev.ID, "choice", choice.ID, "one_time", ev.OneTime)
	return game.Result{OK: true}
}

func (e *Evaluator) requirementMet(req catalog.Requirement, view game.View) bool {
	if req.Resource != "" && view.Resources.ByKind(req.Resource) < req.Min {
		return false
	}
	if req.ResearchKey != "" && !view.CompletedResearch[req.ResearchKey] {
		return false
	}
	if req.Facility != "" && view.FacilityCounts[req.Facility] == 0 {
		return false
	}
	return true
}
