package campaign

import (
	"fmt"
	"log/slog"

	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
)

// EvaluateObjectives re-checks every objective of the active scenario
// against a single consistent view of game state. Each objective completes
// at most once; re-satisfying a completed objective never re-fires it.
// When every required objective is complete the scenario finishes and its
// rewards are applied.
func (e *Evaluator) EvaluateObjectives() {
	view := e.g.EvalView()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active == "" {
		return
	}
	sc, ok := e.defs.ScenarioByID(e.active)
	if !ok {
		return
	}

	changed := false
	for _, obj := range sc.Objectives {
		key := sc.ID + "/" + obj.ID
		if e.objectives[key] {
			continue
		}
		if !e.objectiveMet(obj, view) {
			continue
		}
		e.objectives[key] = true
		changed = true
		slog.Info("objective completed", "scenario", sc.ID, "objective", obj.ID)
		e.notify.Notify("Objective complete: "+obj.Description, game.SeveritySuccess)
	}
	if changed {
		e.persist(keyObjectives, e.objectives)
	}

	for _, obj := range sc.Objectives {
		if obj.Required && !e.objectives[sc.ID+"/"+obj.ID] {
			return
		}
	}
	e.completeScenarioLocked(sc)
}

// ObjectiveStates returns completion by objective id for the active
// scenario. Empty when no scenario is running.
func (e *Evaluator) ObjectiveStates() map[string]bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := map[string]bool{}
	if e.active == "" {
		return out
	}
	sc, ok := e.defs.ScenarioByID(e.active)
	if !ok {
		return out
	}
	for _, obj := range sc.Objectives {
		out[obj.ID] = e.objectives[sc.ID+"/"+obj.ID]
	}
	return out
}

// objectiveMet evaluates one objective's type-specific predicate.
func (e *Evaluator) objectiveMet(obj catalog.Objective, view game.View) bool {
	switch obj.Type {
	case catalog.ObjectiveFacilityCount:
		if obj.TargetKey != "" {
			return view.FacilityCounts[obj.TargetKey] >= max(obj.Target, 1)
		}
		return view.FacilityTotal >= obj.Target

	case catalog.ObjectiveSpeciesCount:
		if obj.TargetKey != "" {
			return view.SpeciesCounts[obj.TargetKey] >= max(obj.Target, 1)
		}
		return view.CreatureTotal >= obj.Target

	case catalog.ObjectiveRevenue:
		return view.Resources.Credits >= obj.Target || view.Resources.DailyRevenue >= obj.Target

	case catalog.ObjectiveVisitors:
		return view.Resources.Visitors >= obj.Target

	case catalog.ObjectiveResearch:
		if obj.TargetKey != "" && view.CompletedResearch[obj.TargetKey] {
			return true
		}
		return obj.Target > 0 && view.Resources.Research >= obj.Target

	case catalog.ObjectiveTimeSurvived:
		return view.Day >= obj.Target

	case catalog.ObjectiveSurvivalEvent:
		return e.flags[obj.TargetKey]

	default:
		return false
	}
}

// completeScenarioLocked applies the scenario reward and clears the active
// marker. Runs at most once per scenario per campaign.
func (e *Evaluator) completeScenarioLocked(sc *catalog.Scenario) {
	for _, done := range e.progress.ScenariosCompleted {
		if done == sc.ID {
			e.active = ""
			e.persist(keyActive, e.active)
			return
		}
	}

	var cons []catalog.Consequence
	if sc.Reward.Credits != 0 {
		cons = append(cons, catalog.Consequence{Resource: "credits", Delta: sc.Reward.Credits})
	}
	if sc.Reward.ResearchPoints != 0 {
		cons = append(cons, catalog.Consequence{Resource: "research", Delta: sc.Reward.ResearchPoints})
	}
	for _, sp := range sc.Reward.UnlockSpecies {
		cons = append(cons, catalog.Consequence{UnlockSpecies: sp})
	}
	for _, f := range sc.Reward.UnlockFacilities {
		cons = append(cons, catalog.Consequence{UnlockFacility: f})
	}
	e.g.ApplyConsequences(cons)

	e.progress.ScenariosCompleted = append(e.progress.ScenariosCompleted, sc.ID)
	e.persist(keyProgress, e.progress)
	e.active = ""
	e.persist(keyActive, e.active)

	slog.Info("scenario completed", "scenario", sc.ID)
	e.notify.Notify(fmt.Sprintf("Scenario complete: %s", sc.Name), game.SeveritySuccess)
}
