package campaign

import (
	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
)

// evalTrigger matches one declarative trigger against a consistent view of
// game state plus the story-flag store. Exhaustive over the trigger union;
// an unknown kind never fires.
func (e *Evaluator) evalTrigger(t catalog.Trigger, view game.View) bool {
	switch trig := t.(type) {
	case catalog.TimeTrigger:
		return view.Day >= trig.Day

	case catalog.ResourceTrigger:
		return view.Resources.ByKind(trig.Resource) >= trig.Min

	case catalog.FacilityCountTrigger:
		if trig.Name != "" {
			return view.FacilityCounts[trig.Name] >= max(trig.Min, 1)
		}
		return view.FacilityTotal >= trig.Min

	case catalog.SpeciesCountTrigger:
		if trig.Species != "" {
			return view.SpeciesCounts[trig.Species] >= max(trig.Min, 1)
		}
		return view.CreatureTotal >= trig.Min

	case catalog.ResearchTrigger:
		return view.CompletedResearch[trig.Key]

	case catalog.StoryFlagTrigger:
		return e.flags[trig.Flag] == trig.Value

	default:
		return false
	}
}
