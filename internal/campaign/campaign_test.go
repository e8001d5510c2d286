package campaign

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
	"github.com/talgya/xenopark/internal/persistence"
)

// recorder captures status messages for assertions.
type recorder struct {
	messages []string
}

func (r *recorder) Notify(text string, _ game.Severity) {
	r.messages = append(r.messages, text)
}

func (r *recorder) count(substr string) int {
	n := 0
	for _, m := range r.messages {
		if strings.Contains(m, substr) {
			n++
		}
	}
	return n
}

func newTestEval(t *testing.T) (*Evaluator, *game.Game, *persistence.MemoryStore, *recorder) {
	t.Helper()
	defs, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error: %v", err)
	}
	return evalWith(t, defs)
}

func evalWith(t *testing.T, defs *catalog.Catalog) (*Evaluator, *game.Game, *persistence.MemoryStore, *recorder) {
	t.Helper()
	rec := &recorder{}
	g := game.New(defs, game.BoundsForSize(game.GridMedium), 42, rec)
	store := persistence.NewMemoryStore()
	e := NewEvaluator(defs, store, g, 42, rec)
	return e, g, store, rec
}

// eventCatalog builds a minimal catalog for event-checker tests.
func eventCatalog(t *testing.T, events []catalog.Event) *catalog.Catalog {
	t.Helper()
	cat := &catalog.Catalog{
		Scenarios: []catalog.Scenario{{
			ID:   "test-run",
			Name: "Test Run",
			Objectives: []catalog.Objective{
				{ID: "never", Type: catalog.ObjectiveTimeSurvived, Target: 9999, Required: true},
			},
		}},
		Events: events,
	}
	cat.BuildIndexes()
	return cat
}

func choices() []catalog.Choice {
	return []catalog.Choice{{ID: "ok", Label: "Acknowledge"}}
}

func TestObjectiveCompletesExactlyOnce(t *testing.T) {
	e, g, _, rec := newTestEval(t)
	if res := e.StartScenario("grand-opening"); !res.OK {
		t.Fatalf("StartScenario rejected: %s", res.Reason)
	}

	// Revenue objective: target 10,000; starting credits are below it.
	e.EvaluateObjectives()
	if rec.count("Accumulate") != 0 {
		t.Fatal("revenue objective fired below target")
	}

	g.ApplyPatch(game.Patch{Credits: intp(10_000)})
	e.EvaluateObjectives()
	e.EvaluateObjectives()
	e.EvaluateObjectives()
	if got := rec.count("Accumulate"); got != 1 {
		t.Errorf("revenue objective fired %d times, want exactly once", got)
	}
}

func intp(v int) *int { return &v }

func TestScenarioCompletionAppliesReward(t *testing.T) {
	e, g, _, _ := newTestEval(t)
	e.StartScenario("grand-opening")

	defs := mustDefs(t)
	lab, _ := defs.FacilityByName("Research Lab")
	drone, _ := defs.SpeciesByName("Drone")

	g.GrantResearchKey("Drone")
	g.PlaceFacility(lab, game.Position{Row: 0, Col: 0})
	g.PlaceCreature(drone, game.Position{Row: 1, Col: 1})
	g.ApplyPatch(game.Patch{Visitors: intp(120)})

	before := g.Resources()
	e.EvaluateObjectives()

	if e.ActiveScenario() != "" {
		t.Error("scenario should be cleared after all required objectives complete")
	}
	after := g.Resources()
	if after.Credits != before.Credits+5000 {
		t.Errorf("credits = %d, want reward %d", after.Credits, before.Credits+5000)
	}
	if after.Research != before.Research+200 {
		t.Errorf("research = %d, want reward %d", after.Research, before.Research+200)
	}

	done := e.CampaignProgress().ScenariosCompleted
	if len(done) != 1 || done[0] != "grand-opening" {
		t.Errorf("completed scenarios = %v", done)
	}
}

func mustDefs(t *testing.T) *catalog.Catalog {
	t.Helper()
	defs, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error: %v", err)
	}
	return defs
}

func TestEventsRequireActiveScenario(t *testing.T) {
	cat := eventCatalog(t, []catalog.Event{{
		ID: "always", Trigger: catalog.TimeTrigger{Day: 1}, Choices: choices(),
	}})
	e, _, _, _ := evalWith(t, cat)

	if ev := e.CheckForEvents(); ev != nil {
		t.Errorf("CheckForEvents = %v without an active scenario, want nil", ev.ID)
	}

	e.StartScenario("test-run")
	if ev := e.CheckForEvents(); ev == nil || ev.ID != "always" {
		t.Error("qualifying event not surfaced while scenario active")
	}
}

func TestEventPriorityAndDeclarationOrder(t *testing.T) {
	cat := eventCatalog(t, []catalog.Event{
		{ID: "low-first", Trigger: catalog.TimeTrigger{Day: 1}, Priority: catalog.PriorityLow, Choices: choices()},
		{ID: "crit", Trigger: catalog.TimeTrigger{Day: 1}, Priority: catalog.PriorityCritical, Choices: choices()},
		{ID: "crit-later", Trigger: catalog.TimeTrigger{Day: 1}, Priority: catalog.PriorityCritical, Choices: choices()},
	})
	e, _, _, _ := evalWith(t, cat)
	e.StartScenario("test-run")

	ev := e.CheckForEvents()
	if ev == nil || ev.ID != "crit" {
		t.Fatalf("surfaced %v, want highest priority with earliest declaration winning ties", ev)
	}
}

func TestPendingEventStaysUntilResolved(t *testing.T) {
	cat := eventCatalog(t, []catalog.Event{
		{ID: "first", Trigger: catalog.TimeTrigger{Day: 1}, Priority: catalog.PriorityLow, Choices: choices()},
		{ID: "second", Trigger: catalog.TimeTrigger{Day: 1}, Priority: catalog.PriorityCritical, Choices: choices()},
	})
	e, _, _, _ := evalWith(t, cat)
	e.StartScenario("test-run")

	ev := e.CheckForEvents()
	if ev == nil {
		t.Fatal("no event surfaced")
	}
	again := e.CheckForEvents()
	if again == nil || again.ID != ev.ID {
		t.Errorf("pending event changed from %q to %v before resolution", ev.ID, again)
	}

	if res := e.ResolveEvent(ev.ID, "ok"); !res.OK {
		t.Fatalf("ResolveEvent rejected: %s", res.Reason)
	}
	if e.PendingEvent() != nil {
		t.Error("pending event not cleared after resolution")
	}
}

func TestOneTimeEventNeverRefires(t *testing.T) {
	cat := eventCatalog(t, []catalog.Event{{
		ID: "once", Trigger: catalog.TimeTrigger{Day: 1}, OneTime: true, Choices: choices(),
	}})
	e, g, store, _ := evalWith(t, cat)
	e.StartScenario("test-run")

	ev := e.CheckForEvents()
	if ev == nil || ev.ID != "once" {
		t.Fatal("one-time event did not surface the first time")
	}
	if res := e.ResolveEvent("once", "ok"); !res.OK {
		t.Fatalf("ResolveEvent rejected: %s", res.Reason)
	}

	for i := 0; i < 5; i++ {
		if ev := e.CheckForEvents(); ev != nil {
			t.Fatalf("resolved one-time event re-surfaced on cycle %d", i)
		}
	}

	// A full game reset does not clear event history.
	g.Reset()
	if ev := e.CheckForEvents(); ev != nil {
		t.Error("one-time event re-surfaced after game reset")
	}

	// Nor does a fresh evaluator over the same store.
	e2 := NewEvaluator(cat, store, g, 42, nil)
	if ev := e2.CheckForEvents(); ev != nil {
		t.Error("one-time event re-surfaced in a new session over the same store")
	}

	// Only an explicit campaign wipe brings it back.
	e2.ClearCampaign()
	e2.StartScenario("test-run")
	if ev := e2.CheckForEvents(); ev == nil {
		t.Error("event should be eligible again after ClearCampaign")
	}
}

func TestResolveEventRequirements(t *testing.T) {
	cat := eventCatalog(t, []catalog.Event{{
		ID:      "guarded",
		Trigger: catalog.TimeTrigger{Day: 1},
		Choices: []catalog.Choice{{
			ID: "gated",
			Requirements: []catalog.Requirement{
				{Facility: "Security Station"},
				{Resource: "credits", Min: 1000},
			},
			Consequences: []catalog.Consequence{{Resource: "credits", Delta: -500}},
		}},
	}})
	e, g, _, _ := evalWith(t, cat)
	e.StartScenario("test-run")
	e.CheckForEvents()

	if res := e.ResolveEvent("guarded", "gated"); res.OK || res.Reason != game.ReasonRequirementNotMet {
		t.Fatalf("ResolveEvent = %+v, want requirement rejection", res)
	}
	if e.PendingEvent() == nil {
		t.Error("rejected resolution must leave the event pending")
	}

	if res := e.ResolveEvent("guarded", "missing-choice"); res.OK || res.Reason != game.ReasonNotFound {
		t.Errorf("unknown choice = %+v, want not-found rejection", res)
	}

	// Rejected resolutions leave resources untouched.
	if g.Resources().Credits != 5000 {
		t.Errorf("credits = %d, want untouched 5000", g.Resources().Credits)
	}
}

func TestResolveEventConsequencesAndFlags(t *testing.T) {
	cat := eventCatalog(t, []catalog.Event{{
		ID:      "deal",
		Trigger: catalog.TimeTrigger{Day: 1},
		Choices: []catalog.Choice{{
			ID: "accept",
			Consequences: []catalog.Consequence{
				{Resource: "credits", Delta: 2500},
				{UnlockSpecies: "Runner"},
				{Flag: "made-a-deal", FlagValue: true},
				{Crisis: "lockdown"},
			},
		}},
	}})
	e, g, store, _ := evalWith(t, cat)
	e.StartScenario("test-run")
	e.CheckForEvents()

	before := g.Resources().Credits
	if res := e.ResolveEvent("deal", "accept"); !res.OK {
		t.Fatalf("ResolveEvent rejected: %s", res.Reason)
	}

	if got := g.Resources().Credits; got != before+2500 {
		t.Errorf("credits = %d, want %d", got, before+2500)
	}
	if !g.CompletedResearch("Runner") {
		t.Error("unlock consequence should append to completed research")
	}
	if !e.StoryFlag("made-a-deal") {
		t.Error("story flag not recorded")
	}
	if !e.StoryFlag("crisis:lockdown") {
		t.Error("crisis flag not recorded")
	}

	// Flags persist across evaluator instances.
	e2 := NewEvaluator(cat, store, g, 1, nil)
	if !e2.StoryFlag("made-a-deal") {
		t.Error("story flag lost on reload")
	}
}

func TestSurvivalEventObjective(t *testing.T) {
	cat := &catalog.Catalog{
		Scenarios: []catalog.Scenario{{
			ID: "breach-run",
			Objectives: []catalog.Objective{
				{ID: "survive", Type: catalog.ObjectiveSurvivalEvent, TargetKey: "breach-survived", Required: true},
			},
		}},
	}
	cat.BuildIndexes()
	e, _, _, _ := evalWith(t, cat)
	e.StartScenario("breach-run")

	e.EvaluateObjectives()
	if e.ActiveScenario() == "" {
		t.Fatal("scenario completed without the survival flag")
	}

	e.SetStoryFlag("breach-survived", true)
	e.EvaluateObjectives()
	if e.ActiveScenario() != "" {
		t.Error("survival-event objective should complete once the flag is set")
	}
}

func TestAchievementsUnlockAndMerge(t *testing.T) {
	e, g, store, _ := newTestEval(t)

	g.GrantResearchKey("Drone")
	drone, _ := mustDefs(t).SpeciesByName("Drone")
	g.PlaceCreature(drone, game.Position{Row: 0, Col: 0})

	e.EvaluateAchievements()
	st := e.Achievements()["first-blood"]
	if !st.Unlocked || st.UnlockedAt == nil {
		t.Fatalf("first-blood = %+v, want unlocked with timestamp", st)
	}

	// Unlock state survives into a fresh evaluator; records for
	// achievements no longer in the catalog are dropped.
	store.Set("achievements", mustJSON(t, map[string]AchievementState{
		"first-blood": st,
		"ghost-ach":   {Unlocked: true},
	}))
	e2 := NewEvaluator(mustDefs(t), store, g, 1, nil)
	if !e2.Achievements()["first-blood"].Unlocked {
		t.Error("stored unlock lost on merge")
	}
	if _, ok := e2.Achievements()["ghost-ach"]; ok {
		t.Error("stale achievement record survived the catalog merge")
	}

	// Re-evaluation never re-fires an unlocked achievement.
	rec := &recorder{}
	e3 := NewEvaluator(mustDefs(t), store, g, 1, rec)
	e3.EvaluateAchievements()
	if rec.count("First Specimen") != 0 {
		t.Error("unlocked achievement re-fired")
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
