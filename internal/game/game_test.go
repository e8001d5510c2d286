package game

import (
	"reflect"
	"testing"

	"github.com/talgya/xenopark/internal/catalog"
)

func newTestGame(t *testing.T) *Game {
	t.Helper()
	defs, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default() error: %v", err)
	}
	return New(defs, BoundsForSize(GridMedium), 42, nil)
}

func mustFacility(t *testing.T, g *Game, name string) *catalog.Facility {
	t.Helper()
	def, ok := g.defs.FacilityByName(name)
	if !ok {
		t.Fatalf("facility %q missing from catalog", name)
	}
	return def
}

func mustSpecies(t *testing.T, g *Game, name string) *catalog.Species {
	t.Helper()
	sp, ok := g.defs.SpeciesByName(name)
	if !ok {
		t.Fatalf("species %q missing from catalog", name)
	}
	return sp
}

func TestPlaceFacilityDebitsCreditsAndPower(t *testing.T) {
	g := newTestGame(t)
	lab := mustFacility(t, g, "Research Lab")

	before := g.Resources()
	res := g.PlaceFacility(lab, Position{Row: 2, Col: 3})
	if !res.OK {
		t.Fatalf("PlaceFacility rejected: %s", res.Reason)
	}

	after := g.Resources()
	if after.Credits != before.Credits-lab.Cost {
		t.Errorf("credits = %d, want %d", after.Credits, before.Credits-lab.Cost)
	}
	if after.Power != before.Power-lab.PowerRequirement {
		t.Errorf("power = %d, want %d", after.Power, before.Power-lab.PowerRequirement)
	}
	if !g.IsOccupied(2, 3) {
		t.Error("cell (2,3) should be occupied")
	}

	// Any second placement on the same cell is rejected with no state change.
	snap := g.Snapshot()
	res = g.PlaceFacility(mustFacility(t, g, "Gift Shop"), Position{Row: 2, Col: 3})
	if res.OK || res.Reason != ReasonOccupied {
		t.Errorf("second placement = %+v, want occupied rejection", res)
	}
	if !reflect.DeepEqual(snap, g.Snapshot()) {
		t.Error("rejected placement mutated state")
	}
}

func TestPlaceFacilityRejections(t *testing.T) {
	g := newTestGame(t)
	lab := mustFacility(t, g, "Research Lab")

	tests := []struct {
		name   string
		setup  func()
		pos    Position
		reason Reason
	}{
		{
			name:   "out of bounds",
			setup:  func() {},
			pos:    Position{Row: -1, Col: 0},
			reason: ReasonOutOfBounds,
		},
		{
			name:   "beyond grid",
			setup:  func() {},
			pos:    Position{Row: 100, Col: 100},
			reason: ReasonOutOfBounds,
		},
		{
			name:   "insufficient credits",
			setup:  func() { g.ApplyPatch(Patch{Credits: intPtr(100)}) },
			pos:    Position{Row: 0, Col: 0},
			reason: ReasonInsufficientCredits,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			res := g.PlaceFacility(lab, tt.pos)
			if res.OK || res.Reason != tt.reason {
				t.Errorf("PlaceFacility = %+v, want rejection %s", res, tt.reason)
			}
		})
	}
}

func TestOccupancyUniqueness(t *testing.T) {
	g := newTestGame(t)
	g.ApplyPatch(Patch{Credits: intPtr(1_000_000)})
	g.GrantResearchKey("Drone")

	shop := mustFacility(t, g, "Gift Shop")
	drone := mustSpecies(t, g, "Drone")

	// Interleave facility and creature placements, some on already-taken
	// cells; the occupancy namespace must stay unified.
	for i := 0; i < 40; i++ {
		pos := Position{Row: i % 6, Col: (i * 7) % 9}
		if i%2 == 0 {
			g.PlaceFacility(shop, pos)
		} else {
			g.PlaceCreature(drone, pos)
		}
	}

	seen := map[Position]bool{}
	for _, f := range g.Facilities() {
		if seen[f.Position] {
			t.Fatalf("two entities share cell %+v", f.Position)
		}
		seen[f.Position] = true
	}
	for _, c := range g.Creatures() {
		if seen[c.Position] {
			t.Fatalf("two entities share cell %+v", c.Position)
		}
		seen[c.Position] = true
	}
}

func TestPlaceCreatureRequiresResearch(t *testing.T) {
	g := newTestGame(t)
	queen := mustSpecies(t, g, "Queen")

	res := g.PlaceCreature(queen, Position{Row: 1, Col: 1})
	if res.OK || res.Reason != ReasonUnresearched {
		t.Fatalf("PlaceCreature = %+v, want unresearched rejection", res)
	}

	g.GrantResearchKey("Queen")
	res = g.PlaceCreature(queen, Position{Row: 1, Col: 1})
	if !res.OK {
		t.Fatalf("PlaceCreature rejected after research: %s", res.Reason)
	}

	creatures := g.Creatures()
	if len(creatures) != 1 {
		t.Fatalf("creatures = %d, want 1", len(creatures))
	}
	if creatures[0].ContainmentLevel != queen.ContainmentDifficulty {
		t.Errorf("containment = %d, want seeded from species difficulty %d",
			creatures[0].ContainmentLevel, queen.ContainmentDifficulty)
	}
}

func TestRemoveFacilityRefundsHalfRoundedDown(t *testing.T) {
	g := newTestGame(t)
	lab := mustFacility(t, g, "Research Lab")
	g.PlaceFacility(lab, Position{Row: 0, Col: 0})

	before := g.Resources().Credits
	id := g.Facilities()[0].ID
	res := g.RemoveFacility(id)
	if !res.OK {
		t.Fatalf("RemoveFacility rejected: %s", res.Reason)
	}
	if got, want := g.Resources().Credits, before+lab.Cost/2; got != want {
		t.Errorf("credits = %d, want %d (refund floor(cost/2))", got, want)
	}
	if g.IsOccupied(0, 0) {
		t.Error("cell should be free after removal")
	}

	if res := g.RemoveFacility("no-such-id"); res.OK || res.Reason != ReasonNotFound {
		t.Errorf("removing unknown id = %+v, want not-found no-op", res)
	}
}

func TestRemoveCreatureNoRefund(t *testing.T) {
	g := newTestGame(t)
	g.GrantResearchKey("Drone")
	g.PlaceCreature(mustSpecies(t, g, "Drone"), Position{Row: 3, Col: 3})

	before := g.Resources().Credits
	id := g.Creatures()[0].ID
	if res := g.RemoveCreature(id); !res.OK {
		t.Fatalf("RemoveCreature rejected: %s", res.Reason)
	}
	if got := g.Resources().Credits; got != before {
		t.Errorf("credits = %d, want unchanged %d (no creature refund)", got, before)
	}
}

func TestPowerGeneratorRaisesCeiling(t *testing.T) {
	g := newTestGame(t)
	gen := mustFacility(t, g, "Power Generator")

	before := g.Resources().MaxPower
	g.PlaceFacility(gen, Position{Row: 5, Col: 5})
	if got := g.Resources().MaxPower; got != before+powerGeneratorBonus {
		t.Errorf("max power = %d, want %d", got, before+powerGeneratorBonus)
	}
}

func TestPatchMergeRetainsOmittedFields(t *testing.T) {
	r := defaultResources()
	credits := r.Credits
	r.Apply(Patch{Visitors: intPtr(150)})
	if r.Visitors != 150 {
		t.Errorf("visitors = %d, want 150", r.Visitors)
	}
	if r.Credits != credits {
		t.Errorf("credits = %d, want untouched %d", r.Credits, credits)
	}
}

func TestResearchAvailabilityDerivation(t *testing.T) {
	g := newTestGame(t)
	g.GrantResearchKey("Drone")

	if !g.NodeAvailable("Warrior") {
		t.Error("Warrior should be available with Drone completed")
	}
	if g.NodeAvailable("Queen") {
		t.Error("Queen should be locked without Praetorian and Predalien")
	}

	g.GrantResearchKey("Praetorian")
	g.GrantResearchKey("Predalien")
	if !g.NodeAvailable("Queen") {
		t.Error("Queen should become available after every prerequisite completes")
	}
}

func TestResearchSingleSlot(t *testing.T) {
	g := newTestGame(t)
	g.ApplyPatch(Patch{Credits: intPtr(100_000), Research: intPtr(10_000)})
	g.GrantResearchKey("Drone")

	if res := g.StartResearch("Warrior"); !res.OK {
		t.Fatalf("StartResearch(Warrior) rejected: %s", res.Reason)
	}
	if res := g.StartResearch("Runner"); res.OK || res.Reason != ReasonResearchBusy {
		t.Fatalf("StartResearch(Runner) = %+v, want busy rejection", res)
	}
	if got := g.ResearchView().InProgress; got != "Warrior" {
		t.Errorf("in progress = %q, want Warrior", got)
	}

	inProgress := 0
	for id, np := range g.ResearchView().Nodes {
		if np.InProgress {
			inProgress++
			if id != "Warrior" {
				t.Errorf("unexpected in-progress node %q", id)
			}
		}
	}
	if inProgress != 1 {
		t.Errorf("in-progress nodes = %d, want exactly 1", inProgress)
	}
}

func TestStartResearchRejections(t *testing.T) {
	g := newTestGame(t)
	g.ApplyPatch(Patch{Credits: intPtr(100_000), Research: intPtr(10_000)})

	if res := g.StartResearch("Warrior"); res.OK || res.Reason != ReasonLocked {
		t.Errorf("locked node = %+v, want locked rejection", res)
	}
	if res := g.StartResearch("nonexistent"); res.OK || res.Reason != ReasonNotFound {
		t.Errorf("unknown node = %+v, want not-found rejection", res)
	}

	g.GrantResearchKey("Drone")
	if res := g.StartResearch("Drone"); res.OK || res.Reason != ReasonAlreadyCompleted {
		t.Errorf("completed node = %+v, want already-completed rejection", res)
	}

	g.ApplyPatch(Patch{Credits: intPtr(0)})
	if res := g.StartResearch("Warrior"); res.OK || res.Reason != ReasonInsufficientCredits {
		t.Errorf("broke start = %+v, want insufficient-credits rejection", res)
	}
}

func TestResearchCompletesThroughTicks(t *testing.T) {
	g := newTestGame(t)
	g.ApplyPatch(Patch{Credits: intPtr(100_000), Research: intPtr(10_000)})

	if res := g.StartResearch("Drone"); !res.OK {
		t.Fatalf("StartResearch(Drone) rejected: %s", res.Reason)
	}

	// Progress accrues 5-15 per hour; a few in-game days is ample.
	for i := 0; i < TicksPerHour*24*3; i++ {
		g.Tick()
		if g.ResearchView().Nodes["Drone"].Completed {
			break
		}
	}

	rv := g.ResearchView()
	np := rv.Nodes["Drone"]
	if !np.Completed || np.InProgress || np.Progress != 100 {
		t.Fatalf("Drone node = %+v, want completed at exactly 100 with slot cleared", np)
	}
	if rv.InProgress != "" {
		t.Errorf("global slot = %q, want empty", rv.InProgress)
	}
	if !g.CompletedResearch("Drone") {
		t.Error("Drone should be in completed list")
	}
}

func TestClockSuspension(t *testing.T) {
	g := newTestGame(t)

	g.SetPaused(true)
	for i := 0; i < TicksPerHour*3; i++ {
		g.Tick()
	}
	if g.Hour() != 8 || g.Day() != 1 {
		t.Errorf("paused clock advanced to day %d hour %d", g.Day(), g.Hour())
	}

	g.SetPaused(false)
	g.SetMode(ModeHorror)
	for i := 0; i < TicksPerHour*3; i++ {
		g.Tick()
	}
	if g.Hour() != 8 {
		t.Errorf("horror-mode clock advanced to hour %d", g.Hour())
	}

	g.SetMode(ModePark)
	for i := 0; i < TicksPerHour; i++ {
		g.Tick()
	}
	if g.Hour() != 9 {
		t.Errorf("hour = %d, want 9 after one full hour of ticks", g.Hour())
	}
}

func TestDayRolloverRecordsDailyRevenue(t *testing.T) {
	g := newTestGame(t)
	g.ApplyPatch(Patch{Credits: intPtr(50_000)})
	g.PlaceFacility(mustFacility(t, g, "Visitor Center"), Position{Row: 0, Col: 0})

	start := g.Day()
	for g.Day() == start {
		g.Tick()
	}
	if g.Hour() != 0 {
		t.Errorf("hour = %d, want 0 after rollover", g.Hour())
	}
	if g.Resources().DailyRevenue <= 0 {
		t.Error("daily revenue should be recorded at rollover")
	}
}

func TestUndoRedoSymmetry(t *testing.T) {
	g := newTestGame(t)
	lab := mustFacility(t, g, "Research Lab")

	if g.CanUndo() || g.CanRedo() {
		t.Fatal("fresh game should have empty history")
	}
	if g.Undo() || g.Redo() {
		t.Fatal("undo/redo on empty stacks must be no-ops")
	}

	pre := g.Snapshot()
	g.PlaceFacility(lab, Position{Row: 4, Col: 4})
	post := g.Snapshot()

	if !g.CanUndo() {
		t.Fatal("CanUndo should report true after a mutation")
	}
	if !g.Undo() {
		t.Fatal("Undo failed")
	}
	if !reflect.DeepEqual(g.Snapshot(), pre) {
		t.Error("undo did not restore the pre-action state")
	}
	if !g.CanRedo() {
		t.Fatal("CanRedo should report true after an undo")
	}
	if !g.Redo() {
		t.Fatal("Redo failed")
	}
	if !reflect.DeepEqual(g.Snapshot(), post) {
		t.Error("redo did not restore the exact post-action state")
	}
}

func TestNewActionClearsRedo(t *testing.T) {
	g := newTestGame(t)
	shop := mustFacility(t, g, "Gift Shop")

	g.PlaceFacility(shop, Position{Row: 0, Col: 0})
	g.Undo()
	if !g.CanRedo() {
		t.Fatal("redo stack should hold the undone action")
	}
	g.PlaceFacility(shop, Position{Row: 1, Col: 1})
	if g.CanRedo() {
		t.Error("a new action after undo must discard the redo branch")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	g := newTestGame(t)
	g.GrantResearchKey("Drone")
	g.PlaceFacility(mustFacility(t, g, "Research Lab"), Position{Row: 2, Col: 2})
	g.PlaceCreature(mustSpecies(t, g, "Drone"), Position{Row: 3, Col: 3})

	snap := g.Snapshot()
	g.Reset()
	if len(g.Facilities()) != 0 {
		t.Fatal("reset should clear placements")
	}

	g.Restore(snap)
	if !reflect.DeepEqual(g.Snapshot(), snap) {
		t.Error("restore did not reproduce the snapshot exactly")
	}
	if !g.IsOccupied(2, 2) || !g.IsOccupied(3, 3) {
		t.Error("occupancy index not rebuilt on restore")
	}
}
