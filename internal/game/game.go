package game

import (
	"log/slog"
	"math/rand"
	"sync"

	"github.com/talgya/xenopark/internal/catalog"
)

// Mode is the active play mode. The clock only advances in park mode;
// horror mode suspends the simulation entirely.
type Mode string

const (
	ModePark   Mode = "park"
	ModeHorror Mode = "horror"
)

// Severity classifies status messages pushed to the UI.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
)

// Notifier is the injected status-message sink. Fire-and-forget; the core
// never depends on it being observed.
type Notifier interface {
	Notify(text string, severity Severity)
}

// NopNotifier discards all messages. Used in tests and headless runs.
type NopNotifier struct{}

func (NopNotifier) Notify(string, Severity) {}

// Game owns the complete mutable park state. All components read and write
// it through its methods; each public method takes the lock once so every
// operation is one atomic transition.
type Game struct {
	mu     sync.Mutex
	defs   *catalog.Catalog
	bounds Bounds
	rng    *rand.Rand
	notify Notifier
	wx     *Weather

	res        Resources
	facilities []PlacedFacility
	creatures  []PlacedCreature
	research   ResearchState
	unlocks    []string // facility/bonus unlock ledger from research and rewards

	day        int
	hour       int
	tickInHour int
	mode       Mode
	paused     bool
	playTicks  uint64

	revenueToday     int
	selectedFacility string
	selectedSpecies  string

	occupied map[Position]string // cell -> entity id, facilities and creatures share one namespace
	history  *History
}

// New creates a game seeded with fresh defaults.
func New(defs *catalog.Catalog, bounds Bounds, seed int64, notify Notifier) *Game {
	if notify == nil {
		notify = NopNotifier{}
	}
	g := &Game{
		defs:   defs,
		bounds: bounds,
		rng:    rand.New(rand.NewSource(seed)),
		notify: notify,
		wx:     newWeather(seed),
	}
	g.resetLocked()
	return g
}

// Reset replaces the live state wholesale with fresh defaults. Campaign
// bookkeeping (one-time events, achievements) lives elsewhere and survives.
func (g *Game) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resetLocked()
	slog.Info("game reset", "credits", g.res.Credits, "grid_rows", g.bounds.Rows, "grid_cols", g.bounds.Cols)
}

func (g *Game) resetLocked() {
	g.res = defaultResources()
	g.facilities = nil
	g.creatures = nil
	g.research = newResearchState(g.defs)
	g.unlocks = nil
	g.day = 1
	g.hour = 8
	g.tickInHour = 0
	g.mode = ModePark
	g.paused = false
	g.playTicks = 0
	g.revenueToday = 0
	g.selectedFacility = ""
	g.selectedSpecies = ""
	g.occupied = make(map[Position]string)
	g.history = newHistory(historyLimit)
}

// Resources returns a copy of the current ledger values.
func (g *Game) Resources() Resources {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.res
}

// ApplyPatch shallow-merges a partial resource update into the ledger.
// Total over any patch; no bounds validation (callers pre-check).
func (g *Game) ApplyPatch(p Patch) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.res.Apply(p)
}

// Day returns the current in-game day (≥ 1).
func (g *Game) Day() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.day
}

// Hour returns the current in-game hour (0–23).
func (g *Game) Hour() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hour
}

// Mode returns the active play mode.
func (g *Game) Mode() Mode {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mode
}

// SetMode switches between park and horror mode.
func (g *Game) SetMode(m Mode) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.mode = m
}

// SetPaused pauses or resumes the clock.
func (g *Game) SetPaused(paused bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.paused = paused
}

// Paused reports whether the clock is suspended.
func (g *Game) Paused() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.paused
}

// PlayTicks returns the number of ticks processed this run.
func (g *Game) PlayTicks() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.playTicks
}

// SelectFacility marks a catalog facility as the active placement choice.
func (g *Game) SelectFacility(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selectedFacility = name
}

// SelectSpecies marks a catalog species as the active placement choice.
func (g *Game) SelectSpecies(name string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.selectedSpecies = name
}

// View is a consistent read of everything the objective/event evaluator
// needs, taken under one lock.
type View struct {
	Resources         Resources
	Day               int
	FacilityTotal     int
	CreatureTotal     int
	FacilityCounts    map[string]int
	SpeciesCounts     map[string]int
	CompletedResearch map[string]bool
}

// Snapshot of evaluator-relevant state in a single atomic read.
func (g *Game) EvalView() View {
	g.mu.Lock()
	defer g.mu.Unlock()

	v := View{
		Resources:         g.res,
		Day:               g.day,
		FacilityTotal:     len(g.facilities),
		CreatureTotal:     len(g.creatures),
		FacilityCounts:    make(map[string]int, len(g.facilities)),
		SpeciesCounts:     make(map[string]int, len(g.creatures)),
		CompletedResearch: make(map[string]bool, len(g.research.Completed)),
	}
	for _, f := range g.facilities {
		v.FacilityCounts[f.Name]++
	}
	for _, c := range g.creatures {
		v.SpeciesCounts[c.Species.Name]++
	}
	for _, key := range g.research.Completed {
		v.CompletedResearch[key] = true
	}
	return v
}

// ApplyConsequences applies the resource deltas and unlock grants of an
// event choice in one atomic transition. Story flags and crisis markers are
// the campaign layer's concern and are skipped here.
func (g *Game) ApplyConsequences(cons []catalog.Consequence) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, con := range cons {
		if con.Resource != "" {
			g.res.addKind(con.Resource, con.Delta)
		}
		if con.UnlockSpecies != "" {
			g.grantResearchKeyLocked(con.UnlockSpecies)
		}
		if con.UnlockFacility != "" {
			g.grantUnlockLocked(con.UnlockFacility)
		}
	}
}

// GrantResearchKey appends a key to the completed research list with set
// semantics. Used by scenario rewards and event consequences.
func (g *Game) GrantResearchKey(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grantResearchKeyLocked(key)
}

// GrantUnlock records a facility/bonus key in the unlock ledger.
func (g *Game) GrantUnlock(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.grantUnlockLocked(key)
}

func (g *Game) grantUnlockLocked(key string) {
	for _, u := range g.unlocks {
		if u == key {
			return
		}
	}
	g.unlocks = append(g.unlocks, key)
}
