// Package campaign evaluates scenario objectives, story events and
// achievements against the live game state. Its bookkeeping (one-time
// event history, story flags, unlock progress) lives in its own storage
// namespace, separate from save slots, and survives a game reset.
package campaign

import (
	"encoding/json"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/talgya/xenopark/internal/catalog"
	"github.com/talgya/xenopark/internal/game"
	"github.com/talgya/xenopark/internal/persistence"
)

// Storage keys for the campaign namespace. Not part of any save slot;
// cleared only by ClearCampaign.
const (
	keyActive       = "campaign-active"
	keyObjectives   = "campaign-objectives"
	keyFiredEvents  = "campaign-events-fired"
	keyStoryFlags   = "campaign-flags"
	keyProgress     = "campaign-progress"
	keyAchievements = "achievements"
)

// AchievementState is the persisted unlock record for one achievement.
type AchievementState struct {
	Unlocked   bool       `json:"unlocked"`
	UnlockedAt *time.Time `json:"unlockedAt,omitempty"`
	Progress   int        `json:"progress"`
}

// Progress is the cross-session campaign statistics ledger.
type Progress struct {
	ScenariosCompleted []string `json:"scenariosCompleted"`
	PeakVisitors       int      `json:"peakVisitors"`
	TotalRevenue       int      `json:"totalRevenue"`
	DaysPlayed         int      `json:"daysPlayed"`
}

// Evaluator polls game state against the catalog's declarative triggers.
type Evaluator struct {
	mu     sync.Mutex
	defs   *catalog.Catalog
	store  persistence.Store
	g      *game.Game
	rng    *rand.Rand
	notify game.Notifier

	active       string // active scenario id, "" when none
	objectives   map[string]bool
	firedEvents  map[string]bool
	flags        map[string]bool
	achievements map[string]AchievementState
	progress     Progress

	pending *catalog.Event // surfaced, unresolved event
}

// NewEvaluator restores campaign bookkeeping from the store and binds the
// evaluator to a game.
func NewEvaluator(defs *catalog.Catalog, store persistence.Store, g *game.Game, seed int64, notify game.Notifier) *Evaluator {
	if notify == nil {
		notify = game.NopNotifier{}
	}
	e := &Evaluator{
		defs:         defs,
		store:        store,
		g:            g,
		rng:          rand.New(rand.NewSource(seed)),
		notify:       notify,
		objectives:   map[string]bool{},
		firedEvents:  map[string]bool{},
		flags:        map[string]bool{},
		achievements: map[string]AchievementState{},
	}
	e.load()
	return e
}

func (e *Evaluator) load() {
	loadJSON(e.store, keyActive, &e.active)
	loadJSON(e.store, keyObjectives, &e.objectives)
	loadJSON(e.store, keyFiredEvents, &e.firedEvents)
	loadJSON(e.store, keyStoryFlags, &e.flags)
	loadJSON(e.store, keyProgress, &e.progress)

	// Merge stored achievement records against the current catalog so
	// newly added achievements start fresh and stale records are dropped.
	stored := map[string]AchievementState{}
	loadJSON(e.store, keyAchievements, &stored)
	for _, a := range e.defs.Achievements {
		if st, ok := stored[a.ID]; ok {
			e.achievements[a.ID] = st
		} else {
			e.achievements[a.ID] = AchievementState{}
		}
	}
}

func loadJSON(store persistence.Store, key string, out any) {
	data, ok, err := store.Get(key)
	if err != nil {
		slog.Error("campaign read failed", "key", key, "error", err)
		return
	}
	if !ok {
		return
	}
	if err := json.Unmarshal(data, out); err != nil {
		slog.Warn("campaign record corrupt, ignoring", "key", key, "error", err)
	}
}

func (e *Evaluator) persist(key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("campaign marshal failed", "key", key, "error", err)
		return
	}
	if err := e.store.Set(key, data); err != nil {
		slog.Error("campaign write failed", "key", key, "error", err)
	}
}

// ActiveScenario returns the id of the running scenario, or "".
func (e *Evaluator) ActiveScenario() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// StartScenario activates a scenario. Rejected when unknown or when one is
// already running.
func (e *Evaluator) StartScenario(id string) game.Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	sc, ok := e.defs.ScenarioByID(id)
	if !ok {
		return game.Result{Reason: game.ReasonNotFound}
	}
	if e.active != "" {
		return game.Result{Reason: game.ReasonRequirementNotMet}
	}

	e.active = id
	e.persist(keyActive, e.active)
	slog.Info("scenario started", "scenario", id)
	e.notify.Notify("Scenario: "+sc.Name, game.SeverityInfo)
	return game.Result{OK: true}
}

// StoryFlag reads a story flag. Unset flags are false.
func (e *Evaluator) StoryFlag(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.flags[name]
}

// SetStoryFlag records a story flag and persists it.
func (e *Evaluator) SetStoryFlag(name string, value bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flags[name] = value
	e.persist(keyStoryFlags, e.flags)
}

// CampaignProgress returns a copy of the statistics ledger.
func (e *Evaluator) CampaignProgress() Progress {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := e.progress
	p.ScenariosCompleted = append([]string{}, e.progress.ScenariosCompleted...)
	return p
}

// RecordDay folds daily statistics into the cross-session ledger. Called
// from the engine's day cadence.
func (e *Evaluator) RecordDay() {
	view := e.g.EvalView()

	e.mu.Lock()
	defer e.mu.Unlock()
	e.progress.DaysPlayed++
	e.progress.TotalRevenue += view.Resources.DailyRevenue
	if view.Resources.Visitors > e.progress.PeakVisitors {
		e.progress.PeakVisitors = view.Resources.Visitors
	}
	e.persist(keyProgress, e.progress)
}

// ClearCampaign wipes every campaign record, including one-time event
// history. This is the only way that history is ever cleared.
func (e *Evaluator) ClearCampaign() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.active = ""
	e.objectives = map[string]bool{}
	e.firedEvents = map[string]bool{}
	e.flags = map[string]bool{}
	e.progress = Progress{}
	e.pending = nil
	for _, key := range []string{keyActive, keyObjectives, keyFiredEvents, keyStoryFlags, keyProgress} {
		if err := e.store.Delete(key); err != nil {
			slog.Error("campaign clear failed", "key", key, "error", err)
		}
	}
	slog.Info("campaign records cleared")
}
