package game

import "github.com/talgya/xenopark/internal/catalog"

// Snapshot is the serializable view of the whole game state. It is the
// unit of persistence and of undo history. The creature list keeps its
// historical "xenomorphs" wire name for save compatibility.
type Snapshot struct {
	Resources  Resources        `json:"resources"`
	Facilities []PlacedFacility `json:"facilities"`
	Creatures  []PlacedCreature `json:"xenomorphs"`
	Research   ResearchState    `json:"research"`
	Unlocks    []string         `json:"unlocks"`
	Day        int              `json:"day"`
	Hour       int              `json:"hour"`
	Mode       Mode             `json:"mode"`
	PlayTicks  uint64           `json:"play_ticks"`
}

// DefaultSnapshot returns the fresh-game state. Loads merge a stored
// snapshot over this, so fields absent from old saves fall back to
// defaults.
func DefaultSnapshot(defs *catalog.Catalog) Snapshot {
	return Snapshot{
		Resources:  defaultResources(),
		Facilities: []PlacedFacility{},
		Creatures:  []PlacedCreature{},
		Research:   newResearchState(defs),
		Unlocks:    []string{},
		Day:        1,
		Hour:       8,
		Mode:       ModePark,
	}
}

// Snapshot returns a deep copy of the current state.
func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked()
}

func (g *Game) snapshotLocked() Snapshot {
	s := Snapshot{
		Resources:  g.res,
		Facilities: make([]PlacedFacility, len(g.facilities)),
		Creatures:  make([]PlacedCreature, len(g.creatures)),
		Research:   copyResearch(g.research),
		Unlocks:    append([]string{}, g.unlocks...),
		Day:        g.day,
		Hour:       g.hour,
		Mode:       g.mode,
		PlayTicks:  g.playTicks,
	}
	copy(s.Facilities, g.facilities)
	copy(s.Creatures, g.creatures)
	return s
}

// Restore replaces the live state with a snapshot wholesale and rebuilds
// the occupancy index. Used by load, undo and redo.
func (g *Game) Restore(s Snapshot) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.restoreLocked(s)
}

func (g *Game) restoreLocked(s Snapshot) {
	g.res = s.Resources
	g.facilities = make([]PlacedFacility, len(s.Facilities))
	copy(g.facilities, s.Facilities)
	g.creatures = make([]PlacedCreature, len(s.Creatures))
	copy(g.creatures, s.Creatures)
	g.research = copyResearch(s.Research)
	g.unlocks = append([]string{}, s.Unlocks...)
	g.day = s.Day
	g.hour = s.Hour
	if s.Mode != "" {
		g.mode = s.Mode
	} else {
		g.mode = ModePark
	}
	g.playTicks = s.PlayTicks
	g.tickInHour = 0
	g.revenueToday = 0

	g.occupied = make(map[Position]string, len(g.facilities)+len(g.creatures))
	for _, f := range g.facilities {
		g.occupied[f.Position] = f.ID
	}
	for _, c := range g.creatures {
		g.occupied[c.Position] = c.ID
	}

	// Research state from older saves may predate newly added nodes.
	for _, n := range g.defs.Research {
		if _, ok := g.research.Nodes[n.ID]; !ok {
			g.research.Nodes[n.ID] = NodeProgress{}
		}
	}
}
