package game

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/xenopark/internal/catalog"
)

// powerGeneratorBonus is the max-power increase granted per Power Generator.
const powerGeneratorBonus = 10

// PlacedFacility is a structure instance on the grid. The id is generated
// at placement and immutable.
type PlacedFacility struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Position         Position `json:"position"`
	Cost             int      `json:"cost"`
	PowerRequirement int      `json:"power_requirement"`
	Description      string   `json:"description"`
}

// PlacedCreature is a live specimen instance. The species definition is
// copied by value from the catalog at placement time.
type PlacedCreature struct {
	ID               string          `json:"id"`
	Species          catalog.Species `json:"species"`
	Position         Position        `json:"position"`
	ContainmentLevel int             `json:"containment_level"`
}

// Facilities returns a copy of the placed facility list.
func (g *Game) Facilities() []PlacedFacility {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]PlacedFacility, len(g.facilities))
	copy(out, g.facilities)
	return out
}

// Creatures returns a copy of the placed creature list.
func (g *Game) Creatures() []PlacedCreature {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]PlacedCreature, len(g.creatures))
	copy(out, g.creatures)
	return out
}

// IsOccupied reports whether any facility or creature sits at the cell.
// Facilities and creatures share one occupancy namespace.
func (g *Game) IsOccupied(row, col int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, taken := g.occupied[Position{Row: row, Col: col}]
	return taken
}

// PlaceFacility places def at pos. Rejections leave state untouched:
// out-of-bounds cell, occupied cell, or insufficient credits. On success
// the cost and power requirement are debited, a Power Generator raises the
// power ceiling, and the active facility selection is cleared.
func (g *Game) PlaceFacility(def *catalog.Facility, pos Position) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.bounds.Contains(pos) {
		return rejected(ReasonOutOfBounds)
	}
	if _, taken := g.occupied[pos]; taken {
		return rejected(ReasonOccupied)
	}
	if g.res.Credits < def.Cost {
		g.notify.Notify(fmt.Sprintf("Not enough credits for %s (need %s)",
			def.Name, humanize.Comma(int64(def.Cost))), SeverityWarning)
		return rejected(ReasonInsufficientCredits)
	}

	g.recordUndoLocked()

	placed := PlacedFacility{
		ID:               uuid.NewString(),
		Name:             def.Name,
		Position:         pos,
		Cost:             def.Cost,
		PowerRequirement: def.PowerRequirement,
		Description:      def.Description,
	}
	g.facilities = append(g.facilities, placed)
	g.occupied[pos] = placed.ID

	g.res.Apply(Patch{
		Credits: intPtr(g.res.Credits - def.Cost),
		Power:   intPtr(g.res.Power - def.PowerRequirement),
	})
	if def.Name == "Power Generator" {
		g.res.Apply(Patch{MaxPower: intPtr(g.res.MaxPower + powerGeneratorBonus)})
	}
	g.selectedFacility = ""

	slog.Info("facility placed", "name", def.Name, "row", pos.Row, "col", pos.Col, "credits", g.res.Credits)
	g.notify.Notify(fmt.Sprintf("%s built (-%s credits)",
		def.Name, humanize.Comma(int64(def.Cost))), SeveritySuccess)
	return accepted()
}

// PlaceCreature places a specimen of species at pos. Rejected when the cell
// is out of bounds or occupied, or the species has not been researched.
func (g *Game) PlaceCreature(species *catalog.Species, pos Position) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.bounds.Contains(pos) {
		return rejected(ReasonOutOfBounds)
	}
	if _, taken := g.occupied[pos]; taken {
		return rejected(ReasonOccupied)
	}
	if !g.completedLocked(species.Name) {
		g.notify.Notify(fmt.Sprintf("%s has not been researched", species.Name), SeverityWarning)
		return rejected(ReasonUnresearched)
	}

	g.recordUndoLocked()

	placed := PlacedCreature{
		ID:               uuid.NewString(),
		Species:          *species,
		Position:         pos,
		ContainmentLevel: species.ContainmentDifficulty,
	}
	g.creatures = append(g.creatures, placed)
	g.occupied[pos] = placed.ID
	g.selectedSpecies = ""

	slog.Info("creature placed", "species", species.Name, "row", pos.Row, "col", pos.Col)
	g.notify.Notify(fmt.Sprintf("%s moved into enclosure", species.Name), SeveritySuccess)
	return accepted()
}

// RemoveFacility removes a facility by id and credits back half its cost,
// rounded down. Unknown ids are a no-op.
func (g *Game) RemoveFacility(id string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := -1
	for i := range g.facilities {
		if g.facilities[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rejected(ReasonNotFound)
	}

	g.recordUndoLocked()

	removed := g.facilities[idx]
	g.facilities = append(g.facilities[:idx], g.facilities[idx+1:]...)
	delete(g.occupied, removed.Position)

	refund := removed.Cost / 2
	g.res.Apply(Patch{
		Credits: intPtr(g.res.Credits + refund),
		Power:   intPtr(g.res.Power + removed.PowerRequirement),
	})
	if removed.Name == "Power Generator" {
		g.res.Apply(Patch{MaxPower: intPtr(g.res.MaxPower - powerGeneratorBonus)})
	}

	slog.Info("facility removed", "name", removed.Name, "refund", refund)
	g.notify.Notify(fmt.Sprintf("%s demolished (+%s credits)",
		removed.Name, humanize.Comma(int64(refund))), SeverityInfo)
	return accepted()
}

// RemoveCreature removes a creature by id. No refund.
func (g *Game) RemoveCreature(id string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	idx := -1
	for i := range g.creatures {
		if g.creatures[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return rejected(ReasonNotFound)
	}

	g.recordUndoLocked()

	removed := g.creatures[idx]
	g.creatures = append(g.creatures[:idx], g.creatures[idx+1:]...)
	delete(g.occupied, removed.Position)

	slog.Info("creature removed", "species", removed.Species.Name)
	g.notify.Notify(fmt.Sprintf("%s returned to cryostasis", removed.Species.Name), SeverityInfo)
	return accepted()
}
