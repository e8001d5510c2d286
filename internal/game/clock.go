package game

import (
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"
)

const (
	// TicksPerHour is how many engine ticks make one in-game hour.
	TicksPerHour = 5

	baseVisitorCapacity = 200
	baseSecurity        = 10
	ticketCredits       = 2 // credits earned per visitor per hour
)

// Tick advances the simulation clock by one tick. The clock runs only
// while unpaused and in park mode; horror mode suspends it entirely.
// Crossing an hour boundary runs the resource recalculation pass, and a
// day rollover finalizes daily revenue.
func (g *Game) Tick() {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.paused || g.mode != ModePark {
		return
	}

	g.playTicks++
	g.tickInHour++
	if g.tickInHour < TicksPerHour {
		return
	}
	g.tickInHour = 0

	g.recalcHourLocked()

	g.hour++
	if g.hour > 23 {
		g.hour = 0
		g.day++
		g.rolloverDayLocked()
	}
}

// recalcHourLocked is the hourly recalculation: power draw, security,
// visitor flow, revenue accrual, research progress and the weather/hazard
// roll. All resource writes go through the ledger merge-update.
func (g *Game) recalcHourLocked() {
	wx := g.wx.At(g.day, g.hour)

	powerDraw := 0
	securityBonus := 0
	capacityBonus := 0
	attraction := 0
	for _, f := range g.facilities {
		powerDraw += f.PowerRequirement
		if def, ok := g.defs.FacilityByName(f.Name); ok {
			securityBonus += def.SecurityBonus
			capacityBonus += def.VisitorCapacity
			attraction += def.VisitorDraw
		}
	}
	for _, c := range g.creatures {
		attraction += c.Species.VisitorDraw
	}

	maxVisitors := baseVisitorCapacity + capacityBonus

	// Visitors drift a quarter of the way toward the weather-scaled target
	// each hour, so crowds build and drain over several hours.
	target := int(float64(attraction) * 2 * wx.VisitorFactor)
	if target > maxVisitors {
		target = maxVisitors
	}
	visitors := g.res.Visitors + (target-g.res.Visitors)/4
	if visitors < 0 {
		visitors = 0
	}

	hourlyRevenue := visitors * ticketCredits
	g.revenueToday += hourlyRevenue

	g.res.Apply(Patch{
		Power:       intPtr(g.res.MaxPower - powerDraw),
		Security:    intPtr(baseSecurity + securityBonus),
		Visitors:    intPtr(visitors),
		MaxVisitors: intPtr(maxVisitors),
		Credits:     intPtr(g.res.Credits + hourlyRevenue),
	})

	g.advanceResearchLocked()
	g.rollHazardLocked(wx)
}

// rollHazardLocked may degrade a random creature's containment during bad
// weather. Containment reaching zero is surfaced as a danger message; the
// campaign layer turns sustained breaches into story events.
func (g *Game) rollHazardLocked(wx Conditions) {
	if len(g.creatures) == 0 {
		return
	}
	if g.rng.Float64() >= wx.HazardRisk {
		return
	}

	idx := g.rng.Intn(len(g.creatures))
	c := &g.creatures[idx]
	c.ContainmentLevel--
	if c.ContainmentLevel > 0 {
		g.notify.Notify(fmt.Sprintf("%s is testing its enclosure (%s)",
			c.Species.Name, wx.Description), SeverityWarning)
		return
	}

	c.ContainmentLevel = 0
	slog.Warn("containment failing", "species", c.Species.Name, "weather", wx.Description)
	g.notify.Notify(fmt.Sprintf("CONTAINMENT ALERT: %s enclosure integrity lost", c.Species.Name), SeverityDanger)
}

// rolloverDayLocked finalizes the day's revenue into the ledger and emits
// the daily report.
func (g *Game) rolloverDayLocked() {
	g.res.Apply(Patch{DailyRevenue: intPtr(g.revenueToday)})
	g.revenueToday = 0

	slog.Info("daily report",
		"day", g.day,
		"credits", g.res.Credits,
		"visitors", g.res.Visitors,
		"daily_revenue", g.res.DailyRevenue,
		"facilities", len(g.facilities),
		"creatures", len(g.creatures),
	)
	g.notify.Notify(fmt.Sprintf("Day %d — revenue %s credits, %s visitors",
		g.day, humanize.Comma(int64(g.res.DailyRevenue)), humanize.Comma(int64(g.res.Visitors))), SeverityInfo)
}
