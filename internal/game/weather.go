package game

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Weather drives the hourly weather roll from a smooth noise field, so
// conditions drift believably instead of flipping at random each hour.
type Weather struct {
	noise opensimplex.Noise
}

// Conditions is the weather input to the hourly recalculation.
type Conditions struct {
	Description   string
	VisitorFactor float64 // multiplier on visitor inflow
	HazardRisk    float64 // probability of a containment hazard roll this hour
}

func newWeather(seed int64) *Weather {
	return &Weather{noise: opensimplex.NewNormalized(seed)}
}

// At samples conditions for an hour of a day. Deterministic for a seed.
func (w *Weather) At(day, hour int) Conditions {
	t := float64(day*24+hour) / 36.0
	v := w.noise.Eval2(t, 0.5)

	switch {
	case v < 0.2:
		return Conditions{Description: "electrical storm", VisitorFactor: 0.4, HazardRisk: 0.15}
	case v < 0.4:
		return Conditions{Description: "heavy rain", VisitorFactor: 0.7, HazardRisk: 0.05}
	case v < 0.75:
		return Conditions{Description: "overcast", VisitorFactor: 1.0, HazardRisk: 0.02}
	default:
		return Conditions{Description: "clear skies", VisitorFactor: 1.2, HazardRisk: 0.01}
	}
}

// CurrentConditions samples the weather for the present game hour.
func (g *Game) CurrentConditions() Conditions {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.wx.At(g.day, g.hour)
}
