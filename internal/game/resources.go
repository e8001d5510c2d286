// Package game implements the authoritative park state: the resource
// ledger, the placed-entity registry, the research graph, the simulation
// clock and the undo history. Every public operation is a single atomic
// state transition.
package game

// Resources is the park's numeric state. Mutated only through Apply.
type Resources struct {
	Credits      int `json:"credits"`
	Power        int `json:"power"`
	MaxPower     int `json:"max_power"`
	Research     int `json:"research"`
	Security     int `json:"security"`
	Visitors     int `json:"visitors"`
	MaxVisitors  int `json:"max_visitors"`
	DailyRevenue int `json:"daily_revenue"`
}

// Patch is a partial resource update. Nil fields retain the prior value.
// Apply performs no bounds validation; callers pre-check affordability.
type Patch struct {
	Credits      *int
	Power        *int
	MaxPower     *int
	Research     *int
	Security     *int
	Visitors     *int
	MaxVisitors  *int
	DailyRevenue *int
}

// Apply shallow-merges p into r. Total over any partial patch.
func (r *Resources) Apply(p Patch) {
	if p.Credits != nil {
		r.Credits = *p.Credits
	}
	if p.Power != nil {
		r.Power = *p.Power
	}
	if p.MaxPower != nil {
		r.MaxPower = *p.MaxPower
	}
	if p.Research != nil {
		r.Research = *p.Research
	}
	if p.Security != nil {
		r.Security = *p.Security
	}
	if p.Visitors != nil {
		r.Visitors = *p.Visitors
	}
	if p.MaxVisitors != nil {
		r.MaxVisitors = *p.MaxVisitors
	}
	if p.DailyRevenue != nil {
		r.DailyRevenue = *p.DailyRevenue
	}
}

// ByKind returns the value of the resource named by a catalog kind string.
func (r Resources) ByKind(kind string) int {
	switch kind {
	case "credits":
		return r.Credits
	case "power":
		return r.Power
	case "max_power":
		return r.MaxPower
	case "research":
		return r.Research
	case "security":
		return r.Security
	case "visitors":
		return r.Visitors
	case "max_visitors":
		return r.MaxVisitors
	case "daily_revenue":
		return r.DailyRevenue
	}
	return 0
}

// addKind adds delta to the named resource in place.
func (r *Resources) addKind(kind string, delta int) {
	switch kind {
	case "credits":
		r.Credits += delta
	case "power":
		r.Power += delta
	case "max_power":
		r.MaxPower += delta
	case "research":
		r.Research += delta
	case "security":
		r.Security += delta
	case "visitors":
		r.Visitors += delta
	case "max_visitors":
		r.MaxVisitors += delta
	case "daily_revenue":
		r.DailyRevenue += delta
	}
}

// defaultResources is the game-reset seed state.
func defaultResources() Resources {
	return Resources{
		Credits:     5000,
		Power:       50,
		MaxPower:    50,
		Research:    100,
		Security:    10,
		Visitors:    0,
		MaxVisitors: 200,
	}
}

// intPtr is a convenience for building patches.
func intPtr(v int) *int { return &v }
