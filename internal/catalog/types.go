// Package catalog holds the static game content tables: facilities,
// species, research nodes, scenarios, campaign events and achievements.
// Content is loaded from YAML and is read-only to the rest of the engine.
package catalog

// Facility is a placeable park structure definition.
type Facility struct {
	Name             string `yaml:"name"`
	Cost             int    `yaml:"cost"`
	PowerRequirement int    `yaml:"power_requirement"`
	Description      string `yaml:"description"`
	Category         string `yaml:"category"`
	VisitorDraw      int    `yaml:"visitor_draw"`     // attraction weight for hourly visitor flow
	VisitorCapacity  int    `yaml:"visitor_capacity"` // added to the park's max visitors
	SecurityBonus    int    `yaml:"security_bonus"`
}

// Species is a xenomorph specimen definition. A species becomes placeable
// once its research key appears in the completed research list.
type Species struct {
	Name                  string `yaml:"name"`
	ContainmentDifficulty int    `yaml:"containment_difficulty"`
	Description           string `yaml:"description"`
	VisitorDraw           int    `yaml:"visitor_draw"`
	Danger                int    `yaml:"danger"`
}

// ResearchNode is one node in the research prerequisite graph.
type ResearchNode struct {
	ID            string   `yaml:"id"`
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	Prerequisites []string `yaml:"prerequisites"`
	CreditCost    int      `yaml:"credit_cost"`
	ResearchCost  int      `yaml:"research_cost"`
	Unlocks       Unlocks  `yaml:"unlocks"`
}

// Unlocks lists the content keys a completed research node opens up.
type Unlocks struct {
	Species    []string `yaml:"species"`
	Facilities []string `yaml:"facilities"`
	Bonuses    []string `yaml:"bonuses"`
}

// ObjectiveType discriminates scenario objective predicates.
type ObjectiveType string

const (
	ObjectiveFacilityCount ObjectiveType = "facility-count"
	ObjectiveSpeciesCount  ObjectiveType = "species-count"
	ObjectiveRevenue       ObjectiveType = "revenue"
	ObjectiveVisitors      ObjectiveType = "visitors"
	ObjectiveResearch      ObjectiveType = "research"
	ObjectiveTimeSurvived  ObjectiveType = "time-survived"
	ObjectiveSurvivalEvent ObjectiveType = "survival-event"
)

// Objective is a scenario success condition. Target carries numeric goals,
// TargetKey carries string goals (a facility name, research key or story flag).
type Objective struct {
	ID          string        `yaml:"id"`
	Type        ObjectiveType `yaml:"type"`
	Description string        `yaml:"description"`
	Target      int           `yaml:"target"`
	TargetKey   string        `yaml:"target_key"`
	Required    bool          `yaml:"required"`
}

// Reward is granted when a scenario's required objectives are all complete.
type Reward struct {
	Credits          int      `yaml:"credits"`
	ResearchPoints   int      `yaml:"research_points"`
	UnlockSpecies    []string `yaml:"unlock_species"`
	UnlockFacilities []string `yaml:"unlock_facilities"`
}

// Scenario is a campaign chapter with objectives and a completion reward.
type Scenario struct {
	ID          string      `yaml:"id"`
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Objectives  []Objective `yaml:"objectives"`
	Reward      Reward      `yaml:"reward"`
}

// EventPriority orders simultaneous candidate events. Critical beats high
// beats medium beats low; within equal priority, catalog order wins.
type EventPriority int

const (
	PriorityLow EventPriority = iota
	PriorityMedium
	PriorityHigh
	PriorityCritical
)

func (p EventPriority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	default:
		return "low"
	}
}

// Event is a campaign story event surfaced for player choice.
type Event struct {
	ID          string        `yaml:"id"`
	Title       string        `yaml:"title"`
	Text        string        `yaml:"text"`
	Trigger     Trigger       `yaml:"-"`
	Probability float64       `yaml:"probability"` // 0 means always fires when triggered
	OneTime     bool          `yaml:"one_time"`
	Priority    EventPriority `yaml:"-"`
	Choices     []Choice      `yaml:"choices"`
}

// Choice is one mutually exclusive option on an event.
type Choice struct {
	ID           string        `yaml:"id"`
	Label        string        `yaml:"label"`
	Requirements []Requirement `yaml:"requirements"`
	Consequences []Consequence `yaml:"consequences"`
}

// Requirement gates a choice. Exactly one field group is set.
type Requirement struct {
	Resource    string `yaml:"resource"` // resource kind name, with Min
	Min         int    `yaml:"min"`
	ResearchKey string `yaml:"research"` // must be in completed research
	Facility    string `yaml:"facility"` // a facility of this name must be placed
}

// Consequence applies when a choice is resolved. Fields that are set take
// effect; the rest are ignored.
type Consequence struct {
	Resource       string `yaml:"resource"` // resource kind name, with Delta
	Delta          int    `yaml:"delta"`
	UnlockSpecies  string `yaml:"unlock_species"`
	UnlockFacility string `yaml:"unlock_facility"`
	Flag           string `yaml:"flag"`
	FlagValue      bool   `yaml:"flag_value"`
	Crisis         string `yaml:"crisis"` // names a crisis flag to raise
}

// Achievement is a cross-session unlock evaluated against live state.
type Achievement struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Trigger     Trigger `yaml:"-"`
	Hidden      bool    `yaml:"hidden"`
}

// Catalog bundles every content table, indexed for lookup.
type Catalog struct {
	Facilities   []Facility
	Species      []Species
	Research     []ResearchNode
	Scenarios    []Scenario
	Events       []Event
	Achievements []Achievement

	facilityIndex map[string]*Facility
	speciesIndex  map[string]*Species
	researchIndex map[string]*ResearchNode
	scenarioIndex map[string]*Scenario
	eventIndex    map[string]*Event
}

// FacilityByName returns the facility definition for a catalog key.
func (c *Catalog) FacilityByName(name string) (*Facility, bool) {
	f, ok := c.facilityIndex[name]
	return f, ok
}

// SpeciesByName returns the species definition for a catalog key.
func (c *Catalog) SpeciesByName(name string) (*Species, bool) {
	s, ok := c.speciesIndex[name]
	return s, ok
}

// ResearchByID returns the research node for an id.
func (c *Catalog) ResearchByID(id string) (*ResearchNode, bool) {
	n, ok := c.researchIndex[id]
	return n, ok
}

// ScenarioByID returns the scenario for an id.
func (c *Catalog) ScenarioByID(id string) (*Scenario, bool) {
	s, ok := c.scenarioIndex[id]
	return s, ok
}

// EventByID returns the campaign event for an id.
func (c *Catalog) EventByID(id string) (*Event, bool) {
	e, ok := c.eventIndex[id]
	return e, ok
}

// BuildIndexes prepares the lookup maps. Called by the loader after
// content is assembled; catalogs constructed directly must call it too.
func (c *Catalog) BuildIndexes() {
	c.facilityIndex = make(map[string]*Facility, len(c.Facilities))
	for i := range c.Facilities {
		c.facilityIndex[c.Facilities[i].Name] = &c.Facilities[i]
	}
	c.speciesIndex = make(map[string]*Species, len(c.Species))
	for i := range c.Species {
		c.speciesIndex[c.Species[i].Name] = &c.Species[i]
	}
	c.researchIndex = make(map[string]*ResearchNode, len(c.Research))
	for i := range c.Research {
		c.researchIndex[c.Research[i].ID] = &c.Research[i]
	}
	c.scenarioIndex = make(map[string]*Scenario, len(c.Scenarios))
	for i := range c.Scenarios {
		c.scenarioIndex[c.Scenarios[i].ID] = &c.Scenarios[i]
	}
	c.eventIndex = make(map[string]*Event, len(c.Events))
	for i := range c.Events {
		c.eventIndex[c.Events[i].ID] = &c.Events[i]
	}
}
