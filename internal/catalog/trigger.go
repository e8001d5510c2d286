package catalog

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Trigger is the tagged union of declarative event/achievement conditions.
// Each kind carries only the fields its predicate needs; evaluation lives
// in the campaign package.
type Trigger interface {
	Kind() string
}

// TimeTrigger fires once the in-game day reaches Day.
type TimeTrigger struct {
	Day int
}

func (TimeTrigger) Kind() string { return "time" }

// ResourceTrigger fires while the named resource is at or above Min.
type ResourceTrigger struct {
	Resource string // credits, power, research, security, visitors, daily_revenue
	Min      int
}

func (ResourceTrigger) Kind() string { return "resource" }

// FacilityCountTrigger fires at Min placed facilities, optionally of one name.
type FacilityCountTrigger struct {
	Min  int
	Name string
}

func (FacilityCountTrigger) Kind() string { return "facility-count" }

// SpeciesCountTrigger fires at Min placed creatures, optionally of one species.
type SpeciesCountTrigger struct {
	Min     int
	Species string
}

func (SpeciesCountTrigger) Kind() string { return "species-count" }

// ResearchTrigger fires once the given research key is completed.
type ResearchTrigger struct {
	Key string
}

func (ResearchTrigger) Kind() string { return "research" }

// StoryFlagTrigger fires while the named story flag holds Value.
type StoryFlagTrigger struct {
	Flag  string
	Value bool
}

func (StoryFlagTrigger) Kind() string { return "story-flag" }

// triggerSpec is the flat YAML shape a trigger is declared in; Decode turns
// it into the typed union.
type triggerSpec struct {
	Type     string `yaml:"type"`
	Day      int    `yaml:"day"`
	Resource string `yaml:"resource"`
	Min      int    `yaml:"min"`
	Name     string `yaml:"name"`
	Species  string `yaml:"species"`
	Key      string `yaml:"key"`
	Flag     string `yaml:"flag"`
	Value    bool   `yaml:"value"`
}

func (ts triggerSpec) Decode() (Trigger, error) {
	switch ts.Type {
	case "time":
		return TimeTrigger{Day: ts.Day}, nil
	case "resource":
		if ts.Resource == "" {
			return nil, fmt.Errorf("resource trigger missing resource name")
		}
		return ResourceTrigger{Resource: ts.Resource, Min: ts.Min}, nil
	case "facility-count":
		return FacilityCountTrigger{Min: ts.Min, Name: ts.Name}, nil
	case "species-count":
		return SpeciesCountTrigger{Min: ts.Min, Species: ts.Species}, nil
	case "research":
		if ts.Key == "" {
			return nil, fmt.Errorf("research trigger missing key")
		}
		return ResearchTrigger{Key: ts.Key}, nil
	case "story-flag":
		if ts.Flag == "" {
			return nil, fmt.Errorf("story-flag trigger missing flag")
		}
		return StoryFlagTrigger{Flag: ts.Flag, Value: ts.Value}, nil
	default:
		return nil, fmt.Errorf("unknown trigger type %q", ts.Type)
	}
}

func parsePriority(s string) (EventPriority, error) {
	switch s {
	case "critical":
		return PriorityCritical, nil
	case "high":
		return PriorityHigh, nil
	case "medium", "":
		return PriorityMedium, nil
	case "low":
		return PriorityLow, nil
	default:
		return PriorityLow, fmt.Errorf("unknown event priority %q", s)
	}
}

// UnmarshalYAML decodes an event, resolving its trigger union and priority.
func (e *Event) UnmarshalYAML(value *yaml.Node) error {
	type rawEvent struct {
		ID          string      `yaml:"id"`
		Title       string      `yaml:"title"`
		Text        string      `yaml:"text"`
		Trigger     triggerSpec `yaml:"trigger"`
		Probability float64     `yaml:"probability"`
		OneTime     bool        `yaml:"one_time"`
		Priority    string      `yaml:"priority"`
		Choices     []Choice    `yaml:"choices"`
	}
	var raw rawEvent
	if err := value.Decode(&raw); err != nil {
		return err
	}
	trig, err := raw.Trigger.Decode()
	if err != nil {
		return fmt.Errorf("event %q: %w", raw.ID, err)
	}
	prio, err := parsePriority(raw.Priority)
	if err != nil {
		return fmt.Errorf("event %q: %w", raw.ID, err)
	}
	*e = Event{
		ID:          raw.ID,
		Title:       raw.Title,
		Text:        raw.Text,
		Trigger:     trig,
		Probability: raw.Probability,
		OneTime:     raw.OneTime,
		Priority:    prio,
		Choices:     raw.Choices,
	}
	return nil
}

// UnmarshalYAML decodes an achievement, resolving its trigger union.
func (a *Achievement) UnmarshalYAML(value *yaml.Node) error {
	type rawAchievement struct {
		ID          string      `yaml:"id"`
		Name        string      `yaml:"name"`
		Description string      `yaml:"description"`
		Trigger     triggerSpec `yaml:"trigger"`
		Hidden      bool        `yaml:"hidden"`
	}
	var raw rawAchievement
	if err := value.Decode(&raw); err != nil {
		return err
	}
	trig, err := raw.Trigger.Decode()
	if err != nil {
		return fmt.Errorf("achievement %q: %w", raw.ID, err)
	}
	*a = Achievement{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Trigger:     trig,
		Hidden:      raw.Hidden,
	}
	return nil
}
