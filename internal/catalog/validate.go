package catalog

import "fmt"

// resourceKinds is the set of resource names a trigger, requirement or
// consequence may reference.
var resourceKinds = map[string]bool{
	"credits":       true,
	"power":         true,
	"max_power":     true,
	"research":      true,
	"security":      true,
	"visitors":      true,
	"max_visitors":  true,
	"daily_revenue": true,
}

// KnownResource reports whether name is a recognized resource kind.
func KnownResource(name string) bool {
	return resourceKinds[name]
}

var objectiveTypes = map[ObjectiveType]bool{
	ObjectiveFacilityCount: true,
	ObjectiveSpeciesCount:  true,
	ObjectiveRevenue:       true,
	ObjectiveVisitors:      true,
	ObjectiveResearch:      true,
	ObjectiveTimeSurvived:  true,
	ObjectiveSurvivalEvent: true,
}

// Validate checks cross-references and structural rules: unique ids,
// resolvable research prerequisites, an acyclic research graph, known
// objective types and well-formed event choices.
func (c *Catalog) Validate() error {
	seen := map[string]bool{}
	for _, f := range c.Facilities {
		if f.Name == "" {
			return fmt.Errorf("facility with empty name")
		}
		if seen["facility:"+f.Name] {
			return fmt.Errorf("duplicate facility %q", f.Name)
		}
		seen["facility:"+f.Name] = true
		if f.Cost < 0 {
			return fmt.Errorf("facility %q has negative cost", f.Name)
		}
	}

	for _, s := range c.Species {
		if s.Name == "" {
			return fmt.Errorf("species with empty name")
		}
		if seen["species:"+s.Name] {
			return fmt.Errorf("duplicate species %q", s.Name)
		}
		seen["species:"+s.Name] = true
	}

	nodes := map[string]*ResearchNode{}
	for i := range c.Research {
		n := &c.Research[i]
		if n.ID == "" {
			return fmt.Errorf("research node with empty id")
		}
		if _, dup := nodes[n.ID]; dup {
			return fmt.Errorf("duplicate research node %q", n.ID)
		}
		nodes[n.ID] = n
	}
	for _, n := range c.Research {
		for _, pre := range n.Prerequisites {
			if _, ok := nodes[pre]; !ok {
				return fmt.Errorf("research node %q requires unknown node %q", n.ID, pre)
			}
		}
	}
	if err := checkAcyclic(nodes); err != nil {
		return err
	}

	for _, sc := range c.Scenarios {
		if seen["scenario:"+sc.ID] {
			return fmt.Errorf("duplicate scenario %q", sc.ID)
		}
		seen["scenario:"+sc.ID] = true
		for _, obj := range sc.Objectives {
			if !objectiveTypes[obj.Type] {
				return fmt.Errorf("scenario %q objective %q has unknown type %q", sc.ID, obj.ID, obj.Type)
			}
		}
	}

	for _, ev := range c.Events {
		if seen["event:"+ev.ID] {
			return fmt.Errorf("duplicate event %q", ev.ID)
		}
		seen["event:"+ev.ID] = true
		if ev.Trigger == nil {
			return fmt.Errorf("event %q has no trigger", ev.ID)
		}
		if len(ev.Choices) == 0 {
			return fmt.Errorf("event %q has no choices", ev.ID)
		}
		choiceIDs := map[string]bool{}
		for _, ch := range ev.Choices {
			if choiceIDs[ch.ID] {
				return fmt.Errorf("event %q has duplicate choice %q", ev.ID, ch.ID)
			}
			choiceIDs[ch.ID] = true
			for _, req := range ch.Requirements {
				if req.Resource != "" && !KnownResource(req.Resource) {
					return fmt.Errorf("event %q choice %q requires unknown resource %q", ev.ID, ch.ID, req.Resource)
				}
			}
			for _, con := range ch.Consequences {
				if con.Resource != "" && !KnownResource(con.Resource) {
					return fmt.Errorf("event %q choice %q touches unknown resource %q", ev.ID, ch.ID, con.Resource)
				}
			}
		}
	}

	for _, a := range c.Achievements {
		if seen["achievement:"+a.ID] {
			return fmt.Errorf("duplicate achievement %q", a.ID)
		}
		seen["achievement:"+a.ID] = true
		if a.Trigger == nil {
			return fmt.Errorf("achievement %q has no trigger", a.ID)
		}
	}

	return nil
}

// checkAcyclic runs a coloring DFS over the prerequisite graph.
func checkAcyclic(nodes map[string]*ResearchNode) error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[string]int{}

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case gray:
			return fmt.Errorf("research graph cycle through %q", id)
		case black:
			return nil
		}
		color[id] = gray
		for _, pre := range nodes[id].Prerequisites {
			if err := visit(pre); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	for id := range nodes {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
