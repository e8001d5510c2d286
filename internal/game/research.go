package game

import (
	"fmt"
	"log/slog"

	"github.com/talgya/xenopark/internal/catalog"
)

// NodeProgress tracks one research node's runtime state. Availability is
// not stored; it is derived from the completed set on every query.
type NodeProgress struct {
	Completed  bool `json:"completed"`
	InProgress bool `json:"in_progress"`
	Progress   int  `json:"progress"` // 0..100
}

// ResearchState is the runtime research graph state. Completed preserves
// insertion order for display; membership is what matters for logic.
type ResearchState struct {
	Completed  []string                `json:"completed"`
	InProgress string                  `json:"in_progress"` // at most one node system-wide; "" when idle
	Nodes      map[string]NodeProgress `json:"nodes"`
}

func newResearchState(defs *catalog.Catalog) ResearchState {
	rs := ResearchState{
		Completed: []string{},
		Nodes:     make(map[string]NodeProgress, len(defs.Research)),
	}
	for _, n := range defs.Research {
		rs.Nodes[n.ID] = NodeProgress{}
	}
	return rs
}

// ResearchView returns a copy of the research state.
func (g *Game) ResearchView() ResearchState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return copyResearch(g.research)
}

func copyResearch(rs ResearchState) ResearchState {
	out := ResearchState{
		Completed:  append([]string{}, rs.Completed...),
		InProgress: rs.InProgress,
		Nodes:      make(map[string]NodeProgress, len(rs.Nodes)),
	}
	for id, np := range rs.Nodes {
		out.Nodes[id] = np
	}
	return out
}

// CompletedResearch reports whether key is in the completed list.
func (g *Game) CompletedResearch(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.completedLocked(key)
}

func (g *Game) completedLocked(key string) bool {
	for _, c := range g.research.Completed {
		if c == key {
			return true
		}
	}
	return false
}

// NodeAvailable reports whether a node's prerequisites are all completed.
// Completed nodes are trivially available. Derived, never cached.
func (g *Game) NodeAvailable(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodeAvailableLocked(id)
}

func (g *Game) nodeAvailableLocked(id string) bool {
	node, ok := g.defs.ResearchByID(id)
	if !ok {
		return false
	}
	if g.research.Nodes[id].Completed {
		return true
	}
	for _, pre := range node.Prerequisites {
		if !g.completedLocked(pre) {
			return false
		}
	}
	return true
}

// AvailableNodes lists nodes that can be started or are completed, in
// catalog order.
func (g *Game) AvailableNodes() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	var out []string
	for _, n := range g.defs.Research {
		if g.nodeAvailableLocked(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}

// StartResearch begins work on a node. Rejected when the node is unknown,
// already completed, locked behind prerequisites, another node holds the
// single research slot, or costs cannot be covered. Costs are debited
// immediately on acceptance.
func (g *Game) StartResearch(id string) Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	node, ok := g.defs.ResearchByID(id)
	if !ok {
		return rejected(ReasonNotFound)
	}
	if g.research.Nodes[id].Completed {
		return rejected(ReasonAlreadyCompleted)
	}
	if g.research.InProgress != "" {
		return rejected(ReasonResearchBusy)
	}
	if !g.nodeAvailableLocked(id) {
		return rejected(ReasonLocked)
	}
	if g.res.Credits < node.CreditCost {
		return rejected(ReasonInsufficientCredits)
	}
	if g.res.Research < node.ResearchCost {
		return rejected(ReasonInsufficientResearch)
	}

	g.res.Apply(Patch{
		Credits:  intPtr(g.res.Credits - node.CreditCost),
		Research: intPtr(g.res.Research - node.ResearchCost),
	})
	np := g.research.Nodes[id]
	np.InProgress = true
	np.Progress = 0
	g.research.Nodes[id] = np
	g.research.InProgress = id

	slog.Info("research started", "node", id, "credits", g.res.Credits, "research_points", g.res.Research)
	g.notify.Notify(fmt.Sprintf("Research started: %s", node.Name), SeverityInfo)
	return accepted()
}

// advanceResearchLocked accrues a randomized progress increment on the
// in-progress node; at 100 it atomically transitions to completed and
// frees the research slot.
func (g *Game) advanceResearchLocked() {
	id := g.research.InProgress
	if id == "" {
		return
	}

	np := g.research.Nodes[id]
	np.Progress += 5 + g.rng.Intn(11)
	if np.Progress < 100 {
		g.research.Nodes[id] = np
		return
	}

	np.Progress = 100
	np.InProgress = false
	np.Completed = true
	g.research.Nodes[id] = np
	g.research.InProgress = ""
	g.grantResearchKeyLocked(id)

	node, _ := g.defs.ResearchByID(id)
	if node != nil {
		for _, sp := range node.Unlocks.Species {
			g.grantResearchKeyLocked(sp)
		}
		for _, f := range node.Unlocks.Facilities {
			g.grantUnlockLocked(f)
		}
		for _, b := range node.Unlocks.Bonuses {
			g.grantUnlockLocked(b)
		}
	}

	slog.Info("research completed", "node", id)
	g.notify.Notify(fmt.Sprintf("Research complete: %s", id), SeveritySuccess)
}

// grantResearchKeyLocked appends key to the completed list with set
// semantics and marks a matching node completed if one exists.
func (g *Game) grantResearchKeyLocked(key string) {
	if g.completedLocked(key) {
		return
	}
	g.research.Completed = append(g.research.Completed, key)
	if np, ok := g.research.Nodes[key]; ok && !np.Completed {
		np.Completed = true
		np.InProgress = false
		np.Progress = 100
		g.research.Nodes[key] = np
		if g.research.InProgress == key {
			g.research.InProgress = ""
		}
	}
}
