package game

// Reason explains why a guarded operation was rejected. The UI is free to
// ignore it; tests assert on it.
type Reason string

const (
	ReasonNone                 Reason = ""
	ReasonInsufficientCredits  Reason = "insufficient-credits"
	ReasonInsufficientResearch Reason = "insufficient-research"
	ReasonOccupied             Reason = "occupied"
	ReasonOutOfBounds          Reason = "out-of-bounds"
	ReasonUnresearched         Reason = "unresearched"
	ReasonResearchBusy         Reason = "research-busy"
	ReasonLocked               Reason = "locked"
	ReasonAlreadyCompleted     Reason = "already-completed"
	ReasonNotFound             Reason = "not-found"
	ReasonRequirementNotMet    Reason = "requirement-not-met"
)

// Result is the outcome of a guarded operation. Rejections are silent
// no-ops on game state; nothing in the core throws or crashes.
type Result struct {
	OK     bool
	Reason Reason
}

func accepted() Result { return Result{OK: true} }

func rejected(r Reason) Result { return Result{Reason: r} }
