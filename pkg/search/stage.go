package search

// Stage is a step of the search lifecycle.
type Stage string

const (
	StageIdle                Stage = "idle"
	StageResolvingMembers    Stage = "resolving_members"
	StageFetchingInventories Stage = "fetching_inventories"
	StageResolvingCreators   Stage = "resolving_creators"
	StageAggregating         Stage = "aggregating"
	StageDone                Stage = "done"
	StageFailed              Stage = "failed"
)

// transitions lists the stages reachable from each stage. Done is reachable
// straight from ResolvingMembers when the group has no members.
var transitions = map[Stage][]Stage{
	StageIdle:                {StageResolvingMembers},
	StageResolvingMembers:    {StageFetchingInventories, StageDone, StageFailed},
	StageFetchingInventories: {StageResolvingCreators, StageAggregating, StageFailed},
	StageResolvingCreators:   {StageAggregating, StageFailed},
	StageAggregating:         {StageDone, StageFailed},
}

// CanTransition reports whether the lifecycle may move from s to next.
func (s Stage) CanTransition(next Stage) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a run.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageFailed
}

// Progress is a lifecycle event. Completed and Total count the unit of work
// of the stage: roles, members or assets.
type Progress struct {
	Stage     Stage  `json:"stage"`
	Completed int    `json:"completed"`
	Total     int    `json:"total"`
	Message   string `json:"message,omitempty"`
}

// Fraction returns Completed/Total clamped to [0,1]; 0 when Total is 0.
func (p Progress) Fraction() float64 {
	if p.Total <= 0 {
		return 0
	}
	f := float64(p.Completed) / float64(p.Total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
