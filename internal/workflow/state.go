package workflow

// State is a stage of the purchase-decision workflow. States only move forward;
// the single way back is a full Reset.
type State int

// Workflow states, in order.
const (
	StateEntry State = iota
	StateReflection
	StateAdvisoryPending
	StateDecision
	StateCommitting
	StateDone
)

var stateNames = map[State]string{
	StateEntry:           "entry",
	StateReflection:      "reflection",
	StateAdvisoryPending: "advisory-pending",
	StateDecision:        "decision",
	StateCommitting:      "committing",
	StateDone:            "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateDone
}

// entryForm is the raw text captured in StateEntry before it is validated.
type entryForm struct {
	item     string
	amount   string
	category string
}
