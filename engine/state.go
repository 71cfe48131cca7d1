package engine

// State is a step of one orchestration.
type State int

const (
	Idle State = iota
	ValidatingInput
	Dispatching
	Collecting
	Assembling
	Done
	// Failed is only reachable from ValidatingInput.
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case ValidatingInput:
		return "validating_input"
	case Dispatching:
		return "dispatching"
	case Collecting:
		return "collecting"
	case Assembling:
		return "assembling"
	case Done:
		return "done"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Observer is told about every state an orchestration enters.
type Observer func(requestID string, state State)
