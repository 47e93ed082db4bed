package session

import "fmt"

// Phase is the state of the mutation gate. Every phase except PhaseIdle
// means a mutation is in flight.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseAwaitingConfirmation
	PhaseConfirmed
	PhaseRefreshing
	PhaseRejected
	PhaseErrored
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseAwaitingConfirmation:
		return "awaiting confirmation"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseRefreshing:
		return "refreshing"
	case PhaseRejected:
		return "rejected"
	case PhaseErrored:
		return "errored"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// InFlight reports whether p holds the gate.
func (p Phase) InFlight() bool { return p != PhaseIdle }

// CanTransition reports whether the gate may move from one phase to another.
func CanTransition(from, to Phase) bool {
	switch from {
	case PhaseIdle:
		return to == PhaseSubmitting
	case PhaseSubmitting:
		return to == PhaseAwaitingConfirmation || to == PhaseErrored
	case PhaseAwaitingConfirmation:
		return to == PhaseConfirmed || to == PhaseRejected || to == PhaseErrored
	case PhaseConfirmed:
		return to == PhaseRefreshing
	case PhaseRefreshing, PhaseRejected, PhaseErrored:
		return to == PhaseIdle
	default:
		return false
	}
}
