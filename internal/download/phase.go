package download

// Phase is the orchestrator state
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseConnecting
	PhaseStreaming
	PhaseCompleted
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "Idle"
	case PhaseConnecting:
		return "Connecting"
	case PhaseStreaming:
		return "Streaming"
	case PhaseCompleted:
		return "Completed"
	case PhaseFailed:
		return "Failed"
	default:
		return "Unknown"
	}
}

// CanTransition reports whether the orchestrator may move from p to next
func (p Phase) CanTransition(next Phase) bool {
	switch p {
	case PhaseIdle:
		return next == PhaseConnecting || next == PhaseFailed
	case PhaseConnecting:
		return next == PhaseStreaming || next == PhaseFailed
	case PhaseStreaming:
		return next == PhaseCompleted || next == PhaseFailed
	default:
		return false
	}
}
