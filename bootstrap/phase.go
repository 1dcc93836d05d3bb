package bootstrap

import "sync/atomic"

// Phase is the orchestrator's position in its lifecycle. Phases only move
// forward.
type Phase int32

const (
	PhaseConfiguring Phase = iota
	PhaseBootstrapping
	PhaseRunning
	PhaseShuttingDown
	PhaseCleanedUp
)

func (p Phase) String() string {
	switch p {
	case PhaseConfiguring:
		return "configuring"
	case PhaseBootstrapping:
		return "bootstrapping"
	case PhaseRunning:
		return "running"
	case PhaseShuttingDown:
		return "shutting_down"
	case PhaseCleanedUp:
		return "cleaned_up"
	default:
		return "unknown"
	}
}

type phaseState struct {
	v atomic.Int32
}

func (s *phaseState) load() Phase {
	return Phase(s.v.Load())
}

// advance moves to next if that is later than the current phase and
// reports whether it did.
func (s *phaseState) advance(next Phase) bool {
	for {
		cur := s.v.Load()
		if Phase(cur) >= next {
			return false
		}
		if s.v.CompareAndSwap(cur, int32(next)) {
			return true
		}
	}
}
