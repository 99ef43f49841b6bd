package learn

// State is a learning engine state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
	StateLearning
	StateSweeping
	StateFrequencyLocked
	StateCapturing
	StateCaptured
	StateTimedOut
	StateSweepTimedOut
	StateError
)

var stateNames = map[State]string{
	StateUnauthenticated: "unauthenticated",
	StateAuthenticated:   "authenticated",
	StateLearning:        "learning",
	StateSweeping:        "sweeping_frequency",
	StateFrequencyLocked: "frequency_locked",
	StateCapturing:       "capturing_signal",
	StateCaptured:        "captured",
	StateTimedOut:        "timed_out",
	StateSweepTimedOut:   "sweep_timed_out",
	StateError:           "error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}
