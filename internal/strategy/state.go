package strategy

// ExecState is the lifecycle phase of a strategy run. Exactly one live value
// exists per strategy, owned and mutated only by the dispatch goroutine.
type ExecState int

const (
	// Stopped is the initial state, before the session starts.
	Stopped ExecState = iota
	// LoggingIn waits for the transport logon event.
	LoggingIn
	// LoggedIn runs the starting sequence and issues readiness requests.
	LoggedIn
	// Starting waits for the starting barriers to clear.
	Starting
	// Started is steady-state trading.
	Started
	// Stopping waits for the stopping barriers to clear.
	Stopping
	// Finished is the terminal state of a clean run.
	Finished
	// Exception is the terminal state after an unrecovered fault.
	Exception
)

func (s ExecState) String() string {
	switch s {
	case Stopped:
		return "stopped"
	case LoggingIn:
		return "logging_in"
	case LoggedIn:
		return "logged_in"
	case Starting:
		return "starting"
	case Started:
		return "started"
	case Stopping:
		return "stopping"
	case Finished:
		return "finished"
	case Exception:
		return "exception"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions can leave the state.
func (s ExecState) Terminal() bool {
	return s == Finished || s == Exception
}
