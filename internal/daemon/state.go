package daemon

import (
	"fmt"
)

// State is the lifecycle phase of a Daemon.
type State int

const (
	// StateIdle is the state before Run.
	StateIdle State = iota
	// StateBackfilling processes the log up to the size seen at start.
	StateBackfilling
	// StateWatching processes new log content as it is appended.
	StateWatching
	// StateDraining finishes the current event and persists the cursor.
	StateDraining
	// StateStopped is terminal.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackfilling:
		return "backfilling"
	case StateWatching:
		return "watching"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var transitions = map[State][]State{
	StateIdle:        {StateBackfilling, StateStopped},
	StateBackfilling: {StateWatching, StateDraining},
	StateWatching:    {StateDraining},
	StateDraining:    {StateStopped},
}

// CanTransition reports whether from may move to to.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
