package arenadeck

// EventKind distinguishes file growth from a detected reset.
type EventKind int

const (
	// EventGrowth carries the bytes [Offset, End) appended to the log.
	EventGrowth EventKind = iota

	// EventReset means the file was truncated or replaced. Consumers drop any
	// buffered partial data and continue from offset 0.
	EventReset
)

func (k EventKind) String() string {
	switch k {
	case EventGrowth:
		return "growth"
	case EventReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Event is one observation of the log file.
type Event struct {
	Kind     EventKind
	Path     string
	Offset   int64
	End      int64
	Data     []byte
	Identity FileIdentity

	// CaughtUp is set on the first event whose End reaches the file size
	// observed when watching started. Backfill is complete after it.
	CaughtUp bool
}
