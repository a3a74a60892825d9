// Package capability defines what a session does with the bytes it
// reads.  Each Capability inspects one chunk at a time and tells the
// session whether to keep reading or to shut the connection down.
// Chunks are never reassembled, so a capability sees exactly what a
// single read returned.
package capability

// Action is the session's next step after a chunk has been interpreted.
type Action int

const (
	// Continue keeps the connection open.
	Continue Action = iota
	// Shutdown half-closes both directions of the connection.
	Shutdown
)

func (a Action) String() string {
	switch a {
	case Continue:
		return "continue"
	case Shutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Capability interprets the chunks read from a session.
type Capability interface {
	// Interpret inspects one chunk.  The slice is only valid for the
	// duration of the call.
	Interpret(chunk []byte) Action
}
