// Package scout implements the dirscout wire protocol: an authenticated,
// line-oriented command protocol for inspecting the server's filesystem
// over a TCP connection.
//
// After an unframed username/password handshake, the client sends one
// command per network read:
//
//	TRAVERSE <path>
//	SEARCH <path> <pattern>
//	INSPECT <path>
//	EXIT
//
// Every framed response ends with the EndMark sentinel so the peer can
// detect the end of a response that spans multiple reads. EXIT produces
// no response.
package scout

// EndMark is the sentinel appended after every framed response.
const EndMark = "<<END>>\n"

// bufferSize is the chunk size for command reads and file streaming.
// The protocol assumes one command fits in one chunk.
const bufferSize = 4096

// Command verbs. Dispatch is by prefix match, mirroring the original
// protocol: the verb is compared against the start of the inbound line.
const (
	verbTraverse = "TRAVERSE"
	verbSearch   = "SEARCH"
	verbInspect  = "INSPECT"
	verbExit     = "EXIT"
)

// Metrics receives protocol-level counters. Implementations live outside
// this package; a nil Metrics disables collection with zero overhead.
type Metrics interface {
	// SessionStarted is called when a connection is accepted.
	SessionStarted()

	// SessionEnded is called when a session's connection closes.
	SessionEnded()

	// AuthFailed is called when a handshake is rejected.
	AuthFailed()

	// CommandReceived is called once per dispatched command verb.
	CommandReceived(verb string)

	// FilesTraversed records the file count of a completed traversal.
	FilesTraversed(count int)

	// BytesStreamed records bytes sent by the file streamer.
	BytesStreamed(n int)
}
