package scout

import (
	"fmt"
	"os"
	"path/filepath"
)

// SessionLog is the append-only log sink scoped to one authenticated
// session. The file is keyed by username and session id so concurrent
// sessions of the same user never share a sink.
//
// A nil SessionLog is valid and discards every line, so callers never have
// to guard their logging.
type SessionLog struct {
	path string
	f    *os.File
}

// OpenSessionLog opens (creating if needed) the log file for one session.
func OpenSessionLog(dir, username string, sessionID uint64) (*SessionLog, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create session log directory: %w", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("%s_%d.log", username, sessionID))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open session log %s: %w", path, err)
	}

	return &SessionLog{path: path, f: f}, nil
}

// Log appends one line to the session log. Write failures are ignored;
// session logging is best effort.
func (l *SessionLog) Log(line string) {
	if l == nil || l.f == nil {
		return
	}
	_, _ = fmt.Fprintln(l.f, line)
}

// Path returns the log file location.
func (l *SessionLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Close closes the underlying file.
func (l *SessionLog) Close() error {
	if l == nil || l.f == nil {
		return nil
	}
	return l.f.Close()
}
