package scout

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"

	"github.com/dirscout/dirscout/internal/logger"
	"github.com/dirscout/dirscout/pkg/identity"
)

// ErrIncorrectPassword is returned when a known user presents the wrong
// password. The caller must close the connection.
var ErrIncorrectPassword = errors.New("incorrect password")

// session is the state of one authenticated connection: the peer, the
// bound identity, the per-session log sink, and the session-scoped path
// list used by TRAVERSE and SEARCH.
type session struct {
	id         uint64
	conn       net.Conn
	store      *identity.Store
	logDir     string
	scratchDir string
	metrics    Metrics

	username   string
	sessionLog *SessionLog
}

func newSession(id uint64, conn net.Conn, store *identity.Store, logDir, scratchDir string, metrics Metrics) *session {
	return &session{
		id:         id,
		conn:       conn,
		store:      store,
		logDir:     logDir,
		scratchDir: scratchDir,
		metrics:    metrics,
	}
}

// send writes the full string to the peer.
func (s *session) send(data string) error {
	// net.Conn.Write returns an error on any short write, so no manual
	// retransmission loop is needed.
	_, err := s.conn.Write([]byte(data))
	return err
}

// readChunk performs one read of up to bufferSize bytes and strips
// trailing CR/LF. The protocol assumes one logical line per read.
//
// A read may deliver final bytes together with the error that ends the
// stream. The bytes are returned for dispatch first; the error surfaces
// on the next read.
func (s *session) readChunk(buf []byte) (string, error) {
	n, err := s.conn.Read(buf)
	if n > 0 {
		return strings.TrimRight(string(buf[:n]), "\r\n"), nil
	}
	return "", err
}

// pathList returns this session's path list file location.
func (s *session) pathList() string {
	return filepath.Join(s.scratchDir, fmt.Sprintf("files_%d.txt", s.id))
}

// run drives the whole session: handshake, then the command loop. The
// caller owns the connection and closes it afterward.
func (s *session) run() {
	client := s.conn.RemoteAddr().String()

	if err := s.authenticate(); err != nil {
		if s.metrics != nil {
			s.metrics.AuthFailed()
		}
		logger.Warn("Authentication failed", "client", client, "error", err)
		return
	}
	defer s.sessionLog.Close()
	defer os.Remove(s.pathList())

	logger.Info("Session started", "client", client, "user", s.username, "session_id", s.id)

	buf := make([]byte, bufferSize)
	for {
		line, err := s.readChunk(buf)
		if err != nil {
			// End-of-stream and read errors both end the session.
			logger.Debug("Session read ended", "client", client, "error", err)
			break
		}

		s.sessionLog.Log("Command: " + line)

		switch {
		case strings.HasPrefix(line, verbTraverse):
			s.countCommand(verbTraverse)
			s.handleTraverse(argAfter(line, verbTraverse))

		case strings.HasPrefix(line, verbSearch):
			s.countCommand(verbSearch)
			s.handleSearch(line)

		case strings.HasPrefix(line, verbInspect):
			s.countCommand(verbInspect)
			s.inspect(argAfter(line, verbInspect))

		case strings.HasPrefix(line, verbExit):
			s.countCommand(verbExit)
			s.sessionLog.Log("Session ended")
			logger.Info("Session ended", "client", client, "user", s.username, "session_id", s.id)
			return

		default:
			_ = s.send("ERROR: Unknown command\n")
			_ = s.send(EndMark)
		}
	}
}

func (s *session) countCommand(verb string) {
	if s.metrics != nil {
		s.metrics.CommandReceived(verb)
	}
}

// argAfter extracts the argument following "<verb> " in line.
// A verb with no argument yields an empty string.
func argAfter(line, verb string) string {
	if len(line) <= len(verb)+1 {
		return ""
	}
	return line[len(verb)+1:]
}

// authenticate runs the unframed prompt handshake and binds the
// session identity. A known username with a matching salted hash logs in;
// an unknown username is provisioned with a fresh record. Any connection
// error fails the handshake outright.
func (s *session) authenticate() error {
	buf := make([]byte, bufferSize)

	if err := s.send("Username: "); err != nil {
		return fmt.Errorf("failed to send username prompt: %w", err)
	}
	username, err := s.readChunk(buf)
	if err != nil {
		return fmt.Errorf("failed to receive username: %w", err)
	}

	if err := s.send("Password: "); err != nil {
		return fmt.Errorf("failed to send password prompt: %w", err)
	}
	password, err := s.readChunk(buf)
	if err != nil {
		return fmt.Errorf("failed to receive password: %w", err)
	}

	cred, found, err := s.store.Lookup(username)
	if err != nil {
		// An unreadable ledger falls through to registration, which will
		// surface its own error if the ledger cannot be appended either.
		logger.Warn("Credential ledger unreadable, treating user as unknown",
			"user", username, "error", err)
		found = false
	}

	if found {
		if !cred.Verify(password) {
			_ = s.send("Incorrect password\n")
			return ErrIncorrectPassword
		}

		s.username = username
		s.openSessionLog()
		s.sessionLog.Log("User authenticated")
		return s.send("Login successful\n")
	}

	cred, err = identity.NewCredential(username, password)
	if err != nil {
		return fmt.Errorf("failed to create credential: %w", err)
	}
	if err := s.store.Append(cred); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}

	s.username = username
	s.openSessionLog()
	s.sessionLog.Log("New user registered securely")
	return s.send("Account created\n")
}

// openSessionLog attaches the per-session log sink. A sink that cannot be
// opened downgrades session logging to a no-op rather than failing the
// session.
func (s *session) openSessionLog() {
	sl, err := OpenSessionLog(s.logDir, s.username, s.id)
	if err != nil {
		logger.Warn("Failed to open session log", "user", s.username, "session_id", s.id, "error", err)
		return
	}
	s.sessionLog = sl
}

// handleTraverse truncates the path list, walks the tree and reports the
// accumulated total, framed by the sentinel.
func (s *session) handleTraverse(path string) {
	count, ok := s.runTraversal(path)
	if !ok {
		_ = s.send(EndMark)
		return
	}

	_ = s.send(fmt.Sprintf("\nTotal Files: %d\n", count))
	_ = s.send(EndMark)

	logger.Info("Traversal completed", "user", s.username, "path", path, "files", count)
}

// handleSearch parses "SEARCH <path> <pattern>", reruns the traversal to
// rebuild the path list, scans every listed file for the pattern, and
// reports the matches. A line with no space separating path from pattern
// is silently ignored.
func (s *session) handleSearch(line string) {
	rest := argAfter(line, verbSearch)
	idx := strings.Index(rest, " ")
	if idx < 0 {
		// Malformed input: no response at all, session stays usable.
		return
	}
	path := rest[:idx]
	pattern := rest[idx+1:] // may itself contain spaces

	if _, ok := s.runTraversal(path); !ok {
		_ = s.send(EndMark)
		return
	}

	matches, err := scanList(s.pathList(), pattern)
	if err != nil {
		// The scan reports whatever it matched before failing.
		logger.Error("Content scan aborted", "user", s.username, "error", err)
	}

	if len(matches) == 0 {
		_ = s.send("\nNo matches found\n")
	} else {
		_ = s.send("\nMatched Files:\n")
		for _, file := range matches {
			_ = s.send(file + "\n")
		}
	}
	_ = s.send(EndMark)

	logger.Info("Search completed", "user", s.username, "path", path, "matches", len(matches))
}

// runTraversal resets the session's path list and walks path, streaming
// announcements to the peer. Returns the file count and whether the path
// list could be prepared at all.
func (s *session) runTraversal(path string) (int, bool) {
	if err := os.MkdirAll(s.scratchDir, 0755); err != nil {
		logger.Error("Failed to create scratch directory", "dir", s.scratchDir, "error", err)
		_ = s.send("ERROR: Failed to prepare path list\n")
		return 0, false
	}

	// Truncated at the start of every traversal, never carried across
	// requests.
	list, err := os.OpenFile(s.pathList(), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		logger.Error("Failed to open path list", "path", s.pathList(), "error", err)
		_ = s.send("ERROR: Failed to prepare path list\n")
		return 0, false
	}
	defer list.Close()

	count := s.walk(path, list)
	if s.metrics != nil {
		s.metrics.FilesTraversed(count)
	}
	return count, true
}
