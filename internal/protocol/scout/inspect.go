package scout

import (
	"io"
	"os"

	"github.com/dirscout/dirscout/internal/logger"
)

// inspect streams the raw bytes of one file to the peer in fixed-size
// chunks, terminated by the sentinel.
//
// If the file cannot be opened the peer receives an error line immediately
// followed by the sentinel and nothing else. A read or send failure after
// streaming has begun aborts the transfer without a sentinel; the peer is
// left to notice the missing marker.
func (s *session) inspect(path string) {
	f, err := os.Open(path)
	if err != nil {
		_ = s.send("ERROR: Cannot open file\n" + EndMark)
		logger.Error("Inspect failed", "user", s.username, "path", path, "error", err)
		return
	}
	defer f.Close()

	buf := make([]byte, bufferSize)
	for {
		n, err := f.Read(buf)
		if n > 0 {
			if _, werr := s.conn.Write(buf[:n]); werr != nil {
				logger.Error("Inspect stream send failed", "user", s.username, "path", path, "error", werr)
				return
			}
			if s.metrics != nil {
				s.metrics.BytesStreamed(n)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			logger.Error("Inspect stream read failed", "user", s.username, "path", path, "error", err)
			return
		}
	}

	if err := s.send(EndMark); err != nil {
		logger.Error("Inspect failed to send end marker", "user", s.username, "path", path, "error", err)
	}

	logger.Info("Inspect completed", "user", s.username, "path", path)
}
