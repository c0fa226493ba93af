package scout

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dirscout/dirscout/internal/logger"
)

// walk traverses one directory subtree, streaming announcements to the
// peer and appending regular file paths to list. It returns the number of
// regular files found anywhere under path.
//
// Each invocation contains its own failures: an error deep in the tree
// aborts only that subtree, and siblings already being enumerated by the
// caller continue. The count accumulated so far in a failing frame still
// propagates up, so the reported total covers everything that was
// actually visited.
func (s *session) walk(path string, list *os.File) int {
	count, err := s.walkDir(path, list)
	if err != nil {
		logger.Error("Traversal branch aborted", "user", s.username, "path", path, "error", err)
	}
	return count
}

// walkDir enumerates a single directory frame. The peer sees one
// "Directory: <path>" line per visited directory and one "File: <path>"
// line per regular file. Enumeration order is whatever the OS returns.
//
// Symbolic links are resolved by os.Stat, so a link cycle can recurse
// until the stack runs out; cycles are not detected.
func (s *session) walkDir(path string, list *os.File) (int, error) {
	dir, err := os.Open(path)
	if err != nil {
		_ = s.send("ERROR: Cannot open directory: " + path + "\n")
		return 0, fmt.Errorf("failed to open directory %s: %w", path, err)
	}
	// Readdirnames instead of os.ReadDir: the latter sorts, while the
	// protocol exposes filesystem enumeration order.
	names, readErr := dir.Readdirnames(-1)
	_ = dir.Close()
	if readErr != nil {
		_ = s.send("ERROR: Cannot open directory: " + path + "\n")
		return 0, fmt.Errorf("failed to read directory %s: %w", path, readErr)
	}

	if err := s.send("Directory: " + path + "\n"); err != nil {
		return 0, fmt.Errorf("failed to send directory announcement: %w", err)
	}

	count := 0
	for _, name := range names {
		fullPath := filepath.Join(path, name)

		// Entries whose metadata cannot be retrieved are skipped; they
		// affect neither the counter nor the rest of the walk.
		info, err := os.Stat(fullPath)
		if err != nil {
			continue
		}

		switch {
		case info.IsDir():
			count += s.walk(fullPath, list)

		case info.Mode().IsRegular():
			count++
			if err := s.send("File: " + fullPath + "\n"); err != nil {
				// Announcements are best effort; the file still counts.
				continue
			}
			if _, err := list.WriteString(fullPath + "\n"); err != nil {
				_ = s.send("ERROR: Failed writing to path list\n")
				return count, fmt.Errorf("failed to append %s to path list: %w", fullPath, err)
			}
		}
	}

	return count, nil
}
