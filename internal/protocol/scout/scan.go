package scout

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
)

// scanList reads the path list written by a traversal and returns, in list
// order, every path whose full content contains pattern as an exact
// substring.
//
// Files that cannot be opened are skipped silently. A read failure after a
// file was successfully opened is fatal for the whole scan: the error is
// returned together with the matches accumulated so far, and the remaining
// paths are not scanned.
func scanList(listPath, pattern string) ([]string, error) {
	in, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open path list %s: %w", listPath, err)
	}
	defer in.Close()

	needle := []byte(pattern)
	var matches []string

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		path := scanner.Text()
		if path == "" {
			continue
		}

		f, err := os.Open(path)
		if err != nil {
			continue
		}

		// Whole content in memory; presence of the substring is all that
		// is reported, not occurrence counts.
		content, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return matches, fmt.Errorf("read failed for %s: %w", path, err)
		}

		if bytes.Contains(content, needle) {
			matches = append(matches, path)
		}
	}
	if err := scanner.Err(); err != nil {
		return matches, fmt.Errorf("failed reading path list %s: %w", listPath, err)
	}

	return matches, nil
}
