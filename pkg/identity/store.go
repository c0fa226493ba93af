package identity

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the file-backed credential ledger.
//
// Lookup scans the ledger linearly; the first record for a username wins.
// Append adds a record to the end of the file. The two operations are
// intentionally NOT atomic as a pair: two sessions registering the same
// new username concurrently can both observe "not found" and both append,
// leaving duplicate records. The first record still wins on every later
// lookup. The internal mutex only serializes writes so that individual
// ledger lines are never interleaved.
type Store struct {
	path string

	mu sync.Mutex // guards appends
}

// NewStore creates a ledger store backed by the file at path.
// The file is created lazily on first append.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the ledger file path.
func (s *Store) Path() string {
	return s.path
}

// Lookup scans the ledger for username and returns the first matching
// record. A missing ledger file is treated as "not found" so that the
// very first registration can proceed.
func (s *Store) Lookup(username string) (Credential, bool, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Credential{}, false, nil
		}
		return Credential{}, false, fmt.Errorf("failed to open credential ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cred, err := ParseRecord(line)
		if err != nil {
			// A damaged line does not invalidate the rest of the ledger.
			continue
		}
		if cred.Username == username {
			return cred, true, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return Credential{}, false, fmt.Errorf("failed to read credential ledger: %w", err)
	}

	return Credential{}, false, nil
}

// Append adds one record to the end of the ledger.
func (s *Store) Append(cred Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open credential ledger for append: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(cred.String() + "\n"); err != nil {
		return fmt.Errorf("failed to append credential record: %w", err)
	}
	return nil
}

// List returns every record in the ledger in file order, including
// duplicate usernames left behind by concurrent registrations.
func (s *Store) List() ([]Credential, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open credential ledger: %w", err)
	}
	defer f.Close()

	var creds []Credential
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		cred, err := ParseRecord(line)
		if err != nil {
			continue
		}
		creds = append(creds, cred)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read credential ledger: %w", err)
	}

	return creds, nil
}
