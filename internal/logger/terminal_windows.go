//go:build windows

package logger

// Color output is disabled on Windows; plain text works everywhere.
func isTerminal(fd uintptr) bool {
	return false
}
