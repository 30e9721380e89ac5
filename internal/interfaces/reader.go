package interfaces

import "github.com/lgiavedoni/claw-tools/internal/types"

// LogReader defines the interface for reading agent log files from disk
type LogReader interface {
	// ReadLines reads the named file under dir and returns its lines.
	// A missing file or directory returns an error matching
	// reader.ErrNotFound via errors.Is; other I/O failures are hard errors.
	ReadLines(dir, file string) ([]string, error)

	// ListFiles returns the log files available under dir, newest first.
	ListFiles(dir string) ([]types.FileInfo, error)
}
