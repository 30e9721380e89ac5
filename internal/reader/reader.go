package reader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lgiavedoni/claw-tools/internal/interfaces"
	"github.com/lgiavedoni/claw-tools/internal/types"
)

// ErrNotFound reports a missing log file or directory. The boundary layer
// turns it into an explanatory notice rather than a failed response.
var ErrNotFound = errors.New("log file not found")

// FileReader reads agent log files from a directory on local disk.
// Each read loads the whole file; the gateway only ever appends, so
// concurrent reads need no coordination.
type FileReader struct{}

// NewFileReader creates a reader for agent log directories
func NewFileReader() interfaces.LogReader {
	return &FileReader{}
}

// ReadLines reads the named file under dir and returns its lines.
func (r *FileReader) ReadLines(dir, file string) ([]string, error) {
	path, err := resolvePath(dir, file)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to read log file %s: %w", path, err)
	}

	if len(data) == 0 {
		return []string{}, nil
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	return lines, nil
}

// ListFiles returns the log files under dir, newest first.
func (r *FileReader) ListFiles(dir string) ([]types.FileInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, dir)
		}
		return nil, fmt.Errorf("failed to list log directory %s: %w", dir, err)
	}

	files := make([]types.FileInfo, 0, len(entries))
	modTimes := make(map[string]time.Time, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		modTimes[entry.Name()] = info.ModTime()
		files = append(files, types.FileInfo{
			Name:     entry.Name(),
			Size:     info.Size(),
			Modified: info.ModTime().Format(time.RFC3339),
		})
	}

	sort.Slice(files, func(i, j int) bool {
		return modTimes[files[i].Name].After(modTimes[files[j].Name])
	})

	return files, nil
}

// resolvePath joins dir and file, rejecting names that would escape dir.
func resolvePath(dir, file string) (string, error) {
	if file == "" {
		return "", fmt.Errorf("file name cannot be empty")
	}
	if file != filepath.Base(file) {
		return "", fmt.Errorf("invalid file name %q", file)
	}
	return filepath.Join(dir, file), nil
}
