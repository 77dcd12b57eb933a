package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Local writes snapshots to the local filesystem.
type Local struct {
	baseDir string
}

// NewLocal creates a filesystem-backed snapshot store rooted at baseDir.
func NewLocal(baseDir string) (*Local, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &Local{baseDir: baseDir}, nil
}

// SaveSnapshot writes the body under the snapshot path and returns a file://
// URI.
func (l *Local) SaveSnapshot(_ context.Context, site, rawURL string, body []byte) (string, error) {
	fullPath := filepath.Join(l.baseDir, filepath.FromSlash(objectPath(site, rawURL, time.Now())))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return "", fmt.Errorf("create snapshot directory: %w", err)
	}
	if err := os.WriteFile(fullPath, body, 0o600); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return "file://" + fullPath, nil
}
