package reporting

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultPathManager implements path management functionality
type DefaultPathManager struct {
	root string
}

// NewDefaultPathManager creates a path manager rooted at root ("results"
// when empty).
func NewDefaultPathManager(root string) *DefaultPathManager {
	if strings.TrimSpace(root) == "" {
		root = "results"
	}
	return &DefaultPathManager{root: root}
}

// GetDefaultOutputDir returns <root>/<SYMBOL>_<variant>.
func (p *DefaultPathManager) GetDefaultOutputDir(symbol, variant string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	v := strings.ToLower(strings.TrimSpace(variant))
	if s == "" {
		s = "UNKNOWN"
	}
	if v == "" {
		v = "ga"
	}

	return filepath.Join(p.root, fmt.Sprintf("%s_%s", s, v))
}

// EnsureDirectoryExists creates the parent directory of path if needed
func (p *DefaultPathManager) EnsureDirectoryExists(path string) error {
	return ensureParentDir(path)
}

func ensureParentDir(path string) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DefaultOutputDir is a convenience wrapper over the default path manager
func DefaultOutputDir(symbol, variant string) string {
	return NewDefaultPathManager("").GetDefaultOutputDir(symbol, variant)
}
