package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FixtureSource resolves locators as paths relative to an archive root of
// saved HTML snapshots.
type FixtureSource struct {
	basePath string
}

// NewFixtureSource creates a source reading fixtures under basePath.
func NewFixtureSource(basePath string) *FixtureSource {
	return &FixtureSource{basePath: basePath}
}

// Fetch reads one archived page.
func (s *FixtureSource) Fetch(_ context.Context, relativePath string) (string, error) {
	absolutePath := filepath.Join(s.basePath, strings.TrimLeft(relativePath, "/"))

	data, err := os.ReadFile(absolutePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("fixture not found: %s: %w", absolutePath, ErrUnavailable)
		}
		return "", fmt.Errorf("reading fixture %s: %v: %w", absolutePath, err, ErrUnavailable)
	}

	return string(data), nil
}
