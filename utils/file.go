package utils

import (
	"fmt"
	"os"
	"strings"
)

// SanitizeNameComponent strips a name down to characters safe for filenames:
// letters, digits, space, dash and underscore, with trailing spaces removed
func SanitizeNameComponent(name string) string {
	var b strings.Builder
	for _, r := range name {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == ' ' || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// EnsureDir creates the directory (and parents) if it does not exist
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}
