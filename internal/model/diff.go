package model

import (
	"fmt"
	"strings"
)

// PreviewMaxLen is the maximum number of characters of a diff echoed back as preview.
const PreviewMaxLen = 1000

// Diff is unified diff text. It's untrusted input, only handed to the patch tool.
type Diff string

// Validate validates the diff.
func (d Diff) Validate() error {
	if strings.TrimSpace(string(d)) == "" {
		return fmt.Errorf("patch is required: %w", ErrNotValid)
	}
	return nil
}

// Preview returns at most n characters of the diff.
func (d Diff) Preview(n int) string {
	if n <= 0 {
		return ""
	}

	// Fast path, a string with n or fewer bytes can't have more than n runes.
	if len(d) <= n {
		return string(d)
	}

	count := 0
	for i := range string(d) {
		if count == n {
			return string(d[:i])
		}
		count++
	}
	return string(d)
}
