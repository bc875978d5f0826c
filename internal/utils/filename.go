package utils

import (
	"regexp"
	"strings"
)

var (
	// Anything that is not safe in an object key or URL path segment
	unsafeKeyChars = regexp.MustCompile(`[^a-z0-9._-]+`)
	// Runs of separators to collapse
	repeatedDashes = regexp.MustCompile(`-{2,}`)
)

// SanitizeFilename turns an uploaded file's base name (without extension)
// into a lowercase slug usable in storage keys and URLs.
func SanitizeFilename(filename string) string {
	filename = strings.ToLower(strings.TrimSpace(filename))
	filename = unsafeKeyChars.ReplaceAllString(filename, "-")
	filename = repeatedDashes.ReplaceAllString(filename, "-")
	filename = strings.Trim(filename, "-.")

	if len(filename) > 100 {
		filename = strings.Trim(filename[:100], "-.")
	}

	if filename == "" {
		filename = "image"
	}

	return filename
}
