package utils

import (
	"fmt"
	"strings"
)

// NormalizeHexColor accepts "#abc", "abc", "#aabbcc" or "aabbcc" (any case)
// and returns the long lowercase form "#aabbcc".
func NormalizeHexColor(color string) (string, error) {
	s := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(color), "#"))

	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')) {
			return "", fmt.Errorf("invalid hex color %q", color)
		}
	}

	switch len(s) {
	case 3:
		return fmt.Sprintf("#%c%c%c%c%c%c", s[0], s[0], s[1], s[1], s[2], s[2]), nil
	case 6:
		return "#" + s, nil
	default:
		return "", fmt.Errorf("invalid hex color %q", color)
	}
}
