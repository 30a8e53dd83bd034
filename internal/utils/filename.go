package utils

import (
	"regexp"
	"strings"
)

const maxFilenameRunes = 200

var (
	// Characters invalid in filenames on most filesystems
	invalidFilenameChars = regexp.MustCompile(`[<>:"/\\|?*#]`)
	multipleSpaces       = regexp.MustCompile(`\s+`)
)

// SanitizeFilename turns a series title into a portable file name (without extension).
// Square brackets become parentheses so the name survives wiki-style links.
func SanitizeFilename(name string) string {
	name = invalidFilenameChars.ReplaceAllString(name, "")
	name = multipleSpaces.ReplaceAllString(name, " ")
	name = strings.NewReplacer("[", "(", "]", ")").Replace(name)
	name = strings.TrimSpace(name)

	// Count runes, not bytes: titles are often Japanese.
	if runes := []rune(name); len(runes) > maxFilenameRunes {
		name = strings.TrimSpace(string(runes[:maxFilenameRunes]))
	}

	// Dot-only names would resolve to the directory itself.
	if strings.Trim(name, ".") == "" {
		return "Untitled"
	}
	return name
}
