package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// volumeMarker matches a trailing volume designation such as ", Vol. 1", " Tome 5",
// " #10" or " T.3". The digits are captured.
var volumeMarker = regexp.MustCompile(`(?i)(?:^|[\s,\-]+)(?:vol(?:ume)?|tome|t|#)\s*[.:]?\s*(\d+)\s*$`)

// ExtractSeriesTitle strips a trailing volume marker from a volume title.
// Titles without a marker come back trimmed; a title that is nothing but a
// marker comes back unchanged.
func ExtractSeriesTitle(volumeTitle string) string {
	trimmed := strings.TrimSpace(volumeTitle)
	loc := volumeMarker.FindStringIndex(trimmed)
	if loc == nil {
		return trimmed
	}
	series := strings.TrimSpace(trimmed[:loc[0]])
	if series == "" {
		return trimmed
	}
	return series
}

// ExtractVolumeNumber returns the number of a trailing volume marker, if any.
func ExtractVolumeNumber(title string) (int, bool) {
	m := volumeMarker.FindStringSubmatch(strings.TrimSpace(title))
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
