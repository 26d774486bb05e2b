package scraper

import "regexp"

// The widget renders times either as "09:00 - 10:30" or "9:00 AM - 10:30 AM"
// depending on the view settings. Matching is purely structural: out-of-range
// values like "25:99" still match, which is fine because the text is kept
// verbatim and only reparsed at export time.
var (
	timeRange24h = regexp.MustCompile(`(\d{1,2}:\d{2})\s*-\s*(\d{1,2}:\d{2})`)
	timeRange12h = regexp.MustCompile(`(?i)(\d{1,2}:\d{2}\s*[AP]M)\s*-\s*(\d{1,2}:\d{2}\s*[AP]M)`)
)

// ParseTimeRange pulls a start/end pair out of free text. The matched
// substrings are returned unchanged; ("", "") means no range was found, which
// callers treat as "no scheduled time" rather than an error.
func ParseTimeRange(text string) (string, string) {
	if m := timeRange24h.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	if m := timeRange12h.FindStringSubmatch(text); m != nil {
		return m[1], m[2]
	}
	return "", ""
}

// findTimeRange returns the first full time-range substring in text, or "".
func findTimeRange(text string) string {
	if m := timeRange24h.FindString(text); m != "" {
		return m
	}
	if m := timeRange12h.FindString(text); m != "" {
		return m
	}
	return ""
}
