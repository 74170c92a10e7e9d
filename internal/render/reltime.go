package render

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// gitDateLayouts are the --date formats git prints that carry a time zone.
var gitDateLayouts = []string{
	"Mon Jan 2 15:04:05 2006 -0700",  // default
	"Mon, 2 Jan 2006 15:04:05 -0700", // rfc
	"2006-01-02 15:04:05 -0700",      // iso
	time.RFC3339,                     // iso-strict
}

// ParseGitDate parses a date as printed by git log or git show.
func ParseGitDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range gitDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// RelativeTime describes t relative to now, e.g. "3 hours ago".
func RelativeTime(t, now time.Time) string {
	return humanize.RelTime(t, now, "ago", "from now")
}
