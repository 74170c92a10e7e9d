package parse

import (
	"regexp"
	"strconv"
)

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// HunkRange is the decoded numeric part of a "@@ -a,b +c,d @@" header.
type HunkRange struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
}

// DecodeHunkHeader decodes a hunk header. An omitted count means a single
// line hunk. ok is false when the line does not match.
func DecodeHunkHeader(line string) (r HunkRange, ok bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return HunkRange{}, false
	}
	var err error
	if r.OldStart, err = strconv.Atoi(m[1]); err != nil {
		return HunkRange{}, false
	}
	if r.OldCount, ok = countOrOne(m[2]); !ok {
		return HunkRange{}, false
	}
	if r.NewStart, err = strconv.Atoi(m[3]); err != nil {
		return HunkRange{}, false
	}
	if r.NewCount, ok = countOrOne(m[4]); !ok {
		return HunkRange{}, false
	}
	return r, true
}

func countOrOne(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
