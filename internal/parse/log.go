package parse

import (
	"strings"
	"time"
)

// ParseLog parses the default "git log" format into commits. Diff content
// that "git log -p" interleaves is skipped.
func ParseLog(text string) *LogResult {
	result := &LogResult{
		Commits:     []Commit{},
		GeneratedAt: time.Now(),
	}
	var (
		current *Commit
		message strings.Builder
		// inPatch is set once the open commit shows diff output; message
		// lines are only taken from the header block before it.
		inPatch bool
	)
	closeCommit := func() {
		if current == nil {
			return
		}
		current.Message = strings.TrimSpace(message.String())
		result.Commits = append(result.Commits, *current)
		current = nil
		message.Reset()
		inPatch = false
	}

	for _, line := range splitLines(text) {
		c := ClassifyMetadata(line)
		switch c.Tag {
		case TagCommitBoundary:
			closeCommit()
			current = &Commit{Hash: c.Payload}
		case TagAuthor:
			if current != nil && !inPatch {
				current.Author = c.Payload
			}
		case TagDate:
			if current != nil && !inPatch {
				current.Date = c.Payload
			}
		case TagFileBoundary:
			inPatch = true
		case TagMessage:
			if current == nil || inPatch {
				continue
			}
			message.WriteString(c.Payload)
			message.WriteByte('\n')
		}
	}
	closeCommit()

	result.TotalCount = len(result.Commits)
	return result
}
