package parse

import (
	"regexp"
	"strings"
)

type Tag uint8

const (
	TagUnknown Tag = iota
	TagFileBoundary
	TagIndexInfo
	TagPathInfo
	TagHunkBoundary
	TagAdded
	TagRemoved
	TagContext
	TagCommitBoundary
	TagAuthor
	TagDate
	TagMessage
	TagBlank
	// TagExtendedHeader covers the git header lines between "diff --git"
	// and "---" that name file modes ("new file mode", "deleted file mode").
	TagExtendedHeader
)

var tagNames = [...]string{
	TagUnknown:        "unknown",
	TagFileBoundary:   "file-boundary",
	TagIndexInfo:      "index-info",
	TagPathInfo:       "path-info",
	TagHunkBoundary:   "hunk-boundary",
	TagAdded:          "added",
	TagRemoved:        "removed",
	TagContext:        "context",
	TagCommitBoundary: "commit-boundary",
	TagAuthor:         "author",
	TagDate:           "date",
	TagMessage:        "message",
	TagBlank:          "blank",
	TagExtendedHeader: "extended-header",
}

func (t Tag) String() string {
	if int(t) < len(tagNames) {
		return tagNames[t]
	}
	return "unknown"
}

const (
	unknownPath = "unknown"
	devNull     = "/dev/null"

	prefixDiff    = "diff "
	prefixDiffGit = "diff --git "
	prefixIndex   = "index "
	prefixOldPath = "--- "
	prefixNewPath = "+++ "
	prefixHunk    = "@@"
	prefixCommit  = "commit "
	prefixAuthor  = "Author: "
	prefixDate    = "Date: "
	messageIndent = "    "
)

var extendedHeaderPrefixes = []string{
	"new file mode ",
	"deleted file mode ",
	"old mode ",
	"new mode ",
	"similarity index ",
	"dissimilarity index ",
	"rename from ",
	"rename to ",
	"copy from ",
	"copy to ",
	"Binary files ",
}

// Context describes where the diff parser is when a line is classified.
type Context struct {
	InFile bool
	InHunk bool
}

// Classified is the tag of one line plus the data extracted from it.
type Classified struct {
	Tag     Tag
	Payload string
	Raw     string

	// File boundary paths.
	OldPath string
	NewPath string
	// Path-info and extended header change kind signal; empty when the line
	// says nothing about the kind.
	Kind ChangeKind
	// Text after the second "@@" of a hunk boundary.
	HunkContext string
}

// Classify tags one diff line. Structural prefixes are tested before the
// generic +/- rules so "--- " and "+++ " never count as content. Any other
// non-empty text, including "\ No newline at end of file", is context.
func Classify(line string, ctx Context) Classified {
	c := Classified{Raw: line}
	switch {
	case strings.HasPrefix(line, prefixDiff):
		c.Tag = TagFileBoundary
		c.Payload = line
		c.OldPath, c.NewPath = parseFileBoundary(line)
	case strings.HasPrefix(line, prefixIndex):
		c.Tag = TagIndexInfo
		c.Payload = line[len(prefixIndex):]
	case strings.HasPrefix(line, prefixOldPath):
		c.Tag = TagPathInfo
		c.Payload = line[len(prefixOldPath):]
		if pathField(c.Payload) == devNull {
			c.Kind = ChangeAdded
		}
	case strings.HasPrefix(line, prefixNewPath):
		c.Tag = TagPathInfo
		c.Payload = line[len(prefixNewPath):]
		if pathField(c.Payload) == devNull {
			c.Kind = ChangeDeleted
		}
	case strings.HasPrefix(line, prefixHunk):
		c.Tag = TagHunkBoundary
		c.Payload = line
		c.HunkContext = hunkContext(line)
	case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
		c.Tag = TagAdded
		c.Payload = line[1:]
	case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
		c.Tag = TagRemoved
		c.Payload = line[1:]
	case strings.HasPrefix(line, " "):
		c.Tag = TagContext
		c.Payload = line[1:]
	case !ctx.InHunk && isExtendedHeader(line):
		c.Tag = TagExtendedHeader
		c.Payload = line
		switch {
		case strings.HasPrefix(line, "new file mode "):
			c.Kind = ChangeAdded
		case strings.HasPrefix(line, "deleted file mode "):
			c.Kind = ChangeDeleted
		}
	case line == "":
		c.Tag = TagBlank
	default:
		c.Tag = TagContext
		c.Payload = line
	}
	return c
}

// ClassifyMetadata tags one line of log or show output.
func ClassifyMetadata(line string) Classified {
	c := Classified{Raw: line}
	switch {
	case strings.HasPrefix(line, prefixCommit):
		c.Tag = TagCommitBoundary
		c.Payload = line[len(prefixCommit):]
	case strings.HasPrefix(line, prefixAuthor):
		c.Tag = TagAuthor
		c.Payload = line[len(prefixAuthor):]
	case strings.HasPrefix(line, prefixDate):
		c.Tag = TagDate
		c.Payload = line[len(prefixDate):]
	case strings.HasPrefix(line, prefixDiffGit):
		c.Tag = TagFileBoundary
		c.Payload = line
		c.OldPath, c.NewPath = parseFileBoundary(line)
	case strings.TrimSpace(line) == "":
		c.Tag = TagBlank
	case strings.HasPrefix(line, messageIndent):
		c.Tag = TagMessage
		c.Payload = line[len(messageIndent):]
	default:
		c.Tag = TagUnknown
		c.Payload = line
	}
	return c
}

func isExtendedHeader(line string) bool {
	for _, p := range extendedHeaderPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// pathField drops the tab-separated timestamp that plain "diff -u" appends.
func pathField(payload string) string {
	path, _, _ := strings.Cut(payload, "\t")
	return strings.TrimSpace(path)
}

func hunkContext(line string) string {
	parts := strings.SplitN(line, prefixHunk, 3)
	if len(parts) < 3 {
		return ""
	}
	return strings.TrimSpace(parts[2])
}

var fileBoundaryRe = regexp.MustCompile(`^diff --git a/(.*?) b/(.*)$`)

// parseFileBoundary extracts both paths of a "diff --git" line. Quoted paths
// are unescaped; when an unquoted line is ambiguous the split that yields
// identical paths wins.
func parseFileBoundary(line string) (oldPath, newPath string) {
	if !strings.HasPrefix(line, prefixDiffGit) {
		return unknownPath, unknownPath
	}
	rest := strings.TrimSpace(line[len(prefixDiffGit):])
	if strings.HasPrefix(rest, `"`) || strings.HasSuffix(rest, `"`) {
		tokens := diffLineTokens(rest)
		if len(tokens) >= 2 {
			return normalizeDiffPath(tokens[0]), normalizeDiffPath(tokens[1])
		}
		return unknownPath, unknownPath
	}
	if !strings.HasPrefix(rest, "a/") {
		return unknownPath, unknownPath
	}
	body := rest[len("a/"):]
	for i := 0; i < len(body); i++ {
		j := strings.Index(body[i:], " b/")
		if j < 0 {
			break
		}
		j += i
		if body[:j] == body[j+len(" b/"):] {
			return body[:j], body[j+len(" b/"):]
		}
		i = j
	}
	m := fileBoundaryRe.FindStringSubmatch(line)
	if m == nil {
		return unknownPath, unknownPath
	}
	return m[1], m[2]
}

func diffLineTokens(s string) []string {
	var tokens []string
	for {
		s = strings.TrimLeft(s, " \t")
		if s == "" {
			break
		}
		if s[0] == '"' {
			var buf strings.Builder
			escaped := false
			i := 1
			for i < len(s) {
				ch := s[i]
				if escaped {
					buf.WriteByte(unescapeByte(ch))
					escaped = false
					i++
					continue
				}
				if ch == '\\' {
					escaped = true
					i++
					continue
				}
				if ch == '"' {
					i++
					break
				}
				buf.WriteByte(ch)
				i++
			}
			tokens = append(tokens, buf.String())
			s = s[i:]
			continue
		}
		j := 0
		for j < len(s) && s[j] != ' ' && s[j] != '\t' {
			j++
		}
		tokens = append(tokens, s[:j])
		s = s[j:]
	}
	return tokens
}

func unescapeByte(ch byte) byte {
	switch ch {
	case 't':
		return '\t'
	case 'n':
		return '\n'
	default:
		return ch
	}
}

func normalizeDiffPath(token string) string {
	if token == devNull {
		return token
	}
	token = strings.TrimPrefix(token, "a/")
	token = strings.TrimPrefix(token, "b/")
	return token
}
