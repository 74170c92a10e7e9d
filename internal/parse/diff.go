// Package parse turns the text output of git diff, git log and git show into
// a structured document model.
//
// Parsing never fails: malformed or unexpected lines are dropped or defaulted
// so any text yields a valid, possibly empty, result. Every call builds fresh
// values and shares no state, so independent inputs can be parsed in
// parallel.
package parse

import (
	"strings"
	"time"
)

type diffState uint8

const (
	stateNoFile diffState = iota
	stateInFile
	stateInHunk
)

func (s diffState) String() string {
	switch s {
	case stateInFile:
		return "in-file"
	case stateInHunk:
		return "in-hunk"
	default:
		return "no-file"
	}
}

type diffAction uint8

const (
	actNone diffAction = iota
	actOpenFile
	actOpenImplicitFile
	actPathInfo
	actIndexInfo
	actExtendedHeader
	actOpenHunk
	actAppendLine
)

// transition is the diff state machine: it maps the current state and a
// classified line to the next state and the action that line triggers.
func transition(s diffState, c Classified) (diffState, diffAction) {
	switch c.Tag {
	case TagFileBoundary:
		return stateInFile, actOpenFile
	case TagIndexInfo:
		if s == stateNoFile {
			return s, actNone
		}
		return s, actIndexInfo
	case TagPathInfo:
		if s == stateNoFile {
			// Plain "diff -u" output has no "diff --git" line.
			return stateInFile, actOpenImplicitFile
		}
		return s, actPathInfo
	case TagExtendedHeader:
		if s == stateInFile {
			return s, actExtendedHeader
		}
		return s, actNone
	case TagHunkBoundary:
		if s == stateNoFile {
			return s, actNone
		}
		return stateInHunk, actOpenHunk
	case TagAdded, TagRemoved, TagContext:
		if s == stateInHunk {
			return s, actAppendLine
		}
		return s, actNone
	default:
		return s, actNone
	}
}

type diffParser struct {
	state  diffState
	result *DiffResult

	file         *FileChange
	implicitFile bool

	oldLine int
	newLine int
}

func newDiffParser() *diffParser {
	return &diffParser{
		result: &DiffResult{
			Files:       []FileChange{},
			GeneratedAt: time.Now(),
		},
	}
}

// ParseDiff parses unified diff text, as printed by git diff, into files,
// hunks and numbered lines.
func ParseDiff(text string) *DiffResult {
	p := newDiffParser()
	for _, line := range splitLines(text) {
		p.feed(line)
	}
	return p.finish()
}

func (p *diffParser) context() Context {
	return Context{
		InFile: p.state != stateNoFile,
		InHunk: p.state == stateInHunk,
	}
}

func (p *diffParser) feed(line string) {
	c := Classify(line, p.context())
	next, act := transition(p.state, c)
	p.apply(act, c)
	p.state = next
}

func (p *diffParser) apply(act diffAction, c Classified) {
	switch act {
	case actOpenFile:
		p.closeFile()
		p.file = newFileChange(c.OldPath, c.NewPath)
		p.implicitFile = false
	case actOpenImplicitFile:
		p.closeFile()
		p.file = newFileChange(unknownPath, unknownPath)
		p.implicitFile = true
		p.pathInfo(c)
	case actPathInfo:
		p.pathInfo(c)
	case actIndexInfo:
		p.file.Index = c.Payload
	case actExtendedHeader:
		if c.Kind != "" {
			p.file.Kind = c.Kind
		}
	case actOpenHunk:
		p.openHunk(c)
	case actAppendLine:
		p.appendLine(c)
	}
}

func newFileChange(oldPath, newPath string) *FileChange {
	return &FileChange{
		OldPath: oldPath,
		NewPath: newPath,
		Kind:    ChangeModified,
		Hunks:   []Hunk{},
	}
}

func (p *diffParser) pathInfo(c Classified) {
	if c.Kind != "" {
		p.file.Kind = c.Kind
	}
	// Inside a hunk a path line only refines the change kind.
	if !p.implicitFile || p.state == stateInHunk {
		return
	}
	path := normalizeDiffPath(pathField(c.Payload))
	if path == devNull {
		return
	}
	if strings.HasPrefix(c.Raw, prefixOldPath) {
		p.file.OldPath = path
		if p.file.NewPath == unknownPath {
			p.file.NewPath = path
		}
		return
	}
	p.file.NewPath = path
	if p.file.OldPath == unknownPath {
		p.file.OldPath = path
	}
}

func (p *diffParser) openHunk(c Classified) {
	p.file.Hunks = append(p.file.Hunks, Hunk{
		Header:  c.Payload,
		Context: c.HunkContext,
		Lines:   []DiffLine{},
	})
	r, ok := DecodeHunkHeader(c.Payload)
	if !ok {
		// Keep counting from wherever the previous hunk stopped.
		return
	}
	p.oldLine, p.newLine = r.OldStart, r.NewStart
}

func (p *diffParser) currentHunk() *Hunk {
	return &p.file.Hunks[len(p.file.Hunks)-1]
}

func (p *diffParser) appendLine(c Classified) {
	h := p.currentHunk()
	line := DiffLine{Content: c.Payload, Raw: c.Raw}
	switch c.Tag {
	case TagAdded:
		line.Kind = LineAdded
		line.LineNumber = p.newLine
		p.newLine++
		p.result.Totals.Added++
	case TagRemoved:
		line.Kind = LineRemoved
		line.LineNumber = p.oldLine
		p.oldLine++
		p.result.Totals.Removed++
	default:
		line.Kind = LineContext
		line.OldLineNumber = p.oldLine
		line.NewLineNumber = p.newLine
		p.oldLine++
		p.newLine++
	}
	h.Lines = append(h.Lines, line)
}

func (p *diffParser) closeFile() {
	if p.file == nil {
		return
	}
	p.result.Files = append(p.result.Files, *p.file)
	p.file = nil
	p.implicitFile = false
}

func (p *diffParser) finish() *DiffResult {
	p.closeFile()
	p.state = stateNoFile
	return p.result
}

// splitLines splits captured command output into lines without their
// terminators. A trailing newline does not produce an extra empty line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
