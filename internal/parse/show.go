package parse

import (
	"strings"
	"time"
)

// lineCursor walks lines with one line of pushback.
type lineCursor struct {
	lines []string
	pos   int
}

func (c *lineCursor) next() (string, bool) {
	if c.pos >= len(c.lines) {
		return "", false
	}
	line := c.lines[c.pos]
	c.pos++
	return line, true
}

func (c *lineCursor) unread() {
	if c.pos > 0 {
		c.pos--
	}
}

type showMode uint8

const (
	modeMetadata showMode = iota
	modeMessage
	modeDiff
)

// pendingCommit accumulates one commit block until its boundary is reached.
type pendingCommit struct {
	commit    Commit
	message   []string
	diffLines []string
}

func (p *pendingCommit) finalize() Commit {
	c := p.commit
	c.Message = strings.TrimSpace(strings.Join(p.message, "\n"))
	if len(p.diffLines) > 0 {
		c.Diff = ParseDiff(strings.Join(p.diffLines, "\n"))
	}
	return c
}

type showParser struct {
	mode    showMode
	pending *pendingCommit
	// orphanDiff holds diff lines seen before any commit line.
	orphanDiff []string
	commits    []Commit
}

// ParseShow parses "git show" output holding one or more commit blocks, each
// optionally followed by its diff.
func ParseShow(text string) *ShowResult {
	p := &showParser{}
	cur := &lineCursor{lines: splitLines(text)}
	for {
		line, ok := cur.next()
		if !ok {
			break
		}
		if p.mode == modeDiff {
			if strings.HasPrefix(line, prefixCommit) {
				p.mode = modeMetadata
				cur.unread()
				continue
			}
			p.appendDiff(line)
			continue
		}
		p.metadata(line)
	}
	p.flush()
	return p.result()
}

func (p *showParser) metadata(line string) {
	c := ClassifyMetadata(line)
	switch c.Tag {
	case TagCommitBoundary:
		p.flush()
		p.pending = &pendingCommit{commit: Commit{Hash: c.Payload}}
		p.mode = modeMetadata
		return
	case TagFileBoundary:
		p.mode = modeDiff
		p.startDiff(line)
		return
	case TagAuthor:
		if p.pending != nil {
			p.pending.commit.Author = c.Payload
		}
		return
	case TagDate:
		if p.pending != nil {
			p.pending.commit.Date = c.Payload
			p.mode = modeMessage
		}
		return
	}
	if p.mode != modeMessage || p.pending == nil {
		return
	}
	msg := p.pending.message
	switch {
	case strings.TrimSpace(line) == "":
		if len(msg) > 0 {
			p.pending.message = append(msg, "")
		}
	case strings.HasPrefix(line, messageIndent):
		p.pending.message = append(msg, line[len(messageIndent):])
	default:
		p.pending.message = append(msg, strings.TrimSpace(line))
	}
}

func (p *showParser) startDiff(line string) {
	if p.pending == nil {
		p.orphanDiff = []string{line}
		return
	}
	p.pending.diffLines = []string{line}
}

func (p *showParser) appendDiff(line string) {
	if p.pending == nil {
		p.orphanDiff = append(p.orphanDiff, line)
		return
	}
	p.pending.diffLines = append(p.pending.diffLines, line)
}

// flush finalizes the open commit. Diff lines seen before any commit line
// are attached to a placeholder commit with an empty hash.
func (p *showParser) flush() {
	if len(p.orphanDiff) > 0 {
		orphan := &pendingCommit{diffLines: p.orphanDiff}
		p.commits = append(p.commits, orphan.finalize())
		p.orphanDiff = nil
	}
	if p.pending != nil {
		p.commits = append(p.commits, p.pending.finalize())
		p.pending = nil
	}
	p.mode = modeMetadata
}

func (p *showParser) result() *ShowResult {
	now := time.Now()
	switch len(p.commits) {
	case 0:
		return &ShowResult{Commit: &Commit{}, GeneratedAt: now}
	case 1:
		c := p.commits[0]
		diff := c.Diff
		c.Diff = nil
		return &ShowResult{Commit: &c, Diff: diff, GeneratedAt: now}
	default:
		return &ShowResult{Commits: p.commits, IsMultiple: true, GeneratedAt: now}
	}
}
