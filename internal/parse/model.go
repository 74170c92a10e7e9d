package parse

import (
	"encoding/json"
	"time"
)

type ChangeKind string

const (
	ChangeModified ChangeKind = "modified"
	ChangeAdded    ChangeKind = "added"
	ChangeDeleted  ChangeKind = "deleted"
)

type LineKind string

const (
	LineAdded   LineKind = "added"
	LineRemoved LineKind = "removed"
	LineContext LineKind = "context"
)

// DiffLine is one classified line inside a hunk. Added and removed lines carry
// LineNumber; context lines carry both OldLineNumber and NewLineNumber.
type DiffLine struct {
	Kind          LineKind `json:"type" yaml:"type"`
	Content       string   `json:"content" yaml:"content"`
	LineNumber    int      `json:"lineNumber,omitempty" yaml:"lineNumber,omitempty"`
	OldLineNumber int      `json:"oldLineNumber,omitempty" yaml:"oldLineNumber,omitempty"`
	NewLineNumber int      `json:"newLineNumber,omitempty" yaml:"newLineNumber,omitempty"`
	Raw           string   `json:"raw" yaml:"raw"`
}

type Hunk struct {
	Header  string     `json:"header" yaml:"header"`
	Context string     `json:"context" yaml:"context"`
	Lines   []DiffLine `json:"lines" yaml:"lines"`
}

// Stats counts the added and removed lines of the hunk.
func (h Hunk) Stats() (added, removed int) {
	for _, l := range h.Lines {
		switch l.Kind {
		case LineAdded:
			added++
		case LineRemoved:
			removed++
		}
	}
	return added, removed
}

type FileChange struct {
	OldPath string     `json:"oldPath" yaml:"oldPath"`
	NewPath string     `json:"newPath" yaml:"newPath"`
	Kind    ChangeKind `json:"type" yaml:"type"`
	Index   string     `json:"index" yaml:"index"`
	Hunks   []Hunk     `json:"hunks" yaml:"hunks"`
}

// Stats sums the per-hunk counts of the file.
func (f FileChange) Stats() (added, removed int) {
	for _, h := range f.Hunks {
		a, r := h.Stats()
		added += a
		removed += r
	}
	return added, removed
}

// DisplayPath prefers the new path, matching how git names a change.
func (f FileChange) DisplayPath() string {
	if f.NewPath != "" && f.NewPath != unknownPath {
		return f.NewPath
	}
	if f.OldPath != "" {
		return f.OldPath
	}
	return f.NewPath
}

type Totals struct {
	Added   int `json:"added" yaml:"added"`
	Removed int `json:"removed" yaml:"removed"`
}

type DiffResult struct {
	Files       []FileChange `json:"files" yaml:"files"`
	Totals      Totals       `json:"stats" yaml:"stats"`
	GeneratedAt time.Time    `json:"timestamp" yaml:"timestamp"`
}

type Commit struct {
	Hash    string      `json:"hash" yaml:"hash"`
	Author  string      `json:"author" yaml:"author"`
	Date    string      `json:"date" yaml:"date"`
	Message string      `json:"message" yaml:"message"`
	Diff    *DiffResult `json:"diff,omitempty" yaml:"diff,omitempty"`
}

type LogResult struct {
	Commits     []Commit  `json:"commits" yaml:"commits"`
	TotalCount  int       `json:"totalCount" yaml:"totalCount"`
	GeneratedAt time.Time `json:"timestamp" yaml:"timestamp"`
}

// ShowResult has two shapes. A single commit is exposed flattened through
// Commit and Diff; several commits are exposed through Commits with
// IsMultiple set. Only one shape is populated at a time.
type ShowResult struct {
	Commit      *Commit
	Diff        *DiffResult
	Commits     []Commit
	IsMultiple  bool
	GeneratedAt time.Time
}

type singleShow struct {
	Commit      *Commit     `json:"commit" yaml:"commit"`
	Diff        *DiffResult `json:"diff" yaml:"diff"`
	GeneratedAt time.Time   `json:"timestamp" yaml:"timestamp"`
}

type multipleShow struct {
	Commits     []Commit  `json:"commits" yaml:"commits"`
	IsMultiple  bool      `json:"isMultiple" yaml:"isMultiple"`
	GeneratedAt time.Time `json:"timestamp" yaml:"timestamp"`
}

func (s *ShowResult) shape() any {
	if s.IsMultiple {
		return multipleShow{Commits: s.Commits, IsMultiple: true, GeneratedAt: s.GeneratedAt}
	}
	return singleShow{Commit: s.Commit, Diff: s.Diff, GeneratedAt: s.GeneratedAt}
}

func (s *ShowResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.shape())
}

func (s *ShowResult) MarshalYAML() (any, error) {
	return s.shape(), nil
}

func (s *ShowResult) UnmarshalJSON(data []byte) error {
	var probe struct {
		IsMultiple bool `json:"isMultiple"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	if probe.IsMultiple {
		var m multipleShow
		if err := json.Unmarshal(data, &m); err != nil {
			return err
		}
		*s = ShowResult{Commits: m.Commits, IsMultiple: true, GeneratedAt: m.GeneratedAt}
		return nil
	}
	var single singleShow
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*s = ShowResult{Commit: single.Commit, Diff: single.Diff, GeneratedAt: single.GeneratedAt}
	return nil
}

// AllCommits returns the commits of either shape, each carrying its diff.
func (s *ShowResult) AllCommits() []Commit {
	if s.IsMultiple {
		return s.Commits
	}
	if s.Commit == nil {
		return nil
	}
	c := *s.Commit
	c.Diff = s.Diff
	return []Commit{c}
}
