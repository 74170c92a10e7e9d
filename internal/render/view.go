package render

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/chroma/v2"

	"github.com/thiagokokada/git2html/internal/parse"
)

const generatedLayout = "2006-01-02 15:04:05"

type pageView struct {
	Title   string
	Version string
	Theme   Theme
	CSS     template.CSS
	Content template.HTML
}

type totalsView struct {
	Added   int
	Removed int
	Files   int
}

type diffView struct {
	Generated string
	Totals    totalsView
	Files     []fileView
}

type fileView struct {
	Path string
	// OldPath is set only for renames.
	OldPath string
	Kind    parse.ChangeKind
	Added   int
	Removed int
	Hunks   []hunkView
}

type hunkView struct {
	Range   string
	Context string
	Lines   []lineView
}

type lineView struct {
	Kind    parse.LineKind
	Gutter  string
	Content template.HTML
	// Marker is set for "\ No newline at end of file" lines.
	Marker bool
}

type commitView struct {
	Hash     string
	Author   string
	Date     string
	Relative string
	Message  string
}

type logView struct {
	Generated string
	Total     int
	Commits   []commitView
}

type showView struct {
	Generated string
	Commits   []showCommitView
}

type showCommitView struct {
	Commit commitView
	// Diff is nil when the commit has no file changes.
	Diff *diffView
}

func (r *Renderer) diffView(d *parse.DiffResult) diffView {
	return diffView{
		Generated: d.GeneratedAt.Format(generatedLayout),
		Totals: totalsView{
			Added:   d.Totals.Added,
			Removed: d.Totals.Removed,
			Files:   len(d.Files),
		},
		Files: r.fileViews(d.Files),
	}
}

func (r *Renderer) fileViews(files []parse.FileChange) []fileView {
	views := make([]fileView, 0, len(files))
	for _, f := range files {
		added, removed := f.Stats()
		v := fileView{
			Path:    f.DisplayPath(),
			Kind:    f.Kind,
			Added:   added,
			Removed: removed,
		}
		if f.Kind == parse.ChangeModified && f.OldPath != f.NewPath {
			v.OldPath = f.OldPath
		}
		var lexer chroma.Lexer
		if r.opts.Highlight {
			lexer = lexerForPath(v.Path)
		}
		for _, h := range f.Hunks {
			v.Hunks = append(v.Hunks, r.hunkView(h, lexer))
		}
		views = append(views, v)
	}
	return views
}

func (r *Renderer) hunkView(h parse.Hunk, lexer chroma.Lexer) hunkView {
	hv := hunkView{
		Range:   hunkRange(h),
		Context: h.Context,
		Lines:   make([]lineView, len(h.Lines)),
	}
	for i, l := range h.Lines {
		lv := lineView{Kind: l.Kind, Gutter: gutter(l)}
		if isNoNewlineMarker(l) {
			lv.Marker = true
			lv.Gutter = ""
			lv.Content = template.HTML(template.HTMLEscapeString(l.Content))
		} else {
			lv.Content = r.hl.line(lexer, l.Content)
		}
		hv.Lines[i] = lv
	}
	if r.opts.WordDiff {
		r.hl.emphasize(lexer, h.Lines, hv.Lines)
	}
	return hv
}

func isNoNewlineMarker(l parse.DiffLine) bool {
	return l.Kind == parse.LineContext && strings.HasPrefix(l.Raw, `\`)
}

// emphasize pairs each run of removed lines with the run of added lines
// that follows it and marks the changed words of every pair, keeping the
// syntax colors of both lines.
func (h *highlighter) emphasize(lexer chroma.Lexer, lines []parse.DiffLine, views []lineView) {
	for i := 0; i < len(lines); {
		if lines[i].Kind != parse.LineRemoved {
			i++
			continue
		}
		start := i
		for i < len(lines) && lines[i].Kind == parse.LineRemoved {
			i++
		}
		mid := i
		for i < len(lines) && lines[i].Kind == parse.LineAdded {
			i++
		}
		for k := 0; k < min(mid-start, i-mid); k++ {
			o, n := start+k, mid+k
			oldSegs, newSegs, ok := wordSegments(lines[o].Content, lines[n].Content)
			if !ok {
				continue
			}
			views[o].Content = h.segments(lexer, oldSegs, "word-removed")
			views[n].Content = h.segments(lexer, newSegs, "word-added")
		}
	}
}

// hunkRange is the "@@ ... @@" part of the header without its context.
func hunkRange(h parse.Hunk) string {
	if h.Context == "" {
		return h.Header
	}
	if idx := strings.LastIndex(h.Header, h.Context); idx > 0 {
		return strings.TrimSpace(h.Header[:idx])
	}
	return h.Header
}

func gutter(l parse.DiffLine) string {
	switch l.Kind {
	case parse.LineAdded:
		return "+" + strconv.Itoa(l.LineNumber)
	case parse.LineRemoved:
		return "-" + strconv.Itoa(l.LineNumber)
	default:
		if l.OldLineNumber != 0 {
			return strconv.Itoa(l.OldLineNumber)
		}
		if l.NewLineNumber != 0 {
			return strconv.Itoa(l.NewLineNumber)
		}
		return ""
	}
}

func (r *Renderer) commitView(c parse.Commit, placeholders bool) commitView {
	v := commitView{
		Hash:    c.Hash,
		Author:  c.Author,
		Date:    strings.TrimSpace(c.Date),
		Message: c.Message,
	}
	if t, ok := ParseGitDate(v.Date); ok {
		v.Relative = RelativeTime(t, r.now())
	}
	if placeholders {
		v.Hash = orDefault(v.Hash, "Unknown")
		v.Author = orDefault(v.Author, "Unknown")
		v.Date = orDefault(v.Date, "Unknown")
		v.Message = orDefault(v.Message, "No message")
	}
	return v
}

func (r *Renderer) logView(l *parse.LogResult) logView {
	v := logView{
		Generated: l.GeneratedAt.Format(generatedLayout),
		Total:     l.TotalCount,
		Commits:   make([]commitView, 0, len(l.Commits)),
	}
	for _, c := range l.Commits {
		v.Commits = append(v.Commits, r.commitView(c, false))
	}
	return v
}

func (r *Renderer) showView(s *parse.ShowResult) showView {
	v := showView{Generated: s.GeneratedAt.Format(generatedLayout)}
	for _, c := range s.AllCommits() {
		sc := showCommitView{Commit: r.commitView(c, true)}
		if c.Diff != nil && len(c.Diff.Files) > 0 {
			dv := r.diffView(c.Diff)
			sc.Diff = &dv
		}
		v.Commits = append(v.Commits, sc)
	}
	return v
}

func (r *Renderer) now() time.Time {
	if r.opts.Now != nil {
		return r.opts.Now()
	}
	return time.Now()
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
