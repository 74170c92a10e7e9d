// Package render turns parsed diff, log and show documents into standalone
// HTML reports, or encodes them as JSON or YAML.
package render

import (
	"fmt"
	"io"
	"time"

	"github.com/thiagokokada/git2html/internal/parse"
)

type Options struct {
	Theme     Theme
	Highlight bool
	WordDiff  bool
	// Version is recorded in the generator meta tag.
	Version string
	// Now is used for relative commit times; time.Now when nil.
	Now func() time.Time
}

type Renderer struct {
	opts  Options
	theme Theme
	hl    *highlighter
}

// New resolves the theme once; every document rendered shares it.
func New(opts Options) *Renderer {
	theme := ResolveTheme(opts.Theme)
	r := &Renderer{opts: opts, theme: theme}
	if opts.Highlight {
		r.hl = newHighlighter(theme)
	}
	return r
}

func (r *Renderer) Theme() Theme {
	return r.theme
}

// Render writes doc, one of *parse.DiffResult, *parse.LogResult or
// *parse.ShowResult, in the given format.
func (r *Renderer) Render(w io.Writer, f Format, doc any) error {
	switch f {
	case FormatJSON:
		return EncodeJSON(w, doc)
	case FormatYAML:
		return EncodeYAML(w, doc)
	}
	switch d := doc.(type) {
	case *parse.DiffResult:
		return r.Diff(w, d)
	case *parse.LogResult:
		return r.Log(w, d)
	case *parse.ShowResult:
		return r.Show(w, d)
	default:
		return fmt.Errorf("render: unsupported document %T", doc)
	}
}

func (r *Renderer) Diff(w io.Writer, d *parse.DiffResult) error {
	return r.page(w, "Git Diff Report", "diff", r.diffView(d))
}

func (r *Renderer) Log(w io.Writer, l *parse.LogResult) error {
	return r.page(w, "Git Log Report", "log", r.logView(l))
}

func (r *Renderer) Show(w io.Writer, s *parse.ShowResult) error {
	return r.page(w, "Git Show Report", "show", r.showView(s))
}

func (r *Renderer) page(w io.Writer, title, body string, data any) error {
	content, err := renderTemplate(body, data)
	if err != nil {
		return err
	}
	out, err := renderTemplate("page", pageView{
		Title:   title,
		Version: r.opts.Version,
		Theme:   r.theme,
		CSS:     stylesheet(r.theme),
		Content: content,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, string(out))
	return err
}
