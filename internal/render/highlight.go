package render

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/sergi/go-diff/diffmatchpatch"
)

type highlighter struct {
	style *chroma.Style
}

func newHighlighter(t Theme) *highlighter {
	return &highlighter{style: styleForTheme(t)}
}

func styleForTheme(t Theme) *chroma.Style {
	name := "github"
	if t == ThemeDark {
		name = "github-dark"
	}
	if st := styles.Get(name); st != nil {
		return st
	}
	return styles.Fallback
}

func lexerForPath(path string) chroma.Lexer {
	if path == "" {
		return nil
	}
	lexer := lexers.Match(path)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return chroma.Coalesce(lexer)
}

type piece struct {
	text  string
	color string
}

// pieces tokenises one line of code into colored runs whose texts join back
// to code. Lines are tokenised on their own, so constructs spanning several
// lines may be colored loosely.
func (h *highlighter) pieces(lexer chroma.Lexer, code string) []piece {
	plain := []piece{{text: code}}
	if h == nil || lexer == nil || code == "" {
		return plain
	}
	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return plain
	}
	var (
		out  []piece
		seen strings.Builder
	)
	for _, token := range iterator.Tokens() {
		value := strings.ReplaceAll(token.Value, "\n", "")
		if value == "" {
			continue
		}
		seen.WriteString(value)
		out = append(out, piece{text: value, color: colorFromEntry(h.style.Get(token.Type))})
	}
	if seen.String() != code {
		return plain
	}
	return out
}

func writePiece(b *strings.Builder, p piece) {
	text := template.HTMLEscapeString(p.text)
	if p.color == "" {
		b.WriteString(text)
		return
	}
	fmt.Fprintf(b, `<span style="color:%s">%s</span>`, p.color, text)
}

// line colors one line of code with inline styles.
func (h *highlighter) line(lexer chroma.Lexer, code string) template.HTML {
	var b strings.Builder
	for _, p := range h.pieces(lexer, code) {
		writePiece(&b, p)
	}
	return template.HTML(b.String())
}

func colorFromEntry(entry chroma.StyleEntry) string {
	if entry.Colour.IsSet() {
		col := entry.Colour.String()
		col = strings.TrimPrefix(strings.ToLower(col), "#")
		return "#" + col
	}
	return ""
}

type segment struct {
	text    string
	changed bool
}

// wordSegments splits a removed/added line pair into unchanged and changed
// runs. ok is false when the lines share no visible text, in which case
// emphasizing would mark every character.
func wordSegments(oldText, newText string) (oldSegs, newSegs []segment, ok bool) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(oldText, newText, false))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			if strings.TrimSpace(d.Text) != "" {
				ok = true
			}
			oldSegs = append(oldSegs, segment{text: d.Text})
			newSegs = append(newSegs, segment{text: d.Text})
		case diffmatchpatch.DiffDelete:
			oldSegs = append(oldSegs, segment{text: d.Text, changed: true})
		case diffmatchpatch.DiffInsert:
			newSegs = append(newSegs, segment{text: d.Text, changed: true})
		}
	}
	return oldSegs, newSegs, ok
}

// segments colors the joined text of segs like line does and wraps every
// changed segment in a span of the given class.
func (h *highlighter) segments(lexer chroma.Lexer, segs []segment, class string) template.HTML {
	var code strings.Builder
	for _, s := range segs {
		code.WriteString(s.text)
	}
	pieces := h.pieces(lexer, code.String())

	var b strings.Builder
	for _, s := range segs {
		var inner strings.Builder
		for rest := len(s.text); rest > 0 && len(pieces) > 0; {
			p := pieces[0]
			n := min(rest, len(p.text))
			writePiece(&inner, piece{text: p.text[:n], color: p.color})
			if n == len(p.text) {
				pieces = pieces[1:]
			} else {
				pieces[0].text = p.text[n:]
			}
			rest -= n
		}
		if s.changed {
			fmt.Fprintf(&b, `<span class="%s">%s</span>`, class, inner.String())
			continue
		}
		b.WriteString(inner.String())
	}
	return template.HTML(b.String())
}
