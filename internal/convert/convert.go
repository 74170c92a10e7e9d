// Package convert runs a git command (or reads its saved output), parses the
// text and writes the rendered report.
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/thiagokokada/git2html/internal/git"
	"github.com/thiagokokada/git2html/internal/parse"
	"github.com/thiagokokada/git2html/internal/render"
)

// ErrNoChanges is returned when diff or log printed nothing; no report is
// written in that case.
var ErrNoChanges = errors.New("no changes")

// Source produces the text of a git command.
type Source interface {
	Output(ctx context.Context, cmd git.Command, args []string) (string, error)
}

type Request struct {
	Command git.Command
	// Args are passed through to git.
	Args []string
	// Input, when set, is read instead of running git.
	Input io.Reader
	// Output is the report path; a name derived from Command and Args is
	// used inside OutputDir when empty.
	Output    string
	OutputDir string
	Format    render.Format
}

type Result struct {
	Command  git.Command
	Path     string
	Size     int64
	Stats    Stats
	Document any
}

type Converter struct {
	source   Source
	renderer *render.Renderer
}

// New returns a Converter. source may be nil when every request carries Input.
func New(source Source, renderer *render.Renderer) *Converter {
	return &Converter{source: source, renderer: renderer}
}

func (c *Converter) Convert(ctx context.Context, req Request) (*Result, error) {
	text, err := c.readText(ctx, req)
	if err != nil {
		return nil, err
	}
	text = parse.StripANSI(text)
	if strings.TrimSpace(text) == "" && req.Command != git.CommandShow {
		return nil, ErrNoChanges
	}

	doc, stats, err := parseDocument(req.Command, text)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := c.renderer.Render(&buf, req.Format, doc); err != nil {
		return nil, fmt.Errorf("render %s: %w", req.Command, err)
	}

	path := req.Output
	if path == "" {
		path = DefaultOutputPath(req.OutputDir, req.Command, req.Args, req.Format)
	}
	if err := WriteFile(ctx, path, buf.Bytes()); err != nil {
		return nil, err
	}
	slog.Debug("report written",
		slog.String("command", string(req.Command)),
		slog.String("path", path),
		slog.Int("bytes", buf.Len()),
	)
	return &Result{
		Command:  req.Command,
		Path:     path,
		Size:     int64(buf.Len()),
		Stats:    stats,
		Document: doc,
	}, nil
}

func (c *Converter) readText(ctx context.Context, req Request) (string, error) {
	if req.Input != nil {
		data, err := io.ReadAll(req.Input)
		if err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return string(data), nil
	}
	if c.source == nil {
		return "", errors.New("no input and no repository")
	}
	return c.source.Output(ctx, req.Command, req.Args)
}

func parseDocument(cmd git.Command, text string) (any, Stats, error) {
	switch cmd {
	case git.CommandDiff:
		d := parse.ParseDiff(text)
		return d, diffStats(d), nil
	case git.CommandLog:
		l := parse.ParseLog(text)
		return l, Stats{Commits: l.TotalCount}, nil
	case git.CommandShow:
		s := parse.ParseShow(text)
		return s, showStats(s), nil
	default:
		return nil, Stats{}, fmt.Errorf("unknown command %q", cmd)
	}
}
