package git

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	gitbackend "github.com/thiagokokada/git2html/internal/git/backend"
)

type (
	Command = gitbackend.Command
	Kind    = gitbackend.Kind
)

const (
	CommandDiff = gitbackend.CommandDiff
	CommandLog  = gitbackend.CommandLog
	CommandShow = gitbackend.CommandShow

	KindCLI    = gitbackend.KindCLI
	KindNative = gitbackend.KindNative
)

var ErrUnsupported = gitbackend.ErrUnsupported

type Options struct {
	Backend Kind
	// GlobalArgs are passed to git before the command name.
	GlobalArgs []string
	// Timeout bounds each command; zero means no limit.
	Timeout time.Duration
}

// Service fetches command output from a repository through a Backend.
type Service struct {
	backend gitbackend.Backend
	timeout time.Duration
}

func Open(repoPath string, opts Options) (*Service, error) {
	b, err := gitbackend.Open(opts.Backend, repoPath, gitbackend.Options{GlobalArgs: opts.GlobalArgs})
	if err != nil {
		return nil, err
	}
	slog.Debug("repository opened",
		slog.String("path", b.RepoPath()),
		slog.String("backend", string(opts.Backend)),
	)
	return NewService(b, opts.Timeout), nil
}

func NewService(b gitbackend.Backend, timeout time.Duration) *Service {
	return &Service{backend: b, timeout: timeout}
}

func (s *Service) RepoPath() string {
	return s.backend.RepoPath()
}

// Output runs cmd with args and returns what git printed on stdout.
func (s *Service) Output(ctx context.Context, cmd Command, args []string) (string, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	start := time.Now()
	out, err := s.backend.Output(ctx, cmd, args)
	if err != nil {
		return "", fmt.Errorf("run git %s: %w", cmd, err)
	}
	slog.Debug("git command finished",
		slog.String("command", string(cmd)),
		slog.Any("args", args),
		slog.Int("bytes", len(out)),
		slog.Duration("elapsed", time.Since(start)),
	)
	return out, nil
}
