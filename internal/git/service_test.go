package git

import (
	"context"
	"errors"
	"testing"
	"time"

	gitbackend "github.com/thiagokokada/git2html/internal/git/backend"
)

type fakeBackend struct {
	repoPath   string
	outputFunc func(ctx context.Context, cmd Command, args []string) (string, error)

	lastCmd  Command
	lastArgs []string
}

func (f *fakeBackend) RepoPath() string { return f.repoPath }

func (f *fakeBackend) Output(ctx context.Context, cmd Command, args []string) (string, error) {
	f.lastCmd = cmd
	f.lastArgs = args
	if f.outputFunc != nil {
		return f.outputFunc(ctx, cmd, args)
	}
	return "", errors.New("unexpected Output call")
}

var _ gitbackend.Backend = (*fakeBackend)(nil)

func TestServiceOutput(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		repoPath: "/repo",
		outputFunc: func(context.Context, Command, []string) (string, error) {
			return "diff --git a/x b/x\n", nil
		},
	}
	svc := NewService(fb, 0)
	out, err := svc.Output(context.Background(), CommandDiff, []string{"--cached"})
	if err != nil {
		t.Fatalf("Output() error = %v", err)
	}
	if out != "diff --git a/x b/x\n" {
		t.Fatalf("Output() = %q", out)
	}
	if fb.lastCmd != CommandDiff || len(fb.lastArgs) != 1 || fb.lastArgs[0] != "--cached" {
		t.Fatalf("backend called with %s %v", fb.lastCmd, fb.lastArgs)
	}
}

func TestServiceOutputWrapsError(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		outputFunc: func(context.Context, Command, []string) (string, error) {
			return "", ErrUnsupported
		},
	}
	_, err := NewService(fb, 0).Output(context.Background(), CommandShow, nil)
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported, got %v", err)
	}
	if err.Error() != "run git show: unsupported by backend" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestServiceOutputAppliesTimeout(t *testing.T) {
	t.Parallel()

	fb := &fakeBackend{
		outputFunc: func(ctx context.Context, _ Command, _ []string) (string, error) {
			deadline, ok := ctx.Deadline()
			if !ok {
				return "", errors.New("no deadline")
			}
			if time.Until(deadline) > time.Minute {
				return "", errors.New("deadline too far")
			}
			<-ctx.Done()
			return "", ctx.Err()
		},
	}
	_, err := NewService(fb, 10*time.Millisecond).Output(context.Background(), CommandLog, nil)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}
