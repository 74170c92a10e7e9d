package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

type gitCLI struct {
	path       string
	globalArgs []string
}

func OpenCLI(repoPath string, opts Options) (Backend, error) {
	if err := ensureMinGitVersion(); err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	tmp := &gitCLI{path: abs}
	root, err := tmp.runGitCommand(context.Background(), []string{"rev-parse", "--show-toplevel"}, false, "git rev-parse")
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("open repository: git rev-parse returned empty root")
	}
	return &gitCLI{path: root, globalArgs: opts.GlobalArgs}, nil
}

func (g *gitCLI) RepoPath() string {
	if g == nil {
		return ""
	}
	return g.path
}

func (g *gitCLI) Output(ctx context.Context, cmd Command, args []string) (string, error) {
	// git diff exits 1 with --exit-code or --quiet when there are changes.
	allowExit1 := cmd == CommandDiff
	return g.runGitCommand(ctx, g.commandArgs(cmd, args), allowExit1, "git "+string(cmd))
}

// commandArgs builds the argument list after "-C <root>". Color is disabled
// by default; an explicit --color in args still wins since it comes later.
func (g *gitCLI) commandArgs(cmd Command, args []string) []string {
	out := make([]string, 0, len(g.globalArgs)+len(args)+3)
	out = append(out, g.globalArgs...)
	out = append(out, "--no-pager", string(cmd), "--no-color")
	out = append(out, args...)
	return out
}

func (g *gitCLI) runGitCommand(ctx context.Context, args []string, allowExit1 bool, desc string) (string, error) {
	if g == nil || g.path == "" {
		return "", fmt.Errorf("repository root not set")
	}
	cmdArgs := append([]string{"-C", g.path}, args...)
	cmd := exec.CommandContext(ctx, "git", cmdArgs...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("%s: %w", desc, ctxErr)
		}
		var exitErr *exec.ExitError
		if allowExit1 && errors.As(err, &exitErr) && exitErr.ExitCode() == 1 && stderr.Len() == 0 {
			// treat as success when git diff signals changes via exit code 1
		} else {
			if stderr.Len() > 0 {
				return "", fmt.Errorf("%s: %v: %s", desc, err, strings.TrimSpace(stderr.String()))
			}
			return "", fmt.Errorf("%s: %w", desc, err)
		}
	}
	return stdout.String(), nil
}
