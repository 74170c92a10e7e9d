package backend

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/git2html/internal/parse"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git executable not found")
	}
	if err := ensureMinGitVersion(); err != nil {
		t.Skipf("git not usable: %v", err)
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()

	g := &gitCLI{path: "/repo", globalArgs: []string{"-c", "core.quotePath=false"}}
	got := g.commandArgs(CommandLog, []string{"-n", "3"})
	want := []string{"-c", "core.quotePath=false", "--no-pager", "log", "--no-color", "-n", "3"}
	assert.Equal(t, want, got)

	bare := &gitCLI{path: "/repo"}
	assert.Equal(t, []string{"--no-pager", "diff", "--no-color"}, bare.commandArgs(CommandDiff, nil))
}

func TestRunGitCommandWithoutRoot(t *testing.T) {
	t.Parallel()

	var g *gitCLI
	_, err := g.runGitCommand(context.Background(), []string{"status"}, false, "git status")
	assert.EqualError(t, err, "repository root not set")
}

func TestCLIMatchesNative(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := newTestRepo(t)
	cli, err := OpenCLI(dir, Options{GlobalArgs: []string{"-c", "log.decorate=false"}})
	require.NoError(t, err)
	native, err := OpenNative(dir)
	require.NoError(t, err)

	ctx := context.Background()
	cliLog, err := cli.Output(ctx, CommandLog, nil)
	require.NoError(t, err)
	nativeLog, err := native.Output(ctx, CommandLog, nil)
	require.NoError(t, err)

	fromCLI, fromNative := parse.ParseLog(cliLog), parse.ParseLog(nativeLog)
	fromCLI.GeneratedAt, fromNative.GeneratedAt = time.Time{}, time.Time{}
	assert.Equal(t, fromNative, fromCLI)

	cliDiff, err := cli.Output(ctx, CommandDiff, []string{"HEAD~1", "HEAD"})
	require.NoError(t, err)
	nativeDiff, err := native.Output(ctx, CommandDiff, []string{"HEAD~1", "HEAD"})
	require.NoError(t, err)
	assert.Equal(t, parse.ParseDiff(nativeDiff).Totals, parse.ParseDiff(cliDiff).Totals)
}

func TestCLIErrorIncludesStderr(t *testing.T) {
	t.Parallel()
	requireGit(t)

	cli, err := OpenCLI(newTestRepo(t), Options{})
	require.NoError(t, err)

	_, err = cli.Output(context.Background(), CommandShow, []string{"does-not-exist"})
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "git show: "), err.Error())
	assert.Contains(t, err.Error(), "does-not-exist")
}

func TestCLIGlobalArgs(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := newTestRepo(t)
	cli, err := OpenCLI(dir, Options{GlobalArgs: []string{"-c", "log.showSignature=false"}})
	require.NoError(t, err)
	assert.NotEmpty(t, cli.RepoPath())

	out, err := cli.Output(context.Background(), CommandLog, []string{"-1"})
	require.NoError(t, err)
	assert.Len(t, parse.ParseLog(out).Commits, 1)
}

func TestOpenBackendKinds(t *testing.T) {
	t.Parallel()

	dir := newTestRepo(t)
	b, err := Open(KindNative, dir, Options{})
	require.NoError(t, err)
	assert.NotEmpty(t, b.RepoPath())

	_, err = Open(Kind("svn"), dir, Options{})
	assert.EqualError(t, err, `unknown backend "svn"`)
}
