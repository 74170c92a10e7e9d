package convert

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thiagokokada/git2html/internal/git"
	"github.com/thiagokokada/git2html/internal/render"
)

func TestSanitizeFilename(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"HEAD~1":          "HEAD_1",
		"feature/foo bar": "feature_foo_bar",
		"a//b":            "a_b",
		"/abc/":           "abc",
		"v1.0-rc_2":       "v1.0-rc_2",
		"HEAD^":           "HEAD",
		"커밋":              "커밋",
		"???":             "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), in)
	}
}

func TestDefaultOutputPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		dir    string
		cmd    git.Command
		args   []string
		format render.Format
		want   string
	}{
		{name: "diff", cmd: git.CommandDiff, args: []string{"HEAD"}, format: render.FormatHTML, want: "git-diff.html"},
		{name: "log json", cmd: git.CommandLog, format: render.FormatJSON, want: "git-log.json"},
		{name: "show", cmd: git.CommandShow, format: render.FormatHTML, want: "git-show.html"},
		{name: "show rev", cmd: git.CommandShow, args: []string{"--stat", "HEAD~2"}, format: render.FormatHTML, want: "git-show-HEAD_2.html"},
		{name: "show path only", cmd: git.CommandShow, args: []string{"--", "main.go"}, format: render.FormatHTML, want: "git-show.html"},
		{name: "show unsafe rev", cmd: git.CommandShow, args: []string{"///"}, format: render.FormatYAML, want: "git-show.yaml"},
		{name: "dir", dir: "reports", cmd: git.CommandDiff, format: render.FormatHTML, want: filepath.Join("reports", "git-diff.html")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, DefaultOutputPath(tt.dir, tt.cmd, tt.args, tt.format))
		})
	}
}

func TestWriteFileReplacesContent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "report.html")
	require.NoError(t, WriteFile(context.Background(), path, []byte("first")))
	require.NoError(t, WriteFile(context.Background(), path, []byte("second")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{"report.html", "report.html.lock"}, names)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteFileConcurrent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "report.html")
	payloads := []string{"aaaa", "bbbb", "cccc", "dddd"}
	var wg sync.WaitGroup
	for _, p := range payloads {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, WriteFile(context.Background(), path, []byte(p)))
		}()
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, payloads, string(data))
}

func TestWriteFileCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	path := filepath.Join(t.TempDir(), "report.html")
	err := WriteFile(ctx, path, []byte("x"))
	if err == nil {
		// An uncontended lock may be taken before the context is checked.
		data, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Equal(t, "x", string(data))
		return
	}
	assert.ErrorIs(t, err, context.Canceled)
}
