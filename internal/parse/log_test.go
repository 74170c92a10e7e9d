package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLogTwoCommits(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"commit 1111111111111111111111111111111111111111",
		"Author: Alice <alice@example.com>",
		"Date:   Mon Jan 2 15:04:05 2006 -0700",
		"",
		"    Add parser",
		"",
		"    Longer body line.",
		"        indented detail",
		"",
		"commit 2222222222222222222222222222222222222222",
		"Author: Bob <bob@example.com>",
		"Date:   Tue Jan 3 10:00:00 2006 -0700",
		"",
		"    Initial commit",
	}, "\n") + "\n"

	got := ParseLog(input)
	require.Len(t, got.Commits, 2)
	assert.Equal(t, 2, got.TotalCount)
	assert.False(t, got.GeneratedAt.IsZero())

	first := got.Commits[0]
	assert.Equal(t, "1111111111111111111111111111111111111111", first.Hash)
	assert.Equal(t, "Alice <alice@example.com>", first.Author)
	assert.Equal(t, "  Mon Jan 2 15:04:05 2006 -0700", first.Date)
	assert.Equal(t, "Add parser\nLonger body line.\n    indented detail", first.Message)
	assert.Nil(t, first.Diff)

	second := got.Commits[1]
	assert.Equal(t, "Bob <bob@example.com>", second.Author)
	assert.Equal(t, "Initial commit", second.Message)
}

func TestParseLogIgnoresFieldsBeforeFirstCommit(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"Author: Nobody",
		"Date:   never",
		"    stray message",
		"commit abc",
		"Author: Alice",
	}, "\n")

	got := ParseLog(input)
	require.Len(t, got.Commits, 1)
	assert.Equal(t, Commit{Hash: "abc", Author: "Alice"}, got.Commits[0])
}

func TestParseLogSkipsPatchText(t *testing.T) {
	t.Parallel()

	input := strings.Join([]string{
		"commit abc",
		"Author: Alice",
		"Date:   today",
		"",
		"    Subject",
		"",
		"diff --git a/x b/x",
		"--- a/x",
		"+++ b/x",
		"@@ -1 +1 @@",
		"-    old indented",
		"+    new indented",
		"     context indented",
		"commit def",
		"Author: Bob",
		"",
		"    Second",
	}, "\n")

	got := ParseLog(input)
	require.Len(t, got.Commits, 2)
	assert.Equal(t, "Subject", got.Commits[0].Message)
	assert.Equal(t, "Second", got.Commits[1].Message)
	assert.Equal(t, "Bob", got.Commits[1].Author)
}

func TestParseLogDecoratedHash(t *testing.T) {
	t.Parallel()

	got := ParseLog("commit abc123 (HEAD -> main, origin/main)\nAuthor: A\n")
	require.Len(t, got.Commits, 1)
	assert.Equal(t, "abc123 (HEAD -> main, origin/main)", got.Commits[0].Hash)
}

func TestParseLogEmpty(t *testing.T) {
	t.Parallel()

	for _, input := range []string{"", "\n\n", "random text\nwithout commits\n"} {
		got := ParseLog(input)
		assert.NotNil(t, got.Commits)
		assert.Empty(t, got.Commits)
		assert.Zero(t, got.TotalCount)
	}
}

func TestParseLogCountMatchesCommitLines(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 25 {
		b.WriteString("commit ")
		b.WriteString(strings.Repeat("a", i+1))
		b.WriteString("\nAuthor: x\nDate:   y\n\n    msg\n\n")
	}
	got := ParseLog(b.String())
	assert.Equal(t, 25, got.TotalCount)
	assert.Len(t, got.Commits, 25)
}
