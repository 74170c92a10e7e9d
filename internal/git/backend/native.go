package backend

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	diff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// gitDateLayout is the default date format of git log and git show.
const gitDateLayout = "Mon Jan 2 15:04:05 2006 -0700"

type nativeBackend struct {
	path string
	repo *gitlib.Repository
}

// OpenNative opens the repository with go-git. No git executable is needed.
func OpenNative(repoPath string) (Backend, error) {
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, err
	}
	repo, err := gitlib.PlainOpenWithOptions(abs, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}
	root := abs
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	return &nativeBackend{path: root, repo: repo}, nil
}

func (n *nativeBackend) RepoPath() string {
	return n.path
}

func (n *nativeBackend) Output(ctx context.Context, cmd Command, args []string) (string, error) {
	args = dropNoColor(args)
	switch cmd {
	case CommandDiff:
		return n.diff(ctx, args)
	case CommandLog:
		return n.log(ctx, args)
	case CommandShow:
		return n.show(ctx, args)
	default:
		return "", fmt.Errorf("git %s: %w", cmd, ErrUnsupported)
	}
}

func dropNoColor(args []string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == "--no-color" || a == "--" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// diff supports the working tree against the index, the index against HEAD
// (--cached) and two revisions given as "a b" or "a..b".
func (n *nativeBackend) diff(ctx context.Context, args []string) (string, error) {
	var (
		staged bool
		revs   []string
	)
	for _, a := range args {
		switch {
		case a == "--cached" || a == "--staged":
			staged = true
		case strings.HasPrefix(a, "-"):
			return "", fmt.Errorf("git diff %s: %w", a, ErrUnsupported)
		default:
			revs = append(revs, a)
		}
	}
	if len(revs) == 1 && strings.Contains(revs[0], "..") {
		from, to, _ := strings.Cut(revs[0], "..")
		if strings.HasPrefix(to, ".") {
			return "", fmt.Errorf("git diff %s: %w", revs[0], ErrUnsupported)
		}
		revs = []string{from, to}
	}
	switch {
	case len(revs) == 0:
		return n.localDiff(ctx, staged)
	case len(revs) == 2 && !staged:
		from, err := n.commit(revs[0])
		if err != nil {
			return "", err
		}
		to, err := n.commit(revs[1])
		if err != nil {
			return "", err
		}
		return commitPatch(ctx, from, to)
	default:
		return "", fmt.Errorf("git diff %s: %w", strings.Join(args, " "), ErrUnsupported)
	}
}

// log supports an optional starting revision and a commit limit.
func (n *nativeBackend) log(ctx context.Context, args []string) (string, error) {
	limit := -1
	rev := ""
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "-n" && i+1 < len(args):
			v, err := strconv.Atoi(args[i+1])
			if err != nil {
				return "", fmt.Errorf("git log -n %q: %w", args[i+1], err)
			}
			limit = v
			i++
		case strings.HasPrefix(a, "--max-count="):
			v, err := strconv.Atoi(strings.TrimPrefix(a, "--max-count="))
			if err != nil {
				return "", fmt.Errorf("git log %s: %w", a, err)
			}
			limit = v
		case len(a) > 1 && a[0] == '-' && isDigits(a[1:]):
			limit, _ = strconv.Atoi(a[1:])
		case strings.HasPrefix(a, "-") || rev != "":
			return "", fmt.Errorf("git log %s: %w", a, ErrUnsupported)
		default:
			rev = a
		}
	}
	start, err := n.commit(rev)
	if err != nil {
		return "", err
	}
	iter, err := n.repo.Log(&gitlib.LogOptions{From: start.Hash, Order: gitlib.LogOrderCommitterTime})
	if err != nil {
		return "", fmt.Errorf("read commits: %w", err)
	}
	defer iter.Close()

	var b strings.Builder
	for count := 0; limit < 0 || count < limit; count++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		c, err := iter.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("iterate commits: %w", err)
		}
		if count > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatCommitHeader(c))
	}
	return b.String(), nil
}

// show prints each revision (HEAD when none is given) followed by its patch
// against the first parent. Merge commits get no patch, as with git's
// default combined diff of a clean merge.
func (n *nativeBackend) show(ctx context.Context, args []string) (string, error) {
	for _, a := range args {
		if strings.HasPrefix(a, "-") {
			return "", fmt.Errorf("git show %s: %w", a, ErrUnsupported)
		}
	}
	revs := args
	if len(revs) == 0 {
		revs = []string{"HEAD"}
	}
	var b strings.Builder
	for i, rev := range revs {
		c, err := n.commit(rev)
		if err != nil {
			return "", err
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(FormatCommitHeader(c))
		if c.NumParents() > 1 {
			continue
		}
		var parent *object.Commit
		if c.NumParents() == 1 {
			parent, err = c.Parent(0)
			if err != nil {
				return "", fmt.Errorf("read parent of %s: %w", c.Hash, err)
			}
		}
		patch, err := commitPatch(ctx, parent, c)
		if err != nil {
			return "", err
		}
		if patch != "" {
			b.WriteByte('\n')
			b.WriteString(patch)
		}
	}
	return b.String(), nil
}

func (n *nativeBackend) commit(rev string) (*object.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}
	hash, err := n.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	c, err := n.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("read commit %s: %w", rev, err)
	}
	return c, nil
}

// commitPatch renders the unified diff between two commits. A nil from
// commit diffs against the empty tree.
func commitPatch(ctx context.Context, from, to *object.Commit) (string, error) {
	toTree, err := to.Tree()
	if err != nil {
		return "", err
	}
	var fromTree *object.Tree
	if from != nil {
		fromTree, err = from.Tree()
		if err != nil {
			return "", err
		}
	}
	changes, err := object.DiffTreeWithOptions(ctx, fromTree, toTree, &object.DiffTreeOptions{})
	if err != nil {
		return "", err
	}
	if len(changes) == 0 {
		return "", nil
	}
	patch, err := changes.PatchContext(ctx)
	if err != nil {
		return "", err
	}
	return encodeUnifiedPatch(patch.FilePatches())
}

func encodeUnifiedPatch(filePatches []diff.FilePatch) (string, error) {
	var buf bytes.Buffer
	enc := diff.NewUnifiedEncoder(&buf, diff.DefaultContextLines)
	if err := enc.Encode(filePatchSet{patches: filePatches}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type filePatchSet struct {
	patches []diff.FilePatch
}

func (f filePatchSet) FilePatches() []diff.FilePatch { return f.patches }
func (filePatchSet) Message() string                 { return "" }

// FormatCommitHeader prints a commit the way "git log" does by default.
func FormatCommitHeader(c *object.Commit) string {
	var b strings.Builder
	fmt.Fprintf(&b, "commit %s\n", c.Hash)
	if len(c.ParentHashes) > 1 {
		b.WriteString("Merge:")
		for _, p := range c.ParentHashes {
			fmt.Fprintf(&b, " %s", p.String()[:7])
		}
		b.WriteByte('\n')
	}
	fmt.Fprintf(&b, "Author: %s <%s>\n", c.Author.Name, c.Author.Email)
	fmt.Fprintf(&b, "Date:   %s\n", c.Author.When.Format(gitDateLayout))
	b.WriteString("\n")
	message := strings.TrimRight(c.Message, "\n")
	for line := range strings.SplitSeq(message, "\n") {
		if line == "" {
			b.WriteString("\n")
			continue
		}
		fmt.Fprintf(&b, "    %s\n", line)
	}
	return b.String()
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
