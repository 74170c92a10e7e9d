package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	gitindex "github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/pmezard/go-difflib/difflib"
)

type localChange struct {
	path string
	from *object.File
	to   *object.File
}

// localDiff compares the index with the working tree, or HEAD with the index
// when staged is set, mirroring "git diff" and "git diff --cached".
func (n *nativeBackend) localDiff(ctx context.Context, staged bool) (string, error) {
	wt, err := n.repo.Worktree()
	if err != nil {
		return "", err
	}
	status, err := wt.Status()
	if err != nil {
		return "", err
	}
	idx, err := n.repo.Storer.Index()
	if err != nil {
		return "", err
	}
	var headTree *object.Tree
	if staged {
		headTree, err = n.headTree()
		if err != nil {
			return "", err
		}
	}

	var paths []string
	for path, st := range status {
		var include bool
		if staged {
			include = st.Staging != gitlib.Unmodified && st.Staging != gitlib.Untracked
		} else {
			include = st.Worktree != gitlib.Unmodified && st.Worktree != gitlib.Untracked
		}
		if include {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)

	var changes []localChange
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		var from, to *object.File
		if staged {
			from, err = fileFromTree(headTree, path)
			if err == nil {
				to, err = fileFromIndex(idx, n.repo, path)
			}
		} else {
			from, err = fileFromIndex(idx, n.repo, path)
			if err == nil {
				to, err = fileFromDisk(n.path, path)
			}
		}
		if err != nil {
			return "", err
		}
		if from == nil && to == nil {
			continue
		}
		changes = append(changes, localChange{path: path, from: from, to: to})
	}
	if len(changes) == 0 {
		return "", nil
	}
	return renderLocalDiff(changes)
}

func (n *nativeBackend) headTree() (*object.Tree, error) {
	ref, err := n.repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	c, err := n.repo.CommitObject(ref.Hash())
	if err != nil {
		return nil, err
	}
	return c.Tree()
}

func fileFromTree(tree *object.Tree, path string) (*object.File, error) {
	if tree == nil {
		return nil, nil
	}
	f, err := tree.File(path)
	if errors.Is(err, object.ErrFileNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func fileFromIndex(idx *gitindex.Index, repo *gitlib.Repository, path string) (*object.File, error) {
	entry, err := idx.Entry(path)
	if errors.Is(err, gitindex.ErrEntryNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	blob, err := object.GetBlob(repo.Storer, entry.Hash)
	if err != nil {
		return nil, err
	}
	return object.NewFile(entry.Name, entry.Mode, blob), nil
}

func fileFromDisk(root, path string) (*object.File, error) {
	fullPath := filepath.Join(root, path)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	mem := &plumbing.MemoryObject{}
	mem.SetType(plumbing.BlobObject)
	if _, err := mem.Write(data); err != nil {
		return nil, err
	}
	blob, err := object.DecodeBlob(mem)
	if err != nil {
		return nil, err
	}
	mode := filemode.Regular
	if info, err := os.Lstat(fullPath); err == nil {
		if m, err := filemode.NewFromOSFileMode(info.Mode()); err == nil {
			mode = m
		}
	}
	return object.NewFile(path, mode, blob), nil
}

// renderLocalDiff prints git-style file sections; hunks come from difflib.
func renderLocalDiff(changes []localChange) (string, error) {
	var b strings.Builder
	for _, ch := range changes {
		fmt.Fprintf(&b, "diff --git a/%s b/%s\n", ch.path, ch.path)
		fromName, toName := "a/"+ch.path, "b/"+ch.path
		switch {
		case ch.from == nil:
			fmt.Fprintf(&b, "new file mode %o\n", uint32(ch.to.Mode))
			fromName = "/dev/null"
		case ch.to == nil:
			fmt.Fprintf(&b, "deleted file mode %o\n", uint32(ch.from.Mode))
			toName = "/dev/null"
		case ch.from.Mode != ch.to.Mode:
			fmt.Fprintf(&b, "old mode %o\nnew mode %o\n", uint32(ch.from.Mode), uint32(ch.to.Mode))
		}

		isBinary, err := binaryChange(ch)
		if err != nil {
			return "", err
		}
		if isBinary {
			fmt.Fprintf(&b, "Binary files %s and %s differ\n", fromName, toName)
			continue
		}
		fromLines, err := fileLines(ch.from)
		if err != nil {
			return "", err
		}
		toLines, err := fileLines(ch.to)
		if err != nil {
			return "", err
		}
		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        fromLines,
			B:        toLines,
			FromFile: fromName,
			ToFile:   toName,
			Context:  3,
		})
		if err != nil {
			return "", err
		}
		b.WriteString(text)
		if text != "" && !strings.HasSuffix(text, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String(), nil
}

func binaryChange(ch localChange) (bool, error) {
	for _, f := range []*object.File{ch.from, ch.to} {
		if f == nil {
			continue
		}
		bin, err := f.IsBinary()
		if err != nil {
			return false, err
		}
		if bin {
			return true, nil
		}
	}
	return false, nil
}

func fileLines(f *object.File) ([]string, error) {
	if f == nil {
		return []string{}, nil
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	if content == "" {
		return []string{}, nil
	}
	// SplitLines terminates the last element itself.
	return difflib.SplitLines(strings.TrimSuffix(content, "\n")), nil
}
