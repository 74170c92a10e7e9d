package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"github.com/thiagokokada/git2html/internal/git"
	"github.com/thiagokokada/git2html/internal/render"
)

const lockRetryDelay = 50 * time.Millisecond

// TempPattern matches the files WriteFile stages reports in.
const TempPattern = ".git2html-*"

var (
	unsafeFilenameRe = regexp.MustCompile(`[^\p{L}\p{N}.\-_]`)
	underscoreRunRe  = regexp.MustCompile(`_{2,}`)
)

// SanitizeFilename replaces everything but letters, digits, '.', '-' and
// '_' with '_', collapses runs of '_' and trims them from both ends.
func SanitizeFilename(name string) string {
	name = unsafeFilenameRe.ReplaceAllString(name, "_")
	name = underscoreRunRe.ReplaceAllString(name, "_")
	return strings.Trim(name, "_")
}

// DefaultOutputPath names a report after its command, e.g. git-diff.html,
// or git-show-<rev>.html when show was given a revision.
func DefaultOutputPath(dir string, cmd git.Command, args []string, format render.Format) string {
	name := "git-" + string(cmd)
	if cmd == git.CommandShow {
		if rev := firstRevision(args); rev != "" {
			if safe := SanitizeFilename(rev); safe != "" {
				name += "-" + safe
			}
		}
	}
	return filepath.Join(dir, name+format.Ext())
}

func firstRevision(args []string) string {
	for _, a := range args {
		if a == "--" {
			return ""
		}
		if !strings.HasPrefix(a, "-") {
			return a
		}
	}
	return ""
}

// WriteFile replaces path with data. Writers of the same path are
// serialized through a sibling .lock file, which is left in place, and the
// content is renamed into place, so readers never see a partial report.
func WriteFile(ctx context.Context, path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock %s: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("lock %s: not acquired", path)
	}
	defer func() {
		err = errors.Join(err, lock.Unlock())
	}()

	tmp, err := os.CreateTemp(dir, TempPattern)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", path, err), tmp.Close(), os.Remove(tmpName))
	}
	if err := tmp.Close(); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", path, err), os.Remove(tmpName))
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", path, err), os.Remove(tmpName))
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.Join(fmt.Errorf("write %s: %w", path, err), os.Remove(tmpName))
	}
	return nil
}
