package convert

import "github.com/thiagokokada/git2html/internal/parse"

type FileStat struct {
	Path    string
	Kind    parse.ChangeKind
	Added   int
	Removed int
}

// Stats summarises a converted document for the console.
type Stats struct {
	Added   int
	Removed int
	Commits int
	Files   []FileStat
}

func diffStats(d *parse.DiffResult) Stats {
	s := Stats{Added: d.Totals.Added, Removed: d.Totals.Removed}
	for _, f := range d.Files {
		added, removed := f.Stats()
		s.Files = append(s.Files, FileStat{
			Path:    f.DisplayPath(),
			Kind:    f.Kind,
			Added:   added,
			Removed: removed,
		})
	}
	return s
}

func showStats(r *parse.ShowResult) Stats {
	var s Stats
	for _, c := range r.AllCommits() {
		s.Commits++
		if c.Diff == nil {
			continue
		}
		ds := diffStats(c.Diff)
		s.Added += ds.Added
		s.Removed += ds.Removed
		s.Files = append(s.Files, ds.Files...)
	}
	return s
}
