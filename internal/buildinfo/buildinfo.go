// Package buildinfo reports the version git2html was built as.
package buildinfo

import (
	"fmt"
	"runtime/debug"
	"strings"
)

var readBuildInfo = debug.ReadBuildInfo

// Version returns the module version, "dev" when unset.
func Version() string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return "dev"
	}
	version := info.Main.Version
	if version == "" || version == "(devel)" {
		return "dev"
	}
	return version
}

func setting(key string) string {
	info, ok := readBuildInfo()
	if !ok || info == nil {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == key {
			return s.Value
		}
	}
	return ""
}

// Revision is the abbreviated VCS commit of a source build, with a
// "-dirty" suffix for modified trees.
func Revision() string {
	rev := setting("vcs.revision")
	if rev == "" {
		return ""
	}
	if len(rev) > 12 {
		rev = rev[:12]
	}
	if setting("vcs.modified") == "true" {
		rev += "-dirty"
	}
	return rev
}

// Tags returns the build tags recorded at compile time.
func Tags() string {
	return setting("-tags")
}

// VersionWithTags returns the version followed by the revision and tags
// when known, e.g. "dev (rev 0123456789ab, tags: netgo)".
func VersionWithTags() string {
	version := Version()
	var extra []string
	if rev := Revision(); rev != "" && version == "dev" {
		extra = append(extra, "rev "+rev)
	}
	if tags := Tags(); tags != "" {
		extra = append(extra, "tags: "+tags)
	}
	if len(extra) == 0 {
		return version
	}
	return fmt.Sprintf("%s (%s)", version, strings.Join(extra, ", "))
}
