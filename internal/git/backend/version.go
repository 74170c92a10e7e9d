package backend

import (
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Every CLI command runs as "git -C <root> --no-pager <cmd> --no-color".
// --no-pager and --no-color are far older; -C first shipped in git 1.8.5.
var minGitVersion = gitVersion{1, 8, 5}

type gitVersion [3]int

func (v gitVersion) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}

func (v gitVersion) less(other gitVersion) bool {
	for i := range v {
		if v[i] != other[i] {
			return v[i] < other[i]
		}
	}
	return false
}

func MinGitVersion() string {
	return minGitVersion.String()
}

// releaseRe finds the release in "2.39.3 (Apple Git-146)" or
// "2.39.3.windows.1"; a missing patch level reads as 0.
var releaseRe = regexp.MustCompile(`(\d+)\.(\d+)(?:\.(\d+))?`)

func parseGitVersion(s string) (gitVersion, bool) {
	m := releaseRe.FindStringSubmatch(s)
	if m == nil {
		return gitVersion{}, false
	}
	var v gitVersion
	for i, part := range m[1:] {
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return gitVersion{}, false
		}
		v[i] = n
	}
	return v, true
}

func checkGitVersion(version string) error {
	v, ok := parseGitVersion(version)
	if !ok {
		return fmt.Errorf("unable to parse git version %q", version)
	}
	if v.less(minGitVersion) {
		return fmt.Errorf("git %s does not support -C; git2html requires git >= %s", v, minGitVersion)
	}
	return nil
}

var probeGitVersion = sync.OnceValues(func() (string, error) {
	out, err := exec.Command("git", "--version").CombinedOutput()
	s := strings.TrimSpace(string(out))
	if err != nil {
		if s != "" {
			return "", fmt.Errorf("git --version: %v: %s", err, s)
		}
		return "", fmt.Errorf("git --version: %w", err)
	}
	return strings.TrimPrefix(s, "git version "), nil
})

// GitVersion returns the installed git release as printed by
// "git --version", without the leading "git version".
func GitVersion() (string, error) {
	return probeGitVersion()
}

func ensureMinGitVersion() error {
	version, err := GitVersion()
	if err != nil {
		return err
	}
	return checkGitVersion(version)
}
