// Package config loads git2html settings from defaults, a YAML file and
// GIT2HTML_* environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/shlex"

	"github.com/thiagokokada/git2html/internal/git"
	"github.com/thiagokokada/git2html/internal/render"
)

type Config struct {
	Theme     string    `mapstructure:"theme"`
	Highlight bool      `mapstructure:"highlight"`
	WordDiff  bool      `mapstructure:"word_diff"`
	Backend   string    `mapstructure:"backend"`
	OutputDir string    `mapstructure:"output_dir"`
	Format    string    `mapstructure:"format"`
	Stats     bool      `mapstructure:"stats"`
	Git       GitConfig `mapstructure:"git"`
}

type GitConfig struct {
	// ExtraArgs is a shell-quoted string placed before every git command,
	// e.g. "-c core.quotepath=off".
	ExtraArgs string        `mapstructure:"extra_args"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

const (
	DefaultTheme   = string(render.ThemeAuto)
	DefaultBackend = string(git.KindCLI)
	DefaultFormat  = string(render.FormatHTML)
	DefaultTimeout = 2 * time.Minute
)

var (
	ErrInvalidBackend = errors.New("backend must be cli or native")
	ErrInvalidTimeout = errors.New("git.timeout must be non-negative")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	if _, err := render.ParseTheme(c.Theme); err != nil {
		return err
	}
	if _, err := render.ParseFormat(c.Format); err != nil {
		return err
	}
	if _, err := c.BackendKind(); err != nil {
		return err
	}
	if c.Git.Timeout < 0 {
		return ErrInvalidTimeout
	}
	if _, err := c.GitArgs(); err != nil {
		return err
	}
	return nil
}

func (c *Config) ThemeValue() render.Theme {
	t, _ := render.ParseTheme(c.Theme)
	return t
}

func (c *Config) FormatValue() render.Format {
	f, _ := render.ParseFormat(c.Format)
	return f
}

func (c *Config) BackendKind() (git.Kind, error) {
	switch k := git.Kind(c.Backend); k {
	case "":
		return git.KindCLI, nil
	case git.KindCLI, git.KindNative:
		return k, nil
	default:
		return "", fmt.Errorf("%w: got %q", ErrInvalidBackend, c.Backend)
	}
}

// GitArgs splits git.extra_args the way a shell would.
func (c *Config) GitArgs() ([]string, error) {
	if c.Git.ExtraArgs == "" {
		return nil, nil
	}
	args, err := shlex.Split(c.Git.ExtraArgs)
	if err != nil {
		return nil, fmt.Errorf("git.extra_args: %w", err)
	}
	return args, nil
}

// GitOptions maps the git section onto repository options.
func (c *Config) GitOptions() (git.Options, error) {
	kind, err := c.BackendKind()
	if err != nil {
		return git.Options{}, err
	}
	args, err := c.GitArgs()
	if err != nil {
		return git.Options{}, err
	}
	return git.Options{Backend: kind, GlobalArgs: args, Timeout: c.Git.Timeout}, nil
}
