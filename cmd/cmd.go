package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/git2html/internal/buildinfo"
	"github.com/thiagokokada/git2html/internal/config"
	"github.com/thiagokokada/git2html/internal/git"
)

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
	// piped reports whether in carries data that should replace running git.
	piped func() bool
}

func Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:], streams{
		in:    os.Stdin,
		out:   os.Stdout,
		err:   os.Stderr,
		piped: stdinPiped,
	})
}

func run(ctx context.Context, args []string, s streams) error {
	root := newRootCmd(s)
	root.SetArgs(args)
	root.SetIn(s.in)
	root.SetOut(s.out)
	root.SetErr(s.err)
	return root.ExecuteContext(ctx)
}

// stdinPiped is true when stdin is a pipe or a non-empty file rather than a
// terminal or /dev/null.
func stdinPiped() bool {
	fd := os.Stdin.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return false
	}
	info, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	mode := info.Mode()
	return mode&os.ModeNamedPipe != 0 || (mode.IsRegular() && info.Size() > 0)
}

type rootOptions struct {
	configPath  string
	verbose     bool
	output      string
	format      string
	theme       string
	backend     string
	repo        string
	noHighlight bool
	noWordDiff  bool
	noStats     bool
	watch       bool
	stdin       bool
}

func newRootCmd(s streams) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "git2html",
		Short:         "Convert git diff, log and show output into HTML reports",
		Version:       buildinfo.VersionWithTags(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(s.err, &slog.HandlerOptions{Level: level})))
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "config file (default .git2html.yaml in the current directory or $HOME)")
	flags.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	flags.StringVarP(&opts.output, "output", "o", "", "output file (default git-<command>.<format>)")
	flags.StringVar(&opts.format, "format", config.DefaultFormat, "output format: html, json or yaml")
	flags.StringVar(&opts.theme, "theme", config.DefaultTheme, "color theme: auto, light or dark")
	flags.StringVar(&opts.backend, "backend", config.DefaultBackend, "git backend: cli or native")
	flags.StringVar(&opts.repo, "repo", ".", "path inside the repository")
	flags.BoolVar(&opts.noHighlight, "no-highlight", false, "disable syntax highlighting of diff content")
	flags.BoolVar(&opts.noWordDiff, "no-word-diff", false, "disable changed-word emphasis")
	flags.BoolVar(&opts.noStats, "no-stats", false, "do not print change statistics")
	flags.BoolVar(&opts.watch, "watch", false, "regenerate the report when the repository changes")
	flags.BoolVar(&opts.stdin, "stdin", false, "read git output from stdin (default when stdin is piped)")

	root.AddCommand(
		newConvertCmd(git.CommandDiff, opts, s),
		newConvertCmd(git.CommandLog, opts, s),
		newConvertCmd(git.CommandShow, opts, s),
		newVersionCmd(s),
		newSchemaCmd(s),
	)
	return root
}

// settings layers command-line flags over the loaded configuration; only
// flags given explicitly override it.
func (o *rootOptions) settings(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("format") {
		cfg.Format = o.format
	}
	if flags.Changed("theme") {
		cfg.Theme = o.theme
	}
	if flags.Changed("backend") {
		cfg.Backend = o.backend
	}
	if flags.Changed("no-highlight") {
		cfg.Highlight = !o.noHighlight
	}
	if flags.Changed("no-word-diff") {
		cfg.WordDiff = !o.noWordDiff
	}
	if flags.Changed("no-stats") {
		cfg.Stats = !o.noStats
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	return cfg, nil
}
