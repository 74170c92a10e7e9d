package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/thiagokokada/git2html/internal/buildinfo"
	"github.com/thiagokokada/git2html/internal/config"
	"github.com/thiagokokada/git2html/internal/convert"
	"github.com/thiagokokada/git2html/internal/git"
	"github.com/thiagokokada/git2html/internal/render"
	"github.com/thiagokokada/git2html/internal/watch"
)

var convertShort = map[git.Command]string{
	git.CommandDiff: "Convert git diff output into an HTML report",
	git.CommandLog:  "Convert git log output into an HTML report",
	git.CommandShow: "Convert git show output into an HTML report",
}

func newConvertCmd(gitCmd git.Command, opts *rootOptions, s streams) *cobra.Command {
	c := &cobra.Command{
		Use:   string(gitCmd) + " [git-args...]",
		Short: convertShort[gitCmd],
		Long: convertShort[gitCmd] + ".\n\n" +
			"Arguments are passed to git unchanged. Put git flags after \"--\"\n" +
			"so they are not read as git2html flags.",
		Example: fmt.Sprintf("  git2html %[1]s -o report.html -- HEAD~3\n  git %[1]s | git2html %[1]s", gitCmd),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, gitCmd, args, opts, s)
		},
	}
	c.Flags().SetInterspersed(false)
	return c
}

func runConvert(cmd *cobra.Command, gitCmd git.Command, args []string, opts *rootOptions, s streams) error {
	ctx := cmd.Context()
	cfg, err := opts.settings(cmd)
	if err != nil {
		return err
	}
	renderer := render.New(render.Options{
		Theme:     cfg.ThemeValue(),
		Highlight: cfg.Highlight,
		WordDiff:  cfg.WordDiff,
		Version:   buildinfo.Version(),
	})
	slog.Debug("renderer ready",
		slog.String("theme", string(renderer.Theme())),
		slog.Bool("highlight", cfg.Highlight),
		slog.Bool("word_diff", cfg.WordDiff),
	)

	req := convert.Request{
		Command: gitCmd,
		Args:    args,
		Output:  opts.output,
		Format:  cfg.FormatValue(),
	}
	if req.Output == "" {
		req.Output = convert.DefaultOutputPath(cfg.OutputDir, gitCmd, args, req.Format)
	}

	useStdin := opts.stdin
	if !cmd.Flags().Changed("stdin") && s.piped != nil {
		useStdin = s.piped()
	}
	if useStdin {
		if opts.watch {
			return errors.New("--watch needs a repository, not stdin input")
		}
		req.Input = s.in
		return convertOnce(ctx, convert.New(nil, renderer), req, cfg, s.out)
	}

	gitOpts, err := cfg.GitOptions()
	if err != nil {
		return err
	}
	svc, err := git.Open(opts.repo, gitOpts)
	if err != nil {
		return err
	}
	conv := convert.New(svc, renderer)
	if err := convertOnce(ctx, conv, req, cfg, s.out); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}

	color.New(color.FgCyan).Fprintf(s.out, "Watching %s for changes (Ctrl+C to stop)\n", svc.RepoPath())
	var mu sync.Mutex
	return watch.Run(ctx, svc.RepoPath(), watch.Options{
		Ignore:         []string{req.Output},
		IgnorePatterns: []string{convert.TempPattern},
	}, func() {
		mu.Lock()
		defer mu.Unlock()
		if err := convertOnce(ctx, conv, req, cfg, s.out); err != nil {
			slog.Error("regenerate report", slog.Any("error", err))
		}
	})
}

func convertOnce(ctx context.Context, conv *convert.Converter, req convert.Request, cfg *config.Config, out io.Writer) error {
	res, err := conv.Convert(ctx, req)
	if errors.Is(err, convert.ErrNoChanges) {
		color.New(color.FgYellow).Fprintf(out, "No changes found; %s not written\n", req.Output)
		return nil
	}
	if err != nil {
		return err
	}
	convert.PrintSummary(out, res, cfg.Stats)
	return nil
}
