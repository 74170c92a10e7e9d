package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/git2html/internal/buildinfo"
	"github.com/thiagokokada/git2html/internal/git"
	"github.com/thiagokokada/git2html/internal/render"
)

func newVersionCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(s.out, "git2html %s\n", buildinfo.VersionWithTags())
			gitVersion, err := git.GitVersion()
			if err != nil {
				slog.Debug("git version", slog.Any("error", err))
				fmt.Fprintf(s.out, "git not available (minimum %s)\n", git.MinGitVersion())
				return nil
			}
			fmt.Fprintf(s.out, "git %s (minimum %s)\n", gitVersion, git.MinGitVersion())
			return nil
		},
	}
}

func newSchemaCmd(s streams) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of --format json output",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := s.out.Write(render.JSONSchema())
			return err
		},
	}
}
