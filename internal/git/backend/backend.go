package backend

import (
	"context"
	"errors"
	"fmt"
)

// Command names the git porcelain command whose text output is converted.
type Command string

const (
	CommandDiff Command = "diff"
	CommandLog  Command = "log"
	CommandShow Command = "show"
)

// Kind selects a Backend implementation.
type Kind string

const (
	KindCLI    Kind = "cli"
	KindNative Kind = "native"
)

// ErrUnsupported is returned when a backend cannot reproduce the output of
// the requested command and arguments.
var ErrUnsupported = errors.New("unsupported by backend")

// Backend produces the text git would print for a command.
//
// The default implementation shells out to the git executable. The native
// implementation reads the repository with go-git and prints the same formats
// for the subset of arguments it understands.
type Backend interface {
	RepoPath() string
	Output(ctx context.Context, cmd Command, args []string) (string, error)
}

type Options struct {
	// GlobalArgs are placed before the command name, e.g. "-c" "core.quotePath=false".
	GlobalArgs []string
}

func Open(kind Kind, repoPath string, opts Options) (Backend, error) {
	switch kind {
	case "", KindCLI:
		return OpenCLI(repoPath, opts)
	case KindNative:
		return OpenNative(repoPath)
	default:
		return nil, fmt.Errorf("unknown backend %q", kind)
	}
}
