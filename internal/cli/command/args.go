package command

import (
	"flag"
	"io"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/wizcli-go/internal/core/domain"
)

// cmdArgs holds the positional arguments of a command together with any
// of its flags given after them. urfave/cli stops parsing flags at the
// first positional, so `download GUID --out DIR` leaves --out in Args.
type cmdArgs struct {
	c        *cli.Context
	trailing *flag.FlagSet
	args     []string
}

func parseArgs(c *cli.Context) (*cmdArgs, error) {
	a := &cmdArgs{c: c}
	rest := c.Args().Slice()
	if len(rest) == 0 || c.Command == nil {
		a.args = rest
		return a, nil
	}

	set := flag.NewFlagSet(c.Command.Name, flag.ContinueOnError)
	set.SetOutput(io.Discard)
	for _, f := range c.Command.Flags {
		if err := f.Apply(set); err != nil {
			return nil, err
		}
	}

	for len(rest) > 0 {
		arg := rest[0]
		if arg == "--" {
			a.args = append(a.args, rest[1:]...)
			break
		}
		if arg == "-" || !strings.HasPrefix(arg, "-") {
			a.args = append(a.args, arg)
			rest = rest[1:]
			continue
		}
		if err := set.Parse(rest); err != nil {
			return nil, domain.ErrInvalidArgument.WithDetails(err.Error())
		}
		rest = set.Args()
	}
	a.trailing = set
	return a, nil
}

// First returns the first positional argument or "".
func (a *cmdArgs) First() string {
	if len(a.args) == 0 {
		return ""
	}
	return a.args[0]
}

// Slice returns all positional arguments.
func (a *cmdArgs) Slice() []string { return a.args }

// Len returns the number of positional arguments.
func (a *cmdArgs) Len() int { return len(a.args) }

// Tail returns the positional arguments after the first.
func (a *cmdArgs) Tail() []string {
	if len(a.args) < 2 {
		return nil
	}
	return a.args[1:]
}

// lookup returns the trailing value of the flag named name, if it was given.
func (a *cmdArgs) lookup(name string) *flag.Flag {
	if a.trailing == nil {
		return nil
	}
	var names []string
	for _, f := range a.c.Command.Flags {
		if fn := f.Names(); len(fn) > 0 && fn[0] == name {
			names = fn
			break
		}
	}
	var found *flag.Flag
	a.trailing.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				found = f
			}
		}
	})
	return found
}

// String returns the flag value, preferring one given after the arguments.
func (a *cmdArgs) String(name string) string {
	if f := a.lookup(name); f != nil {
		return f.Value.String()
	}
	return a.c.String(name)
}

// Bool returns the flag value, preferring one given after the arguments.
func (a *cmdArgs) Bool(name string) bool {
	if f := a.lookup(name); f != nil {
		return f.Value.String() == "true"
	}
	return a.c.Bool(name)
}
