// Package maincmd is the CLI front end for the decompiler: argument
// parsing, usage text, and the one operation the tool performs, built on
// github.com/mna/mainer.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mna/mainer"
)

const binName = "lua40dec"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <chunk-file>
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <chunk-file>
       %[1]s -h|--help
       %[1]s -v|--version

Decompiles a Lua 4.0 binary chunk file and prints recovered Lua source
to standard output.

Valid flag options are:
       -h --help                 Show this help and exit.
       -v --version              Print version and exit.

More information:
       https://github.com/mna/lua40dec
`, binName)
)

// Cmd holds parsed flags and positional arguments for one invocation.
type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"v,version"`

	args []string
}

func (c *Cmd) SetArgs(args []string) { c.args = args }

func (c *Cmd) SetFlags(map[string]bool) {}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}
	if len(c.args) == 0 {
		return errors.New("no chunk file specified")
	}
	if len(c.args) > 1 {
		return errors.New("only one chunk file may be specified")
	}
	return nil
}

func printError(stdio mainer.Stdio, err error) error {
	if err != nil {
		fmt.Fprintf(stdio.Stderr, "%s: %s\n", binName, err)
	}
	return err
}

// Main parses args and runs the requested operation: exit code 0 on
// success, non-zero on any decode/lift/IO/format error, with a
// single-line diagnostic on the standard error stream.
func (c *Cmd) Main(args []string, stdio mainer.Stdio) mainer.ExitCode {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: binName + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	if err := printError(stdio, c.decompile(ctx, stdio, c.args[0])); err != nil {
		return mainer.Failure
	}
	return mainer.Success
}
