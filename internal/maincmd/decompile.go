package maincmd

import (
	"context"
	"fmt"
	"os"

	"github.com/mna/mainer"

	"github.com/mna/lua40dec/lang/chunk"
	"github.com/mna/lua40dec/lang/lift"
	"github.com/mna/lua40dec/lang/scribe"
)

// decompile runs the full pipeline: decode path into a Proto tree, lift
// it to a Syntax tree, and print the recovered source to stdio.Stdout.
// Any stage's error is wrapped with the stage name and path and
// returned; the caller formats it as the single required diagnostic line.
func (c *Cmd) decompile(_ context.Context, stdio mainer.Stdio, path string) error {
	buf, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	warn := func(msg string) { fmt.Fprintf(stdio.Stderr, "%s: warning: %s\n", binName, msg) }
	proto, err := chunk.Decode(buf, warn)
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}

	syn, err := lift.Lift(proto)
	if err != nil {
		return fmt.Errorf("lift %s: %w", path, err)
	}

	if err := scribe.Write(stdio.Stdout, syn); err != nil {
		return fmt.Errorf("print %s: %w", path, err)
	}
	return nil
}
