package maincmd_test

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/mna/mainer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/lua40dec/internal/filetest"
	"github.com/mna/lua40dec/internal/maincmd"
	"github.com/mna/lua40dec/lang/chunk"
)

var testUpdateMaincmdTests = flag.Bool("test.update-maincmd-tests", false, "If set, replace expected maincmd test results with actual results.")

// writeFixtureChunk builds a trivial "local a = 1" chunk and writes it to
// dir/name, returning the full path. Tests exercise the binary decode
// path the same way an end user's file on disk would.
func writeFixtureChunk(t *testing.T, dir, name string) string {
	t.Helper()
	h := chunk.DefaultHeader()
	op := chunk.Op{Kind: chunk.OpPushInt, S: 1}
	end := chunk.Op{Kind: chunk.OpEnd}
	p := &chunk.Proto{
		Ops:   []chunk.Op{op, end},
		Lines: []int{1, 1},
	}
	p.Code = []uint32{chunk.EncodeInstruction(op, h), chunk.EncodeInstruction(end, h)}
	raw := chunk.Encode(p, h)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, raw, 0o600))
	return path
}

func TestDecompileCommand(t *testing.T) {
	dir := t.TempDir()
	writeFixtureChunk(t, dir, "sample.luac")
	resultDir := filepath.Join("testdata", "out")

	for _, fi := range filetest.SourceFiles(t, dir, ".luac") {
		t.Run(fi.Name(), func(t *testing.T) {
			var buf, ebuf bytes.Buffer
			stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
			c := &maincmd.Cmd{}
			code := c.Main([]string{filepath.Join(dir, fi.Name())}, stdio)
			assert.Equal(t, mainer.Success, code)
			filetest.DiffOutput(t, fi, buf.String(), resultDir, testUpdateMaincmdTests)
			filetest.DiffErrors(t, fi, ebuf.String(), resultDir, testUpdateMaincmdTests)
		})
	}
}

func TestDecompileCommandMissingFile(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{}
	code := c.Main([]string{filepath.Join(t.TempDir(), "nope.luac")}, stdio)
	assert.Equal(t, mainer.Failure, code)
	assert.Contains(t, ebuf.String(), "lua40dec:")
}

func TestDecompileCommandNoArgs(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{}
	code := c.Main(nil, stdio)
	assert.Equal(t, mainer.InvalidArgs, code)
}

func TestDecompileCommandVersion(t *testing.T) {
	var buf, ebuf bytes.Buffer
	stdio := mainer.Stdio{Stdout: &buf, Stderr: &ebuf}
	c := &maincmd.Cmd{BuildVersion: "v0.0.0-test"}
	code := c.Main([]string{"-v"}, stdio)
	assert.Equal(t, mainer.Success, code)
	assert.Contains(t, buf.String(), "v0.0.0-test")
}
