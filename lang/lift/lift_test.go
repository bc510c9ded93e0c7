package lift_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/lua40dec/lang/ast"
	"github.com/mna/lua40dec/lang/chunk"
	"github.com/mna/lua40dec/lang/lift"
)

func proto(ops ...chunk.Op) *chunk.Proto {
	return &chunk.Proto{Ops: ops, Lines: make([]int, len(ops))}
}

func TestLiftLocalLiteral(t *testing.T) {
	p := proto(
		chunk.Op{Kind: chunk.OpPushInt, S: 1},
		chunk.Op{Kind: chunk.OpEnd},
	)
	syn, err := lift.Lift(p)
	require.NoError(t, err)
	require.Len(t, syn.Root.Nodes, 1)
	decl, ok := syn.Root.Nodes[0].(*ast.LocalVar)
	require.True(t, ok)
	assert.Equal(t, "a", decl.Name.Name)
	lit, ok := decl.Rhs.(*ast.Literal)
	require.True(t, ok)
	assert.Equal(t, int32(1), lit.Int)
}

func TestLiftCallArgCountFromStackDepth(t *testing.T) {
	p := &chunk.Proto{
		Constants: chunk.Constants{Strings: []string{"print"}},
		Ops: []chunk.Op{
			{Kind: chunk.OpGetGlobal, U: 0},
			{Kind: chunk.OpPushInt, S: 1},
			{Kind: chunk.OpCall, A: 0, B: 0},
			{Kind: chunk.OpEnd},
		},
	}
	p.Lines = make([]int, len(p.Ops))
	syn, err := lift.Lift(p)
	require.NoError(t, err)
	require.Len(t, syn.Root.Nodes, 1)
	call, ok := syn.Root.Nodes[0].(*ast.CallStmt)
	require.True(t, ok)
	assert.Len(t, call.Call.Args, 1)
}

func TestLiftJumpTargetOutOfRangeErrors(t *testing.T) {
	p := proto(
		chunk.Op{Kind: chunk.OpPushInt, S: 1},
		chunk.Op{Kind: chunk.OpPushInt, S: 2},
		chunk.Op{Kind: chunk.OpJumpLE, S: 100}, // jump target out of range
	)
	_, err := lift.Lift(p)
	require.Error(t, err)
}

func TestLiftRetiresSlotsOnPop(t *testing.T) {
	// Two sibling blocks whose locals share the same VM stack slot: each
	// Pop declares and retires its slot before the next block reuses it,
	// so the second local gets a fresh name rather than colliding with
	// (or silently reassigning) the first's.
	p := proto(
		chunk.Op{Kind: chunk.OpPushInt, S: 1},
		chunk.Op{Kind: chunk.OpPop, U: 1},
		chunk.Op{Kind: chunk.OpPushInt, S: 2},
		chunk.Op{Kind: chunk.OpPop, U: 1},
		chunk.Op{Kind: chunk.OpEnd},
	)
	syn, err := lift.Lift(p)
	require.NoError(t, err)
	require.Len(t, syn.Root.Nodes, 2)

	first, ok := syn.Root.Nodes[0].(*ast.LocalVar)
	require.True(t, ok)
	second, ok := syn.Root.Nodes[1].(*ast.LocalVar)
	require.True(t, ok)
	assert.NotEqual(t, first.Name.Name, second.Name.Name)
}

func TestLiftSynthesizedLocalAvoidsGlobalName(t *testing.T) {
	// The function's only global reference is named "a" (the first name
	// the namer would otherwise synthesize): the recovered local must get
	// a different name, or the printed source would read the global where
	// the chunk actually reads the local.
	p := &chunk.Proto{
		Constants: chunk.Constants{Strings: []string{"a"}},
		Ops: []chunk.Op{
			{Kind: chunk.OpGetGlobal, U: 0},
			{Kind: chunk.OpEnd},
		},
	}
	p.Lines = make([]int, len(p.Ops))
	syn, err := lift.Lift(p)
	require.NoError(t, err)
	require.Len(t, syn.Root.Nodes, 1)
	decl, ok := syn.Root.Nodes[0].(*ast.LocalVar)
	require.True(t, ok)
	assert.NotEqual(t, "a", decl.Name.Name)
	ref, ok := decl.Rhs.(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, "a", ref.Name)
}

func TestLiftClosureParamNameMatchesBody(t *testing.T) {
	nested := &chunk.Proto{
		NumParams: 1,
		Ops: []chunk.Op{
			{Kind: chunk.OpGetLocal, U: 0},
			{Kind: chunk.OpReturn, U: 1},
			{Kind: chunk.OpEnd},
		},
	}
	nested.Lines = make([]int, len(nested.Ops))
	p := &chunk.Proto{
		Constants: chunk.Constants{Protos: []*chunk.Proto{nested}},
		Ops: []chunk.Op{
			{Kind: chunk.OpClosure, A: 0, B: 0},
			{Kind: chunk.OpEnd},
		},
	}
	p.Lines = make([]int, len(p.Ops))

	syn, err := lift.Lift(p)
	require.NoError(t, err)
	require.Len(t, syn.Root.Nodes, 1)
	decl, ok := syn.Root.Nodes[0].(*ast.LocalVar)
	require.True(t, ok)
	fn, ok := decl.Rhs.(*ast.FunctionExpr)
	require.True(t, ok)
	require.Len(t, fn.Params, 1)
	require.Len(t, fn.Body.Nodes, 1)
	ret, ok := fn.Body.Nodes[0].(*ast.Return)
	require.True(t, ok)
	require.Len(t, ret.Results, 1)
	bodyRef, ok := ret.Results[0].(*ast.Ident)
	require.True(t, ok)
	assert.Equal(t, fn.Params[0].Name, bodyRef.Name)
}
