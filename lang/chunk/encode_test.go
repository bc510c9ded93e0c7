package chunk_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/lua40dec/lang/chunk"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	h := chunk.DefaultHeader()
	proto := &chunk.Proto{
		Source:    "test",
		NumParams: 1,
		MaxStack:  4,
		Locals: []chunk.Local{
			{Name: "x", StartPC: 0, EndPC: 3},
		},
		Constants: chunk.Constants{
			Strings: []string{"print"},
			Numbers: []float64{2.5},
		},
		Ops: []chunk.Op{
			{Kind: chunk.OpGetGlobal, U: 0},
			{Kind: chunk.OpPushNum, U: 0},
			{Kind: chunk.OpReturn, U: 0},
		},
		Lines: []int{1, 1, 1},
	}
	for i, op := range proto.Ops {
		word := chunk.EncodeInstruction(op, h)
		proto.Code = append(proto.Code, word)
		proto.Ops[i].Raw = word // the decoder keeps the raw word on each Op
	}

	raw := chunk.Encode(proto, h)
	got, err := chunk.Decode(raw, nil)
	require.NoError(t, err)

	assert.Equal(t, proto.Source, got.Source)
	assert.Equal(t, proto.NumParams, got.NumParams)
	assert.Equal(t, proto.MaxStack, got.MaxStack)
	assert.Equal(t, proto.Constants.Strings, got.Constants.Strings)
	assert.Equal(t, proto.Constants.Numbers, got.Constants.Numbers)
	assert.Equal(t, proto.Ops, got.Ops)
	require.Len(t, got.Locals, 1)
	assert.Equal(t, "x", got.Locals[0].Name)
}

func TestEncodeInstructionShapes(t *testing.T) {
	h := chunk.DefaultHeader()
	cases := []chunk.Op{
		{Kind: chunk.OpEnd},
		{Kind: chunk.OpPop, U: 3},
		{Kind: chunk.OpPushInt, S: -7},
		{Kind: chunk.OpPushInt, S: 7},
		{Kind: chunk.OpCall, A: 0, B: 255},
		{Kind: chunk.OpJumpLE, S: -12},
	}
	proto := &chunk.Proto{Ops: cases, Lines: make([]int, len(cases))}
	for _, op := range proto.Ops {
		proto.Code = append(proto.Code, chunk.EncodeInstruction(op, h))
	}
	raw := chunk.Encode(proto, h)
	got, err := chunk.Decode(raw, nil)
	require.NoError(t, err)
	require.Len(t, got.Ops, len(cases))
	for i, want := range cases {
		assert.Equal(t, want.Kind, got.Ops[i].Kind)
		assert.Equal(t, want.U, got.Ops[i].U)
		assert.Equal(t, want.S, got.Ops[i].S)
		assert.Equal(t, want.A, got.Ops[i].A)
		assert.Equal(t, want.B, got.Ops[i].B)
	}
}

func TestDecodeBadSignature(t *testing.T) {
	_, err := chunk.Decode([]byte("not a chunk"), nil)
	require.Error(t, err)
}

func TestParseOpcodeRoundTrip(t *testing.T) {
	for op := chunk.OpEnd; op <= chunk.OpClosure; op++ {
		got, ok := chunk.ParseOpcode(op.String())
		require.True(t, ok, "opcode %s did not round-trip through ParseOpcode", op)
		assert.Equal(t, op, got)
	}
}

func TestDecodeRejectsDuplicateStringConstant(t *testing.T) {
	h := chunk.DefaultHeader()
	proto := &chunk.Proto{
		Constants: chunk.Constants{Strings: []string{"dup", "dup"}},
		Ops:       []chunk.Op{{Kind: chunk.OpEnd}},
		Lines:     []int{1},
	}
	proto.Code = []uint32{chunk.EncodeInstruction(proto.Ops[0], h)}

	raw := chunk.Encode(proto, h)
	_, err := chunk.Decode(raw, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate string constant")
}
