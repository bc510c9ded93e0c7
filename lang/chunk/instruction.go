package chunk

// decodeInstruction unpacks a 32-bit instruction word according to the
// header-declared field widths:
//
//	o := size_opcode_bits
//	b := size_B_bits
//	u_bits := size_instruction_arg_bits - o
//	a_bits := size_instruction_arg_bits - o - b
//
//	opcode := word & ((1<<o)-1)
//	U      := word >> o
//	S      := U - ((1 << (u_bits-1)) - 1)
//	A      := word >> (o+b)
//	B      := (word >> o) & ((1<<b)-1)
//
// It returns a non-empty reason string instead of an error so the caller
// (parseProto) can attach the instruction index to the message.
func decodeInstruction(word uint32, h Header) (Op, string) {
	o := uint(h.SizeOpcodeBits)
	b := uint(h.SizeBBits)
	uBits := uint(h.uBits())

	opcode := Opcode(word & ((1 << o) - 1))
	if opcode >= opcodeCount {
		return Op{}, "unknown opcode " + opcode.String()
	}

	op := Op{Kind: opcode, Raw: word}

	u := word >> o
	switch opcodeShapes[opcode] {
	case shapeNone:
		// no operand fields used
	case shapeU:
		op.U = u
	case shapeS:
		bias := uint32(1)<<(uBits-1) - 1
		op.S = int32(u) - int32(bias)
		lo, hi := -(int32(1) << (uBits - 1)), int32(1)<<(uBits-1)
		if op.S < lo || op.S >= hi {
			return Op{}, "signed operand out of range"
		}
	case shapeAB:
		op.A = word >> (o + b)
		op.B = (word >> o) & ((1 << b) - 1)
	}

	return op, ""
}
