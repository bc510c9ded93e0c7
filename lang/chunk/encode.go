package chunk

import (
	"bytes"
	"encoding/binary"
	"math"
)

// DefaultHeader returns the field widths luac emits on a typical 32-bit
// little-endian host: 4-byte int/size_t, a 32-bit instruction word with a
// 6-bit opcode field, a 9-bit B field, and 8-byte (double precision)
// numbers. Tests and the textual fixture builder use this unless a
// scenario specifically exercises another layout.
func DefaultHeader() Header {
	return Header{
		BigEndian:        false,
		SizeInt:          4,
		SizeSizeT:        4,
		SizeInstruction:  4,
		SizeInstrArgBits: 26,
		SizeOpcodeBits:   6,
		SizeBBits:        9,
		SizeNumber:       8,
	}
}

// EncodeInstruction packs op back into a 32-bit instruction word under
// header h. It is the exact inverse of decodeInstruction and exists
// primarily to build test fixtures and to round-trip chunks the lifter or
// scribe want to re-encode (e.g. for a "recompile corpus" tool built atop
// this package).
func EncodeInstruction(op Op, h Header) uint32 {
	o := uint(h.SizeOpcodeBits)
	b := uint(h.SizeBBits)
	uBits := uint(h.uBits())

	word := uint32(op.Kind)
	switch opcodeShapes[op.Kind] {
	case shapeNone:
	case shapeU:
		word |= op.U << o
	case shapeS:
		bias := uint32(1)<<(uBits-1) - 1
		u := uint32(op.S + int32(bias))
		word |= u << o
	case shapeAB:
		word |= (op.B & ((1 << b) - 1)) << o
		word |= op.A << (o + b)
	}
	return word
}

// Encode serializes p (and its nested prototypes) as a complete Lua 4.0
// chunk under header h, the inverse of Decode. Primarily a test and
// tooling helper: it lets a round-trip test build bytes, Decode them,
// and compare the result against p.
func Encode(p *Proto, h Header) []byte {
	var buf bytes.Buffer
	encodeHeader(&buf, h)
	encodeProto(&buf, p, h)
	return buf.Bytes()
}

func order(h Header) binary.ByteOrder {
	if h.BigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func encodeHeader(buf *bytes.Buffer, h Header) {
	buf.WriteByte(idESC)
	buf.WriteString(signature)
	buf.WriteByte(luaVersion)
	if h.BigEndian {
		buf.WriteByte(endianBig)
	} else {
		buf.WriteByte(1)
	}
	for _, w := range []uint8{h.SizeInt, h.SizeSizeT, h.SizeInstruction, h.SizeInstrArgBits, h.SizeOpcodeBits, h.SizeBBits, h.SizeNumber} {
		buf.WriteByte(w)
	}

	ord := order(h)
	if h.SizeNumber == 8 {
		var b [8]byte
		ord.PutUint64(b[:], math.Float64bits(testNumber))
		buf.Write(b[:])
	} else {
		var b [4]byte
		ord.PutUint32(b[:], math.Float32bits(float32(testNumber)))
		buf.Write(b[:])
	}
}

func putUintN(buf *bytes.Buffer, ord binary.ByteOrder, v uint64, n int) {
	b := make([]byte, n)
	switch n {
	case 1:
		b[0] = byte(v)
	case 2:
		ord.PutUint16(b, uint16(v))
	case 4:
		ord.PutUint32(b, uint32(v))
	case 8:
		ord.PutUint64(b, v)
	}
	buf.Write(b)
}

func putString(buf *bytes.Buffer, ord binary.ByteOrder, sizeT int, s string) {
	if s == "" {
		putUintN(buf, ord, 0, sizeT)
		return
	}
	putUintN(buf, ord, uint64(len(s)+1), sizeT)
	buf.WriteString(s)
	buf.WriteByte(0)
}

func encodeProto(buf *bytes.Buffer, p *Proto, h Header) {
	ord := order(h)
	putString(buf, ord, int(h.SizeSizeT), p.Source)
	putUintN(buf, ord, uint64(p.LineDefined), int(h.SizeInt))
	putUintN(buf, ord, uint64(p.NumParams), int(h.SizeInt))
	if p.IsVararg {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	putUintN(buf, ord, uint64(p.MaxStack), int(h.SizeInt))

	putUintN(buf, ord, uint64(len(p.Locals)), int(h.SizeInt))
	for _, l := range p.Locals {
		putString(buf, ord, int(h.SizeSizeT), l.Name)
		putUintN(buf, ord, uint64(l.StartPC), int(h.SizeInt))
		putUintN(buf, ord, uint64(l.EndPC), int(h.SizeInt))
	}

	putUintN(buf, ord, uint64(len(p.Lines)), int(h.SizeInt))
	for _, ln := range p.Lines {
		putUintN(buf, ord, uint64(ln), int(h.SizeInt))
	}

	putUintN(buf, ord, uint64(len(p.Constants.Strings)), int(h.SizeInt))
	for _, s := range p.Constants.Strings {
		putString(buf, ord, int(h.SizeSizeT), s)
	}

	putUintN(buf, ord, uint64(len(p.Constants.Numbers)), int(h.SizeInt))
	for _, n := range p.Constants.Numbers {
		if h.SizeNumber == 8 {
			var b [8]byte
			ord.PutUint64(b[:], math.Float64bits(n))
			buf.Write(b[:])
		} else {
			var b [4]byte
			ord.PutUint32(b[:], math.Float32bits(float32(n)))
			buf.Write(b[:])
		}
	}

	putUintN(buf, ord, uint64(len(p.Constants.Protos)), int(h.SizeInt))
	for _, child := range p.Constants.Protos {
		encodeProto(buf, child, h)
	}

	putUintN(buf, ord, uint64(len(p.Code)), int(h.SizeInt))
	for _, word := range p.Code {
		var b [4]byte
		ord.PutUint32(b[:], word)
		buf.Write(b[:])
	}
}
