// Package chunk decodes a Lua 4.0 precompiled binary chunk into an
// in-memory Proto tree. It performs no evaluation and holds no
// dependency on the lifter or scribe packages that consume its output.
package chunk

import (
	"fmt"
	"math"

	"github.com/dolthub/swiss"
)

// Decode parses buf as a Lua 4.0 chunk and returns its top-level function
// prototype, or a *DecodeError identifying the offending byte offset.
//
// warn, if non-nil, receives one line of text for every non-fatal
// decoder oddity (currently: encountering a big-endian chunk). It plays
// the same role as a logger would in a larger system; Decode itself
// never writes to any ambient log.
func Decode(buf []byte, warn func(string)) (*Proto, error) {
	r := newReader(buf, warn)

	h, err := parseHeader(r)
	if err != nil {
		return nil, err
	}
	r.withHeader(h)

	return parseProto(r, h)
}

// parseProto parses one function prototype, recursively decoding any
// nested prototypes in its constant pool before returning.
func parseProto(r *reader, h Header) (*Proto, error) {
	p := &Proto{}

	var err error
	if p.Source, err = r.readString(); err != nil {
		return nil, err
	}
	if p.LineDefined, err = r.readInt(); err != nil {
		return nil, err
	}
	if p.NumParams, err = r.readInt(); err != nil {
		return nil, err
	}
	vararg, err := r.readByte()
	if err != nil {
		return nil, err
	}
	p.IsVararg = vararg != 0
	if p.MaxStack, err = r.readInt(); err != nil {
		return nil, err
	}

	if p.Locals, err = parseLocals(r); err != nil {
		return nil, err
	}
	if p.Lines, err = parseLines(r); err != nil {
		return nil, err
	}
	if p.Constants, err = parseConstants(r, h); err != nil {
		return nil, err
	}
	if p.Code, err = parseCode(r); err != nil {
		return nil, err
	}

	if len(p.Lines) != 0 && len(p.Lines) != len(p.Code) {
		return nil, r.errorf("line table has %d entries, code has %d instructions", len(p.Lines), len(p.Code))
	}

	p.Ops = make([]Op, len(p.Code))
	for i, word := range p.Code {
		op, reason := decodeInstruction(word, h)
		if reason != "" {
			return nil, &DecodeError{Offset: r.off, Reason: fmt.Sprintf("instruction %d: %s", i, reason)}
		}
		p.Ops[i] = op
	}

	return p, nil
}

func parseLocals(r *reader) ([]Local, error) {
	n, err := r.readInt()
	if err != nil || n == 0 {
		return nil, err
	}
	locals := make([]Local, n)
	for i := range locals {
		if locals[i].Name, err = r.readString(); err != nil {
			return nil, err
		}
		if locals[i].StartPC, err = r.readInt(); err != nil {
			return nil, err
		}
		if locals[i].EndPC, err = r.readInt(); err != nil {
			return nil, err
		}
	}
	return locals, nil
}

func parseLines(r *reader) ([]int, error) {
	n, err := r.readInt()
	if err != nil || n == 0 {
		return nil, err
	}
	lines := make([]int, n)
	for i := range lines {
		if lines[i], err = r.readInt(); err != nil {
			return nil, err
		}
	}
	return lines, nil
}

func parseConstants(r *reader, h Header) (Constants, error) {
	var c Constants

	n, err := r.readInt()
	if err != nil {
		return c, err
	}
	if n > 0 {
		c.Strings = make([]string, n)
		seen := swiss.NewMap[string, uint32](uint32(n))
		for i := range c.Strings {
			if c.Strings[i], err = r.readString(); err != nil {
				return c, err
			}
			if prior, ok := seen.Get(c.Strings[i]); ok {
				return c, r.errorf("duplicate string constant %q at index %d (first seen at %d)", c.Strings[i], i, prior)
			}
			seen.Put(c.Strings[i], uint32(i))
		}
	}

	if n, err = r.readInt(); err != nil {
		return c, err
	}
	if n > 0 {
		c.Numbers = make([]float64, n)
		for i := range c.Numbers {
			if c.Numbers[i], err = readNumber(r, h); err != nil {
				return c, err
			}
		}
	}

	if n, err = r.readInt(); err != nil {
		return c, err
	}
	if n > 0 {
		c.Protos = make([]*Proto, n)
		for i := range c.Protos {
			if c.Protos[i], err = parseProto(r, h); err != nil {
				return c, err
			}
		}
	}

	return c, nil
}

func readNumber(r *reader, h Header) (float64, error) {
	if h.SizeNumber == 8 {
		b, err := r.readRaw(8)
		if err != nil {
			return 0, err
		}
		return math.Float64frombits(r.order.Uint64(b)), nil
	}
	b, err := r.readRaw(4)
	if err != nil {
		return 0, err
	}
	return float64(math.Float32frombits(r.order.Uint32(b))), nil
}

func parseCode(r *reader) ([]uint32, error) {
	n, err := r.readInt()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	code := make([]uint32, n)
	for i := range code {
		if code[i], err = r.readUint32(); err != nil {
			return nil, err
		}
	}
	return code, nil
}
