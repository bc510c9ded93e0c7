package chunk

import "math"

const (
	idESC        = 0x1B
	signature    = "Lua"
	luaVersion   = 0x40
	testNumber   = 3.14159265358979323846E8
	endianBig    = 0
	numberFormat = "number format"
)

// Header describes the binary layout advertised by a Lua 4.0 chunk, as
// parsed from the first bytes of the input.
type Header struct {
	BigEndian        bool
	SizeInt          uint8
	SizeSizeT        uint8
	SizeInstruction  uint8
	SizeInstrArgBits uint8 // size_instruction_arg_bits
	SizeOpcodeBits   uint8
	SizeBBits        uint8
	SizeNumber       uint8 // 4 or 8
}

// uBits and aBits return the bit widths of the U and A operand fields.
func (h Header) uBits() uint8 { return h.SizeInstrArgBits - h.SizeOpcodeBits }
func (h Header) aBits() uint8 { return h.uBits() - h.SizeBBits }

func (h Header) byteOrder() byteOrder {
	if h.BigEndian {
		return bigEndian{}
	}
	return littleEndian{}
}

// parseHeader reads and validates the chunk header starting at the
// current reader position.
func parseHeader(r *reader) (Header, error) {
	b, err := r.readByte()
	if err != nil {
		return Header{}, err
	}
	if b != idESC {
		return Header{}, r.errorf("bad signature byte: want 0x%02X, got 0x%02X", idESC, b)
	}

	sig, err := r.readRaw(len(signature))
	if err != nil {
		return Header{}, err
	}
	if string(sig) != signature {
		return Header{}, r.errorf("bad signature: want %q, got %q", signature, sig)
	}

	version, err := r.readByte()
	if err != nil {
		return Header{}, err
	}
	if version != luaVersion {
		return Header{}, r.errorf("unsupported version: want 0x%02X, got 0x%02X", luaVersion, version)
	}

	endian, err := r.readByte()
	if err != nil {
		return Header{}, err
	}

	var h Header
	h.BigEndian = endian == endianBig

	widths := []*uint8{&h.SizeInt, &h.SizeSizeT, &h.SizeInstruction, &h.SizeInstrArgBits, &h.SizeOpcodeBits, &h.SizeBBits, &h.SizeNumber}
	for _, w := range widths {
		v, err := r.readByte()
		if err != nil {
			return Header{}, err
		}
		*w = v
	}

	if h.SizeNumber != 4 && h.SizeNumber != 8 {
		return Header{}, r.errorf("unsupported %s: %d bytes", numberFormat, h.SizeNumber)
	}

	// The self-test number is encoded with the header's own endianness and
	// width; validate it round-trips.
	order := h.byteOrder()
	if h.SizeNumber == 8 {
		raw, err := r.readRaw(8)
		if err != nil {
			return Header{}, err
		}
		got := math.Float64frombits(order.Uint64(raw))
		if got != testNumber {
			return Header{}, r.errorf("test number mismatch: want %v, got %v", testNumber, got)
		}
	} else {
		raw, err := r.readRaw(4)
		if err != nil {
			return Header{}, err
		}
		got := math.Float32frombits(order.Uint32(raw))
		if got != float32(testNumber) {
			return Header{}, r.errorf("test number mismatch: want %v, got %v", float32(testNumber), got)
		}
	}

	return h, nil
}
