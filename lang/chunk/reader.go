package chunk

import (
	"encoding/binary"
	"fmt"
)

// byteOrder is the subset of encoding/binary.ByteOrder the reader needs;
// kept as its own interface so a chunk's header-declared endianness can be
// selected at runtime rather than compile time.
type byteOrder interface {
	Uint16([]byte) uint16
	Uint32([]byte) uint32
	Uint64([]byte) uint64
}

type littleEndian struct{}

func (littleEndian) Uint16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func (littleEndian) Uint32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func (littleEndian) Uint64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }

type bigEndian struct{}

func (bigEndian) Uint16(b []byte) uint16 { return binary.BigEndian.Uint16(b) }
func (bigEndian) Uint32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func (bigEndian) Uint64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }

// reader walks a chunk's byte buffer, tracking the header-declared integer
// widths and endianness so every read after the header is self-describing:
// a cursor over an in-memory buffer that never blocks.
type reader struct {
	buf []byte
	off int

	order   byteOrder
	sizeInt int
	sizeT   int

	// warn receives one line for every non-fatal oddity worth surfacing
	// (a big-endian chunk is logged, not a failure).
	warn func(string)
}

func newReader(buf []byte, warn func(string)) *reader {
	if warn == nil {
		warn = func(string) {}
	}
	return &reader{buf: buf, order: littleEndian{}, sizeInt: 4, sizeT: 4, warn: warn}
}

// withHeader reconfigures the reader's width/endianness assumptions once
// the header has been parsed, and logs a warning for big-endian chunks.
func (r *reader) withHeader(h Header) {
	r.order = h.byteOrder()
	r.sizeInt = int(h.SizeInt)
	r.sizeT = int(h.SizeSizeT)
	if h.BigEndian {
		r.warn(fmt.Sprintf("chunk declares big-endian encoding at offset %d", r.off))
	}
}

func (r *reader) errorf(format string, args ...any) error {
	return &DecodeError{Offset: r.off, Reason: fmt.Sprintf(format, args...)}
}

func (r *reader) readRaw(n int) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, r.errorf("short read: want %d bytes, have %d", n, len(r.buf)-r.off)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) readByte() (uint8, error) {
	b, err := r.readRaw(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// readInt reads a header-sized `int`.
func (r *reader) readInt() (int, error) {
	b, err := r.readRaw(r.sizeInt)
	if err != nil {
		return 0, err
	}
	return int(r.readUint(b)), nil
}

// readUint32 reads a fixed 4-byte unsigned word (used for instructions,
// which are always 4 bytes wide).
func (r *reader) readUint32() (uint32, error) {
	b, err := r.readRaw(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(b), nil
}

// readUint decodes a little/big-endian unsigned integer of the given
// byte-slice's length (1, 2, 4 or 8 bytes), matching whatever width the
// header declared for `int`/`size_t`.
func (r *reader) readUint(b []byte) uint64 {
	switch len(b) {
	case 1:
		return uint64(b[0])
	case 2:
		return uint64(r.order.Uint16(b))
	case 4:
		return uint64(r.order.Uint32(b))
	case 8:
		return r.order.Uint64(b)
	default:
		// unusual width (e.g. a 3-byte size_t): fall back to a manual
		// little/big-endian accumulation so non-power-of-two widths from
		// exotic toolchains still decode.
		var v uint64
		if _, ok := r.order.(bigEndian); ok {
			for _, c := range b {
				v = v<<8 | uint64(c)
			}
		} else {
			for i := len(b) - 1; i >= 0; i-- {
				v = v<<8 | uint64(b[i])
			}
		}
		return v
	}
}

// readSize reads a header-sized `size_t`.
func (r *reader) readSize() (uint64, error) {
	b, err := r.readRaw(r.sizeT)
	if err != nil {
		return 0, err
	}
	return r.readUint(b), nil
}

// readString reads a length-prefixed C string including its trailing
// NUL: the NUL is required and the character buffer length equals the
// declared length. A declared length of 0 denotes a nil/absent string
// (no bytes follow).
func (r *reader) readString() (string, error) {
	n, err := r.readSize()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	b, err := r.readRaw(int(n))
	if err != nil {
		return "", err
	}
	if b[len(b)-1] != 0 {
		return "", r.errorf("string of declared length %d is missing its trailing NUL", n)
	}
	return string(b[:len(b)-1]), nil
}
