package chunk

import "fmt"

// DecodeError is a fatal, structured decoder error: it names the byte
// offset in the input at which the problem was detected.
type DecodeError struct {
	Offset int
	Reason string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("chunk: decode error at offset %d: %s", e.Offset, e.Reason)
}
