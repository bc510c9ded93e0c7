package lift

import "fmt"

// Error is a fatal, structured lifter error: it names the instruction
// pointer at which the problem was detected.
type Error struct {
	Ip     int
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("lift: error at instruction %d: %s", e.Ip, e.Reason)
}

func errf(ip int, format string, args ...any) error {
	return &Error{Ip: ip, Reason: fmt.Sprintf(format, args...)}
}
