package lift

import "golang.org/x/exp/slices"

// ip addresses one slot of a lifter's nodes buffer: the instruction that
// produced a value, or -1 for a slot whose value never came from an
// instruction (function parameters and for-loop control variables).
type ip int

const noIp ip = -1

// vstack mirrors the VM's operand stack, but holds instruction pointers
// into the lifter's nodes buffer rather than values.
type vstack struct {
	slots []ip
}

func (s *vstack) push(p ip) { s.slots = append(s.slots, p) }

func (s *vstack) pop() ip {
	n := len(s.slots) - 1
	v := s.slots[n]
	s.slots = s.slots[:n]
	return v
}

// peek returns the value n below the top (0 = top) without popping it.
func (s *vstack) peek(n int) ip { return s.slots[len(s.slots)-1-n] }

// popN removes and returns the top n entries, oldest (deepest) first, so
// the result preserves left-to-right push order.
func (s *vstack) popN(n int) []ip {
	if n == 0 {
		return nil
	}
	start := len(s.slots) - n
	out := append([]ip(nil), s.slots[start:]...)
	s.slots = slices.Delete(s.slots, start, len(s.slots))
	return out
}

func (s *vstack) len() int { return len(s.slots) }

// at returns the producer ip currently resting in absolute slot n,
// counted from the bottom of the stack (0 = the first value pushed).
// GetLocal/SetLocal address slots this way, since in Lua 4.0 a local
// variable simply IS a value resting on the operand stack.
func (s *vstack) at(n int) ip { return s.slots[n] }

// set overwrites the producer ip resting in absolute slot n, or appends
// a new slot if n is exactly the current stack depth.
func (s *vstack) set(n int, p ip) {
	if n < len(s.slots) {
		s.slots[n] = p
		return
	}
	s.slots = append(s.slots, p)
}
