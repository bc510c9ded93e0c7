package lift

import "github.com/dolthub/swiss"

// namer synthesizes names for locals with no debug entry, in the
// sequence a, b, ..., z, aa, ab, .... seen tracks every name already
// claimed, debug-sourced or synthesized, across the whole prototype
// tree being lifted, so a synthesized name never collides with one read
// from the debug table.
type namer struct {
	next int
	seen *swiss.Map[string, struct{}]
}

func newNamer(seen *swiss.Map[string, struct{}]) *namer {
	return &namer{seen: seen}
}

func (nm *namer) claim(name string) {
	nm.seen.Put(name, struct{}{})
}

func (nm *namer) fresh() string {
	for {
		name := letterName(nm.next)
		nm.next++
		if _, ok := nm.seen.Get(name); !ok {
			nm.seen.Put(name, struct{}{})
			return name
		}
	}
}

// letterName renders n (0-based) as a bijective base-26 string over
// a-z: 0 -> "a", 25 -> "z", 26 -> "aa", 27 -> "ab", ...
func letterName(n int) string {
	n++
	var buf []byte
	for n > 0 {
		n--
		buf = append([]byte{byte('a' + n%26)}, buf...)
		n /= 26
	}
	return string(buf)
}
