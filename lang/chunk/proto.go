package chunk

// Proto is a compiled Lua function prototype: code, constants and debug
// information. A chunk's top-level Proto owns its nested prototypes by
// value; there is no sharing and no cycles.
type Proto struct {
	Source      string
	LineDefined int
	NumParams   int
	IsVararg    bool
	MaxStack    int

	Locals []Local

	Constants Constants

	Code  []uint32 // raw 32-bit instruction words
	Ops   []Op     // decoded instructions, Ops[i] corresponds to Code[i]
	Lines []int    // per-instruction source line, parallel to Code/Ops
}

// Local is a debug record naming a stack slot's live range. When the
// chunk is stripped of debug info, a Proto's Locals is empty and
// the lifter (lang/lift) synthesizes names.
type Local struct {
	Name    string
	StartPC int
	EndPC   int
}

// Constants is a function prototype's constant pool: strings, numbers and
// nested prototypes, each an ordered list addressed by index.
type Constants struct {
	Strings []string
	Numbers []float64
	Protos  []*Proto
}

// LocalAt returns the debug name for stack slot pc's local, if the debug
// table covers it.
func (p *Proto) LocalAt(pc int, slot int) (string, bool) {
	// Locals are not indexed by slot directly in the debug table; the
	// convention (matching luac's own local table) is that the Nth local
	// declared that is live at pc corresponds to stack slot N among
	// locals live at pc. We resolve this by counting live locals in
	// declaration order.
	n := -1
	for _, l := range p.Locals {
		if pc < l.StartPC || pc >= l.EndPC {
			continue
		}
		n++
		if n == slot {
			return l.Name, true
		}
	}
	return "", false
}
