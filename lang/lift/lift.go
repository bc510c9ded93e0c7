// Package lift turns a decoded chunk.Proto into a lang/ast.Syntax tree by
// simulating the Lua 4.0 operand stack as it walks a prototype's code
// array once, left to right. It is the middle stage of the pipeline:
// lang/chunk feeds it Protos, lang/scribe consumes its trees.
package lift

import (
	"github.com/dolthub/swiss"

	"github.com/mna/lua40dec/lang/ast"
	"github.com/mna/lua40dec/lang/chunk"
)

// Lift recovers the AST for p and every prototype it nests.
func Lift(p *chunk.Proto) (*ast.Syntax, error) {
	seen := swiss.NewMap[string, struct{}](uint32(8))
	// claim the globals of every prototype in the tree up front, so a name
	// an enclosing prototype synthesizes never equals a global one of its
	// nested prototypes refers to
	var claimGlobals func(*chunk.Proto)
	claimGlobals = func(p *chunk.Proto) {
		for _, name := range globalNames(p) {
			seen.Put(name, struct{}{})
		}
		for _, child := range p.Constants.Protos {
			claimGlobals(child)
		}
	}
	claimGlobals(p)
	root, _, err := liftProto(p, seen)
	if err != nil {
		return nil, err
	}
	return &ast.Syntax{Root: root}, nil
}

// state carries everything liftProto needs for one prototype. Nested
// prototypes (Closure) get their own state but share the seen set, so
// synthesized names never collide across the whole tree, and their
// output is worth rendering distinctly in the final tree even though
// the function bodies are independent.
type state struct {
	p      *chunk.Proto
	nodes  []ast.Node
	st     vstack
	spans  []*blockSpan
	blocks []*ast.Block
	names  *namer
	multi  map[ip]bool

	// local names every stack slot the lifter has had occasion to refer
	// to by name, whether or not a declaration statement has been
	// emitted for it yet. declared tracks which of those names have
	// actually surfaced as a LocalVar/Assign statement: a slot can be
	// named well before it is declared, since
	// Lua 4.0 locals are simply values resting on the stack and the
	// compiler never emits a dedicated "declare" instruction for the
	// common case of a local initialized where it's pushed.
	local    map[int]*ast.Ident
	declared map[int]bool
}

func liftProto(p *chunk.Proto, seen *swiss.Map[string, struct{}]) (*ast.Block, []*ast.Ident, error) {
	s := &state{
		p:        p,
		nodes:    make([]ast.Node, len(p.Ops)),
		blocks:   []*ast.Block{{}},
		names:    newNamer(seen),
		local:    make(map[int]*ast.Ident),
		declared: make(map[int]bool),
		multi:    make(map[ip]bool),
	}
	for _, l := range p.Locals {
		s.names.claim(l.Name)
	}
	for _, name := range globalNames(p) {
		s.names.claim(name)
	}
	params := make([]*ast.Ident, p.NumParams)
	for slot := 0; slot < p.NumParams; slot++ {
		params[slot] = s.identFor(slot, 0)
		s.local[slot] = params[slot]
		s.declared[slot] = true
		s.st.set(slot, noIp)
	}

	for i := range p.Ops {
		if err := s.step(ip(i)); err != nil {
			return nil, nil, err
		}
	}

	if len(s.spans) != 0 {
		return nil, nil, errf(int(s.spans[len(s.spans)-1].start), "block span never closed")
	}
	if len(s.blocks) != 1 {
		return nil, nil, errf(len(p.Ops), "unbalanced block nesting at end of prototype")
	}
	return s.blocks[0], params, nil
}

// globalNames collects every string constant referenced as a global
// name by GetGlobal/SetGlobal in p, so they can be claimed by the namer
// before any name synthesis happens: a synthesized local must never
// equal a global the same function also refers to by that name, or the
// printed source would resolve the reference differently than the
// chunk it came from.
func globalNames(p *chunk.Proto) []string {
	var names []string
	for _, op := range p.Ops {
		switch op.Kind {
		case chunk.OpGetGlobal, chunk.OpSetGlobal:
			names = append(names, p.Constants.Strings[op.U])
		}
	}
	return names
}

// identFor returns the debug name for slot at pc if the Locals table
// covers it, else synthesizes and claims a fresh one. Once synthesized
// for a slot it is cached on first use by
// the caller (s.local), so repeated references share the same *Ident.
func (s *state) identFor(slot int, pc int) *ast.Ident {
	if name, ok := s.p.LocalAt(pc, slot); ok {
		return &ast.Ident{Name: name}
	}
	return &ast.Ident{Name: s.names.fresh()}
}

// nameForSlot returns slot's name, synthesizing and caching one (via
// identFor) the first time anything addresses it.
func (s *state) nameForSlot(slot int, pc int) *ast.Ident {
	if id, ok := s.local[slot]; ok {
		return id
	}
	id := s.identFor(slot, pc)
	s.local[slot] = id
	return id
}

// declareLocal surfaces slot's current value, produced at p, as a
// LocalVar statement in the current block. Called lazily: by the time
// this runs, GetLocal may already have named the slot, in which case
// that name is reused rather than a new one synthesized.
func (s *state) declareLocal(slot int, p ip) {
	name := s.nameForSlot(slot, int(p))
	stmt := &ast.LocalVar{Name: name, Rhs: s.expr(p)}
	s.emit(stmt)
	s.declared[slot] = true
}

// retireSlot drops slot from scope, declaring it first if nothing ever
// did. Parameters are never retired: they live for the whole function.
func (s *state) retireSlot(slot int) {
	if slot < s.p.NumParams {
		return
	}
	if !s.declared[slot] {
		s.declareLocal(slot, s.st.at(slot))
	}
	delete(s.local, slot)
	delete(s.declared, slot)
}

// popValues pops n values off the simulated stack, declaring as locals
// any of them that reach the end of their scope without ever having
// been written by an explicit SetLocal: a do...end block's locals leave
// scope together, so a sibling block reusing the same slots gets fresh
// names.
func (s *state) popValues(n int) {
	start := s.st.len() - n
	for slot := start; slot < s.st.len(); slot++ {
		s.retireSlot(slot)
	}
	s.st.popN(n)
}

func (s *state) current() *ast.Block { return s.blocks[len(s.blocks)-1] }

func (s *state) emit(n ast.Node) { b := s.current(); b.Nodes = append(b.Nodes, n) }

func (s *state) pushBlock() { s.blocks = append(s.blocks, &ast.Block{}) }

func (s *state) popBlock() *ast.Block {
	n := len(s.blocks) - 1
	b := s.blocks[n]
	s.blocks = s.blocks[:n]
	return b
}

func (s *state) topSpan() *blockSpan {
	if len(s.spans) == 0 {
		return nil
	}
	return s.spans[len(s.spans)-1]
}

func (s *state) pushSpan(sp *blockSpan) { s.spans = append(s.spans, sp) }

func (s *state) popSpan() *blockSpan {
	n := len(s.spans) - 1
	sp := s.spans[n]
	s.spans = s.spans[:n]
	return sp
}

func (s *state) expr(p ip) ast.Expr {
	n := s.nodes[p]
	e, ok := n.(ast.Expr)
	if !ok {
		return &ast.Ident{Name: "<error>"}
	}
	return e
}

func (s *state) exprs(ps []ip) []ast.Expr {
	out := make([]ast.Expr, len(ps))
	for i, p := range ps {
		out[i] = s.expr(p)
	}
	return out
}
