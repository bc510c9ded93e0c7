package lift

import (
	"github.com/mna/lua40dec/lang/ast"
	"github.com/mna/lua40dec/lang/chunk"
)

// openIfSpan opens the block span for a conditional jump: cond is the
// (already built) test expression, and op.S gives the jump's
// displacement. The span starts as an If; the OpJump handler reclassifies
// it to a While if an enclosed Jump turns out to be a loop back-edge.
func (s *state) openIfSpan(i ip, op chunk.Op, cond ast.Expr) error {
	end := int(i) + 1 + int(op.S)
	if end < 0 || end > len(s.p.Ops) {
		return errf(int(i), "jump target %d out of range", end)
	}
	s.nodes[i] = &ast.IfHead{Cond: cond}
	s.pushSpan(&blockSpan{start: i, end: ip(end), kind: spanIf})
	s.pushBlock()
	return nil
}

// closeGenericSpans closes every positionally-closing span (If, While,
// Or, And) whose end has been reached by the walk arriving at i. For
// loop spans (ForNum, ForIn) close explicitly from their ForLoop/
// LForLoop handler instead, so they are skipped here.
func (s *state) closeGenericSpans(i ip) error {
	for {
		top := s.topSpan()
		if top == nil || top.end != i {
			return nil
		}
		switch top.kind {
		case spanForNum, spanForIn:
			return nil
		case spanOr, spanAnd:
			s.popSpan()
			rhs := s.expr(s.st.pop())
			op := ast.OpOr
			if top.kind == spanAnd {
				op = ast.OpAnd
			}
			s.nodes[top.start] = &ast.Binary{Op: op, Lhs: top.lhs, Rhs: rhs}
			s.st.push(top.start)
		case spanIf, spanWhile:
			s.popSpan()
			body := s.popBlock()
			head, ok := s.nodes[top.start].(*ast.IfHead)
			if !ok {
				return errf(int(top.start), "if/while header missing")
			}
			if top.kind == spanWhile {
				s.emitAt(top.start, &ast.While{Cond: head.Cond, Body: body})
				continue
			}
			var elseBlk *ast.Block
			thenBlk := body
			if top.thenBody != nil {
				thenBlk = top.thenBody
				elseBlk = body
			}
			s.emitAt(top.start, &ast.If{Cond: head.Cond, Then: thenBlk, Else: elseBlk})
		default:
			return errf(int(top.start), "unrecognized span kind")
		}
	}
}
