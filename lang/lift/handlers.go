package lift

import (
	"github.com/mna/lua40dec/lang/ast"
	"github.com/mna/lua40dec/lang/chunk"
)

// step lifts one instruction, in order. It is the core of the stack
// simulation: pop operands the opcode consumes, build the AST fragment
// it produces, and either push the fragment back (an expression) or
// emit it into the current block (a statement).
func (s *state) step(i ip) error {
	if err := s.closeGenericSpans(i); err != nil {
		return err
	}
	op := s.p.Ops[i]

	switch op.Kind {
	case chunk.OpEnd:
		// Any value still resting on the stack at this point was pushed
		// and never explicitly stored or consumed: the compiler never
		// emits a SetLocal for a local whose initializer is already
		// sitting where it needs to be, so its declaration surfaces here.
		s.popValues(s.st.len())

	case chunk.OpReturn:
		ps := s.st.popN(int(op.U))
		s.emit(&ast.Return{Results: s.multiExprs(ps)})

	case chunk.OpCall, chunk.OpTailCall:
		// A is the call's stack offset: how many unrelated values sit on
		// the simulated stack below this call's own frame (almost always
		// 0). Everything above that, minus the callee itself, is args.
		nargs := s.st.len() - 1 - int(op.A)
		if nargs < 0 {
			nargs = 0
		}
		args := s.multiExprs(s.st.popN(nargs))
		callee := s.expr(s.st.pop())
		nresults := int(op.B)
		ce := &ast.CallExpr{Callee: callee, Args: args, NResults: nresults}
		s.nodes[i] = ce
		if op.Kind == chunk.OpTailCall {
			s.emit(&ast.Return{Results: []ast.Expr{&ast.MultRet{Source: ce}}})
			break
		}
		if nresults == 0 {
			s.emit(&ast.CallStmt{Call: ce})
			break
		}
		if nresults == chunk.MultRet {
			s.multi[i] = true
		}
		s.st.push(i)

	case chunk.OpPushNil:
		s.nodes[i] = &ast.Literal{Kind: ast.LitNil}
		for n := 0; n < int(op.U); n++ {
			s.st.push(i)
		}

	case chunk.OpPop:
		s.popValues(int(op.U))

	case chunk.OpPushInt:
		s.nodes[i] = &ast.Literal{Kind: ast.LitInt, Int: op.S}
		s.st.push(i)

	case chunk.OpPushString:
		s.nodes[i] = &ast.Literal{Kind: ast.LitStr, Str: s.p.Constants.Strings[op.U]}
		s.st.push(i)

	case chunk.OpPushNum:
		s.nodes[i] = &ast.Literal{Kind: ast.LitNum, Num: s.p.Constants.Numbers[op.U]}
		s.st.push(i)

	case chunk.OpPushNegNum:
		s.nodes[i] = &ast.Literal{Kind: ast.LitNum, Num: -s.p.Constants.Numbers[op.U]}
		s.st.push(i)

	case chunk.OpPushValue:
		s.st.push(s.st.peek(int(op.U)))

	case chunk.OpGetLocal:
		name := s.nameForSlot(int(op.U), int(i))
		s.nodes[i] = &ast.Ident{Name: name.Name}
		s.st.push(i)

	case chunk.OpGetGlobal:
		s.nodes[i] = &ast.Ident{Name: s.p.Constants.Strings[op.U]}
		s.st.push(i)

	case chunk.OpGetTable:
		index := s.expr(s.st.pop())
		prefix := s.expr(s.st.pop())
		s.nodes[i] = &ast.IndexExpr{Prefix: prefix, Index: index}
		s.st.push(i)

	case chunk.OpGetDotted:
		prefix := s.expr(s.st.pop())
		s.nodes[i] = &ast.DotExpr{Prefix: prefix, Name: s.p.Constants.Strings[op.U]}
		s.st.push(i)

	case chunk.OpGetIndexed:
		prefix := s.expr(s.st.pop())
		index := s.nameForSlot(int(op.U), int(i))
		s.nodes[i] = &ast.IndexExpr{Prefix: prefix, Index: index}
		s.st.push(i)

	case chunk.OpPushSelf:
		prefix := s.expr(s.st.pop())
		s.nodes[i] = &ast.SelfExpr{Prefix: prefix, Name: s.p.Constants.Strings[op.U]}
		s.st.push(i)

	case chunk.OpCreateTable:
		s.nodes[i] = &ast.TableExpr{}
		s.st.push(i)

	case chunk.OpSetLocal:
		rhsIp := s.st.pop()
		u := int(op.U)
		if u < s.st.len() && !s.declared[u] {
			// the slot already holds a value nothing declared yet: surface
			// it as the local's initializer before this store replaces it
			s.declareLocal(u, s.st.at(u))
		}
		firstDecl := u >= s.st.len() || !s.declared[u]
		s.st.set(u, rhsIp)
		name := s.nameForSlot(u, int(i))
		var stmt ast.Stmt
		if firstDecl {
			stmt = &ast.LocalVar{Name: name, Rhs: s.expr(rhsIp)}
			s.declared[u] = true
		} else {
			stmt = &ast.Assign{Name: name, Rhs: s.expr(rhsIp)}
		}
		s.nodes[i] = stmt
		s.emit(stmt)

	case chunk.OpSetGlobal:
		rhs := s.expr(s.st.pop())
		stmt := &ast.Assign{Name: &ast.Ident{Name: s.p.Constants.Strings[op.U]}, Rhs: rhs}
		s.nodes[i] = stmt
		s.emit(stmt)

	case chunk.OpSetTable:
		value := s.expr(s.st.pop())
		index := s.expr(s.st.pop())
		prefix := s.expr(s.st.pop())
		stmt := &ast.Assign{Name: &ast.IndexExpr{Prefix: prefix, Index: index}, Rhs: value}
		s.nodes[i] = stmt
		s.emit(stmt)

	case chunk.OpSetList:
		items := s.multiExprs(s.st.popN(int(op.B)))
		tbl, ok := s.nodes[s.st.peek(0)].(*ast.TableExpr)
		if !ok {
			return errf(int(i), "setlist: no table constructor on stack")
		}
		for _, v := range items {
			tbl.Items = append(tbl.Items, ast.KeyVal{Value: v})
		}

	case chunk.OpSetMap:
		pairs := s.st.popN(2 * int(op.U))
		tbl, ok := s.nodes[s.st.peek(0)].(*ast.TableExpr)
		if !ok {
			return errf(int(i), "setmap: no table constructor on stack")
		}
		for k := 0; k+1 < len(pairs); k += 2 {
			tbl.Items = append(tbl.Items, ast.KeyVal{Key: s.expr(pairs[k]), Value: s.expr(pairs[k+1])})
		}

	case chunk.OpAdd, chunk.OpSub, chunk.OpMult, chunk.OpDiv, chunk.OpPow:
		rhs := s.expr(s.st.pop())
		lhs := s.expr(s.st.pop())
		s.nodes[i] = &ast.Binary{Op: arithOp(op.Kind), Lhs: lhs, Rhs: rhs}
		s.st.push(i)

	case chunk.OpAddI:
		lhs := s.expr(s.st.pop())
		rhs := &ast.Literal{Kind: ast.LitInt, Int: op.S}
		s.nodes[i] = &ast.Binary{Op: ast.OpAdd, Lhs: lhs, Rhs: rhs}
		s.st.push(i)

	case chunk.OpConcat:
		items := s.exprs(s.st.popN(int(op.U)))
		var result ast.Expr = items[0]
		for _, v := range items[1:] {
			result = &ast.Binary{Op: ast.OpConcat, Lhs: result, Rhs: v}
		}
		s.nodes[i] = result
		s.st.push(i)

	case chunk.OpMinus:
		operand := s.expr(s.st.pop())
		s.nodes[i] = &ast.Binary{Op: ast.OpMinus, Rhs: operand}
		s.st.push(i)

	case chunk.OpNot:
		operand := s.expr(s.st.pop())
		s.nodes[i] = &ast.Binary{Op: ast.OpNot, Rhs: operand}
		s.st.push(i)

	case chunk.OpJumpNE, chunk.OpJumpEQ, chunk.OpJumpLT, chunk.OpJumpLE, chunk.OpJumpGT, chunk.OpJumpGE:
		rhs := s.expr(s.st.pop())
		lhs := s.expr(s.st.pop())
		cond := &ast.Binary{Op: compareOp(op.Kind), Lhs: lhs, Rhs: rhs}
		return s.openIfSpan(i, op, cond)

	case chunk.OpJumpTrue, chunk.OpJumpFalse:
		cond := s.expr(s.st.pop())
		return s.openIfSpan(i, op, cond)

	case chunk.OpJumpOnTrue, chunk.OpJumpOnFalse:
		lhs := s.expr(s.st.pop())
		end := int(i) + 1 + int(op.S)
		if end < 0 || end > len(s.p.Ops) {
			return errf(int(i), "jump target %d out of range", end)
		}
		kind := spanOr
		if op.Kind == chunk.OpJumpOnFalse {
			kind = spanAnd
		}
		s.pushSpan(&blockSpan{start: i, end: ip(end), kind: kind, lhs: lhs})

	case chunk.OpJump:
		dest := int(i) + 1 + int(op.S)
		if dest < 0 || dest > len(s.p.Ops) {
			return errf(int(i), "jump target %d out of range", dest)
		}
		top := s.topSpan()
		if top == nil {
			break
		}
		if op.S < 0 {
			top.kind = spanWhile
			break
		}
		if int(top.end) == int(i)+1 && dest > int(top.end) {
			top.elseStart = top.end
			top.end = ip(dest)
			top.thenBody = s.popBlock()
			s.pushBlock()
		}

	case chunk.OpPushNilJump:
		// Approximated as a plain conditional jump: the nil-pushing half
		// of this opcode's real semantics (used by the reference
		// compiler for "x and nil" chains) is not separately modeled.
		cond := s.expr(s.st.pop())
		return s.openIfSpan(i, op, cond)

	case chunk.OpForPrep:
		exprs := s.exprs(s.st.popN(3))
		end := int(i) + 1 + int(op.S)
		if end < 0 || end > len(s.p.Ops) {
			return errf(int(i), "jump target %d out of range", end)
		}
		name := &ast.Ident{Name: s.names.fresh()}
		slot := s.st.len()
		s.local[slot] = name
		s.declared[slot] = true
		s.st.set(slot, noIp)
		s.nodes[i] = &ast.ForHead{Kind: ast.ForNumeric, Names: []*ast.Ident{name}, Exprs: exprs}
		s.pushSpan(&blockSpan{start: i, end: ip(end), kind: spanForNum})
		s.pushBlock()

	case chunk.OpLForPrep:
		exprs := s.exprs(s.st.popN(1))
		end := int(i) + 1 + int(op.S)
		if end < 0 || end > len(s.p.Ops) {
			return errf(int(i), "jump target %d out of range", end)
		}
		names := []*ast.Ident{{Name: s.names.fresh()}, {Name: s.names.fresh()}}
		for k, n := range names {
			slot := s.st.len() + k
			s.local[slot] = n
			s.declared[slot] = true
		}
		s.st.set(s.st.len(), noIp)
		s.st.set(s.st.len(), noIp)
		s.nodes[i] = &ast.ForHead{Kind: ast.ForIn, Names: names, Exprs: exprs}
		s.pushSpan(&blockSpan{start: i, end: ip(end), kind: spanForIn})
		s.pushBlock()

	case chunk.OpForLoop, chunk.OpLForLoop:
		wantKind := spanForNum
		if op.Kind == chunk.OpLForLoop {
			wantKind = spanForIn
		}
		top := s.topSpan()
		if top == nil || top.kind != wantKind {
			return errf(int(i), "%s with no matching loop header", op.Kind)
		}
		s.popSpan()
		body := s.popBlock()
		head, ok := s.nodes[top.start].(*ast.ForHead)
		if !ok {
			return errf(int(i), "loop header missing at %d", top.start)
		}
		s.popValues(len(head.Names))
		s.emitAt(top.start, &ast.For{Kind: head.Kind, Names: head.Names, Exprs: head.Exprs, Body: body})

	case chunk.OpClosure:
		proto := s.p.Constants.Protos[op.A]
		s.st.popN(int(op.B)) // captured upvalues, not modeled individually
		body, params, err := liftProto(proto, s.names.seen)
		if err != nil {
			return err
		}
		s.nodes[i] = &ast.FunctionExpr{Params: params, IsVararg: proto.IsVararg, Body: body}
		s.st.push(i)

	default:
		return errf(int(i), "unrecognized opcode %s", op.Kind)
	}
	return nil
}

// multiExprs is like exprs but wraps the final element in a MultRet when
// it was produced by a Call with B == chunk.MultRet: all
// available results flow to the next consumer of a variable list.
func (s *state) multiExprs(ps []ip) []ast.Expr {
	out := s.exprs(ps)
	if len(ps) == 0 {
		return out
	}
	last := ps[len(ps)-1]
	if s.multi[last] {
		out[len(out)-1] = &ast.MultRet{Source: out[len(out)-1]}
	}
	return out
}

// emitAt places n directly into nodes[p] without touching the current
// block's append order, and additionally emits n as a statement. Used
// when a span closes and its constructed node must take the place its
// header occupied.
func (s *state) emitAt(p ip, n ast.Node) {
	s.nodes[p] = n
	if stmt, ok := n.(ast.Stmt); ok {
		s.emit(stmt)
	}
}

func arithOp(k chunk.Opcode) ast.BinOp {
	switch k {
	case chunk.OpAdd:
		return ast.OpAdd
	case chunk.OpSub:
		return ast.OpSub
	case chunk.OpMult:
		return ast.OpMult
	case chunk.OpDiv:
		return ast.OpDiv
	case chunk.OpPow:
		return ast.OpPow
	default:
		return ast.OpAdd
	}
}

// compareOp maps a conditional-jump opcode directly to the comparison
// it tests: `if 1 <= 2 then ... end` compiles to JumpLe (scenario 5), so
// the recovered condition names the same relation as the opcode, not
// its negation.
func compareOp(k chunk.Opcode) ast.BinOp {
	switch k {
	case chunk.OpJumpNE:
		return ast.OpNE
	case chunk.OpJumpEQ:
		return ast.OpEQ
	case chunk.OpJumpLT:
		return ast.OpLT
	case chunk.OpJumpLE:
		return ast.OpLE
	case chunk.OpJumpGT:
		return ast.OpGT
	case chunk.OpJumpGE:
		return ast.OpGE
	default:
		return ast.OpEQ
	}
}
