package ast

import (
	"fmt"
	"strconv"
)

// BinOp identifies a binary (or, for Minus/Not, unary) operator recovered
// from an arithmetic opcode.
type BinOp uint8

const (
	OpAdd BinOp = iota
	OpSub
	OpMult
	OpDiv
	OpPow
	OpConcat
	OpMinus // unary negation
	OpNot   // unary logical not
	OpNE
	OpEQ
	OpLT
	OpLE
	OpGT
	OpGE
	OpAnd
	OpOr
)

var binOpSymbols = [...]string{
	OpAdd: "+", OpSub: "-", OpMult: "*", OpDiv: "/", OpPow: "^",
	OpConcat: "..", OpMinus: "-", OpNot: "not ", OpNE: "~=", OpEQ: "==",
	OpLT: "<", OpLE: "<=", OpGT: ">", OpGE: ">=", OpAnd: "and", OpOr: "or",
}

func (op BinOp) Symbol() string { return binOpSymbols[op] }

// IsUnary reports whether op is a unary operator (Minus, Not).
func (op BinOp) IsUnary() bool { return op == OpMinus || op == OpNot }

// Binary is a binary expression (or, when Lhs is nil, a unary one): `lhs
// op rhs` / `op rhs`.
type Binary struct {
	Op  BinOp
	Lhs Expr // nil for unary operators
	Rhs Expr
}

func (n *Binary) node() {}
func (n *Binary) expr() {}
func (n *Binary) String() string {
	if n.Lhs == nil {
		return n.Op.Symbol() + n.Rhs.String()
	}
	return fmt.Sprintf("%s %s %s", n.Lhs, n.Op.Symbol(), n.Rhs)
}

// LitKind identifies the kind of value a Literal holds.
type LitKind uint8

const (
	LitNil LitKind = iota
	LitInt
	LitNum
	LitStr
)

// Literal is a constant value: nil, an integer, a float, or a string.
type Literal struct {
	Kind LitKind
	Int  int32
	Num  float64
	Str  string
}

func (n *Literal) node() {}
func (n *Literal) expr() {}
func (n *Literal) String() string {
	switch n.Kind {
	case LitNil:
		return "nil"
	case LitInt:
		return strconv.FormatInt(int64(n.Int), 10)
	case LitNum:
		return strconv.FormatFloat(n.Num, 'g', -1, 64)
	case LitStr:
		return strconv.Quote(n.Str)
	default:
		return "<bad literal>"
	}
}

// CallExpr is a function call used as an expression, `fn(args...)`.
// NResults is the declared result count (chunk.MultRet for "all
// available"); it is informational only, the Scribe always renders the
// call the same way.
type CallExpr struct {
	Callee   Expr
	Args     []Expr
	NResults int
}

func (n *CallExpr) node() {}
func (n *CallExpr) expr() {}
func (n *CallExpr) String() string {
	s := n.Callee.String() + "("
	for i, a := range n.Args {
		if i > 0 {
			s += ", "
		}
		s += a.String()
	}
	return s + ")"
}

// MultRet marks an expression position that receives "all available
// results" from a preceding variable-result instruction (Call with
// chunk.MultRet, or a Return tail).
type MultRet struct {
	Source Expr // the Call (or other variadic producer) this expands
}

func (n *MultRet) node()          {}
func (n *MultRet) expr()          {}
func (n *MultRet) String() string { return n.Source.String() + "..." }

// KeyVal is one entry of a TableExpr: an explicit [Key] = Value pair (map
// form, from SetMap) or a positional value with Key == nil (array form,
// from SetList).
type KeyVal struct {
	Key   Expr // nil for positional entries
	Value Expr
}

// TableExpr is a table constructor `{ ... }`, recovered from
// CreateTable/SetList/SetMap (SPEC_FULL.md "Supplemented features").
type TableExpr struct {
	Items []KeyVal
}

func (n *TableExpr) node() {}
func (n *TableExpr) expr() {}
func (n *TableExpr) String() string {
	return fmt.Sprintf("table{%d items}", len(n.Items))
}

// DotExpr is `prefix.name`, recovered from GetDotted.
type DotExpr struct {
	Prefix Expr
	Name   string
}

func (n *DotExpr) node()          {}
func (n *DotExpr) expr()          {}
func (n *DotExpr) String() string { return fmt.Sprintf("%s.%s", n.Prefix, n.Name) }

// IndexExpr is `prefix[index]`, recovered from GetIndexed/GetTable.
type IndexExpr struct {
	Prefix Expr
	Index  Expr
}

func (n *IndexExpr) node()          {}
func (n *IndexExpr) expr()          {}
func (n *IndexExpr) String() string { return fmt.Sprintf("%s[%s]", n.Prefix, n.Index) }

// FunctionExpr is a closure literal, `function(...) ... end`, recovered
// from a Closure instruction together with its nested prototype's lifted
// body. Params holds the same *Ident values the body's GetLocal/SetLocal
// nodes refer to for those slots, so the printed signature and the
// printed body always agree on a parameter's name.
type FunctionExpr struct {
	Params   []*Ident
	IsVararg bool
	Body     *Block
}

func (n *FunctionExpr) node() {}
func (n *FunctionExpr) expr() {}
func (n *FunctionExpr) String() string {
	return fmt.Sprintf("function(%d params)", len(n.Params))
}

// SelfExpr is `prefix:name`, the receiver half of a PushSelf method-call
// lowering (`obj:method(args)` compiles to a PushSelf followed by a
// Call whose first hidden argument is the receiver).
type SelfExpr struct {
	Prefix Expr
	Name   string
}

func (n *SelfExpr) node()          {}
func (n *SelfExpr) expr()          {}
func (n *SelfExpr) String() string { return fmt.Sprintf("%s:%s", n.Prefix, n.Name) }
