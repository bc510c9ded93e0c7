package ast

import "fmt"

// IfHead is the partial produced by a conditional jump, pending the
// block span that closes it becoming a completed If.
type IfHead struct {
	Cond Expr
}

func (n *IfHead) node()          {}
func (n *IfHead) partial()       {}
func (n *IfHead) String() string { return fmt.Sprintf("<partial if %s>", n.Cond) }

// ForHead is the partial produced by ForPrep/LForPrep, pending the
// matching ForLoop/LForLoop closing its span.
type ForHead struct {
	Kind  ForKind
	Names []*Ident
	Exprs []Expr
}

func (n *ForHead) node()          {}
func (n *ForHead) partial()       {}
func (n *ForHead) String() string { return "<partial for>" }
