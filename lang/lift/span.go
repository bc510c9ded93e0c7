package lift

import "github.com/mna/lua40dec/lang/ast"

// spanKind distinguishes the block spans the lifter tracks while
// walking code linearly.
type spanKind uint8

const (
	// spanIf is opened by a conditional jump; closed positionally, when
	// the walk reaches its end. It may later be reclassified as
	// spanWhile (a negative-displacement Jump found inside it) or gain
	// an else arm (a positive-displacement Jump immediately preceding
	// its close, whose own target extends the span).
	spanIf spanKind = iota
	spanWhile
	// spanOr and spanAnd are opened by JumpOnTrue/JumpOnFalse: short-
	// circuit logical expressions, not control-flow statements. They
	// carry their left operand directly (lhs) rather than via a Partial
	// stored in the nodes buffer, since the AST they produce is an
	// expression that replaces a stack slot, not a statement.
	spanOr
	spanAnd
	// spanForNum and spanForIn are opened by ForPrep/LForPrep and closed
	// explicitly by their matching ForLoop/LForLoop handler, not by
	// position (see handlers.go).
	spanForNum
	spanForIn
)

// blockSpan is one entry of the lifter's open-span stack.
type blockSpan struct {
	start ip
	end   ip
	kind  spanKind

	// elseStart is set when a Jump preceding the span's original close
	// extends it to cover an else arm. thenBody holds the block built up
	// to that point; the block built after it, up to end, is the else
	// arm (see handlers.go's OpJump handling and closeGenericSpans).
	elseStart ip
	thenBody  *ast.Block

	lhs ast.Expr // spanOr/spanAnd only
}
