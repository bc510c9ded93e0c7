// Package scribe renders a lang/ast.Syntax tree as Lua 4.0 source text.
// Output uses defensive parenthesization rather than an
// operator-precedence table: any Binary nested inside another Binary is
// always wrapped in parens, which is always correct even though
// sometimes more verbose than a human would write.
package scribe

import (
	"fmt"
	"io"
	"strings"

	"github.com/mna/lua40dec/lang/ast"
)

const indentWidth = "    "

// Scribe writes a Syntax tree to an underlying writer. The zero value is
// not usable; construct with New.
type Scribe struct {
	w     io.Writer
	depth int
	err   error
}

// New returns a Scribe that writes to w.
func New(w io.Writer) *Scribe { return &Scribe{w: w} }

// Write renders syn to w in one pass.
func Write(w io.Writer, syn *ast.Syntax) error {
	s := New(w)
	s.block(syn.Root)
	return s.err
}

func (s *Scribe) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *Scribe) line(text string) {
	s.printf("%s%s\n", strings.Repeat(indentWidth, s.depth), text)
}

func (s *Scribe) block(b *ast.Block) {
	for _, n := range b.Nodes {
		s.stmt(n)
	}
}

func (s *Scribe) stmt(n ast.Node) {
	switch n := n.(type) {
	case *ast.LocalVar:
		s.line(fmt.Sprintf("local %s = %s", n.Name.Name, s.exprStr(n.Rhs)))
	case *ast.Assign:
		s.line(fmt.Sprintf("%s = %s", s.exprStr(n.Name), s.exprStr(n.Rhs)))
	case *ast.CallStmt:
		s.line(s.exprStr(n.Call))
	case *ast.If:
		s.line(fmt.Sprintf("if %s then", s.exprStr(n.Cond)))
		s.depth++
		s.block(n.Then)
		s.depth--
		if n.Else != nil {
			s.line("else")
			s.depth++
			s.block(n.Else)
			s.depth--
		}
		s.line("end")
	case *ast.While:
		s.line(fmt.Sprintf("while %s do", s.exprStr(n.Cond)))
		s.depth++
		s.block(n.Body)
		s.depth--
		s.line("end")
	case *ast.For:
		s.line(s.forHeader(n) + " do")
		s.depth++
		s.block(n.Body)
		s.depth--
		s.line("end")
	case *ast.Return:
		if len(n.Results) == 0 {
			s.line("return")
			return
		}
		parts := make([]string, len(n.Results))
		for i, e := range n.Results {
			parts[i] = s.exprStr(e)
		}
		s.line("return " + strings.Join(parts, ", "))
	default:
		s.line(fmt.Sprintf("--[[ unrenderable node: %s ]]", n))
	}
}

func (s *Scribe) forHeader(n *ast.For) string {
	if n.Kind == ast.ForNumeric {
		parts := make([]string, len(n.Exprs))
		for i, e := range n.Exprs {
			parts[i] = s.exprStr(e)
		}
		return fmt.Sprintf("for %s = %s", n.Names[0].Name, strings.Join(parts, ", "))
	}
	names := make([]string, len(n.Names))
	for i, id := range n.Names {
		names[i] = id.Name
	}
	parts := make([]string, len(n.Exprs))
	for i, e := range n.Exprs {
		parts[i] = s.exprStr(e)
	}
	return fmt.Sprintf("for %s in %s", strings.Join(names, ", "), strings.Join(parts, ", "))
}

// exprStr renders an expression without parenthesizing it at the top
// level; callers that embed it inside another expression use operand
// to get defensive parens around nested Binary nodes.
func (s *Scribe) exprStr(e ast.Expr) string {
	switch e := e.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.Literal:
		return e.String()
	case *ast.Binary:
		if e.Lhs == nil {
			return e.Op.Symbol() + s.operand(e.Rhs)
		}
		return fmt.Sprintf("%s %s %s", s.operand(e.Lhs), e.Op.Symbol(), s.operand(e.Rhs))
	case *ast.CallExpr:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = s.exprStr(a)
		}
		return fmt.Sprintf("%s(%s)", s.operand(e.Callee), strings.Join(args, ", "))
	case *ast.MultRet:
		return s.exprStr(e.Source)
	case *ast.TableExpr:
		return s.tableExpr(e)
	case *ast.DotExpr:
		return fmt.Sprintf("%s.%s", s.operand(e.Prefix), e.Name)
	case *ast.IndexExpr:
		return fmt.Sprintf("%s[%s]", s.operand(e.Prefix), s.exprStr(e.Index))
	case *ast.SelfExpr:
		return fmt.Sprintf("%s:%s", s.operand(e.Prefix), e.Name)
	case *ast.FunctionExpr:
		return s.functionExpr(e)
	default:
		return fmt.Sprintf("--[[ unrenderable expr: %s ]]", e)
	}
}

func (s *Scribe) tableExpr(t *ast.TableExpr) string {
	parts := make([]string, len(t.Items))
	for i, kv := range t.Items {
		if kv.Key == nil {
			parts[i] = s.exprStr(kv.Value)
			continue
		}
		parts[i] = fmt.Sprintf("[%s] = %s", s.exprStr(kv.Key), s.exprStr(kv.Value))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

func (s *Scribe) functionExpr(f *ast.FunctionExpr) string {
	var head strings.Builder
	head.WriteString("function(")
	for i, p := range f.Params {
		if i > 0 {
			head.WriteString(", ")
		}
		head.WriteString(p.Name)
	}
	if f.IsVararg {
		if len(f.Params) > 0 {
			head.WriteString(", ")
		}
		head.WriteString("...")
	}
	head.WriteByte(')')

	var body strings.Builder
	nested := &Scribe{w: &body, depth: s.depth + 1}
	nested.block(f.Body)
	if nested.err != nil && s.err == nil {
		s.err = nested.err
	}

	var out strings.Builder
	out.WriteString(head.String())
	out.WriteByte('\n')
	out.WriteString(body.String())
	out.WriteString(strings.Repeat(indentWidth, s.depth))
	out.WriteString("end")
	return out.String()
}

// operand renders e the way it appears as a sub-expression of another
// expression: a nested Binary is always parenthesized.
func (s *Scribe) operand(e ast.Expr) string {
	if _, ok := e.(*ast.Binary); ok {
		return "(" + s.exprStr(e) + ")"
	}
	return s.exprStr(e)
}
