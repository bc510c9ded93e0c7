package scribe_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/lua40dec/lang/ast"
	"github.com/mna/lua40dec/lang/scribe"
)

func render(t *testing.T, root *ast.Block) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, scribe.Write(&buf, &ast.Syntax{Root: root}))
	return buf.String()
}

func TestLocalVarAndAssign(t *testing.T) {
	root := &ast.Block{Nodes: []ast.Node{
		&ast.LocalVar{Name: &ast.Ident{Name: "a"}, Rhs: &ast.Literal{Kind: ast.LitInt, Int: 1}},
		&ast.Assign{Name: &ast.Ident{Name: "a"}, Rhs: &ast.Literal{Kind: ast.LitInt, Int: 2}},
	}}
	assert.Equal(t, "local a = 1\na = 2\n", render(t, root))
}

func TestBinaryDefensiveParens(t *testing.T) {
	inner := &ast.Binary{Op: ast.OpAdd, Lhs: &ast.Literal{Kind: ast.LitInt, Int: 1}, Rhs: &ast.Literal{Kind: ast.LitInt, Int: 2}}
	outer := &ast.Binary{Op: ast.OpMult, Lhs: inner, Rhs: &ast.Literal{Kind: ast.LitInt, Int: 3}}
	root := &ast.Block{Nodes: []ast.Node{
		&ast.LocalVar{Name: &ast.Ident{Name: "a"}, Rhs: outer},
	}}
	assert.Equal(t, "local a = (1 + 2) * 3\n", render(t, root))
}

func TestIfElse(t *testing.T) {
	cond := &ast.Binary{Op: ast.OpLE, Lhs: &ast.Literal{Kind: ast.LitInt, Int: 1}, Rhs: &ast.Literal{Kind: ast.LitInt, Int: 2}}
	root := &ast.Block{Nodes: []ast.Node{
		&ast.If{
			Cond: cond,
			Then: &ast.Block{Nodes: []ast.Node{&ast.CallStmt{Call: &ast.CallExpr{Callee: &ast.Ident{Name: "print"}, Args: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 1}}}}}},
			Else: &ast.Block{Nodes: []ast.Node{&ast.CallStmt{Call: &ast.CallExpr{Callee: &ast.Ident{Name: "print"}, Args: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 2}}}}}},
		},
	}}
	want := "if 1 <= 2 then\n    print(1)\nelse\n    print(2)\nend\n"
	assert.Equal(t, want, render(t, root))
}

func TestWhileLoop(t *testing.T) {
	cond := &ast.Literal{Kind: ast.LitInt, Int: 1}
	root := &ast.Block{Nodes: []ast.Node{
		&ast.While{Cond: cond, Body: &ast.Block{Nodes: []ast.Node{&ast.Return{}}}},
	}}
	assert.Equal(t, "while 1 do\n    return\nend\n", render(t, root))
}

func TestNumericForLoop(t *testing.T) {
	root := &ast.Block{Nodes: []ast.Node{
		&ast.For{
			Kind:  ast.ForNumeric,
			Names: []*ast.Ident{{Name: "i"}},
			Exprs: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 1}, &ast.Literal{Kind: ast.LitInt, Int: 10}},
			Body:  &ast.Block{Nodes: []ast.Node{&ast.CallStmt{Call: &ast.CallExpr{Callee: &ast.Ident{Name: "print"}, Args: []ast.Expr{&ast.Ident{Name: "i"}}}}}},
		},
	}}
	assert.Equal(t, "for i = 1, 10 do\n    print(i)\nend\n", render(t, root))
}

func TestFunctionExprMultiline(t *testing.T) {
	param := &ast.Ident{Name: "x"}
	fn := &ast.FunctionExpr{
		Params: []*ast.Ident{param},
		Body:   &ast.Block{Nodes: []ast.Node{&ast.Return{Results: []ast.Expr{param}}}},
	}
	root := &ast.Block{Nodes: []ast.Node{
		&ast.LocalVar{Name: &ast.Ident{Name: "f"}, Rhs: fn},
	}}
	want := "local f = function(x)\n    return x\nend\n"
	assert.Equal(t, want, render(t, root))
}

func TestTableConstructor(t *testing.T) {
	tbl := &ast.TableExpr{Items: []ast.KeyVal{
		{Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
		{Key: &ast.Literal{Kind: ast.LitStr, Str: "k"}, Value: &ast.Literal{Kind: ast.LitInt, Int: 2}},
	}}
	root := &ast.Block{Nodes: []ast.Node{
		&ast.LocalVar{Name: &ast.Ident{Name: "t"}, Rhs: tbl},
	}}
	assert.Equal(t, `local t = {1, ["k"] = 2}`+"\n", render(t, root))
}
