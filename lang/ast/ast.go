// Package ast defines the abstract syntax tree produced by the parser. The
// tree is a single closed sum type per node category (Decl, Expr): pattern
// matching over a Go type switch at every recursion site, rather than a
// visitor hierarchy, per the design notes in spec.md §9.
package ast

import "github.com/mna/sif/lang/token"

// A Node is any AST node. Identifier and literal nodes retain the originating
// token so that downstream error messages (lowering, runtime) can be
// positioned in the source file.
type Node interface {
	Pos() token.Pos
}

// A Decl is a top-level declaration or statement: vardecl | fndecl | stmt.
type Decl interface {
	Node
	declNode()
}

// An Expr is any expression node.
type Expr interface {
	Node
	exprNode()
}

// Program is the root node of a parsed source file: a flat list of
// declarations and statements in source order.
type Program struct {
	Decls []Decl
}

func (p *Program) Pos() token.Pos {
	if len(p.Decls) == 0 {
		return 0
	}
	return p.Decls[0].Pos()
}

// Block is a lexically scoped sequence of declarations, e.g. a function body
// or the body of an if/elif/else/for arm. ScopeLevel is the lexical depth
// recorded by the symbol table at the point the block was opened; see
// lang/symtab and the Open Question resolution in SPEC_FULL.md (the symbol
// table itself never exposes a popped scope again, so the depth is captured
// here for any later consumer that wants it).
type Block struct {
	TokPos     token.Pos
	Decls      []Decl
	ScopeLevel int
}

func (b *Block) Pos() token.Pos { return b.TokPos }
func (b *Block) declNode()      {}

// Null is a placeholder node used only by the parser during error recovery,
// e.g. as the value of a VarDecl whose initializer failed to parse. It must
// never reach the lowerer on an error-free parse.
type Null struct {
	TokPos token.Pos
}

func (n *Null) Pos() token.Pos { return n.TokPos }
func (n *Null) exprNode()      {}
func (n *Null) declNode()      {}
