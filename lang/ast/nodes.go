package ast

import "github.com/mna/sif/lang/token"

// VarDecl is "var IDENT [ = rhs ] ;". Rhs is nil for a bare declaration.
// IsGlobal is true when the declaration occurs in the outermost (module)
// scope. It is shown by the AST printer; the lowerer does not read it, and
// lang/vm picks a frame-local or global heap key from the call depth at run
// time (see lang/vm's frame-local name mangling).
type VarDecl struct {
	TokPos   token.Pos
	Name     string
	IsGlobal bool
	Rhs      Expr // nil, Expr, *Array, or *Table
}

func (d *VarDecl) Pos() token.Pos { return d.TokPos }
func (d *VarDecl) declNode()      {}

// FnParams is the parenthesized parameter list of a function declaration.
type FnParams struct {
	TokPos token.Pos
	Names  []string
}

func (p *FnParams) Pos() token.Pos { return p.TokPos }

// FnDecl is "fn IDENT ( params ) block". Scope is the lexical depth of the
// function body block, mirroring Block.ScopeLevel.
type FnDecl struct {
	TokPos token.Pos
	Name   string
	Params *FnParams
	Body   *Block
	Scope  int
}

func (d *FnDecl) Pos() token.Pos { return d.TokPos }
func (d *FnDecl) declNode()      {}

// IdentPair is the "i, v" pair bound by a for-loop header.
type IdentPair struct {
	TokPos     token.Pos
	Index, Val string
}

func (p *IdentPair) Pos() token.Pos { return p.TokPos }

// ElifStmt is one "elif cond block" arm of an if-statement.
type ElifStmt struct {
	TokPos token.Pos
	Cond   Expr
	Then   *Block
}

func (e *ElifStmt) Pos() token.Pos { return e.TokPos }

// IfStmt is "if cond block {elif cond block} [else block]".
type IfStmt struct {
	TokPos token.Pos
	Cond   Expr
	Then   *Block
	Elifs  []*ElifStmt
	Else   *Block // nil if absent
}

func (s *IfStmt) Pos() token.Pos { return s.TokPos }
func (s *IfStmt) declNode()      {}

// ForStmt is "for i, v in iter block", iterating the array named by Iter.
type ForStmt struct {
	TokPos token.Pos
	Vars   *IdentPair
	Iter   Expr // identifier PrimaryExpr naming the array
	Body   *Block
}

func (s *ForStmt) Pos() token.Pos { return s.TokPos }
func (s *ForStmt) declNode()      {}

// ReturnStmt is "return [ expr ] ;". Expr is nil for a bare return. The
// parser always inserts an empty ReturnStmt at the end of a function body
// that is missing one, per spec.md §4.1.
type ReturnStmt struct {
	TokPos token.Pos
	Expr   Expr // nil for a bare return
}

func (s *ReturnStmt) Pos() token.Pos { return s.TokPos }
func (s *ReturnStmt) declNode()      {}

// ExprStmt wraps an expression used in statement position ("expr ;").
type ExprStmt struct {
	TokPos token.Pos
	X      Expr
}

func (s *ExprStmt) Pos() token.Pos { return s.TokPos }
func (s *ExprStmt) declNode()      {}

// BinaryExpr is "lhs op rhs" for any of the binary operators in §3's Binary
// opcode kind set.
type BinaryExpr struct {
	TokPos token.Pos
	Op     token.Token
	Lhs    Expr
	Rhs    Expr
}

func (e *BinaryExpr) Pos() token.Pos { return e.TokPos }
func (e *BinaryExpr) exprNode()      {}

// UnaryExpr is a prefix "-x" or "!x".
type UnaryExpr struct {
	TokPos  token.Pos
	Op      token.Token
	Operand Expr
}

func (e *UnaryExpr) Pos() token.Pos { return e.TokPos }
func (e *UnaryExpr) exprNode()      {}

// PrimaryKind discriminates the literal/identifier kinds a PrimaryExpr can
// hold.
type PrimaryKind int

const (
	PrimaryIdent PrimaryKind = iota
	PrimaryNumber
	PrimaryString
	PrimaryBool
	PrimaryNull
)

// PrimaryExpr is an identifier reference or a literal value. It retains the
// originating token for error positioning, per §3's Token model.
type PrimaryExpr struct {
	TokPos  token.Pos
	Kind    PrimaryKind
	Name    string  // valid when Kind == PrimaryIdent
	NumVal  float64 // valid when Kind == PrimaryNumber
	StrVal  string  // valid when Kind == PrimaryString
	BoolVal bool    // valid when Kind == PrimaryBool
}

func (e *PrimaryExpr) Pos() token.Pos { return e.TokPos }
func (e *PrimaryExpr) exprNode()      {}

// FnCallExpr is "[@]IDENT ( args )". IsStdlib is true when the call was
// written with the "@" prefix, bypassing both the symbol table lookup and
// the parameter-count check at parse time (§4.7).
type FnCallExpr struct {
	TokPos   token.Pos
	Name     string
	Args     []Expr
	IsStdlib bool
}

func (e *FnCallExpr) Pos() token.Pos { return e.TokPos }
func (e *FnCallExpr) exprNode()      {}

// VarAssignExpr is "name = rhs" where name is a plain identifier (not an
// array element; that case is ArrayMutExpr).
type VarAssignExpr struct {
	TokPos token.Pos
	Name   string
	Rhs    Expr
}

func (e *VarAssignExpr) Pos() token.Pos { return e.TokPos }
func (e *VarAssignExpr) exprNode()      {}

// TableItem is one "IDENT => expr" pair inside a table literal.
type TableItem struct {
	TokPos token.Pos
	Key    string
	Val    Expr
}

// ItemList is the bracketed "[[ ... ]]" sequence of TableItems that makes up
// a table literal's body.
type ItemList struct {
	TokPos token.Pos
	Items  []*TableItem
}

func (l *ItemList) Pos() token.Pos { return l.TokPos }

// Table is a named table declaration's initializer: "var NAME = [[ items ]]".
type Table struct {
	TokPos token.Pos
	Name   string
	Items  *ItemList
}

func (t *Table) Pos() token.Pos { return t.TokPos }
func (t *Table) exprNode()      {}

// TableAccess is "name.field" field access. The field name bypasses symbol
// table resolution entirely, per §4.7.
type TableAccess struct {
	TokPos token.Pos
	Name   string
	Field  string
}

func (a *TableAccess) Pos() token.Pos { return a.TokPos }
func (a *TableAccess) exprNode()      {}

// ArrayItems is the bracketed "[ expr, expr, ... ]" sequence that makes up an
// array literal's body.
type ArrayItems struct {
	TokPos token.Pos
	Items  []Expr
}

func (a *ArrayItems) Pos() token.Pos { return a.TokPos }

// Array is a named array declaration's initializer: "var NAME = [ items ]".
type Array struct {
	TokPos token.Pos
	Name   string
	Body   *ArrayItems
	Len    int
}

func (a *Array) Pos() token.Pos { return a.TokPos }
func (a *Array) exprNode()      {}

// ArrayAccess is "name[index]" used as an rvalue.
type ArrayAccess struct {
	TokPos token.Pos
	Name   string
	Index  Expr
}

func (a *ArrayAccess) Pos() token.Pos { return a.TokPos }
func (a *ArrayAccess) exprNode()      {}

// ArrayMutExpr is "name[index] = rhs", an array element assignment. It
// lowers to UpdArr rather than StoreR, per §4.1's expression-lowering rule.
type ArrayMutExpr struct {
	TokPos token.Pos
	Name   string
	Index  Expr
	Rhs    Expr
}

func (a *ArrayMutExpr) Pos() token.Pos { return a.TokPos }
func (a *ArrayMutExpr) exprNode()      {}
