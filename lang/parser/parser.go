// Package parser implements sif's LL, top-down, recursive-descent parser
// (spec.md §4.7, §6). Structurally it follows the teacher's lang/parser
// precedence-climbing design and its error-recovery-to-next-statement idiom,
// adapted to sif's grammar and to an inline symbol table consulted during
// parsing (rather than a separate resolver pass).
package parser

import (
	"github.com/mna/sif/lang/ast"
	"github.com/mna/sif/lang/lexer"
	"github.com/mna/sif/lang/symtab"
	"github.com/mna/sif/lang/token"
)

// Parser holds the state of a single parse over one source buffer.
type Parser struct {
	lex      *lexer.Lexer
	cur      lexer.TokenAndValue
	syms     symtab.Scopes
	errs     ErrorList
	fatalErr *Error
}

// Parse tokenizes and parses src, returning the resulting AST (possibly
// partial, on continuable errors) and the accumulated error list as an
// error (nil if parsing was clean). A fatal error (TknMismatch or
// FnParmCntExceeded) stops parsing immediately; the returned Program holds
// the top-level decls completed before that point, plus the decl in which
// the error occurred if its parse still returned a node.
func Parse(src []byte) (*ast.Program, error) {
	p := &Parser{lex: lexer.New(src)}
	p.syms.Init()
	p.advance()

	prog := &ast.Program{}
	for p.cur.Tok != token.EOF && p.fatalErr == nil {
		d := p.decl()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		}
	}

	for _, le := range p.lex.Errors() {
		p.errs = append(p.errs, &Error{Kind: InvalidToken, Pos: le.Pos, Msg: le.Msg})
	}
	p.errs.Sort()

	if p.fatalErr != nil {
		return prog, p.fatalErr
	}
	if len(p.errs) > 0 {
		return prog, p.errs
	}
	return prog, nil
}

func (p *Parser) advance() {
	p.cur = p.lex.Next()
}

func (p *Parser) pos() token.Pos { return p.cur.Pos }

func (p *Parser) errorf(kind ErrKind, pos token.Pos, msg string) {
	e := &Error{Kind: kind, Pos: pos, Msg: msg}
	if kind.Fatal() {
		p.fatalErr = e
		return
	}
	p.errs = append(p.errs, e)
}

// expect consumes the current token if it matches tok, else records a
// TknMismatch (fatal) error and returns false.
func (p *Parser) expect(tok token.Token) bool {
	if p.cur.Tok != tok {
		p.errorf(TknMismatch, p.pos(), "expected "+tok.GoString()+", found "+p.cur.Tok.GoString())
		return false
	}
	p.advance()
	return true
}

// expectIdent consumes an IDENT token and returns its name, or records an
// ExpectedIdent error (continuable) and returns "".
func (p *Parser) expectIdent() (string, token.Pos, bool) {
	if p.cur.Tok != token.IDENT {
		p.errorf(ExpectedIdent, p.pos(), "expected identifier, found "+p.cur.Tok.GoString())
		return "", p.pos(), false
	}
	name, pos := p.cur.Str, p.pos()
	p.advance()
	return name, pos, true
}

// recover skips tokens until a plausible statement boundary (after a SEMI,
// or at a RBRACE/EOF), so that a continuable error does not cascade.
func (p *Parser) recover() {
	for p.cur.Tok != token.EOF && p.cur.Tok != token.RBRACE {
		if p.cur.Tok == token.SEMI {
			p.advance()
			return
		}
		p.advance()
	}
}

// decl parses "decl := vardecl | fndecl | stmt".
func (p *Parser) decl() ast.Decl {
	switch p.cur.Tok {
	case token.VAR:
		return p.varDecl()
	case token.FN:
		return p.fnDecl()
	default:
		return p.stmt()
	}
}

// varDecl parses "var IDENT [ = (expr|arraydecl|tabledecl) ] ;". It defines
// the name in the current scope before parsing the rhs, per spec.md §3's
// placeholder-insertion invariant (this lets later statements reference var
// even when its own init expression error-recovers).
func (p *Parser) varDecl() ast.Decl {
	startPos := p.pos()
	if !p.expect(token.VAR) {
		return nil
	}
	name, namePos, ok := p.expectIdent()
	if !ok {
		p.recover()
		return nil
	}

	decl := &ast.VarDecl{TokPos: startPos, Name: name, IsGlobal: p.syms.Depth() == 0}
	p.syms.Define(name, decl)

	if p.cur.Tok == token.ASSIGN {
		p.advance()
		decl.Rhs = p.varInitializer(name, namePos)
	}

	p.expect(token.SEMI)
	return decl
}

// varInitializer parses the rhs of a var declaration: a table literal, an
// array literal, or a general expression.
func (p *Parser) varInitializer(name string, namePos token.Pos) ast.Expr {
	switch p.cur.Tok {
	case token.LLBRACK:
		return p.tableLiteral(name)
	case token.LBRACK:
		return p.arrayLiteral(name)
	default:
		return p.expr()
	}
}

// fnDecl parses "fn IDENT ( [IDENT {,IDENT}] ) block". The name is defined
// in the enclosing scope before the body is parsed, enabling recursion
// (spec.md §3, §4.7).
func (p *Parser) fnDecl() ast.Decl {
	startPos := p.pos()
	if !p.expect(token.FN) {
		return nil
	}
	name, _, ok := p.expectIdent()
	if !ok {
		p.recover()
		return nil
	}

	decl := &ast.FnDecl{TokPos: startPos, Name: name}
	p.syms.Define(name, decl)

	paramsPos := p.pos()
	if !p.expect(token.LPAREN) {
		return decl
	}
	var names []string
	for p.cur.Tok != token.RPAREN && p.cur.Tok != token.EOF {
		if len(names) >= maxParams {
			p.errorf(FnParmCntExceeded, p.pos(), "function parameter count exceeded")
			return decl
		}
		n, _, ok := p.expectIdent()
		if !ok {
			break
		}
		names = append(names, n)
		if p.cur.Tok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	decl.Params = &ast.FnParams{TokPos: paramsPos, Names: names}

	decl.Scope = p.syms.OpenScope()
	for _, n := range names {
		p.syms.Define(n, decl.Params)
	}
	decl.Body = p.block()
	p.syms.CloseScope()

	ensureTrailingReturn(decl.Body, startPos)
	return decl
}

// maxParams bounds the function parameter list; exceeding it is a fatal
// FnParmCntExceeded error per spec.md §7.
const maxParams = 255

// ensureTrailingReturn appends an empty ReturnStmt to body if it does not
// already end with one, per spec.md §4.1 ("a function body always ends with
// a ReturnStmt — the parser inserts an empty one if missing").
func ensureTrailingReturn(body *ast.Block, pos token.Pos) {
	if body == nil {
		return
	}
	if len(body.Decls) > 0 {
		if _, ok := body.Decls[len(body.Decls)-1].(*ast.ReturnStmt); ok {
			return
		}
	}
	body.Decls = append(body.Decls, &ast.ReturnStmt{TokPos: pos})
}

// block parses "{ { decl } }" in the current scope; it opens no scope of its
// own. Callers that need one open it around the call: scopedBlock, fnDecl
// (which also binds the parameters there) and forStmt.
func (p *Parser) block() *ast.Block {
	startPos := p.pos()
	level := p.syms.Depth()
	if !p.expect(token.LBRACE) {
		return &ast.Block{TokPos: startPos, ScopeLevel: level}
	}
	b := &ast.Block{TokPos: startPos, ScopeLevel: level}
	for p.cur.Tok != token.RBRACE && p.cur.Tok != token.EOF {
		d := p.decl()
		if d != nil {
			b.Decls = append(b.Decls, d)
		}
	}
	p.expect(token.RBRACE)
	return b
}

// scopedBlock opens a fresh scope around block parsing, for if/elif/else
// bodies and bare blocks (which, unlike fn and for bodies, do not need to
// pre-bind anything into the new scope).
func (p *Parser) scopedBlock() *ast.Block {
	p.syms.OpenScope()
	b := p.block()
	p.syms.CloseScope()
	return b
}
