package parser

import (
	"github.com/mna/sif/lang/ast"
	"github.com/mna/sif/lang/token"
)

// stmt parses "stmt := ifstmt | forstmt | retstmt | block | expr ';'".
func (p *Parser) stmt() ast.Decl {
	switch p.cur.Tok {
	case token.IF:
		return p.ifStmt()
	case token.FOR:
		return p.forStmt()
	case token.RETURN:
		return p.returnStmt()
	case token.LBRACE:
		return p.scopedBlock()
	default:
		return p.exprStmt()
	}
}

// ifStmt parses "if expr block {elif expr block} [else block]".
func (p *Parser) ifStmt() ast.Decl {
	startPos := p.pos()
	p.advance() // 'if'
	cond := p.expr()
	then := p.scopedBlock()

	s := &ast.IfStmt{TokPos: startPos, Cond: cond, Then: then}
	for p.cur.Tok == token.ELIF {
		elifPos := p.pos()
		p.advance()
		econd := p.expr()
		ethen := p.scopedBlock()
		s.Elifs = append(s.Elifs, &ast.ElifStmt{TokPos: elifPos, Cond: econd, Then: ethen})
	}
	if p.cur.Tok == token.ELSE {
		p.advance()
		s.Else = p.scopedBlock()
	}
	if s.Cond == nil || s.Then == nil {
		p.errorf(InvalidIfStructure, startPos, "invalid if structure")
	}
	return s
}

// forStmt parses "for IDENT , IDENT in expr block".
func (p *Parser) forStmt() ast.Decl {
	startPos := p.pos()
	p.advance() // 'for'

	idxName, idxPos, ok1 := p.expectIdent()
	p.expect(token.COMMA)
	valName, _, ok2 := p.expectIdent()
	if !ok1 || !ok2 {
		p.errorf(InvalidForStructure, startPos, "invalid for structure")
		p.recover()
		return nil
	}
	p.expect(token.IN)
	iter := p.expr()

	p.syms.OpenScope()
	iterDecl := &ast.VarDecl{TokPos: idxPos, Name: idxName}
	valDecl := &ast.VarDecl{TokPos: idxPos, Name: valName}
	p.syms.Define(idxName, iterDecl)
	p.syms.Define(valName, valDecl)
	body := p.block()
	p.syms.CloseScope()

	return &ast.ForStmt{
		TokPos: startPos,
		Vars:   &ast.IdentPair{TokPos: idxPos, Index: idxName, Val: valName},
		Iter:   iter,
		Body:   body,
	}
}

// returnStmt parses "return [ expr ] ;".
func (p *Parser) returnStmt() ast.Decl {
	startPos := p.pos()
	p.advance() // 'return'
	s := &ast.ReturnStmt{TokPos: startPos}
	if p.cur.Tok != token.SEMI {
		s.Expr = p.expr()
	}
	p.expect(token.SEMI)
	return s
}

// exprStmt parses "expr ';'". Per spec.md §8 scenario 5, a statement whose
// expression referenced an undeclared symbol produces no AST node for that
// statement, only the accumulated error.
func (p *Parser) exprStmt() ast.Decl {
	startPos := p.pos()
	errsBefore := len(p.errs)
	x := p.expr()
	p.expect(token.SEMI)
	if x == nil || len(p.errs) > errsBefore {
		return nil
	}
	return &ast.ExprStmt{TokPos: startPos, X: x}
}
