package parser

import (
	"github.com/mna/sif/lang/ast"
	"github.com/mna/sif/lang/token"
)

// expr parses a full expression at the lowest (assignment) precedence, per
// the precedence chain in spec.md §6:
//
//	= < || < && < ==,!= < <,>,<=,>= < +,- < *,/ < % < unary < call < primary
func (p *Parser) expr() ast.Expr {
	return p.assignment()
}

func (p *Parser) assignment() ast.Expr {
	left := p.or()
	if p.cur.Tok != token.ASSIGN {
		return left
	}
	pos := p.pos()
	p.advance()
	rhs := p.assignment()

	switch t := left.(type) {
	case *ast.PrimaryExpr:
		if t.Kind == ast.PrimaryIdent {
			return &ast.VarAssignExpr{TokPos: pos, Name: t.Name, Rhs: rhs}
		}
	case *ast.ArrayAccess:
		return &ast.ArrayMutExpr{TokPos: pos, Name: t.Name, Index: t.Index, Rhs: rhs}
	}
	p.errorf(InvalidAssignTarget, pos, "invalid assignment target")
	return left
}

func (p *Parser) or() ast.Expr {
	left := p.and()
	for p.cur.Tok == token.OR {
		pos := p.pos()
		p.advance()
		right := p.and()
		left = &ast.BinaryExpr{TokPos: pos, Op: token.OR, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) and() ast.Expr {
	left := p.equality()
	for p.cur.Tok == token.AND {
		pos := p.pos()
		p.advance()
		right := p.equality()
		left = &ast.BinaryExpr{TokPos: pos, Op: token.AND, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) equality() ast.Expr {
	left := p.relational()
	for p.cur.Tok == token.EQ || p.cur.Tok == token.NEQ {
		op, pos := p.cur.Tok, p.pos()
		p.advance()
		right := p.relational()
		left = &ast.BinaryExpr{TokPos: pos, Op: op, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) relational() ast.Expr {
	left := p.additive()
	for p.cur.Tok == token.LT || p.cur.Tok == token.GT || p.cur.Tok == token.LE || p.cur.Tok == token.GE {
		op, pos := p.cur.Tok, p.pos()
		p.advance()
		right := p.additive()
		left = &ast.BinaryExpr{TokPos: pos, Op: op, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) additive() ast.Expr {
	left := p.multiplicative()
	for p.cur.Tok == token.PLUS || p.cur.Tok == token.MINUS {
		op, pos := p.cur.Tok, p.pos()
		p.advance()
		right := p.multiplicative()
		left = &ast.BinaryExpr{TokPos: pos, Op: op, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) multiplicative() ast.Expr {
	left := p.modulo()
	for p.cur.Tok == token.STAR || p.cur.Tok == token.SLASH {
		op, pos := p.cur.Tok, p.pos()
		p.advance()
		right := p.modulo()
		left = &ast.BinaryExpr{TokPos: pos, Op: op, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) modulo() ast.Expr {
	left := p.unary()
	for p.cur.Tok == token.PERCENT {
		pos := p.pos()
		p.advance()
		right := p.unary()
		left = &ast.BinaryExpr{TokPos: pos, Op: token.PERCENT, Lhs: left, Rhs: right}
	}
	return left
}

func (p *Parser) unary() ast.Expr {
	if p.cur.Tok == token.MINUS || p.cur.Tok == token.NOT {
		op, pos := p.cur.Tok, p.pos()
		p.advance()
		operand := p.unary()
		return &ast.UnaryExpr{TokPos: pos, Op: op, Operand: operand}
	}
	return p.callOrPrimary()
}

// callOrPrimary parses "call := ['@'] IDENT '(' [expr {,expr}] ')'" or falls
// through to a plain primary (identifier reference, array/table access, or
// literal).
func (p *Parser) callOrPrimary() ast.Expr {
	if p.cur.Tok == token.AT {
		pos := p.pos()
		p.advance()
		name, _, ok := p.expectIdent()
		if !ok {
			return &ast.Null{TokPos: pos}
		}
		args := p.callArgs()
		return &ast.FnCallExpr{TokPos: pos, Name: name, Args: args, IsStdlib: true}
	}
	return p.primary()
}

func (p *Parser) callArgs() []ast.Expr {
	p.expect(token.LPAREN)
	var args []ast.Expr
	for p.cur.Tok != token.RPAREN && p.cur.Tok != token.EOF {
		args = append(args, p.expr())
		if p.cur.Tok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RPAREN)
	return args
}

func (p *Parser) primary() ast.Expr {
	pos := p.pos()
	switch p.cur.Tok {
	case token.NUMBER:
		v := p.cur.Num
		p.advance()
		return &ast.PrimaryExpr{TokPos: pos, Kind: ast.PrimaryNumber, NumVal: v}
	case token.STRING:
		v := p.cur.Str
		p.advance()
		return &ast.PrimaryExpr{TokPos: pos, Kind: ast.PrimaryString, StrVal: v}
	case token.TRUE:
		p.advance()
		return &ast.PrimaryExpr{TokPos: pos, Kind: ast.PrimaryBool, BoolVal: true}
	case token.FALSE:
		p.advance()
		return &ast.PrimaryExpr{TokPos: pos, Kind: ast.PrimaryBool, BoolVal: false}
	case token.LPAREN:
		p.advance()
		x := p.expr()
		p.expect(token.RPAREN)
		return x
	case token.IDENT:
		return p.identOrAccess()
	default:
		p.errorf(InvalidToken, pos, "unexpected token "+p.cur.Tok.GoString()+" in expression")
		p.advance()
		return &ast.Null{TokPos: pos}
	}
}

// identOrAccess parses an identifier reference and any trailing call,
// array-index, or field-access suffix: "IDENT ( '(' args ')' | '[' expr ']'
// | '.' IDENT )?". Every bare identifier reference is checked against the
// symbol table except inside '.field' access, where the field name is not a
// symbol (spec.md §4.7).
func (p *Parser) identOrAccess() ast.Expr {
	name, pos, _ := p.expectIdent()
	node, ok := p.syms.Lookup(name)
	if !ok {
		p.errorf(UndeclSym, pos, "undeclared symbol: "+name)
	}

	switch p.cur.Tok {
	case token.LPAREN:
		args := p.callArgs()
		if fd, isFn := node.(*ast.FnDecl); isFn && fd.Params != nil && len(args) != len(fd.Params.Names) {
			p.errorf(FnParmCntWrong, pos, "wrong number of arguments in call to "+name)
		}
		return &ast.FnCallExpr{TokPos: pos, Name: name, Args: args}
	case token.LBRACK:
		p.advance()
		idx := p.expr()
		p.expect(token.RBRACK)
		return &ast.ArrayAccess{TokPos: pos, Name: name, Index: idx}
	case token.DOT:
		p.advance()
		field, _, ok := p.expectIdent()
		if !ok {
			return &ast.PrimaryExpr{TokPos: pos, Kind: ast.PrimaryIdent, Name: name}
		}
		return &ast.TableAccess{TokPos: pos, Name: name, Field: field}
	default:
		return &ast.PrimaryExpr{TokPos: pos, Kind: ast.PrimaryIdent, Name: name}
	}
}

func (p *Parser) tableLiteral(name string) ast.Expr {
	pos := p.pos()
	p.expect(token.LLBRACK)
	var items []*ast.TableItem
	for p.cur.Tok != token.RRBRACK && p.cur.Tok != token.EOF {
		key, keyPos, ok := p.expectIdent()
		if !ok {
			break
		}
		p.expect(token.ARROW)
		val := p.expr()
		items = append(items, &ast.TableItem{TokPos: keyPos, Key: key, Val: val})
		if p.cur.Tok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RRBRACK)
	return &ast.Table{TokPos: pos, Name: name, Items: &ast.ItemList{TokPos: pos, Items: items}}
}

func (p *Parser) arrayLiteral(name string) ast.Expr {
	pos := p.pos()
	p.expect(token.LBRACK)
	var items []ast.Expr
	for p.cur.Tok != token.RBRACK && p.cur.Tok != token.EOF {
		items = append(items, p.expr())
		if p.cur.Tok != token.COMMA {
			break
		}
		p.advance()
	}
	p.expect(token.RBRACK)
	return &ast.Array{TokPos: pos, Name: name, Body: &ast.ArrayItems{TokPos: pos, Items: items}, Len: len(items)}
}
