// Package lower lowers a parsed AST (lang/ast) to sif's labeled register
// bytecode (lang/ir), per spec.md §4.1: a register allocator that never
// reuses a register within the function currently being lowered, a label
// model where consecutive same-label instructions form one basic block, and
// a forward-jump fix-up protocol for labels that aren't known yet when a
// jump is emitted.
package lower

import (
	"fmt"

	"github.com/mna/sif/lang/ast"
	"github.com/mna/sif/lang/ir"
	"github.com/mna/sif/lang/token"
)

// Lowerer holds the mutable state of one lowering pass. Register allocation
// (reg) is local to whatever section is currently being lowered (a function
// body or the top-level code section) and resets to 0 at the start of each,
// per SPEC_FULL.md's register-windowing resolution: since a function's body
// is the same instructions on every call, including recursive ones, giving
// each call frame its own register window at runtime (see lang/vm) requires
// the lowerer to report, on the Fn instruction, how large that window needs
// to be. Label allocation (label), by contrast, is shared across the whole
// program: spec.md's monotonic-label invariant is a property of the final
// decls-then-code instruction stream, and decls are always lowered before
// code (see Lower), so a single counter threaded through both naturally
// satisfies it.
type Lowerer struct {
	label uint32
	cur   uint32

	reg int
	buf []ir.Instruction

	tableNames map[string]bool
}

// Lower lowers prog to a complete ir.Program: function declarations become
// Decls (Fn header followed by body), everything else in program order
// becomes Code.
func Lower(prog *ast.Program) (*ir.Program, error) {
	lw := &Lowerer{tableNames: map[string]bool{}}

	out := &ir.Program{}
	for _, d := range prog.Decls {
		fn, ok := d.(*ast.FnDecl)
		if !ok {
			continue
		}
		hdr, body, err := lw.lowerFn(fn)
		if err != nil {
			return nil, err
		}
		out.Decls = append(out.Decls, hdr)
		out.Decls = append(out.Decls, body...)
	}

	lw.reg, lw.buf = 0, nil
	lw.cur = lw.newlbl()
	for _, d := range prog.Decls {
		if _, ok := d.(*ast.FnDecl); ok {
			continue
		}
		if err := lw.lowerDecl(d); err != nil {
			return nil, err
		}
	}
	lw.emit(ir.Instruction{Op: ir.OpStop}, prog.Pos())
	out.Code = lw.buf
	out.CodeRegCount = lw.reg
	out.CodeStart = len(out.Decls)
	out.RecomputeTables()
	return out, nil
}

func (lw *Lowerer) newlbl() uint32 {
	l := lw.label
	lw.label++
	return l
}

func (lw *Lowerer) nextreg() int {
	r := lw.reg
	lw.reg++
	return r
}

func (lw *Lowerer) emit(in ir.Instruction, pos token.Pos) int {
	in.Label = lw.cur
	line, _ := pos.LineCol()
	in.Line = uint32(line)
	lw.buf = append(lw.buf, in)
	return len(lw.buf) - 1
}

func (lw *Lowerer) patch(idx int, lbl uint32) {
	lw.buf[idx].Lbl = lbl
}

// lowerFn lowers one function declaration's body in its own register space,
// starting register and label-carrying state fresh but continuing the
// shared label counter, and returns the Fn header instruction separately
// from the body so the caller can report the header's final RegCount.
func (lw *Lowerer) lowerFn(fn *ast.FnDecl) (ir.Instruction, []ir.Instruction, error) {
	savedReg, savedBuf, savedCur := lw.reg, lw.buf, lw.cur
	lw.reg, lw.buf = 0, nil
	lw.cur = lw.newlbl()

	hdrLine, _ := fn.TokPos.LineCol()
	hdrLabel := lw.cur

	// The caller pushed arguments left-to-right (FnStackPush per spec.md
	// §4.1's call-lowering rule), so the last argument pushed is the first
	// one the shared data stack yields back: pop parameters in reverse
	// order to rebind them under their declared names in argument order.
	names := fn.Params.Names
	for i := len(names) - 1; i >= 0; i-- {
		r := lw.nextreg()
		lw.emit(ir.Instruction{Op: ir.OpFnStackPop, D: r}, fn.TokPos)
		lw.emit(ir.Instruction{Op: ir.OpStoreR, Name: names[i], S: r, Decl: true}, fn.TokPos)
	}

	if err := lw.lowerBlock(fn.Body); err != nil {
		return ir.Instruction{}, nil, err
	}
	if n := len(lw.buf); n == 0 || lw.buf[n-1].Op != ir.OpFnRet {
		lw.emit(ir.Instruction{Op: ir.OpFnRet}, fn.TokPos)
	}

	body := lw.buf
	regCount := lw.reg
	lw.reg, lw.buf, lw.cur = savedReg, savedBuf, savedCur

	hdr := ir.Instruction{
		Op:       ir.OpFn,
		Label:    hdrLabel,
		Line:     uint32(hdrLine),
		Name:     fn.Name,
		Params:   append([]string(nil), fn.Params.Names...),
		RegCount: regCount,
	}
	return hdr, body, nil
}

func (lw *Lowerer) lowerBlock(b *ast.Block) error {
	for _, d := range b.Decls {
		if err := lw.lowerDecl(d); err != nil {
			return err
		}
	}
	return nil
}

func (lw *Lowerer) lowerDecl(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.VarDecl:
		return lw.lowerVarDecl(n)
	case *ast.IfStmt:
		return lw.lowerIfStmt(n)
	case *ast.ForStmt:
		return lw.lowerForStmt(n)
	case *ast.ReturnStmt:
		return lw.lowerReturnStmt(n)
	case *ast.ExprStmt:
		_, err := lw.lowerExpr(n.X)
		return err
	case *ast.Block:
		return lw.lowerBlock(n)
	default:
		return &ir.CompileError{Kind: ir.InvalidASTShape, Pos: d.Pos(), Msg: fmt.Sprintf("unexpected declaration node %T reached lowering", d)}
	}
}

func (lw *Lowerer) lowerVarDecl(d *ast.VarDecl) error {
	switch rhs := d.Rhs.(type) {
	case nil:
		lw.emit(ir.Instruction{Op: ir.OpStoreC, Name: d.Name, Val: ir.Null, Decl: true}, d.TokPos)
		return nil
	case *ast.Array:
		return lw.lowerArrayDecl(d.Name, rhs)
	case *ast.Table:
		lw.tableNames[d.Name] = true
		return lw.lowerTableDecl(d.Name, rhs)
	case *ast.PrimaryExpr:
		if rhs.Kind == ast.PrimaryIdent {
			lw.emit(ir.Instruction{Op: ir.OpStoreN, Name: rhs.Name, Name2: d.Name, Decl: true}, d.TokPos)
			return nil
		}
		r, err := lw.lowerExpr(rhs)
		if err != nil {
			return err
		}
		lw.emit(ir.Instruction{Op: ir.OpStoreR, Name: d.Name, S: r, Decl: true}, d.TokPos)
		return nil
	default:
		r, err := lw.lowerExpr(rhs)
		if err != nil {
			return err
		}
		lw.emit(ir.Instruction{Op: ir.OpStoreR, Name: d.Name, S: r, Decl: true}, d.TokPos)
		return nil
	}
}

// lowerArrayDecl materializes an array of Null placeholders at its declared
// length, then fills each element in source order via UpdArr: element
// initializers are arbitrary expressions, not necessarily constants, so they
// can't all be folded into the initial LoadC/StoreC literal.
func (lw *Lowerer) lowerArrayDecl(name string, arr *ast.Array) error {
	n := len(arr.Body.Items)
	vals := make([]ir.Value, n)
	for i := range vals {
		vals[i] = ir.Null
	}
	lw.emit(ir.Instruction{Op: ir.OpStoreC, Name: name, Val: ir.ArrayVal(ir.NewArray(vals)), Decl: true}, arr.TokPos)
	for i, item := range arr.Body.Items {
		r, err := lw.lowerExpr(item)
		if err != nil {
			return err
		}
		idxReg := lw.nextreg()
		lw.emit(ir.Instruction{Op: ir.OpLoadC, D: idxReg, Val: ir.Number(float64(i))}, item.Pos())
		lw.emit(ir.Instruction{Op: ir.OpUpdArr, Name: name, S1: idxReg, S: r}, item.Pos())
	}
	return nil
}

func (lw *Lowerer) lowerTableDecl(name string, tbl *ast.Table) error {
	lw.emit(ir.Instruction{Op: ir.OpStoreC, Name: name, Val: ir.TableVal(ir.NewTable(len(tbl.Items.Items))), Decl: true}, tbl.TokPos)
	for _, item := range tbl.Items.Items {
		r, err := lw.lowerExpr(item.Val)
		if err != nil {
			return err
		}
		lw.emit(ir.Instruction{Op: ir.OpTblI, Name: name, Key: item.Key, S: r}, item.TokPos)
	}
	return nil
}

func (lw *Lowerer) lowerReturnStmt(s *ast.ReturnStmt) error {
	if s.Expr != nil {
		r, err := lw.lowerExpr(s.Expr)
		if err != nil {
			return err
		}
		lw.emit(ir.Instruction{Op: ir.OpFnStackPush, S: r}, s.TokPos)
	}
	lw.emit(ir.Instruction{Op: ir.OpFnRet}, s.TokPos)
	return nil
}

// lowerIfStmt lowers "if cond then {elif cond then} [else]" per spec.md
// §4.1's join-target rule: each condition's false-branch target is the next
// arm (or, for the last arm, the join point after the whole statement); each
// non-last arm ends with an unconditional jump to the join point so control
// never falls through into a sibling arm.
func (lw *Lowerer) lowerIfStmt(s *ast.IfStmt) error {
	var joinPatches []int

	if err := lw.lowerIfArm(s.Cond, s.Then, len(s.Elifs) > 0 || s.Else != nil, &joinPatches); err != nil {
		return err
	}
	for i, el := range s.Elifs {
		more := i < len(s.Elifs)-1 || s.Else != nil
		if err := lw.lowerIfArm(el.Cond, el.Then, more, &joinPatches); err != nil {
			return err
		}
	}
	if s.Else != nil {
		if err := lw.lowerBlock(s.Else); err != nil {
			return err
		}
	}

	if len(joinPatches) > 0 {
		join := lw.cur
		if s.Else != nil {
			join = lw.newlbl()
			lw.cur = join
		}
		for _, idx := range joinPatches {
			lw.patch(idx, join)
		}
	}
	return nil
}

func (lw *Lowerer) lowerIfArm(cond ast.Expr, then *ast.Block, hasMore bool, joinPatches *[]int) error {
	condReg, err := lw.lowerExpr(cond)
	if err != nil {
		return err
	}
	jcIdx := lw.emit(ir.Instruction{Op: ir.OpJumpCnd, JumpKind: ir.Jmpf, S: condReg, Lbl: ir.MaxLabel}, cond.Pos())

	lw.cur = lw.newlbl()
	if err := lw.lowerBlock(then); err != nil {
		return err
	}
	if hasMore {
		jaIdx := lw.emit(ir.Instruction{Op: ir.OpJumpA, Lbl: ir.MaxLabel}, then.Pos())
		*joinPatches = append(*joinPatches, jaIdx)
	}

	next := lw.newlbl()
	lw.cur = next
	lw.patch(jcIdx, next)
	return nil
}

// lowerForStmt lowers "for i, v in iter block" over an array named by iter,
// exactly per spec.md §4.1's instruction sequence: a test-at-bottom
// (do-while shaped) loop that reads the index back out of the heap via
// LoadN at the top of every iteration rather than keeping it live in one
// register across iterations, and writes the incremented index back to the
// heap before testing it — which is why the index variable's final heap
// value is the array length, not length-1, once the loop exits (spec.md §8
// scenario 3). Since the backward jump's target (the header) is already
// known when it is emitted, this needs none of the forward-jump fix-up
// protocol if/elif/else requires.
//
// Iterating a table is rejected here, not at parse time, because whether a
// name is array- or table-valued is a lowering-time fact (the symbol table
// alone doesn't carry it): resolving Open Question 5.
func (lw *Lowerer) lowerForStmt(s *ast.ForStmt) error {
	iterName, ok := iterArrayName(s.Iter)
	if !ok {
		return &ir.CompileError{Kind: ir.InvalidASTShape, Pos: s.Iter.Pos(), Msg: "for-loop source must be an array identifier"}
	}
	if lw.tableNames[iterName] {
		return &ir.CompileError{Kind: ir.ForOverTable, Pos: s.TokPos, Msg: fmt.Sprintf("cannot iterate table %q with a for loop", iterName)}
	}

	lw.emit(ir.Instruction{Op: ir.OpStoreC, Name: s.Vars.Index, Val: ir.Number(0), Decl: true}, s.TokPos)
	sizeReg := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpLoadArrs, Name: iterName, D: sizeReg}, s.TokPos)

	head := lw.newlbl()
	lw.cur = head

	idxReg := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpLoadN, Name: s.Vars.Index, D: idxReg}, s.TokPos)
	valReg := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpLoadArrv, Name: iterName, S1: idxReg, D: valReg}, s.TokPos)
	lw.emit(ir.Instruction{Op: ir.OpStoreR, Name: s.Vars.Val, S: valReg, Decl: true}, s.TokPos)

	if err := lw.lowerBlock(s.Body); err != nil {
		return err
	}

	lw.emit(ir.Instruction{Op: ir.OpIncrr, S: idxReg}, s.TokPos)
	lw.emit(ir.Instruction{Op: ir.OpStoreR, Name: s.Vars.Index, S: idxReg, Decl: true}, s.TokPos)
	cmpReg := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpBinary, BinOp: ir.BinLt, S1: idxReg, S2: sizeReg, D: cmpReg}, s.TokPos)
	lw.emit(ir.Instruction{Op: ir.OpJumpCnd, JumpKind: ir.Jmpt, S: cmpReg, Lbl: head}, s.TokPos)

	tail := lw.newlbl()
	lw.cur = tail
	return nil
}

// iterArrayName extracts the array identifier named by a for-loop header's
// "in" clause, the only form the grammar allows there (spec.md §6).
func iterArrayName(e ast.Expr) (string, bool) {
	p, ok := e.(*ast.PrimaryExpr)
	if !ok || p.Kind != ast.PrimaryIdent {
		return "", false
	}
	return p.Name, true
}

func (lw *Lowerer) lowerExpr(e ast.Expr) (int, error) {
	switch n := e.(type) {
	case *ast.BinaryExpr:
		return lw.lowerBinary(n)
	case *ast.UnaryExpr:
		return lw.lowerUnary(n)
	case *ast.PrimaryExpr:
		return lw.lowerPrimary(n)
	case *ast.FnCallExpr:
		return lw.lowerCall(n)
	case *ast.VarAssignExpr:
		return lw.lowerVarAssign(n)
	case *ast.ArrayMutExpr:
		return lw.lowerArrayMut(n)
	case *ast.ArrayAccess:
		return lw.lowerArrayAccess(n)
	case *ast.TableAccess:
		return lw.lowerTableAccess(n)
	default:
		return 0, &ir.CompileError{Kind: ir.InvalidASTShape, Pos: e.Pos(), Msg: fmt.Sprintf("unexpected expression node %T reached lowering", e)}
	}
}

var binOpFromToken = map[token.Token]ir.BinOp{
	token.PLUS:    ir.BinAdd,
	token.MINUS:   ir.BinSub,
	token.STAR:    ir.BinMul,
	token.SLASH:   ir.BinDiv,
	token.PERCENT: ir.BinMod,
	token.EQ:      ir.BinEq,
	token.NEQ:     ir.BinNeq,
	token.LT:      ir.BinLt,
	token.LE:      ir.BinLe,
	token.GT:      ir.BinGt,
	token.GE:      ir.BinGe,
	token.AND:     ir.BinAnd,
	token.OR:      ir.BinOr,
}

func (lw *Lowerer) lowerBinary(n *ast.BinaryExpr) (int, error) {
	l, err := lw.lowerExpr(n.Lhs)
	if err != nil {
		return 0, err
	}
	r, err := lw.lowerExpr(n.Rhs)
	if err != nil {
		return 0, err
	}
	op, ok := binOpFromToken[n.Op]
	if !ok {
		return 0, &ir.CompileError{Kind: ir.InvalidASTShape, Pos: n.TokPos, Msg: fmt.Sprintf("unsupported binary operator %s", n.Op.GoString())}
	}
	d := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpBinary, BinOp: op, S1: l, S2: r, D: d}, n.TokPos)
	return d, nil
}

func (lw *Lowerer) lowerUnary(n *ast.UnaryExpr) (int, error) {
	s, err := lw.lowerExpr(n.Operand)
	if err != nil {
		return 0, err
	}
	var op ir.UnOp
	switch n.Op {
	case token.MINUS:
		op = ir.UnNeg
	case token.NOT:
		op = ir.UnNot
	default:
		return 0, &ir.CompileError{Kind: ir.InvalidASTShape, Pos: n.TokPos, Msg: fmt.Sprintf("unsupported unary operator %s", n.Op.GoString())}
	}
	d := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpUnary, UnOp: op, S1: s, D: d}, n.TokPos)
	return d, nil
}

func (lw *Lowerer) lowerPrimary(n *ast.PrimaryExpr) (int, error) {
	d := lw.nextreg()
	switch n.Kind {
	case ast.PrimaryIdent:
		lw.emit(ir.Instruction{Op: ir.OpLoadN, Name: n.Name, D: d}, n.TokPos)
	case ast.PrimaryNumber:
		lw.emit(ir.Instruction{Op: ir.OpLoadC, Val: ir.Number(n.NumVal), D: d}, n.TokPos)
	case ast.PrimaryString:
		lw.emit(ir.Instruction{Op: ir.OpLoadC, Val: ir.String(n.StrVal), D: d}, n.TokPos)
	case ast.PrimaryBool:
		lw.emit(ir.Instruction{Op: ir.OpLoadC, Val: ir.Bool(n.BoolVal), D: d}, n.TokPos)
	case ast.PrimaryNull:
		lw.emit(ir.Instruction{Op: ir.OpLoadC, Val: ir.Null, D: d}, n.TokPos)
	default:
		return 0, &ir.CompileError{Kind: ir.InvalidASTShape, Pos: n.TokPos, Msg: "unknown primary expression kind"}
	}
	return d, nil
}

// lowerCall lowers a user-defined or stdlib call: each argument is pushed in
// order via FnStackPush, then Call/StdCall runs the body.
//
// Per spec.md §4.7, a stdlib ("@"-prefixed) call bypasses both the symbol
// table and the parameter-count check, so it lowers to StdCall regardless of
// whether "print" is a known name. Per spec.md §4.3, StdCall pops its
// arguments and pushes no return value, unlike Call/FnRet's paired
// push/pop — so a stdlib call expression's value is synthesized as a Null
// constant rather than retrieved from the data stack.
func (lw *Lowerer) lowerCall(n *ast.FnCallExpr) (int, error) {
	for _, a := range n.Args {
		r, err := lw.lowerExpr(a)
		if err != nil {
			return 0, err
		}
		lw.emit(ir.Instruction{Op: ir.OpFnStackPush, S: r}, a.Pos())
	}
	if n.IsStdlib {
		lw.emit(ir.Instruction{Op: ir.OpStdCall, Name: n.Name, NArgs: len(n.Args)}, n.TokPos)
		d := lw.nextreg()
		lw.emit(ir.Instruction{Op: ir.OpLoadC, Val: ir.Null, D: d}, n.TokPos)
		return d, nil
	}
	lw.emit(ir.Instruction{Op: ir.OpCall, Name: n.Name, NArgs: len(n.Args)}, n.TokPos)
	d := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpFnStackPop, D: d}, n.TokPos)
	return d, nil
}

// lowerVarAssign lowers "name = rhs". When rhs is itself a bare identifier,
// it emits StoreN (a direct heap-to-heap copy) instead of loading into a
// register and storing back out, skipping a pointless register round trip.
func (lw *Lowerer) lowerVarAssign(n *ast.VarAssignExpr) (int, error) {
	if p, ok := n.Rhs.(*ast.PrimaryExpr); ok && p.Kind == ast.PrimaryIdent {
		lw.emit(ir.Instruction{Op: ir.OpStoreN, Name: p.Name, Name2: n.Name}, n.TokPos)
		d := lw.nextreg()
		lw.emit(ir.Instruction{Op: ir.OpLoadN, Name: n.Name, D: d}, n.TokPos)
		return d, nil
	}
	r, err := lw.lowerExpr(n.Rhs)
	if err != nil {
		return 0, err
	}
	lw.emit(ir.Instruction{Op: ir.OpStoreR, Name: n.Name, S: r}, n.TokPos)
	return r, nil
}

func (lw *Lowerer) lowerArrayMut(n *ast.ArrayMutExpr) (int, error) {
	idxReg, err := lw.lowerExpr(n.Index)
	if err != nil {
		return 0, err
	}
	r, err := lw.lowerExpr(n.Rhs)
	if err != nil {
		return 0, err
	}
	lw.emit(ir.Instruction{Op: ir.OpUpdArr, Name: n.Name, S1: idxReg, S: r}, n.TokPos)
	return r, nil
}

func (lw *Lowerer) lowerArrayAccess(n *ast.ArrayAccess) (int, error) {
	idxReg, err := lw.lowerExpr(n.Index)
	if err != nil {
		return 0, err
	}
	d := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpLoadArrv, Name: n.Name, S1: idxReg, D: d}, n.TokPos)
	return d, nil
}

func (lw *Lowerer) lowerTableAccess(n *ast.TableAccess) (int, error) {
	d := lw.nextreg()
	lw.emit(ir.Instruction{Op: ir.OpTblG, Name: n.Name, Key: n.Field, D: d}, n.TokPos)
	return d, nil
}
