// Package vm implements sif's register-based virtual machine (spec.md
// §4.6): the fetch-decode-execute loop, the call stack, the shared data
// stack used for argument and return-value marshalling, the name-keyed
// heap, and the dynamic data-register file. Grounded on spec.md §4.6 and on
// the teacher's lang/machine/machine.go for the big-switch dispatch loop
// idiom (a pc/sp pair, a steps/maxSteps runaway guard, defer-protected
// cleanup on the way out).
package vm

import (
	"fmt"
	"strings"

	"github.com/mna/sif/lang/ir"
)

// Run executes prog to completion (an OpStop instruction) or until a
// runtime error occurs. It resets all thread state on entry, so a Thread
// can be reused across multiple Run calls.
func (th *Thread) Run(prog *ir.Program) (err error) {
	th.init()

	code := prog.Combined()
	th.regTop = prog.CodeRegCount
	th.ensureRegs(th.regTop)

	// A panic from an out-of-range slice index would indicate a bug in the
	// lowerer or optimizer producing a malformed stream; surface it as a
	// RuntimeError rather than crashing the host process.
	defer func() {
		if r := recover(); r != nil {
			err = &RuntimeError{Kind: ErrInternal, Msg: fmt.Sprintf("panic: %v", r)}
		}
	}()

	pc := prog.CodeStart
	for {
		if th.MaxSteps > 0 {
			th.steps++
			if th.steps > th.MaxSteps {
				return &RuntimeError{Kind: ErrStepLimit, Msg: "exceeded max steps"}
			}
		}
		if pc < 0 || pc >= len(code) {
			return &RuntimeError{Kind: ErrInternal, Msg: "program counter escaped the instruction stream"}
		}

		in := code[pc]
		if th.Trace != nil {
			fmt.Fprintf(th.Trace, "%04d: %s\n", pc, in.String())
		}
		switch in.Op {
		case ir.OpNop:
			pc++

		case ir.OpStop:
			return nil

		case ir.OpFn:
			// A Fn header is only ever reached by Call jumping to fnIdx+1; the
			// header index itself should never be dispatched.
			return &RuntimeError{Kind: ErrInternal, Line: in.Line, Msg: "reached a function header during execution"}

		case ir.OpBinary:
			x, err := th.getReg(in.S1, in.Line)
			if err != nil {
				return err
			}
			y, err := th.getReg(in.S2, in.Line)
			if err != nil {
				return err
			}
			z, err := evalBinary(in.BinOp, x, y, in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, z)
			pc++

		case ir.OpUnary:
			x, err := th.getReg(in.S1, in.Line)
			if err != nil {
				return err
			}
			z, err := evalUnary(in.UnOp, x, in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, z)
			pc++

		case ir.OpLoadC:
			th.setReg(in.D, in.Val)
			pc++

		case ir.OpLoadN:
			v, err := th.getHeap(in.Name, in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, v)
			pc++

		case ir.OpMv:
			v, err := th.getReg(in.S, in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, v)
			pc++

		case ir.OpLoadArrs:
			arr, err := th.getArray(in.Name, in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, ir.Number(float64(arr.Len())))
			pc++

		case ir.OpLoadArrv:
			arr, err := th.getArray(in.Name, in.Line)
			if err != nil {
				return err
			}
			idx, err := th.getIndex(in.S1, arr.Len(), in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, arr.Get(idx))
			pc++

		case ir.OpUpdArr:
			arr, err := th.getArray(in.Name, in.Line)
			if err != nil {
				return err
			}
			idx, err := th.getIndex(in.S1, arr.Len(), in.Line)
			if err != nil {
				return err
			}
			v, err := th.getReg(in.S, in.Line)
			if err != nil {
				return err
			}
			arr.Set(idx, v)
			pc++

		case ir.OpStoreC:
			th.setHeap(in.Name, cloneLiteral(in.Val), in.Decl)
			pc++

		case ir.OpStoreN:
			v, err := th.getHeap(in.Name, in.Line)
			if err != nil {
				return err
			}
			th.setHeap(in.Name2, v, in.Decl)
			pc++

		case ir.OpStoreR:
			v, err := th.getReg(in.S, in.Line)
			if err != nil {
				return err
			}
			th.setHeap(in.Name, v, in.Decl)
			pc++

		case ir.OpJumpCnd:
			cond, err := th.getReg(in.S, in.Line)
			if err != nil {
				return err
			}
			take := (in.JumpKind == ir.Jmpt && cond.Truthy()) || (in.JumpKind == ir.Jmpf && !cond.Truthy())
			if take {
				target, ok := prog.JumpTab[in.Lbl]
				if !ok {
					return &RuntimeError{Kind: ErrInternal, Line: in.Line, Msg: fmt.Sprintf("unresolved jump target label %d", in.Lbl)}
				}
				pc = target
			} else {
				pc++
			}

		case ir.OpJumpA:
			target, ok := prog.JumpTab[in.Lbl]
			if !ok {
				return &RuntimeError{Kind: ErrInternal, Line: in.Line, Msg: fmt.Sprintf("unresolved jump target label %d", in.Lbl)}
			}
			pc = target

		case ir.OpIncrr:
			if err := th.bumpReg(in.S, 1, in.Line); err != nil {
				return err
			}
			pc++

		case ir.OpDecrr:
			if err := th.bumpReg(in.S, -1, in.Line); err != nil {
				return err
			}
			pc++

		case ir.OpCall:
			fnIdx, ok := prog.FnTab[in.Name]
			if !ok {
				return &RuntimeError{Kind: ErrInternal, Line: in.Line, Msg: fmt.Sprintf("call to undefined function %q", in.Name)}
			}
			hdr := code[fnIdx]
			newBase := th.regTop
			th.regTop += hdr.RegCount
			th.ensureRegs(th.regTop)
			th.callStack = append(th.callStack, callFrame{
				returnIP:   pc + 1,
				callerBase: th.curBase,
				calleeBase: newBase,
			})
			if depth := 1 + len(th.callStack); depth > th.PeakCallDepth {
				th.PeakCallDepth = depth
			}
			th.curBase = newBase
			pc = fnIdx + 1

		case ir.OpStdCall:
			if err := th.execStdCall(in); err != nil {
				return err
			}
			pc++

		case ir.OpFnRet:
			if len(th.callStack) == 0 {
				return nil
			}
			fr := th.callStack[len(th.callStack)-1]
			th.callStack = th.callStack[:len(th.callStack)-1]
			th.curBase = fr.callerBase
			th.regTop = fr.calleeBase
			pc = fr.returnIP

		case ir.OpFnStackPush:
			v, err := th.getReg(in.S, in.Line)
			if err != nil {
				return err
			}
			th.pushData(v)
			pc++

		case ir.OpFnStackPop:
			v, err := th.popData(in.Line)
			if err != nil {
				return err
			}
			th.setReg(in.D, v)
			pc++

		case ir.OpTblI:
			tbl, err := th.getTable(in.Name, in.Line)
			if err != nil {
				return err
			}
			v, err := th.getReg(in.S, in.Line)
			if err != nil {
				return err
			}
			tbl.Set(in.Key, v)
			pc++

		case ir.OpTblG:
			tbl, err := th.getTable(in.Name, in.Line)
			if err != nil {
				return err
			}
			v, ok := tbl.Get(in.Key)
			if !ok {
				return &RuntimeError{Kind: ErrHeapMiss, Line: in.Line, Msg: fmt.Sprintf("table %q has no field %q", in.Name, in.Key)}
			}
			th.setReg(in.D, v)
			pc++

		default:
			return &RuntimeError{Kind: ErrInternal, Line: in.Line, Msg: fmt.Sprintf("illegal opcode %d", in.Op)}
		}
	}
}

// heapKey mangles name by the active call-stack depth (Open Question
// resolution 3, SPEC_FULL.md): a local, accessed while depth > 0, is
// suffixed with the depth, so same-named locals in distinct recursive
// invocations never collide. At depth 0 (top-level code) the mangled key
// and the bare key coincide, since there is no enclosing frame to collide
// with.
func (th *Thread) heapKey(name string) string {
	depth := len(th.callStack)
	if depth == 0 {
		return name
	}
	return fmt.Sprintf("%s#%d", name, depth)
}

// getHeap resolves name against the current frame's locals first, falling
// back to the bare (global) key. The symbol table admits programs that read
// an enclosing global from inside a function (lang/symtab.Scopes.Lookup
// walks out to the global scope), so a name not declared local to the
// current frame must still resolve there instead of raising ErrHeapMiss.
func (th *Thread) getHeap(name string, line uint32) (ir.Value, error) {
	if depth := len(th.callStack); depth > 0 {
		if v, ok := th.heap.Get(th.heapKey(name)); ok {
			return v, nil
		}
	}
	if v, ok := th.heap.Get(name); ok {
		return v, nil
	}
	return ir.Value{}, &RuntimeError{Kind: ErrHeapMiss, Line: line, Msg: fmt.Sprintf("undefined name %q", name)}
}

// setHeap writes v under name. decl marks a var declaration, a for-loop
// index/value binding, or a function parameter — a new binding that always
// lives in the current frame, shadowing any outer name of the same spelling
// per spec.md §9's "locals shadow globals by name" note. A non-decl write
// is a plain assignment to an already-declared name: it updates whichever
// scope that name currently lives in, the current frame's own local if one
// was already declared there, otherwise the enclosing global — never
// silently fabricating a same-named local for someone else's variable.
func (th *Thread) setHeap(name string, v ir.Value, decl bool) {
	depth := len(th.callStack)
	if depth == 0 {
		th.heap.Put(name, v)
		return
	}
	if decl {
		th.heap.Put(th.heapKey(name), v)
		return
	}
	if _, ok := th.heap.Get(th.heapKey(name)); ok {
		th.heap.Put(th.heapKey(name), v)
		return
	}
	th.heap.Put(name, v)
}

func (th *Thread) getArray(name string, line uint32) (*ir.Array, error) {
	v, err := th.getHeap(name, line)
	if err != nil {
		return nil, err
	}
	if v.Kind != ir.KindArray {
		return nil, &RuntimeError{Kind: ErrTypeMismatch, Line: line, Msg: fmt.Sprintf("%q is a %s, not an array", name, v.Kind)}
	}
	return v.Arr, nil
}

func (th *Thread) getTable(name string, line uint32) (*ir.Table, error) {
	v, err := th.getHeap(name, line)
	if err != nil {
		return nil, err
	}
	if v.Kind != ir.KindTable {
		return nil, &RuntimeError{Kind: ErrTypeMismatch, Line: line, Msg: fmt.Sprintf("%q is a %s, not a table", name, v.Kind)}
	}
	return v.Tbl, nil
}

func (th *Thread) getIndex(reg, length int, line uint32) (int, error) {
	v, err := th.getReg(reg, line)
	if err != nil {
		return 0, err
	}
	if v.Kind != ir.KindNumber {
		return 0, &RuntimeError{Kind: ErrTypeMismatch, Line: line, Msg: "array index must be a number"}
	}
	idx := int(v.Num)
	if idx < 0 || idx >= length {
		return 0, &RuntimeError{Kind: ErrInvalidOp, Line: line, Msg: fmt.Sprintf("array index %d out of range [0, %d)", idx, length)}
	}
	return idx, nil
}

func (th *Thread) bumpReg(reg int, delta float64, line uint32) error {
	v, err := th.getReg(reg, line)
	if err != nil {
		return err
	}
	if v.Kind != ir.KindNumber {
		return &RuntimeError{Kind: ErrInvalidIncrDecr, Line: line, Msg: fmt.Sprintf("cannot increment/decrement a %s", v.Kind)}
	}
	th.setReg(reg, ir.Number(v.Num+delta))
	return nil
}

func (th *Thread) pushData(v ir.Value) {
	th.dataStack = append(th.dataStack, v)
}

func (th *Thread) popData(line uint32) (ir.Value, error) {
	if len(th.dataStack) == 0 {
		return ir.Value{}, &RuntimeError{Kind: ErrInternal, Line: line, Msg: "data stack underflow"}
	}
	v := th.dataStack[len(th.dataStack)-1]
	th.dataStack = th.dataStack[:len(th.dataStack)-1]
	return v, nil
}

// ensureRegs grows the register file geometrically to hold at least n
// entries, per spec.md §4.6's "grow-on-demand" register file.
func (th *Thread) ensureRegs(n int) {
	if n <= len(th.regs) {
		return
	}
	newCap := len(th.regs)
	if newCap == 0 {
		newCap = defaultRegCap
	}
	for newCap < n {
		newCap *= 2
	}
	regs := make([]ir.Value, newCap)
	set := make([]bool, newCap)
	copy(regs, th.regs)
	copy(set, th.regSet)
	th.regs, th.regSet = regs, set
}

// getReg reads register i of the currently executing frame's window.
// Registers are Option<Value>-like per spec.md §4.6: reading one that was
// never written is a defensive error, since the lowerer never emits a read
// of a register it hasn't already written in the same function body.
func (th *Thread) getReg(i int, line uint32) (ir.Value, error) {
	abs := th.curBase + i
	if abs < 0 || abs >= len(th.regSet) || !th.regSet[abs] {
		return ir.Value{}, &RuntimeError{Kind: ErrInternal, Line: line, Msg: fmt.Sprintf("read of unset register r%d", i)}
	}
	return th.regs[abs], nil
}

func (th *Thread) setReg(i int, v ir.Value) {
	abs := th.curBase + i
	th.ensureRegs(abs + 1)
	th.regs[abs] = v
	th.regSet[abs] = true
}

// cloneLiteral returns v, deep-copying its backing Array or Table. StoreC
// carries a Value baked once at lowering time (a locally declared array or
// table literal); the same instruction runs once per call when its
// enclosing function recurses, so sharing the baked pointer across
// invocations would let one call's mutations leak into another's. Scalar
// kinds need no copy: Number/String/Bool/Null carry their data by value.
func cloneLiteral(v ir.Value) ir.Value {
	switch v.Kind {
	case ir.KindArray:
		return ir.ArrayVal(v.Arr.Clone())
	case ir.KindTable:
		return ir.TableVal(v.Tbl.Clone())
	default:
		return v
	}
}

// execStdCall implements spec.md §4.3/§6's one standard library function.
func (th *Thread) execStdCall(in ir.Instruction) error {
	if in.Name != "print" {
		return &RuntimeError{Kind: ErrInternal, Line: in.Line, Msg: fmt.Sprintf("unknown standard library function %q", in.Name)}
	}
	args := make([]ir.Value, in.NArgs)
	for i := in.NArgs - 1; i >= 0; i-- {
		v, err := th.popData(in.Line)
		if err != nil {
			return err
		}
		args[i] = v
	}
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	fmt.Fprintln(th.stdout, strings.Join(parts, " "))
	return nil
}
