package ir

import "fmt"

// Instruction is one labeled bytecode instruction (spec.md §3). It is a flat
// struct rather than a Go sum type with one concrete type per opcode,
// because the lowerer, optimizer, and VM all need to rewrite instructions
// in place (the forward-jump fix-up protocol, the peephole passes); a flat
// struct makes that an ordinary field assignment rather than a reallocation.
// Only the fields relevant to Op are meaningful on any given instruction;
// see the per-field comments below for which opcode populates which field.
type Instruction struct {
	Label uint32 // label index; adjacent instructions sharing a label are one basic block
	Line  uint32 // source line, for runtime error positioning

	Op Op

	BinOp    BinOp    // OpBinary
	UnOp     UnOp     // OpUnary
	JumpKind JumpKind // OpJumpCnd

	// Register operands. Meaning depends on Op:
	//   OpBinary:   S1, S2 = operands, D = dest
	//   OpUnary:    S1 = operand, D = dest
	//   OpLoadC:    D = dest
	//   OpLoadN:    D = dest
	//   OpMv:       S = src, D = dest
	//   OpLoadArrs: D = dest (length)
	//   OpLoadArrv: S1 = index reg, D = dest
	//   OpUpdArr:   S1 = index reg, S = value reg
	//   OpStoreR:   S = src reg
	//   OpJumpCnd:  S = condition reg
	//   OpIncrr/OpDecrr: S = target reg
	//   OpFnStackPush: S = src reg
	//   OpFnStackPop:  D = dest reg
	//   OpTblI:     S = value reg
	//   OpTblG:     D = dest reg
	S1, S2, S, D int

	// Name operands. Meaning depends on Op:
	//   OpLoadN, OpStoreC, OpStoreR: Name = heap key
	//   OpStoreN: Name = src heap key, Name2 = dst heap key
	//   OpLoadArrs, OpLoadArrv, OpUpdArr: Name = array name
	//   OpFn, OpCall, OpStdCall: Name = function name
	//   OpTblI, OpTblG: Name = table name, Key = field name
	Name  string
	Name2 string
	Key   string

	Val Value // OpLoadC

	Lbl uint32 // OpJumpCnd, OpJumpA: target label (may be MaxLabel before fix-up)

	Params   []string // OpFn
	NArgs    int      // OpCall, OpStdCall
	RegCount int      // OpFn: size of the register window this function's body needs (see lower.Lowerer)

	// Decl marks a heap-writing instruction (OpStoreC, OpStoreN, OpStoreR)
	// that introduces a new binding — a var declaration, a for-loop's index
	// or value variable, or a function parameter — as opposed to a plain
	// assignment to an already-declared name. The VM uses this to decide
	// whether a write always targets the current call frame's local slot
	// (Decl) or should instead update whatever scope the name already lives
	// in, possibly an enclosing global (!Decl). See lang/vm.Thread.setHeap.
	Decl bool
}

// String renders one instruction in the textual form emitted by --emit-ir
// and --trace-exec, one line per instruction: label, op, operands.
func (in Instruction) String() string {
	switch in.Op {
	case OpBinary:
		return fmt.Sprintf("L%d: r%d <- r%d %s r%d", in.Label, in.D, in.S1, in.BinOp, in.S2)
	case OpUnary:
		return fmt.Sprintf("L%d: r%d <- %sr%d", in.Label, in.D, in.UnOp, in.S1)
	case OpLoadC:
		return fmt.Sprintf("L%d: r%d <- const %s", in.Label, in.D, in.Val)
	case OpLoadN:
		return fmt.Sprintf("L%d: r%d <- heap[%s]", in.Label, in.D, in.Name)
	case OpMv:
		return fmt.Sprintf("L%d: r%d <- r%d", in.Label, in.D, in.S)
	case OpLoadArrs:
		return fmt.Sprintf("L%d: r%d <- len(%s)", in.Label, in.D, in.Name)
	case OpLoadArrv:
		return fmt.Sprintf("L%d: r%d <- %s[r%d]", in.Label, in.D, in.Name, in.S1)
	case OpUpdArr:
		return fmt.Sprintf("L%d: %s[r%d] <- r%d", in.Label, in.Name, in.S1, in.S)
	case OpStoreC:
		return fmt.Sprintf("L%d: heap[%s] <- const %s", in.Label, in.Name, in.Val)
	case OpStoreN:
		return fmt.Sprintf("L%d: heap[%s] <- heap[%s]", in.Label, in.Name2, in.Name)
	case OpStoreR:
		return fmt.Sprintf("L%d: heap[%s] <- r%d", in.Label, in.Name, in.S)
	case OpJumpCnd:
		return fmt.Sprintf("L%d: %s r%d -> L%d", in.Label, in.JumpKind, in.S, in.Lbl)
	case OpJumpA:
		return fmt.Sprintf("L%d: jmp -> L%d", in.Label, in.Lbl)
	case OpIncrr:
		return fmt.Sprintf("L%d: r%d++", in.Label, in.S)
	case OpDecrr:
		return fmt.Sprintf("L%d: r%d--", in.Label, in.S)
	case OpFn:
		return fmt.Sprintf("L%d: fn %s(%v)", in.Label, in.Name, in.Params)
	case OpCall:
		return fmt.Sprintf("L%d: call %s/%d", in.Label, in.Name, in.NArgs)
	case OpStdCall:
		return fmt.Sprintf("L%d: stdcall %s/%d", in.Label, in.Name, in.NArgs)
	case OpFnRet:
		return fmt.Sprintf("L%d: ret", in.Label)
	case OpFnStackPush:
		return fmt.Sprintf("L%d: push r%d", in.Label, in.S)
	case OpFnStackPop:
		return fmt.Sprintf("L%d: pop -> r%d", in.Label, in.D)
	case OpTblI:
		return fmt.Sprintf("L%d: %s.%s <- r%d", in.Label, in.Name, in.Key, in.S)
	case OpTblG:
		return fmt.Sprintf("L%d: r%d <- %s.%s", in.Label, in.D, in.Name, in.Key)
	case OpNop:
		return fmt.Sprintf("L%d: nop", in.Label)
	case OpStop:
		return fmt.Sprintf("L%d: stop", in.Label)
	default:
		return fmt.Sprintf("L%d: <illegal op %d>", in.Label, in.Op)
	}
}

// IsJump reports whether in is a JumpCnd or JumpA instruction.
func (in Instruction) IsJump() bool {
	return in.Op == OpJumpCnd || in.Op == OpJumpA
}
