// Package optimize implements sif's peephole bytecode optimizer (spec.md
// §4.5): a fixed pipeline of passes over the finished, labeled instruction
// stream, each pass turning dead instructions into Nop, with a final pass
// that physically compacts them out. Passes never touch control flow
// semantics — only instructions a correct program can never observe the
// effect of.
package optimize

import "github.com/mna/sif/lang/ir"

// Run applies the full pipeline to prog in place: redundant-jump removal,
// post-return removal, the push/pop-collapse pass, and finally Nop removal,
// which recomputes the decls/code split and the side tables once all passes
// have run. The order matters: earlier passes only ever mark instructions
// Nop, so Nop removal must run last to actually shrink the stream and fix up
// indices exactly once.
func Run(prog *ir.Program) {
	code := prog.Combined()
	codeStart := prog.CodeStart

	jumptab, _ := ir.ComputeTables(code)
	removeRedundantJumps(code, jumptab)
	removePostReturn(code)
	removePushPopPairs(code)
	code, codeStart = removeNops(code, codeStart)

	prog.SetCombined(code, codeStart)
	prog.RecomputeTables()
}

// removeRedundantJumps turns an unconditional jump into Nop when its target
// is the very next instruction — the jump changes nothing a running program
// could observe, since control would land there anyway by falling through.
func removeRedundantJumps(code []ir.Instruction, jumptab ir.JumpTab) {
	for i := range code {
		if code[i].Op != ir.OpJumpA {
			continue
		}
		target, ok := jumptab[code[i].Lbl]
		if ok && target == i+1 {
			code[i] = ir.Instruction{Op: ir.OpNop, Label: code[i].Label, Line: code[i].Line}
		}
	}
}

// removePostReturn turns into Nop any instruction that follows an FnRet or
// Stop within the same basic block (same label run): straight-line code
// after a return in its own block can never execute, since reaching that
// block at all already means the function returned or the program halted.
// Once the label changes, a fresh block begins that may still be reachable
// via a jump from elsewhere, so the scan stops there.
func removePostReturn(code []ir.Instruction) {
	dead := false
	var deadLabel uint32
	for i := range code {
		if dead && code[i].Label == deadLabel {
			code[i] = ir.Instruction{Op: ir.OpNop, Label: code[i].Label, Line: code[i].Line}
			continue
		}
		dead = false
		if code[i].Op == ir.OpFnRet || code[i].Op == ir.OpStop {
			dead = true
			deadLabel = code[i].Label
		}
	}
}

// removePushPopPairs collapses a FnStackPush immediately followed by a
// FnStackPop, with nothing in between, into a single register move: the
// value took a pointless round trip through the data stack without any
// intervening Call to justify it.
func removePushPopPairs(code []ir.Instruction) {
	for i := 0; i+1 < len(code); i++ {
		if code[i].Op != ir.OpFnStackPush || code[i+1].Op != ir.OpFnStackPop {
			continue
		}
		if code[i].Label != code[i+1].Label {
			continue
		}
		src, dst := code[i].S, code[i+1].D
		code[i] = ir.Instruction{Op: ir.OpMv, Label: code[i].Label, Line: code[i].Line, S: src, D: dst}
		code[i+1] = ir.Instruction{Op: ir.OpNop, Label: code[i+1].Label, Line: code[i+1].Line}
	}
}

// removeNops physically deletes every Nop from code, returning the
// compacted stream and the adjusted CodeStart. A Nop that was the sole
// carrier of its label hands that label to whichever instruction follows it
// before being dropped, so no jump target goes missing.
func removeNops(code []ir.Instruction, codeStart int) ([]ir.Instruction, int) {
	out := make([]ir.Instruction, 0, len(code))
	newCodeStart := codeStart
	for i := 0; i < len(code); i++ {
		if code[i].Op != ir.OpNop {
			out = append(out, code[i])
			continue
		}
		if i < codeStart {
			newCodeStart--
		}
		solecarrier := (i == 0 || code[i-1].Label != code[i].Label)
		if solecarrier && i+1 < len(code) && code[i+1].Label != code[i].Label {
			code[i+1].Label = code[i].Label
		}
	}
	return out, newCodeStart
}
