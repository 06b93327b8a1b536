// Package cfg builds a control-flow graph over sif's linear, labeled
// instruction stream (spec.md §4.2). Basic blocks are not explicit during
// lowering (lang/lower emits one flat slice); cfg discovers them after the
// fact from the leader/edge rules below, the same way a post-hoc block
// analysis is described in spec.md §9's design note.
package cfg

import "github.com/mna/sif/lang/ir"

// Block is one basic block: a maximal run of instructions sharing a label,
// indexed by its position in the owning Graph's Blocks slice. Blocks are
// identified by a plain int id into that slice rather than by pointer or by
// a reference-counted handle, per spec.md §9 ("block ids are plain integers
// indexing into an owning slice, not a graph of pointers").
type Block struct {
	ID    int
	Label uint32
	Start int // index of the first instruction, in the code slice passed to Build
	End   int // index one past the last instruction

	Succs []int
	Preds []int
}

// Graph is the control-flow graph of one instruction stream (either a
// function's body or the top-level code section — the two are never mixed,
// since spec.md §4.1's Call/FnRet protocol does not correspond to any
// CFG edge, and a label is never shared across a decl/code boundary).
type Graph struct {
	Code   []ir.Instruction
	Blocks []*Block
	// Entry is always block 0.
}

// Build partitions code into basic blocks and computes successor/predecessor
// edges, per spec.md §4.2's leader and edge rules:
//
//   - Leader rule: instruction k is a leader iff k = 0 or label[k] !=
//     label[k-1]. All instructions between consecutive leaders form one
//     block. Labels are counted from code[0]'s label (0 for a stream that
//     starts at label 0): block[L] below means the block at position
//     L - code[0].Label. When every label in that range carries one
//     contiguous, non-empty run of instructions, the i-th block's id equals
//     both its position in Blocks and that relative label index of every
//     instruction it contains (spec.md §8 invariant 5) — there is no
//     separate jump-target leader rule and no id/label renumbering step.
//   - Edge rule: a block ending in JumpCnd{_, _, L} has two successors,
//     block[L] (taken) and block[L-1], which stands for the fallthrough.
//     That is the real fallthrough when an if/elif arm's then-block is a
//     single label; when the then-block spans several labels, block[L-1]
//     is its last one, and for a for-loop's backward JumpCnd it is the
//     block before the loop header rather than the loop exit. A block
//     ending in JumpA{L} has one successor, block[L]. A block ending in
//     FnRet or Stop has none. Otherwise the block falls through to the next
//     block.
func Build(code []ir.Instruction) *Graph {
	g := &Graph{Code: code}
	if len(code) == 0 {
		return g
	}

	for k, in := range code {
		if k == 0 || in.Label != code[k-1].Label {
			g.Blocks = append(g.Blocks, &Block{ID: len(g.Blocks), Label: in.Label, Start: k, End: k + 1})
		} else {
			g.Blocks[len(g.Blocks)-1].End = k + 1
		}
	}

	base := int(code[0].Label)
	n := len(g.Blocks)
	for _, b := range g.Blocks {
		last := code[b.End-1]
		switch {
		case last.Op == ir.OpJumpCnd:
			if target := int(last.Lbl) - base; target >= 0 && target < n {
				addEdge(g, b.ID, target)
			}
			if fallthru := int(last.Lbl) - base - 1; fallthru >= 0 && fallthru < n {
				addEdge(g, b.ID, fallthru)
			}
		case last.Op == ir.OpJumpA:
			if target := int(last.Lbl) - base; target >= 0 && target < n {
				addEdge(g, b.ID, target)
			}
		case last.Op == ir.OpFnRet || last.Op == ir.OpStop:
			// no successors
		default:
			if b.ID+1 < n {
				addEdge(g, b.ID, b.ID+1)
			}
		}
	}
	return g
}

func addEdge(g *Graph, from, to int) {
	g.Blocks[from].Succs = append(g.Blocks[from].Succs, to)
	g.Blocks[to].Preds = append(g.Blocks[to].Preds, from)
}
