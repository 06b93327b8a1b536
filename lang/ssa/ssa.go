// Package ssa computes a static single-assignment view of a sif instruction
// stream, per spec.md §4.4: discover the names read in some block before
// that block defines them ("globals" in Cytron's terminology), place
// φ-functions for those names at the iterated dominance frontiers of their
// defining blocks, then rename every def/use by walking the dominator tree
// in preorder with a per-name version stack. This is an analysis, not a
// lowering: the bytecode itself is never rewritten, only annotated (via
// Form), as a foundation any future SSA-based optimization pass would build
// on.
//
// Renaming covers heap-resident scalar variables only — the operands of
// LoadN, StoreC, StoreR, and StoreN. Array and table element operations
// (LoadArrv, UpdArr, TblI, TblG) mutate an existing aggregate named by
// identity rather than rebinding a name to a new value, so they fall
// outside the def/use relation SSA renaming is defined over.
package ssa

import (
	"github.com/mna/sif/lang/cfg"
	"github.com/mna/sif/lang/dom"
	"github.com/mna/sif/lang/ir"
)

// Phi is one inserted φ-function: a new version of Name, defined at the top
// of Block, merging the version flowing in from each predecessor edge.
type Phi struct {
	Block   int
	Name    string
	Version int
	Args    map[int]int // predecessor block id -> incoming version
}

// Form is the SSA-renamed view of one instruction stream.
type Form struct {
	Phis []*Phi
	// Uses maps an instruction index to the SSA version of the name it reads
	// (LoadN's Name, StoreN's Name).
	Uses map[int]int
	// Defs maps an instruction index to the SSA version of the name it
	// writes (StoreC's Name, StoreR's Name, StoreN's Name2).
	Defs map[int]int
}

// Build computes the SSA form of code, whose control flow is g and whose
// dominator information is tr (both as returned for the same code by
// lang/cfg and lang/dom).
func Build(code []ir.Instruction, g *cfg.Graph, tr *dom.Tree) *Form {
	f := &Form{Uses: map[int]int{}, Defs: map[int]int{}}
	if len(g.Blocks) == 0 {
		return f
	}

	instrBlock := make([]int, len(code))
	for _, b := range g.Blocks {
		for i := b.Start; i < b.End; i++ {
			instrBlock[i] = b.ID
		}
	}

	defBlocks := map[string]map[int]bool{}
	addDef := func(name string, block int) {
		if name == "" {
			return
		}
		s, ok := defBlocks[name]
		if !ok {
			s = map[int]bool{}
			defBlocks[name] = s
		}
		s[block] = true
	}
	globals := map[string]bool{}
	killedIn := map[string]int{} // name -> 1 + id of the block that last defined it
	for i, in := range code {
		b := instrBlock[i]
		if (in.Op == ir.OpLoadN || in.Op == ir.OpStoreN) && killedIn[in.Name] != b+1 {
			globals[in.Name] = true
		}
		switch in.Op {
		case ir.OpStoreC, ir.OpStoreR:
			addDef(in.Name, b)
			killedIn[in.Name] = b + 1
		case ir.OpStoreN:
			addDef(in.Name2, b)
			killedIn[in.Name2] = b + 1
		}
	}

	phiAt := map[int]map[string]*Phi{} // block -> name -> phi
	for name, blocks := range defBlocks {
		if globals[name] {
			placePhis(name, blocks, tr, phiAt, g)
		}
	}
	for _, byName := range phiAt {
		for _, p := range byName {
			f.Phis = append(f.Phis, p)
		}
	}

	counters := map[string]int{}
	stacks := map[string][]int{}
	newVersion := func(name string) int {
		v := counters[name]
		counters[name]++
		stacks[name] = append(stacks[name], v)
		return v
	}
	currentVersion := func(name string) (int, bool) {
		s := stacks[name]
		if len(s) == 0 {
			return 0, false
		}
		return s[len(s)-1], true
	}

	children := childrenOf(tr.IDom)

	var walk func(block int)
	walk = func(block int) {
		pushed := map[string]int{} // name -> count of versions pushed in this block, for restore on exit

		for name, p := range phiAt[block] {
			p.Version = newVersion(name)
			pushed[name]++
		}

		b := g.Blocks[block]
		for i := b.Start; i < b.End; i++ {
			in := code[i]
			switch in.Op {
			case ir.OpLoadN:
				if v, ok := currentVersion(in.Name); ok {
					f.Uses[i] = v
				}
			case ir.OpStoreN:
				if v, ok := currentVersion(in.Name); ok {
					f.Uses[i] = v
				}
				f.Defs[i] = newVersion(in.Name2)
				pushed[in.Name2]++
			case ir.OpStoreC, ir.OpStoreR:
				f.Defs[i] = newVersion(in.Name)
				pushed[in.Name]++
			}
		}

		for _, succ := range b.Succs {
			for name, p := range phiAt[succ] {
				if v, ok := currentVersion(name); ok {
					if p.Args == nil {
						p.Args = map[int]int{}
					}
					p.Args[block] = v
				}
			}
		}

		for _, c := range children[block] {
			walk(c)
		}

		for name, n := range pushed {
			stacks[name] = stacks[name][:len(stacks[name])-n]
		}
	}
	walk(0)

	return f
}

// placePhis runs the standard iterated-dominance-frontier worklist: starting
// from the blocks that define name, a φ is needed at every block in the
// dominance frontier of a block already known to define (or already
// φ-define) name, repeated to a fixed point.
func placePhis(name string, defBlocks map[int]bool, tr *dom.Tree, phiAt map[int]map[string]*Phi, g *cfg.Graph) {
	var worklist []int
	everOnWorklist := map[int]bool{}
	for b := range defBlocks {
		worklist = append(worklist, b)
		everOnWorklist[b] = true
	}
	hasPhi := map[int]bool{}

	for len(worklist) > 0 {
		b := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, d := range tr.DF[b] {
			if hasPhi[d] {
				continue
			}
			hasPhi[d] = true
			if phiAt[d] == nil {
				phiAt[d] = map[string]*Phi{}
			}
			phiAt[d][name] = &Phi{Block: d, Name: name}
			if !everOnWorklist[d] {
				everOnWorklist[d] = true
				worklist = append(worklist, d)
			}
		}
	}
}

// childrenOf builds the dominator tree's child lists from an IDom array.
func childrenOf(idom []int) [][]int {
	children := make([][]int, len(idom))
	for b, d := range idom {
		if b == 0 {
			continue // entry has no parent
		}
		children[d] = append(children[d], b)
	}
	return children
}
