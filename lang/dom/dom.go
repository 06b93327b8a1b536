// Package dom computes dominator information over a lang/cfg.Graph: the
// iterative fixed-point dominator-set algorithm and, from it, immediate
// dominators and Cytron-style dominance frontiers, per spec.md §4.3. This is
// the input lang/ssa needs to place φ-functions and to drive its
// dominator-tree-preorder renaming walk.
package dom

import "github.com/mna/sif/lang/cfg"

// Tree is the dominator information for one Graph. Block ids index directly
// into every slice here, mirroring cfg.Block's own id scheme.
type Tree struct {
	g    *cfg.Graph
	Sets []map[int]bool // Sets[n] = the set of blocks that dominate n (includes n)
	IDom []int          // IDom[n] = immediate dominator of n; IDom[entry] = entry
	DF   [][]int        // DF[n] = n's dominance frontier
}

// Dominates reports whether a dominates b (a == b counts as dominating).
func (t *Tree) Dominates(a, b int) bool { return t.Sets[b][a] }

// Build computes the full dominator tree of g. g must have a single entry
// block (id 0, guaranteed by cfg.Build) reachable from every other block;
// unreachable blocks (dead code the optimizer hasn't removed yet) are left
// with an empty dominator set.
func Build(g *cfg.Graph) *Tree {
	n := len(g.Blocks)
	t := &Tree{g: g, Sets: make([]map[int]bool, n), IDom: make([]int, n), DF: make([][]int, n)}
	if n == 0 {
		return t
	}

	// Every other set starts nil ("not reached yet"): a nil predecessor set
	// is skipped in the intersection below, so a block that no path from the
	// entry reaches keeps a nil set.
	t.Sets[0] = map[int]bool{0: true}

	for changed := true; changed; {
		changed = false
		for bid := 1; bid < n; bid++ {
			b := g.Blocks[bid]
			if len(b.Preds) == 0 {
				continue // unreachable
			}
			var inter map[int]bool
			for _, p := range b.Preds {
				if t.Sets[p] == nil {
					continue
				}
				if inter == nil {
					inter = cloneSet(t.Sets[p])
					continue
				}
				intersectInPlace(inter, t.Sets[p])
			}
			if inter == nil {
				continue
			}
			inter[bid] = true
			if !setsEqual(inter, t.Sets[bid]) {
				t.Sets[bid] = inter
				changed = true
			}
		}
	}

	t.IDom[0] = 0
	for bid := 1; bid < n; bid++ {
		t.IDom[bid] = immediateDominator(t, bid)
	}

	for bid := 0; bid < n; bid++ {
		b := g.Blocks[bid]
		if len(b.Preds) < 2 {
			continue
		}
		for _, p := range b.Preds {
			runner := p
			for runner != t.IDom[bid] {
				t.DF[runner] = append(t.DF[runner], bid)
				if runner == t.IDom[runner] {
					break // entry block: its own idom, stop to avoid looping forever on an unreachable pred
				}
				runner = t.IDom[runner]
			}
		}
	}
	return t
}

// immediateDominator picks, among the strict dominators of bid, the one with
// the largest dominator set — the unique one that is dominated by every
// other strict dominator of bid.
func immediateDominator(t *Tree, bid int) int {
	best, bestSize := -1, -1
	for d := range t.Sets[bid] {
		if d == bid {
			continue
		}
		if size := len(t.Sets[d]); size > bestSize {
			best, bestSize = d, size
		}
	}
	if best == -1 {
		return bid // unreachable block: no strict dominator found
	}
	return best
}

func cloneSet(s map[int]bool) map[int]bool {
	out := make(map[int]bool, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

func intersectInPlace(a, b map[int]bool) {
	for k := range a {
		if !b[k] {
			delete(a, k)
		}
	}
}

func setsEqual(a, b map[int]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}
