package ir

// JumpTab maps a label index to the index of the first instruction in the
// final program carrying that label.
type JumpTab map[uint32]int

// FnTab maps a function name to the index of its Fn header instruction.
type FnTab map[string]int

// ComputeTables walks code and (re)populates a JumpTab and FnTab from
// scratch, per spec.md §4.1's "Side tables" contract. It always seeds
// jumptab[0] = 0, even for an empty program, since label 0 always exists by
// construction (the first instruction emitted always carries label 0).
func ComputeTables(code []Instruction) (JumpTab, FnTab) {
	jt := JumpTab{0: 0}
	ft := FnTab{}
	for i, in := range code {
		if _, ok := jt[in.Label]; !ok {
			jt[in.Label] = i
		}
		if in.Op == OpFn {
			ft[in.Name] = i
		}
	}
	return jt, ft
}
