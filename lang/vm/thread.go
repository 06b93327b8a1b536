package vm

import (
	"io"
	"os"

	"github.com/dolthub/swiss"
	"github.com/mna/sif/lang/ir"
)

// Thread holds the mutable state of one VM run: the dense register file,
// the name-keyed heap, the call stack, and the shared data stack, plus the
// I/O and resource knobs a caller configures before calling Run. Grounded
// on the teacher's lang/machine.Thread (Stdout/MaxSteps fields, an init
// method that fills in defaults on first use), trimmed to sif's single-
// threaded, no-context-cancellation execution model (spec.md §5).
type Thread struct {
	// Stdout is where StdCall{"print", ...} writes. Defaults to os.Stdout.
	Stdout io.Writer

	// Trace, if non-nil, receives one line per executed instruction (the
	// CLI's -t/--trace-exec flag, SPEC_FULL.md's Logging/tracing section).
	// Left nil, no trace output is produced — this mirrors the teacher's "no
	// logging framework, diagnostics go straight to an io.Writer" convention.
	Trace io.Writer

	// MaxSteps bounds the number of fetch-decode-execute cycles before the
	// run is aborted as a runaway-execution guard. A value <= 0 means no
	// limit, mirroring the teacher's Thread.MaxSteps.
	MaxSteps int

	// RegCapHint and HeapCapHint size the initial register file and heap
	// (the CLI's -R/--reg-count and -H/--heap-size flags, internal/config's
	// SIF_REG_COUNT/SIF_HEAP_SIZE). Both structures still grow geometrically
	// past the hint if a program needs more (spec.md §4.6's "register file
	// grows geometrically on demand").
	RegCapHint  int
	HeapCapHint int

	// PeakCallDepth records the deepest the call stack reached during Run,
	// counting the top-level frame; tests read it to check spec.md §8
	// scenario 4's "call stack depth peaks at 6 frames".
	PeakCallDepth int

	stdout io.Writer

	heap      *swiss.Map[string, ir.Value]
	regs      []ir.Value
	regSet    []bool
	dataStack []ir.Value
	callStack []callFrame

	curBase int // register-window base of the currently executing frame
	regTop  int // high-water mark of allocated register windows
	steps   int
}

// callFrame is one activation record (spec.md §4.6). callerBase restores
// curBase on FnRet; calleeBase restores regTop, freeing this call's
// register window so a later sibling call can reuse the space.
type callFrame struct {
	returnIP   int
	callerBase int
	calleeBase int
}

const (
	defaultRegCap  = 64
	defaultHeapCap = 64
)

func (th *Thread) init() {
	if th.Stdout != nil {
		th.stdout = th.Stdout
	} else {
		th.stdout = os.Stdout
	}

	regCap := th.RegCapHint
	if regCap <= 0 {
		regCap = defaultRegCap
	}
	th.regs = make([]ir.Value, regCap)
	th.regSet = make([]bool, regCap)

	heapCap := th.HeapCapHint
	if heapCap <= 0 {
		heapCap = defaultHeapCap
	}
	th.heap = swiss.NewMap[string, ir.Value](uint32(heapCap))

	th.dataStack = nil
	th.callStack = nil
	th.curBase = 0
	th.regTop = 0
	th.steps = 0
	// The top-level program counts as depth 1 even before any Call, matching
	// spec.md §8 scenario 4's "call stack depth peaks at 6 frames" for a
	// depth-5-deep recursive call chain (5 nested Calls + the top level).
	th.PeakCallDepth = 1
}

// HeapValue returns the current value of a top-level (global) name, keyed
// exactly as StoreC/StoreR would have written it from depth 0. It is meant
// for driver diagnostics and tests inspecting final program state (spec.md
// §8 scenario 1's "VM heap contains y=0"), not for use from within running
// bytecode.
func (th *Thread) HeapValue(name string) (ir.Value, bool) {
	return th.heap.Get(name)
}
