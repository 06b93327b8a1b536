package ir

// Op is the closed set of opcodes in spec.md §3's Instruction table.
type Op uint8

//nolint:revive
const (
	OpBinary Op = iota
	OpUnary
	OpLoadC
	OpLoadN
	OpMv
	OpLoadArrs
	OpLoadArrv
	OpUpdArr
	OpStoreC
	OpStoreN
	OpStoreR
	OpJumpCnd
	OpJumpA
	OpIncrr
	OpDecrr
	OpFn
	OpCall
	OpStdCall
	OpFnRet
	OpFnStackPush
	OpFnStackPop
	OpTblI
	OpTblG
	OpNop
	OpStop

	maxOp
)

var opNames = [...]string{
	OpBinary:      "binary",
	OpUnary:       "unary",
	OpLoadC:       "loadc",
	OpLoadN:       "loadn",
	OpMv:          "mv",
	OpLoadArrs:    "loadarrs",
	OpLoadArrv:    "loadarrv",
	OpUpdArr:      "updarr",
	OpStoreC:      "storec",
	OpStoreN:      "storen",
	OpStoreR:      "storer",
	OpJumpCnd:     "jumpcnd",
	OpJumpA:       "jumpa",
	OpIncrr:       "incrr",
	OpDecrr:       "decrr",
	OpFn:          "fn",
	OpCall:        "call",
	OpStdCall:     "stdcall",
	OpFnRet:       "fnret",
	OpFnStackPush: "fnstackpush",
	OpFnStackPop:  "fnstackpop",
	OpTblI:        "tbli",
	OpTblG:        "tblg",
	OpNop:         "nop",
	OpStop:        "stop",
}

func (o Op) String() string {
	if int(o) < 0 || int(o) >= len(opNames) || opNames[o] == "" {
		return "illegal op"
	}
	return opNames[o]
}

// BinOp is the Binary instruction's operator kind.
type BinOp uint8

//nolint:revive
const (
	BinAdd BinOp = iota
	BinSub
	BinMul
	BinDiv
	BinMod
	BinEq
	BinNeq
	BinLt
	BinLe
	BinGt
	BinGe
	BinAnd
	BinOr
)

var binOpSymbols = [...]string{
	BinAdd: "+", BinSub: "-", BinMul: "*", BinDiv: "/", BinMod: "%",
	BinEq: "==", BinNeq: "!=", BinLt: "<", BinLe: "<=", BinGt: ">", BinGe: ">=",
	BinAnd: "&&", BinOr: "||",
}

func (b BinOp) String() string { return binOpSymbols[b] }

// UnOp is the Unary instruction's operator kind.
type UnOp uint8

const (
	UnNeg UnOp = iota // numeric negation
	UnNot             // logical negation
)

func (u UnOp) String() string {
	if u == UnNeg {
		return "-"
	}
	return "!"
}

// JumpKind is the JumpCnd instruction's condition polarity.
type JumpKind uint8

const (
	Jmpt JumpKind = iota // jump if truthy
	Jmpf                 // jump if falsy
)

func (k JumpKind) String() string {
	if k == Jmpt {
		return "jmpt"
	}
	return "jmpf"
}

// MaxLabel is the forward-jump placeholder sentinel described in spec.md
// §4.1: a JumpCnd/JumpA emitted before its target label is known carries
// this value until the lowerer's fix-up pass rewrites it in place. It must
// never survive to the end of lowering (spec.md §8, invariant 2).
const MaxLabel uint32 = ^uint32(0)
