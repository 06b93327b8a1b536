package vm

import (
	"fmt"
	"math"

	"github.com/mna/sif/lang/ir"
)

// evalBinary implements the Binary instruction's per-operator semantics
// (spec.md §3's operator table), grounded on the teacher's own
// machine.Binary dispatch shape: one function taking the operator and both
// operands, returning a Value or a typed error rather than panicking.
func evalBinary(op ir.BinOp, x, y ir.Value, line uint32) (ir.Value, error) {
	switch op {
	case ir.BinAdd:
		if x.Kind == ir.KindNumber && y.Kind == ir.KindNumber {
			return ir.Number(x.Num + y.Num), nil
		}
		if x.Kind == ir.KindString && y.Kind == ir.KindString {
			return ir.String(x.Str + y.Str), nil
		}
		return ir.Value{}, typeMismatch(op, x, y, line)

	case ir.BinSub, ir.BinMul, ir.BinDiv, ir.BinMod:
		if x.Kind != ir.KindNumber || y.Kind != ir.KindNumber {
			return ir.Value{}, typeMismatch(op, x, y, line)
		}
		switch op {
		case ir.BinSub:
			return ir.Number(x.Num - y.Num), nil
		case ir.BinMul:
			return ir.Number(x.Num * y.Num), nil
		case ir.BinDiv:
			return ir.Number(x.Num / y.Num), nil
		default: // BinMod
			return ir.Number(math.Mod(x.Num, y.Num)), nil
		}

	case ir.BinEq:
		return ir.Bool(x.Equal(y)), nil
	case ir.BinNeq:
		return ir.Bool(!x.Equal(y)), nil

	case ir.BinLt, ir.BinLe, ir.BinGt, ir.BinGe:
		if x.Kind != ir.KindNumber || y.Kind != ir.KindNumber {
			return ir.Value{}, typeMismatch(op, x, y, line)
		}
		switch op {
		case ir.BinLt:
			return ir.Bool(x.Num < y.Num), nil
		case ir.BinLe:
			return ir.Bool(x.Num <= y.Num), nil
		case ir.BinGt:
			return ir.Bool(x.Num > y.Num), nil
		default: // BinGe
			return ir.Bool(x.Num >= y.Num), nil
		}

	case ir.BinAnd:
		return ir.Bool(x.Truthy() && y.Truthy()), nil
	case ir.BinOr:
		return ir.Bool(x.Truthy() || y.Truthy()), nil

	default:
		return ir.Value{}, &RuntimeError{Kind: ErrInternal, Line: line, Msg: fmt.Sprintf("illegal binary operator %d", op)}
	}
}

// evalUnary implements the Unary instruction (spec.md §3): numeric negation
// requires a number, logical negation accepts any value via Truthy.
func evalUnary(op ir.UnOp, x ir.Value, line uint32) (ir.Value, error) {
	switch op {
	case ir.UnNeg:
		if x.Kind != ir.KindNumber {
			return ir.Value{}, &RuntimeError{Kind: ErrTypeMismatch, Line: line, Msg: fmt.Sprintf("cannot negate a %s", x.Kind)}
		}
		return ir.Number(-x.Num), nil
	case ir.UnNot:
		return ir.Bool(!x.Truthy()), nil
	default:
		return ir.Value{}, &RuntimeError{Kind: ErrInternal, Line: line, Msg: fmt.Sprintf("illegal unary operator %d", op)}
	}
}

func typeMismatch(op ir.BinOp, x, y ir.Value, line uint32) error {
	return &RuntimeError{
		Kind: ErrTypeMismatch,
		Line: line,
		Msg:  fmt.Sprintf("invalid operand types for %s: %s, %s", op, x.Kind, y.Kind),
	}
}
