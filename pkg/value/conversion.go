package value

import (
	"fmt"
	"strconv"
)

// AutoConvert implements the §4.2 coercion lattice used when passing
// arguments, reading from a symbol, or normalising an operand. It
// never panics: every unrepresentable conversion becomes an Error
// value carrying ConversionError, which the evaluator propagates the
// same way it propagates any other Error.
func AutoConvert(v Value, target Kind) Value {
	if v.kind == target {
		return v
	}

	// Pointer and Error are non-convertible endpoints: they survive
	// conversion only to themselves (already handled above).
	if v.kind == KindPointer || v.kind == KindError || target == KindPointer || target == KindError {
		return ErrorOfKind(ErrConversion)
	}

	// Any numeric-or-Bool-or-Null value converts to String using the
	// same rendering as diagnostic Format: decimal, true/false, "null".
	if target == KindString {
		return StringOf(v.Format())
	}

	switch v.kind {
	case KindNull:
		return unsetOf(target)

	case KindBool:
		b, set := v.Bool()
		if !set {
			return unsetOf(target)
		}
		switch target {
		case KindU8:
			if b {
				return U8Of(1)
			}
			return U8Of(0)
		case KindU32:
			if b {
				return U32Of(1)
			}
			return U32Of(0)
		default:
			return ErrorOfKind(ErrConversion)
		}

	case KindU8:
		n, set := v.U8()
		if !set {
			return unsetOf(target)
		}
		switch target {
		case KindBool:
			return BoolOf(n != 0)
		case KindU32:
			return U32Of(uint32(n))
		default:
			return ErrorOfKind(ErrConversion)
		}

	case KindU32:
		n, set := v.U32()
		if !set {
			return unsetOf(target)
		}
		switch target {
		case KindBool:
			return BoolOf(n != 0)
		case KindU8:
			return U8Of(uint8(n % 256))
		default:
			return ErrorOfKind(ErrConversion)
		}

	case KindString:
		s, set := v.Str()
		if !set {
			return unsetOf(target)
		}
		switch target {
		case KindBool:
			b, err := strconv.ParseBool(s)
			if err != nil {
				return ErrorOf(ErrConversion, fmt.Sprintf("cannot parse %q as Bool", s))
			}
			return BoolOf(b)
		case KindU8:
			n, err := strconv.ParseUint(s, 10, 8)
			if err != nil {
				return ErrorOf(ErrConversion, fmt.Sprintf("cannot parse %q as U8", s))
			}
			return U8Of(uint8(n))
		case KindU32:
			n, err := strconv.ParseUint(s, 10, 32)
			if err != nil {
				return ErrorOf(ErrConversion, fmt.Sprintf("cannot parse %q as U32", s))
			}
			return U32Of(uint32(n))
		default:
			return ErrorOfKind(ErrConversion)
		}

	default:
		return ErrorOfKind(ErrConversion)
	}
}

// unsetOf returns the unset-payload form of target, the destination of
// every Null-sourced (or unset-scalar-sourced) conversion.
func unsetOf(target Kind) Value {
	switch target {
	case KindNull:
		return Null()
	case KindBool:
		return UnsetBool()
	case KindU8:
		return UnsetU8()
	case KindU32:
		return UnsetU32()
	case KindString:
		return UnsetString()
	default:
		return ErrorOfKind(ErrConversion)
	}
}

// IsError reports whether v is the Error result of a failed
// AutoConvert/arithmetic operation (kind Error, any ErrorKind) — the
// general "did this operation fail" test the evaluator uses before
// deciding whether to propagate.
func (v Value) IsError() bool { return v.kind == KindError }
