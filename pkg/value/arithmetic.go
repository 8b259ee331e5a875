package value

// isNumeric reports whether k is one of the three kinds §4.2's
// arithmetic/widening rules treat as numeric (Bool counts: "Bool +
// Bool widens to U8").
func isNumeric(k Kind) bool {
	return k == KindBool || k == KindU8 || k == KindU32
}

// wider returns whichever of a, b is later in the widening order
// Null < Bool < U8 < U32 < String. The Kind enum is declared in that
// exact order, so the wider kind is simply the larger ordinal.
func wider(a, b Kind) Kind {
	if a > b {
		return a
	}
	return b
}

// Add implements §4.2's add(lhs, rhs): numeric+numeric widens and
// wraps, String+any concatenates, Bool+Bool widens to U8, and any
// other pairing (Null, Pointer, Error on either side with a
// non-Error partner) is a TypeError. An Error operand always wins and
// propagates unchanged — this is the one operator that must inspect
// Error itself rather than relying on the evaluator's earlier
// propagation check, since literal operands never carry the
// Controller bit.
func Add(lhs, rhs Value) Value {
	if lhs.kind == KindError {
		return lhs
	}
	if rhs.kind == KindError {
		return rhs
	}

	if lhs.kind == KindString || rhs.kind == KindString {
		ls := AutoConvert(lhs, KindString)
		if ls.IsError() {
			return ls
		}
		rs := AutoConvert(rhs, KindString)
		if rs.IsError() {
			return rs
		}
		l, _ := ls.Str()
		r, _ := rs.Str()
		return StringOf(l + r)
	}

	if lhs.kind == KindBool && rhs.kind == KindBool {
		lb, _ := lhs.Bool()
		rb, _ := rhs.Bool()
		var l, r uint8
		if lb {
			l = 1
		}
		if rb {
			r = 1
		}
		return U8Of(l + r)
	}

	if isNumeric(lhs.kind) && isNumeric(rhs.kind) {
		target := wider(lhs.kind, rhs.kind)
		lw := AutoConvert(lhs, target)
		rw := AutoConvert(rhs, target)
		switch target {
		case KindU8:
			a, _ := lw.U8()
			b, _ := rw.U8()
			return U8Of(a + b) // uint8 addition wraps natively (§9.6)
		case KindU32:
			a, _ := lw.U32()
			b, _ := rw.U32()
			return U32Of(a + b) // uint32 addition wraps natively (§9.6)
		}
	}

	return ErrorOfKind(ErrType)
}

// Increment implements §4.2's increment: numeric wraps, Bool toggles,
// anything else is a TypeError.
func Increment(v Value) Value {
	switch v.kind {
	case KindU8:
		n, set := v.U8()
		if !set {
			n = 0
		}
		return U8Of(n + 1)
	case KindU32:
		n, set := v.U32()
		if !set {
			n = 0
		}
		return U32Of(n + 1)
	case KindBool:
		b, set := v.Bool()
		if !set {
			b = false
		}
		return BoolOf(!b)
	default:
		return ErrorOfKind(ErrType)
	}
}

// Decrement implements §4.2's decrement: numeric wraps, Bool toggles,
// anything else is a TypeError.
func Decrement(v Value) Value {
	switch v.kind {
	case KindU8:
		n, set := v.U8()
		if !set {
			n = 0
		}
		return U8Of(n - 1)
	case KindU32:
		n, set := v.U32()
		if !set {
			n = 0
		}
		return U32Of(n - 1)
	case KindBool:
		b, set := v.Bool()
		if !set {
			b = false
		}
		return BoolOf(!b)
	default:
		return ErrorOfKind(ErrType)
	}
}

// Not implements §4.2's not: Bool negates, numeric first coerces to
// Bool, anything else is a TypeError.
func Not(v Value) Value {
	switch v.kind {
	case KindBool:
		b, set := v.Bool()
		if !set {
			b = false
		}
		return BoolOf(!b)
	case KindU8, KindU32:
		asBool := AutoConvert(v, KindBool)
		if asBool.IsError() {
			return asBool
		}
		b, _ := asBool.Bool()
		return BoolOf(!b)
	default:
		return ErrorOfKind(ErrType)
	}
}
