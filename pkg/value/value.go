// Package value implements the ApicaType value model: a tagged union
// of scalar, pointer and error variants, its widening conversion
// lattice, and its arithmetic/unary operators (spec §3, §4.2).
package value

import "fmt"

// Kind is the tag of the ApicaType union.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindU8
	KindU32
	KindString
	KindPointer
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "Null"
	case KindBool:
		return "Bool"
	case KindU8:
		return "U8"
	case KindU32:
		return "U32"
	case KindString:
		return "String"
	case KindPointer:
		return "Pointer"
	case KindError:
		return "Error"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// ErrorKind is one of the runtime error taxonomy strings from §7. It
// is user-visible: it appears verbatim in log lines.
type ErrorKind string

const (
	ErrAccess      ErrorKind = "AccessError"
	ErrDeclaration ErrorKind = "DeclarationError"
	ErrConversion  ErrorKind = "ConversionError"
	ErrType        ErrorKind = "TypeError"
	ErrConst       ErrorKind = "ConstError"
	ErrArgument    ErrorKind = "ArgumentError"
	ErrController  ErrorKind = "ControllerError"
)

// Value is every concrete scalar/pointer/error ApicaType variant in a
// single struct. A scalar's payload pointer is nil when the value is
// "null-of-type" — the unset state §3 describes as the default before
// assignment. Because Value holds no slices or maps, an ordinary Go
// assignment is already the clone the spec asks for throughout (§3
// "Ownership and lifetime"); there is no separate Clone method.
type Value struct {
	kind Kind

	b   *bool
	u8  *uint8
	u32 *uint32
	s   *string

	ptrName   string
	ptrGlobal bool

	errKind    ErrorKind
	errDetails *string
}

// Kind reports the value's ApicaType tag.
func (v Value) Kind() Kind { return v.kind }

// Null constructs the Null value. It has no payload and no unset
// state of its own; it *is* the unset state other kinds widen to.
func Null() Value { return Value{kind: KindNull} }

// UnsetBool constructs a Bool value with no payload.
func UnsetBool() Value { return Value{kind: KindBool} }

// BoolOf constructs a Bool value holding b.
func BoolOf(b bool) Value { return Value{kind: KindBool, b: &b} }

// Bool returns the payload and whether it is set.
func (v Value) Bool() (bool, bool) {
	if v.b == nil {
		return false, false
	}
	return *v.b, true
}

// UnsetU8 constructs a U8 value with no payload.
func UnsetU8() Value { return Value{kind: KindU8} }

// U8Of constructs a U8 value holding n.
func U8Of(n uint8) Value { return Value{kind: KindU8, u8: &n} }

// U8 returns the payload and whether it is set.
func (v Value) U8() (uint8, bool) {
	if v.u8 == nil {
		return 0, false
	}
	return *v.u8, true
}

// UnsetU32 constructs a U32 value with no payload.
func UnsetU32() Value { return Value{kind: KindU32} }

// U32Of constructs a U32 value holding n.
func U32Of(n uint32) Value { return Value{kind: KindU32, u32: &n} }

// U32 returns the payload and whether it is set.
func (v Value) U32() (uint32, bool) {
	if v.u32 == nil {
		return 0, false
	}
	return *v.u32, true
}

// UnsetString constructs a String value with no payload.
func UnsetString() Value { return Value{kind: KindString} }

// StringOf constructs a String value holding s.
func StringOf(s string) Value { return Value{kind: KindString, s: &s} }

// Str returns the payload and whether it is set. Named Str rather
// than String to keep fmt.Stringer free for diagnostic rendering.
func (v Value) Str() (string, bool) {
	if v.s == nil {
		return "", false
	}
	return *v.s, true
}

// PointerOf constructs a symbolic, by-name reference to a binding
// (§9.2 — never a machine address).
func PointerOf(name string, global bool) Value {
	return Value{kind: KindPointer, ptrName: name, ptrGlobal: global}
}

// Pointer returns the referenced name and whether the lookup should
// start from the global scope.
func (v Value) Pointer() (name string, global bool) { return v.ptrName, v.ptrGlobal }

// ErrorOf constructs an Error value with details.
func ErrorOf(kind ErrorKind, details string) Value {
	return Value{kind: KindError, errKind: kind, errDetails: &details}
}

// ErrorOfKind constructs an Error value with no details.
func ErrorOfKind(kind ErrorKind) Value {
	return Value{kind: KindError, errKind: kind}
}

// ErrorInfo returns the error's kind and, if present, its details.
func (v Value) ErrorInfo() (kind ErrorKind, details string, hasDetails bool) {
	if v.errDetails == nil {
		return v.errKind, "", false
	}
	return v.errKind, *v.errDetails, true
}

// Format renders a value the way the logger's auto-String coercion
// does (§4.2: decimal integers, true/false, "null"), used both by
// AutoConvert(..., String) and by diagnostic dumps.
func (v Value) Format() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		if b, ok := v.Bool(); ok {
			if b {
				return "true"
			}
			return "false"
		}
		return "null"
	case KindU8:
		if n, ok := v.U8(); ok {
			return fmt.Sprintf("%d", n)
		}
		return "null"
	case KindU32:
		if n, ok := v.U32(); ok {
			return fmt.Sprintf("%d", n)
		}
		return "null"
	case KindString:
		if s, ok := v.Str(); ok {
			return s
		}
		return "null"
	case KindPointer:
		name, global := v.Pointer()
		return fmt.Sprintf("*%s(global=%v)", name, global)
	case KindError:
		kind, details, hasDetails := v.ErrorInfo()
		if hasDetails {
			return fmt.Sprintf("%s: %s", kind, details)
		}
		return string(kind)
	default:
		return "?"
	}
}
