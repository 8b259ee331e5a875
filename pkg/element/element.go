// Package element implements the Element type (spec §3): a Value
// wrapped with a modifier bitset used for attribute tracking (Const,
// Global) and for carrying non-local control flow (Controller, Error)
// through evaluation results.
package element

import "github.com/apica-run/apica-core/pkg/value"

// Modifier is the Element attribute/control-flow bitset.
type Modifier uint8

const (
	ModNone       Modifier = 0
	ModConst      Modifier = 1 << iota
	ModGlobal     Modifier = 1 << iota
	ModController Modifier = 1 << iota
	ModError      Modifier = 1 << iota
)

// Controller payload codes (§3: "the U8 payload encodes 0=return,
// 1=break, 2=continue").
const (
	ControlReturn   uint8 = 0
	ControlBreak    uint8 = 1
	ControlContinue uint8 = 2
)

// Element pairs a modifier bitset with a Value. It is the unit of
// evaluation results throughout pkg/eval.
type Element struct {
	Modifier Modifier
	Value    value.Value
}

// New constructs an Element directly.
func New(mod Modifier, v value.Value) Element {
	return Element{Modifier: mod, Value: v}
}

// Null is the Null Element with no modifier bits set — the default
// successful result of a statement that produces no value.
func Null() Element {
	return Element{Value: value.Null()}
}

// CreateError wraps an Error value as a propagating-error Element.
func CreateError(v value.Value) Element {
	return Element{Modifier: ModError, Value: v}
}

// CreateController constructs a Controller Element for return (0),
// break (1), or continue (2).
func CreateController(code uint8) Element {
	return Element{Modifier: ModController, Value: value.U8Of(code)}
}

// Has reports whether mod is set on e.
func (e Element) Has(mod Modifier) bool { return e.Modifier&mod != 0 }

// IsErrorOrController is the propagation test every parent node in
// pkg/eval runs on a child's result (§4.4's "Propagation rule" and
// P4): if true, the parent must return e unchanged instead of
// continuing to evaluate.
func (e Element) IsErrorOrController() bool {
	return e.Has(ModError) || e.Has(ModController)
}

// ControllerCode returns the Controller payload, valid only when
// Has(ModController) is true.
func (e Element) ControllerCode() uint8 {
	n, _ := e.Value.U8()
	return n
}

// WithConst returns a copy of e with the Const bit set, used by
// ConstDecl to flag the stored Element immutable.
func (e Element) WithConst() Element {
	return Element{Modifier: e.Modifier | ModConst, Value: e.Value}
}

// AutoConvert applies value.AutoConvert to e's payload and returns a
// *fresh* Element: a value copy carries none of the source's Const or
// Global attribute bits (only a Pointer reference preserves those —
// see pkg/eval's VarConstCall handling), but it does pick up the
// Error bit if the conversion itself failed.
func (e Element) AutoConvert(target value.Kind) Element {
	converted := value.AutoConvert(e.Value, target)
	if converted.IsError() {
		return CreateError(converted)
	}
	return Element{Value: converted}
}

// CheckConvert is AutoConvert under the name spec.md §4.2 uses at
// declaration sites: the declared type check for VarDecl/ConstDecl
// initializers is exactly the coercion check, nothing more is added
// on top.
func (e Element) CheckConvert(target value.Kind) Element {
	return e.AutoConvert(target)
}
