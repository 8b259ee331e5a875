// Package eval implements the tree-walking evaluator (spec §4.4):
// evaluate_node dispatch, the Error/Controller propagation rule, and
// every per-node semantic. Grounded line-for-line on
// original_source/src/systems/evaluator.rs, with the 9.4 (scope leak)
// and 9.5 (while body result) open questions fixed per spec.md's
// authoritative description rather than replicated as bugs.
package eval

import (
	"fmt"

	"github.com/apica-run/apica-core/pkg/ast"
	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/context"
	"github.com/apica-run/apica-core/pkg/element"
	"github.com/apica-run/apica-core/pkg/host"
	"github.com/apica-run/apica-core/pkg/metrics"
	"github.com/apica-run/apica-core/pkg/rights"
	"github.com/apica-run/apica-core/pkg/value"
)

// Mode is the evaluation mode bitset (§4.4).
type Mode uint8

const ModeNone Mode = 0

const (
	ModeGlobal Mode = 1 << iota
	ModeCopyCall
)

func (m Mode) has(bit Mode) bool { return m&bit != 0 }

// Evaluator walks a Compound AST against a shared Context and a set
// of host adapters. It holds no AST of its own — that belongs to the
// Reader — and its Context is reset by the caller (pkg/runtime) on
// every load_app, not by this package.
type Evaluator struct {
	ctx    *context.Context
	logger host.Logger
	rights *rights.FSM
	window host.Window
	inputs host.Inputs
	stats  *metrics.Collectors
}

// New builds an Evaluator over the given shared systems.
func New(ctx *context.Context, logger host.Logger, fsm *rights.FSM, window host.Window, inputs host.Inputs) *Evaluator {
	return &Evaluator{ctx: ctx, logger: logger, rights: fsm, window: window, inputs: inputs}
}

// SetMetrics attaches a metrics.Collectors so every builtin dispatch is
// counted under apica_builtin_calls_total. Optional: while no
// Collectors are attached (never called, or called with nil), the
// Evaluator records no metrics.
func (e *Evaluator) SetMetrics(c *metrics.Collectors) { e.stats = c }

// Evaluate runs root top-to-bottom and logs the top-level outcome: an
// Error Element is formatted as "<kind>: <details>"; a Controller
// Element that reached here unhandled is a stray return/break/continue
// and logged as ControllerError (§4.4's "Top-level evaluate").
func (e *Evaluator) Evaluate(root *ast.Compound) element.Element {
	result := e.evalCompound(root, ModeNone)

	switch {
	case result.Has(element.ModError):
		kind, details, hasDetails := result.Value.ErrorInfo()
		if hasDetails {
			e.logger.SystemLognError(fmt.Sprintf("%s: %s", kind, details))
		} else {
			e.logger.SystemLognError(string(kind))
		}

	case result.Has(element.ModController):
		switch result.ControllerCode() {
		case element.ControlReturn:
			e.logger.SystemLognError("ControllerError: A corrupted return statement was evaluated")
		case element.ControlBreak:
			e.logger.SystemLognError("ControllerError: A corrupted break statement was evaluated")
		case element.ControlContinue:
			e.logger.SystemLognError("ControllerError: A corrupted continue statement was evaluated")
		}
	}

	return result
}

// evalNode is the per-node dispatch (§4.4).
func (e *Evaluator) evalNode(node ast.Node, mode Mode) element.Element {
	switch n := node.(type) {
	case *ast.Compound:
		return e.evalCompound(n, mode)
	case *ast.GlobalScope:
		return e.evalNode(n.Inner, mode|ModeGlobal)
	case *ast.Literal:
		return e.evalLiteral(n)
	case *ast.BuiltinFuncCall:
		return e.evalBuiltinFuncCall(n, mode)
	case *ast.VarConstCall:
		return e.evalVarConstCall(n, mode)
	case *ast.VarDecl:
		return e.evalDecl(n.Name, n.DeclaredType, n.Init, mode, false)
	case *ast.ConstDecl:
		return e.evalDecl(n.Name, n.DeclaredType, n.Init, mode, true)
	case *ast.Add:
		return e.evalAdd(n, mode)
	case *ast.Increment:
		return e.evalUnary(n.Operand, mode, value.Increment, "++")
	case *ast.Decrement:
		return e.evalUnary(n.Operand, mode, value.Decrement, "--")
	case *ast.Not:
		return e.evalUnary(n.Operand, mode, value.Not, "!")
	case *ast.TernaryOp:
		return e.evalTernary(n, mode)
	case *ast.If:
		return e.evalIf(n, mode)
	case *ast.IfElse:
		return e.evalIfElse(n, mode)
	case *ast.While:
		return e.evalWhile(n, mode)
	case *ast.Break:
		return element.CreateController(element.ControlBreak)
	case *ast.Continue:
		return element.CreateController(element.ControlContinue)
	case *ast.BlankReturn:
		return element.CreateController(element.ControlReturn)
	default:
		return element.CreateError(value.ErrorOf(value.ErrAccess, fmt.Sprintf("unhandled node type %T", node)))
	}
}

// evalCompound pushes a scope, evaluates children in order under the
// inherited mode, and always pops the scope on the way out — including
// on an early Error/Controller return (the 9.4 fix: the original left
// the scope on the stack in that path).
func (e *Evaluator) evalCompound(n *ast.Compound, mode Mode) element.Element {
	e.ctx.PushScope()
	defer e.ctx.PopScope()

	for _, child := range n.Children {
		result := e.evalNode(child, mode)
		if result.IsErrorOrController() {
			return result
		}
	}
	return element.Null()
}

// evalLiteral normalises the decoded value through a self-conversion,
// mirroring the original's literal.get_value().auto_convert(<its own
// kind>) — effectively a defensive clone.
func (e *Evaluator) evalLiteral(n *ast.Literal) element.Element {
	return element.New(element.ModNone, value.AutoConvert(n.Value, n.Value.Kind()))
}

// evalVarConstCall looks up name under the requested scope. CopyCall
// materialises a value copy (losing Const/Global); otherwise a Pointer
// Element is returned, preserving the binding's own modifier bits so a
// later Increment/Decrement/Not can see it was Const.
func (e *Evaluator) evalVarConstCall(n *ast.VarConstCall, mode Mode) element.Element {
	global := mode.has(ModeGlobal)
	found, ok := e.ctx.GetElement(n.Name, global)
	if !ok {
		return element.CreateError(value.ErrorOf(value.ErrAccess, fmt.Sprintf("cannot find a reference to a var/const -> %s", n.Name)))
	}

	if mode.has(ModeCopyCall) {
		return found.AutoConvert(found.Value.Kind())
	}
	return element.New(found.Modifier, value.PointerOf(n.Name, global))
}

// evalDecl is shared by VarDecl and ConstDecl: evaluate the
// initializer as a value copy, check_convert it to the declared type,
// and attempt to bind it in the target scope.
func (e *Evaluator) evalDecl(name string, declType bytecode.TypeTag, init ast.Node, mode Mode, isConst bool) element.Element {
	result := e.evalNode(init, ModeCopyCall)
	if result.IsErrorOrController() {
		return result
	}

	converted := result.CheckConvert(typeTagKind(declType))
	if converted.IsErrorOrController() {
		return converted
	}
	if isConst {
		converted = converted.WithConst()
	}

	global := mode.has(ModeGlobal)
	if !e.ctx.SetElement(name, converted, global) {
		return element.CreateError(value.ErrorOf(value.ErrDeclaration, fmt.Sprintf("an element with this name already exists -> %s", name)))
	}
	return element.Null()
}

// evalAdd evaluates both operands as value copies and delegates to
// value.Add.
func (e *Evaluator) evalAdd(n *ast.Add, mode Mode) element.Element {
	left := e.evalNode(n.Left, mode|ModeCopyCall)
	if left.IsErrorOrController() {
		return left
	}
	right := e.evalNode(n.Right, mode|ModeCopyCall)
	if right.IsErrorOrController() {
		return right
	}

	result := value.Add(left.Value, right.Value)
	if result.IsError() {
		return element.CreateError(result)
	}
	return element.New(element.ModNone, result)
}

// evalUnary implements Increment/Decrement/Not: the operand is
// evaluated without CopyCall so a variable reference surfaces as a
// Pointer. A Const binding errors regardless of which of the three
// operators is being applied — spec.md §4.4 states the rule for all
// three together, unlike the original Rust, whose evaluate_not omits
// the check; the omission reads as an inconsistency rather than an
// intentional asymmetry, so it is fixed here too.
func (e *Evaluator) evalUnary(operand ast.Node, mode Mode, op func(value.Value) value.Value, symbol string) element.Element {
	evaluated := e.evalNode(operand, mode&^ModeCopyCall)
	if evaluated.IsErrorOrController() {
		return evaluated
	}

	if evaluated.Has(element.ModConst) {
		return element.CreateError(value.ErrorOf(value.ErrConst, fmt.Sprintf("cannot perform a `%s` unary operation on a constant", symbol)))
	}

	if evaluated.Value.Kind() == value.KindPointer {
		name, global := evaluated.Value.Pointer()
		cur, ok := e.ctx.GetElement(name, global)
		if !ok {
			return element.CreateError(value.ErrorOf(value.ErrAccess, fmt.Sprintf("cannot find the value of a var/const -> %s", name)))
		}

		newVal := op(cur.Value)
		if newVal.IsError() {
			// Propagate without committing -- a failed op must leave the
			// binding as it was, the same no-write behavior the Const
			// check above already gives a constant binding.
			return element.CreateError(newVal)
		}

		updated, ok := e.ctx.MutateElement(name, global, func(element.Element) element.Element {
			return element.New(cur.Modifier, newVal)
		})
		if !ok {
			return element.CreateError(value.ErrorOf(value.ErrAccess, fmt.Sprintf("cannot find the value of a var/const -> %s", name)))
		}
		return updated
	}

	newVal := op(evaluated.Value)
	if newVal.IsError() {
		return element.CreateError(newVal)
	}
	return element.New(evaluated.Modifier, newVal)
}

// evalTernary evaluates the condition as a Bool-checked value copy,
// then the matching branch under the inherited mode.
func (e *Evaluator) evalTernary(n *ast.TernaryOp, mode Mode) element.Element {
	cond := e.evalNode(n.Cond, ModeCopyCall).CheckConvert(value.KindBool)
	if cond.IsErrorOrController() {
		return cond
	}
	taken, _ := cond.Value.Bool()
	if taken {
		return e.evalNode(n.Then, mode)
	}
	return e.evalNode(n.Else, mode)
}

// evalIf runs Body only when Cond holds; its own result is always
// Null on success, forwarding any Error/Controller out of the body.
func (e *Evaluator) evalIf(n *ast.If, mode Mode) element.Element {
	cond := e.evalNode(n.Cond, ModeCopyCall).CheckConvert(value.KindBool)
	if cond.IsErrorOrController() {
		return cond
	}
	taken, _ := cond.Value.Bool()
	if taken {
		if body := e.evalNode(n.Body, mode); body.IsErrorOrController() {
			return body
		}
	}
	return element.Null()
}

// evalIfElse is evalIf with a mandatory Else branch.
func (e *Evaluator) evalIfElse(n *ast.IfElse, mode Mode) element.Element {
	cond := e.evalNode(n.Cond, ModeCopyCall).CheckConvert(value.KindBool)
	if cond.IsErrorOrController() {
		return cond
	}
	taken, _ := cond.Value.Bool()
	var body element.Element
	if taken {
		body = e.evalNode(n.Then, mode)
	} else {
		body = e.evalNode(n.Else, mode)
	}
	if body.IsErrorOrController() {
		return body
	}
	return element.Null()
}

// evalWhile is the corrected 9.5 behaviour: the body's result is
// checked after every iteration. break exits the loop (swallowed,
// returns Null); continue re-evaluates the condition (swallowed);
// anything else — an Error, or a blank return (Controller code 0) —
// propagates immediately without re-checking the condition. The
// original's evaluate_while discards the body's result entirely,
// which would let break/continue/return/errors from inside a loop
// vanish silently.
func (e *Evaluator) evalWhile(n *ast.While, mode Mode) element.Element {
	cond := e.evalNode(n.Cond, ModeCopyCall).CheckConvert(value.KindBool)
	if cond.IsErrorOrController() {
		return cond
	}
	held, _ := cond.Value.Bool()

	for held {
		body := e.evalNode(n.Body, mode)
		if body.IsErrorOrController() {
			if body.Has(element.ModController) {
				switch body.ControllerCode() {
				case element.ControlBreak:
					return element.Null()
				case element.ControlContinue:
					cond = e.evalNode(n.Cond, ModeCopyCall).CheckConvert(value.KindBool)
					if cond.IsErrorOrController() {
						return cond
					}
					held, _ = cond.Value.Bool()
					continue
				}
			}
			return body
		}

		cond = e.evalNode(n.Cond, ModeCopyCall).CheckConvert(value.KindBool)
		if cond.IsErrorOrController() {
			return cond
		}
		held, _ = cond.Value.Bool()
	}

	return element.Null()
}

// typeTagKind maps a decoded declared-type tag to the value.Kind it
// names for check_convert purposes.
func typeTagKind(t bytecode.TypeTag) value.Kind {
	switch t {
	case bytecode.TypeNull:
		return value.KindNull
	case bytecode.TypeU8:
		return value.KindU8
	case bytecode.TypeU32:
		return value.KindU32
	case bytecode.TypeBool:
		return value.KindBool
	case bytecode.TypeString:
		return value.KindString
	default:
		return value.KindNull
	}
}
