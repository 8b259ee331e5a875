package eval

import (
	"fmt"

	"github.com/apica-run/apica-core/pkg/ast"
	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/element"
	"github.com/apica-run/apica-core/pkg/value"
)

// evalBuiltinFuncCall evaluates every argument as a value copy first
// (forwarding the first Error/Controller untouched), then dispatches
// the call per §6.2's builtin table.
func (e *Evaluator) evalBuiltinFuncCall(n *ast.BuiltinFuncCall, mode Mode) element.Element {
	args := make([]element.Element, 0, len(n.Args))
	for _, a := range n.Args {
		result := e.evalNode(a, mode|ModeCopyCall)
		if result.IsErrorOrController() {
			return result
		}
		args = append(args, result)
	}

	if e.stats != nil {
		e.stats.BuiltinCallsTotal.WithLabelValues(n.Builtin.String()).Inc()
	}

	switch n.Builtin {
	case bytecode.BuiltinLogInfo:
		e.logger.LogInfo(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLognInfo:
		e.logger.LognInfo(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLogSuccess:
		e.logger.LogSuccess(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLognSuccess:
		e.logger.LognSuccess(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLogWarning:
		e.logger.LogWarning(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLognWarning:
		e.logger.LognWarning(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLogError:
		e.logger.LogError(stringArgs(args))
		return element.Null()
	case bytecode.BuiltinLognError:
		e.logger.LognError(stringArgs(args))
		return element.Null()

	case bytecode.BuiltinQuit:
		e.rights.QuitApp()
		return element.Null()

	case bytecode.BuiltinSetTitle:
		title, ok := argAsString(args)
		if !ok {
			return argumentError(n.Builtin.String())
		}
		e.window.SetTitle(title)
		return element.Null()

	case bytecode.BuiltinSetResizable:
		resizable, ok := argAsBool(args)
		if !ok {
			return argumentError(n.Builtin.String())
		}
		e.window.SetResizable(resizable)
		return element.Null()

	case bytecode.BuiltinIsKeyReleased:
		return e.keyQuery(args, e.inputs.IsKeyReleased, n.Builtin.String())
	case bytecode.BuiltinIsKeyJustPressed:
		return e.keyQuery(args, e.inputs.IsKeyJustPressed, n.Builtin.String())
	case bytecode.BuiltinIsKeyPressed:
		return e.keyQuery(args, e.inputs.IsKeyPressed, n.Builtin.String())

	default:
		return element.CreateError(value.ErrorOf(value.ErrAccess, fmt.Sprintf("an undefined builtin func-call was found -> %s", n.Builtin)))
	}
}

// stringArgs coerces every parameter to String per §6.2, discarding a
// failed coercion as an empty string — the preceding evaluation loop
// already guarantees these are plain value copies, not Error/Controller
// Elements, so AutoConvert only fails here on a genuinely inconvertible
// payload (e.g. a Pointer could never reach this point; defensive
// only).
func stringArgs(args []element.Element) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		converted := value.AutoConvert(a.Value, value.KindString)
		s, _ := converted.Str()
		out = append(out, s)
	}
	return out
}

// argAsString requires exactly one String-convertible argument.
func argAsString(args []element.Element) (string, bool) {
	if len(args) != 1 {
		return "", false
	}
	converted := value.AutoConvert(args[0].Value, value.KindString)
	if converted.IsError() {
		return "", false
	}
	return converted.Str()
}

// argAsBool requires exactly one Bool-convertible argument.
func argAsBool(args []element.Element) (bool, bool) {
	if len(args) != 1 {
		return false, false
	}
	converted := value.AutoConvert(args[0].Value, value.KindBool)
	if converted.IsError() {
		return false, false
	}
	return converted.Bool()
}

// keyQuery requires exactly one U32-convertible scancode argument and
// reports the result as a plain (unmodified) Bool Element.
func (e *Evaluator) keyQuery(args []element.Element, query func(uint32) bool, name string) element.Element {
	if len(args) != 1 {
		return argumentError(name)
	}
	converted := value.AutoConvert(args[0].Value, value.KindU32)
	if converted.IsError() {
		return argumentError(name)
	}
	code, ok := converted.U32()
	if !ok {
		return argumentError(name)
	}
	return element.New(element.ModNone, value.BoolOf(query(code)))
}

func argumentError(name string) element.Element {
	return element.CreateError(value.ErrorOf(value.ErrArgument, fmt.Sprintf("incorrect arguments passed to the function `%s`", name)))
}
