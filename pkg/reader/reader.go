// Package reader implements the bytecode decoder (spec §4.1): a
// single-pass, allocate-once walk over an .apb byte stream producing a
// map from entrypoint id to its Compound root. Grounded on
// original_source/src/systems/reader.rs's single-pass per-entrypoint
// decode loop.
package reader

import (
	"fmt"
	"io"

	"github.com/apica-run/apica-core/pkg/ast"
	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/value"
)

// decoder carries the byte-stream cursor and the list of non-fatal
// decode errors accumulated along the way (§4.1: a malformed entry or
// node never aborts the whole stream, it is logged and skipped).
type decoder struct {
	r    io.Reader
	errs []error
}

func (d *decoder) errorf(format string, args ...any) {
	d.errs = append(d.errs, fmt.Errorf(format, args...))
}

// scanTag reads tag words until one names a Tag this build recognises,
// or the stream is exhausted. This is the single mechanism behind both
// of §4.1's "unknown tag" rules: at the outer (entry) position it
// resyncs to the next Entrypoint/EndOfFile; inside a node list it
// resyncs to the next node tag or EndOfBlock. Each skipped word is
// recorded as an error.
func (d *decoder) scanTag() (bytecode.Tag, bool) {
	for {
		word, ok := bytecode.ReadU64(d.r)
		if !ok {
			return 0, false
		}
		tag, known := bytecode.TagFromUint64(word)
		if known {
			return tag, true
		}
		d.errorf("unknown tag word %d, skipping", word)
	}
}

// Decode reads entries until EndOfFile or the stream is exhausted,
// returning the decoded entrypoint map and every non-fatal error
// encountered along the way.
func Decode(r io.Reader) (map[bytecode.EntrypointTag]*ast.Compound, []error) {
	d := &decoder{r: r}
	entries := map[bytecode.EntrypointTag]*ast.Compound{}

	for {
		tag, ok := d.scanTag()
		if !ok || tag == bytecode.TagEndOfFile {
			break
		}
		if tag != bytecode.TagEntrypoint {
			d.errorf("unexpected tag %s at entry position", tag)
			continue
		}

		epTag, epOK := bytecode.ReadEntrypointTag(d.r)
		if !epOK {
			d.errorf("invalid or truncated entrypoint tag")
			continue
		}

		children, ok := d.decodeNodeList()
		if !ok {
			d.errorf("truncated entry body for %s", epTag)
			break
		}
		entries[epTag] = &ast.Compound{Children: children}
	}

	return entries, d.errs
}

// decodeNodeList decodes a `<node>* EndOfBlock` run, the shape shared
// by an entry body, a Compound, a GlobalScope, and a BuiltinFuncCall's
// argument list. A node that fails to decode is skipped, not fatal to
// the list (§4.1's "the node is skipped, not the whole program").
func (d *decoder) decodeNodeList() ([]ast.Node, bool) {
	var nodes []ast.Node
	for {
		tag, ok := d.scanTag()
		if !ok {
			return nodes, false
		}
		if tag == bytecode.TagEndOfBlock {
			return nodes, true
		}
		if tag == bytecode.TagEntrypoint || tag == bytecode.TagEndOfFile {
			d.errorf("unexpected structural tag %s inside node list", tag)
			return nodes, false
		}
		if node, ok := d.decodeNodeBody(tag); ok {
			nodes = append(nodes, node)
		}
	}
}

// decodeSingle decodes exactly one required child node, used by
// operators/decls whose grammar calls for a fixed single <node>
// (Add's operands, If's condition, ...).
func (d *decoder) decodeSingle() (ast.Node, bool) {
	tag, ok := d.scanTag()
	if !ok {
		return nil, false
	}
	if tag == bytecode.TagEndOfBlock || tag == bytecode.TagEntrypoint || tag == bytecode.TagEndOfFile {
		d.errorf("unexpected structural tag %s where a node was required", tag)
		return nil, false
	}
	return d.decodeNodeBody(tag)
}

// decodeNodeBody decodes the payload for an already-identified node
// tag, per §4.1's payload table.
func (d *decoder) decodeNodeBody(tag bytecode.Tag) (ast.Node, bool) {
	switch tag {
	case bytecode.TagCompound:
		children, _ := d.decodeNodeList()
		return &ast.Compound{Children: children}, true

	case bytecode.TagGlobalScope:
		children, _ := d.decodeNodeList()
		return &ast.GlobalScope{Inner: &ast.Compound{Children: children}}, true

	case bytecode.TagLiteral:
		return d.decodeLiteral()

	case bytecode.TagBuiltinFuncCall:
		builtin, ok := bytecode.ReadBuiltinTag(d.r)
		if !ok {
			d.errorf("unknown or truncated builtin tag")
			return nil, false
		}
		args, _ := d.decodeNodeList()
		return &ast.BuiltinFuncCall{Builtin: builtin, Args: args}, true

	case bytecode.TagVarConstCall:
		name, ok := bytecode.ReadString(d.r)
		if !ok {
			return nil, false
		}
		return &ast.VarConstCall{Name: name}, true

	case bytecode.TagVarDecl, bytecode.TagConstDecl:
		name, ok := bytecode.ReadString(d.r)
		if !ok {
			return nil, false
		}
		declType, ok := bytecode.ReadTypeTag(d.r)
		if !ok {
			d.errorf("unknown or truncated declared type tag for %q", name)
			return nil, false
		}
		init, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		if tag == bytecode.TagVarDecl {
			return &ast.VarDecl{Name: name, DeclaredType: declType, Init: init}, true
		}
		return &ast.ConstDecl{Name: name, DeclaredType: declType, Init: init}, true

	case bytecode.TagAdd:
		left, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		right, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		return &ast.Add{Left: left, Right: right}, true

	case bytecode.TagIncrement, bytecode.TagDecrement, bytecode.TagNot:
		operand, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		switch tag {
		case bytecode.TagIncrement:
			return &ast.Increment{Operand: operand}, true
		case bytecode.TagDecrement:
			return &ast.Decrement{Operand: operand}, true
		default:
			return &ast.Not{Operand: operand}, true
		}

	case bytecode.TagQuestionOperation:
		cond, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		then, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		els, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		return &ast.TernaryOp{Cond: cond, Then: then, Else: els}, true

	case bytecode.TagIf:
		cond, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		body, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		return &ast.If{Cond: cond, Body: body}, true

	case bytecode.TagIfElse:
		cond, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		then, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		els, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		return &ast.IfElse{Cond: cond, Then: then, Else: els}, true

	case bytecode.TagWhile:
		cond, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		body, ok := d.decodeSingle()
		if !ok {
			return nil, false
		}
		return &ast.While{Cond: cond, Body: body}, true

	case bytecode.TagBreak:
		return &ast.Break{}, true
	case bytecode.TagContinue:
		return &ast.Continue{}, true
	case bytecode.TagBlankReturn:
		return &ast.BlankReturn{}, true

	default:
		d.errorf("unhandled node tag %s", tag)
		return nil, false
	}
}

// decodeLiteral decodes a Literal's `<type-tag>` then its
// type-specific payload (§4.1's table).
func (d *decoder) decodeLiteral() (ast.Node, bool) {
	typeTag, ok := bytecode.ReadTypeTag(d.r)
	if !ok {
		d.errorf("unknown or truncated literal type tag")
		return nil, false
	}

	switch typeTag {
	case bytecode.TypeNull:
		return &ast.Literal{Type: typeTag, Value: value.Null()}, true

	case bytecode.TypeU8:
		n, ok := bytecode.ReadU8(d.r)
		if !ok {
			return nil, false
		}
		return &ast.Literal{Type: typeTag, Value: value.U8Of(n)}, true

	case bytecode.TypeU32:
		n, ok := bytecode.ReadU32(d.r)
		if !ok {
			return nil, false
		}
		return &ast.Literal{Type: typeTag, Value: value.U32Of(n)}, true

	case bytecode.TypeBool:
		n, ok := bytecode.ReadU8(d.r)
		if !ok {
			return nil, false
		}
		return &ast.Literal{Type: typeTag, Value: value.BoolOf(n != 0)}, true

	case bytecode.TypeString:
		s, ok := bytecode.ReadString(d.r)
		if !ok {
			return nil, false
		}
		return &ast.Literal{Type: typeTag, Value: value.StringOf(s)}, true

	default:
		d.errorf("unhandled literal type tag %s", typeTag)
		return nil, false
	}
}
