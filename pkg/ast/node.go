// Package ast defines the closed set of decoded program node shapes
// (spec §3's Node union, §4.1's per-node payload table). The set is
// fixed and known at decode time, so it is modelled as a sealed
// interface rather than left open for extension (§9.1).
package ast

import (
	"github.com/apica-run/apica-core/pkg/bytecode"
	"github.com/apica-run/apica-core/pkg/value"
)

// Node is implemented only by the types in this package. The
// unexported marker method keeps the union closed the way
// pkg/vm/stackitem seals Item in the teacher.
type Node interface {
	node()
}

// Compound is a sequence of statements evaluated under a freshly
// pushed scope.
type Compound struct {
	Children []Node
}

func (*Compound) node() {}

// GlobalScope evaluates Inner with the Global evaluation bit set.
type GlobalScope struct {
	Inner Node
}

func (*GlobalScope) node() {}

// Literal is a decoded constant of a known ApicaType.
type Literal struct {
	Type  bytecode.TypeTag
	Value value.Value
}

func (*Literal) node() {}

// BuiltinFuncCall invokes a host-surface builtin with evaluated Args.
type BuiltinFuncCall struct {
	Builtin bytecode.BuiltinTag
	Args    []Node
}

func (*BuiltinFuncCall) node() {}

// VarConstCall references a binding by name.
type VarConstCall struct {
	Name string
}

func (*VarConstCall) node() {}

// VarDecl introduces a mutable binding, check-converting Init to
// DeclaredType.
type VarDecl struct {
	Name         string
	DeclaredType bytecode.TypeTag
	Init         Node
}

func (*VarDecl) node() {}

// ConstDecl introduces an immutable binding, check-converting Init to
// DeclaredType.
type ConstDecl struct {
	Name         string
	DeclaredType bytecode.TypeTag
	Init         Node
}

func (*ConstDecl) node() {}

// Add is the binary `+` operator.
type Add struct {
	Left, Right Node
}

func (*Add) node() {}

// Increment is the prefix `++` operator.
type Increment struct {
	Operand Node
}

func (*Increment) node() {}

// Decrement is the prefix `--` operator.
type Decrement struct {
	Operand Node
}

func (*Decrement) node() {}

// Not is the unary `!` operator.
type Not struct {
	Operand Node
}

func (*Not) node() {}

// TernaryOp is the decoded form of the wire's QuestionOperation node
// (§4.1's table names the wire tag QuestionOperation; §3's Node union
// names the AST shape TernaryOp — same node, two names for two
// layers).
type TernaryOp struct {
	Cond, Then, Else Node
}

func (*TernaryOp) node() {}

// If runs Body when Cond is true; there is no else-branch.
type If struct {
	Cond, Body Node
}

func (*If) node() {}

// IfElse runs Then or Else depending on Cond.
type IfElse struct {
	Cond, Then, Else Node
}

func (*IfElse) node() {}

// While repeatedly evaluates Body while Cond holds.
type While struct {
	Cond, Body Node
}

func (*While) node() {}

// Break, Continue and BlankReturn carry no payload; their meaning is
// entirely in their Controller code (§4.4).
type Break struct{}

func (*Break) node() {}

type Continue struct{}

func (*Continue) node() {}

type BlankReturn struct{}

func (*BlankReturn) node() {}
