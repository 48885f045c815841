package parse

import (
	"math/big"
	"regexp"

	"github.com/krillsh/krill/pkg/diag"
)

// Node is implemented by every AST node. Nodes are immutable after parsing;
// spans are used for diagnostics only, never for semantics.
type Node interface {
	diag.Ranger
}

// Compound is a top-level or block-level unit: a Statement or an Expr.
type Compound interface {
	Node
	compound()
}

// Statement is a non-expression compound.
type Statement interface {
	Compound
	stmt()
}

// Expr is an expression node.
type Expr interface {
	Compound
	expr()
}

// AST is the result of parsing one source unit.
type AST struct {
	Source   Source
	Sequence []Compound
}

// Source describes a piece of source code.
type Source struct {
	Name string
	Code string
}

type stmtNode struct{ diag.Ranging }

func (stmtNode) compound() {}
func (stmtNode) stmt()     {}

type exprNode struct{ diag.Ranging }

func (exprNode) compound() {}
func (exprNode) expr()     {}

// BinOp is a binary operator.
type BinOp int

const (
	OpAdd BinOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpRange
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe
	OpAnd
	OpOr
)

var binOpNames = [...]string{
	OpAdd: "+", OpSub: "-", OpMul: "*", OpDiv: "/", OpMod: "%",
	OpPow: "**", OpRange: "..",
	OpEq: "==", OpNe: "!=", OpLt: "<", OpLe: "<=", OpGt: ">", OpGe: ">=",
	OpAnd: "&&", OpOr: "||",
}

func (op BinOp) String() string { return binOpNames[op] }

// Assoc is the associativity of a binary operator.
type Assoc int

const (
	Left Assoc = iota
	Right
)

// Precedence returns the binding strength and associativity used by the
// precedence climb.
func (op BinOp) Precedence() (int, Assoc) {
	switch op {
	case OpPow:
		return 9, Right
	case OpMul:
		return 8, Left
	case OpDiv, OpMod:
		return 7, Left
	case OpSub:
		return 6, Left
	case OpAdd:
		return 5, Left
	case OpRange:
		return 4, Left
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return 3, Left
	default: // OpAnd, OpOr
		return 2, Left
	}
}

// IsComparison reports whether the operator is a comparison. Comparisons do
// not chain.
func (op BinOp) IsComparison() bool {
	switch op {
	case OpEq, OpNe, OpLt, OpLe, OpGt, OpGe:
		return true
	}
	return false
}

// UnOp is a unary prefix operator.
type UnOp int

const (
	OpNeg UnOp = iota
	OpNot
)

func (op UnOp) String() string {
	if op == OpNeg {
		return "-"
	}
	return "!"
}

// Statements.

// Block is a brace-delimited sequence of compounds.
type Block struct {
	stmtNode
	Sequence []Compound
}

// Decl is a let or export declaration with an initializer.
type Decl struct {
	stmtNode
	Var    *VarRef
	Rhs    Expr
	Export bool
}

// Assignment is a plain assignment to a variable.
type Assignment struct {
	stmtNode
	Var *VarRef
	Rhs Expr
}

// AssignOp is a compound assignment like +=.
type AssignOp struct {
	stmtNode
	Var *VarRef
	Op  BinOp
	Rhs Expr
}

// IfStmt is an if statement with an optional else branch; Else is nil,
// another *IfStmt (else if) or a *Block.
type IfStmt struct {
	stmtNode
	Cond Expr
	Body *Block
	Else Statement
}

// WhileStmt loops while the condition is truthy.
type WhileStmt struct {
	stmtNode
	Cond Expr
	Body *Block
}

// LoopStmt loops until broken out of.
type LoopStmt struct {
	stmtNode
	Body *Block
}

// ForStmt binds each element of the iterated value in turn.
type ForStmt struct {
	stmtNode
	Var  *VarRef
	Iter Expr
	Body *Block
}

// FnDecl declares a named function.
type FnDecl struct {
	stmtNode
	Name   string
	Params []*VarRef
	Body   *Block
}

// ReturnStmt returns from the enclosing function, optionally with a value.
type ReturnStmt struct {
	stmtNode
	Value Expr // may be nil
}

// BreakStmt exits the innermost loop.
type BreakStmt struct{ stmtNode }

// ContinueStmt skips to the next iteration of the innermost loop.
type ContinueStmt struct{ stmtNode }

// Expressions.

// VarRef is a reference to a variable, without the $ sigil in Name.
type VarRef struct {
	exprNode
	Name string
}

// Binary applies a binary operator.
type Binary struct {
	exprNode
	Op       BinOp
	LHS, RHS Expr
}

// Unary applies a unary prefix operator.
type Unary struct {
	exprNode
	Op      UnOp
	Operand Expr
}

// SubExpr is a parenthesized expression.
type SubExpr struct {
	exprNode
	Inner Expr
}

// ErrorCheck is the ?(expr) form: true if the expression evaluates without
// a runtime error.
type ErrorCheck struct {
	exprNode
	Inner Expr
}

// Column accesses a named column or map key: expr.name.
type Column struct {
	exprNode
	Expr Expr
	Name string
}

// Index accesses an element by index or key: expr[index].
type Index struct {
	exprNode
	Expr  Expr
	Index Expr
}

// Closure is a closure literal {|a, b| ...}.
type Closure struct {
	exprNode
	Params []*VarRef
	Body   *Block
}

// Pipeline is an ordered chain of calls and redirects. A single call
// still parses as a Pipeline of one element.
type Pipeline struct {
	exprNode
	Items []Expr
}

// Call is a command invocation: name parts followed by arguments.
type Call struct {
	exprNode
	Command []CommandPart
	Args    []*Argument
}

// RedirDir is the direction of a redirect.
type RedirDir int

const (
	RedirOut RedirDir = iota
	RedirIn
)

// Redirect attaches file input or output to the preceding call in a Pipe.
type Redirect struct {
	exprNode
	Dir    RedirDir
	Append bool
	File   *Argument
}

// CommandPart is one fragment of a command name; fragments are stringified
// and concatenated at evaluation time.
type CommandPart interface {
	Node
	commandPart()
}

// BareCmd is literal command-name text.
type BareCmd struct {
	diag.Ranging
	Text string
}

// VarCmd is a variable used as (part of) a command name.
type VarCmd struct {
	diag.Ranging
	Var *VarRef
}

// ExpandCmd is an interpolated string used as (part of) a command name.
type ExpandCmd struct {
	diag.Ranging
	Expand *Expand
}

func (BareCmd) commandPart()   {}
func (VarCmd) commandPart()    {}
func (ExpandCmd) commandPart() {}

// Literals.

// StringLit is a raw or bare string literal.
type StringLit struct {
	exprNode
	Value string
}

// IntLit is an integer literal, arbitrary precision until narrowed at
// evaluation.
type IntLit struct {
	exprNode
	Value *big.Int
	Text  string
}

// FloatLit is a float literal.
type FloatLit struct {
	exprNode
	Value float64
	Text  string
}

// BoolLit is true or false.
type BoolLit struct {
	exprNode
	Value bool
}

// ListLit is a list literal [a, b].
type ListLit struct {
	exprNode
	Items []Expr
}

// MapPair is one key: value entry of a map literal.
type MapPair struct {
	Key, Value Expr
}

// MapLit is a map literal @{k: v} or {k: v}; pairs keep source order.
type MapLit struct {
	exprNode
	Pairs []MapPair
}

// RegexLit is a regex literal @'...', compiled once at parse time and paired
// with its source text.
type RegexLit struct {
	exprNode
	Pattern *regexp.Regexp
	Text    string
}

// ExpandLit is an interpolated string literal used in expression position.
type ExpandLit struct {
	exprNode
	Expand *Expand
}

// Expand is an interpolated string: ordered literal-text, variable and
// sub-expression fragments resolved at evaluation time.
type Expand struct {
	diag.Ranging
	Parts []ExpandPart
}

// ExpandPart is one fragment of an interpolated string.
type ExpandPart interface {
	Node
	expandPart()
}

// ExpandText is literal text inside an interpolated string, escapes decoded.
type ExpandText struct {
	diag.Ranging
	Text string
}

// ExpandVar is an embedded $variable.
type ExpandVar struct {
	diag.Ranging
	Var *VarRef
}

// ExpandExpr is an embedded (expression).
type ExpandExpr struct {
	diag.Ranging
	Expr Expr
}

func (ExpandText) expandPart() {}
func (ExpandVar) expandPart()  {}
func (ExpandExpr) expandPart() {}

// Arguments.

// Argument is an ordered list of parts that evaluate to a single value or,
// when glob metacharacters are present, to a list of matched paths.
type Argument struct {
	diag.Ranging
	Parts []ArgumentPart
}

// ArgumentPart is one fragment of an argument.
type ArgumentPart interface {
	Node
	argumentPart()
}

// BareArg is bare text; the only part kind whose glob metacharacters stay
// live during expansion.
type BareArg struct {
	diag.Ranging
	Text string
}

// QuotedArg is single-quoted text, matched literally.
type QuotedArg struct {
	diag.Ranging
	Text string
}

// ExpandArg is an interpolated string part.
type ExpandArg struct {
	diag.Ranging
	Expand *Expand
}

// VarArg is a variable part.
type VarArg struct {
	diag.Ranging
	Var *VarRef
}

// IntArg is an integer literal part.
type IntArg struct {
	diag.Ranging
	Value *big.Int
	Text  string
}

// FloatArg is a float literal part.
type FloatArg struct {
	diag.Ranging
	Value float64
	Text  string
}

// ExprArg is a sub-expression, list, map, regex or closure part.
type ExprArg struct {
	diag.Ranging
	Expr Expr
}

func (BareArg) argumentPart()   {}
func (QuotedArg) argumentPart() {}
func (ExpandArg) argumentPart() {}
func (VarArg) argumentPart()    {}
func (IntArg) argumentPart()    {}
func (FloatArg) argumentPart()  {}
func (ExprArg) argumentPart()   {}
