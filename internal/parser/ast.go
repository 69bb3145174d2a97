// Package parser implements the Pulse dialect recursive descent parser
// and AST definitions.
package parser

import (
	"fmt"
	"strings"

	"github.com/pulse-lang/pulse/internal/lexer"
	"github.com/pulse-lang/pulse/internal/position"
	"github.com/pulse-lang/pulse/internal/types"
)

// SyntaxVersion tags a program with the dialect it was written in.
type SyntaxVersion string

const (
	SyntaxLegacy SyntaxVersion = "legacy"
	SyntaxModern SyntaxVersion = "modern"
)

// Node represents the base interface for all AST nodes
type Node interface {
	// GetSpan returns the source span for this node
	GetSpan() position.Span
	// String returns a string representation of the node
	String() string
}

// Statement represents all statement nodes
type Statement interface {
	Node
	statementNode()
	// Terminated reports whether the statement ended with an explicit
	// terminator; false means the boundary was inferred.
	Terminated() bool
}

// Expression represents all expression nodes
type Expression interface {
	Node
	expressionNode()
}

// Declaration represents all declaration nodes
type Declaration interface {
	Statement
	declarationNode()
}

// TokenToPosition converts a token into a Position
func TokenToPosition(tok lexer.Token) position.Position {
	return position.Position{
		Line:   tok.Line,
		Column: tok.Column,
		Offset: tok.Index,
	}
}

// TokenToSpan converts a token into a single-token Span
func TokenToSpan(tok lexer.Token) position.Span {
	start := TokenToPosition(tok)
	end := start
	end.Column += len(tok.Text)
	end.Offset += len(tok.Text)
	return position.Span{Start: start, End: end}
}

// SpanBetween builds a span covering two positions
func SpanBetween(start, end position.Position) position.Span {
	return position.Span{Start: start, End: end}
}

// ====== Program ======

// Program represents the root of the AST. It is created once per
// parse call and is immutable after return.
type Program struct {
	Span          position.Span
	SyntaxVersion SyntaxVersion
	Statements    []Statement
}

func (p *Program) GetSpan() position.Span { return p.Span }
func (p *Program) String() string         { return fmt.Sprintf("Program(%d statements)", len(p.Statements)) }

// ====== Declarations ======

// VariableDeclaration represents a $-prefixed binding declaration.
type VariableDeclaration struct {
	Span              position.Span
	Name              string
	TypeAnnotation    *types.Type // explicit annotation, nil when absent
	InferredType      types.Type
	Initializer       Expression
	HasDollarPrefix   bool
	HasReactiveSuffix bool
	IsReactive        bool
	ASITerminated     bool

	// Reactive metadata; nil for non-reactive declarations. Absence is
	// meaningful: downstream consumers treat a missing list differently
	// from an empty one.
	UpdateTriggers []string
	Dependencies   []string
}

func (v *VariableDeclaration) GetSpan() position.Span { return v.Span }
func (v *VariableDeclaration) String() string         { return fmt.Sprintf("$%s", v.Name) }
func (v *VariableDeclaration) statementNode()         {}
func (v *VariableDeclaration) declarationNode()       {}
func (v *VariableDeclaration) Terminated() bool       { return !v.ASITerminated }

// Parameter represents a function parameter
type Parameter struct {
	Span           position.Span
	Name           string
	TypeAnnotation *types.Type
	Default        Expression
	InferredType   types.Type
}

func (p *Parameter) GetSpan() position.Span { return p.Span }
func (p *Parameter) String() string         { return p.Name }

// FunctionDeclaration represents a $-prefixed arrow function binding.
// Every such function auto-binds the enclosing receiver, recorded by
// AutoBindThis.
type FunctionDeclaration struct {
	Span              position.Span
	Name              string
	Parameters        []*Parameter
	ReturnAnnotation  *types.Type // explicit return type, nil when absent
	InferredReturn    types.Type
	Async             bool
	AutoBindThis      bool
	BodyExpr          Expression      // expression-bodied arrow, nil when block-bodied
	BodyBlock         *BlockStatement // block-bodied arrow, nil when expression-bodied
	HasDollarPrefix   bool
	HasReactiveSuffix bool
	IsReactive        bool
	ASITerminated     bool

	UpdateTriggers []string
	Dependencies   []string
}

func (f *FunctionDeclaration) GetSpan() position.Span { return f.Span }
func (f *FunctionDeclaration) String() string {
	return fmt.Sprintf("$%s(%d params)", f.Name, len(f.Parameters))
}
func (f *FunctionDeclaration) statementNode()   {}
func (f *FunctionDeclaration) declarationNode() {}
func (f *FunctionDeclaration) Terminated() bool { return !f.ASITerminated }

// ClassProperty represents a $-prefixed property inside a class body.
// Type annotation, reactive suffix, and initializer are all
// independently optional.
type ClassProperty struct {
	Span              position.Span
	Name              string
	TypeAnnotation    *types.Type
	InferredType      types.Type
	Initializer       Expression // nil when absent
	HasDollarPrefix   bool
	HasReactiveSuffix bool
	IsReactive        bool
	ASITerminated     bool

	UpdateTriggers []string
	Dependencies   []string
}

func (c *ClassProperty) GetSpan() position.Span { return c.Span }
func (c *ClassProperty) String() string         { return fmt.Sprintf("$%s", c.Name) }
func (c *ClassProperty) statementNode()         {}
func (c *ClassProperty) declarationNode()       {}
func (c *ClassProperty) Terminated() bool       { return !c.ASITerminated }

// AccessModifier is a constructor-parameter access keyword.
type AccessModifier string

const (
	ModifierPublic    AccessModifier = "public"
	ModifierPrivate   AccessModifier = "private"
	ModifierProtected AccessModifier = "protected"
)

// ConstructorParameter represents one constructor parameter. A
// parameter carrying an access modifier is an automatic property
// assignment.
type ConstructorParameter struct {
	Span                 position.Span
	Name                 string
	Modifier             AccessModifier // empty when no modifier present
	IsPropertyAssignment bool
	TypeAnnotation       *types.Type
	InferredType         types.Type
	Default              Expression
}

func (c *ConstructorParameter) GetSpan() position.Span { return c.Span }
func (c *ConstructorParameter) String() string         { return c.Name }

// ConstructorDeclaration represents the single optional constructor of
// a class body.
type ConstructorDeclaration struct {
	Span       position.Span
	Parameters []*ConstructorParameter
	Body       *BlockStatement
}

func (c *ConstructorDeclaration) GetSpan() position.Span { return c.Span }
func (c *ConstructorDeclaration) String() string {
	return fmt.Sprintf("constructor(%d params)", len(c.Parameters))
}

// ClassDeclaration represents a class with ordered properties, an
// optional constructor, and $-prefixed methods.
type ClassDeclaration struct {
	Span          position.Span
	Name          string
	Properties    []*ClassProperty
	Constructor   *ConstructorDeclaration
	Methods       []*FunctionDeclaration
	ASITerminated bool
}

func (c *ClassDeclaration) GetSpan() position.Span { return c.Span }
func (c *ClassDeclaration) String() string         { return fmt.Sprintf("class %s", c.Name) }
func (c *ClassDeclaration) statementNode()         {}
func (c *ClassDeclaration) declarationNode()       {}
func (c *ClassDeclaration) Terminated() bool       { return !c.ASITerminated }

// ====== Statements ======

// ExpressionStatement wraps an expression used in statement position
type ExpressionStatement struct {
	Span          position.Span
	Expr          Expression
	ASITerminated bool
}

func (e *ExpressionStatement) GetSpan() position.Span { return e.Span }
func (e *ExpressionStatement) String() string         { return e.Expr.String() }
func (e *ExpressionStatement) statementNode()         {}
func (e *ExpressionStatement) Terminated() bool       { return !e.ASITerminated }

// ReturnStatement represents a return statement; Value is nil when the
// terminator was inferred immediately after the keyword.
type ReturnStatement struct {
	Span          position.Span
	Value         Expression
	ASITerminated bool
}

func (r *ReturnStatement) GetSpan() position.Span { return r.Span }
func (r *ReturnStatement) String() string {
	if r.Value == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Value.String())
}
func (r *ReturnStatement) statementNode()   {}
func (r *ReturnStatement) Terminated() bool { return !r.ASITerminated }

// BlockStatement represents a brace-delimited statement sequence
type BlockStatement struct {
	Span       position.Span
	Statements []Statement
}

func (b *BlockStatement) GetSpan() position.Span { return b.Span }
func (b *BlockStatement) String() string         { return fmt.Sprintf("{%d statements}", len(b.Statements)) }
func (b *BlockStatement) statementNode()         {}
func (b *BlockStatement) Terminated() bool       { return true }

// ====== Expressions ======

// Identifier represents a plain or $-prefixed identifier reference
type Identifier struct {
	Span   position.Span
	Name   string
	Dollar bool
}

func (i *Identifier) GetSpan() position.Span { return i.Span }
func (i *Identifier) String() string {
	if i.Dollar {
		return "$" + i.Name
	}
	return i.Name
}
func (i *Identifier) expressionNode() {}

// NumberLiteral represents an integer or decimal literal
type NumberLiteral struct {
	Span    position.Span
	Text    string
	Value   float64
	IsFloat bool
}

func (n *NumberLiteral) GetSpan() position.Span { return n.Span }
func (n *NumberLiteral) String() string         { return n.Text }
func (n *NumberLiteral) expressionNode()        {}

// StringLiteral represents a quoted or template string literal; all
// quote styles normalize to this one node.
type StringLiteral struct {
	Span     position.Span
	Value    string
	Template bool
}

func (s *StringLiteral) GetSpan() position.Span { return s.Span }
func (s *StringLiteral) String() string         { return fmt.Sprintf("%q", s.Value) }
func (s *StringLiteral) expressionNode()        {}

// BooleanLiteral represents true or false
type BooleanLiteral struct {
	Span  position.Span
	Value bool
}

func (b *BooleanLiteral) GetSpan() position.Span { return b.Span }
func (b *BooleanLiteral) String() string         { return fmt.Sprintf("%t", b.Value) }
func (b *BooleanLiteral) expressionNode()        {}

// NullLiteral represents the null literal
type NullLiteral struct {
	Span position.Span
}

func (n *NullLiteral) GetSpan() position.Span { return n.Span }
func (n *NullLiteral) String() string         { return "null" }
func (n *NullLiteral) expressionNode()        {}

// ThisExpression represents the auto-bound receiver
type ThisExpression struct {
	Span position.Span
}

func (t *ThisExpression) GetSpan() position.Span { return t.Span }
func (t *ThisExpression) String() string         { return "this" }
func (t *ThisExpression) expressionNode()        {}

// BinaryExpression represents a binary operator application
type BinaryExpression struct {
	Span     position.Span
	Left     Expression
	Operator string
	Right    Expression
}

func (b *BinaryExpression) GetSpan() position.Span { return b.Span }
func (b *BinaryExpression) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Operator, b.Right.String())
}
func (b *BinaryExpression) expressionNode() {}

// UnaryExpression represents a prefix operator application
type UnaryExpression struct {
	Span     position.Span
	Operator string
	Operand  Expression
}

func (u *UnaryExpression) GetSpan() position.Span { return u.Span }
func (u *UnaryExpression) String() string {
	return fmt.Sprintf("(%s%s)", u.Operator, u.Operand.String())
}
func (u *UnaryExpression) expressionNode() {}

// AssignmentExpression represents an assignment in expression position
type AssignmentExpression struct {
	Span   position.Span
	Target Expression
	Value  Expression
}

func (a *AssignmentExpression) GetSpan() position.Span { return a.Span }
func (a *AssignmentExpression) String() string {
	return fmt.Sprintf("(%s = %s)", a.Target.String(), a.Value.String())
}
func (a *AssignmentExpression) expressionNode() {}

// CallExpression represents a function call
type CallExpression struct {
	Span      position.Span
	Callee    Expression
	Arguments []Expression
}

func (c *CallExpression) GetSpan() position.Span { return c.Span }
func (c *CallExpression) String() string {
	args := make([]string, len(c.Arguments))
	for i, a := range c.Arguments {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Callee.String(), strings.Join(args, ", "))
}
func (c *CallExpression) expressionNode() {}

// MemberExpression represents property access via '.'
type MemberExpression struct {
	Span     position.Span
	Object   Expression
	Property string
}

func (m *MemberExpression) GetSpan() position.Span { return m.Span }
func (m *MemberExpression) String() string {
	return fmt.Sprintf("%s.%s", m.Object.String(), m.Property)
}
func (m *MemberExpression) expressionNode() {}

// IndexExpression represents indexing via brackets
type IndexExpression struct {
	Span   position.Span
	Object Expression
	Index  Expression
}

func (i *IndexExpression) GetSpan() position.Span { return i.Span }
func (i *IndexExpression) String() string {
	return fmt.Sprintf("%s[%s]", i.Object.String(), i.Index.String())
}
func (i *IndexExpression) expressionNode() {}

// TaggedTemplateExpression represents an expression followed directly
// by a template literal
type TaggedTemplateExpression struct {
	Span     position.Span
	Tag      Expression
	Template *StringLiteral
}

func (t *TaggedTemplateExpression) GetSpan() position.Span { return t.Span }
func (t *TaggedTemplateExpression) String() string {
	return fmt.Sprintf("%s`...`", t.Tag.String())
}
func (t *TaggedTemplateExpression) expressionNode() {}

// AwaitExpression represents an await inside an async function body
type AwaitExpression struct {
	Span    position.Span
	Operand Expression
}

func (a *AwaitExpression) GetSpan() position.Span { return a.Span }
func (a *AwaitExpression) String() string         { return fmt.Sprintf("await %s", a.Operand.String()) }
func (a *AwaitExpression) expressionNode()        {}

// NewExpression represents object construction
type NewExpression struct {
	Span      position.Span
	Callee    Expression
	Arguments []Expression
}

func (n *NewExpression) GetSpan() position.Span { return n.Span }
func (n *NewExpression) String() string         { return fmt.Sprintf("new %s(...)", n.Callee.String()) }
func (n *NewExpression) expressionNode()        {}
