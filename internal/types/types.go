// Package types implements the Pulse dialect type engine. The engine
// infers a base type for every declaration it sees, validates explicit
// annotations against inferred types, and keeps a registry of
// declaration types for downstream consumers.
package types

import (
	"fmt"

	"github.com/pulse-lang/pulse/internal/lexer"
)

// BaseType is the closed set of base types the dialect knows about.
type BaseType string

const (
	Number  BaseType = "number"
	String  BaseType = "string"
	Boolean BaseType = "boolean"
	Float   BaseType = "float"
	Object  BaseType = "object"
	Any     BaseType = "any"
)

// Kind classifies how a type was formed.
type Kind int

const (
	// KindPrimitive covers number, string, boolean, and float.
	KindPrimitive Kind = iota
	// KindContainer covers object types, including single-level
	// generic wrappers such as deferred results of async functions.
	KindContainer
	// KindUnknown covers the explicit "any" variant. It carries the
	// absence of a guarantee, not a fallback to dynamic typing.
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindContainer:
		return "container"
	case KindUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("KIND(%d)", int(k))
	}
}

// Type describes an inferred or annotated type.
type Type struct {
	Base     BaseType
	Kind     Kind
	Nullable bool
	Generic  *Type // populated for single-level generic containers
}

// String returns the author-facing spelling of the type.
func (t Type) String() string {
	if t.Generic != nil {
		return fmt.Sprintf("%s<%s>", t.Base, t.Generic.String())
	}
	return string(t.Base)
}

// NullableAny is the type of null literals and of declarations with
// neither initializer nor annotation.
func NullableAny() Type {
	return Type{Base: Any, Kind: KindUnknown, Nullable: true}
}

// Deferred wraps inner in a single-level generic container,
// representing the eventual result of an async function.
func Deferred(inner Type) Type {
	g := inner
	return Type{Base: Object, Kind: KindContainer, Generic: &g}
}

// FromName maps an annotation spelling onto a Type. Names outside the
// closed set keep their spelling so conflict messages can quote the
// author's annotation verbatim.
func FromName(name string) Type {
	switch BaseType(name) {
	case Number, String, Boolean, Float:
		return Type{Base: BaseType(name), Kind: KindPrimitive}
	case Object:
		return Type{Base: Object, Kind: KindContainer}
	case Any:
		return Type{Base: Any, Kind: KindUnknown}
	default:
		return Type{Base: BaseType(name), Kind: KindUnknown}
	}
}

// InferLiteral derives a Type from a literal token. Tokens that are
// not literals infer as nullable any.
func InferLiteral(tok lexer.Token) Type {
	switch tok.Kind {
	case lexer.TokenInteger:
		return Type{Base: Number, Kind: KindPrimitive}
	case lexer.TokenFloat:
		return Type{Base: Float, Kind: KindPrimitive}
	case lexer.TokenString, lexer.TokenTemplate:
		return Type{Base: String, Kind: KindPrimitive}
	case lexer.TokenBool:
		return Type{Base: Boolean, Kind: KindPrimitive}
	case lexer.TokenNull:
		return NullableAny()
	default:
		return NullableAny()
	}
}

// Compatible reports whether an explicit annotation agrees with an
// inferred type. number and float are always considered equal, and an
// inferred "any" carries no evidence to conflict with.
func Compatible(annotated, inferred Type) bool {
	if annotated.Base == inferred.Base {
		return true
	}
	if inferred.Base == Any || annotated.Base == Any {
		return true
	}
	if annotated.Base == Number && inferred.Base == Float {
		return true
	}
	if annotated.Base == Float && inferred.Base == Number {
		return true
	}
	return false
}

// ConflictError is the fatal error raised when an explicit annotation
// disagrees with the inferred type.
type ConflictError struct {
	Name      string
	Annotated Type
	Inferred  Type
	Line      int
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Type validation failed: '%s' declared as %s but inferred as %s at line %d",
		e.Name, e.Annotated.String(), e.Inferred.String(), e.Line)
}

// Signature records the parameter and return types of a function
// declaration.
type Signature struct {
	Parameters []Type
	Return     Type
}

// Engine maintains the per-parse registry of declaration types. Each
// parse call constructs a fresh engine, so independent parses never
// share state.
type Engine struct {
	variables map[string]Type
	functions map[string]Signature
}

// NewEngine creates an empty type engine.
func NewEngine() *Engine {
	return &Engine{
		variables: make(map[string]Type),
		functions: make(map[string]Signature),
	}
}

// Validate checks an explicit annotation against an inferred type and
// registers the declaration on success. A mismatch outside the
// number/float exception is fatal for the declaration.
func (e *Engine) Validate(name string, annotated *Type, inferred Type, line int) (Type, error) {
	if annotated == nil {
		e.variables[name] = inferred
		return inferred, nil
	}
	if !Compatible(*annotated, inferred) {
		return Type{}, &ConflictError{
			Name:      name,
			Annotated: *annotated,
			Inferred:  inferred,
			Line:      line,
		}
	}
	// The annotation wins as the registered type so later lookups see
	// the author's spelling.
	e.variables[name] = *annotated
	return *annotated, nil
}

// RegisterVariable records a declaration type without validation.
func (e *Engine) RegisterVariable(name string, t Type) {
	e.variables[name] = t
}

// RegisterFunction records a function signature so later-declared call
// sites could resolve it. Resolution of forward references is out of
// scope; registration is a side effect only.
func (e *Engine) RegisterFunction(name string, sig Signature) {
	e.functions[name] = sig
}

// LookupVariable returns the registered type for a declaration name.
func (e *Engine) LookupVariable(name string) (Type, bool) {
	t, ok := e.variables[name]
	return t, ok
}

// LookupFunction returns the registered signature for a function name.
func (e *Engine) LookupFunction(name string) (Signature, bool) {
	sig, ok := e.functions[name]
	return sig, ok
}
