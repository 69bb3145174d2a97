package parser

import (
	"fmt"
	"strconv"

	"github.com/pulse-lang/pulse/internal/lexer"
	"github.com/pulse-lang/pulse/internal/position"
	"github.com/pulse-lang/pulse/internal/types"
)

// ParseError represents a fatal parsing error with position context.
// Every message embeds the 1-indexed line of the offending token.
type ParseError struct {
	Pos     position.Position
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (line %d)", e.Message, e.Pos.Line)
}

// Operator precedence levels, lowest binds weakest.
const (
	precLowest = iota
	precOr
	precAnd
	precEquality
	precRelational
	precAdditive
	precMultiplicative
	precUnary
	precCall
)

// infixPrecedence maps token kinds that can continue an expression to
// their binding power. Conventional C-family table, left associative.
var infixPrecedence = map[lexer.TokenKind]int{
	lexer.TokenOr:       precOr,
	lexer.TokenAnd:      precAnd,
	lexer.TokenEq:       precEquality,
	lexer.TokenStrictEq: precEquality,
	lexer.TokenNe:       precEquality,
	lexer.TokenStrictNe: precEquality,
	lexer.TokenLt:       precRelational,
	lexer.TokenLe:       precRelational,
	lexer.TokenGt:       precRelational,
	lexer.TokenGe:       precRelational,
	lexer.TokenPlus:     precAdditive,
	lexer.TokenMinus:    precAdditive,
	lexer.TokenStar:     precMultiplicative,
	lexer.TokenSlash:    precMultiplicative,
	lexer.TokenPercent:  precMultiplicative,
	lexer.TokenLParen:   precCall,
	lexer.TokenLBracket: precCall,
	lexer.TokenDot:      precCall,
	lexer.TokenTemplate: precCall,
}

// Parser is the recursive descent parser for the Pulse dialect. Each
// parser value carries its own token window and type engine, so
// independent files may be parsed in parallel with independent
// parser instances.
type Parser struct {
	tokens []lexer.Token
	breaks []bool // breaks[i]: a line break precedes tokens[i]
	pos    int

	engine   *types.Engine
	filename string
}

// New creates a parser over the given source text. The token stream is
// produced eagerly; newline and comment tokens are folded into
// line-break flags so statement boundary inference can consult them
// without re-scanning.
func New(input, filename string) *Parser {
	raw := lexer.NewWithFilename(input, filename).Tokenize()

	tokens := make([]lexer.Token, 0, len(raw))
	breaks := make([]bool, 0, len(raw))
	pendingBreak := false
	for _, tok := range raw {
		switch tok.Kind {
		case lexer.TokenNewline:
			pendingBreak = true
		case lexer.TokenComment:
			// A block comment spanning lines is itself a boundary.
			for i := 0; i < len(tok.Text); i++ {
				if tok.Text[i] == '\n' {
					pendingBreak = true
					break
				}
			}
		default:
			tokens = append(tokens, tok)
			breaks = append(breaks, pendingBreak)
			pendingBreak = false
		}
	}

	return &Parser{
		tokens:   tokens,
		breaks:   breaks,
		engine:   types.NewEngine(),
		filename: filename,
	}
}

// Engine exposes the type registry populated during the parse.
func (p *Parser) Engine() *types.Engine {
	return p.engine
}

// at returns the current token
func (p *Parser) at() lexer.Token {
	return p.tokens[p.pos]
}

// peekAt returns the token at the given offset from the cursor,
// clamped to EOF
func (p *Parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

// advance moves the cursor to the next token
func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

// check reports whether the current token has the given kind
func (p *Parser) check(kind lexer.TokenKind) bool {
	return p.at().Kind == kind
}

// breakBefore reports whether a line break precedes the current token
func (p *Parser) breakBefore() bool {
	return p.breaks[p.pos]
}

// errorf builds a fatal ParseError anchored at the given token
func (p *Parser) errorf(tok lexer.Token, format string, args ...interface{}) error {
	pos := TokenToPosition(tok)
	pos.Filename = p.filename
	return &ParseError{
		Pos:     pos,
		Message: fmt.Sprintf(format, args...),
	}
}

// Parse consumes the whole input and returns the program AST. Any
// fatal grammar or type violation aborts the parse; no partial AST is
// returned.
func (p *Parser) Parse() (*Program, error) {
	startPos := TokenToPosition(p.at())
	statements := make([]Statement, 0)

	for !p.check(lexer.TokenEOF) {
		// Stray explicit terminators are empty statements.
		if p.check(lexer.TokenSemicolon) {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}

	endPos := TokenToPosition(p.at())
	return &Program{
		Span:          SpanBetween(startPos, endPos),
		SyntaxVersion: SyntaxModern,
		Statements:    statements,
	}, nil
}

// parseStatement dispatches on the current token's kind.
func (p *Parser) parseStatement() (Statement, error) {
	switch p.at().Kind {
	case lexer.TokenDollarIdent:
		return p.parseDollarDeclaration()
	case lexer.TokenDollar:
		return nil, p.errorf(p.at(), "Expected variable name")
	case lexer.TokenClass:
		return p.parseClassDeclaration()
	case lexer.TokenReturn:
		return p.parseReturnStatement()
	case lexer.TokenIdentifier, lexer.TokenInteger, lexer.TokenFloat,
		lexer.TokenString, lexer.TokenTemplate, lexer.TokenBool, lexer.TokenNull,
		lexer.TokenLParen, lexer.TokenMinus, lexer.TokenBang,
		lexer.TokenThis, lexer.TokenNew, lexer.TokenAwait:
		return p.parseExpressionStatement()
	default:
		return nil, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
	}
}

// finishStatement consumes the statement terminator if one is present
// and reports whether the boundary was inferred. A following token on
// the same line that is not a terminator is fatal.
func (p *Parser) finishStatement() (bool, error) {
	if p.check(lexer.TokenSemicolon) {
		p.advance()
		return false, nil
	}
	if p.check(lexer.TokenEOF) || p.check(lexer.TokenRBrace) {
		return true, nil
	}
	if p.breakBefore() {
		return true, nil
	}
	return true, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
}

// ====== Declarations ======

// parseDollarDeclaration parses a $-prefixed binding; the initializer
// decides whether it is a variable or an arrow function declaration.
func (p *Parser) parseDollarDeclaration() (Statement, error) {
	start := p.at()
	name := start.Text[1:]
	p.advance()

	reactive := false
	if p.check(lexer.TokenBang) && !p.breakBefore() {
		reactive = true
		p.advance()
	}

	var annotation *types.Type
	if p.check(lexer.TokenColon) {
		p.advance()
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errorf(p.at(), "Expected type name")
		}
		t := types.FromName(p.at().Text)
		annotation = &t
		p.advance()

		// The reactive suffix may also follow the annotation.
		if p.check(lexer.TokenBang) && !p.breakBefore() {
			reactive = true
			p.advance()
		}
	}

	if !p.check(lexer.TokenAssign) {
		return nil, p.errorf(p.at(), "Expected '=' in declaration")
	}
	p.advance()

	if p.looksLikeArrowFunction() {
		return p.parseFunctionDeclaration(start, name, reactive, annotation)
	}

	init, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	inferred := p.inferExpression(init)
	final, err := p.engine.Validate(name, annotation, inferred, start.Line)
	if err != nil {
		return nil, err
	}

	asi, err := p.finishStatement()
	if err != nil {
		return nil, err
	}

	decl := &VariableDeclaration{
		Span:              SpanBetween(TokenToPosition(start), TokenToPosition(p.at())),
		Name:              name,
		TypeAnnotation:    annotation,
		InferredType:      final,
		Initializer:       init,
		HasDollarPrefix:   true,
		HasReactiveSuffix: reactive,
		IsReactive:        reactive,
		ASITerminated:     asi,
	}
	if reactive {
		decl.UpdateTriggers, decl.Dependencies = reactiveMetadata(name, init)
	}
	return decl, nil
}

// looksLikeArrowFunction reports whether the tokens at the cursor form
// '[async] ( ... ) [: Type] =>'.
func (p *Parser) looksLikeArrowFunction() bool {
	i := 0
	if p.peekAt(i).Kind == lexer.TokenAsync {
		i++
	}
	if p.peekAt(i).Kind != lexer.TokenLParen {
		return false
	}

	depth := 0
	for {
		tok := p.peekAt(i)
		switch tok.Kind {
		case lexer.TokenLParen:
			depth++
		case lexer.TokenRParen:
			depth--
		case lexer.TokenEOF:
			return false
		}
		i++
		if depth == 0 {
			break
		}
	}

	if p.peekAt(i).Kind == lexer.TokenColon && p.peekAt(i+1).Kind == lexer.TokenIdentifier {
		i += 2
	}
	return p.peekAt(i).Kind == lexer.TokenArrow
}

// parseFunctionDeclaration parses the arrow-function form of a $
// declaration: the name and '=' are already consumed.
func (p *Parser) parseFunctionDeclaration(start lexer.Token, name string, reactive bool, annotation *types.Type) (Statement, error) {
	async := false
	if p.check(lexer.TokenAsync) {
		async = true
		p.advance()
	}

	// looksLikeArrowFunction guarantees the opening paren.
	p.advance()

	params, err := p.parseParameterList()
	if err != nil {
		return nil, err
	}

	var returnAnnotation *types.Type
	if p.check(lexer.TokenColon) {
		p.advance()
		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errorf(p.at(), "Expected type name")
		}
		t := types.FromName(p.at().Text)
		returnAnnotation = &t
		p.advance()
	}

	if !p.check(lexer.TokenArrow) {
		return nil, p.errorf(p.at(), "Expected '=>' for arrow function")
	}
	p.advance()

	fn := &FunctionDeclaration{
		Name:              name,
		Parameters:        params,
		ReturnAnnotation:  returnAnnotation,
		Async:             async,
		AutoBindThis:      true,
		HasDollarPrefix:   true,
		HasReactiveSuffix: reactive,
		IsReactive:        reactive,
	}

	// Parameter types are visible to body inference.
	for _, prm := range params {
		p.engine.RegisterVariable(prm.Name, prm.InferredType)
	}

	var bodyResult types.Type
	if p.check(lexer.TokenLBrace) {
		block, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		fn.BodyBlock = block
		bodyResult = p.inferBlockResult(block)
	} else {
		expr, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		fn.BodyExpr = expr
		bodyResult = p.inferExpression(expr)
	}

	var inferredReturn types.Type
	if returnAnnotation != nil {
		// The annotation names the settled value, so it is checked
		// against the body's direct result even for async functions.
		if _, err := p.engine.Validate(name, returnAnnotation, bodyResult, start.Line); err != nil {
			return nil, err
		}
		inferredReturn = *returnAnnotation
	} else {
		inferredReturn = bodyResult
	}
	if async {
		// The eventual value of an async function is a single-level
		// generic container over the body's result type.
		inferredReturn = types.Deferred(inferredReturn)
	}
	fn.InferredReturn = inferredReturn

	paramTypes := make([]types.Type, len(params))
	for i, prm := range params {
		paramTypes[i] = prm.InferredType
	}
	p.engine.RegisterFunction(name, types.Signature{Parameters: paramTypes, Return: inferredReturn})

	asi, err := p.finishStatement()
	if err != nil {
		return nil, err
	}
	fn.ASITerminated = asi
	fn.Span = SpanBetween(TokenToPosition(start), TokenToPosition(p.at()))

	if reactive {
		fn.UpdateTriggers, fn.Dependencies = reactiveMetadata(name, fn.BodyExpr)
	}
	return fn, nil
}

// parseParameterList parses parameters up to and including the closing
// paren. The opening paren is already consumed.
func (p *Parser) parseParameterList() ([]*Parameter, error) {
	params := make([]*Parameter, 0)

	for !p.check(lexer.TokenRParen) {
		if p.check(lexer.TokenEOF) {
			return nil, p.errorf(p.at(), "Expected ')' after function parameters")
		}

		if !p.check(lexer.TokenIdentifier) && !p.check(lexer.TokenDollarIdent) {
			return nil, p.errorf(p.at(), "Expected name")
		}
		nameTok := p.at()
		paramName := nameTok.Text
		if nameTok.Kind == lexer.TokenDollarIdent {
			paramName = nameTok.Text[1:]
		}
		p.advance()

		param := &Parameter{
			Span: TokenToSpan(nameTok),
			Name: paramName,
		}

		if p.check(lexer.TokenColon) {
			p.advance()
			if !p.check(lexer.TokenIdentifier) {
				return nil, p.errorf(p.at(), "Expected type name")
			}
			t := types.FromName(p.at().Text)
			param.TypeAnnotation = &t
			p.advance()
		}

		if p.check(lexer.TokenAssign) {
			p.advance()
			def, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			param.Default = def
		}

		// Without an annotation the parameter type falls back to the
		// default value's literal type.
		switch {
		case param.TypeAnnotation != nil:
			param.InferredType = *param.TypeAnnotation
		case param.Default != nil:
			param.InferredType = p.inferExpression(param.Default)
		default:
			param.InferredType = types.NullableAny()
		}

		params = append(params, param)

		if p.check(lexer.TokenComma) {
			p.advance()
			continue
		}
		if !p.check(lexer.TokenRParen) {
			return nil, p.errorf(p.at(), "Expected ')' after function parameters")
		}
	}

	p.advance() // consume ')'
	return params, nil
}

// parseClassDeclaration parses a class with ordered $ properties, a
// single optional constructor, and $ methods.
func (p *Parser) parseClassDeclaration() (Statement, error) {
	start := p.at()
	p.advance()

	if !p.check(lexer.TokenIdentifier) {
		return nil, p.errorf(p.at(), "Expected name")
	}
	className := p.at().Text
	p.advance()

	if !p.check(lexer.TokenLBrace) {
		return nil, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
	}
	p.advance()

	decl := &ClassDeclaration{Name: className}

	for !p.check(lexer.TokenRBrace) {
		switch p.at().Kind {
		case lexer.TokenEOF:
			return nil, p.errorf(p.at(), "Unexpected token 'end of input'")
		case lexer.TokenSemicolon:
			p.advance()
		case lexer.TokenDollarIdent:
			if err := p.parseClassMember(decl); err != nil {
				return nil, err
			}
		case lexer.TokenDollar:
			return nil, p.errorf(p.at(), "Expected name")
		case lexer.TokenConstructor:
			if decl.Constructor != nil {
				return nil, p.errorf(p.at(), "Unexpected token 'constructor'")
			}
			ctor, err := p.parseConstructor()
			if err != nil {
				return nil, err
			}
			decl.Constructor = ctor
		default:
			return nil, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
		}
	}
	p.advance() // consume '}'

	asi, err := p.finishStatement()
	if err != nil {
		return nil, err
	}
	decl.ASITerminated = asi
	decl.Span = SpanBetween(TokenToPosition(start), TokenToPosition(p.at()))
	return decl, nil
}

// parseClassMember parses one $ property or $ method inside a class
// body and appends it to the declaration.
func (p *Parser) parseClassMember(decl *ClassDeclaration) error {
	start := p.at()
	name := start.Text[1:]
	p.advance()

	reactive := false
	if p.check(lexer.TokenBang) && !p.breakBefore() {
		reactive = true
		p.advance()
	}

	var annotation *types.Type
	if p.check(lexer.TokenColon) {
		p.advance()
		if !p.check(lexer.TokenIdentifier) {
			return p.errorf(p.at(), "Expected type name")
		}
		t := types.FromName(p.at().Text)
		annotation = &t
		p.advance()

		if p.check(lexer.TokenBang) && !p.breakBefore() {
			reactive = true
			p.advance()
		}
	}

	if p.check(lexer.TokenAssign) {
		p.advance()

		if p.looksLikeArrowFunction() {
			stmt, err := p.parseFunctionDeclaration(start, name, reactive, annotation)
			if err != nil {
				return err
			}
			decl.Methods = append(decl.Methods, stmt.(*FunctionDeclaration))
			return nil
		}

		init, err := p.parseExpression(precLowest)
		if err != nil {
			return err
		}
		inferred := p.inferExpression(init)
		final, err := p.engine.Validate(memberKey(decl, name), annotation, inferred, start.Line)
		if err != nil {
			return err
		}
		asi, err := p.finishStatement()
		if err != nil {
			return err
		}
		prop := &ClassProperty{
			Span:              SpanBetween(TokenToPosition(start), TokenToPosition(p.at())),
			Name:              name,
			TypeAnnotation:    annotation,
			InferredType:      final,
			Initializer:       init,
			HasDollarPrefix:   true,
			HasReactiveSuffix: reactive,
			IsReactive:        reactive,
			ASITerminated:     asi,
		}
		if reactive {
			prop.UpdateTriggers, prop.Dependencies = reactiveMetadata(name, init)
		}
		decl.Properties = append(decl.Properties, prop)
		return nil
	}

	// Property without initializer: the annotation's base type when
	// present, nullable any otherwise.
	inferred := types.NullableAny()
	if annotation != nil {
		inferred = *annotation
		inferred.Nullable = false
	}
	p.engine.RegisterVariable(memberKey(decl, name), inferred)

	asi, err := p.finishStatement()
	if err != nil {
		return err
	}
	prop := &ClassProperty{
		Span:              SpanBetween(TokenToPosition(start), TokenToPosition(p.at())),
		Name:              name,
		TypeAnnotation:    annotation,
		InferredType:      inferred,
		HasDollarPrefix:   true,
		HasReactiveSuffix: reactive,
		IsReactive:        reactive,
		ASITerminated:     asi,
	}
	if reactive {
		prop.UpdateTriggers, prop.Dependencies = reactiveMetadata(name, nil)
	}
	decl.Properties = append(decl.Properties, prop)
	return nil
}

// memberKey qualifies a member name with its class for the registry.
func memberKey(decl *ClassDeclaration, member string) string {
	return decl.Name + "." + member
}

// parseConstructor parses 'constructor(params) { ... }'. Parameters
// may carry an access modifier marking an automatic property
// assignment.
func (p *Parser) parseConstructor() (*ConstructorDeclaration, error) {
	start := p.at()
	p.advance()

	if !p.check(lexer.TokenLParen) {
		return nil, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
	}
	p.advance()

	params := make([]*ConstructorParameter, 0)
	for !p.check(lexer.TokenRParen) {
		if p.check(lexer.TokenEOF) {
			return nil, p.errorf(p.at(), "Expected ')' after function parameters")
		}

		param := &ConstructorParameter{}

		switch p.at().Kind {
		case lexer.TokenPublic, lexer.TokenPrivate, lexer.TokenProtected:
			param.Modifier = AccessModifier(p.at().Text)
			param.IsPropertyAssignment = true
			p.advance()
		}

		if !p.check(lexer.TokenIdentifier) {
			return nil, p.errorf(p.at(), "Expected name")
		}
		nameTok := p.at()
		param.Name = nameTok.Text
		param.Span = TokenToSpan(nameTok)
		p.advance()

		if p.check(lexer.TokenColon) {
			p.advance()
			if !p.check(lexer.TokenIdentifier) {
				return nil, p.errorf(p.at(), "Expected type name")
			}
			t := types.FromName(p.at().Text)
			param.TypeAnnotation = &t
			p.advance()
		}

		if p.check(lexer.TokenAssign) {
			p.advance()
			def, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			param.Default = def
		}

		switch {
		case param.TypeAnnotation != nil:
			param.InferredType = *param.TypeAnnotation
		case param.Default != nil:
			param.InferredType = p.inferExpression(param.Default)
		default:
			param.InferredType = types.NullableAny()
		}

		params = append(params, param)

		if p.check(lexer.TokenComma) {
			p.advance()
			continue
		}
		if !p.check(lexer.TokenRParen) {
			return nil, p.errorf(p.at(), "Expected ')' after function parameters")
		}
	}
	p.advance() // consume ')'

	ctor := &ConstructorDeclaration{Parameters: params}
	if p.check(lexer.TokenLBrace) {
		body, err := p.parseBlockStatement()
		if err != nil {
			return nil, err
		}
		ctor.Body = body
	}
	ctor.Span = SpanBetween(TokenToPosition(start), TokenToPosition(p.at()))
	return ctor, nil
}

// ====== Statements ======

// parseReturnStatement parses 'return [value]'. A line break directly
// after the keyword ends the statement: the restricted production of
// the host ecosystem.
func (p *Parser) parseReturnStatement() (Statement, error) {
	start := p.at()
	p.advance()

	stmt := &ReturnStatement{}

	if p.check(lexer.TokenSemicolon) {
		p.advance()
		stmt.ASITerminated = false
	} else if p.check(lexer.TokenEOF) || p.check(lexer.TokenRBrace) || p.breakBefore() {
		stmt.ASITerminated = true
	} else {
		value, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		stmt.Value = value
		asi, err := p.finishStatement()
		if err != nil {
			return nil, err
		}
		stmt.ASITerminated = asi
	}

	stmt.Span = SpanBetween(TokenToPosition(start), TokenToPosition(p.at()))
	return stmt, nil
}

// parseBlockStatement parses '{ ... }'
func (p *Parser) parseBlockStatement() (*BlockStatement, error) {
	start := p.at()
	p.advance() // consume '{'

	statements := make([]Statement, 0)
	for !p.check(lexer.TokenRBrace) {
		if p.check(lexer.TokenEOF) {
			return nil, p.errorf(p.at(), "Unexpected token 'end of input'")
		}
		if p.check(lexer.TokenSemicolon) {
			p.advance()
			continue
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		statements = append(statements, stmt)
	}
	p.advance() // consume '}'

	return &BlockStatement{
		Span:       SpanBetween(TokenToPosition(start), TokenToPosition(p.at())),
		Statements: statements,
	}, nil
}

// parseExpressionStatement parses an expression (or assignment) in
// statement position.
func (p *Parser) parseExpressionStatement() (Statement, error) {
	start := p.at()

	expr, err := p.parseExpression(precLowest)
	if err != nil {
		return nil, err
	}

	if p.check(lexer.TokenAssign) {
		switch expr.(type) {
		case *Identifier, *MemberExpression, *IndexExpression:
		default:
			return nil, p.errorf(p.at(), "Unexpected token '='")
		}
		p.advance()
		value, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		expr = &AssignmentExpression{
			Span:   expr.GetSpan().Union(value.GetSpan()),
			Target: expr,
			Value:  value,
		}
	}

	asi, err := p.finishStatement()
	if err != nil {
		return nil, err
	}

	return &ExpressionStatement{
		Span:          SpanBetween(TokenToPosition(start), TokenToPosition(p.at())),
		Expr:          expr,
		ASITerminated: asi,
	}, nil
}

// ====== Expressions ======

// parseExpression is a precedence-climbing expression parser. An
// expression continues across a line break exactly when the next token
// is an infix operator or a call/index/member/template continuation;
// this is the terminator-inference rule the ambiguity detector flags
// the risky cases of.
func (p *Parser) parseExpression(minPrec int) (Expression, error) {
	left, err := p.parsePrefix()
	if err != nil {
		return nil, err
	}

	for {
		prec, ok := infixPrecedence[p.at().Kind]
		if !ok || prec <= minPrec {
			return left, nil
		}

		left, err = p.parseInfix(left, prec)
		if err != nil {
			return nil, err
		}
	}
}

// parsePrefix parses literals, identifiers, grouping, and prefix
// operators.
func (p *Parser) parsePrefix() (Expression, error) {
	tok := p.at()

	switch tok.Kind {
	case lexer.TokenInteger, lexer.TokenFloat:
		value, err := strconv.ParseFloat(tok.Text, 64)
		if err != nil {
			return nil, p.errorf(tok, "Unexpected token '%s'", tok.Text)
		}
		p.advance()
		return &NumberLiteral{
			Span:    TokenToSpan(tok),
			Text:    tok.Text,
			Value:   value,
			IsFloat: tok.Kind == lexer.TokenFloat,
		}, nil

	case lexer.TokenString:
		p.advance()
		return &StringLiteral{Span: TokenToSpan(tok), Value: tok.Text}, nil

	case lexer.TokenTemplate:
		p.advance()
		return &StringLiteral{Span: TokenToSpan(tok), Value: tok.Text, Template: true}, nil

	case lexer.TokenBool:
		p.advance()
		return &BooleanLiteral{Span: TokenToSpan(tok), Value: tok.Text == "true"}, nil

	case lexer.TokenNull:
		p.advance()
		return &NullLiteral{Span: TokenToSpan(tok)}, nil

	case lexer.TokenIdentifier:
		p.advance()
		return &Identifier{Span: TokenToSpan(tok), Name: tok.Text}, nil

	case lexer.TokenDollarIdent:
		p.advance()
		return &Identifier{Span: TokenToSpan(tok), Name: tok.Text[1:], Dollar: true}, nil

	case lexer.TokenThis:
		p.advance()
		return &ThisExpression{Span: TokenToSpan(tok)}, nil

	case lexer.TokenLParen:
		p.advance()
		inner, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if !p.check(lexer.TokenRParen) {
			return nil, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
		}
		p.advance()
		return inner, nil

	case lexer.TokenMinus, lexer.TokenBang:
		p.advance()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &UnaryExpression{
			Span:     TokenToSpan(tok).Union(operand.GetSpan()),
			Operator: tok.Text,
			Operand:  operand,
		}, nil

	case lexer.TokenAwait:
		p.advance()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		return &AwaitExpression{
			Span:    TokenToSpan(tok).Union(operand.GetSpan()),
			Operand: operand,
		}, nil

	case lexer.TokenNew:
		p.advance()
		operand, err := p.parseExpression(precUnary)
		if err != nil {
			return nil, err
		}
		expr := &NewExpression{Span: TokenToSpan(tok).Union(operand.GetSpan())}
		if call, ok := operand.(*CallExpression); ok {
			expr.Callee = call.Callee
			expr.Arguments = call.Arguments
		} else {
			expr.Callee = operand
		}
		return expr, nil

	default:
		return nil, p.errorf(tok, "Unexpected token '%s'", tok.Text)
	}
}

// parseInfix extends left with the operator at the cursor.
func (p *Parser) parseInfix(left Expression, prec int) (Expression, error) {
	tok := p.at()

	switch tok.Kind {
	case lexer.TokenLParen:
		p.advance()
		args := make([]Expression, 0)
		for !p.check(lexer.TokenRParen) {
			if p.check(lexer.TokenEOF) {
				return nil, p.errorf(p.at(), "Expected ')' after function parameters")
			}
			arg, err := p.parseExpression(precLowest)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if p.check(lexer.TokenComma) {
				p.advance()
			}
		}
		rparen := p.at()
		p.advance()
		return &CallExpression{
			Span:      left.GetSpan().Union(TokenToSpan(rparen)),
			Callee:    left,
			Arguments: args,
		}, nil

	case lexer.TokenLBracket:
		p.advance()
		index, err := p.parseExpression(precLowest)
		if err != nil {
			return nil, err
		}
		if !p.check(lexer.TokenRBracket) {
			return nil, p.errorf(p.at(), "Unexpected token '%s'", p.at().Text)
		}
		rbracket := p.at()
		p.advance()
		return &IndexExpression{
			Span:   left.GetSpan().Union(TokenToSpan(rbracket)),
			Object: left,
			Index:  index,
		}, nil

	case lexer.TokenDot:
		p.advance()
		if !p.check(lexer.TokenIdentifier) && !p.check(lexer.TokenConstructor) {
			return nil, p.errorf(p.at(), "Expected name")
		}
		prop := p.at()
		p.advance()
		return &MemberExpression{
			Span:     left.GetSpan().Union(TokenToSpan(prop)),
			Object:   left,
			Property: prop.Text,
		}, nil

	case lexer.TokenTemplate:
		p.advance()
		tpl := &StringLiteral{Span: TokenToSpan(tok), Value: tok.Text, Template: true}
		return &TaggedTemplateExpression{
			Span:     left.GetSpan().Union(tpl.Span),
			Tag:      left,
			Template: tpl,
		}, nil

	default:
		// Binary operator; left associative, so the right side binds
		// at this operator's own precedence.
		p.advance()
		right, err := p.parseExpression(prec)
		if err != nil {
			return nil, err
		}
		return &BinaryExpression{
			Span:     left.GetSpan().Union(right.GetSpan()),
			Left:     left,
			Operator: tok.Text,
			Right:    right,
		}, nil
	}
}

// ====== Inference helpers ======

// inferExpression derives a Type for an expression, consulting the
// registry for identifier and call references.
func (p *Parser) inferExpression(expr Expression) types.Type {
	switch e := expr.(type) {
	case *NumberLiteral:
		if e.IsFloat {
			return types.Type{Base: types.Float, Kind: types.KindPrimitive}
		}
		return types.Type{Base: types.Number, Kind: types.KindPrimitive}
	case *StringLiteral:
		return types.Type{Base: types.String, Kind: types.KindPrimitive}
	case *BooleanLiteral:
		return types.Type{Base: types.Boolean, Kind: types.KindPrimitive}
	case *NullLiteral:
		return types.NullableAny()
	case *Identifier:
		if t, ok := p.engine.LookupVariable(e.Name); ok {
			return t
		}
		return types.NullableAny()
	case *UnaryExpression:
		if e.Operator == "!" {
			return types.Type{Base: types.Boolean, Kind: types.KindPrimitive}
		}
		return p.inferExpression(e.Operand)
	case *BinaryExpression:
		return p.inferBinary(e)
	case *CallExpression:
		if ident, ok := e.Callee.(*Identifier); ok {
			if sig, found := p.engine.LookupFunction(ident.Name); found {
				return sig.Return
			}
		}
		return types.NullableAny()
	case *AwaitExpression:
		inner := p.inferExpression(e.Operand)
		if inner.Generic != nil {
			return *inner.Generic
		}
		return types.NullableAny()
	case *AssignmentExpression:
		return p.inferExpression(e.Value)
	case *NewExpression:
		return types.Type{Base: types.Object, Kind: types.KindContainer}
	default:
		return types.NullableAny()
	}
}

// inferBinary applies the dialect's operator typing: comparisons and
// logic yield boolean, '+' with a string side concatenates, and mixed
// number/float arithmetic widens to float.
func (p *Parser) inferBinary(e *BinaryExpression) types.Type {
	switch e.Operator {
	case "==", "===", "!=", "!==", "<", "<=", ">", ">=", "&&", "||":
		return types.Type{Base: types.Boolean, Kind: types.KindPrimitive}
	}

	left := p.inferExpression(e.Left)
	right := p.inferExpression(e.Right)

	if e.Operator == "+" && (left.Base == types.String || right.Base == types.String) {
		return types.Type{Base: types.String, Kind: types.KindPrimitive}
	}
	if left.Base == types.Float || right.Base == types.Float {
		return types.Type{Base: types.Float, Kind: types.KindPrimitive}
	}
	if left.Base == types.Number && right.Base == types.Number {
		return types.Type{Base: types.Number, Kind: types.KindPrimitive}
	}
	return types.NullableAny()
}

// inferBlockResult derives the result type of a block body from its
// trailing return value or final expression statement.
func (p *Parser) inferBlockResult(block *BlockStatement) types.Type {
	for i := len(block.Statements) - 1; i >= 0; i-- {
		switch stmt := block.Statements[i].(type) {
		case *ReturnStatement:
			if stmt.Value == nil {
				return types.NullableAny()
			}
			return p.inferExpression(stmt.Value)
		case *ExpressionStatement:
			return p.inferExpression(stmt.Expr)
		}
	}
	return types.NullableAny()
}

// reactiveMetadata builds the update triggers and dependency
// identifiers downstream consumers track for a reactive declaration.
func reactiveMetadata(name string, init Expression) (triggers, deps []string) {
	triggers = []string{
		"ui-element-" + name,
		"template-binding-" + name,
	}
	deps = make([]string, 0)
	for _, ref := range collectDollarRefs(init, nil) {
		deps = append(deps, "template-binding-"+ref)
	}
	return triggers, deps
}

// collectDollarRefs walks an expression and gathers referenced $
// identifiers in source order.
func collectDollarRefs(expr Expression, acc []string) []string {
	switch e := expr.(type) {
	case nil:
		return acc
	case *Identifier:
		if e.Dollar {
			acc = append(acc, e.Name)
		}
	case *UnaryExpression:
		acc = collectDollarRefs(e.Operand, acc)
	case *BinaryExpression:
		acc = collectDollarRefs(e.Left, acc)
		acc = collectDollarRefs(e.Right, acc)
	case *CallExpression:
		acc = collectDollarRefs(e.Callee, acc)
		for _, arg := range e.Arguments {
			acc = collectDollarRefs(arg, acc)
		}
	case *MemberExpression:
		acc = collectDollarRefs(e.Object, acc)
	case *IndexExpression:
		acc = collectDollarRefs(e.Object, acc)
		acc = collectDollarRefs(e.Index, acc)
	case *AssignmentExpression:
		acc = collectDollarRefs(e.Target, acc)
		acc = collectDollarRefs(e.Value, acc)
	case *AwaitExpression:
		acc = collectDollarRefs(e.Operand, acc)
	case *NewExpression:
		acc = collectDollarRefs(e.Callee, acc)
		for _, arg := range e.Arguments {
			acc = collectDollarRefs(arg, acc)
		}
	case *TaggedTemplateExpression:
		acc = collectDollarRefs(e.Tag, acc)
	}
	return acc
}
