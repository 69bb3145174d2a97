// Package frontend is the facade of the Pulse dialect front end. It
// detects which dialect a body is written in, reports the modern
// features it uses, and exposes the parse entry points consumed by
// external collaborators.
package frontend

import (
	"regexp"
	"strings"

	"github.com/pulse-lang/pulse/internal/asi"
	"github.com/pulse-lang/pulse/internal/parser"
)

// SyntaxVersion aliases the parser's dialect tag.
type SyntaxVersion = parser.SyntaxVersion

const (
	Legacy = parser.SyntaxLegacy
	Modern = parser.SyntaxModern
)

// ModernFeatures is the fixed-shape feature record for a modern body.
// Each field's detection rule is independent.
type ModernFeatures struct {
	DollarPrefixVariables bool
	ReactiveVariables     bool
	EnhancedTypeInference bool
	AutoThisBinding       bool
	OptionalSemicolons    bool
}

// Detection patterns operate on a comment/string-stripped view of the
// text so that '$' inside literals or comments cannot trigger them.
var (
	bindingTargetPattern  = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*\s*(!|:|=[^=>])`)
	reactiveSuffixPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*\s*(:\s*[A-Za-z_][A-Za-z0-9_]*\s*)?!([^=]|$)`)
	interpolationPattern  = regexp.MustCompile(`\{\s*\$[A-Za-z_][A-Za-z0-9_]*`)
	eventHandlerPattern   = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_:-]*\s*=\s*["'{]\s*\$[A-Za-z_][A-Za-z0-9_]*\s*\(`)
	typeAnnotationPattern = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*\s*!?\s*:\s*[A-Za-z_]`)
	arrowBindingPattern   = regexp.MustCompile(`\$[A-Za-z_][A-Za-z0-9_]*\s*(!\s*)?(:\s*[A-Za-z_][A-Za-z0-9_]*\s*)?=\s*(async\s*)?\([^)]*\)\s*(:\s*[A-Za-z_][A-Za-z0-9_]*\s*)?=>`)
)

// stripCommentsAndStrings replaces comment and string literal bodies
// with spaces, preserving line structure so line-oriented passes keep
// their numbering.
func stripCommentsAndStrings(text string) string {
	return stripSource(text, false)
}

// stripComments blanks comment bodies only, keeping string literals
// intact, for patterns that must see inside attribute quotes.
func stripComments(text string) string {
	return stripSource(text, true)
}

func stripSource(text string, keepStrings bool) string {
	var b strings.Builder
	b.Grow(len(text))

	const (
		stateCode = iota
		stateLineComment
		stateBlockComment
		stateString
	)
	state := stateCode
	var quote byte

	writeString := func(ch byte) {
		if keepStrings {
			b.WriteByte(ch)
		} else {
			b.WriteByte(' ')
		}
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch state {
		case stateCode:
			switch {
			case ch == '/' && i+1 < len(text) && text[i+1] == '/':
				state = stateLineComment
				b.WriteByte(' ')
			case ch == '/' && i+1 < len(text) && text[i+1] == '*':
				state = stateBlockComment
				b.WriteByte(' ')
			case ch == '"' || ch == '\'' || ch == '`':
				state = stateString
				quote = ch
				writeString(ch)
			default:
				b.WriteByte(ch)
			}
		case stateLineComment:
			if ch == '\n' {
				state = stateCode
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case stateBlockComment:
			if ch == '*' && i+1 < len(text) && text[i+1] == '/' {
				state = stateCode
				b.WriteByte(' ')
				b.WriteByte(' ')
				i++
			} else if ch == '\n' {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		case stateString:
			if ch == '\\' && i+1 < len(text) {
				writeString(ch)
				writeString(text[i+1])
				i++
			} else if ch == quote {
				state = stateCode
				writeString(ch)
			} else if ch == '\n' {
				b.WriteByte('\n')
			} else {
				writeString(ch)
			}
		}
	}
	return b.String()
}

// DetectSyntaxVersion classifies a body as legacy or modern dialect.
// Modern markers are a $-prefixed binding target, a reactive suffix,
// an interpolation of a $ identifier, or an event-handler attribute
// referencing a $ call. The handler reference lives inside attribute
// quotes, so its pattern runs on a view that keeps string bodies but
// still blanks comments.
func DetectSyntaxVersion(text string) SyntaxVersion {
	stripped := stripCommentsAndStrings(text)

	if bindingTargetPattern.MatchString(stripped) ||
		reactiveSuffixPattern.MatchString(stripped) ||
		interpolationPattern.MatchString(stripped) ||
		eventHandlerPattern.MatchString(stripComments(text)) {
		return Modern
	}
	return Legacy
}

// DetectModernFeatures reports which modern dialect features the body
// uses. Each flag is computed independently.
func DetectModernFeatures(text string) ModernFeatures {
	stripped := stripCommentsAndStrings(text)

	return ModernFeatures{
		DollarPrefixVariables: bindingTargetPattern.MatchString(stripped),
		ReactiveVariables:     reactiveSuffixPattern.MatchString(stripped),
		EnhancedTypeInference: typeAnnotationPattern.MatchString(stripped),
		AutoThisBinding:       arrowBindingPattern.MatchString(stripped),
		OptionalSemicolons:    asi.UsesInferredTerminators(stripped),
	}
}

// Frontend is an explicit, independently constructible parse context.
// Each ParseModern call gets a freshly constructed parser and
// ambiguity accumulator, so independent Frontend values may run in
// parallel; a single value must not be shared across goroutines
// without external synchronization.
type Frontend struct {
	filename    string
	ambiguities []asi.Ambiguity
}

// New creates a Frontend with no file association.
func New() *Frontend {
	return &Frontend{}
}

// NewWithFilename creates a Frontend whose diagnostics carry the given
// filename.
func NewWithFilename(filename string) *Frontend {
	return &Frontend{filename: filename}
}

// ParseModern runs the full parser over the body. The ambiguity list
// is reset at the start of each call; any fatal grammar or type
// violation aborts with an error whose message carries the 1-indexed
// offending line.
func (f *Frontend) ParseModern(text string) (*parser.Program, error) {
	f.ambiguities = asi.Check(text)

	p := parser.New(text, f.filename)
	program, err := p.Parse()
	if err != nil {
		return nil, err
	}
	program.SyntaxVersion = Modern
	return program, nil
}

// ASIAmbiguities returns the ambiguities accumulated by the last
// ParseModern call on this context. An empty list is indistinguishable
// from a context that never parsed; that is intentional.
func (f *Frontend) ASIAmbiguities() []asi.Ambiguity {
	return f.ambiguities
}

// CheckForSemicolonAmbiguity scans raw body text without parsing it.
func CheckForSemicolonAmbiguity(text string) []asi.Ambiguity {
	return asi.Check(text)
}

// GenerateQuickFixes returns exactly two fixes for an ambiguity.
func GenerateQuickFixes(amb asi.Ambiguity) []asi.QuickFix {
	return asi.GenerateQuickFixes(amb)
}

// ValidateSemicolonUsage classifies the whole file's terminator style.
func ValidateSemicolonUsage(text string) asi.UsageReport {
	return asi.ValidateSemicolonUsage(text)
}
