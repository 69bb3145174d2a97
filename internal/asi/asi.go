// Package asi implements the statement-boundary ambiguity detector
// for the Pulse dialect. Because terminators are optional, some line
// pairs have a reading a human could plausibly get wrong; this
// detector flags exactly those pairs and pairs every finding with two
// concrete quick fixes.
//
// The detector is line oriented and runs on raw source text, so it
// works even on input the parser rejects.
package asi

import (
	"fmt"
	"strings"

	"github.com/pulse-lang/pulse/internal/position"
)

// Kind classifies an ambiguity.
type Kind string

const (
	// StatementContinuation: the next line begins with a token that
	// could continue the previous expression.
	StatementContinuation Kind = "statement_continuation"
	// ReturnValue: a bare return followed by a line that may have been
	// meant as its value.
	ReturnValue Kind = "return_value"
	// ExpressionSplit: the next line starts with a binary operator
	// that could belong to the previous expression.
	ExpressionSplit Kind = "expression_split"
)

// Ambiguity records one boundary where terminator inference could
// silently change program meaning. Location is the 1-indexed first
// (earlier) line of the pair.
type Ambiguity struct {
	Location   position.Position
	Kind       Kind
	Message    string
	Suggestion string
}

// QuickFix describes one concrete edit resolving an ambiguity.
type QuickFix struct {
	Description string
	Edit        string
}

// UsageReport is the result of the whole-file terminator style pass.
type UsageReport struct {
	Warnings    []string
	Suggestions []string
}

// sourceLine is a significant (non-empty, non-comment) line with its
// original 1-indexed number.
type sourceLine struct {
	number int
	text   string // trimmed
}

// significantLines filters blank and comment lines, preserving
// original line numbers. Inline comments are stripped from each line,
// so a trailing '// done' or '/* note */' never hides a terminator.
func significantLines(src string) []sourceLine {
	lines := strings.Split(src, "\n")
	out := make([]sourceLine, 0, len(lines))
	inBlock := false
	for i, raw := range lines {
		var code string
		code, inBlock = stripLineComments(raw, inBlock)
		code = strings.TrimSpace(code)
		if code == "" {
			continue
		}
		out = append(out, sourceLine{number: i + 1, text: code})
	}
	return out
}

// stripLineComments removes '//' and '/* */' segments from one line,
// string-aware so comment markers inside literals survive. inBlock
// carries the open-block-comment state across lines.
func stripLineComments(raw string, inBlock bool) (string, bool) {
	var b strings.Builder
	var quote byte
	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if inBlock {
			if ch == '*' && i+1 < len(raw) && raw[i+1] == '/' {
				inBlock = false
				i++
			}
			continue
		}
		if quote != 0 {
			b.WriteByte(ch)
			if ch == '\\' && i+1 < len(raw) {
				b.WriteByte(raw[i+1])
				i++
			} else if ch == quote {
				quote = 0
			}
			continue
		}
		switch {
		case ch == '/' && i+1 < len(raw) && raw[i+1] == '/':
			return b.String(), false
		case ch == '/' && i+1 < len(raw) && raw[i+1] == '*':
			inBlock = true
			i++
		case ch == '"' || ch == '\'' || ch == '`':
			quote = ch
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String(), inBlock
}

// isCommentOrBlank reports whether a raw line carries no code.
func isCommentOrBlank(raw string) bool {
	code, _ := stripLineComments(raw, false)
	return strings.TrimSpace(code) == ""
}

// endsWithTerminator reports an explicit trailing ';'.
func endsWithTerminator(line string) bool {
	return strings.HasSuffix(line, ";")
}

// endsWithBrace reports a trailing '{' or '}'.
func endsWithBrace(line string) bool {
	return strings.HasSuffix(line, "{") || strings.HasSuffix(line, "}")
}

// endsWithBareValue reports whether the line ends with an identifier
// or literal value. A trailing ')' is not a bare value: parenthesized
// results do not participate in the expression-split heuristic.
func endsWithBareValue(line string) bool {
	if line == "" {
		return false
	}
	last := line[len(line)-1]
	switch {
	case last >= 'a' && last <= 'z', last >= 'A' && last <= 'Z':
		return true
	case last >= '0' && last <= '9':
		return true
	case last == '_', last == '$':
		return true
	case last == '"', last == '\'', last == '`':
		return true
	default:
		return false
	}
}

// binaryOperatorPrefixes, longest first so '===' wins over '=='.
var binaryOperatorPrefixes = []string{
	"===", "!==", "==", "!=", "&&", "||", "<=", ">=",
	"+", "-", "*", "/", "%", "<", ">",
}

// startsWithBinaryOperator reports whether the line begins with a
// binary operator token.
func startsWithBinaryOperator(line string) bool {
	for _, op := range binaryOperatorPrefixes {
		if strings.HasPrefix(line, op) {
			return true
		}
	}
	return false
}

// startsWithContinuation reports whether the line begins with a token
// that could continue a previous expression: a call, an index, a
// template literal, or a member access.
func startsWithContinuation(line string) bool {
	if line == "" {
		return false
	}
	switch line[0] {
	case '(', '[', '`', '.':
		return true
	default:
		return false
	}
}

// Check scans the source and returns the ordered ambiguity list. At
// most one ambiguity is reported per boundary.
func Check(src string) []Ambiguity {
	rawLines := strings.Split(src, "\n")
	lines := significantLines(src)
	ambiguities := make([]Ambiguity, 0)

	for i := 0; i+1 < len(lines); i++ {
		prev, next := lines[i], lines[i+1]

		if amb, ok := checkBoundary(prev, next, rawLines); ok {
			ambiguities = append(ambiguities, amb)
		}
	}
	return ambiguities
}

// checkBoundary applies the three pairwise rules to one boundary.
func checkBoundary(prev, next sourceLine, rawLines []string) (Ambiguity, bool) {
	loc := position.Position{Line: prev.number, Column: 1, Offset: 0}

	// Rule 1: statement continuation.
	if !endsWithTerminator(prev.text) && !endsWithBrace(prev.text) && startsWithContinuation(next.text) {
		return Ambiguity{
			Location: loc,
			Kind:     StatementContinuation,
			Message: fmt.Sprintf(
				"Statement on line %d may be unintentionally continued by the next line", prev.number),
			Suggestion: "Add an explicit semicolon if the lines are separate statements",
		}, true
	}

	// Rule 2: bare return. Only a directly following code line is
	// risky: a comment, blank line, or closing brace after the return
	// leaves a single plausible reading.
	if prev.text == "return" {
		followedByCode := prev.number < len(rawLines) &&
			!isCommentOrBlank(rawLines[prev.number]) // rawLines is 0-indexed
		if followedByCode && next.number == prev.number+1 && !strings.HasPrefix(next.text, "}") {
			return Ambiguity{
				Location: loc,
				Kind:     ReturnValue,
				Message: fmt.Sprintf(
					"Return statement on line %d may be missing its value", prev.number),
				Suggestion: "Move the value onto the same line as 'return'",
			}, true
		}
		return Ambiguity{}, false
	}

	// Rule 3: expression split across a binary operator.
	if endsWithBareValue(prev.text) && !endsWithTerminator(prev.text) && startsWithBinaryOperator(next.text) {
		return Ambiguity{
			Location: loc,
			Kind:     ExpressionSplit,
			Message: fmt.Sprintf(
				"Expression on line %d may be unintentionally split across lines", prev.number),
			Suggestion: "Add an explicit semicolon or keep the operator on the first line",
		}, true
	}

	return Ambiguity{}, false
}

// GenerateQuickFixes returns exactly two fixes per ambiguity, in a
// fixed order per kind.
func GenerateQuickFixes(amb Ambiguity) []QuickFix {
	line := amb.Location.Line
	switch amb.Kind {
	case StatementContinuation:
		return []QuickFix{
			{
				Description: "Add semicolon",
				Edit:        fmt.Sprintf("Insert ';' at the end of line %d", line),
			},
			{
				Description: "Move continuation",
				Edit:        fmt.Sprintf("Join line %d onto the end of line %d", line+1, line),
			},
		}
	case ReturnValue:
		return []QuickFix{
			{
				Description: "Move return value",
				Edit:        fmt.Sprintf("Move the expression from line %d onto line %d", line+1, line),
			},
			{
				Description: "Add explicit semicolon",
				Edit:        fmt.Sprintf("Insert ';' after 'return' on line %d", line),
			},
		}
	case ExpressionSplit:
		return []QuickFix{
			{
				Description: "Add semicolon",
				Edit:        fmt.Sprintf("Insert ';' at the end of line %d", line),
			},
			{
				Description: "Move operator",
				Edit:        fmt.Sprintf("Move the leading operator from line %d onto line %d", line+1, line),
			},
		}
	default:
		return []QuickFix{}
	}
}

// looksLikeStatement filters lines that are only block punctuation out
// of the terminator style statistics.
func looksLikeStatement(line string) bool {
	switch line {
	case "{", "}", "};":
		return false
	}
	return !strings.HasSuffix(line, "{")
}

// TerminatorStats counts statement lines with and without an explicit
// trailing terminator.
func TerminatorStats(src string) (with, without int) {
	for _, line := range significantLines(src) {
		if !looksLikeStatement(line.text) {
			continue
		}
		if endsWithTerminator(line.text) {
			with++
		} else {
			without++
		}
	}
	return with, without
}

// UsesInferredTerminators reports whether more than half of the
// statement lines omit an explicit terminator.
func UsesInferredTerminators(src string) bool {
	with, without := TerminatorStats(src)
	total := with + without
	return total > 0 && without*2 > total
}

// ValidateSemicolonUsage classifies the whole file's terminator style
// and reports dangerous juxtapositions even when no full ambiguity was
// generated for them.
func ValidateSemicolonUsage(src string) UsageReport {
	report := UsageReport{
		Warnings:    make([]string, 0),
		Suggestions: make([]string, 0),
	}

	with, without := TerminatorStats(src)
	total := with + without

	if total > 0 && without*2 > total {
		report.Suggestions = append(report.Suggestions,
			"File relies on inferred statement terminators; consider a consistent explicit-semicolon style")
	}
	if with > 0 && without > 0 {
		report.Warnings = append(report.Warnings,
			"Mixed usage of explicit and inferred statement terminators")
	}

	if ambiguities := Check(src); len(ambiguities) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d potential terminator ambiguities detected", len(ambiguities)))
	}

	if dangerous := dangerousPatterns(src); len(dangerous) > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("Dangerous ASI patterns present: %s", strings.Join(dangerous, ", ")))
	}

	return report
}

// dangerousPatterns reports the fixed set of syntactically dangerous
// juxtapositions: call-then-paren, identifier-then-bracket, and
// identifier-then-backtick.
func dangerousPatterns(src string) []string {
	lines := significantLines(src)
	found := make([]string, 0)
	seen := make(map[string]bool)

	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			found = append(found, name)
		}
	}

	for i := 0; i+1 < len(lines); i++ {
		prev, next := lines[i].text, lines[i+1].text
		if endsWithTerminator(prev) || next == "" {
			continue
		}
		switch {
		case strings.HasSuffix(prev, ")") && strings.HasPrefix(next, "("):
			add("call-then-paren")
		case endsWithBareValue(prev) && strings.HasPrefix(next, "["):
			add("identifier-then-bracket")
		case endsWithBareValue(prev) && strings.HasPrefix(next, "`"):
			add("identifier-then-backtick")
		}
	}
	return found
}
