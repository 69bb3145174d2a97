package asi

import (
	"strings"
	"testing"
)

func TestStatementContinuationDetected(t *testing.T) {
	src := "$result = calculate()\n(someValue).process()"

	ambiguities := Check(src)
	if len(ambiguities) != 1 {
		t.Fatalf("expected 1 ambiguity, got %d", len(ambiguities))
	}

	amb := ambiguities[0]
	if amb.Kind != StatementContinuation {
		t.Fatalf("kind wrong. expected=%q, got=%q", StatementContinuation, amb.Kind)
	}
	if amb.Location.Line != 1 {
		t.Fatalf("location wrong. expected line 1, got %d", amb.Location.Line)
	}
	if !strings.Contains(amb.Message, "may be unintentionally continued") {
		t.Fatalf("message wrong: %q", amb.Message)
	}
}

func TestContinuationStarters(t *testing.T) {
	tests := []struct {
		src      string
		expected int
	}{
		{"$a = obj\n(x).run()", 1},
		{"$a = obj\n[0].run()", 1},
		{"$a = tag\n`template`", 1},
		{"$a = obj\n.method()", 1},
		{"$a = obj;\n(x).run()", 0},    // explicit terminator
		{"$a = obj\n$b = 2", 0},        // plain next statement
		{"$f = () => {\n(x).run()", 0}, // opening brace ends the line
	}

	for i, tt := range tests {
		got := Check(tt.src)
		if len(got) != tt.expected {
			t.Fatalf("tests[%d] - ambiguity count wrong. expected=%d, got=%d (%v)",
				i, tt.expected, len(got), got)
		}
	}
}

func TestReturnValueDetected(t *testing.T) {
	src := "$f = () => {\nreturn\n42\n}"

	ambiguities := Check(src)
	if len(ambiguities) != 1 {
		t.Fatalf("expected 1 ambiguity, got %d: %v", len(ambiguities), ambiguities)
	}

	amb := ambiguities[0]
	if amb.Kind != ReturnValue {
		t.Fatalf("kind wrong. expected=%q, got=%q", ReturnValue, amb.Kind)
	}
	if amb.Location.Line != 2 {
		t.Fatalf("location wrong. expected line 2, got %d", amb.Location.Line)
	}
	if !strings.Contains(amb.Message, "may be missing its value") {
		t.Fatalf("message wrong: %q", amb.Message)
	}
}

func TestReturnValueSuppressed(t *testing.T) {
	tests := []string{
		"return\n}",            // closing brace: one plausible reading
		"return\n// done\n42",  // comment directly after the return
		"return\n\n42",         // blank line breaks the adjacency
		"return 42\nprocess()", // the return already has its value
	}

	for i, src := range tests {
		for _, amb := range Check(src) {
			if amb.Kind == ReturnValue {
				t.Fatalf("tests[%d] - unexpected return_value ambiguity in %q", i, src)
			}
		}
	}
}

func TestExpressionSplitDetected(t *testing.T) {
	src := "$total = a + b\n+ c"

	ambiguities := Check(src)
	if len(ambiguities) != 1 {
		t.Fatalf("expected 1 ambiguity, got %d", len(ambiguities))
	}

	amb := ambiguities[0]
	if amb.Kind != ExpressionSplit {
		t.Fatalf("kind wrong. expected=%q, got=%q", ExpressionSplit, amb.Kind)
	}
	if !strings.Contains(amb.Message, "may be unintentionally split") {
		t.Fatalf("message wrong: %q", amb.Message)
	}
}

func TestExpressionSplitSuppressed(t *testing.T) {
	tests := []string{
		"$total = (a + b)\n* c", // parenthesized result is not a bare value
		"$total = a + b;\n+ c",  // explicit terminator
	}

	for i, src := range tests {
		for _, amb := range Check(src) {
			if amb.Kind == ExpressionSplit {
				t.Fatalf("tests[%d] - unexpected expression_split ambiguity in %q", i, src)
			}
		}
	}
}

func TestOneAmbiguityPerBoundary(t *testing.T) {
	// The middle line both continues line 1 and is continued by line 3.
	src := "$a = f()\n(x).run()\n(y).run()"

	ambiguities := Check(src)
	if len(ambiguities) != 2 {
		t.Fatalf("expected 2 ambiguities, got %d", len(ambiguities))
	}
	if ambiguities[0].Location.Line != 1 || ambiguities[1].Location.Line != 2 {
		t.Fatalf("ordering wrong: %v", ambiguities)
	}
}

func TestCommentLinesIgnored(t *testing.T) {
	src := "$a = obj\n/* block\ncomment */\n// line comment\n$b = 2"

	if got := Check(src); len(got) != 0 {
		t.Fatalf("expected no ambiguities, got %v", got)
	}
}

func TestInlineCommentDoesNotHideTerminator(t *testing.T) {
	tests := []string{
		"$result = calculate(); // done\n(someValue).process()",
		"$result = calculate(); /* done */\n(someValue).process()",
		"$total = a + b; // sum\n+ c",
	}

	for i, src := range tests {
		if got := Check(src); len(got) != 0 {
			t.Fatalf("tests[%d] - expected no ambiguities for %q, got %v", i, src, got)
		}
	}
}

func TestCommentMarkersInsideStringsKept(t *testing.T) {
	// The '//' lives inside a literal, so the line really does lack a
	// terminator and the continuation boundary is still risky.
	src := "$url = \"http://example.com\"\n(x).run()"

	ambiguities := Check(src)
	if len(ambiguities) != 1 || ambiguities[0].Kind != StatementContinuation {
		t.Fatalf("detection wrong: %v", ambiguities)
	}
}

func TestQuickFixContract(t *testing.T) {
	tests := []struct {
		src          string
		kind         Kind
		descriptions []string
	}{
		{
			"$result = calculate()\n(someValue).process()",
			StatementContinuation,
			[]string{"Add semicolon", "Move continuation"},
		},
		{
			"$f = () => {\nreturn\n42\n}",
			ReturnValue,
			[]string{"Move return value", "Add explicit semicolon"},
		},
		{
			"$total = a + b\n+ c",
			ExpressionSplit,
			[]string{"Add semicolon", "Move operator"},
		},
	}

	for i, tt := range tests {
		ambiguities := Check(tt.src)
		if len(ambiguities) != 1 || ambiguities[0].Kind != tt.kind {
			t.Fatalf("tests[%d] - detection wrong: %v", i, ambiguities)
		}

		fixes := GenerateQuickFixes(ambiguities[0])
		if len(fixes) != 2 {
			t.Fatalf("tests[%d] - every ambiguity needs exactly 2 fixes, got %d", i, len(fixes))
		}
		for j, want := range tt.descriptions {
			if fixes[j].Description != want {
				t.Fatalf("tests[%d] - fix %d description wrong. expected=%q, got=%q",
					i, j, want, fixes[j].Description)
			}
			if fixes[j].Edit == "" {
				t.Fatalf("tests[%d] - fix %d has no edit", i, j)
			}
		}
	}
}

func TestTerminatorStats(t *testing.T) {
	src := "$a = 1;\n$b = 2\n$c = 3\n$f = () => {\nreturn 1\n}"

	with, without := TerminatorStats(src)
	if with != 1 {
		t.Fatalf("explicit count wrong. expected=1, got=%d", with)
	}
	// $b, $c, return 1; brace-only lines do not count.
	if without != 3 {
		t.Fatalf("inferred count wrong. expected=3, got=%d", without)
	}
}

func TestTerminatorStatsWithInlineComments(t *testing.T) {
	src := "$a = 1; // one\n$b = 2; /* two */"

	with, without := TerminatorStats(src)
	if with != 2 || without != 0 {
		t.Fatalf("stats wrong. expected=2/0, got=%d/%d", with, without)
	}

	report := ValidateSemicolonUsage(src)
	if len(report.Warnings) != 0 || len(report.Suggestions) != 0 {
		t.Fatalf("explicit style with comments must produce an empty report: %+v", report)
	}
}

func TestUsesInferredTerminators(t *testing.T) {
	tests := []struct {
		src      string
		expected bool
	}{
		{"$a = 1\n$b = 2\n$c = 3;", true},
		{"$a = 1;\n$b = 2;\n$c = 3", false},
		{"", false},
	}

	for i, tt := range tests {
		if got := UsesInferredTerminators(tt.src); got != tt.expected {
			t.Fatalf("tests[%d] - expected=%t, got=%t", i, tt.expected, got)
		}
	}
}

func TestValidateSemicolonUsage(t *testing.T) {
	src := "$a = 1\n$b = 2;\n$result = calculate()\n(someValue).process()"

	report := ValidateSemicolonUsage(src)

	wantWarnings := []string{
		"Mixed usage of explicit and inferred statement terminators",
		"1 potential terminator ambiguities detected",
		"Dangerous ASI patterns present: call-then-paren",
	}
	if len(report.Warnings) != len(wantWarnings) {
		t.Fatalf("warnings wrong: %v", report.Warnings)
	}
	for i, want := range wantWarnings {
		if report.Warnings[i] != want {
			t.Fatalf("warnings[%d] wrong. expected=%q, got=%q", i, want, report.Warnings[i])
		}
	}

	if len(report.Suggestions) != 1 ||
		!strings.Contains(report.Suggestions[0], "inferred statement terminators") {
		t.Fatalf("suggestions wrong: %v", report.Suggestions)
	}
}

func TestValidateSemicolonUsageCleanFile(t *testing.T) {
	src := "$a = 1;\n$b = 2;\n$c = 3;"

	report := ValidateSemicolonUsage(src)
	if len(report.Warnings) != 0 || len(report.Suggestions) != 0 {
		t.Fatalf("clean file must produce an empty report: %+v", report)
	}
}

func TestDangerousPatternNames(t *testing.T) {
	tests := []struct {
		src      string
		expected string
	}{
		{"$a = f()\n(b).run()", "call-then-paren"},
		{"$a = items\n[0] = 1", "identifier-then-bracket"},
		{"$a = tag\n`template`", "identifier-then-backtick"},
	}

	for i, tt := range tests {
		report := ValidateSemicolonUsage(tt.src)
		found := false
		for _, w := range report.Warnings {
			if strings.Contains(w, tt.expected) {
				found = true
			}
		}
		if !found {
			t.Fatalf("tests[%d] - pattern %q not reported: %v", i, tt.expected, report.Warnings)
		}
	}
}
