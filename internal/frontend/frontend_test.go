package frontend

import (
	"strings"
	"testing"

	"github.com/pulse-lang/pulse/internal/asi"
)

func TestDetectSyntaxVersion(t *testing.T) {
	tests := []struct {
		text     string
		expected SyntaxVersion
	}{
		{"$count = 42", Modern},
		{"$count! = 42", Modern},
		{"$count: number = 42", Modern},
		{"<p>{$count}</p>", Modern},
		{`<button onClick="$increment()">go</button>`, Modern},
		{"var count = 42;", Legacy},
		{"function f() { return 1; }", Legacy},
		{"", Legacy},
		// '$' inside literals and comments must not flip the verdict.
		{`var price = "$total = 5";`, Legacy},
		{"// $count = 42\nvar x = 1;", Legacy},
		{"/* $count! = 1 */ var x = 1;", Legacy},
		{`// <button onClick="$increment()">go</button>` + "\nvar x = 1;", Legacy},
		{`/* onClick="$inc(" */ var x = 1;`, Legacy},
	}

	for i, tt := range tests {
		if got := DetectSyntaxVersion(tt.text); got != tt.expected {
			t.Fatalf("tests[%d] - version wrong for %q. expected=%q, got=%q",
				i, tt.text, tt.expected, got)
		}
	}
}

func TestDetectModernFeatures(t *testing.T) {
	text := "$count! = 0\n$label: string = \"hi\"\n$inc = () => $count + 1\n$done = true"

	features := DetectModernFeatures(text)

	if !features.DollarPrefixVariables {
		t.Fatalf("dollar prefix not detected")
	}
	if !features.ReactiveVariables {
		t.Fatalf("reactive suffix not detected")
	}
	if !features.EnhancedTypeInference {
		t.Fatalf("type annotation not detected")
	}
	if !features.AutoThisBinding {
		t.Fatalf("arrow binding not detected")
	}
	if !features.OptionalSemicolons {
		t.Fatalf("inferred terminators not detected")
	}
}

func TestDetectModernFeaturesIndependent(t *testing.T) {
	tests := []struct {
		text     string
		expected ModernFeatures
	}{
		{
			"$count = 42;",
			ModernFeatures{DollarPrefixVariables: true},
		},
		{
			"$count! = 42;",
			ModernFeatures{DollarPrefixVariables: true, ReactiveVariables: true},
		},
		{
			"$count: number = 42;",
			ModernFeatures{DollarPrefixVariables: true, EnhancedTypeInference: true},
		},
		{
			"$inc = () => 1;",
			ModernFeatures{DollarPrefixVariables: true, AutoThisBinding: true},
		},
		{
			"var x = 1;",
			ModernFeatures{},
		},
	}

	for i, tt := range tests {
		if got := DetectModernFeatures(tt.text); got != tt.expected {
			t.Fatalf("tests[%d] - features wrong for %q.\nexpected=%+v\ngot=     %+v",
				i, tt.text, tt.expected, got)
		}
	}
}

func TestParseModern(t *testing.T) {
	f := New()

	program, err := f.ParseModern("$count! = 42\n$label = \"hi\"")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if program.SyntaxVersion != Modern {
		t.Fatalf("program must carry the modern tag, got %q", program.SyntaxVersion)
	}
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
	if len(f.ASIAmbiguities()) != 0 {
		t.Fatalf("unexpected ambiguities: %v", f.ASIAmbiguities())
	}
}

func TestParseModernRecordsAmbiguities(t *testing.T) {
	f := New()

	_, err := f.ParseModern("$result = calculate()\n(someValue).process()")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	ambiguities := f.ASIAmbiguities()
	if len(ambiguities) != 1 || ambiguities[0].Kind != asi.StatementContinuation {
		t.Fatalf("ambiguities wrong: %v", ambiguities)
	}

	// The next call replaces the previous accumulation.
	if _, err := f.ParseModern("$a = 1"); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if len(f.ASIAmbiguities()) != 0 {
		t.Fatalf("ambiguities must reset per call: %v", f.ASIAmbiguities())
	}
}

func TestParseModernErrorCarriesFilename(t *testing.T) {
	f := NewWithFilename("widget.pulse")

	_, err := f.ParseModern("$ = 5")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "Expected variable name") {
		t.Fatalf("message wrong: %v", err)
	}
}

func TestFacadeDelegation(t *testing.T) {
	src := "$total = a + b\n+ c"

	ambiguities := CheckForSemicolonAmbiguity(src)
	if len(ambiguities) != 1 || ambiguities[0].Kind != asi.ExpressionSplit {
		t.Fatalf("detection wrong: %v", ambiguities)
	}

	fixes := GenerateQuickFixes(ambiguities[0])
	if len(fixes) != 2 {
		t.Fatalf("expected 2 fixes, got %d", len(fixes))
	}

	report := ValidateSemicolonUsage(src)
	if len(report.Warnings) == 0 {
		t.Fatalf("expected warnings for %q", src)
	}
}

func TestStripPreservesLineStructure(t *testing.T) {
	text := "$a = \"x\"\n/* two\nlines */\n$b = 1 // tail"

	stripped := stripCommentsAndStrings(text)
	if strings.Count(stripped, "\n") != strings.Count(text, "\n") {
		t.Fatalf("line count changed: %q", stripped)
	}
	if strings.Contains(stripped, "two") || strings.Contains(stripped, "tail") || strings.Contains(stripped, "x") {
		t.Fatalf("literal or comment text leaked: %q", stripped)
	}
}
