package position

import "testing"

func TestPositionString(t *testing.T) {
	tests := []struct {
		pos      Position
		expected string
	}{
		{Position{Filename: "widget.pulse", Line: 3, Column: 7}, "widget.pulse:3:7"},
		{Position{Filename: "src/nested/app.pulse", Line: 1, Column: 1}, "app.pulse:1:1"},
		{Position{Line: 12, Column: 4}, "12:4"},
	}

	for i, tt := range tests {
		if got := tt.pos.String(); got != tt.expected {
			t.Fatalf("tests[%d] - expected=%q, got=%q", i, tt.expected, got)
		}
	}
}

func TestPositionValidity(t *testing.T) {
	tests := []struct {
		pos      Position
		expected bool
	}{
		{Position{Line: 1, Column: 1, Offset: 0}, true},
		{Position{Line: 0, Column: 1, Offset: 0}, false},
		{Position{Line: 1, Column: 0, Offset: 0}, false},
		{Position{Line: 1, Column: 1, Offset: -1}, false},
	}

	for i, tt := range tests {
		if got := tt.pos.IsValid(); got != tt.expected {
			t.Fatalf("tests[%d] - expected=%t, got=%t", i, tt.expected, got)
		}
	}
}

func TestSpanContains(t *testing.T) {
	span := Span{
		Start: Position{Line: 1, Column: 1, Offset: 0},
		End:   Position{Line: 1, Column: 6, Offset: 5},
	}

	inside := Position{Line: 1, Column: 3, Offset: 2}
	if !span.Contains(inside) {
		t.Fatalf("span must contain %v", inside)
	}

	atEnd := Position{Line: 1, Column: 6, Offset: 5}
	if span.Contains(atEnd) {
		t.Fatalf("span end is exclusive")
	}
}

func TestSpanUnion(t *testing.T) {
	a := Span{
		Start: Position{Line: 1, Column: 1, Offset: 0},
		End:   Position{Line: 1, Column: 4, Offset: 3},
	}
	b := Span{
		Start: Position{Line: 2, Column: 1, Offset: 10},
		End:   Position{Line: 2, Column: 5, Offset: 14},
	}

	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 14 {
		t.Fatalf("union wrong: %v", u)
	}

	if got := a.Union(Span{}); got != a {
		t.Fatalf("union with invalid span must keep the valid side, got %v", got)
	}
}

func TestSourceFile(t *testing.T) {
	sf := NewSourceFile("counter.pulse", "$count = 0\n$label = \"hi\"")

	if got := sf.GetLine(1); got != "$count = 0" {
		t.Fatalf("line 1 wrong: %q", got)
	}
	if got := sf.GetLine(3); got != "" {
		t.Fatalf("out-of-range line must be empty, got %q", got)
	}

	pos := sf.PositionFromOffset(11)
	if pos.Line != 2 || pos.Column != 1 {
		t.Fatalf("offset conversion wrong: %+v", pos)
	}

	span := Span{
		Start: Position{Filename: "counter.pulse", Line: 1, Column: 1, Offset: 0},
		End:   Position{Filename: "counter.pulse", Line: 1, Column: 7, Offset: 6},
	}
	if got := sf.GetSpanText(span); got != "$count" {
		t.Fatalf("span text wrong: %q", got)
	}
}
