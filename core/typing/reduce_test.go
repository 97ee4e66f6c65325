package typing

import (
	"strings"
	"testing"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

func render(pos []passage.Atom) string {
	parts := make([]string, len(pos))
	for i, a := range pos {
		parts[i] = a.(passage.Word).String()
	}
	return strings.Join(parts, "|")
}

func TestReduce(t *testing.T) {
	tests := []struct {
		name string
		log  []Keystroke
		want string
	}{
		{"empty", nil, ""},
		{"letters extend a word", Keystrokes("In"), "In"},
		{"space completes a word", Keystrokes("In the"), "In |the"},
		{"enter name becomes newline", append(Keystrokes("want"), Insert("Enter")), "want\n"},
		{"letter after newline starts a word", append(append(Keystrokes("a"), Insert("insertLineBreak")), Insert("b")), "a\n|b"},
		{"smart quotes", Keystrokes("“Hi”"), `"Hi"`},
		{"apostrophes", Keystrokes("LORD’s"), "LORD's"},
		{"backspace drops a letter", append(Keystrokes("Ing"), Backspace()), "In"},
		{"backspace drops a one-letter word", append(Keystrokes("In t"), Backspace()), "In "},
		{"backspace reopens a completed word", append(Keystrokes("In "), Backspace()), "In"},
		{"backspace on empty", []Keystroke{Backspace()}, ""},
		{"word backward drops the atom", append(Keystrokes("In the"), Keystroke{Kind: DeleteWordBackward}), "In "},
		{"word backward drops a completed word", append(Keystrokes("In the "), Keystroke{Kind: DeleteWordBackward}), "In "},
		{"soft line clears", append(Keystrokes("In the beg"), Keystroke{Kind: DeleteSoftLineBackward}), ""},
		{"typing after clear", append(append(Keystrokes("x"), Keystroke{Kind: DeleteSoftLineBackward}), Keystrokes("In")...), "In"},
		{"empty insert ignored", []Keystroke{Insert("")}, ""},
		{"unknown kind ignored", []Keystroke{{Kind: "historyUndo"}}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := render(Reduce(tt.log)); got != tt.want {
				t.Errorf("Reduce() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestReduceDeterministic(t *testing.T) {
	log := append(Keystrokes("The LORD is my"), Backspace(), Backspace(), Insert("y"), Insert(" "))
	first := Reduce(log)
	second := Reduce(log)
	if !passage.SequenceEqual(first, second) {
		t.Errorf("Reduce() not deterministic: %q vs %q", render(first), render(second))
	}

	// a longer log sharing a prefix must not disturb the shorter one's result
	before := render(Reduce(log[:5]))
	_ = Reduce(append(log[:5:5], Insert("!")))
	if after := render(Reduce(log[:5])); after != before {
		t.Errorf("Reduce() mutated shared state: %q then %q", before, after)
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"“", `"`},
		{"”", `"`},
		{"«", `"`},
		{"’", "'"},
		{"‘", "'"},
		{"`", "'"},
		{"Enter", "\n"},
		{"insertParagraph", "\n"},
		{"\r\n", "\n"},
		{"a", "a"},
		{" ", " "},
	}
	for _, tt := range tests {
		if got := Canonicalize(tt.in); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
	if got := CanonicalizeText("the LORD’s “house”"); got != `the LORD's "house"` {
		t.Errorf("CanonicalizeText = %q", got)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range []Kind{InsertText, DeleteContentBackward, DeleteWordBackward, DeleteSoftLineBackward} {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	if _, err := ParseKind("insertFromPaste"); err == nil {
		t.Error("ParseKind(insertFromPaste) should fail")
	}
	if InsertText.IsDelete() || !DeleteWordBackward.IsDelete() {
		t.Error("IsDelete classification wrong")
	}
}
