package typing

import (
	"testing"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// target is "In the\nbeginning " as canonical words.
var target = []passage.Atom{
	passage.NewWord("In "),
	passage.NewWord("the\n"),
	passage.NewWord("beginning "),
}

func TestAdmit(t *testing.T) {
	tests := []struct {
		name  string
		log   []Keystroke
		k     Keystroke
		admit bool
	}{
		{"backspace on empty log", nil, Backspace(), false},
		{"word delete on empty log", nil, Keystroke{Kind: DeleteWordBackward}, false},
		{"line delete on empty log", nil, Keystroke{Kind: DeleteSoftLineBackward}, false},
		{"backspace in progress", Keystrokes("I"), Backspace(), true},
		{"backspace after correct word", Keystrokes("In "), Backspace(), false},
		{"word delete after correct word", Keystrokes("In "), Keystroke{Kind: DeleteWordBackward}, false},
		{"backspace after incorrect word", Keystrokes("Im "), Backspace(), true},
		{"backspace into next word", Keystrokes("In t"), Backspace(), true},
		{"backspace when log is non-empty but position is empty", append(Keystrokes("I"), Backspace()), Backspace(), false},
		{"letter", nil, Insert("I"), true},
		{"wrong letter still admitted", nil, Insert("x"), true},
		{"space at start", nil, Insert(" "), false},
		{"enter at start", nil, Insert("Enter"), false},
		{"space completes a word", Keystrokes("In"), Insert(" "), true},
		{"double space", Keystrokes("In "), Insert(" "), false},
		{"enter where space is required", Keystrokes("In"), Insert("Enter"), false},
		{"space where newline is required", Keystrokes("In the"), Insert(" "), false},
		{"enter where newline is required", Keystrokes("In the"), Insert("Enter"), true},
		{"double enter", append(Keystrokes("In the"), Insert("Enter")), Insert("Enter"), false},
		{"space past the last word", Keystrokes("In the\nbeginning extra"), Insert(" "), true},
		{"multi-character insert", nil, Insert("In"), false},
		{"empty insert", nil, Insert(""), false},
		{"unknown kind", nil, Keystroke{Kind: "historyUndo"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := tt.log
			got := Admit(tt.k, log, target)
			admitted := len(got) == len(log)+1
			if admitted != tt.admit {
				t.Fatalf("Admit(%+v) admitted = %v, want %v", tt.k, admitted, tt.admit)
			}
			if !admitted && len(got) != len(log) {
				t.Errorf("rejected keystroke changed log length %d -> %d", len(log), len(got))
			}
			if admitted && got[len(got)-1] != tt.k {
				t.Errorf("last entry = %+v, want %+v", got[len(got)-1], tt.k)
			}
		})
	}
}

func TestAdmitDoesNotAlias(t *testing.T) {
	log := make([]Keystroke, 1, 8)
	log[0] = Insert("I")
	a := Admit(Insert("n"), log, target)
	b := Admit(Insert("x"), log, target)
	if a[1].Data != "n" || b[1].Data != "x" {
		t.Errorf("Admit results share storage: %+v %+v", a, b)
	}
}

func TestStatuses(t *testing.T) {
	pos := Reduce(Keystrokes("In tha beg"))
	got := Statuses(pos, target)
	want := []WordStatus{
		{Index: 0, Typed: "In ", Complete: true, Correct: true},
		{Index: 1, Typed: "tha ", Complete: true, Correct: false},
		{Index: 2, Typed: "beg", Complete: false, Correct: true},
	}
	if len(got) != len(want) {
		t.Fatalf("len(Statuses) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Statuses[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}

	extra := Statuses(Reduce(Keystrokes("In the\nbeginning more")), target)
	if last := extra[len(extra)-1]; last.Correct {
		t.Errorf("word past the verse = %+v, want incorrect", last)
	}
}
