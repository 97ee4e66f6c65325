package typing

import (
	"unicode/utf8"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// Admit returns the log with k appended, or the log unchanged when k is
// rejected. canonical holds the active verse's words after Canonicalize.
//
// Rejected keystrokes:
//   - any delete on an empty log
//   - any delete when the last typed word is complete and correct
//   - a space or Enter when nothing is typed, when the last word is already
//     complete, or when the canonical word ends with the other boundary
//   - inserts that are not a single character
func Admit(k Keystroke, log []Keystroke, canonical []passage.Atom) []Keystroke {
	if !admissible(k, Reduce(log), canonical) {
		return log
	}
	out := make([]Keystroke, len(log), len(log)+1)
	copy(out, log)
	return append(out, k)
}

func admissible(k Keystroke, pos, canonical []passage.Atom) bool {
	if k.Kind.IsDelete() {
		if len(pos) == 0 {
			return false
		}
		i := len(pos) - 1
		if passage.IsComplete(pos[i]) && i < len(canonical) && passage.AtomsEqual(pos[i], canonical[i]) {
			return false
		}
		return true
	}

	if k.Kind != InsertText {
		return false
	}
	letter := Canonicalize(k.Data)
	if utf8.RuneCountInString(letter) != 1 {
		return false
	}
	if !passage.IsBoundary(letter) {
		return true
	}

	if len(pos) == 0 || passage.IsComplete(pos[len(pos)-1]) {
		return false
	}
	i := len(pos) - 1
	if i < len(canonical) {
		if w, ok := canonical[i].(passage.Word); ok {
			if want := w.Delimiter(); want != "" && want != letter {
				return false
			}
		}
	}
	return true
}
