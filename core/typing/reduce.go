package typing

import (
	"slices"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// Reduce replays a keystroke log into the typed position. It has no side
// effects; the same log always yields the same position.
func Reduce(log []Keystroke) []passage.Atom {
	var pos []passage.Atom
	for _, k := range log {
		pos = apply(pos, k)
	}
	return pos
}

func apply(pos []passage.Atom, k Keystroke) []passage.Atom {
	switch k.Kind {
	case InsertText:
		letter := Canonicalize(k.Data)
		if letter == "" {
			return pos
		}
		if n := len(pos); n > 0 {
			if w, ok := pos[n-1].(passage.Word); ok && !passage.IsComplete(w) {
				pos[n-1] = passage.Word{Letters: append(slices.Clip(w.Letters), letter)}
				return pos
			}
		}
		return append(pos, passage.Word{Letters: []string{letter}})

	case DeleteContentBackward:
		n := len(pos)
		if n == 0 {
			return pos
		}
		if w, ok := pos[n-1].(passage.Word); ok && len(w.Letters) > 1 {
			pos[n-1] = passage.Word{Letters: w.Letters[:len(w.Letters)-1]}
			return pos
		}
		return pos[:n-1]

	case DeleteWordBackward:
		if len(pos) == 0 {
			return pos
		}
		return pos[:len(pos)-1]

	case DeleteSoftLineBackward:
		return nil
	}
	return pos
}
