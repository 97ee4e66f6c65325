package typing

import (
	"strings"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// Verse is a logical verse: every segment of one verse identity, stitched
// across paragraph and line boundaries.
type Verse struct {
	Ref passage.VerseRef

	// Words are the typed target, canonicalized.
	Words []passage.Atom

	// Segments are the source segments in document order.
	Segments []passage.Verse
}

// Text returns the words joined together, as a typist would enter them.
func (v Verse) Text() string {
	var sb strings.Builder
	for _, w := range v.Words {
		sb.WriteString(w.(passage.Word).String())
	}
	return sb.String()
}

// Verses stitches a passage's verse segments into logical verses.
// Consecutive segments with the same Ref belong to the same verse.
func Verses(p *passage.Passage) []Verse {
	var out []Verse
	for _, seg := range p.Verses() {
		if n := len(out); n > 0 && out[n-1].Ref == seg.Ref {
			out[n-1].Segments = append(out[n-1].Segments, seg)
			out[n-1].Words = append(out[n-1].Words, canonicalWords(seg.Atoms)...)
			continue
		}
		out = append(out, Verse{
			Ref:      seg.Ref,
			Words:    canonicalWords(seg.Atoms),
			Segments: []passage.Verse{seg},
		})
	}
	return out
}

func canonicalWords(atoms []passage.Atom) []passage.Atom {
	words := passage.TypedAtoms(atoms)
	out := make([]passage.Atom, len(words))
	for i, a := range words {
		w := a.(passage.Word)
		letters := make([]string, len(w.Letters))
		for j, l := range w.Letters {
			letters[j] = Canonicalize(l)
		}
		out[i] = passage.Word{Letters: letters}
	}
	return out
}
