package typing

import "github.com/joshuawootonn/type-the-word-sub001/core/passage"

// WordStatus describes one typed word against its canonical counterpart.
type WordStatus struct {
	Index    int    `json:"index"`
	Typed    string `json:"typed"`
	Complete bool   `json:"complete"`
	Correct  bool   `json:"correct"`
}

// Statuses reports, per typed word, whether it is complete and whether it
// matches the canonical word at the same index. An incomplete word is
// correct while it is a prefix of the canonical word.
func Statuses(pos, canonical []passage.Atom) []WordStatus {
	out := make([]WordStatus, 0, len(pos))
	for i, a := range pos {
		w, ok := a.(passage.Word)
		if !ok {
			continue
		}
		st := WordStatus{
			Index:    i,
			Typed:    w.String(),
			Complete: passage.IsComplete(w),
		}
		if i < len(canonical) {
			if st.Complete {
				st.Correct = passage.AtomsEqual(w, canonical[i])
			} else if c, ok := canonical[i].(passage.Word); ok {
				st.Correct = isPrefix(w.Letters, c.Letters)
			}
		}
		out = append(out, st)
	}
	return out
}

func isPrefix(prefix, letters []string) bool {
	if len(prefix) > len(letters) {
		return false
	}
	for i := range prefix {
		if prefix[i] != letters[i] {
			return false
		}
	}
	return true
}
