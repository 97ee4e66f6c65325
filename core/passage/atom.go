package passage

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AtomKind names an Atom variant.
type AtomKind string

// Atom kinds.
const (
	KindWord        AtomKind = "word"
	KindSpace       AtomKind = "space"
	KindNewLine     AtomKind = "newLine"
	KindVerseNumber AtomKind = "verseNumber"
)

// Atom is the smallest position-occupying unit of a verse.
// The set of implementations is closed: Word, Space, NewLine, VerseNumber.
type Atom interface {
	Kind() AtomKind
	isAtom()
}

// Word is a run of letters. A word is complete once its last letter is a
// space or newline.
type Word struct {
	Letters []string `json:"letters"`
}

// NewWord splits s into single-character letters.
func NewWord(s string) Word {
	letters := make([]string, 0, len(s))
	for _, r := range s {
		letters = append(letters, string(r))
	}
	return Word{Letters: letters}
}

func (Word) Kind() AtomKind { return KindWord }
func (Word) isAtom()        {}

// String returns the word's letters joined together.
func (w Word) String() string {
	return strings.Join(w.Letters, "")
}

// Delimiter returns the last letter if it is a word boundary, or "".
func (w Word) Delimiter() string {
	if len(w.Letters) == 0 {
		return ""
	}
	last := w.Letters[len(w.Letters)-1]
	if IsBoundary(last) {
		return last
	}
	return ""
}

// WithDelimiter returns a copy of w whose trailing boundary is d. A missing
// boundary is appended; an existing one is replaced.
func (w Word) WithDelimiter(d string) Word {
	letters := make([]string, 0, len(w.Letters)+1)
	letters = append(letters, w.Letters...)
	if w.Delimiter() != "" {
		letters = letters[:len(letters)-1]
	}
	return Word{Letters: append(letters, d)}
}

// MarshalJSON tags the word with its kind.
func (w Word) MarshalJSON() ([]byte, error) {
	letters := w.Letters
	if letters == nil {
		letters = []string{}
	}
	return json.Marshal(struct {
		Type    AtomKind `json:"type"`
		Letters []string `json:"letters"`
	}{KindWord, letters})
}

// Space is an untyped boundary atom.
type Space struct{}

func (Space) Kind() AtomKind { return KindSpace }
func (Space) isAtom()        {}

// MarshalJSON tags the atom with its kind.
func (Space) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"space"}`), nil
}

// NewLine is a line break inside a paragraph.
type NewLine struct{}

func (NewLine) Kind() AtomKind { return KindNewLine }
func (NewLine) isAtom()        {}

// MarshalJSON tags the atom with its kind.
func (NewLine) MarshalJSON() ([]byte, error) {
	return []byte(`{"type":"newLine"}`), nil
}

// VerseNumber marks the start of a verse.
type VerseNumber struct {
	// Value is the numeric display value.
	Value int `json:"value"`

	// Text is the rendered marker text (e.g., "1", "23:1").
	Text string `json:"text"`

	// Verse is the verse number from the marker's location. For ranges it is
	// the first verse.
	Verse int `json:"verse"`

	// Chapter is the chapter number.
	Chapter int `json:"chapter"`

	// Book is the book slug (e.g., "genesis", "psalm").
	Book string `json:"book"`

	// Translation is the translation id (e.g., "esv", "bsb").
	Translation string `json:"translation"`
}

func (VerseNumber) Kind() AtomKind { return KindVerseNumber }
func (VerseNumber) isAtom()        {}

// Ref returns the verse identity carried by the marker.
func (n VerseNumber) Ref() VerseRef {
	return VerseRef{
		Book:        n.Book,
		Chapter:     n.Chapter,
		Verse:       n.Verse,
		Translation: n.Translation,
	}
}

// MarshalJSON tags the marker with its kind.
func (n VerseNumber) MarshalJSON() ([]byte, error) {
	type plain VerseNumber
	return json.Marshal(struct {
		Type AtomKind `json:"type"`
		plain
	}{KindVerseNumber, plain(n)})
}

// IsBoundary reports whether a letter closes a word.
func IsBoundary(letter string) bool {
	return letter == " " || letter == "\n"
}

// String renders an atom for debugging and test failure messages.
func String(a Atom) string {
	switch a := a.(type) {
	case Word:
		return fmt.Sprintf("Word(%q)", a.String())
	case Space:
		return "Space"
	case NewLine:
		return "NewLine"
	case VerseNumber:
		return fmt.Sprintf("VerseNumber(%d)", a.Value)
	default:
		return fmt.Sprintf("Atom(%T)", a)
	}
}
