package passage

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
)

// VerseRef identifies a verse within a translation.
type VerseRef struct {
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Verse       int    `json:"verse"`
	Translation string `json:"translation"`
}

// String returns "book chapter:verse (translation)".
func (r VerseRef) String() string {
	var sb strings.Builder
	sb.WriteString(r.Book)
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(r.Chapter))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(r.Verse))
	if r.Translation != "" {
		sb.WriteString(" (")
		sb.WriteString(r.Translation)
		sb.WriteString(")")
	}
	return sb.String()
}

// Verse is one segment of a verse inside a paragraph. A verse broken across
// paragraphs appears as a leading segment plus HangingVerse segments with
// the same Ref.
type Verse struct {
	Ref   VerseRef `json:"verse"`
	Atoms []Atom   `json:"nodes"`

	// HangingVerse marks a segment with no leading VerseNumber that
	// continues the previous segment of the same verse.
	HangingVerse bool `json:"hangingVerse,omitempty"`

	// Offset is the number of typed atoms of this verse in earlier segments.
	Offset int `json:"offset"`

	// Length is the number of Word and VerseNumber atoms in this segment.
	Length int `json:"length"`
}

// Words returns the Word atoms of the segment in order.
func (v Verse) Words() []Atom {
	return TypedAtoms(v.Atoms)
}

// Text renders the segment as visible text.
func (v Verse) Text() string {
	var sb strings.Builder
	for _, a := range v.Atoms {
		sb.WriteString(Text(a))
	}
	return sb.String()
}

// TypedAtoms returns the atoms a typist must reproduce: the Word atoms, in
// order.
func TypedAtoms(atoms []Atom) []Atom {
	var out []Atom
	for _, a := range atoms {
		if w, ok := a.(Word); ok {
			out = append(out, w)
		}
	}
	return out
}

// CountTyped counts the atoms that contribute to a verse's Length.
func CountTyped(atoms []Atom) int {
	n := 0
	for _, a := range atoms {
		if IsTyped(a) {
			n++
		}
	}
	return n
}

// ParagraphKind distinguishes prose from poetry.
type ParagraphKind string

// Paragraph kinds.
const (
	ParagraphDefault ParagraphKind = "default"
	ParagraphQuote   ParagraphKind = "quote"
)

// Block is a top-level element of a passage: a *Paragraph or a *Header.
type Block interface {
	BlockType() string
	isBlock()
}

// Paragraph is a run of verses rendered together.
type Paragraph struct {
	Verses   []Verse       `json:"nodes"`
	Kind     ParagraphKind `json:"kind"`
	Indented bool          `json:"indented,omitempty"`
}

func (*Paragraph) BlockType() string { return "paragraph" }
func (*Paragraph) isBlock()          {}

// Text renders the paragraph as visible text.
func (p *Paragraph) Text() string {
	var sb strings.Builder
	for _, v := range p.Verses {
		sb.WriteString(v.Text())
	}
	return sb.String()
}

// MarshalJSON tags the block with its type.
func (p *Paragraph) MarshalJSON() ([]byte, error) {
	type plain Paragraph
	return json.Marshal(struct {
		Type string `json:"type"`
		*plain
	}{p.BlockType(), (*plain)(p)})
}

// Header is a section heading.
type Header struct {
	// Level is 2, 3 or 4.
	Level int    `json:"level"`
	Text  string `json:"text"`
}

func (*Header) BlockType() string { return "header" }
func (*Header) isBlock()          {}

// MarshalJSON tags the block with its type.
func (h *Header) MarshalJSON() ([]byte, error) {
	type plain Header
	return json.Marshal(struct {
		Type string `json:"type"`
		*plain
	}{h.BlockType(), (*plain)(h)})
}

// Passage is a parsed chapter.
type Passage struct {
	Translation string  `json:"translation"`
	Book        string  `json:"book"`
	Chapter     int     `json:"chapter"`
	Blocks      []Block `json:"nodes"`

	// FirstVerse is the first verse marker in document order.
	FirstVerse VerseNumber `json:"firstVerse"`

	PrevChapter *canon.ChapterLink `json:"prevChapter,omitempty"`
	NextChapter *canon.ChapterLink `json:"nextChapter,omitempty"`
}

// Paragraphs returns the passage's paragraphs in document order.
func (p *Passage) Paragraphs() []*Paragraph {
	var out []*Paragraph
	for _, b := range p.Blocks {
		if para, ok := b.(*Paragraph); ok {
			out = append(out, para)
		}
	}
	return out
}

// Verses returns every verse segment in document order.
func (p *Passage) Verses() []Verse {
	var out []Verse
	for _, para := range p.Paragraphs() {
		out = append(out, para.Verses...)
	}
	return out
}

// Headers returns the passage's headers in document order.
func (p *Passage) Headers() []*Header {
	var out []*Header
	for _, b := range p.Blocks {
		if h, ok := b.(*Header); ok {
			out = append(out, h)
		}
	}
	return out
}

// Text renders the passage as visible text, one block per line.
func (p *Passage) Text() string {
	var sb strings.Builder
	for _, b := range p.Blocks {
		switch b := b.(type) {
		case *Header:
			sb.WriteString(b.Text)
		case *Paragraph:
			sb.WriteString(b.Text())
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
