package canon

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
)

// Location is a structured verse location as carried by provider verse
// markers, e.g. "GEN 1:1" or "ROM 16:25-27".
type Location struct {
	// Book is the USFM book code (e.g., "GEN", "1SA").
	Book string `json:"book"`

	// Chapter is the chapter number (1-indexed).
	Chapter int `json:"chapter"`

	// Verse is the first verse number (1-indexed).
	Verse int `json:"verse"`

	// VerseEnd is the last verse of a range, 0 when the location is a single verse.
	VerseEnd int `json:"verse_end,omitempty"`
}

// locationGrammar is the participle grammar for "BOOK CHAPTER:VERSE[-VERSE]".
//
//nolint:govet // participle grammar tags are not standard struct tags
type locationGrammar struct {
	BookPrefix string `@Int?`
	BookName   string `@Ident`
	Chapter    int    `@Int ":"`
	Verse      int    `@Int`
	VerseEnd   *int   `( "-" @Int )?`
}

// locationLexer tokenizes verse locations. Book codes are upper case; the
// numeric prefix of codes such as "1SA" lexes as a separate Int.
var locationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Ident", Pattern: `[A-Z][A-Z]*`},
	{Name: "Punct", Pattern: `[:\-\x{2013}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var locationParser = participle.MustBuild[locationGrammar](
	participle.Lexer(locationLexer),
	participle.Elide("Whitespace"),
)

// ParseLocation parses a location string such as "PSA 23:1" or "1SA 3:4-5".
// En dashes are accepted as range separators.
func ParseLocation(s string) (*Location, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errors.NewParse("location", "", "empty location string")
	}
	s = strings.ReplaceAll(s, "–", "-")

	parsed, err := locationParser.ParseString("", s)
	if err != nil {
		pe := errors.NewParse("location", "", fmt.Sprintf("invalid location %q", s))
		pe.Err = err
		return nil, pe
	}

	loc := &Location{
		Book:    parsed.BookPrefix + parsed.BookName,
		Chapter: parsed.Chapter,
		Verse:   parsed.Verse,
	}
	if parsed.VerseEnd != nil && *parsed.VerseEnd > loc.Verse {
		loc.VerseEnd = *parsed.VerseEnd
	}
	return loc, nil
}

// String returns the location in "BOOK C:V[-V]" form.
func (l *Location) String() string {
	var sb strings.Builder
	sb.WriteString(l.Book)
	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(l.Chapter))
	sb.WriteString(":")
	sb.WriteString(strconv.Itoa(l.Verse))
	if l.VerseEnd > 0 {
		sb.WriteString("-")
		sb.WriteString(strconv.Itoa(l.VerseEnd))
	}
	return sb.String()
}

// IsRange returns true if the location spans multiple verses.
func (l *Location) IsRange() bool {
	return l.VerseEnd > l.Verse
}

// Resolve maps the location's USFM code onto a book of the canon.
func (l *Location) Resolve(m Metadata) (Book, error) {
	b, ok := m.Book(l.Book)
	if !ok {
		return Book{}, errors.NewNotFound("book", l.Book)
	}
	return b, nil
}

// ValidRef checks that a chapter and verse exist in the given book.
func ValidRef(c *Canon, id string, chapter, verse int) error {
	b, ok := c.Book(id)
	if !ok {
		return errors.NewNotFound("book", id)
	}
	if chapter < 1 || chapter > b.ChapterCount() {
		return errors.NewValidation("chapter", fmt.Sprintf("%s has %d chapters, got %d", b.Name, b.ChapterCount(), chapter))
	}
	if verse < 1 || verse > b.VerseCount(chapter) {
		return errors.NewValidation("verse", fmt.Sprintf("%s %d has %d verses, got %d", b.RefName(), chapter, b.VerseCount(chapter), verse))
	}
	return nil
}
