package canon

import (
	"strconv"
	"strings"
)

// FormatOptions controls human-facing reference strings.
type FormatOptions struct {
	// ElideSingleChapter drops "1:" for one-chapter books ("Jude 3").
	ElideSingleChapter bool
}

// FormatRef renders a reference such as "Genesis 1:1", "Psalm 23" or
// "Jude 3". A verse of 0 renders the chapter only; unknown books render the
// id as given.
func (c *Canon) FormatRef(id string, chapter, verse int, opts FormatOptions) string {
	name := id
	single := false
	if b, ok := c.Book(id); ok {
		name = b.RefName()
		single = b.SingleChapter()
	}

	var sb strings.Builder
	sb.WriteString(name)
	if single && opts.ElideSingleChapter && chapter == 1 {
		if verse > 0 {
			sb.WriteString(" ")
			sb.WriteString(strconv.Itoa(verse))
		}
		return sb.String()
	}

	sb.WriteString(" ")
	sb.WriteString(strconv.Itoa(chapter))
	if verse > 0 {
		sb.WriteString(":")
		sb.WriteString(strconv.Itoa(verse))
	}
	return sb.String()
}
