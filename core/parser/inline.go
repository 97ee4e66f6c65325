package parser

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// markerGlyphs are the characters of purely editorial tokens.
const markerGlyphs = "¶§*†‡[]"

// item is either an atom or a raw verse marker still to be resolved.
type item struct {
	atom   passage.Atom
	marker *Marker
}

// inlineBuilder collects the inline atoms of one block.
type inlineBuilder struct {
	dialect *Dialect
	items   []item
	word    []string
}

func newInlineBuilder(d *Dialect) *inlineBuilder {
	return &inlineBuilder{dialect: d}
}

// walk appends the content of n's children.
func (b *inlineBuilder) walk(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.node(c)
	}
}

func (b *inlineBuilder) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.text(n.Data)
	case html.ElementNode:
		if isElement(n, atom.Br) {
			b.closeWord()
			b.items = append(b.items, item{atom: passage.NewLine{}})
			return
		}
		if m, ok := b.dialect.Marker(n); ok {
			b.closeWord()
			b.items = append(b.items, item{marker: &m})
			return
		}
		if b.dialect.skipInline(n) {
			return
		}
		b.walk(n)
	}
}

func (b *inlineBuilder) text(s string) {
	for _, r := range s {
		if unicode.IsSpace(r) {
			b.closeWord()
			continue
		}
		b.word = append(b.word, string(r))
	}
}

// closeWord emits the pending word with a trailing space. Tokens made only
// of marker glyphs are dropped.
func (b *inlineBuilder) closeWord() {
	if len(b.word) == 0 {
		return
	}
	letters := b.word
	b.word = nil
	if isMarkerToken(letters) {
		return
	}
	letters = append(letters, " ")
	b.items = append(b.items, item{atom: passage.Word{Letters: letters}})
}

// finish closes any pending word and returns the collected items.
func (b *inlineBuilder) finish() []item {
	b.closeWord()
	return b.items
}

func isMarkerToken(letters []string) bool {
	for _, l := range letters {
		if !strings.Contains(markerGlyphs, l) {
			return false
		}
	}
	return true
}

// plainText returns the visible text of n with whitespace collapsed,
// leaving out skipped inline elements.
func plainText(d *Dialect, n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			switch c.Type {
			case html.TextNode:
				sb.WriteString(c.Data)
			case html.ElementNode:
				if isElement(c, atom.Br) {
					sb.WriteString(" ")
					continue
				}
				if d.skipInline(c) {
					continue
				}
				visit(c)
			}
		}
	}
	visit(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}
