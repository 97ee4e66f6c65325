package parser

import (
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// BlockKind classifies a top-level markup node.
type BlockKind int

// Block kinds.
const (
	// KindSkip drops the node: chapter labels, cross-reference blocks,
	// copyright and footnote sections, blank separators.
	KindSkip BlockKind = iota
	// KindHeader becomes a passage.Header.
	KindHeader
	// KindParagraph is a prose paragraph.
	KindParagraph
	// KindPoetryLine is one line of poetry, merged with its neighbours.
	KindPoetryLine
	// KindStanzaBreak ends a run of poetry lines.
	KindStanzaBreak
	// KindContainer wraps further top-level nodes.
	KindContainer
)

var blockKindNames = map[BlockKind]string{
	KindSkip:        "skip",
	KindHeader:      "header",
	KindParagraph:   "paragraph",
	KindPoetryLine:  "poetry-line",
	KindStanzaBreak: "stanza-break",
	KindContainer:   "container",
}

func (k BlockKind) String() string {
	if s, ok := blockKindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Class is the result of classifying a node.
type Class struct {
	Kind BlockKind

	// Level is the header level (2-4) or the poetry indent level (1-2).
	Level int

	// Indented marks an indented prose paragraph.
	Indented bool
}

// Rule maps a tag and a set of required classes to a Class. An empty Tag
// matches any element.
type Rule struct {
	Tag     string
	Classes []string
	Class   Class
}

func (r Rule) matches(n *html.Node) bool {
	if r.Tag != "" && n.Data != r.Tag {
		return false
	}
	if len(r.Classes) == 0 {
		return true
	}
	have := classes(n)
	for _, c := range r.Classes {
		if !slices.Contains(have, c) {
			return false
		}
	}
	return true
}

// Table is an ordered rule list. The first matching rule wins.
type Table []Rule

// Classify returns the class of n, or false when no rule matches.
func (t Table) Classify(n *html.Node) (Class, bool) {
	if n.Type != html.ElementNode {
		return Class{}, false
	}
	for _, r := range t {
		if r.matches(n) {
			return r.Class, true
		}
	}
	return Class{}, false
}

// Marker is a verse-number marker read from inline markup.
type Marker struct {
	// Text is the rendered marker text.
	Text string
	// Value is the numeric display value.
	Value int
	// Location is "BOOK CHAPTER:VERSE[-VERSE]".
	Location string
}

// Dialect holds everything that differs between providers.
type Dialect struct {
	// Name identifies the provider (e.g., "esv").
	Name string

	// Blocks classifies top-level nodes.
	Blocks Table

	// Inline lists inline elements dropped with their content (footnotes,
	// cross-references).
	Inline Table

	// Root is an XPath selecting the content root. The document body is
	// used when it matches nothing.
	Root string

	// Marker reads a verse-number marker from an element.
	Marker func(n *html.Node) (Marker, bool)

	// Continuation lists paragraph classes that continue the previous verse.
	Continuation []string

	// Indent returns the leading-space count of a poetry line.
	Indent func(translation string, level int) int

	// ElideSingleChapter drops "1:" from references to one-chapter books.
	ElideSingleChapter bool
}

func (d *Dialect) skipInline(n *html.Node) bool {
	_, ok := d.Inline.Classify(n)
	return ok
}

func (d *Dialect) continues(n *html.Node) bool {
	for _, c := range classes(n) {
		if slices.Contains(d.Continuation, c) {
			return true
		}
	}
	return false
}

// classes returns the class list of an element.
func classes(n *html.Node) []string {
	return strings.Fields(attr(n, "class"))
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	return slices.Contains(classes(n), class)
}

func isElement(n *html.Node, a atom.Atom) bool {
	return n.Type == html.ElementNode && n.DataAtom == a
}
