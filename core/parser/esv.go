package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
)

// esvMarkerID matches ESV marker ids: "v" + book number (2 digits) +
// chapter (3) + verse (3), e.g. "v19023001-1" for Psalm 23:1.
var esvMarkerID = regexp.MustCompile(`^v(\d{2})(\d{3})(\d{3})(?:-\d+)?$`)

// ESV returns the dialect of ESV API HTML.
func ESV(c *canon.Canon) *Dialect {
	return &Dialect{
		Name: "esv",
		Blocks: Table{
			{Tag: "h2", Classes: []string{"extra_text"}, Class: Class{Kind: KindSkip}},
			{Tag: "h2", Class: Class{Kind: KindHeader, Level: 2}},
			{Tag: "h3", Class: Class{Kind: KindHeader, Level: 3}},
			{Tag: "h4", Class: Class{Kind: KindHeader, Level: 4}},
			{Tag: "div", Classes: []string{"block-indent"}, Class: Class{Kind: KindContainer}},
			{Tag: "p", Classes: []string{"block-indent"}, Class: Class{Kind: KindContainer}},
			{Tag: "div", Classes: []string{"footnotes"}, Class: Class{Kind: KindSkip}},
			{Tag: "div", Classes: []string{"copyright"}, Class: Class{Kind: KindSkip}},
			{Tag: "p", Classes: []string{"extra_text"}, Class: Class{Kind: KindSkip}},
			{Tag: "span", Classes: []string{"begin-line-group"}, Class: Class{Kind: KindStanzaBreak}},
			{Tag: "span", Classes: []string{"end-line-group"}, Class: Class{Kind: KindStanzaBreak}},
			{Classes: []string{"indent", "line"}, Class: Class{Kind: KindPoetryLine, Level: 2}},
			{Classes: []string{"indent-2", "line"}, Class: Class{Kind: KindPoetryLine, Level: 2}},
			{Classes: []string{"line"}, Class: Class{Kind: KindPoetryLine, Level: 1}},
			{Tag: "p", Class: Class{Kind: KindParagraph}},
		},
		Inline: Table{
			{Tag: "sup", Classes: []string{"footnote"}},
			{Tag: "span", Classes: []string{"footnote"}},
			{Tag: "a", Classes: []string{"fn"}},
			{Tag: "sup", Classes: []string{"crossref"}},
			{Tag: "span", Classes: []string{"crossref"}},
			{Tag: "b", Classes: []string{"verse-num"}},
			{Tag: "b", Classes: []string{"chapter-num"}},
		},
		Root:   `//div[contains(concat(' ', normalize-space(@class), ' '), ' passage-text ')]`,
		Marker: esvMarker(c),
		Indent: func(_ string, level int) int {
			return 2 * level
		},
	}
}

// esvMarker reads b.verse-num and b.chapter-num markers. The location is
// rebuilt from the element id.
func esvMarker(c *canon.Canon) func(n *html.Node) (Marker, bool) {
	return func(n *html.Node) (Marker, bool) {
		if n.Type != html.ElementNode || n.Data != "b" {
			return Marker{}, false
		}
		if !hasClass(n, "verse-num") && !hasClass(n, "chapter-num") {
			return Marker{}, false
		}
		m := esvMarkerID.FindStringSubmatch(attr(n, "id"))
		if m == nil {
			return Marker{}, false
		}
		bookNum, _ := strconv.Atoi(m[1])
		chapter, _ := strconv.Atoi(m[2])
		verse, _ := strconv.Atoi(m[3])

		code := m[1]
		if b, ok := c.BookByNumber(bookNum); ok {
			code = b.USFM
		}
		return Marker{
			Text:     strings.TrimSpace(nodeText(n)),
			Value:    verse,
			Location: fmt.Sprintf("%s %d:%d", code, chapter, verse),
		}, true
	}
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var visit func(*html.Node)
	visit = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}
	}
	visit(n)
	return sb.String()
}
