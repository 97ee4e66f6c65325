package parser

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// APIBible returns the dialect of API.Bible HTML content.
func APIBible() *Dialect {
	return &Dialect{
		Name: "apibible",
		Blocks: Table{
			{Tag: "p", Classes: []string{"cl"}, Class: Class{Kind: KindSkip}},
			{Tag: "p", Classes: []string{"r"}, Class: Class{Kind: KindSkip}},
			{Tag: "p", Classes: []string{"mr"}, Class: Class{Kind: KindSkip}},
			{Tag: "p", Classes: []string{"sr"}, Class: Class{Kind: KindSkip}},
			{Tag: "p", Classes: []string{"sp"}, Class: Class{Kind: KindSkip}},
			{Tag: "p", Classes: []string{"ms"}, Class: Class{Kind: KindHeader, Level: 2}},
			{Tag: "p", Classes: []string{"ms1"}, Class: Class{Kind: KindHeader, Level: 2}},
			{Tag: "p", Classes: []string{"mt1"}, Class: Class{Kind: KindHeader, Level: 2}},
			{Tag: "p", Classes: []string{"s"}, Class: Class{Kind: KindHeader, Level: 3}},
			{Tag: "p", Classes: []string{"s1"}, Class: Class{Kind: KindHeader, Level: 3}},
			{Tag: "p", Classes: []string{"s2"}, Class: Class{Kind: KindHeader, Level: 4}},
			{Tag: "p", Classes: []string{"d"}, Class: Class{Kind: KindHeader, Level: 4}},
			{Tag: "p", Classes: []string{"qa"}, Class: Class{Kind: KindHeader, Level: 4}},
			{Tag: "p", Classes: []string{"b"}, Class: Class{Kind: KindStanzaBreak}},
			{Tag: "p", Classes: []string{"q"}, Class: Class{Kind: KindPoetryLine, Level: 1}},
			{Tag: "p", Classes: []string{"q1"}, Class: Class{Kind: KindPoetryLine, Level: 1}},
			{Tag: "p", Classes: []string{"qm1"}, Class: Class{Kind: KindPoetryLine, Level: 1}},
			{Tag: "p", Classes: []string{"q2"}, Class: Class{Kind: KindPoetryLine, Level: 2}},
			{Tag: "p", Classes: []string{"q3"}, Class: Class{Kind: KindPoetryLine, Level: 2}},
			{Tag: "p", Classes: []string{"qm2"}, Class: Class{Kind: KindPoetryLine, Level: 2}},
			{Tag: "p", Classes: []string{"p"}, Class: Class{Kind: KindParagraph}},
			{Tag: "p", Classes: []string{"m"}, Class: Class{Kind: KindParagraph}},
			{Tag: "p", Classes: []string{"nb"}, Class: Class{Kind: KindParagraph}},
			{Tag: "p", Classes: []string{"pmo"}, Class: Class{Kind: KindParagraph}},
			{Tag: "p", Classes: []string{"pi"}, Class: Class{Kind: KindParagraph, Indented: true}},
			{Tag: "p", Classes: []string{"pi1"}, Class: Class{Kind: KindParagraph, Indented: true}},
			{Tag: "p", Classes: []string{"mi"}, Class: Class{Kind: KindParagraph, Indented: true}},
		},
		Inline: Table{
			{Tag: "span", Classes: []string{"f"}},
			{Tag: "span", Classes: []string{"x"}},
			{Tag: "note"},
			{Tag: "span", Classes: []string{"v"}},
		},
		Root:         `//div[contains(concat(' ', normalize-space(@class), ' '), ' chapter ')]`,
		Marker:       apiBibleMarker,
		Continuation: []string{"m", "nb"},
		Indent: func(translation string, level int) int {
			n := 2 * level
			if translation == "nlt" {
				n += 2
			}
			return n
		},
		ElideSingleChapter: true,
	}
}

// apiBibleMarker reads span.v markers carrying data-number and data-sid.
func apiBibleMarker(n *html.Node) (Marker, bool) {
	if n.Type != html.ElementNode || n.Data != "span" || !hasClass(n, "v") {
		return Marker{}, false
	}
	sid := strings.TrimSpace(attr(n, "data-sid"))
	if sid == "" {
		return Marker{}, false
	}
	return Marker{
		Text:     strings.TrimSpace(nodeText(n)),
		Value:    leadingInt(attr(n, "data-number")),
		Location: sid,
	}, true
}

// leadingInt parses the digits at the start of s ("25-27" yields 25).
func leadingInt(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	v, _ := strconv.Atoi(s[:end])
	return v
}
