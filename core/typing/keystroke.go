package typing

import (
	"strings"

	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
)

// Kind is a keystroke kind, named after the DOM input event types.
type Kind string

// Keystroke kinds.
const (
	InsertText             Kind = "insertText"
	DeleteContentBackward  Kind = "deleteContentBackward"
	DeleteWordBackward     Kind = "deleteWordBackward"
	DeleteSoftLineBackward Kind = "deleteSoftLineBackward"
)

// ParseKind validates a keystroke kind read from a client or a log file.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case InsertText, DeleteContentBackward, DeleteWordBackward, DeleteSoftLineBackward:
		return k, nil
	}
	return "", errors.NewValidation("kind", "unknown keystroke kind "+s)
}

// IsDelete reports whether k removes content.
func (k Kind) IsDelete() bool {
	return k == DeleteContentBackward || k == DeleteWordBackward || k == DeleteSoftLineBackward
}

// Keystroke is one entry of a verse's keystroke log.
type Keystroke struct {
	Kind Kind   `json:"type"`
	Data string `json:"key,omitempty"`
}

// Insert returns an InsertText keystroke.
func Insert(data string) Keystroke {
	return Keystroke{Kind: InsertText, Data: data}
}

// Backspace returns a DeleteContentBackward keystroke.
func Backspace() Keystroke {
	return Keystroke{Kind: DeleteContentBackward}
}

// Keystrokes returns one InsertText keystroke per character of s.
func Keystrokes(s string) []Keystroke {
	out := make([]Keystroke, 0, len(s))
	for _, r := range s {
		out = append(out, Insert(string(r)))
	}
	return out
}

var doubleQuotes = map[string]bool{
	"“": true, "”": true, "„": true, "‟": true, "″": true, "«": true, "»": true,
}

var apostrophes = map[string]bool{
	"‘": true, "’": true, "‚": true, "‛": true, "′": true, "`": true, "ʼ": true,
}

var enterNames = map[string]bool{
	"Enter": true, "enter": true, "insertLineBreak": true, "insertParagraph": true,
	"\r": true, "\r\n": true, "\n": true,
}

// Canonicalize maps equivalent inputs onto one letter: smart double quotes
// to '"', apostrophe-like glyphs to "'", and Enter names to "\n".
func Canonicalize(data string) string {
	switch {
	case doubleQuotes[data]:
		return `"`
	case apostrophes[data]:
		return "'"
	case enterNames[data]:
		return "\n"
	}
	return data
}

// CanonicalizeText canonicalizes every character of s.
func CanonicalizeText(s string) string {
	var sb strings.Builder
	for _, r := range s {
		sb.WriteString(Canonicalize(string(r)))
	}
	return sb.String()
}
