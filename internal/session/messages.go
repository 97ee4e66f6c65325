package session

import (
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
	"github.com/joshuawootonn/type-the-word-sub001/core/typing"
)

// Client message types.
const (
	MsgKeystroke = "keystroke"
	MsgReset     = "reset"
	MsgStart     = "start"
)

// Server message types.
const (
	MsgPosition       = "position"
	MsgVerseCompleted = "verseCompleted"
	MsgComplete       = "complete"
	MsgError          = "error"
)

// ClientMessage is a message from the browser.
type ClientMessage struct {
	Type string `json:"type"`

	// Kind and Data carry a keystroke; Kind is a browser inputType.
	Kind string `json:"kind,omitempty"`
	Data string `json:"data,omitempty"`

	// Verse selects the verse for "start".
	Verse int `json:"verse,omitempty"`
}

// ServerMessage is a message to the browser.
type ServerMessage struct {
	Type     string              `json:"type"`
	Verse    *passage.VerseRef   `json:"verse,omitempty"`
	Position []passage.Atom      `json:"position,omitempty"`
	Statuses []typing.WordStatus `json:"statuses,omitempty"`
	Admitted int                 `json:"admitted,omitempty"`
	Rejected int                 `json:"rejected,omitempty"`
	Event    *typing.Event       `json:"event,omitempty"`
	Message  string              `json:"message,omitempty"`
}

// positionMessage describes the controller's current verse and position.
func positionMessage(c *typing.Controller, res typing.Result) ServerMessage {
	m := ServerMessage{
		Type:     MsgPosition,
		Position: c.Position(),
		Statuses: c.Statuses(),
		Admitted: res.Admitted,
		Rejected: res.Rejected,
	}
	if v, ok := c.Active(); ok {
		ref := v.Ref
		m.Verse = &ref
	}
	return m
}
