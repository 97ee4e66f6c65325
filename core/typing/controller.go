package typing

import (
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
)

// State is the controller state.
type State int

// Controller states.
const (
	// StateTyping has an active verse.
	StateTyping State = iota
	// StateComplete has no verse left; keystrokes are ignored.
	StateComplete
)

func (s State) String() string {
	if s == StateComplete {
		return "complete"
	}
	return "typing"
}

// Event is emitted when a verse is completed.
type Event struct {
	ID           uuid.UUID `json:"id"`
	Book         string    `json:"book"`
	Chapter      int       `json:"chapter"`
	Verse        int       `json:"verse"`
	Translation  string    `json:"translation"`
	AssignmentID string    `json:"assignmentId,omitempty"`
	CompletedAt  time.Time `json:"completedAt"`
}

// Sink receives completion events. Record must not block.
type Sink interface {
	Record(Event)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Event)

// Record calls f(e).
func (f SinkFunc) Record(e Event) { f(e) }

// Config configures a Controller.
type Config struct {
	// Sink receives completion events. Nil discards them.
	Sink Sink

	// AssignmentID is attached to every event.
	AssignmentID string

	// Now stamps events. Defaults to time.Now.
	Now func() time.Time
}

// Result describes the outcome of one Keystroke call.
type Result struct {
	// Admitted counts the keystrokes that joined the log.
	Admitted int `json:"admitted"`

	// Rejected counts the keystrokes the gate refused.
	Rejected int `json:"rejected"`

	// Completed lists the verses completed by this call.
	Completed []Event `json:"completed,omitempty"`

	// Position is the typed position of the active verse afterwards.
	Position []passage.Atom `json:"position"`

	// State is the controller state afterwards.
	State State `json:"-"`
}

// Controller tracks typing progress through a passage.
type Controller struct {
	passage *passage.Passage
	verses  []Verse
	active  int
	log     []Keystroke
	state   State
	cfg     Config
}

// NewController starts at the first verse of p that has words.
func NewController(p *passage.Passage, cfg Config) *Controller {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	c := &Controller{
		passage: p,
		verses:  Verses(p),
		cfg:     cfg,
	}
	c.seek(0)
	return c
}

// seek activates the first verse with words at or after i.
func (c *Controller) seek(i int) {
	c.log = nil
	for ; i < len(c.verses); i++ {
		if len(c.verses[i].Words) > 0 {
			c.active = i
			c.state = StateTyping
			return
		}
	}
	c.active = len(c.verses)
	c.state = StateComplete
}

func (c *Controller) indexOf(ref passage.VerseRef) int {
	for i, v := range c.verses {
		if v.Ref == ref {
			return i
		}
	}
	return -1
}

// Start makes ref the active verse and clears the log. A ref absent from
// the passage is an InvariantError.
func (c *Controller) Start(ref passage.VerseRef) error {
	i := c.indexOf(ref)
	if i < 0 {
		return errors.NewInvariant("typing", "verse %s is not in the passage", ref)
	}
	c.seek(i)
	return nil
}

// Reset clears the active verse's log.
func (c *Controller) Reset() {
	c.log = nil
}

// SwapPassage replaces the passage, keeping the active verse. The active
// verse must exist in the new passage.
func (c *Controller) SwapPassage(p *passage.Passage) error {
	verses := Verses(p)
	if c.state == StateComplete {
		c.passage, c.verses = p, verses
		c.seek(len(verses))
		return nil
	}
	ref := c.verses[c.active].Ref
	for i, v := range verses {
		if v.Ref == ref {
			c.passage, c.verses = p, verses
			c.seek(i)
			return nil
		}
	}
	return errors.NewInvariant("typing", "active verse %s is not in the new passage", ref)
}

// Passage returns the passage being typed.
func (c *Controller) Passage() *passage.Passage {
	return c.passage
}

// State returns the controller state.
func (c *Controller) State() State {
	return c.state
}

// Active returns the active verse, or false once the passage is complete.
func (c *Controller) Active() (Verse, bool) {
	if c.state == StateComplete || c.active >= len(c.verses) {
		return Verse{}, false
	}
	return c.verses[c.active], true
}

// Log returns a copy of the active verse's keystroke log.
func (c *Controller) Log() []Keystroke {
	out := make([]Keystroke, len(c.log))
	copy(out, c.log)
	return out
}

// Position returns the typed position of the active verse.
func (c *Controller) Position() []passage.Atom {
	return Reduce(c.log)
}

// Statuses returns per-word status for the active verse.
func (c *Controller) Statuses() []WordStatus {
	v, ok := c.Active()
	if !ok {
		return nil
	}
	return Statuses(c.Position(), v.Words)
}

// Keystroke offers k to the active verse. Multi-character inserts are split
// into one keystroke per character. User input never produces an error;
// an InvariantError means the active verse no longer exists.
func (c *Controller) Keystroke(k Keystroke) (Result, error) {
	var res Result
	for _, one := range split(k) {
		if c.state == StateComplete {
			res.Rejected++
			continue
		}
		if c.active >= len(c.verses) {
			return res, errors.NewInvariant("typing", "active verse %d is outside the passage", c.active)
		}

		v := c.verses[c.active]
		next := Admit(one, c.log, v.Words)
		if len(next) == len(c.log) {
			res.Rejected++
			logging.KeystrokeRejected(string(one.Kind), one.Data, len(c.log), "verse", v.Ref.String())
			continue
		}
		res.Admitted++
		c.log = next

		if passage.SequenceEqual(Reduce(c.log), v.Words) {
			res.Completed = append(res.Completed, c.complete(v))
		}
	}
	res.Position = c.Position()
	res.State = c.state
	return res, nil
}

// complete emits the event for v and advances to the next verse.
func (c *Controller) complete(v Verse) Event {
	e := Event{
		ID:           uuid.New(),
		Book:         v.Ref.Book,
		Chapter:      v.Ref.Chapter,
		Verse:        v.Ref.Verse,
		Translation:  v.Ref.Translation,
		AssignmentID: c.cfg.AssignmentID,
		CompletedAt:  c.cfg.Now(),
	}
	logging.VerseCompleted(e.Book, e.Chapter, e.Verse, e.Translation, "event_id", e.ID.String())
	if c.cfg.Sink != nil {
		c.cfg.Sink.Record(e)
	}
	c.seek(c.active + 1)
	return e
}

// split breaks a multi-character insert into single characters. Enter
// names stay whole.
func split(k Keystroke) []Keystroke {
	if k.Kind != InsertText || utf8.RuneCountInString(k.Data) <= 1 || Canonicalize(k.Data) == "\n" {
		return []Keystroke{k}
	}
	return Keystrokes(k.Data)
}
