package typing

import (
	"errors"
	"testing"
	"time"

	cerrors "github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/parser"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

const nltPsalm23 = `<div class="chapter ch23">
<p class="d">A psalm of David.</p>
<p class="q1"><span data-number="1" data-sid="PSA 23:1" class="v">1</span>The LORD is my shepherd; I have all that I need.</p>
<p class="q1"><span data-number="2" data-sid="PSA 23:2" class="v">2</span>He lets me rest in green meadows;</p>
<p class="q2">he leads me beside peaceful streams.</p>
<p class="q1"><span data-number="3" data-sid="PSA 23:3" class="v">3</span>He renews my strength.</p>
</div>`

func psalm23(t *testing.T) *passage.Passage {
	t.Helper()
	p, err := parser.Parse([]byte(nltPsalm23), "nlt")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	return p
}

type recorder struct {
	events []Event
}

func (r *recorder) Record(e Event) { r.events = append(r.events, e) }

func typeText(t *testing.T, c *Controller, s string) Result {
	t.Helper()
	var total Result
	for _, k := range Keystrokes(s) {
		res, err := c.Keystroke(k)
		if err != nil {
			t.Fatalf("Keystroke(%q) error: %v", k.Data, err)
		}
		total.Admitted += res.Admitted
		total.Rejected += res.Rejected
		total.Completed = append(total.Completed, res.Completed...)
		total.Position = res.Position
		total.State = res.State
	}
	return total
}

func TestPsalm23EndToEnd(t *testing.T) {
	rec := &recorder{}
	c := NewController(psalm23(t), Config{Sink: rec})

	active, ok := c.Active()
	if !ok || active.Ref.Verse != 1 {
		t.Fatalf("initial active verse = %+v", active.Ref)
	}

	res := typeText(t, c, "The LORD is my shepherd; I have all that I need. ")

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	e := rec.events[0]
	if e.Book != "psalm" || e.Chapter != 23 || e.Verse != 1 || e.Translation != "nlt" {
		t.Errorf("event = %+v, want psalm 23:1 nlt", e)
	}
	if len(res.Completed) != 1 || res.Completed[0].ID != e.ID {
		t.Errorf("Result.Completed = %+v", res.Completed)
	}
	if res.Rejected != 0 {
		t.Errorf("rejected %d keystrokes, want 0", res.Rejected)
	}

	active, ok = c.Active()
	if !ok || active.Ref.Verse != 2 {
		t.Errorf("active verse = %+v, want 23:2", active.Ref)
	}
	if len(c.Log()) != 0 || len(c.Position()) != 0 {
		t.Errorf("log/position not reset: %d/%d", len(c.Log()), len(c.Position()))
	}
}

func TestLineBreakInsideVerse(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	if err := c.Start(passage.VerseRef{Book: "psalm", Chapter: 23, Verse: 2, Translation: "nlt"}); err != nil {
		t.Fatalf("Start error: %v", err)
	}

	active, _ := c.Active()
	if got, want := active.Text(), "He lets me rest in green meadows;\nhe leads me beside peaceful streams. "; got != want {
		t.Fatalf("stitched verse = %q, want %q", got, want)
	}
	if len(active.Segments) != 2 {
		t.Errorf("segments = %d, want 2", len(active.Segments))
	}

	typeText(t, c, "He lets me rest in green meadows;")
	res, _ := c.Keystroke(Insert(" "))
	if res.Admitted != 0 {
		t.Error("space admitted where a line break is required")
	}
	res, _ = c.Keystroke(Insert("Enter"))
	if res.Admitted != 1 {
		t.Error("Enter rejected at a line break")
	}

	res = typeText(t, c, "he leads me beside peaceful streams. ")
	if len(res.Completed) != 1 || res.Completed[0].Verse != 2 {
		t.Fatalf("completed = %+v, want 23:2", res.Completed)
	}
	if active, _ := c.Active(); active.Ref.Verse != 3 {
		t.Errorf("active = %+v, want 23:3", active.Ref)
	}
}

func TestCompleteState(t *testing.T) {
	rec := &recorder{}
	c := NewController(psalm23(t), Config{Sink: rec, AssignmentID: "assign-1"})

	typeText(t, c, "The LORD is my shepherd; I have all that I need. ")
	c.Keystroke(Insert("He lets me rest in green meadows;"))
	c.Keystroke(Insert("Enter"))
	typeText(t, c, "he leads me beside peaceful streams. ")
	res := typeText(t, c, "He renews my strength. ")

	if res.State != StateComplete || c.State() != StateComplete {
		t.Fatalf("state = %s, want complete", c.State())
	}
	if len(rec.events) != 3 {
		t.Fatalf("events = %d, want 3", len(rec.events))
	}
	for _, e := range rec.events {
		if e.AssignmentID != "assign-1" {
			t.Errorf("event %d AssignmentID = %q", e.Verse, e.AssignmentID)
		}
	}
	if _, ok := c.Active(); ok {
		t.Error("Active() reports a verse after completion")
	}

	res, err := c.Keystroke(Insert("x"))
	if err != nil {
		t.Fatalf("Keystroke after completion error: %v", err)
	}
	if res.Admitted != 0 || res.Rejected != 1 || len(rec.events) != 3 {
		t.Errorf("keystroke after completion = %+v", res)
	}
}

func TestPasteCompletesAcrossVerses(t *testing.T) {
	rec := &recorder{}
	c := NewController(psalm23(t), Config{Sink: rec})

	res, err := c.Keystroke(Insert("The LORD is my shepherd; I have all that I need. He"))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Completed) != 1 {
		t.Fatalf("completed = %d, want 1", len(res.Completed))
	}
	if got := render(res.Position); got != "He" {
		t.Errorf("position = %q, want typing to carry into the next verse", got)
	}
}

func TestBackspaceFloor(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	for i := 0; i < 3; i++ {
		res, err := c.Keystroke(Backspace())
		if err != nil {
			t.Fatalf("Backspace error: %v", err)
		}
		if res.Admitted != 0 {
			t.Errorf("Backspace on empty log admitted")
		}
	}
	if len(c.Log()) != 0 {
		t.Errorf("log length = %d, want 0", len(c.Log()))
	}
}

func TestDoubleSpaceLeavesLogUnchanged(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	typeText(t, c, "The ")
	before := len(c.Log())
	c.Keystroke(Insert(" "))
	if after := len(c.Log()); after != before {
		t.Errorf("log length %d -> %d after double space", before, after)
	}
}

func TestCorrectWordIsLocked(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	typeText(t, c, "The ")
	res, _ := c.Keystroke(Backspace())
	if res.Admitted != 0 {
		t.Error("Backspace reopened a correct word")
	}

	typeText(t, c, "LORF ")
	res, _ = c.Keystroke(Backspace())
	if res.Admitted != 1 {
		t.Error("Backspace refused after an incorrect word")
	}
	if got := render(c.Position()); got != "The |LORF" {
		t.Errorf("position = %q", got)
	}
}

func TestReset(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	typeText(t, c, "The LO")
	c.Reset()
	if len(c.Log()) != 0 {
		t.Errorf("log not cleared")
	}
	if active, _ := c.Active(); active.Ref.Verse != 1 {
		t.Errorf("Reset moved the active verse to %d", active.Ref.Verse)
	}
}

func TestStartUnknownVerse(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	err := c.Start(passage.VerseRef{Book: "psalm", Chapter: 23, Verse: 7, Translation: "nlt"})
	if !errors.Is(err, cerrors.ErrInvariant) {
		t.Errorf("Start error = %v, want ErrInvariant", err)
	}
	if active, _ := c.Active(); active.Ref.Verse != 1 {
		t.Errorf("failed Start changed the active verse to %d", active.Ref.Verse)
	}
}

func TestSwapPassage(t *testing.T) {
	c := NewController(psalm23(t), Config{})
	typeText(t, c, "The LO")

	if err := c.SwapPassage(psalm23(t)); err != nil {
		t.Fatalf("SwapPassage error: %v", err)
	}
	if len(c.Log()) != 0 {
		t.Error("SwapPassage kept the old log")
	}

	genesis, err := parser.Parse([]byte(`<p class="p"><span data-sid="GEN 1:1" data-number="1" class="v">1</span>In</p>`), "bsb")
	if err != nil {
		t.Fatal(err)
	}
	err = c.SwapPassage(genesis)
	if !errors.Is(err, cerrors.ErrInvariant) {
		t.Errorf("SwapPassage to a passage without the active verse = %v, want ErrInvariant", err)
	}
	if c.Passage().Book != "psalm" {
		t.Error("failed SwapPassage replaced the passage")
	}
}

func TestSkipsVersesWithoutWords(t *testing.T) {
	vn := func(v int) passage.VerseNumber {
		return passage.VerseNumber{Value: v, Text: "", Verse: v, Chapter: 17, Book: "matthew", Translation: "esv"}
	}
	p := &passage.Passage{
		Translation: "esv",
		Book:        "matthew",
		Chapter:     17,
		FirstVerse:  vn(20),
		Blocks: []passage.Block{&passage.Paragraph{Verses: []passage.Verse{
			{Ref: vn(20).Ref(), Atoms: []passage.Atom{vn(20), passage.NewWord("Amen. ")}, Length: 2},
			{Ref: vn(21).Ref(), Atoms: []passage.Atom{vn(21)}, Length: 1},
			{Ref: vn(22).Ref(), Atoms: []passage.Atom{vn(22), passage.NewWord("As ")}, Length: 2},
		}}},
	}

	rec := &recorder{}
	c := NewController(p, Config{Sink: rec})
	typeText(t, c, "Amen. ")
	if active, _ := c.Active(); active.Ref.Verse != 22 {
		t.Errorf("active = %d, want 22", active.Ref.Verse)
	}
	if len(rec.events) != 1 {
		t.Errorf("events = %d, want 1 (empty verse emits nothing)", len(rec.events))
	}
}

func TestCanonicalQuotesMatch(t *testing.T) {
	v := passage.VerseNumber{Value: 1, Verse: 1, Chapter: 1, Book: "genesis", Translation: "esv"}
	p := &passage.Passage{Blocks: []passage.Block{&passage.Paragraph{Verses: []passage.Verse{
		{Ref: v.Ref(), Atoms: []passage.Atom{v, passage.NewWord("the "), passage.NewWord("LORD’s "), passage.NewWord("“word” ")}},
	}}}}

	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	rec := &recorder{}
	c := NewController(p, Config{Sink: rec, Now: func() time.Time { return now }})
	typeText(t, c, `the LORD's "word" `)
	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	if !rec.events[0].CompletedAt.Equal(now) {
		t.Errorf("CompletedAt = %v, want %v", rec.events[0].CompletedAt, now)
	}
}

func TestEmptyPassageIsComplete(t *testing.T) {
	c := NewController(&passage.Passage{}, Config{})
	if c.State() != StateComplete {
		t.Errorf("state = %s, want complete", c.State())
	}
	if c.Statuses() != nil {
		t.Error("Statuses() on a complete controller should be nil")
	}
}

func TestSinkFunc(t *testing.T) {
	var got Event
	var s Sink = SinkFunc(func(e Event) { got = e })
	s.Record(Event{Verse: 4})
	if got.Verse != 4 {
		t.Errorf("SinkFunc did not forward the event")
	}
}
