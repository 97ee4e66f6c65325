package parser

import (
	"bytes"
	"fmt"
	"slices"
	"time"

	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"

	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
)

var bodyExpr = xpath.MustCompile("//body")

// Parser parses one provider dialect.
type Parser struct {
	dialect *Dialect
	canon   *canon.Canon
	root    *xpath.Expr
}

// New creates a parser for a dialect. The canon resolves marker book codes
// and navigation links.
func New(d *Dialect, c *canon.Canon) (*Parser, error) {
	p := &Parser{dialect: d, canon: c}
	if d.Root != "" {
		expr, err := xpath.Compile(d.Root)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling %s content root", d.Name)
		}
		p.root = expr
	}
	return p, nil
}

// Dialect returns the parser's dialect.
func (p *Parser) Dialect() *Dialect {
	return p.dialect
}

// Reference formats a human-facing reference such as "Psalm 23:1".
func (p *Parser) Reference(ref passage.VerseRef) string {
	return p.canon.FormatRef(ref.Book, ref.Chapter, ref.Verse, canon.FormatOptions{
		ElideSingleChapter: p.dialect.ElideSingleChapter,
	})
}

// state is the accumulator threaded through the block walk.
type state struct {
	translation string

	book    canon.Book
	chapter int
	first   *passage.VerseNumber

	// last is the most recent verse segment, continued by hanging segments.
	last *passage.Verse

	blocks []passage.Block

	// poetry holds merged poetry lines not yet emitted.
	poetry *passage.Paragraph
}

func (st state) established() bool {
	return st.first != nil
}

// flush emits pending poetry lines.
func (st state) flush() state {
	if st.poetry != nil {
		st.blocks = append(st.blocks, st.poetry)
		st.poetry = nil
	}
	return st
}

// Parse converts provider markup into a Passage. It fails with a
// MalformedDocumentError when no verse marker establishes the book and
// chapter, or when markers disagree on them.
func (p *Parser) Parse(markup []byte, translation string) (*passage.Passage, error) {
	start := time.Now()

	doc, err := html.Parse(bytes.NewReader(markup))
	if err != nil {
		e := p.malformed(translation, "unreadable markup")
		e.Err = err
		return nil, e
	}

	st, err := p.walk(state{translation: translation}, p.contentRoot(doc), false)
	if err != nil {
		return nil, err
	}
	st = st.flush()

	if !st.established() {
		return nil, p.malformed(translation, "no verse marker found")
	}

	out := &passage.Passage{
		Translation: translation,
		Book:        st.book.Slug,
		Chapter:     st.chapter,
		Blocks:      st.blocks,
		FirstVerse:  *st.first,
	}
	if link, ok := p.canon.PrevChapter(st.book.Slug, st.chapter); ok {
		out.PrevChapter = &link
	}
	if link, ok := p.canon.NextChapter(st.book.Slug, st.chapter); ok {
		out.NextChapter = &link
	}

	logging.ParseEvent(p.dialect.Name, translation, out.Book, out.Chapter, len(out.Verses()), time.Since(start))
	return out, nil
}

func (p *Parser) contentRoot(doc *html.Node) *html.Node {
	if p.root != nil {
		if n := htmlquery.QuerySelector(doc, p.root); n != nil {
			return n
		}
	}
	if n := htmlquery.QuerySelector(doc, bodyExpr); n != nil {
		return n
	}
	return doc
}

func (p *Parser) malformed(translation, format string, args ...interface{}) *errors.MalformedDocumentError {
	return errors.NewMalformedDocument(p.dialect.Name, translation, fmt.Sprintf(format, args...))
}

// walk folds the children of parent into st.
func (p *Parser) walk(st state, parent *html.Node, indented bool) (state, error) {
	for n := parent.FirstChild; n != nil; n = n.NextSibling {
		var err error
		st, err = p.block(st, n, indented)
		if err != nil {
			return st, err
		}
	}
	return st, nil
}

func (p *Parser) block(st state, n *html.Node, indented bool) (state, error) {
	cls, ok := p.dialect.Blocks.Classify(n)
	if !ok {
		if n.Type == html.ElementNode {
			logging.Debug("skipping unclassified node",
				"provider", p.dialect.Name,
				"tag", n.Data,
				"class", attr(n, "class"),
			)
		}
		return st, nil
	}

	switch cls.Kind {
	case KindContainer:
		return p.walk(st, n, true)

	case KindStanzaBreak:
		return st.flush(), nil

	case KindHeader:
		st = st.flush()
		if text := plainText(p.dialect, n); text != "" {
			st.blocks = append(st.blocks, &passage.Header{Level: cls.Level, Text: text})
		}
		return st, nil

	case KindParagraph, KindPoetryLine:
		var (
			atoms []passage.Atom
			err   error
		)
		st, atoms, err = p.atoms(st, n)
		if err != nil {
			return st, err
		}
		kind := passage.ParagraphDefault
		if cls.Kind == KindPoetryLine {
			kind = passage.ParagraphQuote
			atoms = spliceIndent(atoms, p.dialect.Indent(st.translation, cls.Level))
		} else {
			st = st.flush()
		}
		settleDelimiters(atoms)

		var verses []passage.Verse
		st, verses = p.segment(st, atoms, p.dialect.continues(n))
		if len(verses) == 0 {
			return st, nil
		}
		para := passage.Paragraph{
			Verses:   verses,
			Kind:     kind,
			Indented: cls.Indented || indented,
		}
		if kind == passage.ParagraphQuote {
			return st.mergePoetry(para), nil
		}
		st.blocks = append(st.blocks, &para)
		return st, nil
	}

	return st, nil
}

// atoms builds the inline atoms of n, resolving verse markers against the
// document's book and chapter.
func (p *Parser) atoms(st state, n *html.Node) (state, []passage.Atom, error) {
	b := newInlineBuilder(p.dialect)
	b.walk(n)
	items := b.finish()

	atoms := make([]passage.Atom, 0, len(items))
	for _, it := range items {
		if it.marker == nil {
			atoms = append(atoms, it.atom)
			continue
		}
		var (
			vn  passage.VerseNumber
			err error
		)
		st, vn, err = p.resolve(st, *it.marker)
		if err != nil {
			return st, nil, err
		}
		atoms = append(atoms, vn)
	}
	return st, atoms, nil
}

// resolve turns a raw marker into a VerseNumber. The first marker seeds the
// document's book and chapter; later markers must agree with it.
func (p *Parser) resolve(st state, m Marker) (state, passage.VerseNumber, error) {
	loc, err := canon.ParseLocation(m.Location)
	if err != nil {
		e := p.malformed(st.translation, "invalid verse marker %q", m.Location)
		e.Err = err
		return st, passage.VerseNumber{}, e
	}
	book, err := loc.Resolve(p.canon)
	if err != nil {
		e := p.malformed(st.translation, "unknown book in verse marker %q", m.Location)
		e.Err = err
		return st, passage.VerseNumber{}, e
	}

	if !st.established() {
		st.book = book
		st.chapter = loc.Chapter
	} else if book.Slug != st.book.Slug {
		return st, passage.VerseNumber{}, p.malformed(st.translation,
			"verse marker %s is outside %s", loc, st.book.Name)
	} else if loc.Chapter != st.chapter {
		return st, passage.VerseNumber{}, p.malformed(st.translation,
			"verse marker %s is outside chapter %d", loc, st.chapter)
	}

	value := m.Value
	if value == 0 {
		value = loc.Verse
	}
	vn := passage.VerseNumber{
		Value:       value,
		Text:        m.Text,
		Verse:       loc.Verse,
		Chapter:     loc.Chapter,
		Book:        book.Slug,
		Translation: st.translation,
	}
	if !st.established() {
		first := vn
		st.first = &first
	}
	return st, vn, nil
}

// segment cuts a paragraph's atoms into verse segments at each VerseNumber.
// Content before the first marker continues the previous verse.
func (p *Parser) segment(st state, atoms []passage.Atom, continues bool) (state, []passage.Verse) {
	var (
		verses []passage.Verse
		start  int
		marker *passage.VerseNumber
	)
	emit := func(seg []passage.Atom) {
		var v passage.Verse
		switch {
		case marker != nil:
			v = passage.Verse{Ref: marker.Ref(), Atoms: seg}
		case !hasWords(seg):
			return
		case st.last == nil:
			logging.Debug("dropping text before first verse marker",
				"provider", p.dialect.Name,
				"translation", st.translation,
			)
			return
		default:
			if !continues && len(verses) == 0 && start == 0 && len(atoms) == len(seg) {
				logging.Debug("paragraph without verse marker continues previous verse",
					"provider", p.dialect.Name,
					"verse", st.last.Ref.String(),
				)
			}
			v = passage.Verse{
				Ref:          st.last.Ref,
				Atoms:        seg,
				HangingVerse: true,
				Offset:       st.last.Offset + st.last.Length,
			}
		}
		v.Length = passage.CountTyped(seg)
		st.last = &v
		verses = append(verses, v)
	}

	for i, a := range atoms {
		vn, ok := a.(passage.VerseNumber)
		if !ok {
			continue
		}
		if i > start || marker != nil {
			emit(atoms[start:i])
		}
		marker = &vn
		start = i
	}
	emit(atoms[start:])
	return st, verses
}

// mergePoetry appends a poetry line to the pending poetry paragraph,
// separating the lines with a NewLine.
func (st state) mergePoetry(line passage.Paragraph) state {
	if st.poetry == nil {
		st.poetry = &line
		return st
	}

	acc := *st.poetry
	verses := slices.Clone(acc.Verses)
	last := verses[len(verses)-1]
	atoms := append(slices.Clone(last.Atoms), passage.NewLine{})
	if line.Verses[0].HangingVerse {
		if i := lastWord(atoms); i >= 0 {
			atoms[i] = atoms[i].(passage.Word).WithDelimiter("\n")
		}
	}
	last.Atoms = atoms
	verses[len(verses)-1] = last

	acc.Verses = append(verses, line.Verses...)
	acc.Indented = acc.Indented || line.Indented
	st.poetry = &acc
	return st
}

// spliceIndent inserts n Space atoms after the first VerseNumber, or at the
// start when there is none.
func spliceIndent(atoms []passage.Atom, n int) []passage.Atom {
	if n <= 0 {
		return atoms
	}
	at := 0
	for i, a := range atoms {
		if _, ok := a.(passage.VerseNumber); ok {
			at = i + 1
			break
		}
	}
	spaces := make([]passage.Atom, n)
	for i := range spaces {
		spaces[i] = passage.Space{}
	}
	return slices.Insert(atoms, at, spaces...)
}

// settleDelimiters ends a word with "\n" when a NewLine follows it and the
// same verse continues with another word. Every other word keeps " ".
func settleDelimiters(atoms []passage.Atom) {
	for i, a := range atoms {
		if _, ok := a.(passage.NewLine); !ok {
			continue
		}
		if _, ok := nextTyped(atoms, i+1).(passage.Word); !ok {
			continue
		}
		if j := lastWord(atoms[:i]); j >= 0 {
			atoms[j] = atoms[j].(passage.Word).WithDelimiter("\n")
		}
	}
}

// lastWord returns the index of the word closing atoms, skipping trailing
// boundaries, or -1 when a verse number or the start comes first.
func lastWord(atoms []passage.Atom) int {
	for i := len(atoms) - 1; i >= 0; i-- {
		switch atoms[i].(type) {
		case passage.Word:
			return i
		case passage.VerseNumber:
			return -1
		}
	}
	return -1
}

func nextTyped(atoms []passage.Atom, from int) passage.Atom {
	for _, a := range atoms[from:] {
		if passage.IsTyped(a) {
			return a
		}
	}
	return nil
}

func hasWords(atoms []passage.Atom) bool {
	for _, a := range atoms {
		if _, ok := a.(passage.Word); ok {
			return true
		}
	}
	return false
}
