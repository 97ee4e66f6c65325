package passage

import "fmt"

// Visitor handles every Atom variant. Predicates over atoms implement it so
// that adding a variant forces each of them to handle the new case.
type Visitor[T any] interface {
	Word(w Word) T
	Space() T
	NewLine() T
	VerseNumber(n VerseNumber) T
}

// Visit dispatches a to the matching Visitor method.
func Visit[T any](a Atom, v Visitor[T]) T {
	switch a := a.(type) {
	case Word:
		return v.Word(a)
	case Space:
		return v.Space()
	case NewLine:
		return v.NewLine()
	case VerseNumber:
		return v.VerseNumber(a)
	default:
		panic(fmt.Sprintf("passage: unknown atom type %T", a))
	}
}

type completeVisitor struct{}

func (completeVisitor) Word(w Word) bool               { return w.Delimiter() != "" }
func (completeVisitor) Space() bool                    { return true }
func (completeVisitor) NewLine() bool                  { return true }
func (completeVisitor) VerseNumber(_ VerseNumber) bool { return true }

// IsComplete reports whether an atom is finished. Words are complete once
// their last letter is a boundary; the other variants always are.
func IsComplete(a Atom) bool {
	return Visit[bool](a, completeVisitor{})
}

type typedVisitor struct{}

func (typedVisitor) Word(_ Word) bool               { return true }
func (typedVisitor) Space() bool                    { return false }
func (typedVisitor) NewLine() bool                  { return false }
func (typedVisitor) VerseNumber(_ VerseNumber) bool { return true }

// IsTyped reports whether an atom counts toward a verse's Length. Space and
// NewLine are crossed passively and do not count.
func IsTyped(a Atom) bool {
	return Visit[bool](a, typedVisitor{})
}

type equalVisitor struct {
	other Atom
}

func (v equalVisitor) Word(w Word) bool {
	o, ok := v.other.(Word)
	if !ok || len(o.Letters) != len(w.Letters) {
		return false
	}
	for i := range w.Letters {
		if w.Letters[i] != o.Letters[i] {
			return false
		}
	}
	return true
}

func (v equalVisitor) Space() bool {
	_, ok := v.other.(Space)
	return ok
}

func (v equalVisitor) NewLine() bool {
	_, ok := v.other.(NewLine)
	return ok
}

func (v equalVisitor) VerseNumber(n VerseNumber) bool {
	o, ok := v.other.(VerseNumber)
	return ok && o.Value == n.Value
}

// AtomsEqual compares two atoms. Words compare letter by letter, case
// sensitive. Verse numbers compare by value only. Space and NewLine compare
// by variant.
func AtomsEqual(a, b Atom) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return Visit[bool](a, equalVisitor{other: b})
}

// SequenceEqual compares two atom sequences position by position.
func SequenceEqual(a, b []Atom) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !AtomsEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

type textVisitor struct{}

func (textVisitor) Word(w Word) string               { return w.String() }
func (textVisitor) Space() string                    { return " " }
func (textVisitor) NewLine() string                  { return "\n" }
func (textVisitor) VerseNumber(n VerseNumber) string { return n.Text + " " }

// Text renders an atom as visible text.
func Text(a Atom) string {
	return Visit[string](a, textVisitor{})
}
