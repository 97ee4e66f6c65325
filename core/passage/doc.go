// Package passage defines the document model shared by the provider parsers
// and the typing state machine.
//
// A parsed chapter is a Passage: an ordered list of Blocks (Paragraph or
// Header). A Paragraph holds Verses, and each Verse holds inline Atoms.
// Atoms form a closed set:
//
//   - Word: the letters a typist reproduces, including the trailing delimiter
//   - Space: a display boundary, used for poetry indentation
//   - NewLine: a display line break inside a paragraph
//   - VerseNumber: the identity marker that starts a verse
//
// The model is immutable once parsed and can be shared between goroutines
// without locking.
package passage
