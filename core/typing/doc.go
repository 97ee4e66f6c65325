// Package typing replays keystrokes against a parsed passage.
//
// The keystroke log of the active verse is the only state. Reduce rebuilds
// the typed position from the log on every keystroke, Admit decides whether
// a keystroke may join the log, and Controller compares the position with
// the active verse, emitting an Event and moving on when they match.
//
// Only Word atoms are typed. Spaces and line breaks are crossed by the
// delimiter letter that closes the preceding word, so a space keystroke
// completes a word whose canonical delimiter is " " and Enter completes one
// that ends in "\n".
//
// A Controller is not safe for concurrent use. The passage it reads is
// immutable and may be shared.
package typing
