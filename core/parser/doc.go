// Package parser converts provider HTML into the passage document model.
//
// Two provider dialects exist, "esv" (ESV API) and "apibible" (API.Bible).
// Both run the same walk: top-level nodes are classified through the
// dialect's Table into headers, prose paragraphs, poetry lines, stanza
// breaks or skips; inline content becomes Word, NewLine and VerseNumber
// atoms; paragraphs are cut into verse segments; consecutive poetry lines
// merge into one quote paragraph. Dialects differ only in their tables,
// marker formats and a few formatting constants.
//
// Use ForTranslation to obtain the parser for a translation id.
package parser
