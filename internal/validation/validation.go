// Package validation guards the files the passage source reads: path
// segments taken from requests, the resolved path, and the markup itself.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Limits on request-derived paths and markup files.
const (
	// MaxMarkupSize is the largest chapter file accepted (8 MB).
	MaxMarkupSize = 8 << 20
	// MaxSegmentLength is the longest translation or book segment.
	MaxSegmentLength = 64
	// MaxPathLength is the longest relative path accepted.
	MaxPathLength = 4096
)

// Validation errors.
var (
	ErrPathTraversal  = errors.New("path traversal detected")
	ErrInvalidSegment = errors.New("invalid path segment")
	ErrEmptyPath      = errors.New("path cannot be empty")
	ErrPathTooLong    = errors.New("path too long")
	ErrTooLarge       = errors.New("markup file too large")
	ErrNotMarkup      = errors.New("file is not text markup")
)

// ValidateSegment checks one path segment built from request input, such
// as a translation id or book slug.
func ValidateSegment(s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%w: empty", ErrInvalidSegment)
	case len(s) > MaxSegmentLength:
		return fmt.Errorf("%w: longer than %d bytes", ErrInvalidSegment, MaxSegmentLength)
	case s == "." || s == "..":
		return fmt.Errorf("%w: reserved name", ErrInvalidSegment)
	case strings.ContainsAny(s, `/\`):
		return fmt.Errorf("%w: path separator not allowed", ErrInvalidSegment)
	case strings.HasPrefix(s, "-"):
		return fmt.Errorf("%w: cannot start with hyphen", ErrInvalidSegment)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return fmt.Errorf("%w: control character not allowed", ErrInvalidSegment)
		}
	}
	return nil
}

// SanitizePath cleans rel and checks that it stays inside baseDir. It
// returns baseDir joined with the cleaned path.
func SanitizePath(baseDir, rel string) (string, error) {
	if rel == "" {
		return "", ErrEmptyPath
	}
	if len(rel) > MaxPathLength {
		return "", ErrPathTooLong
	}
	clean := filepath.Clean(rel)
	if filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if !filepath.IsLocal(clean) {
		return "", ErrPathTraversal
	}
	return filepath.Join(baseDir, clean), nil
}

// ReadMarkup reads a markup file of at most max bytes and rejects content
// that does not look like text.
func ReadMarkup(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, max)
	}
	if !isLikelyText(data) {
		return nil, ErrNotMarkup
	}
	return data, nil
}

// isLikelyText reports whether buf is non-empty UTF-8 with few control
// characters.
func isLikelyText(buf []byte) bool {
	if len(buf) == 0 || bytes.IndexByte(buf, 0) != -1 || !utf8.Valid(buf) {
		return false
	}
	control := 0
	for _, b := range buf {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' {
			control++
		}
	}
	// 95% printable
	return control*20 < len(buf)
}
