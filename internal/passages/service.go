// Package passages loads parsed passages for the typing session and CLI.
//
// Markup comes from a Source, is parsed through the provider registry and
// cached by content. Every successful parse stores the markup as a snapshot;
// when a later fetch fails or yields a malformed document, the last good
// snapshot is parsed instead.
package passages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joshuawootonn/type-the-word-sub001/core/cache"
	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
	"github.com/joshuawootonn/type-the-word-sub001/core/cas"
	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/parser"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
	"github.com/joshuawootonn/type-the-word-sub001/internal/logging"
)

// Options configures a Service. Zero values pick defaults; a nil Snapshots
// store disables the fallback.
type Options struct {
	Cache     *cache.PassageCache
	Snapshots *cas.Store
	Canon     *canon.Canon
}

// Service loads passages.
type Service struct {
	source    Source
	cache     *cache.PassageCache
	snapshots *cas.Store
	canon     *canon.Canon
}

// NewService creates a Service reading from source.
func NewService(source Source, opts Options) *Service {
	if opts.Cache == nil {
		opts.Cache = cache.NewDefaultPassageCache()
	}
	if opts.Canon == nil {
		opts.Canon = canon.KJV()
	}
	return &Service{
		source:    source,
		cache:     opts.Cache,
		snapshots: opts.Snapshots,
		canon:     opts.Canon,
	}
}

// Canon returns the book metadata the service validates against.
func (s *Service) Canon() *canon.Canon {
	return s.canon
}

// CacheStats returns passage cache statistics.
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// Load returns the passage for a chapter. book may be any id the canon
// knows ("psalm", "PSA", "Ps").
func (s *Service) Load(ctx context.Context, translation, book string, chapter int) (*passage.Passage, error) {
	translation = strings.ToLower(strings.TrimSpace(translation))
	if _, err := parser.ForTranslation(translation); err != nil {
		return nil, err
	}
	b, ok := s.canon.Book(book)
	if !ok {
		return nil, errors.NewNotFound("book", book)
	}
	if chapter < 1 || chapter > b.ChapterCount() {
		return nil, errors.NewValidation("chapter", fmt.Sprintf("%s has %d chapters, got %d", b.Name, b.ChapterCount(), chapter))
	}

	markup, err := s.source.Fetch(ctx, translation, b.Slug, chapter)
	if err != nil {
		logging.ParseFailure(translation, b.Slug, chapter, err, "stage", "fetch")
		return s.fallback(ctx, translation, b.Slug, chapter, err)
	}

	p, err := s.parse(markup, translation, b.Slug, chapter)
	if err != nil {
		logging.ParseFailure(translation, b.Slug, chapter, err, "stage", "parse")
		if errors.Is(err, errors.ErrMalformedDocument) {
			return s.fallback(ctx, translation, b.Slug, chapter, err)
		}
		return nil, err
	}

	if s.snapshots != nil {
		if _, err := s.snapshots.PutRef(snapshotRef(translation, b.Slug, chapter), markup); err != nil {
			logging.Warn("failed to store passage snapshot",
				"translation", translation,
				"book", b.Slug,
				"chapter", chapter,
				"error", err,
			)
		}
	}
	return p, nil
}

// Parse parses markup for translation through the cache without checking
// which chapter it holds.
func (s *Service) Parse(markup []byte, translation string) (*passage.Passage, error) {
	return s.parse(markup, strings.ToLower(translation), "", 0)
}

// parse consults the cache, then the registry. A non-empty book asserts the
// document holds that chapter.
func (s *Service) parse(markup []byte, translation, book string, chapter int) (*passage.Passage, error) {
	key := cache.NewPassageKey(translation, book, chapter, markup)
	if p, ok := s.cache.Get(key); ok {
		return p, nil
	}

	p, err := parser.Parse(markup, translation)
	if err != nil {
		return nil, err
	}
	if book != "" && (p.Book != book || p.Chapter != chapter) {
		prov, _ := parser.ForTranslation(translation)
		return nil, errors.NewMalformedDocument(prov.Dialect().Name, translation,
			fmt.Sprintf("document holds %s %d, requested %s %d", p.Book, p.Chapter, book, chapter))
	}
	s.cache.Put(key, p)
	return p, nil
}

// fallback parses the last good snapshot, or returns cause when there is
// none.
func (s *Service) fallback(ctx context.Context, translation, book string, chapter int, cause error) (*passage.Passage, error) {
	if s.snapshots == nil {
		return nil, cause
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	markup, ref, err := s.snapshots.GetRef(snapshotRef(translation, book, chapter))
	if err != nil {
		if !errors.Is(err, cas.ErrBlobNotFound) {
			logging.Warn("failed to read passage snapshot", "translation", translation, "book", book, "chapter", chapter, "error", err)
		}
		return nil, cause
	}
	p, err := s.parse(markup, translation, book, chapter)
	if err != nil {
		logging.Error("passage snapshot no longer parses", "translation", translation, "book", book, "chapter", chapter, "blake3", ref.Hash, "error", err)
		return nil, cause
	}
	logging.Info("serving passage from snapshot",
		"translation", translation,
		"book", book,
		"chapter", chapter,
		"blake3", ref.Hash,
		"stored_at", ref.StoredAt.Format(time.RFC3339),
	)
	return p, nil
}

func snapshotRef(translation, book string, chapter int) string {
	return translation + "/" + book + "_" + strconv.Itoa(chapter)
}
