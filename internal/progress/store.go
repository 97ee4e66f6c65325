// Package progress persists verse completion events.
//
// The typing controller hands events to a Dispatcher, whose Record never
// blocks; a background goroutine delivers them to a Store. The SQLite store
// keys rows by event id so a redelivered event is counted once.
package progress

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/sqlite"
	"github.com/joshuawootonn/type-the-word-sub001/core/typing"
)

// Store saves completion events.
type Store interface {
	Save(ctx context.Context, e typing.Event) error
}

var migrations = []string{
	`CREATE TABLE typed_verse (
		id            TEXT PRIMARY KEY,
		book          TEXT NOT NULL,
		chapter       INTEGER NOT NULL,
		verse         INTEGER NOT NULL,
		translation   TEXT NOT NULL,
		assignment_id TEXT NOT NULL DEFAULT '',
		completed_at  TEXT NOT NULL
	);
	CREATE INDEX typed_verse_chapter ON typed_verse (translation, book, chapter);`,
}

// SQLiteStore stores events in a typed_verse table.
type SQLiteStore struct {
	db    *sql.DB
	canon *canon.Canon
}

// OpenSQLite opens (or creates) the database at path.
func OpenSQLite(ctx context.Context, path string, c *canon.Canon) (*SQLiteStore, error) {
	db, err := sqlite.OpenFile(ctx, path)
	if err != nil {
		return nil, errors.NewIO("open", path, err)
	}
	s, err := NewSQLiteStore(ctx, db, c)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore migrates db and wraps it.
func NewSQLiteStore(ctx context.Context, db *sql.DB, c *canon.Canon) (*SQLiteStore, error) {
	if c == nil {
		c = canon.KJV()
	}
	if err := sqlite.Migrate(ctx, db, migrations); err != nil {
		return nil, errors.Wrap(err, "progress schema")
	}
	return &SQLiteStore{db: db, canon: c}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Save inserts e. Saving an event id twice is a no-op.
func (s *SQLiteStore) Save(ctx context.Context, e typing.Event) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO typed_verse
			(id, book, chapter, verse, translation, assignment_id, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.Book, e.Chapter, e.Verse, e.Translation, e.AssignmentID,
		e.CompletedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save verse %s %d:%d: %w", e.Book, e.Chapter, e.Verse, err)
	}
	return nil
}

// Typed returns the distinct verses typed in a chapter, ascending.
func (s *SQLiteStore) Typed(ctx context.Context, book string, chapter int, translation string) ([]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT verse FROM typed_verse
		WHERE book = ? AND chapter = ? AND translation = ?
		ORDER BY verse`,
		book, chapter, translation,
	)
	if err != nil {
		return nil, fmt.Errorf("query typed verses: %w", err)
	}
	defer rows.Close()

	var verses []int
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan typed verse: %w", err)
		}
		verses = append(verses, v)
	}
	return verses, rows.Err()
}

// Count returns the number of stored events, duplicates of a verse included.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM typed_verse`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count typed verses: %w", err)
	}
	return n, nil
}

// Chapter summarizes progress through one chapter.
type Chapter struct {
	Book        string `json:"book"`
	Chapter     int    `json:"chapter"`
	Translation string `json:"translation"`
	Typed       []int  `json:"typed"`
	Total       int    `json:"total"`
}

// Percent returns typed/total as 0-100.
func (c Chapter) Percent() int {
	if c.Total == 0 {
		return 0
	}
	return len(c.Typed) * 100 / c.Total
}

// Remaining returns the verses of the chapter not yet typed.
func (c Chapter) Remaining() []int {
	done := make(map[int]bool, len(c.Typed))
	for _, v := range c.Typed {
		done[v] = true
	}
	var out []int
	for v := 1; v <= c.Total; v++ {
		if !done[v] {
			out = append(out, v)
		}
	}
	return out
}

// ChapterProgress reports typed verses against the chapter's verse count.
// Verses outside the canon's bounds are not counted.
func (s *SQLiteStore) ChapterProgress(ctx context.Context, book string, chapter int, translation string) (Chapter, error) {
	b, ok := s.canon.Book(book)
	if !ok {
		return Chapter{}, errors.NewNotFound("book", book)
	}
	total := b.VerseCount(chapter)
	if total == 0 {
		return Chapter{}, errors.NewValidation("chapter", fmt.Sprintf("%s has %d chapters, got %d", b.Name, b.ChapterCount(), chapter))
	}

	typed, err := s.Typed(ctx, b.Slug, chapter, translation)
	if err != nil {
		return Chapter{}, err
	}
	in := typed[:0]
	for _, v := range typed {
		if v >= 1 && v <= total {
			in = append(in, v)
		}
	}
	return Chapter{
		Book:        b.Slug,
		Chapter:     chapter,
		Translation: translation,
		Typed:       in,
		Total:       total,
	}, nil
}
