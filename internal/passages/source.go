package passages

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/internal/validation"
)

// Source fetches provider markup for one chapter.
type Source interface {
	Fetch(ctx context.Context, translation, book string, chapter int) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, translation, book string, chapter int) ([]byte, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, translation, book string, chapter int) ([]byte, error) {
	return f(ctx, translation, book, chapter)
}

// DirSource reads markup saved as <Root>/<translation>/<book>_<chapter>.html.
// Files larger than validation.MaxMarkupSize or that are not text are
// rejected.
type DirSource struct {
	Root string
}

// Path returns the file DirSource reads for a chapter.
func (d DirSource) Path(translation, book string, chapter int) string {
	return filepath.Join(d.Root, chapterFile(translation, book, chapter))
}

func chapterFile(translation, book string, chapter int) string {
	return filepath.Join(strings.ToLower(translation), book+"_"+strconv.Itoa(chapter)+".html")
}

// Fetch reads the chapter file.
func (d DirSource) Fetch(ctx context.Context, translation, book string, chapter int) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for field, seg := range map[string]string{"translation": translation, "book": book} {
		if err := validation.ValidateSegment(seg); err != nil {
			return nil, &errors.ValidationError{Field: field, Value: seg, Message: err.Error(), Err: errors.ErrInvalidInput}
		}
	}
	path, err := validation.SanitizePath(d.Root, chapterFile(translation, book, chapter))
	if err != nil {
		return nil, &errors.ValidationError{Field: "path", Message: err.Error(), Err: errors.ErrInvalidInput}
	}

	data, err := validation.ReadMarkup(path, validation.MaxMarkupSize)
	switch {
	case err == nil:
		return data, nil
	case os.IsNotExist(err):
		return nil, errors.NewNotFound("passage", path)
	default:
		return nil, errors.NewIO("read", path, err)
	}
}
