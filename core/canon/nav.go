package canon

import (
	"fmt"
	"strconv"
)

// ChapterLink points at a chapter of the canon.
type ChapterLink struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	URL     string `json:"url"`
}

// NewChapterLink builds the link for a book slug and chapter.
func NewChapterLink(slug string, chapter int) ChapterLink {
	return ChapterLink{
		Book:    slug,
		Chapter: chapter,
		URL:     fmt.Sprintf("/passage/%s_%s", slug, strconv.Itoa(chapter)),
	}
}

// PrevChapter returns the chapter before (slug, chapter). The first chapter
// of a book links to the last chapter of the previous book; Genesis 1 has
// no previous chapter.
func (c *Canon) PrevChapter(slug string, chapter int) (ChapterLink, bool) {
	i, ok := c.lookup(slug)
	if !ok {
		return ChapterLink{}, false
	}
	if chapter > 1 {
		return NewChapterLink(c.books[i].Slug, chapter-1), true
	}
	if i == 0 {
		return ChapterLink{}, false
	}
	prev := c.books[i-1]
	return NewChapterLink(prev.Slug, prev.ChapterCount()), true
}

// NextChapter returns the chapter after (slug, chapter). The last chapter of
// a book links to the first chapter of the next book; the last chapter of
// the canon has no next chapter.
func (c *Canon) NextChapter(slug string, chapter int) (ChapterLink, bool) {
	i, ok := c.lookup(slug)
	if !ok {
		return ChapterLink{}, false
	}
	b := c.books[i]
	if chapter < b.ChapterCount() {
		return NewChapterLink(b.Slug, chapter+1), true
	}
	if i == len(c.books)-1 {
		return ChapterLink{}, false
	}
	return NewChapterLink(c.books[i+1].Slug, 1), true
}
