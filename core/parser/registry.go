package parser

import (
	"sort"
	"strings"
	"sync"

	"github.com/joshuawootonn/type-the-word-sub001/core/canon"
	"github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/core/passage"
)

// translationDialects maps supported translations to their provider.
var translationDialects = map[string]string{
	"esv":  "esv",
	"bsb":  "apibible",
	"nlt":  "apibible",
	"niv":  "apibible",
	"csb":  "apibible",
	"nkjv": "apibible",
	"nasb": "apibible",
	"ntv":  "apibible",
	"kjv":  "apibible",
}

var registry = sync.OnceValues(func() (map[string]*Parser, error) {
	c := canon.KJV()
	parsers := make(map[string]*Parser, 2)
	for _, d := range []*Dialect{ESV(c), APIBible()} {
		p, err := New(d, c)
		if err != nil {
			return nil, err
		}
		parsers[d.Name] = p
	}
	return parsers, nil
})

// ForTranslation returns the parser for a translation id.
func ForTranslation(translation string) (*Parser, error) {
	name, ok := translationDialects[strings.ToLower(translation)]
	if !ok {
		return nil, errors.NewUnsupported("translation", translation+" has no provider")
	}
	parsers, err := registry()
	if err != nil {
		return nil, err
	}
	return parsers[name], nil
}

// Translations lists the supported translation ids in sorted order.
func Translations() []string {
	out := make([]string, 0, len(translationDialects))
	for t := range translationDialects {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Parse parses markup with the parser registered for translation.
func Parse(markup []byte, translation string) (*passage.Passage, error) {
	p, err := ForTranslation(translation)
	if err != nil {
		return nil, err
	}
	return p.Parse(markup, strings.ToLower(translation))
}
