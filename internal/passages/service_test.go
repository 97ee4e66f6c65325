package passages

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/joshuawootonn/type-the-word-sub001/core/cache"
	"github.com/joshuawootonn/type-the-word-sub001/core/cas"
	coreerrors "github.com/joshuawootonn/type-the-word-sub001/core/errors"
	"github.com/joshuawootonn/type-the-word-sub001/internal/validation"
)

const nltPsalm23 = `<div class="chapter ch23" data-usfm="PSA 23">
<p class="d">A psalm of David.</p>
<p class="q1"><span data-number="1" data-sid="PSA 23:1" class="v">1</span>The LORD is my shepherd; I have all that I need.</p>
<p class="q1"><span data-number="2" data-sid="PSA 23:2" class="v">2</span>He lets me rest in green meadows;</p>
<p class="q2">he leads me beside peaceful streams.</p>
</div>`

const bsbGenesis1 = `<div class="chapter ch1" data-usfm="GEN 1">
<p class="s1">The Creation</p>
<p class="p"><span data-number="1" data-sid="GEN 1:1" class="v">1</span>In the beginning God created the heavens and the earth.</p>
</div>`

// Provider error page: no verse markers at all.
const brokenMarkup = `<html><body><div class="chapter"><p>Service unavailable</p></div></body></html>`

// stubSource serves markup from a map and counts fetches.
type stubSource struct {
	markup  map[string]string
	err     error
	fetches atomic.Int32
}

func (s *stubSource) Fetch(ctx context.Context, translation, book string, chapter int) ([]byte, error) {
	s.fetches.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	m, ok := s.markup[snapshotRef(translation, book, chapter)]
	if !ok {
		return nil, coreerrors.NewNotFound("passage", book)
	}
	return []byte(m), nil
}

func newSnapshots(t *testing.T) *cas.Store {
	t.Helper()
	s, err := cas.NewStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestServiceLoad(t *testing.T) {
	src := &stubSource{markup: map[string]string{"nlt/psalm_23": nltPsalm23}}
	svc := NewService(src, Options{})

	for _, book := range []string{"psalm", "PSA", "Ps"} {
		p, err := svc.Load(context.Background(), "NLT", book, 23)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", book, err)
		}
		if p.Book != "psalm" || p.Chapter != 23 || p.Translation != "nlt" {
			t.Errorf("Load(%s) = %s %d (%s)", book, p.Book, p.Chapter, p.Translation)
		}
		// verse 1, verse 2 and the hanging second line of verse 2
		if n := len(p.Verses()); n != 3 {
			t.Errorf("Load(%s) has %d verse segments, want 3", book, n)
		}
	}

	stats := svc.CacheStats()
	if stats.Hits != 2 || stats.Misses != 1 {
		t.Errorf("CacheStats() = %+v, want 2 hits and 1 miss", stats)
	}
	if got := src.fetches.Load(); got != 3 {
		t.Errorf("fetches = %d, want 3", got)
	}
}

func TestServiceLoadValidation(t *testing.T) {
	svc := NewService(&stubSource{}, Options{})
	ctx := context.Background()

	tests := []struct {
		name        string
		translation string
		book        string
		chapter     int
		want        error
	}{
		{"unknown translation", "msg", "psalm", 23, coreerrors.ErrUnsupported},
		{"unknown book", "esv", "enoch", 1, coreerrors.ErrNotFound},
		{"chapter zero", "esv", "genesis", 0, coreerrors.ErrInvalidInput},
		{"chapter past end", "esv", "jude", 2, coreerrors.ErrInvalidInput},
		{"missing markup", "esv", "genesis", 1, coreerrors.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Load(ctx, tt.translation, tt.book, tt.chapter)
			if !errors.Is(err, tt.want) {
				t.Errorf("Load() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestServiceLoadWrongChapter(t *testing.T) {
	src := &stubSource{markup: map[string]string{"bsb/genesis_2": bsbGenesis1}}
	svc := NewService(src, Options{})

	_, err := svc.Load(context.Background(), "bsb", "genesis", 2)
	if !errors.Is(err, coreerrors.ErrMalformedDocument) {
		t.Errorf("Load() error = %v, want ErrMalformedDocument", err)
	}
}

func TestServiceSnapshotFallback(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{markup: map[string]string{"nlt/psalm_23": nltPsalm23}}
	snaps := newSnapshots(t)
	svc := NewService(src, Options{Snapshots: snaps, Cache: cache.NewPassageCache(cache.Config{MaxSize: 4})})

	good, err := svc.Load(ctx, "nlt", "psalm", 23)
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	ref, err := snaps.Ref("nlt/psalm_23")
	if err != nil {
		t.Fatalf("snapshot ref missing: %v", err)
	}
	if ref.Hash != cas.Hash([]byte(nltPsalm23)) {
		t.Errorf("snapshot hash = %s, want hash of the markup", ref.Hash)
	}

	// The provider starts returning an error page.
	src.markup["nlt/psalm_23"] = brokenMarkup
	p, err := svc.Load(ctx, "nlt", "psalm", 23)
	if err != nil {
		t.Fatalf("Load() with malformed markup error = %v, want snapshot", err)
	}
	if p.Text() != good.Text() {
		t.Errorf("snapshot passage text = %q, want %q", p.Text(), good.Text())
	}

	// The provider is unreachable.
	src.err = errors.New("connection refused")
	if _, err := svc.Load(ctx, "nlt", "psalm", 23); err != nil {
		t.Errorf("Load() with failing source error = %v, want snapshot", err)
	}
}

func TestServiceFallbackWithoutSnapshot(t *testing.T) {
	ctx := context.Background()
	src := &stubSource{markup: map[string]string{"esv/psalm_23": brokenMarkup}}

	for name, svc := range map[string]*Service{
		"no store":    NewService(src, Options{}),
		"empty store": NewService(src, Options{Snapshots: newSnapshots(t)}),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Load(ctx, "esv", "psalm", 23)
			var mde *coreerrors.MalformedDocumentError
			if !errors.As(err, &mde) {
				t.Fatalf("Load() error = %v, want MalformedDocumentError", err)
			}
			if mde.Provider != "esv" {
				t.Errorf("Provider = %q, want esv", mde.Provider)
			}
		})
	}
}

func TestServiceParse(t *testing.T) {
	svc := NewService(&stubSource{}, Options{})

	p, err := svc.Parse([]byte(bsbGenesis1), "BSB")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if p.Book != "genesis" || p.Translation != "bsb" {
		t.Errorf("Parse() = %s (%s)", p.Book, p.Translation)
	}
	if got := len(p.Headers()); got != 1 {
		t.Errorf("headers = %d, want 1", got)
	}

	again, _ := svc.Parse([]byte(bsbGenesis1), "bsb")
	if again != p {
		t.Error("second Parse() did not come from the cache")
	}
}

func TestDirSource(t *testing.T) {
	root := t.TempDir()
	src := DirSource{Root: root}
	path := src.Path("ESV", "psalm", 23)
	if want := filepath.Join(root, "esv", "psalm_23.html"); path != want {
		t.Errorf("Path() = %q, want %q", path, want)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("<p>x</p>"), 0644); err != nil {
		t.Fatal(err)
	}

	data, err := src.Fetch(context.Background(), "esv", "psalm", 23)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if string(data) != "<p>x</p>" {
		t.Errorf("Fetch() = %q", data)
	}

	if _, err := src.Fetch(context.Background(), "esv", "psalm", 24); !errors.Is(err, coreerrors.ErrNotFound) {
		t.Errorf("Fetch(missing) error = %v, want ErrNotFound", err)
	}

	for _, tt := range []struct{ translation, book string }{
		{"esv", "../../etc"},
		{"..", "psalm"},
		{"esv", ""},
	} {
		if _, err := src.Fetch(context.Background(), tt.translation, tt.book, 1); !errors.Is(err, coreerrors.ErrInvalidInput) {
			t.Errorf("Fetch(%q, %q) error = %v, want ErrInvalidInput", tt.translation, tt.book, err)
		}
	}

	binary := src.Path("esv", "psalm", 1)
	if err := os.WriteFile(binary, []byte{0x89, 'P', 'N', 'G', 0}, 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := src.Fetch(context.Background(), "esv", "psalm", 1); !errors.Is(err, validation.ErrNotMarkup) {
		t.Errorf("Fetch(binary) error = %v, want ErrNotMarkup", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := src.Fetch(ctx, "esv", "psalm", 23); !errors.Is(err, context.Canceled) {
		t.Errorf("Fetch(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestSourceFunc(t *testing.T) {
	var got string
	src := SourceFunc(func(ctx context.Context, translation, book string, chapter int) ([]byte, error) {
		got = snapshotRef(translation, book, chapter)
		return []byte(nltPsalm23), nil
	})
	svc := NewService(src, Options{})
	if _, err := svc.Load(context.Background(), "nlt", "psalm", 23); err != nil {
		t.Fatal(err)
	}
	if got != "nlt/psalm_23" {
		t.Errorf("SourceFunc called with %q", got)
	}
}
