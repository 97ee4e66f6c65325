package cas

import (
	"bytes"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/zeebo/blake3"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return store
}

// TestPutAndGet tests that storing a blob returns its BLAKE3 hash and that
// retrieving by hash returns the exact same bytes.
func TestPutAndGet(t *testing.T) {
	store := newTestStore(t)
	testData := []byte(`<div class="chapter"><span class="v" data-sid="GEN 1:1">1</span>In the beginning</div>`)

	h := blake3.Sum256(testData)
	expectedHash := hex.EncodeToString(h[:])

	hash, err := store.Put(testData)
	if err != nil {
		t.Fatalf("failed to store blob: %v", err)
	}
	if hash != expectedHash {
		t.Errorf("hash mismatch: got %s, want %s", hash, expectedHash)
	}

	retrieved, err := store.Get(hash)
	if err != nil {
		t.Fatalf("failed to retrieve blob: %v", err)
	}
	if !bytes.Equal(retrieved, testData) {
		t.Errorf("retrieved data mismatch: got %q, want %q", retrieved, testData)
	}
}

// TestPutCompresses checks that blobs are written xz-compressed.
func TestPutCompresses(t *testing.T) {
	store := newTestStore(t)
	testData := []byte(strings.Repeat("The LORD is my shepherd; I shall not want. ", 200))

	hash, err := store.Put(testData)
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	raw, err := os.ReadFile(store.pathForHash(hash))
	if err != nil {
		t.Fatalf("failed to read blob file: %v", err)
	}
	if len(raw) >= len(testData) {
		t.Errorf("blob is %d bytes, want fewer than %d", len(raw), len(testData))
	}
	if !bytes.HasPrefix(raw, []byte{0xFD, '7', 'z', 'X', 'Z', 0x00}) {
		t.Error("blob does not carry the xz magic header")
	}
}

// TestPutDuplicate tests that storing the same content twice returns the same
// hash and leaves a single file.
func TestPutDuplicate(t *testing.T) {
	store := newTestStore(t)
	testData := []byte("Duplicate content test")

	hash1, err := store.Put(testData)
	if err != nil {
		t.Fatalf("first put failed: %v", err)
	}
	hash2, err := store.Put(testData)
	if err != nil {
		t.Fatalf("second put failed: %v", err)
	}
	if hash1 != hash2 {
		t.Errorf("duplicate content produced different hashes: %s vs %s", hash1, hash2)
	}

	entries, err := os.ReadDir(filepath.Dir(store.pathForHash(hash1)))
	if err != nil {
		t.Fatalf("failed to read blob dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("blob dir has %d entries, want 1", len(entries))
	}
}

func TestGetErrors(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Get("not-a-hash"); !errors.Is(err, ErrInvalidHash) {
		t.Errorf("Get(invalid) error = %v, want ErrInvalidHash", err)
	}
	if _, err := store.Get(strings.Repeat("ab", 32)); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrBlobNotFound", err)
	}
}

// TestGetDetectsCorruption swaps one blob's file for another's.
func TestGetDetectsCorruption(t *testing.T) {
	store := newTestStore(t)

	a, err := store.Put([]byte("first"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := store.Put([]byte("second"))
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(store.pathForHash(b))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.pathForHash(a), raw, 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := store.Get(a); err == nil || !strings.Contains(err.Error(), "corrupt") {
		t.Errorf("Get() error = %v, want corruption error", err)
	}
}

func TestExists(t *testing.T) {
	store := newTestStore(t)
	hash, err := store.Put([]byte("exists"))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		hash string
		want bool
	}{
		{"stored", hash, true},
		{"missing", strings.Repeat("0", 64), false},
		{"invalid", "xyz", false},
		{"uppercase", strings.ToUpper(hash), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := store.Exists(tt.hash); got != tt.want {
				t.Errorf("Exists(%q) = %v, want %v", tt.hash, got, tt.want)
			}
		})
	}
}

func TestRefs(t *testing.T) {
	store := newTestStore(t)
	v1 := []byte("<p>version one</p>")
	v2 := []byte("<p>version two</p>")

	ref, err := store.PutRef("esv/psalm_23", v1)
	if err != nil {
		t.Fatalf("PutRef() error = %v", err)
	}
	if ref.Hash != Hash(v1) {
		t.Errorf("ref.Hash = %s, want %s", ref.Hash, Hash(v1))
	}
	if ref.StoredAt.IsZero() {
		t.Error("ref.StoredAt is zero")
	}

	if _, err := store.PutRef("esv/psalm_23", v2); err != nil {
		t.Fatalf("PutRef() overwrite error = %v", err)
	}
	data, got, err := store.GetRef("esv/psalm_23")
	if err != nil {
		t.Fatalf("GetRef() error = %v", err)
	}
	if !bytes.Equal(data, v2) {
		t.Errorf("GetRef() = %q, want %q", data, v2)
	}
	if got.Hash != Hash(v2) {
		t.Errorf("ref hash = %s, want %s", got.Hash, Hash(v2))
	}
	if !store.Exists(Hash(v1)) {
		t.Error("previous blob was removed")
	}
}

func TestRefErrors(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"", "../escape", "ESV/Psalm", "a//b", "/abs"} {
		if _, err := store.PutRef(name, []byte("x")); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("PutRef(%q) error = %v, want ErrInvalidRef", name, err)
		}
	}
	if _, err := store.Ref("esv/missing_1"); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("Ref(missing) error = %v, want ErrBlobNotFound", err)
	}
	if _, err := store.SetRef("esv/genesis_1", strings.Repeat("1", 64)); !errors.Is(err, ErrBlobNotFound) {
		t.Errorf("SetRef(missing blob) error = %v, want ErrBlobNotFound", err)
	}
}

// TestPutRenameFailure checks that a failed rename leaves no temp files.
func TestPutRenameFailure(t *testing.T) {
	store := newTestStore(t)

	orig := osRename
	osRename = func(string, string) error { return errors.New("rename failed") }
	defer func() { osRename = orig }()

	data := []byte("will not land")
	if _, err := store.Put(data); err == nil {
		t.Fatal("Put() succeeded with a failing rename")
	}

	dir := filepath.Dir(store.pathForHash(Hash(data)))
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("blob dir has %d leftover entries", len(entries))
	}
}

func TestHashParts(t *testing.T) {
	a := HashParts([]byte("esv"), []byte("psalm_23"))
	b := HashParts([]byte("esvpsalm"), []byte("_23"))
	if a == b {
		t.Error("HashParts() collides across part boundaries")
	}
	if a != HashParts([]byte("esv"), []byte("psalm_23")) {
		t.Error("HashParts() is not deterministic")
	}
	if len(a) != 64 {
		t.Errorf("len(HashParts()) = %d, want 64", len(a))
	}
}
