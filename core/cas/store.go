// Package cas provides content-addressed storage for provider markup
// snapshots. Blobs are addressed by the BLAKE3 hash of their content and
// stored xz-compressed; named refs point at the latest blob for a key.
package cas

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
	"github.com/zeebo/blake3"
)

// osRename is a variable to allow testing of rename errors.
var osRename = os.Rename

// ErrBlobNotFound is returned when a blob or ref does not exist.
var ErrBlobNotFound = errors.New("blob not found")

// ErrInvalidHash is returned when a hash string is not a valid BLAKE3 hex string.
var ErrInvalidHash = errors.New("invalid hash format")

// ErrInvalidRef is returned for ref names that would escape the store.
var ErrInvalidRef = errors.New("invalid ref name")

// hashPattern matches a lowercase 256-bit hex digest.
var hashPattern = regexp.MustCompile(`^[a-f0-9]{64}$`)

// refPattern matches ref names such as "esv/psalm_23".
var refPattern = regexp.MustCompile(`^[a-z0-9_\-]+(/[a-z0-9_\-]+)*$`)

// Store is a directory of compressed blobs and refs.
type Store struct {
	root string
}

// Ref points a name at a blob.
type Ref struct {
	Hash     string    `json:"blake3"`
	Size     int       `json:"size"`
	StoredAt time.Time `json:"stored_at"`
}

// NewStore creates a store at root, creating the directory layout.
func NewStore(root string) (*Store, error) {
	for _, dir := range []string{"blobs", "refs"} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return &Store{root: root}, nil
}

// Root returns the store directory.
func (s *Store) Root() string {
	return s.root
}

// Put stores data and returns its BLAKE3 hash. Storing the same content
// twice is a no-op.
func (s *Store) Put(data []byte) (string, error) {
	hash := Hash(data)
	path := s.pathForHash(hash)
	if _, err := os.Stat(path); err == nil {
		return hash, nil
	}

	var buf bytes.Buffer
	w, err := xz.NewWriter(&buf)
	if err != nil {
		return "", fmt.Errorf("failed to create xz writer: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return "", fmt.Errorf("failed to compress blob: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to finish compression: %w", err)
	}

	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return "", err
	}
	return hash, nil
}

// Get returns the content of the blob with the given hash. The content is
// verified against the hash after decompression.
func (s *Store) Get(hash string) ([]byte, error) {
	if !isValidHash(hash) {
		return nil, ErrInvalidHash
	}

	f, err := os.Open(s.pathForHash(hash))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("failed to open blob: %w", err)
	}
	defer f.Close()

	r, err := xz.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read blob header: %w", err)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress blob: %w", err)
	}
	if got := Hash(data); got != hash {
		return nil, fmt.Errorf("blob %s is corrupt: content hashes to %s", hash, got)
	}
	return data, nil
}

// Exists checks if a blob with the given hash exists in the store.
func (s *Store) Exists(hash string) bool {
	if !isValidHash(hash) {
		return false
	}
	_, err := os.Stat(s.pathForHash(hash))
	return err == nil
}

// SetRef points name at a stored blob.
func (s *Store) SetRef(name, hash string) (Ref, error) {
	if !refPattern.MatchString(name) {
		return Ref{}, ErrInvalidRef
	}
	if !s.Exists(hash) {
		return Ref{}, ErrBlobNotFound
	}
	info, err := os.Stat(s.pathForHash(hash))
	if err != nil {
		return Ref{}, fmt.Errorf("failed to stat blob: %w", err)
	}

	ref := Ref{Hash: hash, Size: int(info.Size()), StoredAt: time.Now().UTC()}
	data, err := json.Marshal(ref)
	if err != nil {
		return Ref{}, fmt.Errorf("failed to marshal ref: %w", err)
	}
	if err := writeAtomic(s.pathForRef(name), data); err != nil {
		return Ref{}, err
	}
	return ref, nil
}

// Ref reads the ref with the given name.
func (s *Store) Ref(name string) (Ref, error) {
	if !refPattern.MatchString(name) {
		return Ref{}, ErrInvalidRef
	}
	data, err := os.ReadFile(s.pathForRef(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Ref{}, ErrBlobNotFound
		}
		return Ref{}, fmt.Errorf("failed to read ref: %w", err)
	}
	var ref Ref
	if err := json.Unmarshal(data, &ref); err != nil {
		return Ref{}, fmt.Errorf("failed to parse ref: %w", err)
	}
	return ref, nil
}

// PutRef stores data and points name at it.
func (s *Store) PutRef(name string, data []byte) (Ref, error) {
	if !refPattern.MatchString(name) {
		return Ref{}, ErrInvalidRef
	}
	hash, err := s.Put(data)
	if err != nil {
		return Ref{}, err
	}
	return s.SetRef(name, hash)
}

// GetRef returns the content the named ref points at.
func (s *Store) GetRef(name string) ([]byte, Ref, error) {
	ref, err := s.Ref(name)
	if err != nil {
		return nil, Ref{}, err
	}
	data, err := s.Get(ref.Hash)
	if err != nil {
		return nil, Ref{}, err
	}
	return data, ref, nil
}

// pathForHash returns <root>/blobs/<first2>/<hash>.xz.
func (s *Store) pathForHash(hash string) string {
	return filepath.Join(s.root, "blobs", hash[:2], hash+".xz")
}

// pathForRef returns <root>/refs/<name>.json.
func (s *Store) pathForRef(name string) string {
	return filepath.Join(s.root, "refs", filepath.FromSlash(strings.TrimSuffix(name, "/"))+".json")
}

// writeAtomic writes data to path through a temp file and rename.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// isValidHash checks if a hash string is a valid 256-bit hex digest.
func isValidHash(hash string) bool {
	return hashPattern.MatchString(hash)
}

// Hash computes the BLAKE3 hash of data without storing it.
func Hash(data []byte) string {
	h := blake3.Sum256(data)
	return hex.EncodeToString(h[:])
}

// HashParts hashes several values with separators, for composite keys.
func HashParts(parts ...[]byte) string {
	h := blake3.New()
	for _, p := range parts {
		var n [8]byte
		l := len(p)
		for i := range n {
			n[i] = byte(l >> (8 * i))
		}
		h.Write(n[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
