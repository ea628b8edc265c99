// Package asset manages binary image assets in two locations: a staging area
// for uploads whose record write has not yet completed, and a public area for
// committed assets referenced by persisted records. Keeping uploads staged
// until the record write succeeds biases failures toward an orphaned staged
// file instead of a record pointing at a missing asset.
package asset

import (
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var (
	// ErrMissing is returned when a staged reference no longer exists,
	// meaning it was already committed or discarded. Hitting it indicates an
	// ordering bug in the caller and is fatal to the request.
	ErrMissing = errors.New("staged asset missing")

	// ErrUnsupportedFormat is returned for a declared MIME type outside the
	// allow-list. Nothing is written in that case.
	ErrUnsupportedFormat = errors.New("unsupported image format")
)

// extensions maps allow-listed MIME types to file extensions.
var extensions = map[string]string{
	"image/jpeg": "jpg",
	"image/jpg":  "jpg",
	"image/png":  "png",
}

// Store keeps image assets under two directories with move-based commits.
type Store struct {
	stagingDir string
	publicDir  string
}

// Staged identifies an asset in the staging area.
type Staged struct {
	Name string
	Hash string
}

// NewStore creates both asset directories if needed.
func NewStore(stagingDir, publicDir string) (*Store, error) {
	for _, dir := range []string{stagingDir, publicDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating asset directory: %w", err)
		}
	}
	return &Store{stagingDir: stagingDir, publicDir: publicDir}, nil
}

// Stage writes content to the staging area under a collision-resistant name
// combining a timestamp and a random suffix, with the extension derived from
// the declared MIME type.
func (s *Store) Stage(content []byte, mime string) (*Staged, error) {
	ext, ok := extensions[mime]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	name := fmt.Sprintf("item_%d_%s.%s", time.Now().UnixMilli(), randomSuffix(), ext)
	if err := os.WriteFile(filepath.Join(s.stagingDir, name), content, 0o644); err != nil {
		return nil, fmt.Errorf("staging asset: %w", err)
	}

	return &Staged{Name: name, Hash: Hash(content)}, nil
}

// Commit moves a staged asset into the public area.
func (s *Store) Commit(name string) error {
	err := os.Rename(filepath.Join(s.stagingDir, name), filepath.Join(s.publicDir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrMissing, name)
	}
	if err != nil {
		return fmt.Errorf("committing asset: %w", err)
	}
	return nil
}

// Discard removes a staged asset. Discarding a reference that was already
// cleaned up is not an error.
func (s *Store) Discard(name string) error {
	err := os.Remove(filepath.Join(s.stagingDir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("discarding staged asset: %w", err)
	}
	return nil
}

// Remove deletes a committed asset, used on record deletion or image
// replacement. Missing assets are ignored.
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.publicDir, name))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing asset: %w", err)
	}
	return nil
}

// PublicPath returns the filesystem path of a committed asset.
func (s *Store) PublicPath(name string) string {
	return filepath.Join(s.publicDir, name)
}

// ReadCommitted returns the content of a committed asset.
func (s *Store) ReadCommitted(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(s.publicDir, name))
	if err != nil {
		return nil, fmt.Errorf("reading asset: %w", err)
	}
	return data, nil
}

// Hash returns the hex-encoded BLAKE2b-256 digest of content, used as the
// strong ETag for served assets.
func Hash(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:])
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
