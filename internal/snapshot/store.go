package snapshot

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

var unsafeChars = regexp.MustCompile(`[^a-z0-9]+`)

func sanitize(s string) string {
	s = unsafeChars.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// URLTail returns the final path segment of rawURL, falling back to the host
// for bare roots.
func URLTail(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		if u.Host != "" {
			return u.Host
		}
		return rawURL
	}
	segs := strings.Split(path, "/")
	return segs[len(segs)-1]
}

// Key derives the filesystem token for a (source name, url) pair. Two URLs
// whose tails sanitize to the same token collide; known boundary.
func Key(sourceName, rawURL string) string {
	return sanitize(sourceName) + "-" + sanitize(URLTail(rawURL))
}

// Store persists the latest raw content and fingerprint per tracked URL as
// <root>/<category>/<key>.txt and .hash. Absence of a snapshot is a normal
// first-observation state, reported through the ok return, never an error.
type Store struct {
	fs   afero.Fs
	root string
}

func NewStore(root string) *Store {
	return NewStoreWithFS(afero.NewOsFs(), root)
}

func NewStoreWithFS(fs afero.Fs, root string) *Store {
	return &Store{fs: fs, root: root}
}

func (s *Store) contentPath(category, key string) string {
	return filepath.Join(s.root, category, key+".txt")
}

func (s *Store) digestPath(category, key string) string {
	return filepath.Join(s.root, category, key+".hash")
}

// PriorDigest returns the last committed fingerprint for the key.
func (s *Store) PriorDigest(category, key string) (string, bool) {
	data, err := afero.ReadFile(s.fs, s.digestPath(category, key))
	if err != nil {
		return "", false
	}
	digest := strings.TrimSpace(string(data))
	return digest, digest != ""
}

// PriorContent returns the last committed raw content for the key.
func (s *Store) PriorContent(category, key string) (string, bool) {
	data, err := afero.ReadFile(s.fs, s.contentPath(category, key))
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Commit overwrites the stored content and fingerprint for the key. Content
// is written first, digest second; a crash between the two leaves mismatched
// state that the next detected change reconciles.
func (s *Store) Commit(category, key string, content []byte, digest string) error {
	dir := filepath.Join(s.root, category)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("snapshot: failed to create %s: %w", dir, err)
	}
	if err := afero.WriteFile(s.fs, s.contentPath(category, key), content, 0o644); err != nil {
		return fmt.Errorf("snapshot: failed to write content for %s: %w", key, err)
	}
	if err := afero.WriteFile(s.fs, s.digestPath(category, key), []byte(digest), 0o644); err != nil {
		return fmt.Errorf("snapshot: failed to write digest for %s: %w", key, err)
	}
	return nil
}
