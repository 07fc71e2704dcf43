package cache

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileCache keeps pipeline outputs on disk, one file per entry, for CLI
// runs that outlive a single process. Keys follow the LayoutKey and
// ArtifactKey scheme ("namespace:contenthash"): the namespace becomes a
// subdirectory, so layouts and rendered artifacts can be inspected or
// wiped independently. Entries are content addressed and therefore never
// stale; expiry exists only to bound disk usage.
type FileCache struct {
	root string
}

// NewFileCache creates the root directory if needed and returns a cache
// storing entries beneath it.
func NewFileCache(root string) (Cache, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, err
	}
	return &FileCache{root: root}, nil
}

// envelope is the on-disk form of an entry. Expires stays zero for
// immutable content-addressed entries.
type envelope struct {
	Payload []byte    `json:"payload"`
	Expires time.Time `json:"expires,omitempty"`
}

// Get retrieves an entry. Corrupt or expired files are removed and
// reported as misses so a bad entry never wedges the pipeline.
func (c *FileCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	path := c.entryPath(key)

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e envelope
	if err := json.Unmarshal(raw, &e); err != nil {
		_ = os.Remove(path)
		return nil, false, nil
	}
	if !e.Expires.IsZero() && time.Now().After(e.Expires) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Payload, true, nil
}

// Set stores an entry, creating the namespace directory on first use.
func (c *FileCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	e := envelope{Payload: data}
	if ttl > 0 {
		e.Expires = time.Now().Add(ttl)
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}

	path := c.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0644)
}

// Delete removes an entry. Deleting a missing key is not an error.
func (c *FileCache) Delete(ctx context.Context, key string) error {
	err := os.Remove(c.entryPath(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Close does nothing; files are written synchronously.
func (c *FileCache) Close() error { return nil }

// entryPath maps a key to its file. "layout:3af1..." lands in
// root/layout/3a/f1....json, fanning entries out by the first hash byte
// so one circuit-heavy session does not pile thousands of files into a
// single directory. Keys without a namespace are hashed wholesale and
// kept under "misc".
func (c *FileCache) entryPath(key string) string {
	ns, hash, ok := strings.Cut(key, ":")
	if !ok || len(hash) < 3 {
		ns, hash = "misc", Hash([]byte(key))
	}
	return filepath.Join(c.root, ns, hash[:2], hash[2:]+".json")
}

var _ Cache = (*FileCache)(nil)
