// Package dcache keeps header reports on disk, keyed by a digest of the
// header contents and everything else that can change the report.
package dcache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"sysvabi/internal/report"
)

// SchemaVersion changes whenever Payload or report.Report changes shape.
const SchemaVersion uint16 = 1

// Digest identifies one cached report.
type Digest [sha256.Size]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// Cache is a directory of msgpack payloads. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

// Payload is what is stored per key.
type Payload struct {
	Schema uint16
	Tool   string
	Report *report.Report
}

// Open returns the cache at dir, or at $XDG_CACHE_HOME/<app> (falling back
// to ~/.cache/<app>) when dir is empty.
func Open(dir, app string) (*Cache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, fmt.Errorf("failed to locate cache directory: %w", err)
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache directory.
func (c *Cache) Dir() string { return c.dir }

// Key digests the header bytes together with the parse options and the tool
// version, so a change to any of them misses.
func Key(header []byte, includePaths []string, defines map[string]string, tool string) Digest {
	h := sha256.New()
	writeField := func(s string) {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	writeField(fmt.Sprintf("schema=%d", SchemaVersion))
	writeField(tool)
	for _, p := range includePaths {
		writeField("I" + p)
	}
	names := make([]string, 0, len(defines))
	for name := range defines {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		writeField("D" + name + "=" + defines[name])
	}
	h.Write(header)

	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "reports", hexKey[:2], hexKey+".mp")
}

// Put writes a report atomically: readers see the old payload or the new
// one, never a partial file.
func (c *Cache) Put(key Digest, tool string, r *report.Report) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	renamed := false
	defer func() {
		if renamed {
			return
		}
		f.Close()
		if rmErr := os.Remove(f.Name()); rmErr != nil && err == nil {
			err = rmErr
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(&Payload{Schema: SchemaVersion, Tool: tool, Report: r}); err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	if err := os.Rename(f.Name(), p); err != nil {
		return err
	}
	renamed = true
	return nil
}

// Get reads the report stored under key. Entries from another schema or
// tool version count as misses.
func (c *Cache) Get(key Digest, tool string) (*report.Report, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var payload Payload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return nil, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if payload.Schema != SchemaVersion || payload.Tool != tool || payload.Report == nil {
		return nil, false, nil
	}
	return payload.Report, true, nil
}

// DropAll removes every cached report.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "reports"))
}
