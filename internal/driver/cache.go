package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"docprint/internal/codec"
	"docprint/internal/printer"
	"docprint/internal/version"
)

// bump when cachePayload changes shape
const cacheSchemaVersion uint16 = 1

// Digest identifies one cached layout.
type Digest [sha256.Size]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Cache keeps printed output on disk, keyed by the input bytes and every
// setting that affects the layout. Safe for concurrent use.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema      uint16
	Version     string
	Formatted   []byte
	HasCursor   bool
	CursorStart int
	CursorText  string
}

// OpenCache opens the cache for app under $XDG_CACHE_HOME, falling back to
// ~/.cache.
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return NewCache(filepath.Join(base, app))
}

// NewCache opens a cache rooted at dir, creating it when missing.
func NewCache(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache dir: %w", err)
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	hexKey := key.String()
	return filepath.Join(c.dir, "layouts", hexKey[:2], hexKey+".mp")
}

// cacheKey hashes the input together with the print and decode settings and
// the tool version.
func cacheKey(data []byte, format codec.Format, opts PrintOptions) Digest {
	h := sha256.New()
	field := func(s string) {
		_, _ = h.Write([]byte(strconv.Itoa(len(s))))
		_, _ = h.Write([]byte{':'})
		_, _ = h.Write([]byte(s))
	}
	field(strconv.Itoa(int(cacheSchemaVersion)))
	field(version.Version)
	field(string(format))
	field(strconv.Itoa(opts.Print.PrintWidth))
	field(strconv.Itoa(opts.Print.TabWidth))
	field(strconv.FormatBool(opts.Print.UseTabs))
	field(string(opts.Print.EndOfLine))
	field(strconv.FormatBool(opts.Decode.Validate))
	field(strconv.FormatBool(opts.Decode.NormalizeText))
	field(opts.Decode.Query)
	_, _ = h.Write(data)

	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func (c *Cache) get(key Digest) (printer.Result, bool, error) {
	if c == nil {
		return printer.Result{}, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return printer.Result{}, false, nil
		}
		return printer.Result{}, false, err
	}
	var payload cachePayload
	if err := msgpack.Unmarshal(data, &payload); err != nil {
		return printer.Result{}, false, fmt.Errorf("corrupt cache entry %s: %w", key, err)
	}
	if payload.Schema != cacheSchemaVersion || payload.Version != version.Version {
		return printer.Result{}, false, nil
	}

	res := printer.Result{Formatted: string(payload.Formatted)}
	if payload.HasCursor {
		res.CursorNode = &printer.CursorNode{Start: payload.CursorStart, Text: payload.CursorText}
	}
	return res, true, nil
}

func (c *Cache) put(key Digest, res printer.Result) error {
	if c == nil {
		return nil
	}
	payload := cachePayload{
		Schema:    cacheSchemaVersion,
		Version:   version.Version,
		Formatted: []byte(res.Formatted),
	}
	if res.CursorNode != nil {
		payload.HasCursor = true
		payload.CursorStart = res.CursorNode.Start
		payload.CursorText = res.CursorNode.Text
	}
	data, err := msgpack.Marshal(&payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return writeAtomic(p, data)
}

// Clear drops every cached layout.
func (c *Cache) Clear() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405.000000000")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(c.dir, 0o755)
		}
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
