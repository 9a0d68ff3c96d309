// Package includecache adapts the teacher's latex/cache package (an
// on-disk, size-pruned cache of rendered math/Tikz PNGs) to a cache of
// tokenized \include/\input/\usepackage content, per SPEC_FULL.md
// section 2: since math rendering is a spec Non-goal there is nothing
// left to cache PNGs for, but the same "hash a key, keep a disk file
// per hash, prune oldest-first past a size limit" shape is exactly what
// a multi-file document's repeated \input{same-chapter} needs.
package includecache

import (
	"bytes"
	"encoding/base64"
	"encoding/gob"
	"flag"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/latexdoc/reader/token"
)

var cacheDir = flag.String("include-cache-dir", "",
	"cache directory for tokenized \\include/\\input content")

// Cache stores gob-encoded token.List values on disk, keyed by a
// SHAKE128 hash of the cache key (typically an \include target's
// resolved absolute path). It implements block.IncludeCache.
type Cache struct {
	cacheDir string
	entries  map[string]*entry
	start    time.Time
}

type entry struct {
	Size int64
	Time time.Time
}

// NewCache creates a cache backed by subdirectory subdir inside the
// cache directory (the -include-cache-dir flag, then $LATEXDOC_CACHE,
// then latexdoc-cache under os.TempDir()), pre-populated with whatever .gob files
// already exist there.
func NewCache(subdir string) (*Cache, error) {
	c := &Cache{
		entries: make(map[string]*entry),
		start:   time.Now(),
	}

	dir := *cacheDir
	if dir == "" {
		dir = os.Getenv("LATEXDOC_CACHE")
	}
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "latexdoc-cache")
	}
	c.cacheDir = filepath.Join(dir, subdir)
	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.cacheDir)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, de := range entries {
		name := de.Name()
		if de.IsDir() || filepath.Ext(name) != ".gob" {
			continue
		}
		fi, err := de.Info()
		if err != nil {
			continue
		}
		hash := name[:len(name)-len(".gob")]
		e := &entry{Size: fi.Size(), Time: fi.ModTime()}
		c.entries[hash] = e
		total += e.Size
	}
	log.Printf("includecache %s: %s (%d objects)", c.cacheDir, byteSize(total), len(c.entries))

	return c, nil
}

// Close prunes the cache down to at most pruneLimit bytes, removing the
// oldest entries first; entries added or read (Get/Has) during this
// Cache's lifetime are always kept. pruneLimit < 0 removes everything.
func (c *Cache) Close(pruneLimit int64) error {
	var of oldestFirst
	var total int64
	for hash, e := range c.entries {
		of = append(of, pruneEntry{key: hash, entry: e})
		total += e.Size
	}
	sort.Sort(of)

	var err error
	var pruneCount int
	var pruneBytes int64
	for _, pe := range of {
		if total <= pruneLimit {
			break
		}
		if pruneLimit >= 0 && c.start.Before(pe.Time) {
			break
		}
		e2 := os.Remove(c.filePath(pe.key))
		if err == nil {
			err = e2
		}
		pruneCount++
		pruneBytes += pe.Size
		total -= pe.Size
	}
	if pruneCount > 0 {
		log.Printf("includecache %s: removed %s (%d objects)", c.cacheDir, byteSize(pruneBytes), pruneCount)
	}
	if pruneLimit < 0 {
		_ = os.Remove(c.cacheDir)
	}
	c.entries = nil
	return err
}

// Has reports whether key has a cached token list.
func (c *Cache) Has(key string) bool {
	hash := hashKey(key)
	e, ok := c.entries[hash]
	if ok {
		e.Time = time.Now()
	}
	return ok
}

// Get returns the tokens previously stored for key, if any.
func (c *Cache) Get(key string) (token.List, bool) {
	hash := hashKey(key)
	e, ok := c.entries[hash]
	if !ok {
		return nil, false
	}
	f, err := os.Open(c.filePath(hash))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	var toks token.List
	if err := gob.NewDecoder(f).Decode(&toks); err != nil {
		log.Printf("includecache %s: corrupt entry %s: %v", c.cacheDir, hash, err)
		return nil, false
	}
	e.Time = time.Now()
	return toks, true
}

// Put stores toks under key, overwriting any previous entry.
func (c *Cache) Put(key string, toks token.List) {
	hash := hashKey(key)
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(toks); err != nil {
		log.Printf("includecache %s: encode failed for %s: %v", c.cacheDir, key, err)
		return
	}
	if err := os.WriteFile(c.filePath(hash), buf.Bytes(), 0644); err != nil {
		log.Printf("includecache %s: write failed for %s: %v", c.cacheDir, key, err)
		return
	}
	c.entries[hash] = &entry{Size: int64(buf.Len()), Time: time.Now()}
}

func (c *Cache) filePath(hash string) string {
	return filepath.Join(c.cacheDir, hash+".gob")
}

// hashKey mirrors the teacher's cache.hashKey exactly: a streamed
// SHAKE128 digest, truncated to 15 bytes and base64-url-encoded.
func hashKey(key string) string {
	h := sha3.NewShake128()
	h.Write([]byte(key))
	buf := make([]byte, 15)
	h.Read(buf)
	return base64.RawURLEncoding.EncodeToString(buf)
}

type pruneEntry struct {
	key string
	*entry
}

type oldestFirst []pruneEntry

func (of oldestFirst) Len() int { return len(of) }
func (of oldestFirst) Less(i, j int) bool {
	return of[i].Time.Before(of[j].Time)
}
func (of oldestFirst) Swap(i, j int) { of[i], of[j] = of[j], of[i] }
