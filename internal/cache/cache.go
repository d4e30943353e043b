// Package cache holds compiled template output keyed by source hash and
// compile options, with LRU eviction, a TTL, and an on-disk copy that
// survives between builds.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"gopkg.in/yaml.v3"
)

// indexFile lists the persisted entries inside a cache directory.
const indexFile = "index.yaml"

// Cache caches compiled output with LRU eviction and TTL.
type Cache struct {
	entries     map[string]*Entry
	mutex       sync.Mutex
	maxSize     int64
	currentSize int64
	ttl         time.Duration
	now         func() time.Time

	// LRU list with sentinel head and tail; head.next is most recent.
	head *Entry
	tail *Entry

	hits      int64
	misses    int64
	sets      int64
	evictions int64
}

// Entry is one cached value.
type Entry struct {
	Key       string
	Value     []byte
	CreatedAt time.Time
	Size      int64

	prev *Entry
	next *Entry
}

// Stats is a snapshot of cache counters.
type Stats struct {
	Entries   int     `json:"entries" yaml:"entries"`
	Size      int64   `json:"size" yaml:"size"`
	MaxSize   int64   `json:"max_size" yaml:"max_size"`
	Hits      int64   `json:"hits" yaml:"hits"`
	Misses    int64   `json:"misses" yaml:"misses"`
	Sets      int64   `json:"sets" yaml:"sets"`
	Evictions int64   `json:"evictions" yaml:"evictions"`
	HitRate   float64 `json:"hit_rate" yaml:"hit_rate"`
}

// New creates a cache holding at most maxSize bytes of values. A ttl of 0
// keeps entries until they are evicted.
func New(maxSize int64, ttl time.Duration) *Cache {
	c := &Cache{
		entries: make(map[string]*Entry),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
		head:    &Entry{},
		tail:    &Entry{},
	}
	c.head.next = c.tail
	c.tail.prev = c.head
	return c
}

// Key builds the lookup key for a source hash compiled with the given
// options fingerprint.
func Key(hash, options string) string {
	return hash + "|" + options
}

// Get retrieves a value from the cache
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if !exists || c.expired(entry) {
		if exists {
			c.remove(entry)
		}
		atomic.AddInt64(&c.misses, 1)
		return nil, false
	}

	c.moveToFront(entry)
	atomic.AddInt64(&c.hits, 1)
	return entry.Value, true
}

// Set stores a value in the cache. Values larger than the whole cache are
// not stored.
func (c *Cache) Set(key string, value []byte) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.set(key, value, c.now())
}

func (c *Cache) set(key string, value []byte, created time.Time) {
	size := int64(len(value))
	if size > c.maxSize {
		return
	}

	if existing, exists := c.entries[key]; exists {
		c.remove(existing)
	}
	c.evictIfNeeded(size)

	entry := &Entry{Key: key, Value: value, CreatedAt: created, Size: size}
	c.entries[key] = entry
	c.currentSize += size
	c.addToFront(entry)
	atomic.AddInt64(&c.sets, 1)
}

// Delete removes key and reports whether it was present.
func (c *Cache) Delete(key string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, exists := c.entries[key]
	if exists {
		c.remove(entry)
	}
	return exists
}

// Clear clears all cache entries and resets statistics
func (c *Cache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries = make(map[string]*Entry)
	c.currentSize = 0
	c.head.next = c.tail
	c.tail.prev = c.head

	atomic.StoreInt64(&c.hits, 0)
	atomic.StoreInt64(&c.misses, 0)
	atomic.StoreInt64(&c.sets, 0)
	atomic.StoreInt64(&c.evictions, 0)
}

// Stats returns cache statistics
func (c *Cache) Stats() Stats {
	c.mutex.Lock()
	count, size := len(c.entries), c.currentSize
	c.mutex.Unlock()

	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}

	return Stats{
		Entries:   count,
		Size:      size,
		MaxSize:   c.maxSize,
		Hits:      hits,
		Misses:    misses,
		Sets:      atomic.LoadInt64(&c.sets),
		Evictions: atomic.LoadInt64(&c.evictions),
		HitRate:   rate,
	}
}

func (c *Cache) expired(entry *Entry) bool {
	return c.ttl > 0 && c.now().Sub(entry.CreatedAt) > c.ttl
}

// evictIfNeeded drops least recently used entries until newSize fits.
func (c *Cache) evictIfNeeded(newSize int64) {
	for c.currentSize+newSize > c.maxSize && c.tail.prev != c.head {
		c.remove(c.tail.prev)
		atomic.AddInt64(&c.evictions, 1)
	}
}

func (c *Cache) remove(entry *Entry) {
	c.unlink(entry)
	delete(c.entries, entry.Key)
	c.currentSize -= entry.Size
}

func (c *Cache) addToFront(entry *Entry) {
	entry.prev = c.head
	entry.next = c.head.next
	c.head.next.prev = entry
	c.head.next = entry
}

func (c *Cache) unlink(entry *Entry) {
	entry.prev.next = entry.next
	entry.next.prev = entry.prev
}

func (c *Cache) moveToFront(entry *Entry) {
	c.unlink(entry)
	c.addToFront(entry)
}

type indexEntry struct {
	Key     string    `yaml:"key"`
	File    string    `yaml:"file"`
	Created time.Time `yaml:"created"`
}

// Save writes every live entry to dir, least recently used first, and
// replaces the directory's index.
func (c *Cache) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	c.mutex.Lock()
	var index []indexEntry
	var values [][]byte
	for e := c.tail.prev; e != c.head; e = e.prev {
		if c.expired(e) {
			continue
		}
		index = append(index, indexEntry{Key: e.Key, File: fileName(e.Key), Created: e.CreatedAt})
		values = append(values, e.Value)
	}
	c.mutex.Unlock()

	for i, entry := range index {
		if err := os.WriteFile(filepath.Join(dir, entry.File), values[i], 0o644); err != nil {
			return fmt.Errorf("failed to write cache entry: %w", err)
		}
	}

	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to encode cache index: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, indexFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write cache index: %w", err)
	}

	return prune(dir, index)
}

// Load restores entries saved by Save. A missing directory is not an error;
// entries whose files are gone or past the TTL are skipped.
func (c *Cache) Load(dir string) (int, error) {
	data, err := os.ReadFile(filepath.Join(dir, indexFile))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read cache index: %w", err)
	}

	var index []indexEntry
	if err := yaml.Unmarshal(data, &index); err != nil {
		return 0, fmt.Errorf("failed to decode cache index: %w", err)
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	loaded := 0
	for _, entry := range index {
		if c.ttl > 0 && c.now().Sub(entry.Created) > c.ttl {
			continue
		}
		if entry.File != fileName(entry.Key) {
			continue
		}
		value, err := os.ReadFile(filepath.Join(dir, entry.File))
		if err != nil {
			continue
		}
		c.set(entry.Key, value, entry.Created)
		loaded++
	}
	// set counts stores; restoring is not a store.
	atomic.AddInt64(&c.sets, -int64(loaded))
	return loaded, nil
}

// prune removes entry files not named in index.
func prune(dir string, index []indexEntry) error {
	keep := make(map[string]bool, len(index)+1)
	keep[indexFile] = true
	for _, entry := range index {
		keep[entry.File] = true
	}

	files, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, f := range files {
		if f.IsDir() || keep[f.Name()] || filepath.Ext(f.Name()) != ".js" {
			continue
		}
		if err := os.Remove(filepath.Join(dir, f.Name())); err != nil {
			return err
		}
	}
	return nil
}

func fileName(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:16]) + ".js"
}
