package cache

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zeebo/blake3"
)

// Cache stores sampling histograms on disk. A histogram is fully
// determined by its RunKey, so a hit can replace a rerun.
type Cache struct {
	dir     string
	ttl     time.Duration
	enabled bool
}

// RunKey identifies one deterministic sampling run.
type RunKey struct {
	Fingerprint uint64 // dist.Fingerprint of the CDF
	Seed        uint64
	Rounds      int
	Workers     int // after resolving 0 to NumCPU
}

func (k RunKey) String() string {
	return fmt.Sprintf("%016x/seed=%d/rounds=%d/workers=%d", k.Fingerprint, k.Seed, k.Rounds, k.Workers)
}

// Entry is the on-disk form of a cached histogram.
type Entry struct {
	Key       string    `json:"key"`
	Hash      string    `json:"hash"` // BLAKE3 of Data
	Timestamp time.Time `json:"timestamp"`
	Data      []byte    `json:"data"`
}

// New creates a cache rooted at dir. A disabled cache never hits and
// ignores writes.
func New(dir string, ttl time.Duration, enabled bool) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return Open(dir, ttl), nil
}

// Open returns an enabled cache rooted at dir without creating it. Reading
// stats from or clearing a missing directory is not an error.
func Open(dir string, ttl time.Duration) *Cache {
	return &Cache{
		dir:     dir,
		ttl:     ttl,
		enabled: true,
	}
}

// Enabled reports whether the cache reads and writes entries.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashBytes computes a BLAKE3 hash of bytes and returns it as a hex string.
func HashBytes(data []byte) string {
	hash := blake3.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Counts returns the cached histogram for key. An entry that does not
// decode to a histogram of key.Rounds draws is removed.
func (c *Cache) Counts(key RunKey) ([]uint64, bool) {
	data, ok := c.Get(key.String())
	if !ok {
		return nil, false
	}
	var counts []uint64
	if err := json.Unmarshal(data, &counts); err != nil {
		_ = c.Invalidate(key)
		return nil, false
	}
	var total uint64
	for _, n := range counts {
		total += n
	}
	if total != uint64(key.Rounds) {
		_ = c.Invalidate(key)
		return nil, false
	}
	return counts, true
}

// StoreCounts caches the histogram of a finished run.
func (c *Cache) StoreCounts(key RunKey, counts []uint64) error {
	data, err := json.Marshal(counts)
	if err != nil {
		return err
	}
	return c.Set(key.String(), data)
}

// Get retrieves an entry if it exists, is intact, and has not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	if !c.enabled {
		return nil, false
	}

	path := c.keyPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false
	}

	if entry.Key != key || entry.Hash != HashBytes(entry.Data) {
		return nil, false
	}

	// Check TTL
	if time.Since(entry.Timestamp) > c.ttl {
		os.Remove(path)
		return nil, false
	}

	return entry.Data, true
}

// Set stores data in the cache.
func (c *Cache) Set(key string, data []byte) error {
	if !c.enabled {
		return nil
	}

	entry := Entry{
		Key:       key,
		Hash:      HashBytes(data),
		Timestamp: time.Now(),
		Data:      data,
	}

	entryData, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	return os.WriteFile(c.keyPath(key), entryData, 0600)
}

// Invalidate removes a cache entry.
func (c *Cache) Invalidate(key RunKey) error {
	if !c.enabled {
		return nil
	}
	return os.Remove(c.keyPath(key.String()))
}

// Clear removes all cache entries.
func (c *Cache) Clear() error {
	if !c.enabled {
		return nil
	}
	return os.RemoveAll(c.dir)
}

// keyPath converts a key to a filesystem path.
func (c *Cache) keyPath(key string) string {
	hash := blake3.Sum256([]byte(key))
	return filepath.Join(c.dir, hex.EncodeToString(hash[:])+".json")
}

// Stats summarizes the cache directory.
type Stats struct {
	Dir       string        `json:"dir" yaml:"dir"`
	Entries   int           `json:"entries" yaml:"entries"`
	TotalSize int64         `json:"total_size" yaml:"total_size"`
	OldestAge time.Duration `json:"oldest_age" yaml:"oldest_age"`
	NewestAge time.Duration `json:"newest_age" yaml:"newest_age"`
}

// GetStats returns statistics about the cache.
func (c *Cache) GetStats() (*Stats, error) {
	if !c.enabled {
		return &Stats{}, nil
	}

	stats := &Stats{Dir: c.dir}
	var oldest, newest time.Time

	if _, err := os.Stat(c.dir); os.IsNotExist(err) {
		return stats, nil
	}

	err := filepath.Walk(c.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}

		stats.Entries++
		stats.TotalSize += info.Size()

		modTime := info.ModTime()
		if oldest.IsZero() || modTime.Before(oldest) {
			oldest = modTime
		}
		if newest.IsZero() || modTime.After(newest) {
			newest = modTime
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !oldest.IsZero() {
		stats.OldestAge = time.Since(oldest)
	}
	if !newest.IsZero() {
		stats.NewestAge = time.Since(newest)
	}
	return stats, nil
}
