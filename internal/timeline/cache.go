package timeline

import (
	"encoding/binary"
	"hash/fnv"
	"sync"
	"time"

	"github.com/sandeepkv93/taskline/internal/model"
)

const defaultCacheEntries = 64

type cacheKey struct {
	day    string
	hash   uint64
	minute int64
}

// Cache memoizes ProcessWithGaps per (day, task-list hash, minute).
type Cache struct {
	mu      sync.Mutex
	max     int
	entries map[cacheKey][]model.Task
	hits    uint64
	misses  uint64
}

func NewCache(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = defaultCacheEntries
	}
	return &Cache{
		max:     maxEntries,
		entries: make(map[cacheKey][]model.Task),
	}
}

// Day returns the gap-processed timeline of the tasks anchored on day.
func (c *Cache) Day(day string, tasks []model.Task, now time.Time) []model.Task {
	key := cacheKey{day: day, hash: HashTasks(tasks), minute: now.Unix() / 60}

	c.mu.Lock()
	if cached, ok := c.entries[key]; ok {
		c.hits++
		c.mu.Unlock()
		return cloneAll(cached)
	}
	c.misses++
	c.mu.Unlock()

	out := ProcessWithGaps(tasks, now)

	c.mu.Lock()
	if len(c.entries) >= c.max {
		clear(c.entries)
	}
	c.entries[key] = cloneAll(out)
	c.mu.Unlock()
	return out
}

func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

// HashTasks fingerprints every field a rendered timeline entry carries.
func HashTasks(tasks []model.Task) uint64 {
	h := fnv.New64a()
	var buf [8]byte
	writeString := func(s string) {
		_, _ = h.Write([]byte(s))
		_, _ = h.Write([]byte{0})
	}
	writeInt := func(v int64) {
		binary.LittleEndian.PutUint64(buf[:], uint64(v))
		_, _ = h.Write(buf[:])
	}
	writeBool := func(v bool) {
		if v {
			_, _ = h.Write([]byte{1})
			return
		}
		_, _ = h.Write([]byte{0})
	}
	for _, t := range tasks {
		writeString(t.ID)
		writeString(t.Title)
		writeString(t.Notes)
		writeString(t.Emoji)
		writeString(string(t.Priority))
		writeString(string(t.Category))
		writeString(t.TaskDate)
		writeInt(t.StartTime.UnixNano())
		writeInt(t.End().UnixNano())
		writeInt(int64(t.Progress))
		writeBool(t.Completed)
		writeBool(t.IsFocused)
		writeBool(t.IsTimeFixed)
		for _, s := range t.Subtasks {
			writeString(s.Title)
			writeBool(s.IsCompleted)
		}
	}
	return h.Sum64()
}

func cloneAll(in []model.Task) []model.Task {
	out := make([]model.Task, len(in))
	for i, t := range in {
		out[i] = t.Clone()
	}
	return out
}
