package glyph

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"strconv"
	"sync"
)

// ErrUnknownKey is returned by Lookup for keys that were never built.
var ErrUnknownKey = errors.New("unknown glyph key")

// Key names one precomputed point set.
type Key string

// Celebration is the key shown when the countdown reaches zero.
const Celebration Key = "celebration"

// DigitKey returns the key for a single digit.
func DigitKey(n int) Key {
	return Key(strconv.Itoa(n))
}

// Labels maps keys to the text they render.
type Labels map[Key]string

// CountdownLabels returns the digits 0 through 5 and the celebration text.
func CountdownLabels(celebration string) Labels {
	l := Labels{Celebration: celebration}
	for d := 0; d <= 5; d++ {
		l[DigitKey(d)] = strconv.Itoa(d)
	}
	return l
}

// Table holds one point set per key, all of the same size.
type Table struct {
	sets map[Key]PointSet
	n    int
}

// BuildTable samples every label up front. Keys are processed in sorted
// order so a seeded rng yields the same table every time.
func BuildTable(f *Font, labels Labels, n int, opts Options, rng *rand.Rand) (*Table, error) {
	if n < 1 {
		return nil, fmt.Errorf("sample count must be positive, got %d", n)
	}

	keys := make([]Key, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	t := &Table{sets: make(map[Key]PointSet, len(keys)), n: n}
	for _, k := range keys {
		ps, err := SampleText(f, labels[k], n, opts, rng)
		if err != nil {
			return nil, fmt.Errorf("glyph %q: %w", k, err)
		}
		t.sets[k] = ps
	}
	return t, nil
}

// Lookup returns the point set for key without resampling.
func (t *Table) Lookup(k Key) (PointSet, error) {
	ps, ok := t.sets[k]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, k)
	}
	return ps, nil
}

// SampleCount returns the number of points in every set.
func (t *Table) SampleCount() int {
	return t.n
}

// Keys returns the built keys in sorted order.
func (t *Table) Keys() []Key {
	keys := make([]Key, 0, len(t.sets))
	for k := range t.sets {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Cache keeps the table for the current font and rebuilds it only when the
// font changes.
type Cache struct {
	mu     sync.RWMutex
	labels Labels
	n      int
	opts   Options
	rng    *rand.Rand

	font  *Font
	table *Table
}

// NewCache creates an empty cache. Call SetFont before Table.
func NewCache(labels Labels, n int, opts Options, rng *rand.Rand) *Cache {
	return &Cache{labels: labels, n: n, opts: opts, rng: rng}
}

// SetFont builds a new table when f differs from the current font.
func (c *Cache) SetFont(f *Font) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f == c.font && c.table != nil {
		return nil
	}
	t, err := BuildTable(f, c.labels, c.n, c.opts, c.rng)
	if err != nil {
		return err
	}
	c.font, c.table = f, t
	return nil
}

// Table returns the current table, or nil before the first SetFont.
func (c *Cache) Table() *Table {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.table
}
