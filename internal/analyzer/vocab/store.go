// Package vocab implements the hash-chained vocabulary store used by the
// analyzer both as a frequency table and as a plain membership set.
//
// Keys hash with xxhash into a power-of-two bucket array; each bucket keeps
// its entries in insertion order. A store also remembers the global order in
// which keys were first inserted, which gives TopN a reproducible tie-break.
package vocab

import (
	"sort"

	"github.com/cespare/xxhash/v2"
)

const (
	// DefaultBucketCount suits documents in the ten-thousand-word range.
	DefaultBucketCount = 8192
	// DefaultMaxKeyLen is the longest key Add accepts, in bytes.
	DefaultMaxKeyLen = 63
)

// Vocabulary is the behaviour the analyzer needs from a store.
type Vocabulary interface {
	Add(key string)
	Contains(key string) bool
	Count(key string) int
	TopN(n int) []WordCount
	UniqueCount() int
	TotalCount() int
}

// WordCount is a key and the number of times it was added.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

type entry struct {
	key   string
	count int
}

// Store is a bucket-chaining hash table keyed by byte strings.
type Store struct {
	buckets   [][]*entry
	mask      uint64
	maxKeyLen int
	order     []*entry
	total     int
}

var _ Vocabulary = (*Store)(nil)

// Option customises a Store.
type Option func(*Store)

// WithBucketCount sets the number of buckets, rounded up to a power of two.
func WithBucketCount(n int) Option {
	return func(s *Store) {
		size := nextPowerOfTwo(n)
		s.buckets = make([][]*entry, size)
		s.mask = uint64(size - 1)
	}
}

// WithMaxKeyLen sets the longest key accepted by Add.
func WithMaxKeyLen(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxKeyLen = n
		}
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		buckets:   make([][]*entry, DefaultBucketCount),
		mask:      DefaultBucketCount - 1,
		maxKeyLen: DefaultMaxKeyLen,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add increments the count for key, inserting it with count 1 when absent.
// Keys longer than the store's maximum key length are ignored; callers
// truncate before adding.
func (s *Store) Add(key string) {
	if len(key) > s.maxKeyLen {
		return
	}
	s.total++
	if e := s.lookup(key); e != nil {
		e.count++
		return
	}
	e := &entry{key: key, count: 1}
	idx := s.bucketFor(key)
	s.buckets[idx] = append(s.buckets[idx], e)
	s.order = append(s.order, e)
}

// Contains reports whether key has been added at least once.
func (s *Store) Contains(key string) bool {
	return s.lookup(key) != nil
}

// Count returns how many times key was added.
func (s *Store) Count(key string) int {
	if e := s.lookup(key); e != nil {
		return e.count
	}
	return 0
}

// UniqueCount returns the number of distinct keys.
func (s *Store) UniqueCount() int {
	return len(s.order)
}

// TotalCount returns the number of successful Add calls.
func (s *Store) TotalCount() int {
	return s.total
}

// TopN returns up to n entries ordered by count descending. Entries with the
// same count keep the order in which their keys were first added.
func (s *Store) TopN(n int) []WordCount {
	if n <= 0 || len(s.order) == 0 {
		return nil
	}
	ranked := make([]*entry, len(s.order))
	copy(ranked, s.order)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].count > ranked[j].count
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	result := make([]WordCount, len(ranked))
	for i, e := range ranked {
		result[i] = WordCount{Word: e.key, Count: e.count}
	}
	return result
}

// Range calls fn for every key in first-insertion order until fn returns
// false.
func (s *Store) Range(fn func(key string, count int) bool) {
	for _, e := range s.order {
		if !fn(e.key, e.count) {
			return
		}
	}
}

// Reset drops every entry while keeping the bucket array.
func (s *Store) Reset() {
	for i := range s.buckets {
		s.buckets[i] = nil
	}
	s.order = nil
	s.total = 0
}

func (s *Store) lookup(key string) *entry {
	for _, e := range s.buckets[s.bucketFor(key)] {
		if e.key == key {
			return e
		}
	}
	return nil
}

func (s *Store) bucketFor(key string) uint64 {
	return xxhash.Sum64String(key) & s.mask
}

func nextPowerOfTwo(n int) int {
	if n < 1 {
		return 1
	}
	size := 1
	for size < n {
		size <<= 1
	}
	return size
}
