// Package memtable implements the in-memory ordered map keys are served
// from after log replay. It has no flush: this store keeps the whole
// working set resident, so the memtable lives for the process lifetime.
//
// Reads and writes both run on the caller's single thread — there is no
// concurrent access to guard against, unlike a multi-writer LSM memtable.
package memtable

import (
	"bytes"
	"math/rand"
)

const (
	// maxHeight bounds how tall a node's forward-pointer tower can grow.
	maxHeight = 12
	// branchingFactor controls how quickly height drops off: on average
	// 1/branchingFactor of nodes are promoted to the next level.
	branchingFactor = 4
)

// Comparator compares two keys, returning negative/zero/positive the way
// bytes.Compare does.
type Comparator func(a, b []byte) int

// BytewiseComparator orders keys as unsigned byte sequences.
func BytewiseComparator(a, b []byte) int {
	return bytes.Compare(a, b)
}

type skipNode struct {
	key   []byte
	value []byte
	next  []*skipNode
}

func newSkipNode(key, value []byte, height int) *skipNode {
	return &skipNode{key: key, value: value, next: make([]*skipNode, height)}
}

// Memtable is a single-threaded ordered map from key bytes to value bytes,
// implemented as a skip list so insert, lookup, delete, and ranged scan
// all run in expected-logarithmic time without a balanced-tree rebalance.
//
// Memtable is not safe for concurrent use.
type Memtable struct {
	head    *skipNode
	height  int
	compare Comparator
	rng     *rand.Rand
	count   int
}

// New returns an empty Memtable using the bytewise comparator.
func New() *Memtable {
	return NewWithComparator(BytewiseComparator)
}

// NewWithComparator returns an empty Memtable ordered by cmp.
func NewWithComparator(cmp Comparator) *Memtable {
	if cmp == nil {
		cmp = BytewiseComparator
	}
	return &Memtable{
		head:    newSkipNode(nil, nil, maxHeight),
		height:  1,
		compare: cmp,
		rng:     rand.New(rand.NewSource(0xDEADBEEF)),
	}
}

// Count returns the number of keys currently stored.
func (m *Memtable) Count() int {
	return m.count
}

// findGreaterOrEqual returns the first node with key >= the given key. When
// prev is non-nil it is filled with the predecessor at each level, for use
// by Insert and Delete.
func (m *Memtable) findGreaterOrEqual(key []byte, prev []*skipNode) *skipNode {
	x := m.head
	for level := m.height - 1; level >= 0; level-- {
		for {
			next := x.next[level]
			if next != nil && m.compare(next.key, key) < 0 {
				x = next
				continue
			}
			if prev != nil {
				prev[level] = x
			}
			break
		}
	}
	return x.next[0]
}

func (m *Memtable) randomHeight() int {
	h := 1
	for h < maxHeight && m.rng.Intn(branchingFactor) == 0 {
		h++
	}
	return h
}

// InsertOrUpdate sets key to value, overwriting any existing value for key.
func (m *Memtable) InsertOrUpdate(key, value []byte) {
	prev := make([]*skipNode, maxHeight)
	existing := m.findGreaterOrEqual(key, prev)
	if existing != nil && m.compare(existing.key, key) == 0 {
		existing.value = value
		return
	}

	height := m.randomHeight()
	if height > m.height {
		for i := m.height; i < height; i++ {
			prev[i] = m.head
		}
		m.height = height
	}

	node := newSkipNode(append([]byte(nil), key...), value, height)
	for i := 0; i < height; i++ {
		node.next[i] = prev[i].next[i]
		prev[i].next[i] = node
	}
	m.count++
}

// Get returns the value stored for key and true, or (nil, false) if key is
// absent.
func (m *Memtable) Get(key []byte) ([]byte, bool) {
	node := m.findGreaterOrEqual(key, nil)
	if node != nil && m.compare(node.key, key) == 0 {
		return node.value, true
	}
	return nil, false
}

// Delete removes key, reporting whether it was present.
func (m *Memtable) Delete(key []byte) bool {
	prev := make([]*skipNode, maxHeight)
	target := m.findGreaterOrEqual(key, prev)
	if target == nil || m.compare(target.key, key) != 0 {
		return false
	}
	for i := 0; i < len(target.next); i++ {
		prev[i].next[i] = target.next[i]
	}
	m.count--
	return true
}

// Scan returns an iterator over keys in the half-open range [start, end)
// in ascending order. The returned entries are read-only views into the
// memtable and are invalidated by a subsequent mutation.
func (m *Memtable) Scan(start, end []byte) *ScanIterator {
	return &ScanIterator{m: m, node: m.findGreaterOrEqual(start, nil), end: end}
}

// ScanIterator walks a key range produced by Memtable.Scan.
type ScanIterator struct {
	m    *Memtable
	node *skipNode
	end  []byte
}

// Next advances the iterator and returns the next (key, value) pair and
// true, or (nil, nil, false) once the range is exhausted.
func (it *ScanIterator) Next() (key, value []byte, ok bool) {
	if it.node == nil || it.m.compare(it.node.key, it.end) >= 0 {
		return nil, nil, false
	}
	key, value = it.node.key, it.node.value
	it.node = it.node.next[0]
	return key, value, true
}
