// Package batch implements the write-batch binary container: an
// append-only byte buffer grouping heterogeneous key/value mutations so
// they can be written to the log and replayed atomically, plus a Builder
// that reassembles a batch from log records that may arrive fragmented.
package batch

import (
	"encoding/binary"

	"waldb/internal/record"
)

// HeaderSize is the size of a write batch's fixed header: a big-endian
// entry count followed by reserved space for a future sequence number or
// flags field.
const HeaderSize = 16

const countOffset = 0

// Batch is an append-only byte buffer of packed key/value entries, with a
// 16-byte header carrying the entry count. Its byte image is exactly what
// gets written to the log.
type Batch struct {
	buf []byte
}

// New returns an empty batch: just the zeroed header.
func New() *Batch {
	return &Batch{buf: make([]byte, HeaderSize)}
}

// FromBytes wraps an existing byte image (e.g. reassembled by a Builder)
// as a Batch without copying. The caller must not mutate buf afterward.
func FromBytes(buf []byte) *Batch {
	return &Batch{buf: buf}
}

// Count returns the number of entries appended to the batch.
func (b *Batch) Count() uint32 {
	return binary.BigEndian.Uint32(b.buf[countOffset : countOffset+4])
}

func (b *Batch) incrementCount() {
	binary.BigEndian.PutUint32(b.buf[countOffset:countOffset+4], b.Count()+1)
}

// InsertOrUpdate appends a mutation setting key to value. An empty value
// is reserved as a tombstone by the on-disk format — callers needing to
// store a true empty value must encode it out-of-band.
func (b *Batch) InsertOrUpdate(key, value []byte) {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(key)))
	b.buf = append(b.buf, lenBuf[:]...)
	b.buf = append(b.buf, key...)
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(value)))
	b.buf = append(b.buf, lenBuf[:]...)
	b.buf = append(b.buf, value...)
	b.incrementCount()
}

// Delete appends a tombstone for key.
func (b *Batch) Delete(key []byte) {
	b.InsertOrUpdate(key, nil)
}

// Len returns the total size in bytes of the batch's byte image.
func (b *Batch) Len() int {
	return len(b.buf)
}

// IsEmpty reports whether the batch has no entries.
func (b *Batch) IsEmpty() bool {
	return b.Count() == 0
}

// Clear resets the batch to an empty, header-only state.
func (b *Batch) Clear() {
	b.buf = b.buf[:HeaderSize]
	for i := range b.buf {
		b.buf[i] = 0
	}
}

// AsBytes returns the batch's raw byte image, suitable for passing
// directly to a log writer's Append.
func (b *Batch) AsBytes() []byte {
	return b.buf
}

// Entry is one key/value mutation read out of a batch. A nil Value denotes
// a tombstone.
type Entry struct {
	Key   []byte
	Value []byte
}

// Iterator walks the entries of a batch's byte image in order.
type Iterator struct {
	buf []byte
	pos int
}

// Iter returns an iterator over the batch's entries, starting just past
// the header.
func (b *Batch) Iter() *Iterator {
	return &Iterator{buf: b.buf, pos: HeaderSize}
}

// Next returns the next entry and true, or a zero Entry and false once the
// batch is exhausted.
func (it *Iterator) Next() (Entry, bool) {
	if it.pos >= len(it.buf) {
		return Entry{}, false
	}
	keyLen := binary.BigEndian.Uint32(it.buf[it.pos : it.pos+4])
	it.pos += 4
	key := it.buf[it.pos : it.pos+int(keyLen)]
	it.pos += int(keyLen)

	valueLen := binary.BigEndian.Uint32(it.buf[it.pos : it.pos+4])
	it.pos += 4

	if valueLen == 0 {
		return Entry{Key: key, Value: nil}, true
	}
	value := it.buf[it.pos : it.pos+int(valueLen)]
	it.pos += int(valueLen)
	return Entry{Key: key, Value: value}, true
}

// Builder reassembles a batch from log records that may arrive fragmented
// across First/Middle/Last, or arrive whole as Full.
type Builder struct {
	buf   []byte
	ready bool
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Accumulate validates rec's CRC and folds its payload into the builder's
// buffer, following the fragment state machine:
//
//	First, Middle  -> extend, not ready
//	Last, Full     -> extend, ready
//	None           -> logic error, never a legal record type here
func (bd *Builder) Accumulate(rec record.Record) error {
	if err := record.ValidateCRC(rec); err != nil {
		return err
	}
	switch rec.RType {
	case record.First, record.Middle:
		bd.buf = append(bd.buf, rec.Payload...)
		bd.ready = false
	case record.Last, record.Full:
		bd.buf = append(bd.buf, rec.Payload...)
		bd.ready = true
	default:
		return &record.InvalidTypeError{Type: uint8(rec.RType)}
	}
	return nil
}

// IsReady reports whether the accumulated bytes form a complete batch.
func (bd *Builder) IsReady() bool {
	return bd.ready
}

// Get returns the accumulated batch. It panics if called before IsReady.
func (bd *Builder) Get() *Batch {
	if !bd.ready {
		panic("batch: Builder.Get called before batch is ready")
	}
	return FromBytes(bd.buf)
}

// Consume clears the builder's accumulated bytes, readying it to
// reassemble the next logical batch.
func (bd *Builder) Consume() {
	bd.buf = nil
	bd.ready = false
}
