// Package wal implements the physical log format: a Writer that fragments
// payloads into block-aligned physical records, and a Reader that streams
// those physical records back out. Neither component reassembles fragments
// into a logical payload — that is the write-batch builder's job
// (internal/batch).
package wal

import (
	"errors"

	"waldb/internal/record"
	"waldb/internal/storage"
)

// ErrEmptyPayload is returned by Append for an empty payload. Empty
// payloads carry no information and would complicate the reader's
// end-of-stream detection (a zero-length record reads identically to
// block padding), so they're rejected outright rather than written.
var ErrEmptyPayload = errors.New("wal: payload is empty")

// blockPadding is the longest run of zero bytes ever written as padding; it
// is sliced down to the exact remainder needed.
var blockPadding = make([]byte, record.BlockSize)

// Writer fragments payloads across block boundaries and writes them as a
// sequence of physical records via a buffered file writer.
//
// Writer is not safe for concurrent use, and waldb adds no locking around
// it: the DB that owns it must itself be used from one goroutine at a time.
type Writer struct {
	fw       *storage.FileWriter
	blockPos int
}

// NewWriter creates a Writer over fw. blockPos should be the number of
// bytes already occupied in the current tail block (0 for a fresh file).
func NewWriter(fw *storage.FileWriter) *Writer {
	return &Writer{fw: fw}
}

// BlockPos returns the writer's current offset within its logical block.
// Exposed for tests that assert on exact fragmentation boundaries.
func (w *Writer) BlockPos() int {
	return w.blockPos
}

func (w *Writer) remainingBlockCapacity() int {
	return record.BlockSize - w.blockPos
}

// addBlockPadding pads the remainder of the current block with zero bytes
// when too little room remains for another minimum-size record, and resets
// the block cursor. If the block is exactly full, no padding is written
// and only the block cursor is reset.
func (w *Writer) addBlockPadding() error {
	remaining := record.BlockSize - w.blockPos
	if remaining < record.MinSize {
		if remaining > 0 {
			if err := w.fw.Append(blockPadding[:remaining]); err != nil {
				return err
			}
		}
		w.blockPos = 0
	}
	return nil
}

// Append writes payload as one or more physical records, fragmenting it
// across block boundaries as needed, and flushes the underlying file
// writer once the whole payload has been written. It does not fsync —
// callers that need durability call Sync explicitly.
func (w *Writer) Append(payload []byte) error {
	if len(payload) == 0 {
		return ErrEmptyPayload
	}
	c := newCursor(payload)
	recordCount := 0
	for !c.done() {
		if err := w.addBlockPadding(); err != nil {
			return err
		}

		avail := w.remainingBlockCapacity() - record.HeaderSize
		chunk := c.consume(avail)

		var rtype record.Type
		switch {
		case c.done() && recordCount == 0:
			rtype = record.Full
		case c.done():
			rtype = record.Last
		case recordCount == 0:
			rtype = record.First
		default:
			rtype = record.Middle
		}

		buf := record.Encode(rtype, chunk)
		if err := w.fw.Append(buf); err != nil {
			return err
		}
		w.blockPos += len(buf)
		recordCount++
	}
	return w.fw.Flush()
}

// Sync flushes and fsyncs the underlying file, guaranteeing durability of
// everything appended so far.
func (w *Writer) Sync() error {
	return w.fw.Sync()
}
