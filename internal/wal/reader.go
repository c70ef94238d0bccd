package wal

import (
	"errors"
	"io"

	"waldb/internal/record"
	"waldb/internal/storage"
)

// readerBufferSize is sized to comfortably hold more than one maximum-size
// physical record (header + 65535-byte payload) after a refill, so a single
// refill pass is always enough to make a buffered record decodable.
const readerBufferSize = 4 * record.BlockSize

// ErrEndOfLog is returned by Reader.Next once the log has been fully
// consumed. It is the normal, expected way a read loop terminates — both
// at a clean file boundary and at an all-zero padded tail.
var ErrEndOfLog = errors.New("wal: end of log")

// Reader streams physical records out of a log file. It does not reassemble
// fragmented records into a logical payload — callers needing the original
// write-batch bytes drive a batch.Builder with the records Reader yields.
//
// Reader is not safe for concurrent use. Each record returned by Next
// aliases Reader's internal buffer and is only valid until the next call.
type Reader struct {
	fr        *storage.FileReader
	buf       []byte
	pos       int   // start of unconsumed bytes within buf
	end       int   // end of valid bytes within buf
	streamPos int64 // absolute file offset of buf[pos]
}

// NewReader creates a Reader over fr with an internal buffer sized to
// readerBufferSize.
func NewReader(fr *storage.FileReader) *Reader {
	return &Reader{
		fr:  fr,
		buf: make([]byte, readerBufferSize),
	}
}

// compact discards already-consumed bytes by shifting unconsumed bytes to
// the front of the buffer.
func (r *Reader) compact() {
	if r.pos == 0 {
		return
	}
	n := copy(r.buf, r.buf[r.pos:r.end])
	r.pos = 0
	r.end = n
}

// ensure compacts and reads from the file until at least n bytes are
// buffered or the file is exhausted. It never blocks past the first seen
// EOF, and never reads past the buffer's fixed capacity.
func (r *Reader) ensure(n int) error {
	r.compact()
	for r.end-r.pos < n && r.end < len(r.buf) {
		k, err := r.fr.Read(r.buf[r.end:])
		r.end += k
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if k == 0 {
			return nil
		}
	}
	return nil
}

// skip discards n bytes from the stream, refilling as needed, without
// decoding them as a record. It is used to step over block padding.
func (r *Reader) skip(n int) error {
	for n > 0 {
		if r.pos == r.end {
			if err := r.ensure(1); err != nil {
				return err
			}
			if r.pos == r.end {
				return io.EOF
			}
		}
		step := r.end - r.pos
		if step > n {
			step = n
		}
		r.pos += step
		r.streamPos += int64(step)
		n -= step
	}
	return nil
}

// allZero reports whether every byte of buf is zero.
func allZero(buf []byte) bool {
	for _, b := range buf {
		if b != 0 {
			return false
		}
	}
	return true
}

// Next returns the next physical record in the log, or ErrEndOfLog once the
// log has been fully consumed.
func (r *Reader) Next() (record.Record, error) {
	for {
		blockRemain := record.BlockSize - int(r.streamPos%record.BlockSize)
		if blockRemain < record.MinSize {
			// Too little room for a real record before the block boundary:
			// these are padding bytes written by the log writer. Skip them
			// and restart at the next block.
			if err := r.skip(blockRemain); err != nil {
				if errors.Is(err, io.EOF) {
					return record.Record{}, ErrEndOfLog
				}
				return record.Record{}, err
			}
			continue
		}

		if err := r.ensure(record.MinSize); err != nil {
			return record.Record{}, err
		}
		if r.end-r.pos < record.MinSize {
			return record.Record{}, ErrEndOfLog
		}

		rec, err := record.Decode(r.buf[r.pos:r.end])
		if err != nil {
			var tooSmall *record.RecordTooSmallError
			if !errors.As(err, &tooSmall) {
				return record.Record{}, err
			}
			// The declared payload doesn't fit in what's buffered yet.
			if err := r.ensure(tooSmall.Minimum); err != nil {
				return record.Record{}, err
			}
			rec, err = record.Decode(r.buf[r.pos:r.end])
			if err != nil {
				return record.Record{}, err
			}
		}

		if rec.RType == record.None {
			if err := r.ensure(blockRemain); err != nil {
				return record.Record{}, err
			}
			checkLen := blockRemain
			if avail := r.end - r.pos; avail < checkLen {
				checkLen = avail
			}
			if allZero(r.buf[r.pos : r.pos+checkLen]) {
				r.pos += checkLen
				r.streamPos += int64(checkLen)
				return record.Record{}, ErrEndOfLog
			}
			return record.Record{}, &record.InvalidTypeError{Type: 0}
		}

		r.pos += rec.Len()
		r.streamPos += int64(rec.Len())
		return rec, nil
	}
}
