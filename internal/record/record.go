// Package record implements the on-disk framing of a single physical log
// record: a fixed 7-byte header (CRC, size, type) followed by a payload.
//
// Record Format:
//
//	+----------+---------+------+--- ... ---+
//	| CRC (4B) | Len(2B) | Type | Payload    |
//	+----------+---------+------+--- ... ---+
//
// All multi-byte integers are big-endian. CRC is CRC32C (Castagnoli) of the
// payload only — the header itself is not covered. This mirrors the
// RocksDB/LevelDB WAL record layout (db/log_format.h), trimmed to five
// record types: the four the log writer emits, plus the reserved None.
package record

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"
)

// BlockSize is the size of each block in the log file. Records never span
// blocks; a block that cannot hold another minimum-size record is padded
// with zeroes out to BlockSize.
const BlockSize = 32768

// HeaderSize is the size of a record header: CRC (4) + size (2) + type (1).
const HeaderSize = 7

// MinSize is the smallest legal on-disk record: a header plus one payload byte.
const MinSize = HeaderSize + 1

// MaxPayloadSize is the largest payload a single physical record can carry,
// set by the 16-bit size field. It is larger than a block; the log writer
// keeps each record inside one block, so the payloads it writes never
// exceed BlockSize - HeaderSize.
const MaxPayloadSize = 0xFFFF

// crc32cTable is the Castagnoli polynomial table used for CRC32C.
var crc32cTable = crc32.MakeTable(crc32.Castagnoli)

// Type identifies how a physical record relates to the logical payload it
// carries. A logical payload larger than fits in the remainder of a block is
// split across First, zero or more Middle, and one Last record.
type Type uint8

const (
	// None is reserved; it is never written, and is reserved for
	// all-zero block padding. The log reader treats a None header as
	// end-of-log when the rest of its block is zero and as an
	// InvalidTypeError otherwise; it is never a record to apply.
	None Type = 0
	// First is the first fragment of a record that spans multiple blocks.
	First Type = 1
	// Middle is a middle fragment of a multi-block record.
	Middle Type = 2
	// Last is the final fragment of a multi-block record.
	Last Type = 3
	// Full is a complete record that fits in a single fragment.
	Full Type = 4
)

// String returns a human-readable name for the record type.
func (t Type) String() string {
	switch t {
	case None:
		return "None"
	case First:
		return "First"
	case Middle:
		return "Middle"
	case Last:
		return "Last"
	case Full:
		return "Full"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Record is a single physical log record. Payload borrows from the buffer
// it was decoded out of and is only valid until that buffer is reused.
type Record struct {
	CRC     uint32
	Size    uint16
	RType   Type
	Payload []byte
}

// Len returns the total on-disk size of the record, header plus payload.
func (r Record) Len() int {
	return HeaderSize + len(r.Payload)
}

// Checksum computes the CRC32C of payload, matching the value Encode embeds
// in the record header.
func Checksum(payload []byte) uint32 {
	return crc32.Checksum(payload, crc32cTable)
}

// Encode serializes a record with the given type and payload. It panics if
// payload exceeds MaxPayloadSize — callers (the log writer) are responsible
// for fragmenting payloads that don't fit in a single record.
func Encode(t Type, payload []byte) []byte {
	if len(payload) > MaxPayloadSize {
		panic("record: payload too large for a single physical record")
	}
	buf := make([]byte, HeaderSize+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], Checksum(payload))
	binary.BigEndian.PutUint16(buf[4:6], uint16(len(payload)))
	buf[6] = byte(t)
	copy(buf[HeaderSize:], payload)
	return buf
}

// Decode parses a record header and payload out of buf. The returned
// record's Payload aliases buf; the caller must not mutate or discard buf
// before it is done with the record. Decode does not validate the CRC —
// call ValidateCRC separately.
func Decode(buf []byte) (Record, error) {
	if len(buf) < MinSize {
		return Record{}, &RecordTooSmallError{Actual: len(buf), Minimum: MinSize}
	}
	size := binary.BigEndian.Uint16(buf[4:6])
	rtype := Type(buf[6])
	if rtype > Full {
		return Record{}, &InvalidTypeError{Type: uint8(rtype)}
	}
	end := HeaderSize + int(size)
	if end > len(buf) {
		return Record{}, &RecordTooSmallError{Actual: len(buf), Minimum: end}
	}
	return Record{
		CRC:     binary.BigEndian.Uint32(buf[0:4]),
		Size:    size,
		RType:   rtype,
		Payload: buf[HeaderSize:end],
	}, nil
}

// ValidateCRC recomputes the CRC32C of r.Payload and compares it against
// r.CRC, returning an InvalidCRCError on mismatch.
func ValidateCRC(r Record) error {
	actual := Checksum(r.Payload)
	if actual != r.CRC {
		return &InvalidCRCError{Expected: r.CRC, Actual: actual}
	}
	return nil
}
