package waldb

import (
	"fmt"

	"waldb/internal/record"
	"waldb/internal/storage"
)

// The error kinds below let callers distinguish failure classes with
// errors.As, matching the taxonomy record/storage already raise at the
// package boundary: Io (storage.IOError), RecordTooSmall and
// InvalidRecordType and InvalidCrc (record package), plus Value for
// argument validation that belongs to waldb itself.

// IOError is waldb's Io error kind: an underlying file I/O failure.
type IOError = storage.IOError

// RecordTooSmallError is waldb's RecordTooSmall error kind.
type RecordTooSmallError = record.RecordTooSmallError

// InvalidRecordTypeError is waldb's InvalidRecordType error kind.
type InvalidRecordTypeError = record.InvalidTypeError

// InvalidCRCError is waldb's InvalidCrc error kind.
type InvalidCRCError = record.InvalidCRCError

// ValueError is waldb's Value error kind: an argument failed validation,
// independent of any I/O or decoding concern.
type ValueError struct {
	Msg string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("waldb: %s", e.Msg)
}

func valueErrorf(format string, args ...any) error {
	return &ValueError{Msg: fmt.Sprintf(format, args...)}
}
