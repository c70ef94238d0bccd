package waldb

// recovery.go replays a WAL file into a fresh memtable at Open.
//
// Reference: RocksDB-style WAL replay (db/db_impl/db_impl_open.cc
// RecoverLogFiles), scoped down to the single log file this store keeps.

import (
	"errors"

	"waldb/internal/batch"
	"waldb/internal/logging"
	"waldb/internal/memtable"
	"waldb/internal/storage"
	"waldb/internal/wal"
)

// recover replays logPath into mem, driving a log reader through a
// write-batch builder and applying each completed batch's entries.
//
// A CRC mismatch or malformed record aborts recovery with the underlying
// error, wherever it sits in the log. Only a torn tail — a final record
// whose declared size runs past the end of the file — is tolerated as a
// clean end-of-log, since that is the expected shape of a crash mid-append
// (see isTornTailError).
func recover(logPath string, mem *memtable.Memtable, log Logger) error {
	fr, err := storage.NewFileReader(logPath)
	if err != nil {
		return err
	}
	defer func() { _ = fr.Close() }()

	reader := wal.NewReader(fr)
	builder := batch.NewBuilder()

	var applied int
	for {
		rec, err := reader.Next()
		if err == wal.ErrEndOfLog {
			break
		}
		if err != nil {
			if isTornTailError(err) {
				log.Warnf("%storn record at end of log, treating as clean end-of-log: %v", logging.NSRecovery, err)
				break
			}
			return err
		}

		if err := builder.Accumulate(rec); err != nil {
			return err
		}

		if builder.IsReady() {
			applyBatch(mem, builder.Get())
			builder.Consume()
			applied++
		}
	}

	log.Infof("%srecovered %d write batches from %s", logging.NSRecovery, applied, logPath)
	return nil
}

// applyBatch folds every entry of b into mem, in order.
func applyBatch(mem *memtable.Memtable, b *batch.Batch) {
	it := b.Iter()
	for {
		e, ok := it.Next()
		if !ok {
			return
		}
		if e.Value == nil {
			mem.Delete(e.Key)
		} else {
			mem.InsertOrUpdate(e.Key, e.Value)
		}
	}
}

// isTornTailError reports whether err is the specific shape a crash
// mid-append leaves behind: the reader ran out of file before a record's
// declared size was satisfied. wal.Reader only raises RecordTooSmall
// after exhausting every byte it can read, so this can only happen at the
// true end of the file — never mid-stream with more data still to come.
//
// A CRC mismatch is treated differently: the record was structurally
// complete (the writer's flush reached disk), so a bad checksum means
// genuine corruption rather than a torn write, and recovery aborts on it
// regardless of position.
func isTornTailError(err error) bool {
	var tooSmall *RecordTooSmallError
	return errors.As(err, &tooSmall)
}
