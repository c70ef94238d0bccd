// Package waldb is an embedded, single-process, single-threaded ordered
// key-value store. Durability comes from a write-ahead log on local disk;
// in-memory state is a sorted table (the memtable) rebuilt by replaying the
// log on reopen.
//
// waldb has no background threads, no compaction, and no flush to a
// secondary on-disk format — the memtable holds the entire working set for
// the life of the process. It is meant as the durability core beneath a
// larger storage engine, not as a complete one.
package waldb

import (
	"os"

	"waldb/internal/batch"
	"waldb/internal/logging"
	"waldb/internal/memtable"
	"waldb/internal/storage"
	"waldb/internal/wal"
)

// DB is an open key-value store backed by a single log file.
//
// DB is not safe for concurrent use. The caller owns it exclusively and
// must provide external synchronization to share it across goroutines.
type DB struct {
	path   string
	mem    *memtable.Memtable
	writer *wal.Writer
	fw     *storage.FileWriter
	logger Logger
}

// Open opens the log file at path, replaying it into a fresh memtable if
// it already exists and is non-empty, then attaches a log writer in append
// mode (or truncate mode, per opts.Truncate) for subsequent mutations.
func Open(path string, opts Options) (*DB, error) {
	logger := opts.logger()
	mem := memtable.New()

	truncate := opts.Truncate
	if !truncate {
		if info, err := os.Stat(path); err == nil && info.Size() > 0 {
			logger.Infof("%srecovering from %s", logging.NSDB, path)
			if err := recover(path, mem, logger); err != nil {
				return nil, err
			}
		}
	}

	fw, err := storage.NewFileWriter(path, truncate)
	if err != nil {
		return nil, err
	}

	db := &DB{
		path:   path,
		mem:    mem,
		writer: wal.NewWriter(fw),
		fw:     fw,
		logger: logger,
	}
	logger.Infof("%sopened %s with %d recovered keys", logging.NSDB, path, mem.Count())
	return db, nil
}

// InsertOrUpdate logs and applies a single key/value mutation.
func (db *DB) InsertOrUpdate(key, value []byte) error {
	b := batch.New()
	b.InsertOrUpdate(key, value)
	return db.Write(b)
}

// Delete logs and applies a single tombstone for key.
func (db *DB) Delete(key []byte) error {
	b := batch.New()
	b.Delete(key)
	return db.Write(b)
}

// Write logs b's bytes and then applies every entry in order to the
// memtable. The log append happens before the memtable mutation, so a
// crash can never leave the memtable ahead of the durable log.
func (db *DB) Write(b *batch.Batch) error {
	if b.IsEmpty() {
		return valueErrorf("batch is empty")
	}
	if err := db.writer.Append(b.AsBytes()); err != nil {
		return err
	}
	applyBatch(db.mem, b)
	return nil
}

// Get returns the value stored for key and true, or (nil, false) if absent.
// Get never touches disk.
func (db *DB) Get(key []byte) ([]byte, bool) {
	return db.mem.Get(key)
}

// Scan returns an iterator over keys in the half-open range [start, end)
// in ascending order. Scan never touches disk.
func (db *DB) Scan(start, end []byte) *memtable.ScanIterator {
	return db.mem.Scan(start, end)
}

// Sync flushes and fsyncs the log file, guaranteeing durability of every
// write accepted so far.
func (db *DB) Sync() error {
	return db.writer.Sync()
}

// Close flushes and closes the underlying log file.
func (db *DB) Close() error {
	return db.fw.Close()
}

