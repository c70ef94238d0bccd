package waldb

// Package layout:
//
//	internal/record   log record framing (CRC, size, type, payload)
//	internal/wal       physical record writer/reader, block fragmentation
//	internal/batch     write-batch container and fragment reassembly
//	internal/memtable  in-memory ordered map
//	internal/storage   buffered file writer, sequential file reader
//	internal/logging   logging interface and default implementation
//
// db.go, recovery.go, options.go, and errors.go make up the public facade
// at the module root.
