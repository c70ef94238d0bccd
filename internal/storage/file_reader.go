package storage

import (
	"errors"
	"io"
	"os"
)

// FileReader is a sequential file reader used to stream bytes out of a log
// file. It does no buffering of its own; each Read goes straight to the
// file, and the log reader (internal/wal) keeps the read buffer.
//
// FileReader is not safe for concurrent use.
type FileReader struct {
	f *os.File
}

// NewFileReader opens path for sequential reading.
func NewFileReader(path string) (*FileReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return &FileReader{f: f}, nil
}

// Read reads up to len(p) bytes into p. It returns io.EOF once the file is
// fully consumed, matching io.Reader semantics.
func (r *FileReader) Read(p []byte) (int, error) {
	n, err := r.f.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, &IOError{Op: "read", Path: r.f.Name(), Err: err}
	}
	return n, err
}

// Close closes the underlying file.
func (r *FileReader) Close() error {
	if err := r.f.Close(); err != nil {
		return &IOError{Op: "close", Path: r.f.Name(), Err: err}
	}
	return nil
}
