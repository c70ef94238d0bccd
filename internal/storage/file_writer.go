// Package storage provides the buffered file I/O primitives the log writer
// and reader are built on: a buffered append-only writer and an unbuffered
// sequential reader, both backed by the OS filesystem.
package storage

import (
	"bufio"
	"os"
)

// WriterBufferSize is the default size of the in-process write buffer
// fronting the underlying file. Appends accumulate here until Flush pushes
// them to the OS page cache; Sync additionally fsyncs to stable storage.
const WriterBufferSize = 128 * 1024

// FileWriter is a buffered, append-only file writer.
//
// FileWriter is not safe for concurrent use.
type FileWriter struct {
	f *os.File
	w *bufio.Writer
}

// NewFileWriter opens path for writing. When truncate is true the file is
// created or emptied; otherwise writes are appended to any existing
// content.
func NewFileWriter(path string, truncate bool) (*FileWriter, error) {
	flags := os.O_CREATE | os.O_WRONLY
	if truncate {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_APPEND
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	return &FileWriter{
		f: f,
		w: bufio.NewWriterSize(f, WriterBufferSize),
	}, nil
}

// Append writes data to the internal buffer. It is a no-op for an empty
// slice. Data is not guaranteed to reach the file until Flush or Sync.
func (w *FileWriter) Append(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if _, err := w.w.Write(data); err != nil {
		return &IOError{Op: "write", Path: w.f.Name(), Err: err}
	}
	return nil
}

// Flush pushes any buffered bytes to the OS page cache, without forcing
// them to stable storage.
func (w *FileWriter) Flush() error {
	if err := w.w.Flush(); err != nil {
		return &IOError{Op: "flush", Path: w.f.Name(), Err: err}
	}
	return nil
}

// Sync flushes the buffer and then fsyncs the underlying file descriptor,
// guaranteeing durability of everything written so far.
func (w *FileWriter) Sync() error {
	if err := w.Flush(); err != nil {
		return err
	}
	if err := w.f.Sync(); err != nil {
		return &IOError{Op: "sync", Path: w.f.Name(), Err: err}
	}
	return nil
}

// Close flushes and closes the underlying file.
func (w *FileWriter) Close() error {
	flushErr := w.Flush()
	closeErr := w.f.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return &IOError{Op: "close", Path: w.f.Name(), Err: closeErr}
	}
	return nil
}
