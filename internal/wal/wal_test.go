package wal

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"waldb/internal/record"
	"waldb/internal/storage"
)

func openWriter(t *testing.T, path string) *Writer {
	t.Helper()
	fw, err := storage.NewFileWriter(path, true)
	if err != nil {
		t.Fatalf("NewFileWriter: %v", err)
	}
	t.Cleanup(func() { _ = fw.Close() })
	return NewWriter(fw)
}

func openReader(t *testing.T, path string) *Reader {
	t.Helper()
	fr, err := storage.NewFileReader(path)
	if err != nil {
		t.Fatalf("NewFileReader: %v", err)
	}
	t.Cleanup(func() { _ = fr.Close() })
	return NewReader(fr)
}

func readAllRecords(t *testing.T, r *Reader) []record.Record {
	t.Helper()
	var out []record.Record
	for {
		rec, err := r.Next()
		if err == ErrEndOfLog {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		payload := append([]byte(nil), rec.Payload...)
		rec.Payload = payload
		out = append(out, rec)
	}
	return out
}

func TestWriterSingleSmallPayloadIsFull(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	w := openWriter(t, path)

	payload := []byte("hello, waldb")
	if err := w.Append(payload); err != nil {
		t.Fatalf("Append: %v", err)
	}

	r := openReader(t, path)
	recs := readAllRecords(t, r)
	if len(recs) != 1 {
		t.Fatalf("got %d records, want 1", len(recs))
	}
	if recs[0].RType != record.Full {
		t.Errorf("RType = %v, want Full", recs[0].RType)
	}
	if !bytes.Equal(recs[0].Payload, payload) {
		t.Errorf("Payload = %v, want %v", recs[0].Payload, payload)
	}
}

// TestWriterFragmentsLargePayload exercises scenario 4 from the
// end-to-end properties: a payload of 2*BlockSize bytes of random data
// fragments into exactly First(32761), Middle(32761), Last(14), and leaves
// block_pos at 21 (3 headers of 7 bytes each).
func TestWriterFragmentsLargePayload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	w := openWriter(t, path)

	payload := make([]byte, 2*record.BlockSize)
	rand.New(rand.NewSource(1)).Read(payload)

	if err := w.Append(payload); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if w.BlockPos() != 21 {
		t.Errorf("BlockPos = %d, want 21", w.BlockPos())
	}

	r := openReader(t, path)
	recs := readAllRecords(t, r)
	if len(recs) != 3 {
		t.Fatalf("got %d records, want 3", len(recs))
	}
	wantTypes := []record.Type{record.First, record.Middle, record.Last}
	wantSizes := []int{32761, 32761, 14}
	for i, rec := range recs {
		if rec.RType != wantTypes[i] {
			t.Errorf("record %d: RType = %v, want %v", i, rec.RType, wantTypes[i])
		}
		if len(rec.Payload) != wantSizes[i] {
			t.Errorf("record %d: len(Payload) = %d, want %d", i, len(rec.Payload), wantSizes[i])
		}
	}

	reassembled := make([]byte, 0, len(payload))
	for _, rec := range recs {
		reassembled = append(reassembled, rec.Payload...)
	}
	if !bytes.Equal(reassembled, payload) {
		t.Error("reassembled payload does not match original")
	}
}

// TestWriterBlockPaddingBoundary exercises scenario 5: a payload that
// leaves exactly one byte free in its block (too little for another minimum
// record) forces the following append to pad the block tail and start fresh.
func TestWriterBlockPaddingBoundary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	w := openWriter(t, path)

	first := bytes.Repeat([]byte{0x7A}, record.BlockSize-record.HeaderSize-1)
	if err := w.Append(first); err != nil {
		t.Fatalf("Append(first): %v", err)
	}
	if w.BlockPos() != record.BlockSize-1 {
		t.Fatalf("BlockPos after first append = %d, want %d", w.BlockPos(), record.BlockSize-1)
	}

	second := []byte{0x01}
	if err := w.Append(second); err != nil {
		t.Fatalf("Append(second): %v", err)
	}
	if w.BlockPos() != record.HeaderSize+1 {
		t.Fatalf("BlockPos after second append = %d, want %d", w.BlockPos(), record.HeaderSize+1)
	}

	r := openReader(t, path)
	recs := readAllRecords(t, r)
	if len(recs) != 2 {
		t.Fatalf("got %d records, want 2", len(recs))
	}
	if recs[0].RType != record.Full || !bytes.Equal(recs[0].Payload, first) {
		t.Errorf("record 0 mismatch: type=%v len=%d", recs[0].RType, len(recs[0].Payload))
	}
	if recs[1].RType != record.Full || !bytes.Equal(recs[1].Payload, second) {
		t.Errorf("record 1 mismatch: type=%v len=%d", recs[1].RType, len(recs[1].Payload))
	}
}

func TestLogRoundTripManyPayloads(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	w := openWriter(t, path)

	rng := rand.New(rand.NewSource(42))
	var payloads [][]byte
	for i := 0; i < 50; i++ {
		n := rng.Intn(4*record.BlockSize) + 1
		p := make([]byte, n)
		rng.Read(p)
		payloads = append(payloads, p)
		if err := w.Append(p); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	r := openReader(t, path)
	var i int
	var current []byte
	for {
		rec, err := r.Next()
		if err == ErrEndOfLog {
			break
		}
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		current = append(current, rec.Payload...)
		if rec.RType == record.Full || rec.RType == record.Last {
			if i >= len(payloads) {
				t.Fatalf("more reconstructed payloads than written")
			}
			if !bytes.Equal(current, payloads[i]) {
				t.Errorf("payload %d mismatch: got %d bytes, want %d bytes", i, len(current), len(payloads[i]))
			}
			current = nil
			i++
		}
	}
	if i != len(payloads) {
		t.Errorf("reconstructed %d payloads, want %d", i, len(payloads))
	}
}

func TestFragmentationTypeSequence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	w := openWriter(t, path)

	payload := bytes.Repeat([]byte{0x11}, 5*record.BlockSize+17)
	if err := w.Append(payload); err != nil {
		t.Fatalf("Append: %v", err)
	}

	r := openReader(t, path)
	recs := readAllRecords(t, r)

	var seq string
	for _, rec := range recs {
		switch rec.RType {
		case record.Full:
			seq += "F"
		case record.First:
			seq += "f"
		case record.Middle:
			seq += "m"
		case record.Last:
			seq += "l"
		}
	}
	matched, err := regexp.MatchString(`^(F|fm*l)$`, seq)
	if err != nil {
		t.Fatalf("regexp: %v", err)
	}
	if !matched {
		t.Errorf("type sequence %q does not match Full | First Middle* Last", seq)
	}
}

func TestAppendEmptyPayloadIsRejected(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	w := openWriter(t, path)

	if err := w.Append(nil); err != ErrEmptyPayload {
		t.Fatalf("Append(nil) = %v, want ErrEmptyPayload", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat: %v", err)
	}
	if info.Size() != 0 {
		t.Errorf("file size = %d after rejected append, want 0", info.Size())
	}
}

func TestEmptyLogFileYieldsNoRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "log")
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	r := openReader(t, path)
	recs := readAllRecords(t, r)
	if len(recs) != 0 {
		t.Errorf("got %d records from an empty log, want 0", len(recs))
	}
}
