package waldb

// db_test.go exercises the public facade end to end, including the
// insert/update/delete/reopen scenarios the durability pipeline must
// preserve across a process restart.

import (
	"encoding/binary"
	"path/filepath"
	"testing"

	"waldb/internal/batch"
)

func be32(n uint32) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	return b[:]
}

func TestInsertGetUpdate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.log")
	db, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	const n = 1000
	for i := uint32(0); i < n; i++ {
		if err := db.InsertOrUpdate(be32(i), be32(i)); err != nil {
			t.Fatalf("InsertOrUpdate(%d): %v", i, err)
		}
	}
	for i := uint32(0); i < n; i++ {
		v, ok := db.Get(be32(i))
		if !ok || binary.BigEndian.Uint32(v) != i {
			t.Fatalf("Get(%d) = %v, %v", i, v, ok)
		}
	}

	for i := uint32(0); i < n; i++ {
		if err := db.InsertOrUpdate(be32(i), be32(2*i)); err != nil {
			t.Fatalf("update InsertOrUpdate(%d): %v", i, err)
		}
	}
	for i := uint32(0); i < n; i++ {
		v, ok := db.Get(be32(i))
		if !ok || binary.BigEndian.Uint32(v) != 2*i {
			t.Fatalf("Get(%d) after update = %v, %v, want %d", i, v, ok, 2*i)
		}
	}
}

func TestDeleteEvens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.log")
	db, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	const n = 1000
	for i := uint32(0); i < n; i++ {
		if err := db.InsertOrUpdate(be32(i), be32(i)); err != nil {
			t.Fatalf("InsertOrUpdate(%d): %v", i, err)
		}
	}
	for i := uint32(0); i < n; i += 2 {
		if err := db.Delete(be32(i)); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
	}
	for i := uint32(0); i < n; i++ {
		_, ok := db.Get(be32(i))
		if i%2 == 0 && ok {
			t.Errorf("Get(%d): present, want absent", i)
		}
		if i%2 == 1 && !ok {
			t.Errorf("Get(%d): absent, want present", i)
		}
	}
}

func TestReopenPreservesVisibility(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.log")
	const n = 1000

	db, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	for i := uint32(0); i < n; i++ {
		if err := db.InsertOrUpdate(be32(i), be32(i)); err != nil {
			t.Fatalf("InsertOrUpdate(%d): %v", i, err)
		}
	}
	for i := uint32(0); i < n; i++ {
		if err := db.InsertOrUpdate(be32(i), be32(2*i)); err != nil {
			t.Fatalf("update InsertOrUpdate(%d): %v", i, err)
		}
	}
	for i := uint32(0); i < n; i += 2 {
		if err := db.Delete(be32(i)); err != nil {
			t.Fatalf("Delete(%d): %v", i, err)
		}
	}
	if err := db.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	for i := uint32(0); i < n; i++ {
		v, ok := reopened.Get(be32(i))
		if i%2 == 0 {
			if ok {
				t.Errorf("Get(%d): present after reopen, want absent", i)
			}
			continue
		}
		if !ok || binary.BigEndian.Uint32(v) != 2*i {
			t.Errorf("Get(%d) after reopen = %v, %v, want %d", i, v, ok, 2*i)
		}
	}
}

func TestWriteEmptyBatchIsRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.log")
	db, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	err = db.Write(batch.New())
	if err == nil {
		t.Fatal("Write(empty batch): want error, got nil")
	}
	if _, ok := err.(*ValueError); !ok {
		t.Fatalf("err = %v (%T), want *ValueError", err, err)
	}
}

func TestScanRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.log")
	db, err := Open(path, Options{})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	for i := uint32(0); i < 20; i++ {
		if err := db.InsertOrUpdate(be32(i), be32(i)); err != nil {
			t.Fatalf("InsertOrUpdate(%d): %v", i, err)
		}
	}

	it := db.Scan(be32(5), be32(10))
	var got []uint32
	for {
		k, _, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, binary.BigEndian.Uint32(k))
	}
	want := []uint32{5, 6, 7, 8, 9}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
