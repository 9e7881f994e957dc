package store

import "testing"

func TestLookupMiss(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, ok, err := s.Lookup(0xDEADBEEF)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("empty store should miss")
	}
}

func TestRecordAndLookup(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	want := Entry{Move: "e2e4", Score: 31, Depth: 12}
	if err := s.Record(0x1234, want); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Lookup(0x1234)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a hit")
	}
	if got.Move != want.Move || got.Score != want.Score || got.Depth != want.Depth {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if got.Updated.IsZero() {
		t.Error("Record should stamp the entry")
	}
}

func TestRecordKeepsDeeperEntry(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.Record(7, Entry{Move: "d2d4", Score: 10, Depth: 15}); err != nil {
		t.Fatal(err)
	}
	if err := s.Record(7, Entry{Move: "e2e4", Score: 5, Depth: 6}); err != nil {
		t.Fatal(err)
	}

	got, ok, err := s.Lookup(7)
	if err != nil || !ok {
		t.Fatalf("lookup: ok=%v err=%v", ok, err)
	}
	if got.Move != "d2d4" || got.Depth != 15 {
		t.Errorf("shallower search overwrote a deeper entry: %+v", got)
	}

	// Equal or greater depth does replace.
	if err := s.Record(7, Entry{Move: "c2c4", Score: 2, Depth: 15}); err != nil {
		t.Fatal(err)
	}
	got, _, _ = s.Lookup(7)
	if got.Move != "c2c4" {
		t.Errorf("equal-depth entry should replace, got %+v", got)
	}
}

func TestReopenPersists(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Record(42, Entry{Move: "g1f3", Score: 0, Depth: 9}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	got, ok, err := s.Lookup(42)
	if err != nil || !ok {
		t.Fatalf("entry should survive reopen: ok=%v err=%v", ok, err)
	}
	if got.Move != "g1f3" {
		t.Errorf("got %+v", got)
	}
}
