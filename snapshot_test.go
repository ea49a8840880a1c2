package bm25s

import (
	"errors"
	"reflect"
	"testing"
)

func TestIndex_Document(t *testing.T) {
	idx := newFieldsIndex()
	mustAdd(t, idx, 1, "the cat sat on the cat")

	stats, ok := idx.Document(1)
	if !ok {
		t.Fatal("Document(1) not found")
	}
	want := DocumentStats{
		DocID:     1,
		Length:    6,
		TermFreqs: map[string]int{"the": 2, "cat": 2, "sat": 1, "on": 1},
	}
	if !reflect.DeepEqual(stats, want) {
		t.Errorf("Document(1) = %+v, want %+v", stats, want)
	}

	if _, ok := idx.Document(99); ok {
		t.Error("Document(99) found, want not found")
	}
}

func TestIndex_Document_IsACopy(t *testing.T) {
	idx := newFieldsIndex()
	mustAdd(t, idx, 1, "cat sat")

	stats, _ := idx.Document(1)
	stats.TermFreqs["cat"] = 100
	stats.TermFreqs["dog"] = 1

	again, _ := idx.Document(1)
	if again.TermFreqs["cat"] != 1 || again.TermFreqs["dog"] != 0 {
		t.Errorf("mutating the returned record changed the index: %+v", again)
	}
	mustCheck(t, idx)
}

func TestIndex_Snapshot(t *testing.T) {
	idx := NewIndex(BM25Parameters{K1: 1.5, B: 0.5}, WithTokenizer(FieldsTokenizer))
	mustAdd(t, idx, 2, "cat ran")
	mustAdd(t, idx, 1, "cat sat")

	snap := idx.Snapshot()

	wantPostings := map[string][]uint32{
		"cat": {1, 2},
		"sat": {1},
		"ran": {2},
	}
	if !reflect.DeepEqual(snap.Postings, wantPostings) {
		t.Errorf("Postings = %v, want %v", snap.Postings, wantPostings)
	}
	if len(snap.Documents) != 2 {
		t.Errorf("len(Documents) = %d, want 2", len(snap.Documents))
	}
	if snap.TotalDocLength != 4 {
		t.Errorf("TotalDocLength = %d, want 4", snap.TotalDocLength)
	}
	if snap.K1 != 1.5 || snap.B != 0.5 {
		t.Errorf("parameters = (%v, %v), want (1.5, 0.5)", snap.K1, snap.B)
	}
}

func TestIndex_Snapshot_Independent(t *testing.T) {
	idx := newFieldsIndex()
	mustAdd(t, idx, 1, "cat sat")

	snap := idx.Snapshot()
	snap.Postings["cat"][0] = 42
	snap.Postings["dog"] = []uint32{7}
	snap.Documents[1].TermFreqs["cat"] = 9
	delete(snap.Documents, 1)

	if !idx.Contains(1) || idx.DocFreq("dog") != 0 {
		t.Error("mutating the snapshot changed the index")
	}
	mustCheck(t, idx)

	// and the other way round
	before := idx.Snapshot()
	mustAdd(t, idx, 2, "dog")
	if _, ok := before.Documents[2]; ok {
		t.Error("snapshot picked up a later mutation")
	}
}

func TestIndex_Snapshot_Empty(t *testing.T) {
	snap := NewIndex(DefaultBM25Parameters()).Snapshot()

	if snap.Postings == nil || snap.Documents == nil {
		t.Fatal("empty snapshot has nil maps")
	}
	if len(snap.Postings) != 0 || len(snap.Documents) != 0 || snap.TotalDocLength != 0 {
		t.Errorf("empty snapshot = %+v", snap)
	}
}

func TestIndex_Summary(t *testing.T) {
	idx := newFieldsIndex()
	mustAdd(t, idx, 1, "cat sat")
	mustAdd(t, idx, 2, "cat ran fast")

	got := idx.Summary()
	want := Summary{Documents: 2, Terms: 4, TotalDocLength: 5, AvgDocLength: 2.5}
	if got != want {
		t.Errorf("Summary() = %+v, want %+v", got, want)
	}
}

func TestSnapshot_CBORRoundTrip(t *testing.T) {
	idx := newFieldsIndex()
	mustAdd(t, idx, 1, "the cat sat")
	mustAdd(t, idx, 2, "the cat ran fast")
	mustAdd(t, idx, 70000, "dog")

	snap := idx.Snapshot()
	data, err := EncodeSnapshot(snap)
	if err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	decoded, err := DecodeSnapshot(data)
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if !reflect.DeepEqual(decoded, snap) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, snap)
	}
}

func TestSnapshot_CBORDeterministic(t *testing.T) {
	idx := newFieldsIndex()
	for i, text := range []string{"a b c", "b c d", "c d e", "e f"} {
		mustAdd(t, idx, uint32(i+1), text)
	}

	first, err := EncodeSnapshot(idx.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := EncodeSnapshot(idx.Snapshot())
		if err != nil {
			t.Fatal(err)
		}
		if string(again) != string(first) {
			t.Fatalf("encoding %d differs from the first", i)
		}
	}
}

func TestDecodeSnapshot_Corrupt(t *testing.T) {
	_, err := DecodeSnapshot([]byte{0xff, 0x00, 0x13})
	if !errors.Is(err, ErrCorruptEncoding) {
		t.Errorf("DecodeSnapshot(garbage) error = %v, want ErrCorruptEncoding", err)
	}
}
