package glove

import (
	"bytes"
	"io"
	"testing"
)

func TestRecordRoundTrip(t *testing.T) {
	recs := []CREC{
		{W1: 1, W2: 1, Val: 1.0},
		{W1: 1, W2: 2, Val: 2.5},
		{W1: 2, W2: 1, Val: -3.25},
	}

	var buf bytes.Buffer
	rw := NewRecordWriter(&buf)
	for _, r := range recs {
		if err := rw.Write(r); err != nil {
			t.Fatalf("Write(%+v): %v", r, err)
		}
	}
	if err := rw.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got, want := buf.Len(), len(recs)*RecordSize; got != want {
		t.Fatalf("expected %d bytes on the wire; got %d", want, got)
	}

	rr := NewRecordReader(&buf)
	got, err := rr.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(got) != len(recs) {
		t.Fatalf("expected %d records back; got %d", len(recs), len(got))
	}
	for i, r := range recs {
		if got[i] != r {
			t.Errorf("record %d: expected %+v; got %+v", i, r, got[i])
		}
	}
}

func TestRecordReaderCleanEOF(t *testing.T) {
	rr := NewRecordReader(bytes.NewReader(nil))
	if _, err := rr.Read(); err != io.EOF {
		t.Fatalf("expected io.EOF on an empty stream; got %v", err)
	}
}

func TestRecordReaderTruncated(t *testing.T) {
	rr := NewRecordReader(bytes.NewReader(make([]byte, RecordSize-1)))
	_, err := rr.Read()
	if err == nil || err == io.EOF {
		t.Fatalf("expected a truncated-record error; got %v", err)
	}
	gerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error; got %T", err)
	}
	if gerr.Kind != IoError {
		t.Errorf("expected Kind IoError; got %v", gerr.Kind)
	}
}
