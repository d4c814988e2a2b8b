package glove

import "testing"

func TestWordTableIncrementCounts(t *testing.T) {
	tbl := newWordTable()
	for _, w := range []string{"a", "b", "a", "a", "b"} {
		tbl.Increment([]byte(w))
	}

	if got := tbl.Size(); got != 2 {
		t.Fatalf("expected 2 distinct words; got %d", got)
	}

	a := tbl.Find([]byte("a"))
	if a == nil || a.count != 3 {
		t.Errorf("expected count(a) = 3; got %+v", a)
	}
	b := tbl.Find([]byte("b"))
	if b == nil || b.count != 2 {
		t.Errorf("expected count(b) = 2; got %+v", b)
	}
	if tbl.Find([]byte("c")) != nil {
		t.Errorf("expected Find(c) = nil")
	}
}

func TestWordTableMoveToFrontDoesNotLoseEntries(t *testing.T) {
	tbl := newWordTable()
	words := []string{"zebra", "apple", "zebra", "mango", "zebra", "apple"}
	for _, w := range words {
		tbl.Increment([]byte(w))
	}

	want := map[string]int64{"zebra": 3, "apple": 2, "mango": 1}
	entries := tbl.Entries()
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries; got %d", len(want), len(entries))
	}
	for _, n := range entries {
		if c, ok := want[string(n.key)]; !ok || c != n.count {
			t.Errorf("unexpected entry %q count %d", n.key, n.count)
		}
	}
}

func TestWordTableInsertAssignsRank(t *testing.T) {
	tbl := newWordTable()
	tbl.Insert([]byte("first"), 1)
	tbl.Insert([]byte("second"), 2)

	n := tbl.Find([]byte("second"))
	if n == nil || n.rank != 2 {
		t.Errorf("expected rank(second) = 2; got %+v", n)
	}
}
