package glove

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// testShuffleConfig mirrors testCooccurConfig's reasoning: the 2GB default
// memory budget derives a block size of over a hundred million records,
// which a tiny unit-test input should never need to allocate.
func testShuffleConfig(seed int64) ShuffleConfig {
	cfg := DefaultShuffleConfig()
	cfg.MemoryGB = 0.001
	cfg.Seed = seed
	return cfg
}

func makeRecords(n int) []CREC {
	out := make([]CREC, n)
	for i := range out {
		out[i] = CREC{W1: int32(i + 1), W2: int32(i + 1), Val: float64(i + 1)}
	}
	return out
}

func encodeCRECs(t *testing.T, recs []CREC) []byte {
	t.Helper()
	var buf bytes.Buffer
	rw := NewRecordWriter(&buf)
	for _, r := range recs {
		require.NoError(t, rw.Write(r))
	}
	require.NoError(t, rw.Flush())
	return buf.Bytes()
}

// TestShuffleScenarioS6Bijection checks the multiset-preservation property
// (spec's S6): shuffling N records yields exactly N records, an identical
// multiset to the input.
func TestShuffleScenarioS6Bijection(t *testing.T) {
	recs := makeRecords(137)
	in := encodeCRECs(t, recs)

	s := NewShuffler(testShuffleConfig(42))
	var out bytes.Buffer
	require.NoError(t, s.Shuffle(bytes.NewReader(in), &out))

	got, err := NewRecordReader(&out).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, len(recs))
	require.ElementsMatch(t, recs, got)
}

// TestShuffleDifferentSeedsDifferentOrder exercises S6's second half: two
// runs over the same N>=100 input with different seeds produce different
// orderings with overwhelming probability.
func TestShuffleDifferentSeedsDifferentOrder(t *testing.T) {
	recs := makeRecords(200)
	in := encodeCRECs(t, recs)

	run := func(seed int64) []CREC {
		s := NewShuffler(testShuffleConfig(seed))
		var out bytes.Buffer
		require.NoError(t, s.Shuffle(bytes.NewReader(in), &out))
		got, err := NewRecordReader(&out).ReadAll()
		require.NoError(t, err)
		return got
	}

	a := run(1)
	b := run(2)
	require.ElementsMatch(t, a, b)

	identical := true
	for i := range a {
		if a[i] != b[i] {
			identical = false
			break
		}
	}
	if identical {
		t.Errorf("expected different seeds to produce different orderings for N=%d", len(recs))
	}
}

// TestShuffleFisherYatesTouchesEveryElement pins the REDESIGN FLAG fix: no
// element is left unswapped at the tail of a block, across many seeded
// runs of a small deterministic block.
func TestShuffleFisherYatesTouchesEveryElement(t *testing.T) {
	const n = 8
	swapped := make([]bool, n)

	for seed := int64(1); seed <= 50; seed++ {
		s := NewShuffler(testShuffleConfig(seed))
		buf := makeRecords(n)
		s.fisherYates(buf)
		for i, r := range buf {
			if int(r.W1) != i+1 {
				swapped[i] = true
			}
		}
	}

	for i, s := range swapped {
		if !s {
			t.Errorf("index %d was never moved by Fisher-Yates across 50 seeded runs", i)
		}
	}
}

// TestShuffleMultiBlockPreservesMultiset forces Pass1 to span several
// blocks (array-size overridden small) and checks the two-pass merge still
// preserves the full input multiset.
func TestShuffleMultiBlockPreservesMultiset(t *testing.T) {
	recs := makeRecords(53)
	in := encodeCRECs(t, recs)

	cfg := testShuffleConfig(7)
	cfg.ArraySize = 10
	s := NewShuffler(cfg)

	var out bytes.Buffer
	require.NoError(t, s.Shuffle(bytes.NewReader(in), &out))

	got, err := NewRecordReader(&out).ReadAll()
	require.NoError(t, err)
	require.ElementsMatch(t, recs, got)
}

func TestRandLongStaysInRange(t *testing.T) {
	s := NewShuffler(testShuffleConfig(99))
	for i := 0; i < 1000; i++ {
		v := s.randLong(10)
		if v < 0 || v >= 10 {
			t.Fatalf("randLong(10) = %d, out of range", v)
		}
	}
}

func TestBuildRecordsAreSortedByW1ForReadability(t *testing.T) {
	// Sanity check on the test helper itself: makeRecords produces a
	// strictly increasing W1 sequence, so bijection checks above are
	// comparing against a well-understood fixture.
	recs := makeRecords(5)
	if !sort.SliceIsSorted(recs, func(i, j int) bool { return recs[i].W1 < recs[j].W1 }) {
		t.Fatal("makeRecords fixture is not sorted by W1")
	}
}
