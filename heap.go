package glove

import (
	"container/heap"
	"io"

	"github.com/samber/lo"
)

// recordHeap is a min-heap over CRECs ordered by (W1, W2), each entry
// tagged with the index of the source it came from (spec §4.2.5). No
// ecosystem priority-queue library turned up anywhere in the retrieved
// pack, so this is stdlib container/heap — the contract that matters is
// the merge ordering and duplicate coalescence, not the heap mechanics
// (design note §9).
type recordHeap []heapEntry

type heapEntry struct {
	rec CREC
	src int
}

func (h recordHeap) Len() int { return len(h) }
func (h recordHeap) Less(i, j int) bool {
	if h[i].rec.W1 != h[j].rec.W1 {
		return h[i].rec.W1 < h[j].rec.W1
	}
	return h[i].rec.W2 < h[j].rec.W2
}
func (h recordHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *recordHeap) Push(x any)   { *h = append(*h, x.(heapEntry)) }
func (h *recordHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// MergeSortedRuns performs the k-way merge of spec §4.2.5: each reader is
// already internally sorted and duplicate-free, and the merge coalesces
// records with equal (W1, W2) across readers by summing Val, writing one
// record to w per distinct key, in ascending (W1, W2) order.
//
// A malformed (truncated) record from any source surfaces as the IoError
// that RecordReader.Read already produces — callers that want temp files
// left in place for inspection (spec §4.2.5's failure contract) should not
// delete them until MergeSortedRuns returns nil.
func MergeSortedRuns(readers []*RecordReader, w *RecordWriter) error {
	h := make(recordHeap, 0, len(readers))
	active := lo.Map(readers, func(r *RecordReader, i int) bool { return true })

	seed := func(src int) error {
		rec, err := readers[src].Read()
		if err == io.EOF {
			active[src] = false
			return nil
		}
		if err != nil {
			return err
		}
		heap.Push(&h, heapEntry{rec: rec, src: src})
		return nil
	}

	for src := range readers {
		if err := seed(src); err != nil {
			return err
		}
	}

	var (
		held    CREC
		haveOne bool
	)
	for h.Len() > 0 {
		top := heap.Pop(&h).(heapEntry)
		if !haveOne {
			held = top.rec
			haveOne = true
		} else if held.W1 == top.rec.W1 && held.W2 == top.rec.W2 {
			held.Val += top.rec.Val
		} else {
			if err := w.Write(held); err != nil {
				return err
			}
			held = top.rec
		}
		if active[top.src] {
			if err := seed(top.src); err != nil {
				return err
			}
		}
	}
	if haveOne {
		if err := w.Write(held); err != nil {
			return err
		}
	}
	return w.Flush()
}
