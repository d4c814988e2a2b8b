package glove

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"
)

// CooccurConfig is cooccur's Config value (spec §6.4).
type CooccurConfig struct {
	Verbose            int
	Symmetric          bool
	WindowSize         int
	MemoryGB           float64
	MaxProduct         int64 // 0 = derive from MemoryGB
	OverflowLength     int64 // 0 = derive from MemoryGB
	OverflowFilePrefix string
}

// DefaultCooccurConfig matches the option table defaults in spec §6.4.
func DefaultCooccurConfig() CooccurConfig {
	return CooccurConfig{
		Verbose:            2,
		Symmetric:          true,
		WindowSize:         15,
		MemoryGB:           3.0,
		OverflowFilePrefix: "overflow",
	}
}

// Accumulator is the hybrid dense/sparse co-occurrence aggregator of spec
// §4.2. It owns the dense triangular table, the row-offset lookup, the
// overflow buffer and the set of temp files it spills to; all of that is
// released by Finalize, win or lose (design note §9's scoped-handle rule).
type Accumulator struct {
	cfg    CooccurConfig
	vocab  *wordTable
	v      int32
	lookup []int64 // L[0..V], spec §3
	budget MemoryBudget

	dense []float64

	overflow    []CREC
	overflowCap int64

	temps         *tempFileSet
	nextOverflow  int
	history       []int32
}

// NewAccumulator loads the vocabulary (spec §4.2.2), derives the memory
// budget and builds the dense region and its lookup table.
func NewAccumulator(vocabFile io.Reader, cfg CooccurConfig) (*Accumulator, error) {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = 15
	}
	if cfg.MemoryGB <= 0 {
		cfg.MemoryGB = 3.0
	}
	if cfg.OverflowFilePrefix == "" {
		cfg.OverflowFilePrefix = "overflow"
	}

	table, v, err := LoadVocabulary(vocabFile)
	if err != nil {
		return nil, err
	}

	budget := DeriveMemoryBudget(int64(cfg.MemoryGB*(1<<30)), cfg.MaxProduct, cfg.OverflowLength)
	logMemoryBudget("cooccur", budget)

	lookup, denseSize := buildLookup(v, budget.P)
	dense, err := allocFloats(denseSize)
	if err != nil {
		return nil, err
	}

	a := &Accumulator{
		cfg:          cfg,
		vocab:        table,
		v:            v,
		lookup:       lookup,
		budget:       budget,
		dense:        dense,
		overflowCap:  budget.O,
		temps:        newTempFileSet(cfg.OverflowFilePrefix, cfg.OverflowFilePrefix == "overflow"),
		nextOverflow: 1, // 0 is reserved for the dense dump, spec §3
		history:      make([]int32, cfg.WindowSize),
	}
	a.overflow = make([]CREC, 0, a.overflowCap)
	return a, nil
}

// buildLookup builds L as defined in spec §3: row x has width
// min(V, floor(P/x)); L[0]=1; L[x]=L[x-1]+width(x). The dense array must
// be sized L[V]-1 to cover the last cell's 0-based offset L[V-1]+width(V)-2
// (design note §9's flagged off-by-one, confirmed intentional here: L[0]=1
// is a sentinel, and the cell formula is genuinely 0-based off of it).
func buildLookup(v int32, p int64) (lookup []int64, denseSize int64) {
	lookup = make([]int64, int64(v)+1)
	lookup[0] = 1
	for x := int64(1); x <= int64(v); x++ {
		width := p / x
		if width > int64(v) {
			width = int64(v)
		}
		lookup[x] = lookup[x-1] + width
	}
	denseSize = lookup[v] - 1
	if denseSize < 0 {
		denseSize = 0
	}
	return
}

func allocFloats(n int64) (buf []float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			buf, err = nil, newError(ResourceExhausted, "allocFloats", "", fmt.Errorf("%v", r))
		}
	}()
	if n < 0 {
		return nil, newError(ResourceExhausted, "allocFloats", "", fmt.Errorf("negative dense size %d", n))
	}
	return make([]float64, n), nil
}

// ProcessCorpus runs the streaming pass of spec §4.2.3 over r, routing
// every contributing pair into the dense region or the overflow buffer.
// Contexts never cross newline boundaries: j is reset at the start of
// every line, which this implementation gets for free by processing one
// line's fields at a time (the same bytes.Fields-per-line shape as the
// teacher's cmd/score.go LoadCorpus).
func (a *Accumulator) ProcessCorpus(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<24)

	for scanner.Scan() {
		fields := bytes.Fields(scanner.Bytes())
		j := 0
		for _, tok := range fields {
			if len(tok) > MaxTokenLength {
				tok = tok[:MaxTokenLength]
			}
			node := a.vocab.Find(tok)
			if node == nil {
				// OOV: skipped, and crucially does not advance j (spec §7).
				continue
			}
			w2 := node.rank

			lo := j - a.cfg.WindowSize
			if lo < 0 {
				lo = 0
			}
			w := a.cfg.WindowSize
			for k := lo; k < j; k++ {
				w1 := a.history[((k%w)+w)%w]
				contrib := 1.0 / float64(j-k)
				if err := a.route(w1, w2, contrib); err != nil {
					return err
				}
				if a.cfg.Symmetric {
					if err := a.route(w2, w1, contrib); err != nil {
						return err
					}
				}
			}
			a.history[((j%w)+w)%w] = w2
			j++
		}
	}
	if err := scanner.Err(); err != nil {
		return newError(IoError, "Accumulator.ProcessCorpus", "", err)
	}
	return nil
}

// route sends (w1, w2, contrib) to the dense region when w1*w2 < P, or
// appends it to the overflow buffer otherwise, flushing that buffer once
// it holds overflowCap minus WindowSize records (spec §4.2.3).
func (a *Accumulator) route(w1, w2 int32, contrib float64) error {
	if int64(w1)*int64(w2) < a.budget.P {
		idx := a.lookup[w1-1] + int64(w2) - 2
		a.dense[idx] += contrib
		return nil
	}
	a.overflow = append(a.overflow, CREC{W1: w1, W2: w2, Val: contrib})
	if int64(len(a.overflow)) >= a.overflowCap-int64(a.cfg.WindowSize) {
		return a.flushOverflow()
	}
	return nil
}

// flushOverflow sorts, coalesces and writes the current overflow buffer to
// the next numbered temp file (spec §4.2.3).
func (a *Accumulator) flushOverflow() error {
	if len(a.overflow) == 0 {
		return nil
	}
	sort.Slice(a.overflow, func(i, j int) bool {
		if a.overflow[i].W1 != a.overflow[j].W1 {
			return a.overflow[i].W1 < a.overflow[j].W1
		}
		return a.overflow[i].W2 < a.overflow[j].W2
	})
	coalesced := a.overflow[:1]
	for _, rec := range a.overflow[1:] {
		last := &coalesced[len(coalesced)-1]
		if last.W1 == rec.W1 && last.W2 == rec.W2 {
			last.Val += rec.Val
		} else {
			coalesced = append(coalesced, rec)
		}
	}

	f, err := a.temps.Create(a.nextOverflow)
	if err != nil {
		return err
	}
	a.nextOverflow++
	rw := NewRecordWriter(f)
	for _, rec := range coalesced {
		if err := rw.Write(rec); err != nil {
			f.Close()
			return err
		}
	}
	if err := rw.Flush(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return newError(IoError, "Accumulator.flushOverflow", "", err)
	}
	a.overflow = a.overflow[:0]
	return nil
}

// emitDense walks the dense array in row-major rank order and writes every
// non-zero cell to the reserved temp file 0000 (spec §4.2.4). The walk is
// inherently sorted by (W1, W2) with no duplicates.
func (a *Accumulator) emitDense(f *os.File) error {
	rw := NewRecordWriter(f)
	for x := int64(1); x <= int64(a.v); x++ {
		width := a.lookup[x] - a.lookup[x-1]
		for y := int64(1); y <= width; y++ {
			idx := a.lookup[x-1] + y - 2
			if val := a.dense[idx]; val != 0 {
				if err := rw.Write(CREC{W1: int32(x), W2: int32(y), Val: val}); err != nil {
					return err
				}
			}
		}
	}
	return rw.Flush()
}

// Finalize flushes any pending overflow, emits the dense dump, and merges
// every temp file into w via the k-way merge of spec §4.2.5. On success all
// temp files are deleted; on a merge failure they are left on disk for the
// operator, per spec §4.2.5 and §7, and the handles feeding the merge are
// closed either way.
func (a *Accumulator) Finalize(w io.Writer) (err error) {
	if err = a.flushOverflow(); err != nil {
		return err
	}

	dense, err := a.temps.Create(0)
	if err != nil {
		return err
	}
	if err = a.emitDense(dense); err != nil {
		dense.Close()
		return err
	}
	if err = dense.Close(); err != nil {
		return newError(IoError, "Accumulator.Finalize", "", err)
	}

	readers, err := a.temps.OpenReaders()
	if err != nil {
		return err
	}

	recordReaders := make([]*RecordReader, len(readers))
	for i, f := range readers {
		recordReaders[i] = NewRecordReader(f)
	}

	mergeErr := MergeSortedRuns(recordReaders, NewRecordWriter(w))
	a.temps.Cleanup(readers, mergeErr == nil)
	return mergeErr
}
