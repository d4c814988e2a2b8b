package glove

import (
	"io"
	"math/rand"
	"time"
)

// ShuffleConfig is shuffle's Config value (spec §6.5).
type ShuffleConfig struct {
	Verbose        int
	MemoryGB       float64
	ArraySize      int64 // 0 = derive from MemoryGB
	TempFilePrefix string
	Seed           int64 // 0 = derive from time.Now(), per §4.3.3's "document the choice"
}

// DefaultShuffleConfig matches the option table defaults in spec §6.5.
func DefaultShuffleConfig() ShuffleConfig {
	return ShuffleConfig{
		Verbose:        2,
		MemoryGB:       2.0,
		TempFilePrefix: "temp_shuffle",
	}
}

// Shuffler runs the two-pass external shuffle of spec §4.3.
type Shuffler struct {
	cfg       ShuffleConfig
	blockSize int64
	rng       *rand.Rand
	temps     *tempFileSet
}

// NewShuffler derives the block size S from cfg (spec §4.3.1) and seeds the
// RNG. Seed documentation per §4.3.3: when cfg.Seed is zero, the seed is
// derived from wall-clock time, matching the reference implementation's
// time(NULL) default; callers that need reproducibility (tests included)
// always pass a non-zero seed explicitly.
func NewShuffler(cfg ShuffleConfig) *Shuffler {
	if cfg.MemoryGB <= 0 {
		cfg.MemoryGB = 2.0
	}
	if cfg.TempFilePrefix == "" {
		cfg.TempFilePrefix = "temp_shuffle"
	}
	block := cfg.ArraySize
	if block <= 0 {
		block = int64(float64(cfg.MemoryGB)*(1<<30)*0.95) / RecordSize
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Shuffler{
		cfg:       cfg,
		blockSize: block,
		rng:       rand.New(rand.NewSource(seed)),
		temps:     newTempFileSet(cfg.TempFilePrefix, cfg.TempFilePrefix == "temp_shuffle"),
	}
}

// randLong draws uniformly from [0, n) via the rejection scheme of spec
// §4.3.3: compose two independent int31 samples into a ~62-bit range L,
// resample on a draw that would bias the result modulo n.
func (s *Shuffler) randLong(n int64) int64 {
	if n <= 0 {
		return 0
	}
	const randMax = 1<<31 - 1
	l := int64(randMax+2) * int64(randMax)
	for {
		hi := int64(s.rng.Int31())
		lo := int64(s.rng.Int31())
		rnd := hi*(randMax+1) + lo
		if rnd >= l-(l%n) {
			continue
		}
		return rnd % n
	}
}

// fisherYates shuffles buf[:n] in place, swapping every index i from n-1
// down to 1 with a uniformly chosen j in [0, i] (inclusive), so no element
// is ever left unswapped at the tail — the REDESIGN FLAG fix documented
// in the surrounding design notes, in place of the off-by-one in the
// original call site.
func (s *Shuffler) fisherYates(buf []CREC) {
	for i := len(buf) - 1; i >= 1; i-- {
		j := s.randLong(int64(i) + 1)
		buf[i], buf[j] = buf[j], buf[i]
	}
}

// Pass1 reads CRECs from r in blocks of blockSize, Fisher–Yates shuffles
// each filled block, and writes it to its own numbered temp file (spec
// §4.3.1). Returns the number of blocks written.
func (s *Shuffler) Pass1(r io.Reader) (int, error) {
	rr := NewRecordReader(r)
	block := make([]CREC, 0, s.blockSize)
	index := 0

	flush := func() error {
		if len(block) == 0 {
			return nil
		}
		s.fisherYates(block)
		f, err := s.temps.Create(index)
		if err != nil {
			return err
		}
		index++
		rw := NewRecordWriter(f)
		for _, rec := range block {
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
			return newError(IoError, "Shuffler.Pass1", "", err)
		}
		block = block[:0]
		return nil
	}

	for {
		rec, err := rr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return index, err
		}
		block = append(block, rec)
		if int64(len(block)) >= s.blockSize {
			if err := flush(); err != nil {
				return index, err
			}
		}
	}
	if err := flush(); err != nil {
		return index, err
	}
	return index, nil
}

// Pass2 opens every block produced by Pass1, repeatedly draws up to
// S/K consecutive records from each (in file order), shuffles the
// assembled draw, and writes it to w; it terminates on a round that drew
// zero records from every file (spec §4.3.2).
func (s *Shuffler) Pass2(w io.Writer, numBlocks int) error {
	if numBlocks == 0 {
		return nil
	}
	files, err := s.temps.OpenReaders()
	if err != nil {
		return err
	}
	readers := make([]*RecordReader, len(files))
	for i, f := range files {
		readers[i] = NewRecordReader(f)
	}

	perFile := s.blockSize / int64(numBlocks)
	if perFile < 1 {
		perFile = 1
	}

	rw := NewRecordWriter(w)
	success := false
	defer func() { s.temps.Cleanup(files, success) }()

	draw := make([]CREC, 0, s.blockSize)
	for {
		draw = draw[:0]
		for _, rr := range readers {
			for i := int64(0); i < perFile; i++ {
				rec, err := rr.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					return err
				}
				draw = append(draw, rec)
			}
		}
		if len(draw) == 0 {
			break
		}
		s.fisherYates(draw)
		for _, rec := range draw {
			if err := rw.Write(rec); err != nil {
				return err
			}
		}
	}
	if err := rw.Flush(); err != nil {
		return err
	}
	success = true
	return nil
}

// Shuffle runs both passes end to end, cleaning up Pass1's temp files on
// success (and leaving them for inspection on any failure, per spec §7).
func (s *Shuffler) Shuffle(r io.Reader, w io.Writer) error {
	numBlocks, err := s.Pass1(r)
	if err != nil {
		return err
	}
	return s.Pass2(w, numBlocks)
}
