package glove

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
)

// MaxTokenLength is the longest token kept verbatim; anything longer is
// truncated to this many bytes (spec §3). Truncated tokens almost
// certainly miss the vocabulary and are silently skipped downstream — by
// design, not an error (spec §7). Truncation applies only within the
// scanners' buffer limits: BuildVocabulary fails with IoError on a token
// longer than 4*MaxTokenLength bytes, and ProcessCorpus on a line longer
// than 16 MiB.
const MaxTokenLength = 1000

// unkSentinel is the one token the corpus may never contain (spec §4.1).
var unkSentinel = []byte("<unk>")

// VocabEntry is one (word, count) pair, in final emission order.
type VocabEntry struct {
	Word  []byte
	Count int64
}

// Vocabulary is the ordered sequence described in spec §3: descending
// count, ties broken by lexicographic byte order. Position (1-based) is
// the word's rank.
type Vocabulary struct {
	Entries []VocabEntry
}

// VocabBuildConfig is vocab_build's Config value (spec §6.3, design note
// §9 — one explicit Config per stage instead of global flags).
type VocabBuildConfig struct {
	Verbose  int
	MaxVocab int // 0 = unlimited
	MinCount int // default 1
}

// DefaultVocabBuildConfig matches the option table defaults in spec §6.3.
func DefaultVocabBuildConfig() VocabBuildConfig {
	return VocabBuildConfig{Verbose: 2, MaxVocab: 0, MinCount: 1}
}

// BuildVocabulary streams whitespace-delimited tokens from r, counts them
// in a wordTable (spec §4.1), and returns them sorted and filtered per
// cfg. Spaces, tabs and newlines are all separators; carriage returns are
// whitespace too and are dropped along with them (bufio.ScanWords already
// treats every unicode.IsSpace byte, \r included, as a separator — no
// bespoke lexer needed for this trivial a contract).
func BuildVocabulary(r io.Reader, cfg VocabBuildConfig) (*Vocabulary, error) {
	table := newWordTable()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*MaxTokenLength)
	scanner.Split(bufio.ScanWords)

	for scanner.Scan() {
		tok := scanner.Bytes()
		if len(tok) > MaxTokenLength {
			tok = tok[:MaxTokenLength]
		}
		if bytes.Equal(tok, unkSentinel) {
			return nil, newError(InvalidArgument, "BuildVocabulary", string(tok),
				fmt.Errorf("reserved sentinel <unk> may not appear in the corpus"))
		}
		table.Increment(tok)
	}
	if err := scanner.Err(); err != nil {
		return nil, newError(IoError, "BuildVocabulary", "", err)
	}

	entries := table.Entries()

	if cfg.MaxVocab > 0 && len(entries) > cfg.MaxVocab {
		// Count-only sort first (ties unordered -> pseudo-random alphabet
		// spread), truncate, then the real sort. Spec §4.1.
		sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })
		entries = entries[:cfg.MaxVocab]
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].count != entries[j].count {
			return entries[i].count > entries[j].count
		}
		return bytes.Compare(entries[i].key, entries[j].key) < 0
	})

	minCount := cfg.MinCount
	if minCount <= 0 {
		minCount = 1
	}
	out := &Vocabulary{Entries: make([]VocabEntry, 0, len(entries))}
	for _, n := range entries {
		if n.count < int64(minCount) {
			continue
		}
		out.Entries = append(out.Entries, VocabEntry{Word: n.key, Count: n.count})
	}
	return out, nil
}

// WriteVocabulary emits "<word> <count>\n" lines in v's order; line number
// (1-based) is the word's rank everywhere downstream (spec §4.1, §6.2).
func WriteVocabulary(w io.Writer, v *Vocabulary) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	for _, e := range v.Entries {
		if _, err := bw.Write(e.Word); err != nil {
			return newError(IoError, "WriteVocabulary", "", err)
		}
		if err := bw.WriteByte(' '); err != nil {
			return newError(IoError, "WriteVocabulary", "", err)
		}
		if _, err := fmt.Fprintf(bw, "%d\n", e.Count); err != nil {
			return newError(IoError, "WriteVocabulary", "", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return newError(IoError, "WriteVocabulary", "", err)
	}
	return nil
}

// LoadVocabulary reads a vocabulary file (spec §6.2) into a wordTable keyed
// by word bytes, valued by 1-based rank, reusing the same table shape as
// the counting pass (spec §4.2.2: "same structure as §4.1"). Returns the
// table and V, the number of distinct words.
func LoadVocabulary(r io.Reader) (*wordTable, int32, error) {
	table := newWordTable()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*MaxTokenLength)

	var rank int32
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		sep := bytes.LastIndexByte(line, ' ')
		if sep <= 0 || sep == len(line)-1 {
			return nil, 0, newError(InvalidVocabulary, "LoadVocabulary", string(line),
				fmt.Errorf("expected \"<word> <count>\""))
		}
		word := line[:sep]
		rank++
		table.Insert(word, rank)
	}
	if err := scanner.Err(); err != nil {
		return nil, 0, newError(IoError, "LoadVocabulary", "", err)
	}
	if rank == 0 {
		return nil, 0, newError(InvalidVocabulary, "LoadVocabulary", "", fmt.Errorf("empty vocabulary"))
	}
	return table, rank, nil
}
