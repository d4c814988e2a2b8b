package main

import (
	"flag"
	"os"

	"github.com/golang/glog"
	"github.com/kho/easy"

	"github.com/jileiwang/GloVe"
)

func main() {
	verbose := flag.Int("verbose", 2, "0, 1, or 2")
	symmetric := flag.Bool("symmetric", true, "count both left and right context as 1, 0 for left context only")
	windowSize := flag.Int("window-size", 15, "number of context words on each side")
	vocabFile := flag.String("vocab-file", "vocab.txt", "file holding ranked unigram counts")
	memory := flag.Float64("memory", 3.0, "soft memory budget in GB")
	maxProduct := flag.Int64("max-product", 0, "override the derived dense/overflow split threshold, 0 to derive")
	overflowLength := flag.Int64("overflow-length", 0, "override the derived overflow buffer length, 0 to derive")
	overflowFile := flag.String("overflow-file", "overflow", "prefix for temporary overflow files")
	easy.ParseFlagsAndArgs(nil)

	cfg := glove.DefaultCooccurConfig()
	cfg.Verbose = *verbose
	cfg.Symmetric = *symmetric
	cfg.WindowSize = *windowSize
	cfg.MemoryGB = *memory
	cfg.MaxProduct = *maxProduct
	cfg.OverflowLength = *overflowLength
	cfg.OverflowFilePrefix = *overflowFile

	vocab, err := easy.Open(*vocabFile)
	if err != nil {
		glog.Fatal(err)
	}
	acc, err := glove.NewAccumulator(vocab, cfg)
	vocab.Close()
	if err != nil {
		glog.Fatal(err)
	}

	elapsed := easy.Timed(func() {
		if err := acc.ProcessCorpus(os.Stdin); err != nil {
			glog.Fatal(err)
		}
	})
	if glog.V(1) {
		glog.Infof("scanning the corpus took %v", elapsed)
	}

	if err := acc.Finalize(os.Stdout); err != nil {
		glog.Fatal(err)
	}
}
