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
	maxVocab := flag.Int("max-vocab", 0, "upper bound on vocabulary size, 0 for unbounded")
	minCount := flag.Int("min-count", 1, "lower bound on word occurrence for it to be kept")
	easy.ParseFlagsAndArgs(nil)

	cfg := glove.DefaultVocabBuildConfig()
	cfg.Verbose = *verbose
	cfg.MaxVocab = *maxVocab
	cfg.MinCount = *minCount

	var vocab *glove.Vocabulary
	elapsed := easy.Timed(func() {
		var err error
		vocab, err = glove.BuildVocabulary(os.Stdin, cfg)
		if err != nil {
			glog.Fatal(err)
		}
	})
	if glog.V(1) {
		glog.Infof("kept %d words after filtering in %v", len(vocab.Entries), elapsed)
	}

	if err := glove.WriteVocabulary(os.Stdout, vocab); err != nil {
		glog.Fatal(err)
	}
}
