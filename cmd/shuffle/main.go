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
	memory := flag.Float64("memory", 2.0, "soft memory budget in GB")
	arraySize := flag.Int64("array-size", 0, "override the derived block size, 0 to derive")
	tempFile := flag.String("temp-file", "temp_shuffle", "prefix for temporary block files")
	easy.ParseFlagsAndArgs(nil)

	cfg := glove.DefaultShuffleConfig()
	cfg.Verbose = *verbose
	cfg.MemoryGB = *memory
	cfg.ArraySize = *arraySize
	cfg.TempFilePrefix = *tempFile

	s := glove.NewShuffler(cfg)
	elapsed := easy.Timed(func() {
		if err := s.Shuffle(os.Stdin, os.Stdout); err != nil {
			glog.Fatal(err)
		}
	})
	if glog.V(1) {
		glog.Infof("shuffling took %v", elapsed)
	}
}
