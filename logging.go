package glove

import (
	"github.com/dustin/go-humanize"
	"github.com/golang/glog"
)

// logMemoryBudget reports the derived memory plan when glog's -v level is
// at least 1 (the stage Config's Verbose field is not consulted), the same
// spot the teacher logs state counts from Builder.prune() (builder.go).
func logMemoryBudget(label string, m MemoryBudget) {
	if glog.V(1) {
		glog.Infof(
			"%s: soft budget %s -> dense %s (R=%d records), overflow %s (O=%d records), max-product P=%d",
			label,
			humanize.Bytes(uint64(m.SoftLimit)),
			humanize.Bytes(uint64(m.R)*RecordSize), m.R,
			humanize.Bytes(uint64(m.O)*RecordSize), m.O,
			m.P,
		)
	}
}
