package binning

import (
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// FloorToBin truncates t to the start of its bin, in UTC.
func FloorToBin(t time.Time) time.Time {
	return t.UTC().Truncate(model.BinDuration)
}

// CeilToBin rounds t up to the next bin boundary unless it already is one.
func CeilToBin(t time.Time) time.Time {
	f := FloorToBin(t)
	if f.Equal(t) {
		return f
	}
	return f.Add(model.BinDuration)
}
