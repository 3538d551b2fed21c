package binning

import (
	"sort"

	"github.com/kilianp07/dockflow/core/model"
)

// GroupByStation partitions rows by station. Each group is sorted by
// timestamp ascending; rows sharing a timestamp keep their input order.
func GroupByStation(rows []model.BinRow) map[string][]model.BinRow {
	grouped := make(map[string][]model.BinRow)
	for _, r := range rows {
		grouped[r.StationID] = append(grouped[r.StationID], r)
	}
	for id := range grouped {
		g := grouped[id]
		sort.SliceStable(g, func(i, j int) bool { return g[i].TS.Before(g[j].TS) })
	}
	return grouped
}

// StationIDs returns the keys of a grouping in ascending order.
func StationIDs[T any](grouped map[string][]T) []string {
	ids := make([]string, 0, len(grouped))
	for id := range grouped {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
