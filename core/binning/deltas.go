package binning

import "github.com/kilianp07/dockflow/core/model"

// DeltaRow is a raw row with the change since the previous row of the same
// station. Deltas are nil on the first row of a station and whenever either
// side of the pair is unknown.
type DeltaRow struct {
	model.BinRow
	DeltaBikes *int `json:"delta_bikes"`
	DeltaDocks *int `json:"delta_docks"`
}

// ComputeDeltas returns one DeltaRow per input row, ordered by station id and
// then timestamp. Stations never influence each other.
func ComputeDeltas(rows []model.BinRow) []DeltaRow {
	grouped := GroupByStation(rows)
	out := make([]DeltaRow, 0, len(rows))
	for _, id := range StationIDs(grouped) {
		var prev *model.BinRow
		for _, r := range grouped[id] {
			d := DeltaRow{BinRow: r}
			if prev != nil {
				d.DeltaBikes = diff(r.BikesAvailable, prev.BikesAvailable)
				d.DeltaDocks = diff(r.DocksAvailable, prev.DocksAvailable)
			}
			out = append(out, d)
			cur := r
			prev = &cur
		}
	}
	return out
}

func diff(cur, prev *int) *int {
	if cur == nil || prev == nil {
		return nil
	}
	d := *cur - *prev
	return &d
}
