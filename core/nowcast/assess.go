package nowcast

import (
	"sort"

	"github.com/kilianp07/dockflow/core/model"
)

// Assess computes the risk of one station from its bin history, oldest first.
//
// Drift is the windowed mean of the reliable bike deltas. An emptying station
// is projected towards zero bikes, a filling one towards zero free docks.
// A station whose latest bin is unreliable or has no bike count is not urgent.
func Assess(stationID string, records []model.BinRecord, window int) model.RiskAssessment {
	ra := model.RiskAssessment{StationID: stationID}
	if len(records) == 0 {
		return ra
	}
	var deltas []int
	for _, r := range records {
		if r.IsReliable && r.DeltaBikes != nil {
			deltas = append(deltas, *r.DeltaBikes)
		}
	}
	ra.Drift = WindowedDrift(deltas, window)

	last := records[len(records)-1]
	if !last.IsReliable || last.BikesAvailable == nil {
		return ra
	}
	current := float64(*last.BikesAvailable)
	drift := ra.Drift
	if drift > 0 {
		if last.Capacity == nil {
			return ra
		}
		current = float64(*last.Capacity - *last.BikesAvailable)
		drift = -drift
	}
	ra.MinutesToThreshold = ProjectedMinutesToThreshold(current, drift)
	ra.Risk = RiskFromMinutes(ra.MinutesToThreshold)
	return ra
}

// AssessAll groups records by station and assesses each one.
func AssessAll(records []model.BinRecord, window int) map[string]model.RiskAssessment {
	grouped := make(map[string][]model.BinRecord)
	for _, r := range records {
		grouped[r.StationID] = append(grouped[r.StationID], r)
	}
	out := make(map[string]model.RiskAssessment, len(grouped))
	for id, recs := range grouped {
		sort.SliceStable(recs, func(i, j int) bool { return recs[i].TS.Before(recs[j].TS) })
		out[id] = Assess(id, recs, window)
	}
	return out
}
