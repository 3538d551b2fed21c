package binning

import (
	"sort"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// Derive turns raw status rows into bin records.
//
// Row timestamps are floored to bins and the last observation of each
// (station, bin) wins. previous holds the latest stored record per station:
// rows at or before it are dropped since stored bins are immutable, and the
// first new bin takes its deltas against it so incremental ingestion matches
// a full recompute. info supplies the fallback capacity.
func Derive(rows []model.StatusRow, info map[string]model.StationInfo, previous map[string]model.BinRecord) []model.BinRecord {
	type key struct {
		station string
		ts      time.Time
	}
	latest := make(map[key]int, len(rows))
	for i, r := range rows {
		k := key{r.StationID, FloorToBin(r.TS)}
		if j, ok := latest[k]; ok && rows[j].TS.After(r.TS) {
			continue
		}
		latest[k] = i
	}

	byStation := make(map[string][]model.StatusRow)
	for k, i := range latest {
		r := rows[i]
		r.TS = k.ts
		byStation[k.station] = append(byStation[k.station], r)
	}

	out := make([]model.BinRecord, 0, len(latest))
	for _, id := range StationIDs(byStation) {
		group := byStation[id]
		sort.Slice(group, func(i, j int) bool { return group[i].TS.Before(group[j].TS) })

		var stationCap *int
		if si, ok := info[id]; ok {
			stationCap = si.Capacity
		}
		var prev *model.BinRecord
		if p, ok := previous[id]; ok {
			prev = &p
		}
		for _, r := range group {
			if prev != nil && !r.TS.After(prev.TS) {
				continue
			}
			rec := deriveRecord(r, stationCap)
			if prev != nil {
				rec.DeltaBikes = diff(rec.BikesAvailable, prev.BikesAvailable)
				rec.DeltaDocks = diff(rec.DocksAvailable, prev.DocksAvailable)
			}
			out = append(out, rec)
			cur := rec
			prev = &cur
		}
	}
	return out
}

func deriveRecord(r model.StatusRow, stationCap *int) model.BinRecord {
	capRes := EffectiveCapacity(r.BikesAvailable, r.DocksAvailable, stationCap)
	rel := AssessStatus(r, capRes)
	return model.BinRecord{
		StationID:         r.StationID,
		TS:                r.TS,
		BikesAvailable:    r.BikesAvailable,
		DocksAvailable:    r.DocksAvailable,
		Capacity:          capRes.Capacity,
		CapacitySource:    capRes.Source,
		IsReliable:        rel.IsReliable,
		ReliabilityReason: rel.Reason,
	}
}
