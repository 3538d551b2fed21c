package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

const binColumns = `station_id, ts, bikes_available, docks_available, delta_bikes, delta_docks,
	capacity, capacity_source, is_reliable, reliability_reason`

const insertBin = `insert into station_bins (` + binColumns + `)
	values (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	on conflict (station_id, ts) do nothing
	returning station_id`

// WriteBins inserts records, ignoring bins already stored for the same
// station and timestamp. It returns the number of rows actually inserted.
func WriteBins(ctx context.Context, r Runner, records []model.BinRecord) (int, error) {
	written := 0
	for _, rec := range records {
		var reason any
		if rec.ReliabilityReason != nil {
			reason = string(*rec.ReliabilityReason)
		}
		args := []any{
			rec.StationID, rec.TS.UTC(),
			intArg(rec.BikesAvailable), intArg(rec.DocksAvailable),
			intArg(rec.DeltaBikes), intArg(rec.DeltaDocks),
			intArg(rec.Capacity), string(rec.CapacitySource),
			rec.IsReliable, reason,
		}
		rows, err := r.Run(ctx, insertBin, args)
		if err != nil {
			return written, fmt.Errorf("write bin %s@%s: %w", rec.StationID, rec.TS.Format(time.RFC3339), err)
		}
		written += len(rows)
	}
	return written, nil
}

// FetchLatestState returns the most recent bin of every station.
func FetchLatestState(ctx context.Context, r Runner) ([]model.BinRecord, error) {
	stmt := `select ` + prefixed("b") + ` from station_bins b
	join (select station_id, max(ts) as ts from station_bins group by station_id) m
	  on m.station_id = b.station_id and m.ts = b.ts
	order by b.station_id`
	return queryBins(ctx, r, stmt, nil)
}

// FetchLatestBins returns every bin at or after since, ordered by station
// and time.
func FetchLatestBins(ctx context.Context, r Runner, since time.Time) ([]model.BinRecord, error) {
	stmt := `select ` + binColumns + ` from station_bins where ts >= ? order by station_id, ts`
	return queryBins(ctx, r, stmt, []any{since.UTC()})
}

// FetchReplayBins returns bins in [start, end), ordered by station and time.
func FetchReplayBins(ctx context.Context, r Runner, start, end time.Time) ([]model.BinRecord, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("replay window: end %s not after start %s", end, start)
	}
	stmt := `select ` + binColumns + ` from station_bins where ts >= ? and ts < ? order by station_id, ts`
	return queryBins(ctx, r, stmt, []any{start.UTC(), end.UTC()})
}

// LatestByStation indexes records by station, keeping the latest of each.
func LatestByStation(records []model.BinRecord) map[string]model.BinRecord {
	out := make(map[string]model.BinRecord, len(records))
	for _, rec := range records {
		if prev, ok := out[rec.StationID]; ok && !rec.TS.After(prev.TS) {
			continue
		}
		out[rec.StationID] = rec
	}
	return out
}

func prefixed(alias string) string {
	return alias + `.station_id, ` + alias + `.ts, ` + alias + `.bikes_available, ` + alias + `.docks_available, ` +
		alias + `.delta_bikes, ` + alias + `.delta_docks, ` + alias + `.capacity, ` + alias + `.capacity_source, ` +
		alias + `.is_reliable, ` + alias + `.reliability_reason`
}

func queryBins(ctx context.Context, r Runner, stmt string, args []any) ([]model.BinRecord, error) {
	rows, err := r.Run(ctx, stmt, args)
	if err != nil {
		return nil, fmt.Errorf("query bins: %w", err)
	}
	out := make([]model.BinRecord, 0, len(rows))
	for _, row := range rows {
		rec, err := scanBin(row)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func scanBin(row []any) (model.BinRecord, error) {
	var rec model.BinRecord
	if len(row) != 10 {
		return rec, fmt.Errorf("%w: bin row has %d columns", ErrColumnType, len(row))
	}
	id, err := asStringPtr(row[0])
	if err != nil || id == nil {
		return rec, fmt.Errorf("%w: station_id", ErrColumnType)
	}
	rec.StationID = *id
	if rec.TS, err = asTime(row[1]); err != nil {
		return rec, err
	}
	ints := []**int{&rec.BikesAvailable, &rec.DocksAvailable, &rec.DeltaBikes, &rec.DeltaDocks, &rec.Capacity}
	for i, dst := range ints {
		if *dst, err = asIntPtr(row[2+i]); err != nil {
			return rec, err
		}
	}
	src, err := asStringPtr(row[7])
	if err != nil || src == nil {
		return rec, fmt.Errorf("%w: capacity_source", ErrColumnType)
	}
	rec.CapacitySource = model.CapacitySource(*src)
	if rec.IsReliable, err = asBool(row[8]); err != nil {
		return rec, err
	}
	reason, err := asStringPtr(row[9])
	if err != nil {
		return rec, err
	}
	if reason != nil {
		rr := model.ReliabilityReason(*reason)
		rec.ReliabilityReason = &rr
	}
	return rec, nil
}
