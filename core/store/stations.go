package store

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

const upsertStation = `insert into stations (station_id, name, lat, lon, capacity, updated_at)
	values (?, ?, ?, ?, ?, ?)
	on conflict (station_id) do update set
		name = excluded.name,
		lat = excluded.lat,
		lon = excluded.lon,
		capacity = excluded.capacity,
		updated_at = excluded.updated_at`

// UpsertStations inserts or refreshes station metadata.
func UpsertStations(ctx context.Context, r Runner, stations []model.StationInfo, at time.Time) error {
	for _, s := range stations {
		args := []any{s.StationID, stringArg(s.Name), floatArg(s.Lat), floatArg(s.Lon), intArg(s.Capacity), at.UTC()}
		if _, err := r.Run(ctx, upsertStation, args); err != nil {
			return fmt.Errorf("upsert station %s: %w", s.StationID, err)
		}
	}
	return nil
}

// FetchStations returns the stored metadata keyed by station id.
func FetchStations(ctx context.Context, r Runner) (map[string]model.StationInfo, error) {
	rows, err := r.Run(ctx, `select station_id, name, lat, lon, capacity from stations order by station_id`, nil)
	if err != nil {
		return nil, fmt.Errorf("query stations: %w", err)
	}
	out := make(map[string]model.StationInfo, len(rows))
	for _, row := range rows {
		if len(row) != 5 {
			return nil, fmt.Errorf("%w: station row has %d columns", ErrColumnType, len(row))
		}
		id, err := asStringPtr(row[0])
		if err != nil || id == nil {
			return nil, fmt.Errorf("%w: station_id", ErrColumnType)
		}
		s := model.StationInfo{StationID: *id}
		if s.Name, err = asStringPtr(row[1]); err != nil {
			return nil, err
		}
		if s.Lat, err = asFloatPtr(row[2]); err != nil {
			return nil, err
		}
		if s.Lon, err = asFloatPtr(row[3]); err != nil {
			return nil, err
		}
		if s.Capacity, err = asIntPtr(row[4]); err != nil {
			return nil, err
		}
		out[s.StationID] = s
	}
	return out, nil
}
