package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`create table if not exists stations (
		station_id text primary key,
		name text,
		lat double precision,
		lon double precision,
		capacity integer,
		updated_at timestamptz not null
	)`,
	`create table if not exists station_bins (
		station_id text not null,
		ts timestamptz not null,
		bikes_available integer,
		docks_available integer,
		delta_bikes integer,
		delta_docks integer,
		capacity integer,
		capacity_source text not null,
		is_reliable boolean not null,
		reliability_reason text,
		primary key (station_id, ts)
	)`,
	`create index if not exists station_bins_ts_idx on station_bins (ts)`,
}

// EnsureSchema creates the tables when missing.
func EnsureSchema(ctx context.Context, r Runner) error {
	for _, stmt := range schema {
		if _, err := r.Run(ctx, stmt, nil); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
