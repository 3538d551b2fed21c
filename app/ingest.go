package app

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/binning"
	"github.com/kilianp07/dockflow/core/events"
	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
	"github.com/kilianp07/dockflow/core/store"
	"github.com/kilianp07/dockflow/infra/gbfs"
	"github.com/kilianp07/dockflow/internal/eventbus"
)

// Ingester derives bins from accepted feed snapshots and stores them.
type Ingester struct {
	runner     store.Runner
	bus        *eventbus.TypedBus[events.Event]
	staleAfter time.Duration
	log        logger.Logger
	now        func() time.Time
}

// NewIngester creates an ingester writing through r. bus may be nil.
func NewIngester(r store.Runner, bus *eventbus.TypedBus[events.Event], staleAfter time.Duration, log logger.Logger) *Ingester {
	if staleAfter <= 0 {
		staleAfter = gbfs.DefaultStaleAfter
	}
	return &Ingester{runner: r, bus: bus, staleAfter: staleAfter, log: log, now: func() time.Time { return time.Now().UTC() }}
}

// IngestResult summarises one stored snapshot.
type IngestResult struct {
	Stations   int `json:"stations"`
	Bins       int `json:"bins"`
	Written    int `json:"written"`
	Unreliable int `json:"unreliable"`
}

// Handle stores station metadata, derives new bins against the latest
// stored state and writes them. It matches gbfs.Handler.
func (i *Ingester) Handle(ctx context.Context, snap gbfs.Snapshot) error {
	_, err := i.Ingest(ctx, snap)
	return err
}

// Ingest is Handle returning the cycle summary.
func (i *Ingester) Ingest(ctx context.Context, snap gbfs.Snapshot) (IngestResult, error) {
	start := time.Now()
	observed := snap.ObservedAt()

	stations := snap.Stations()
	if err := store.UpsertStations(ctx, i.runner, stations, observed); err != nil {
		return IngestResult{}, fmt.Errorf("upsert stations: %w", err)
	}
	info := make(map[string]model.StationInfo, len(stations))
	for _, s := range stations {
		info[s.StationID] = s
	}

	latest, err := store.FetchLatestState(ctx, i.runner)
	if err != nil {
		return IngestResult{}, fmt.Errorf("fetch latest state: %w", err)
	}
	records := binning.Derive(snap.StatusRows(), info, store.LatestByStation(latest))
	written, err := store.WriteBins(ctx, i.runner, records)
	if err != nil {
		return IngestResult{}, fmt.Errorf("write bins: %w", err)
	}

	res := IngestResult{Stations: len(stations), Bins: len(records), Written: written}
	for _, r := range records {
		if !r.IsReliable {
			res.Unreliable++
		}
	}
	i.log.Infof("ingested %d bins (%d new, %d unreliable) for %d stations", res.Bins, res.Written, res.Unreliable, res.Stations)

	now := i.now()
	i.publishFeed("station_information", snap.InfoTS, now)
	i.publishFeed("station_status", snap.StatusTS, now)
	i.publish(events.IngestEvent{
		Stations:   res.Stations,
		Bins:       res.Written,
		Unreliable: res.Unreliable,
		FeedTS:     observed,
		Duration:   time.Since(start),
		Time:       now,
	})
	return res, nil
}

func (i *Ingester) publishFeed(feed string, ts *time.Time, now time.Time) {
	if ts == nil {
		return
	}
	st := gbfs.ComputeStatus(now, *ts, i.staleAfter)
	if st.IsStale {
		i.log.Warnf("%s is stale: lag %.0fs", feed, st.LagSeconds)
	}
	i.publish(events.FeedEvent{Feed: feed, LagSeconds: st.LagSeconds, Stale: st.IsStale, Time: now})
}

func (i *Ingester) publish(ev events.Event) {
	if i.bus != nil {
		i.bus.Publish(ev)
	}
}
