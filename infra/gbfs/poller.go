package gbfs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/dockflow/core/logger"
	"github.com/kilianp07/dockflow/core/model"
)

// Fetcher downloads raw feed payloads. It is implemented by Client.
type Fetcher interface {
	FetchInformation(ctx context.Context) ([]byte, error)
	FetchStatus(ctx context.Context) ([]byte, error)
}

// Snapshot is one accepted poll of both feeds.
type Snapshot struct {
	Information Feed[StationInformation]
	Status      Feed[StationStatus]
	InfoTS      *time.Time
	StatusTS    *time.Time
	FetchedAt   time.Time
}

// ObservedAt is the status feed time, or the fetch time when the feed omits it.
func (s Snapshot) ObservedAt() time.Time {
	if s.StatusTS != nil {
		return *s.StatusTS
	}
	return s.FetchedAt
}

// Stations returns the station metadata of the snapshot.
func (s Snapshot) Stations() []model.StationInfo { return Stations(s.Information) }

// StatusRows returns the status rows of the snapshot.
func (s Snapshot) StatusRows() []model.StatusRow { return StatusRows(s.Status, s.ObservedAt()) }

// Handler consumes an accepted snapshot.
type Handler func(ctx context.Context, snap Snapshot) error

// Poller fetches both feeds on an interval and hands accepted snapshots to a
// handler. A cycle whose feed timestamps did not advance is skipped.
type Poller struct {
	fetcher     Fetcher
	handler     Handler
	interval    time.Duration
	snapshotDir string
	log         logger.Logger
	now         func() time.Time

	// OnError is called for every failed cycle.
	OnError func(error)

	mu         sync.Mutex
	prevInfo   *time.Time
	prevStatus *time.Time
}

// NewPoller creates a poller using cfg for interval and snapshot settings.
func NewPoller(cfg Config, f Fetcher, h Handler, log logger.Logger) *Poller {
	cfg.SetDefaults()
	return &Poller{
		fetcher:     f,
		handler:     h,
		interval:    time.Duration(cfg.PollIntervalSeconds) * time.Second,
		snapshotDir: cfg.SnapshotDir,
		log:         log,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Start polls immediately and then on every tick until ctx is done.
func (p *Poller) Start(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.cycle(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.cycle(ctx)
		}
	}
}

func (p *Poller) cycle(ctx context.Context) {
	if err := p.RunOnce(ctx); err != nil {
		p.log.Errorf("poll error: %v", err)
		if p.OnError != nil {
			p.OnError(err)
		}
	}
}

// RunOnce performs one poll and passes the snapshot to the handler.
func (p *Poller) RunOnce(ctx context.Context) error {
	snap, err := p.PollOnce(ctx)
	if err != nil {
		return err
	}
	if p.handler == nil {
		return nil
	}
	if err := p.handler(ctx, snap); err != nil {
		return fmt.Errorf("handle snapshot: %w", err)
	}
	return nil
}

// PollOnce fetches and validates both feeds. The previous timestamps only
// move forward when both feeds advanced.
func (p *Poller) PollOnce(ctx context.Context) (Snapshot, error) {
	infoRaw, err := p.fetcher.FetchInformation(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	statusRaw, err := p.fetcher.FetchStatus(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	info, err := ParseInformation(infoRaw)
	if err != nil {
		return Snapshot{}, err
	}
	status, err := ParseStatus(statusRaw)
	if err != nil {
		return Snapshot{}, err
	}
	snap := Snapshot{
		Information: info,
		Status:      status,
		InfoTS:      FeedTimestamp(info.LastUpdated),
		StatusTS:    FeedTimestamp(status.LastUpdated),
		FetchedAt:   p.now(),
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if !IsFeedAdvanced(p.prevInfo, snap.InfoTS) {
		return Snapshot{}, fmt.Errorf("station_information: %w", ErrFeedNotAdvanced)
	}
	if !IsFeedAdvanced(p.prevStatus, snap.StatusTS) {
		return Snapshot{}, fmt.Errorf("station_status: %w", ErrFeedNotAdvanced)
	}
	p.prevInfo, p.prevStatus = snap.InfoTS, snap.StatusTS

	if p.snapshotDir != "" {
		if _, err := WriteSnapshot(p.snapshotDir, "station_information", infoRaw); err != nil {
			p.log.Warnf("snapshot station_information: %v", err)
		}
		if _, err := WriteSnapshot(p.snapshotDir, "station_status", statusRaw); err != nil {
			p.log.Warnf("snapshot station_status: %v", err)
		}
	}
	return snap, nil
}
