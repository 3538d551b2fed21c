package gbfs

import (
	"errors"
	"time"
)

// ErrFeedNotAdvanced is returned when a feed timestamp did not move forward
// since the previous accepted poll.
var ErrFeedNotAdvanced = errors.New("gbfs: feed timestamp did not advance")

// FeedTimestamp returns the last_updated time of a feed, nil when absent.
func FeedTimestamp(lastUpdated *int64) *time.Time {
	if lastUpdated == nil {
		return nil
	}
	ts := time.Unix(*lastUpdated, 0).UTC()
	return &ts
}

// IsFeedAdvanced reports whether current is after previous. Unknown
// timestamps on either side count as advanced.
func IsFeedAdvanced(previous, current *time.Time) bool {
	if previous == nil || current == nil {
		return true
	}
	return current.After(*previous)
}

// FeedStatus describes the freshness of a feed.
type FeedStatus struct {
	LagSeconds float64 `json:"lag_seconds"`
	IsStale    bool    `json:"is_stale"`
}

// DefaultStaleAfter is the lag beyond which a feed is considered stale.
const DefaultStaleAfter = 300 * time.Second

// ComputeLag is the age of feedTS at now, in seconds.
func ComputeLag(now, feedTS time.Time) float64 {
	return now.Sub(feedTS).Seconds()
}

// ComputeStatus reports lag and staleness against staleAfter.
func ComputeStatus(now, feedTS time.Time, staleAfter time.Duration) FeedStatus {
	lag := ComputeLag(now, feedTS)
	return FeedStatus{LagSeconds: lag, IsStale: lag > staleAfter.Seconds()}
}
