// Package events defines the ingestion and planning events published on the
// event bus.
//
// Available event types:
//   - IngestEvent: one feed cycle written to the store
//   - FeedEvent: freshness of a feed or a failed poll
//   - RiskEvent: risk assessments of a planning cycle
//   - PlanEvent: optimizer outcome and its simulated evaluation
//   - PublishEvent: plan publication result
package events
