// Package binning derives per-station bin state from raw status rows.
//
// Rows are grouped by station and ordered by timestamp, deltas are computed
// between consecutive bins of the same station, an effective capacity is
// inferred from the live status or the static station metadata, and every
// derived record is tagged with a reliability verdict. All functions are pure
// and total: missing optional fields propagate as nil instead of failing.
package binning
