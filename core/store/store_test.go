package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/dockflow/core/model"
)

var t0 = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

func TestEnsureSchema(t *testing.T) {
	f := &fakeRunner{}
	require.NoError(t, EnsureSchema(context.Background(), f))
	require.Len(t, f.calls, len(schema))
	assert.Contains(t, f.calls[1].stmt, "primary key (station_id, ts)")
}

func TestWriteBins_Args(t *testing.T) {
	reason := model.ReasonCapacityMissing
	recs := []model.BinRecord{{
		StationID:         "s1",
		TS:                t0,
		BikesAvailable:    model.IntPtr(4),
		CapacitySource:    model.CapacityMissing,
		ReliabilityReason: &reason,
	}}
	f := &fakeRunner{answers: map[string][][]any{"returning": {{"s1"}}}}
	n, err := WriteBins(context.Background(), f, recs)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.Len(t, f.calls, 1)
	c := f.calls[0]
	assert.True(t, strings.Contains(c.stmt, "on conflict (station_id, ts) do nothing"))
	assert.Equal(t, []any{"s1", t0, int64(4), nil, nil, nil, nil, "missing", false, "capacity_missing"}, c.args)
}

func TestWriteBins_CountsOnlyInsertedRows(t *testing.T) {
	recs := []model.BinRecord{{StationID: "s1", TS: t0}, {StationID: "s2", TS: t0}}
	// conflicting rows come back empty from the returning clause
	f := &fakeRunner{}
	n, err := WriteBins(context.Background(), f, recs)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	require.Len(t, f.calls, 2)
	assert.Contains(t, f.calls[0].stmt, "returning station_id")
}

func TestAsTime_Layouts(t *testing.T) {
	want := time.Date(2024, 5, 1, 8, 5, 0, 0, time.UTC)
	for _, in := range []any{
		"2024-05-01 08:05:00+00:00",
		"2024-05-01T08:05:00Z",
		"2024-05-01 08:05:00",
		want.String(),
		[]byte(want.String()),
		want.Unix(),
	} {
		got, err := asTime(in)
		require.NoError(t, err, "%v", in)
		assert.True(t, got.Equal(want), "%v parsed as %s", in, got)
	}
	_, err := asTime("yesterday")
	assert.ErrorIs(t, err, ErrColumnType)
}

func TestWriteBins_Error(t *testing.T) {
	f := &fakeRunner{err: errors.New("boom")}
	n, err := WriteBins(context.Background(), f, []model.BinRecord{{StationID: "s", TS: t0}})
	require.Error(t, err)
	assert.Equal(t, 0, n)
}

func TestFetchLatestState_Scan(t *testing.T) {
	f := &fakeRunner{answers: map[string][][]any{
		"max(ts)": {
			{"a", "2024-05-01 08:00:00+00:00", int64(3), int64(7), nil, nil, int64(10), "status_sum", int64(1), nil},
			{"b", t0, int32(0), int32(9), int32(-1), int32(1), int32(9), "status_sum", false, "disabled"},
		},
	}}
	recs, err := FetchLatestState(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "a", recs[0].StationID)
	assert.True(t, recs[0].TS.Equal(t0))
	assert.Nil(t, recs[0].DeltaBikes)
	assert.True(t, recs[0].IsReliable)
	assert.Nil(t, recs[0].ReliabilityReason)
	require.NotNil(t, recs[1].DeltaBikes)
	assert.Equal(t, -1, *recs[1].DeltaBikes)
	require.NotNil(t, recs[1].ReliabilityReason)
	assert.Equal(t, model.ReasonDisabled, *recs[1].ReliabilityReason)
}

func TestFetchLatestState_BadRow(t *testing.T) {
	f := &fakeRunner{answers: map[string][][]any{"max(ts)": {{"a", t0}}}}
	_, err := FetchLatestState(context.Background(), f)
	assert.ErrorIs(t, err, ErrColumnType)
}

func TestFetchReplayBins(t *testing.T) {
	f := &fakeRunner{}
	_, err := FetchReplayBins(context.Background(), f, t0, t0)
	require.Error(t, err)
	_, err = FetchReplayBins(context.Background(), f, t0, t0.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, f.calls, 1)
	assert.Equal(t, []any{t0, t0.Add(time.Hour)}, f.calls[0].args)
}

func TestLatestByStation(t *testing.T) {
	recs := []model.BinRecord{
		{StationID: "a", TS: t0.Add(5 * time.Minute)},
		{StationID: "a", TS: t0},
		{StationID: "b", TS: t0},
	}
	out := LatestByStation(recs)
	assert.Len(t, out, 2)
	assert.True(t, out["a"].TS.Equal(t0.Add(5*time.Minute)))
}

func TestStations_RoundTrip(t *testing.T) {
	f := &fakeRunner{answers: map[string][][]any{
		"from stations": {{"a", "Main St", 40.7, -74.0, int64(15)}, {"b", nil, nil, nil, nil}},
	}}
	err := UpsertStations(context.Background(), f, []model.StationInfo{{StationID: "a", Name: model.StringPtr("Main St")}}, t0)
	require.NoError(t, err)
	assert.Contains(t, f.calls[0].stmt, "do update set")
	assert.Equal(t, []any{"a", "Main St", nil, nil, nil, t0}, f.calls[0].args)

	got, err := FetchStations(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotNil(t, got["a"].Capacity)
	assert.Equal(t, 15, *got["a"].Capacity)
	assert.Nil(t, got["b"].Lat)
}
