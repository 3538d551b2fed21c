// Package gbfs reads the GBFS station feeds and turns them into status rows.
package gbfs

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kilianp07/dockflow/core/model"
)

// Feed is the common GBFS envelope.
type Feed[T any] struct {
	LastUpdated *int64 `json:"last_updated"`
	TTL         int    `json:"ttl"`
	Data        struct {
		Stations []T `json:"stations"`
	} `json:"data"`
}

// StationInformation is one entry of station_information.json.
type StationInformation struct {
	StationID string   `json:"station_id"`
	Name      *string  `json:"name"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	Capacity  *int     `json:"capacity"`
}

// StationStatus is one entry of station_status.json.
type StationStatus struct {
	StationID         string    `json:"station_id"`
	NumBikesAvailable *int      `json:"num_bikes_available"`
	NumDocksAvailable *int      `json:"num_docks_available"`
	NumBikesDisabled  *int      `json:"num_bikes_disabled"`
	NumDocksDisabled  *int      `json:"num_docks_disabled"`
	IsInstalled       *FlexBool `json:"is_installed"`
	IsRenting         *FlexBool `json:"is_renting"`
	IsReturning       *FlexBool `json:"is_returning"`
	LastReported      *int64    `json:"last_reported"`
}

// FlexBool accepts both the 0/1 integers of GBFS 1.x and JSON booleans.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "true", "1":
		*b = true
	case "false", "0":
		*b = false
	default:
		return fmt.Errorf("gbfs: invalid flag %s", data)
	}
	return nil
}

func (b *FlexBool) ptr() *bool {
	if b == nil {
		return nil
	}
	v := bool(*b)
	return &v
}

// ParseInformation decodes a station_information payload.
func ParseInformation(payload []byte) (Feed[StationInformation], error) {
	var f Feed[StationInformation]
	if err := json.Unmarshal(payload, &f); err != nil {
		return f, fmt.Errorf("decode station_information: %w", err)
	}
	return f, nil
}

// ParseStatus decodes a station_status payload.
func ParseStatus(payload []byte) (Feed[StationStatus], error) {
	var f Feed[StationStatus]
	if err := json.Unmarshal(payload, &f); err != nil {
		return f, fmt.Errorf("decode station_status: %w", err)
	}
	return f, nil
}

// Stations converts the information feed to model stations. Entries without
// an id are skipped.
func Stations(f Feed[StationInformation]) []model.StationInfo {
	out := make([]model.StationInfo, 0, len(f.Data.Stations))
	for _, s := range f.Data.Stations {
		if s.StationID == "" {
			continue
		}
		out = append(out, model.StationInfo(s))
	}
	return out
}

// StatusRows converts the status feed to rows observed at ts.
func StatusRows(f Feed[StationStatus], ts time.Time) []model.StatusRow {
	out := make([]model.StatusRow, 0, len(f.Data.Stations))
	for _, s := range f.Data.Stations {
		if s.StationID == "" {
			continue
		}
		out = append(out, model.StatusRow{
			BinRow: model.BinRow{
				StationID:      s.StationID,
				TS:             ts.UTC(),
				BikesAvailable: s.NumBikesAvailable,
				DocksAvailable: s.NumDocksAvailable,
			},
			IsInstalled:      s.IsInstalled.ptr(),
			IsRenting:        s.IsRenting.ptr(),
			IsReturning:      s.IsReturning.ptr(),
			NumBikesDisabled: s.NumBikesDisabled,
			NumDocksDisabled: s.NumDocksDisabled,
		})
	}
	return out
}
