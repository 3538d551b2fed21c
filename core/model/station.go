package model

import "time"

// BinMinutes is the width of one aggregation bin.
const BinMinutes = 5

// BinDuration is BinMinutes as a time.Duration.
const BinDuration = BinMinutes * time.Minute

// BinRow is a raw per-station status observation as read from the store.
type BinRow struct {
	StationID      string    `json:"station_id"`
	TS             time.Time `json:"ts"`
	BikesAvailable *int      `json:"bikes_available"`
	DocksAvailable *int      `json:"docks_available"`
}

// StatusRow is a BinRow enriched with the GBFS operational flags of the
// station at observation time. Nil flags mean the feed omitted them.
type StatusRow struct {
	BinRow
	IsInstalled      *bool `json:"is_installed,omitempty"`
	IsRenting        *bool `json:"is_renting,omitempty"`
	IsReturning      *bool `json:"is_returning,omitempty"`
	NumBikesDisabled *int  `json:"num_bikes_disabled,omitempty"`
	NumDocksDisabled *int  `json:"num_docks_disabled,omitempty"`
}

// StationInfo holds the static metadata published in station_information.
type StationInfo struct {
	StationID string   `json:"station_id"`
	Name      *string  `json:"name,omitempty"`
	Lat       *float64 `json:"lat,omitempty"`
	Lon       *float64 `json:"lon,omitempty"`
	Capacity  *int     `json:"capacity,omitempty"`
}

// CapacitySource tells where an effective capacity value came from.
type CapacitySource string

const (
	CapacityStatusSum   CapacitySource = "status_sum"
	CapacityStationInfo CapacitySource = "station_info"
	CapacityMissing     CapacitySource = "missing"
)

// ReliabilityReason explains why a bin is not trusted. The set is closed.
type ReliabilityReason string

const (
	ReasonOffline         ReliabilityReason = "offline"
	ReasonDisabled        ReliabilityReason = "disabled"
	ReasonCapacityMissing ReliabilityReason = "capacity_missing"
	ReasonStatusInvalid   ReliabilityReason = "status_invalid"
)

// Valid reports whether r belongs to the known reason set.
func (r ReliabilityReason) Valid() bool {
	switch r {
	case ReasonOffline, ReasonDisabled, ReasonCapacityMissing, ReasonStatusInvalid:
		return true
	}
	return false
}

// BinRecord is the derived, immutable state of one station for one bin.
type BinRecord struct {
	StationID         string             `json:"station_id"`
	TS                time.Time          `json:"ts"`
	BikesAvailable    *int               `json:"bikes_available"`
	DocksAvailable    *int               `json:"docks_available"`
	DeltaBikes        *int               `json:"delta_bikes"`
	DeltaDocks        *int               `json:"delta_docks"`
	Capacity          *int               `json:"capacity"`
	CapacitySource    CapacitySource     `json:"capacity_source"`
	IsReliable        bool               `json:"is_reliable"`
	ReliabilityReason *ReliabilityReason `json:"reliability_reason"`
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

// BoolPtr returns a pointer to v.
func BoolPtr(v bool) *bool { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }

// StringPtr returns a pointer to v.
func StringPtr(v string) *string { return &v }
