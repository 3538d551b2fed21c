package model

// RiskAssessment is the near-term urgency of one station. It is recomputed
// every planning cycle and never persisted.
type RiskAssessment struct {
	StationID          string   `json:"station_id"`
	Drift              float64  `json:"drift"`
	MinutesToThreshold *float64 `json:"minutes_to_threshold"`
	Risk               float64  `json:"risk"`
}
