// Package export writes plan log records for dispatch teams and spreadsheets.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/kilianp07/dockflow/core/planlog"
)

// Format names an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// ContentType returns the MIME type of f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// ParseFormat accepts "", "json" and "csv".
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Write encodes records to w in format f.
func Write(w io.Writer, f Format, records []planlog.Record) error {
	if f == FormatCSV {
		return WriteCSV(w, records)
	}
	return WriteJSON(w, records)
}

// WriteJSON writes the records as a JSON array.
func WriteJSON(w io.Writer, records []planlog.Record) error {
	if records == nil {
		records = []planlog.Record{}
	}
	return json.NewEncoder(w).Encode(records)
}

var csvHeader = []string{
	"timestamp", "plan_id", "status", "reason", "truck",
	"donor_station_id", "receiver_station_id", "quantity", "travel_minutes",
	"baseline_failure_minutes", "with_plan_failure_minutes", "published",
}

// WriteCSV writes one row per move. A plan without moves still gets a row
// with empty move columns.
func WriteCSV(w io.Writer, records []planlog.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, rec := range records {
		p := rec.Plan
		reason := ""
		if p.Reason != nil {
			reason = string(*p.Reason)
		}
		baseline, withPlan := "", ""
		if rec.Evaluation != nil {
			baseline = strconv.Itoa(rec.Evaluation.BaselineMinutes)
			withPlan = strconv.Itoa(rec.Evaluation.WithPlanMinutes)
		}
		head := []string{rec.Timestamp.UTC().Format(time.RFC3339), p.ID, string(p.Status), reason}
		tail := []string{baseline, withPlan, strconv.FormatBool(rec.Published)}
		if len(p.Moves) == 0 {
			row := append(append(head, "", "", "", "", ""), tail...)
			if err := cw.Write(row); err != nil {
				return err
			}
			continue
		}
		for _, m := range p.Moves {
			row := append([]string{}, head...)
			row = append(row,
				strconv.Itoa(m.Truck),
				m.DonorStationID,
				m.ReceiverStationID,
				strconv.Itoa(m.Quantity),
				strconv.Itoa(m.TravelMinutes),
			)
			if err := cw.Write(append(row, tail...)); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
