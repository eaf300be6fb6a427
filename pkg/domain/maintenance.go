package domain

import (
	"sort"
	"strings"
	"time"
)

// Date layouts accepted for maintenance dates and license expiries, tried in order.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDate parses a date string using the accepted layouts. The zero time and
// false are returned when no layout matches.
func ParseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// NewMaintenanceRecord builds a record from raw user input. It never fails:
// an unparseable date is stored as the zero time and a negative cost clamps to
// zero, leaving IsValid to report the outcome.
func NewMaintenanceRecord(date, typ string, cost float64, description string) MaintenanceRecord {
	parsed, _ := ParseDate(date)
	if cost < 0 {
		cost = 0
	}
	return MaintenanceRecord{
		Date:        parsed,
		Type:        strings.TrimSpace(typ),
		Cost:        cost,
		Description: strings.TrimSpace(description),
	}
}

// IsValid reports whether the record may be persisted: the date parsed to a
// real instant and the type is non-empty after trimming.
func (r MaintenanceRecord) IsValid() bool {
	return !r.Date.IsZero() && strings.TrimSpace(r.Type) != ""
}

// FormatShort renders the date without time-of-day, used for past records.
func (r MaintenanceRecord) FormatShort() string {
	return r.Date.Format("Jan 2, 2006")
}

// FormatWithTime renders the date including time-of-day, used for scheduled records.
func (r MaintenanceRecord) FormatWithTime() string {
	return r.Date.Format("Jan 2, 2006 3:04 PM")
}

// SerializedMaintenanceRecord is the flat persisted shape of a record.
type SerializedMaintenanceRecord struct {
	Date        string  `json:"date"`
	Type        string  `json:"type"`
	Cost        float64 `json:"cost"`
	Description string  `json:"description,omitempty"`
}

// Serialize returns the persisted shape of the record. The second return is
// false for invalid records; callers must drop those before persisting.
func (r MaintenanceRecord) Serialize() (SerializedMaintenanceRecord, bool) {
	if !r.IsValid() {
		return SerializedMaintenanceRecord{}, false
	}
	return SerializedMaintenanceRecord{
		Date:        r.Date.Format(time.RFC3339),
		Type:        r.Type,
		Cost:        r.Cost,
		Description: r.Description,
	}, true
}

// SortMaintenance orders records by date descending in place. Records without
// a valid date carry the zero time and therefore sort oldest.
func SortMaintenance(recs []MaintenanceRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Date.After(recs[j].Date)
	})
}
