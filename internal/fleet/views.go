package fleet

import (
	"fmt"
	"sort"
	"time"

	"garagecore/pkg/domain"
)

// LicenseWarnWindowDays is the look-ahead window for expiring licenses.
const LicenseWarnWindowDays = 30

// UpcomingEntry is one scheduled maintenance record paired with its vehicle.
type UpcomingEntry struct {
	VehicleID string
	Model     string
	Record    domain.MaintenanceRecord
}

// UpcomingMaintenance returns maintenance records scheduled strictly after
// now, soonest first. A positive horizon limits the window to now+horizon;
// zero or negative means unbounded. Vehicles without parseable future records
// simply contribute nothing.
func (s *Store) UpcomingMaintenance(horizon time.Duration) []UpcomingEntry {
	now := s.nowFn()
	var cutoff time.Time
	if horizon > 0 {
		cutoff = now.Add(horizon)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []UpcomingEntry
	for _, v := range s.vehicles {
		for _, rec := range v.Maintenance {
			if !rec.IsValid() || !rec.Date.After(now) {
				continue
			}
			if !cutoff.IsZero() && rec.Date.After(cutoff) {
				continue
			}
			out = append(out, UpcomingEntry{VehicleID: v.ID, Model: v.Model, Record: rec})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Record.Date.Before(out[j].Record.Date)
	})
	return out
}

// LicenseAlert describes a vehicle whose license has expired or is expiring
// within the warning window.
type LicenseAlert struct {
	VehicleID string
	Model     string
	Plate     string
	Days      int
	Expired   bool
	Message   string
}

// midnight truncates t to the start of its day in t's location.
func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

// LicenseAlerts reports vehicles whose license expiry is past or within the
// warning window. The day difference is computed between calendar days, so a
// license expiring later today counts as zero days left, not expired.
// Expired alerts sort before expiring ones; within each group alerts sort by
// message text.
func (s *Store) LicenseAlerts() []LicenseAlert {
	today := midnight(s.nowFn())

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []LicenseAlert
	for _, v := range s.vehicles {
		if v.LicenseExpiry == nil {
			continue
		}
		days := int(midnight(*v.LicenseExpiry).Sub(today).Hours() / 24)
		if days > LicenseWarnWindowDays {
			continue
		}
		alert := LicenseAlert{
			VehicleID: v.ID,
			Model:     v.Model,
			Plate:     v.Plate,
			Days:      days,
			Expired:   days < 0,
		}
		if alert.Expired {
			alert.Message = fmt.Sprintf("%s (%s): license expired %d day(s) ago", v.Model, v.Plate, -days)
		} else {
			alert.Message = fmt.Sprintf("%s (%s): license expires in %d day(s)", v.Model, v.Plate, days)
		}
		out = append(out, alert)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Expired != out[j].Expired {
			return out[i].Expired
		}
		return out[i].Message < out[j].Message
	})
	return out
}

// DueAlert describes a maintenance record due today or tomorrow.
type DueAlert struct {
	VehicleID string
	Model     string
	Record    domain.MaintenanceRecord
	DueToday  bool
	Message   string
}

// DueSoonAlerts reports maintenance records falling between now and the end
// of tomorrow. Records due today sort before tomorrow's, then by date.
func (s *Store) DueSoonAlerts() []DueAlert {
	now := s.nowFn()
	endOfToday := midnight(now).Add(24 * time.Hour)
	endOfTomorrow := endOfToday.Add(24 * time.Hour)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []DueAlert
	for _, v := range s.vehicles {
		for _, rec := range v.Maintenance {
			if !rec.IsValid() || rec.Date.Before(now) || !rec.Date.Before(endOfTomorrow) {
				continue
			}
			alert := DueAlert{
				VehicleID: v.ID,
				Model:     v.Model,
				Record:    rec,
				DueToday:  rec.Date.Before(endOfToday),
			}
			when := "tomorrow"
			if alert.DueToday {
				when = "today"
			}
			alert.Message = fmt.Sprintf("%s: %s due %s (%s)", v.Model, rec.Type, when, rec.FormatWithTime())
			out = append(out, alert)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DueToday != out[j].DueToday {
			return out[i].DueToday
		}
		return out[i].Record.Date.Before(out[j].Record.Date)
	})
	return out
}
