package fleet

import (
	"context"
	"testing"
	"time"

	"garagecore/internal/infra/kv/memory"
	"garagecore/pkg/domain"
)

var viewNow = time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)

func newViewStore(t *testing.T) *Store {
	t.Helper()
	return New(memory.New(), WithClock(func() time.Time { return viewNow }))
}

func addWithExpiry(t *testing.T, s *Store, id, model string, expiry time.Time) {
	t.Helper()
	v, err := domain.NewVehicle(domain.VehicleInput{
		ID:            id,
		Model:         model,
		Plate:         id,
		LicenseExpiry: expiry.Format("2006-01-02"),
	})
	if err != nil {
		t.Fatalf("NewVehicle: %v", err)
	}
	if _, err := s.AddVehicle(context.Background(), v); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func TestLicenseAlertBoundaries(t *testing.T) {
	s := newViewStore(t)
	addWithExpiry(t, s, "expired", "Corolla", viewNow.AddDate(0, 0, -1))
	addWithExpiry(t, s, "today", "Camry", viewNow)
	addWithExpiry(t, s, "edge", "Supra", viewNow.AddDate(0, 0, 30))
	addWithExpiry(t, s, "beyond", "Actros", viewNow.AddDate(0, 0, 31))

	alerts := s.LicenseAlerts()
	if len(alerts) != 3 {
		t.Fatalf("expected 3 alerts, got %d: %+v", len(alerts), alerts)
	}

	byID := map[string]LicenseAlert{}
	for _, a := range alerts {
		byID[a.VehicleID] = a
	}
	if a := byID["expired"]; !a.Expired || a.Days != -1 {
		t.Fatalf("expired alert wrong: %+v", a)
	}
	if a := byID["today"]; a.Expired || a.Days != 0 {
		t.Fatalf("same-day expiry must count as 0 days left, not expired: %+v", a)
	}
	if a := byID["edge"]; a.Expired || a.Days != 30 {
		t.Fatalf("30-day alert wrong: %+v", a)
	}
	if _, ok := byID["beyond"]; ok {
		t.Fatal("31 days out must produce no alert")
	}

	// Expired alerts sort ahead of expiring ones.
	if !alerts[0].Expired {
		t.Fatalf("expired alerts must come first: %+v", alerts)
	}
	for _, a := range alerts[1:] {
		if a.Expired {
			t.Fatalf("expired alert after non-expired: %+v", alerts)
		}
	}
}

func TestLicenseAlertsIgnoreMissingExpiry(t *testing.T) {
	s := newViewStore(t)
	v, _ := domain.NewVehicle(domain.VehicleInput{ID: "v1", Model: "Corolla"})
	if _, err := s.AddVehicle(context.Background(), v); err != nil {
		t.Fatalf("add: %v", err)
	}
	if alerts := s.LicenseAlerts(); len(alerts) != 0 {
		t.Fatalf("expected no alerts, got %+v", alerts)
	}
}

func addWithMaintenance(t *testing.T, s *Store, id, model string, dates ...string) {
	t.Helper()
	v, err := domain.NewVehicle(domain.VehicleInput{ID: id, Model: model, Plate: id})
	if err != nil {
		t.Fatalf("NewVehicle: %v", err)
	}
	for _, date := range dates {
		if err := v.AddMaintenance(domain.NewMaintenanceRecord(date, "Service", 50, "")); err != nil {
			t.Fatalf("add record %s: %v", date, err)
		}
	}
	if _, err := s.AddVehicle(context.Background(), v); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func TestDueSoonAlertWindow(t *testing.T) {
	s := newViewStore(t)
	addWithMaintenance(t, s, "v1", "Corolla",
		"2026-08-29 08:00", // earlier today, already past now
		"2026-08-29 18:00", // later today
		"2026-08-30 09:00", // tomorrow
		"2026-08-31 09:00", // beyond the window
	)

	alerts := s.DueSoonAlerts()
	if len(alerts) != 2 {
		t.Fatalf("expected 2 alerts, got %d: %+v", len(alerts), alerts)
	}
	if !alerts[0].DueToday || alerts[1].DueToday {
		t.Fatalf("today must sort before tomorrow: %+v", alerts)
	}
	if alerts[0].Record.Date.Day() != 29 || alerts[1].Record.Date.Day() != 30 {
		t.Fatalf("unexpected alert dates: %+v", alerts)
	}
}

func TestUpcomingMaintenanceOrderingAndHorizon(t *testing.T) {
	s := newViewStore(t)
	addWithMaintenance(t, s, "v1", "Corolla", "2026-09-15", "2025-01-01")
	addWithMaintenance(t, s, "v2", "Supra", "2026-09-01", "2027-06-01")

	all := s.UpcomingMaintenance(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 future records, got %d: %+v", len(all), all)
	}
	for i := 1; i < len(all); i++ {
		if all[i].Record.Date.Before(all[i-1].Record.Date) {
			t.Fatalf("records not ascending: %+v", all)
		}
	}
	if all[0].VehicleID != "v2" || all[0].Record.Date.Month() != time.September {
		t.Fatalf("wrong soonest record: %+v", all[0])
	}

	bounded := s.UpcomingMaintenance(30 * 24 * time.Hour)
	if len(bounded) != 2 {
		t.Fatalf("horizon must bound the window, got %d: %+v", len(bounded), bounded)
	}
}
