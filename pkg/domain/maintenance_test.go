package domain

import (
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	inputs := []string{
		"2025-06-12",
		"2025-06-12 10:30",
		"2025-06-12T10:30",
		"2025-06-12T10:30:00Z",
	}
	for _, in := range inputs {
		if _, ok := ParseDate(in); !ok {
			t.Fatalf("expected %q to parse", in)
		}
	}
	if _, ok := ParseDate("not a date"); ok {
		t.Fatal("expected parse failure")
	}
	if _, ok := ParseDate("   "); ok {
		t.Fatal("expected blank input to fail")
	}
}

func TestNewMaintenanceRecordNeverFails(t *testing.T) {
	rec := NewMaintenanceRecord("garbage", "  Oil Change  ", -50, "  desc  ")
	if !rec.Date.IsZero() {
		t.Fatalf("expected zero date, got %v", rec.Date)
	}
	if rec.Cost != 0 {
		t.Fatalf("expected negative cost clamped to 0, got %v", rec.Cost)
	}
	if rec.Type != "Oil Change" || rec.Description != "desc" {
		t.Fatalf("expected trimmed fields, got %q %q", rec.Type, rec.Description)
	}
	if rec.IsValid() {
		t.Fatal("record without a parsed date must be invalid")
	}
}

func TestMaintenanceRecordValidity(t *testing.T) {
	valid := NewMaintenanceRecord("2025-06-12", "Inspection", 80, "")
	if !valid.IsValid() {
		t.Fatal("expected valid record")
	}
	noType := NewMaintenanceRecord("2025-06-12", "   ", 80, "")
	if noType.IsValid() {
		t.Fatal("record with blank type must be invalid")
	}
}

func TestMaintenanceRecordFormatting(t *testing.T) {
	rec := NewMaintenanceRecord("2025-06-12T14:45", "Inspection", 80, "")
	if got := rec.FormatShort(); got != "Jun 12, 2025" {
		t.Fatalf("FormatShort = %q", got)
	}
	if got := rec.FormatWithTime(); got != "Jun 12, 2025 2:45 PM" {
		t.Fatalf("FormatWithTime = %q", got)
	}
}

func TestSerializeDropsInvalid(t *testing.T) {
	valid := NewMaintenanceRecord("2025-06-12", "Inspection", 80, "yearly")
	out, ok := valid.Serialize()
	if !ok {
		t.Fatal("expected valid record to serialize")
	}
	if out.Date == "" || out.Type != "Inspection" || out.Cost != 80 {
		t.Fatalf("unexpected serialized shape: %+v", out)
	}
	if _, ok := (MaintenanceRecord{}).Serialize(); ok {
		t.Fatal("zero record must not serialize")
	}
}

func TestSortMaintenanceDescending(t *testing.T) {
	recs := []MaintenanceRecord{
		NewMaintenanceRecord("2025-01-01", "A", 0, ""),
		NewMaintenanceRecord("2030-01-01", "B", 0, ""),
		NewMaintenanceRecord("2020-01-01", "C", 0, ""),
	}
	SortMaintenance(recs)
	want := []string{"B", "A", "C"}
	for i, typ := range want {
		if recs[i].Type != typ {
			t.Fatalf("position %d: got %q want %q", i, recs[i].Type, typ)
		}
	}
	if !recs[0].Date.Equal(time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected newest date %v", recs[0].Date)
	}
}
