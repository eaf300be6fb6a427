package domain

import (
	"strconv"
	"strings"
	"time"
)

// ParseYear parses a year input. Blank or non-numeric values report false and
// are treated as absent by callers.
func ParseYear(raw string) (int, bool) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	return year, err == nil
}

// VehicleInput carries the raw construction parameters for a vehicle. String
// fields arrive untrimmed and unvalidated; NewVehicle applies all defaulting
// and normalization.
type VehicleInput struct {
	ID            string
	Kind          string
	Model         string
	Color         string
	Plate         string
	Year          string
	LicenseExpiry string
	ImageRef      string
	// Truck only.
	CargoCapacity float64
}

// NewVehicle validates and normalizes the input into a Vehicle. It fails only
// with MissingRequiredFieldError when ID or Model is blank; every other field
// falls back to a default or is treated as absent when unparseable.
func NewVehicle(in VehicleInput) (Vehicle, error) {
	id := strings.TrimSpace(in.ID)
	if id == "" {
		return Vehicle{}, MissingRequiredFieldError{Field: "id"}
	}
	model := strings.TrimSpace(in.Model)
	if model == "" {
		return Vehicle{}, MissingRequiredFieldError{Field: "model"}
	}

	v := Vehicle{
		ID:       id,
		Kind:     NormalizeKind(strings.TrimSpace(in.Kind)),
		Model:    model,
		Color:    strings.TrimSpace(in.Color),
		Plate:    strings.ToUpper(strings.TrimSpace(in.Plate)),
		ImageRef: strings.TrimSpace(in.ImageRef),
	}
	if v.Color == "" {
		v.Color = DefaultColor
	}
	if v.ImageRef == "" {
		v.ImageRef = DefaultImageRef
	}
	if year, ok := ParseYear(in.Year); ok {
		v.Year = &year
	}
	if expiry, ok := ParseDate(in.LicenseExpiry); ok {
		v.LicenseExpiry = &expiry
	}
	if v.Kind == KindTruck && in.CargoCapacity > 0 {
		v.CargoCapacity = in.CargoCapacity
	}
	return v, nil
}

// Start turns the engine on. It reports whether the state changed.
func (v *Vehicle) Start() bool {
	if v.Running {
		return false
	}
	v.Running = true
	return true
}

// Stop turns the engine off, forcing speed to zero. It reports whether the
// state changed.
func (v *Vehicle) Stop() bool {
	if !v.Running {
		return false
	}
	v.Running = false
	v.Speed = 0
	return true
}

// Accelerate increases speed by the fixed step, capped at the kind's ceiling.
// It returns ErrNotRunning without mutating state when the engine is off.
func (v *Vehicle) Accelerate() error {
	if !v.Running {
		return ErrNotRunning
	}
	v.Speed += AccelerateStep
	if maxSpeed := v.Kind.MaxSpeed(); v.Speed > maxSpeed {
		v.Speed = maxSpeed
	}
	return nil
}

// Brake decreases speed by the fixed step, floored at zero, regardless of
// running state. It reports whether the speed changed.
func (v *Vehicle) Brake() bool {
	if v.Speed == 0 {
		return false
	}
	v.Speed -= BrakeStep
	if v.Speed < 0 {
		v.Speed = 0
	}
	return true
}

// Honk returns the horn sound for the kind. No state changes.
func (v Vehicle) Honk() string {
	switch v.Kind {
	case KindSporty:
		return "Vroooom!"
	case KindTruck:
		return "HOOOONK!"
	default:
		return "Beep beep!"
	}
}

// EngageTurbo flips the turbo flag on a sporty vehicle. The toggle semantics
// are deliberate: a second call disengages.
func (v *Vehicle) EngageTurbo() error {
	if v.Kind != KindSporty {
		return ErrWrongKind
	}
	v.TurboEngaged = !v.TurboEngaged
	return nil
}

// LoadCargo adds cargo to a truck. Non-positive amounts and amounts that would
// exceed capacity are rejected without mutation.
func (v *Vehicle) LoadCargo(amount float64) error {
	if v.Kind != KindTruck {
		return ErrWrongKind
	}
	if amount <= 0 {
		return ErrInvalidCargoAmount
	}
	if v.CurrentCargo+amount > v.CargoCapacity {
		return ErrCargoOverCapacity
	}
	v.CurrentCargo += amount
	return nil
}

// AddMaintenance appends a validated record and restores the descending date
// order. Invalid records are rejected with ErrInvalidRecord and leave the
// history untouched.
func (v *Vehicle) AddMaintenance(rec MaintenanceRecord) error {
	if !rec.IsValid() {
		return ErrInvalidRecord
	}
	v.Maintenance = append(v.Maintenance, rec)
	SortMaintenance(v.Maintenance)
	return nil
}

// ClearHistory empties the maintenance history unconditionally.
func (v *Vehicle) ClearHistory() {
	v.Maintenance = nil
}

// HistoryEntry pairs a record with its rendered form for display.
type HistoryEntry struct {
	Record    MaintenanceRecord
	Formatted string
}

// HistoryView partitions the maintenance history by the supplied instant.
type HistoryView struct {
	// Past holds records dated at or before now, formatted without time-of-day.
	Past []HistoryEntry
	// Future holds scheduled records dated after now, formatted with time-of-day.
	Future []HistoryEntry
}

// HistoryView splits the stored history into past and future relative to now,
// preserving the stored (globally sorted) order within each partition.
func (v Vehicle) HistoryView(now time.Time) HistoryView {
	var view HistoryView
	for _, rec := range v.Maintenance {
		if rec.Date.After(now) {
			view.Future = append(view.Future, HistoryEntry{Record: rec, Formatted: rec.FormatWithTime()})
		} else {
			view.Past = append(view.Past, HistoryEntry{Record: rec, Formatted: rec.FormatShort()})
		}
	}
	return view
}
