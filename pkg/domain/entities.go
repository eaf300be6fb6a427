// Package domain defines the core persistent entities, value normalization,
// and rule evaluation primitives used by garagecore.
package domain

import (
	"encoding/json"
	"time"
)

// VehicleKind identifies one of the closed set of vehicle variants.
type VehicleKind string

// Supported vehicle kinds used as serialization discriminants and persistence tags.
const (
	// KindBase identifies a plain vehicle.
	KindBase VehicleKind = "base"
	// KindSporty identifies a sports vehicle with a turbo toggle.
	KindSporty VehicleKind = "sporty"
	// KindTruck identifies a cargo truck.
	KindTruck VehicleKind = "truck"
)

// Speed adjustment steps shared by all vehicle kinds.
const (
	AccelerateStep = 10
	BrakeStep      = 15
)

// Per-kind speed ceilings.
const (
	MaxSpeedBase   = 200
	MaxSpeedSporty = 250
	MaxSpeedTruck  = 140
)

// Defaults applied during construction when the caller leaves a field blank.
const (
	DefaultColor    = "Default Color"
	DefaultImageRef = "placeholder.png"
)

// MaxSpeed returns the speed ceiling for the kind.
func (k VehicleKind) MaxSpeed() int {
	switch k {
	case KindSporty:
		return MaxSpeedSporty
	case KindTruck:
		return MaxSpeedTruck
	default:
		return MaxSpeedBase
	}
}

// NormalizeKind maps a raw discriminant tag onto a supported kind.
// Unrecognized tags fall back to KindBase.
func NormalizeKind(raw string) VehicleKind {
	switch VehicleKind(raw) {
	case KindBase, KindSporty, KindTruck:
		return VehicleKind(raw)
	default:
		return KindBase
	}
}

// MaintenanceRecord is a single dated service event attached to a vehicle.
// Records are immutable once validated; invalid records are dropped from
// persistence rather than repaired.
type MaintenanceRecord struct {
	Date        time.Time `json:"date"`
	Type        string    `json:"type"`
	Cost        float64   `json:"cost"`
	Description string    `json:"description,omitempty"`
}

// Vehicle is the polymorphic fleet entity. A single struct carries the common
// fields plus the variant-specific ones; Kind selects which of those are
// meaningful and drives exhaustive switches elsewhere.
type Vehicle struct {
	ID            string              `json:"id"`
	Kind          VehicleKind         `json:"kind"`
	Model         string              `json:"model"`
	Color         string              `json:"color"`
	Plate         string              `json:"plate"`
	Year          *int                `json:"year"`
	LicenseExpiry *time.Time          `json:"license_expiry"`
	Speed         int                 `json:"speed"`
	Running       bool                `json:"running"`
	ImageRef      string              `json:"image_ref"`
	Maintenance   []MaintenanceRecord `json:"maintenance"`

	// Sporty only.
	TurboEngaged bool `json:"turbo_engaged,omitempty"`
	// Truck only.
	CargoCapacity float64 `json:"cargo_capacity,omitempty"`
	CurrentCargo  float64 `json:"current_cargo,omitempty"`
}

type vehicleAlias Vehicle

// MarshalJSON emits the serialized vehicle shape. Invalid maintenance records
// are filtered out at marshal time so they never reach the persistent store.
func (v Vehicle) MarshalJSON() ([]byte, error) {
	cp := v
	cp.Maintenance = ValidRecords(v.Maintenance)
	return json.Marshal(vehicleAlias(cp))
}

// UnmarshalJSON hydrates a vehicle from its serialized shape, normalizing an
// unrecognized kind tag to base. Stored records are kept as-is; validity
// filtering happens on serialize, not on deserialize of a clean structure.
func (v *Vehicle) UnmarshalJSON(data []byte) error {
	var aux vehicleAlias
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	aux.Kind = NormalizeKind(string(aux.Kind))
	*v = Vehicle(aux)
	return nil
}

// ValidRecords returns the subset of records that pass validation, preserving order.
func ValidRecords(recs []MaintenanceRecord) []MaintenanceRecord {
	if recs == nil {
		return nil
	}
	out := make([]MaintenanceRecord, 0, len(recs))
	for _, rec := range recs {
		if rec.IsValid() {
			out = append(out, rec)
		}
	}
	return out
}
