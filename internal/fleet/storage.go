package fleet

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"garagecore/pkg/domain"
)

// storedVehicle is the wire shape of a single fleet entry. Decoding goes
// through explicit validation rather than trusting the blob: required fields
// are checked, the kind tag is normalized, maintenance records are rebuilt
// through the record constructor so invalid ones drop out.
type storedVehicle struct {
	ID            string                              `json:"id"`
	Kind          string                              `json:"kind"`
	Model         string                              `json:"model"`
	Color         string                              `json:"color"`
	Plate         string                              `json:"plate"`
	Year          *int                                `json:"year,omitempty"`
	LicenseExpiry *time.Time                          `json:"license_expiry,omitempty"`
	Speed         int                                 `json:"speed"`
	Running       bool                                `json:"running"`
	ImageRef      string                              `json:"image_ref"`
	Maintenance   []domain.SerializedMaintenanceRecord `json:"maintenance"`
	TurboEngaged  bool                                `json:"turbo_engaged,omitempty"`
	CargoCapacity float64                             `json:"cargo_capacity,omitempty"`
	CurrentCargo  float64                             `json:"current_cargo,omitempty"`
}

func decodeStoredVehicle(raw json.RawMessage) (domain.Vehicle, error) {
	var stored storedVehicle
	if err := json.Unmarshal(raw, &stored); err != nil {
		return domain.Vehicle{}, fmt.Errorf("decode vehicle: %w", err)
	}
	if strings.TrimSpace(stored.ID) == "" {
		return domain.Vehicle{}, fmt.Errorf("decode vehicle: %w", domain.MissingRequiredFieldError{Field: "id"})
	}
	if strings.TrimSpace(stored.Model) == "" {
		return domain.Vehicle{}, fmt.Errorf("decode vehicle: %w", domain.MissingRequiredFieldError{Field: "model"})
	}
	if strings.TrimSpace(stored.Kind) == "" {
		return domain.Vehicle{}, fmt.Errorf("decode vehicle: %w", domain.MissingRequiredFieldError{Field: "kind"})
	}

	kind := domain.NormalizeKind(stored.Kind)
	v := domain.Vehicle{
		ID:            strings.TrimSpace(stored.ID),
		Kind:          kind,
		Model:         strings.TrimSpace(stored.Model),
		Color:         stored.Color,
		Plate:         strings.ToUpper(strings.TrimSpace(stored.Plate)),
		Year:          stored.Year,
		LicenseExpiry: stored.LicenseExpiry,
		Running:       stored.Running,
		ImageRef:      stored.ImageRef,
	}
	if v.Color == "" {
		v.Color = domain.DefaultColor
	}
	if v.ImageRef == "" {
		v.ImageRef = domain.DefaultImageRef
	}

	// Restore dynamic state within the variant's bounds.
	speed := stored.Speed
	if speed < 0 {
		speed = 0
	}
	if max := kind.MaxSpeed(); speed > max {
		speed = max
	}
	v.Speed = speed

	switch kind {
	case domain.KindSporty:
		v.TurboEngaged = stored.TurboEngaged
	case domain.KindTruck:
		v.CargoCapacity = stored.CargoCapacity
		if v.CargoCapacity < 0 {
			v.CargoCapacity = 0
		}
		v.CurrentCargo = stored.CurrentCargo
		if v.CurrentCargo < 0 {
			v.CurrentCargo = 0
		}
		if v.CurrentCargo > v.CargoCapacity {
			v.CurrentCargo = v.CargoCapacity
		}
	}

	recs := make([]domain.MaintenanceRecord, 0, len(stored.Maintenance))
	for _, sr := range stored.Maintenance {
		rec := domain.NewMaintenanceRecord(sr.Date, sr.Type, sr.Cost, sr.Description)
		if !rec.IsValid() {
			continue
		}
		recs = append(recs, rec)
	}
	domain.SortMaintenance(recs)
	v.Maintenance = recs
	return v, nil
}
