package fleet

import (
	"context"
	"fmt"
	"strings"

	"garagecore/pkg/domain"
)

// VehiclePatch carries optional edits to a vehicle. A nil field is left
// untouched; a set field goes through the same normalization as construction.
type VehiclePatch struct {
	Model         *string
	Color         *string
	Plate         *string
	Year          *string
	LicenseExpiry *string
	ImageRef      *string
	CargoCapacity *float64
}

// apply mutates v in place and reports whether the patch changed the image
// reference. Blank model edits are rejected because the field is required;
// blank year or expiry clears the field.
func (p VehiclePatch) apply(v *domain.Vehicle) (imageChanged bool, err error) {
	if p.Model != nil {
		model := strings.TrimSpace(*p.Model)
		if model == "" {
			return false, domain.MissingRequiredFieldError{Field: "model"}
		}
		v.Model = model
	}
	if p.Color != nil {
		color := strings.TrimSpace(*p.Color)
		if color == "" {
			color = domain.DefaultColor
		}
		v.Color = color
	}
	if p.Plate != nil {
		v.Plate = strings.ToUpper(strings.TrimSpace(*p.Plate))
	}
	if p.Year != nil {
		if year, ok := domain.ParseYear(*p.Year); ok {
			v.Year = &year
		} else {
			v.Year = nil
		}
	}
	if p.LicenseExpiry != nil {
		if expiry, ok := domain.ParseDate(*p.LicenseExpiry); ok {
			v.LicenseExpiry = &expiry
		} else {
			v.LicenseExpiry = nil
		}
	}
	if p.ImageRef != nil {
		ref := strings.TrimSpace(*p.ImageRef)
		if ref == "" {
			ref = domain.DefaultImageRef
		}
		if ref != v.ImageRef {
			v.ImageRef = ref
			imageChanged = true
		}
	}
	if p.CargoCapacity != nil && v.Kind == domain.KindTruck {
		capacity := *p.CargoCapacity
		if capacity < 0 {
			capacity = 0
		}
		v.CargoCapacity = capacity
		if v.CurrentCargo > v.CargoCapacity {
			v.CurrentCargo = v.CargoCapacity
		}
	}
	return imageChanged, nil
}

// UpdateVehicle applies a patch to the identified vehicle and saves. On a
// quota failure only the image reference reverts to its prior value; the
// other edited fields stay in memory, so an image-only edit rolls back
// entirely while a mixed edit keeps its textual changes.
func (s *Store) UpdateVehicle(ctx context.Context, id string, patch VehiclePatch) (domain.Result, error) {
	var priorImage string
	var imageChanged bool
	return s.mutate(ctx, "vehicle_update", func(state map[string]domain.Vehicle) error {
		v, ok := state[id]
		if !ok {
			return fmt.Errorf("vehicle %q: %w", id, ErrVehicleNotFound)
		}
		priorImage = v.ImageRef
		changed, err := patch.apply(&v)
		if err != nil {
			return err
		}
		imageChanged = changed
		state[id] = v
		return nil
	}, func(next map[string]domain.Vehicle) map[string]domain.Vehicle {
		if imageChanged {
			v := next[id]
			v.ImageRef = priorImage
			next[id] = v
		}
		return next
	})
}
