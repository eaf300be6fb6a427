package fleet

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"

	blobcore "garagecore/internal/blob/core"
	"garagecore/pkg/domain"
)

// ImageStore is the blob backend used for vehicle images.
type ImageStore = blobcore.Store

// CreateVehicle builds a vehicle from raw input, minting an id when the
// caller supplies none, and adds it to the fleet.
func (s *Store) CreateVehicle(ctx context.Context, in domain.VehicleInput) (domain.Vehicle, domain.Result, error) {
	if in.ID == "" {
		in.ID = uuid.NewString()
	}
	v, err := domain.NewVehicle(in)
	if err != nil {
		return domain.Vehicle{}, domain.Result{}, err
	}
	result, err := s.AddVehicle(ctx, v)
	if err != nil {
		return domain.Vehicle{}, result, err
	}
	return v, result, nil
}

// withVehicle applies fn to the identified vehicle under the usual
// mutate/evaluate/persist cycle and returns the vehicle's post-mutation state.
func (s *Store) withVehicle(ctx context.Context, op, id string, fn func(*domain.Vehicle) error) (domain.Vehicle, error) {
	var after domain.Vehicle
	_, err := s.mutate(ctx, op, func(state map[string]domain.Vehicle) error {
		v, ok := state[id]
		if !ok {
			return fmt.Errorf("vehicle %q: %w", id, ErrVehicleNotFound)
		}
		if err := fn(&v); err != nil {
			return err
		}
		state[id] = v
		after = cloneVehicle(v)
		return nil
	}, nil)
	return after, err
}

// StartVehicle turns the identified vehicle's engine on.
func (s *Store) StartVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	return s.withVehicle(ctx, "vehicle_start", id, func(v *domain.Vehicle) error {
		v.Start()
		return nil
	})
}

// StopVehicle turns the engine off and zeroes the speed.
func (s *Store) StopVehicle(ctx context.Context, id string) (domain.Vehicle, error) {
	return s.withVehicle(ctx, "vehicle_stop", id, func(v *domain.Vehicle) error {
		v.Stop()
		return nil
	})
}

// Accelerate speeds the vehicle up by one step. When the engine is off the
// user is told to start it first and nothing is persisted.
func (s *Store) Accelerate(ctx context.Context, id string) (domain.Vehicle, error) {
	v, err := s.withVehicle(ctx, "vehicle_accelerate", id, (*domain.Vehicle).Accelerate)
	if errors.Is(err, domain.ErrNotRunning) {
		s.notifier.Notify("Turn on the vehicle first!")
	}
	return v, err
}

// Brake slows the vehicle down by one step.
func (s *Store) Brake(ctx context.Context, id string) (domain.Vehicle, error) {
	return s.withVehicle(ctx, "vehicle_brake", id, func(v *domain.Vehicle) error {
		v.Brake()
		return nil
	})
}

// Honk emits the vehicle's horn sound through the notifier. Read-only, so no
// rules run and nothing is saved.
func (s *Store) Honk(ctx context.Context, id string) (string, error) {
	v, ok := s.GetVehicle(id)
	if !ok {
		return "", fmt.Errorf("vehicle %q: %w", id, ErrVehicleNotFound)
	}
	sound := v.Honk()
	s.notifier.Notify(sound)
	return sound, nil
}

// EngageTurbo toggles the turbo flag on a sporty vehicle.
func (s *Store) EngageTurbo(ctx context.Context, id string) (domain.Vehicle, error) {
	return s.withVehicle(ctx, "vehicle_turbo", id, (*domain.Vehicle).EngageTurbo)
}

// LoadCargo loads cargo onto a truck, enforcing the capacity bound.
func (s *Store) LoadCargo(ctx context.Context, id string, amount float64) (domain.Vehicle, error) {
	return s.withVehicle(ctx, "vehicle_load_cargo", id, func(v *domain.Vehicle) error {
		return v.LoadCargo(amount)
	})
}

// AddMaintenance appends a maintenance record built from raw input to the
// identified vehicle's history.
func (s *Store) AddMaintenance(ctx context.Context, id, date, typ string, cost float64, description string) (domain.Vehicle, error) {
	rec := domain.NewMaintenanceRecord(date, typ, cost, description)
	return s.withVehicle(ctx, "vehicle_add_maintenance", id, func(v *domain.Vehicle) error {
		return v.AddMaintenance(rec)
	})
}

// ClearHistory drops the identified vehicle's maintenance history.
func (s *Store) ClearHistory(ctx context.Context, id string) (domain.Vehicle, error) {
	return s.withVehicle(ctx, "vehicle_clear_history", id, func(v *domain.Vehicle) error {
		v.ClearHistory()
		return nil
	})
}

// AttachImage stores the image bytes in the blob backend and points the
// vehicle's image reference at the stored object. The vehicle update goes
// through the usual save cycle, so a quota failure reverts the reference.
func (s *Store) AttachImage(ctx context.Context, id, filename string, r io.Reader, contentType string) (domain.Vehicle, error) {
	if s.images == nil {
		return domain.Vehicle{}, errors.New("no image store configured")
	}
	if _, ok := s.GetVehicle(id); !ok {
		return domain.Vehicle{}, fmt.Errorf("vehicle %q: %w", id, ErrVehicleNotFound)
	}

	key := path.Join("vehicles", id, uuid.NewString()+path.Ext(filename))
	if _, err := s.images.Put(ctx, key, r, blobcore.PutOptions{
		ContentType: contentType,
		Metadata:    map[string]string{"vehicle_id": id},
	}); err != nil {
		return domain.Vehicle{}, fmt.Errorf("store image: %w", err)
	}

	ref := key
	_, err := s.UpdateVehicle(ctx, id, VehiclePatch{ImageRef: &ref})
	if err != nil {
		if delOK, delErr := s.images.Delete(ctx, key); delErr != nil || !delOK {
			s.logger.Warn("orphaned image blob", "key", key, "error", delErr)
		}
		return domain.Vehicle{}, err
	}
	v, _ := s.GetVehicle(id)
	return v, nil
}

// VehicleImage opens the blob behind the vehicle's image reference.
func (s *Store) VehicleImage(ctx context.Context, id string) (blobcore.Info, io.ReadCloser, error) {
	if s.images == nil {
		return blobcore.Info{}, nil, errors.New("no image store configured")
	}
	v, ok := s.GetVehicle(id)
	if !ok {
		return blobcore.Info{}, nil, fmt.Errorf("vehicle %q: %w", id, ErrVehicleNotFound)
	}
	return s.images.Get(ctx, v.ImageRef)
}
