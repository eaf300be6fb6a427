package fleet

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"garagecore/internal/kv/core"
	"garagecore/pkg/domain"
)

//go:embed seed.yaml
var seedManifest []byte

type seedRecord struct {
	Date        string  `yaml:"date"`
	Type        string  `yaml:"type"`
	Cost        float64 `yaml:"cost"`
	Description string  `yaml:"description"`
}

type seedVehicle struct {
	ID            string       `yaml:"id"`
	Kind          string       `yaml:"kind"`
	Model         string       `yaml:"model"`
	Color         string       `yaml:"color"`
	Plate         string       `yaml:"plate"`
	Year          string       `yaml:"year"`
	LicenseExpiry string       `yaml:"license_expiry"`
	CargoCapacity float64      `yaml:"cargo_capacity"`
	Maintenance   []seedRecord `yaml:"maintenance"`
}

type seedFile struct {
	Vehicles []seedVehicle `yaml:"vehicles"`
}

// defaultFleet builds the embedded starter fleet, one vehicle per kind.
func defaultFleet() (map[string]domain.Vehicle, error) {
	var manifest seedFile
	if err := yaml.Unmarshal(seedManifest, &manifest); err != nil {
		return nil, fmt.Errorf("parse seed manifest: %w", err)
	}
	vehicles := make(map[string]domain.Vehicle, len(manifest.Vehicles))
	for _, entry := range manifest.Vehicles {
		v, err := domain.NewVehicle(domain.VehicleInput{
			ID:            entry.ID,
			Kind:          entry.Kind,
			Model:         entry.Model,
			Color:         entry.Color,
			Plate:         entry.Plate,
			Year:          entry.Year,
			LicenseExpiry: entry.LicenseExpiry,
			CargoCapacity: entry.CargoCapacity,
		})
		if err != nil {
			return nil, fmt.Errorf("seed vehicle %q: %w", entry.ID, err)
		}
		for _, rec := range entry.Maintenance {
			if err := v.AddMaintenance(domain.NewMaintenanceRecord(rec.Date, rec.Type, rec.Cost, rec.Description)); err != nil {
				return nil, fmt.Errorf("seed vehicle %q: %w", entry.ID, err)
			}
		}
		vehicles[v.ID] = v
	}
	return vehicles, nil
}

// SeedDefaults replaces the in-memory fleet with the embedded starter fleet
// and attempts to persist it. A failed save is logged but not fatal; the
// seeded fleet stays usable in memory either way.
func (s *Store) SeedDefaults(ctx context.Context) error {
	vehicles, err := defaultFleet()
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.vehicles = vehicles
	state := cloneFleet(vehicles)
	s.mu.Unlock()

	if err := s.persist(ctx, state); err != nil {
		if errors.Is(err, core.ErrQuotaExceeded) {
			s.notifier.Notify("Storage is full. The last change was not saved.")
		}
		s.logger.Warn("seed fleet save failed", "error", err)
		return nil
	}
	s.logger.Info("fleet seeded", "vehicles", len(vehicles))
	return nil
}
