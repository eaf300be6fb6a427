package fleet

import (
	"context"
	"fmt"
	"time"

	"garagecore/pkg/domain"
)

// CargoCapacityRule blocks states where a truck carries more cargo than its
// capacity allows, or any vehicle exceeds its speed ceiling. The domain
// methods already guard these bounds; the rule catches states assembled
// outside them, such as decoded snapshots or direct patches.
type CargoCapacityRule struct{}

// Name identifies the rule in violations.
func (CargoCapacityRule) Name() string { return "cargo_capacity" }

// Evaluate checks every vehicle's cargo and speed bounds.
func (r CargoCapacityRule) Evaluate(_ context.Context, view domain.FleetView) (domain.Result, error) {
	var result domain.Result
	for _, v := range view.ListVehicles() {
		if v.Kind == domain.KindTruck && v.CurrentCargo > v.CargoCapacity {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:      r.Name(),
				Severity:  domain.SeverityBlock,
				Message:   fmt.Sprintf("cargo %.0f exceeds capacity %.0f", v.CurrentCargo, v.CargoCapacity),
				VehicleID: v.ID,
			})
		}
		if max := v.Kind.MaxSpeed(); v.Speed > max {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:      r.Name(),
				Severity:  domain.SeverityBlock,
				Message:   fmt.Sprintf("speed %d exceeds limit %d", v.Speed, max),
				VehicleID: v.ID,
			})
		}
	}
	return result, nil
}

// LicenseExpiryRule warns about vehicles whose license has already expired.
// Warnings never block; fleets legitimately hold expired vehicles awaiting
// renewal.
type LicenseExpiryRule struct {
	// Now supplies the comparison instant; defaults to time.Now.
	Now func() time.Time
}

// Name identifies the rule in violations.
func (LicenseExpiryRule) Name() string { return "license_expiry" }

// Evaluate flags vehicles with an expiry date in the past.
func (r LicenseExpiryRule) Evaluate(_ context.Context, view domain.FleetView) (domain.Result, error) {
	now := time.Now().UTC()
	if r.Now != nil {
		now = r.Now()
	}
	today := midnight(now)
	var result domain.Result
	for _, v := range view.ListVehicles() {
		if v.LicenseExpiry == nil || !midnight(*v.LicenseExpiry).Before(today) {
			continue
		}
		result.Violations = append(result.Violations, domain.Violation{
			Rule:      r.Name(),
			Severity:  domain.SeverityWarn,
			Message:   fmt.Sprintf("license expired on %s", v.LicenseExpiry.Format("2006-01-02")),
			VehicleID: v.ID,
		})
	}
	return result, nil
}

// DuplicatePlateRule warns when two vehicles share a plate. Plates are
// normalized to upper case at construction, so comparison is exact.
type DuplicatePlateRule struct{}

// Name identifies the rule in violations.
func (DuplicatePlateRule) Name() string { return "duplicate_plate" }

// Evaluate flags every vehicle sharing a non-empty plate with another.
func (r DuplicatePlateRule) Evaluate(_ context.Context, view domain.FleetView) (domain.Result, error) {
	byPlate := make(map[string][]domain.Vehicle)
	for _, v := range view.ListVehicles() {
		if v.Plate == "" {
			continue
		}
		byPlate[v.Plate] = append(byPlate[v.Plate], v)
	}
	var result domain.Result
	for plate, vehicles := range byPlate {
		if len(vehicles) < 2 {
			continue
		}
		for _, v := range vehicles {
			result.Violations = append(result.Violations, domain.Violation{
				Rule:      r.Name(),
				Severity:  domain.SeverityWarn,
				Message:   fmt.Sprintf("plate %s is shared by %d vehicles", plate, len(vehicles)),
				VehicleID: v.ID,
			})
		}
	}
	return result, nil
}

// NewDefaultRulesEngine returns the engine with the standard garage rules
// registered.
func NewDefaultRulesEngine() *domain.RulesEngine {
	engine := domain.NewRulesEngine()
	engine.Register(CargoCapacityRule{})
	engine.Register(LicenseExpiryRule{})
	engine.Register(DuplicatePlateRule{})
	return engine
}
