// Package fleet implements the garage fleet store: an in-memory vehicle map
// reconciled against a persistent key-value backend, with rule evaluation on
// every mutation and derived alert views for consumers.
package fleet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"garagecore/internal/kv/core"
	"garagecore/pkg/domain"
)

// StorageKey is the single key holding the serialized fleet. The version tag
// is part of the key; bumping it is the only migration mechanism.
const StorageKey = "garagecore/fleet/v1"

// ErrVehicleNotFound is returned by operations targeting an unknown vehicle id.
var ErrVehicleNotFound = errors.New("vehicle not found")

// Store owns the process-wide vehicle map. All mutations go through Store
// methods (single writer); every mutation is evaluated against the rules
// engine and followed by a persistence attempt with quota rollback semantics.
type Store struct {
	mu       sync.RWMutex
	vehicles map[string]domain.Vehicle

	kv       core.Store
	engine   *domain.RulesEngine
	images   ImageStore
	notifier Notifier
	logger   Logger
	metrics  MetricsRecorder
	tracer   Tracer
	nowFn    func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithRulesEngine replaces the default rule set.
func WithRulesEngine(engine *domain.RulesEngine) Option {
	return func(s *Store) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithNotifier installs the human-facing message sink.
func WithNotifier(n Notifier) Option {
	return func(s *Store) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithLogger installs a structured logger.
func WithLogger(l Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetricsRecorder installs an operation metrics recorder.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Store) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer installs an operation tracer.
func WithTracer(t Tracer) Option {
	return func(s *Store) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithClock overrides the time source used for "now" comparisons.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.nowFn = now
		}
	}
}

// WithImageStore attaches a blob store for vehicle images.
func WithImageStore(images ImageStore) Option {
	return func(s *Store) { s.images = images }
}

// New constructs a fleet store over the supplied key-value backend. The store
// starts empty; call Load to hydrate it.
func New(backend core.Store, opts ...Option) *Store {
	s := &Store{
		vehicles: make(map[string]domain.Vehicle),
		kv:       backend,
		engine:   NewDefaultRulesEngine(),
		notifier: noopNotifier{},
		logger:   noopLogger{},
		metrics:  noopMetrics{},
		tracer:   noopTracer{},
		nowFn:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cloneVehicle(v domain.Vehicle) domain.Vehicle {
	cp := v
	if v.Year != nil {
		year := *v.Year
		cp.Year = &year
	}
	if v.LicenseExpiry != nil {
		expiry := *v.LicenseExpiry
		cp.LicenseExpiry = &expiry
	}
	cp.Maintenance = append([]domain.MaintenanceRecord(nil), v.Maintenance...)
	return cp
}

func cloneFleet(vehicles map[string]domain.Vehicle) map[string]domain.Vehicle {
	cloned := make(map[string]domain.Vehicle, len(vehicles))
	for id, v := range vehicles {
		cloned[id] = cloneVehicle(v)
	}
	return cloned
}

// fleetView adapts a state map to the read-only view rules evaluate against.
type fleetView struct {
	state map[string]domain.Vehicle
}

// ListVehicles returns all vehicles in the snapshot.
func (v fleetView) ListVehicles() []domain.Vehicle {
	out := make([]domain.Vehicle, 0, len(v.state))
	for _, veh := range v.state {
		out = append(out, cloneVehicle(veh))
	}
	return out
}

// FindVehicle retrieves a vehicle by id from the snapshot.
func (v fleetView) FindVehicle(id string) (domain.Vehicle, bool) {
	veh, ok := v.state[id]
	if !ok {
		return domain.Vehicle{}, false
	}
	return cloneVehicle(veh), true
}

// GetVehicle retrieves a vehicle by id from committed state.
func (s *Store) GetVehicle(id string) (domain.Vehicle, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.vehicles[id]
	if !ok {
		return domain.Vehicle{}, false
	}
	return cloneVehicle(v), true
}

// ListVehicles returns all vehicles from committed state.
func (s *Store) ListVehicles() []domain.Vehicle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fleetView{state: s.vehicles}.ListVehicles()
}

// Len reports the number of vehicles in the fleet.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vehicles)
}

// Load hydrates the fleet from the persistent backend. An absent key seeds
// the default fleet; a blob that fails to parse is treated as corrupted data,
// so the key is discarded and the defaults reseeded. A single entry that
// fails reconstruction is skipped with a log line and never aborts the rest.
func (s *Store) Load(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "fleet_load")
	defer func() { span.End(err) }()

	data, getErr := s.kv.Get(ctx, StorageKey)
	if errors.Is(getErr, core.ErrNotFound) {
		s.logger.Info("no stored fleet, seeding defaults")
		return s.SeedDefaults(ctx)
	}
	if getErr != nil {
		err = fmt.Errorf("read fleet: %w", getErr)
		return err
	}

	var snapshot map[string]json.RawMessage
	if parseErr := json.Unmarshal(data, &snapshot); parseErr != nil {
		s.logger.Warn("stored fleet is corrupted, discarding and reseeding", "error", parseErr)
		if delErr := s.kv.Delete(ctx, StorageKey); delErr != nil {
			s.logger.Warn("discard corrupted fleet blob failed", "error", delErr)
		}
		return s.SeedDefaults(ctx)
	}

	vehicles := make(map[string]domain.Vehicle, len(snapshot))
	for id, raw := range snapshot {
		v, decErr := decodeStoredVehicle(raw)
		if decErr != nil {
			s.logger.Warn("skipping stored vehicle", "id", id, "error", decErr)
			continue
		}
		vehicles[v.ID] = v
	}

	s.mu.Lock()
	s.vehicles = vehicles
	s.mu.Unlock()
	s.logger.Info("fleet loaded", "vehicles", len(vehicles))
	return nil
}

// Save serializes the entire fleet and writes it to the backend. Quota
// failures surface as core.ErrQuotaExceeded (match with errors.Is); any other
// write failure is generic. Save never panics across this boundary.
func (s *Store) Save(ctx context.Context) (err error) {
	ctx, span := s.tracer.Start(ctx, "fleet_save")
	defer func() { span.End(err) }()

	s.mu.RLock()
	state := cloneFleet(s.vehicles)
	s.mu.RUnlock()
	err = s.persist(ctx, state)
	return err
}

// persist writes the given state under the fleet key.
func (s *Store) persist(ctx context.Context, state map[string]domain.Vehicle) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode fleet: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey, data); err != nil {
		return fmt.Errorf("write fleet: %w", err)
	}
	return nil
}

// mutate applies fn to a clone of the fleet, evaluates rules on the
// prospective state, persists it, and commits. On a quota failure the clone
// is dropped (memory stays consistent with disk) unless onQuota supplies an
// alternative state to keep in memory; on any other write failure the
// mutation stays in memory and the error is reported.
func (s *Store) mutate(ctx context.Context, op string, fn func(map[string]domain.Vehicle) error, onQuota func(map[string]domain.Vehicle) map[string]domain.Vehicle) (result domain.Result, err error) {
	ctx, span := s.tracer.Start(ctx, op)
	start := time.Now()
	defer func() {
		span.End(err)
		s.metrics.Observe(ctx, op, err == nil, time.Since(start))
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	next := cloneFleet(s.vehicles)
	if err = fn(next); err != nil {
		return domain.Result{}, err
	}

	result, err = s.engine.Evaluate(ctx, fleetView{state: next})
	if err != nil {
		return domain.Result{}, err
	}
	for _, v := range result.Violations {
		if v.Severity != domain.SeverityBlock {
			s.logger.Warn("rule violation", "rule", v.Rule, "vehicle", v.VehicleID, "message", v.Message)
		}
	}
	if result.HasBlocking() {
		err = domain.RuleViolationError{Result: result}
		return result, err
	}

	if persistErr := s.persist(ctx, next); persistErr != nil {
		if errors.Is(persistErr, core.ErrQuotaExceeded) {
			if onQuota != nil {
				s.vehicles = onQuota(next)
			}
			s.notifier.Notify("Storage is full. The last change was not saved.")
			s.logger.Error("fleet save hit storage quota", "op", op, "error", persistErr)
			err = persistErr
			return result, err
		}
		// Generic write failure: the in-memory effect stands, persistence
		// is simply not guaranteed.
		s.vehicles = next
		s.notifier.Notify("Saving the garage failed. Changes may be lost when you leave.")
		s.logger.Error("fleet save failed", "op", op, "error", persistErr)
		err = persistErr
		return result, err
	}

	s.vehicles = next
	return result, nil
}

// AddVehicle inserts a new vehicle and saves. A quota failure rolls the
// insert back so memory and persisted state do not diverge.
func (s *Store) AddVehicle(ctx context.Context, v domain.Vehicle) (domain.Result, error) {
	return s.mutate(ctx, "vehicle_add", func(state map[string]domain.Vehicle) error {
		if _, exists := state[v.ID]; exists {
			return fmt.Errorf("vehicle %q already exists", v.ID)
		}
		state[v.ID] = cloneVehicle(v)
		return nil
	}, nil)
}

// RemoveVehicle deletes a vehicle by id and saves. A quota failure restores
// the removed vehicle.
func (s *Store) RemoveVehicle(ctx context.Context, id string) (domain.Result, error) {
	return s.mutate(ctx, "vehicle_remove", func(state map[string]domain.Vehicle) error {
		if _, ok := state[id]; !ok {
			return fmt.Errorf("vehicle %q: %w", id, ErrVehicleNotFound)
		}
		delete(state, id)
		return nil
	}, nil)
}
