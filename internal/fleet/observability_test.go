package fleet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"garagecore/internal/infra/kv/memory"
	"garagecore/pkg/domain"
)

type captureLogger struct {
	mu      sync.Mutex
	entries []string
}

func (l *captureLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, level+" "+msg)
}

func (l *captureLogger) Debug(msg string, _ ...any) { l.log("DEBUG", msg) }
func (l *captureLogger) Info(msg string, _ ...any)  { l.log("INFO", msg) }
func (l *captureLogger) Warn(msg string, _ ...any)  { l.log("WARN", msg) }
func (l *captureLogger) Error(msg string, _ ...any) { l.log("ERROR", msg) }

func (l *captureLogger) contains(fragment string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, entry := range l.entries {
		if strings.Contains(entry, fragment) {
			return true
		}
	}
	return false
}

func TestExpvarMetricsRecorderAggregates(t *testing.T) {
	rec := NewExpvarMetricsRecorder("")
	ctx := context.Background()

	rec.Observe(ctx, "vehicle_add", true, 20*time.Millisecond)
	rec.Observe(ctx, "vehicle_add", true, 30*time.Millisecond)
	rec.Observe(ctx, "vehicle_add", false, 5*time.Millisecond)
	rec.Observe(ctx, "", true, time.Millisecond)

	snap := rec.Snapshot()
	if got := snap.DurationsMS["vehicle_add"]; got != 55 {
		t.Fatalf("durations = %v", got)
	}
	if snap.Results["vehicle_add"]["success"] != 2 || snap.Results["vehicle_add"]["error"] != 1 {
		t.Fatalf("results = %+v", snap.Results)
	}
	if _, ok := snap.Results[""]; ok {
		t.Fatal("empty operation must be ignored")
	}
	if rec.Name() == "" {
		t.Fatal("expected generated name")
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewJSONTracer(&buf)

	_, span := tracer.Start(context.Background(), "fleet_save")
	span.End(nil)
	_, span = tracer.Start(context.Background(), "vehicle_add")
	span.End(errors.New("boom"))

	entries := tracer.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(entries))
	}
	if entries[0].Operation != "fleet_save" || entries[0].Status != "success" {
		t.Fatalf("first span: %+v", entries[0])
	}
	if entries[1].Status != "error" || entries[1].Error != "boom" {
		t.Fatalf("second span: %+v", entries[1])
	}

	dec := json.NewDecoder(&buf)
	var count int
	for dec.More() {
		var entry JSONTraceEntry
		if err := dec.Decode(&entry); err != nil {
			t.Fatalf("decode: %v", err)
		}
		count++
	}
	if count != 2 {
		t.Fatalf("expected 2 encoded lines, got %d", count)
	}
}

func TestStoreObservesOperations(t *testing.T) {
	ctx := context.Background()
	rec := NewExpvarMetricsRecorder("")
	tracer := NewJSONTracer(nil)
	s := New(memory.New(), WithMetricsRecorder(rec), WithTracer(tracer))

	v, _ := domain.NewVehicle(domain.VehicleInput{ID: "v1", Model: "Corolla"})
	if _, err := s.AddVehicle(ctx, v); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap := rec.Snapshot()
	if snap.Results["vehicle_add"]["success"] != 1 {
		t.Fatalf("missing metric observation: %+v", snap.Results)
	}
	found := false
	for _, entry := range tracer.Entries() {
		if entry.Operation == "vehicle_add" && entry.Status == "success" {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing trace span: %+v", tracer.Entries())
	}
}

func TestStoreLogsSaveFailures(t *testing.T) {
	ctx := context.Background()
	backend := &flakyKV{Store: memory.New()}
	logger := &captureLogger{}
	s := New(backend, WithLogger(logger))

	backend.fail(errors.New("disk detached"))
	v, _ := domain.NewVehicle(domain.VehicleInput{ID: "v1", Model: "Corolla"})
	if _, err := s.AddVehicle(ctx, v); err == nil {
		t.Fatal("expected save failure")
	}
	if !logger.contains("ERROR fleet save failed") {
		t.Fatalf("missing error log, got %v", logger.entries)
	}
}

func TestLogNotifierRoutesToLogger(t *testing.T) {
	logger := &captureLogger{}
	n := LogNotifier{Logger: logger}
	n.Notify("HOOOONK!")
	if !logger.contains("INFO notification") {
		t.Fatalf("missing log entry, got %v", logger.entries)
	}
	LogNotifier{}.Notify("dropped")
}

func TestNoopCollaboratorsAreSilent(t *testing.T) {
	var l Logger = noopLogger{}
	l.Debug("a")
	l.Info("b", "k", 1)
	l.Warn("c")
	l.Error("d")

	var m MetricsRecorder = noopMetrics{}
	m.Observe(context.Background(), "op", true, time.Second)

	var tr Tracer = noopTracer{}
	_, span := tr.Start(context.Background(), "op")
	span.End(nil)
	span.End(errors.New("boom"))
}
