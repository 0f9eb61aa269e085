package metric

import (
	"testing"
	"time"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.registry == nil {
		t.Error("registry field is nil")
	}
	if r.RequestsTotal == nil {
		t.Error("RequestsTotal is nil")
	}
	if r.RequestDuration == nil {
		t.Error("RequestDuration is nil")
	}
}

func TestRegistry_Snapshot(t *testing.T) {
	r := NewRegistry()
	r.Observe("as/user/login", OutcomeOK, 100*time.Millisecond)
	r.Observe("as/user/login", OutcomeError, 300*time.Millisecond)
	r.Observe("as/user/keep", OutcomeTransport, 0)

	stats, err := r.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot failed: %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len(stats) = %d, want 2", len(stats))
	}

	keep, login := stats[0], stats[1]
	if keep.Command != "as/user/keep" || login.Command != "as/user/login" {
		t.Fatalf("rows not sorted by command: %+v", stats)
	}
	if login.OK != 1 || login.Errors != 1 {
		t.Errorf("login = %+v, want 1 ok / 1 error", login)
	}
	if login.AvgMilli < 199 || login.AvgMilli > 201 {
		t.Errorf("login AvgMilli = %v, want ~200", login.AvgMilli)
	}
	if keep.Errors != 1 {
		t.Errorf("keep.Errors = %d, want 1", keep.Errors)
	}
}

func TestRegistry_ObserveNil(t *testing.T) {
	var r *Registry
	// Should not panic
	r.Observe("cmd", OutcomeOK, time.Second)
}

func TestRegistry_Gatherer(t *testing.T) {
	r := NewRegistry()
	r.Observe("cmd", OutcomeOK, time.Millisecond)
	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("Gather failed: %v", err)
	}
	if len(families) != 2 {
		t.Errorf("len(families) = %d, want 2", len(families))
	}
}
