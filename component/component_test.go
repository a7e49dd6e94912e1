package component

import (
	"context"
	"fmt"
	"testing"
)

// mockComponent implements Component for testing.
type mockComponent struct {
	name       string
	startErr   error
	stopErr    error
	health     Health
	startOrder *[]string
	stopOrder  *[]string
}

func (m *mockComponent) Name() string { return m.name }
func (m *mockComponent) Start(ctx context.Context) error {
	if m.startOrder != nil {
		*m.startOrder = append(*m.startOrder, m.name)
	}
	return m.startErr
}
func (m *mockComponent) Stop(ctx context.Context) error {
	if m.stopOrder != nil {
		*m.stopOrder = append(*m.stopOrder, m.name)
	}
	return m.stopErr
}
func (m *mockComponent) Health(ctx context.Context) Health {
	return m.health
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(nil)
	if r == nil {
		t.Fatal("expected non-nil registry")
	}
}

func TestRegister(t *testing.T) {
	r := NewRegistry(nil)
	c := &mockComponent{name: "meter", health: Health{Name: "meter", Status: StatusHealthy}}

	if err := r.Register(c); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	r := NewRegistry(nil)
	c := &mockComponent{name: "meter"}
	r.Register(c)

	err := r.Register(&mockComponent{name: "meter"})
	if err == nil {
		t.Error("expected error for duplicate registration")
	}
}

func TestGet(t *testing.T) {
	r := NewRegistry(nil)
	c := &mockComponent{name: "meter"}
	r.Register(c)

	got := r.Get("meter")
	if got == nil {
		t.Fatal("expected to get registered component")
	}
	if got.Name() != "meter" {
		t.Errorf("expected 'meter', got %q", got.Name())
	}
}

func TestGetNotFound(t *testing.T) {
	r := NewRegistry(nil)
	got := r.Get("missing")
	if got != nil {
		t.Error("expected nil for unregistered component")
	}
}

func TestStartAll(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}

	r.Register(&mockComponent{
		name: "meter", startOrder: &order,
		health: Health{Name: "meter", Status: StatusHealthy},
	})
	r.Register(&mockComponent{
		name: "tracer", startOrder: &order,
		health: Health{Name: "tracer", Status: StatusHealthy},
	})

	if err := r.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll failed: %v", err)
	}

	if len(order) != 2 {
		t.Fatalf("expected 2 starts, got %d", len(order))
	}
	if order[0] != "meter" || order[1] != "tracer" {
		t.Errorf("expected start order [meter, tracer], got %v", order)
	}
}

func TestStartAllError(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "meter", startErr: fmt.Errorf("connection refused")})

	err := r.StartAll(context.Background())
	if err == nil {
		t.Error("expected error from StartAll")
	}
}

func TestStopAllReverseOrder(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}

	r.Register(&mockComponent{name: "meter", stopOrder: &order, health: Health{Name: "meter", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "tracer", stopOrder: &order, health: Health{Name: "tracer", Status: StatusHealthy}})
	r.Register(&mockComponent{name: "publisher", stopOrder: &order, health: Health{Name: "publisher", Status: StatusHealthy}})

	r.StartAll(context.Background())
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}

	if len(order) != 3 {
		t.Fatalf("expected 3 stops, got %d", len(order))
	}
	if order[0] != "publisher" || order[1] != "tracer" || order[2] != "meter" {
		t.Errorf("expected reverse stop order [publisher, tracer, meter], got %v", order)
	}
}

func TestStopAllSkipsUnstarted(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "meter", stopOrder: &order})

	// Don't start, then stop
	if err := r.StopAll(context.Background()); err != nil {
		t.Fatalf("StopAll failed: %v", err)
	}
	if len(order) != 0 {
		t.Errorf("expected 0 stops for unstarted components, got %d", len(order))
	}
}

func TestStopAllWithErrors(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{
		name: "meter", stopErr: fmt.Errorf("stop failed"),
		health: Health{Name: "meter", Status: StatusHealthy},
	})
	r.StartAll(context.Background())

	err := r.StopAll(context.Background())
	if err == nil {
		t.Error("expected error from StopAll")
	}
}

func TestHealthAll(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{
		name:   "meter",
		health: Health{Name: "meter", Status: StatusHealthy, Message: "connected"},
	})
	r.Register(&mockComponent{
		name:   "tracer",
		health: Health{Name: "tracer", Status: StatusUnhealthy, Message: "timeout"},
	})

	results := r.HealthAll(context.Background())
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Status != StatusHealthy {
		t.Errorf("expected meter healthy, got %s", results[0].Status)
	}
	if results[1].Status != StatusUnhealthy {
		t.Errorf("expected tracer unhealthy, got %s", results[1].Status)
	}
}

func TestHealthStatusConstants(t *testing.T) {
	if StatusHealthy != "healthy" {
		t.Errorf("expected 'healthy', got %q", StatusHealthy)
	}
	if StatusUnhealthy != "unhealthy" {
		t.Errorf("expected 'unhealthy', got %q", StatusUnhealthy)
	}
	if StatusDegraded != "degraded" {
		t.Errorf("expected 'degraded', got %q", StatusDegraded)
	}
}

type describedComponent struct {
	mockComponent
	desc Description
}

func (d *describedComponent) Describe() Description { return d.desc }

func TestDescribe(t *testing.T) {
	r := NewRegistry(nil)
	r.Register(&mockComponent{name: "plain"})
	r.Register(&describedComponent{
		mockComponent: mockComponent{name: "publisher"},
		desc:          Description{Type: "publisher", Details: "type=local"},
	})

	descs := r.Describe()
	if len(descs) != 1 {
		t.Fatalf("expected 1 description, got %d", len(descs))
	}
	if descs[0].Name != "publisher" {
		t.Errorf("expected name to default to component name, got %q", descs[0].Name)
	}
	if descs[0].Details != "type=local" {
		t.Errorf("unexpected details %q", descs[0].Details)
	}
}

func TestStartAllSkipsStarted(t *testing.T) {
	r := NewRegistry(nil)
	order := []string{}
	r.Register(&mockComponent{name: "publisher", startOrder: &order})

	r.StartAll(context.Background())
	r.StartAll(context.Background())
	if len(order) != 1 {
		t.Errorf("expected a single start, got %d", len(order))
	}
}
