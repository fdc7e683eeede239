package backend

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()

	b := &mockBackend{kind: "rscript", name: "r", enabled: true}
	if err := registry.Register(b); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(b); !errors.Is(err, ErrBackendExists) {
		t.Errorf("Register() duplicate error = %v, want ErrBackendExists", err)
	}
	if err := registry.Register(nil); err == nil {
		t.Error("Register(nil) should fail")
	}
	if err := registry.Register(&mockBackend{}); err == nil {
		t.Error("Register() without a name should fail")
	}
}

func TestRegistry_Get(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&mockBackend{kind: "rscript", name: "r", enabled: true})

	got, ok := registry.Get("r")
	if !ok || got.Name() != "r" {
		t.Fatalf("Get(r) = %v, %v", got, ok)
	}
	if _, ok := registry.Get("nonexistent"); ok {
		t.Error("Get() should return false for nonexistent backend")
	}
}

func TestRegistry_List(t *testing.T) {
	registry := NewRegistry()
	_ = registry.Register(&mockBackend{kind: "rscript", name: "c", enabled: false})
	_ = registry.Register(&mockBackend{kind: "rscript", name: "a", enabled: true})
	_ = registry.Register(&mockBackend{kind: "rscript", name: "b", enabled: true})

	var names []string
	for _, b := range registry.List() {
		names = append(names, b.Name())
	}
	if !reflect.DeepEqual(names, []string{"a", "b", "c"}) {
		t.Errorf("List() names = %v, want sorted [a b c]", names)
	}
	if enabled := registry.ListEnabled(); len(enabled) != 2 {
		t.Errorf("ListEnabled() returned %d backends, want 2", len(enabled))
	}
}

func TestRegistry_StartStop(t *testing.T) {
	registry := NewRegistry()
	on := &mockBackend{name: "on", enabled: true}
	off := &mockBackend{name: "off"}
	_ = registry.Register(on)
	_ = registry.Register(off)

	if err := registry.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll() error = %v", err)
	}
	if !on.started || off.started {
		t.Errorf("started: on = %v, off = %v; want only enabled backends", on.started, off.started)
	}
	if err := registry.StopAll(); err != nil {
		t.Fatalf("StopAll() error = %v", err)
	}
	if !on.stopped || !off.stopped {
		t.Error("StopAll() should stop every backend")
	}
}

func TestRegistry_StartStopErrors(t *testing.T) {
	boom := errors.New("boom")
	registry := NewRegistry()
	_ = registry.Register(&mockBackend{name: "a", enabled: true, startErr: boom, stopErr: boom})
	_ = registry.Register(&mockBackend{name: "b", enabled: true, stopErr: boom})

	if err := registry.StartAll(context.Background()); !errors.Is(err, boom) {
		t.Errorf("StartAll() error = %v, want boom", err)
	}
	err := registry.StopAll()
	if !errors.Is(err, boom) {
		t.Fatalf("StopAll() error = %v, want boom", err)
	}
	var joined interface{ Unwrap() []error }
	if !errors.As(err, &joined) || len(joined.Unwrap()) != 2 {
		t.Errorf("StopAll() should report both failures: %v", err)
	}
}
