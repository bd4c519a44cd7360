package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-blog/gate"
)

// mockPolicy is a simple policy for testing with uint user type.
type mockPolicy struct {
	allowAll bool
}

func (p *mockPolicy) Can(_ context.Context, _ uint, _ gate.Action, _ any) bool {
	return p.allowAll
}

func TestNewGate(t *testing.T) {
	g := gate.NewGate[uint]()
	if g == nil {
		t.Fatal("expected non-nil Gate")
	}
}

func TestGate_Authorize_NoUser(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("test", &mockPolicy{allowAll: true})

	err := g.Authorize(context.Background(), 0, gate.ActionView, "test", nil)
	if err != gate.ErrUnauthenticated {
		t.Errorf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestGate_Authorize_NoPolicy(t *testing.T) {
	g := gate.NewGate[uint]()

	err := g.Authorize(context.Background(), 1, gate.ActionView, "unknown", nil)
	if err != gate.ErrNoPolicyDefined {
		t.Errorf("expected ErrNoPolicyDefined, got %v", err)
	}
}

func TestGate_Authorize_Allowed(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("test", &mockPolicy{allowAll: true})

	err := g.Authorize(context.Background(), 1, gate.ActionView, "test", nil)
	if err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestGate_Authorize_Denied(t *testing.T) {
	g := gate.NewGate[uint]()
	g.Register("test", &mockPolicy{allowAll: false})

	err := g.Authorize(context.Background(), 1, gate.ActionView, "test", nil)
	if err != gate.ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestGate_Can(t *testing.T) {
	g := gate.NewGate[uint]()
	allow := gate.PolicyFunc[uint](func(_ context.Context, _ uint, _ gate.Action, _ any) bool {
		return true
	})
	g.Register("test", allow)

	if !g.Can(context.Background(), 1, gate.ActionCreate, "test", nil) {
		t.Error("expected Can to return true")
	}

	g.Register("denied", &mockPolicy{allowAll: false})
	if g.Can(context.Background(), 1, gate.ActionCreate, "denied", nil) {
		t.Error("expected Can to return false")
	}
}
