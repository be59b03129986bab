package realtime

import (
	"testing"

	"wtrfll/server/internal/session/domain"
)

func TestRegistry_RegisterGetRemove(t *testing.T) {
	r := NewRegistry()
	cc := ConnectionContext{SessionID: "s1", Role: domain.RoleController}

	if !r.TryRegister("c1", cc) {
		t.Fatal("first register should succeed")
	}
	if r.TryRegister("c1", ConnectionContext{SessionID: "s2", Role: domain.RoleDisplay}) {
		t.Fatal("duplicate register must be refused")
	}

	got, ok := r.TryGet("c1")
	if !ok || got.SessionID != "s1" || !got.IsController() {
		t.Errorf("TryGet = %+v, %v; the original registration must survive", got, ok)
	}

	removed, ok := r.TryRemove("c1")
	if !ok || removed.SessionID != "s1" {
		t.Errorf("TryRemove = %+v, %v", removed, ok)
	}
	if _, ok := r.TryGet("c1"); ok {
		t.Error("removed connection should be gone")
	}
	if _, ok := r.TryRemove("c1"); ok {
		t.Error("second remove should report absence")
	}
}

func TestConnectionContext_GroupName(t *testing.T) {
	cc := ConnectionContext{SessionID: "abc", Role: domain.RoleDisplay}
	if got := cc.GroupName(); got != "session:abc" {
		t.Errorf("GroupName = %q", got)
	}
	if cc.IsController() {
		t.Error("display must not be controller")
	}
}
