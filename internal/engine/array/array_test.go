package array

import (
	"testing"

	"kvstore-reactor/internal/kverr"
)

func mustCreate(t *testing.T, capacity int) *Engine {
	t.Helper()
	e := New()
	if err := e.Create(capacity); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return e
}

func TestSetGetRoundTrip(t *testing.T) {
	e := mustCreate(t, 4)
	if err := e.Set("a", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := e.Get("a")
	if err != nil || v != "1" {
		t.Fatalf("Get = %q, %v, want 1, nil", v, err)
	}
}

func TestSetDuplicateIsAlreadyExists(t *testing.T) {
	e := mustCreate(t, 4)
	_ = e.Set("a", "1")
	if err := e.Set("a", "2"); kverr.CodeOf(err) != kverr.AlreadyExists {
		t.Fatalf("Set duplicate = %v, want AlreadyExists", err)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	e := mustCreate(t, 4)
	if _, err := e.Get("missing"); kverr.CodeOf(err) != kverr.NotFound {
		t.Fatalf("Get missing = %v, want NotFound", err)
	}
}

func TestModMissingIsNotFound(t *testing.T) {
	e := mustCreate(t, 4)
	if err := e.Mod("missing", "x"); kverr.CodeOf(err) != kverr.NotFound {
		t.Fatalf("Mod missing = %v, want NotFound", err)
	}
}

func TestDelMissingIsNotFound(t *testing.T) {
	e := mustCreate(t, 4)
	if err := e.Del("missing"); kverr.CodeOf(err) != kverr.NotFound {
		t.Fatalf("Del missing = %v, want NotFound", err)
	}
}

func TestCapacityExhaustion(t *testing.T) {
	e := mustCreate(t, 2)
	_ = e.Set("a", "1")
	_ = e.Set("b", "2")
	if err := e.Set("c", "3"); kverr.CodeOf(err) != kverr.NoMemory {
		t.Fatalf("Set over capacity = %v, want NoMemory", err)
	}
}

// TestHoleReuseSurvivesHigherLiveSlot pins down the fix described in
// SPEC_FULL.md §4.4: deleting a low slot must never strand a key sitting in
// a higher, still-live slot.
func TestHoleReuseSurvivesHigherLiveSlot(t *testing.T) {
	e := mustCreate(t, 4)
	_ = e.Set("k1", "v1") // slot 0
	_ = e.Set("k2", "v2") // slot 1
	if err := e.Del("k1"); err != nil {
		t.Fatalf("Del k1: %v", err)
	}
	// k2 must still be reachable even though it now sits above the hole
	// left at slot 0.
	if v, err := e.Get("k2"); err != nil || v != "v2" {
		t.Fatalf("Get k2 after hole = %q, %v, want v2, nil", v, err)
	}
	// The hole at slot 0 must be reusable.
	if err := e.Set("k3", "v3"); err != nil {
		t.Fatalf("Set into hole: %v", err)
	}
	if v, err := e.Get("k3"); err != nil || v != "v3" {
		t.Fatalf("Get k3 = %q, %v, want v3, nil", v, err)
	}
	if e.Count() != 2 {
		t.Fatalf("Count = %d, want 2", e.Count())
	}
}

// TestDeleteThenReinsertOccupiesFreedSlot exercises the exact scenario from
// spec.md §8 scenario 5: SET k v / DEL k / SET k2 v2 lands k2 in slot 0.
func TestDeleteThenReinsertOccupiesFreedSlot(t *testing.T) {
	e := mustCreate(t, 4)
	_ = e.Set("k", "v")
	_ = e.Del("k")
	_ = e.Set("k2", "v2")
	if !e.slots[0].used || e.slots[0].key != "k2" {
		t.Fatalf("slot 0 = %+v, want k2 occupying the freed hole", e.slots[0])
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	e := New()
	if err := e.Destroy(); err != nil {
		t.Fatalf("Destroy on fresh engine: %v", err)
	}
	e2 := mustCreate(t, 2)
	if err := e2.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := e2.Destroy(); err != nil {
		t.Fatalf("second Destroy: %v", err)
	}
}

func TestCountTracksLiveKeysAcrossFuzzedOps(t *testing.T) {
	e := mustCreate(t, 64)
	live := map[string]bool{}
	ops := []struct {
		key string
		del bool
	}{
		{"a", false}, {"b", false}, {"c", false},
		{"a", true}, {"d", false}, {"b", true},
		{"e", false}, {"a", false}, {"f", false},
	}
	for _, op := range ops {
		if op.del {
			if live[op.key] {
				if err := e.Del(op.key); err != nil {
					t.Fatalf("Del %s: %v", op.key, err)
				}
				delete(live, op.key)
			}
			continue
		}
		if !live[op.key] {
			if err := e.Set(op.key, "v-"+op.key); err != nil {
				t.Fatalf("Set %s: %v", op.key, err)
			}
			live[op.key] = true
		}
	}
	if e.Count() != len(live) {
		t.Fatalf("Count = %d, want %d", e.Count(), len(live))
	}
	for k := range live {
		if _, err := e.Get(k); err != nil {
			t.Fatalf("Get %s after fuzz: %v", k, err)
		}
	}
}
