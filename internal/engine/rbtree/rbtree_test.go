package rbtree

import (
	"math/rand"
	"sort"
	"testing"

	"kvstore-reactor/internal/kverr"
)

func mustCreate(t *testing.T) *Tree {
	t.Helper()
	tr := New()
	if err := tr.Create(); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return tr
}

func TestSetGetRoundTrip(t *testing.T) {
	tr := mustCreate(t)
	if err := tr.Set("m", "1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	v, err := tr.Get("m")
	if err != nil || v != "1" {
		t.Fatalf("Get = %q, %v, want 1, nil", v, err)
	}
}

func TestSetDuplicateIsAlreadyExists(t *testing.T) {
	tr := mustCreate(t)
	_ = tr.Set("m", "1")
	if err := tr.Set("m", "2"); kverr.CodeOf(err) != kverr.AlreadyExists {
		t.Fatalf("Set duplicate = %v, want AlreadyExists", err)
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	tr := mustCreate(t)
	if _, err := tr.Get("missing"); kverr.CodeOf(err) != kverr.NotFound {
		t.Fatalf("Get missing = %v, want NotFound", err)
	}
}

func TestDelMissingIsNotFound(t *testing.T) {
	tr := mustCreate(t)
	if err := tr.Del("missing"); kverr.CodeOf(err) != kverr.NotFound {
		t.Fatalf("Del missing = %v, want NotFound", err)
	}
}

func TestInOrderTraversalIsSorted(t *testing.T) {
	tr := mustCreate(t)
	keys := []string{"delta", "alpha", "echo", "charlie", "bravo", "foxtrot"}
	for _, k := range keys {
		if err := tr.Set(k, "v-"+k); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}
	got := tr.Keys()
	want := append([]string(nil), keys...)
	sort.Strings(want)
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInvariantsHoldUnderRandomInsertDelete(t *testing.T) {
	tr := mustCreate(t)
	rng := rand.New(rand.NewSource(1))
	live := map[string]bool{}
	for i := 0; i < 2000; i++ {
		key := string(rune('a' + rng.Intn(26)))
		if rng.Intn(2) == 0 {
			if !live[key] {
				if err := tr.Set(key, key); err != nil {
					t.Fatalf("Set %s: %v", key, err)
				}
				live[key] = true
			}
		} else {
			if live[key] {
				if err := tr.Del(key); err != nil {
					t.Fatalf("Del %s: %v", key, err)
				}
				delete(live, key)
			}
		}
		if !tr.RootIsBlack() {
			t.Fatalf("root not black after op %d", i)
		}
		if tr.BlackHeight() == -1 {
			t.Fatalf("black-height/no-red-red invariant violated after op %d", i)
		}
	}
	if tr.Count() != len(live) {
		t.Fatalf("Count = %d, want %d", tr.Count(), len(live))
	}
}

// TestPostOrderTeardownVisitsEveryNode exercises spec.md §8 scenario 4: a
// 3-node tree must tear down visiting exactly 3 nodes, children before
// parent.
func TestPostOrderTeardownVisitsEveryNode(t *testing.T) {
	tr := mustCreate(t)
	_ = tr.Set("b", "1")
	_ = tr.Set("a", "2")
	_ = tr.Set("c", "3")
	var order []string
	tr.postOrderVisit(tr.root, func(n *node) { order = append(order, n.key) })
	if len(order) != 3 {
		t.Fatalf("post-order visited %d nodes, want 3", len(order))
	}
	// children must precede their parent in a post-order walk.
	parentIdx := -1
	for i, k := range order {
		if k == "b" {
			parentIdx = i
		}
	}
	if parentIdx != len(order)-1 {
		t.Fatalf("post-order = %v, want root b last", order)
	}
}

func TestDestroyThenRecreate(t *testing.T) {
	tr := mustCreate(t)
	_ = tr.Set("a", "1")
	if err := tr.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if err := tr.Create(); err != nil {
		t.Fatalf("Create after Destroy: %v", err)
	}
	if tr.Count() != 0 {
		t.Fatalf("Count after recreate = %d, want 0", tr.Count())
	}
	if _, err := tr.Get("a"); kverr.CodeOf(err) != kverr.NotFound {
		t.Fatalf("Get after recreate = %v, want NotFound", err)
	}
}
