package ecs

import "testing"

type resScore struct{ Value int }
type resConfig struct{ Name string }

func TestAddAndGetSendResource(t *testing.T) {
	w := NewWorld()
	AddResource(w, resScore{Value: 7})

	var res Res[resScore]
	res.init(w)
	if res.Get().Value != 7 {
		t.Fatalf("Get().Value = %d, want 7", res.Get().Value)
	}
}

func TestResMutWritesThroughSamePointer(t *testing.T) {
	w := NewWorld()
	AddResource(w, resScore{Value: 1})

	var mut ResMut[resScore]
	mut.init(w)
	mut.Get().Value = 42

	var res Res[resScore]
	res.init(w)
	if res.Get().Value != 42 {
		t.Fatalf("ResMut write did not propagate, got %d", res.Get().Value)
	}
}

func TestRemoveResource(t *testing.T) {
	w := NewWorld()
	AddResource(w, resConfig{Name: "a"})

	v, ok := RemoveResource[resConfig](w)
	if !ok || v.Name != "a" {
		t.Fatalf("RemoveResource = (%+v, %v), want ({a}, true)", v, ok)
	}
	if _, ok := RemoveResource[resConfig](w); ok {
		t.Fatalf("RemoveResource on an already-removed resource should report false")
	}
}

func TestNonSendResourceWrongThreadFatal(t *testing.T) {
	w := NewWorld()
	AddNonSendResource(w, resScore{Value: 3})

	var nonSend NonSendRes[resScore]
	nonSend.init(w)

	token := w.beginRun()
	defer w.endRun()

	// the right token succeeds.
	if nonSend.Get(token).Value != 3 {
		t.Fatalf("Get(token) with the active token should succeed")
	}

	// any other token is a fatal contract violation.
	defer func() {
		if recover() == nil {
			t.Fatalf("Get() with a stale token should panic")
		}
	}()
	nonSend.Get(token + 1)
}

func TestRemoveNonSendResourceWrongThread(t *testing.T) {
	w := NewWorld()
	id := AddNonSendResource(w, resScore{Value: 1})
	w.beginRun()
	defer w.endRun()

	defer func() {
		if recover() == nil {
			t.Fatalf("RemoveNonSendResource with a mismatched token should panic")
		}
	}()
	w.RemoveNonSendResource(id, NoToken+999)
}
