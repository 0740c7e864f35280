package ecs

import "testing"

type sysScore struct{ Value int }

func TestNewSystemAggregatesAccess(t *testing.T) {
	w := NewWorld()
	q := NewQuery2[*qPosition, *qVelocity](w, Write[qPosition](), Read[qVelocity]())
	cfg := NewSystem("movement", []SystemParam{QueryParam(q)}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})

	cfg.bindParams(w) // access is only aggregated once params are bound

	posID := componentIdFor[qPosition](w)
	var conflicting AccessSet
	conflicting.Add(Access{ID: uint32(posID), Kind: AccessWrite})
	if !cfg.Access.ConflictsWith(&conflicting) {
		t.Fatalf("NewSystem should aggregate the write access reported by its query param")
	}
}

func TestBindParamsComputesDistinctResourceAccess(t *testing.T) {
	w := NewWorld()
	AddResource(w, sysScore{Value: 1})
	AddResource(w, otherScore{Value: 2})

	var writesScore ResMut[sysScore]
	writer := NewSystem("writes-score", []SystemParam{&writesScore}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})
	var writesOther ResMut[otherScore]
	other := NewSystem("writes-other", []SystemParam{&writesOther}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})

	writer.bindParams(w)
	other.bindParams(w)

	if writer.Access.ConflictsWith(&other.Access) {
		t.Fatalf("systems writing distinct resource types must not conflict, got writer.Access=%+v other.Access=%+v", writer.Access, other.Access)
	}

	var writesScoreAgain ResMut[sysScore]
	again := NewSystem("writes-score-again", []SystemParam{&writesScoreAgain}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})
	again.bindParams(w)
	if !writer.Access.ConflictsWith(&again.Access) {
		t.Fatalf("two systems writing the same resource type must conflict")
	}
}

type otherScore struct{ Value int }

func TestNewSystemExclusiveFromWorldParam(t *testing.T) {
	var wp WorldParam
	cfg := NewSystem("uses-world", []SystemParam{&wp}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})
	if !cfg.Exclusive {
		t.Fatalf("a system declaring WorldParam should be marked Exclusive")
	}
}

func TestNewSystemSendFalseFromNonSendParam(t *testing.T) {
	var nonSend NonSendRes[sysScore]
	cfg := NewSystem("reads-nonsend", []SystemParam{&nonSend}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})
	if cfg.Send {
		t.Fatalf("a system declaring a NonSendRes param must report Send=false")
	}
}

func TestBindParamsRunsInitOnce(t *testing.T) {
	w := NewWorld()
	AddResource(w, sysScore{Value: 1})

	var res Res[sysScore]
	cfg := NewSystem("reads-score", []SystemParam{&res}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})

	cfg.bindParams(w)
	cfg.bindParams(w) // must be a no-op the second time

	if res.Get().Value != 1 {
		t.Fatalf("bound Res param should read the registered resource, got %d", res.Get().Value)
	}
}

func TestSystemConfigAfter(t *testing.T) {
	a := NewSystem("a", nil, func(w *World, _ RunToken, lastRun Frame) Frame { return w.Frame() })
	b := NewSystem("b", nil, func(w *World, _ RunToken, lastRun Frame) Frame { return w.Frame() })
	b.After(a)
	if len(b.DependsOn) != 1 || b.DependsOn[0] != a.Id {
		t.Fatalf("After should record a dependency on a's SystemId, got %v", b.DependsOn)
	}
}

func TestMarkExclusive(t *testing.T) {
	cfg := NewSystem("plain", nil, func(w *World, _ RunToken, lastRun Frame) Frame { return w.Frame() })
	if cfg.Exclusive {
		t.Fatalf("a system with no params should not default to Exclusive")
	}
	cfg.MarkExclusive()
	if !cfg.Exclusive {
		t.Fatalf("MarkExclusive should set Exclusive true")
	}
}
