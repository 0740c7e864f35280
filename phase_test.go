package ecs

import "testing"

func TestScheduleRunExecutesSystemsInPhase(t *testing.T) {
	w := NewWorld()
	var ran bool
	sys := NewSystem("touch", nil, func(w *World, _ RunToken, lastRun Frame) Frame {
		ran = true
		return w.Frame()
	})

	s := NewSchedule(w, SequentialExecutor{})
	update := s.AddPhase("update")
	s.AddSystems(update, sys)

	if err := s.Run(update); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !ran {
		t.Fatalf("phase's system should have executed")
	}
}

func TestScheduleRunAllDescendsIntoSubPhases(t *testing.T) {
	w := NewWorld()
	var order []string

	makeSys := func(name string) *SystemConfig {
		return NewSystem(name, nil, func(w *World, _ RunToken, lastRun Frame) Frame {
			order = append(order, name)
			return w.Frame()
		})
	}

	s := NewSchedule(w, SequentialExecutor{})
	update := s.AddPhase("update")
	combat := s.AddSubPhase(update, "combat")
	s.AddSystems(update, makeSys("movement"))
	s.AddSystems(combat, makeSys("damage"))

	if err := s.RunAll(); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(order) != 2 || order[0] != "movement" || order[1] != "damage" {
		t.Fatalf("RunAll should run a phase's own systems before its children's, got %v", order)
	}
}

func TestScheduleAddPhaseIsIdempotent(t *testing.T) {
	w := NewWorld()
	s := NewSchedule(w, SequentialExecutor{})
	id1 := s.AddPhase("update")
	id2 := s.AddPhase("update")
	if id1 != id2 {
		t.Fatalf("registering the same phase name twice should return the same PhaseId")
	}
}

func TestSchedulePhaseBeforeOrdering(t *testing.T) {
	w := NewWorld()
	var order []string
	makeSys := func(name string) *SystemConfig {
		return NewSystem(name, nil, func(w *World, _ RunToken, lastRun Frame) Frame {
			order = append(order, name)
			return w.Frame()
		})
	}

	s := NewSchedule(w, SequentialExecutor{})
	root := s.AddPhase("root")
	late := s.AddSubPhase(root, "late")
	early := s.AddSubPhase(root, "early")
	s.AddPhaseBefore(early, late)
	s.AddSystems(late, makeSys("late"))
	s.AddSystems(early, makeSys("early"))

	if err := s.RunAll(); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if len(order) != 2 || order[0] != "early" || order[1] != "late" {
		t.Fatalf("AddPhaseBefore(early, late) should run early before late, got %v", order)
	}
}

func TestScheduleBuildDetectsHierarchyCycle(t *testing.T) {
	w := NewWorld()
	s := NewSchedule(w, SequentialExecutor{})
	root := s.AddPhase("root")
	child := s.AddSubPhase(root, "child")

	// Manually force a cycle: child becomes its own ancestor.
	node := s.phases.GetItem(int(root))
	node.parent = child
	childNode := s.phases.GetItem(int(child))
	childNode.children = append(childNode.children, root)

	err := s.Build()
	if err == nil {
		t.Fatalf("Build should detect the forced cycle")
	}
	if _, ok := err.(*CyclicHierarchyError); !ok {
		t.Fatalf("error = %T, want *CyclicHierarchyError", err)
	}
}

func TestScheduleAddSystemsBindsParamsOnce(t *testing.T) {
	w := NewWorld()
	AddResource(w, sysScore{Value: 9})

	var res Res[sysScore]
	sys := NewSystem("reads-score", []SystemParam{&res}, func(w *World, _ RunToken, lastRun Frame) Frame {
		return w.Frame()
	})

	s := NewSchedule(w, SequentialExecutor{})
	update := s.AddPhase("update")
	s.AddSystems(update, sys)

	if res.Get().Value != 9 {
		t.Fatalf("AddSystems should bind params immediately, got %d", res.Get().Value)
	}
}

func TestScheduleFlushesCommandsBetweenPhases(t *testing.T) {
	w := NewWorld()
	var cmds Commands
	var spawned Entity
	sys := NewSystem("spawns-via-commands", []SystemParam{&cmds}, func(w *World, _ RunToken, lastRun Frame) Frame {
		cmds.Spawn(qPosition{X: 1})
		return w.Frame()
	})

	checker := NewSystem("checks-count", nil, func(w *World, _ RunToken, lastRun Frame) Frame {
		q := NewQuery1[*qPosition](w, Read[qPosition]())
		for row := range q.Iter(FrameZero) {
			spawned = row.Entity
		}
		return w.Frame()
	})

	s := NewSchedule(w, SequentialExecutor{})
	first := s.AddPhase("first")
	second := s.AddSubPhase(first, "second")
	s.AddSystems(first, sys)
	s.AddSystems(second, checker)

	if err := s.RunAll(); err != nil {
		t.Fatalf("RunAll returned error: %v", err)
	}
	if !spawned.Valid() {
		t.Fatalf("entity spawned via Commands in the first phase should be visible by the second phase")
	}
}
