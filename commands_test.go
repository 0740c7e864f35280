package ecs

import "testing"

type cmdMarker struct{ Tag int }

func TestCommandsSpawnIsDeferred(t *testing.T) {
	w := NewWorld()
	var cmds Commands
	cmds.init(w)

	cmds.Spawn(cmdMarker{Tag: 1})

	q := NewQuery1[*cmdMarker](w, Read[cmdMarker]())
	var before int
	for range q.Iter(FrameZero) {
		before++
	}
	if before != 0 {
		t.Fatalf("Commands.Spawn must not take effect before Flush, saw %d entities", before)
	}

	cmds.Flush()
	var after int
	for range q.Iter(FrameZero) {
		after++
	}
	if after != 1 {
		t.Fatalf("Flush should apply the queued Spawn, saw %d entities", after)
	}
}

func TestCommandsDespawnAndAddComponents(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(cmdMarker{Tag: 1})

	var cmds Commands
	cmds.init(w)
	cmds.AddComponents(e, qVelocity{X: 5})
	cmds.Flush()

	if _, ok := GetComponent[qVelocity](w, e); !ok {
		t.Fatalf("Flush should have applied AddComponents")
	}

	cmds.Despawn(e)
	cmds.Flush()
	if w.Alive(e) {
		t.Fatalf("Flush should have applied Despawn")
	}
}

func TestCommandsFlushClearsQueue(t *testing.T) {
	w := NewWorld()
	var cmds Commands
	cmds.init(w)
	cmds.Spawn(cmdMarker{Tag: 1})
	cmds.Flush()
	cmds.Flush() // should be a no-op, not a double-spawn

	q := NewQuery1[*cmdMarker](w, Read[cmdMarker]())
	var count int
	for range q.Iter(FrameZero) {
		count++
	}
	if count != 1 {
		t.Fatalf("calling Flush twice should not re-apply already-flushed commands, got %d entities", count)
	}
}

func TestRemoveComponentCommand(t *testing.T) {
	w := NewWorld()
	e := w.Spawn(cmdMarker{Tag: 1}, qVelocity{X: 1})

	var cmds Commands
	cmds.init(w)
	RemoveComponentCommand[qVelocity](&cmds, e)
	cmds.Flush()

	if _, ok := GetComponent[qVelocity](w, e); ok {
		t.Fatalf("RemoveComponentCommand should have removed qVelocity after Flush")
	}
}

func TestCommandsInitRegistersBuffer(t *testing.T) {
	w := NewWorld()
	var cmds Commands
	cmds.init(w)

	found := false
	for _, c := range w.commandBuffers {
		if c == &cmds {
			found = true
		}
	}
	if !found {
		t.Fatalf("init should register the Commands instance in World.commandBuffers")
	}
}
