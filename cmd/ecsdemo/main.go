// Command ecsdemo runs a small simulation over the ecs package: a handful
// of moving entities, a shared score resource, and a damage event stream,
// driven through a two-phase schedule for a fixed number of frames.
package main

import (
	"fmt"

	"github.com/foundryecs/foundry"
	"go.uber.org/zap"
)

type Position struct{ X, Y float64 }
type Velocity struct{ X, Y float64 }

// Score is a send resource: any system may read or write it from any
// worker goroutine.
type Score struct{ Value int }

// DamageEvent is sent by the combat system and consumed by the score
// system one frame later, once World.Update has swapped the buffers.
type DamageEvent struct {
	Amount int
}

func main() {
	logger, _ := zap.NewDevelopment()
	world := ecs.NewWorld(ecs.WithLogger(logger), ecs.WithInitialCapacity(64))

	ecs.AddResource(world, Score{})

	for i := 0; i < 5; i++ {
		world.Spawn(Position{X: float64(i)}, Velocity{X: 1, Y: 0.5})
	}

	moveQ := ecs.NewQuery2[*Position, *Velocity](world, ecs.Write[Position](), ecs.Read[Velocity]())
	moveSys := ecs.NewSystem("movement", []ecs.SystemParam{ecs.QueryParam(moveQ)},
		func(w *ecs.World, _ ecs.RunToken, lastRun ecs.Frame) ecs.Frame {
			for row := range moveQ.Iter(lastRun) {
				row.A.X += row.B.X
				row.A.Y += row.B.Y
			}
			return w.Frame()
		})

	var damage ecs.EventWriter[DamageEvent]
	combatSys := ecs.NewSystem("combat", []ecs.SystemParam{&damage},
		func(w *ecs.World, _ ecs.RunToken, lastRun ecs.Frame) ecs.Frame {
			damage.Send(DamageEvent{Amount: 3})
			return w.Frame()
		})

	var damageReader ecs.EventReader[DamageEvent]
	var score ecs.ResMut[Score]
	scoreSys := ecs.NewSystem("score", []ecs.SystemParam{&damageReader, &score},
		func(w *ecs.World, _ ecs.RunToken, lastRun ecs.Frame) ecs.Frame {
			for _, ev := range damageReader.Read() {
				score.Get().Value -= ev.Amount
			}
			return w.Frame()
		})

	schedule := ecs.NewSchedule(world, ecs.ParallelExecutor{})
	update := schedule.AddPhase("update")
	combat := schedule.AddSubPhase(update, "combat")
	schedule.AddSystems(update, moveSys)
	schedule.AddSystems(combat, combatSys, scoreSys)

	if err := schedule.Build(); err != nil {
		logger.Fatal("schedule build failed", zap.Error(err))
	}

	for frame := 0; frame < 10; frame++ {
		if err := schedule.RunAll(); err != nil {
			logger.Fatal("schedule run failed", zap.Error(err))
		}
		world.Update()
	}

	fmt.Printf("final score: %d\n", score.Get().Value)

	readQ := ecs.NewQuery1[*Position](world, ecs.Read[Position]())
	for row := range readQ.Iter(ecs.FrameZero) {
		fmt.Printf("entity %s at (%.1f, %.1f)\n", row.Entity, row.A.X, row.A.Y)
	}
}
