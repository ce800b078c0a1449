package main

import (
	"log/slog"
	"math"

	"github.com/jakecoffman/cp/v2"
	"github.com/oliverbestmann/krajc"
	"github.com/oliverbestmann/krajc/internal/config"
	"github.com/oliverbestmann/krajc/physics"
)

type Age struct {
	Frames uint64
}

type Score struct {
	Total uint64
}

type Lowest struct {
	Y float64
}

// Samples counts the measurements taken in PostPhysicsSync.
type Samples struct {
	Count uint64
}

func demoPlugin(cfg *config.Config) krajc.PluginFunc {
	return func(app *krajc.App) {
		app.InsertResource(Score{})
		app.InsertResource(Lowest{})
		app.InsertResource(physics.Gravity{Value: cp.Vector{X: cfg.Physics.GravityX, Y: cfg.Physics.GravityY}})

		app.AddSystems(krajc.EngineLoad,
			krajc.System(makeStartupSystem(cfg.Engine.Entities)).Named("demo.startup"),
		)

		app.AddSystems(krajc.Update,
			krajc.System(ageSystem).Named("demo.age"),
			krajc.System(scoreSystem).Named("demo.score"),
			krajc.System(fpsLoggerSystem).Named("demo.fpsLogger"),
		)

		app.AddSystems(krajc.PostPhysicsSync,
			krajc.System(lowestBodySystem).Named("demo.lowestBody"),
			krajc.System(reportSystem).Named("demo.report").RunIf(krajc.EveryNthFrame(120)),
		)
	}
}

func makeStartupSystem(count int) func(world *krajc.World) {
	return func(world *krajc.World) {
		width := 32

		for idx := range count {
			world.Spawn(
				krajc.Named("ball"),
				Age{},
				physics.DynamicBody(1),
				physics.CircleCollider(0.5),
				physics.Position{Value: cp.Vector{X: float64(idx % width), Y: 10 + float64(idx/width)}},
				physics.Velocity{Linear: cp.Vector{Y: 2}},
			)
		}

		for x := range width {
			world.Spawn(
				krajc.Named("floor"),
				physics.StaticBody(),
				physics.CircleCollider(0.5),
				physics.Position{Value: cp.Vector{X: float64(x), Y: -6}},
				physics.Velocity{},
			)
		}

		slog.Info("Demo world spawned", slog.Int("entities", world.Len()))
	}
}

func ageSystem(query krajc.Query[struct{ Age *Age }]) {
	for item := range query.Items() {
		item.Age.Frames += 1
	}
}

// scoreSystem reads Age and therefore waits for ageSystem.
func scoreSystem(score *Score, query krajc.Query[struct{ Age Age }]) {
	score.Total = 0

	for item := range query.Items() {
		score.Total += item.Age.Frames
	}
}

func fpsLoggerSystem(frame krajc.Res[krajc.FrameTime], previousSecond *krajc.Local[uint64]) {
	second := uint64(frame.Value.SinceStart.Seconds())
	if second == previousSecond.Value {
		return
	}

	previousSecond.Value = second

	if delta := frame.Value.Delta.Seconds(); delta > 0 {
		slog.Info("Frame rate", slog.Float64("fps", 1/delta), slog.Uint64("second", second))
	}
}

func lowestBodySystem(lowest *Lowest, samples *krajc.SchedData[Samples], query krajc.Query[struct {
	Position physics.Position
	_        krajc.With[Age]
}]) {
	samples.Value.Count += 1

	lowest.Y = math.Inf(1)

	for item := range query.Items() {
		lowest.Y = min(lowest.Y, item.Position.Value.Y)
	}
}

func reportSystem(score Score, lowest Lowest, samples *krajc.SchedData[Samples], frame krajc.Res[krajc.FrameTime]) {
	slog.Info("Demo report",
		slog.Uint64("frame", frame.Value.Frame),
		slog.Uint64("samples", samples.Value.Count),
		slog.Uint64("score", score.Total),
		slog.Float64("lowest", lowest.Y),
	)
}
