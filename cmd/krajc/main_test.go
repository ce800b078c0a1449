package main

import (
	"context"
	"testing"

	"github.com/oliverbestmann/krajc"
	"github.com/oliverbestmann/krajc/internal/config"
	"github.com/oliverbestmann/krajc/physics"
	"github.com/stretchr/testify/require"
)

func TestDemoRuns(t *testing.T) {
	cfg := config.Default()
	cfg.Engine.Entities = 64

	var app krajc.App
	app.Configure(krajc.Options{Parallelism: true, Workers: 2})
	app.InsertResource(krajc.NewTimingStats())
	app.AddPlugin(krajc.PluginFunc(physics.Plugin))
	app.AddPlugin(demoPlugin(cfg))
	app.RunRuntime(runFrames(10))

	rt := app.Runtime()
	require.NoError(t, app.Run(context.Background()))

	score, _ := krajc.ResourceOf[Score](rt)
	// every ball aged by one per frame
	require.Equal(t, uint64(64*10), score.Total)

	// frames run back to back, the balls barely moved
	lowest, _ := krajc.ResourceOf[Lowest](rt)
	require.InDelta(t, 10.0, lowest.Y, 1.0)

	postPhysics, _ := rt.Schedule(krajc.PostPhysicsSync)
	require.Equal(t, uint64(10), krajc.ScheduleData[Samples](postPhysics).Count)

	// ageSystem and scoreSystem conflict on Age
	schedule, _ := rt.Schedule(krajc.Update)
	require.True(t, schedule.Graph().HasEdge(0, 1))
}
