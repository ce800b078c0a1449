package krajc

import (
	"context"
	"errors"
	"fmt"
	"reflect"
)

// App collects plugins, systems and resources and runs the resulting Runtime.
type App struct {
	options Options
	runtime *Runtime
	run     RunRuntime
}

// Configure sets the options of the runtime. It must be called before the
// runtime is created by any other method of App.
func (a *App) Configure(options Options) {
	if a.runtime != nil {
		panic("App.Configure called after the runtime was created")
	}

	a.options = options
}

func (a *App) Runtime() *Runtime {
	if a.runtime == nil {
		a.runtime = NewRuntime(a.options)
	}

	return a.runtime
}

func (a *App) AddPlugin(plugin Plugin) {
	plugin.ApplyTo(a)
}

// AddSystems registers the systems into the given schedule. It panics if a
// system can not be registered.
func (a *App) AddSystems(scheduleId ScheduleId, system AnySystem, systems ...AnySystem) {
	if !reflect.ValueOf(scheduleId).Comparable() {
		panic(fmt.Sprintf("scheduleId must be comparable: %s", scheduleId))
	}

	systems = append([]AnySystem{system}, systems...)

	if err := a.Runtime().AddSystems(scheduleId, systems...); err != nil {
		panic(err)
	}
}

func (a *App) InsertResource(res any) {
	a.Runtime().InsertResource(res)
}

// RunRuntime replaces the default main loop of Run.
func (a *App) RunRuntime(run RunRuntime) {
	a.run = run
}

// Run executes the runtime until the context is cancelled or a frame fails.
// The runtime is closed afterwards.
func (a *App) Run(ctx context.Context) (err error) {
	if a.run == nil {
		a.run = func(ctx context.Context, rt *Runtime) error {
			return rt.Run(ctx)
		}
	}

	rt := a.Runtime()

	defer func() {
		err = errors.Join(err, rt.Close())
	}()

	return a.run(ctx, rt)
}

type Plugin interface {
	ApplyTo(app *App)
}

type PluginFunc func(app *App)

func (plugin PluginFunc) ApplyTo(app *App) {
	plugin(app)
}

type RunRuntime func(ctx context.Context, rt *Runtime) error
