package scripting

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/oliverbestmann/krajc"
	lua "github.com/yuin/gopher-lua"
)

// VM is the resource holding the lua state of all loaded scripts.
// A lua state is not safe for concurrent use, every script system takes
// the VM as a resource and is therefore never executed concurrently with
// another script system.
type VM struct {
	state *lua.LState
}

func (vm VM) Close() error {
	if vm.state != nil {
		vm.state.Close()
	}

	return nil
}

// Number returns the value of a global lua number.
func (vm VM) Number(name string) (float64, bool) {
	if vm.state == nil {
		return 0, false
	}

	value, ok := vm.state.GetGlobal(name).(lua.LNumber)
	return float64(value), ok
}

type scriptSystem struct {
	name     string
	schedule krajc.ScheduleId
	fn       *lua.LFunction
}

// Engine loads lua scripts into a single lua state. Scripts declare systems
// by calling the global function system:
//
//	system {
//	    name = "count",
//	    schedule = "update",
//	    run = function(frame) counter = counter + 1 end,
//	}
//
// The frame argument is a table with the fields delta (seconds) and frame.
// Scripts can write to the log using log(message).
type Engine struct {
	state   *lua.LState
	logger  *slog.Logger
	systems []scriptSystem
	names   map[string]struct{}
}

func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		state:  lua.NewState(),
		logger: logger,
		names:  map[string]struct{}{},
	}

	e.state.SetGlobal("API_VERSION", lua.LNumber(1))
	e.state.SetGlobal("system", e.state.NewFunction(e.luaSystem))
	e.state.SetGlobal("log", e.state.NewFunction(e.luaLog))

	return e
}

// LoadFile executes the lua script at path.
func (e *Engine) LoadFile(path string) error {
	if err := e.state.DoFile(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}

	e.logger.Debug("Lua script loaded", slog.String("file", path))
	return nil
}

// LoadString executes the given lua source.
func (e *Engine) LoadString(name, source string) error {
	if err := e.state.DoString(source); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}

	e.logger.Debug("Lua script loaded", slog.String("name", name))
	return nil
}

// Close releases the lua state. Only needed if the engine was never applied
// to an app, the VM resource closes the state otherwise.
func (e *Engine) Close() {
	e.state.Close()
}

// ApplyTo inserts the VM resource and registers every declared system.
func (e *Engine) ApplyTo(app *krajc.App) {
	app.InsertResource(VM{state: e.state})

	for _, system := range e.systems {
		app.AddSystems(system.schedule, krajc.System(system.run).Named("lua:"+system.name))
	}
}

func (e *Engine) luaSystem(L *lua.LState) int {
	def := L.CheckTable(1)

	name := lua.LVAsString(def.RawGetString("name"))
	if name == "" {
		L.ArgError(1, "system requires a name")
		return 0
	}

	if _, exists := e.names[name]; exists {
		L.ArgError(1, fmt.Sprintf("system %q declared twice", name))
		return 0
	}

	scheduleName := lua.LVAsString(def.RawGetString("schedule"))
	if scheduleName == "" {
		scheduleName = "update"
	}

	schedule, ok := krajc.ScheduleByName(scheduleName)
	if !ok {
		L.ArgError(1, fmt.Sprintf("unknown schedule %q", scheduleName))
		return 0
	}

	fn, ok := def.RawGetString("run").(*lua.LFunction)
	if !ok {
		L.ArgError(1, "system requires a run function")
		return 0
	}

	e.names[name] = struct{}{}
	e.systems = append(e.systems, scriptSystem{name: name, schedule: schedule, fn: fn})

	return 0
}

func (e *Engine) luaLog(L *lua.LState) int {
	e.logger.Info(L.CheckString(1), slog.String("source", "lua"))
	return 0
}

func (s scriptSystem) run(vm krajc.Res[VM], frameTime krajc.Res[krajc.FrameTime]) error {
	L := vm.Value.state
	if L == nil {
		return errors.New("lua vm not initialized")
	}

	frame := L.NewTable()
	frame.RawSetString("delta", lua.LNumber(frameTime.Value.Delta.Seconds()))
	frame.RawSetString("frame", lua.LNumber(frameTime.Value.Frame))

	return L.CallByParam(lua.P{Fn: s.fn, NRet: 0, Protect: true}, frame)
}
