package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// Engine wraps a single gopher-lua VM for scripted enemy behavior.
// Single-goroutine access only (game loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory tree. A missing directory is not an error: levels without
// scripted species simply never call into the VM.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	if err := e.loadDir(filepath.Join(scriptsDir, "ai")); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load ai scripts: %w", err)
	}

	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // skip missing dirs
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// Close shuts the VM down.
func (e *Engine) Close() {
	e.vm.Close()
}

// BehaviorContext holds pre-packed data for one enemy behavior decision.
// Distances are horizontal world units; the script never sees Go objects.
type BehaviorContext struct {
	Tag           string
	State         string // idle, roaming, chasing, returning
	X, Y, Z       float64
	AnchorX       float64
	AnchorZ       float64
	ObserverX     float64
	ObserverZ     float64
	ObserverDist  float64
	AggroRadius   float64
	DeaggroRadius float64
	Speed         float64
	RoamRadius    float64
}

// BehaviorCommand is what a behavior script returns: the next state plus an
// optional move target. An empty State means "keep the current one".
type BehaviorCommand struct {
	State   string
	MoveX   float64
	MoveZ   float64
	HasMove bool
}

// DecideEnemy calls the Lua decide_enemy function for a scripted species.
// Any script failure returns ok=false and the caller falls back to the
// built-in state machine, so a bad script degrades rather than breaks.
func (e *Engine) DecideEnemy(ctx BehaviorContext) (BehaviorCommand, bool) {
	fn := e.vm.GetGlobal("decide_enemy")
	if fn == lua.LNil {
		e.log.Error("lua function decide_enemy not found")
		return BehaviorCommand{}, false
	}

	t := e.vm.NewTable()
	t.RawSetString("tag", lua.LString(ctx.Tag))
	t.RawSetString("state", lua.LString(ctx.State))
	t.RawSetString("x", lua.LNumber(ctx.X))
	t.RawSetString("y", lua.LNumber(ctx.Y))
	t.RawSetString("z", lua.LNumber(ctx.Z))
	t.RawSetString("anchor_x", lua.LNumber(ctx.AnchorX))
	t.RawSetString("anchor_z", lua.LNumber(ctx.AnchorZ))
	t.RawSetString("observer_x", lua.LNumber(ctx.ObserverX))
	t.RawSetString("observer_z", lua.LNumber(ctx.ObserverZ))
	t.RawSetString("observer_dist", lua.LNumber(ctx.ObserverDist))
	t.RawSetString("aggro_radius", lua.LNumber(ctx.AggroRadius))
	t.RawSetString("deaggro_radius", lua.LNumber(ctx.DeaggroRadius))
	t.RawSetString("speed", lua.LNumber(ctx.Speed))
	t.RawSetString("roam_radius", lua.LNumber(ctx.RoamRadius))

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, t); err != nil {
		e.log.Error("lua decide_enemy error", zap.String("tag", ctx.Tag), zap.Error(err))
		return BehaviorCommand{}, false
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)

	rt, ok := result.(*lua.LTable)
	if !ok {
		e.log.Error("lua decide_enemy returned non-table", zap.String("tag", ctx.Tag))
		return BehaviorCommand{}, false
	}

	cmd := BehaviorCommand{
		State: lua.LVAsString(rt.RawGetString("state")),
	}
	if mx := rt.RawGetString("move_x"); mx != lua.LNil {
		cmd.MoveX = float64(lua.LVAsNumber(mx))
		cmd.MoveZ = float64(lua.LVAsNumber(rt.RawGetString("move_z")))
		cmd.HasMove = true
	}
	return cmd, true
}
