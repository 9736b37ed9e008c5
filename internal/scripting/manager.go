package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/survival/internal/game/dice"
)

// GlobalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const GlobalScope = "__global__"

// CharacterInfo is a snapshot of a character's state passed to Lua callbacks.
type CharacterInfo struct {
	ID        string
	Name      string
	IsAvatar  bool
	PowerKJ   float64
	KCal      int
	WaterML   int64
	Mutations []string
	Bionics   []string
}

// Manager owns one sandboxed LState per script scope and exposes hook dispatch.
//
// Manager is safe for concurrent CallHook after all LoadScope calls complete.
// Each LState is single-threaded; a per-scope mutex serializes calls to the
// same scope while allowing different scopes to run concurrently.
type Manager struct {
	mu     sync.RWMutex
	scopes map[string]*scope
	roller *dice.Roller
	logger *zap.Logger

	// Injected after construction. nil = no-op in engine.* modules.
	GetCharacter func(id string) *CharacterInfo
	Notify       func(id, msg string)
}

type scope struct {
	mu        sync.Mutex
	L         *lua.LState
	instLimit int
}

// NewManager creates a Manager.
//
// Precondition: roller and logger must be non-nil.
// Postcondition: Returns a non-nil Manager with no scopes loaded.
func NewManager(roller *dice.Roller, logger *zap.Logger) *Manager {
	if roller == nil {
		panic("scripting: NewManager requires a non-nil roller")
	}
	if logger == nil {
		panic("scripting: NewManager requires a non-nil logger")
	}
	return &Manager{
		scopes: make(map[string]*scope),
		roller: roller,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for name, registers all engine.* modules,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: name must be non-empty; scriptDir must be a readable directory.
// Postcondition: Scope VM is registered; returns error on Lua load failure.
func (m *Manager) LoadScope(name, scriptDir string, instLimit int) error {
	return m.loadInto(name, scriptDir, instLimit)
}

// LoadGlobal creates the GlobalScope VM for scripts reachable from any scope.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(GlobalScope, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	L, cancel := NewSandboxedState(instLimit)
	m.RegisterModules(L)
	for _, path := range luaFiles {
		if err := L.DoFile(path); err != nil {
			cancel()
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}
	cancel()
	L.RemoveContext()

	m.mu.Lock()
	if old, ok := m.scopes[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.scopes[key] = &scope{L: L, instLimit: instLimit}
	m.mu.Unlock()
	return nil
}

// HasHook reports whether a global function named hook is defined in the
// named scope or the global fallback.
func (m *Manager) HasHook(name, hook string) bool {
	s := m.lookup(name)
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.L.GetGlobal(hook).Type() == lua.LTFunction
}

func (m *Manager) lookup(name string) *scope {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.scopes[name]
	if !ok {
		s = m.scopes[GlobalScope]
	}
	return s
}

// CallHook calls the named Lua global function in the named scope. If the
// scope has no VM, the GlobalScope VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime errors
// and exhausted instruction budgets are logged at Warn level and never propagated.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(name, hook string, args ...lua.LValue) (lua.LValue, error) {
	s := m.lookup(name)
	if s == nil {
		m.logger.Info("scripting: no VM for scope",
			zap.String("scope", name),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	L := s.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	cancel := armLimit(L, s.instLimit)
	defer func() {
		cancel()
		L.RemoveContext()
	}()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", name),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

// EvalCondition calls hook with the character id and reports whether it
// returned a truthy value. A missing hook or a failing script yields false.
func (m *Manager) EvalCondition(name, hook, characterID string) bool {
	ret, err := m.CallHook(name, hook, lua.LString(characterID))
	if err != nil {
		return false
	}
	return lua.LVAsBool(ret)
}

// Close releases every VM. CallHook after Close returns LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, s := range m.scopes {
		s.mu.Lock()
		s.L.Close()
		s.mu.Unlock()
		delete(m.scopes, key)
	}
}
