package scripting_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/survival/internal/game/dice"
	"github.com/cory-johannsen/survival/internal/scripting"
)

func runScript(t *testing.T, mgr *scripting.Manager, luaSrc, hook string, args ...lua.LValue) lua.LValue {
	t.Helper()
	dir := writeTempLua(t, "test.lua", luaSrc)
	scopeID := "modtest_" + t.Name()
	require.NoError(t, mgr.LoadScope(scopeID, dir, 0))
	ret, err := mgr.CallHook(scopeID, hook, args...)
	require.NoError(t, err)
	return ret
}

func TestEngineLog_AllLevels(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	mgr := scripting.NewManager(dice.NewLoggedRoller(dice.NewCryptoSource(), logger), logger)

	runScript(t, mgr, `
		function do_all_logs()
			engine.log.debug("d")
			engine.log.info("i")
			engine.log.warn("w")
		end
	`, "do_all_logs")

	levels := map[string]bool{}
	for _, e := range logs.FilterMessage("lua").All() {
		levels[e.Level.String()] = true
	}
	assert.Equal(t, map[string]bool{"debug": true, "info": true, "warn": true}, levels)
}

func TestEngineDice_Roll_ReturnsTable(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function roll_it()
			local r = engine.dice.roll("2d6+3")
			return r.total - r.modifier - r.dice[1] - r.dice[2]
		end
	`, "roll_it")
	assert.Equal(t, lua.LNumber(0), ret)
}

func TestEngineDice_Roll_InvalidExpression_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function bad_roll()
			local r, err = engine.dice.roll("banana")
			return r == nil and err ~= nil
		end
	`, "bad_roll")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineCharacter_Get_NilCallback_ReturnsNil(t *testing.T) {
	mgr, _ := newTestManager(t)
	ret := runScript(t, mgr, `
		function get_it() return engine.character.get("avatar") == nil end
	`, "get_it")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineCharacter_Get_WithCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	mgr.GetCharacter = func(id string) *scripting.CharacterInfo {
		if id != "avatar" {
			return nil
		}
		return &scripting.CharacterInfo{ID: id, Name: "Ana", PowerKJ: 120, KCal: 1800, Mutations: []string{"SLEEPY"}}
	}
	ret := runScript(t, mgr, `
		function powered()
			local c = engine.character.get("avatar")
			return c.power_kj > 100 and c.mutations.SLEEPY == true and c.name == "Ana"
		end
	`, "powered")
	assert.Equal(t, lua.LTrue, ret)
}

func TestEngineCharacter_Notify_CallsCallback(t *testing.T) {
	mgr, _ := newTestManager(t)
	var gotID, gotMsg string
	mgr.Notify = func(id, msg string) { gotID, gotMsg = id, msg }
	runScript(t, mgr, `
		function warn_player() engine.character.notify("avatar", "Your plate cracks.") end
	`, "warn_player")
	assert.Equal(t, "avatar", gotID)
	assert.Equal(t, "Your plate cracks.", gotMsg)
}

func TestProperty_DicePercent_InRange(t *testing.T) {
	mgr, _ := newTestManager(t)
	dir := writeTempLua(t, "pct.lua", `function pct() return engine.dice.percent() end`)
	require.NoError(t, mgr.LoadScope("pct", dir, 0))
	rapid.Check(t, func(rt *rapid.T) {
		ret, err := mgr.CallHook("pct", "pct")
		require.NoError(rt, err)
		n, ok := ret.(lua.LNumber)
		require.True(rt, ok)
		assert.GreaterOrEqual(rt, int(n), 0)
		assert.Less(rt, int(n), 100)
	})
}
