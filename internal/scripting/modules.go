package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all engine.* Lua tables into L:
//
//	engine.log.debug/info/warn(msg)
//	engine.dice.roll(expr)      -> {total, modifier, dice}
//	engine.dice.percent()       -> int in [0, 100)
//	engine.character.get(id)    -> character snapshot table or nil
//	engine.character.notify(id, msg)
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()
	L.SetField(engine, "log", m.logModule(L))
	L.SetField(engine, "dice", m.diceModule(L))
	L.SetField(engine, "character", m.characterModule(L))
	L.SetGlobal("engine", engine)
}

func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	level := func(log func(string, ...zap.Field)) lua.LGFunction {
		return func(L *lua.LState) int {
			log("lua", zap.String("msg", L.CheckString(1)))
			return 0
		}
	}
	L.SetField(mod, "debug", L.NewFunction(level(m.logger.Debug)))
	L.SetField(mod, "info", L.NewFunction(level(m.logger.Info)))
	L.SetField(mod, "warn", L.NewFunction(level(m.logger.Warn)))
	return mod
}

func (m *Manager) diceModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "roll", L.NewFunction(func(L *lua.LState) int {
		res, err := m.roller.RollExpr(L.CheckString(1))
		if err != nil {
			L.Push(lua.LNil)
			L.Push(lua.LString(err.Error()))
			return 2
		}
		tbl := L.NewTable()
		L.SetField(tbl, "total", lua.LNumber(res.Total()))
		L.SetField(tbl, "modifier", lua.LNumber(res.Modifier))
		dice := L.NewTable()
		for _, d := range res.Dice {
			dice.Append(lua.LNumber(d))
		}
		L.SetField(tbl, "dice", dice)
		L.Push(tbl)
		return 1
	}))
	L.SetField(mod, "percent", L.NewFunction(func(L *lua.LState) int {
		L.Push(lua.LNumber(m.roller.Percent("lua")))
		return 1
	}))
	return mod
}

func (m *Manager) characterModule(L *lua.LState) *lua.LTable {
	mod := L.NewTable()
	L.SetField(mod, "get", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		if m.GetCharacter == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetCharacter(id)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(characterToTable(L, info))
		return 1
	}))
	L.SetField(mod, "notify", L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		msg := L.CheckString(2)
		if m.Notify != nil {
			m.Notify(id, msg)
		}
		return 0
	}))
	return mod
}

func characterToTable(L *lua.LState, info *CharacterInfo) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "id", lua.LString(info.ID))
	L.SetField(tbl, "name", lua.LString(info.Name))
	L.SetField(tbl, "is_avatar", lua.LBool(info.IsAvatar))
	L.SetField(tbl, "power_kj", lua.LNumber(info.PowerKJ))
	L.SetField(tbl, "kcal", lua.LNumber(info.KCal))
	L.SetField(tbl, "water_ml", lua.LNumber(info.WaterML))
	L.SetField(tbl, "mutations", stringSet(L, info.Mutations))
	L.SetField(tbl, "bionics", stringSet(L, info.Bionics))
	return tbl
}

// stringSet renders ids as a Lua set: {id = true, ...}.
func stringSet(L *lua.LState, ids []string) *lua.LTable {
	tbl := L.NewTable()
	for _, id := range ids {
		L.SetField(tbl, id, lua.LTrue)
	}
	return tbl
}
