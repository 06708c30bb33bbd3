package script

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/wordevents/internal/dictionary"
	"github.com/dshills/wordevents/internal/input/key"
)

const patternTypeName = "words.pattern"

// registerPatternType installs the metatable for pattern userdata.
func registerPatternType(L *lua.LState) {
	mt := L.NewTypeMetatable(patternTypeName)
	L.SetField(mt, "__tostring", L.NewFunction(func(L *lua.LState) int {
		m, ok := checkPattern(L, 1)
		if !ok {
			L.Push(lua.LString("pattern"))
			return 1
		}
		L.Push(lua.LString(m.String()))
		return 1
	}))
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"source": func(L *lua.LState) int {
			m, _ := checkPattern(L, 1)
			L.Push(lua.LString(m.Key()))
			return 1
		},
		"test": func(L *lua.LState) int {
			m, _ := checkPattern(L, 1)
			ok, err := m.Match(L.CheckString(2))
			if err != nil {
				L.RaiseError("%s", err.Error())
			}
			L.Push(lua.LBool(ok))
			return 1
		},
	}))
}

// patternValue wraps a pattern matcher as userdata.
func patternValue(L *lua.LState, m dictionary.Matcher) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = m
	L.SetMetatable(ud, L.GetTypeMetatable(patternTypeName))
	return ud
}

func checkPattern(L *lua.LState, n int) (dictionary.Matcher, bool) {
	ud, ok := L.Get(n).(*lua.LUserData)
	if !ok {
		return dictionary.Matcher{}, false
	}
	m, ok := ud.Value.(dictionary.Matcher)
	return m, ok
}

// toMatcher converts a string (exact word) or pattern userdata.
func toMatcher(lv lua.LValue) (dictionary.Matcher, bool) {
	switch v := lv.(type) {
	case lua.LString:
		return dictionary.Exact(string(v)), true
	case lua.LNumber:
		return dictionary.Exact(v.String()), true
	case *lua.LUserData:
		m, ok := v.Value.(dictionary.Matcher)
		return m, ok
	default:
		return dictionary.Matcher{}, false
	}
}

// eventTable converts a keystroke to
// {key=, code=, rune=, type=, modifiers=}.
func eventTable(L *lua.LState, e key.Event) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("key", lua.LString(e.Text()))
	t.RawSetString("code", lua.LNumber(e.Code()))
	if e.IsRune() {
		t.RawSetString("rune", lua.LString(string(e.Rune)))
	} else {
		t.RawSetString("rune", lua.LString(""))
	}
	t.RawSetString("type", lua.LString(e.Type.String()))
	t.RawSetString("modifiers", lua.LString(e.Modifiers.String()))
	return t
}

// targetValue converts a callback target. Strings, numbers, booleans and
// fmt.Stringer values become Lua values; anything else is opaque userdata.
func targetValue(L *lua.LState, target any) lua.LValue {
	switch v := target.(type) {
	case nil:
		return lua.LNil
	case lua.LValue:
		return v
	case string:
		return lua.LString(v)
	case bool:
		return lua.LBool(v)
	case int:
		return lua.LNumber(v)
	case int64:
		return lua.LNumber(v)
	case float64:
		return lua.LNumber(v)
	case fmt.Stringer:
		return lua.LString(v.String())
	default:
		ud := L.NewUserData()
		ud.Value = v
		return ud
	}
}

// eventsTable converts keystrokes to a Lua array.
func eventsTable(L *lua.LState, events []key.Event) *lua.LTable {
	t := L.CreateTable(len(events), 0)
	for i, e := range events {
		t.RawSetInt(i+1, eventTable(L, e))
	}
	return t
}

// tableArray returns the values of t[1..#t].
func tableArray(t *lua.LTable) []lua.LValue {
	n := t.Len()
	values := make([]lua.LValue, 0, n)
	for i := 1; i <= n; i++ {
		values = append(values, t.RawGetInt(i))
	}
	return values
}
