// sequence_script.go - Note sequences described by Lua scripts
//
// A script builds the sequence by calling two globals:
//
//	note{key=60, velocity=100, duration=0.5, channel=0, preset=0, bank=0}
//	rest(0.25)
//
// Missing note fields take the DefaultMidiNote values; durations are seconds
// and keys may be numbers or names such as "C4" or "F#3" (C4 is 60).

package midisynth

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

// LoadSequenceScriptFile reads and runs the Lua script at path.
func LoadSequenceScriptFile(path string) ([]MidiNote, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSequenceScript, err)
	}
	return LoadSequenceScript(string(src))
}

// LoadSequenceScript runs src with only the base, table, string and math
// libraries and returns the notes it produced, in call order.
func LoadSequenceScript(src string) ([]MidiNote, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		if err := L.CallByParam(lua.P{Fn: L.NewFunction(lib.fn), NRet: 0, Protect: true}, lua.LString(lib.name)); err != nil {
			return nil, fmt.Errorf("%w: open %s: %w", ErrSequenceScript, lib.name, err)
		}
	}
	// No file access from scripts.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}

	var notes []MidiNote
	L.SetGlobal("note", L.NewFunction(func(L *lua.LState) int {
		tbl := L.CheckTable(1)
		n := DefaultMidiNote()
		n.Channel = luaIntField(L, tbl, "channel", n.Channel)
		n.Preset = luaIntField(L, tbl, "preset", n.Preset)
		n.Bank = luaIntField(L, tbl, "bank", n.Bank)
		n.Velocity = luaIntField(L, tbl, "velocity", n.Velocity)
		n.Key = luaKeyField(L, tbl, n.Key)
		n.Duration = luaSeconds(L, tbl.RawGetString("duration"), n.Duration)
		notes = append(notes, n)
		return 0
	}))
	L.SetGlobal("rest", L.NewFunction(func(L *lua.LState) int {
		n := DefaultMidiNote()
		n.Velocity = 0
		n.Duration = luaSeconds(L, L.CheckNumber(1), 0)
		notes = append(notes, n)
		return 0
	}))

	if err := L.DoString(src); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSequenceScript, err)
	}
	return notes, nil
}

func luaIntField(L *lua.LState, tbl *lua.LTable, field string, def int32) int32 {
	v := tbl.RawGetString(field)
	if v == lua.LNil {
		return def
	}
	num, ok := v.(lua.LNumber)
	if !ok {
		L.ArgError(1, field+" must be a number")
	}
	return int32(num)
}

func luaKeyField(L *lua.LState, tbl *lua.LTable, def int32) int32 {
	switch v := tbl.RawGetString("key").(type) {
	case *lua.LNilType:
		return def
	case lua.LNumber:
		return int32(v)
	case lua.LString:
		key, err := parseNoteName(string(v))
		if err != nil {
			L.ArgError(1, err.Error())
		}
		return key
	default:
		L.ArgError(1, "key must be a number or a note name")
	}
	return def
}

func luaSeconds(L *lua.LState, v lua.LValue, def time.Duration) time.Duration {
	if v == lua.LNil {
		return def
	}
	num, ok := v.(lua.LNumber)
	secs := float64(num)
	if !ok || secs < 0 || math.IsNaN(secs) || math.IsInf(secs, 0) {
		L.ArgError(1, "duration must be a non-negative number of seconds")
	}
	return time.Duration(secs * float64(time.Second))
}

var noteOffsets = map[byte]int32{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// parseNoteName converts names like "C4", "F#3" or "Bb-1" to MIDI keys (C4 = 60).
func parseNoteName(name string) (int32, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}
	offset, ok := noteOffsets[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("bad note name %q", name)
	}
	s = s[1:]
	for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
		if s[0] == '#' {
			offset++
		} else {
			offset--
		}
		s = s[1:]
	}
	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad octave in note name %q", name)
	}
	key := int32(octave+1)*12 + offset
	if key < 0 || key > 127 {
		return 0, fmt.Errorf("note %q out of range", name)
	}
	return key, nil
}
