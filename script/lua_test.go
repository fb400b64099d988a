// This file is part of nestest.
//
// nestest is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// nestest is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with nestest.  If not, see <https://www.gnu.org/licenses/>.

package script_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"

	"github.com/nestest/nestest/channel"
	"github.com/nestest/nestest/script"
	"github.com/nestest/nestest/session"
	"github.com/nestest/nestest/test"
)

// mesen stands in for the emulator's Lua API. Only the functions used by the
// generated scripts are provided. The end of frame callback is run by frame().
type mesen struct {
	L        *lua.LState
	callback *lua.LFunction
	memory   [0x10000]uint8
	input    map[int]*lua.LTable
	log      []string
	stopped  bool
	code     int
	breaks   int
}

func newMesen(t *testing.T, src string) *mesen {
	t.Helper()

	m := &mesen{
		L:     lua.NewState(),
		input: make(map[int]*lua.LTable),
	}
	t.Cleanup(m.L.Close)

	emu := m.L.NewTable()

	memType := m.L.NewTable()
	memType.RawSetString("cpuDebug", lua.LNumber(0))
	memType.RawSetString("ppuDebug", lua.LNumber(1))
	memType.RawSetString("prgRom", lua.LNumber(2))
	emu.RawSetString("memType", memType)

	eventType := m.L.NewTable()
	eventType.RawSetString("endFrame", lua.LNumber(5))
	emu.RawSetString("eventType", eventType)

	m.L.SetFuncs(emu, map[string]lua.LGFunction{
		"addEventCallback": func(L *lua.LState) int {
			m.callback = L.CheckFunction(1)
			return 0
		},
		"read": func(L *lua.LState) int {
			L.Push(lua.LNumber(m.memory[L.CheckInt(1)&0xffff]))
			return 1
		},
		"readWord": func(L *lua.LState) int {
			a := L.CheckInt(1)
			L.Push(lua.LNumber(int(m.memory[a&0xffff]) | int(m.memory[(a+1)&0xffff])<<8))
			return 1
		},
		"write": func(L *lua.LState) int {
			m.memory[L.CheckInt(1)&0xffff] = uint8(L.CheckInt(2))
			return 0
		},
		"setInput": func(L *lua.LState) int {
			m.input[L.CheckInt(1)] = L.CheckTable(2)
			return 0
		},
		"takeScreenshot": func(L *lua.LState) int {
			L.Push(lua.LString("\x89PNG"))
			return 1
		},
		"log": func(L *lua.LState) int {
			m.log = append(m.log, L.CheckString(1))
			return 0
		},
		"stop": func(L *lua.LState) int {
			m.stopped = true
			m.code = L.OptInt(1, 0)
			return 0
		},
		"breakExecution": func(L *lua.LState) int {
			m.breaks++
			return 0
		},
	})
	m.L.SetGlobal("emu", emu)

	test.DemandSuccess(t, m.L.DoString(src))
	test.DemandSuccess(t, m.callback != nil)

	return m
}

func (m *mesen) frame(t *testing.T) {
	t.Helper()
	test.DemandSuccess(t, m.L.CallByParam(lua.P{Fn: m.callback, NRet: 0, Protect: true}))
}

// run frames until the script stops the emulator or the limit is reached
func (m *mesen) run(t *testing.T, limit int) {
	t.Helper()
	for i := 0; i < limit && !m.stopped; i++ {
		m.frame(t)
	}
}

func status(t *testing.T, ft *channel.FileTransport) *channel.Response {
	t.Helper()
	data, err := ft.Status()
	test.DemandSuccess(t, err)
	rsp := &channel.Response{}
	test.DemandSuccess(t, json.Unmarshal(data, rsp), string(data))
	return rsp
}

func TestControllerScript(t *testing.T) {
	dir := t.TempDir()
	src, err := script.Controller(dir)
	test.DemandSuccess(t, err)
	m := newMesen(t, src)

	ft := channel.NewFileTransport(filepath.Join(dir, session.CommandFilename), filepath.Join(dir, session.StatusFilename))

	// nothing is published until there is a command
	m.frame(t)
	_, err = ft.Status()
	test.ExpectSuccess(t, os.IsNotExist(err))

	m.memory[0x10] = 16
	m.memory[0x11] = 17
	m.memory[0x12] = 18
	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(1,
		`NesTest.writeValue("value", NesTest.readRange(16, 3, emu.memType.cpuDebug))`))))
	m.frame(t)

	rsp := status(t, ft)
	test.ExpectEquality(t, rsp.Seq, 1)
	v, err := rsp.Ints("value")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fmt.Sprint(v), "[16 17 18]")

	// a command is only run once
	m.memory[0x10] = 99
	m.frame(t)
	v, err = status(t, ft).Ints("value")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, fmt.Sprint(v), "[16 17 18]")

	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(2, `
emu.write(768, 42, emu.memType.cpuDebug)
emu.write(769, 1, emu.memType.cpuDebug)
NesTest.writeValue("byte", emu.read(768, emu.memType.cpuDebug))
NesTest.writeValue("word", emu.readWord(768, emu.memType.cpuDebug))
NesTest.writeValue("name", "a \"quoted\"\tname")
NesTest.log("first")
NesTest.log("second")
`))))
	m.frame(t)

	rsp = status(t, ft)
	test.ExpectEquality(t, rsp.Seq, 2)
	b, err := rsp.Int("byte")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, b, 42)
	w, err := rsp.Int("word")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, w, 0x012a)
	s, err := rsp.String("name")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, s, "a \"quoted\"\tname")
	test.ExpectEquality(t, strings.Join(rsp.LogLines(), ","), "first,second")

	// values from an earlier command are not carried over
	test.ExpectFailure(t, rsp.Has("value"))

	// the status of a waiting command is published once the frames have
	// passed
	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(3, "NesTest.waitFrames(2)"))))
	m.frame(t)
	test.ExpectEquality(t, status(t, ft).Seq, 2)
	m.frame(t)
	test.ExpectEquality(t, status(t, ft).Seq, 2)
	m.frame(t)
	test.ExpectEquality(t, status(t, ft).Seq, 3)

	// an error in a command is reported in the log
	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(4, `error("boom")`))))
	m.frame(t)
	rsp = status(t, ft)
	test.ExpectEquality(t, rsp.Seq, 4)
	test.ExpectSuccess(t, strings.Contains(rsp.Log, "error in command 4"), rsp.Log)
	test.ExpectSuccess(t, strings.Contains(rsp.Log, "boom"), rsp.Log)

	shot := filepath.Join(dir, "shot.png")
	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(5, fmt.Sprintf("NesTest.saveScreenshot(%s)", script.Quote(shot))))))
	m.frame(t)
	saved, err := status(t, ft).Bool("saved")
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, saved)
	data, err := os.ReadFile(shot)
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, string(data), "\x89PNG")

	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(6, "NesTest.breakExecution()"))))
	m.frame(t)
	test.ExpectEquality(t, status(t, ft).Seq, 6)
	test.ExpectEquality(t, m.breaks, 1)
	test.ExpectFailure(t, m.stopped)

	// the status is published before the emulator stops
	test.DemandSuccess(t, ft.Post([]byte(script.Envelope(7, "NesTest.stop(3)"))))
	m.frame(t)
	test.ExpectEquality(t, status(t, ft).Seq, 7)
	test.ExpectSuccess(t, m.stopped)
	test.ExpectEquality(t, m.code, 3)
}

// events for a sequence that sends input on the first frame and then reads
// the byte at 0x0300 on the next two frames
func events(t *testing.T, first int, second int) []string {
	t.Helper()

	assert := func(frame int, index int, value int) script.Record {
		return script.Record{
			{Name: "frame", Value: script.Number(frame)},
			{Name: "type", Value: script.Text("assert")},
			{Name: "index", Value: script.Number(index)},
			{Name: "asserter", Value: script.Expression(fmt.Sprintf("function() return (emu.read(768, emu.memType.cpuDebug) == %d) end", value))},
		}
	}

	var e []string
	for _, r := range []script.Record{
		{
			{Name: "frame", Value: script.Number(0)},
			{Name: "type", Value: script.Text("sendInput")},
			{Name: "controller", Value: script.Number(1)},
			{Name: "value", Value: script.Record{{Name: "a", Value: script.Bool(true)}}},
		},
		assert(1, 1, first),
		assert(2, 2, second),
		{
			{Name: "frame", Value: script.Number(3)},
			{Name: "type", Value: script.Text("stop")},
		},
	} {
		s, err := script.Emit(r)
		test.DemandSuccess(t, err)
		e = append(e, s)
	}
	return e
}

func TestSequenceScript(t *testing.T) {
	// all assertions pass
	src, err := script.Sequence(events(t, 0, 0), true)
	test.DemandSuccess(t, err)
	m := newMesen(t, src)
	m.run(t, 10)
	test.ExpectSuccess(t, m.stopped)
	test.ExpectEquality(t, m.code, 0)
	test.DemandSuccess(t, m.input[1] != nil)
	test.ExpectEquality(t, m.input[1].RawGetString("a"), lua.LValue(lua.LTrue))

	// the second assertion fails and its index is the exit code
	src, err = script.Sequence(events(t, 0, 5), true)
	test.DemandSuccess(t, err)
	m = newMesen(t, src)
	m.run(t, 10)
	test.ExpectSuccess(t, m.stopped)
	test.ExpectEquality(t, m.code, 2)
	test.ExpectEquality(t, strings.Join(m.log, ","), "nestest: assertion 2 failed")

	// without stopping on errors the emulator is paused at the end with the
	// first failure in the log
	src, err = script.Sequence(events(t, 5, 5), false)
	test.DemandSuccess(t, err)
	m = newMesen(t, src)
	m.run(t, 10)
	test.ExpectFailure(t, m.stopped)
	test.ExpectEquality(t, m.breaks, 1)
	test.ExpectEquality(t, len(m.log), 3)
	test.ExpectEquality(t, m.log[2], "nestest: sequence complete. first failure: 1")
}
