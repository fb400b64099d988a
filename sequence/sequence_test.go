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

package sequence_test

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/emulator"
	"github.com/nestest/nestest/mesentest"
	"github.com/nestest/nestest/sequence"
	"github.com/nestest/nestest/supervisor"
	"github.com/nestest/nestest/symbols"
	"github.com/nestest/nestest/test"
)

func TestMain(m *testing.M) {
	mesentest.Main(m)
}

func create(t *testing.T, rt supervisor.Runtime) (*sequence.Sequence, string) {
	t.Helper()

	dir := t.TempDir()
	fn := mesentest.WriteROM(t, dir, mesentest.DebugInfo)

	seq, err := sequence.New(fn, rt)
	test.DemandSuccess(t, err)

	base := filepath.Join(dir, "sessions")
	seq.SetSessionBase(base)
	seq.SetTimeout(30 * time.Second)

	return seq, base
}

func TestPass(t *testing.T) {
	seq, base := create(t, mesentest.Runtime(mesentest.Sequence))

	seq.SendInput(emulator.Input{A: true}, 0)
	seq.RunFrames(2)
	seq.AssertEqual("a is pressed", seq.RamByteOf("joypad"), 1)
	seq.AssertNotEqual("something is pressed", seq.RamByte(mesentest.JoypadBase), 0)
	seq.AssertGreaterThan("frames have passed", seq.RamByteOf("frameCount"), 2)
	seq.AssertLessThan("not too many frames", seq.RamByteOf(mesentest.FrameCounter), 10)
	test.ExpectEquality(t, seq.Frame(), 2)

	test.ExpectSuccess(t, seq.Run())

	// session has been removed
	entries, err := os.ReadDir(base)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(entries), 0)
}

func TestAssertionFailed(t *testing.T) {
	seq, _ := create(t, mesentest.Runtime(mesentest.Sequence))

	seq.SendInput(emulator.Input{Start: true}, 1)
	seq.RunFrames(1)
	seq.AssertEqual("controller 0 is idle", seq.RamByte(mesentest.JoypadBase), 0)
	seq.AssertEqual("controller 1 pressed a", seq.RamByte(mesentest.JoypadBase+1), 1)
	seq.AssertEqual("never reached", 1, 2)

	err := seq.Run()
	var failed *sequence.AssertionFailed
	test.DemandSuccess(t, errors.As(err, &failed))
	test.ExpectEquality(t, failed.Index, 2)
	test.ExpectEquality(t, failed.Name, "controller 1 pressed a")
	test.ExpectEquality(t, failed.Operator, sequence.Equal)
	test.ExpectEquality(t, failed.A, "emu.read(241, emu.memType.cpuDebug)")
	test.ExpectEquality(t, failed.B, "1")
	test.ExpectSuccess(t, strings.Contains(err.Error(), "controller 1 pressed a"))

	// a sequence only runs once
	test.ExpectSuccess(t, curated.Is(seq.Run(), sequence.AlreadyRun))
}

func TestUnclassifiedFailure(t *testing.T) {
	seq, _ := create(t, mesentest.Runtime(mesentest.Crash))
	seq.AssertEqual("one", 1, 1)

	err := seq.Run()
	var failed *sequence.UnclassifiedFailure
	test.DemandSuccess(t, errors.As(err, &failed))
	test.ExpectEquality(t, failed.Code, mesentest.CrashCode)
}

func TestBuildErrors(t *testing.T) {
	seq, _ := create(t, mesentest.Runtime(mesentest.Sequence))
	test.ExpectSuccess(t, seq.Err())

	seq.AssertEqual("missing", seq.RamByteOf("missing"), 1)
	test.ExpectSuccess(t, curated.Is(seq.Err(), symbols.SymbolNotFound))

	// only the first error is kept
	seq.RunFrames(-1)
	test.ExpectSuccess(t, curated.Is(seq.Err(), symbols.SymbolNotFound))

	test.ExpectSuccess(t, curated.Is(seq.Run(), symbols.SymbolNotFound))

	seq, _ = create(t, mesentest.Runtime(mesentest.Sequence))
	seq.RunFrames(-1)
	test.ExpectSuccess(t, curated.Is(seq.Err(), sequence.InvalidCount))

	seq, _ = create(t, mesentest.Runtime(mesentest.Sequence))
	seq.AssertEqual("float", 1.5, 1)
	test.ExpectSuccess(t, curated.Is(seq.Err(), sequence.InvalidOperand))

	seq, _ = create(t, mesentest.Runtime(mesentest.Sequence))
	seq.AssertEqual("table", map[string]any{"a": 1}, 1)
	test.ExpectSuccess(t, curated.Is(seq.Err(), sequence.InvalidOperand))

	seq, _ = create(t, mesentest.Runtime(mesentest.Sequence))
	seq.RamByteOf(2.5)
	test.ExpectSuccess(t, curated.Is(seq.Err(), sequence.InvalidLocation))
}

func TestAssertionLimit(t *testing.T) {
	seq, _ := create(t, mesentest.Runtime(mesentest.Sequence))
	for i := range sequence.MaxAssertions - 1 {
		seq.AssertEqual(fmt.Sprintf("pass %d", i+1), 1, 1)
	}
	seq.AssertEqual("last possible", 1, 2)
	test.DemandSuccess(t, seq.Err())

	// the highest index survives the exit code intact
	var failed *sequence.AssertionFailed
	test.DemandSuccess(t, errors.As(seq.Run(), &failed))
	test.ExpectEquality(t, failed.Index, sequence.MaxAssertions)
	test.ExpectEquality(t, failed.Name, "last possible")

	// one more would wrap to zero and look like success
	seq, _ = create(t, mesentest.Runtime(mesentest.Sequence))
	for i := range sequence.MaxAssertions {
		seq.AssertEqual(fmt.Sprintf("pass %d", i+1), 1, 1)
	}
	test.DemandSuccess(t, seq.Err())
	seq.AssertEqual("one too many", 1, 2)
	test.ExpectSuccess(t, curated.Is(seq.Err(), sequence.TooManyAsserts))
	test.ExpectSuccess(t, curated.Is(seq.Run(), sequence.TooManyAsserts))
}

func TestCompile(t *testing.T) {
	seq, _ := create(t, mesentest.Runtime(mesentest.Sequence))

	seq.SendInput(emulator.Input{A: true}, 0)
	seq.RunFrames(2)
	seq.AssertEqual("score", seq.RamByteOf("score"), 10)
	seq.AssertLessThan("word", seq.RamWord(0x0302), 0x100)

	src, err := seq.Compile()
	test.DemandSuccess(t, err)

	test.ExpectSuccess(t, strings.Contains(src, "local stopOnErrors = true\n"))
	test.ExpectSuccess(t, strings.Contains(src,
		`    { frame = 0, type = "sendInput", controller = 0, value = { a = true, b = false, select = false, start = false, up = false, down = false, left = false, right = false } },`+"\n"))
	test.ExpectSuccess(t, strings.Contains(src,
		`    { frame = 2, type = "assert", index = 1, asserter = function() return (emu.read(768, emu.memType.cpuDebug) == 10) end },`+"\n"))
	test.ExpectSuccess(t, strings.Contains(src,
		`    { frame = 2, type = "assert", index = 2, asserter = function() return (emu.readWord(770, emu.memType.cpuDebug) < 256) end },`+"\n"))
	test.ExpectSuccess(t, strings.Contains(src, `    { frame = 3, type = "stop" },`+"\n"))

	// compiling does not prevent the sequence from running. the score is zero
	// so the first assertion fails
	var failed *sequence.AssertionFailed
	test.DemandSuccess(t, errors.As(seq.Run(), &failed))
	test.ExpectEquality(t, failed.Index, 1)
}

func TestOpenWindow(t *testing.T) {
	rt := mesentest.Runtime(mesentest.Sequence)
	rt.TestRunner = false
	seq, _ := create(t, rt)

	// failures do not stop the emulator when it is being watched
	seq.AssertEqual("fails", 1, 2)
	src, err := seq.Compile()
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, strings.Contains(src, "local stopOnErrors = false\n"))
	test.ExpectSuccess(t, seq.Run())
}

func TestKeepSession(t *testing.T) {
	seq, base := create(t, mesentest.Runtime(mesentest.Sequence))
	seq.KeepSession(true)
	test.DemandSuccess(t, seq.Run())

	entries, err := os.ReadDir(base)
	test.DemandSuccess(t, err)
	test.DemandEquality(t, len(entries), 1)

	_, err = os.Stat(filepath.Join(base, entries[0].Name(), "nestest.lua"))
	test.ExpectSuccess(t, err)
}

func TestTimeout(t *testing.T) {
	seq, _ := create(t, mesentest.Runtime(mesentest.Silent))
	seq.SetTimeout(50 * time.Millisecond)

	err := seq.Run()
	test.ExpectSuccess(t, curated.Is(err, sequence.InvalidRunResult))
	test.ExpectSuccess(t, curated.Has(err, supervisor.WaitTimeout))
}
