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

package mesentest

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nestest/nestest/rom"
	"github.com/nestest/nestest/supervisor"
)

// Env is the environment variable that turns a test binary into the
// stand-in. The value is the Mode.
const Env = "NESTEST_FAKE_MESEN"

// Mode of the stand-in.
type Mode string

// List of valid Mode values.
const (
	// follows the command protocol of the controller script
	Controller Mode = "controller"

	// runs the events of a sequence script
	Sequence Mode = "sequence"

	// writes a message to stderr and exits with CrashCode
	Crash Mode = "crash"

	// starts but never publishes a status
	Silent Mode = "silent"
)

// CrashCode is the exit code used in Crash mode.
const CrashCode = 7

// Memory layout of the stand-in.
const (
	FrameCounter = 0x000a
	JoypadBase   = 0x00f0
)

// the stand-in exits if it receives no command for this long
const idleTimeout = 30 * time.Second

// Main runs the stand-in if the environment variable is set. Otherwise it
// runs the tests. It never returns.
func Main(m *testing.M) {
	if mode := os.Getenv(Env); mode != "" {
		os.Exit(run(Mode(mode), os.Args[1:]))
	}
	os.Exit(m.Run())
}

// Runtime returns a Runtime that launches the running test binary as the
// stand-in. Polling is quicker than the default.
func Runtime(mode Mode) supervisor.Runtime {
	return supervisor.Runtime{
		Executable: os.Args[0],
		Flags:      append([]string{}, supervisor.DefaultFlags...),
		TestRunner: true,
		Env:        []string{fmt.Sprintf("%s=%s", Env, mode)},
		Retries:    2500,
		Interval:   2 * time.Millisecond,
	}
}

// DebugInfo is a ca65 debug file describing the memory layout of the
// stand-in.
const DebugInfo = `version	major=2,minor=0
csym	id=0,name="score",scope=0,type=1,sc=static,sym=3
sym	id=0,name="RESET",addrsize=absolute,scope=0,val=0xC000,type=lab
sym	id=1,name="frameCount",addrsize=zeropage,scope=0,val=0x0A,type=lab
sym	id=2,name="joypad",addrsize=zeropage,scope=0,val=0xF0,type=lab
sym	id=3,name="_score",addrsize=absolute,scope=0,val=0x0300,type=lab
sym	id=4,name="_lives",addrsize=absolute,scope=0,val=0x0302,type=lab
`

// WriteROM writes a valid NROM image to the directory, along with the debug
// file if debug is not empty. Returns the path of the ROM.
func WriteROM(t testing.TB, dir string, debug string) string {
	t.Helper()

	hdr := rom.Header{
		Magic:    rom.Magic,
		PRGBanks: 1,
		CHRBanks: 1,
	}
	data := hdr.Image()

	fn := filepath.Join(dir, "game.nes")
	if err := os.WriteFile(fn, data, 0o600); err != nil {
		t.Fatalf("mesentest: %v", err)
	}

	if debug != "" {
		if err := os.WriteFile(filepath.Join(dir, "game.dbg"), []byte(debug), 0o600); err != nil {
			t.Fatalf("mesentest: %v", err)
		}
	}

	return fn
}

func run(mode Mode, args []string) int {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "mesentest: missing ROM and script")
		return 2
	}
	romFile := args[len(args)-2]
	scriptFile := args[len(args)-1]

	if _, err := os.Stat(romFile); err != nil {
		fmt.Fprintf(os.Stderr, "mesentest: %v\n", err)
		return 2
	}

	script, err := os.ReadFile(scriptFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mesentest: %v\n", err)
		return 2
	}

	fmt.Printf("mesentest: %s %s\n", filepath.Base(romFile), filepath.Base(scriptFile))

	m := newMachine()

	switch mode {
	case Controller:
		return m.controller(filepath.Dir(scriptFile), string(script))
	case Sequence:
		return m.sequence(string(script))
	case Crash:
		fmt.Fprintln(os.Stderr, "mesentest: crashed")
		return CrashCode
	case Silent:
		dir := filepath.Dir(scriptFile)
		start := time.Now()
		for time.Since(start) < idleTimeout {
			if _, err := os.Stat(dir); err != nil {
				return 0
			}
			time.Sleep(10 * time.Millisecond)
		}
		return 0
	}

	fmt.Fprintf(os.Stderr, "mesentest: unknown mode: %s\n", mode)
	return 2
}
