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

package supervisor

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/nestest/nestest/channel"
	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/paths"
	"github.com/nestest/nestest/prefs"
)

// DefaultFlags are passed to the emulator on every launch.
var DefaultFlags = []string{
	"/DoNotSaveSettings",
	"/ShowFPS=false",
	"/ShowLagCounter=false",
	"/ShowInputDisplay=false",
}

// TestRunnerFlag puts the emulator in headless mode.
const TestRunnerFlag = "--testrunner"

// Runtime describes how the emulator is launched.
type Runtime struct {
	// path to the emulator
	Executable string

	// the executable is run by the interpreter if the string is not empty
	Interpreter string

	// passed to the emulator before the ROM and script filenames
	Flags []string

	// run the emulator without a window. the emulator exits when the script
	// calls emu.stop()
	TestRunner bool

	// working directory of the emulator process. the current directory if
	// empty
	Dir string

	// additional environment variables in the form "key=value"
	Env []string

	// polling values for the command channel
	Retries  int
	Interval time.Duration
}

// DefaultRuntime returns the Runtime used when there are no preferences.
func DefaultRuntime() Runtime {
	rt := Runtime{
		Executable: paths.ResourcePath("Mesen.exe"),
		Flags:      append([]string{}, DefaultFlags...),
		TestRunner: true,
		Retries:    channel.DefaultRetries,
		Interval:   channel.DefaultInterval,
	}
	if runtime.GOOS != "windows" {
		rt.Interpreter = "mono"
	}
	return rt
}

func (rt Runtime) String() string {
	return strings.Join(rt.Args("rom.nes", "script.lua"), " ")
}

// Args returns the complete command line for running the script with the
// ROM. The first entry is the program to run.
func (rt Runtime) Args(rom string, script string) []string {
	var args []string
	if rt.Interpreter != "" {
		args = append(args, rt.Interpreter)
	}
	args = append(args, rt.Executable)
	if rt.TestRunner {
		args = append(args, TestRunnerFlag)
	}
	args = append(args, rt.Flags...)
	args = append(args, rom, script)
	return args
}

// Preferences for the emulator runtime.
type Preferences struct {
	dsk *prefs.Disk

	Executable  prefs.String
	Interpreter prefs.String
	TestRunner  prefs.Bool
	Retries     prefs.Int
	Interval    prefs.Duration
}

// Preference keys.
const (
	PrefExecutable  = "mesen.executable"
	PrefInterpreter = "mesen.interpreter"
	PrefTestRunner  = "mesen.testrunner"
	PrefRetries     = "channel.retries"
	PrefInterval    = "channel.interval"
)

// NewPreferences is the preferred method of initialisation for the
// Preferences type. The values are read from the preferences file at the
// path given. If the path is empty then the preferences file in the nestest
// resource directory is used.
func NewPreferences(path string) (*Preferences, error) {
	if path == "" {
		path = paths.ResourcePath("preferences")
	}

	p := &Preferences{}
	p.SetDefaults()

	var err error
	p.dsk, err = prefs.NewDisk(path)
	if err != nil {
		return nil, err
	}

	if err := p.dsk.Add(PrefExecutable, &p.Executable); err != nil {
		return nil, err
	}
	if err := p.dsk.Add(PrefInterpreter, &p.Interpreter); err != nil {
		return nil, err
	}
	if err := p.dsk.Add(PrefTestRunner, &p.TestRunner); err != nil {
		return nil, err
	}
	if err := p.dsk.Add(PrefRetries, &p.Retries); err != nil {
		return nil, err
	}
	if err := p.dsk.Add(PrefInterval, &p.Interval); err != nil {
		return nil, err
	}

	if err := p.dsk.Load(false); err != nil {
		return nil, err
	}

	return p, nil
}

// SetDefaults reverts all preferences to their default values.
func (p *Preferences) SetDefaults() {
	rt := DefaultRuntime()
	_ = p.Executable.Set(rt.Executable)
	_ = p.Interpreter.Set(rt.Interpreter)
	_ = p.TestRunner.Set(rt.TestRunner)
	_ = p.Retries.Set(rt.Retries)
	_ = p.Interval.Set(rt.Interval)
}

// Load preferences from disk.
func (p *Preferences) Load() error {
	return p.dsk.Load(false)
}

// Save preferences to disk.
func (p *Preferences) Save() error {
	return p.dsk.Save()
}

// Runtime returns a Runtime based on the current preference values.
func (p *Preferences) Runtime() Runtime {
	rt := DefaultRuntime()
	rt.Executable = p.Executable.Get().(string)
	rt.Interpreter = p.Interpreter.Get().(string)
	rt.TestRunner = p.TestRunner.Get().(bool)
	rt.Retries = p.Retries.Get().(int)
	rt.Interval = p.Interval.Get().(time.Duration)
	return rt
}

// Environment variables that override preferences.
const (
	EnvExecutable       = "NESTEST_MESEN"
	EnvLegacyExecutable = "MESEN_EXE"
	EnvOpenWindow       = "DEBUG_OPEN_MESEN"
)

// ApplyEnvironment changes the Runtime according to the environment
// variables.
func (rt *Runtime) ApplyEnvironment() {
	if exe := os.Getenv(EnvExecutable); exe != "" {
		rt.Executable = exe
	} else if exe := os.Getenv(EnvLegacyExecutable); exe != "" {
		rt.Executable = exe
	}
	if os.Getenv(EnvOpenWindow) == "true" {
		rt.TestRunner = false
	}
}

// LoadRuntime creates a Runtime from the preferences file in the nestest
// resource directory and the environment.
func LoadRuntime() (Runtime, error) {
	p, err := NewPreferences("")
	if err != nil {
		return Runtime{}, curated.Errorf(BadPreferences, err)
	}
	rt := p.Runtime()
	rt.ApplyEnvironment()
	return rt, nil
}
