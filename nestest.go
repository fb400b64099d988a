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

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nestest/nestest/console"
	"github.com/nestest/nestest/console/easyterm"
	"github.com/nestest/nestest/emulator"
	"github.com/nestest/nestest/logger"
	"github.com/nestest/nestest/modalflag"
	"github.com/nestest/nestest/prefs"
	"github.com/nestest/nestest/rom"
	"github.com/nestest/nestest/statsview"
	"github.com/nestest/nestest/supervisor"
	"github.com/nestest/nestest/version"
)

func main() {
	os.Exit(launch(os.Args[1:], os.Stdin, os.Stdout))
}

// launch the mode specified by the arguments. the return value is the exit
// code of the program.
func launch(args []string, input io.Reader, output io.Writer) int {
	md := &modalflag.Modes{Output: output}
	md.NewArgs(args)
	md.NewMode()
	md.AddSubModes("INFO", "SYMBOLS", "CONSOLE", "VERSION")

	log := md.AddBool("log", false, "echo debugging log to stdout")
	prefsOverride := md.AddString("prefs", "", "override preferences (eg. 'mesen.testrunner::false; channel.retries::400')")

	var stats *bool
	if statsview.Available() {
		stats = md.AddBool("statsview", false, fmt.Sprintf("run stats server (%s)", statsview.Address))
	}

	p, err := md.Parse()
	switch p {
	case modalflag.ParseHelp:
		return 0

	case modalflag.ParseError:
		fmt.Fprintf(output, "* error: %v\n", err)
		return 10
	}

	// set debugging log echo
	if *log {
		logger.SetEcho(output)
	} else {
		logger.SetEcho(nil)
	}

	if stats != nil && *stats {
		statsview.Launch()
	}

	if *prefsOverride != "" {
		prefs.PushCommandLineStack(*prefsOverride)
		defer prefs.PopCommandLineStack()
	}

	switch md.Mode() {
	case "INFO":
		err = info(md)

	case "SYMBOLS":
		err = listSymbols(md)

	case "CONSOLE":
		err = interactive(md, input)

	case "VERSION":
		fmt.Fprintln(md.Output, version.String())
	}

	if err != nil {
		fmt.Fprintf(output, "* error in %s mode: %s\n", md.String(), err)
		return 20
	}

	return 0
}

// loadCartridge is used by the modes that require a single ROM argument.
func loadCartridge(md *modalflag.Modes) (*rom.Cartridge, error) {
	switch len(md.RemainingArgs()) {
	case 0:
		return nil, fmt.Errorf("NES ROM required for %s mode", md)
	case 1:
		return rom.Load(md.GetArg(0))
	}
	return nil, fmt.Errorf("too many arguments for %s mode", md)
}

func info(md *modalflag.Modes) error {
	md.NewMode()

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	cart, err := loadCartridge(md)
	if err != nil {
		return err
	}

	fmt.Fprintf(md.Output, "%s\n", cart.ShortName())
	fmt.Fprintf(md.Output, "  sha1: %s\n", cart.Hash)
	if !cart.HasValidHeader() {
		fmt.Fprintf(md.Output, "  no valid iNES header\n")
		return nil
	}
	fmt.Fprintf(md.Output, "  %s\n", cart.Header())
	if cart.BatteryBackedRAM() {
		fmt.Fprintf(md.Output, "  battery backed RAM\n")
	}
	if cart.FourScreenVRAM() {
		fmt.Fprintf(md.Output, "  four screen VRAM\n")
	}

	if fn := cart.DebugFile(); fn != "" {
		tbl, err := cart.Symbols()
		if err != nil {
			return err
		}
		fmt.Fprintf(md.Output, "  debug file: %s (%d assembly symbols, %d C symbols)\n", fn, len(tbl.Assembly), len(tbl.C))
	}

	return nil
}

func listSymbols(md *modalflag.Modes) error {
	md.NewMode()

	dot := md.AddString("dot", "", "write the symbol table as a graphviz file")

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	cart, err := loadCartridge(md)
	if err != nil {
		return err
	}

	tbl, err := cart.Symbols()
	if err != nil {
		return err
	}
	if tbl == nil {
		return fmt.Errorf("no debug file for %s", cart.ShortName())
	}

	if *dot == "" {
		tbl.ListSymbols(md.Output)
		return nil
	}

	f, err := os.Create(*dot)
	if err != nil {
		return err
	}
	defer f.Close()

	tbl.Graph(f)
	return nil
}

func interactive(md *modalflag.Modes, input io.Reader) error {
	md.NewMode()

	window := md.AddBool("window", false, "show the emulator window")
	retries := md.AddInt("retries", 0, "number of times the status is polled for each command")
	interval := md.AddDuration("interval", 0, "delay between each poll of the status")

	md.AdditionalHelp(
		`The console reads commands from stdin. Type 'help' for a list of commands. Commands
can be abbreviated to any unique prefix.

Emulator settings are read from the preferences file. The -retries and -interval flags
take priority over the preferences when they are specified.`)

	p, err := md.Parse()
	if err != nil || p != modalflag.ParseContinue {
		return err
	}

	if len(md.RemainingArgs()) != 1 {
		return fmt.Errorf("NES ROM required for %s mode", md)
	}

	rt, err := supervisor.LoadRuntime()
	if err != nil {
		return err
	}
	if *window {
		rt.TestRunner = false
	}

	md.Visit(func(flag string) {
		switch flag {
		case "retries":
			rt.Retries = *retries
		case "interval":
			rt.Interval = *interval
		}
	})

	emu, err := emulator.New(md.GetArg(0), rt)
	if err != nil {
		return err
	}

	if err := emu.Start(); err != nil {
		return err
	}

	con := console.NewConsole(emu, input, md.Output)

	// pad mode is only possible if the input is a terminal
	if f, ok := input.(*os.File); ok {
		var term easyterm.Terminal
		if err := term.Initialise(f, os.Stdout); err == nil {
			defer term.CleanUp()
			con.SetKeyboard(&term)
		} else {
			logger.Log(logger.Allow, "console", err)
		}
	}

	err = con.Run()

	if *window {
		// the stop request leaves the window open
		if err := emu.Kill(); err != nil {
			logger.Log(logger.Allow, "console", err)
		}
	} else if err := emu.Stop(0); err != nil {
		logger.Log(logger.Allow, "console", err)
	}

	return err
}
