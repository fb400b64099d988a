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

package console

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/nestest/nestest/channel"
	"github.com/nestest/nestest/console/easyterm"
	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/emulator"
	"github.com/nestest/nestest/logger"
	"github.com/nestest/nestest/paths"
	"github.com/nestest/nestest/rom"
	"github.com/nestest/nestest/symbols"
)

// Sentinal errors.
const (
	UnknownCommand   = "console: unknown command: %s"
	AmbiguousCommand = "console: ambiguous command: %s (%s)"
	Usage            = "console: usage: %s %s"
	BadArgument      = "console: %s: %v"
	NoKeyboard       = "console: pad mode is not available"
)

// Prompt is printed before each command is read.
const Prompt = "> "

// Emulator is the subset of *emulator.Emulator used by the console.
type Emulator interface {
	Cartridge() *rom.Cartridge
	RunFrames(n int) error
	SendInput(in emulator.Input, controller int) error
	ByteValue(location any) (int, error)
	WordValue(location any) (int, error)
	SetMemoryByte(location any, value int) error
	ByteRange(location any, n int) ([]int, error)
	TakeScreenshot(name string, copyTo string) (string, error)
	RunLua(body string) (*channel.Response, error)
}

// Keyboard is the source of key presses in pad mode. *easyterm.Terminal
// satisfies the interface.
type Keyboard interface {
	CBreakMode() error
	CanonicalMode() error
	ReadKey() (easyterm.Key, error)
}

// Console reads commands from input and writes results to output.
type Console struct {
	emu     Emulator
	scanner *bufio.Scanner
	output  io.Writer
	kb      Keyboard

	// number of frames run since the console was created
	frameCount int
}

// NewConsole is the preferred method of initialisation for the Console type.
func NewConsole(emu Emulator, input io.Reader, output io.Writer) *Console {
	return &Console{
		emu:     emu,
		scanner: bufio.NewScanner(input),
		output:  output,
	}
}

// SetKeyboard enables pad mode.
func (con *Console) SetKeyboard(kb Keyboard) {
	con.kb = kb
}

func (con *Console) printf(format string, a ...any) {
	fmt.Fprintf(con.output, format, a...)
}

// Run reads and executes commands until the quit command is given or the
// input is exhausted. Errors from individual commands are printed and do not
// end the loop. Errors reading the input are returned.
func (con *Console) Run() error {
	for {
		con.printf(Prompt)
		if !con.scanner.Scan() {
			con.printf("\n")
			return con.scanner.Err()
		}

		quit, err := con.Execute(con.scanner.Text())
		if err != nil {
			con.printf("* %v\n", err)
			logger.Log(logger.Allow, "console", err)
		}
		if quit {
			return nil
		}
	}
}

// Execute a single command line. Returns true if the command was quit.
func (con *Console) Execute(line string) (bool, error) {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return false, nil
	}

	cmd, err := lookup(tokens[0])
	if err != nil {
		return false, err
	}

	args := tokens[1:]
	if len(args) < cmd.minArgs || (cmd.maxArgs >= 0 && len(args) > cmd.maxArgs) {
		return false, curated.Errorf(Usage, cmd.name, cmd.usage)
	}

	if cmd.name == "quit" {
		return true, nil
	}

	return false, cmd.fn(con, args)
}

// command describes a single console command. A maxArgs value of -1 means
// there is no upper limit.
type command struct {
	name    string
	usage   string
	help    string
	minArgs int
	maxArgs int
	fn      func(con *Console, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{name: "frames", usage: "[N]", help: "run N frames (default 1)", maxArgs: 1, fn: (*Console).frames},
		{name: "input", usage: "[CONTROLLER] [BUTTON...]", help: "set the buttons held on a controller", maxArgs: -1, fn: (*Console).input},
		{name: "peek", usage: "LOCATION", help: "read a byte from CPU memory", minArgs: 1, maxArgs: 1, fn: (*Console).peek},
		{name: "peekw", usage: "LOCATION", help: "read a little endian word from CPU memory", minArgs: 1, maxArgs: 1, fn: (*Console).peekw},
		{name: "poke", usage: "LOCATION VALUE", help: "write a byte to CPU memory", minArgs: 2, maxArgs: 2, fn: (*Console).poke},
		{name: "range", usage: "LOCATION N", help: "read N bytes from CPU memory", minArgs: 2, maxArgs: 2, fn: (*Console).memRange},
		{name: "screenshot", usage: "[NAME [COPYTO]]", help: "save a screenshot", maxArgs: 2, fn: (*Console).screenshot},
		{name: "symbols", usage: "[NAME]", help: "list symbols or search for a single symbol", maxArgs: 1, fn: (*Console).listSymbols},
		{name: "lua", usage: "CODE...", help: "run Lua code in the emulator", minArgs: 1, maxArgs: -1, fn: (*Console).lua},
		{name: "log", usage: "[N]", help: "show the last N log entries (default 10)", maxArgs: 1, fn: (*Console).log},
		{name: "pad", usage: "", help: "control the emulator from the keyboard", fn: (*Console).pad},
		{name: "help", usage: "[COMMAND]", help: "list commands", maxArgs: 1, fn: (*Console).help},
		{name: "quit", usage: "", help: "leave the console"},
	}
}

// lookup finds the command with the name or the unique prefix.
func lookup(name string) (*command, error) {
	name = strings.ToLower(name)

	var candidates []*command
	for i := range commands {
		if commands[i].name == name {
			return &commands[i], nil
		}
		if strings.HasPrefix(commands[i].name, name) {
			candidates = append(candidates, &commands[i])
		}
	}

	switch len(candidates) {
	case 0:
		return nil, curated.Errorf(UnknownCommand, name)
	case 1:
		return candidates[0], nil
	}

	n := make([]string, 0, len(candidates))
	for _, c := range candidates {
		n = append(n, c.name)
	}
	sort.Strings(n)
	return nil, curated.Errorf(AmbiguousCommand, name, strings.Join(n, ", "))
}

// parseNumber accepts decimal, 0x prefixed and $ prefixed hexadecimal values.
func parseNumber(s string) (int, error) {
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	v, err := strconv.ParseInt(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

// parseLocation returns a number if the argument is numeric and the argument
// as a symbol name otherwise.
func parseLocation(s string) any {
	if v, err := parseNumber(s); err == nil {
		return v
	}
	return s
}

func (con *Console) frames(args []string) error {
	n := 1
	if len(args) > 0 {
		var err error
		n, err = parseNumber(args[0])
		if err != nil {
			return curated.Errorf(BadArgument, "frames", err)
		}
	}
	if err := con.emu.RunFrames(n); err != nil {
		return err
	}
	con.frameCount += n
	con.printf("ran %d frames (%d total)\n", n, con.frameCount)
	return nil
}

func (con *Console) input(args []string) error {
	controller := 0
	if len(args) > 0 {
		if c, err := strconv.Atoi(args[0]); err == nil {
			controller = c
			args = args[1:]
		}
	}

	in, err := emulator.ParseInput(args...)
	if err != nil {
		return err
	}
	if err := con.emu.SendInput(in, controller); err != nil {
		return err
	}
	con.printf("controller %d: %s\n", controller, in)
	return nil
}

func (con *Console) peek(args []string) error {
	v, err := con.emu.ByteValue(parseLocation(args[0]))
	if err != nil {
		return err
	}
	con.printf("%s: 0x%02x (%d)\n", args[0], v, v)
	return nil
}

func (con *Console) peekw(args []string) error {
	v, err := con.emu.WordValue(parseLocation(args[0]))
	if err != nil {
		return err
	}
	con.printf("%s: 0x%04x (%d)\n", args[0], v, v)
	return nil
}

func (con *Console) poke(args []string) error {
	v, err := parseNumber(args[1])
	if err != nil {
		return curated.Errorf(BadArgument, "poke", err)
	}
	return con.emu.SetMemoryByte(parseLocation(args[0]), v)
}

func (con *Console) memRange(args []string) error {
	n, err := parseNumber(args[1])
	if err != nil {
		return curated.Errorf(BadArgument, "range", err)
	}
	v, err := con.emu.ByteRange(parseLocation(args[0]), n)
	if err != nil {
		return err
	}

	// sixteen bytes per row
	for i := 0; i < len(v); i += 16 {
		row := v[i:min(i+16, len(v))]
		s := make([]string, len(row))
		for j, b := range row {
			s[j] = fmt.Sprintf("%02x", b)
		}
		con.printf("+%04x: %s\n", i, strings.Join(s, " "))
	}
	return nil
}

func (con *Console) screenshot(args []string) error {
	var name, copyTo string
	switch len(args) {
	case 0:
		name = paths.UniqueFilename("screenshot", con.emu.Cartridge().ShortName())
	case 1:
		name = args[0]
	default:
		name = args[0]
		copyTo = args[1]
	}
	fn, err := con.emu.TakeScreenshot(name, copyTo)
	if err != nil {
		return err
	}
	con.printf("saved %s\n", fn)
	return nil
}

func (con *Console) listSymbols(args []string) error {
	tbl, err := con.emu.Cartridge().Symbols()
	if err != nil {
		return err
	}
	if tbl == nil {
		con.printf("no debug file for %s\n", con.emu.Cartridge().ShortName())
		return nil
	}

	if len(args) == 0 {
		tbl.ListSymbols(con.output)
		return nil
	}

	res := tbl.Search(args[0], symbols.SearchAll)
	if res == nil {
		con.printf("%s: no such symbol\n", args[0])
		return nil
	}
	con.printf("%s\n", res)
	return nil
}

func (con *Console) lua(args []string) error {
	rsp, err := con.emu.RunLua(strings.Join(args, " "))
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(rsp.Values))
	for k := range rsp.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		con.printf("%s = %s\n", k, rsp.Values[k])
	}
	return nil
}

func (con *Console) log(args []string) error {
	n := 10
	if len(args) > 0 {
		var err error
		n, err = parseNumber(args[0])
		if err != nil {
			return curated.Errorf(BadArgument, "log", err)
		}
		if n < 0 {
			return curated.Errorf(BadArgument, "log", "negative count")
		}
	}
	logger.Tail(con.output, n)
	return nil
}

func (con *Console) help(args []string) error {
	if len(args) > 0 {
		cmd, err := lookup(args[0])
		if err != nil {
			return err
		}
		con.printf("%s %s\n  %s\n", cmd.name, cmd.usage, cmd.help)
		return nil
	}

	for _, cmd := range commands {
		con.printf("%-11s %s\n", cmd.name, cmd.help)
	}
	return nil
}
