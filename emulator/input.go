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

package emulator

import (
	"fmt"
	"strings"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/script"
)

// Sentinal errors.
const (
	UnknownButton = "emulator: unknown button: %s"
)

// Input is the state of the buttons on a standard controller.
type Input struct {
	A      bool
	B      bool
	Select bool
	Start  bool
	Up     bool
	Down   bool
	Left   bool
	Right  bool
}

// Buttons lists the names of the buttons in the order used by Record().
var Buttons = []string{"a", "b", "select", "start", "up", "down", "left", "right"}

func (in Input) buttons() []*bool {
	return []*bool{&in.A, &in.B, &in.Select, &in.Start, &in.Up, &in.Down, &in.Left, &in.Right}
}

func (in Input) String() string {
	var s []string
	for i, b := range in.buttons() {
		if *b {
			s = append(s, Buttons[i])
		}
	}
	if len(s) == 0 {
		return "none"
	}
	return strings.Join(s, "+")
}

// Record returns the input as a Lua table suitable for emu.setInput().
func (in Input) Record() script.Record {
	r := make(script.Record, 0, len(Buttons))
	for i, b := range in.buttons() {
		r = append(r, script.Field{Name: Buttons[i], Value: script.Bool(*b)})
	}
	return r
}

// ParseInput creates an Input from a list of button names. Names are case
// insensitive.
func ParseInput(names ...string) (Input, error) {
	var in Input
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case "a":
			in.A = true
		case "b":
			in.B = true
		case "select", "sel":
			in.Select = true
		case "start":
			in.Start = true
		case "up":
			in.Up = true
		case "down":
			in.Down = true
		case "left":
			in.Left = true
		case "right":
			in.Right = true
		case "":
		default:
			return Input{}, curated.Errorf(UnknownButton, n)
		}
	}
	return in, nil
}

// setInput returns the Lua command that applies the input to the
// controller.
func setInput(in Input, controller int) (string, error) {
	r, err := script.Emit(in.Record())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("emu.setInput(%d, %s)", controller, r), nil
}
