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

package script

import (
	"fmt"
	"strings"
)

// Envelope wraps the Lua body so that it can be run by the controller
// script. The result is a Lua chunk that returns a table with two functions:
// doAction(), which runs the body, and getNum(), which returns the sequence
// number of the command.
//
// The controller only runs a command whose sequence number it has not seen
// before and publishes the same sequence number in its status when the
// command has completed.
func Envelope(seq int, body string) string {
	lines := strings.Split(strings.TrimSpace(body), "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
		if lines[i] != "" {
			lines[i] = "    " + lines[i]
		}
	}

	s := strings.Builder{}
	s.WriteString("local event = {}\n\n")
	s.WriteString("function event.doAction()\n")
	s.WriteString(strings.Join(lines, "\n"))
	s.WriteString("\nend\n\n")
	s.WriteString("function event.getNum()\n")
	s.WriteString(fmt.Sprintf("    return %d\n", seq))
	s.WriteString("end\n\n")
	s.WriteString("return event\n")
	return s.String()
}
