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

// Package console is an interactive shell for a running emulator. It is
// useful when writing tests, to discover the state of a ROM at a given frame
// before committing the values to an assertion.
//
// Commands are read one line at a time. A command can be abbreviated to any
// unique prefix of its name. For example, "fr 10" is the same as
// "frames 10".
//
// The pad command puts the console into pad mode if a Keyboard has been
// supplied with SetKeyboard(). In pad mode each key press is mapped to a
// controller button, which is held for a single frame. Pressing 'q' returns
// to the command line.
package console
