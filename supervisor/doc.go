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

// Package supervisor launches the emulator as a child process and keeps
// track of its lifecycle.
//
// How the emulator is launched is described by the Runtime type. A Runtime
// is usually created with LoadRuntime(), which reads the preferences file in
// the nestest resource directory and then applies any overrides found in the
// environment:
//
//	NESTEST_MESEN       path to the emulator executable
//	MESEN_EXE           as above, consulted if NESTEST_MESEN is not set
//	DEBUG_OPEN_MESEN    "true" runs the emulator with its window open
//
// A Process moves through the states Unstarted, Running and then either
// Stopped or Crashed. A process that could not be spawned, or that exits
// with a non-zero code, is Crashed.
package supervisor
