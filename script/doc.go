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

// Package script generates the Lua that is run by the emulator.
//
// Go values are converted to Lua source with Emit(). The set of values that
// can be converted is closed: Number, Text, Bool, Record and MemoryRef. The
// first four become Lua literals. A MemoryRef becomes an expression that
// reads the emulator's memory at the time the expression is evaluated:
//
//	MemoryRef{Address: 0x0300, Space: CPU}
//
// becomes:
//
//	emu.read(768, emu.memType.cpuDebug)
//
// Commands sent to a running emulator are wrapped with Envelope(). The
// emulator side of the exchange is the controller script, created with
// Controller(). Batch runs use the script created with Sequence().
package script
