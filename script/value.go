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
)

// Sentinal errors.
const (
	UnsupportedValue = "script: unsupported value: %v"
)

// Value is implemented by all types that can be converted to Lua.
type Value interface {
	emit() (string, error)
}

// Number is a Lua integer.
type Number int

// Text is a Lua string.
type Text string

// Bool is a Lua boolean.
type Bool bool

// Field is a single key/value pair in a Record.
type Field struct {
	Name  string
	Value Value
}

// Record is a Lua table with named fields. The order of the fields is
// preserved in the emitted Lua.
type Record []Field

// Expression is Lua source that is emitted unchanged. It is the caller's
// responsibility to ensure that the source is a valid expression.
type Expression string

// MemorySpace identifies the memory that a MemoryRef reads from.
type MemorySpace int

// List of valid MemorySpace values.
const (
	// memory as seen by the CPU, without side effects
	CPU MemorySpace = iota

	// memory as seen by the PPU, without side effects
	PPU

	// the PRG ROM
	PRG
)

// memTypes are the names used by the emulator for each MemorySpace.
var memTypes = map[MemorySpace]string{
	CPU: "cpuDebug",
	PPU: "ppuDebug",
	PRG: "prgRom",
}

// MemType returns the emulator's expression for the memory space.
func (ms MemorySpace) MemType() (string, error) {
	if m, ok := memTypes[ms]; ok {
		return fmt.Sprintf("emu.memType.%s", m), nil
	}
	return "", fmt.Errorf("unknown memory space (%d)", int(ms))
}

func (ms MemorySpace) String() string {
	if m, ok := memTypes[ms]; ok {
		return m
	}
	return "unknown"
}

// MemoryRef is a live read of the emulator's memory. The value is read when
// the emitted expression is evaluated, not when the MemoryRef is created.
type MemoryRef struct {
	Address uint16
	Space   MemorySpace

	// read two bytes (little endian) rather than one
	Word bool
}

func (ref MemoryRef) String() string {
	if ref.Word {
		return fmt.Sprintf("%s word 0x%04x", ref.Space, ref.Address)
	}
	return fmt.Sprintf("%s byte 0x%04x", ref.Space, ref.Address)
}

// CPUByte is a convenience function returning a MemoryRef for a single byte
// of CPU memory.
func CPUByte(addr uint16) MemoryRef {
	return MemoryRef{Address: addr, Space: CPU}
}
