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

// Package rom represents an iNES ROM image as found on disk.
//
// The cartridge data is read eagerly and is immutable through the public
// interface. Header information is derived from the data each time it is
// requested. A ROM with an invalid header can still be loaded so that tests
// can make assertions about the header itself. Use HasValidHeader() to check
// the header before relying on any of the other header functions.
//
// The iNES header is the first 16 bytes of the file:
//
//	0-3	"NES" followed by 0x1a
//	4	number of 16k PRG banks
//	5	number of 8k CHR banks
//	6	flags: bit 0 vertical mirroring, bit 1 battery backed RAM, bit 3
//		four screen VRAM, bits 4-7 low nibble of mapper number
//	7	flags: bits 4-7 high nibble of mapper number
//
// Debug symbols are read from a file with the same base name as the ROM
// file and the extension ".dbg". The symbols are parsed on first use.
package rom
