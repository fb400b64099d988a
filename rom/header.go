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

package rom

import "fmt"

// sizes of the iNES header and the banks it describes.
const (
	HeaderSize  = 16
	PRGBankSize = 16384
	CHRBankSize = 8192
)

// Magic bytes at the start of an iNES file.
var Magic = [4]byte{'N', 'E', 'S', 0x1a}

// Mirroring of the nametables.
type Mirroring int

// List of valid Mirroring values.
const (
	Horizontal Mirroring = iota
	Vertical
)

func (m Mirroring) String() string {
	switch m {
	case Horizontal:
		return "horizontal"
	case Vertical:
		return "vertical"
	}
	return "unknown"
}

// Header information derived from the first 16 bytes of the ROM data.
type Header struct {
	Magic            [4]byte
	PRGBanks         int
	CHRBanks         int
	Mapper           uint8
	Mirroring        Mirroring
	BatteryBackedRAM bool
	FourScreenVRAM   bool
}

func (h Header) String() string {
	return fmt.Sprintf("mapper %d, %d PRG, %d CHR, %s mirroring", h.Mapper, h.PRGBanks, h.CHRBanks, h.Mirroring)
}

// Size returns the size of a file that the header describes.
func (h Header) Size() int {
	return HeaderSize + h.PRGBanks*PRGBankSize + h.CHRBanks*CHRBankSize
}

// Image creates ROM data described by the header. The PRG and CHR banks are
// filled with zero. The magic bytes are always correct, whatever the value of
// the Magic field.
func (h Header) Image() []byte {
	data := make([]byte, h.Size())
	copy(data, Magic[:])
	data[4] = byte(h.PRGBanks)
	data[5] = byte(h.CHRBanks)

	data[6] = (h.Mapper & 0x0f) << 4
	if h.Mirroring == Vertical {
		data[6] |= 0x01
	}
	if h.BatteryBackedRAM {
		data[6] |= 0x02
	}
	if h.FourScreenVRAM {
		data[6] |= 0x08
	}
	data[7] = h.Mapper & 0xf0

	return data
}
