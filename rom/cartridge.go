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

import (
	"crypto/sha1"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/symbols"
)

// Sentinal errors.
const (
	NotFound  = "rom: not found: %s"
	ReadError = "rom: %v"
)

// Cartridge is a ROM image loaded from disk.
type Cartridge struct {
	// absolute filename of the ROM
	Filename string

	// sha1 hash of the data
	Hash string

	data []byte

	// naming convention used when reading the debug file
	convention symbols.Convention

	// symbols are parsed on first use
	crit    sync.Mutex
	parsed  bool
	symbols *symbols.Table
	symErr  error
}

// Load the named ROM file. The file is read in its entirety.
func Load(filename string) (*Cartridge, error) {
	fn, err := filepath.Abs(filename)
	if err != nil {
		return nil, curated.Errorf(ReadError, err)
	}

	data, err := os.ReadFile(fn)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, curated.Errorf(NotFound, fn)
		}
		return nil, curated.Errorf(ReadError, err)
	}

	return NewCartridge(fn, data), nil
}

// NewCartridge creates a Cartridge from data that has already been loaded.
// The filename is used to locate the debug file.
func NewCartridge(filename string, data []byte) *Cartridge {
	return &Cartridge{
		Filename:   filename,
		Hash:       fmt.Sprintf("%x", sha1.Sum(data)),
		data:       data,
		convention: symbols.CC65,
	}
}

// SetConvention changes the naming convention used when linking C symbols
// to assembly symbols. Must be called before the first call to Symbols().
func (cart *Cartridge) SetConvention(cnv symbols.Convention) {
	cart.crit.Lock()
	defer cart.crit.Unlock()
	cart.convention = cnv
}

// Convention returns the naming convention used when reading the debug file.
func (cart *Cartridge) Convention() symbols.Convention {
	cart.crit.Lock()
	defer cart.crit.Unlock()
	return cart.convention
}

func (cart *Cartridge) String() string {
	return cart.ShortName()
}

// ShortName returns the filename of the ROM without the path or extension.
func (cart *Cartridge) ShortName() string {
	n := filepath.Base(cart.Filename)
	return strings.TrimSuffix(n, filepath.Ext(n))
}

// Raw returns a copy of the ROM data.
func (cart *Cartridge) Raw() []byte {
	c := make([]byte, len(cart.data))
	copy(c, cart.data)
	return c
}

// Unsafe returns the ROM data itself. Changes to the returned slice change
// the cartridge. Intended for tests that deliberately corrupt a ROM.
func (cart *Cartridge) Unsafe() []byte {
	return cart.data
}

// Len returns the length of the ROM data.
func (cart *Cartridge) Len() int {
	return len(cart.data)
}

// at returns the byte at index i or zero if i is beyond the end of the
// data.
func (cart *Cartridge) at(i int) uint8 {
	if i < 0 || i >= len(cart.data) {
		return 0
	}
	return cart.data[i]
}

// HasValidHeader returns true if the ROM data starts with the iNES magic
// bytes and the length of the data agrees with the number of banks in the
// header.
func (cart *Cartridge) HasValidHeader() bool {
	for i, b := range Magic {
		if cart.at(i) != b {
			return false
		}
	}
	return len(cart.data) == HeaderSize+cart.PRGBanks()*PRGBankSize+cart.CHRBanks()*CHRBankSize
}

// PRGBanks returns the number of 16k PRG banks in the header.
func (cart *Cartridge) PRGBanks() int {
	return int(cart.at(4))
}

// CHRBanks returns the number of 8k CHR banks in the header.
func (cart *Cartridge) CHRBanks() int {
	return int(cart.at(5))
}

// Mapper returns the mapper number in the header.
func (cart *Cartridge) Mapper() uint8 {
	return (cart.at(6) >> 4) | (cart.at(7) & 0xf0)
}

// Mirroring returns the nametable mirroring in the header.
func (cart *Cartridge) Mirroring() Mirroring {
	if cart.at(6)&0x01 == 0x01 {
		return Vertical
	}
	return Horizontal
}

// BatteryBackedRAM returns true if the header indicates that the cartridge
// has battery backed RAM.
func (cart *Cartridge) BatteryBackedRAM() bool {
	return cart.at(6)&0x02 == 0x02
}

// FourScreenVRAM returns true if the header indicates that the cartridge has
// four screen VRAM.
func (cart *Cartridge) FourScreenVRAM() bool {
	return cart.at(6)&0x08 == 0x08
}

// Header returns all header information at once.
func (cart *Cartridge) Header() Header {
	var h Header
	for i := range h.Magic {
		h.Magic[i] = cart.at(i)
	}
	h.PRGBanks = cart.PRGBanks()
	h.CHRBanks = cart.CHRBanks()
	h.Mapper = cart.Mapper()
	h.Mirroring = cart.Mirroring()
	h.BatteryBackedRAM = cart.BatteryBackedRAM()
	h.FourScreenVRAM = cart.FourScreenVRAM()
	return h
}

// DebugFile returns the name of the debug file for the ROM. Returns the
// empty string if there is no debug file.
func (cart *Cartridge) DebugFile() string {
	if cart.Filename == "" {
		return ""
	}
	fn := symbols.DebugFilename(cart.Filename)
	if _, err := os.Stat(fn); err != nil {
		return ""
	}
	return fn
}

// Symbols returns the symbols table for the ROM. The debug file is parsed
// on the first call and the result is used for all subsequent calls.
//
// Returns nil and no error if there is no debug file.
func (cart *Cartridge) Symbols() (*symbols.Table, error) {
	cart.crit.Lock()
	defer cart.crit.Unlock()

	if cart.parsed {
		return cart.symbols, cart.symErr
	}
	cart.parsed = true

	fn := symbols.DebugFilename(cart.Filename)
	if cart.Filename == "" {
		return nil, nil
	}
	if _, err := os.Stat(fn); err != nil {
		return nil, nil
	}

	cart.symbols, cart.symErr = symbols.ReadDebugFile(fn, cart.convention)
	return cart.symbols, cart.symErr
}

// Resolver returns a resolver for the ROM's symbols. If there is no debug
// file then the resolver can only resolve numeric locations.
func (cart *Cartridge) Resolver() (*symbols.Resolver, error) {
	tbl, err := cart.Symbols()
	if err != nil {
		return nil, err
	}
	return symbols.NewResolver(tbl, cart.Convention()), nil
}
