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

package rom_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/rom"
	"github.com/nestest/nestest/symbols"
	"github.com/nestest/nestest/test"
)

const dbg = "csym\tid=0,name=\"score\",sc=static,sym=1\n" +
	"sym\tid=0,name=\"NMI\",addrsize=absolute,val=0xC100,type=lab\n" +
	"sym\tid=1,name=\"_score\",addrsize=absolute,val=0x0300,type=lab\n"

// writeROM writes the data to a file in a temporary directory and returns
// the filename. if withDebug is true a debug file is written alongside.
func writeROM(t *testing.T, data []byte, withDebug bool) string {
	t.Helper()
	dir := t.TempDir()
	fn := filepath.Join(dir, "game.nes")
	test.DemandSuccess(t, os.WriteFile(fn, data, 0o600))
	if withDebug {
		test.DemandSuccess(t, os.WriteFile(filepath.Join(dir, "game.dbg"), []byte(dbg), 0o600))
	}
	return fn
}

func TestLoad(t *testing.T) {
	h := rom.Header{PRGBanks: 2, CHRBanks: 1}
	fn := writeROM(t, h.Image(), false)

	cart, err := rom.Load(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, cart.Filename, fn)
	test.ExpectEquality(t, cart.ShortName(), "game")
	test.ExpectEquality(t, cart.Len(), 16+2*16384+8192)
	test.ExpectEquality(t, len(cart.Hash), 40)
	test.ExpectSuccess(t, cart.HasValidHeader())

	_, err = rom.Load(filepath.Join(t.TempDir(), "missing.nes"))
	test.ExpectSuccess(t, curated.Is(err, rom.NotFound))
}

func TestHeader(t *testing.T) {
	for _, h := range []rom.Header{
		{PRGBanks: 1, CHRBanks: 1},
		{PRGBanks: 2, CHRBanks: 0, Mapper: 1, Mirroring: rom.Vertical},
		{PRGBanks: 8, CHRBanks: 16, Mapper: 4, BatteryBackedRAM: true},
		{PRGBanks: 1, CHRBanks: 1, Mapper: 0xa5, FourScreenVRAM: true},
	} {
		cart := rom.NewCartridge("", h.Image())
		test.ExpectSuccess(t, cart.HasValidHeader(), h)
		test.ExpectEquality(t, cart.PRGBanks(), h.PRGBanks, h)
		test.ExpectEquality(t, cart.CHRBanks(), h.CHRBanks, h)
		test.ExpectEquality(t, cart.Mapper(), h.Mapper, h)
		test.ExpectEquality(t, cart.Mirroring(), h.Mirroring, h)
		test.ExpectEquality(t, cart.BatteryBackedRAM(), h.BatteryBackedRAM, h)
		test.ExpectEquality(t, cart.FourScreenVRAM(), h.FourScreenVRAM, h)

		h.Magic = rom.Magic
		test.ExpectEquality(t, cart.Header(), h, h)
	}
}

func TestMapperNibbles(t *testing.T) {
	data := rom.Header{PRGBanks: 1, CHRBanks: 1}.Image()
	data[6] = 0x10
	data[7] = 0x20
	cart := rom.NewCartridge("", data)
	test.ExpectEquality(t, cart.Mapper(), 0x21)

	// the lower nibble of byte 7 is not part of the mapper number
	data[7] = 0x2f
	test.ExpectEquality(t, cart.Mapper(), 0x21)
}

func TestHeaderBytes(t *testing.T) {
	for _, c := range []struct {
		flags6    uint8
		flags7    uint8
		mapper    uint8
		mirroring rom.Mirroring
		battery   bool
		four      bool
	}{
		{flags6: 0x12, flags7: 0x00, mapper: 1, mirroring: rom.Horizontal, battery: true},
		{flags6: 0xd2, flags7: 0xe0, mapper: 237, mirroring: rom.Horizontal, battery: true},
		{flags6: 0xae, flags7: 0x00, mapper: 10, mirroring: rom.Horizontal, battery: true, four: true},
		{flags6: 0x41, flags7: 0x00, mapper: 4, mirroring: rom.Vertical},
	} {
		// header written byte by byte rather than with Header.Image()
		data := make([]byte, 16+16384+8192)
		copy(data, []byte{'N', 'E', 'S', 0x1a, 1, 1, c.flags6, c.flags7})

		cart := rom.NewCartridge("", data)
		test.ExpectSuccess(t, cart.HasValidHeader(), c.flags6)
		test.ExpectEquality(t, cart.Mapper(), c.mapper, c.flags6)
		test.ExpectEquality(t, cart.Mirroring(), c.mirroring, c.flags6)
		test.ExpectEquality(t, cart.BatteryBackedRAM(), c.battery, c.flags6)
		test.ExpectEquality(t, cart.FourScreenVRAM(), c.four, c.flags6)
	}
}

func TestInvalidHeader(t *testing.T) {
	data := rom.Header{PRGBanks: 1, CHRBanks: 1}.Image()
	cart := rom.NewCartridge("", data)
	test.DemandSuccess(t, cart.HasValidHeader())

	// changing any of the magic bytes invalidates the header
	for i := range 4 {
		b := cart.Unsafe()[i]
		cart.Unsafe()[i] = 'X'
		test.ExpectFailure(t, cart.HasValidHeader(), i)
		cart.Unsafe()[i] = b
	}
	test.ExpectSuccess(t, cart.HasValidHeader())

	// bank counts that don't agree with the length
	cart.Unsafe()[4] = 2
	test.ExpectFailure(t, cart.HasValidHeader())
	cart.Unsafe()[4] = 1
	cart.Unsafe()[5] = 0
	test.ExpectFailure(t, cart.HasValidHeader())

	// trailing data
	cart = rom.NewCartridge("", append(rom.Header{PRGBanks: 1}.Image(), 0))
	test.ExpectFailure(t, cart.HasValidHeader())
}

func TestTruncated(t *testing.T) {
	for _, data := range [][]byte{nil, {}, {'N'}, {'N', 'E', 'S', 0x1a}, {'N', 'E', 'S', 0x1a, 0, 0, 0xff}} {
		cart := rom.NewCartridge("", data)
		test.ExpectFailure(t, cart.HasValidHeader(), len(data))
		_ = cart.Header()
	}

	// an empty header with no banks is a valid (if useless) ROM
	cart := rom.NewCartridge("", rom.Header{}.Image())
	test.ExpectSuccess(t, cart.HasValidHeader())
}

func TestRaw(t *testing.T) {
	cart := rom.NewCartridge("", rom.Header{PRGBanks: 1}.Image())
	raw := cart.Raw()
	raw[0] = 0
	test.ExpectSuccess(t, cart.HasValidHeader())
	test.ExpectEquality(t, cart.Raw()[0], 'N')
}

func TestSymbols(t *testing.T) {
	fn := writeROM(t, rom.Header{PRGBanks: 1, CHRBanks: 1}.Image(), true)
	cart, err := rom.Load(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, cart.DebugFile(), filepath.Join(filepath.Dir(fn), "game.dbg"))

	tbl, err := cart.Symbols()
	test.DemandSuccess(t, err)
	test.DemandSuccess(t, tbl != nil)
	test.ExpectEquality(t, tbl.C["score"], 0x0300)
	test.ExpectEquality(t, tbl.Assembly["NMI"], 0xc100)

	// the table is cached. removing the debug file has no effect
	test.DemandSuccess(t, os.Remove(cart.DebugFile()))
	tbl2, err := cart.Symbols()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, tbl == tbl2)

	res, err := cart.Resolver()
	test.DemandSuccess(t, err)
	a, _, err := res.Resolve("score")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a, 0x0300)
}

func TestNoSymbols(t *testing.T) {
	fn := writeROM(t, rom.Header{PRGBanks: 1, CHRBanks: 1}.Image(), false)
	cart, err := rom.Load(fn)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, cart.DebugFile(), "")

	tbl, err := cart.Symbols()
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, tbl == nil)

	res, err := cart.Resolver()
	test.DemandSuccess(t, err)
	_, _, err = res.Resolve("score")
	test.ExpectSuccess(t, curated.Is(err, symbols.NoDebugInfo))
}

func TestConvention(t *testing.T) {
	fn := writeROM(t, rom.Header{PRGBanks: 1, CHRBanks: 1}.Image(), true)
	cart, err := rom.Load(fn)
	test.DemandSuccess(t, err)

	cart.SetConvention(symbols.Convention{Prefix: "c_"})
	tbl, err := cart.Symbols()
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tbl.C), 0)
}
