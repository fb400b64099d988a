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

package symbols_test

import (
	_ "embed"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/symbols"
	"github.com/nestest/nestest/test"
)

//go:embed "testdata/game.dbg"
var gameDbg string

func TestParse(t *testing.T) {
	tbl, err := symbols.Parse(strings.NewReader(gameDbg), symbols.CC65)
	test.DemandSuccess(t, err)

	// every sym record with a value is in the assembly namespace
	test.ExpectEquality(t, len(tbl.Assembly), 7)
	test.ExpectEquality(t, tbl.Assembly["NMI"], 0xc100)
	test.ExpectEquality(t, tbl.Assembly["RESET"], 0xc000)
	test.ExpectEquality(t, tbl.Assembly["frameCount"], 0x0a)
	test.ExpectEquality(t, tbl.Assembly["_score"], 0x0300)

	// no value
	_, ok := tbl.Assembly["IMPORTED"]
	test.ExpectFailure(t, ok)

	// value does not fit in address space
	_, ok = tbl.Assembly["BANKSIZE"]
	test.ExpectFailure(t, ok)

	// only linked C symbols are in the C namespace
	test.ExpectEquality(t, len(tbl.C), 3)
	test.ExpectEquality(t, tbl.C["main"], 0xc200)
	test.ExpectEquality(t, tbl.C["score"], 0x0300)
	test.ExpectEquality(t, tbl.C["lives"], 0x0302)
	_, ok = tbl.C["level"]
	test.ExpectFailure(t, ok)
	_, ok = tbl.C["unlinked"]
	test.ExpectFailure(t, ok)

	// linked pairs agree
	for k, v := range tbl.C {
		test.ExpectEquality(t, tbl.Assembly["_"+k], v, k)
	}
}

func TestParseOrdering(t *testing.T) {
	// the csym record appears after the sym record it refers to. the C
	// symbol is not linked
	dbg := "sym\tid=0,name=\"_score\",val=0x0300,type=lab\n" +
		"csym\tid=0,name=\"score\",sc=static,sym=0\n"

	tbl, err := symbols.Parse(strings.NewReader(dbg), symbols.CC65)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tbl.Assembly), 1)
	test.ExpectEquality(t, len(tbl.C), 0)
}

func TestParseMalformed(t *testing.T) {
	dbg := "sym\n" +
		"sym\tid=0,name=score,val=0x0300\n" +
		"sym\tid=1,name=\"lives\",val=302\n" +
		"sym\tid=2,name=\"level\",val=0xZZ\n" +
		"symbol\tid=3,name=\"bogus\",val=0x10\n" +
		"csym\tname=\"orphan\"\n" +
		"sym\tid=4,name=\"ok\",val=0x10\n"

	tbl, err := symbols.Parse(strings.NewReader(dbg), symbols.CC65)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tbl.Assembly), 1)
	test.ExpectEquality(t, tbl.Assembly["ok"], 0x10)
}

func TestConvention(t *testing.T) {
	dbg := "csym\tid=0,name=\"score\",sym=0\n" +
		"sym\tid=0,name=\"c_score\",val=0x0300\n"

	tbl, err := symbols.Parse(strings.NewReader(dbg), symbols.Convention{Prefix: "c_"})
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tbl.C["score"], 0x0300)

	// the default convention does not link the symbols
	tbl, err = symbols.Parse(strings.NewReader(dbg), symbols.CC65)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(tbl.C), 0)
}

func TestReadDebugFile(t *testing.T) {
	tbl, err := symbols.ReadDebugFile(filepath.Join("testdata", "game.dbg"), symbols.CC65)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, tbl.C["score"], 0x0300)

	_, err = symbols.ReadDebugFile(filepath.Join("testdata", "missing.dbg"), symbols.CC65)
	test.ExpectSuccess(t, curated.Is(err, symbols.ReadError))
	test.ExpectSuccess(t, errors.Is(err, fs.ErrNotExist))
}

func TestDebugFilename(t *testing.T) {
	test.ExpectEquality(t, symbols.DebugFilename("roms/game.nes"), "roms/game.dbg")
	test.ExpectEquality(t, symbols.DebugFilename("roms/game"), "roms/game.dbg")
}

func TestResolve(t *testing.T) {
	tbl, err := symbols.Parse(strings.NewReader(gameDbg), symbols.CC65)
	test.DemandSuccess(t, err)
	res := symbols.NewResolver(tbl, symbols.CC65)

	// numeric locations are unchanged
	a, ok, err := res.Resolve(0x0300)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, a, 0x0300)

	a, ok, err = res.Resolve(uint16(0xfffc))
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, a, 0xfffc)

	// numbers outside of the address space
	_, ok, err = res.Resolve(0x10000)
	test.ExpectFailure(t, ok)
	test.ExpectSuccess(t, curated.Is(err, symbols.AddressRange))
	_, _, err = res.Resolve(-1)
	test.ExpectSuccess(t, curated.Is(err, symbols.AddressRange))

	// every integer type is a numeric location
	for _, l := range []any{int8(0x10), int16(0x10), int32(0x10), int64(0x10), uint(0x10), uint8(0x10), uint32(0x10), uint64(0x10)} {
		a, ok, err = res.Resolve(l)
		test.ExpectSuccess(t, err, l)
		test.ExpectSuccess(t, ok, l)
		test.ExpectEquality(t, a, 0x10, l)
	}
	_, _, err = res.Resolve(int8(-1))
	test.ExpectSuccess(t, curated.Is(err, symbols.AddressRange))
	_, _, err = res.Resolve(int16(-2))
	test.ExpectSuccess(t, curated.Is(err, symbols.AddressRange))
	_, ok, err = res.Resolve(uint64(0x10000))
	test.ExpectFailure(t, ok)
	test.ExpectSuccess(t, curated.Is(err, symbols.AddressRange))

	// C namespace
	a, _, err = res.Resolve("score")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a, 0x0300)

	// assembly namespace
	a, _, err = res.Resolve("frameCount")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a, 0x0a)
	a, _, err = res.Resolve("_lives")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a, 0x0302)

	// decorated fallback for a C variable without a csym record
	a, _, err = res.Resolve("level")
	test.ExpectSuccess(t, err)
	test.ExpectEquality(t, a, 0x0304)

	// missing symbol
	_, ok, err = res.Resolve("nothing")
	test.ExpectFailure(t, ok)
	test.ExpectSuccess(t, curated.Is(err, symbols.SymbolNotFound))

	// other types are not an error but are not an address either
	_, ok, err = res.Resolve(1.5)
	test.ExpectFailure(t, ok)
	test.ExpectSuccess(t, err)
	_, ok, err = res.Resolve(nil)
	test.ExpectFailure(t, ok)
	test.ExpectSuccess(t, err)
}

func TestResolveNoDebugInfo(t *testing.T) {
	res := symbols.NewResolver(nil, symbols.CC65)

	a, ok, err := res.Resolve(0x10)
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, a, 0x10)

	_, _, err = res.Resolve("score")
	test.ExpectSuccess(t, curated.Is(err, symbols.NoDebugInfo))
}

func TestSearch(t *testing.T) {
	tbl, err := symbols.Parse(strings.NewReader(gameDbg), symbols.CC65)
	test.DemandSuccess(t, err)

	r := tbl.Search("SCORE", symbols.SearchAll)
	test.DemandSuccess(t, r != nil)
	test.ExpectEquality(t, r.Namespace, symbols.C)
	test.ExpectEquality(t, r.Symbol, "score")
	test.ExpectEquality(t, r.Address, 0x0300)

	r = tbl.Search("score", symbols.Assembly)
	test.ExpectSuccess(t, r == nil)

	r = tbl.Search("nmi", symbols.Assembly)
	test.DemandSuccess(t, r != nil)
	test.ExpectEquality(t, r.Symbol, "NMI")

	rs := tbl.ReverseSearch(0x0300, symbols.SearchAll)
	test.DemandEquality(t, len(rs), 2)
	test.ExpectEquality(t, rs[0].String(), "score (c) 0x0300")
	test.ExpectEquality(t, rs[1].String(), "_score (assembly) 0x0300")

	test.ExpectEquality(t, len(tbl.ReverseSearch(0x1234, symbols.SearchAll)), 0)
}

func TestListSymbols(t *testing.T) {
	dbg := "csym\tid=0,name=\"score\",sym=0\n" +
		"sym\tid=0,name=\"_score\",val=0x0300\n" +
		"sym\tid=1,name=\"NMI\",val=0xc100\n"

	tbl, err := symbols.Parse(strings.NewReader(dbg), symbols.CC65)
	test.DemandSuccess(t, err)

	w := &test.CompareWriter{}
	tbl.ListSymbols(w)
	test.ExpectEquality(t, w.String(), "C Symbols\n---------\n"+
		"0x0300 -> score\n\n"+
		"Assembly Symbols\n----------------\n"+
		"0x0300 -> _score\n"+
		"0xc100 -> NMI\n")
}

func TestGraph(t *testing.T) {
	tbl, err := symbols.Parse(strings.NewReader(gameDbg), symbols.CC65)
	test.DemandSuccess(t, err)

	w := &strings.Builder{}
	tbl.Graph(w)
	test.ExpectSuccess(t, strings.Contains(w.String(), "digraph"))
}
