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

package symbols

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// Namespace is used to select and identify a symbol namespace when
// searching.
type Namespace int

func (ns Namespace) String() string {
	switch ns {
	case SearchAll:
		return "unspecified"
	case Assembly:
		return "assembly"
	case C:
		return "c"
	}
	return ""
}

// List of valid Namespace values.
const (
	SearchAll Namespace = iota
	Assembly
	C
)

// Table maps symbol names to addresses. Names in the Assembly map are
// exactly as they appear in the debug file, including any decoration added
// by the C compiler. Names in the C map are undecorated.
type Table struct {
	Assembly map[string]uint16
	C        map[string]uint16
}

// NewTable is the preferred method of initialisation for the Table type.
func NewTable() *Table {
	return &Table{
		Assembly: make(map[string]uint16),
		C:        make(map[string]uint16),
	}
}

func (tbl *Table) String() string {
	return fmt.Sprintf("%d assembly symbols, %d c symbols", len(tbl.Assembly), len(tbl.C))
}

// entry is used when listing the table.
type entry struct {
	name string
	addr uint16
}

// sorted returns the entries of a map sorted by address and then by name.
func sorted(m map[string]uint16) []entry {
	s := make([]entry, 0, len(m))
	for k, v := range m {
		s = append(s, entry{name: k, addr: v})
	}
	sort.Slice(s, func(i, j int) bool {
		if s[i].addr == s[j].addr {
			return s[i].name < s[j].name
		}
		return s[i].addr < s[j].addr
	})
	return s
}

// ListSymbols outputs every symbol in the table, sorted by address.
func (tbl *Table) ListSymbols(output io.Writer) {
	if len(tbl.C) > 0 {
		io.WriteString(output, "C Symbols\n---------\n")
		for _, e := range sorted(tbl.C) {
			fmt.Fprintf(output, "0x%04x -> %s\n", e.addr, e.name)
		}
		io.WriteString(output, "\n")
	}

	io.WriteString(output, "Assembly Symbols\n----------------\n")
	for _, e := range sorted(tbl.Assembly) {
		fmt.Fprintf(output, "0x%04x -> %s\n", e.addr, e.name)
	}
}

// SearchResults contains the normalised symbol info found in the Table.
type SearchResults struct {
	Namespace Namespace
	Symbol    string
	Address   uint16
}

func (res SearchResults) String() string {
	return fmt.Sprintf("%s (%s) 0x%04x", res.Symbol, res.Namespace, res.Address)
}

// Search returns the address of the supplied symbol. Matching is case
// insensitive. When target is SearchAll the C namespace is searched before
// the Assembly namespace.
//
// Returns nil if the symbol cannot be found.
//
// Search is intended for interactive use. The Resolver type is stricter and
// should be used when the exact symbol is known.
func (tbl *Table) Search(symbol string, target Namespace) *SearchResults {
	if target == SearchAll || target == C {
		if res := search(tbl.C, symbol); res != nil {
			res.Namespace = C
			return res
		}
	}
	if target == SearchAll || target == Assembly {
		if res := search(tbl.Assembly, symbol); res != nil {
			res.Namespace = Assembly
			return res
		}
	}
	return nil
}

func search(m map[string]uint16, symbol string) *SearchResults {
	if a, ok := m[symbol]; ok {
		return &SearchResults{Symbol: symbol, Address: a}
	}
	for _, e := range sorted(m) {
		if strings.EqualFold(e.name, symbol) {
			return &SearchResults{Symbol: e.name, Address: e.addr}
		}
	}
	return nil
}

// ReverseSearch returns the symbols for the specified address. When target
// is SearchAll the C namespace results come first. Results within a
// namespace are sorted by name.
func (tbl *Table) ReverseSearch(addr uint16, target Namespace) []SearchResults {
	var res []SearchResults
	if target == SearchAll || target == C {
		for _, e := range sorted(tbl.C) {
			if e.addr == addr {
				res = append(res, SearchResults{Namespace: C, Symbol: e.name, Address: e.addr})
			}
		}
	}
	if target == SearchAll || target == Assembly {
		for _, e := range sorted(tbl.Assembly) {
			if e.addr == addr {
				res = append(res, SearchResults{Namespace: Assembly, Symbol: e.name, Address: e.addr})
			}
		}
	}
	return res
}
