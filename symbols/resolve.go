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
	"github.com/nestest/nestest/curated"
)

// Sentinal errors returned by Resolve().
const (
	NoDebugInfo    = "symbols: no debug information: cannot resolve %s"
	SymbolNotFound = "symbols: symbol not found: %s"
	AddressRange   = "symbols: address out of range: %d"
)

// Resolver turns a location into an address. A location is either a number,
// in which case it is already an address, or the name of a symbol.
type Resolver struct {
	tbl *Table
	cnv Convention
}

// NewResolver is the preferred method of initialisation for the Resolver
// type. The table can be nil, in which case only numeric locations can be
// resolved.
func NewResolver(tbl *Table, cnv Convention) *Resolver {
	return &Resolver{
		tbl: tbl,
		cnv: cnv,
	}
}

// Resolve the location. The second return value is false if the location is
// of a type that cannot be an address, in which case the error is nil.
//
// String locations are looked up in the following order:
//
//  1. the C namespace
//  2. the Assembly namespace
//  3. the Assembly namespace, with the name decorated by the naming
//     convention
//
// The third step catches C variables for which the compiler did not emit a
// "csym" record.
func (res *Resolver) Resolve(location any) (uint16, bool, error) {
	switch l := location.(type) {
	case uint16:
		return l, true, nil
	case uint8:
		return uint16(l), true, nil
	case int:
		return res.integer(int64(l))
	case int8:
		return res.integer(int64(l))
	case int16:
		return res.integer(int64(l))
	case int32:
		return res.integer(int64(l))
	case int64:
		return res.integer(l)
	case uint:
		return res.integer(int64(l))
	case uint32:
		return res.integer(int64(l))
	case uint64:
		if l > 0xffff {
			return 0, false, curated.Errorf(AddressRange, l)
		}
		return uint16(l), true, nil
	case string:
		a, err := res.symbol(l)
		if err != nil {
			return 0, false, err
		}
		return a, true, nil
	}
	return 0, false, nil
}

func (res *Resolver) integer(v int64) (uint16, bool, error) {
	if v < 0 || v > 0xffff {
		return 0, false, curated.Errorf(AddressRange, v)
	}
	return uint16(v), true, nil
}

func (res *Resolver) symbol(name string) (uint16, error) {
	if res.tbl == nil {
		return 0, curated.Errorf(NoDebugInfo, name)
	}
	if a, ok := res.tbl.C[name]; ok {
		return a, nil
	}
	if a, ok := res.tbl.Assembly[name]; ok {
		return a, nil
	}
	if a, ok := res.tbl.Assembly[res.cnv.decorate(name)]; ok {
		return a, nil
	}
	return 0, curated.Errorf(SymbolNotFound, name)
}
