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
	"sort"

	"github.com/nestest/nestest/curated"
)

// FromGo converts a plain Go value to a Value. Supported types are the
// integer types, string, bool, map[string]any (converted recursively, with
// fields sorted by name) and any type that already implements Value.
func FromGo(v any) (Value, error) {
	switch v := v.(type) {
	case Value:
		return v, nil
	case int:
		return Number(v), nil
	case int8:
		return Number(v), nil
	case int16:
		return Number(v), nil
	case int32:
		return Number(v), nil
	case int64:
		return Number(v), nil
	case uint8:
		return Number(v), nil
	case uint16:
		return Number(v), nil
	case uint32:
		return Number(v), nil
	case string:
		return Text(v), nil
	case bool:
		return Bool(v), nil
	case map[string]bool:
		m := make(map[string]any, len(v))
		for k, b := range v {
			m[k] = b
		}
		return FromGo(m)
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		r := make(Record, 0, len(keys))
		for _, k := range keys {
			fv, err := FromGo(v[k])
			if err != nil {
				return nil, err
			}
			r = append(r, Field{Name: k, Value: fv})
		}
		return r, nil
	case nil:
		return nil, curated.Errorf(UnsupportedValue, "nil")
	}

	return nil, curated.Errorf(UnsupportedValue, fmt.Sprintf("%T", v))
}
