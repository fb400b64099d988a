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
	"strings"

	"github.com/nestest/nestest/curated"
)

// Emit the Lua source for the value.
func Emit(v Value) (string, error) {
	if v == nil {
		return "", curated.Errorf(UnsupportedValue, "nil")
	}
	return v.emit()
}

func (n Number) emit() (string, error) {
	return fmt.Sprintf("%d", int(n)), nil
}

func (s Text) emit() (string, error) {
	return Quote(string(s)), nil
}

func (b Bool) emit() (string, error) {
	if b {
		return "true", nil
	}
	return "false", nil
}

func (x Expression) emit() (string, error) {
	if strings.TrimSpace(string(x)) == "" {
		return "", curated.Errorf(UnsupportedValue, "empty expression")
	}
	return string(x), nil
}

func (r Record) emit() (string, error) {
	if len(r) == 0 {
		return "{}", nil
	}

	s := make([]string, 0, len(r))
	for _, f := range r {
		if !isIdentifier(f.Name) {
			return "", curated.Errorf(UnsupportedValue, fmt.Sprintf("field name %q", f.Name))
		}
		v, err := Emit(f.Value)
		if err != nil {
			return "", err
		}
		s = append(s, fmt.Sprintf("%s = %s", f.Name, v))
	}

	return fmt.Sprintf("{ %s }", strings.Join(s, ", ")), nil
}

func (ref MemoryRef) emit() (string, error) {
	mt, err := ref.Space.MemType()
	if err != nil {
		return "", curated.Errorf(UnsupportedValue, err)
	}
	if ref.Word {
		return fmt.Sprintf("emu.readWord(%d, %s)", ref.Address, mt), nil
	}
	return fmt.Sprintf("emu.read(%d, %s)", ref.Address, mt), nil
}

// Quote returns s as a double quoted Lua string literal. Backslashes are
// escaped, which makes the function suitable for Windows paths.
func Quote(s string) string {
	b := strings.Builder{}
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if c < 0x20 || c == 0x7f {
				// decimal escapes are understood by all versions of Lua
				fmt.Fprintf(&b, `\%03d`, c)
			} else {
				b.WriteByte(c)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Lua keywords cannot be used as field names in a table constructor.
var keywords = map[string]bool{
	"and": true, "break": true, "do": true, "else": true, "elseif": true,
	"end": true, "false": true, "for": true, "function": true, "goto": true,
	"if": true, "in": true, "local": true, "nil": true, "not": true,
	"or": true, "repeat": true, "return": true, "then": true, "true": true,
	"until": true, "while": true,
}

func isIdentifier(s string) bool {
	if s == "" || keywords[s] {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_':
		case c >= 'a' && c <= 'z':
		case c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
