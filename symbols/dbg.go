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
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/nestest/nestest/curated"
)

// Sentinal errors.
const (
	ReadError = "symbols: %v"
)

// Convention describes how a C compiler decorates the names of C symbols when
// it emits them as assembly symbols.
type Convention struct {
	Prefix string
}

// CC65 is the naming convention used by the cc65 compiler.
var CC65 = Convention{Prefix: "_"}

// undecorate removes the prefix from an assembly name. The second return
// value is false if the name does not carry the prefix.
func (cnv Convention) undecorate(name string) (string, bool) {
	if !strings.HasPrefix(name, cnv.Prefix) {
		return name, false
	}
	return name[len(cnv.Prefix):], true
}

// decorate adds the prefix to a C name.
func (cnv Convention) decorate(name string) string {
	return cnv.Prefix + name
}

// DebugFilename returns the name of the debug file for the ROM file. The
// debug file has the same base name as the ROM with the extension ".dbg".
func DebugFilename(romFilename string) string {
	return strings.TrimSuffix(romFilename, filepath.Ext(romFilename)) + ".dbg"
}

// ReadDebugFile parses the named debug file.
func ReadDebugFile(filename string, cnv Convention) (*Table, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, curated.Errorf(ReadError, err)
	}
	defer f.Close()

	return Parse(f, cnv)
}

// Parse the content of a debug file. Lines that are not "sym" or "csym"
// records are ignored, as are records that are missing the fields required
// for the record to be useful.
//
// The linking of C symbols to assembly symbols relies on the "csym" records
// appearing in the file before the "sym" records they refer to. This is the
// order in which ld65 writes the file.
func Parse(r io.Reader, cnv Convention) (*Table, error) {
	tbl := NewTable()

	// names of C symbols that have a linked assembly symbol
	cnames := make(map[string]bool)

	scanner := bufio.NewScanner(r)

	// lines in a debug file can be longer than the default buffer size
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		rec, fields, ok := record(scanner.Text())
		if !ok {
			continue // for loop
		}

		switch rec {
		case "csym":
			if _, ok := fields["sym"]; !ok {
				continue // for loop
			}
			if name, ok := unquote(fields["name"]); ok {
				cnames[name] = true
			}

		case "sym":
			v, ok := fields["val"]
			if !ok {
				continue // for loop
			}
			name, ok := unquote(fields["name"])
			if !ok {
				continue // for loop
			}
			addr, ok := value(v)
			if !ok {
				continue // for loop
			}

			tbl.Assembly[name] = addr
			if n, ok := cnv.undecorate(name); ok && cnames[n] {
				tbl.C[n] = addr
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, curated.Errorf(ReadError, err)
	}

	return tbl, nil
}

// record splits a line into its record type and its fields. only "sym" and
// "csym" records are returned.
func record(line string) (string, map[string]string, bool) {
	rec, rest, ok := strings.Cut(strings.TrimSpace(line), "\t")
	if !ok {
		rec, rest, ok = strings.Cut(strings.TrimSpace(line), " ")
		if !ok {
			return "", nil, false
		}
	}

	if rec != "sym" && rec != "csym" {
		return "", nil, false
	}

	fields := make(map[string]string)
	for _, f := range strings.Split(strings.TrimSpace(rest), ",") {
		k, v, ok := strings.Cut(f, "=")
		if !ok {
			continue // for loop
		}
		fields[k] = v
	}

	return rec, fields, true
}

func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}

// value parses the hexadecimal value of a sym record. values that do not fit
// in the 16 bit address space are rejected.
func value(s string) (uint16, bool) {
	s = strings.ToLower(s)
	if !strings.HasPrefix(s, "0x") {
		return 0, false
	}
	v, err := strconv.ParseUint(s[2:], 16, 16)
	if err != nil {
		return 0, false
	}
	return uint16(v), true
}
