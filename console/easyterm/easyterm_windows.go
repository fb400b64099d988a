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

//go:build windows

package easyterm

import (
	"errors"
	"fmt"
	"os"
)

// Terminal modes are not available on this platform.
type Terminal struct {
	output *os.File
}

var errUnsupported = errors.New("easyterm: terminal modes are not supported on this platform")

// Initialise always fails on this platform.
func (pt *Terminal) Initialise(inputFile, outputFile *os.File) error {
	pt.output = outputFile
	return errUnsupported
}

// CleanUp does nothing on this platform.
func (pt *Terminal) CleanUp() error {
	return nil
}

// Print writes the formatted string to the output file.
func (pt *Terminal) Print(s string, a ...any) {
	if pt.output != nil {
		_, _ = pt.output.WriteString(fmt.Sprintf(s, a...))
	}
}

// CanonicalMode is not supported on this platform.
func (pt *Terminal) CanonicalMode() error {
	return errUnsupported
}

// CBreakMode is not supported on this platform.
func (pt *Terminal) CBreakMode() error {
	return errUnsupported
}

// Flush is not supported on this platform.
func (pt *Terminal) Flush() error {
	return errUnsupported
}

// ReadKey is not supported on this platform.
func (pt *Terminal) ReadKey() (Key, error) {
	return 0, errUnsupported
}
