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

package sequence

import (
	"fmt"
)

// AssertionFailed is returned by Run() when an assertion fails.
type AssertionFailed struct {
	// the 1-based index of the assertion, in the order the assertions were
	// added to the sequence
	Index int

	Name     string
	Operator Operator

	// Lua expressions of the two operands
	A string
	B string
}

func (e *AssertionFailed) Error() string {
	return fmt.Sprintf("sequence: assertion %d failed: %s: (%s %s %s)", e.Index, e.Name, e.A, e.Operator, e.B)
}

// UnclassifiedFailure is returned by Run() when the emulator exits with a
// code that does not correspond to an assertion.
type UnclassifiedFailure struct {
	Code int
}

func (e *UnclassifiedFailure) Error() string {
	return fmt.Sprintf("sequence: unknown problem running the sequence: exit code %d", e.Code)
}
