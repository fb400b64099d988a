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
	"io"

	"github.com/bradleyjkemp/memviz"
)

// Graph writes the table as a graphviz dot file. Useful for seeing which
// assembly symbols have been linked to C symbols.
func (tbl *Table) Graph(output io.Writer) {
	memviz.Map(output, tbl)
}
