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

package session_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/nestest/nestest/session"
	"github.com/nestest/nestest/test"
)

func TestSession(t *testing.T) {
	base := t.TempDir()

	s, err := session.New(base)
	test.DemandSuccess(t, err)

	_, err = uuid.Parse(s.ID())
	test.ExpectSuccess(t, err)

	test.ExpectEquality(t, s.Dir(), filepath.Join(base, s.ID()))
	test.ExpectEquality(t, s.CommandFile(), filepath.Join(base, s.ID(), "current-event.lua"))
	test.ExpectEquality(t, s.StatusFile(), filepath.Join(base, s.ID(), "js-status.json"))
	test.ExpectEquality(t, s.BootstrapFile(), filepath.Join(base, s.ID(), "nestest.lua"))

	info, err := os.Stat(s.Dir())
	test.DemandSuccess(t, err)
	test.ExpectSuccess(t, info.IsDir())

	test.DemandSuccess(t, s.WriteFile("test.lua", []byte("return 1")))
	data, err := os.ReadFile(s.Path("test.lua"))
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, string(data), "return 1")

	test.ExpectSuccess(t, s.Remove())
	_, err = os.Stat(s.Dir())
	test.ExpectSuccess(t, os.IsNotExist(err))

	// removing twice is fine
	test.ExpectSuccess(t, s.Remove())
}

func TestUnique(t *testing.T) {
	base := t.TempDir()

	a, err := session.New(base)
	test.DemandSuccess(t, err)
	b, err := session.New(base)
	test.DemandSuccess(t, err)

	test.ExpectInequality(t, a.ID(), b.ID())
	test.ExpectInequality(t, a.Dir(), b.Dir())
}
