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
	"embed"
	"strings"
	"text/template"

	"github.com/nestest/nestest/curated"
)

// Sentinal errors.
const (
	TemplateError = "script: template: %v"
)

//go:embed lua/*.lua
var luaFiles embed.FS

// template actions in the Lua files are written as Lua comments so that the
// files remain valid Lua.
const (
	leftDelim  = "--[[nestest "
	rightDelim = " ]]"
)

var templates = template.Must(template.New("lua").Delims(leftDelim, rightDelim).ParseFS(luaFiles, "lua/*.lua"))

// Controller returns the controller script for an interactive session. The
// interop directory is where the command and status files are written. It
// is passed to the script as a Lua string so any separator is escaped.
func Controller(interopDir string) (string, error) {
	// the controller joins the directory and the file names with simple
	// string concatenation
	if !strings.HasSuffix(interopDir, "/") && !strings.HasSuffix(interopDir, `\`) {
		interopDir += separator
	}

	return render("controller.lua", struct {
		InteropPath string
	}{
		InteropPath: Quote(interopDir),
	})
}

// Sequence returns the script for a batch run. Each event is the Lua source
// for a table constructor. Events must be sorted by frame.
//
// If stopOnErrors is false the emulator is paused at the end of the run
// rather than stopped, which allows the user to inspect the state of the
// emulator.
func Sequence(events []string, stopOnErrors bool) (string, error) {
	return render("sequence.lua", struct {
		Events       []string
		StopOnErrors bool
	}{
		Events:       events,
		StopOnErrors: stopOnErrors,
	})
}

func render(name string, data any) (string, error) {
	s := strings.Builder{}
	if err := templates.ExecuteTemplate(&s, name, data); err != nil {
		return "", curated.Errorf(TemplateError, err)
	}
	return s.String(), nil
}
