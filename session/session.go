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

package session

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/paths"
)

// Sentinal errors.
const (
	CreateError = "session: create: %v"
	RemoveError = "session: remove: %v"
)

// Filenames within the session directory. The names are known to the
// controller script.
const (
	CommandFilename   = "current-event.lua"
	StatusFilename    = "js-status.json"
	BootstrapFilename = "nestest.lua"
)

// DefaultBase returns the directory in which sessions are created when no
// other directory is specified.
func DefaultBase() string {
	return paths.TempPath("lua")
}

// Session is a unique working directory.
type Session struct {
	id  string
	dir string
}

// New creates a new session directory inside base. If base is the empty
// string then DefaultBase() is used.
func New(base string) (*Session, error) {
	if base == "" {
		base = DefaultBase()
	}

	id := uuid.NewString()
	dir, err := filepath.Abs(filepath.Join(base, id))
	if err != nil {
		return nil, curated.Errorf(CreateError, err)
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, curated.Errorf(CreateError, err)
	}

	return &Session{id: id, dir: dir}, nil
}

func (s *Session) String() string {
	return s.dir
}

// ID returns the unique identifier of the session.
func (s *Session) ID() string {
	return s.id
}

// Dir returns the absolute path of the session directory.
func (s *Session) Dir() string {
	return s.dir
}

// Path returns the absolute path of the named file in the session directory.
func (s *Session) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// CommandFile returns the path of the command slot.
func (s *Session) CommandFile() string {
	return s.Path(CommandFilename)
}

// StatusFile returns the path of the status slot.
func (s *Session) StatusFile() string {
	return s.Path(StatusFilename)
}

// BootstrapFile returns the path of the script given to the emulator on the
// command line.
func (s *Session) BootstrapFile() string {
	return s.Path(BootstrapFilename)
}

// WriteFile writes data to the named file in the session directory.
func (s *Session) WriteFile(name string, data []byte) error {
	return os.WriteFile(s.Path(name), data, 0o600)
}

// Remove the session directory and everything in it. It is not an error to
// remove a session more than once.
func (s *Session) Remove() error {
	if err := os.RemoveAll(s.dir); err != nil {
		return curated.Errorf(RemoveError, err)
	}
	return nil
}
