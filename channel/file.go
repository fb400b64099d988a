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

package channel

import (
	"os"
	"path/filepath"
)

// FileTransport implements the Transport interface with a pair of files.
// The command file is replaced on every call to Post(). The status file is
// written by the emulator.
type FileTransport struct {
	commandFile string
	statusFile  string
}

// NewFileTransport is the preferred method of initialisation for the
// FileTransport type.
func NewFileTransport(commandFile string, statusFile string) *FileTransport {
	return &FileTransport{
		commandFile: commandFile,
		statusFile:  statusFile,
	}
}

func (ft *FileTransport) String() string {
	return ft.commandFile
}

// Post implements the Transport interface.
//
// The command is written to a temporary file which is then renamed. The
// emulator never sees a partially written command.
func (ft *FileTransport) Post(command []byte) error {
	f, err := os.CreateTemp(filepath.Dir(ft.commandFile), ".command-*")
	if err != nil {
		return err
	}

	_, err = f.Write(command)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}

	if err := os.Rename(f.Name(), ft.commandFile); err != nil {
		_ = os.Remove(f.Name())
		return err
	}

	return nil
}

// Status implements the Transport interface.
func (ft *FileTransport) Status() ([]byte, error) {
	return os.ReadFile(ft.statusFile)
}
