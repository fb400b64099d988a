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

// Package session creates the private working area used by a single driver
// instance. The area is a directory, named by a random UUID, that holds the
// bootstrap script and the command and status files used to communicate
// with the emulator.
//
// Because every session has its own directory, any number of emulators can
// be driven at the same time from the same process or from different
// processes.
package session
