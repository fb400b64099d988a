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

// Package channel implements the request/response protocol used to drive a
// running emulator.
//
// The emulator does not signal the driver when it has completed a command.
// Instead, every command carries a sequence number and the emulator publishes
// the number of the last command it completed, along with any results, in a
// status slot. The driver polls the status slot until the number it finds
// equals the number it submitted. Any other number is a stale status and is
// ignored.
//
// The protocol is independent of how the command and status slots are
// implemented. The Transport interface describes the two operations
// required. FileTransport uses a pair of files, which is what the
// emulator's Lua environment supports out of the box. StreamTransport uses
// length prefixed frames over any io.ReadWriter, a unix socket for example.
package channel
