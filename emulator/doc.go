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

// Package emulator drives a running instance of the Mesen emulator one
// command at a time.
//
// Every method that talks to the emulator is a single round trip: a Lua
// command is written to the session's command file and the method returns
// when the emulator has published the result. Between commands the
// emulator is paused at the end of a frame, so values read by consecutive
// calls are consistent with each other.
//
//	emu, err := emulator.New("game.nes", rt)
//	if err != nil {
//		return err
//	}
//	if err := emu.Start(); err != nil {
//		return err
//	}
//	defer emu.Stop(0)
//
//	_ = emu.RunFrames(60)
//	lives, err := emu.ByteValue("lives")
//
// Locations can be given as numbers or as the names of symbols in the
// ROM's debug file. See the symbols package for how names are resolved.
package emulator
