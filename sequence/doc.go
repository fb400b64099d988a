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

// Package sequence builds a test that runs in the emulator as a single
// script.
//
// Unlike the emulator package, nothing is sent to the emulator while the
// test is being built. Inputs and assertions are scheduled against a virtual
// frame counter, which is advanced by RunFrames(). Run() compiles the events
// into a Lua script, runs the emulator once and waits for it to exit.
//
//	seq, err := sequence.New("game.nes", rt)
//	if err != nil {
//		return err
//	}
//	seq.RunFrames(60)
//	seq.SendInput(emulator.Input{Start: true}, 0)
//	seq.RunFrames(5)
//	seq.AssertEqual("game has started", seq.RamByteOf("gameState"), 1)
//	if err := seq.Run(); err != nil {
//		return err
//	}
//
// A failed assertion stops the emulator with the index of the assertion as
// the exit code. Run() maps the exit code back to the assertion and returns
// an *AssertionFailed error.
//
// The builder methods do not return errors. The first error encountered is
// kept and returned by Run(), and by Err().
package sequence
