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

// Package mesentest provides a stand-in for the Mesen emulator, for use in
// tests.
//
// A test binary becomes the stand-in when it is run with the environment
// variable named by Env. Packages that want to use the stand-in call Main()
// from their TestMain() function and launch the emulator with a Runtime
// created by Runtime():
//
//	func TestMain(m *testing.M) {
//		mesentest.Main(m)
//	}
//
//	func TestSomething(t *testing.T) {
//		rt := mesentest.Runtime(mesentest.Controller)
//		...
//	}
//
// The stand-in has 64k of CPU memory, PPU memory and PRG ROM, all
// initially zero. Every emulated frame increments the byte at FrameCounter.
// Controller input is stored as a bit mask at JoypadBase plus the number
// of the controller.
//
// In Controller mode it follows the command protocol of the controller
// script. It understands the single line commands issued by the emulator
// package. Any other line is reported in the status log as an error. In
// Sequence mode it runs the event table of a sequence script.
package mesentest
