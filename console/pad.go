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

package console

import (
	"github.com/nestest/nestest/console/easyterm"
	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/emulator"
)

// PadKeys maps keys to the buttons pressed in pad mode.
var PadKeys = map[easyterm.Key]emulator.Input{
	easyterm.KeyUp:             {Up: true},
	easyterm.KeyDown:           {Down: true},
	easyterm.KeyLeft:           {Left: true},
	easyterm.KeyRight:          {Right: true},
	'x':                        {A: true},
	'z':                        {B: true},
	easyterm.KeyCarriageReturn: {Start: true},
	easyterm.KeyLineFeed:       {Start: true},
	easyterm.KeySpace:          {Select: true},
	easyterm.KeyTab:            {Select: true},
}

// the key that ends pad mode
const padQuit = 'q'

func (con *Console) pad(_ []string) error {
	if con.kb == nil {
		return curated.Errorf(NoKeyboard)
	}

	if err := con.kb.CBreakMode(); err != nil {
		return err
	}
	defer func() {
		_ = con.kb.CanonicalMode()
	}()

	con.printf("pad mode: cursor keys, x=a z=b return=start space=select q=quit\n")

	for {
		k, err := con.kb.ReadKey()
		if err != nil {
			return err
		}
		if k == padQuit || k == easyterm.KeyCtrlC {
			return nil
		}

		// unmapped keys advance the emulation without input
		in := PadKeys[k]

		if err := con.emu.SendInput(in, 0); err != nil {
			return err
		}
		if err := con.emu.RunFrames(1); err != nil {
			return err
		}
		con.frameCount++
		if err := con.emu.SendInput(emulator.Input{}, 0); err != nil {
			return err
		}
	}
}
