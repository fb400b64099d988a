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

package easyterm

import (
	"io"
)

// list of ASCII codes for non-alphanumeric characters
const (
	KeyCtrlC          = 3
	KeyTab            = 9
	KeyLineFeed       = 10
	KeyCarriageReturn = 13
	KeyEsc            = 27
	KeySpace          = 32
	KeyBackspace      = 127
)

// list of ASCII code for characters that can follow KeyEsc
const (
	EscCursor = 91
)

// list of ASCII code for characters that can follow EscCursor
const (
	CursorUp       = 'A'
	CursorDown     = 'B'
	CursorForward  = 'C'
	CursorBackward = 'D'
)

// Key is a single key press. Keys that produce a character are represented
// by that character. The cursor keys are represented by the Key* values
// below, which are outside the range of valid runes.
type Key rune

// List of cursor keys.
const (
	KeyUp Key = 0x110000 + iota
	KeyDown
	KeyRight
	KeyLeft
)

func (k Key) String() string {
	switch k {
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyRight:
		return "right"
	case KeyLeft:
		return "left"
	case KeyCarriageReturn, KeyLineFeed:
		return "return"
	case KeyEsc:
		return "escape"
	case KeySpace:
		return "space"
	case KeyTab:
		return "tab"
	}
	return string(rune(k))
}

// ReadKey reads the next key press. Cursor key escape sequences are
// returned as a single Key.
func ReadKey(r io.RuneReader) (Key, error) {
	c, _, err := r.ReadRune()
	if err != nil {
		return 0, err
	}

	if c != KeyEsc {
		return Key(c), nil
	}

	c, _, err = r.ReadRune()
	if err != nil {
		return 0, err
	}
	if c != EscCursor {
		return Key(c), nil
	}

	c, _, err = r.ReadRune()
	if err != nil {
		return 0, err
	}
	switch c {
	case CursorUp:
		return KeyUp, nil
	case CursorDown:
		return KeyDown, nil
	case CursorForward:
		return KeyRight, nil
	case CursorBackward:
		return KeyLeft, nil
	}

	return Key(c), nil
}
