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

// Package modalflag is a wrapper for the flag package in the Go standard
// library. It provides a convenient method of handling program modes (and
// sub-modes) and allows different flags for each mode.
//
// Unlike flag.FlagSet, the arguments are given to NewArgs() and Parse() is
// called without arguments. This allows the same argument list to be parsed
// in stages, one stage per mode:
//
//	md := modalflag.Modes{Output: os.Stdout}
//	md.NewArgs(os.Args[1:])
//	md.AddSubModes("INFO", "SYMBOLS", "CONSOLE")
//	_, _ = md.Parse()
//
// A mode is a special command line argument that puts the program into a
// different mode of operation, in the way that the go command has build, doc
// and test modes. After Parse() the selected mode is returned by Mode(). The
// first sub-mode in the list is the default and is selected if the first
// non-flag argument is not a recognised mode. Sub-mode comparisons are case
// insensitive.
//
// Once the mode has been decided, NewMode() prepares the Modes instance for
// the flags of that mode and Parse() is called again on the remaining
// arguments:
//
//	switch md.Mode() {
//	case "SYMBOLS":
//		md.NewMode()
//		dot := md.AddString("dot", "", "write symbol table as graphviz file")
//		p, err := md.Parse()
//		switch p {
//		case modalflag.ParseError:
//			return err
//		case modalflag.ParseHelp:
//			return nil
//		}
//		listSymbols(md.GetArg(0), *dot)
//	}
//
// Modes can be chained as deeply as required. Path() returns the list of
// modes encountered so far, separated by a forward slash.
//
// Help is handled automatically. The -help flag causes Parse() to print the
// flags and sub-modes for the current mode, and to return ParseHelp. The
// Output field of the Modes struct must be set for the help message to be
// visible.
package modalflag
