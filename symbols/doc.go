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

// Package symbols reads the debug information produced by the cc65 toolchain
// and maps symbol names to addresses.
//
// The debug file is written by ld65 with the --dbgfile option and, by
// convention, sits next to the ROM file with the extension ".dbg". Only two
// record types in the file are of interest. The "sym" records define the
// assembly symbols and their values. The "csym" records define C symbols and
// link them to an assembly symbol:
//
//	csym	id=0,name="score",scope=1,type=1,sc=static,sym=12
//	sym	id=12,name="_score",addrsize=absolute,scope=0,def=26,val=0x0300,seg=2,type=lab
//
// The C compiler decorates the name of C symbols with a prefix (an underscore
// for cc65) when it emits the assembly symbol. The Convention type describes
// this decoration.
//
// The Table type holds the parsed symbols in two namespaces, one for assembly
// and one for C. The Resolver type turns a location, which can be a name or
// a number, into an address.
package symbols
