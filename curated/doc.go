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

// Package curated is a helper package for the plain Go language error type.
// Curated errors implement the error interface.
//
// Curated errors are created with the Errorf() function. Like the Errorf()
// function in the fmt package it takes a formatting pattern and placeholder
// values. Unlike the fmt version, the pattern is remembered and can be used
// to identify the error later:
//
//	err := curated.Errorf(symbols.SymbolNotFound, "playerX")
//
//	if curated.Is(err, symbols.SymbolNotFound) {
//		fmt.Println("no such symbol")
//	}
//
// The Has() function is similar but checks every curated error in the chain.
// In the following, Is() is false for the wrapped error because it was
// created with a different pattern. Has() is true because the supervisor
// error is still in the chain.
//
//	err := curated.Errorf(supervisor.SpawnFailed, os.ErrNotExist)
//	wrapped := curated.Errorf("emulator: %v", err)
//
//	curated.Is(wrapped, supervisor.SpawnFailed)  // false
//	curated.Has(wrapped, supervisor.SpawnFailed) // true
//
// The IsAny() function answers whether the error was created by Errorf() at
// all. An error that is not curated is usually an unexpected error from the
// operating system or the standard library.
//
// Chains are composed of parts separated by the sub-string ": ", as
// suggested on p239 of "The Go Programming Language" (Donovan, Kernighan).
// The Error() function removes the first part if it is identical to the
// second, so it doesn't matter if a package wraps an error that already
// carries the package name:
//
//	rom: rom: not found: game.nes
//
// is printed as:
//
//	rom: not found: game.nes
//
// Sentinal patterns are stored as const strings in the package that creates
// the error, usually in a block commented "Sentinal errors". For example:
//
//	const NotFound = "rom: not found: %s"
//
// Unwrap() returns the first error value in the Errorf() argument list, so
// errors.As() in the standard library can find typed errors wrapped inside a
// curated error.
package curated
