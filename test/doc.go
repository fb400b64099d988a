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

// Package test contains helper functions for the test files in the rest of
// the module. The Expect*() functions report a test error and continue; the
// Demand*() functions stop the test immediately.
//
// All functions accept optional tags. Tags are printed as a prefix to any
// failure message and are useful for identifying which of many similar
// tests has failed, for example when iterating over a table of cases.
package test
