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

package channel

import (
	"encoding/json"

	"github.com/nestest/nestest/curated"
)

// Sentinal errors.
const (
	MissingValue = "channel: response has no value named %s"
	ValueType    = "channel: value %s: %v"
)

// Response is the status published by the emulator after it has completed a
// command.
type Response struct {
	// the sequence number of the command that was completed
	Seq int `json:"eventNum"`

	// log messages separated by LogSeparator
	Log string `json:"log"`

	// values written by the command. the values are decoded on demand
	Values map[string]json.RawMessage `json:"values"`
}

// Has returns true if the response contains a value with the key.
func (rsp *Response) Has(key string) bool {
	_, ok := rsp.Values[key]
	return ok
}

func (rsp *Response) decode(key string, v any) error {
	raw, ok := rsp.Values[key]
	if !ok {
		return curated.Errorf(MissingValue, key)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return curated.Errorf(ValueType, key, err)
	}
	return nil
}

// Int returns the named value as an integer.
func (rsp *Response) Int(key string) (int, error) {
	var v int
	if err := rsp.decode(key, &v); err != nil {
		return 0, err
	}
	return v, nil
}

// String returns the named value as a string.
func (rsp *Response) String(key string) (string, error) {
	var v string
	if err := rsp.decode(key, &v); err != nil {
		return "", err
	}
	return v, nil
}

// Bool returns the named value as a boolean.
func (rsp *Response) Bool(key string) (bool, error) {
	var v bool
	if err := rsp.decode(key, &v); err != nil {
		return false, err
	}
	return v, nil
}

// Ints returns the named value as a slice of integers. An empty Lua table is
// published as an empty JSON object, which is accepted as an empty slice.
func (rsp *Response) Ints(key string) ([]int, error) {
	raw, ok := rsp.Values[key]
	if !ok {
		return nil, curated.Errorf(MissingValue, key)
	}
	if string(raw) == "{}" {
		return []int{}, nil
	}
	var v []int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, curated.Errorf(ValueType, key, err)
	}
	return v, nil
}
