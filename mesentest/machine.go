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

package mesentest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nestest/nestest/script"
	"github.com/nestest/nestest/session"
)

type memory [0x10000]uint8

// machine is the state of the stand-in.
type machine struct {
	mem   map[string]*memory
	frame int
}

func newMachine() *machine {
	return &machine{
		mem: map[string]*memory{
			"cpuDebug": new(memory),
			"ppuDebug": new(memory),
			"prgRom":   new(memory),
		},
	}
}

func (m *machine) space(memType string) (*memory, error) {
	if mem, ok := m.mem[memType]; ok {
		return mem, nil
	}
	return nil, fmt.Errorf("unknown memory type: %s", memType)
}

// advance the machine by the number of frames.
func (m *machine) advance(n int) {
	for range n {
		m.frame++
		m.mem["cpuDebug"][FrameCounter]++
	}
}

func (m *machine) read(addr int, memType string, word bool) (int, error) {
	mem, err := m.space(memType)
	if err != nil {
		return 0, err
	}
	if addr < 0 || addr > 0xffff {
		return 0, fmt.Errorf("address out of range: %d", addr)
	}
	v := int(mem[addr])
	if word {
		v |= int(mem[(addr+1)&0xffff]) << 8
	}
	return v, nil
}

func (m *machine) write(addr int, value int, memType string, word bool) error {
	mem, err := m.space(memType)
	if err != nil {
		return err
	}
	if addr < 0 || addr > 0xffff {
		return fmt.Errorf("address out of range: %d", addr)
	}
	mem[addr] = uint8(value)
	if word {
		mem[(addr+1)&0xffff] = uint8(value >> 8)
	}
	return nil
}

var buttonBits = map[string]uint8{
	"a":      0x01,
	"b":      0x02,
	"select": 0x04,
	"start":  0x08,
	"up":     0x10,
	"down":   0x20,
	"left":   0x40,
	"right":  0x80,
}

var buttonField = regexp.MustCompile(`(\w+) = (true|false)`)

func (m *machine) setInput(controller int, fields string) error {
	if controller < 0 || controller > 3 {
		return fmt.Errorf("invalid controller: %d", controller)
	}
	var mask uint8
	for _, f := range buttonField.FindAllStringSubmatch(fields, -1) {
		bit, ok := buttonBits[f[1]]
		if !ok {
			return fmt.Errorf("unknown button: %s", f[1])
		}
		if f[2] == "true" {
			mask |= bit
		}
	}
	m.mem["cpuDebug"][JoypadBase+controller] = mask
	return nil
}

var memRead = regexp.MustCompile(`^emu\.read(Word)?\((\d+), emu\.memType\.(\w+)\)$`)

// operand evaluates a memory read or an integer literal.
func (m *machine) operand(s string) (int, error) {
	s = strings.TrimSpace(s)
	if r := memRead.FindStringSubmatch(s); r != nil {
		addr, _ := strconv.Atoi(r[2])
		return m.read(addr, r[3], r[1] != "")
	}
	return strconv.Atoi(s)
}

func compare(a int, op string, b int) (bool, error) {
	switch op {
	case "==":
		return a == b, nil
	case "~=":
		return a != b, nil
	case "<":
		return a < b, nil
	case ">":
		return a > b, nil
	case "<=":
		return a <= b, nil
	case ">=":
		return a >= b, nil
	}
	return false, fmt.Errorf("unknown operator: %s", op)
}

// status is the document written to the status file.
type status struct {
	EventNum int            `json:"eventNum"`
	Log      string         `json:"log"`
	Values   map[string]any `json:"values"`
}

func writeStatus(fn string, st status) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	tmp := fn + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, fn)
}

var getNum = regexp.MustCompile(`return (\d+)`)

// command returns the sequence number and the lines of the body of an
// enveloped command.
func command(data string) (int, []string) {
	m := getNum.FindAllStringSubmatch(data, -1)
	if len(m) == 0 {
		return -1, nil
	}
	seq, _ := strconv.Atoi(m[len(m)-1][1])

	var body []string
	inBody := false
	for _, l := range strings.Split(data, "\n") {
		switch {
		case l == "function event.doAction()":
			inBody = true
		case inBody && l == "end":
			return seq, body
		case inBody:
			if l = strings.TrimSpace(l); l != "" {
				body = append(body, l)
			}
		}
	}
	return seq, body
}

var (
	writeValue = regexp.MustCompile(`^NesTest\.writeValue\("(\w+)", (.+)\)$`)
	readRange  = regexp.MustCompile(`^NesTest\.readRange\((\d+), (\d+), emu\.memType\.(\w+)\)$`)
	memWrite   = regexp.MustCompile(`^emu\.write(Word)?\((\d+), (\d+), emu\.memType\.(\w+)\)$`)
	setInput   = regexp.MustCompile(`^emu\.setInput\((\d+), \{(.*)\}\)$`)
	waitFrames = regexp.MustCompile(`^NesTest\.waitFrames\((\d+)\)$`)
	screenshot = regexp.MustCompile(`^NesTest\.saveScreenshot\((".*")\)$`)
	stop       = regexp.MustCompile(`^NesTest\.stop\((-?\d+)\)$`)
	breakExec  = regexp.MustCompile(`^NesTest\.breakExecution\(\)$`)
	logLine    = regexp.MustCompile(`^NesTest\.log\((".*")\)$`)
)

// PNG is the content of every screenshot taken by the stand-in.
var PNG = []byte("\x89PNG\r\n\x1a\nmesentest")

// exec runs a single line of a command. Returns true and an exit code if
// the emulator has been asked to stop.
func (m *machine) exec(line string, st *status, logs *[]string) (bool, int, error) {
	if r := writeValue.FindStringSubmatch(line); r != nil {
		if rr := readRange.FindStringSubmatch(r[2]); rr != nil {
			addr, _ := strconv.Atoi(rr[1])
			n, _ := strconv.Atoi(rr[2])
			vals := make([]int, 0, n)
			for i := range n {
				v, err := m.read(addr+i, rr[3], false)
				if err != nil {
					return false, 0, err
				}
				vals = append(vals, v)
			}
			if n == 0 {
				// an empty Lua table is encoded as an object
				st.Values[r[1]] = map[string]any{}
			} else {
				st.Values[r[1]] = vals
			}
			return false, 0, nil
		}
		v, err := m.operand(r[2])
		if err != nil {
			return false, 0, err
		}
		st.Values[r[1]] = v
		return false, 0, nil
	}

	if r := memWrite.FindStringSubmatch(line); r != nil {
		addr, _ := strconv.Atoi(r[2])
		v, _ := strconv.Atoi(r[3])
		return false, 0, m.write(addr, v, r[4], r[1] != "")
	}

	if r := setInput.FindStringSubmatch(line); r != nil {
		c, _ := strconv.Atoi(r[1])
		return false, 0, m.setInput(c, r[2])
	}

	if r := waitFrames.FindStringSubmatch(line); r != nil {
		n, _ := strconv.Atoi(r[1])
		m.advance(n)
		return false, 0, nil
	}

	if r := screenshot.FindStringSubmatch(line); r != nil {
		fn, err := strconv.Unquote(r[1])
		if err != nil {
			return false, 0, err
		}
		if err := os.WriteFile(fn, PNG, 0o600); err != nil {
			return false, 0, fmt.Errorf("cannot write screenshot: %w", err)
		}
		st.Values["saved"] = true
		return false, 0, nil
	}

	if r := logLine.FindStringSubmatch(line); r != nil {
		s, err := strconv.Unquote(r[1])
		if err != nil {
			return false, 0, err
		}
		*logs = append(*logs, s)
		return false, 0, nil
	}

	if r := stop.FindStringSubmatch(line); r != nil {
		code, _ := strconv.Atoi(r[1])
		return true, code, nil
	}

	if breakExec.MatchString(line) {
		return false, 0, nil
	}

	return false, 0, fmt.Errorf("unsupported: %s", line)
}

// controller follows the command protocol of the controller script.
func (m *machine) controller(dir string, bootstrap string) int {
	interop := fmt.Sprintf("local interopPath = %s", script.Quote(dir+string(filepath.Separator)))
	if !strings.Contains(bootstrap, interop) {
		fmt.Fprintln(os.Stderr, "mesentest: bootstrap script does not name the session directory")
		return 2
	}

	commandFile := filepath.Join(dir, session.CommandFilename)
	statusFile := filepath.Join(dir, session.StatusFilename)

	last := 0
	idle := time.Now()

	for {
		time.Sleep(time.Millisecond)

		if _, err := os.Stat(dir); err != nil {
			return 0
		}
		if time.Since(idle) > idleTimeout {
			fmt.Fprintln(os.Stderr, "mesentest: idle for too long")
			return 3
		}

		data, err := os.ReadFile(commandFile)
		if err != nil {
			continue
		}

		seq, body := command(string(data))
		if seq <= last {
			continue
		}
		last = seq
		idle = time.Now()

		st := status{
			EventNum: seq,
			Values:   make(map[string]any),
		}

		var logs []string
		stopping := false
		code := 0
		for _, l := range body {
			var err error
			stopping, code, err = m.exec(l, &st, &logs)
			if err != nil {
				logs = append(logs, fmt.Sprintf("error in command %d: %v", seq, err))
				break
			}
		}
		st.Log = strings.Join(logs, "||")

		if err := writeStatus(statusFile, st); err != nil {
			fmt.Fprintf(os.Stderr, "mesentest: %v\n", err)
			return 2
		}

		if stopping {
			return code
		}
	}
}

type event struct {
	frame int
	kind  string

	// sendInput
	controller int
	fields     string

	// assert
	index int
	a     string
	op    string
	b     string
}

var (
	eventLine   = regexp.MustCompile(`^\{ frame = (\d+), type = "(\w+)"(.*) \}$`)
	inputEvent  = regexp.MustCompile(`^, controller = (\d+), value = \{(.*)\}$`)
	assertEvent = regexp.MustCompile(`^, index = (\d+), asserter = function\(\) return \((.+) (==|~=|<=|>=|<|>) (.+)\) end$`)
)

// parseEvents extracts the event table from a sequence script.
func parseEvents(s string) ([]event, error) {
	var events []event

	inTable := false
	for _, l := range strings.Split(s, "\n") {
		switch {
		case l == "local events = {":
			inTable = true
			continue
		case inTable && l == "}":
			return events, nil
		case !inTable:
			continue
		}

		l = strings.TrimSuffix(strings.TrimSpace(l), ",")
		r := eventLine.FindStringSubmatch(l)
		if r == nil {
			return nil, fmt.Errorf("malformed event: %s", l)
		}

		e := event{kind: r[2]}
		e.frame, _ = strconv.Atoi(r[1])

		switch e.kind {
		case "sendInput":
			ri := inputEvent.FindStringSubmatch(r[3])
			if ri == nil {
				return nil, fmt.Errorf("malformed input event: %s", l)
			}
			e.controller, _ = strconv.Atoi(ri[1])
			e.fields = ri[2]
		case "assert":
			ra := assertEvent.FindStringSubmatch(r[3])
			if ra == nil {
				return nil, fmt.Errorf("malformed assert event: %s", l)
			}
			e.index, _ = strconv.Atoi(ra[1])
			e.a = ra[2]
			e.op = ra[3]
			e.b = ra[4]
		case "stop":
		default:
			return nil, fmt.Errorf("unknown event type: %s", e.kind)
		}

		events = append(events, e)
	}

	return nil, fmt.Errorf("event table not found")
}

func (m *machine) assert(e event) (bool, error) {
	a, err := m.operand(e.a)
	if err != nil {
		return false, err
	}
	b, err := m.operand(e.b)
	if err != nil {
		return false, err
	}
	return compare(a, e.op, b)
}

// the stand-in gives up on a sequence that does not stop
const maxFrames = 100000

// sequence runs the events of a sequence script.
func (m *machine) sequence(src string) int {
	stopOnErrors := strings.Contains(src, "local stopOnErrors = true\n")

	events, err := parseEvents(src)
	if err != nil {
		fmt.Fprintf(os.Stderr, "mesentest: %v\n", err)
		return 2
	}

	next := 0
	firstFailure := 0

	for frame := 0; frame < maxFrames; frame++ {
		m.advance(1)

		for next < len(events) && events[next].frame <= frame {
			e := events[next]
			next++

			switch e.kind {
			case "sendInput":
				if err := m.setInput(e.controller, e.fields); err != nil {
					fmt.Fprintf(os.Stderr, "mesentest: %v\n", err)
					return 2
				}
			case "assert":
				ok, err := m.assert(e)
				if err != nil || !ok {
					fmt.Printf("nestest: assertion %d failed\n", e.index)
					if stopOnErrors {
						return e.index
					}
					if firstFailure == 0 {
						firstFailure = e.index
					}
				}
			case "stop":
				if stopOnErrors {
					return firstFailure
				}
				fmt.Printf("nestest: sequence complete. first failure: %d\n", firstFailure)
				return 0
			}
		}
	}

	fmt.Fprintln(os.Stderr, "mesentest: sequence did not stop")
	return 2
}
