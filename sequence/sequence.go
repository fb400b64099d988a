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

package sequence

import (
	"fmt"
	"time"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/emulator"
	"github.com/nestest/nestest/logger"
	"github.com/nestest/nestest/rom"
	"github.com/nestest/nestest/script"
	"github.com/nestest/nestest/session"
	"github.com/nestest/nestest/supervisor"
	"github.com/nestest/nestest/symbols"
)

// Sentinal errors.
const (
	AlreadyRun       = "sequence: sequence has already been run"
	InvalidCount     = "sequence: invalid frame count: %d"
	InvalidOperand   = "sequence: assertion %s: %v"
	InvalidLocation  = "sequence: not a memory location: %v"
	InvalidRunResult = "sequence: %v"
	TooManyAsserts   = "sequence: assertion %s: no more than %d assertions are possible"
)

// MaxAssertions is the number of assertions a sequence can hold. The index of
// a failing assertion is the exit code of the emulator, of which only the low
// eight bits survive. Zero is reserved for success.
const MaxAssertions = 255

// LogTag is used for log entries made by the package.
const LogTag = "sequence"

// Operator compares the two operands of an assertion.
type Operator string

// List of valid Operator values. The values are the Lua operators.
const (
	Equal       Operator = "=="
	NotEqual    Operator = "~="
	LessThan    Operator = "<"
	GreaterThan Operator = ">"
)

type assertion struct {
	name string
	op   Operator
	a    string
	b    string
}

// Sequence is a list of events to be run by the emulator.
type Sequence struct {
	cart     *rom.Cartridge
	resolver *symbols.Resolver
	rt       supervisor.Runtime

	// directory in which the session is created
	base string

	// time allowed for the emulator to run the sequence. zero is no limit
	timeout time.Duration

	// keep the session after the sequence has run
	keep bool

	frame  int
	events []script.Record

	// assertion at index i has the assertion index i+1
	assertions []assertion

	// first error encountered while building the sequence
	err error

	ran bool
}

// New loads the ROM and its debug file, if there is one.
func New(romFile string, rt supervisor.Runtime) (*Sequence, error) {
	cart, err := rom.Load(romFile)
	if err != nil {
		return nil, err
	}

	res, err := cart.Resolver()
	if err != nil {
		return nil, err
	}

	return &Sequence{
		cart:     cart,
		resolver: res,
		rt:       rt,
	}, nil
}

func (seq *Sequence) String() string {
	return fmt.Sprintf("%s: %d events over %d frames", seq.cart.ShortName(), len(seq.events), seq.frame)
}

// SetSessionBase changes the directory in which the session directory is
// created. The default is session.DefaultBase().
func (seq *Sequence) SetSessionBase(base string) {
	seq.base = base
}

// SetTimeout limits how long the emulator is allowed to run. The emulator
// is killed if it runs for longer. Zero means no limit.
func (seq *Sequence) SetTimeout(timeout time.Duration) {
	seq.timeout = timeout
}

// KeepSession stops the session, including the compiled script, from being
// removed after the sequence has run.
func (seq *Sequence) KeepSession(keep bool) {
	seq.keep = keep
}

// Err returns the first error encountered while building the sequence.
func (seq *Sequence) Err() error {
	return seq.err
}

func (seq *Sequence) fail(err error) {
	if seq.err == nil {
		seq.err = err
	}
}

// Frame returns the current virtual frame. Events are scheduled for this
// frame.
func (seq *Sequence) Frame() int {
	return seq.frame
}

// RunFrames advances the virtual frame.
func (seq *Sequence) RunFrames(n int) {
	if n < 0 {
		seq.fail(curated.Errorf(InvalidCount, n))
		return
	}
	seq.frame += n
}

// SendInput schedules the input for the current frame.
func (seq *Sequence) SendInput(in emulator.Input, controller int) {
	seq.events = append(seq.events, script.Record{
		{Name: "frame", Value: script.Number(seq.frame)},
		{Name: "type", Value: script.Text("sendInput")},
		{Name: "controller", Value: script.Number(controller)},
		{Name: "value", Value: in.Record()},
	})
}

// RamByte returns a reference to the byte at the address in CPU memory,
// suitable for use as an assertion operand.
func (seq *Sequence) RamByte(addr uint16) script.MemoryRef {
	return script.CPUByte(addr)
}

// RamWord returns a reference to the little endian word at the address in
// CPU memory.
func (seq *Sequence) RamWord(addr uint16) script.MemoryRef {
	return script.MemoryRef{Address: addr, Space: script.CPU, Word: true}
}

// RamByteOf is like RamByte() but the location can be a number or the name
// of a symbol.
func (seq *Sequence) RamByteOf(location any) script.MemoryRef {
	addr, ok, err := seq.resolver.Resolve(location)
	if err != nil {
		seq.fail(err)
		return script.MemoryRef{}
	}
	if !ok {
		seq.fail(curated.Errorf(InvalidLocation, location))
		return script.MemoryRef{}
	}
	return script.CPUByte(addr)
}

// AssertEqual schedules an assertion that the operands are equal. Operands
// can be integers, strings, booleans or a memory reference returned by one
// of the Ram*() functions.
func (seq *Sequence) AssertEqual(name string, a any, b any) {
	seq.assert(name, Equal, a, b)
}

// AssertNotEqual schedules an assertion that the operands are not equal.
func (seq *Sequence) AssertNotEqual(name string, a any, b any) {
	seq.assert(name, NotEqual, a, b)
}

// AssertLessThan schedules an assertion that operand a is less than
// operand b.
func (seq *Sequence) AssertLessThan(name string, a any, b any) {
	seq.assert(name, LessThan, a, b)
}

// AssertGreaterThan schedules an assertion that operand a is greater than
// operand b.
func (seq *Sequence) AssertGreaterThan(name string, a any, b any) {
	seq.assert(name, GreaterThan, a, b)
}

func operand(v any) (string, error) {
	lv, err := script.FromGo(v)
	if err != nil {
		return "", err
	}
	if _, ok := lv.(script.Record); ok {
		return "", curated.Errorf(script.UnsupportedValue, "table")
	}
	return script.Emit(lv)
}

func (seq *Sequence) assert(name string, op Operator, a any, b any) {
	if len(seq.assertions) >= MaxAssertions {
		seq.fail(curated.Errorf(TooManyAsserts, name, MaxAssertions))
		return
	}

	ea, err := operand(a)
	if err != nil {
		seq.fail(curated.Errorf(InvalidOperand, name, err))
		return
	}
	eb, err := operand(b)
	if err != nil {
		seq.fail(curated.Errorf(InvalidOperand, name, err))
		return
	}

	seq.assertions = append(seq.assertions, assertion{
		name: name,
		op:   op,
		a:    ea,
		b:    eb,
	})

	seq.events = append(seq.events, script.Record{
		{Name: "frame", Value: script.Number(seq.frame)},
		{Name: "type", Value: script.Text("assert")},
		{Name: "index", Value: script.Number(len(seq.assertions))},
		{Name: "asserter", Value: script.Expression(fmt.Sprintf("function() return (%s %s %s) end", ea, op, eb))},
	})
}

// Compile the sequence into the Lua script that will be run by Run(). The
// stop event is scheduled one frame after the current frame.
func (seq *Sequence) Compile() (string, error) {
	if seq.err != nil {
		return "", seq.err
	}

	events := make([]string, 0, len(seq.events)+1)
	for _, e := range seq.events {
		s, err := script.Emit(e)
		if err != nil {
			return "", err
		}
		events = append(events, s)
	}

	stop, err := script.Emit(script.Record{
		{Name: "frame", Value: script.Number(seq.frame + 1)},
		{Name: "type", Value: script.Text("stop")},
	})
	if err != nil {
		return "", err
	}
	events = append(events, stop)

	return script.Sequence(events, seq.rt.TestRunner)
}

// Run the sequence. A sequence can only be run once.
//
// Returns nil if all assertions passed, *AssertionFailed if an assertion
// failed and *UnclassifiedFailure if the emulator exited with any other
// non-zero code.
func (seq *Sequence) Run() error {
	if seq.ran {
		return curated.Errorf(AlreadyRun)
	}
	seq.ran = true

	src, err := seq.Compile()
	if err != nil {
		return err
	}

	sess, err := session.New(seq.base)
	if err != nil {
		return err
	}
	defer func() {
		if seq.keep {
			logger.Logf(logger.Allow, LogTag, "session kept in %s", sess.Dir())
			return
		}
		if err := sess.Remove(); err != nil {
			logger.Log(logger.Allow, LogTag, err)
		}
	}()

	if err := sess.WriteFile(session.BootstrapFilename, []byte(src)); err != nil {
		return curated.Errorf(session.CreateError, err)
	}

	rt := seq.rt
	if rt.Dir == "" {
		rt.Dir = sess.Dir()
	}

	proc := supervisor.NewProcess(rt)
	if err := proc.Start(seq.cart.Filename, sess.BootstrapFile()); err != nil {
		return err
	}

	code, err := proc.Wait(seq.timeout)
	if err != nil {
		_ = proc.Kill()
		_, _ = proc.Wait(0)
		return curated.Errorf(InvalidRunResult, err)
	}

	return seq.result(code)
}

// result maps the exit code of the emulator to an error.
func (seq *Sequence) result(code int) error {
	if code == 0 {
		return nil
	}

	if code > 0 && code <= len(seq.assertions) {
		a := seq.assertions[code-1]
		return &AssertionFailed{
			Index:    code,
			Name:     a.name,
			Operator: a.op,
			A:        a.a,
			B:        a.b,
		}
	}

	return &UnclassifiedFailure{Code: code}
}
