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

package emulator

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nestest/nestest/channel"
	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/logger"
	"github.com/nestest/nestest/rom"
	"github.com/nestest/nestest/script"
	"github.com/nestest/nestest/session"
	"github.com/nestest/nestest/supervisor"
	"github.com/nestest/nestest/symbols"
)

// Sentinal errors.
const (
	NotRunning       = "emulator: not running"
	AlreadyRunning   = "emulator: already running"
	InvalidFilename  = "emulator: screenshot filename cannot include a directory: %s"
	InvalidLocation  = "emulator: not a memory location: %v"
	ValueRange       = "emulator: value out of range: %d"
	InvalidCount     = "emulator: invalid count: %d"
	ScreenshotFailed = "emulator: screenshot: %v"
	StopFailed       = "emulator: stop: %v"
)

// LogTag is used for log entries made by the package.
const LogTag = "emulator"

// Emulator is a single instance of the emulator running a ROM.
type Emulator struct {
	cart     *rom.Cartridge
	resolver *symbols.Resolver
	rt       supervisor.Runtime

	// directory in which the session is created
	base string

	crit sync.Mutex
	sess *session.Session
	ch   *channel.Channel
	proc *supervisor.Process
}

// New loads the ROM and its debug file, if there is one. The emulator is
// not started until Start() is called.
func New(romFile string, rt supervisor.Runtime) (*Emulator, error) {
	cart, err := rom.Load(romFile)
	if err != nil {
		return nil, err
	}

	res, err := cart.Resolver()
	if err != nil {
		return nil, err
	}

	return &Emulator{
		cart:     cart,
		resolver: res,
		rt:       rt,
	}, nil
}

func (emu *Emulator) String() string {
	return fmt.Sprintf("%s [%s]", emu.cart.ShortName(), emu.State())
}

// SetSessionBase changes the directory in which the session directory is
// created by Start(). The default is session.DefaultBase().
func (emu *Emulator) SetSessionBase(base string) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	emu.base = base
}

// Cartridge returns the ROM being run by the emulator.
func (emu *Emulator) Cartridge() *rom.Cartridge {
	return emu.cart
}

// Runtime returns the Runtime used to launch the emulator.
func (emu *Emulator) Runtime() supervisor.Runtime {
	return emu.rt
}

// State returns the state of the emulator process.
func (emu *Emulator) State() supervisor.State {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if emu.proc == nil {
		return supervisor.Unstarted
	}
	return emu.proc.State()
}

// Crashed returns true if the emulator exited unexpectedly.
func (emu *Emulator) Crashed() bool {
	return emu.State() == supervisor.Crashed
}

// Start the emulator. The emulator can be started again after it has been
// stopped.
func (emu *Emulator) Start() error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	if emu.proc != nil && emu.proc.Alive() {
		return curated.Errorf(AlreadyRunning)
	}

	// the previous process exited without Stop() being called
	if emu.sess != nil {
		if err := emu.sess.Remove(); err != nil {
			logger.Log(logger.Allow, LogTag, err)
		}
		emu.sess = nil
		emu.ch = nil
	}

	sess, err := session.New(emu.base)
	if err != nil {
		return err
	}

	bootstrap, err := script.Controller(sess.Dir())
	if err != nil {
		_ = sess.Remove()
		return err
	}
	if err := sess.WriteFile(session.BootstrapFilename, []byte(bootstrap)); err != nil {
		_ = sess.Remove()
		return curated.Errorf(session.CreateError, err)
	}

	rt := emu.rt
	if rt.Dir == "" {
		rt.Dir = sess.Dir()
	}
	proc := supervisor.NewProcess(rt)

	ch := channel.NewChannel(channel.NewFileTransport(sess.CommandFile(), sess.StatusFile()))
	ch.SetPolling(rt.Retries, rt.Interval)
	ch.SetLiveness(proc.Alive)

	if err := proc.Start(emu.cart.Filename, sess.BootstrapFile()); err != nil {
		_ = sess.Remove()
		emu.proc = proc
		return err
	}

	emu.sess = sess
	emu.ch = ch
	emu.proc = proc

	logger.Logf(logger.Allow, LogTag, "started %s in %s", emu.cart.ShortName(), sess.Dir())

	return nil
}

// Stop the emulator. The code is the exit code the emulator should use.
//
// In test runner mode the emulator is asked to exit and the session is
// removed once it has done so. Otherwise the emulator is paused in its
// debugger and left running, along with its session, so that it can be
// inspected. Kill() will end such an emulator.
//
// It is not an error to stop an emulator that is not running. Errors
// encountered while stopping are logged and returned but the emulator is
// always considered stopped afterwards.
func (emu *Emulator) Stop(code int) error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	if emu.proc == nil || emu.sess == nil {
		return nil
	}

	sess := emu.sess
	proc := emu.proc
	ch := emu.ch

	var errs []string

	if !emu.rt.TestRunner {
		if proc.Alive() {
			if _, err := ch.Submit("NesTest.breakExecution()"); err != nil {
				errs = append(errs, err.Error())
			}
			logger.Logf(logger.Allow, LogTag, "emulator left open. session in %s", sess.Dir())
			return stopFailed(errs)
		}
	}

	emu.sess = nil
	emu.ch = nil

	if proc.Alive() {
		_, err := ch.Submit(fmt.Sprintf("NesTest.stop(%d)", code))
		if err != nil && !curated.Is(err, channel.ProcessGone) {
			errs = append(errs, err.Error())
		}

		if _, err := proc.Wait(emu.stopTimeout()); err != nil {
			errs = append(errs, err.Error())
			if err := proc.Kill(); err != nil {
				errs = append(errs, err.Error())
			}
			_, _ = proc.Wait(0)
		}
	}

	if err := sess.Remove(); err != nil {
		errs = append(errs, err.Error())
	}

	return stopFailed(errs)
}

// stopTimeout is how long the emulator is given to exit after being asked
// to stop. The same as the time allowed for any other command.
func (emu *Emulator) stopTimeout() time.Duration {
	retries := emu.rt.Retries
	if retries < 1 {
		retries = channel.DefaultRetries
	}
	interval := emu.rt.Interval
	if interval <= 0 {
		interval = channel.DefaultInterval
	}
	return interval * time.Duration(retries)
}

func stopFailed(errs []string) error {
	if len(errs) == 0 {
		return nil
	}
	err := curated.Errorf(StopFailed, strings.Join(errs, "; "))
	logger.Log(logger.Allow, LogTag, err)
	return err
}

// Kill the emulator process without asking it to stop and remove the
// session. Intended for an emulator that is no longer responding.
func (emu *Emulator) Kill() error {
	emu.crit.Lock()
	defer emu.crit.Unlock()

	if emu.proc == nil {
		return nil
	}

	var errs []string
	if err := emu.proc.Kill(); err != nil {
		errs = append(errs, err.Error())
	}
	_, _ = emu.proc.Wait(emu.stopTimeout())

	if emu.sess != nil {
		if err := emu.sess.Remove(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	emu.sess = nil
	emu.ch = nil

	return stopFailed(errs)
}

// Wait for the emulator to exit and return its exit code.
func (emu *Emulator) Wait(timeout time.Duration) (int, error) {
	emu.crit.Lock()
	proc := emu.proc
	emu.crit.Unlock()
	if proc == nil {
		return 0, curated.Errorf(NotRunning)
	}
	return proc.Wait(timeout)
}

// running returns the channel to the emulator, or an error if the emulator
// is not running.
func (emu *Emulator) running() (*channel.Channel, error) {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if emu.ch == nil || emu.proc == nil || !emu.proc.Alive() {
		return nil, curated.Errorf(NotRunning)
	}
	return emu.ch, nil
}

// RunLua runs the Lua code in the emulator. The code can publish values
// with NesTest.writeValue(key, value), which can then be retrieved from the
// response.
func (emu *Emulator) RunLua(body string) (*channel.Response, error) {
	ch, err := emu.running()
	if err != nil {
		return nil, err
	}
	return ch.Submit(body)
}

// RunFrames runs the emulator for the number of frames. Input set by
// SendInput() is applied to every frame.
func (emu *Emulator) RunFrames(n int) error {
	if n < 0 {
		return curated.Errorf(InvalidCount, n)
	}
	_, err := emu.RunLua(fmt.Sprintf("NesTest.waitFrames(%d)", n))
	return err
}

// SendInput sets the state of the controller. Controllers are numbered from
// zero.
func (emu *Emulator) SendInput(in Input, controller int) error {
	cmd, err := setInput(in, controller)
	if err != nil {
		return err
	}
	_, err = emu.RunLua(cmd)
	return err
}

// Resolve a location to an address.
func (emu *Emulator) Resolve(location any) (uint16, error) {
	addr, ok, err := emu.resolver.Resolve(location)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, curated.Errorf(InvalidLocation, location)
	}
	return addr, nil
}

func (emu *Emulator) read(location any, space script.MemorySpace, word bool) (int, error) {
	addr, err := emu.Resolve(location)
	if err != nil {
		return 0, err
	}

	expr, err := script.Emit(script.MemoryRef{Address: addr, Space: space, Word: word})
	if err != nil {
		return 0, err
	}

	rsp, err := emu.RunLua(fmt.Sprintf(`NesTest.writeValue("value", %s)`, expr))
	if err != nil {
		return 0, err
	}

	return rsp.Int("value")
}

func (emu *Emulator) write(location any, value int, space script.MemorySpace, word bool) error {
	addr, err := emu.Resolve(location)
	if err != nil {
		return err
	}

	limit := 0xff
	fn := "emu.write"
	if word {
		limit = 0xffff
		fn = "emu.writeWord"
	}
	if value < 0 || value > limit {
		return curated.Errorf(ValueRange, value)
	}

	mt, err := space.MemType()
	if err != nil {
		return err
	}

	_, err = emu.RunLua(fmt.Sprintf("%s(%d, %d, %s)", fn, addr, value, mt))
	return err
}

// ByteValue returns the byte at the location in CPU memory.
func (emu *Emulator) ByteValue(location any) (int, error) {
	return emu.read(location, script.CPU, false)
}

// WordValue returns the little endian word at the location in CPU memory.
func (emu *Emulator) WordValue(location any) (int, error) {
	return emu.read(location, script.CPU, true)
}

// PpuByteValue returns the byte at the location in PPU memory.
func (emu *Emulator) PpuByteValue(location any) (int, error) {
	return emu.read(location, script.PPU, false)
}

// PpuWordValue returns the little endian word at the location in PPU
// memory.
func (emu *Emulator) PpuWordValue(location any) (int, error) {
	return emu.read(location, script.PPU, true)
}

// SetMemoryByte writes a byte to the location in CPU memory.
func (emu *Emulator) SetMemoryByte(location any, value int) error {
	return emu.write(location, value, script.CPU, false)
}

// SetMemoryWord writes a little endian word to the location in CPU memory.
func (emu *Emulator) SetMemoryWord(location any, value int) error {
	return emu.write(location, value, script.CPU, true)
}

// SetPrgByte writes a byte to the location in PRG ROM. The location is an
// offset into the ROM rather than a CPU address.
func (emu *Emulator) SetPrgByte(location any, value int) error {
	return emu.write(location, value, script.PRG, false)
}

// SetPrgWord writes a little endian word to the location in PRG ROM.
func (emu *Emulator) SetPrgWord(location any, value int) error {
	return emu.write(location, value, script.PRG, true)
}

// SetPpuByte writes a byte to the location in PPU memory.
func (emu *Emulator) SetPpuByte(location any, value int) error {
	return emu.write(location, value, script.PPU, false)
}

// SetPpuWord writes a little endian word to the location in PPU memory.
func (emu *Emulator) SetPpuWord(location any, value int) error {
	return emu.write(location, value, script.PPU, true)
}

// ByteRange returns n bytes of CPU memory starting at the location.
func (emu *Emulator) ByteRange(location any, n int) ([]int, error) {
	if n < 0 {
		return nil, curated.Errorf(InvalidCount, n)
	}

	addr, err := emu.Resolve(location)
	if err != nil {
		return nil, err
	}

	mt, err := script.CPU.MemType()
	if err != nil {
		return nil, err
	}

	rsp, err := emu.RunLua(fmt.Sprintf(`NesTest.writeValue("value", NesTest.readRange(%d, %d, %s))`, addr, n, mt))
	if err != nil {
		return nil, err
	}

	return rsp.Ints("value")
}

// ScreenshotPath returns the path of the named screenshot. Returns the
// empty string if the emulator is not running.
func (emu *Emulator) ScreenshotPath(name string) string {
	emu.crit.Lock()
	defer emu.crit.Unlock()
	if emu.sess == nil {
		return ""
	}
	return emu.sess.Path(name)
}

// TakeScreenshot saves a PNG image of the current frame in the session
// directory. The session directory is removed when the emulator stops so
// if copyTo is not empty the image is also copied to that path.
//
// Returns the path of the screenshot in the session directory.
func (emu *Emulator) TakeScreenshot(name string, copyTo string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return "", curated.Errorf(InvalidFilename, name)
	}

	fn := emu.ScreenshotPath(name)
	if fn == "" {
		return "", curated.Errorf(NotRunning)
	}

	rsp, err := emu.RunLua(fmt.Sprintf("NesTest.saveScreenshot(%s)", script.Quote(fn)))
	if err != nil {
		return "", err
	}
	if saved, err := rsp.Bool("saved"); err != nil || !saved {
		return "", curated.Errorf(ScreenshotFailed, strings.Join(rsp.LogLines(), "; "))
	}

	if copyTo != "" {
		if err := copyFile(fn, copyTo); err != nil {
			return fn, curated.Errorf(ScreenshotFailed, err)
		}
	}

	return fn, nil
}

func copyFile(src string, dest string) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dest)
	if err != nil {
		return err
	}

	_, err = io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	return err
}
