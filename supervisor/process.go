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

package supervisor

import (
	"bufio"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/logger"
)

// Sentinal errors.
const (
	SpawnFailed    = "supervisor: cannot start emulator: %v"
	ProcessCrashed = "supervisor: emulator exited with code %d"
	AlreadyStarted = "supervisor: emulator has already been started"
	NotStarted     = "supervisor: emulator has not been started"
	WaitTimeout    = "supervisor: emulator still running after %v"
	BadPreferences = "supervisor: preferences: %v"
)

// LogTag is used for all log entries made by the package, including the
// output of the emulator.
const LogTag = "mesen"

// State of the emulator process.
type State int

// List of valid State values.
const (
	Unstarted State = iota
	Running
	Stopped
	Crashed
)

func (s State) String() string {
	switch s {
	case Unstarted:
		return "unstarted"
	case Running:
		return "running"
	case Stopped:
		return "stopped"
	case Crashed:
		return "crashed"
	}
	return "unknown"
}

// Process is a single run of the emulator.
type Process struct {
	rt Runtime

	crit     sync.Mutex
	cmd      *exec.Cmd
	state    State
	exitCode int

	// closed when the process has exited
	done chan bool
}

// NewProcess is the preferred method of initialisation for the Process
// type.
func NewProcess(rt Runtime) *Process {
	return &Process{
		rt:   rt,
		done: make(chan bool),
	}
}

// Start the emulator with the ROM and the script. A process can only be
// started once.
func (p *Process) Start(rom string, script string) error {
	p.crit.Lock()
	defer p.crit.Unlock()

	if p.state != Unstarted {
		return curated.Errorf(AlreadyStarted)
	}

	args := p.rt.Args(rom, script)
	p.cmd = exec.Command(args[0], args[1:]...)
	p.cmd.Dir = p.rt.Dir
	if len(p.rt.Env) > 0 {
		p.cmd.Env = append(p.cmd.Environ(), p.rt.Env...)
	}

	stdout, err := p.cmd.StdoutPipe()
	if err != nil {
		return p.spawnFailed(err)
	}
	stderr, err := p.cmd.StderrPipe()
	if err != nil {
		return p.spawnFailed(err)
	}

	if err := p.cmd.Start(); err != nil {
		return p.spawnFailed(err)
	}

	p.state = Running
	logger.Logf(logger.Allow, LogTag, "started (pid %d)", p.cmd.Process.Pid)

	var output sync.WaitGroup
	output.Add(2)
	go echo(&output, "stdout", stdout)
	go echo(&output, "stderr", stderr)

	go p.watch(&output)

	return nil
}

func (p *Process) spawnFailed(err error) error {
	p.state = Crashed
	p.exitCode = -1
	close(p.done)
	logger.Logf(logger.Allow, LogTag, "spawn failed: %v", err)
	return curated.Errorf(SpawnFailed, err)
}

// echo the output of the emulator to the logger.
func echo(output *sync.WaitGroup, name string, r io.Reader) {
	defer output.Done()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		logger.Logf(logger.Allow, LogTag, "%s: %s", name, scanner.Text())
	}
}

// watch waits for the process to end and records how it ended.
func (p *Process) watch(output *sync.WaitGroup) {
	// all output must be read before calling Wait()
	output.Wait()
	err := p.cmd.Wait()

	p.crit.Lock()
	defer p.crit.Unlock()

	p.exitCode = p.cmd.ProcessState.ExitCode()
	if err == nil && p.exitCode == 0 {
		p.state = Stopped
		logger.Log(logger.Allow, LogTag, "exited normally")
	} else {
		p.state = Crashed
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Logf(logger.Allow, LogTag, "exited with non-zero code: %d", p.exitCode)
		} else {
			logger.Logf(logger.Allow, LogTag, "crashed: %v", err)
		}
	}

	close(p.done)
}

// Wait for the process to exit. Returns the exit code of the process. A
// timeout of zero or less waits for as long as it takes.
func (p *Process) Wait(timeout time.Duration) (int, error) {
	if p.State() == Unstarted {
		return 0, curated.Errorf(NotStarted)
	}

	if timeout <= 0 {
		<-p.done
		return p.ExitCode(), nil
	}

	select {
	case <-p.done:
		return p.ExitCode(), nil
	case <-time.After(timeout):
		return 0, curated.Errorf(WaitTimeout, timeout)
	}
}

// Done returns a channel that is closed when the process has exited.
func (p *Process) Done() <-chan bool {
	return p.done
}

// State returns the current state of the process.
func (p *Process) State() State {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.state
}

// ExitCode returns the exit code of the process. Only meaningful once the
// process has left the Running state.
func (p *Process) ExitCode() int {
	p.crit.Lock()
	defer p.crit.Unlock()
	return p.exitCode
}

// Err returns an error if the process has crashed.
func (p *Process) Err() error {
	p.crit.Lock()
	defer p.crit.Unlock()
	if p.state == Crashed {
		return curated.Errorf(ProcessCrashed, p.exitCode)
	}
	return nil
}

// Alive returns true if the process is running.
func (p *Process) Alive() bool {
	return p.State() == Running
}

// Kill the process. It is not an error to kill a process that has already
// exited.
func (p *Process) Kill() error {
	p.crit.Lock()
	defer p.crit.Unlock()

	if p.state != Running {
		return nil
	}

	err := p.cmd.Process.Kill()
	if err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}
