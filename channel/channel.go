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
	"strings"
	"sync"
	"time"

	"github.com/nestest/nestest/curated"
	"github.com/nestest/nestest/logger"
	"github.com/nestest/nestest/script"
)

// Sentinal errors.
const (
	CommandTimeout = "channel: command %d: no response after %d attempts"
	ProcessGone    = "channel: command %d: emulator is no longer running"
	PostError      = "channel: command %d: %v"
)

// Default polling values. The total time a command is allowed to take is
// the product of the two values.
const (
	DefaultRetries  = 200
	DefaultInterval = 50 * time.Millisecond
)

// LogTag is the tag used for log messages produced by the emulator.
const LogTag = "mesen lua"

// LogSeparator separates the individual messages in the log field of the
// status.
const LogSeparator = "||"

// Transport is the means by which commands are sent to the emulator and by
// which the emulator's status is read.
type Transport interface {
	// Post replaces the current command with a new command.
	Post(command []byte) error

	// Status returns the most recent status published by the emulator. An
	// error means that the status could not be read at this time.
	Status() ([]byte, error)
}

// Channel submits commands to the emulator over a Transport and waits for
// the corresponding response.
type Channel struct {
	crit sync.Mutex

	transport Transport

	// sequence number of the most recently submitted command
	seq int

	retries  int
	interval time.Duration

	// returns false if the emulator is known to be no longer running
	alive func() bool
}

// NewChannel is the preferred method of initialisation for the Channel
// type.
func NewChannel(transport Transport) *Channel {
	return &Channel{
		transport: transport,
		retries:   DefaultRetries,
		interval:  DefaultInterval,
	}
}

// SetPolling changes how often and for how long the status is polled. Values
// less than one are ignored.
func (ch *Channel) SetPolling(retries int, interval time.Duration) {
	ch.crit.Lock()
	defer ch.crit.Unlock()
	if retries > 0 {
		ch.retries = retries
	}
	if interval > 0 {
		ch.interval = interval
	}
}

// SetLiveness sets the function used to check that the emulator is still
// running while waiting for a response. A nil function disables the check.
func (ch *Channel) SetLiveness(alive func() bool) {
	ch.crit.Lock()
	defer ch.crit.Unlock()
	ch.alive = alive
}

// Seq returns the sequence number of the most recently submitted command.
// Zero if no command has been submitted.
func (ch *Channel) Seq() int {
	ch.crit.Lock()
	defer ch.crit.Unlock()
	return ch.seq
}

// Submit the Lua body as a new command and wait for the response.
//
// Only one command is outstanding at any one time. Concurrent calls to
// Submit() are handled one after the other.
func (ch *Channel) Submit(body string) (*Response, error) {
	ch.crit.Lock()
	defer ch.crit.Unlock()

	ch.seq++
	seq := ch.seq

	if err := ch.transport.Post([]byte(script.Envelope(seq, body))); err != nil {
		return nil, curated.Errorf(PostError, seq, err)
	}

	for range ch.retries {
		time.Sleep(ch.interval)

		if rsp, ok := ch.poll(seq); ok {
			rsp.logLines()
			return rsp, nil
		}

		if ch.alive != nil && !ch.alive() {
			// the process may have written the status immediately before
			// exiting
			if rsp, ok := ch.poll(seq); ok {
				rsp.logLines()
				return rsp, nil
			}
			return nil, curated.Errorf(ProcessGone, seq)
		}
	}

	logger.Logf(logger.Allow, "channel", "command %d: gave up after %d attempts (%v)", seq, ch.retries, ch.interval*time.Duration(ch.retries))

	return nil, curated.Errorf(CommandTimeout, seq, ch.retries)
}

// poll the status once. Returns true if the status is a response to the
// command with the specified sequence number.
func (ch *Channel) poll(seq int) (*Response, bool) {
	data, err := ch.transport.Status()
	if err != nil || len(data) == 0 {
		return nil, false
	}

	rsp := &Response{}
	if err := json.Unmarshal(data, rsp); err != nil {
		return nil, false
	}

	if rsp.Seq != seq {
		return nil, false
	}

	return rsp, true
}

// logLines forwards the log messages in the response to the logger.
func (rsp *Response) logLines() {
	for _, l := range rsp.LogLines() {
		logger.Log(logger.Allow, LogTag, l)
	}
}

// LogLines returns the individual log messages in the response.
func (rsp *Response) LogLines() []string {
	if rsp.Log == "" {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(rsp.Log, LogSeparator) {
		if l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
