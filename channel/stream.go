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
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"
)

// MaxFrame is the largest frame accepted by ReadFrame().
const MaxFrame = 1 << 24

// WriteFrame writes data to w, preceded by its length as a four byte big
// endian value.
func WriteFrame(w io.Writer, data []byte) error {
	if len(data) > MaxFrame {
		return fmt.Errorf("frame too large (%d bytes)", len(data))
	}
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(len(data)))
	if _, err := w.Write(hdr[:]); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}

// ReadFrame reads a single frame written by WriteFrame().
func ReadFrame(r io.Reader) ([]byte, error) {
	var hdr [4]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}
	n := binary.BigEndian.Uint32(hdr[:])
	if n > MaxFrame {
		return nil, fmt.Errorf("frame too large (%d bytes)", n)
	}
	data := make([]byte, n)
	if _, err := io.ReadFull(r, data); err != nil {
		return nil, err
	}
	return data, nil
}

// StreamTransport implements the Transport interface over a duplex stream.
// Commands are written as frames and status frames are read by a
// background goroutine. Only the most recent status frame is kept.
type StreamTransport struct {
	rw io.ReadWriter

	// serialises calls to Post()
	write sync.Mutex

	crit   sync.Mutex
	status []byte
	err    error
}

// NewStreamTransport is the preferred method of initialisation for the
// StreamTransport type. The background reader runs until the stream returns
// an error.
func NewStreamTransport(rw io.ReadWriter) *StreamTransport {
	st := &StreamTransport{rw: rw}
	go st.reader()
	return st
}

func (st *StreamTransport) reader() {
	for {
		data, err := ReadFrame(st.rw)

		st.crit.Lock()
		if err != nil {
			st.err = err
			st.crit.Unlock()
			return
		}
		st.status = data
		st.crit.Unlock()
	}
}

// Post implements the Transport interface.
func (st *StreamTransport) Post(command []byte) error {
	st.write.Lock()
	defer st.write.Unlock()
	return WriteFrame(st.rw, command)
}

// Status implements the Transport interface. Once the stream has failed
// the error is returned on every call.
func (st *StreamTransport) Status() ([]byte, error) {
	st.crit.Lock()
	defer st.crit.Unlock()

	if st.err != nil {
		return nil, st.err
	}
	if st.status == nil {
		return nil, errors.New("no status received")
	}
	return st.status, nil
}

// Close the underlying stream if it implements io.Closer.
func (st *StreamTransport) Close() error {
	if c, ok := st.rw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
