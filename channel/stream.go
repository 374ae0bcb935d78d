/*
 * Cherry - An OpenFlow Controller
 *
 * Copyright (C) 2015 Samjung Data Service, Inc. All rights reserved.
 * Kitae Kim <superkkt@sds.co.kr>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation; either version 2 of the License, or
 * any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License along
 * with this program; if not, write to the Free Software Foundation, Inc.,
 * 51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
 */

package channel

import (
	"bufio"
	"io"
	"net"
	"sync"
	"time"
)

var logger = newPackageLogger()

// side tracks the per-direction timeout and last-activity timestamp shared
// by Stream's read and write paths, so neither path has to duplicate the
// lock-timeout-timestamp trio on its own.
type side struct {
	mutex     sync.Mutex
	timeout   time.Duration
	timestamp time.Time
}

func (s *side) setTimeout(t time.Duration) {
	s.mutex.Lock()
	s.timeout = t
	s.mutex.Unlock()
}

func (s *side) lastActivity() time.Time {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.timestamp
}

// arm applies the side's timeout to the socket through set, which is
// expected to be the underlying connection's SetReadDeadline or
// SetWriteDeadline. Callers must hold s.mutex.
func (s *side) arm(set func(time.Time) error) {
	if s.timeout > 0 {
		set(time.Now().Add(s.timeout))
	} else {
		set(time.Time{})
	}
}

// Stream is a buffered I/O channel wrapping a socket: Peek returns a deep
// copy so the bufio reader's internal buffer can't be clobbered by a later
// Read, ReadN blocks for a full frame, and each direction carries its own
// deadline independently of the other.
type Stream struct {
	conn io.ReadWriteCloser

	rd     *bufio.Reader
	reader side

	wr     io.Writer
	writer side
}

type deadline interface {
	SetReadDeadline(time.Time) error
	SetWriteDeadline(time.Time) error
}

// NewStream wraps conn in a buffered Stream with a bufSize-byte read
// buffer.
func NewStream(conn io.ReadWriteCloser, bufSize int) *Stream {
	return &Stream{
		conn: conn,
		rd:   bufio.NewReaderSize(conn, bufSize),
		wr:   conn,
	}
}

type dummyAddr struct{}

func (dummyAddr) Network() string { return "unknown" }
func (dummyAddr) String() string  { return "" }

// RemoteAddr returns the underlying connection's remote address, or a
// placeholder if it does not support net.Conn.
func (s *Stream) RemoteAddr() net.Addr {
	if v, ok := s.conn.(interface{ RemoteAddr() net.Addr }); ok {
		return v.RemoteAddr()
	}
	return dummyAddr{}
}

// SetReadTimeout sets the per-Read/Peek/ReadN deadline applied to the
// underlying socket, if it supports one.
func (s *Stream) SetReadTimeout(t time.Duration) {
	s.reader.setTimeout(t)
}

// SetWriteTimeout sets the per-Write deadline applied to the underlying
// socket, if it supports one.
func (s *Stream) SetWriteTimeout(t time.Duration) {
	s.writer.setTimeout(t)
}

func (s *Stream) armReadDeadline() {
	if d, ok := s.conn.(deadline); ok {
		s.reader.arm(d.SetReadDeadline)
	}
}

func (s *Stream) armWriteDeadline() {
	if d, ok := s.conn.(deadline); ok {
		s.writer.arm(d.SetWriteDeadline)
	}
}

// Peek returns the next n bytes without consuming them. The result is a
// deep copy: the bufio reader's internal buffer would otherwise be
// clobbered by the next Read/ReadN call.
func (s *Stream) Peek(n int) ([]byte, error) {
	s.reader.mutex.Lock()
	defer s.reader.mutex.Unlock()

	if n <= 0 {
		return []byte{}, nil
	}

	s.armReadDeadline()
	v, err := s.rd.Peek(n)
	if err != nil {
		return nil, err
	}

	p := make([]byte, len(v))
	copy(p, v)
	return p, nil
}

// ReadN reads exactly n bytes, blocking (up to the read deadline) until
// they are all available.
func (s *Stream) ReadN(n int) ([]byte, error) {
	s.reader.mutex.Lock()
	defer s.reader.mutex.Unlock()

	s.armReadDeadline()
	if _, err := s.rd.Peek(n); err != nil {
		return nil, err
	}

	p := make([]byte, n)
	c, err := io.ReadFull(s.rd, p)
	if err != nil {
		return nil, err
	}
	if c != n {
		panic("channel: short read after a successful peek")
	}
	s.reader.timestamp = time.Now()

	return p, nil
}

// LastRead returns the timestamp of the last successful ReadN.
func (s *Stream) LastRead() time.Time {
	return s.reader.lastActivity()
}

// Write writes p to the underlying socket in full.
func (s *Stream) Write(p []byte) (int, error) {
	s.writer.mutex.Lock()
	defer s.writer.mutex.Unlock()

	s.armWriteDeadline()
	n, err := s.wr.Write(p)
	if err != nil {
		return n, err
	}
	s.writer.timestamp = time.Now()

	return n, nil
}

// LastWrite returns the timestamp of the last successful Write.
func (s *Stream) LastWrite() time.Time {
	return s.writer.lastActivity()
}

// Close closes the underlying socket.
func (s *Stream) Close() error {
	return s.conn.Close()
}
