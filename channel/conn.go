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
	"bytes"
	"encoding"
	"encoding/binary"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/superkkt/go-logging"

	"github.com/superkkt/cherryflow/openflow"
	"github.com/superkkt/cherryflow/queue"
)

func newPackageLogger() *logging.Logger {
	return logging.MustGetLogger("channel")
}

const (
	// defaultHighWaterMark is the unflushed-bytes threshold above which
	// IsWritable starts reporting false.
	defaultHighWaterMark = 512 * 1024
	// defaultLowWaterMark is the threshold a buffer has to drain back
	// below before IsWritable reports true again. The hysteresis gap
	// between the two avoids flapping.
	defaultLowWaterMark = 128 * 1024

	// maxIdleTime is how long a connection may go without any read
	// activity before Conn starts pinging with ECHO_REQUEST.
	maxIdleTime = 10 * time.Second
	readTimeout = 1 * time.Second
)

// Handler receives the connection-lifecycle and non-queue-core events a
// Conn observes. OnMessage is called for every decoded frame that the
// queue.Manager did not claim via OnMessage (HELLO and ECHO are handled
// internally and never reach it).
type Handler interface {
	OnEstablished(c *Conn, version uint8)
	OnMessage(c *Conn, msg openflow.Header)
	OnClosed(c *Conn, cause error)
}

// Conn is a concrete queue.Channel backed by a TCP connection. It owns the
// version-negotiation handshake, ECHO keepalive, and the write-side
// watermark queue.Manager's flush loop drives through IsWritable.
type Conn struct {
	stream  *Stream
	loop    *Loop
	handler Handler
	manager *queue.Manager

	version uint8

	writeMu  sync.Mutex
	writeBuf bytes.Buffer
	writable atomic.Bool

	pingCount uint
	closed    atomic.Bool
}

// NewConn wraps netConn and starts its read loop. manager is supplied
// separately, after construction, via SetManager, because the manager's
// own constructor needs the Channel first -- see network.Session for the
// two-phase wiring this implies.
func NewConn(netConn net.Conn, handler Handler) *Conn {
	c := &Conn{
		stream:  NewStream(netConn, 8192),
		loop:    NewLoop(256),
		handler: handler,
	}
	c.writable.Store(true)
	c.stream.SetReadTimeout(readTimeout)
	go c.readLoop()
	return c
}

// SetManager binds the queue.Manager this connection feeds incoming
// responses into. Must be called before any frame is processed.
func (c *Conn) SetManager(m *queue.Manager) {
	c.manager = m
}

// IsWritable reports whether the outbound buffer is below its high
// watermark. Safe for concurrent use: called from producer goroutines via
// queue.Manager.scheduleFlush and from the loop goroutine during flush.
func (c *Conn) IsWritable() bool {
	return c.writable.Load()
}

// Write marshals env.Frame and appends it to the outbound buffer.
// Non-blocking: the bytes are not pushed to the socket until Flush.
func (c *Conn) Write(env queue.Envelope) {
	marshaler, ok := env.Frame.(encoding.BinaryMarshaler)
	if !ok {
		logger.Errorf("frame with xid=%v does not implement BinaryMarshaler", env.Frame.XID())
		return
	}

	data, err := marshaler.MarshalBinary()
	if err != nil {
		logger.Errorf("failed to marshal frame with xid=%v: %v", env.Frame.XID(), err)
		return
	}

	c.writeMu.Lock()
	c.writeBuf.Write(data)
	full := c.writeBuf.Len() >= defaultHighWaterMark
	c.writeMu.Unlock()

	if full {
		c.writable.Store(false)
	}
}

// Flush pushes the outbound buffer to the socket in a single write and
// re-opens the writable gate once the buffer has drained below the low
// watermark.
func (c *Conn) Flush() {
	c.writeMu.Lock()
	if c.writeBuf.Len() == 0 {
		c.writeMu.Unlock()
		return
	}
	pending := make([]byte, c.writeBuf.Len())
	copy(pending, c.writeBuf.Bytes())
	c.writeBuf.Reset()
	c.writeMu.Unlock()

	if _, err := c.stream.Write(pending); err != nil {
		c.fail(errors.Wrap(err, "failed to flush the outbound buffer"))
		return
	}

	c.writeMu.Lock()
	drained := c.writeBuf.Len() < defaultLowWaterMark
	c.writeMu.Unlock()
	if drained {
		c.writable.Store(true)
	}
}

// EventLoop returns the Loop this connection's callbacks run on.
func (c *Conn) EventLoop() queue.EventLoop {
	return c.loop
}

// RemoteAddr returns the underlying socket's remote address.
func (c *Conn) RemoteAddr() net.Addr {
	return c.stream.RemoteAddr()
}

// Close tears the connection down exactly once, notifying the manager and
// handler.
func (c *Conn) Close() {
	c.fail(nil)
}

func (c *Conn) fail(cause error) {
	if !c.closed.CompareAndSwap(false, true) {
		return
	}

	c.stream.Close()
	c.loop.Execute(func() {
		if c.manager != nil {
			c.manager.ChannelInactive()
		}
		c.handler.OnClosed(c, cause)
		// Closed from inside the task so every task queued before it,
		// and this notification itself, runs before the loop stops.
		c.loop.Close()
	})
}

func (c *Conn) readLoop() {
	packet, err := c.negotiateVersion()
	if err != nil {
		logger.Errorf("version negotiation failed: %v", err)
		c.fail(err)
		return
	}

	for {
		if err := c.dispatch(packet); err != nil {
			logger.Errorf("failed to dispatch an incoming packet: %v", err)
		}

		packet, err = c.readNextPacket()
		if err != nil {
			c.fail(err)
			return
		}
	}
}

// readNextPacket reads the next frame, transparently retrying past read
// timeouts -- sending an ECHO_REQUEST once the connection has been idle
// too long -- until a frame arrives or a non-timeout error occurs.
func (c *Conn) readNextPacket() ([]byte, error) {
	for {
		packet, err := c.readPacket()
		if err == nil {
			return packet, nil
		}
		if !isTimeout(err) {
			return nil, err
		}
		if err := c.pingIfIdle(); err != nil {
			return nil, err
		}
	}
}

func (c *Conn) negotiateVersion() ([]byte, error) {
	packet, err := c.readPacket()
	if err != nil {
		return nil, err
	}
	if packet[1] != openflow.OFPT_HELLO {
		return nil, errors.New("first message on the wire was not HELLO")
	}

	version := packet[0]
	if version != openflow.OF10_VERSION && version != openflow.OF13_VERSION {
		return nil, openflow.ErrUnsupportedVersion
	}
	c.version = version

	c.loop.Execute(func() {
		c.handler.OnEstablished(c, version)
	})

	return packet, nil
}

func (c *Conn) readPacket() ([]byte, error) {
	header, err := c.stream.Peek(8)
	if err != nil {
		return nil, err
	}

	length := binary.BigEndian.Uint16(header[2:4])
	if length < 8 {
		return nil, openflow.ErrInvalidPacketLength
	}

	return c.stream.ReadN(int(length))
}

func (c *Conn) pingIfIdle() error {
	if time.Since(c.stream.LastRead()) < maxIdleTime {
		return nil
	}
	if c.pingCount > 2 {
		return errors.New("peer did not respond to our echo requests")
	}

	req := openflow.NewEchoRequest(c.version, 0)
	data, err := req.MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := c.stream.Write(data); err != nil {
		return err
	}
	c.pingCount++

	return nil
}

func isTimeout(err error) bool {
	v, ok := err.(interface{ Timeout() bool })
	return ok && v.Timeout()
}

func (c *Conn) dispatch(packet []byte) error {
	msg, err := openflow.Decode(packet)
	if err != nil {
		return err
	}

	switch m := msg.(type) {
	case *openflow.Hello:
		return nil
	case *openflow.EchoRequest:
		return c.replyEcho(m)
	case *openflow.EchoReply:
		c.pingCount = 0
		return nil
	}

	c.loop.Execute(func() {
		if c.manager != nil && c.manager.OnMessage(msg) {
			return
		}
		c.handler.OnMessage(c, msg)
	})

	return nil
}

func (c *Conn) replyEcho(req *openflow.EchoRequest) error {
	reply := openflow.NewEchoReply(c.version, req.XID())
	reply.SetData(req.Data())

	data, err := reply.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = c.stream.Write(data)
	return err
}
