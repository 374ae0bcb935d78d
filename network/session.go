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

// Package network wires the outbound queue core to real TCP connections:
// Session binds one queue.Manager to one switch connection and implements
// both channel.Handler and queue.ConnectionHandler, and Controller accepts
// connections and owns the set of currently active sessions.
package network

import (
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/superkkt/go-logging"

	"github.com/superkkt/cherryflow/channel"
	"github.com/superkkt/cherryflow/openflow"
	"github.com/superkkt/cherryflow/queue"
)

var logger = logging.MustGetLogger("network")

// Session owns the outbound queue for one switch connection. Its
// CreateBarrierRequest/OnConnectionQueueChanged methods are the queue
// core's only window into the OpenFlow wire format and connection
// identity.
type Session struct {
	controller *Controller

	conn    *channel.Conn
	manager *queue.Manager

	version atomic.Uint32 // openflow.OF10_VERSION or openflow.OF13_VERSION, as uint32

	mu      sync.Mutex
	current *queue.OutboundQueue
}

func newSession(controller *Controller) *Session {
	s := &Session{controller: controller}
	s.version.Store(uint32(openflow.OF13_VERSION))
	return s
}

// bind finishes constructing the session once its Conn and Manager exist.
// Conn is built first (it needs a Handler), then Manager (it needs a
// Channel), so this two-phase wiring is unavoidable.
func (s *Session) bind(conn *channel.Conn, manager *queue.Manager) {
	s.conn = conn
	s.manager = manager
	conn.SetManager(manager)
}

// Enqueue submits request for transmission and returns the XID it was
// assigned. completion is invoked exactly once, per queue.CompletionFunc's
// contract.
//
// This takes the manager's finer-grained reserve/commit path rather than
// its Enqueue convenience method: the XID a generation reserves for this
// entry is only known after the reservation happens, and request's own
// wire-level XID field has to be set to match before it is committed, or
// the bytes that eventually go out would carry whatever XID the caller
// happened to construct request with.
func (s *Session) Enqueue(request openflow.Header, completion queue.CompletionFunc) (uint32, error) {
	q := s.manager.CurrentQueue()
	if q == nil {
		return 0, queue.ErrDisconnected
	}

	xid, ok := q.ReserveEntry(false)
	if !ok {
		return 0, queue.ErrCapacityExhausted
	}

	request.SetXID(xid)
	q.CommitEntry(xid, request, completion)
	s.manager.EnsureFlushing(q)

	return xid, nil
}

// RemoteAddr returns the underlying TCP peer address.
func (s *Session) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// CreateBarrierRequest implements queue.ConnectionHandler.
func (s *Session) CreateBarrierRequest(xid uint32) queue.Frame {
	return openflow.NewBarrierRequest(uint8(s.version.Load()), xid)
}

// OnConnectionQueueChanged implements queue.ConnectionHandler.
func (s *Session) OnConnectionQueueChanged(current *queue.OutboundQueue) {
	s.mu.Lock()
	s.current = current
	s.mu.Unlock()
}

// OnEstablished implements channel.Handler. It is invoked from the
// connection's own event loop once the HELLO handshake has negotiated a
// version.
func (s *Session) OnEstablished(c *channel.Conn, version uint8) {
	s.version.Store(uint32(version))
	logger.Infof("session established with %v, negotiated version=%#x", c.RemoteAddr(), version)
}

// OnMessage implements channel.Handler. It is only called for frames the
// queue.Manager did not claim as a paired response -- an unsolicited
// PORT_STATUS, FLOW_REMOVED, or similar. Device and topology tracking are
// out of scope here, so these are logged and dropped.
func (s *Session) OnMessage(c *channel.Conn, msg openflow.Header) {
	logger.Debugf("unclaimed message from %v: type=%v xid=%v", c.RemoteAddr(), msg.Type(), msg.XID())
}

// OnClosed implements channel.Handler.
func (s *Session) OnClosed(c *channel.Conn, cause error) {
	s.controller.removeSession(s)
	if cause != nil {
		logger.Warningf("session with %v closed: %v", c.RemoteAddr(), cause)
	} else {
		logger.Infof("session with %v closed", c.RemoteAddr())
	}
}

func (s *Session) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	base := uint32(0)
	if s.current != nil {
		base = s.current.BaseXID()
	}
	return fmt.Sprintf("%v (version=%#x, current generation base xid=%v)", s.RemoteAddr(), s.version.Load(), base)
}
