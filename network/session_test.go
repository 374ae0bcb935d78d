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

package network

import (
	"net"
	"testing"
	"time"

	"github.com/superkkt/cherryflow/openflow"
	"github.com/superkkt/cherryflow/queue"
)

func newTestController() *Controller {
	return NewController(queue.Config{
		QueueSize:       4,
		MaxBarrierNanos: int64(time.Hour),
	})
}

func waitForSession(t *testing.T, c *Controller) *Session {
	t.Helper()
	for i := 0; i < 200; i++ {
		if sessions := c.Sessions(); len(sessions) == 1 {
			return sessions[0]
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for a session to appear")
	return nil
}

func readPacket(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	header := make([]byte, 8)
	if _, err := readFull(conn, header); err != nil {
		t.Fatalf("read header: %v", err)
	}
	length := int(header[2])<<8 | int(header[3])
	body := make([]byte, length-8)
	if len(body) > 0 {
		if _, err := readFull(conn, body); err != nil {
			t.Fatalf("read body: %v", err)
		}
	}
	return append(header, body...)
}

func readFull(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// TestSessionEnqueueAssignsWireXID exercises the exact bug that motivated
// Session.Enqueue taking the manager's finer-grained reserve/commit path:
// the frame that hits the wire must carry the XID the queue reserved, not
// whatever XID the caller happened to construct it with.
func TestSessionEnqueueAssignsWireXID(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	controller := newTestController()
	controller.addConnection(server)

	hello := openflow.NewHello(openflow.OF13_VERSION, 1)
	helloData, err := hello.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal hello: %v", err)
	}
	if _, err := client.Write(helloData); err != nil {
		t.Fatalf("write hello: %v", err)
	}

	session := waitForSession(t, controller)

	type outcome struct {
		response queue.Frame
		err      error
	}
	done := make(chan outcome, 1)

	req := openflow.NewError(openflow.OF13_VERSION, 999)
	assignedXID, err := session.Enqueue(req, func(response queue.Frame, err error) {
		done <- outcome{response, err}
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	packet := readPacket(t, client)
	onWireXID := uint32(packet[4])<<24 | uint32(packet[5])<<16 | uint32(packet[6])<<8 | uint32(packet[7])
	if onWireXID != assignedXID {
		t.Fatalf("expected the on-wire XID to be the reserved XID %d, got %d", assignedXID, onWireXID)
	}
	if onWireXID == 999 {
		t.Fatal("on-wire XID must not be the caller's original placeholder XID")
	}

	reply := openflow.NewError(openflow.OF13_VERSION, assignedXID)
	replyData, err := reply.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal reply: %v", err)
	}
	if _, err := client.Write(replyData); err != nil {
		t.Fatalf("write reply: %v", err)
	}

	select {
	case o := <-done:
		if o.err != nil {
			t.Fatalf("unexpected completion error: %v", o.err)
		}
		if o.response == nil || o.response.XID() != assignedXID {
			t.Fatalf("expected a paired response with xid=%d", assignedXID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the completion callback")
	}
}

func TestControllerRemovesSessionOnClose(t *testing.T) {
	client, server := net.Pipe()

	controller := newTestController()
	controller.addConnection(server)

	hello := openflow.NewHello(openflow.OF13_VERSION, 1)
	data, _ := hello.MarshalBinary()
	client.Write(data)

	waitForSession(t, controller)

	client.Close()

	for i := 0; i < 200; i++ {
		if len(controller.Sessions()) == 0 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("timed out waiting for the session to be removed after the peer closed")
}
