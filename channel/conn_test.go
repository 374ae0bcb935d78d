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
	"net"
	"sync"
	"testing"
	"time"

	"github.com/superkkt/cherryflow/openflow"
)

type fakeHandler struct {
	mu             sync.Mutex
	established    uint8
	messages       []openflow.Header
	closedCause    error
	gotEstablished chan struct{}
	gotMessage     chan struct{}
	gotClosed      chan struct{}
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{
		gotEstablished: make(chan struct{}, 1),
		gotMessage:     make(chan struct{}, 1),
		gotClosed:      make(chan struct{}, 1),
	}
}

func (h *fakeHandler) OnEstablished(c *Conn, version uint8) {
	h.mu.Lock()
	h.established = version
	h.mu.Unlock()
	h.gotEstablished <- struct{}{}
}

func (h *fakeHandler) OnMessage(c *Conn, msg openflow.Header) {
	h.mu.Lock()
	h.messages = append(h.messages, msg)
	h.mu.Unlock()
	h.gotMessage <- struct{}{}
}

func (h *fakeHandler) OnClosed(c *Conn, cause error) {
	h.mu.Lock()
	h.closedCause = cause
	h.mu.Unlock()
	h.gotClosed <- struct{}{}
}

func waitFor(t *testing.T, ch chan struct{}, what string) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
}

func TestConnNegotiatesVersionFromHello(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	handler := newFakeHandler()
	c := NewConn(server, handler)
	defer c.Close()

	hello := openflow.NewHello(openflow.OF13_VERSION, 1)
	data, err := hello.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, err := client.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, handler.gotEstablished, "OnEstablished")
	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.established != openflow.OF13_VERSION {
		t.Fatalf("expected negotiated version %#x, got %#x", openflow.OF13_VERSION, handler.established)
	}
}

func TestConnRejectsNonHelloFirstMessage(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	handler := newFakeHandler()
	c := NewConn(server, handler)
	defer c.Close()

	req := openflow.NewEchoRequest(openflow.OF13_VERSION, 1)
	data, _ := req.MarshalBinary()
	client.Write(data)

	waitFor(t, handler.gotClosed, "OnClosed")
	handler.mu.Lock()
	defer handler.mu.Unlock()
	if handler.closedCause == nil {
		t.Fatal("expected a non-nil close cause when the handshake fails")
	}
}

func TestConnAnswersEchoRequestDirectly(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	handler := newFakeHandler()
	c := NewConn(server, handler)
	defer c.Close()

	hello := openflow.NewHello(openflow.OF13_VERSION, 1)
	data, _ := hello.MarshalBinary()
	client.Write(data)
	waitFor(t, handler.gotEstablished, "OnEstablished")

	req := openflow.NewEchoRequest(openflow.OF13_VERSION, 77)
	req.SetData([]byte("ping"))
	reqData, err := req.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	client.Write(reqData)

	header := make([]byte, 8)
	if _, err := client.Read(header); err != nil {
		t.Fatalf("read reply header: %v", err)
	}
	if header[1] != openflow.OFPT_ECHO_REPLY {
		t.Fatalf("expected an ECHO_REPLY, got message type %d", header[1])
	}

	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.messages) != 0 {
		t.Fatal("echo traffic must never reach the handler's OnMessage")
	}
}

func TestConnDispatchesUnclaimedMessagesToHandler(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()

	handler := newFakeHandler()
	c := NewConn(server, handler)
	defer c.Close()

	hello := openflow.NewHello(openflow.OF13_VERSION, 1)
	data, _ := hello.MarshalBinary()
	client.Write(data)
	waitFor(t, handler.gotEstablished, "OnEstablished")

	barrier := openflow.NewBarrierReply(openflow.OF13_VERSION, 42)
	barrierData, err := barrier.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	client.Write(barrierData)

	waitFor(t, handler.gotMessage, "OnMessage")
	handler.mu.Lock()
	defer handler.mu.Unlock()
	if len(handler.messages) != 1 || handler.messages[0].XID() != 42 {
		t.Fatalf("expected the unclaimed barrier reply to reach OnMessage, got %+v", handler.messages)
	}
}
