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

package openflow

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMessageMarshalUnmarshalRoundTrip(t *testing.T) {
	m := NewMessage(OF13_VERSION, OFPT_HELLO, 42)
	m.SetPayload([]byte{1, 2, 3})

	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if len(data) != 11 {
		t.Fatalf("expected an 8-byte header plus 3-byte payload, got %d bytes", len(data))
	}

	var out Message
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Version() != OF13_VERSION || out.Type() != OFPT_HELLO || out.XID() != 42 {
		t.Fatalf("unexpected header: version=%d type=%d xid=%d", out.Version(), out.Type(), out.XID())
	}
	if diff := cmp.Diff([]byte{1, 2, 3}, out.Payload()); diff != "" {
		t.Fatalf("unexpected payload (-want +got):\n%s", diff)
	}
}

func TestMessageUnmarshalRejectsShortPacket(t *testing.T) {
	var m Message
	if err := m.UnmarshalBinary([]byte{1, 2, 3}); err != ErrInvalidPacketLength {
		t.Fatalf("expected ErrInvalidPacketLength, got %v", err)
	}
}

func TestMessageUnmarshalRejectsTruncatedBody(t *testing.T) {
	m := NewMessage(OF13_VERSION, OFPT_HELLO, 1)
	m.SetPayload([]byte{1, 2, 3, 4})
	data, _ := m.MarshalBinary()

	var out Message
	if err := out.UnmarshalBinary(data[:len(data)-1]); err != ErrInvalidPacketLength {
		t.Fatalf("expected ErrInvalidPacketLength for a truncated body, got %v", err)
	}
}

func TestBarrierRequestAndReplyAreBarriers(t *testing.T) {
	req := NewBarrierRequest(OF13_VERSION, 7)
	rep := NewBarrierReply(OF13_VERSION, 7)

	if !req.IsBarrier() || !rep.IsBarrier() {
		t.Fatal("expected both barrier request and reply to report IsBarrier")
	}

	hello := NewHello(OF13_VERSION, 1)
	if hello.IsBarrier() {
		t.Fatal("HELLO must not report itself as a barrier")
	}
}

func TestEchoRoundTrip(t *testing.T) {
	req := NewEchoRequest(OF13_VERSION, 9)
	req.SetData([]byte("ping"))

	data, err := req.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := NewEchoReply(OF13_VERSION, 0)
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if string(out.Data()) != "ping" {
		t.Fatalf("expected echoed data %q, got %q", "ping", out.Data())
	}
	if out.XID() != 9 {
		t.Fatalf("expected xid 9, got %d", out.XID())
	}
}

func TestErrorRoundTrip(t *testing.T) {
	e := NewError(OF13_VERSION, 5)
	e.errType = 2
	e.errCode = 3
	e.data = []byte("bad match")

	data, err := e.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	out := NewError(OF13_VERSION, 0)
	if err := out.UnmarshalBinary(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ErrType() != 2 || out.ErrCode() != 3 {
		t.Fatalf("unexpected error type/code: %d/%d", out.ErrType(), out.ErrCode())
	}
	if string(out.Data()) != "bad match" {
		t.Fatalf("unexpected error data %q", out.Data())
	}
}

func TestErrorUnmarshalRejectsShortPayload(t *testing.T) {
	m := NewMessage(OF13_VERSION, OFPT_ERROR, 1)
	data, _ := m.MarshalBinary()

	e := NewError(OF13_VERSION, 0)
	if err := e.UnmarshalBinary(data); err != ErrInvalidPacketLength {
		t.Fatalf("expected ErrInvalidPacketLength for a header-only error, got %v", err)
	}
}

func TestDecodeDispatchesOnMessageType(t *testing.T) {
	cases := []struct {
		name string
		make func() Header
	}{
		{"hello", func() Header { return NewHello(OF13_VERSION, 1) }},
		{"echoRequest", func() Header { return NewEchoRequest(OF13_VERSION, 2) }},
		{"echoReply", func() Header { return NewEchoReply(OF13_VERSION, 3) }},
		{"barrierRequest", func() Header { return NewBarrierRequest(OF13_VERSION, 4) }},
		{"barrierReply", func() Header { return NewBarrierReply(OF13_VERSION, 5) }},
		{"error", func() Header { return NewError(OF13_VERSION, 6) }},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			marshaler, ok := c.make().(interface{ MarshalBinary() ([]byte, error) })
			if !ok {
				t.Fatalf("%s does not implement BinaryMarshaler", c.name)
			}
			data, err := marshaler.MarshalBinary()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			decoded, err := Decode(data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if decoded.Version() != OF13_VERSION {
				t.Fatalf("expected version %d, got %d", OF13_VERSION, decoded.Version())
			}
		})
	}
}

func TestDecodeRejectsUnknownMessageType(t *testing.T) {
	m := NewMessage(OF13_VERSION, 0xFE, 1)
	data, _ := m.MarshalBinary()

	if _, err := Decode(data); err != ErrUnsupportedMessage {
		t.Fatalf("expected ErrUnsupportedMessage, got %v", err)
	}
}

func TestDecodeRejectsShortPacket(t *testing.T) {
	if _, err := Decode([]byte{1, 2}); err != ErrInvalidPacketLength {
		t.Fatalf("expected ErrInvalidPacketLength, got %v", err)
	}
}
