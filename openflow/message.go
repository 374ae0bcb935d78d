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

// Package openflow implements just enough of the OpenFlow wire format to
// exercise the outbound queue core: header framing, HELLO, ECHO and BARRIER
// messages, and ERROR. Flow-mod, multipart/stats, action and match codecs
// are intentionally not reproduced here -- the queue core treats message
// bodies as opaque, and a full codec is a separate, much larger concern.
package openflow

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

const (
	OF10_VERSION uint8 = 0x01
	OF13_VERSION uint8 = 0x04
)

var (
	ErrInvalidPacketLength = errors.New("invalid packet length")
	ErrUnsupportedVersion  = errors.New("unsupported openflow version")
	ErrUnsupportedMessage  = errors.New("unsupported openflow message type")
)

// Message type bytes, shared across versions because this package does not
// distinguish OF10 from OF13 wire encodings for the handful of messages it
// implements.
const (
	OFPT_HELLO           uint8 = 0
	OFPT_ERROR           uint8 = 1
	OFPT_ECHO_REQUEST    uint8 = 2
	OFPT_ECHO_REPLY      uint8 = 3
	OFPT_BARRIER_REQUEST uint8 = 18
	OFPT_BARRIER_REPLY   uint8 = 19
)

// Header is the subset of an OpenFlow message every concrete message type
// exposes. It is the Go analogue of the queue core's opaque Frame contract,
// with the addition of Version/Type/Payload accessors concrete
// implementations need for marshaling.
type Header interface {
	Version() uint8
	Type() uint8
	XID() uint32
	SetXID(uint32)
	// IsBarrier reports whether this message is a barrier request or reply.
	// This is the one predicate the queue core actually depends on.
	IsBarrier() bool
}

// Message is the common header shared by every message implemented here,
// trimmed to the fields the queue core and its transport actually need.
type Message struct {
	version uint8
	msgType uint8
	xid     uint32
	payload []byte
}

func NewMessage(version, msgType uint8, xid uint32) Message {
	return Message{version: version, msgType: msgType, xid: xid}
}

func (m *Message) Version() uint8 { return m.version }

func (m *Message) Type() uint8 { return m.msgType }

func (m *Message) XID() uint32 { return m.xid }

func (m *Message) SetXID(xid uint32) { m.xid = xid }

func (m *Message) IsBarrier() bool {
	return m.msgType == OFPT_BARRIER_REQUEST || m.msgType == OFPT_BARRIER_REPLY
}

func (m *Message) SetPayload(p []byte) { m.payload = p }

func (m *Message) Payload() []byte {
	if m.payload == nil {
		return nil
	}
	v := make([]byte, len(m.payload))
	copy(v, m.payload)
	return v
}

func (m *Message) MarshalBinary() ([]byte, error) {
	length := 8 + len(m.payload)
	if length > 0xFFFF {
		return nil, ErrInvalidPacketLength
	}

	v := make([]byte, length)
	v[0] = m.version
	v[1] = m.msgType
	binary.BigEndian.PutUint16(v[2:4], uint16(length))
	binary.BigEndian.PutUint32(v[4:8], m.xid)
	copy(v[8:], m.payload)

	return v, nil
}

func (m *Message) UnmarshalBinary(data []byte) error {
	if len(data) < 8 {
		return ErrInvalidPacketLength
	}

	length := binary.BigEndian.Uint16(data[2:4])
	if int(length) < 8 || len(data) < int(length) {
		return ErrInvalidPacketLength
	}

	m.version = data[0]
	m.msgType = data[1]
	m.xid = binary.BigEndian.Uint32(data[4:8])
	if length > 8 {
		m.payload = data[8:length]
	} else {
		m.payload = nil
	}

	return nil
}
