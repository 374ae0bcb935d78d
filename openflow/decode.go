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

import "encoding"

// decodable is satisfied by every concrete message type this package
// implements.
type decodable interface {
	encoding.BinaryUnmarshaler
	Header
}

// decoders is a dispatch table keyed by message-type byte: no global
// mutable state beyond this read-only map, and no reflection.
var decoders = map[uint8]func(version uint8) decodable{
	OFPT_HELLO:           func(v uint8) decodable { return NewHello(v, 0) },
	OFPT_ERROR:           func(v uint8) decodable { return NewError(v, 0) },
	OFPT_ECHO_REQUEST:    func(v uint8) decodable { return NewEchoRequest(v, 0) },
	OFPT_ECHO_REPLY:      func(v uint8) decodable { return NewEchoReply(v, 0) },
	OFPT_BARRIER_REQUEST: func(v uint8) decodable { return NewBarrierRequest(v, 0) },
	OFPT_BARRIER_REPLY:   func(v uint8) decodable { return NewBarrierReply(v, 0) },
}

// Decode parses a single OpenFlow frame (exactly as much of it as packet
// contains -- the caller is responsible for delimiting frames on the wire
// using the 16-bit length field at offset 2).
func Decode(packet []byte) (Header, error) {
	if len(packet) < 8 {
		return nil, ErrInvalidPacketLength
	}

	build, ok := decoders[packet[1]]
	if !ok {
		return nil, ErrUnsupportedMessage
	}

	msg := build(packet[0])
	if err := msg.UnmarshalBinary(packet); err != nil {
		return nil, err
	}

	return msg, nil
}
