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

// BaseEcho is embedded by EchoRequest and EchoReply. Echo traffic never
// passes through the outbound queue -- channel.Conn answers ECHO_REQUEST
// directly and resets its own idle timer on ECHO_REPLY.
type BaseEcho struct {
	Message
	data []byte
}

func (e *BaseEcho) Data() []byte {
	if e.data == nil {
		return nil
	}
	v := make([]byte, len(e.data))
	copy(v, e.data)
	return v
}

func (e *BaseEcho) SetData(data []byte) {
	e.data = data
}

func (e *BaseEcho) MarshalBinary() ([]byte, error) {
	e.SetPayload(e.data)
	return e.Message.MarshalBinary()
}

func (e *BaseEcho) UnmarshalBinary(data []byte) error {
	if err := e.Message.UnmarshalBinary(data); err != nil {
		return err
	}
	e.data = e.Payload()
	return nil
}

type EchoRequest struct {
	BaseEcho
}

func NewEchoRequest(version uint8, xid uint32) *EchoRequest {
	return &EchoRequest{BaseEcho{Message: NewMessage(version, OFPT_ECHO_REQUEST, xid)}}
}

type EchoReply struct {
	BaseEcho
}

func NewEchoReply(version uint8, xid uint32) *EchoReply {
	return &EchoReply{BaseEcho{Message: NewMessage(version, OFPT_ECHO_REPLY, xid)}}
}
