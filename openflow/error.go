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

import "encoding/binary"

// Error carries an OFPT_ERROR reply. A switch may answer an outstanding
// request with an error instead of the expected reply; the queue core
// still pairs it by XID like any other response.
type Error struct {
	Message
	errType uint16
	errCode uint16
	data    []byte
}

func NewError(version uint8, xid uint32) *Error {
	return &Error{Message: NewMessage(version, OFPT_ERROR, xid)}
}

func (e *Error) ErrType() uint16 { return e.errType }

func (e *Error) ErrCode() uint16 { return e.errCode }

func (e *Error) Data() []byte { return e.data }

func (e *Error) MarshalBinary() ([]byte, error) {
	payload := make([]byte, 4+len(e.data))
	binary.BigEndian.PutUint16(payload[0:2], e.errType)
	binary.BigEndian.PutUint16(payload[2:4], e.errCode)
	copy(payload[4:], e.data)
	e.SetPayload(payload)

	return e.Message.MarshalBinary()
}

func (e *Error) UnmarshalBinary(data []byte) error {
	if err := e.Message.UnmarshalBinary(data); err != nil {
		return err
	}

	payload := e.Payload()
	if len(payload) < 4 {
		return ErrInvalidPacketLength
	}
	e.errType = binary.BigEndian.Uint16(payload[0:2])
	e.errCode = binary.BigEndian.Uint16(payload[2:4])
	e.data = payload[4:]

	return nil
}
