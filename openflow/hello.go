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

// Hello is the very first message exchanged on a new connection; its
// version byte drives the version negotiation in channel.Conn.
type Hello struct {
	Message
}

func NewHello(version uint8, xid uint32) *Hello {
	return &Hello{Message: NewMessage(version, OFPT_HELLO, xid)}
}

func (h *Hello) MarshalBinary() ([]byte, error) {
	return h.Message.MarshalBinary()
}

func (h *Hello) UnmarshalBinary(data []byte) error {
	return h.Message.UnmarshalBinary(data)
}
