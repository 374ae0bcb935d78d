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

// BarrierRequest is injected by the outbound queue core, either because
// queueSize non-barrier messages accumulated or because maxBarrierNanos
// elapsed. Its acknowledgement (BarrierReply) is the sole mechanism that
// closes out entries the switch never answered directly.
type BarrierRequest struct {
	Message
}

func NewBarrierRequest(version uint8, xid uint32) *BarrierRequest {
	return &BarrierRequest{Message: NewMessage(version, OFPT_BARRIER_REQUEST, xid)}
}

func (b *BarrierRequest) MarshalBinary() ([]byte, error) {
	return b.Message.MarshalBinary()
}

func (b *BarrierRequest) UnmarshalBinary(data []byte) error {
	return b.Message.UnmarshalBinary(data)
}

type BarrierReply struct {
	Message
}

func NewBarrierReply(version uint8, xid uint32) *BarrierReply {
	return &BarrierReply{Message: NewMessage(version, OFPT_BARRIER_REPLY, xid)}
}

func (b *BarrierReply) MarshalBinary() ([]byte, error) {
	return b.Message.MarshalBinary()
}

func (b *BarrierReply) UnmarshalBinary(data []byte) error {
	return b.Message.UnmarshalBinary(data)
}
