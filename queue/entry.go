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

package queue

// Frame is the opaque wire message the outbound queue carries. It never
// parses or mutates the underlying bytes -- only XID() and IsBarrier()
// matter to the core.
type Frame interface {
	XID() uint32
	IsBarrier() bool
}

// CompletionFunc is the per-request completion callback. It is invoked
// exactly once:
//
//   - response != nil, err == nil: a direct, paired response.
//   - response == nil, err == nil: implied success via a later barrier ack.
//   - err != nil: flush-time rejection, disconnect or other terminal error.
type CompletionFunc func(response Frame, err error)

type entryState uint8

const (
	stateFree entryState = iota
	stateReserved
	stateCommitted
	stateFlushed
	stateCompleted
)

// entry is one slot of an OutboundQueue generation. It is exclusively
// owned by its parent queue; callers only ever receive the XID a
// reservation produced, never a pointer into the slot array.
type entry struct {
	xid        uint32
	state      entryState
	isBarrier  bool
	request    Frame
	completion CompletionFunc
}

func (e *entry) reset(xid uint32) {
	e.xid = xid
	e.state = stateFree
	e.isBarrier = false
	e.request = nil
	e.completion = nil
}
