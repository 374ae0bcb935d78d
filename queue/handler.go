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

// ConnectionHandler is supplied by the caller and provides the two hooks
// the manager needs to stay agnostic of the concrete wire format:
// constructing a barrier frame carrying a given XID, and learning when the
// reservation target (the current generation) changes.
type ConnectionHandler interface {
	// CreateBarrierRequest constructs a barrier request frame carrying xid.
	CreateBarrierRequest(xid uint32) Frame

	// OnConnectionQueueChanged is invoked whenever the manager's current
	// reservation target changes. current is nil during shutdown.
	OnConnectionQueueChanged(current *OutboundQueue)
}
