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

import "github.com/pkg/errors"

var (
	// ErrCapacityExhausted is returned synchronously from Enqueue when the
	// current generation has no free slot and no further generation can be
	// allocated on that path.
	ErrCapacityExhausted = errors.New("outbound queue: capacity exhausted")

	// ErrDisconnected is delivered to every outstanding completion when the
	// channel becomes inactive while requests are in flight. A channel
	// that rejects a write after a request was already committed is
	// folded into this same case rather than given its own sentinel: it
	// is rare enough that callers are expected to treat it as a
	// disconnect, not to distinguish it.
	ErrDisconnected = errors.New("outbound queue: channel disconnected")
)
