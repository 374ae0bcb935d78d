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

import "time"

// Envelope is what the manager hands to Channel.Write. It wraps a Frame
// with whatever addressing a transport needs; for a duplex TCP channel
// that is nothing at all, so Addr is typically nil.
type Envelope struct {
	Frame Frame
	Addr  interface{}
}

// EventLoop is the single-threaded task queue the manager schedules all of
// its own work on. Every ConnectionHandler callback, and every task
// submitted here, is guaranteed to run on the same goroutine.
type EventLoop interface {
	// Execute enqueues task to run as soon as the loop is free, with no
	// delay.
	Execute(task func())
	// Schedule enqueues task to run once, after delay has elapsed.
	Schedule(task func(), delay time.Duration)
}

// Channel is the transport abstraction the manager drives. It is supplied
// by the caller (see the channel package for a concrete TCP-backed
// implementation). Apart from IsWritable and EventLoop, which
// scheduleFlush also calls from producer goroutines, it is only used from
// the event loop.
type Channel interface {
	// IsWritable reports whether the transport can currently accept more
	// buffered writes without unbounded growth. Called from both producer
	// goroutines (scheduleFlush) and the event loop (the flush iteration
	// itself), so implementations must make it safe for concurrent use.
	IsWritable() bool
	// Write buffers env for transmission. Non-blocking.
	Write(env Envelope)
	// Flush pushes any buffered writes out to the wire.
	Flush()
	// EventLoop returns the loop this channel's callbacks run on.
	EventLoop() EventLoop
}
