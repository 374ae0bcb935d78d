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

// Package channel is a concrete, TCP-backed implementation of the
// queue.Channel and queue.EventLoop interfaces: a single-goroutine event
// loop serializing everything the queue manager does to one connection, a
// buffered Stream handling deadline-aware reads and writes, and a Conn
// that tracks a byte watermark to answer queue.Channel.IsWritable.
package channel

import "time"

// Loop is a single-goroutine task queue, the Go analogue of the Netty
// EventLoop the outbound queue core was designed against. Every task
// submitted via Execute or Schedule runs on the same goroutine, one at a
// time, which is what lets queue.Manager treat its own state as
// thread-confined.
type Loop struct {
	tasks chan func()
	done  chan struct{}
}

// NewLoop starts a Loop with a bounded task backlog. backlog should be
// generous: a full queue blocks whoever is trying to submit work, which for
// Execute calls coming from producer goroutines means blocking a caller of
// Manager.Enqueue.
func NewLoop(backlog int) *Loop {
	l := &Loop{
		tasks: make(chan func(), backlog),
		done:  make(chan struct{}),
	}
	go l.run()
	return l
}

func (l *Loop) run() {
	for {
		select {
		case task := <-l.tasks:
			task()
		case <-l.done:
			return
		}
	}
}

// Execute enqueues task to run as soon as the loop is free.
func (l *Loop) Execute(task func()) {
	select {
	case l.tasks <- task:
	case <-l.done:
	}
}

// Schedule enqueues task to run once, after delay has elapsed. The timer
// itself fires on its own goroutine (time.AfterFunc); the task still only
// ever runs on the loop goroutine via Execute.
func (l *Loop) Schedule(task func(), delay time.Duration) {
	time.AfterFunc(delay, func() {
		l.Execute(task)
	})
}

// Close stops the loop. Pending scheduled timers that fire afterward no-op
// against the closed done channel instead of blocking forever.
func (l *Loop) Close() {
	close(l.done)
}
