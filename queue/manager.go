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

// Package queue implements the outbound request/response queue core of an
// OpenFlow controller: XID allocation and pairing across generations of
// fixed-capacity queues, a dual count/time barrier policy, per-iteration
// work-budgeted flushing, cache-based generation reuse and graceful
// disconnect handling. It is modeled directly on OpenDaylight's
// openflowjava OutboundQueueManager/OutboundQueueImpl.
package queue

import (
	"sync/atomic"
	"time"
)

var nowFunc = time.Now

// Manager owns the active set of OutboundQueue generations for one
// channel. Most of its state -- activeQueues, queueCache, currentQueue,
// lastXid, lastBarrierNanos, nonBarrierMessages -- is thread-confined to
// the channel's event loop; flushScheduled and currentQueue are the fields
// touched from producer goroutines, and are therefore atomics.
type Manager struct {
	channel Channel
	handler ConnectionHandler
	config  Config

	// currentQueue is written only from the event loop (generation
	// rollover, construction, shutdown) but read from producer goroutines
	// via CurrentQueue(), so it is an atomic pointer rather than a plain
	// field despite being logically event-loop-confined.
	currentQueue atomic.Pointer[OutboundQueue]

	// Event-loop-only state below; never touched from any other goroutine.
	activeQueues    []*OutboundQueue
	queueCache      []*OutboundQueue
	lastXid         uint32
	lastBarrierNs   int64
	nonBarrierCount uint32
	closed          bool

	// flushScheduled guards against more than one flush task being
	// in-flight on the event loop at a time. CAS only.
	flushScheduled atomic.Int32
}

// New constructs a Manager for channel, allocates its first generation and
// arms the periodic barrier timer. Mirrors the ODL constructor, which does
// exactly these two things before returning.
func New(channel Channel, handler ConnectionHandler, config Config) *Manager {
	config = config.withDefaults()
	if err := config.validate(); err != nil {
		panic(err)
	}

	m := &Manager{
		channel:       channel,
		handler:       handler,
		config:        config,
		lastBarrierNs: nowFunc().UnixNano(),
	}

	m.createQueue()
	m.scheduleBarrierTimer(m.lastBarrierNs)

	return m
}

// CurrentQueue returns the generation currently accepting reservations, or
// nil if the channel has been shut down. Safe to call from any goroutine.
func (m *Manager) CurrentQueue() *OutboundQueue {
	return m.currentQueue.Load()
}

// Enqueue reserves and commits request as a non-barrier entry on the
// current generation and ensures a flush is scheduled. This is the
// convenience path that chains
// "caller -> QueueManager.reserve -> QueueEntry.commit -> scheduleFlush".
// Callers needing finer control can instead call CurrentQueue(),
// ReserveEntry/CommitEntry directly, followed by EnsureFlushing.
func (m *Manager) Enqueue(request Frame, completion CompletionFunc) (uint32, error) {
	q := m.currentQueue.Load()
	if q == nil {
		return 0, ErrDisconnected
	}

	xid, ok := q.ReserveEntry(false)
	if !ok {
		return 0, ErrCapacityExhausted
	}

	q.CommitEntry(xid, request, completion)
	m.EnsureFlushing(q)

	return xid, nil
}

// EnsureFlushing requests a flush be scheduled for queue. Called by
// producers right after CommitEntry, and internally after the manager
// commits a barrier of its own.
func (m *Manager) EnsureFlushing(queue *OutboundQueue) {
	m.scheduleFlush()
}

func (m *Manager) scheduleFlush() {
	if !m.channel.IsWritable() {
		return
	}
	if m.flushScheduled.CompareAndSwap(0, 1) {
		m.channel.EventLoop().Execute(m.flush)
	}
}

// createQueue allocates the next generation, preferring a cached one.
// Event-loop only.
func (m *Manager) createQueue() {
	baseXid := m.lastXid
	m.lastXid += m.config.capacity()

	var q *OutboundQueue
	if n := len(m.queueCache); n > 0 {
		q = m.queueCache[n-1]
		m.queueCache = m.queueCache[:n-1]
		q = q.reuse(baseXid)
	} else {
		q = newOutboundQueue(baseXid, m.config.capacity())
	}

	m.activeQueues = append(m.activeQueues, q)
	m.currentQueue.Store(q)
	m.handler.OnConnectionQueueChanged(q)
}

// retireQueue removes a finished generation from service, caching it for
// reuse if there is room. Event-loop only.
func (m *Manager) retireQueue(q *OutboundQueue) {
	if len(m.queueCache) < m.config.QueueCacheCapacity {
		m.queueCache = append(m.queueCache, q)
	}
}

func (m *Manager) removeActiveQueue(q *OutboundQueue) {
	for i, v := range m.activeQueues {
		if v == q {
			m.activeQueues = append(m.activeQueues[:i], m.activeQueues[i+1:]...)
			return
		}
	}
}

// scheduleBarrierMessage reserves and commits a barrier request on the
// current generation. Resetting nonBarrierCount here, ahead of the flush
// path actually emitting the frame, is deliberate: it prevents
// flushEntry's own count-based trigger from firing again for messages that
// are already covered by this barrier.
func (m *Manager) scheduleBarrierMessage() {
	q := m.currentQueue.Load()

	xid, ok := q.ReserveEntry(true)
	if !ok {
		// The generation filled up exactly as we tried to append a
		// barrier; flushEntry will roll over to a fresh generation on its
		// next call and the barrier policy will catch up there.
		return
	}

	q.CommitEntry(xid, m.handler.CreateBarrierRequest(xid), nil)
	m.nonBarrierCount = 0

	// When this fires from flushEntry, a flush is already running and will
	// pick the barrier up on its own; when it fires from the periodic
	// barrier() timer, nothing else will drain it. scheduleFlush is a
	// harmless no-op in the former case since flushScheduled is already 1.
	m.scheduleFlush()
}

// flushEntry pulls one frame out of the current generation, rolling over
// to a new generation if the current one is now fully flushed, and
// updates barrier bookkeeping. now is the flush iteration's start time --
// see the ODL comment this is ported from: it need not be perfectly
// accurate, so we avoid calling time.Now() per-message.
func (m *Manager) flushEntry(now time.Time) (Frame, bool) {
	q := m.currentQueue.Load()

	frame, ok := q.flushEntry()
	if q.IsFlushed() {
		m.createQueue()
	}

	if !ok {
		return nil, false
	}

	if frame.IsBarrier() {
		m.nonBarrierCount = 0
		atomic.StoreInt64(&m.lastBarrierNs, now.UnixNano())
	} else {
		m.nonBarrierCount++
		if m.nonBarrierCount >= m.config.QueueSize {
			m.scheduleBarrierMessage()
		}
	}

	return frame, true
}

// flush performs a single flush iteration: event-loop only, runs until the
// channel stops being writable, the queue drains, or the work budget is
// exhausted.
func (m *Manager) flush() {
	if m.closed {
		return
	}

	start := nowFunc()
	deadline := start.Add(m.config.MaxWorkTime)

	var messages uint32
	for {
		if !m.channel.IsWritable() {
			break
		}

		frame, ok := m.flushEntry(start)
		if !ok {
			break
		}

		m.channel.Write(Envelope{Frame: frame})
		messages++

		if messages%m.config.WorktimeRecheckInterval == 0 && !nowFunc().Before(deadline) {
			break
		}
	}

	if messages > 0 {
		m.channel.Flush()
	}

	m.flushScheduled.Store(0)
	m.conditionalFlush()
}

// conditionalFlush re-schedules a flush if the current generation still
// has committed-but-unflushed work. This closes a re-arm race: a producer
// may have committed an entry while flush() was in its exit path, observed
// flushScheduled == 1, and therefore skipped scheduling.
func (m *Manager) conditionalFlush() {
	q := m.currentQueue.Load()
	if q == nil {
		return
	}
	if !q.IsEmpty() {
		m.scheduleFlush()
	}
}

// OnMessage attempts to pair an incoming response with a previously
// reserved request. Returns false if no active generation claims it.
func (m *Manager) OnMessage(response Frame) bool {
	for i, candidate := range m.activeQueues {
		matched, isBarrier := candidate.pairRequest(response)
		if !matched {
			continue
		}

		if isBarrier && len(m.activeQueues) > 1 {
			// Every generation strictly older than the matched one is
			// now implied-complete: the switch would not have acked a
			// later barrier without having processed everything before
			// it.
			for _, older := range m.activeQueues[:i] {
				older.completeAll()
				m.retireQueue(older)
			}
			m.activeQueues = m.activeQueues[i:]
			candidate = m.activeQueues[0]
		}

		if candidate.IsFinished() {
			m.removeActiveQueue(candidate)
			m.retireQueue(candidate)
		}

		return true
	}

	return false
}

// scheduleBarrierTimer arms the one-shot periodic barrier timer for
// lastBarrierNanos + maxBarrierNanos, clamping to now+maxBarrierNanos if
// that point is already in the past (avoids a tight re-fire loop).
func (m *Manager) scheduleBarrierTimer(nowNanos int64) {
	next := atomic.LoadInt64(&m.lastBarrierNs) + m.config.MaxBarrierNanos
	if next < nowNanos {
		next = nowNanos + m.config.MaxBarrierNanos
	}

	delay := time.Duration(next - nowNanos)
	m.channel.EventLoop().Schedule(m.barrier, delay)
}

// barrier is the periodic time-triggered barrier check. Event-loop only.
func (m *Manager) barrier() {
	if m.closed || m.currentQueue.Load() == nil {
		return
	}

	now := nowFunc().UnixNano()
	last := atomic.LoadInt64(&m.lastBarrierNs)
	if now-last >= m.config.MaxBarrierNanos && m.nonBarrierCount > 0 {
		m.scheduleBarrierMessage()
	}

	m.scheduleBarrierTimer(now)
}

// ChannelActive starts draining any commits that accumulated before the
// channel became active.
func (m *Manager) ChannelActive() {
	m.conditionalFlush()
}

// ChannelWritabilityChanged re-checks for pending work now that the
// channel may have become writable again.
func (m *Manager) ChannelWritabilityChanged() {
	m.conditionalFlush()
}

// ChannelInactive tears the manager down: every outstanding entry across
// every generation is failed with ErrDisconnected, in XID order within
// each generation and oldest-generation-first across generations.
// Generations are discarded, never cached, on shutdown.
func (m *Manager) ChannelInactive() {
	m.closed = true
	m.currentQueue.Store(nil)
	m.handler.OnConnectionQueueChanged(nil)

	for _, q := range m.activeQueues {
		q.failAll(ErrDisconnected)
	}
	m.activeQueues = nil
	m.queueCache = nil
}
