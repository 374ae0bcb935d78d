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

import "sync"

// OutboundQueue is one fixed-capacity generation of entries sharing a
// contiguous XID range. It is the Go counterpart of OutboundQueueImpl in
// the OpenDaylight openflowjava core this package is modeled on.
//
// reserveEntry/commitEntry are called from arbitrary producer goroutines;
// flushEntry/pairRequest/completeAll/failAll are only ever called from the
// owning QueueManager's event loop. A single mutex protects all of it --
// simpler than an atomic-bump-plus-acquire/release scheme, and just as
// correct, since none of these operations block.
type OutboundQueue struct {
	mu sync.Mutex

	baseXid  uint32
	capacity uint32
	slots    []entry

	reserveIndex   uint32
	commitIndex    uint32
	flushIndex     uint32
	completedCount uint32
}

// newOutboundQueue allocates a fresh generation with every slot Free.
func newOutboundQueue(baseXid, capacity uint32) *OutboundQueue {
	q := &OutboundQueue{
		baseXid:  baseXid,
		capacity: capacity,
		slots:    make([]entry, capacity),
	}
	for i := range q.slots {
		q.slots[i].reset(baseXid + uint32(i))
	}
	return q
}

// reuse resets all cursors and slot states for reuse as a new generation,
// without reallocating the slot array. The caller must ensure isFinished
// held for the previous generation before calling this.
func (q *OutboundQueue) reuse(baseXid uint32) *OutboundQueue {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.baseXid = baseXid
	q.reserveIndex = 0
	q.commitIndex = 0
	q.flushIndex = 0
	q.completedCount = 0
	for i := range q.slots {
		q.slots[i].reset(baseXid + uint32(i))
	}

	return q
}

// BaseXID returns the XID of slot 0 in this generation.
func (q *OutboundQueue) BaseXID() uint32 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.baseXid
}

// ReserveEntry returns the XID of the next free slot, transitioning it to
// Reserved with the given barrier flag. Returns ok=false when the
// generation has no free slot left.
func (q *OutboundQueue) ReserveEntry(barrier bool) (xid uint32, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.reserveIndex == q.capacity {
		return 0, false
	}

	idx := q.reserveIndex
	q.reserveIndex++

	slot := &q.slots[idx]
	slot.state = stateReserved
	slot.isBarrier = barrier

	return slot.xid, true
}

// CommitEntry writes the request and completion callback into the slot
// allocated for xid and makes it visible to the flush loop. xid must be
// the most recently reserved XID on this queue -- commits proceed strictly
// in reservation order.
func (q *OutboundQueue) CommitEntry(xid uint32, request Frame, completion CompletionFunc) {
	q.mu.Lock()
	defer q.mu.Unlock()

	idx := xid - q.baseXid
	slot := &q.slots[idx]
	if slot.state != stateReserved {
		panic("queue: commitEntry called on a non-reserved slot")
	}

	slot.request = request
	slot.completion = completion
	slot.state = stateCommitted
	q.commitIndex++
}

// flushEntry returns the next committed request in reservation order, or
// (nil, false) if the queue has nothing left to flush right now.
func (q *OutboundQueue) flushEntry() (Frame, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.flushIndex == q.commitIndex {
		return nil, false
	}

	slot := &q.slots[q.flushIndex]
	request := slot.request
	slot.request = nil
	slot.state = stateFlushed
	q.flushIndex++

	return request, true
}

// pairRequest scans the flushed-but-not-completed window for the first
// entry whose XID matches response.XID(). If found, it invokes the
// entry's completion exactly once with (response, nil), advances
// completedCount past every contiguous Completed prefix, and reports
// whether the matched entry was a barrier.
//
// When the matched entry is a barrier, every entry still Flushed ahead of
// it in this same generation is implied successful -- the switch would not
// have acked the barrier without having processed everything queued before
// it -- so those get completed with (nil, nil) in XID order first.
func (q *OutboundQueue) pairRequest(response Frame) (matched bool, isBarrier bool) {
	q.mu.Lock()

	xid := response.XID()
	var foundIdx uint32
	found := false
	for i := q.completedCount; i < q.flushIndex; i++ {
		if q.slots[i].state == stateFlushed && q.slots[i].xid == xid {
			foundIdx = i
			found = true
			break
		}
	}

	if !found {
		q.mu.Unlock()
		return false, false
	}

	slot := &q.slots[foundIdx]
	isBarrier = slot.isBarrier

	var callbacks []CompletionFunc
	var responses []Frame

	if isBarrier {
		for i := q.completedCount; i < foundIdx; i++ {
			s := &q.slots[i]
			if s.state != stateFlushed {
				continue
			}
			if s.completion != nil {
				callbacks = append(callbacks, s.completion)
				responses = append(responses, nil)
				s.completion = nil
			}
			s.state = stateCompleted
		}
	}

	if slot.completion != nil {
		callbacks = append(callbacks, slot.completion)
		responses = append(responses, response)
		slot.completion = nil
	}
	slot.state = stateCompleted

	q.advanceCompletedLocked()
	q.mu.Unlock()

	for i, cb := range callbacks {
		cb(responses[i], nil)
	}

	return true, isBarrier
}

// advanceCompletedLocked moves completedCount forward over every
// contiguous Completed slot. Caller must hold q.mu.
func (q *OutboundQueue) advanceCompletedLocked() {
	for q.completedCount < q.reserveIndex && q.slots[q.completedCount].state == stateCompleted {
		q.completedCount++
	}
}

// completeAll invokes Ok(nil) -- implied success -- on every entry in
// [completedCount, reserveIndex) that is still Flushed, in XID order, then
// marks the whole range Completed.
func (q *OutboundQueue) completeAll() {
	q.mu.Lock()
	var callbacks []CompletionFunc
	for i := q.completedCount; i < q.reserveIndex; i++ {
		slot := &q.slots[i]
		if slot.state == stateFlushed {
			if slot.completion != nil {
				callbacks = append(callbacks, slot.completion)
				slot.completion = nil
			}
		}
		slot.state = stateCompleted
	}
	q.completedCount = q.reserveIndex
	q.mu.Unlock()

	for _, cb := range callbacks {
		cb(nil, nil)
	}
}

// failAll invokes Err(cause) on every entry in [completedCount,
// reserveIndex) not yet Completed, in XID order, and returns the number
// failed.
func (q *OutboundQueue) failAll(cause error) uint32 {
	q.mu.Lock()
	var callbacks []CompletionFunc
	var count uint32
	for i := q.completedCount; i < q.reserveIndex; i++ {
		slot := &q.slots[i]
		if slot.state == stateCompleted {
			continue
		}
		if slot.completion != nil {
			callbacks = append(callbacks, slot.completion)
			slot.completion = nil
		}
		slot.state = stateCompleted
		count++
	}
	q.completedCount = q.reserveIndex
	q.mu.Unlock()

	for _, cb := range callbacks {
		cb(nil, cause)
	}

	return count
}

// IsEmpty reports whether every committed entry has already been flushed.
func (q *OutboundQueue) IsEmpty() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flushIndex == q.commitIndex
}

// IsFlushed reports whether this generation has emitted every reserved
// slot it will ever have.
func (q *OutboundQueue) IsFlushed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.flushIndex == q.capacity
}

// IsFinished reports whether no response is expected from this generation
// anymore.
func (q *OutboundQueue) IsFinished() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.completedCount == q.reserveIndex
}
