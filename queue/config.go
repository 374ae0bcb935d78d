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

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// defaultWorkTime is the default upper bound on a single flush
	// iteration before the manager relinquishes the event loop.
	defaultWorkTime = 100 * time.Microsecond

	// defaultWorktimeRecheckInterval is how many messages the flush loop
	// writes between wall-clock budget checks.
	defaultWorktimeRecheckInterval = 64

	// defaultQueueCacheCapacity is how many retired generations are kept
	// around for reuse before being thrown away.
	defaultQueueCacheCapacity = 4
)

// Config holds the immutable, per-manager tuning knobs for a
// QueueManager instance.
type Config struct {
	// QueueSize is the maximum number of non-barrier entries a generation
	// may hold. Generation capacity is QueueSize+1, the extra slot being
	// reserved for a trailing barrier.
	QueueSize uint32

	// MaxBarrierNanos upper-bounds the time between outgoing barriers.
	MaxBarrierNanos int64

	// MaxWorkTime is the flush-iteration work budget. Zero means
	// defaultWorkTime.
	MaxWorkTime time.Duration

	// WorktimeRecheckInterval is how many messages the flush loop writes
	// between checking MaxWorkTime. Zero means defaultWorktimeRecheckInterval.
	WorktimeRecheckInterval uint32

	// QueueCacheCapacity bounds the retired-generation reuse cache. Zero
	// means defaultQueueCacheCapacity.
	QueueCacheCapacity int
}

func (c Config) validate() error {
	if c.QueueSize == 0 {
		return errors.New("queue: QueueSize must be > 0")
	}
	if c.MaxBarrierNanos <= 0 {
		return errors.New("queue: MaxBarrierNanos must be > 0")
	}
	return nil
}

func (c Config) withDefaults() Config {
	if c.MaxWorkTime <= 0 {
		c.MaxWorkTime = defaultWorkTime
	}
	if c.WorktimeRecheckInterval == 0 {
		c.WorktimeRecheckInterval = defaultWorktimeRecheckInterval
	}
	if c.QueueCacheCapacity == 0 {
		c.QueueCacheCapacity = defaultQueueCacheCapacity
	}
	return c
}

func (c Config) capacity() uint32 {
	return c.QueueSize + 1
}
