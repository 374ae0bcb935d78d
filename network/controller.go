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

package network

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/superkkt/cherryflow/channel"
	"github.com/superkkt/cherryflow/queue"
)

// Controller accepts incoming switch connections and keeps track of every
// currently active Session.
type Controller struct {
	config queue.Config

	mu       sync.Mutex
	sessions map[*Session]struct{}
}

// NewController constructs a Controller whose sessions all share
// queueConfig as their outbound queue tuning.
func NewController(queueConfig queue.Config) *Controller {
	return &Controller{
		config:   queueConfig,
		sessions: make(map[*Session]struct{}),
	}
}

// ListenAndServe accepts connections on port until ctx is canceled.
func (c *Controller) ListenAndServe(ctx context.Context, port int) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%v", port))
	if err != nil {
		return err
	}
	defer listener.Close()

	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return nil
			default:
				logger.Errorf("failed to accept a new connection: %v", err)
				continue
			}
		}

		if v, ok := conn.(interface {
			SetKeepAlive(bool) error
			SetKeepAlivePeriod(time.Duration) error
		}); ok {
			if err := v.SetKeepAlive(true); err != nil {
				logger.Errorf("failed to enable keepalive for %v: %v", conn.RemoteAddr(), err)
			} else {
				v.SetKeepAlivePeriod(5 * time.Second)
			}
		}

		c.addConnection(conn)
	}
}

func (c *Controller) addConnection(netConn net.Conn) {
	logger.Infof("new connection from %v", netConn.RemoteAddr())

	session := newSession(c)
	conn := channel.NewConn(netConn, session)
	manager := queue.New(conn, session, c.config)
	session.bind(conn, manager)

	c.mu.Lock()
	c.sessions[session] = struct{}{}
	c.mu.Unlock()
}

func (c *Controller) removeSession(s *Session) {
	c.mu.Lock()
	delete(c.sessions, s)
	c.mu.Unlock()
}

// Sessions returns a snapshot of the currently active sessions.
func (c *Controller) Sessions() []*Session {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := make([]*Session, 0, len(c.sessions))
	for s := range c.sessions {
		v = append(v, s)
	}
	return v
}

func (c *Controller) String() string {
	sessions := c.Sessions()
	lines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		lines = append(lines, "  "+s.String())
	}
	return fmt.Sprintf("%v active session(s):\n%v", len(sessions), strings.Join(lines, "\n"))
}
