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

package channel

import (
	"net"
	"testing"
	"time"
)

func TestStreamPeekDoesNotConsume(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go client.Write([]byte("hello"))

	s := NewStream(server, 64)

	peeked, err := s.Peek(5)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if string(peeked) != "hello" {
		t.Fatalf("expected %q, got %q", "hello", peeked)
	}

	read, err := s.ReadN(5)
	if err != nil {
		t.Fatalf("readn: %v", err)
	}
	if string(read) != "hello" {
		t.Fatalf("expected ReadN to see the same bytes Peek saw, got %q", read)
	}
}

func TestStreamPeekReturnsACopy(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go client.Write([]byte("abc"))

	s := NewStream(server, 64)
	peeked, err := s.Peek(3)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	peeked[0] = 'z'

	read, err := s.ReadN(3)
	if err != nil {
		t.Fatalf("readn: %v", err)
	}
	if string(read) != "abc" {
		t.Fatalf("mutating the peeked slice corrupted the stream's internal buffer: got %q", read)
	}
}

func TestStreamReadTimeout(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := NewStream(server, 64)
	s.SetReadTimeout(10 * time.Millisecond)

	if _, err := s.ReadN(1); err == nil {
		t.Fatal("expected a timeout error when nothing is written")
	}
}

func TestStreamLastReadLastWrite(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	s := NewStream(server, 64)
	if !s.LastRead().IsZero() || !s.LastWrite().IsZero() {
		t.Fatal("expected zero timestamps before any I/O")
	}

	go client.Write([]byte("x"))
	if _, err := s.ReadN(1); err != nil {
		t.Fatalf("readn: %v", err)
	}
	if s.LastRead().IsZero() {
		t.Fatal("expected LastRead to be set after a successful ReadN")
	}

	go func() {
		buf := make([]byte, 1)
		client.Read(buf)
	}()
	if _, err := s.Write([]byte("y")); err != nil {
		t.Fatalf("write: %v", err)
	}
	if s.LastWrite().IsZero() {
		t.Fatal("expected LastWrite to be set after a successful Write")
	}
}
