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

// Package log adapts the standard syslog daemon log to a
// github.com/superkkt/go-logging Backend, so the rest of the program logs
// through the same leveled, module-aware logger regardless of where the
// bytes end up.
package log

import (
	"log/syslog"

	"github.com/superkkt/go-logging"
)

// Syslog is a logging.Backend that writes to the local syslog daemon under
// the given program tag.
type Syslog struct {
	writer *syslog.Writer
}

// NewSyslog opens a connection to the local syslog daemon tagged as
// programName.
func NewSyslog(programName string) (*Syslog, error) {
	w, err := syslog.New(syslog.LOG_INFO|syslog.LOG_DAEMON, programName)
	if err != nil {
		return nil, err
	}

	return &Syslog{writer: w}, nil
}

// Log implements logging.Backend.
func (s *Syslog) Log(level logging.Level, calldepth int, rec *logging.Record) error {
	message := rec.Formatted(calldepth + 1)

	switch level {
	case logging.CRITICAL, logging.ERROR:
		return s.writer.Err(message)
	case logging.WARNING:
		return s.writer.Warning(message)
	case logging.NOTICE:
		return s.writer.Notice(message)
	case logging.INFO:
		return s.writer.Info(message)
	default:
		return s.writer.Debug(message)
	}
}
