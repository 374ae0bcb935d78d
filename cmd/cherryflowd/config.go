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

package main

import (
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/superkkt/viper"

	"github.com/superkkt/cherryflow/queue"
)

func initConfig() {
	viper.SetConfigFile(*defaultConfigFile)
	if err := viper.ReadInConfig(); err != nil {
		logger.Fatalf("failed to read the config file: %v", err)
	}

	// Ignore anything but WRITE to avoid reloading against a config file
	// that is still mid-write.
	viper.OnConfigChange(func(e fsnotify.Event) {
		if e.Op != fsnotify.Write {
			return
		}
		if loggerLeveled != nil {
			loggerLeveled.SetLevel(getLogLevel(viper.GetString("default.log_level")), "")
		}
	})
	viper.WatchConfig()

	if err := validateConfig(); err != nil {
		logger.Fatalf("failed to validate the configuration: %v", err)
	}
}

func validateConfig() error {
	if port := viper.GetInt("default.port"); port <= 0 || port > 0xFFFF {
		return errors.New("invalid default.port")
	}
	if len(viper.GetString("default.log_level")) == 0 {
		return errors.New("invalid default.log_level")
	}
	if viper.GetInt("queue.size") <= 0 {
		return errors.New("invalid queue.size")
	}
	if viper.GetInt("queue.max_barrier_ms") <= 0 {
		return errors.New("invalid queue.max_barrier_ms")
	}

	return nil
}

// loadQueueConfig builds the outbound queue tuning every Session shares
// from the [queue] section of the config file.
func loadQueueConfig() queue.Config {
	return queue.Config{
		QueueSize:       uint32(viper.GetInt("queue.size")),
		MaxBarrierNanos: int64(time.Duration(viper.GetInt("queue.max_barrier_ms")) * time.Millisecond),
	}
}
