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
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/superkkt/go-logging"
	"github.com/superkkt/viper"

	"github.com/superkkt/cherryflow/log"
	"github.com/superkkt/cherryflow/network"
)

const (
	programName     = "cherryflowd"
	programVersion  = "0.1.0"
	defaultLogLevel = logging.INFO
)

var (
	logger            = logging.MustGetLogger("main")
	loggerLeveled     logging.LeveledBackend
	showVersion       = flag.Bool("version", false, "Show program version and exit")
	defaultConfigFile = flag.String("config", fmt.Sprintf("/usr/local/etc/%v.yaml", programName), "absolute path of the configuration file")
)

func main() {
	runtime.GOMAXPROCS(runtime.NumCPU())
	flag.Parse()
	if *showVersion {
		fmt.Printf("Version: %v\n", programVersion)
		os.Exit(0)
	}

	initConfig()
	if err := initLog(getLogLevel(viper.GetString("default.log_level"))); err != nil {
		logger.Fatalf("failed to init log: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	controller := network.NewController(loadQueueConfig())

	initSignalHandler(controller, cancel)

	if err := controller.ListenAndServe(ctx, viper.GetInt("default.port")); err != nil {
		logger.Fatalf("controller stopped: %v", err)
	}
}

func initLog(level logging.Level) error {
	backend, err := log.NewSyslog(programName)
	if err != nil {
		return err
	}
	formatted := logging.NewBackendFormatter(backend, logging.MustStringFormatter(`%{level}: %{shortpkg}.%{shortfunc}: %{message}`))

	loggerLeveled = logging.AddModuleLevel(formatted)
	loggerLeveled.SetLevel(level, "")
	logging.SetBackend(loggerLeveled)

	return nil
}

func getLogLevel(level string) logging.Level {
	level = strings.ToUpper(level)
	ret, err := logging.LogLevel(level)
	if err != nil {
		logger.Infof("invalid log level=%v, defaulting to %v..", level, defaultLogLevel)
		return defaultLogLevel
	}

	return ret
}

func initSignalHandler(controller *network.Controller, cancel context.CancelFunc) {
	go func() {
		c := make(chan os.Signal, 5)
		signal.Notify(c)

		for {
			s := <-c
			switch s {
			case syscall.SIGTERM, syscall.SIGINT:
				logger.Warning("shutting down...")
				cancel()
				time.Sleep(5 * time.Second)
				os.Exit(0)
			case syscall.SIGHUP:
				fmt.Println("* Controller status:")
				fmt.Println(controller.String())
			}
		}
	}()
}
