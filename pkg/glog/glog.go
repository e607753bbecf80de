//
//  Copyright 2023 PayPal Inc.
//
//  Licensed to the Apache Software Foundation (ASF) under one or more
//  contributor license agreements.  See the NOTICE file distributed with
//  this work for additional information regarding copyright ownership.
//  The ASF licenses this file to You under the Apache License, Version 2.0
//  (the "License"); you may not use this file except in compliance with
//  the License.  You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
//  Unless required by applicable law or agreed to in writing, software
//  distributed under the License is distributed on an "AS IS" BASIS,
//  WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//  See the License for the specific language governing permissions and
//  limitations under the License.
//

// Package glog is a level-gated logger. Callers check the LOG_* flags
// before building expensive messages; the output goes through zap to stderr.
package glog

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Verbose bool

var (
	LOG_ERROR   Verbose = true
	LOG_WARN    Verbose = true
	LOG_INFO    Verbose = true
	LOG_DEBUG   Verbose = false
	LOG_VERBOSE Verbose = false

	mtx       sync.RWMutex
	level     = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	logger    *zap.Logger
	exitFunc  = os.Exit
	encodeFmt = "console"
)

func init() {
	logger = newLogger("", encodeFmt, zapcore.Lock(os.Stderr))
}

func newLogger(appName string, encoding string, ws zapcore.WriteSyncer) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	var enc zapcore.Encoder
	if encoding == "json" {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encCfg)
	}
	l := zap.New(zapcore.NewCore(enc, ws, level), zap.AddCaller(), zap.AddCallerSkip(1))
	if appName = strings.TrimSpace(appName); appName != "" {
		l = l.Named(appName)
	}
	return l
}

// InitLogging sets the log level ("error", "warning", "info", "debug" or
// "verbose", default info) and the name printed with every line.
func InitLogging(level string, appName string) {
	initLogging(level, appName, encodeFmt, zapcore.Lock(os.Stderr))
}

// InitLoggingTo is InitLogging with an explicit destination and encoding
// ("console" or "json").
func InitLoggingTo(level string, appName string, encoding string, ws zapcore.WriteSyncer) {
	initLogging(level, appName, encoding, ws)
}

func initLogging(lvl string, appName string, encoding string, ws zapcore.WriteSyncer) {
	var zlevel zapcore.Level

	LOG_ERROR, LOG_WARN, LOG_INFO, LOG_DEBUG, LOG_VERBOSE = true, true, true, false, false
	if strings.EqualFold("error", lvl) {
		zlevel = zapcore.ErrorLevel
		LOG_WARN, LOG_INFO = false, false
	} else if strings.EqualFold("warning", lvl) || strings.EqualFold("warn", lvl) {
		zlevel = zapcore.WarnLevel
		LOG_INFO = false
	} else if strings.EqualFold("debug", lvl) {
		zlevel = zapcore.DebugLevel
		LOG_DEBUG = true
	} else if strings.EqualFold("verbose", lvl) {
		zlevel = zapcore.DebugLevel
		LOG_DEBUG, LOG_VERBOSE = true, true
	} else { //default is info
		zlevel = zapcore.InfoLevel
	}
	level.SetLevel(zlevel)

	mtx.Lock()
	old := logger
	logger = newLogger(appName, encoding, ws)
	mtx.Unlock()
	old.Sync()
}

func get() *zap.Logger {
	mtx.RLock()
	l := logger
	mtx.RUnlock()
	return l
}

func depth(d int) *zap.Logger {
	if d <= 0 {
		return get()
	}
	return get().WithOptions(zap.AddCallerSkip(d))
}

func sprintln(args ...interface{}) string {
	return strings.TrimSuffix(fmt.Sprintln(args...), "\n")
}

// Finalize flushes buffered log lines.
func Finalize() {
	get().Sync()
}

func Info(args ...interface{}) {
	if LOG_INFO {
		get().Info(fmt.Sprint(args...))
	}
}

func InfoDepth(d int, args ...interface{}) {
	if LOG_INFO {
		depth(d).Info(fmt.Sprint(args...))
	}
}

func Infoln(args ...interface{}) {
	if LOG_INFO {
		get().Info(sprintln(args...))
	}
}

func Infof(format string, args ...interface{}) {
	if LOG_INFO {
		get().Info(fmt.Sprintf(format, args...))
	}
}

func Warning(args ...interface{}) {
	if LOG_WARN {
		get().Warn(fmt.Sprint(args...))
	}
}

func WarningDepth(d int, args ...interface{}) {
	if LOG_WARN {
		depth(d).Warn(fmt.Sprint(args...))
	}
}

func Warningln(args ...interface{}) {
	if LOG_WARN {
		get().Warn(sprintln(args...))
	}
}

func Warningf(format string, args ...interface{}) {
	if LOG_WARN {
		get().Warn(fmt.Sprintf(format, args...))
	}
}

func Error(args ...interface{}) {
	if LOG_ERROR {
		get().Error(fmt.Sprint(args...))
	}
}

func ErrorDepth(d int, args ...interface{}) {
	if LOG_ERROR {
		depth(d).Error(fmt.Sprint(args...))
	}
}

func Errorln(args ...interface{}) {
	if LOG_ERROR {
		get().Error(sprintln(args...))
	}
}

func Errorf(format string, args ...interface{}) {
	if LOG_ERROR {
		get().Error(fmt.Sprintf(format, args...))
	}
}

func Debug(args ...interface{}) {
	if LOG_DEBUG {
		get().Debug(fmt.Sprint(args...))
	}
}

func DebugDepth(d int, args ...interface{}) {
	if LOG_DEBUG {
		depth(d).Debug(fmt.Sprint(args...))
	}
}

func Debugln(args ...interface{}) {
	if LOG_DEBUG {
		get().Debug(sprintln(args...))
	}
}

func Debugf(format string, args ...interface{}) {
	if LOG_DEBUG {
		get().Debug(fmt.Sprintf(format, args...))
	}
}

func Verboseln(args ...interface{}) {
	if LOG_VERBOSE {
		get().Debug(sprintln(args...))
	}
}

func Verbosef(format string, args ...interface{}) {
	if LOG_VERBOSE {
		get().Debug(fmt.Sprintf(format, args...))
	}
}

// Exit logs at error level, flushes, and terminates the process with status 1.
func Exit(args ...interface{}) {
	l := get()
	l.Error(fmt.Sprint(args...))
	l.Sync()
	exitFunc(1)
}

func Exitf(format string, args ...interface{}) {
	l := get()
	l.Error(fmt.Sprintf(format, args...))
	l.Sync()
	exitFunc(1)
}
