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

package io

import (
	"time"

	"kinetic/pkg/util"
)

var (
	DefaultConfig = Config{
		ConnectTimeout:   util.Duration{Duration: 5 * time.Second},
		ReadWaitTimeout:  util.Duration{Duration: 5 * time.Second},
		ReadTotalTimeout: util.Duration{Duration: 0},
	}
)

type (
	// Config holds the transport timeouts. ReadWaitTimeout bounds each wait
	// for incoming data; ReadTotalTimeout, when non-zero, bounds a whole
	// ReadExact call. Writes are not bounded.
	Config struct {
		ConnectTimeout   util.Duration `env:"CONNECT_TIMEOUT"`
		ReadWaitTimeout  util.Duration `env:"READ_WAIT_TIMEOUT"`
		ReadTotalTimeout util.Duration `env:"READ_TOTAL_TIMEOUT"`
	}
)

func (conf *Config) SetDefaultIfNotDefined() (set bool) {
	if conf.ConnectTimeout.Duration == 0 {
		set = true
		conf.ConnectTimeout = DefaultConfig.ConnectTimeout
	}
	if conf.ReadWaitTimeout.Duration == 0 {
		set = true
		conf.ReadWaitTimeout = DefaultConfig.ReadWaitTimeout
	}
	if conf.ReadTotalTimeout.Duration != 0 && conf.ReadTotalTimeout.Duration < conf.ReadWaitTimeout.Duration {
		set = true
		conf.ReadWaitTimeout = conf.ReadTotalTimeout
	}
	return
}
