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

package client

import (
	"fmt"

	"kinetic/pkg/io"
	"kinetic/pkg/proto"
)

// Secret is a shared HMAC key. It decodes from TOML and the environment as
// text and never prints its content.
type Secret []byte

func (s *Secret) UnmarshalText(text []byte) error {
	*s = append(Secret(nil), text...)
	return nil
}

func (s *Secret) EnvDecode(val string) error {
	if val == "" {
		return nil
	}
	return s.UnmarshalText([]byte(val))
}

func (s Secret) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s Secret) String() string {
	if len(s) == 0 {
		return ""
	}
	return "******"
}

type Config struct {
	Host           string    `env:"HOST"`
	Port           int       `env:"PORT"`
	NonBlocking    bool      `env:"NON_BLOCKING"`
	ClusterVersion int64     `env:"CLUSTER_VERSION"`
	Identity       int64     `env:"IDENTITY"`
	HmacKey        Secret    `env:"HMAC_KEY"`
	Appname        string    `env:"APPNAME"`
	IO             io.Config
}

var defaultConfig = Config{
	Host:     "localhost",
	Port:     proto.DefaultPort,
	Identity: 1,
	Appname:  "kinetic",
	IO:       io.DefaultConfig,
}

func (c *Config) SetDefault() {
	*c = defaultConfig
	c.HmacKey = nil
}

// SetDefaultIfNotDefined fills the fields left at their zero value.
func (c *Config) SetDefaultIfNotDefined() {
	if c.Host == "" {
		c.Host = defaultConfig.Host
	}
	if c.Port == 0 {
		c.Port = defaultConfig.Port
	}
	if c.Identity == 0 {
		c.Identity = defaultConfig.Identity
	}
	if c.Appname == "" {
		c.Appname = defaultConfig.Appname
	}
	c.IO.SetDefaultIfNotDefined()
}

func (c *Config) Endpoint() *io.ServiceEndpoint {
	return &io.ServiceEndpoint{Host: c.Host, Port: c.Port}
}

func (c *Config) validate() error {
	if len(c.Host) == 0 {
		return fmt.Errorf("Config.Host not specified")
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("Config.Port %d out of range", c.Port)
	}
	if len(c.HmacKey) == 0 {
		return fmt.Errorf("Config.HmacKey not specified")
	}
	if len(c.HmacKey) > proto.MaxKeyLen {
		return fmt.Errorf("Config.HmacKey length %d exceeds %d", len(c.HmacKey), proto.MaxKeyLen)
	}
	return nil
}

func (c Config) String() string {
	return fmt.Sprintf("{Host:%s Port:%d NonBlocking:%v ClusterVersion:%d Identity:%d HmacKey:%s Appname:%s ConnectTimeout:%s ReadWaitTimeout:%s ReadTotalTimeout:%s}",
		c.Host, c.Port, c.NonBlocking, c.ClusterVersion, c.Identity, c.HmacKey, c.Appname,
		c.IO.ConnectTimeout.Duration, c.IO.ReadWaitTimeout.Duration, c.IO.ReadTotalTimeout.Duration)
}
