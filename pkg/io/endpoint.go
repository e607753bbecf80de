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
	"fmt"
	"net"
	"strconv"
)

type ServiceEndpoint struct {
	Host    string
	Port    int
	Network string
}

func (p *ServiceEndpoint) Validate() (err error) {
	if len(p.Host) == 0 {
		err = fmt.Errorf("ServiceEndpoint.Host not specified")
	} else if p.Port < 0 || p.Port > 65535 {
		err = fmt.Errorf("ServiceEndpoint.Port %d out of range", p.Port)
	}
	return
}

func (p *ServiceEndpoint) GetNetwork() string {
	if p.Network == "" {
		return "tcp"
	}
	return p.Network
}

// Addr returns host:port, bracketing IPv6 literals.
func (p *ServiceEndpoint) Addr() string {
	return net.JoinHostPort(p.Host, strconv.Itoa(p.Port))
}

func (p *ServiceEndpoint) GetConnString() string {
	return p.GetNetwork() + ":" + p.Addr()
}

// SetFromConnString parses "host:port" or "host", keeping the current port
// when none is given.
func (p *ServiceEndpoint) SetFromConnString(connStr string) error {
	host, port, err := net.SplitHostPort(connStr)
	if err != nil {
		p.Host = connStr
		return nil
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return fmt.Errorf("invalid port in %q: %w", connStr, err)
	}
	p.Host = host
	p.Port = n
	return nil
}
