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
	"time"

	"kinetic/pkg/errors"
	"kinetic/pkg/glog"
)

// Connect dials the endpoint. The descriptor is close-on-exec and SIGPIPE
// is never raised for it (both hold for every Go socket). On failure
// nothing is left open. nonBlocking is accepted for configuration parity;
// ReadExact and WriteExact block the caller either way.
func Connect(endpoint *ServiceEndpoint, nonBlocking bool, connectTimeout time.Duration) (conn *net.TCPConn, err error) {
	if err = endpoint.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid endpoint", errors.KErrConfig)
	}
	if glog.LOG_DEBUG {
		glog.DebugDepth(1, fmt.Sprintf("connecting to %s non_blocking=%v", endpoint.GetConnString(), nonBlocking))
	}

	dialer := net.Dialer{Timeout: connectTimeout}
	var c net.Conn
	if c, err = dialer.Dial(endpoint.GetNetwork(), endpoint.Addr()); err != nil {
		glog.ErrorDepth(1, fmt.Sprintf("fail to connect %s error: %s", endpoint.GetConnString(), err.Error()))
		return nil, errors.Wrap(err, "connect "+endpoint.Addr(), errors.KErrConnect)
	}
	tcpConn, ok := c.(*net.TCPConn)
	if !ok {
		c.Close()
		return nil, errors.NewError("connect "+endpoint.Addr()+": not a tcp connection", errors.KErrConnect)
	}
	if err = tcpConn.SetNoDelay(true); err != nil {
		tcpConn.Close()
		glog.ErrorDepth(1, fmt.Sprintf("fail to configure socket to %s error: %s", endpoint.GetConnString(), err.Error()))
		return nil, errors.Wrap(err, "configure socket", errors.KErrConnect)
	}
	if glog.LOG_DEBUG {
		glog.DebugDepth(1, fmt.Sprintf("connected to %s fd=%d", endpoint.GetConnString(), SocketDescriptor(tcpConn)))
	}
	return tcpConn, nil
}

// SocketDescriptor returns the OS descriptor of conn, or -1 when conn is nil
// or the descriptor cannot be obtained.
func SocketDescriptor(conn *net.TCPConn) int {
	if conn == nil {
		return -1
	}
	raw, err := conn.SyscallConn()
	if err != nil {
		return -1
	}
	fd := -1
	if err = raw.Control(func(s uintptr) { fd = int(s) }); err != nil {
		return -1
	}
	return fd
}

// Close closes conn if it is open. It is safe to call with nil.
func Close(conn net.Conn) {
	if conn == nil {
		glog.Debug("not connected so no cleanup needed")
		return
	}
	if err := conn.Close(); err != nil {
		glog.Warningf("error closing connection to %s: %s", conn.RemoteAddr(), err)
	} else if glog.LOG_DEBUG {
		glog.Debugf("closed connection to %s", conn.RemoteAddr())
	}
}
