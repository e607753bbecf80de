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
	"net"
	"time"

	"kinetic/pkg/errors"
	"kinetic/pkg/glog"
	"kinetic/pkg/io"
	"kinetic/pkg/proto"
	"kinetic/pkg/stats"
	"kinetic/pkg/util"
)

var (
	commandBufferPool = util.NewSyncBufferPool(proto.PDUProtoMaxLen)
	valueBufferPool   = util.NewSyncBufferPool(proto.PDUValueMaxLen)
)

// Connection is one session with a device. It is not safe for concurrent
// use: exactly one operation may be outstanding at a time. Independent
// Connections share no state.
type Connection struct {
	config       Config
	conn         *net.TCPConn
	fd           int
	connectionID int64
	sequence     int64

	commandBuf *util.ByteBuffer
	valueBuf   *util.ByteBuffer
}

// newConnection returns a disconnected Connection holding its own copy of
// cfg, secret included.
func newConnection(cfg *Config) *Connection {
	c := &Connection{config: *cfg, fd: -1}
	c.config.HmacKey = append(Secret(nil), cfg.HmacKey...)
	c.config.IO.SetDefaultIfNotDefined()
	return c
}

// Connect validates cfg, opens a session and returns it. Nothing is
// returned on failure.
func Connect(cfg *Config) (*Connection, error) {
	c := newConnection(cfg)
	if err := c.Connect(); err != nil {
		return nil, err
	}
	return c, nil
}

// Connect opens the socket of a disconnected Connection. The connection id
// is set to the current time in seconds and the sequence restarts at 0. It
// is a no-op on a connected Connection.
func (c *Connection) Connect() error {
	if c.IsConnected() {
		return nil
	}
	if err := c.config.validate(); err != nil {
		glog.Errorf("invalid client config: %s", err)
		return errors.Wrap(err, "invalid client config", errors.KErrConfig)
	}
	conn, err := io.Connect(c.config.Endpoint(), c.config.NonBlocking, c.config.IO.ConnectTimeout.Duration)
	stats.RecordConnect(err == nil)
	if err != nil {
		c.fd = -1
		return err
	}
	c.conn = conn
	c.fd = io.SocketDescriptor(conn)
	c.connectionID = time.Now().Unix()
	c.sequence = 0
	c.commandBuf = commandBufferPool.Get()
	c.valueBuf = valueBufferPool.Get()
	glog.Infof("connected to %s:%d identity=%d connectionID=%d fd=%d",
		c.config.Host, c.config.Port, c.config.Identity, c.connectionID, c.fd)
	return nil
}

// Disconnect closes the socket if it is open. Calling it on a disconnected
// Connection does nothing.
func (c *Connection) Disconnect() {
	if c.conn == nil {
		return
	}
	io.Close(c.conn)
	glog.Infof("disconnected from %s:%d connectionID=%d sequence=%d",
		c.config.Host, c.config.Port, c.connectionID, c.sequence)
	c.conn = nil
	c.fd = -1
	commandBufferPool.Put(c.commandBuf)
	valueBufferPool.Put(c.valueBuf)
	c.commandBuf = nil
	c.valueBuf = nil
}

// Close is Disconnect with an error result, for use as an io.Closer.
func (c *Connection) Close() error {
	c.Disconnect()
	return nil
}

// NextHeader returns the header fields for the next request.
func (c *Connection) NextHeader() proto.Header {
	return proto.Header{
		ClusterVersion: c.config.ClusterVersion,
		Identity:       c.config.Identity,
		ConnectionID:   c.connectionID,
		Sequence:       c.sequence,
	}
}

func (c *Connection) advanceSequence() {
	c.sequence++
}

func (c *Connection) Sequence() int64 {
	return c.sequence
}

func (c *Connection) ConnectionID() int64 {
	return c.connectionID
}

// SocketDescriptor returns the descriptor of the open socket, or -1.
func (c *Connection) SocketDescriptor() int {
	return c.fd
}

func (c *Connection) IsConnected() bool {
	return c.conn != nil
}

// Config returns a copy of the connection configuration with the secret
// removed.
func (c *Connection) Config() Config {
	cfg := c.config
	cfg.HmacKey = nil
	return cfg
}

func (c *Connection) String() string {
	return fmt.Sprintf("%s:%d[id=%d seq=%d fd=%d]", c.config.Host, c.config.Port, c.connectionID, c.sequence, c.fd)
}
