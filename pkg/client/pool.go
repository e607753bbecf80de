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
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/multierr"

	"kinetic/pkg/errors"
	"kinetic/pkg/glog"
)

// Pool is a caller owned registry of independent Connections addressed by
// small integer handles. Open takes the lowest free handle, starting at 1.
// A Pool may be shared between goroutines; the Connections it holds may
// not be used by more than one at a time.
type Pool struct {
	conns    *xsync.MapOf[int, *Connection]
	mtx      sync.Mutex
	maxConns int
}

// NewPool returns an empty pool. maxConns of 0 means no limit.
func NewPool(maxConns int) *Pool {
	return &Pool{
		conns:    xsync.NewMapOf[int, *Connection](),
		maxConns: maxConns,
	}
}

// Open connects with cfg and registers the session under a new handle.
func (p *Pool) Open(cfg *Config) (handle int, err error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	if p.maxConns > 0 && p.conns.Size() >= p.maxConns {
		return 0, errors.Wrap(fmt.Errorf("%d connections open", p.conns.Size()), "connection pool full", errors.KErrBusy)
	}
	var c *Connection
	if c, err = Connect(cfg); err != nil {
		return 0, err
	}
	handle = 1
	for {
		if _, used := p.conns.Load(handle); !used {
			break
		}
		handle++
	}
	p.conns.Store(handle, c)
	if glog.LOG_DEBUG {
		glog.Debugf("connection %s opened as handle %d", c, handle)
	}
	return handle, nil
}

func (p *Pool) Get(handle int) (*Connection, bool) {
	return p.conns.Load(handle)
}

// Close disconnects the session of handle and frees the handle.
func (p *Pool) Close(handle int) error {
	c, ok := p.conns.LoadAndDelete(handle)
	if !ok {
		return errors.NewError(fmt.Sprintf("no connection for handle %d", handle), errors.KErrNoConnection)
	}
	c.Disconnect()
	return nil
}

// CloseAll disconnects every session in the pool.
func (p *Pool) CloseAll() (err error) {
	p.conns.Range(func(handle int, _ *Connection) bool {
		err = multierr.Append(err, p.Close(handle))
		return true
	})
	return
}

func (p *Pool) Len() int {
	return p.conns.Size()
}
