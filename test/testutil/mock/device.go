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

package mock

import (
	"net"
	"strconv"
	"sync"
	"time"

	"kinetic/pkg/glog"
	"kinetic/pkg/proto"
	"kinetic/pkg/sec"
)

// Device is an in-process stand-in for a Kinetic drive. It listens on a
// loopback port, checks request HMACs against its key store and keeps
// entries in memory.
type Device struct {
	listener net.Listener
	keys     *sec.KeyStore

	mtx      sync.Mutex
	info     MockInfo
	store    map[string]*entry
	requests []Request
	conns    map[net.Conn]struct{}

	shutdown chan struct{}
	wg       sync.WaitGroup
}

// NewDevice starts a device accepting connections on 127.0.0.1 at a port
// chosen by the system.
func NewDevice(keys *sec.KeyStore) (*Device, error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, err
	}
	d := &Device{
		listener: ln,
		keys:     keys,
		store:    make(map[string]*entry),
		conns:    make(map[net.Conn]struct{}),
		shutdown: make(chan struct{}),
	}
	d.wg.Add(1)
	go d.acceptLoop()
	glog.Infof("mock device listening on %s", ln.Addr())
	return d, nil
}

// NewDeviceWithKey starts a device knowing a single identity.
func NewDeviceWithKey(identity int64, key []byte) (*Device, error) {
	ks := sec.NewKeyStore()
	if err := ks.Add(identity, key); err != nil {
		return nil, err
	}
	return NewDevice(ks)
}

func (d *Device) Addr() string {
	return d.listener.Addr().String()
}

func (d *Device) Host() string {
	host, _, _ := net.SplitHostPort(d.Addr())
	return host
}

func (d *Device) Port() int {
	_, port, _ := net.SplitHostPort(d.Addr())
	p, _ := strconv.Atoi(port)
	return p
}

func (d *Device) SetMockInfo(info MockInfo) {
	d.mtx.Lock()
	d.info = info
	d.mtx.Unlock()
}

// Reset clears the mock info, the store and the request log.
func (d *Device) Reset() {
	d.mtx.Lock()
	d.info = MockInfo{}
	d.store = make(map[string]*entry)
	d.requests = nil
	d.mtx.Unlock()
}

// Requests returns the requests received so far, in order.
func (d *Device) Requests() []Request {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return append([]Request(nil), d.requests...)
}

// Store puts an entry directly into the device store.
func (d *Device) Store(key []byte, value []byte, version []byte) {
	d.mtx.Lock()
	d.store[string(key)] = &entry{
		value:   append([]byte{}, value...),
		version: append([]byte{}, version...),
	}
	d.mtx.Unlock()
}

// Lookup returns the stored value and version of key.
func (d *Device) Lookup(key []byte) (value []byte, version []byte, ok bool) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	var e *entry
	if e, ok = d.store[string(key)]; ok {
		value, version = e.value, e.version
	}
	return
}

// Shutdown stops accepting, closes every open connection and waits for
// the connection handlers to exit.
func (d *Device) Shutdown() {
	select {
	case <-d.shutdown:
		return
	default:
	}
	close(d.shutdown)
	d.listener.Close()
	d.mtx.Lock()
	for c := range d.conns {
		c.Close()
	}
	d.mtx.Unlock()
	d.wg.Wait()
}

func (d *Device) acceptLoop() {
	defer d.wg.Done()
	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
			default:
				glog.Warningf("mock device accept: %s", err)
			}
			return
		}
		d.mtx.Lock()
		select {
		case <-d.shutdown:
			d.mtx.Unlock()
			conn.Close()
			return
		default:
		}
		d.conns[conn] = struct{}{}
		d.mtx.Unlock()
		d.wg.Add(1)
		go d.serve(conn)
	}
}

func (d *Device) serve(conn net.Conn) {
	defer d.wg.Done()
	defer func() {
		conn.Close()
		d.mtx.Lock()
		delete(d.conns, conn)
		d.mtx.Unlock()
	}()
	for {
		req, err := proto.ReadPDU(conn)
		if err != nil {
			if glog.LOG_DEBUG {
				glog.Debugf("mock device connection %s: %s", conn.RemoteAddr(), err)
			}
			return
		}
		resp, value, info := d.process(req)
		if info != nil {
			if info.Delay > 0 {
				select {
				case <-time.After(info.Delay):
				case <-d.shutdown:
					return
				}
			}
			if info.NoResponse {
				continue
			}
		}
		pdu, err := proto.NewPDU(resp, value)
		if err != nil {
			glog.Errorf("mock device response: %s", err)
			return
		}
		if _, err = pdu.Write(conn); err != nil {
			return
		}
	}
}
