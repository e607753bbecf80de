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
	"bytes"
	goerrors "errors"
	"net"
	"sync"
	"testing"
	"time"

	"kinetic/pkg/errors"
	"kinetic/pkg/proto"
	"kinetic/pkg/stats"
	"kinetic/test/testutil/mock"
)

var (
	testKey      = []byte("asdfasdf")
	testIdentity = int64(1)
)

func startDevice(t *testing.T) (*mock.Device, *Config) {
	t.Helper()
	d, err := mock.NewDeviceWithKey(testIdentity, testKey)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(d.Shutdown)

	cfg := &Config{}
	cfg.SetDefault()
	cfg.Host = d.Host()
	cfg.Port = d.Port()
	cfg.Identity = testIdentity
	cfg.HmacKey = Secret(testKey)
	cfg.IO.ReadWaitTimeout.Duration = 2 * time.Second
	return d, cfg
}

func connect(t *testing.T, cfg *Config) *Connection {
	t.Helper()
	c, err := Connect(cfg)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(c.Disconnect)
	return c
}

func TestNoOp(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	before := stats.RequestCount("noop", "SUCCESS")

	resp, err := c.NoOp()
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != proto.StatusSuccess || resp.Err() != nil {
		t.Errorf("status %s", resp.Status)
	}
	if c.Sequence() != 1 {
		t.Errorf("sequence %d", c.Sequence())
	}
	reqs := d.Requests()
	if len(reqs) != 1 {
		t.Fatalf("%d requests", len(reqs))
	}
	r := reqs[0]
	if r.Sequence != 0 || r.ConnectionID != c.ConnectionID() || r.Identity != testIdentity ||
		r.MessageType != proto.MessageTypeNoop || !r.HmacVerified {
		t.Errorf("request %+v", r)
	}
	if stats.RequestCount("noop", "SUCCESS") != before+1 {
		t.Error("operation not counted")
	}
}

func TestSequenceAdvancesPerOperation(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	const n = 5
	for i := 0; i < n; i++ {
		if c.NextHeader().Sequence != int64(i) {
			t.Fatalf("next header sequence %d, want %d", c.NextHeader().Sequence, i)
		}
		if _, err := c.NoOp(); err != nil {
			t.Fatal(err)
		}
	}
	if c.Sequence() != n {
		t.Errorf("sequence %d", c.Sequence())
	}
	for i, r := range d.Requests() {
		if r.Sequence != int64(i) {
			t.Errorf("request %d carried sequence %d", i, r.Sequence)
		}
	}
}

func TestPutGet(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)

	kv := &KeyValue{Key: []byte("my_key"), NewVersion: []byte("v1"), Synchronization: proto.SyncWriteThrough}
	resp, err := c.Put(kv, []byte("hello"))
	if err != nil || resp.Status != proto.StatusSuccess {
		t.Fatalf("put %s %v", resp.Status, err)
	}
	if value, version, ok := d.Lookup([]byte("my_key")); !ok || string(value) != "hello" || string(version) != "v1" {
		t.Fatalf("stored %q %q %v", value, version, ok)
	}

	buf := make([]byte, 0, 64)
	resp, err = c.Get(&KeyValue{Key: []byte("my_key")}, buf)
	if err != nil || resp.Status != proto.StatusSuccess {
		t.Fatalf("get %s %v", resp.Status, err)
	}
	if string(resp.Value) != "hello" || !resp.InCallerBuffer {
		t.Errorf("value %q in caller buffer %v", resp.Value, resp.InCallerBuffer)
	}
	if &buf[:1][0] != &resp.Value[0] {
		t.Error("value not read into the caller buffer")
	}
	if resp.KeyValue == nil || string(resp.KeyValue.DBVersion) != "v1" {
		t.Errorf("key value %+v", resp.KeyValue)
	}

	resp, err = c.Get(&KeyValue{Key: []byte("my_key")}, nil)
	if err != nil || string(resp.Value) != "hello" || resp.InCallerBuffer {
		t.Errorf("get into scratch: %q %v %v", resp.Value, resp.InCallerBuffer, err)
	}
	if c.Sequence() != 3 {
		t.Errorf("sequence %d", c.Sequence())
	}
}

func TestPutVersionCheck(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	d.Store([]byte("k"), []byte("v"), []byte("v1"))

	tests := []struct {
		name   string
		kv     *KeyValue
		status proto.StatusCode
	}{
		{"wrong version", &KeyValue{Key: []byte("k"), DBVersion: []byte("v0"), NewVersion: []byte("v2")}, proto.StatusVersionMismatch},
		{"missing version", &KeyValue{Key: []byte("k"), NewVersion: []byte("v2")}, proto.StatusVersionMismatch},
		{"matching version", &KeyValue{Key: []byte("k"), DBVersion: []byte("v1"), NewVersion: []byte("v2")}, proto.StatusSuccess},
		{"forced", &KeyValue{Key: []byte("k"), NewVersion: []byte("v3"), Force: true}, proto.StatusSuccess},
	}
	for _, tc := range tests {
		resp, err := c.Put(tc.kv, []byte("new"))
		if err != nil {
			t.Fatalf("%s: %s", tc.name, err)
		}
		if resp.Status != tc.status {
			t.Errorf("%s: got %s, want %s", tc.name, resp.Status, tc.status)
		}
	}
	if _, version, _ := d.Lookup([]byte("k")); string(version) != "v3" {
		t.Errorf("version %q", version)
	}
}

func TestGetNotFound(t *testing.T) {
	_, cfg := startDevice(t)
	c := connect(t, cfg)
	resp, err := c.Get(&KeyValue{Key: []byte("missing")}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != proto.StatusNotFound || resp.Err() != ErrNotFound || resp.Value != nil {
		t.Errorf("status %s value %q", resp.Status, resp.Value)
	}
}

func TestDelete(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	d.Store([]byte("k"), []byte("v"), []byte("v1"))

	tests := []struct {
		kv     *KeyValue
		status proto.StatusCode
	}{
		{&KeyValue{Key: []byte("k"), DBVersion: []byte("v9")}, proto.StatusVersionMismatch},
		{&KeyValue{Key: []byte("k"), DBVersion: []byte("v1")}, proto.StatusSuccess},
		{&KeyValue{Key: []byte("k"), Force: true}, proto.StatusNotFound},
	}
	for i, tc := range tests {
		resp, err := c.Delete(tc.kv)
		if err != nil {
			t.Fatal(err)
		}
		if resp.Status != tc.status {
			t.Errorf("%d: got %s, want %s", i, resp.Status, tc.status)
		}
	}
	if _, _, ok := d.Lookup([]byte("k")); ok {
		t.Error("entry still stored")
	}
}

func TestGetCorruptedHmac(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	d.Store([]byte("k"), []byte("secret value"), []byte("v1"))
	d.SetMockInfo(mock.MockInfo{CorruptHmac: true})

	buf := make([]byte, 0, 32)
	resp, err := c.Get(&KeyValue{Key: []byte("k")}, buf)
	if err != nil {
		t.Fatalf("hmac failure reported as %v", err)
	}
	if resp.Status != proto.StatusHmacFailure || resp.Value != nil || resp.KeyValue != nil {
		t.Errorf("status %s value %q", resp.Status, resp.Value)
	}
	if !bytes.Equal(buf[:cap(buf)], make([]byte, cap(buf))) {
		t.Errorf("unverified value written to the caller buffer: %q", buf[:cap(buf)])
	}
	if c.Sequence() != 1 {
		t.Errorf("sequence %d", c.Sequence())
	}
}

func TestRequestRejectedBeforeSend(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)

	tests := []struct {
		name  string
		kv    *KeyValue
		value []byte
		errno uint32
	}{
		{"value over cap", &KeyValue{Key: []byte("k")}, make([]byte, proto.PDUValueMaxLen+1), errors.KErrSizeLimit},
		{"key over cap", &KeyValue{Key: make([]byte, proto.MaxKeyLen+1)}, nil, errors.KErrSizeLimit},
		{"command over cap", &KeyValue{Key: []byte("k"), Tag: make([]byte, proto.PDUProtoMaxLen)}, nil, errors.KErrSizeLimit},
		{"empty key", &KeyValue{}, nil, errors.KErrConfig},
		{"no entry", nil, nil, errors.KErrConfig},
		{"bad algorithm", &KeyValue{Key: []byte("k"), Algorithm: proto.Algorithm(42)}, nil, errors.KErrConfig},
	}
	for _, tc := range tests {
		resp, err := c.Put(tc.kv, tc.value)
		if err == nil {
			t.Fatalf("%s: accepted", tc.name)
		}
		if resp.Status != proto.StatusNotAttempted {
			t.Errorf("%s: status %s", tc.name, resp.Status)
		}
		if errno, ok := errors.ErrNoOf(err); !ok || errno != tc.errno {
			t.Errorf("%s: errno %s", tc.name, errors.ErrNoName(errno))
		}
	}
	if c.Sequence() != 0 {
		t.Errorf("sequence %d", c.Sequence())
	}

	if _, err := c.NoOp(); err != nil {
		t.Fatal(err)
	}
	reqs := d.Requests()
	if len(reqs) != 1 || reqs[0].MessageType != proto.MessageTypeNoop || reqs[0].Sequence != 0 {
		t.Errorf("device saw %+v", reqs)
	}
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()
	return port
}

func TestConnectRefused(t *testing.T) {
	cfg := &Config{}
	cfg.SetDefault()
	cfg.Host = "127.0.0.1"
	cfg.Port = freePort(t)
	cfg.HmacKey = Secret(testKey)

	c, err := Connect(cfg)
	if c != nil || err == nil {
		t.Fatal("connect to a closed port succeeded")
	}
	if errno, _ := errors.ErrNoOf(err); errno != errors.KErrConnect {
		t.Errorf("errno %s", errors.ErrNoName(errno))
	}

	conn := newConnection(cfg)
	if conn.Connect() == nil {
		t.Fatal("connect succeeded")
	}
	if conn.IsConnected() || conn.SocketDescriptor() != -1 {
		t.Error("connection left open")
	}
}

func TestConnectInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		set  func(cfg *Config)
	}{
		{"empty host", func(cfg *Config) { cfg.Host = "" }},
		{"empty secret", func(cfg *Config) { cfg.HmacKey = nil }},
		{"long secret", func(cfg *Config) { cfg.HmacKey = make([]byte, proto.MaxKeyLen+1) }},
		{"bad port", func(cfg *Config) { cfg.Port = 70000 }},
	}
	for _, tc := range tests {
		cfg := &Config{}
		cfg.SetDefault()
		cfg.HmacKey = Secret(testKey)
		tc.set(cfg)
		_, err := Connect(cfg)
		if errno, ok := errors.ErrNoOf(err); !ok || errno != errors.KErrConfig {
			t.Errorf("%s: got %v", tc.name, err)
		}
	}
}

func TestConnectCopiesSecret(t *testing.T) {
	_, cfg := startDevice(t)
	key := append([]byte{}, testKey...)
	cfg.HmacKey = key
	c := connect(t, cfg)
	for i := range key {
		key[i] = 0
	}
	if resp, err := c.NoOp(); err != nil || resp.Status != proto.StatusSuccess {
		t.Errorf("noop after caller cleared the secret: %s %v", resp.Status, err)
	}
	if c.Config().HmacKey != nil {
		t.Error("Config exposes the secret")
	}
}

func TestMetadataOnlyGet(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	d.Store([]byte("k"), bytes.Repeat([]byte("x"), 100), []byte("v1"))

	resp, err := c.Get(&KeyValue{Key: []byte("k"), MetadataOnly: true}, make([]byte, 0, 128))
	if err != nil || resp.Status != proto.StatusSuccess {
		t.Fatalf("get %s %v", resp.Status, err)
	}
	if len(resp.Value) != 0 || string(resp.KeyValue.DBVersion) != "v1" {
		t.Errorf("value %d bytes version %q", len(resp.Value), resp.KeyValue.DBVersion)
	}

	d.SetMockInfo(mock.MockInfo{ValueOnMetadata: true})
	resp, err = c.Get(&KeyValue{Key: []byte("k"), MetadataOnly: true}, nil)
	var perr *proto.ProtocolError
	if !goerrors.As(err, &perr) || resp.Status != proto.StatusInternalError {
		t.Errorf("value on metadata only get: %s %v", resp.Status, err)
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	_, cfg := startDevice(t)
	c := connect(t, cfg)
	if c.SocketDescriptor() < 0 || !c.IsConnected() {
		t.Fatal("not connected")
	}
	c.Disconnect()
	c.Disconnect()
	if c.IsConnected() || c.SocketDescriptor() != -1 {
		t.Error("still connected")
	}
	resp, err := c.NoOp()
	if !goerrors.Is(err, errors.ErrNoConnection) || resp.Status != proto.StatusNotAttempted {
		t.Errorf("noop on closed connection: %s %v", resp.Status, err)
	}

	if err = c.Connect(); err != nil {
		t.Fatal(err)
	}
	if c.Sequence() != 0 || !c.IsConnected() {
		t.Errorf("reconnect: sequence %d", c.Sequence())
	}
}

func TestDeviceStatusPassThrough(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	tests := []struct {
		status    proto.StatusCode
		err       error
		retryable bool
	}{
		{proto.StatusNotAuthorized, ErrNotAuthorized, false},
		{proto.StatusServiceBusy, ErrServiceBusy, true},
		{proto.StatusNoSpace, ErrNoSpace, false},
		{proto.StatusExpired, ErrExpired, false},
		{proto.StatusNestedOperationErrors, ErrNestedOperationErrors, false},
	}
	for _, tc := range tests {
		d.SetMockInfo(mock.MockInfo{ForceStatus: true, Status: tc.status})
		resp, err := c.NoOp()
		if err != nil {
			t.Fatalf("%s: %s", tc.status, err)
		}
		if resp.Status != tc.status || resp.Err() != tc.err || IsRetryable(resp.Err()) != tc.retryable {
			t.Errorf("%s: got %s %v", tc.status, resp.Status, resp.Err())
		}
	}
}

func TestResponseHeaderMismatch(t *testing.T) {
	d, cfg := startDevice(t)
	c := connect(t, cfg)
	tests := []mock.MockInfo{
		{AckOffset: 1},
		{ResponseType: proto.MessageTypeGetResponse},
	}
	for _, info := range tests {
		d.SetMockInfo(info)
		resp, err := c.NoOp()
		if err != nil || resp.Status != proto.StatusVersionFailure {
			t.Errorf("%s: %s %v", info.String(), resp.Status, err)
		}
	}
	if c.Sequence() != int64(len(tests)) {
		t.Errorf("sequence %d", c.Sequence())
	}
}

func TestReadTimeout(t *testing.T) {
	d, cfg := startDevice(t)
	cfg.IO.ReadWaitTimeout.Duration = 100 * time.Millisecond
	c := connect(t, cfg)
	d.SetMockInfo(mock.MockInfo{NoResponse: true})

	resp, err := c.NoOp()
	if errno, _ := errors.ErrNoOf(err); errno != errors.KErrTimeout {
		t.Fatalf("got %v", err)
	}
	if resp.Status != proto.StatusInternalError || c.Sequence() != 1 {
		t.Errorf("status %s sequence %d", resp.Status, c.Sequence())
	}
}

func TestIndependentConnections(t *testing.T) {
	d, cfg := startDevice(t)
	const numConns, numOps = 4, 10
	var wg sync.WaitGroup
	errs := make(chan error, numConns)
	for i := 0; i < numConns; i++ {
		c := connect(t, cfg)
		wg.Add(1)
		go func(c *Connection) {
			defer wg.Done()
			for k := 0; k < numOps; k++ {
				if _, err := c.NoOp(); err != nil {
					errs <- err
					return
				}
			}
			if c.Sequence() != numOps {
				errs <- goerrors.New("sequence out of step")
			}
		}(c)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if n := len(d.Requests()); n != numConns*numOps {
		t.Errorf("device saw %d requests", n)
	}
}

func TestGetValueOutlivesConnection(t *testing.T) {
	d, cfg := startDevice(t)
	a := bytes.Repeat([]byte{'A'}, 64)
	d.Store([]byte("a"), a, []byte("v1"))
	d.Store([]byte("b"), bytes.Repeat([]byte{'B'}, 64), []byte("v1"))

	c1 := connect(t, cfg)
	resp, err := c1.Get(&KeyValue{Key: []byte("a")}, nil)
	if err != nil || resp.InCallerBuffer {
		t.Fatalf("get %v in caller buffer %v", err, resp.InCallerBuffer)
	}
	c1.Disconnect()

	c2 := connect(t, cfg)
	if _, err := c2.Get(&KeyValue{Key: []byte("b")}, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := c2.Get(&KeyValue{Key: []byte("b")}, make([]byte, 0, 8)); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(resp.Value, a) {
		t.Errorf("value of first connection changed to %q", resp.Value)
	}
}
