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

// Package client implements a session with a Kinetic device and the
// operations carried over it.
package client

import (
	"fmt"
	"io"

	"kinetic/pkg/proto"
)

type KeyValue = proto.KeyValue

// IClient is the operation interface of a session.
//
// Every operation returns a non-nil Response. The error is non-nil when the
// operation could not be carried out: it was rejected before anything was
// sent (Status NOT_ATTEMPTED), or the exchange failed in transport or in
// framing (Status INTERNAL_ERROR). A response that fails authentication, or
// whose status is set by the device, comes with a nil error; use
// Response.Err to turn the status into an error.
type IClient interface {
	NoOp() (*Response, error)
	Put(kv *KeyValue, value []byte) (*Response, error)
	Get(kv *KeyValue, buf []byte) (*Response, error)
	Delete(kv *KeyValue) (*Response, error)
	Disconnect()
}

var _ IClient = (*Connection)(nil)

type Response struct {
	Status        proto.StatusCode
	StatusMessage string
	// decoded response, nil when none was received
	Message  *proto.Message
	KeyValue *KeyValue
	// Value of a get. It is a slice of the buffer passed to Get when that
	// buffer is large enough (InCallerBuffer is true), otherwise newly
	// allocated. It never aliases connection memory.
	Value          []byte
	InCallerBuffer bool
}

// Err returns nil on SUCCESS and the sentinel error of the status otherwise.
func (r *Response) Err() error {
	return StatusError(r.Status)
}

func (r *Response) PrettyPrint(w io.Writer) {
	fmt.Fprintf(w, "Status\t\t: %s\n", r.Status)
	if r.StatusMessage != "" {
		fmt.Fprintf(w, "StatusMessage\t: %s\n", r.StatusMessage)
	}
	if kv := r.KeyValue; kv != nil {
		if kv.DBVersion != nil {
			fmt.Fprintf(w, "DBVersion\t: %q\n", kv.DBVersion)
		}
		if kv.Tag != nil {
			fmt.Fprintf(w, "Tag\t\t: %X\n", kv.Tag)
		}
		if kv.Algorithm != proto.AlgorithmNone {
			fmt.Fprintf(w, "Algorithm\t: %s\n", kv.Algorithm)
		}
	}
	if r.Value != nil {
		fmt.Fprintf(w, "ValueLength\t: %d\n", len(r.Value))
	}
}

// NoOp sends a request with an empty body.
func (c *Connection) NoOp() (*Response, error) {
	return c.execute(&request{op: "noop", msgType: proto.MessageTypeNoop})
}

// Put stores value under kv.Key. kv.DBVersion is the version expected on
// the device and kv.NewVersion the one to store, unless kv.Force is set.
func (c *Connection) Put(kv *KeyValue, value []byte) (*Response, error) {
	return c.execute(&request{op: "put", msgType: proto.MessageTypePut, kv: kv, value: value})
}

// Get reads the entry of kv.Key. The value is read into buf when cap(buf)
// is enough to hold it. With kv.MetadataOnly set no value is transferred.
func (c *Connection) Get(kv *KeyValue, buf []byte) (*Response, error) {
	return c.execute(&request{op: "get", msgType: proto.MessageTypeGet, kv: kv, buf: buf})
}

// Delete removes the entry of kv.Key, checking kv.DBVersion unless kv.Force
// is set.
func (c *Connection) Delete(kv *KeyValue) (*Response, error) {
	return c.execute(&request{op: "delete", msgType: proto.MessageTypeDelete, kv: kv})
}
