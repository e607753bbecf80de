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
	"fmt"
	"time"

	"kinetic/pkg/proto"
)

// MockInfo alters how the device answers. With MessageType left at 0 it
// applies to every request, otherwise only to requests of that type.
type MockInfo struct {
	MessageType proto.MessageType
	// Status replaces the outcome of the request when ForceStatus is set.
	Status      proto.StatusCode
	ForceStatus bool
	Delay       time.Duration
	NoResponse  bool
	CorruptHmac bool
	// Value is returned by get in place of the stored value.
	Value []byte
	// ValueOnMetadata sends the value for metadata only gets too.
	ValueOnMetadata bool
	AckOffset       int64
	// ResponseType, when non-zero, replaces the response message type.
	ResponseType proto.MessageType
}

func (m *MockInfo) appliesTo(t proto.MessageType) bool {
	return m.MessageType == 0 || m.MessageType == t
}

func (m *MockInfo) String() string {
	noRespStr := ""
	if m.NoResponse {
		noRespStr = " no response"
	}
	return fmt.Sprintf("type=%s,st=%s(%v),delay=%s,corrupt=%v,ack=%+d%s",
		m.MessageType, m.Status, m.ForceStatus, m.Delay, m.CorruptHmac, m.AckOffset, noRespStr)
}

// Request records the header of one received request.
type Request struct {
	ConnectionID int64
	Sequence     int64
	Identity     int64
	MessageType  proto.MessageType
	Key          []byte
	ValueLength  int
	HmacVerified bool
}

type entry struct {
	value     []byte
	version   []byte
	tag       []byte
	algorithm proto.Algorithm
}
