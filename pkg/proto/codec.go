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

package proto

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Field numbers of the device message schema.
const (
	fieldMessageCommand protowire.Number = 1
	fieldMessageHmac    protowire.Number = 3

	fieldCommandHeader protowire.Number = 1
	fieldCommandBody   protowire.Number = 2
	fieldCommandStatus protowire.Number = 3

	fieldHeaderClusterVersion protowire.Number = 1
	fieldHeaderIdentity       protowire.Number = 2
	fieldHeaderConnectionID   protowire.Number = 3
	fieldHeaderSequence       protowire.Number = 4
	fieldHeaderAckSequence    protowire.Number = 6
	fieldHeaderMessageType    protowire.Number = 7
	fieldHeaderTimeout        protowire.Number = 9
	fieldHeaderEarlyExit      protowire.Number = 10

	fieldBodyKeyValue protowire.Number = 1

	fieldKVNewVersion      protowire.Number = 2
	fieldKVKey             protowire.Number = 3
	fieldKVDBVersion       protowire.Number = 4
	fieldKVTag             protowire.Number = 5
	fieldKVAlgorithm       protowire.Number = 6
	fieldKVMetadataOnly    protowire.Number = 7
	fieldKVForce           protowire.Number = 8
	fieldKVSynchronization protowire.Number = 9

	fieldStatusCode            protowire.Number = 1
	fieldStatusMessage         protowire.Number = 2
	fieldStatusDetailedMessage protowire.Number = 3
)

var (
	ErrBufferTooShort = &ProtocolError{"buffer too short"}
	ErrNoCommand      = &ProtocolError{"message has no command"}
)

func appendVarintField(b []byte, num protowire.Number, v uint64) []byte {
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBytesField(b []byte, num protowire.Number, v []byte) []byte {
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendEnum(b []byte, num protowire.Number, v int32) []byte {
	return appendVarintField(b, num, uint64(int64(v)))
}

func (h *Header) marshal(b []byte) []byte {
	b = appendVarintField(b, fieldHeaderClusterVersion, uint64(h.ClusterVersion))
	b = appendVarintField(b, fieldHeaderIdentity, uint64(h.Identity))
	b = appendVarintField(b, fieldHeaderConnectionID, uint64(h.ConnectionID))
	b = appendVarintField(b, fieldHeaderSequence, uint64(h.Sequence))
	if h.hasAckSequence {
		b = appendVarintField(b, fieldHeaderAckSequence, uint64(h.AckSequence))
	}
	if h.hasMessageType {
		b = appendEnum(b, fieldHeaderMessageType, int32(h.MessageType))
	}
	if h.Timeout != 0 {
		b = appendVarintField(b, fieldHeaderTimeout, uint64(h.Timeout))
	}
	if h.EarlyExit {
		b = appendVarintField(b, fieldHeaderEarlyExit, protowire.EncodeBool(true))
	}
	return b
}

func (kv *KeyValue) marshal(b []byte) []byte {
	if kv.NewVersion != nil {
		b = appendBytesField(b, fieldKVNewVersion, kv.NewVersion)
	}
	if kv.Key != nil {
		b = appendBytesField(b, fieldKVKey, kv.Key)
	}
	if kv.DBVersion != nil {
		b = appendBytesField(b, fieldKVDBVersion, kv.DBVersion)
	}
	if kv.Tag != nil {
		b = appendBytesField(b, fieldKVTag, kv.Tag)
	}
	if kv.Algorithm != AlgorithmNone {
		b = appendEnum(b, fieldKVAlgorithm, int32(kv.Algorithm))
	}
	if kv.MetadataOnly {
		b = appendVarintField(b, fieldKVMetadataOnly, protowire.EncodeBool(true))
	}
	if kv.Force {
		b = appendVarintField(b, fieldKVForce, protowire.EncodeBool(true))
	}
	if kv.Synchronization != SyncNone {
		b = appendEnum(b, fieldKVSynchronization, int32(kv.Synchronization))
	}
	return b
}

func (s *Status) marshal(b []byte) []byte {
	if s.hasCode {
		b = appendEnum(b, fieldStatusCode, int32(s.Code))
	}
	if s.StatusMessage != "" {
		b = protowire.AppendTag(b, fieldStatusMessage, protowire.BytesType)
		b = protowire.AppendString(b, s.StatusMessage)
	}
	if s.DetailedMessage != nil {
		b = appendBytesField(b, fieldStatusDetailedMessage, s.DetailedMessage)
	}
	return b
}

// Marshal serializes the command.
func (c *Command) Marshal() []byte {
	var b []byte
	if c.Header != nil {
		b = appendBytesField(b, fieldCommandHeader, c.Header.marshal(nil))
	}
	if c.Body != nil {
		var body []byte
		if c.Body.KeyValue != nil {
			body = appendBytesField(body, fieldBodyKeyValue, c.Body.KeyValue.marshal(nil))
		}
		b = appendBytesField(b, fieldCommandBody, body)
	}
	if c.Status != nil {
		b = appendBytesField(b, fieldCommandStatus, c.Status.marshal(nil))
	}
	if b == nil {
		b = []byte{}
	}
	return b
}

// Marshal serializes the envelope. The command is sealed first if it has
// not been.
func (m *Message) Marshal() ([]byte, error) {
	if m.commandBytes == nil {
		if _, err := m.SealCommand(); err != nil {
			return nil, err
		}
	}
	b := make([]byte, 0, len(m.commandBytes)+len(m.Hmac)+12)
	b = appendBytesField(b, fieldMessageCommand, m.commandBytes)
	if m.Hmac != nil {
		b = appendBytesField(b, fieldMessageHmac, m.Hmac)
	}
	return b, nil
}

type fieldHandler func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

// consumeFields walks the fields of one message. A handler returning 0
// bytes consumed leaves the field to be skipped as unknown.
func consumeFields(b []byte, f fieldHandler) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
		m, err := f(num, typ, b)
		if err != nil {
			return err
		}
		if m == 0 {
			m = protowire.ConsumeFieldValue(num, typ, b)
		}
		if m < 0 {
			return protowire.ParseError(m)
		}
		b = b[m:]
	}
	return nil
}

func wireTypeError(num protowire.Number, typ protowire.Type) error {
	return fmt.Errorf("field %d: unexpected wire type %d", num, typ)
}

func consumeVarint(num protowire.Number, typ protowire.Type, b []byte) (uint64, int, error) {
	if typ != protowire.VarintType {
		return 0, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return 0, 0, protowire.ParseError(n)
	}
	return v, n, nil
}

func consumeBytes(num protowire.Number, typ protowire.Type, b []byte) ([]byte, int, error) {
	if typ != protowire.BytesType {
		return nil, 0, wireTypeError(num, typ)
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return nil, 0, protowire.ParseError(n)
	}
	return append([]byte{}, v...), n, nil
}

func (h *Header) unmarshal(raw []byte) error {
	return consumeFields(raw, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var v uint64
		switch num {
		case fieldHeaderClusterVersion:
			v, n, err = consumeVarint(num, typ, b)
			h.ClusterVersion = int64(v)
		case fieldHeaderIdentity:
			v, n, err = consumeVarint(num, typ, b)
			h.Identity = int64(v)
		case fieldHeaderConnectionID:
			v, n, err = consumeVarint(num, typ, b)
			h.ConnectionID = int64(v)
		case fieldHeaderSequence:
			v, n, err = consumeVarint(num, typ, b)
			h.Sequence = int64(v)
		case fieldHeaderAckSequence:
			v, n, err = consumeVarint(num, typ, b)
			h.SetAckSequence(int64(v))
		case fieldHeaderMessageType:
			v, n, err = consumeVarint(num, typ, b)
			h.SetMessageType(MessageType(int32(v)))
		case fieldHeaderTimeout:
			v, n, err = consumeVarint(num, typ, b)
			h.Timeout = int64(v)
		case fieldHeaderEarlyExit:
			v, n, err = consumeVarint(num, typ, b)
			h.EarlyExit = protowire.DecodeBool(v)
		}
		return
	})
}

func (kv *KeyValue) unmarshal(raw []byte) error {
	return consumeFields(raw, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var v uint64
		switch num {
		case fieldKVNewVersion:
			kv.NewVersion, n, err = consumeBytes(num, typ, b)
		case fieldKVKey:
			kv.Key, n, err = consumeBytes(num, typ, b)
		case fieldKVDBVersion:
			kv.DBVersion, n, err = consumeBytes(num, typ, b)
		case fieldKVTag:
			kv.Tag, n, err = consumeBytes(num, typ, b)
		case fieldKVAlgorithm:
			v, n, err = consumeVarint(num, typ, b)
			kv.Algorithm = Algorithm(int32(v))
		case fieldKVMetadataOnly:
			v, n, err = consumeVarint(num, typ, b)
			kv.MetadataOnly = protowire.DecodeBool(v)
		case fieldKVForce:
			v, n, err = consumeVarint(num, typ, b)
			kv.Force = protowire.DecodeBool(v)
		case fieldKVSynchronization:
			v, n, err = consumeVarint(num, typ, b)
			kv.Synchronization = Synchronization(int32(v))
		}
		return
	})
}

func (s *Status) unmarshal(raw []byte) error {
	return consumeFields(raw, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var v uint64
		var data []byte
		switch num {
		case fieldStatusCode:
			v, n, err = consumeVarint(num, typ, b)
			s.SetCode(StatusCode(int32(v)))
		case fieldStatusMessage:
			data, n, err = consumeBytes(num, typ, b)
			s.StatusMessage = string(data)
		case fieldStatusDetailedMessage:
			s.DetailedMessage, n, err = consumeBytes(num, typ, b)
		}
		return
	})
}

func (bd *Body) unmarshal(raw []byte) error {
	return consumeFields(raw, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		if num != fieldBodyKeyValue {
			return
		}
		var data []byte
		if data, n, err = consumeBytes(num, typ, b); err == nil {
			bd.KeyValue = &KeyValue{}
			err = bd.KeyValue.unmarshal(data)
		}
		return
	})
}

// Unmarshal replaces the content of c with the decoded command.
func (c *Command) Unmarshal(raw []byte) error {
	*c = Command{}
	return consumeFields(raw, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		var data []byte
		switch num {
		case fieldCommandHeader:
			if data, n, err = consumeBytes(num, typ, b); err == nil {
				c.Header = &Header{}
				err = c.Header.unmarshal(data)
			}
		case fieldCommandBody:
			if data, n, err = consumeBytes(num, typ, b); err == nil {
				c.Body = &Body{}
				err = c.Body.unmarshal(data)
			}
		case fieldCommandStatus:
			if data, n, err = consumeBytes(num, typ, b); err == nil {
				c.Status = &Status{}
				err = c.Status.unmarshal(data)
			}
		}
		return
	})
}

// DecodeMessage parses a serialized envelope. The command bytes are kept as
// received for HMAC verification. Malformed input yields an error and no
// message.
func DecodeMessage(raw []byte) (*Message, error) {
	msg := &Message{}
	err := consumeFields(raw, func(num protowire.Number, typ protowire.Type, b []byte) (n int, err error) {
		switch num {
		case fieldMessageCommand:
			msg.commandBytes, n, err = consumeBytes(num, typ, b)
		case fieldMessageHmac:
			msg.Hmac, n, err = consumeBytes(num, typ, b)
		}
		return
	})
	if err != nil {
		return nil, NewProtocolError(err)
	}
	if msg.commandBytes == nil {
		return nil, ErrNoCommand
	}
	cmd := &Command{}
	if err = cmd.Unmarshal(msg.commandBytes); err != nil {
		return nil, NewProtocolError(err)
	}
	msg.Command = cmd
	return msg, nil
}
