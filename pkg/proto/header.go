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
	"io"
)

/*
PDU header

	 Byte |     0     |  1  2  3  4  |  5  6  7  8  |
	------+-----------+--------------+--------------+
	    0 | prefix 'F'| proto length | value length |
	------+-----------+--------------+--------------+

Both lengths are big endian and capped at 1 MiB. The header is followed by
proto length bytes of serialized Message and value length bytes of value.
*/
type PDUHeader struct {
	VersionPrefix  byte
	ProtobufLength uint32
	ValueLength    uint32
}

// NewPDUHeader returns a header with the version prefix set.
func NewPDUHeader(protoLen int, valueLen int) (h PDUHeader, err error) {
	if protoLen < 0 || protoLen > PDUProtoMaxLen {
		err = &ProtocolError{fmt.Sprintf("protobuf length %d exceeds %d", protoLen, PDUProtoMaxLen)}
		return
	}
	if valueLen < 0 || valueLen > PDUValueMaxLen {
		err = &ProtocolError{fmt.Sprintf("value length %d exceeds %d", valueLen, PDUValueMaxLen)}
		return
	}
	h = PDUHeader{
		VersionPrefix:  VersionPrefix,
		ProtobufLength: uint32(protoLen),
		ValueLength:    uint32(valueLen),
	}
	return
}

// Encode writes the header into the first PDUHeaderSize bytes of raw.
func (h *PDUHeader) Encode(raw []byte) {
	if len(raw) < PDUHeaderSize {
		panic(fmt.Sprintf("pdu header buffer too short: %d", len(raw)))
	}
	raw[0] = h.VersionPrefix
	EncByteOrder.PutUint32(raw[1:5], h.ProtobufLength)
	EncByteOrder.PutUint32(raw[5:9], h.ValueLength)
}

func (h *PDUHeader) Bytes() []byte {
	var raw [PDUHeaderSize]byte
	h.Encode(raw[:])
	return raw[:]
}

// Decode parses a 9-byte header. Lengths over the caps and an unknown
// version prefix are rejected.
func (h *PDUHeader) Decode(raw []byte) error {
	if len(raw) < PDUHeaderSize {
		return ErrBufferTooShort
	}
	prefix := raw[0]
	protoLen := EncByteOrder.Uint32(raw[1:5])
	valueLen := EncByteOrder.Uint32(raw[5:9])

	if prefix != VersionPrefix {
		return &ProtocolError{fmt.Sprintf("unexpected version prefix %#x", prefix)}
	}
	if protoLen > PDUProtoMaxLen {
		return &ProtocolError{fmt.Sprintf("protobuf length %d exceeds %d", protoLen, PDUProtoMaxLen)}
	}
	if valueLen > PDUValueMaxLen {
		return &ProtocolError{fmt.Sprintf("value length %d exceeds %d", valueLen, PDUValueMaxLen)}
	}
	h.VersionPrefix = prefix
	h.ProtobufLength = protoLen
	h.ValueLength = valueLen
	return nil
}

func (h *PDUHeader) PrettyPrint(w io.Writer) {
	fmt.Fprintln(w, "PDU Header:")
	fmt.Fprintf(w, "  VersionPrefix\t: %c\n", h.VersionPrefix)
	fmt.Fprintf(w, "  ProtobufLength\t: %d\n", h.ProtobufLength)
	fmt.Fprintf(w, "  ValueLength\t: %d\n", h.ValueLength)
}
