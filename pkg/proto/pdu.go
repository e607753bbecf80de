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

// PDU is one framed unit on the wire: header, serialized envelope, value.
type PDU struct {
	Header  PDUHeader
	Message *Message
	Proto   []byte
	Value   []byte
}

// NewPDU serializes msg and frames it with value. Both regions are checked
// against the caps before anything is returned, so an oversize request never
// reaches the transport.
func NewPDU(msg *Message, value []byte) (*PDU, error) {
	if len(value) > PDUValueMaxLen {
		return nil, &ProtocolError{fmt.Sprintf("value length %d exceeds %d", len(value), PDUValueMaxLen)}
	}
	raw, err := msg.Marshal()
	if err != nil {
		return nil, err
	}
	hdr, err := NewPDUHeader(len(raw), len(value))
	if err != nil {
		return nil, err
	}
	return &PDU{Header: hdr, Message: msg, Proto: raw, Value: value}, nil
}

// EncodePDU returns header, envelope and value as one contiguous buffer.
func EncodePDU(msg *Message, value []byte) ([]byte, error) {
	p, err := NewPDU(msg, value)
	if err != nil {
		return nil, err
	}
	return p.Bytes(), nil
}

func (p *PDU) Len() int {
	return PDUHeaderSize + len(p.Proto) + len(p.Value)
}

func (p *PDU) Bytes() []byte {
	raw := make([]byte, PDUHeaderSize, p.Len())
	p.Header.Encode(raw)
	raw = append(raw, p.Proto...)
	return append(raw, p.Value...)
}

// Write writes the three regions of the PDU in order.
func (p *PDU) Write(w io.Writer) (n int, err error) {
	var k int
	for _, region := range [][]byte{p.Header.Bytes(), p.Proto, p.Value} {
		if len(region) == 0 {
			continue
		}
		k, err = w.Write(region)
		n += k
		if err != nil {
			return
		}
	}
	return
}

// ReadPDU reads one PDU from r with no timeout handling. The connection
// level deadline applies.
func ReadPDU(r io.Reader) (*PDU, error) {
	var raw [PDUHeaderSize]byte
	if _, err := io.ReadFull(r, raw[:]); err != nil {
		return nil, err
	}
	p := &PDU{}
	if err := p.Header.Decode(raw[:]); err != nil {
		return nil, err
	}
	p.Proto = make([]byte, p.Header.ProtobufLength)
	if _, err := io.ReadFull(r, p.Proto); err != nil {
		return nil, err
	}
	if p.Header.ValueLength > 0 {
		p.Value = make([]byte, p.Header.ValueLength)
		if _, err := io.ReadFull(r, p.Value); err != nil {
			return nil, err
		}
	}
	msg, err := DecodeMessage(p.Proto)
	if err != nil {
		return nil, err
	}
	p.Message = msg
	return p, nil
}
