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
	"bytes"
	"testing"

	"google.golang.org/protobuf/encoding/protowire"
)

func TestPDUHeaderRoundTrip(t *testing.T) {
	tests := []struct {
		protoLen, valueLen int
	}{
		{0, 0},
		{1, 0},
		{17, 18},
		{255, 256},
		{65536, 1},
		{PDUProtoMaxLen, PDUValueMaxLen},
	}
	for _, tc := range tests {
		hdr, err := NewPDUHeader(tc.protoLen, tc.valueLen)
		if err != nil {
			t.Fatalf("(%d,%d): %s", tc.protoLen, tc.valueLen, err)
		}
		raw := hdr.Bytes()
		if len(raw) != PDUHeaderSize || raw[0] != 'F' {
			t.Fatalf("bad encoding % X", raw)
		}
		var decoded PDUHeader
		if err := decoded.Decode(raw); err != nil {
			t.Fatalf("decode: %s", err)
		}
		if decoded != hdr {
			t.Errorf("got %+v, want %+v", decoded, hdr)
		}
	}
}

func TestPDUHeaderNetworkOrder(t *testing.T) {
	if _, err := NewPDUHeader(0x01020304, 0); err == nil {
		t.Fatal("length over cap accepted")
	}
	hdr := PDUHeader{VersionPrefix: VersionPrefix, ProtobufLength: 0x0A0B, ValueLength: 0x0102}
	want := []byte{'F', 0, 0, 0x0A, 0x0B, 0, 0, 0x01, 0x02}
	if got := hdr.Bytes(); !bytes.Equal(got, want) {
		t.Errorf("got % X, want % X", got, want)
	}
}

func TestPDUHeaderDecodeReject(t *testing.T) {
	tests := []struct {
		name string
		raw  []byte
	}{
		{"short", []byte{'F', 0, 0, 0}},
		{"prefix", []byte{'G', 0, 0, 0, 1, 0, 0, 0, 0}},
		{"proto over cap", []byte{'F', 0, 0x10, 0, 1, 0, 0, 0, 0}},
		{"value over cap", []byte{'F', 0, 0, 0, 1, 0xFF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range tests {
		var h PDUHeader
		if err := h.Decode(tc.raw); err == nil {
			t.Errorf("%s: expected error", tc.name)
		}
	}
}

func newTestRequest() *Message {
	hdr := Header{ClusterVersion: 7, Identity: 1, ConnectionID: 1400000000, Sequence: 42}
	kv := &KeyValue{
		Key:             []byte("my_key"),
		NewVersion:      []byte("v2.0"),
		DBVersion:       []byte("v1.0"),
		Tag:             []byte("some_tag"),
		Algorithm:       AlgorithmSHA1,
		Synchronization: SyncWriteThrough,
		Force:           true,
	}
	return NewRequest(hdr, MessageTypePut, kv)
}

func TestMessageRoundTrip(t *testing.T) {
	req := newTestRequest()
	req.Command.Status = NewStatus(StatusInvalid)
	req.Command.Status.StatusMessage = "detail"
	copy(req.Hmac, bytes.Repeat([]byte{0xAB}, HmacMaxLen))

	raw, err := req.Marshal()
	if err != nil {
		t.Fatal(err)
	}
	msg, err := DecodeMessage(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(msg.CommandBytes(), req.CommandBytes()) {
		t.Error("command bytes differ")
	}
	if !bytes.Equal(msg.Hmac, req.Hmac) {
		t.Error("hmac differs")
	}
	h := msg.Header()
	if h.ClusterVersion != 7 || h.Identity != 1 || h.ConnectionID != 1400000000 || h.Sequence != 42 {
		t.Errorf("header %+v", h)
	}
	if !h.HasMessageType() || h.MessageType != MessageTypePut || h.HasAckSequence() {
		t.Errorf("message type %v ack %v", h.MessageType, h.HasAckSequence())
	}
	kv := msg.KeyValue()
	if string(kv.Key) != "my_key" || string(kv.DBVersion) != "v1.0" || string(kv.NewVersion) != "v2.0" ||
		kv.Algorithm != AlgorithmSHA1 || kv.Synchronization != SyncWriteThrough || !kv.Force || kv.MetadataOnly {
		t.Errorf("key value %+v", kv)
	}
	if msg.StatusCode() != StatusInvalid || msg.Command.Status.StatusMessage != "detail" {
		t.Errorf("status %v %q", msg.StatusCode(), msg.Command.Status.StatusMessage)
	}
}

func TestStatusAbsent(t *testing.T) {
	req := NewRequest(Header{}, MessageTypeNoop, nil)
	raw, _ := req.Marshal()
	msg, err := DecodeMessage(raw)
	if err != nil {
		t.Fatal(err)
	}
	if msg.StatusCode() != StatusInvalid {
		t.Errorf("got %v", msg.StatusCode())
	}
	if msg.KeyValue() != nil {
		t.Error("noop request has no key value")
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	req := NewRequest(Header{Sequence: 3}, MessageTypeGet, &KeyValue{Key: []byte("k")})
	raw, _ := req.Marshal()
	raw = protowire.AppendTag(raw, 99, protowire.BytesType)
	raw = protowire.AppendBytes(raw, []byte("ignored"))
	raw = protowire.AppendTag(raw, 100, protowire.VarintType)
	raw = protowire.AppendVarint(raw, 5)

	msg, err := DecodeMessage(raw)
	if err != nil {
		t.Fatal(err)
	}
	if msg.Header().Sequence != 3 || string(msg.KeyValue().Key) != "k" {
		t.Errorf("decoded %+v", msg.Command)
	}
}

func TestDecodeMalformed(t *testing.T) {
	raw, _ := newTestRequest().Marshal()
	tests := []struct {
		name string
		raw  []byte
	}{
		{"truncated", raw[:len(raw)-3]},
		{"no command", protowire.AppendBytes(protowire.AppendTag(nil, fieldMessageHmac, protowire.BytesType), []byte{1})},
		{"bad wire type", protowire.AppendVarint(protowire.AppendTag(nil, fieldMessageCommand, protowire.VarintType), 1)},
		{"garbage command", protowire.AppendBytes(protowire.AppendTag(nil, fieldMessageCommand, protowire.BytesType), []byte{0x0A, 0x7F})},
	}
	for _, tc := range tests {
		msg, err := DecodeMessage(tc.raw)
		if err == nil || msg != nil {
			t.Errorf("%s: expected failure, got %v %v", tc.name, msg, err)
		}
	}
}

func TestNewPDUSizeLimits(t *testing.T) {
	if _, err := NewPDU(newTestRequest(), make([]byte, 2*1024*1024)); err == nil {
		t.Error("oversize value accepted")
	}
	big := NewRequest(Header{}, MessageTypePut, &KeyValue{Key: make([]byte, PDUProtoMaxLen)})
	if _, err := NewPDU(big, nil); err == nil {
		t.Error("oversize command accepted")
	}
	p, err := NewPDU(newTestRequest(), []byte("value"))
	if err != nil {
		t.Fatal(err)
	}
	if int(p.Header.ProtobufLength) != len(p.Proto) || p.Header.ValueLength != 5 {
		t.Errorf("header %+v", p.Header)
	}
}

func TestPDUWriteRead(t *testing.T) {
	var buf bytes.Buffer
	p, _ := NewPDU(newTestRequest(), []byte("hello world"))
	n, err := p.Write(&buf)
	if err != nil || n != p.Len() {
		t.Fatalf("write %d %v", n, err)
	}
	if !bytes.Equal(buf.Bytes(), p.Bytes()) {
		t.Fatal("Write and Bytes disagree")
	}
	got, err := ReadPDU(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if string(got.Value) != "hello world" || got.Message.Header().Sequence != 42 {
		t.Errorf("read back %+v", got)
	}
}

func TestResponseType(t *testing.T) {
	tests := map[MessageType]MessageType{
		MessageTypeNoop:        MessageTypeNoopResponse,
		MessageTypePut:         MessageTypePutResponse,
		MessageTypeGet:         MessageTypeGetResponse,
		MessageTypeDelete:      MessageTypeDeleteResponse,
		MessageTypeGetResponse: MessageTypeInvalid,
	}
	for req, want := range tests {
		if got := req.ResponseType(); got != want {
			t.Errorf("%s: got %s, want %s", req, got, want)
		}
	}
	if StatusHmacFailure.String() != "HMAC_FAILURE" || StatusCode(99).String() != "INVALID" {
		t.Error("status names")
	}
}

func TestEncodePDU(t *testing.T) {
	value := []byte("some value")
	raw, err := EncodePDU(newTestRequest(), value)
	if err != nil {
		t.Fatal(err)
	}
	cmd, _ := newTestRequest().Marshal()
	if len(raw) != PDUHeaderSize+len(cmd)+len(value) {
		t.Fatalf("length %d", len(raw))
	}
	hdr, _ := NewPDUHeader(len(cmd), len(value))
	regions := []struct {
		name      string
		got, want []byte
	}{
		{"header", raw[:PDUHeaderSize], hdr.Bytes()},
		{"command", raw[PDUHeaderSize : PDUHeaderSize+len(cmd)], cmd},
		{"value", raw[PDUHeaderSize+len(cmd):], value},
	}
	for _, r := range regions {
		if !bytes.Equal(r.got, r.want) {
			t.Errorf("%s: got % X, want % X", r.name, r.got, r.want)
		}
	}
	if _, err := EncodePDU(newTestRequest(), make([]byte, PDUValueMaxLen+1)); err == nil {
		t.Error("oversize value encoded")
	}
}
