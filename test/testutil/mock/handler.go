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
	"bytes"

	"kinetic/pkg/glog"
	"kinetic/pkg/proto"
	"kinetic/pkg/sec"
	"kinetic/pkg/util"
)

// process builds the response to req. info is the mock info in effect for
// the request, nil when none applies.
func (d *Device) process(req *proto.PDU) (resp *proto.Message, value []byte, info *MockInfo) {
	hdr := req.Message.Header()
	if hdr == nil {
		hdr = &proto.Header{}
	}
	key, known := d.keys.GetKey(hdr.Identity)
	verified := known && sec.Verify(req.Message, key)

	d.mtx.Lock()
	defer d.mtx.Unlock()

	rec := Request{
		ConnectionID: hdr.ConnectionID,
		Sequence:     hdr.Sequence,
		Identity:     hdr.Identity,
		MessageType:  hdr.MessageType,
		ValueLength:  len(req.Value),
		HmacVerified: verified,
	}
	kv := req.Message.KeyValue()
	if kv != nil {
		rec.Key = kv.Key
	}
	d.requests = append(d.requests, rec)
	if d.info.appliesTo(hdr.MessageType) {
		mi := d.info
		info = &mi
	}
	if glog.LOG_DEBUG {
		var k []byte
		if kv != nil {
			k = kv.Key
		}
		glog.Debugf("mock device: %s seq=%d key=%s verified=%v", hdr.MessageType, hdr.Sequence, util.ToPrintableAndHexString(k), verified)
	}

	var status proto.StatusCode
	var rkv *proto.KeyValue
	switch {
	case !verified:
		status = proto.StatusHmacFailure
	case hdr.MessageType == proto.MessageTypeNoop:
		status = proto.StatusSuccess
	case kv == nil || len(kv.Key) == 0:
		status = proto.StatusInvalidRequest
	case hdr.MessageType == proto.MessageTypePut:
		status = d.put(kv, req.Value)
	case hdr.MessageType == proto.MessageTypeGet:
		status, rkv, value = d.get(kv, info)
	case hdr.MessageType == proto.MessageTypeDelete:
		status = d.delete(kv)
	default:
		glog.Infof("mock device: unhandled message type %s", hdr.MessageType)
		status = proto.StatusInvalidRequest
	}

	rhdr := &proto.Header{
		ClusterVersion: hdr.ClusterVersion,
		ConnectionID:   hdr.ConnectionID,
	}
	rhdr.SetAckSequence(hdr.Sequence)
	rhdr.SetMessageType(hdr.MessageType.ResponseType())
	if info != nil {
		if info.ForceStatus {
			status = info.Status
			if status != proto.StatusSuccess {
				rkv, value = nil, nil
			}
		}
		if info.AckOffset != 0 {
			rhdr.SetAckSequence(hdr.Sequence + info.AckOffset)
		}
		if info.ResponseType != 0 {
			rhdr.SetMessageType(info.ResponseType)
		}
	}

	cmd := &proto.Command{Header: rhdr, Status: proto.NewStatus(status)}
	if rkv != nil {
		cmd.Body = &proto.Body{KeyValue: rkv}
	}
	resp = &proto.Message{Command: cmd}
	if err := sec.Sign(resp, key); err != nil {
		glog.Errorf("mock device sign: %s", err)
	}
	if info != nil && info.CorruptHmac {
		resp.Hmac[0] ^= 0xFF
	}
	return
}

func (d *Device) put(kv *proto.KeyValue, value []byte) proto.StatusCode {
	e, found := d.store[string(kv.Key)]
	if !kv.Force {
		if found && !bytes.Equal(e.version, kv.DBVersion) {
			return proto.StatusVersionMismatch
		}
		if !found && len(kv.DBVersion) != 0 {
			return proto.StatusVersionMismatch
		}
	}
	d.store[string(kv.Key)] = &entry{
		value:     append([]byte{}, value...),
		version:   append([]byte{}, kv.NewVersion...),
		tag:       append([]byte{}, kv.Tag...),
		algorithm: kv.Algorithm,
	}
	return proto.StatusSuccess
}

func (d *Device) get(kv *proto.KeyValue, info *MockInfo) (proto.StatusCode, *proto.KeyValue, []byte) {
	e, found := d.store[string(kv.Key)]
	if !found {
		return proto.StatusNotFound, nil, nil
	}
	rkv := &proto.KeyValue{
		Key:       kv.Key,
		DBVersion: e.version,
		Tag:       e.tag,
		Algorithm: e.algorithm,
	}
	value := e.value
	if info != nil && info.Value != nil {
		value = info.Value
	}
	if kv.MetadataOnly && (info == nil || !info.ValueOnMetadata) {
		value = nil
	}
	return proto.StatusSuccess, rkv, value
}

func (d *Device) delete(kv *proto.KeyValue) proto.StatusCode {
	e, found := d.store[string(kv.Key)]
	if !found {
		return proto.StatusNotFound
	}
	if !kv.Force && !bytes.Equal(e.version, kv.DBVersion) {
		return proto.StatusVersionMismatch
	}
	delete(d.store, string(kv.Key))
	return proto.StatusSuccess
}
