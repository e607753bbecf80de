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
	"time"

	"kinetic/pkg/errors"
	"kinetic/pkg/glog"
	"kinetic/pkg/io"
	"kinetic/pkg/proto"
	"kinetic/pkg/sec"
	"kinetic/pkg/stats"
	"kinetic/pkg/util"
)

type request struct {
	op      string
	msgType proto.MessageType
	kv      *proto.KeyValue
	value   []byte
	// destination for a returned value, may be nil
	buf []byte
}

func (r *request) metadataOnly() bool {
	return r.kv != nil && r.kv.MetadataOnly
}

func (c *Connection) validate(r *request) error {
	if !c.IsConnected() {
		return errors.ErrNoConnection
	}
	if r.msgType == proto.MessageTypeNoop {
		return nil
	}
	kv := r.kv
	if kv == nil {
		return errors.NewError(r.op+": no key value entry", errors.KErrConfig)
	}
	if len(kv.Key) == 0 {
		return errors.NewError(r.op+": empty key", errors.KErrConfig)
	}
	if len(kv.Key) > proto.MaxKeyLen {
		return errors.NewError(fmt.Sprintf("%s: key length %d exceeds %d", r.op, len(kv.Key), proto.MaxKeyLen), errors.KErrSizeLimit)
	}
	if len(r.value) > proto.PDUValueMaxLen {
		return errors.NewError(fmt.Sprintf("%s: value length %d exceeds %d", r.op, len(r.value), proto.PDUValueMaxLen), errors.KErrSizeLimit)
	}
	if !kv.Algorithm.IsValid() {
		return errors.NewError(fmt.Sprintf("%s: invalid algorithm %s", r.op, kv.Algorithm), errors.KErrConfig)
	}
	if !kv.Synchronization.IsValid() {
		return errors.NewError(fmt.Sprintf("%s: invalid synchronization %s", r.op, kv.Synchronization), errors.KErrConfig)
	}
	return nil
}

// execute runs one request/response exchange. resp is never nil. Failures
// before anything is written leave the session untouched and report
// NOT_ATTEMPTED; once all three regions of the request are written the
// sequence advances whatever the outcome.
func (c *Connection) execute(r *request) (resp *Response, err error) {
	start := time.Now()
	resp = &Response{Status: proto.StatusNotAttempted}
	var sent, received int
	defer func() {
		stats.RecordOperation(r.op, resp.Status.String(), start)
		stats.RecordBytes(r.op, sent, received)
		if err != nil {
			glog.Errorf("%s on %s failed with %s: %s", r.op, c, resp.Status, err)
		} else if glog.LOG_DEBUG {
			glog.Debugf("%s on %s: status=%s rtt=%s", r.op, c, resp.Status, time.Since(start))
		}
	}()

	if err = c.validate(r); err != nil {
		return
	}

	hdr := c.NextHeader()
	msg := proto.NewRequest(hdr, r.msgType, r.kv)
	if err = sec.Sign(msg, c.config.HmacKey); err != nil {
		return
	}
	var pdu *proto.PDU
	if pdu, err = proto.NewPDU(msg, r.value); err != nil {
		err = errors.Wrap(err, r.op, errors.KErrSizeLimit)
		return
	}
	if glog.LOG_VERBOSE {
		glog.Verbosef("%s request: sequence=%d proto=%d value=%d", r.op, hdr.Sequence, len(pdu.Proto), len(pdu.Value))
	}

	resp.Status = proto.StatusInternalError
	for _, region := range [][]byte{pdu.Header.Bytes(), pdu.Proto, pdu.Value} {
		if len(region) == 0 {
			continue
		}
		if err = io.WriteExact(c.conn, region); err != nil {
			return
		}
		sent += len(region)
	}
	defer c.advanceSequence()

	var rhdr proto.PDUHeader
	var raw [proto.PDUHeaderSize]byte
	if err = c.readExact(raw[:]); err != nil {
		return
	}
	received += len(raw)
	if err = rhdr.Decode(raw[:]); err != nil {
		return
	}

	c.commandBuf.Resize(int(rhdr.ProtobufLength))
	if err = c.readExact(c.commandBuf.Bytes()); err != nil {
		return
	}
	received += int(rhdr.ProtobufLength)

	// the value lands in scratch and reaches caller memory only once the
	// response is verified
	var value []byte
	if valueLen := int(rhdr.ValueLength); valueLen > 0 {
		if r.metadataOnly() {
			err = proto.NewProtocolError(fmt.Errorf("%d value bytes returned for a metadata only request", valueLen))
			return
		}
		c.valueBuf.Resize(valueLen)
		value = c.valueBuf.Bytes()
		if err = c.readExact(value); err != nil {
			return
		}
		received += valueLen
	}

	var rmsg *proto.Message
	if rmsg, err = proto.DecodeMessage(c.commandBuf.Bytes()); err != nil {
		return
	}
	resp.Message = rmsg
	if !sec.Verify(rmsg, c.config.HmacKey) {
		glog.Warningf("%s on %s: response hmac does not verify", r.op, c)
		resp.Status = proto.StatusHmacFailure
		return
	}
	if rh := rmsg.Header(); rh != nil {
		if rh.HasMessageType() && rh.MessageType != r.msgType.ResponseType() {
			glog.Warningf("%s on %s: unexpected response type %s", r.op, c, rh.MessageType)
			resp.Status = proto.StatusVersionFailure
			return
		}
		if rh.HasAckSequence() && rh.AckSequence != hdr.Sequence {
			glog.Warningf("%s on %s: ack sequence %d, expected %d", r.op, c, rh.AckSequence, hdr.Sequence)
			resp.Status = proto.StatusVersionFailure
			return
		}
	}

	resp.Status = rmsg.StatusCode()
	if st := rmsg.Command.Status; st != nil {
		resp.StatusMessage = st.StatusMessage
	}
	resp.KeyValue = rmsg.KeyValue()
	if r.msgType == proto.MessageTypeGet && len(value) > 0 {
		resp.Value, resp.InCallerBuffer = deliverValue(value, r.buf)
	}
	return
}

// deliverValue copies a verified value out of the connection scratch buffer:
// into dst when its capacity holds it, otherwise into new memory.
func deliverValue(value []byte, dst []byte) ([]byte, bool) {
	if cap(dst) >= len(value) {
		b := util.WrapByteBuffer(dst)
		b.Append(value)
		return b.Bytes(), true
	}
	return append([]byte(nil), value...), false
}

func (c *Connection) readExact(buf []byte) error {
	return io.ReadExact(c.conn, buf, c.config.IO.ReadWaitTimeout.Duration, c.config.IO.ReadTotalTimeout.Duration)
}
