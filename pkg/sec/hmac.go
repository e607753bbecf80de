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

// Package sec signs and verifies device messages with the per-identity
// shared secret.
package sec

import (
	"crypto/hmac"
	"crypto/sha1"

	"kinetic/pkg/proto"
)

// Compute returns HMAC-SHA1(key, BE32(len(command)) || command).
func Compute(key []byte, command []byte) []byte {
	var szbuf [4]byte
	proto.EncByteOrder.PutUint32(szbuf[:], uint32(len(command)))

	mac := hmac.New(sha1.New, key)
	mac.Write(szbuf[:])
	mac.Write(command)
	return mac.Sum(nil)
}

// Sign seals the command of msg and stores its digest in the envelope. The
// digest region has a fixed length, so the serialized envelope is the same
// size before and after signing.
func Sign(msg *proto.Message, key []byte) error {
	command, err := msg.SealCommand()
	if err != nil {
		return err
	}
	if len(msg.Hmac) != proto.HmacMaxLen {
		msg.Hmac = make([]byte, proto.HmacMaxLen)
	} else {
		for i := range msg.Hmac {
			msg.Hmac[i] = 0
		}
	}
	copy(msg.Hmac, Compute(key, command))
	return nil
}

// Verify recomputes the digest over the command bytes as they were received
// and compares it with the one carried by msg in constant time.
func Verify(msg *proto.Message, key []byte) bool {
	command := msg.CommandBytes()
	if command == nil || len(msg.Hmac) != proto.HmacMaxLen {
		return false
	}
	return hmac.Equal(msg.Hmac, Compute(key, command))
}
