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
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"hash/crc64"

	"golang.org/x/crypto/sha3"

	"kinetic/pkg/proto"
)

var crc64Table = crc64.MakeTable(crc64.ECMA)

// ComputeTag returns the integrity tag of value for the given algorithm.
// CRC results are big endian.
func ComputeTag(algorithm proto.Algorithm, value []byte) ([]byte, error) {
	switch algorithm {
	case proto.AlgorithmSHA1:
		sum := sha1.Sum(value)
		return sum[:], nil
	case proto.AlgorithmSHA2:
		sum := sha256.Sum256(value)
		return sum[:], nil
	case proto.AlgorithmSHA3:
		sum := sha3.Sum256(value)
		return sum[:], nil
	case proto.AlgorithmCRC32:
		tag := make([]byte, 4)
		binary.BigEndian.PutUint32(tag, crc32.ChecksumIEEE(value))
		return tag, nil
	case proto.AlgorithmCRC64:
		tag := make([]byte, 8)
		binary.BigEndian.PutUint64(tag, crc64.Checksum(value, crc64Table))
		return tag, nil
	}
	return nil, fmt.Errorf("no tag for algorithm %s", algorithm)
}
