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
	"encoding/binary"
	"fmt"
)

type (
	MessageType     int32
	StatusCode      int32
	Algorithm       int32
	Synchronization int32
	HMACAlgorithm   int32
)

type ProtocolError struct {
	what string
}

const (
	VersionPrefix  byte = 'F'
	PDUHeaderSize       = 9
	PDUProtoMaxLen      = 1024 * 1024
	PDUValueMaxLen      = 1024 * 1024
	PDUMaxLen           = PDUHeaderSize + PDUProtoMaxLen + PDUValueMaxLen

	HmacMaxLen = 20
	MaxKeyLen  = 128

	DefaultPort    = 8123
	DefaultTLSPort = 8443
)

var EncByteOrder = binary.BigEndian

const (
	MessageTypeInvalid        = MessageType(-1)
	MessageTypeGetResponse    = MessageType(1)
	MessageTypeGet            = MessageType(2)
	MessageTypePutResponse    = MessageType(3)
	MessageTypePut            = MessageType(4)
	MessageTypeDeleteResponse = MessageType(5)
	MessageTypeDelete         = MessageType(6)
	MessageTypeNoopResponse   = MessageType(29)
	MessageTypeNoop           = MessageType(30)
)

const (
	StatusInvalid               = StatusCode(-1)
	StatusNotAttempted          = StatusCode(0)
	StatusSuccess               = StatusCode(1)
	StatusHmacFailure           = StatusCode(2)
	StatusNotAuthorized         = StatusCode(3)
	StatusVersionFailure        = StatusCode(4)
	StatusInternalError         = StatusCode(5)
	StatusHeaderRequired        = StatusCode(6)
	StatusNotFound              = StatusCode(7)
	StatusVersionMismatch       = StatusCode(8)
	StatusServiceBusy           = StatusCode(9)
	StatusExpired               = StatusCode(10)
	StatusDataError             = StatusCode(11)
	StatusPermDataError         = StatusCode(12)
	StatusRemoteConnectionError = StatusCode(13)
	StatusNoSpace               = StatusCode(14)
	StatusNoSuchHmacAlgorithm   = StatusCode(15)
	StatusInvalidRequest        = StatusCode(16)
	StatusNestedOperationErrors = StatusCode(17)
)

const (
	AlgorithmNone  = Algorithm(0)
	AlgorithmSHA1  = Algorithm(1)
	AlgorithmSHA2  = Algorithm(2)
	AlgorithmSHA3  = Algorithm(3)
	AlgorithmCRC32 = Algorithm(4)
	AlgorithmCRC64 = Algorithm(5)
)

const (
	SyncNone         = Synchronization(0)
	SyncWriteThrough = Synchronization(1)
	SyncWriteBack    = Synchronization(2)
	SyncFlush        = Synchronization(3)
)

const (
	HMACAlgorithmInvalid = HMACAlgorithm(-1)
	HMACAlgorithmSHA1    = HMACAlgorithm(1)
)

var (
	messageTypeNameMap = map[MessageType]string{
		MessageTypeGetResponse:    "GET_RESPONSE",
		MessageTypeGet:            "GET",
		MessageTypePutResponse:    "PUT_RESPONSE",
		MessageTypePut:            "PUT",
		MessageTypeDeleteResponse: "DELETE_RESPONSE",
		MessageTypeDelete:         "DELETE",
		MessageTypeNoopResponse:   "NOOP_RESPONSE",
		MessageTypeNoop:           "NOOP",
	}

	statusNameMap = map[StatusCode]string{
		StatusInvalid:               "INVALID",
		StatusNotAttempted:          "NOT_ATTEMPTED",
		StatusSuccess:               "SUCCESS",
		StatusHmacFailure:           "HMAC_FAILURE",
		StatusNotAuthorized:         "NOT_AUTHORIZED",
		StatusVersionFailure:        "VERSION_FAILURE",
		StatusInternalError:         "INTERNAL_ERROR",
		StatusHeaderRequired:        "HEADER_REQUIRED",
		StatusNotFound:              "NOT_FOUND",
		StatusVersionMismatch:       "VERSION_MISMATCH",
		StatusServiceBusy:           "SERVICE_BUSY",
		StatusExpired:               "EXPIRED",
		StatusDataError:             "DATA_ERROR",
		StatusPermDataError:         "PERM_DATA_ERROR",
		StatusRemoteConnectionError: "REMOTE_CONNECTION_ERROR",
		StatusNoSpace:               "NO_SPACE",
		StatusNoSuchHmacAlgorithm:   "NO_SUCH_HMAC_ALGORITHM",
		StatusInvalidRequest:        "INVALID_REQUEST",
		StatusNestedOperationErrors: "NESTED_OPERATION_ERRORS",
	}

	algorithmNameMap = map[Algorithm]string{
		AlgorithmNone:  "NONE",
		AlgorithmSHA1:  "SHA1",
		AlgorithmSHA2:  "SHA2",
		AlgorithmSHA3:  "SHA3",
		AlgorithmCRC32: "CRC32",
		AlgorithmCRC64: "CRC64",
	}

	syncNameMap = map[Synchronization]string{
		SyncNone:         "NONE",
		SyncWriteThrough: "WRITETHROUGH",
		SyncWriteBack:    "WRITEBACK",
		SyncFlush:        "FLUSH",
	}
)

func (t MessageType) String() string {
	if name, ok := messageTypeNameMap[t]; ok {
		return name
	}
	return fmt.Sprintf("MessageType(%d)", int32(t))
}

// ResponseType returns the message type the device answers t with.
func (t MessageType) ResponseType() MessageType {
	switch t {
	case MessageTypeGet, MessageTypePut, MessageTypeDelete, MessageTypeNoop:
		return t - 1
	}
	return MessageTypeInvalid
}

func (s StatusCode) String() string {
	if name, ok := statusNameMap[s]; ok {
		return name
	}
	return "INVALID"
}

// IsValid reports whether s is one of the enumerated codes other than INVALID.
func (s StatusCode) IsValid() bool {
	_, ok := statusNameMap[s]
	return ok && s != StatusInvalid
}

func (a Algorithm) String() string {
	if name, ok := algorithmNameMap[a]; ok {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int32(a))
}

func (a Algorithm) IsValid() bool {
	_, ok := algorithmNameMap[a]
	return ok
}

func (s Synchronization) String() string {
	if name, ok := syncNameMap[s]; ok {
		return name
	}
	return fmt.Sprintf("Synchronization(%d)", int32(s))
}

func (s Synchronization) IsValid() bool {
	_, ok := syncNameMap[s]
	return ok
}

func NewProtocolError(err error) *ProtocolError {
	return &ProtocolError{
		what: err.Error(),
	}
}

func (e *ProtocolError) Error() string {
	return "ProtocolError: " + e.what
}
