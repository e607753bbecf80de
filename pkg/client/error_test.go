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
	"encoding/hex"
	"testing"

	"kinetic/pkg/proto"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    proto.StatusCode
		err       error
		retryable bool
	}{
		{proto.StatusSuccess, nil, false},
		{proto.StatusNotAttempted, ErrInvalidRequest, false},
		{proto.StatusHmacFailure, ErrHmacFailure, false},
		{proto.StatusNotFound, ErrNotFound, false},
		{proto.StatusVersionMismatch, ErrVersionMismatch, false},
		{proto.StatusServiceBusy, ErrServiceBusy, true},
		{proto.StatusInvalid, ErrInternal, false},
		{proto.StatusCode(100), ErrInternal, false},
	}
	for _, tc := range tests {
		err := StatusError(tc.status)
		if err != tc.err {
			t.Errorf("%s: got %v, want %v", tc.status, err, tc.err)
		}
		if IsRetryable(err) != tc.retryable {
			t.Errorf("%s: retryable %v", tc.status, IsRetryable(err))
		}
	}
	if ErrNotFound.Error() != "error: key not found" {
		t.Errorf("got %q", ErrNotFound.Error())
	}
}

func TestComputeTag(t *testing.T) {
	tests := []struct {
		algorithm proto.Algorithm
		value     string
		tag       string
	}{
		{proto.AlgorithmSHA1, "", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
		{proto.AlgorithmSHA2, "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{proto.AlgorithmSHA3, "", "a7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"},
		{proto.AlgorithmCRC32, "123456789", "cbf43926"},
		{proto.AlgorithmCRC64, "123456789", "995dc9bbdf1939fa"},
	}
	for _, tc := range tests {
		tag, err := ComputeTag(tc.algorithm, []byte(tc.value))
		if err != nil {
			t.Fatalf("%s: %s", tc.algorithm, err)
		}
		if got := hex.EncodeToString(tag); got != tc.tag {
			t.Errorf("%s: got %s, want %s", tc.algorithm, got, tc.tag)
		}
	}
	if _, err := ComputeTag(proto.AlgorithmNone, nil); err == nil {
		t.Error("tag for NONE")
	}
}
