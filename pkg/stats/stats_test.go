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

package stats

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestRecordOperation(t *testing.T) {
	before := RequestCount("noop", "SUCCESS")
	RecordOperation("noop", "SUCCESS", time.Now().Add(-time.Millisecond))
	RecordOperation("noop", "SUCCESS", time.Now())
	RecordBytes("noop", 40, 40)
	if got := RequestCount("noop", "SUCCESS") - before; got != 2 {
		t.Errorf("count %d", got)
	}
	var buf bytes.Buffer
	WritePrometheus(&buf)
	out := buf.String()
	for _, want := range []string{
		`kinetic_client_requests_total{op="noop",status="SUCCESS"}`,
		`kinetic_client_request_duration_seconds_bucket{op="noop"`,
		`kinetic_client_bytes_sent_total{op="noop"} `,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %s in\n%s", want, out)
		}
	}
}

func TestStatistics(t *testing.T) {
	s := NewStatistics()
	s.Put("put", 2*time.Millisecond, nil)
	s.Put("put", 4*time.Millisecond, errors.New("x"))
	s.Put("get", time.Millisecond, nil)

	if s.GetNumRequests() != 3 {
		t.Errorf("total %d", s.GetNumRequests())
	}
	put, ok := s.Get("put")
	if !ok || put.NumRequests != 2 || put.NumErrors != 1 {
		t.Errorf("put %+v", put)
	}
	if put.AvgLatency != 3*time.Millisecond {
		t.Errorf("avg %v", put.AvgLatency)
	}
	if put.MaxLatency < 4*time.Millisecond-time.Microsecond*10 {
		t.Errorf("max %v", put.MaxLatency)
	}
	if _, ok := s.Get("delete"); ok {
		t.Error("unexpected request type")
	}
	var buf bytes.Buffer
	s.PrettyPrint(&buf)
	if !strings.Contains(buf.String(), "All") || !strings.Contains(buf.String(), "put") {
		t.Errorf("table:\n%s", buf.String())
	}
}
