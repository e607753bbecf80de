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

// Package stats keeps client side operation metrics.
package stats

import (
	"fmt"
	"io"
	"time"

	"github.com/VictoriaMetrics/metrics"
)

var (
	set = metrics.NewSet()
)

func requestCounterName(op string, status string) string {
	return fmt.Sprintf(`kinetic_client_requests_total{op=%q,status=%q}`, op, status)
}

func latencyHistogramName(op string) string {
	return fmt.Sprintf(`kinetic_client_request_duration_seconds{op=%q}`, op)
}

// RecordOperation counts one completed operation and its latency.
func RecordOperation(op string, status string, start time.Time) {
	set.GetOrCreateCounter(requestCounterName(op, status)).Inc()
	set.GetOrCreateHistogram(latencyHistogramName(op)).UpdateDuration(start)
}

// RecordBytes counts bytes moved by an operation.
func RecordBytes(op string, sent int, received int) {
	set.GetOrCreateCounter(fmt.Sprintf(`kinetic_client_bytes_sent_total{op=%q}`, op)).Add(sent)
	set.GetOrCreateCounter(fmt.Sprintf(`kinetic_client_bytes_received_total{op=%q}`, op)).Add(received)
}

func RecordConnect(ok bool) {
	if ok {
		set.GetOrCreateCounter(`kinetic_client_connects_total{result="success"}`).Inc()
	} else {
		set.GetOrCreateCounter(`kinetic_client_connects_total{result="failure"}`).Inc()
	}
}

// RequestCount returns the number of operations recorded for op and status.
func RequestCount(op string, status string) uint64 {
	return set.GetOrCreateCounter(requestCounterName(op, status)).Get()
}

// WritePrometheus writes all client metrics in Prometheus text format.
func WritePrometheus(w io.Writer) {
	set.WritePrometheus(w)
}
