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

package io

import (
	goerrors "errors"
	"fmt"
	"io"
	"net"
	"syscall"
	"time"

	"kinetic/pkg/errors"
	"kinetic/pkg/glog"
)

type DeadlineReader interface {
	io.Reader
	SetReadDeadline(t time.Time) error
}

// ReadExact fills buf from r or fails. Each wait for data is bounded by
// waitTimeout; when maxTotal is non-zero the whole call is bounded by it as
// well. Interrupted reads are retried. A timeout, a read error or a read
// that makes no progress fails the call.
func ReadExact(r DeadlineReader, buf []byte, waitTimeout time.Duration, maxTotal time.Duration) error {
	if glog.LOG_VERBOSE {
		glog.Verbosef("reading %d bytes", len(buf))
	}
	var totalDeadline time.Time
	if maxTotal > 0 {
		totalDeadline = time.Now().Add(maxTotal)
	}
	defer r.SetReadDeadline(time.Time{})

	count := 0
	for count < len(buf) {
		deadline := time.Time{}
		if waitTimeout > 0 {
			deadline = time.Now().Add(waitTimeout)
		}
		if !totalDeadline.IsZero() && (deadline.IsZero() || totalDeadline.Before(deadline)) {
			deadline = totalDeadline
		}
		if err := r.SetReadDeadline(deadline); err != nil {
			return errors.Wrap(err, "set read deadline", errors.KErrRead)
		}

		n, err := r.Read(buf[count:])
		count += n
		if err != nil {
			if goerrors.Is(err, syscall.EINTR) {
				continue
			}
			if nerr, ok := err.(net.Error); ok && nerr.Timeout() {
				glog.Warningf("timed out waiting for data, read %d of %d bytes", count, len(buf))
				return errors.Wrap(err, fmt.Sprintf("read %d of %d bytes", count, len(buf)), errors.KErrTimeout)
			}
			if count == len(buf) && err == io.EOF {
				break
			}
			LogError(err)
			return errors.Wrap(err, fmt.Sprintf("read %d of %d bytes", count, len(buf)), errors.KErrRead)
		}
		if n <= 0 {
			glog.Warningf("read made no progress, read %d of %d bytes", count, len(buf))
			return errors.Wrap(io.ErrNoProgress, "read", errors.KErrRead)
		}
		if glog.LOG_VERBOSE {
			glog.Verbosef("received %d bytes (%d of %d)", n, count, len(buf))
		}
	}
	return nil
}

// WriteExact writes all of buf to w, retrying interrupted writes. Any other
// error or a write that makes no progress fails the call.
func WriteExact(w io.Writer, buf []byte) error {
	count := 0
	for count < len(buf) {
		n, err := w.Write(buf[count:])
		if n > 0 {
			count += n
		}
		if err != nil {
			if goerrors.Is(err, syscall.EINTR) {
				glog.Debug("write interrupted. retrying...")
				continue
			}
			LogError(err)
			return errors.Wrap(err, fmt.Sprintf("wrote %d of %d bytes", count, len(buf)), errors.KErrWrite)
		}
		if n <= 0 {
			glog.Warningf("write made no progress, wrote %d of %d bytes", count, len(buf))
			return errors.Wrap(io.ErrShortWrite, "write", errors.KErrWrite)
		}
		if glog.LOG_VERBOSE {
			glog.Verbosef("wrote %d bytes (%d of %d sent)", n, count, len(buf))
		}
	}
	return nil
}
