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

package errors

import (
	"fmt"
)

const (
	KErrNone uint32 = iota
	KErrNoConnection
	KErrConnect
	KErrRead
	KErrWrite
	KErrTimeout
	KErrConfig
	KErrSizeLimit
	KErrBusy
)

var (
	ErrNoConnection = &Error{what: "no connection", errno: KErrNoConnection}
	ErrBusy         = &Error{what: "busy", errno: KErrBusy}
)

var errnoNames = map[uint32]string{
	KErrNone:         "none",
	KErrNoConnection: "no connection",
	KErrConnect:      "connect",
	KErrRead:         "read",
	KErrWrite:        "write",
	KErrTimeout:      "timeout",
	KErrConfig:       "config",
	KErrSizeLimit:    "size limit",
	KErrBusy:         "busy",
}

type Error struct {
	what  string
	errno uint32
	cause error
}

func NewError(what string, errno uint32) *Error {
	return &Error{what: what, errno: errno}
}

// Wrap returns an Error of the given kind carrying err as its cause.
func Wrap(err error, what string, errno uint32) *Error {
	return &Error{what: what, errno: errno, cause: err}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("error: %s (%d) %s", e.what, e.errno, e.cause.Error())
	}
	return fmt.Sprintf("error: %s (%d) ", e.what, e.errno)
}

func (e *Error) ErrNo() uint32 {
	return e.errno
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches any *Error with the same errno.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return t.errno == e.errno
	}
	return false
}

func ErrNoName(errno uint32) string {
	if n, ok := errnoNames[errno]; ok {
		return n
	}
	return fmt.Sprintf("errno(%d)", errno)
}

// ErrNoOf returns the errno of err if it is, or wraps, an *Error.
func ErrNoOf(err error) (errno uint32, ok bool) {
	for err != nil {
		if e, yes := err.(*Error); yes {
			return e.errno, true
		}
		u, yes := err.(interface{ Unwrap() error })
		if !yes {
			return
		}
		err = u.Unwrap()
	}
	return
}
