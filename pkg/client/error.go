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
	"kinetic/pkg/proto"
)

type Error struct {
	What string
}

func (e *Error) Error() string {
	return "error: " + e.What
}

func (e *Error) Retryable() bool { return false }

type RetryableError struct {
	What string
}

func (e *RetryableError) Error() string {
	return "error: " + e.What
}

func (e *RetryableError) Retryable() bool { return true }

var (
	ErrInvalidRequest error

	ErrHmacFailure           error
	ErrNotAuthorized         error
	ErrVersionFailure        error
	ErrInternal              error
	ErrHeaderRequired        error
	ErrNotFound              error
	ErrVersionMismatch       error
	ErrServiceBusy           error
	ErrExpired               error
	ErrDataError             error
	ErrPermDataError         error
	ErrRemoteConnection      error
	ErrNoSpace               error
	ErrNoSuchHmacAlgorithm   error
	ErrDeviceInvalidRequest  error
	ErrNestedOperationErrors error
)

var errorMapping map[proto.StatusCode]error

func init() {
	ErrInvalidRequest = &Error{"invalid request"}

	ErrHmacFailure = &Error{"hmac failure"}
	ErrNotAuthorized = &Error{"not authorized"}
	ErrVersionFailure = &Error{"version failure"}
	ErrInternal = &Error{"internal error"}
	ErrHeaderRequired = &Error{"header required"}
	ErrNotFound = &Error{"key not found"}
	ErrVersionMismatch = &Error{"version mismatch"}
	ErrServiceBusy = &RetryableError{"service busy"}
	ErrExpired = &Error{"expired"}
	ErrDataError = &Error{"data error"}
	ErrPermDataError = &Error{"permanent data error"}
	ErrRemoteConnection = &Error{"remote connection error"}
	ErrNoSpace = &Error{"no space"}
	ErrNoSuchHmacAlgorithm = &Error{"no such hmac algorithm"}
	ErrDeviceInvalidRequest = &Error{"invalid request"}
	ErrNestedOperationErrors = &Error{"nested operation errors"}

	errorMapping = map[proto.StatusCode]error{
		proto.StatusSuccess:               nil,
		proto.StatusNotAttempted:          ErrInvalidRequest,
		proto.StatusHmacFailure:           ErrHmacFailure,
		proto.StatusNotAuthorized:         ErrNotAuthorized,
		proto.StatusVersionFailure:        ErrVersionFailure,
		proto.StatusInternalError:         ErrInternal,
		proto.StatusHeaderRequired:        ErrHeaderRequired,
		proto.StatusNotFound:              ErrNotFound,
		proto.StatusVersionMismatch:       ErrVersionMismatch,
		proto.StatusServiceBusy:           ErrServiceBusy,
		proto.StatusExpired:               ErrExpired,
		proto.StatusDataError:             ErrDataError,
		proto.StatusPermDataError:         ErrPermDataError,
		proto.StatusRemoteConnectionError: ErrRemoteConnection,
		proto.StatusNoSpace:               ErrNoSpace,
		proto.StatusNoSuchHmacAlgorithm:   ErrNoSuchHmacAlgorithm,
		proto.StatusInvalidRequest:        ErrDeviceInvalidRequest,
		proto.StatusNestedOperationErrors: ErrNestedOperationErrors,
	}
}

// StatusError returns the sentinel error for a device status, nil for
// SUCCESS and ErrInternal for a code it does not know.
func StatusError(status proto.StatusCode) error {
	if err, ok := errorMapping[status]; ok {
		return err
	}
	return ErrInternal
}

// IsRetryable reports whether the operation may succeed if sent again.
func IsRetryable(err error) bool {
	if r, ok := err.(interface{ Retryable() bool }); ok {
		return r.Retryable()
	}
	return false
}
