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

package util

import (
	"fmt"
)

// ByteBuffer is a bounded buffer. Its capacity is fixed at creation and
// every append checks it; going past capacity is a programming error and
// panics instead of truncating.
type ByteBuffer struct {
	data []byte
	max  int
}

// NewByteBuffer allocates a buffer able to hold up to capacity bytes.
func NewByteBuffer(capacity int) *ByteBuffer {
	return &ByteBuffer{data: make([]byte, 0, capacity), max: capacity}
}

// WrapByteBuffer uses the caller's memory as storage. The whole of
// cap(storage) is usable; the current content is reset to empty.
func WrapByteBuffer(storage []byte) *ByteBuffer {
	return &ByteBuffer{data: storage[:0], max: cap(storage)}
}

func (b *ByteBuffer) Len() int {
	return len(b.data)
}

func (b *ByteBuffer) Cap() int {
	return b.max
}

func (b *ByteBuffer) Available() int {
	return b.max - len(b.data)
}

func (b *ByteBuffer) Bytes() []byte {
	return b.data
}

func (b *ByteBuffer) Reset() {
	b.data = b.data[:0]
}

func (b *ByteBuffer) ensure(n int) {
	if n < 0 || len(b.data)+n > b.max {
		panic(fmt.Sprintf("ByteBuffer overflow: len=%d add=%d cap=%d", len(b.data), n, b.max))
	}
}

func (b *ByteBuffer) Append(p []byte) {
	b.ensure(len(p))
	b.data = append(b.data, p...)
}

func (b *ByteBuffer) AppendByte(c byte) {
	b.ensure(1)
	b.data = append(b.data, c)
}

// Write implements io.Writer with the same capacity contract as Append.
func (b *ByteBuffer) Write(p []byte) (int, error) {
	b.Append(p)
	return len(p), nil
}

// Resize sets the length to n, exposing zeroed or previously written bytes,
// so that the region can be filled by a reader.
func (b *ByteBuffer) Resize(n int) {
	if n < 0 || n > b.max {
		panic(fmt.Sprintf("ByteBuffer resize: size=%d cap=%d", n, b.max))
	}
	b.data = b.data[:n]
}
