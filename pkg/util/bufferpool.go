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
	"sync"
)

type BufferPool interface {
	Get() *ByteBuffer
	Put(buf *ByteBuffer)
	Size() int
}

// SyncBufferPool hands out ByteBuffers of one fixed capacity.
type SyncBufferPool struct {
	pool sync.Pool
	size int
}

func NewSyncBufferPool(size int) BufferPool {
	p := &SyncBufferPool{size: size}
	p.pool.New = func() interface{} {
		return NewByteBuffer(size)
	}
	return p
}

func (p *SyncBufferPool) Get() *ByteBuffer {
	item := p.pool.Get()
	buf, ok := item.(*ByteBuffer)
	if !ok {
		buf = NewByteBuffer(p.size)
	}
	return buf
}

func (p *SyncBufferPool) Put(buf *ByteBuffer) {
	if buf == nil || buf.Cap() != p.size {
		return
	}
	buf.Reset()
	p.pool.Put(buf)
}

func (p *SyncBufferPool) Size() int {
	return p.size
}

// channel based buffer pool
type ChanBufferPool struct {
	poolCh chan *ByteBuffer
	size   int
}

func NewChanBufferPool(chansize int, bufsize int) BufferPool {
	return &ChanBufferPool{
		poolCh: make(chan *ByteBuffer, chansize),
		size:   bufsize,
	}
}

func (p *ChanBufferPool) Get() (buf *ByteBuffer) {
	select {
	case buf = <-p.poolCh:
	default:
		buf = NewByteBuffer(p.size)
	}
	return buf
}

func (p *ChanBufferPool) Put(buf *ByteBuffer) {
	if buf == nil || buf.Cap() != p.size {
		return
	}
	buf.Reset()
	select {
	case p.poolCh <- buf:
	default:
		// do nothing, will be gc
	}
}

func (p *ChanBufferPool) Size() int {
	return p.size
}
