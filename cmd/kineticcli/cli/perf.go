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

package cli

import (
	"bytes"
	"fmt"
	"os"
	"sync"
	"time"

	"kinetic/pkg/client"
	"kinetic/pkg/glog"
	"kinetic/pkg/proto"
	"kinetic/pkg/stats"
	"kinetic/pkg/util"
)

type cmdPerfT struct {
	clientCommandT
	optNumConns    int
	optNumRequests int
	optValueLen    int
	optSync        int
}

func (c *cmdPerfT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.IntOption(&c.optNumConns, "conns", 1, "specify the number of connections")
	c.IntOption(&c.optNumRequests, "n|num-requests", 100, "specify the number of put/get pairs per connection")
	c.IntOption(&c.optValueLen, "vl|value-len", kDefaultValueLen, "specify the value length")
	c.IntOption(&c.optSync, "sync", int(proto.SyncWriteBack), "specify synchronization of the puts")
	c.SetSynopsis("[option]")
	c.AddExample("kineticcli perf -conns 4 -n 1000 -vl 4096", "4 connections, 1000 puts and gets each, 4 KiB values")
}

func (c *cmdPerfT) Exec() {
	if c.optNumConns <= 0 || c.optNumRequests <= 0 {
		fmt.Printf("* command '%s' nothing to do\n", c.GetName())
		return
	}
	if c.optValueLen < 0 || c.optValueLen > proto.PDUValueMaxLen {
		fmt.Printf("* command '%s' value length %d out of range\n", c.GetName(), c.optValueLen)
		return
	}
	pool := client.NewPool(c.optNumConns)
	defer pool.CloseAll()

	handles := make([]int, 0, c.optNumConns)
	for i := 0; i < c.optNumConns; i++ {
		h, err := pool.Open(&c.Config)
		if err != nil {
			fmt.Printf("* command '%s' failed to connect: %s\n", c.GetName(), err)
			return
		}
		handles = append(handles, h)
	}
	fmt.Printf("  running %d put/get pair(s) on %d connection(s) to %s:%d...\n", c.optNumRequests, c.optNumConns, c.Host, c.Port)

	st := stats.NewStatistics()
	value := generateValue(c.optValueLen)
	bufs := util.NewChanBufferPool(c.optNumConns, c.optValueLen)
	var wg sync.WaitGroup
	for _, h := range handles {
		conn, _ := pool.Get(h)
		wg.Add(1)
		go func(conn *client.Connection) {
			defer wg.Done()
			buf := bufs.Get()
			defer bufs.Put(buf)
			c.run(conn, value, buf, st)
		}(conn)
	}
	wg.Wait()

	elapsed := st.Elapsed()
	st.PrettyPrint(os.Stdout)
	if n := st.GetNumRequests(); n > 0 && elapsed > 0 {
		fmt.Printf("\n  %d requests in %s, %.2f request/s\n", n, elapsed.Round(time.Millisecond), float64(n)/elapsed.Seconds())
	}
	c.done()
}

// run issues the put/get pairs of one connection. Gets read into buf.
func (c *cmdPerfT) run(conn *client.Connection, value []byte, buf *util.ByteBuffer, st *stats.Statistics) {
	for i := 0; i < c.optNumRequests; i++ {
		key := util.NewUniqueKey()
		kv := &client.KeyValue{
			Key:             key,
			NewVersion:      util.NewUniqueKey(),
			Force:           true,
			Synchronization: proto.Synchronization(c.optSync),
		}
		start := time.Now()
		resp, err := conn.Put(kv, value)
		if err == nil {
			err = resp.Err()
		}
		st.Put("put", time.Since(start), err)
		if err != nil {
			glog.Warningf("put on %s: %s", conn, err)
			if resp.Status == proto.StatusInternalError {
				return
			}
			continue
		}

		start = time.Now()
		resp, err = conn.Get(&client.KeyValue{Key: key}, buf.Bytes())
		if err == nil {
			err = resp.Err()
		}
		if err == nil && !bytes.Equal(resp.Value, value) {
			err = fmt.Errorf("value of %d bytes does not match", len(resp.Value))
		}
		st.Put("get", time.Since(start), err)
		if err != nil {
			glog.Warningf("get on %s: %s", conn, err)
			if resp.Status == proto.StatusInternalError {
				return
			}
		}
	}
}
