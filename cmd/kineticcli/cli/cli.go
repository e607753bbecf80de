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

// Package cli implements the kineticcli commands.
package cli

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"kinetic/pkg/cfg"
	"kinetic/pkg/client"
	"kinetic/pkg/cmd"
	"kinetic/pkg/glog"
	"kinetic/pkg/proto"
	"kinetic/pkg/sec"
	"kinetic/pkg/stats"
	"kinetic/pkg/util"
)

const (
	kClientAppName     = "kineticcli"
	kDefaultHost       = "localhost"
	kDefaultIdentity   = 1
	kDefaultHmacKey    = "asdfasdf"
	kDefaultValueLen   = 1024
	kDefaultClusterVer = 0
)

type (
	clientCommandT struct {
		cmd.Command
		client.Config

		key []byte

		optKeyType     uint
		optHost        string
		optPort        int
		optIdentity    int64
		optHmacKey     string
		optClusterVer  int64
		optCfgFile     string
		optKeyStore    string
		optOverrides   cmd.StringList
		optShowMetrics bool
	}
	clientCommandWithValueT struct {
		clientCommandT
		value     []byte
		valueType uint
		valueLen  uint
	}

	cmdNoOpT struct {
		clientCommandT
	}

	cmdPutT struct {
		clientCommandWithValueT
		optNewVersion string
		optDBVersion  string
		optForce      bool
		optSync       int
		optAlgorithm  int
	}

	cmdGetT struct {
		clientCommandT
		optMetadataOnly bool
		optHexDump      bool
	}

	cmdDeleteT struct {
		clientCommandT
		optDBVersion string
		optForce     bool
	}
)

func (c *clientCommandT) Init(name string, desc string) {
	c.Command.Init(name, desc)

	c.StringOption(&c.optHost, "H|host", kDefaultHost, "specify device host")
	c.IntOption(&c.optPort, "p|port", proto.DefaultPort, "specify device port")
	c.Int64Option(&c.optIdentity, "id|identity", kDefaultIdentity, "specify identity")
	c.StringOption(&c.optHmacKey, "hmac-key", kDefaultHmacKey, "specify the shared HMAC key of the identity")
	c.Int64Option(&c.optClusterVer, "cv|cluster-version", kDefaultClusterVer, "specify cluster version")
	c.UintOption(&c.optKeyType, "kt|key-type", 0, "specify the type of the key. \n   \t0 - string key\n   \t1 - hex key\n   \t2 - generated key")
	c.StringOption(&c.optCfgFile, "c|config", "", "specify toml configuration file name")
	c.StringOption(&c.optKeyStore, "keystore", "", "specify toml key store file; the key of the identity is taken from it")
	c.ValueOption(&c.optOverrides, "set", "override a configuration property, e.g. -set IO.ReadWaitTimeout=2s")
	c.BoolOption(&c.optShowMetrics, "metrics", false, "print client metrics when done")
	c.SetSynopsis("[option] <key>")
	c.AddEnvironment(cfg.EnvPrefix+"HOST, "+cfg.EnvPrefix+"PORT", "device endpoint")
	c.AddEnvironment(cfg.EnvPrefix+"IDENTITY, "+cfg.EnvPrefix+"HMAC_KEY", "credentials of the session")
	c.AddEnvironment(cfg.EnvPrefix+"READ_WAIT_TIMEOUT", "wait for response bytes, e.g. 2s")
	c.AddDetails("  Environment variables, also read from a .env file, are overridden by the\n" +
		"  configuration file, -set overrides and explicit options, in that order.\n")
}

func (c *clientCommandT) isSet(names ...string) (set bool) {
	c.Visit(func(f *flag.Flag) {
		for _, n := range names {
			if f.Name == n {
				set = true
			}
		}
	})
	return
}

// loadConfig builds the client configuration. Options given on the command
// line win over the config file, the environment and the overrides; option
// defaults fill whatever is left.
func (c *clientCommandT) loadConfig() (err error) {
	c.Config = client.Config{}
	if err = cfg.Load(context.Background(), c.optCfgFile, &c.Config, c.optOverrides...); err != nil {
		return
	}
	if c.Host == "" || c.isSet("H", "host") {
		c.Host = c.optHost
	}
	if c.Port == 0 || c.isSet("p", "port") {
		c.Port = c.optPort
	}
	if c.Identity == 0 || c.isSet("id", "identity") {
		c.Identity = c.optIdentity
	}
	if c.isSet("cv", "cluster-version") {
		c.ClusterVersion = c.optClusterVer
	}
	if c.optKeyStore != "" {
		var ks *sec.KeyStore
		if ks, err = sec.LoadKeyStore(c.optKeyStore); err != nil {
			return
		}
		key, ok := ks.GetKey(c.Identity)
		if !ok {
			return fmt.Errorf("no key for identity %d in %s", c.Identity, c.optKeyStore)
		}
		c.HmacKey = key
	}
	if len(c.HmacKey) == 0 || c.isSet("hmac-key") {
		c.HmacKey = client.Secret(c.optHmacKey)
	}
	if c.Appname == "" {
		c.Appname = kClientAppName
	}
	c.Config.SetDefaultIfNotDefined()
	if glog.LOG_DEBUG {
		glog.Debugf("client config: %s", c.Config)
	}
	return
}

func (c *clientCommandT) parseKey() (err error) {
	if c.optKeyType == 2 {
		c.key = util.NewUniqueKey()
		return
	}
	if c.NArg() < 1 {
		return fmt.Errorf("missing key")
	}
	switch c.optKeyType {
	case 0:
		c.key = []byte(c.Arg(0))
	case 1:
		c.key, err = hex.DecodeString(c.Arg(0))
	default:
		err = fmt.Errorf("key type %d not supported", c.optKeyType)
	}
	return
}

func (c *clientCommandT) Parse(args []string) (err error) {
	if err = c.Command.Parse(args); err != nil {
		return
	}
	return c.loadConfig()
}

func (c *clientCommandT) connect() *client.Connection {
	conn, err := client.Connect(&c.Config)
	if err != nil {
		fmt.Printf("* command '%s' failed to connect to %s:%d: %s\n", c.GetName(), c.Host, c.Port, err)
		return nil
	}
	return conn
}

func (c *clientCommandT) isOk(resp *client.Response, err error) bool {
	if err == nil {
		err = resp.Err()
	}
	if err == nil {
		fmt.Printf("* command '%s' successful\n", c.GetName())
		return true
	}
	fmt.Printf("* command '%s' failed (%s): %s\n", c.GetName(), resp.Status, err)
	return false
}

func (c *clientCommandT) done() {
	if c.optShowMetrics {
		stats.WritePrometheus(os.Stdout)
	}
}

func (c *clientCommandWithValueT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.UintOption(&c.valueType, "vt|value-type", 0, "specify the type of the value. \n   \t0 - string value\n   \t1 - hex value\n   \t2 - generated value")
	c.UintOption(&c.valueLen, "vl|value-len", kDefaultValueLen, "specify the length of the value if value-type is 2")
	c.SetSynopsis("[option] <key> <value>")
}

func (c *clientCommandWithValueT) parseValue() (err error) {
	idxValue := 0
	if c.optKeyType != 2 {
		idxValue++
	}
	n := c.NArg() - idxValue

	switch c.valueType {
	case 0:
		if n < 1 {
			return fmt.Errorf("missing value")
		}
		c.value = []byte(c.Arg(idxValue))
	case 1:
		if n < 1 {
			return fmt.Errorf("missing value")
		}
		c.value, err = hex.DecodeString(c.Arg(idxValue))
	case 2:
		c.value = generateValue(int(c.valueLen))
	default:
		err = fmt.Errorf("value type %d not supported", c.valueType)
	}
	return
}

func generateValue(n int) []byte {
	r := rand.New(rand.NewSource(time.Now().UnixNano()))
	value := make([]byte, n)
	r.Read(value)
	return value
}

func (c *cmdNoOpT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.SetSynopsis("[option]")
}

func (c *cmdNoOpT) Exec() {
	if conn := c.connect(); conn != nil {
		defer conn.Disconnect()
		start := time.Now()
		resp, err := conn.NoOp()
		if c.isOk(resp, err) {
			fmt.Printf("  rtt: %s\n", time.Since(start))
		}
	}
	c.done()
}

func (c *cmdPutT) Init(name string, desc string) {
	c.clientCommandWithValueT.Init(name, desc)
	c.StringOption(&c.optNewVersion, "version", "", "specify the new version of the entry")
	c.StringOption(&c.optDBVersion, "dbversion", "", "specify the version expected on the device")
	c.BoolOption(&c.optForce, "force", false, "store without checking the version")
	c.IntOption(&c.optSync, "sync", int(proto.SyncWriteBack), "specify synchronization. \n   \t1 - write through\n   \t2 - write back\n   \t3 - flush")
	c.IntOption(&c.optAlgorithm, "algo", int(proto.AlgorithmNone), "compute the tag with the algorithm. \n   \t1 - SHA1\n   \t2 - SHA2\n   \t3 - SHA3\n   \t4 - CRC32\n   \t5 - CRC64")
}

func (c *cmdPutT) Parse(args []string) (err error) {
	if err = c.clientCommandT.Parse(args); err != nil {
		return
	}
	if err = c.parseKey(); err != nil {
		return
	}
	return c.parseValue()
}

func (c *cmdPutT) Exec() {
	kv := &client.KeyValue{
		Key:             c.key,
		NewVersion:      []byte(c.optNewVersion),
		DBVersion:       []byte(c.optDBVersion),
		Force:           c.optForce,
		Synchronization: proto.Synchronization(c.optSync),
		Algorithm:       proto.Algorithm(c.optAlgorithm),
	}
	if kv.Algorithm != proto.AlgorithmNone {
		tag, err := client.ComputeTag(kv.Algorithm, c.value)
		if err != nil {
			fmt.Printf("* command '%s' failed: %s\n", c.GetName(), err)
			return
		}
		kv.Tag = tag
	}
	if conn := c.connect(); conn != nil {
		defer conn.Disconnect()
		resp, err := conn.Put(kv, c.value)
		if c.isOk(resp, err) {
			fmt.Printf("  key: %s\n", util.ToPrintableAndHexString(c.key))
		}
	}
	c.done()
}

func (c *cmdGetT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.BoolOption(&c.optMetadataOnly, "m|metadata", false, "get the metadata only")
	c.BoolOption(&c.optHexDump, "x|hexdump", false, "print the value as a hex dump")
}

func (c *cmdGetT) Parse(args []string) (err error) {
	if err = c.clientCommandT.Parse(args); err != nil {
		return
	}
	return c.parseKey()
}

func (c *cmdGetT) Exec() {
	if conn := c.connect(); conn != nil {
		defer conn.Disconnect()
		resp, err := conn.Get(&client.KeyValue{Key: c.key, MetadataOnly: c.optMetadataOnly}, nil)
		if c.isOk(resp, err) {
			resp.PrettyPrint(os.Stdout)
			switch {
			case c.optMetadataOnly:
			case c.optHexDump:
				util.HexDump(os.Stdout, resp.Value)
			default:
				fmt.Printf("Value: {\n  %s\n}\n", util.ToPrintableAndHexString(resp.Value))
			}
		}
	}
	c.done()
}

func (c *cmdDeleteT) Init(name string, desc string) {
	c.clientCommandT.Init(name, desc)
	c.StringOption(&c.optDBVersion, "dbversion", "", "specify the version expected on the device")
	c.BoolOption(&c.optForce, "force", false, "delete without checking the version")
}

func (c *cmdDeleteT) Parse(args []string) (err error) {
	if err = c.clientCommandT.Parse(args); err != nil {
		return
	}
	return c.parseKey()
}

func (c *cmdDeleteT) Exec() {
	if conn := c.connect(); conn != nil {
		defer conn.Disconnect()
		resp, err := conn.Delete(&client.KeyValue{Key: c.key, DBVersion: []byte(c.optDBVersion), Force: c.optForce})
		c.isOk(resp, err)
	}
	c.done()
}

func init() {
	noop := &cmdNoOpT{}
	noop.Init("noop", "send a no-op to the device")

	put := &cmdPutT{}
	put.Init("put", "store a value")

	get := &cmdGetT{}
	get.Init("get", "get the value of a given key")

	del := &cmdDeleteT{}
	del.Init("delete", "delete an entry")

	perf := &cmdPerfT{}
	perf.Init("perf", "run put and get requests on a number of connections and report latency")

	cmd.RegisterNewGroup("device commands", noop, put, get, del, perf)
}
