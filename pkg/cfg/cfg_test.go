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

package cfg

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"kinetic/pkg/util"
)

type testIOConfig struct {
	ReadWaitTimeout util.Duration `env:"READ_WAIT_TIMEOUT"`
}

type testConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"`
	Identity int64  `env:"IDENTITY"`
	Appname  string
	IO       testIOConfig
}

func writeFile(t *testing.T, name string, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestReadFromTomlFile(t *testing.T) {
	path := writeFile(t, "client.toml", `
Host = "device1"
Port = 8124
Unknown = 3

[IO]
ReadWaitTimeout = "250ms"
`)
	var c testConfig
	if err := ReadFromTomlFile(path, &c); err != nil {
		t.Fatal(err)
	}
	if c.Host != "device1" || c.Port != 8124 || c.IO.ReadWaitTimeout.Duration != 250*time.Millisecond {
		t.Errorf("got %+v", c)
	}
	if err := ReadFromTomlFile(filepath.Join(t.TempDir(), "missing.toml"), &c); err == nil {
		t.Error("missing file accepted")
	}
}

func TestSetKeyValues(t *testing.T) {
	c := testConfig{Host: "h", Port: 1}
	err := SetKeyValues(&c, []string{"Port=9000", "Host = device2", "IO.ReadWaitTimeout=1s", "Identity=7", `Appname="cli"`})
	if err != nil {
		t.Fatal(err)
	}
	if c.Host != "device2" || c.Port != 9000 || c.Identity != 7 || c.Appname != "cli" || c.IO.ReadWaitTimeout.Duration != time.Second {
		t.Errorf("got %+v", c)
	}
	if err = SetKeyValues(&c, []string{"novalue"}); err == nil {
		t.Error("override without value accepted")
	}
}

func TestReadFromEnv(t *testing.T) {
	t.Setenv("KINETIC_HOST", "envhost")
	t.Setenv("KINETIC_PORT", "8200")
	t.Setenv("KINETIC_READ_WAIT_TIMEOUT", "3s")

	var c testConfig
	if err := ReadFromEnv(context.Background(), EnvPrefix, &c); err != nil {
		t.Fatal(err)
	}
	if c.Host != "envhost" || c.Port != 8200 || c.IO.ReadWaitTimeout.Duration != 3*time.Second {
		t.Errorf("got %+v", c)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("KINETIC_HOST", "envhost")
	t.Setenv("KINETIC_IDENTITY", "3")
	path := writeFile(t, "client.toml", "Host = \"filehost\"\nPort = 8300\n")

	var c testConfig
	if err := Load(context.Background(), path, &c, "Port=8301"); err != nil {
		t.Fatal(err)
	}
	if c.Host != "filehost" || c.Port != 8301 || c.Identity != 3 {
		t.Errorf("got %+v", c)
	}

	var buf bytes.Buffer
	if err := WriteToToml(&buf, &c); err != nil {
		t.Fatal(err)
	}
	var back testConfig
	if err := ReadFromToml(strings.NewReader(buf.String()), &back); err != nil {
		t.Fatal(err)
	}
	if back != c {
		t.Errorf("round trip %+v, want %+v", back, c)
	}
}
