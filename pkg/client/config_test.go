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
	"fmt"
	"strings"
	"testing"
	"time"

	"kinetic/pkg/proto"
)

func TestConfigDefault(t *testing.T) {
	var cfg Config
	cfg.SetDefault()
	if cfg.Host != "localhost" || cfg.Port != proto.DefaultPort || cfg.Identity != 1 {
		t.Errorf("defaults %s", cfg)
	}
	if cfg.IO.ReadWaitTimeout.Duration != 5*time.Second {
		t.Errorf("read wait timeout %s", cfg.IO.ReadWaitTimeout.Duration)
	}
}

func TestSecretMasked(t *testing.T) {
	var s Secret
	if err := s.EnvDecode("asdfasdf"); err != nil {
		t.Fatal(err)
	}
	if string(s) != "asdfasdf" {
		t.Errorf("decoded %q", []byte(s))
	}
	cfg := Config{Host: "h", HmacKey: s}
	for _, out := range []string{s.String(), cfg.String(), fmt.Sprintf("%v", cfg)} {
		if strings.Contains(out, "asdfasdf") {
			t.Errorf("secret printed in %q", out)
		}
	}
}
