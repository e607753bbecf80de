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

// package cfg loads configuration from .env files, the environment, TOML
// files and command line overrides.
package cfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"

	"kinetic/pkg/glog"
)

const EnvPrefix = "KINETIC_"

// ReadFromTomlFile decodes a TOML file into v. Keys not present in v are
// logged and ignored.
func ReadFromTomlFile(file string, v interface{}) error {
	md, err := toml.DecodeFile(file, v)
	if err != nil {
		return fmt.Errorf("config file %s: %w", file, err)
	}
	for _, key := range md.Undecoded() {
		glog.Warningf("config file %s: unknown key %s", file, key.String())
	}
	return nil
}

// ReadFromToml decodes TOML from r into v.
func ReadFromToml(r io.Reader, v interface{}) error {
	_, err := toml.NewDecoder(r).Decode(v)
	return err
}

// LoadDotEnv sets environment variables from the given .env files. Missing
// files are skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("env file %s: %w", f, err)
		}
	}
	return nil
}

// ReadFromEnv sets the fields of v that carry an env tag from environment
// variables named with prefix.
func ReadFromEnv(ctx context.Context, prefix string, v interface{}) error {
	return envconfig.ProcessWith(ctx, v, envconfig.PrefixLookuper(prefix, envconfig.OsLookuper()))
}

// SetKeyValues applies dot-delimited key=value overrides to v. A value
// that is not a TOML literal is taken as a string.
func SetKeyValues(v interface{}, kvs []string) error {
	var buf bytes.Buffer
	for _, kv := range kvs {
		idx := strings.IndexByte(kv, '=')
		if idx <= 0 {
			return fmt.Errorf("invalid override %q, expecting key=value", kv)
		}
		key := strings.TrimSpace(kv[:idx])
		value := strings.TrimSpace(kv[idx+1:])
		var probe map[string]interface{}
		if _, err := toml.Decode("x = "+value, &probe); err != nil {
			value = fmt.Sprintf("%q", value)
		}
		fmt.Fprintf(&buf, "%s = %s\n", key, value)
	}
	if buf.Len() == 0 {
		return nil
	}
	if _, err := toml.Decode(buf.String(), v); err != nil {
		return fmt.Errorf("overrides: %w", err)
	}
	return nil
}

// Load fills v from the .env files in the working directory and KINETIC_
// environment variables, then from the TOML config file if one is given,
// then from the key=value overrides. Each step only sets what it names, so
// a later one takes precedence. Environment variables are applied to v as
// passed in and do not replace fields that already hold a value.
func Load(ctx context.Context, file string, v interface{}, overrides ...string) error {
	if err := LoadDotEnv(".env", ".env.local"); err != nil {
		return err
	}
	if err := ReadFromEnv(ctx, EnvPrefix, v); err != nil {
		return err
	}
	if file != "" {
		if err := ReadFromTomlFile(file, v); err != nil {
			return err
		}
	}
	return SetKeyValues(v, overrides)
}

// WriteToToml writes v in TOML format.
func WriteToToml(w io.Writer, v interface{}) error {
	return toml.NewEncoder(w).Encode(v)
}
