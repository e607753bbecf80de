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

package sec

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"kinetic/pkg/proto"
)

var (
	ErrNoIdentity = errors.New("no identities found in key store")
)

// KeyStore maps identities to their HMAC shared secrets.
type KeyStore struct {
	keys map[int64][]byte
}

type identityConfig struct {
	Identity int64  `toml:"identity"`
	HexKey   string `toml:"hexKey"`
	Key      string `toml:"key"`
}

type keyStoreConfig struct {
	Identities []identityConfig `toml:"identities"`
}

func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[int64][]byte)}
}

// LoadKeyStore reads a TOML file of [[identities]] tables, each with an
// identity and either a hexKey or a plain key.
func LoadKeyStore(path string) (*KeyStore, error) {
	var kcfg keyStoreConfig
	if _, err := toml.DecodeFile(path, &kcfg); err != nil {
		return nil, err
	}
	if len(kcfg.Identities) == 0 {
		return nil, ErrNoIdentity
	}
	ks := NewKeyStore()
	for _, id := range kcfg.Identities {
		var key []byte
		if id.HexKey != "" {
			var err error
			if key, err = hex.DecodeString(id.HexKey); err != nil {
				return nil, fmt.Errorf("identity %d: %w", id.Identity, err)
			}
		} else {
			key = []byte(id.Key)
		}
		if err := ks.Add(id.Identity, key); err != nil {
			return nil, err
		}
	}
	return ks, nil
}

// Add stores a copy of key for identity.
func (ks *KeyStore) Add(identity int64, key []byte) error {
	if len(key) == 0 {
		return fmt.Errorf("identity %d: empty key", identity)
	}
	if len(key) > proto.MaxKeyLen {
		return fmt.Errorf("identity %d: key length %d exceeds %d", identity, len(key), proto.MaxKeyLen)
	}
	ks.keys[identity] = append([]byte(nil), key...)
	return nil
}

func (ks *KeyStore) GetKey(identity int64) (key []byte, ok bool) {
	key, ok = ks.keys[identity]
	return
}

func (ks *KeyStore) NumIdentities() int {
	return len(ks.keys)
}
