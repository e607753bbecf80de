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

package proto

import (
	"fmt"
	"io"
)

type (
	// Header identifies the session and the position of a command in it.
	Header struct {
		ClusterVersion int64
		Identity       int64
		ConnectionID   int64
		Sequence       int64
		AckSequence    int64
		MessageType    MessageType
		Timeout        int64
		EarlyExit      bool

		hasAckSequence bool
		hasMessageType bool
	}

	KeyValue struct {
		NewVersion      []byte
		Key             []byte
		DBVersion       []byte
		Tag             []byte
		Algorithm       Algorithm
		MetadataOnly    bool
		Force           bool
		Synchronization Synchronization
	}

	Body struct {
		KeyValue *KeyValue
	}

	Status struct {
		Code            StatusCode
		StatusMessage   string
		DetailedMessage []byte

		hasCode bool
	}

	Command struct {
		Header *Header
		Body   *Body
		Status *Status
	}

	// Message is the envelope carried in a PDU. The structured Command and
	// its serialized form are held separately; the HMAC covers the
	// serialized bytes exactly as sent or received.
	Message struct {
		Command *Command
		Hmac    []byte

		commandBytes []byte
	}
)

func (h *Header) SetAckSequence(seq int64) {
	h.AckSequence = seq
	h.hasAckSequence = true
}

func (h *Header) HasAckSequence() bool {
	return h.hasAckSequence
}

func (h *Header) SetMessageType(t MessageType) {
	h.MessageType = t
	h.hasMessageType = true
}

func (h *Header) HasMessageType() bool {
	return h.hasMessageType
}

// NewStatus returns a status with the code marked present.
func NewStatus(code StatusCode) *Status {
	return &Status{Code: code, hasCode: true}
}

func (s *Status) SetCode(code StatusCode) {
	s.Code = code
	s.hasCode = true
}

func (s *Status) HasCode() bool {
	return s.hasCode
}

// NewRequest builds a request command from the session header fields. The
// message type is set and the key value entry, if any, becomes the body.
// The status is left unset.
func NewRequest(hdr Header, msgType MessageType, kv *KeyValue) *Message {
	h := &Header{
		ClusterVersion: hdr.ClusterVersion,
		Identity:       hdr.Identity,
		ConnectionID:   hdr.ConnectionID,
		Sequence:       hdr.Sequence,
		Timeout:        hdr.Timeout,
	}
	h.SetMessageType(msgType)
	cmd := &Command{Header: h}
	if kv != nil {
		cmd.Body = &Body{KeyValue: kv}
	}
	return &Message{Command: cmd, Hmac: make([]byte, HmacMaxLen)}
}

// StatusCode returns the code carried by the command, or StatusInvalid when
// the command has no status.
func (m *Message) StatusCode() StatusCode {
	if m.Command == nil || m.Command.Status == nil || !m.Command.Status.hasCode {
		return StatusInvalid
	}
	return m.Command.Status.Code
}

func (m *Message) Header() *Header {
	if m.Command == nil {
		return nil
	}
	return m.Command.Header
}

func (m *Message) KeyValue() *KeyValue {
	if m.Command == nil || m.Command.Body == nil {
		return nil
	}
	return m.Command.Body.KeyValue
}

// CommandBytes returns the serialized command: the bytes received for a
// decoded message, or the bytes produced by the last SealCommand.
func (m *Message) CommandBytes() []byte {
	return m.commandBytes
}

// SealCommand serializes the structured command and keeps the result as the
// command bytes of the envelope.
func (m *Message) SealCommand() ([]byte, error) {
	if m.Command == nil {
		return nil, &ProtocolError{"message has no command"}
	}
	m.commandBytes = m.Command.Marshal()
	return m.commandBytes, nil
}

func (m *Message) PrettyPrint(w io.Writer) {
	fmt.Fprintln(w, "Message:")
	if h := m.Header(); h != nil {
		fmt.Fprintf(w, "  ClusterVersion\t: %d\n", h.ClusterVersion)
		fmt.Fprintf(w, "  Identity\t: %d\n", h.Identity)
		fmt.Fprintf(w, "  ConnectionID\t: %d\n", h.ConnectionID)
		fmt.Fprintf(w, "  Sequence\t: %d\n", h.Sequence)
		if h.hasAckSequence {
			fmt.Fprintf(w, "  AckSequence\t: %d\n", h.AckSequence)
		}
		if h.hasMessageType {
			fmt.Fprintf(w, "  MessageType\t: %s\n", h.MessageType)
		}
	}
	if kv := m.KeyValue(); kv != nil {
		fmt.Fprintf(w, "  Key\t\t: %q\n", kv.Key)
		if kv.DBVersion != nil {
			fmt.Fprintf(w, "  DBVersion\t: %q\n", kv.DBVersion)
		}
		if kv.NewVersion != nil {
			fmt.Fprintf(w, "  NewVersion\t: %q\n", kv.NewVersion)
		}
		if kv.Tag != nil {
			fmt.Fprintf(w, "  Tag\t\t: %X\n", kv.Tag)
		}
		if kv.Algorithm != AlgorithmNone {
			fmt.Fprintf(w, "  Algorithm\t: %s\n", kv.Algorithm)
		}
	}
	if m.Command != nil && m.Command.Status != nil {
		fmt.Fprintf(w, "  Status\t: %s\n", m.StatusCode())
		if m.Command.Status.StatusMessage != "" {
			fmt.Fprintf(w, "  StatusMessage\t: %s\n", m.Command.Status.StatusMessage)
		}
	}
}
