// SPDX-License-Identifier: Apache-2.0
// Copyright (c) 2025 Kaz Walker, Thermoquad

package carproto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// wireMessage is the request record. Field order matches what the firmware
// examples send: H, N, D1, D2, D3.
type wireMessage struct {
	H  string `json:"H"`
	N  int    `json:"N"`
	D1 *int   `json:"D1,omitempty"`
	D2 *int   `json:"D2,omitempty"`
	D3 *int   `json:"D3,omitempty"`
}

// EncodeCommand builds the wire record for a command with the given sequence
// number.
func EncodeCommand(seq uint64, c Command) ([]byte, error) {
	code := c.Code()
	if code == 0 {
		return nil, fmt.Errorf("unknown command kind %d", c.Kind())
	}
	if c.Kind() == KindMove && !c.Direction().Valid() {
		return nil, fmt.Errorf("invalid move direction %d", c.Direction())
	}

	msg := wireMessage{H: strconv.FormatUint(seq, 10), N: code}
	msg.D1, msg.D2, msg.D3 = c.Args()

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode command: %w", err)
	}
	return data, nil
}

// MustEncodeCommand encodes a command and panics on error. Only use it with
// commands built by the NewXxxCommand constructors.
func MustEncodeCommand(seq uint64, c Command) []byte {
	data, err := EncodeCommand(seq, c)
	if err != nil {
		panic(fmt.Sprintf("carproto: encode error: %v", err))
	}
	return data
}
