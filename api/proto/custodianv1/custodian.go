// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-quorum.
//
// go-quorum is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package custodianv1 contains the wire messages and gRPC service
// definition for the custodian protocol described in custodian.proto.
//
// Messages are encoded with the standard protobuf wire format using
// protowire, so any protobuf implementation generated from custodian.proto
// interoperates with this package.
package custodianv1

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// Message is implemented by every custodian wire message.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal(b []byte) error
	Reset()
}

// JoinRequest asks a node to join a ceremony.
type JoinRequest struct {
	NodeId string
}

func (m *JoinRequest) GetNodeId() string {
	if m != nil {
		return m.NodeId
	}
	return ""
}

func (m *JoinRequest) Reset() { *m = JoinRequest{} }

func (m *JoinRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.NodeId)
	return b, nil
}

func (m *JoinRequest) Unmarshal(b []byte) error {
	m.Reset()
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.NodeId = v
			return n, true
		}
		return 0, false
	})
}

// JoinResponse acknowledges a join.
type JoinResponse struct {
	Success       bool
	AssignedIndex uint32
	Message       string
}

func (m *JoinResponse) GetSuccess() bool {
	if m != nil {
		return m.Success
	}
	return false
}

func (m *JoinResponse) GetAssignedIndex() uint32 {
	if m != nil {
		return m.AssignedIndex
	}
	return 0
}

func (m *JoinResponse) GetMessage() string {
	if m != nil {
		return m.Message
	}
	return ""
}

func (m *JoinResponse) Reset() { *m = JoinResponse{} }

func (m *JoinResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendBool(b, 1, m.Success)
	b = appendVarint(b, 2, uint64(m.AssignedIndex))
	b = appendString(b, 3, m.Message)
	return b, nil
}

func (m *JoinResponse) Unmarshal(b []byte) error {
	m.Reset()
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Success = protowire.DecodeBool(v)
			return n, true
		case num == 2 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.AssignedIndex = uint32(v)
			return n, true
		case num == 3 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.Message = v
			return n, true
		}
		return 0, false
	})
}

// ShareData carries one share for a ceremony. X and Y are 32-byte
// big-endian scalar encodings.
type ShareData struct {
	CeremonyId string
	X          []byte
	Y          []byte
}

func (m *ShareData) GetCeremonyId() string {
	if m != nil {
		return m.CeremonyId
	}
	return ""
}

func (m *ShareData) GetX() []byte {
	if m != nil {
		return m.X
	}
	return nil
}

func (m *ShareData) GetY() []byte {
	if m != nil {
		return m.Y
	}
	return nil
}

func (m *ShareData) Reset() { *m = ShareData{} }

func (m *ShareData) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.CeremonyId)
	b = appendBytes(b, 2, m.X)
	b = appendBytes(b, 3, m.Y)
	return b, nil
}

func (m *ShareData) Unmarshal(b []byte) error {
	m.Reset()
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if typ != protowire.BytesType {
			return 0, false
		}
		switch num {
		case 1:
			v, n := protowire.ConsumeString(b)
			m.CeremonyId = v
			return n, true
		case 2:
			v, n := protowire.ConsumeBytes(b)
			m.X = append([]byte(nil), v...)
			return n, true
		case 3:
			v, n := protowire.ConsumeBytes(b)
			m.Y = append([]byte(nil), v...)
			return n, true
		}
		return 0, false
	})
}

// StoreResponse acknowledges a stored share.
type StoreResponse struct {
	Success bool
	Message string
}

func (m *StoreResponse) GetSuccess() bool {
	if m != nil {
		return m.Success
	}
	return false
}

func (m *StoreResponse) GetMessage() string {
	if m != nil {
		return m.Message
	}
	return ""
}

func (m *StoreResponse) Reset() { *m = StoreResponse{} }

func (m *StoreResponse) Marshal() ([]byte, error) {
	var b []byte
	b = appendBool(b, 1, m.Success)
	b = appendString(b, 2, m.Message)
	return b, nil
}

func (m *StoreResponse) Unmarshal(b []byte) error {
	m.Reset()
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		switch {
		case num == 1 && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			m.Success = protowire.DecodeBool(v)
			return n, true
		case num == 2 && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			m.Message = v
			return n, true
		}
		return 0, false
	})
}

// RetrieveRequest asks for the share held for a ceremony.
type RetrieveRequest struct {
	CeremonyId string
}

func (m *RetrieveRequest) GetCeremonyId() string {
	if m != nil {
		return m.CeremonyId
	}
	return ""
}

func (m *RetrieveRequest) Reset() { *m = RetrieveRequest{} }

func (m *RetrieveRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendString(b, 1, m.CeremonyId)
	return b, nil
}

func (m *RetrieveRequest) Unmarshal(b []byte) error {
	m.Reset()
	return consumeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, bool) {
		if num == 1 && typ == protowire.BytesType {
			v, n := protowire.ConsumeString(b)
			m.CeremonyId = v
			return n, true
		}
		return 0, false
	})
}

// consumeFields walks the fields in b and hands each value to fn, which
// returns the bytes it consumed and false for fields it does not know.
// Unknown fields are skipped.
func consumeFields(b []byte, fn func(num protowire.Number, typ protowire.Type, b []byte) (int, bool)) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return fmt.Errorf("custodianv1: invalid tag: %w", protowire.ParseError(n))
		}
		b = b[n:]

		n, known := fn(num, typ, b)
		if !known {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return fmt.Errorf("custodianv1: invalid field %d: %w", num, protowire.ParseError(n))
		}
		b = b[n:]
	}
	return nil
}

// Proto3 scalar fields are omitted when they hold the zero value.

func appendString(b []byte, num protowire.Number, v string) []byte {
	if v == "" {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendString(b, v)
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendVarint(b []byte, num protowire.Number, v uint64) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, v)
}

func appendBool(b []byte, num protowire.Number, v bool) []byte {
	return appendVarint(b, num, protowire.EncodeBool(v))
}
