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

package coordinator

import (
	"encoding/json"
	"fmt"
)

// NodeState tracks a custodian's progress through a ceremony.
type NodeState int

const (
	// StatePending means the node has not been contacted yet.
	StatePending NodeState = iota
	// StateConnected means a connection to the node is open.
	StateConnected
	// StateStored means the node acknowledged its share.
	StateStored
	// StateRetrieved means the node returned its share for recovery.
	StateRetrieved
	// StateFailed means a step against the node failed.
	StateFailed
)

func (s NodeState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateConnected:
		return "connected"
	case StateStored:
		return "stored"
	case StateRetrieved:
		return "retrieved"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// MarshalJSON encodes the state by name.
func (s NodeState) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a state written by MarshalJSON.
func (s *NodeState) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	state, err := ParseNodeState(name)
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseNodeState returns the state with the given name.
func ParseNodeState(name string) (NodeState, error) {
	for s := StatePending; s <= StateFailed; s++ {
		if s.String() == name {
			return s, nil
		}
	}
	return StatePending, fmt.Errorf("unknown node state %q", name)
}

// NodeStatus is the state of one custodian in a ceremony.
type NodeStatus struct {
	Index    int       `json:"index"`
	Endpoint string    `json:"endpoint"`
	State    NodeState `json:"state"`
	Error    string    `json:"error,omitempty"`
}

// NodeError reports the custodian and step at which a ceremony stopped.
type NodeError struct {
	// Index is the zero-based position of the endpoint.
	Index    int
	Endpoint string
	// Step is the state the node was being moved into when it failed.
	Step NodeState
	Err  error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node %d (%s): %s step failed: %v", e.Index+1, e.Endpoint, stepName(e.Step), e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

func stepName(s NodeState) string {
	switch s {
	case StateConnected:
		return "connect"
	case StateStored:
		return "store"
	case StateRetrieved:
		return "retrieve"
	default:
		return s.String()
	}
}
