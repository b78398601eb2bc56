package indexer

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CursorKind tells how far the indexer has read a chain
type CursorKind int

const (
	CursorNone CursorKind = iota
	CursorBlock
	CursorTransaction
)

// Cursor is the resume position: nothing yet, a block height or a transaction signature
type Cursor struct {
	Kind        CursorKind
	Block       uint64
	Transaction string
}

// NoCursor starts from the beginning of the chain
var NoCursor = Cursor{}

// BlockCursor resumes at a block height
func BlockCursor(height uint64) Cursor { return Cursor{Kind: CursorBlock, Block: height} }

// TransactionCursor resumes after a transaction
func TransactionCursor(hash string) Cursor { return Cursor{Kind: CursorTransaction, Transaction: hash} }

func (c Cursor) String() string {
	switch c.Kind {
	case CursorBlock:
		return "block " + strconv.FormatUint(c.Block, 10)
	case CursorTransaction:
		return "tx " + c.Transaction
	default:
		return "none"
	}
}

// MarshalJSON writes "None", {"Block":n} or {"Transaction":"..."}
func (c Cursor) MarshalJSON() ([]byte, error) {
	switch c.Kind {
	case CursorBlock:
		return json.Marshal(map[string]uint64{"Block": c.Block})
	case CursorTransaction:
		return json.Marshal(map[string]string{"Transaction": c.Transaction})
	default:
		return []byte(`"None"`), nil
	}
}

func (c *Cursor) UnmarshalJSON(data []byte) error {
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil {
		if tag != "None" {
			return fmt.Errorf("unknown cursor %q", tag)
		}
		*c = NoCursor
		return nil
	}
	var tagged struct {
		Block       *uint64 `json:"Block"`
		Transaction *string `json:"Transaction"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return fmt.Errorf("decode cursor: %w", err)
	}
	switch {
	case tagged.Block != nil:
		*c = BlockCursor(*tagged.Block)
	case tagged.Transaction != nil:
		*c = TransactionCursor(*tagged.Transaction)
	default:
		return fmt.Errorf("unknown cursor %s", data)
	}
	return nil
}

// StateKind is a step of the indexing loop
type StateKind int

const (
	StateInit StateKind = iota
	StateCheckForUpdates
	StateProcessing
	StateWaiting
	StateStopped
)

var stateNames = [...]string{"init", "check_for_updates", "processing", "waiting", "stopped"}
var stateTags = [...]string{"Init", "CheckForUpdates", "Processing", "Waiting", "Stopped"}

// String returns the snake_case state name
func (k StateKind) String() string {
	if int(k) < len(stateNames) {
		return stateNames[k]
	}
	return "unknown"
}

// State is the indexer state; Until (unix seconds) is set while waiting
// and Message once stopped
type State struct {
	Kind    StateKind
	Cursor  Cursor
	Until   int64
	Message string
}

func Init() State { return State{Kind: StateInit} }

func CheckForUpdates(cursor Cursor) State {
	return State{Kind: StateCheckForUpdates, Cursor: cursor}
}

func Processing(cursor Cursor) State { return State{Kind: StateProcessing, Cursor: cursor} }

func Waiting(cursor Cursor, until int64) State {
	return State{Kind: StateWaiting, Cursor: cursor, Until: until}
}

func Stopped(message string) State { return State{Kind: StateStopped, Message: message} }

func (s State) String() string {
	switch s.Kind {
	case StateInit:
		return "Init"
	case StateWaiting:
		return fmt.Sprintf("Waiting(%s, until %d)", s.Cursor, s.Until)
	case StateStopped:
		return fmt.Sprintf("Stopped(%s)", s.Message)
	default:
		return fmt.Sprintf("%s(%s)", stateTags[s.Kind], s.Cursor)
	}
}

// MarshalJSON writes "Init" or {"<Kind>": {fields}}
func (s State) MarshalJSON() ([]byte, error) {
	var body any
	switch s.Kind {
	case StateInit:
		return []byte(`"Init"`), nil
	case StateCheckForUpdates, StateProcessing:
		body = struct {
			Cursor Cursor `json:"cursor"`
		}{s.Cursor}
	case StateWaiting:
		body = struct {
			Cursor Cursor `json:"cursor"`
			Until  int64  `json:"until"`
		}{s.Cursor, s.Until}
	case StateStopped:
		body = struct {
			Message string `json:"message"`
		}{s.Message}
	default:
		return nil, fmt.Errorf("unknown state %d", s.Kind)
	}
	return json.Marshal(map[string]any{stateTags[s.Kind]: body})
}

// transition moves s to next. It reports false once stopped; changed is
// false for Waiting→Waiting, which keeps the original deadline, and for
// Processing→Processing, which takes the new cursor quietly.
func (s *State) transition(next State) (ok, changed bool) {
	switch {
	case s.Kind == StateStopped:
		return false, false
	case s.Kind == StateWaiting && next.Kind == StateWaiting:
		return true, false
	case s.Kind == StateProcessing && next.Kind == StateProcessing:
		*s = next
		return true, false
	default:
		*s = next
		return true, true
	}
}
