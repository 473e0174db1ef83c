package engine

import (
	"encoding/json"
	"fmt"
)

// cmdKind tags the shape of a Cmd. It is never serialized directly; Cmd's
// MarshalJSON/UnmarshalJSON render it as a JSON object keyed by variant name,
// matching the original source's internally-tagged Rust enum on the wire.
type cmdKind uint8

const (
	cmdEmpty cmdKind = iota
	cmdSet
	cmdRemove
)

// Cmd is a single command record: Set{key,value}, Remove{key}, or the
// reserved Empty placeholder. Empty must never be written to the log; reading
// one back from disk is a fatal corruption signal (see Store.recover).
type Cmd struct {
	kind  cmdKind
	key   string
	value string
}

// NewSet builds a Set command.
func NewSet(key, value string) Cmd { return Cmd{kind: cmdSet, key: key, value: value} }

// NewRemove builds a Remove command.
func NewRemove(key string) Cmd { return Cmd{kind: cmdRemove, key: key} }

// IsEmpty reports whether c is the reserved Empty placeholder.
func (c Cmd) IsEmpty() bool { return c.kind == cmdEmpty }

// IsSet reports whether c is a Set command.
func (c Cmd) IsSet() bool { return c.kind == cmdSet }

// Key returns the command's key. Panics on Empty, which has none.
func (c Cmd) Key() string {
	if c.kind == cmdEmpty {
		panic("engine: Key() called on Empty command")
	}
	return c.key
}

// Value returns the value of a Set command, or "" for Remove/Empty.
func (c Cmd) Value() string { return c.value }

type setPayload struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type removePayload struct {
	Key string `json:"key"`
}

// MarshalJSON renders the command as an internally-tagged object, e.g.
// {"Set":{"key":"k","value":"v"}} or {"Remove":{"key":"k"}}.
func (c Cmd) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case cmdSet:
		return json.Marshal(struct {
			Set setPayload `json:"Set"`
		}{setPayload{Key: c.key, Value: c.value}})
	case cmdRemove:
		return json.Marshal(struct {
			Remove removePayload `json:"Remove"`
		}{removePayload{Key: c.key}})
	default:
		return []byte(`"Empty"`), nil
	}
}

// UnmarshalJSON accepts the same tagged-object shapes MarshalJSON produces,
// plus the bare string "Empty" for the reserved placeholder.
func (c *Cmd) UnmarshalJSON(data []byte) error {
	var probe struct {
		Set    *setPayload    `json:"Set"`
		Remove *removePayload `json:"Remove"`
	}
	if err := json.Unmarshal(data, &probe); err == nil {
		switch {
		case probe.Set != nil:
			*c = Cmd{kind: cmdSet, key: probe.Set.Key, value: probe.Set.Value}
			return nil
		case probe.Remove != nil:
			*c = Cmd{kind: cmdRemove, key: probe.Remove.Key}
			return nil
		}
	}
	var tag string
	if err := json.Unmarshal(data, &tag); err == nil && tag == "Empty" {
		*c = Cmd{kind: cmdEmpty}
		return nil
	}
	return fmt.Errorf("engine: unrecognized command record: %s", data)
}
