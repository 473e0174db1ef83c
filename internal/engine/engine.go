// Package engine implements the pluggable storage facade and the
// log-structured engine that is this module's core.
package engine

import "errors"

// Engine is the uniform contract shared by the log-structured engine and any
// adapter engine (see internal/boltstore). The server holds exactly one
// instance and dispatches every request through it.
type Engine interface {
	Set(key, value string) error
	Get(key string) (value string, ok bool, err error)
	Remove(key string) error
}

var (
	// ErrKeyNotFound is returned by Remove when the key does not exist.
	ErrKeyNotFound = errors.New("key not found")
	// ErrCorruption signals an Empty command record read from disk, or any
	// record whose length exceeds what the reader can supply.
	ErrCorruption = errors.New("engine: corrupted log")
)
