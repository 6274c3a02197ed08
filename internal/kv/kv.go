// Package kv is the durable key-value layer behind the todo mirror.
//
// Every driver stores opaque byte blobs under string keys and reports a
// missing key with ErrNotFound. Semantics are a plain overwrite: Set
// replaces whatever was stored, there is no versioning.
package kv

import (
	"context"
	"errors"
)

// Driver identifies a storage backend.
type Driver string

const (
	DriverFile   Driver = "file"   // JSON file per key (default)
	DriverSQLite Driver = "sqlite" // single-table SQLite database
	DriverRedis  Driver = "redis"  // Redis server
	DriverMemory Driver = "memory" // in-process map, lost on exit
)

// Drivers lists every supported driver.
var Drivers = []Driver{DriverFile, DriverSQLite, DriverRedis, DriverMemory}

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("kv: key not found")

// Store is implemented by every driver.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Driver() Driver
	Close() error
}
