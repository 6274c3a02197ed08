package kv

import (
	"context"
	"fmt"
)

// Options selects and configures a driver.
type Options struct {
	Driver      Driver
	Dir         string // file driver
	SQLitePath  string // sqlite driver
	RedisURL    string // redis driver
	RedisPrefix string // redis driver, prepended to keys
}

// Open builds the store named by opts.Driver. An empty driver means file.
func Open(ctx context.Context, opts Options) (Store, error) {
	switch opts.Driver {
	case "", DriverFile:
		return NewFile(opts.Dir)
	case DriverSQLite:
		return NewSQLite(ctx, opts.SQLitePath)
	case DriverRedis:
		return NewRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case DriverMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

// ParseDriver validates a driver name.
func ParseDriver(s string) (Driver, error) {
	for _, d := range Drivers {
		if string(d) == s {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown storage driver %q", s)
}
