// Package config resolves runtime settings (worker counts, queue
// capacity, data directory, merge fan-in) from CLI flags with
// environment-variable fallback, per SPEC_FULL.md §6.3.
package config

import (
	"os"
	"strconv"
)

// Defaults mirror the component defaults already baked into
// internal/parser and internal/merge, kept here so the CLI layer has a
// single place to display them in --help output.
const (
	DefaultThreads    = 8
	DefaultQueueCap   = 16
	DefaultFanIn      = 8
	DefaultBlockSize  = 128
	DefaultTopK       = 10
	DefaultMaxPending = 1_000_000
)

// EnvInt reads name from the environment and parses it as an int,
// returning fallback if the variable is unset or unparsable.
func EnvInt(name string, fallback int) int {
	v, ok := os.LookupEnv(name)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// EnvString reads name from the environment, returning fallback if
// unset.
func EnvString(name, fallback string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return fallback
}

// Resolve holds the fully-resolved runtime configuration shared by the
// parse, merge, build, and query subcommands.
type Resolve struct {
	DataDir     string
	Threads     int
	QueueCap    int
	FanIn       int
	MaxPending  int
}

// FromEnv seeds a Resolve from environment variables, to be overridden
// by any explicitly-set CLI flags in cmd/mizugram/cli.
func FromEnv() Resolve {
	return Resolve{
		DataDir:    EnvString("MIZUGRAM_DATA_DIR", "."),
		Threads:    EnvInt("MIZUGRAM_THREADS", DefaultThreads),
		QueueCap:   EnvInt("MIZUGRAM_QUEUE_CAP", DefaultQueueCap),
		FanIn:      EnvInt("MIZUGRAM_FANIN", DefaultFanIn),
		MaxPending: EnvInt("MIZUGRAM_MAX_PENDING", DefaultMaxPending),
	}
}
