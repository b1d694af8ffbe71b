package repository

import (
	"strconv"
	"sync/atomic"

	"github.com/gofrs/uuid/v5"
)

// IDFunc returns a fresh identifier on every call. It must be safe for concurrent use.
type IDFunc func() string

// Sequence returns decimal ids start+1, start+2, ... backed by an atomic counter.
func Sequence(start uint64) IDFunc {
	var n atomic.Uint64
	n.Store(start)
	return func() string {
		return strconv.FormatUint(n.Add(1), 10)
	}
}

// UUIDs returns random v4 UUID strings.
func UUIDs() IDFunc {
	return func() string {
		return uuid.Must(uuid.NewV4()).String()
	}
}
