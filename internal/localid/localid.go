// Package localid generates identifiers for rows created while offline.
// A local id is never sent to or interpreted by the remote API; it only lets
// the local mirror reference the row until the sync engine confirms it and
// records the server-assigned id.
package localid

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// Prefix distinguishes local ids from server UUIDs. The formats cannot
// collide: server ids are bare UUIDs and never start with this marker.
const Prefix = "local_"

var (
	mu   sync.Mutex
	last int64
)

// New returns a monotonically-unique local id: Prefix + nanosecond timestamp.
// Two calls in the same nanosecond (or with a clock stepping backwards) still
// produce distinct, strictly increasing ids.
func New() string {
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UnixNano()
	if now <= last {
		now = last + 1
	}
	last = now
	return Prefix + strconv.FormatInt(now, 10)
}

// IsLocal reports whether id was generated by New (i.e. the row is not yet
// confirmed by the remote system).
func IsLocal(id string) bool { return strings.HasPrefix(id, Prefix) }
