package cache

import (
	"errors"
	"time"

	"github.com/matzehuels/badgeforge/pkg/httputil"
)

// ErrNetwork marks a failure to reach a cache server.
var ErrNetwork = errors.New("cache server unreachable")

// connectBackoff governs the initial ping of remote caches.
var connectBackoff = httputil.Backoff{Attempts: 3, Initial: 500 * time.Millisecond, Max: 2 * time.Second}
