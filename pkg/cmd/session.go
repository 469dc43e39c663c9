package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foodreg/sampletrail/pkg/session"
)

// NewSessionStore creates the officer session store named by the URL.
// redis:// and rediss:// URLs connect to Redis; "memory" or empty selects
// the in-process store.
func NewSessionStore(ctx context.Context, url string, ttl time.Duration) (session.Store, error) {
	switch {
	case url == "" || url == "memory":
		return session.NewMemoryStore(ttl), nil
	case strings.HasPrefix(url, "redis://") || strings.HasPrefix(url, "rediss://"):
		return session.NewRedisStore(ctx, url, ttl)
	default:
		return nil, fmt.Errorf("unsupported session store URL: %s", url)
	}
}
