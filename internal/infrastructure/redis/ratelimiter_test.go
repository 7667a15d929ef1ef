package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func TestFixedWindow_AllowsUpToLimit(t *testing.T) {
	t.Parallel()

	srv, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	c := New(srv.Addr(), "", 0)
	t.Cleanup(func() { c.Close() })
	l := NewFixedWindowLimiter(c)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := l.AllowFixedWindow(ctx, "rl:test", 3, time.Minute)
		require.NoError(t, err)
		require.True(t, d.Allowed, "request %d should be allowed", i+1)
	}

	d, err := l.AllowFixedWindow(ctx, "rl:test", 3, time.Minute)
	require.NoError(t, err)
	require.False(t, d.Allowed)
	require.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestFixedWindow_NilRedis_FailOpen(t *testing.T) {
	t.Parallel()

	l := NewFixedWindowLimiter(nil)
	d, err := l.AllowFixedWindow(context.Background(), "rl:test", 1, time.Minute)
	require.NoError(t, err)
	require.True(t, d.Allowed)
}
