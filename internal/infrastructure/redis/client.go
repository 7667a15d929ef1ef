package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Options tunes the underlying connection pool. Zero values fall back
// to defaults sized for this workload: token consumes and rate-limit
// checks hold a connection only for a single round trip, so the pool
// stays small and the per-command timeouts tight.
type Options struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type Client struct {
	rdb *goredis.Client
}

func New(addr, password string, db int) *Client {
	return NewWithOptions(Options{Addr: addr, Password: password, DB: db})
}

func NewWithOptions(opts Options) *Client {
	if opts.PoolSize == 0 {
		opts.PoolSize = 16
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = 2
	}
	if opts.DialTimeout == 0 {
		opts.DialTimeout = 3 * time.Second
	}
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 500 * time.Millisecond
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 500 * time.Millisecond
	}

	return &Client{
		rdb: goredis.NewClient(&goredis.Options{
			Addr:         opts.Addr,
			Password:     opts.Password,
			DB:           opts.DB,
			PoolSize:     opts.PoolSize,
			MinIdleConns: opts.MinIdleConns,
			DialTimeout:  opts.DialTimeout,
			ReadTimeout:  opts.ReadTimeout,
			WriteTimeout: opts.WriteTimeout,
		}),
	}
}

// Ping bounds its own deadline so bootstrap checks fail fast even when
// the caller passed an unbounded context.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
