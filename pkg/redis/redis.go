package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

type Redis interface {
	RDB() *goredis.Client
	Close() error
}

type Config struct {
	Host     string
	Port     uint16
	Password string
	DB       int
}

type redis struct {
	rdb *goredis.Client
}

func New(cfg *Config) (Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(cfg.Host, strconv.Itoa(int(cfg.Port))),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return &redis{rdb: rdb}, nil
}

// NewFromClient wraps an already connected client.
func NewFromClient(rdb *goredis.Client) Redis {
	return &redis{rdb: rdb}
}

func (r *redis) RDB() *goredis.Client {
	return r.rdb
}

func (r *redis) Close() error {
	return r.rdb.Close()
}
