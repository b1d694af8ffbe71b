// Package notify fans stored audit entries out over Redis pub/sub.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/and161185/secure-query-proxy/internal/convert"
	"github.com/and161185/secure-query-proxy/internal/model"
	"github.com/and161185/secure-query-proxy/internal/rpc"
)

// Publisher is the subset of redis.Cmdable used by RedisSink.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// RedisSink publishes each audit entry to a single channel, in the same JSON
// form the HTTP API serves.
type RedisSink struct {
	pub     Publisher
	channel string
}

// NewRedisSink returns a sink publishing to channel.
func NewRedisSink(pub Publisher, channel string) *RedisSink {
	return &RedisSink{pub: pub, channel: channel}
}

// Publish implements service.AuditSink.
func (s *RedisSink) Publish(ctx context.Context, e model.AuditLog) error {
	wire := convert.ToWireAuditLog(e)
	data, err := rpc.MarshalJSON(&wire)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	if err := s.pub.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", s.channel, err)
	}
	return nil
}

// Dial connects to Redis. url is either a redis:// URL or a bare host:port.
func Dial(ctx context.Context, url string) (*redis.Client, error) {
	opts := &redis.Options{Addr: url}
	if strings.Contains(url, "://") {
		var err error
		if opts, err = redis.ParseURL(url); err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}
