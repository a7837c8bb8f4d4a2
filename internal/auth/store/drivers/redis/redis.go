// Package redis implements the revocation registry and the two-factor
// challenge store on Redis. Both lean on native key TTLs, so neither needs
// the in-process pruning the memory drivers do.
package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// NewClient connects to addr and verifies the connection before returning.
func NewClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
