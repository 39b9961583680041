// Package branchcache provides a Redis read-through cache for branch lookups.
package branchcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-petr/current-account/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "branch:"

// BranchRepo is the branch lookup being cached.
type BranchRepo interface {
	Get(ctx context.Context, id int32) (domain.Branch, error)
}

// Repo serves branches from Redis and falls back to the wrapped repo on a miss.
//
// Branches never change once created, so entries only expire by TTL.
type Repo struct {
	next   BranchRepo
	client *redis.Client
	ttl    time.Duration
}

// New returns the caching branch Repo.
func New(next BranchRepo, client *redis.Client, ttl time.Duration) *Repo {
	return &Repo{
		next:   next,
		client: client,
		ttl:    ttl,
	}
}

// NewClient creates a Redis client and checks the connection.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("branchcache: ping: %w", err)
	}

	return client, nil
}

func key(id int32) string {
	return keyPrefix + strconv.FormatInt(int64(id), 10)
}

// Get returns the branch with the given id.
//
// Redis failures are logged and never returned. Not found results are not cached.
func (r *Repo) Get(ctx context.Context, id int32) (domain.Branch, error) {
	l := zerolog.Ctx(ctx)

	raw, err := r.client.Get(ctx, key(id)).Bytes()

	switch {
	case err == nil:
		var b domain.Branch

		uerr := json.Unmarshal(raw, &b)
		if uerr == nil {
			return b, nil
		}

		l.Warn().Err(uerr).Int32("branch_id", id).Msg("corrupted branch cache entry")
	case !errors.Is(err, redis.Nil):
		l.Warn().Err(err).Int32("branch_id", id).Msg("branch cache read failed")
	}

	b, err := r.next.Get(ctx, id)
	if err != nil {
		return domain.Branch{}, err
	}

	payload, err := json.Marshal(b)
	if err != nil {
		l.Warn().Err(err).Send()
		return b, nil
	}

	if err := r.client.Set(ctx, key(id), payload, r.ttl).Err(); err != nil {
		l.Warn().Err(err).Int32("branch_id", id).Msg("branch cache write failed")
	}

	return b, nil
}
