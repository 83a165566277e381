package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/prestasys/loan-origination/internal/domain"
)

type limitStateRepository struct {
	redis *redis.Client
}

func NewLimitStateRepository(redisClient *redis.Client) LimitStateRepository {
	return &limitStateRepository{redis: redisClient}
}

func limitKey(clientDocument string) string {
	return fmt.Sprintf("daily_limit:%s", clientDocument)
}

func (r *limitStateRepository) Get(ctx context.Context, clientDocument string) (*domain.ClientLimitState, error) {
	raw, err := r.redis.Get(ctx, limitKey(clientDocument)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var state domain.ClientLimitState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return nil, err
	}

	return &state, nil
}

// Save overwrites the client's counter. No expiry: a stale day's state is
// superseded on the next read, not purged.
func (r *limitStateRepository) Save(ctx context.Context, state *domain.ClientLimitState) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}

	return r.redis.Set(ctx, limitKey(state.ClientDocument), raw, 0).Err()
}
