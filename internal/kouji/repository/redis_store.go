package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/penguin-works/kouji-backend/internal/kouji/domain"
)

const (
	datesKeyPrefix = "kouji:dates:"       // JSON value per project: kouji:dates:{path}:{project_id}
	indexKeyPrefix = "kouji:dates_index:" // set of project ids stored for one path
	datesPathsKey  = "kouji:dates_paths"  // every path ever written
)

// RedisStore keeps each range as a JSON string, one index set per listing
// path and a set of the known paths.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// List returns the ranges stored for path, or for every path when path is
// empty. Index members whose value has gone are removed.
func (r *RedisStore) List(ctx context.Context, path string) ([]domain.StoredDates, error) {
	paths := []string{path}
	if path == "" {
		var err error
		paths, err = r.client.SMembers(ctx, datesPathsKey).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to list stored paths: %w", err)
		}
	}

	out := make([]domain.StoredDates, 0, 16)
	for _, p := range paths {
		ds, err := r.listPath(ctx, p)
		if err != nil {
			return nil, err
		}
		out = append(out, ds...)
	}
	return out, nil
}

func (r *RedisStore) listPath(ctx context.Context, path string) ([]domain.StoredDates, error) {
	ids, err := r.client.SMembers(ctx, r.indexKey(path)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list stored dates: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.datesKey(path, id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load stored dates: %w", err)
	}

	out := make([]domain.StoredDates, 0, len(values))
	var orphans []any
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			orphans = append(orphans, ids[i])
			continue
		}
		var d domain.StoredDates
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("failed to unmarshal dates %s: %w", ids[i], err)
		}
		out = append(out, d)
	}
	if len(orphans) > 0 {
		if err := r.client.SRem(ctx, r.indexKey(path), orphans...).Err(); err != nil {
			return nil, fmt.Errorf("failed to drop orphaned index entries: %w", err)
		}
	}
	return out, nil
}

func (r *RedisStore) Get(ctx context.Context, path, projectID string) (domain.StoredDates, error) {
	data, err := r.client.Get(ctx, r.datesKey(path, projectID)).Result()
	if errors.Is(err, redis.Nil) {
		return domain.StoredDates{}, domain.ErrDatesNotFound
	}
	if err != nil {
		return domain.StoredDates{}, fmt.Errorf("failed to get dates: %w", err)
	}

	var d domain.StoredDates
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return domain.StoredDates{}, fmt.Errorf("failed to unmarshal dates: %w", err)
	}
	return d, nil
}

func (r *RedisStore) Put(ctx context.Context, d domain.StoredDates) error {
	return r.PutAll(ctx, []domain.StoredDates{d})
}

func (r *RedisStore) PutAll(ctx context.Context, ds []domain.StoredDates) error {
	if len(ds) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, d := range ds {
		data, err := json.Marshal(d)
		if err != nil {
			return fmt.Errorf("failed to marshal dates: %w", err)
		}
		pipe.Set(ctx, r.datesKey(d.Path, d.ProjectID), data, 0)
		pipe.SAdd(ctx, r.indexKey(d.Path), d.ProjectID)
		pipe.SAdd(ctx, datesPathsKey, d.Path)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store dates: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, keys ...domain.DatesKey) error {
	if len(keys) == 0 {
		return nil
	}

	pipe := r.client.TxPipeline()
	for _, k := range keys {
		pipe.Del(ctx, r.datesKey(k.Path, k.ProjectID))
		pipe.SRem(ctx, r.indexKey(k.Path), k.ProjectID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete dates: %w", err)
	}
	return nil
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisStore) datesKey(path, projectID string) string {
	return datesKeyPrefix + path + ":" + projectID
}

func (r *RedisStore) indexKey(path string) string {
	return indexKeyPrefix + path
}
