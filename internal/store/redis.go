package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/inkacorp/solicitudes/internal/record"
)

// DefaultRedisKey is the hash rows are kept in.
const DefaultRedisKey = "solicitudes:rows"

// RedisStore keeps rows as JSON in a single hash keyed by identifier. It is
// meant for local development and demos.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(ctx context.Context, redisURL, key string) (*RedisStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return NewRedisStoreWithClient(c, key), nil
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(c *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{client: c, key: key}
}

// Put inserts or replaces a row.
func (s *RedisStore) Put(ctx context.Context, row map[string]any) error {
	id := record.FromMap(row).ID
	if id == "" {
		return errors.New("row has no identifier")
	}
	data, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}
	return s.client.HSet(ctx, s.key, id, data).Err()
}

func (s *RedisStore) List(ctx context.Context) ([]record.Record, error) {
	all, err := s.client.HGetAll(ctx, s.key).Result()
	observe(opList, err)
	if err != nil {
		return nil, fmt.Errorf("failed to list solicitudes: %w", err)
	}
	out := make([]record.Record, 0, len(all))
	for id, data := range all {
		row, err := decodeRow(data)
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", id, err)
		}
		out = append(out, record.FromMap(row))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (record.Record, error) {
	row, err := s.row(ctx, s.client, id)
	observe(opGet, err)
	if err != nil {
		return record.Record{}, err
	}
	return record.FromMap(row), nil
}

// updateRetries bounds how often Update re-reads a row changed under it.
const updateRetries = 3

// Update merges fields into the row under WATCH, re-reading it when another
// writer changed the hash before the transaction ran.
func (s *RedisStore) Update(ctx context.Context, id string, fields map[string]any) error {
	var err error
	for i := 0; i < updateRetries; i++ {
		err = s.update(ctx, id, fields)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
	}
	observe(opUpdate, err)
	return err
}

func (s *RedisStore) update(ctx context.Context, id string, fields map[string]any) error {
	return s.client.Watch(ctx, func(tx *redis.Tx) error {
		row, err := s.row(ctx, tx, id)
		if err != nil {
			return err
		}
		for k, v := range fields {
			row[k] = v
		}
		data, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to encode row: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, s.key, id, data)
			return nil
		})
		return err
	}, s.key)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	n, err := s.client.HDel(ctx, s.key, id).Result()
	if err == nil && n == 0 {
		err = fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	observe(opDelete, err)
	return err
}

// Close releases the connection pool.
func (s *RedisStore) Close() error { return s.client.Close() }

type hashGetter interface {
	HGet(ctx context.Context, key, field string) *redis.StringCmd
}

func (s *RedisStore) row(ctx context.Context, c hashGetter, id string) (map[string]any, error) {
	data, err := c.HGet(ctx, s.key, id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return decodeRow(data)
}

func decodeRow(data string) (map[string]any, error) {
	var row map[string]any
	dec := json.NewDecoder(bytes.NewReader([]byte(data)))
	dec.UseNumber()
	if err := dec.Decode(&row); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	return row, nil
}
