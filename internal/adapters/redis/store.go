package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/bft-labs/repokit/pkg/repository"
)

// Store implements repository.LocalDataSource on Redis.
//
// Entities are JSON-encoded in a hash keyed by id. A sorted set scored by a
// per-namespace sequence keeps insertion order, so GetAll returns entities
// in the order they were first saved.
type Store[E any] struct {
	rdb       redis.Cmdable
	namespace string
	key       func(E) string
}

var _ repository.LocalDataSource[struct{}] = (*Store[struct{}])(nil)

// NewStore creates a store under the given key namespace, e.g. "notes".
func NewStore[E any](rdb redis.Cmdable, namespace string, key func(E) string) *Store[E] {
	return &Store[E]{rdb: rdb, namespace: namespace, key: key}
}

// Key helpers
func itemsKey(ns string) string { return fmt.Sprintf("repokit:%s:items", ns) }
func orderKey(ns string) string { return fmt.Sprintf("repokit:%s:order", ns) }
func seqKey(ns string) string   { return fmt.Sprintf("repokit:%s:seq", ns) }

func encode[E any](e E) (string, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return "", fmt.Errorf("encode entity: %w", err)
	}
	return string(data), nil
}

func decode[E any](s string) (E, error) {
	var e E
	if err := json.Unmarshal([]byte(s), &e); err != nil {
		return e, fmt.Errorf("decode entity: %w", err)
	}
	return e, nil
}

// GetAll returns every entity in insertion order.
func (s *Store[E]) GetAll(ctx context.Context) ([]E, error) {
	ids, err := s.rdb.ZRange(ctx, orderKey(s.namespace), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("zrange failed: %w", err)
	}
	out := make([]E, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	vals, err := s.rdb.HMGet(ctx, itemsKey(s.namespace), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("hmget failed: %w", err)
	}
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			// Order entry without data; skip it.
			continue
		}
		e, err := decode[E](raw)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// GetByID returns the entity or repository.ErrNotFound.
func (s *Store[E]) GetByID(ctx context.Context, id string) (E, error) {
	raw, err := s.rdb.HGet(ctx, itemsKey(s.namespace), id).Result()
	if errors.Is(err, redis.Nil) {
		var zero E
		return zero, fmt.Errorf("%s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		var zero E
		return zero, fmt.Errorf("hget failed: %w", err)
	}
	return decode[E](raw)
}

// Save inserts or replaces an entity, keeping its original position.
func (s *Store[E]) Save(ctx context.Context, entity E) error {
	raw, err := encode(entity)
	if err != nil {
		return err
	}
	seq, err := s.rdb.Incr(ctx, seqKey(s.namespace)).Result()
	if err != nil {
		return fmt.Errorf("incr failed: %w", err)
	}

	id := s.key(entity)
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, itemsKey(s.namespace), id, raw)
		p.ZAddNX(ctx, orderKey(s.namespace), redis.Z{Score: float64(seq), Member: id})
		return nil
	})
	if err != nil {
		return fmt.Errorf("save failed: %w", err)
	}
	return nil
}

// SaveAll replaces the whole namespace in one transaction.
func (s *Store[E]) SaveAll(ctx context.Context, entities []E) error {
	fields := make([]any, 0, 2*len(entities))
	members := make([]redis.Z, 0, len(entities))
	for i, e := range entities {
		raw, err := encode(e)
		if err != nil {
			return err
		}
		id := s.key(e)
		fields = append(fields, id, raw)
		members = append(members, redis.Z{Score: float64(i + 1), Member: id})
	}

	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, itemsKey(s.namespace), orderKey(s.namespace))
		if len(entities) > 0 {
			p.HSet(ctx, itemsKey(s.namespace), fields...)
			p.ZAdd(ctx, orderKey(s.namespace), members...)
		}
		p.Set(ctx, seqKey(s.namespace), len(entities), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save all failed: %w", err)
	}
	return nil
}

// Delete removes an entity. Missing ids are ignored.
func (s *Store[E]) Delete(ctx context.Context, id string) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, itemsKey(s.namespace), id)
		p.ZRem(ctx, orderKey(s.namespace), id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	return nil
}
