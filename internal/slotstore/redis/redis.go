// Package redis implements a Redis-backed slot store. Only
// Serialized-strategy slots can live here: a slot is persisted as JSON, so
// the stored result must round-trip through encoding/json and identity-based
// argument lists cannot be represented. The engine enforces that constraint.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/vnykmshr/memo-go/internal/slot"
)

// Store implements slotstore.Store on top of a Redis client.
type Store struct {
	client    redis.Cmdable
	keyPrefix string
	ctx       context.Context
}

// Config holds Redis store configuration.
type Config struct {
	// Client is the Redis client to use.
	Client redis.Cmdable

	// KeyPrefix is prepended to all slot keys to avoid conflicts.
	// Default: "memo:".
	KeyPrefix string

	// Context for Redis operations.
	Context context.Context
}

// serializedSlot is the wire form of a slot.
type serializedSlot struct {
	ArgsKey     string          `json:"args_key"`
	Result      json.RawMessage `json:"result"`
	Initialized bool            `json:"initialized"`
}

// New creates a new Redis slot store.
func New(config *Config) (*Store, error) {
	if config.Client == nil {
		return nil, fmt.Errorf("redis client is required")
	}

	ctx := config.Context
	if ctx == nil {
		ctx = context.Background()
	}

	keyPrefix := config.KeyPrefix
	if keyPrefix == "" {
		keyPrefix = "memo:"
	}

	return &Store{
		client:    config.Client,
		keyPrefix: keyPrefix,
		ctx:       ctx,
	}, nil
}

// Get retrieves the slot for (owner, key).
func (s *Store) Get(owner, key string) (*slot.Slot, bool) {
	redisKey := s.buildKey(owner, key)
	data, err := s.client.Get(s.ctx, redisKey).Result()
	if err != nil {
		return nil, false
	}

	var ser serializedSlot
	if err := json.Unmarshal([]byte(data), &ser); err != nil {
		// Remove the corrupted key rather than serving it forever.
		s.client.Del(s.ctx, redisKey)
		return nil, false
	}

	var result any
	if len(ser.Result) > 0 {
		if err := json.Unmarshal(ser.Result, &result); err != nil {
			s.client.Del(s.ctx, redisKey)
			return nil, false
		}
	}

	return &slot.Slot{
		ArgsKey:     ser.ArgsKey,
		Result:      result,
		Initialized: ser.Initialized,
	}, true
}

// Set stores the slot under (owner, key).
func (s *Store) Set(owner, key string, sl *slot.Slot) error {
	result, err := json.Marshal(sl.Result)
	if err != nil {
		return fmt.Errorf("failed to serialize slot result: %w", err)
	}

	data, err := json.Marshal(serializedSlot{
		ArgsKey:     sl.ArgsKey,
		Result:      result,
		Initialized: sl.Initialized,
	})
	if err != nil {
		return fmt.Errorf("failed to serialize slot: %w", err)
	}

	return s.client.Set(s.ctx, s.buildKey(owner, key), data, 0).Err()
}

// Delete removes a single slot.
func (s *Store) Delete(owner, key string) error {
	return s.client.Del(s.ctx, s.buildKey(owner, key)).Err()
}

// DeleteOwner removes every slot belonging to owner.
func (s *Store) DeleteOwner(owner string) error {
	keys, err := s.ownerKeys(owner)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(s.ctx, keys...).Err()
}

// Owners returns all owner identifiers with at least one slot.
func (s *Store) Owners() []string {
	keys, err := s.client.Keys(s.ctx, s.keyPrefix+"*").Result()
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var owners []string
	for _, key := range keys {
		rest := strings.TrimPrefix(key, s.keyPrefix)
		owner, _, ok := strings.Cut(rest, ":")
		if !ok {
			continue
		}
		if _, dup := seen[owner]; dup {
			continue
		}
		seen[owner] = struct{}{}
		owners = append(owners, owner)
	}
	return owners
}

// Len returns the total number of stored slots.
func (s *Store) Len() int {
	keys, err := s.client.Keys(s.ctx, s.keyPrefix+"*").Result()
	if err != nil {
		return 0
	}
	return len(keys)
}

// Close is a no-op; the caller owns the Redis client lifecycle.
func (s *Store) Close() error {
	return nil
}

func (s *Store) buildKey(owner, key string) string {
	return s.keyPrefix + owner + ":" + key
}

func (s *Store) ownerKeys(owner string) ([]string, error) {
	return s.client.Keys(s.ctx, s.keyPrefix+owner+":*").Result()
}
