package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/c360studio/semprov/rewrite"
)

// BucketRewriteMap is the default KV bucket for the rewrite map.
const BucketRewriteMap = "SEMPROV_REWRITE_MAP"

// uriSpace namespaces the KV keys derived from URIs.
var uriSpace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("semprov:rewrite-map"))

type mapEntry struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// KVMapStore keeps the rewrite map in a JetStream key-value bucket, one key
// per mapped URI. URIs are not valid KV keys, so each key is a name-based
// UUID of its URI and the entry carries both ends.
type KVMapStore struct {
	kv     jetstream.KeyValue
	logger *slog.Logger
}

// NewKVMapStore opens the bucket, creating it if it doesn't exist.
func NewKVMapStore(ctx context.Context, js jetstream.JetStream, bucket string, logger *slog.Logger) (*KVMapStore, error) {
	if bucket == "" {
		bucket = BucketRewriteMap
	}
	if logger == nil {
		logger = slog.Default()
	}
	kv, err := getOrCreateBucket(ctx, js, bucket)
	if err != nil {
		return nil, fmt.Errorf("create rewrite map bucket: %w", err)
	}
	return &KVMapStore{kv: kv, logger: logger}, nil
}

func getOrCreateBucket(ctx context.Context, js jetstream.JetStream, name string) (jetstream.KeyValue, error) {
	kv, err := js.KeyValue(ctx, name)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, err
	}
	return js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: fmt.Sprintf("Semprov %s storage", strings.ToLower(name)),
		History:     5, // Keep last 5 revisions
	})
}

func kvKey(uri string) string {
	return uuid.NewSHA1(uriSpace, []byte(uri)).String()
}

// LoadMap reads every live entry of the bucket. An empty bucket returns
// ErrNotFound.
func (s *KVMapStore) LoadMap(ctx context.Context) (rewrite.Map, error) {
	entries, err := s.entries(ctx)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("load rewrite map: %w", ErrNotFound)
	}
	m := make(rewrite.Map, len(entries))
	for _, e := range entries {
		m[e.From] = e.To
	}
	return m, nil
}

func (s *KVMapStore) entries(ctx context.Context) (map[string]mapEntry, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("list rewrite map keys: %w", err)
	}
	out := make(map[string]mapEntry, len(keys))
	for _, key := range keys {
		entry, err := s.kv.Get(ctx, key)
		if err != nil {
			if errors.Is(err, jetstream.ErrKeyDeleted) || errors.Is(err, jetstream.ErrKeyNotFound) {
				continue
			}
			return nil, fmt.Errorf("get rewrite map entry %s: %w", key, err)
		}
		var e mapEntry
		if err := json.Unmarshal(entry.Value(), &e); err != nil {
			return nil, fmt.Errorf("decode rewrite map entry %s: %w", key, err)
		}
		out[key] = e
	}
	return out, nil
}

// SaveMap makes the bucket hold exactly m. Entries whose target did not
// change are not rewritten, so their revision history stays short.
func (s *KVMapStore) SaveMap(ctx context.Context, m rewrite.Map) error {
	current, err := s.entries(ctx)
	if err != nil {
		return err
	}
	var put, deleted int
	for from, to := range m {
		key := kvKey(from)
		if e, ok := current[key]; ok && e.From == from && e.To == to {
			delete(current, key)
			continue
		}
		delete(current, key)
		data, err := json.Marshal(mapEntry{From: from, To: to})
		if err != nil {
			return fmt.Errorf("marshal rewrite map entry: %w", err)
		}
		if _, err := s.kv.Put(ctx, key, data); err != nil {
			return fmt.Errorf("store rewrite map entry: %w", err)
		}
		put++
	}
	for key := range current {
		if err := s.kv.Delete(ctx, key); err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
			return fmt.Errorf("delete rewrite map entry: %w", err)
		}
		deleted++
	}
	s.logger.Debug("Rewrite map saved", "entries", len(m), "written", put, "deleted", deleted)
	return nil
}
