package docstore

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// Each document lives in a hash; field values are raw JSON strings.
// A sorted set per collection indexes documents by insertion time.
//
//	{ns}:{collection}:doc:{id}  hash
//	{ns}:{collection}:index     zset, score = insertion time in microseconds
//	{ns}:collections            set of collection names
const (
	redisDocSegment   = "doc"
	redisIndexSegment = "index"
	redisCollections  = "collections"
)

// updateScript merges fields into an existing hash and returns the result.
// It returns nil when the hash does not exist so the update never creates a document.
var updateScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return false
end
redis.call('HSET', KEYS[1], unpack(ARGV))
return redis.call('HGETALL', KEYS[1])
`)

// RedisStore keeps documents in Redis hashes.
type RedisStore struct {
	client    redis.UniversalClient
	namespace string
	opts      options
}

// NewRedisStore wraps an open client. namespace prefixes every key and is
// reported as the database name.
func NewRedisStore(client redis.UniversalClient, namespace string, opts ...Option) *RedisStore {
	if namespace == "" {
		namespace = "cinematic"
	}
	return &RedisStore{
		client:    client,
		namespace: namespace,
		opts:      buildOptions(opts),
	}
}

func (s *RedisStore) Name() string {
	return s.namespace
}

func (s *RedisStore) Insert(ctx context.Context, collection string, fields Fields) (ObjectID, error) {
	now := s.opts.now()
	doc, err := prepareWrite(fields, now, true)
	if err != nil {
		return NilObjectID, err
	}

	id := newObjectIDAt(now)
	values := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		values[k] = string(v)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.docKey(collection, id), values)
		pipe.ZAdd(ctx, s.indexKey(collection), redis.Z{
			Score:  float64(now.UnixMicro()),
			Member: id.Hex(),
		})
		pipe.SAdd(ctx, s.collectionsKey(), collection)
		return nil
	})
	if err != nil {
		return NilObjectID, unavailable("insert", err)
	}
	return id, nil
}

func (s *RedisStore) FindByID(ctx context.Context, collection string, id ObjectID) (*Document, error) {
	data, err := s.client.HGetAll(ctx, s.docKey(collection, id)).Result()
	if err != nil {
		return nil, unavailable("find", err)
	}
	if len(data) == 0 {
		return nil, ErrNotFound
	}
	return &Document{ID: id, Fields: fieldsFromStrings(data)}, nil
}

// List walks the index newest first, skipping entries whose document is gone,
// until it has limit documents or the index is exhausted.
func (s *RedisStore) List(ctx context.Context, collection string, limit int) ([]Document, error) {
	limit = normalizeLimit(limit)

	docs := make([]Document, 0, limit)
	var offset int64
	for len(docs) < limit {
		want := int64(limit - len(docs))
		ids, err := s.client.ZRevRange(ctx, s.indexKey(collection), offset, offset+want-1).Result()
		if err != nil {
			return nil, unavailable("list", err)
		}
		if len(ids) == 0 {
			break
		}
		offset += int64(len(ids))

		batch, err := s.fetchIndexed(ctx, collection, ids)
		if err != nil {
			return nil, err
		}
		docs = append(docs, batch...)

		if int64(len(ids)) < want {
			break
		}
	}
	return docs, nil
}

// fetchIndexed loads the documents behind index entries, dropping malformed
// entries and entries without a document.
func (s *RedisStore) fetchIndexed(ctx context.Context, collection string, ids []string) ([]Document, error) {
	parsed := make([]ObjectID, 0, len(ids))
	cmds := make([]*redis.MapStringStringCmd, 0, len(ids))
	pipe := s.client.Pipeline()
	for _, raw := range ids {
		id, err := ParseObjectID(raw)
		if err != nil {
			continue
		}
		parsed = append(parsed, id)
		cmds = append(cmds, pipe.HGetAll(ctx, s.docKey(collection, id)))
	}
	if len(cmds) == 0 {
		return nil, nil
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, unavailable("list", err)
	}

	docs := make([]Document, 0, len(cmds))
	for i, cmd := range cmds {
		data := cmd.Val()
		if len(data) == 0 {
			continue
		}
		docs = append(docs, Document{ID: parsed[i], Fields: fieldsFromStrings(data)})
	}
	return docs, nil
}

func (s *RedisStore) UpdateFields(ctx context.Context, collection string, id ObjectID, fields Fields) (*Document, error) {
	patch, err := prepareWrite(fields, s.opts.now(), false)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(patch))
	for k := range patch {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		args = append(args, k, string(patch[k]))
	}

	flat, err := updateScript.Run(ctx, s.client, []string{s.docKey(collection, id)}, args...).StringSlice()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("update", err)
	}
	if len(flat)%2 != 0 {
		return nil, fmt.Errorf("update: malformed hash reply of %d items", len(flat))
	}

	data := make(map[string]string, len(flat)/2)
	for i := 0; i < len(flat); i += 2 {
		data[flat[i]] = flat[i+1]
	}
	return &Document{ID: id, Fields: fieldsFromStrings(data)}, nil
}

func (s *RedisStore) Collections(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, s.collectionsKey()).Result()
	if err != nil {
		return nil, unavailable("collections", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) docKey(collection string, id ObjectID) string {
	return fmt.Sprintf("%s:%s:%s:%s", s.namespace, collection, redisDocSegment, id.Hex())
}

func (s *RedisStore) indexKey(collection string) string {
	return fmt.Sprintf("%s:%s:%s", s.namespace, collection, redisIndexSegment)
}

func (s *RedisStore) collectionsKey() string {
	return fmt.Sprintf("%s:%s", s.namespace, redisCollections)
}

func fieldsFromStrings(data map[string]string) Fields {
	out := make(Fields, len(data))
	for k, v := range data {
		out[k] = []byte(v)
	}
	return out
}
