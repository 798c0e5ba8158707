package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
create table if not exists documents (
  seq        bigserial not null,
  collection text      not null,
  id         char(24)  not null,
  doc        jsonb     not null default '{}'::jsonb,
  primary key (collection, id)
);
create index if not exists documents_collection_seq_idx on documents (collection, seq desc);
`

// PostgresStore keeps every collection in one jsonb table. Field merges use
// the jsonb concatenation operator so an update is a single statement.
type PostgresStore struct {
	pool *pgxpool.Pool
	name string
	opts options
}

func NewPostgresStore(pool *pgxpool.Pool, opts ...Option) *PostgresStore {
	name := ""
	if cfg := pool.Config(); cfg != nil && cfg.ConnConfig != nil {
		name = cfg.ConnConfig.Database
	}
	return &PostgresStore{
		pool: pool,
		name: name,
		opts: buildOptions(opts),
	}
}

// EnsureSchema creates the documents table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return unavailable("ensure schema", err)
	}
	return nil
}

func (s *PostgresStore) Name() string {
	return s.name
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, fields Fields) (ObjectID, error) {
	now := s.opts.now()
	doc, err := prepareWrite(fields, now, true)
	if err != nil {
		return NilObjectID, err
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return NilObjectID, fmt.Errorf("insert: encode document: %w", err)
	}

	id := newObjectIDAt(now)
	const q = `
insert into documents (collection, id, doc)
values ($1, $2, $3::jsonb);
`
	if _, err := s.pool.Exec(ctx, q, collection, id.Hex(), string(body)); err != nil {
		return NilObjectID, unavailable("insert", err)
	}
	return id, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, collection string, id ObjectID) (*Document, error) {
	const q = `
select doc::text
from documents
where collection = $1 and id = $2;
`
	var body string
	err := s.pool.QueryRow(ctx, q, collection, id.Hex()).Scan(&body)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("find", err)
	}
	return decodeDocument(id, body)
}

func (s *PostgresStore) List(ctx context.Context, collection string, limit int) ([]Document, error) {
	const q = `
select id, doc::text
from documents
where collection = $1
order by seq desc
limit $2;
`
	rows, err := s.pool.Query(ctx, q, collection, normalizeLimit(limit))
	if err != nil {
		return nil, unavailable("list", err)
	}
	defer rows.Close()

	out := make([]Document, 0, 16)
	for rows.Next() {
		var rawID, body string
		if err := rows.Scan(&rawID, &body); err != nil {
			return nil, unavailable("list", err)
		}
		id, err := ParseObjectID(rawID)
		if err != nil {
			continue
		}
		doc, err := decodeDocument(id, body)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", err)
	}
	return out, nil
}

func (s *PostgresStore) UpdateFields(ctx context.Context, collection string, id ObjectID, fields Fields) (*Document, error) {
	patch, err := prepareWrite(fields, s.opts.now(), false)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("update: encode patch: %w", err)
	}

	const q = `
update documents
set doc = doc || $3::jsonb
where collection = $1 and id = $2
returning doc::text;
`
	var updated string
	err = s.pool.QueryRow(ctx, q, collection, id.Hex(), string(body)).Scan(&updated)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("update", err)
	}
	return decodeDocument(id, updated)
}

func (s *PostgresStore) Collections(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `select distinct collection from documents order by collection;`)
	if err != nil {
		return nil, unavailable("collections", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, unavailable("collections", err)
	}
	return names, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return unavailable("ping", err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func decodeDocument(id ObjectID, body string) (*Document, error) {
	fields := Fields{}
	if err := json.Unmarshal([]byte(body), &fields); err != nil {
		return nil, fmt.Errorf("decode document %s: %w", id.Hex(), err)
	}
	return &Document{ID: id, Fields: fields}, nil
}
