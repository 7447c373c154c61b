package db

import (
	"context"
	"fmt"
	"iter"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tekpartner/topic-importer/internal/models"
)

const topicsTable = "topics"

const createTopicsTable = `
CREATE TABLE IF NOT EXISTS topics (
    id          UUID PRIMARY KEY,
    topic       TEXT        NOT NULL,
    description TEXT        NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL,
    done        BOOLEAN     NOT NULL DEFAULT FALSE
);
CREATE INDEX IF NOT EXISTS topics_created_at_idx ON topics (created_at);
`

// Querier is satisfied by *pgxpool.Pool and by pgxmock pools.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

type PostgresTopicStore struct {
	db  Querier
	now clock
}

var _ TopicStore = (*PostgresTopicStore)(nil)

func NewPostgresTopicStore(db Querier) *PostgresTopicStore {
	return &PostgresTopicStore{db: db, now: utcNow}
}

func (s *PostgresTopicStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createTopicsTable); err != nil {
		return fmt.Errorf("[Postgres] failed to init schema: %w", err)
	}
	slog.Info("[Postgres] Topics schema ready")
	return nil
}

func (s *PostgresTopicStore) Put(ctx context.Context, name, description string) (string, error) {
	id := uuid.NewString()
	query, args, err := psql.Insert(topicsTable).
		Columns("id", "topic", "description", "created_at", "done").
		Values(id, name, description, s.now(), false).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("[Postgres] build insert: %w", err)
	}

	if _, err := s.db.Exec(ctx, query, args...); err != nil {
		return "", fmt.Errorf("[Postgres] failed to insert topic: %w", err)
	}
	return id, nil
}

func (s *PostgresTopicStore) List(ctx context.Context) iter.Seq2[models.Topic, error] {
	return func(yield func(models.Topic, error) bool) {
		query, args, err := psql.Select("id", "topic", "description", "created_at", "done").
			From(topicsTable).
			OrderBy("created_at ASC", "id ASC").
			ToSql()
		if err != nil {
			yield(models.Topic{}, fmt.Errorf("[Postgres] build select: %w", err))
			return
		}

		rows, err := s.db.Query(ctx, query, args...)
		if err != nil {
			yield(models.Topic{}, fmt.Errorf("[Postgres] failed to query topics: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var t models.Topic
			if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.Created, &t.Done); err != nil {
				yield(models.Topic{}, fmt.Errorf("[Postgres] failed to scan topic row: %w", err))
				return
			}
			t.Created = t.Created.UTC()
			if !yield(t, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(models.Topic{}, fmt.Errorf("[Postgres] topic rows: %w", err))
		}
	}
}

func (s *PostgresTopicStore) MarkDone(ctx context.Context, id string) error {
	query, args, err := psql.Update(topicsTable).
		Set("done", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("[Postgres] build update: %w", err)
	}
	return s.execOne(ctx, query, args, id, "mark topic done")
}

func (s *PostgresTopicStore) Delete(ctx context.Context, id string) error {
	query, args, err := psql.Delete(topicsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("[Postgres] build delete: %w", err)
	}
	return s.execOne(ctx, query, args, id, "delete topic")
}

func (s *PostgresTopicStore) Close() error {
	s.db.Close()
	return nil
}

func (s *PostgresTopicStore) execOne(ctx context.Context, query string, args []any, id, op string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to %s %s: %w", op, id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return nil
}
