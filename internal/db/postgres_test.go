package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*PostgresTopicStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	store := NewPostgresTopicStore(mock)
	store.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return store, mock
}

func TestPostgresTopicStore_Put(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		setup   func(mock pgxmock.PgxPoolIface)
		wantErr bool
	}{
		{
			name: "inserted",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO topics`).
					WithArgs(pgxmock.AnyArg(), "Intro", "body", time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC), false).
					WillReturnResult(pgxmock.NewResult("INSERT", 1))
			},
		},
		{
			name: "database error",
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`INSERT INTO topics`).
					WithArgs(pgxmock.AnyArg(), "Intro", "body", pgxmock.AnyArg(), false).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, mock := newMockStore(t)
			tt.setup(mock)

			id, err := store.Put(context.Background(), "Intro", "body")
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
				_, perr := uuid.Parse(id)
				assert.NoError(t, perr)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTopicStore_List(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	first := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"id", "topic", "description", "created_at", "done"}).
		AddRow("a", "Intro", "welcome text", first, false).
		AddRow("b", "Benefits", "benefit text", first.Add(time.Second), true)
	mock.ExpectQuery(`SELECT id, topic, description, created_at, done FROM topics ORDER BY created_at ASC`).
		WillReturnRows(rows)

	lines, err := FormatTopics(store.List(context.Background()))
	require.NoError(t, err)
	assert.Equal(t, []string{
		"a : welcome text (created 2024-03-01T09:00:00Z)",
		"b : benefit text (done)",
	}, lines)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresTopicStore_MarkDoneAndDelete(t *testing.T) {
	t.Parallel()

	id := uuid.NewString()

	tests := []struct {
		name    string
		call    func(s *PostgresTopicStore, id string) error
		setup   func(mock pgxmock.PgxPoolIface)
		id      string
		wantErr error
	}{
		{
			name: "mark done",
			call: func(s *PostgresTopicStore, id string) error { return s.MarkDone(context.Background(), id) },
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE topics SET done`).
					WithArgs(true, id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 1))
			},
			id: id,
		},
		{
			name: "mark done missing",
			call: func(s *PostgresTopicStore, id string) error { return s.MarkDone(context.Background(), id) },
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`UPDATE topics SET done`).
					WithArgs(true, id).
					WillReturnResult(pgxmock.NewResult("UPDATE", 0))
			},
			id:      id,
			wantErr: ErrTopicNotFound,
		},
		{
			name: "delete",
			call: func(s *PostgresTopicStore, id string) error { return s.Delete(context.Background(), id) },
			setup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectExec(`DELETE FROM topics`).
					WithArgs(id).
					WillReturnResult(pgxmock.NewResult("DELETE", 1))
			},
			id: id,
		},
		{
			name:    "delete malformed id",
			call:    func(s *PostgresTopicStore, id string) error { return s.Delete(context.Background(), id) },
			setup:   func(mock pgxmock.PgxPoolIface) {},
			id:      "42",
			wantErr: ErrTopicNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store, mock := newMockStore(t)
			tt.setup(mock)

			err := tt.call(store, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresTopicStore_EnsureSchema(t *testing.T) {
	t.Parallel()

	store, mock := newMockStore(t)
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS topics`).
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

	require.NoError(t, store.EnsureSchema(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
