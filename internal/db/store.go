package db

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/tekpartner/topic-importer/config"
	"github.com/tekpartner/topic-importer/internal/clients"
	"github.com/tekpartner/topic-importer/internal/models"
)

var ErrTopicNotFound = errors.New("topic not found")

// TopicStore persists imported topics. Put assigns the id and creation time.
type TopicStore interface {
	Put(ctx context.Context, name, description string) (string, error)
	// List yields stored topics in ascending creation order. Pages are
	// fetched as the sequence is consumed.
	List(ctx context.Context) iter.Seq2[models.Topic, error]
	MarkDone(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Close() error
}

// clock is swapped in tests.
type clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

// Open connects the store selected by cfg.Store and prepares its table or
// schema when configured to.
func Open(ctx context.Context, cfg *config.Config) (TopicStore, error) {
	switch cfg.Store {
	case config.StoreDynamoDB:
		client, err := clients.NewDynamoDBClient(ctx, cfg.AWSRegion, cfg.AWSEndpoint)
		if err != nil {
			return nil, err
		}
		store := NewDynamoTopicStore(client, cfg.TopicsTable)
		if cfg.CreateTable {
			if err := store.EnsureTable(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil

	case config.StorePostgres:
		pool, err := clients.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		store := NewPostgresTopicStore(pool)
		if cfg.CreateTable {
			if err := store.EnsureSchema(ctx); err != nil {
				pool.Close()
				return nil, err
			}
		}
		return store, nil

	default:
		return nil, fmt.Errorf("unknown topic store %q", cfg.Store)
	}
}
