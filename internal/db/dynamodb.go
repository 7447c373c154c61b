package db

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/tekpartner/topic-importer/internal/models"
)

const (
	TOPICS_TABLE_NAME = "Topics"

	// All topics share one partition of the created index so that a single
	// Query returns them in creation order.
	topicKind        = "Topic"
	createdIndexName = "created-index"

	tableActiveTimeout = 2 * time.Minute
)

// DynamoDBAPI is the part of *dynamodb.Client the topic store uses.
type DynamoDBAPI interface {
	dynamodb.QueryAPIClient
	dynamodb.DescribeTableAPIClient
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

type topicItem struct {
	ID          string `dynamodbav:"id"`
	Kind        string `dynamodbav:"kind"`
	Topic       string `dynamodbav:"topic"`
	Description string `dynamodbav:"description"`
	CreatedAt   int64  `dynamodbav:"created_at"`
	Done        bool   `dynamodbav:"done"`
}

func (it topicItem) toModel() models.Topic {
	return models.Topic{
		ID:          it.ID,
		Name:        it.Topic,
		Description: it.Description,
		Created:     time.Unix(0, it.CreatedAt).UTC(),
		Done:        it.Done,
	}
}

type DynamoTopicStore struct {
	client DynamoDBAPI
	table  string
	now    clock
}

var _ TopicStore = (*DynamoTopicStore)(nil)

func NewDynamoTopicStore(client DynamoDBAPI, table string) *DynamoTopicStore {
	if table == "" {
		table = TOPICS_TABLE_NAME
	}
	return &DynamoTopicStore{client: client, table: table, now: utcNow}
}

func (s *DynamoTopicStore) Put(ctx context.Context, name, description string) (string, error) {
	item := topicItem{
		ID:          uuid.NewString(),
		Kind:        topicKind,
		Topic:       name,
		Description: description,
		CreatedAt:   s.now().UnixNano(),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return "", fmt.Errorf("[DynamoDB] failed to marshal topic: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", fmt.Errorf("[DynamoDB] failed to put topic: %w", err)
	}
	return item.ID, nil
}

func (s *DynamoTopicStore) List(ctx context.Context) iter.Seq2[models.Topic, error] {
	return func(yield func(models.Topic, error) bool) {
		paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
			TableName:              aws.String(s.table),
			IndexName:              aws.String(createdIndexName),
			KeyConditionExpression: aws.String("#kind = :kind"),
			ExpressionAttributeNames: map[string]string{
				"#kind": "kind",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":kind": &types.AttributeValueMemberS{Value: topicKind},
			},
			ScanIndexForward: aws.Bool(true),
		})

		for paginator.HasMorePages() {
			out, err := paginator.NextPage(ctx)
			if err != nil {
				yield(models.Topic{}, fmt.Errorf("[DynamoDB] query for topics failed: %w", err))
				return
			}

			var page []topicItem
			if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
				slog.Error("[DynamoDB] Unable to unmarshal topic page", slog.String("error", err.Error()))
				yield(models.Topic{}, err)
				return
			}
			for _, it := range page {
				if !yield(it.toModel(), nil) {
					return
				}
			}
		}
	}
}

func (s *DynamoTopicStore) MarkDone(ctx context.Context, id string) error {
	_, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(s.table),
		Key:                 idKey(id),
		UpdateExpression:    aws.String("SET #done = :done"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeNames: map[string]string{
			"#done": "done",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":done": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	return notFoundOr(err, id, "mark topic done")
}

func (s *DynamoTopicStore) Delete(ctx context.Context, id string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(s.table),
		Key:                 idKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	return notFoundOr(err, id, "delete topic")
}

// EnsureTable creates the topics table and its created index if they are
// missing, then waits for the table to become active.
func (s *DynamoTopicStore) EnsureTable(ctx context.Context) error {
	_, err := s.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)})
	if err == nil {
		return nil
	}
	var notFound *types.ResourceNotFoundException
	if !errors.As(err, &notFound) {
		return fmt.Errorf("[DynamoDB] failed to describe table %s: %w", s.table, err)
	}

	slog.Info("[DynamoDB] Creating topics table", slog.String("table", s.table))
	_, err = s.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(s.table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("kind"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("created_at"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(createdIndexName),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("kind"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("created_at"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to create table %s: %w", s.table, err)
	}

	waiter := dynamodb.NewTableExistsWaiter(s.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(s.table)}, tableActiveTimeout); err != nil {
		return fmt.Errorf("[DynamoDB] table %s not active: %w", s.table, err)
	}
	slog.Info("[DynamoDB] Topics table is active", slog.String("table", s.table))
	return nil
}

// Close is a no-op; the SDK client holds no connections that need releasing.
func (s *DynamoTopicStore) Close() error { return nil }

func idKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func notFoundOr(err error, id, op string) error {
	if err == nil {
		return nil
	}
	var condFailed *types.ConditionalCheckFailedException
	if errors.As(err, &condFailed) {
		return fmt.Errorf("%w: %s", ErrTopicNotFound, id)
	}
	return fmt.Errorf("[DynamoDB] failed to %s %s: %w", op, id, err)
}
