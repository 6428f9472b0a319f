package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"translation-history/internal/domain"
)

const (
	attrOwner     = "user_id"
	attrTimestamp = "timestamp"
)

// ErrRecordExists is returned when a record with the same owner and
// timestamp is already stored.
var ErrRecordExists = errors.New("repository: record already exists")

// dynamodbAPI is the minimal DynamoDB interface required by Client.
// Defined here for testability.
type dynamodbAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, in *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Client wraps the translation history table.
type Client struct {
	api       dynamodbAPI
	tableName string
}

// historyItem is the stored shape of a translation record.
type historyItem struct {
	UserID         string `dynamodbav:"user_id"`
	Timestamp      string `dynamodbav:"timestamp"`
	OriginalText   string `dynamodbav:"original_text"`
	TranslatedText string `dynamodbav:"translated_text"`
	SourceLang     string `dynamodbav:"source_lang"`
	TargetLang     string `dynamodbav:"target_lang"`
}

// New creates a new repository Client.
func New(api dynamodbAPI, tableName string) (*Client, error) {
	if api == nil {
		return nil, errors.New("repository: api must not be nil")
	}
	if strings.TrimSpace(tableName) == "" {
		return nil, errors.New("repository: table name must not be empty")
	}
	return &Client{api: api, tableName: tableName}, nil
}

// PutRecord stores rec unless a record with the same owner and timestamp
// already exists, in which case ErrRecordExists is returned.
func (c *Client) PutRecord(ctx context.Context, rec domain.TranslationRecord) error {
	if rec.OwnerID == "" || rec.Timestamp == "" {
		return errors.New("repository: PutRecord: owner and timestamp are required")
	}

	item, err := attributevalue.MarshalMap(toItem(rec))
	if err != nil {
		return fmt.Errorf("repository: PutRecord marshal: %w", err)
	}

	cond := expression.Name(attrOwner).AttributeNotExists().
		And(expression.Name(attrTimestamp).AttributeNotExists())
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return fmt.Errorf("repository: PutRecord build condition: %w", err)
	}

	_, err = c.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(c.tableName),
		Item:                     item,
		ConditionExpression:      expr.Condition(),
		ExpressionAttributeNames: expr.Names(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("repository: PutRecord: %w", ErrRecordExists)
		}
		return fmt.Errorf("repository: PutRecord: %w", err)
	}
	return nil
}

// ListRecent returns up to limit records for ownerID, newest first.
func (c *Client) ListRecent(ctx context.Context, ownerID string, limit int) ([]domain.TranslationRecord, error) {
	if ownerID == "" {
		return nil, errors.New("repository: ListRecent: owner is required")
	}
	if limit <= 0 {
		return nil, errors.New("repository: ListRecent: limit must be positive")
	}

	keyCond := expression.Key(attrOwner).Equal(expression.Value(ownerID))
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, fmt.Errorf("repository: ListRecent build key condition: %w", err)
	}

	out, err := c.api.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(c.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(int32(limit)),
	})
	if err != nil {
		return nil, fmt.Errorf("repository: ListRecent query: %w", err)
	}
	if out == nil || len(out.Items) == 0 {
		return []domain.TranslationRecord{}, nil
	}

	var items []historyItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, fmt.Errorf("repository: ListRecent unmarshal: %w", err)
	}

	recs := make([]domain.TranslationRecord, 0, len(items))
	for i, it := range items {
		if it.UserID == "" || it.Timestamp == "" {
			return nil, fmt.Errorf("repository: ListRecent: item %d missing key attributes", i)
		}
		recs = append(recs, fromItem(it))
		if len(recs) == limit {
			break
		}
	}
	return recs, nil
}

func toItem(rec domain.TranslationRecord) historyItem {
	return historyItem{
		UserID:         rec.OwnerID,
		Timestamp:      rec.Timestamp,
		OriginalText:   rec.OriginalText,
		TranslatedText: rec.TranslatedText,
		SourceLang:     rec.SourceLang,
		TargetLang:     rec.TargetLang,
	}
}

func fromItem(it historyItem) domain.TranslationRecord {
	return domain.TranslationRecord{
		OwnerID:        it.UserID,
		Timestamp:      it.Timestamp,
		OriginalText:   it.OriginalText,
		TranslatedText: it.TranslatedText,
		SourceLang:     it.SourceLang,
		TargetLang:     it.TargetLang,
	}
}
