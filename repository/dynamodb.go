package repository

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/petstorecloud/petfood/models"
)

// Secondary index names on the foods table.
const (
	PetTypeIndex  = "PetTypeIndex"
	FoodTypeIndex = "FoodTypeIndex"
)

// DynamoAPI is the slice of the DynamoDB client the repositories use.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// mapDynamoError translates driver failures into repository errors so
// callers never see SDK types.
func mapDynamoError(err error, table string) error {
	if err == nil {
		return nil
	}

	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return &models.RepositoryError{Kind: models.RepoTableNotFound, Table: table, Err: err}
	}

	var conditional *types.ConditionalCheckFailedException
	if errors.As(err, &conditional) {
		return &models.RepositoryError{Kind: models.RepoConstraintViolation, Table: table, Message: "conditional check failed", Err: err}
	}

	var throttled *types.ProvisionedThroughputExceededException
	if errors.As(err, &throttled) {
		return &models.RepositoryError{Kind: models.RepoRateLimitExceeded, Table: table, Message: "throughput exceeded", Err: err}
	}

	var requestLimit *types.RequestLimitExceeded
	if errors.As(err, &requestLimit) {
		return &models.RepositoryError{Kind: models.RepoRateLimitExceeded, Table: table, Message: "request limit exceeded", Err: err}
	}

	var txCanceled *types.TransactionCanceledException
	if errors.As(err, &txCanceled) {
		return &models.RepositoryError{Kind: models.RepoTransactionFailed, Table: table, Message: "transaction canceled", Err: err}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &models.RepositoryError{Kind: models.RepoTimeout, Table: table, Message: "deadline exceeded", Err: err}
	}

	return &models.RepositoryError{Kind: models.RepoBackend, Table: table, Err: err}
}

// Attribute helpers. Absent optional attributes are omitted from the row
// rather than written as NULL.

func stringAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberS{Value: v}
}

func numberAttr(v string) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: v}
}

func boolAttr(v bool) types.AttributeValue {
	return &types.AttributeValueMemberBOOL{Value: v}
}

func readString(item map[string]types.AttributeValue, key string) (string, bool) {
	if av, ok := item[key]; ok {
		if s, ok := av.(*types.AttributeValueMemberS); ok {
			return s.Value, true
		}
	}
	return "", false
}

func readNumber(item map[string]types.AttributeValue, key string) (string, bool) {
	if av, ok := item[key]; ok {
		if n, ok := av.(*types.AttributeValueMemberN); ok {
			return n.Value, true
		}
	}
	return "", false
}

func readBool(item map[string]types.AttributeValue, key string) (bool, bool) {
	if av, ok := item[key]; ok {
		if b, ok := av.(*types.AttributeValueMemberBOOL); ok {
			return b.Value, true
		}
	}
	return false, false
}

func readStringList(item map[string]types.AttributeValue, key string) []string {
	av, ok := item[key]
	if !ok {
		return nil
	}
	switch v := av.(type) {
	case *types.AttributeValueMemberL:
		out := make([]string, 0, len(v.Value))
		for _, el := range v.Value {
			if s, ok := el.(*types.AttributeValueMemberS); ok {
				out = append(out, s.Value)
			}
		}
		return out
	case *types.AttributeValueMemberSS:
		return v.Value
	}
	return nil
}

// readTime parses an RFC3339 attribute, falling back to a legacy
// camelCase attribute name left behind by an earlier schema.
func readTime(item map[string]types.AttributeValue, key, legacyKey string) (time.Time, bool) {
	raw, ok := readString(item, key)
	if !ok && legacyKey != "" {
		raw, ok = readString(item, legacyKey)
	}
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
