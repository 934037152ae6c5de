package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/petstorecloud/petfood/pkg/logging"
)

// TableAPI is the slice of the DynamoDB client used for table bootstrap.
type TableAPI interface {
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// TableManager creates the service tables when they are missing.
type TableManager struct {
	client       TableAPI
	logger       logging.Logger
	pollInterval time.Duration
}

// NewTableManager builds a table manager. Logger may be nil.
func NewTableManager(client TableAPI, logger logging.Logger) *TableManager {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &TableManager{client: client, logger: logger, pollInterval: 2 * time.Second}
}

// EnsureTables creates the foods and carts tables if they do not exist
// and waits until both are active.
func (m *TableManager) EnsureTables(ctx context.Context, foodsTable, cartsTable string) error {
	if err := m.ensureFoodsTable(ctx, foodsTable); err != nil {
		return err
	}
	return m.ensureCartsTable(ctx, cartsTable)
}

func (m *TableManager) ensureFoodsTable(ctx context.Context, table string) error {
	exists, err := m.tableExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	m.logger.Info("Creating foods table", map[string]interface{}{"table": table})

	_, err = m.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("id"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("pet_type"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("name"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("food_type"), AttributeType: types.ScalarAttributeTypeS},
			{AttributeName: aws.String("price"), AttributeType: types.ScalarAttributeTypeN},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("id"), KeyType: types.KeyTypeHash},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			{
				IndexName: aws.String(PetTypeIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("pet_type"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("name"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
			{
				IndexName: aws.String(FoodTypeIndex),
				KeySchema: []types.KeySchemaElement{
					{AttributeName: aws.String("food_type"), KeyType: types.KeyTypeHash},
					{AttributeName: aws.String("price"), KeyType: types.KeyTypeRange},
				},
				Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
			},
		},
	})
	if err != nil {
		return mapDynamoError(err, table)
	}

	return m.waitActive(ctx, table)
}

func (m *TableManager) ensureCartsTable(ctx context.Context, table string) error {
	exists, err := m.tableExists(ctx, table)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	m.logger.Info("Creating carts table", map[string]interface{}{"table": table})

	_, err = m.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName:   aws.String(table),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String("user_id"), AttributeType: types.ScalarAttributeTypeS},
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("user_id"), KeyType: types.KeyTypeHash},
		},
	})
	if err != nil {
		return mapDynamoError(err, table)
	}

	return m.waitActive(ctx, table)
}

func (m *TableManager) tableExists(ctx context.Context, table string) (bool, error) {
	_, err := m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(table),
	})
	if err == nil {
		return true, nil
	}
	var notFound *types.ResourceNotFoundException
	if errors.As(err, &notFound) {
		return false, nil
	}
	return false, mapDynamoError(err, table)
}

func (m *TableManager) waitActive(ctx context.Context, table string) error {
	for {
		out, err := m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(table),
		})
		if err == nil && out.Table != nil && out.Table.TableStatus == types.TableStatusActive {
			m.logger.Info("Table is active", map[string]interface{}{"table": table})
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for table %s: %w", table, ctx.Err())
		case <-time.After(m.pollInterval):
		}
	}
}
