package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/petstorecloud/petfood/models"
	"github.com/petstorecloud/petfood/pkg/logging"
)

// DynamoCartRepository persists carts in a DynamoDB table keyed by user.
type DynamoCartRepository struct {
	client DynamoAPI
	table  string
	logger logging.Logger
}

// NewDynamoCartRepository builds the repository. Logger may be nil.
func NewDynamoCartRepository(client DynamoAPI, table string, logger logging.Logger) *DynamoCartRepository {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &DynamoCartRepository{client: client, table: table, logger: logger}
}

func (r *DynamoCartRepository) FindCart(ctx context.Context, userID string) (*models.Cart, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": stringAttr(userID),
		},
	})
	if err != nil {
		return nil, mapDynamoError(err, r.table)
	}
	if out.Item == nil {
		return nil, models.NewRepoNotFound(userID)
	}
	cart, err := unmarshalCart(out.Item)
	if err != nil {
		return nil, &models.RepositoryError{Kind: models.RepoSerialization, Table: r.table, Message: err.Error(), Err: err}
	}
	return cart, nil
}

// SaveCart writes the cart unconditionally. Concurrent writers race and
// the last one wins.
func (r *DynamoCartRepository) SaveCart(ctx context.Context, cart *models.Cart) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      marshalCart(cart),
	})
	if err != nil {
		return mapDynamoError(err, r.table)
	}
	r.logger.Debug("Saved cart", map[string]interface{}{
		"user_id": cart.UserID,
		"items":   len(cart.Items),
		"table":   r.table,
	})
	return nil
}

func (r *DynamoCartRepository) DeleteCart(ctx context.Context, userID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": stringAttr(userID),
		},
	})
	if err != nil {
		return mapDynamoError(err, r.table)
	}
	return nil
}

func (r *DynamoCartRepository) CartExists(ctx context.Context, userID string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"user_id": stringAttr(userID),
		},
		ProjectionExpression: aws.String("user_id"),
	})
	if err != nil {
		return false, mapDynamoError(err, r.table)
	}
	return out.Item != nil, nil
}

func (r *DynamoCartRepository) FindAllCarts(ctx context.Context) ([]*models.Cart, error) {
	var carts []*models.Cart
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, mapDynamoError(err, r.table)
		}
		for _, item := range out.Items {
			cart, err := unmarshalCart(item)
			if err != nil {
				userID, _ := readString(item, "user_id")
				r.logger.Warn("Skipping unparseable cart row", map[string]interface{}{
					"user_id": userID,
					"table":   r.table,
					"error":   err.Error(),
				})
				continue
			}
			carts = append(carts, cart)
		}
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return carts, nil
}

func (r *DynamoCartRepository) CountCarts(ctx context.Context) (int64, error) {
	var count int64
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, mapDynamoError(err, r.table)
		}
		count += int64(out.Count)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return count, nil
}

func marshalCart(c *models.Cart) map[string]types.AttributeValue {
	items := make([]types.AttributeValue, 0, len(c.Items))
	for i := range c.Items {
		it := &c.Items[i]
		items = append(items, &types.AttributeValueMemberM{
			Value: map[string]types.AttributeValue{
				"food_id":    stringAttr(it.FoodID),
				"quantity":   numberAttr(strconv.FormatInt(int64(it.Quantity), 10)),
				"unit_price": numberAttr(it.UnitPrice.String()),
				"added_at":   stringAttr(it.AddedAt.Format(time.RFC3339)),
			},
		})
	}
	return map[string]types.AttributeValue{
		"user_id":    stringAttr(c.UserID),
		"items":      &types.AttributeValueMemberL{Value: items},
		"created_at": stringAttr(c.CreatedAt.Format(time.RFC3339)),
		"updated_at": stringAttr(c.UpdatedAt.Format(time.RFC3339)),
	}
}

func unmarshalCart(item map[string]types.AttributeValue) (*models.Cart, error) {
	userID, ok := readString(item, "user_id")
	if !ok {
		return nil, fmt.Errorf("missing user_id attribute")
	}

	cart := &models.Cart{UserID: userID, Items: []models.CartItem{}}
	if created, ok := readTime(item, "created_at", "createdAt"); ok {
		cart.CreatedAt = created
	}
	if updated, ok := readTime(item, "updated_at", "updatedAt"); ok {
		cart.UpdatedAt = updated
	} else {
		// Rows written before updates were tracked carry only created_at.
		cart.UpdatedAt = cart.CreatedAt
	}

	rawItems, ok := item["items"]
	if !ok {
		return cart, nil
	}
	list, ok := rawItems.(*types.AttributeValueMemberL)
	if !ok {
		return nil, fmt.Errorf("items attribute is not a list")
	}

	for _, el := range list.Value {
		entry, ok := el.(*types.AttributeValueMemberM)
		if !ok {
			return nil, fmt.Errorf("cart item is not a map")
		}
		line, err := unmarshalCartItem(entry.Value)
		if err != nil {
			return nil, err
		}
		cart.Items = append(cart.Items, *line)
	}

	return cart, nil
}

func unmarshalCartItem(m map[string]types.AttributeValue) (*models.CartItem, error) {
	foodID, ok := readString(m, "food_id")
	if !ok {
		return nil, fmt.Errorf("cart item missing food_id")
	}
	rawQty, ok := readNumber(m, "quantity")
	if !ok {
		return nil, fmt.Errorf("cart item missing quantity")
	}
	qty, err := strconv.ParseInt(rawQty, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid quantity %q: %w", rawQty, err)
	}
	rawPrice, ok := readNumber(m, "unit_price")
	if !ok {
		return nil, fmt.Errorf("cart item missing unit_price")
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price %q: %w", rawPrice, err)
	}

	line := &models.CartItem{
		FoodID:    foodID,
		Quantity:  int32(qty),
		UnitPrice: price,
	}
	if added, ok := readTime(m, "added_at", ""); ok {
		line.AddedAt = added
	}
	return line, nil
}
