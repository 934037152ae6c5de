package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/shopspring/decimal"

	"github.com/petstorecloud/petfood/models"
	"github.com/petstorecloud/petfood/pkg/logging"
)

// DynamoFoodRepository persists catalog items in a DynamoDB table with
// PetTypeIndex and FoodTypeIndex secondary indexes.
type DynamoFoodRepository struct {
	client DynamoAPI
	table  string
	logger logging.Logger
}

// NewDynamoFoodRepository builds the repository. Logger may be nil.
func NewDynamoFoodRepository(client DynamoAPI, table string, logger logging.Logger) *DynamoFoodRepository {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return &DynamoFoodRepository{client: client, table: table, logger: logger}
}

func (r *DynamoFoodRepository) FindAll(ctx context.Context, filters *models.FoodFilters) ([]*models.Food, error) {
	var foods []*models.Food

	// A pet type or food type filter routes through the matching index so
	// the read stays a query instead of a full table scan.
	switch {
	case filters != nil && filters.PetType != nil:
		matched, err := r.queryIndex(ctx, PetTypeIndex, "pet_type", filters.PetType.String(), filters)
		if err != nil {
			return nil, err
		}
		foods = matched
	case filters != nil && filters.FoodType != nil:
		matched, err := r.queryIndex(ctx, FoodTypeIndex, "food_type", filters.FoodType.String(), filters)
		if err != nil {
			return nil, err
		}
		foods = matched
	default:
		scanned, err := r.scanAll(ctx, filters)
		if err != nil {
			return nil, err
		}
		foods = scanned
	}

	return foods, nil
}

func (r *DynamoFoodRepository) scanAll(ctx context.Context, filters *models.FoodFilters) ([]*models.Food, error) {
	var foods []*models.Food
	var startKey map[string]types.AttributeValue

	expr, values := buildFilterExpression(filters, "")
	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			ExclusiveStartKey: startKey,
		}
		if expr != "" {
			input.FilterExpression = aws.String(expr)
			input.ExpressionAttributeValues = values
		}
		out, err := r.client.Scan(ctx, input)
		if err != nil {
			return nil, mapDynamoError(err, r.table)
		}
		foods = append(foods, r.parseItems(out.Items, filters)...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return foods, nil
}

// buildFilterExpression pushes the cheap predicates server-side. The text
// search stays client-side because contains() is case sensitive and cannot
// substring-match list members. excludeKey names the index key attribute a
// query already constrains, which a filter expression may not reference.
func buildFilterExpression(filters *models.FoodFilters, excludeKey string) (string, map[string]types.AttributeValue) {
	if filters == nil {
		return "", nil
	}
	var clauses []string
	values := map[string]types.AttributeValue{}
	if filters.PetType != nil && excludeKey != "pet_type" {
		clauses = append(clauses, "pet_type = :pt")
		values[":pt"] = stringAttr(filters.PetType.String())
	}
	if filters.FoodType != nil && excludeKey != "food_type" {
		clauses = append(clauses, "food_type = :ft")
		values[":ft"] = stringAttr(filters.FoodType.String())
	}
	if filters.AvailabilityStatus != nil {
		clauses = append(clauses, "availability_status = :avail")
		values[":avail"] = stringAttr(filters.AvailabilityStatus.String())
	}
	if filters.MinPrice != nil {
		clauses = append(clauses, "price >= :minp")
		values[":minp"] = numberAttr(filters.MinPrice.String())
	}
	if filters.MaxPrice != nil {
		clauses = append(clauses, "price <= :maxp")
		values[":maxp"] = numberAttr(filters.MaxPrice.String())
	}
	if filters.InStockOnly {
		clauses = append(clauses, "stock_quantity > :zero")
		values[":zero"] = numberAttr("0")
	}
	if filters.ActiveOnly {
		// Rows written before soft delete existed have no is_active attribute
		// and count as active.
		clauses = append(clauses, "(attribute_not_exists(is_active) OR is_active = :active)")
		values[":active"] = boolAttr(true)
	}
	if len(clauses) == 0 {
		return "", nil
	}
	return strings.Join(clauses, " AND "), values
}

func (r *DynamoFoodRepository) FindByID(ctx context.Context, id string) (*models.Food, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": stringAttr(id),
		},
	})
	if err != nil {
		return nil, mapDynamoError(err, r.table)
	}
	if out.Item == nil {
		return nil, models.NewRepoNotFound(id)
	}
	food, err := unmarshalFood(out.Item)
	if err != nil {
		return nil, &models.RepositoryError{Kind: models.RepoSerialization, Table: r.table, Message: err.Error(), Err: err}
	}
	return food, nil
}

func (r *DynamoFoodRepository) FindByPetType(ctx context.Context, petType models.PetType) ([]*models.Food, error) {
	return r.queryIndex(ctx, PetTypeIndex, "pet_type", petType.String(), nil)
}

func (r *DynamoFoodRepository) FindByFoodType(ctx context.Context, foodType models.FoodType) ([]*models.Food, error) {
	return r.queryIndex(ctx, FoodTypeIndex, "food_type", foodType.String(), nil)
}

func (r *DynamoFoodRepository) queryIndex(ctx context.Context, index, keyAttr, keyValue string, filters *models.FoodFilters) ([]*models.Food, error) {
	var foods []*models.Food
	var startKey map[string]types.AttributeValue

	expr, values := buildFilterExpression(filters, keyAttr)
	if values == nil {
		values = map[string]types.AttributeValue{}
	}
	values[":v"] = stringAttr(keyValue)

	for {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(r.table),
			IndexName:              aws.String(index),
			KeyConditionExpression: aws.String("#k = :v"),
			ExpressionAttributeNames: map[string]string{
				"#k": keyAttr,
			},
			ExpressionAttributeValues: values,
			ExclusiveStartKey:         startKey,
		}
		if expr != "" {
			input.FilterExpression = aws.String(expr)
		}
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, mapDynamoError(err, r.table)
		}
		foods = append(foods, r.parseItems(out.Items, filters)...)
		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	return foods, nil
}

func (r *DynamoFoodRepository) Create(ctx context.Context, food *models.Food) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                marshalFood(food),
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return mapDynamoError(err, r.table)
	}
	r.logger.Debug("Created food item", map[string]interface{}{
		"food_id": food.ID,
		"table":   r.table,
	})
	return nil
}

func (r *DynamoFoodRepository) Update(ctx context.Context, food *models.Food) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table),
		Item:                marshalFood(food),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		mapped := mapDynamoError(err, r.table)
		if re, ok := mapped.(*models.RepositoryError); ok && re.Kind == models.RepoConstraintViolation {
			return models.NewRepoNotFound(food.ID)
		}
		return mapped
	}
	return nil
}

func (r *DynamoFoodRepository) SoftDelete(ctx context.Context, id string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": stringAttr(id),
		},
		UpdateExpression:    aws.String("SET is_active = :inactive, availability_status = :status, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(id)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":inactive": boolAttr(false),
			":status":   stringAttr(models.StatusDiscontinued.String()),
			":now":      stringAttr(now),
		},
	})
	if err != nil {
		mapped := mapDynamoError(err, r.table)
		if re, ok := mapped.(*models.RepositoryError); ok && re.Kind == models.RepoConstraintViolation {
			return models.NewRepoNotFound(id)
		}
		return mapped
	}
	return nil
}

func (r *DynamoFoodRepository) Delete(ctx context.Context, id string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": stringAttr(id),
		},
	})
	if err != nil {
		return mapDynamoError(err, r.table)
	}
	return nil
}

func (r *DynamoFoodRepository) Exists(ctx context.Context, id string) (bool, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table),
		Key: map[string]types.AttributeValue{
			"id": stringAttr(id),
		},
		ProjectionExpression: aws.String("id"),
	})
	if err != nil {
		return false, mapDynamoError(err, r.table)
	}
	return out.Item != nil, nil
}

func (r *DynamoFoodRepository) Count(ctx context.Context, filters *models.FoodFilters) (int64, error) {
	// Text search needs parsed rows, so counting goes through FindAll.
	if filters != nil && filters.Query != nil && *filters.Query != "" {
		foods, err := r.FindAll(ctx, filters)
		if err != nil {
			return 0, err
		}
		return int64(len(foods)), nil
	}

	var count int64
	var startKey map[string]types.AttributeValue

	expr, values := buildFilterExpression(filters, "")
	for {
		input := &dynamodb.ScanInput{
			TableName:         aws.String(r.table),
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		}
		if expr != "" {
			input.FilterExpression = aws.String(expr)
			input.ExpressionAttributeValues = values
		}
		out, err := r.client.Scan(ctx, input)
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

// parseItems converts rows to aggregates, skipping rows that fail to
// parse so a single bad record cannot break a listing. The filters are
// re-applied client side to cover the predicates the server expression
// cannot express, the text search in particular.
func (r *DynamoFoodRepository) parseItems(items []map[string]types.AttributeValue, filters *models.FoodFilters) []*models.Food {
	foods := make([]*models.Food, 0, len(items))
	for _, item := range items {
		food, err := unmarshalFood(item)
		if err != nil {
			id, _ := readString(item, "id")
			r.logger.Warn("Skipping unparseable food row", map[string]interface{}{
				"food_id": id,
				"table":   r.table,
				"error":   err.Error(),
			})
			continue
		}
		if !food.MatchesFilters(filters) {
			continue
		}
		foods = append(foods, food)
	}
	return foods
}

// Attribute names are a durable contract shared with other writers of
// these tables; renaming one orphans existing rows.
func marshalFood(f *models.Food) map[string]types.AttributeValue {
	item := map[string]types.AttributeValue{
		"id":                  stringAttr(f.ID),
		"name":                stringAttr(f.Name),
		"pet_type":            stringAttr(f.PetType.String()),
		"food_type":           stringAttr(f.FoodType.String()),
		"description":         stringAttr(f.Description),
		"price":               numberAttr(f.Price.String()),
		"stock_quantity":      numberAttr(strconv.FormatInt(int64(f.StockQuantity), 10)),
		"availability_status": stringAttr(f.Status.String()),
		"is_active":           boolAttr(f.IsActive),
		"created_at":          stringAttr(f.CreatedAt.Format(time.RFC3339)),
		"updated_at":          stringAttr(f.UpdatedAt.Format(time.RFC3339)),
	}
	if len(f.Ingredients) > 0 {
		list := make([]types.AttributeValue, 0, len(f.Ingredients))
		for _, ing := range f.Ingredients {
			list = append(list, stringAttr(ing))
		}
		item["ingredients"] = &types.AttributeValueMemberL{Value: list}
	}
	if f.NutritionalInfo != nil {
		item["nutritional_info"] = marshalNutritionalInfo(f.NutritionalInfo)
	}
	if f.FeedingGuidelines != nil && *f.FeedingGuidelines != "" {
		item["feeding_guidelines"] = stringAttr(*f.FeedingGuidelines)
	}
	if f.ImageURL != nil && *f.ImageURL != "" {
		item["image"] = stringAttr(*f.ImageURL)
	}
	return item
}

func marshalNutritionalInfo(n *models.NutritionalInfo) types.AttributeValue {
	m := map[string]types.AttributeValue{}
	if n.ProteinPercentage != nil {
		m["protein_percentage"] = numberAttr(n.ProteinPercentage.String())
	}
	if n.FatPercentage != nil {
		m["fat_percentage"] = numberAttr(n.FatPercentage.String())
	}
	if n.FiberPercentage != nil {
		m["fiber_percentage"] = numberAttr(n.FiberPercentage.String())
	}
	if n.MoisturePercentage != nil {
		m["moisture_percentage"] = numberAttr(n.MoisturePercentage.String())
	}
	if n.CaloriesPerServing != nil {
		m["calories_per_serving"] = numberAttr(strconv.FormatInt(int64(*n.CaloriesPerServing), 10))
	}
	return &types.AttributeValueMemberM{Value: m}
}

func unmarshalFood(item map[string]types.AttributeValue) (*models.Food, error) {
	id, ok := readString(item, "id")
	if !ok {
		return nil, fmt.Errorf("missing id attribute")
	}
	name, ok := readString(item, "name")
	if !ok {
		return nil, fmt.Errorf("missing name attribute")
	}
	rawPetType, ok := readString(item, "pet_type")
	if !ok {
		return nil, fmt.Errorf("missing pet_type attribute")
	}
	petType, err := models.ParsePetType(rawPetType)
	if err != nil {
		return nil, err
	}
	rawFoodType, ok := readString(item, "food_type")
	if !ok {
		return nil, fmt.Errorf("missing food_type attribute")
	}
	foodType, err := models.ParseFoodType(rawFoodType)
	if err != nil {
		return nil, err
	}
	rawPrice, ok := readNumber(item, "price")
	if !ok {
		return nil, fmt.Errorf("missing price attribute")
	}
	price, err := decimal.NewFromString(rawPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid price %q: %w", rawPrice, err)
	}
	rawStock, ok := readNumber(item, "stock_quantity")
	if !ok {
		return nil, fmt.Errorf("missing stock_quantity attribute")
	}
	stock, err := strconv.ParseInt(rawStock, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid stock_quantity %q: %w", rawStock, err)
	}
	rawStatus, ok := readString(item, "availability_status")
	if !ok {
		return nil, fmt.Errorf("missing availability_status attribute")
	}
	status, err := models.ParseFoodStatus(rawStatus)
	if err != nil {
		return nil, err
	}

	description, _ := readString(item, "description")

	food := &models.Food{
		ID:            id,
		Name:          name,
		PetType:       petType,
		FoodType:      foodType,
		Description:   description,
		Price:         price,
		StockQuantity: int32(stock),
		Status:        status,
		Ingredients:   readStringList(item, "ingredients"),
		IsActive:      true,
	}
	if guidelines, ok := readString(item, "feeding_guidelines"); ok {
		food.FeedingGuidelines = &guidelines
	}
	if image, ok := readString(item, "image"); ok && image != "" {
		food.ImageURL = &image
	}
	if nutrition, ok := item["nutritional_info"].(*types.AttributeValueMemberM); ok {
		food.NutritionalInfo = unmarshalNutritionalInfo(nutrition.Value)
	}
	// Rows written before soft delete existed have no is_active attribute.
	if active, ok := readBool(item, "is_active"); ok {
		food.IsActive = active
	}
	if created, ok := readTime(item, "created_at", "createdAt"); ok {
		food.CreatedAt = created
	}
	if updated, ok := readTime(item, "updated_at", "updatedAt"); ok {
		food.UpdatedAt = updated
	} else {
		// Rows written before updates were tracked carry only created_at.
		food.UpdatedAt = food.CreatedAt
	}
	return food, nil
}

func unmarshalNutritionalInfo(m map[string]types.AttributeValue) *models.NutritionalInfo {
	info := &models.NutritionalInfo{}
	if raw, ok := readNumber(m, "protein_percentage"); ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			info.ProteinPercentage = &d
		}
	}
	if raw, ok := readNumber(m, "fat_percentage"); ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			info.FatPercentage = &d
		}
	}
	if raw, ok := readNumber(m, "fiber_percentage"); ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			info.FiberPercentage = &d
		}
	}
	if raw, ok := readNumber(m, "moisture_percentage"); ok {
		if d, err := decimal.NewFromString(raw); err == nil {
			info.MoisturePercentage = &d
		}
	}
	if raw, ok := readNumber(m, "calories_per_serving"); ok {
		if v, err := strconv.ParseInt(raw, 10, 32); err == nil {
			calories := int32(v)
			info.CaloriesPerServing = &calories
		}
	}
	return info
}
