package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-storefront-api/internal/domain"
)

// ProductRepo provides typed DynamoDB operations for the products table.
type ProductRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewProductRepo(client *dynamodb.Client, tableName string) *ProductRepo {
	return &ProductRepo{client: client, tableName: tableName}
}

func (r *ProductRepo) Put(ctx context.Context, p *domain.Product) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal product: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ProductRepo) Get(ctx context.Context, productID string) (*domain.Product, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("product_id", productID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("product not found: %w", domain.ErrNotFound)
	}
	var p domain.Product
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ScanPage returns a page of enabled products matching the filter.
// cursor is a base64-encoded product_id used as ExclusiveStartKey.
// Returns the items, a next cursor (empty string when no more pages), and any error.
func (r *ProductRepo) ScanPage(ctx context.Context, f domain.ProductFilter, limit int32, cursor string) ([]domain.Product, string, error) {
	expr, names, values := buildProductFilter(f)
	input := &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		Limit:                     aws.Int32(limit),
	}
	if cursor != "" {
		productID, err := decodeCursor(cursor)
		if err != nil {
			return nil, "", fmt.Errorf("invalid cursor: %w", domain.ErrBadRequest)
		}
		input.ExclusiveStartKey = strKey("product_id", productID)
	}

	out, err := r.client.Scan(ctx, input)
	if err != nil {
		return nil, "", err
	}
	var products []domain.Product
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &products); err != nil {
		return nil, "", err
	}
	nextCursor := ""
	if v, ok := out.LastEvaluatedKey["product_id"].(*types.AttributeValueMemberS); ok {
		nextCursor = encodeCursor(v.Value)
	}
	return products, nextCursor, nil
}

// buildProductFilter renders the listing filter as a Scan filter expression.
// Every attribute is aliased so none can collide with a DynamoDB reserved word.
func buildProductFilter(f domain.ProductFilter) (string, map[string]string, map[string]types.AttributeValue) {
	exprParts := []string{"#enable = :t"}
	names := map[string]string{"#enable": "enable"}
	values := map[string]types.AttributeValue{
		":t": &types.AttributeValueMemberBOOL{Value: true},
	}

	if f.Category != "" {
		exprParts = append(exprParts, "#category = :cat")
		names["#category"] = "category"
		values[":cat"] = &types.AttributeValueMemberS{Value: f.Category}
	}
	if f.Brand != "" {
		exprParts = append(exprParts, "#brand = :b")
		names["#brand"] = "brand"
		values[":b"] = &types.AttributeValueMemberS{Value: f.Brand}
	}
	if f.Title != "" {
		exprParts = append(exprParts, "contains(#title, :title)")
		names["#title"] = "title"
		values[":title"] = &types.AttributeValueMemberS{Value: f.Title}
	}
	if f.MinPrice != nil {
		exprParts = append(exprParts, "#price >= :minp")
		names["#price"] = "price"
		values[":minp"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", *f.MinPrice)}
	}
	if f.MaxPrice != nil {
		exprParts = append(exprParts, "#price <= :maxp")
		names["#price"] = "price"
		values[":maxp"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", *f.MaxPrice)}
	}
	if f.MinRating != nil {
		exprParts = append(exprParts, "#rating >= :r")
		names["#rating"] = "rating"
		values[":r"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%g", *f.MinRating)}
	}
	return strings.Join(exprParts, " AND "), names, values
}

func (r *ProductRepo) Update(ctx context.Context, productID string, updates map[string]interface{}) error {
	updates["updated_at"] = time.Now().UTC().Format(time.RFC3339)
	expr, names, values, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("product_id", productID),
		UpdateExpression:          aws.String(expr),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
	})
	return err
}

func (r *ProductRepo) SoftDelete(ctx context.Context, productID string) error {
	return r.Update(ctx, productID, map[string]interface{}{"enable": false})
}
