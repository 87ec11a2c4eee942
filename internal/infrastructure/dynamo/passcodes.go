package dynamo

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-storefront-api/internal/domain"
)

// PasscodeRepo manages one-time login codes. PK: user_id — one row per user,
// so writing a fresh code supersedes any outstanding one.
// expires_at doubles as the DynamoDB TTL attribute.
type PasscodeRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPasscodeRepo(client *dynamodb.Client, tableName string) *PasscodeRepo {
	return &PasscodeRepo{client: client, tableName: tableName}
}

func (r *PasscodeRepo) Put(ctx context.Context, p *domain.OneTimePasscode) error {
	item, err := attributevalue.MarshalMap(p)
	if err != nil {
		return fmt.Errorf("marshal passcode: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *PasscodeRepo) Get(ctx context.Context, userID string) (*domain.OneTimePasscode, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("user_id", userID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("no outstanding passcode: %w", domain.ErrCodeNotFound)
	}
	var p domain.OneTimePasscode
	if err := attributevalue.UnmarshalMap(out.Item, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Consume marks the passcode used in a single conditional write. The
// condition pins both the passcode identity and consumed=false, so two
// concurrent verification attempts against the same code cannot both
// succeed: the loser hits ConditionalCheckFailed and gets ErrCodeNotFound.
func (r *PasscodeRepo) Consume(ctx context.Context, userID, passcodeID string) error {
	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey("user_id", userID),
		UpdateExpression:    aws.String("SET consumed = :t"),
		ConditionExpression: aws.String("passcode_id = :pid AND consumed = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":f":   &types.AttributeValueMemberBOOL{Value: false},
			":pid": &types.AttributeValueMemberS{Value: passcodeID},
		},
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return fmt.Errorf("passcode already consumed or superseded: %w", domain.ErrCodeNotFound)
		}
		return err
	}
	return nil
}
