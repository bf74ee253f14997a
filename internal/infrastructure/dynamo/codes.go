package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/catalog-accounts/internal/domain"
)

// CodeRepo stores one-time codes, one item per subject.
// PK: subject_key. Issuing overwrites the item, so a single PutItem both
// discards the previous code and inserts the new one.
type CodeRepo struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewCodeRepo(client API, tableName string) *CodeRepo {
	return &CodeRepo{client: client, tableName: tableName, now: time.Now}
}

func (r *CodeRepo) Issue(ctx context.Context, subjectKey, purpose, code string, ttl time.Duration) (*domain.OneTimeCode, error) {
	c := domain.NewOneTimeCode(subjectKey, purpose, code, r.now(), ttl)
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return nil, fmt.Errorf("marshal one-time code: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		return nil, transient("put one-time code", err)
	}
	return &c, nil
}

// VerifyAndConsume deletes the subject's code if, and only if, it matches
// code and purpose, has not expired and still has attempts left. The check and
// the delete are a single conditional DeleteItem, so two concurrent callers
// cannot both succeed. A mismatch against a live code counts as a failed attempt.
func (r *CodeRepo) VerifyAndConsume(ctx context.Context, subjectKey, purpose, code string) error {
	now := r.now()
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldSubjectKey, subjectKey),
		ConditionExpression: aws.String("#c = :c AND #p = :p AND #e >= :now AND (attribute_not_exists(#a) OR #a < :max)"),
		ExpressionAttributeNames: map[string]string{
			"#c": fieldCode,
			"#p": fieldPurpose,
			"#e": fieldExpiresAt,
			"#a": fieldAttempts,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c":   &types.AttributeValueMemberS{Value: code},
			":p":   &types.AttributeValueMemberS{Value: purpose},
			":now": &types.AttributeValueMemberN{Value: strconv.FormatInt(now.UnixMilli(), 10)},
			":max": &types.AttributeValueMemberN{Value: strconv.Itoa(domain.MaxCodeAttempts)},
		},
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	})
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if !errors.As(err, &ccf) {
		return transient("consume one-time code", err)
	}
	if len(ccf.Item) == 0 {
		return domain.ErrCodeInvalid
	}
	var stored domain.OneTimeCode
	if err := attributevalue.UnmarshalMap(ccf.Item, &stored); err != nil {
		return domain.ErrCodeInvalid
	}
	switch {
	case stored.Expired(now):
		return domain.ErrCodeExpired
	case stored.Exhausted():
		return domain.ErrCodeInvalid
	}
	if err := r.recordFailure(ctx, subjectKey, stored.Code); err != nil {
		return err
	}
	return domain.ErrCodeInvalid
}

// recordFailure bumps the attempt counter of the code that was just rejected
// and discards the code once it runs out of attempts. Both writes are
// conditioned on the stored code, so a newer issuance is left alone.
func (r *CodeRepo) recordFailure(ctx context.Context, subjectKey, storedCode string) error {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.tableName),
		Key:                 strKey(fieldSubjectKey, subjectKey),
		UpdateExpression:    aws.String("ADD #a :one"),
		ConditionExpression: aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{
			"#a": fieldAttempts,
			"#c": fieldCode,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
			":c":   &types.AttributeValueMemberS{Value: storedCode},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		if isConditionFailed(err) {
			return nil
		}
		return transient("count failed attempt", err)
	}
	var updated struct {
		Attempts int `dynamodbav:"attempts"`
	}
	if err := attributevalue.UnmarshalMap(out.Attributes, &updated); err != nil {
		return fmt.Errorf("unmarshal attempts: %w", err)
	}
	if updated.Attempts >= domain.MaxCodeAttempts {
		return r.Revoke(ctx, subjectKey, storedCode)
	}
	return nil
}

// Revoke removes the subject's code only while it still equals code, so a
// newer issuance is never discarded.
func (r *CodeRepo) Revoke(ctx context.Context, subjectKey, code string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldSubjectKey, subjectKey),
		ConditionExpression:      aws.String("#c = :c"),
		ExpressionAttributeNames: map[string]string{"#c": fieldCode},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil && !isConditionFailed(err) {
		return transient("revoke one-time code", err)
	}
	return nil
}
