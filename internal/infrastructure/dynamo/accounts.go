package dynamo

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/catalog-accounts/internal/domain"
	"github.com/catalog-accounts/internal/pkg/recent"
)

// maxSpliceAttempts bounds the optimistic-concurrency loop in PushRecentView.
const maxSpliceAttempts = 8

// AccountRepo provides typed DynamoDB operations for the accounts table.
// Alongside account items the table holds one guard item per registered
// email (account_id = "EMAIL#<email>") that makes the email unique.
type AccountRepo struct {
	client    API
	tableName string
}

func NewAccountRepo(client API, tableName string) *AccountRepo {
	return &AccountRepo{client: client, tableName: tableName}
}

// Create writes the account and its email guard in one transaction.
// Returns domain.ErrConflict when the email is already taken.
func (r *AccountRepo) Create(ctx context.Context, a *domain.Account) error {
	item, err := attributevalue.MarshalMap(a)
	if err != nil {
		return fmt.Errorf("marshal account: %w", err)
	}
	guard := map[string]types.AttributeValue{
		fieldAccountID: &types.AttributeValueMemberS{Value: emailGuardPrefix + a.Email},
		"owner_id":     &types.AttributeValueMemberS{Value: a.AccountID},
	}
	notExists := aws.String("attribute_not_exists(#id)")
	names := map[string]string{"#id": fieldAccountID}
	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     item,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: names,
			}},
			{Put: &types.Put{
				TableName:                aws.String(r.tableName),
				Item:                     guard,
				ConditionExpression:      notExists,
				ExpressionAttributeNames: names,
			}},
		},
	})
	if err != nil {
		if transactionConditionFailed(err) {
			return fmt.Errorf("email already registered: %w", domain.ErrConflict)
		}
		return transient("create account", err)
	}
	return nil
}

func (r *AccountRepo) Get(ctx context.Context, accountID string) (*domain.Account, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            strKey(fieldAccountID, accountID),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, transient("get account", err)
	}
	if !isAccountItem(out.Item) {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Item, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(emailIndex),
		KeyConditionExpression:    aws.String("#a = :v"),
		ExpressionAttributeNames:  map[string]string{"#a": fieldEmail},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: email}},
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return nil, transient("query account by email", err)
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var a domain.Account
	if err := attributevalue.UnmarshalMap(out.Items[0], &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) UpdatePasswordHash(ctx context.Context, accountID, hash string) error {
	return r.update(ctx, accountID, map[string]interface{}{fieldPasswordHash: hash})
}

func (r *AccountRepo) UpdateInterests(ctx context.Context, accountID string, interests []string) error {
	return r.update(ctx, accountID, map[string]interface{}{fieldInterests: interests})
}

// PushRecentView splices itemID to the front of the account's history and
// caps it at max entries. Concurrent splices for the same account are
// serialised with a conditional write on the version attribute; a writer
// that loses the race re-reads and retries.
func (r *AccountRepo) PushRecentView(ctx context.Context, accountID, itemID string, at time.Time, max int) error {
	for attempt := 0; attempt < maxSpliceAttempts; attempt++ {
		out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName:                aws.String(r.tableName),
			Key:                      strKey(fieldAccountID, accountID),
			ConsistentRead:           aws.Bool(true),
			ProjectionExpression:     aws.String("#em, #rv, #v"),
			ExpressionAttributeNames: map[string]string{"#em": fieldEmail, "#rv": fieldRecentViews, "#v": fieldVersion},
		})
		if err != nil {
			return transient("read recent views", err)
		}
		if !isAccountItem(out.Item) {
			return fmt.Errorf("account not found: %w", domain.ErrNotFound)
		}
		var cur struct {
			RecentViews []domain.RecentView `dynamodbav:"recent_views"`
			Version     int64               `dynamodbav:"version"`
		}
		if err := attributevalue.UnmarshalMap(out.Item, &cur); err != nil {
			return err
		}
		views, err := attributevalue.Marshal(recent.Promote(cur.RecentViews, itemID, at, max))
		if err != nil {
			return fmt.Errorf("marshal recent views: %w", err)
		}
		_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
			TableName:           aws.String(r.tableName),
			Key:                 strKey(fieldAccountID, accountID),
			UpdateExpression:    aws.String("SET #rv = :rv, #v = :next, #u = :u"),
			ConditionExpression: aws.String("#v = :cur OR attribute_not_exists(#v)"),
			ExpressionAttributeNames: map[string]string{
				"#rv": fieldRecentViews,
				"#v":  fieldVersion,
				"#u":  fieldUpdatedAt,
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":rv":   views,
				":cur":  &types.AttributeValueMemberN{Value: strconv.FormatInt(cur.Version, 10)},
				":next": &types.AttributeValueMemberN{Value: strconv.FormatInt(cur.Version+1, 10)},
				":u":    &types.AttributeValueMemberS{Value: at.UTC().Format(time.RFC3339Nano)},
			},
		})
		if err == nil {
			return nil
		}
		if !isConditionFailed(err) {
			return transient("write recent views", err)
		}
	}
	return fmt.Errorf("write recent views: %w: too much contention on account %s", domain.ErrTransient, accountID)
}

func (r *AccountRepo) GetRecentViews(ctx context.Context, accountID string) ([]domain.RecentView, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey(fieldAccountID, accountID),
		ProjectionExpression:     aws.String("#em, #rv"),
		ExpressionAttributeNames: map[string]string{"#em": fieldEmail, "#rv": fieldRecentViews},
	})
	if err != nil {
		return nil, transient("get recent views", err)
	}
	if !isAccountItem(out.Item) {
		return nil, fmt.Errorf("account not found: %w", domain.ErrNotFound)
	}
	var cur struct {
		RecentViews []domain.RecentView `dynamodbav:"recent_views"`
	}
	if err := attributevalue.UnmarshalMap(out.Item, &cur); err != nil {
		return nil, err
	}
	return cur.RecentViews, nil
}

// isAccountItem tells account items apart from email guards and misses.
func isAccountItem(item map[string]types.AttributeValue) bool {
	_, ok := item[fieldEmail]
	return ok
}

// update applies a partial SET to an existing account.
func (r *AccountRepo) update(ctx context.Context, accountID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339Nano)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	ue.Names["#em"] = fieldEmail
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey(fieldAccountID, accountID),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(#em)"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	if err != nil {
		if isConditionFailed(err) {
			return fmt.Errorf("account not found: %w", domain.ErrNotFound)
		}
		return transient("update account", err)
	}
	return nil
}
