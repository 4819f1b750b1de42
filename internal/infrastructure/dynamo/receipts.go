package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dealradar/api/internal/domain"
)

// ReceiptRepo provides typed DynamoDB operations for the receipts table.
type ReceiptRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewReceiptRepo(client *dynamodb.Client, tableName string) *ReceiptRepo {
	return &ReceiptRepo{client: client, tableName: tableName}
}

func (r *ReceiptRepo) Put(ctx context.Context, rc *domain.Receipt) error {
	item, err := attributevalue.MarshalMap(rc)
	if err != nil {
		return fmt.Errorf("marshal receipt: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ReceiptRepo) Get(ctx context.Context, receiptID string) (*domain.Receipt, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("receipt_id", receiptID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("receipt not found: %w", domain.ErrNotFound)
	}
	var rc domain.Receipt
	if err := attributevalue.UnmarshalMap(out.Item, &rc); err != nil {
		return nil, err
	}
	return &rc, nil
}

// ListActiveByOffer returns non-withdrawn receipts for an offer.
// Already-withdrawn receipts are excluded here so retraction never
// double-processes them.
func (r *ReceiptRepo) ListActiveByOffer(ctx context.Context, offerID string) ([]domain.Receipt, error) {
	return r.listActive(ctx, "offer_id-index", "offer_id", offerID)
}

// ListActiveByNotification returns non-withdrawn receipts for one notification.
func (r *ReceiptRepo) ListActiveByNotification(ctx context.Context, notificationID string) ([]domain.Receipt, error) {
	return r.listActive(ctx, "notification_id-index", "notification_id", notificationID)
}

func (r *ReceiptRepo) listActive(ctx context.Context, index, keyAttr, keyVal string) ([]domain.Receipt, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(index),
		KeyConditionExpression: aws.String(fmt.Sprintf("%s = :k", keyAttr)),
		FilterExpression:       aws.String("withdrawn = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: keyVal},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
	})
	if err != nil {
		return nil, err
	}
	var receipts []domain.Receipt
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

// ListUnreadByUser queries the uid-sent_at GSI for receipts with read=0,
// newest first, excluding withdrawn ones.
func (r *ReceiptRepo) ListUnreadByUser(ctx context.Context, uid string) ([]domain.Receipt, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("uid-sent_at-index"),
		KeyConditionExpression: aws.String("uid = :uid"),
		FilterExpression:       aws.String("#rd = :zero AND withdrawn = :f"),
		ExpressionAttributeNames: map[string]string{
			"#rd": "read",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid":  &types.AttributeValueMemberS{Value: uid},
			":zero": &types.AttributeValueMemberN{Value: "0"},
			":f":    &types.AttributeValueMemberBOOL{Value: false},
		},
		ScanIndexForward: aws.Bool(false),
	})
	if err != nil {
		return nil, err
	}
	var receipts []domain.Receipt
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &receipts); err != nil {
		return nil, err
	}
	return receipts, nil
}

func (r *ReceiptRepo) MarkAsRead(ctx context.Context, receiptID string) error {
	return r.update(ctx, receiptID, map[string]interface{}{"read": 1})
}

// MarkWithdrawn flips the withdrawn flag on a batch of receipts. Withdrawn is
// terminal — there is no path that clears it again.
func (r *ReceiptRepo) MarkWithdrawn(ctx context.Context, receiptIDs []string) error {
	for _, id := range receiptIDs {
		if err := r.update(ctx, id, map[string]interface{}{"withdrawn": true}); err != nil {
			return fmt.Errorf("withdraw receipt %s: %w", id, err)
		}
	}
	return nil
}

func (r *ReceiptRepo) update(ctx context.Context, receiptID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("receipt_id", receiptID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
