package dynamo

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dealradar/api/internal/domain"
)

// DeviceRepo provides typed DynamoDB operations for the devices table.
type DeviceRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewDeviceRepo(client *dynamodb.Client, tableName string) *DeviceRepo {
	return &DeviceRepo{client: client, tableName: tableName}
}

// ListByUser returns the user's enabled devices via the uid GSI.
func (r *DeviceRepo) ListByUser(ctx context.Context, uid string) ([]domain.Device, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("uid-index"),
		KeyConditionExpression: aws.String("uid = :uid"),
		FilterExpression:       aws.String("#en = :t"),
		ExpressionAttributeNames: map[string]string{
			"#en": "enable",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: uid},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var devices []domain.Device
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

// TokenForUser returns the push token of the user's most recently updated
// enabled device, or nil when none is registered.
func (r *DeviceRepo) TokenForUser(ctx context.Context, uid string) (*string, error) {
	devices, err := r.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	var token *string
	var latest time.Time
	for i := range devices {
		d := &devices[i]
		if d.Token == nil || *d.Token == "" {
			continue
		}
		if token == nil || d.UpdatedAt.After(latest) {
			token = d.Token
			latest = d.UpdatedAt
		}
	}
	return token, nil
}
