package dynamo

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/dealradar/api/internal/domain"
)

// FavoriteRepo provides read-only DynamoDB access to the favorites table.
// Favorites are written by the user API; this service only matches against them.
type FavoriteRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFavoriteRepo(client *dynamodb.Client, tableName string) *FavoriteRepo {
	return &FavoriteRepo{client: client, tableName: tableName}
}

// keyNorm folds a lookup key the way the favorites writer stores key_norm:
// lower-cased, for every favorite type. Product keys are ULID offer ids, so
// they must go through the same fold or the query misses every row.
func keyNorm(key string) string {
	return strings.ToLower(key)
}

// ListKeywordByKeys returns keyword favorites whose normalized key equals any
// of the given candidates. Candidates are folded before the query, so equality
// is case-insensitive; one query is issued per candidate against the key_norm
// GSI.
func (r *FavoriteRepo) ListKeywordByKeys(ctx context.Context, keys []string) ([]domain.Favorite, error) {
	var favorites []domain.Favorite
	for _, key := range keys {
		batch, err := r.queryByKeyNorm(ctx, keyNorm(key), domain.FavoriteKeyword)
		if err != nil {
			return nil, err
		}
		favorites = append(favorites, batch...)
	}
	return favorites, nil
}

// ListProductByOffer returns product favorites whose key equals the offer id.
func (r *FavoriteRepo) ListProductByOffer(ctx context.Context, offerID string) ([]domain.Favorite, error) {
	return r.queryByKeyNorm(ctx, keyNorm(offerID), domain.FavoriteProduct)
}

func (r *FavoriteRepo) queryByKeyNorm(ctx context.Context, norm, favType string) ([]domain.Favorite, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("key_norm-index"),
		KeyConditionExpression: aws.String("key_norm = :k"),
		FilterExpression:       aws.String("#tp = :t"),
		ExpressionAttributeNames: map[string]string{
			"#tp": "type",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":k": &types.AttributeValueMemberS{Value: norm},
			":t": &types.AttributeValueMemberS{Value: favType},
		},
	})
	if err != nil {
		return nil, err
	}
	var favorites []domain.Favorite
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &favorites); err != nil {
		return nil, err
	}
	return favorites, nil
}
