package domain

import "time"

// Favorite types.
const (
	FavoriteProduct = "product"
	FavoriteKeyword = "keyword"
)

// Favorite is a user-saved interest: either a specific product (Key = offer id)
// or a keyword/phrase, optionally qualified by filters. Written by the user API;
// consumed read-only here.
type Favorite struct {
	FavoriteID  string    `json:"id" dynamodbav:"favorite_id"`
	UID         string    `json:"uid" dynamodbav:"uid"`
	Type        string    `json:"type" dynamodbav:"type"`
	Key         string    `json:"key" dynamodbav:"key"`
	KeyNorm     string    `json:"key_norm" dynamodbav:"key_norm"`
	Category    *string   `json:"category,omitempty" dynamodbav:"category"`
	Store       *string   `json:"store,omitempty" dynamodbav:"store"`
	MinPrice    *float64  `json:"min_price,omitempty" dynamodbav:"min_price"`
	MaxPrice    *float64  `json:"max_price,omitempty" dynamodbav:"max_price"`
	MinDiscount *float64  `json:"min_discount,omitempty" dynamodbav:"min_discount"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
