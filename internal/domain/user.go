package domain

import "time"

// User carries only what this service reads: the super-offer broadcast opt-in.
// Account management lives in the user API.
type User struct {
	UserID      string    `json:"id" dynamodbav:"user_id"`
	SuperOffers int       `json:"super_offers" dynamodbav:"super_offers"` // 1 = opted in
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
}
