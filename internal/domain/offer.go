package domain

import "time"

// Offer is one deal/listing record. OfferID is immutable once the row exists;
// Code is the external dedup key that reporting channels share, so at most one
// authoritative row exists per Code even when channels disagree on the id.
type Offer struct {
	OfferID          string                 `json:"id" dynamodbav:"offer_id"`
	Code             string                 `json:"code" dynamodbav:"code"`
	ChannelID        string                 `json:"channel_id" dynamodbav:"channel_id"`
	Title            string                 `json:"title" dynamodbav:"title"`
	Category         string                 `json:"category" dynamodbav:"category"`
	Store            string                 `json:"store" dynamodbav:"store"`
	PriceNumeric     *float64               `json:"price_numeric" dynamodbav:"price_numeric"`
	OldPrice         *float64               `json:"old_price" dynamodbav:"old_price"`
	Perc             *float64               `json:"perc" dynamodbav:"perc"`
	IsDeleted        bool                   `json:"is_deleted" dynamodbav:"is_deleted"`
	IsExpired        bool                   `json:"is_expired" dynamodbav:"is_expired"`
	TimestampExpired *time.Time             `json:"timestamp_expired" dynamodbav:"timestamp_expired"`
	SuperOfferNotify bool                   `json:"super_offer_notify" dynamodbav:"super_offer_notify"`
	Payload          map[string]interface{} `json:"payload,omitempty" dynamodbav:"payload"`
	CreatedAt        time.Time              `json:"created" dynamodbav:"created_at"`
	UpdatedAt        time.Time              `json:"updated" dynamodbav:"updated_at"`
}

// Unavailable reports whether the row is flagged gone (soft-deleted or expired).
func (o *Offer) Unavailable() bool {
	return o.IsDeleted || o.IsExpired
}
