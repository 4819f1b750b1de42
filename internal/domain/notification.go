package domain

import "time"

// Notification is one fan-out batch. A single record serves every recipient of
// that batch; per-user delivery state lives on Receipt.
type Notification struct {
	NotificationID string    `json:"id" dynamodbav:"notification_id"`
	Title          string    `json:"title" dynamodbav:"title"`
	Body           string    `json:"body" dynamodbav:"body"`
	OfferID        string    `json:"offer_id" dynamodbav:"offer_id"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

// Receipt ties one Notification to one user. Withdrawn receipts are never
// re-activated; read/unread is independent of withdrawn.
type Receipt struct {
	ReceiptID      string    `json:"id" dynamodbav:"receipt_id"`
	NotificationID string    `json:"notification_id" dynamodbav:"notification_id"`
	UID            string    `json:"uid" dynamodbav:"uid"`
	OfferID        string    `json:"offer_id" dynamodbav:"offer_id"`
	SentAt         time.Time `json:"sent_at" dynamodbav:"sent_at"`
	Read           int       `json:"read" dynamodbav:"read"`
	Withdrawn      bool      `json:"withdrawn" dynamodbav:"withdrawn"`
	Reason         string    `json:"reason,omitempty" dynamodbav:"reason"`
}
