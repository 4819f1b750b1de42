package domain

import "time"

// Device is a user's registered push target. Token is nil until the client
// registers one; recipients without a token are skipped before any send.
type Device struct {
	DeviceID  string    `json:"id" dynamodbav:"device_id"`
	UID       string    `json:"uid" dynamodbav:"uid"`
	Token     *string   `json:"token" dynamodbav:"token"`
	Enable    bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}
