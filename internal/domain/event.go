package domain

import "time"

// Event kinds reported by the upstream crawl channels.
const (
	EventCreated = "CREATED"
	EventEdited  = "EDITED"
	EventDeleted = "DELETED"
)

// Outcome actions returned to the producer. Arbitration rejections are
// successful no-ops with a descriptive action, never errors.
const (
	ActionCreated       = "created"
	ActionEdited        = "edited"
	ActionDeleted       = "deleted"
	ActionSoftDeleted   = "soft_deleted"
	ActionSkipped       = "skipped"
	ActionDeleteIgnored = "delete_ignored"
	ActionNoop          = "noop"
)

// Skip reasons attached to ActionSkipped outcomes.
const (
	ReasonLowerPriorityChannel = "lower_priority_channel"
	ReasonLowerPriorityOnEdit  = "lower_priority_on_edit"
)

// EventPost is the offer snapshot carried by an ingestion event. The envelope
// is immutable once decoded; all per-event bookkeeping lives in Result.
type EventPost struct {
	OfferID          string                 `json:"offer_id"`
	Code             string                 `json:"code" validate:"required"`
	ChannelID        string                 `json:"channel_id" validate:"required"`
	Title            string                 `json:"title"`
	Category         string                 `json:"category"`
	Store            string                 `json:"store"`
	PriceNumeric     *float64               `json:"price_numeric"`
	OldPrice         *float64               `json:"old_price"`
	Perc             *float64               `json:"perc"`
	IsExpired        bool                   `json:"is_expired"`
	IsDeleted        bool                   `json:"is_deleted"`
	SuperOfferNotify bool                   `json:"super_offer_notify"`
	Payload          map[string]interface{} `json:"payload,omitempty"`
}

// Event is one ingestion envelope from a crawl channel.
type Event struct {
	Type      string     `json:"type" validate:"required,oneof=CREATED EDITED DELETED"`
	Timestamp *time.Time `json:"timestamp"`
	Post      EventPost  `json:"post" validate:"required"`
}

// Result accumulates what one event's reconciliation actually did.
// SuperSent is the explicit at-most-once guard for the super-offer broadcast:
// both the deletion-check phase and the active phase consult it.
type Result struct {
	Action        string `json:"action"`
	Reason        string `json:"reason,omitempty"`
	OfferID       string `json:"offer_id,omitempty"`
	Retracted     int    `json:"retracted,omitempty"`
	NotifiedUsers int    `json:"notified_users,omitempty"`
	SuperSent     bool   `json:"super_sent,omitempty"`
}
