// Package fanout delivers one notification batch to many recipients at once.
package fanout

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/dealradar/api/internal/domain"
	snsinfra "github.com/dealradar/api/internal/infrastructure/sns"
	"github.com/dealradar/api/internal/pkg/id"
)

// Recipient is one target user with the favorite that earned the notification.
// Reason falls back to the offer id when empty.
type Recipient struct {
	UID    string
	Reason string
}

// Input describes one dispatch batch.
type Input struct {
	Recipients []Recipient
	Title      string
	Body       string
	OfferID    string
	Data       map[string]string
}

// Result reports what a dispatch actually delivered. Zero successes is not
// an error; callers log partial failure and move on.
type Result struct {
	NotificationID string
	SentUIDs       []string
}

type Service interface {
	Dispatch(ctx context.Context, in Input) (Result, error)
}

type notificationStore interface {
	Put(ctx context.Context, n *domain.Notification) error
}

type receiptStore interface {
	Put(ctx context.Context, r *domain.Receipt) error
}

type deviceStore interface {
	TokenForUser(ctx context.Context, uid string) (*string, error)
}

type service struct {
	notifications notificationStore
	receipts      receiptStore
	devices       deviceStore
	sender        snsinfra.PushSender // nil when no push credentials are configured
}

func NewService(notifications notificationStore, receipts receiptStore, devices deviceStore, sender snsinfra.PushSender) Service {
	return &service{
		notifications: notifications,
		receipts:      receipts,
		devices:       devices,
		sender:        sender,
	}
}

// sendOutcome is what one recipient's concurrent send task reports back.
type sendOutcome struct {
	uid    string
	reason string
	sent   bool
}

// Dispatch creates the Notification record up front, fires one send task per
// recipient, joins them all, then writes one receipt per successful send.
// One slow or failing recipient never blocks or fails the others.
func (s *service) Dispatch(ctx context.Context, in Input) (Result, error) {
	n := &domain.Notification{
		NotificationID: id.New(),
		Title:          in.Title,
		Body:           in.Body,
		OfferID:        in.OfferID,
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.notifications.Put(ctx, n); err != nil {
		return Result{}, err
	}

	data := make(map[string]string, len(in.Data)+1)
	for k, v := range in.Data {
		data[k] = v
	}
	data["notif_id"] = n.NotificationID

	outcomes := make([]sendOutcome, len(in.Recipients))
	var wg sync.WaitGroup
	for i, rcpt := range in.Recipients {
		wg.Add(1)
		go func(i int, rcpt Recipient) {
			defer wg.Done()
			outcomes[i] = s.sendOne(ctx, rcpt, n, data)
		}(i, rcpt)
	}
	wg.Wait()

	res := Result{NotificationID: n.NotificationID}
	for _, o := range outcomes {
		if !o.sent {
			continue
		}
		reason := o.reason
		if reason == "" {
			reason = in.OfferID
		}
		receipt := &domain.Receipt{
			ReceiptID:      id.New(),
			NotificationID: n.NotificationID,
			UID:            o.uid,
			OfferID:        in.OfferID,
			SentAt:         time.Now().UTC(),
			Read:           0,
			Withdrawn:      false,
			Reason:         reason,
		}
		if err := s.receipts.Put(ctx, receipt); err != nil {
			slog.Warn("receipt write failed", "uid", o.uid, "notification_id", n.NotificationID, "err", err)
		}
		res.SentUIDs = append(res.SentUIDs, o.uid)
	}

	if len(res.SentUIDs) < len(in.Recipients) {
		slog.Info("fan-out partially delivered",
			"notification_id", n.NotificationID,
			"sent", len(res.SentUIDs),
			"recipients", len(in.Recipients))
	}
	return res, nil
}

func (s *service) sendOne(ctx context.Context, rcpt Recipient, n *domain.Notification, data map[string]string) sendOutcome {
	out := sendOutcome{uid: rcpt.UID, reason: rcpt.Reason}

	token, err := s.devices.TokenForUser(ctx, rcpt.UID)
	if err != nil {
		slog.Warn("device lookup failed", "uid", rcpt.UID, "err", err)
		return out
	}
	// No registered token: skipped before any network call.
	if token == nil || *token == "" {
		return out
	}
	if s.sender == nil {
		return out
	}

	if _, err := s.sender.SendPush(ctx, *token, n.Title, n.Body, data); err != nil {
		slog.Warn("push send failed", "uid", rcpt.UID, "notification_id", n.NotificationID, "err", err)
		return out
	}
	out.sent = true
	return out
}
