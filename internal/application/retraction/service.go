// Package retraction withdraws previously delivered notifications and tells
// the affected devices to drop them.
package retraction

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dealradar/api/internal/domain"
	snsinfra "github.com/dealradar/api/internal/infrastructure/sns"
)

// Result reports one retraction run: receipts newly withdrawn and retract
// messages actually delivered. Sent == 0 with Updated > 0 means withdrawal
// persisted but no push credentials were available (or every send failed).
type Result struct {
	Updated int `json:"updated_receipt_count"`
	Sent    int `json:"sent_retraction_count"`
}

type Service interface {
	RetractByOffer(ctx context.Context, offerID string) (Result, error)
	RetractByNotification(ctx context.Context, notificationID string) (Result, error)
}

type receiptStore interface {
	ListActiveByOffer(ctx context.Context, offerID string) ([]domain.Receipt, error)
	ListActiveByNotification(ctx context.Context, notificationID string) ([]domain.Receipt, error)
	MarkWithdrawn(ctx context.Context, receiptIDs []string) error
}

type deviceStore interface {
	TokenForUser(ctx context.Context, uid string) (*string, error)
}

type service struct {
	receipts receiptStore
	devices  deviceStore
	sender   snsinfra.PushSender // nil when no push credentials are configured
}

func NewService(receipts receiptStore, devices deviceStore, sender snsinfra.PushSender) Service {
	return &service{receipts: receipts, devices: devices, sender: sender}
}

func (s *service) RetractByOffer(ctx context.Context, offerID string) (Result, error) {
	receipts, err := s.receipts.ListActiveByOffer(ctx, offerID)
	if err != nil {
		return Result{}, err
	}
	return s.retract(ctx, receipts)
}

func (s *service) RetractByNotification(ctx context.Context, notificationID string) (Result, error) {
	receipts, err := s.receipts.ListActiveByNotification(ctx, notificationID)
	if err != nil {
		return Result{}, err
	}
	return s.retract(ctx, receipts)
}

// retract marks the receipts withdrawn in one batch, then fires one retract
// data message per affected device. The store queries exclude already-withdrawn
// receipts, so replaying a retraction is a no-op.
func (s *service) retract(ctx context.Context, receipts []domain.Receipt) (Result, error) {
	if len(receipts) == 0 {
		return Result{}, nil
	}

	ids := make([]string, len(receipts))
	for i := range receipts {
		ids[i] = receipts[i].ReceiptID
	}
	if err := s.receipts.MarkWithdrawn(ctx, ids); err != nil {
		return Result{}, err
	}

	res := Result{Updated: len(receipts)}
	if s.sender == nil {
		// Withdrawal persisted, nothing dispatched; distinct from an error.
		return res, nil
	}

	sent := make([]bool, len(receipts))
	var wg sync.WaitGroup
	for i := range receipts {
		wg.Add(1)
		go func(i int, rc domain.Receipt) {
			defer wg.Done()
			sent[i] = s.sendRetract(ctx, rc)
		}(i, receipts[i])
	}
	wg.Wait()

	for _, ok := range sent {
		if ok {
			res.Sent++
		}
	}
	return res, nil
}

func (s *service) sendRetract(ctx context.Context, rc domain.Receipt) bool {
	token, err := s.devices.TokenForUser(ctx, rc.UID)
	if err != nil {
		slog.Warn("device lookup failed", "uid", rc.UID, "err", err)
		return false
	}
	if token == nil || *token == "" {
		return false
	}

	data := map[string]string{
		"type":         "retract",
		"withdrawn":    "true",
		"calltoaction": "withdraw_offer",
		"target":       rc.OfferID,
		"notif_id":     rc.NotificationID,
	}
	if _, err := s.sender.SendData(ctx, *token, data); err != nil {
		slog.Warn("retract send failed", "uid", rc.UID, "notification_id", rc.NotificationID, "err", err)
		return false
	}
	return true
}
