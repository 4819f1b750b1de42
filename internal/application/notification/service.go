package notification

import (
	"context"
	"fmt"

	"github.com/dealradar/api/internal/domain"
)

// Service is the read side of the receipt trail: what a user sees in their
// notification tray.
type Service interface {
	ListUnread(ctx context.Context, uid string) ([]domain.Receipt, error)
	MarkAsRead(ctx context.Context, receiptID, uid string) (*domain.Receipt, error)
}

type receiptStore interface {
	Get(ctx context.Context, receiptID string) (*domain.Receipt, error)
	ListUnreadByUser(ctx context.Context, uid string) ([]domain.Receipt, error)
	MarkAsRead(ctx context.Context, receiptID string) error
}

type service struct {
	repo receiptStore
}

func NewService(repo receiptStore) Service {
	return &service{repo: repo}
}

func (s *service) ListUnread(ctx context.Context, uid string) ([]domain.Receipt, error) {
	return s.repo.ListUnreadByUser(ctx, uid)
}

// MarkAsRead flips the read flag on the caller's own receipt. Read state is
// independent of withdrawn, so a withdrawn receipt can still be marked read.
func (s *service) MarkAsRead(ctx context.Context, receiptID, uid string) (*domain.Receipt, error) {
	rc, err := s.repo.Get(ctx, receiptID)
	if err != nil {
		return nil, err
	}
	if rc.UID != uid {
		return nil, fmt.Errorf("receipt belongs to another user: %w", domain.ErrForbidden)
	}
	if err := s.repo.MarkAsRead(ctx, receiptID); err != nil {
		return nil, err
	}
	rc.Read = 1
	return rc, nil
}
