// Package reconcile is the offer lifecycle state machine. It consumes one
// ingestion event at a time, arbitrates between reporting channels, decides
// the offer's next state and drives matching, fan-out and retraction as side
// effects.
package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dealradar/api/internal/application/arbiter"
	"github.com/dealradar/api/internal/application/fanout"
	"github.com/dealradar/api/internal/application/match"
	"github.com/dealradar/api/internal/application/retraction"
	"github.com/dealradar/api/internal/domain"
	"github.com/dealradar/api/internal/pkg/id"
)

const (
	restoredTitle  = "❤ Available again"
	priceDropTitle = "Price drop"
	newOfferTitle  = "New offer for you"
	superTitle     = "Super offer"
)

// Options are the reconciler's tunables.
type Options struct {
	// SuperOfferBroadcast gates the super-offer broadcast globally; the
	// per-event flag alone never fires it.
	SuperOfferBroadcast bool
	// NotifLookback bounds the "was anyone ever told about this offer"
	// check that keeps a row from being hard-deleted.
	NotifLookback time.Duration
	// SoftDeleteGrace is the default expiry window when a deletion event
	// carries no explicit timestamp.
	SoftDeleteGrace time.Duration
}

type Service interface {
	// Process reconciles one ingestion event. Arbitration rejections come
	// back as successful no-op Results; an error means the event aborted
	// and should surface as a 5xx plus an external alert.
	Process(ctx context.Context, ev domain.Event) (domain.Result, error)
}

type offerStore interface {
	GetByCode(ctx context.Context, code string) (*domain.Offer, error)
	Put(ctx context.Context, o *domain.Offer) error
	Update(ctx context.Context, offerID string, updates map[string]interface{}) error
	HardDelete(ctx context.Context, offerID string) error
}

type notificationStore interface {
	AnySentForOffer(ctx context.Context, offerID string, since time.Time) (bool, error)
}

type userStore interface {
	ListSuperOfferOptIns(ctx context.Context) ([]domain.User, error)
}

type service struct {
	offers        offerStore
	notifications notificationStore
	users         userStore
	arb           *arbiter.Arbiter
	matcher       match.Service
	dispatcher    fanout.Service
	retractor     retraction.Service
	opts          Options
	now           func() time.Time
}

// ServiceDeps bundles the reconciler's collaborators for construction.
type ServiceDeps struct {
	Offers        offerStore
	Notifications notificationStore
	Users         userStore
	Arbiter       *arbiter.Arbiter
	Matcher       match.Service
	Dispatcher    fanout.Service
	Retractor     retraction.Service
}

func NewService(deps ServiceDeps, opts Options) Service {
	if opts.NotifLookback <= 0 {
		opts.NotifLookback = 7 * 24 * time.Hour
	}
	if opts.SoftDeleteGrace <= 0 {
		opts.SoftDeleteGrace = 7 * 24 * time.Hour
	}
	return &service{
		offers:        deps.Offers,
		notifications: deps.Notifications,
		users:         deps.Users,
		arb:           deps.Arbiter,
		matcher:       deps.Matcher,
		dispatcher:    deps.Dispatcher,
		retractor:     deps.Retractor,
		opts:          opts,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Process handles one event. There is no mutual exclusion across events for
// the same code: two concurrent events can interleave their read-modify-write.
// Known consistency gap, tolerated because persistence is idempotent per
// offer_id and producers re-deliver on failure.
func (s *service) Process(ctx context.Context, ev domain.Event) (domain.Result, error) {
	existing, err := s.offers.GetByCode(ctx, ev.Post.Code)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return domain.Result{}, fmt.Errorf("lookup offer by code: %w", err)
	}

	res := domain.Result{}
	if existing != nil {
		res.OfferID = existing.OfferID
	}

	if eventReportsGone(ev) {
		return s.handleDeletion(ctx, ev, existing, res)
	}
	return s.handleActive(ctx, ev, existing, res)
}

// eventReportsGone is true when the event says the offer is no longer
// available, either by kind or by payload flags.
func eventReportsGone(ev domain.Event) bool {
	return ev.Type == domain.EventDeleted || ev.Post.IsDeleted || ev.Post.IsExpired
}

// ── deletion path ────────────────────────────────────────────────────────────

func (s *service) handleDeletion(ctx context.Context, ev domain.Event, existing *domain.Offer, res domain.Result) (domain.Result, error) {
	if existing == nil {
		// Nothing to delete; producers re-deliver freely so this stays a
		// successful no-op.
		res.Action = domain.ActionNoop
		return res, nil
	}

	// Retraction always runs first, before arbitration can stop the event.
	retracted, err := s.retractor.RetractByOffer(ctx, existing.OfferID)
	if err != nil {
		slog.Warn("retraction failed", "offer_id", existing.OfferID, "err", err)
	}
	res.Retracted = retracted.Updated

	s.maybeSuperBroadcast(ctx, ev, existing.OfferID, &res)

	if !s.arb.MayOverwrite(ev.Post.ChannelID, existing.ChannelID) {
		res.Action = domain.ActionDeleteIgnored
		return res, nil
	}

	if s.mustRetain(ctx, existing.OfferID) {
		expiry := s.now().Add(s.opts.SoftDeleteGrace)
		if ev.Timestamp != nil {
			expiry = *ev.Timestamp
		}
		err := s.offers.Update(ctx, existing.OfferID, map[string]interface{}{
			"is_deleted":        true,
			"is_expired":        true,
			"timestamp_expired": expiry.UTC().Format(time.RFC3339),
		})
		if err != nil {
			return res, fmt.Errorf("soft delete offer: %w", err)
		}
		res.Action = domain.ActionSoftDeleted
		return res, nil
	}

	if err := s.offers.HardDelete(ctx, existing.OfferID); err != nil {
		return res, fmt.Errorf("hard delete offer: %w", err)
	}
	res.Action = domain.ActionDeleted
	return res, nil
}

// mustRetain decides soft versus hard deletion: a row survives when any user
// favorites it as a product or was notified about it inside the lookback
// window. Uncertainty counts as retain.
func (s *service) mustRetain(ctx context.Context, offerID string) bool {
	if len(s.matcher.FindProductMatches(ctx, offerID)) > 0 {
		return true
	}
	notified, err := s.notifications.AnySentForOffer(ctx, offerID, s.now().Add(-s.opts.NotifLookback))
	if err != nil {
		slog.Warn("notification lookback failed", "offer_id", offerID, "err", err)
		return true
	}
	return notified
}

// ── active path ──────────────────────────────────────────────────────────────

func (s *service) handleActive(ctx context.Context, ev domain.Event, existing *domain.Offer, res domain.Result) (domain.Result, error) {
	if existing == nil {
		if ev.Type != domain.EventCreated {
			res.Action = domain.ActionNoop
			return res, nil
		}
		return s.createOffer(ctx, ev, res)
	}

	// A live row from a strictly higher-priority channel wins.
	if !existing.Unavailable() && !s.arb.MayOverwrite(ev.Post.ChannelID, existing.ChannelID) {
		res.Action = domain.ActionSkipped
		if ev.Type == domain.EventEdited {
			res.Reason = domain.ReasonLowerPriorityOnEdit
		} else {
			res.Reason = domain.ReasonLowerPriorityChannel
		}
		return res, nil
	}

	productMatches := s.matcher.FindProductMatches(ctx, existing.OfferID)

	if existing.Unavailable() {
		// Restoration: notify product-favoriters before the cleared flags persist.
		if len(productMatches) > 0 {
			s.dispatch(ctx, fanout.Input{
				Recipients: recipients(productMatches),
				Title:      restoredTitle,
				Body:       ev.Post.Title,
				OfferID:    existing.OfferID,
				Data:       offerData(existing.OfferID),
			}, &res)
		}
	}

	if ev.Type == domain.EventEdited && priceDropped(existing.PriceNumeric, ev.Post.PriceNumeric) && len(productMatches) > 0 {
		s.dispatch(ctx, fanout.Input{
			Recipients: recipients(productMatches),
			Title:      priceDropTitle,
			Body:       fmt.Sprintf("%s — now %.2f", ev.Post.Title, *ev.Post.PriceNumeric),
			OfferID:    existing.OfferID,
			Data:       offerData(existing.OfferID),
		}, &res)
	}

	// Update in place keyed by the stable offer_id, even when the event
	// reports a different generated id for the same code.
	updated := offerFromEvent(ev, existing.OfferID, existing.CreatedAt, s.now())
	if err := s.offers.Put(ctx, updated); err != nil {
		return res, fmt.Errorf("persist offer: %w", err)
	}
	res.OfferID = updated.OfferID

	if ev.Type == domain.EventCreated {
		res.Action = domain.ActionCreated
		s.notifyKeywordMatches(ctx, ev, updated, &res)
	} else {
		res.Action = domain.ActionEdited
	}

	s.maybeSuperBroadcast(ctx, ev, updated.OfferID, &res)
	return res, nil
}

func (s *service) createOffer(ctx context.Context, ev domain.Event, res domain.Result) (domain.Result, error) {
	offerID := ev.Post.OfferID
	if offerID == "" {
		offerID = id.New()
	}
	o := offerFromEvent(ev, offerID, s.now(), s.now())
	if err := s.offers.Put(ctx, o); err != nil {
		return res, fmt.Errorf("persist offer: %w", err)
	}
	res.OfferID = o.OfferID
	res.Action = domain.ActionCreated

	s.notifyKeywordMatches(ctx, ev, o, &res)
	s.maybeSuperBroadcast(ctx, ev, o.OfferID, &res)
	return res, nil
}

// notifyKeywordMatches runs the Match Engine over the offer title. Keyword
// matching is a one-time acquisition signal: it runs after persisting CREATED
// events only, never on edits.
func (s *service) notifyKeywordMatches(ctx context.Context, ev domain.Event, o *domain.Offer, res *domain.Result) {
	matches := s.matcher.FindMatches(ctx, match.Input{
		Title:    o.Title,
		OfferID:  o.OfferID,
		Price:    o.PriceNumeric,
		Discount: o.Perc,
		Store:    o.Store,
		Category: o.Category,
	})
	if len(matches) == 0 {
		return
	}
	s.dispatch(ctx, fanout.Input{
		Recipients: recipients(matches),
		Title:      newOfferTitle,
		Body:       o.Title,
		OfferID:    o.OfferID,
		Data:       offerData(o.OfferID),
	}, res)
}

// maybeSuperBroadcast fires the opt-in broadcast at most once per event,
// whichever phase reaches it first.
func (s *service) maybeSuperBroadcast(ctx context.Context, ev domain.Event, offerID string, res *domain.Result) {
	if res.SuperSent || !ev.Post.SuperOfferNotify || !s.opts.SuperOfferBroadcast {
		return
	}
	res.SuperSent = true

	users, err := s.users.ListSuperOfferOptIns(ctx)
	if err != nil {
		slog.Warn("super-offer audience lookup failed", "offer_id", offerID, "err", err)
		return
	}
	if len(users) == 0 {
		return
	}
	rcpts := make([]fanout.Recipient, len(users))
	for i, u := range users {
		rcpts[i] = fanout.Recipient{UID: u.UserID}
	}
	s.dispatch(ctx, fanout.Input{
		Recipients: rcpts,
		Title:      superTitle,
		Body:       ev.Post.Title,
		OfferID:    offerID,
		Data:       offerData(offerID),
	}, res)
}

// dispatch runs one fan-out batch, isolating its failure from the event.
func (s *service) dispatch(ctx context.Context, in fanout.Input, res *domain.Result) {
	out, err := s.dispatcher.Dispatch(ctx, in)
	if err != nil {
		slog.Warn("fan-out dispatch failed", "offer_id", in.OfferID, "title", in.Title, "err", err)
		return
	}
	res.NotifiedUsers += len(out.SentUIDs)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func priceDropped(oldPrice, newPrice *float64) bool {
	return oldPrice != nil && newPrice != nil && *newPrice < *oldPrice
}

func recipients(matches []match.Match) []fanout.Recipient {
	out := make([]fanout.Recipient, len(matches))
	for i, m := range matches {
		reason := m.FavoriteID
		if reason == "" {
			reason = m.Key
		}
		out[i] = fanout.Recipient{UID: m.UID, Reason: reason}
	}
	return out
}

func offerData(offerID string) map[string]string {
	return map[string]string{"type": "offer", "target": offerID}
}

// offerFromEvent builds the row to persist. Restoration clears the
// deleted/expired flags and timestamp because the event reports the offer
// active and the row is rebuilt from the event snapshot.
func offerFromEvent(ev domain.Event, offerID string, createdAt, now time.Time) *domain.Offer {
	return &domain.Offer{
		OfferID:          offerID,
		Code:             ev.Post.Code,
		ChannelID:        ev.Post.ChannelID,
		Title:            ev.Post.Title,
		Category:         ev.Post.Category,
		Store:            ev.Post.Store,
		PriceNumeric:     ev.Post.PriceNumeric,
		OldPrice:         ev.Post.OldPrice,
		Perc:             ev.Post.Perc,
		IsDeleted:        false,
		IsExpired:        false,
		TimestampExpired: nil,
		SuperOfferNotify: ev.Post.SuperOfferNotify,
		Payload:          ev.Post.Payload,
		CreatedAt:        createdAt,
		UpdatedAt:        now,
	}
}
