// Package match finds users whose saved favorites should trigger a
// notification for an offer.
package match

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dealradar/api/internal/domain"
)

// Input carries the offer attributes the matcher inspects.
type Input struct {
	Title    string
	OfferID  string
	Price    *float64
	Discount *float64
	Store    string
	Category string
}

// Match credits one favorite as the reason a user gets notified.
type Match struct {
	UID        string
	MatchType  string // domain.FavoriteKeyword or domain.FavoriteProduct
	Key        string
	FavoriteID string
}

type Service interface {
	// FindMatches never fails: a lookup error degrades to fewer matches.
	FindMatches(ctx context.Context, in Input) []Match
	// FindProductMatches returns only product-favorite matches for an offer.
	FindProductMatches(ctx context.Context, offerID string) []Match
}

type favoriteStore interface {
	ListKeywordByKeys(ctx context.Context, keys []string) ([]domain.Favorite, error)
	ListProductByOffer(ctx context.Context, offerID string) ([]domain.Favorite, error)
}

type service struct {
	repo      favoriteStore
	batchSize int
}

func NewService(repo favoriteStore, batchSize int) Service {
	if batchSize <= 0 {
		batchSize = 10
	}
	return &service{repo: repo, batchSize: batchSize}
}

func (s *service) FindMatches(ctx context.Context, in Input) []Match {
	var out []Match
	seen := make(map[string]bool)

	keys := candidates(in.Title)
	for start := 0; start < len(keys); start += s.batchSize {
		end := min(start+s.batchSize, len(keys))
		favorites, err := s.repo.ListKeywordByKeys(ctx, keys[start:end])
		if err != nil {
			// One failed batch costs its matches, never the whole run.
			slog.Warn("keyword favorite lookup failed", "offer_id", in.OfferID, "err", err)
			continue
		}
		for i := range favorites {
			f := &favorites[i]
			if !filtersSatisfied(f, in) {
				continue
			}
			dedupKey := f.UID + "|" + domain.FavoriteKeyword + "|" + strings.ToLower(f.Key)
			if seen[dedupKey] {
				continue
			}
			seen[dedupKey] = true
			out = append(out, Match{
				UID:        f.UID,
				MatchType:  domain.FavoriteKeyword,
				Key:        f.Key,
				FavoriteID: f.FavoriteID,
			})
		}
	}

	for _, m := range s.FindProductMatches(ctx, in.OfferID) {
		dedupKey := m.UID + "|" + domain.FavoriteProduct + "|" + in.OfferID
		if seen[dedupKey] {
			continue
		}
		seen[dedupKey] = true
		out = append(out, m)
	}

	return out
}

func (s *service) FindProductMatches(ctx context.Context, offerID string) []Match {
	favorites, err := s.repo.ListProductByOffer(ctx, offerID)
	if err != nil {
		slog.Warn("product favorite lookup failed", "offer_id", offerID, "err", err)
		return nil
	}
	out := make([]Match, 0, len(favorites))
	seen := make(map[string]bool)
	for i := range favorites {
		f := &favorites[i]
		if seen[f.UID] {
			continue
		}
		seen[f.UID] = true
		out = append(out, Match{
			UID:        f.UID,
			MatchType:  domain.FavoriteProduct,
			Key:        f.Key,
			FavoriteID: f.FavoriteID,
		})
	}
	return out
}

// filtersSatisfied applies a keyword favorite's optional filter tuple.
// A favorite with no filters matches unconditionally once its key matched.
func filtersSatisfied(f *domain.Favorite, in Input) bool {
	if f.Category != nil && !strings.EqualFold(*f.Category, in.Category) {
		return false
	}
	if f.Store != nil && !strings.EqualFold(*f.Store, in.Store) {
		return false
	}
	if f.MinPrice != nil && (in.Price == nil || *in.Price < *f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && (in.Price == nil || *in.Price > *f.MaxPrice) {
		return false
	}
	if f.MinDiscount != nil && (in.Discount == nil || *in.Discount < *f.MinDiscount) {
		return false
	}
	return true
}
