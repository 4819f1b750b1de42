package match

import (
	"context"
	"errors"
	"testing"

	"github.com/dealradar/api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockFavoriteStore struct{ mock.Mock }

func (m *mockFavoriteStore) ListKeywordByKeys(ctx context.Context, keys []string) ([]domain.Favorite, error) {
	args := m.Called(ctx, keys)
	if f, _ := args.Get(0).([]domain.Favorite); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockFavoriteStore) ListProductByOffer(ctx context.Context, offerID string) ([]domain.Favorite, error) {
	args := m.Called(ctx, offerID)
	if f, _ := args.Get(0).([]domain.Favorite); f != nil {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func fptr(v float64) *float64 { return &v }
func sptr(v string) *string   { return &v }

// --- candidate generation ---

func TestNormalizeTitle(t *testing.T) {
	assert.Equal(t, "cuffie bluetooth sony", normalizeTitle("Cuffie   Bluetooth, Sony!!"))
	assert.Equal(t, "echo dot 5", normalizeTitle("Echo-Dot (5)"))
	assert.Equal(t, "", normalizeTitle("?!, ..."))
}

func TestCandidates_WordsBothCases(t *testing.T) {
	keys := candidates("Cuffie Bluetooth Sony")

	assert.Contains(t, keys, "cuffie")
	assert.Contains(t, keys, "Cuffie")
	assert.Contains(t, keys, "bluetooth")
	assert.Contains(t, keys, "Bluetooth")
	assert.Contains(t, keys, "sony")
	assert.Contains(t, keys, "Sony")
}

func TestCandidates_ShortWordsSkipped(t *testing.T) {
	keys := candidates("TV 4K da 55 pollici")
	assert.NotContains(t, keys, "tv")
	assert.NotContains(t, keys, "da")
	assert.Contains(t, keys, "pollici")
}

func TestCandidates_ShortAccentedWordsSkipped(t *testing.T) {
	// "più" is three characters; its UTF-8 byte length of four must not
	// smuggle it past the word-length cutoff.
	keys := candidates("più memoria interna")

	assert.NotContains(t, keys, "più")
	assert.Contains(t, keys, "memoria")
	assert.Contains(t, keys, "interna")
}

func TestCandidates_AccentedInitialCapitalized(t *testing.T) {
	keys := candidates("èlite gaming")

	assert.Contains(t, keys, "èlite")
	assert.Contains(t, keys, "Èlite")
}

func TestCandidates_Phrases(t *testing.T) {
	keys := candidates("robot aspirapolvere lavapavimenti potente")

	assert.Contains(t, keys, "robot aspirapolvere")
	assert.Contains(t, keys, "aspirapolvere lavapavimenti")
	assert.Contains(t, keys, "robot aspirapolvere lavapavimenti")
}

func TestCandidates_Caps(t *testing.T) {
	keys := candidates("alpha bravo charlie delta echoes foxtrot golfing hotels india juliet kilos lima")

	words := 0
	bigrams := 0
	trigrams := 0
	for _, k := range keys {
		switch countSpaces(k) {
		case 0:
			words++
		case 1:
			bigrams++
		case 2:
			trigrams++
		}
	}
	// Each word candidate appears in two case forms.
	assert.Equal(t, maxWordCandidates*2, words)
	assert.Equal(t, maxBigramCandidates, bigrams)
	assert.Equal(t, maxTrigramCandidates, trigrams)
}

func countSpaces(s string) int {
	n := 0
	for _, r := range s {
		if r == ' ' {
			n++
		}
	}
	return n
}

// --- matching ---

func TestFindMatches_KeywordNoFilters(t *testing.T) {
	fs := &mockFavoriteStore{}
	fs.On("ListKeywordByKeys", mock.Anything, mock.Anything).Return([]domain.Favorite{
		{FavoriteID: "f1", UID: "u1", Type: domain.FavoriteKeyword, Key: "bluetooth", KeyNorm: "bluetooth"},
	}, nil)
	fs.On("ListProductByOffer", mock.Anything, "o1").Return([]domain.Favorite{}, nil)

	svc := NewService(fs, 50)
	matches := svc.FindMatches(context.Background(), Input{Title: "Cuffie Bluetooth Sony", OfferID: "o1"})

	require.Len(t, matches, 1)
	assert.Equal(t, "u1", matches[0].UID)
	assert.Equal(t, domain.FavoriteKeyword, matches[0].MatchType)
	assert.Equal(t, "bluetooth", matches[0].Key)
}

func TestFindMatches_MinPriceFilterRejects(t *testing.T) {
	fs := &mockFavoriteStore{}
	fs.On("ListKeywordByKeys", mock.Anything, mock.Anything).Return([]domain.Favorite{
		{FavoriteID: "f1", UID: "u1", Type: domain.FavoriteKeyword, Key: "bluetooth", MinPrice: fptr(50)},
	}, nil)
	fs.On("ListProductByOffer", mock.Anything, "o1").Return([]domain.Favorite{}, nil)

	svc := NewService(fs, 50)
	matches := svc.FindMatches(context.Background(), Input{
		Title: "Cuffie Bluetooth Sony", OfferID: "o1", Price: fptr(30),
	})

	assert.Empty(t, matches)
}

func TestFindMatches_FilterTable(t *testing.T) {
	in := Input{
		Title:    "Cuffie Bluetooth Sony",
		OfferID:  "o1",
		Price:    fptr(80),
		Discount: fptr(25),
		Store:    "Amazon",
		Category: "Elettronica",
	}

	tests := []struct {
		name string
		fav  domain.Favorite
		want bool
	}{
		{"no filters", domain.Favorite{}, true},
		{"category match case-insensitive", domain.Favorite{Category: sptr("elettronica")}, true},
		{"category mismatch", domain.Favorite{Category: sptr("Casa")}, false},
		{"store match", domain.Favorite{Store: sptr("amazon")}, true},
		{"store mismatch", domain.Favorite{Store: sptr("eBay")}, false},
		{"min price satisfied", domain.Favorite{MinPrice: fptr(50)}, true},
		{"max price violated", domain.Favorite{MaxPrice: fptr(50)}, false},
		{"min discount satisfied", domain.Favorite{MinDiscount: fptr(20)}, true},
		{"min discount violated", domain.Favorite{MinDiscount: fptr(40)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filtersSatisfied(&tt.fav, in))
		})
	}
}

func TestFindMatches_PriceFilterWithNoOfferPriceRejects(t *testing.T) {
	fav := domain.Favorite{MinPrice: fptr(10)}
	assert.False(t, filtersSatisfied(&fav, Input{Title: "x"}))
}

func TestFindMatches_DedupPerUserAndType(t *testing.T) {
	// Same user matched through two candidate phrases: one credited match.
	fs := &mockFavoriteStore{}
	fs.On("ListKeywordByKeys", mock.Anything, mock.Anything).Return([]domain.Favorite{
		{FavoriteID: "f1", UID: "u1", Type: domain.FavoriteKeyword, Key: "bluetooth"},
		{FavoriteID: "f2", UID: "u1", Type: domain.FavoriteKeyword, Key: "Bluetooth"},
	}, nil)
	fs.On("ListProductByOffer", mock.Anything, "o1").Return([]domain.Favorite{}, nil)

	svc := NewService(fs, 50)
	matches := svc.FindMatches(context.Background(), Input{Title: "Cuffie Bluetooth Sony", OfferID: "o1"})

	assert.Len(t, matches, 1)
}

func TestFindMatches_ProductByExactID(t *testing.T) {
	fs := &mockFavoriteStore{}
	fs.On("ListKeywordByKeys", mock.Anything, mock.Anything).Return([]domain.Favorite{}, nil)
	fs.On("ListProductByOffer", mock.Anything, "o1").Return([]domain.Favorite{
		{FavoriteID: "f9", UID: "u2", Type: domain.FavoriteProduct, Key: "o1"},
	}, nil)

	svc := NewService(fs, 50)
	matches := svc.FindMatches(context.Background(), Input{Title: "Cuffie Bluetooth Sony", OfferID: "o1"})

	require.Len(t, matches, 1)
	assert.Equal(t, domain.FavoriteProduct, matches[0].MatchType)
	assert.Equal(t, "u2", matches[0].UID)
}

func TestFindMatches_BatchFailureDegrades(t *testing.T) {
	// First batch errors, second batch succeeds: matches from the second
	// batch still come through and no error surfaces.
	fs := &mockFavoriteStore{}
	fs.On("ListKeywordByKeys", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	fs.On("ListKeywordByKeys", mock.Anything, mock.Anything).Return([]domain.Favorite{
		{FavoriteID: "f1", UID: "u1", Type: domain.FavoriteKeyword, Key: "sony"},
	}, nil)
	fs.On("ListProductByOffer", mock.Anything, "o1").Return([]domain.Favorite{}, nil)

	svc := NewService(fs, 2)
	matches := svc.FindMatches(context.Background(), Input{Title: "Cuffie Bluetooth Sony", OfferID: "o1"})

	assert.Len(t, matches, 1)
}

func TestFindProductMatches_LookupErrorReturnsEmpty(t *testing.T) {
	fs := &mockFavoriteStore{}
	fs.On("ListProductByOffer", mock.Anything, "o1").Return(nil, errors.New("down"))

	svc := NewService(fs, 50)
	assert.Empty(t, svc.FindProductMatches(context.Background(), "o1"))
}
