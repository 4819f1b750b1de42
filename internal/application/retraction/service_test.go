package retraction

import (
	"context"
	"errors"
	"testing"

	"github.com/dealradar/api/internal/domain"
	snsinfra "github.com/dealradar/api/internal/infrastructure/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockReceiptStore struct{ mock.Mock }

func (m *mockReceiptStore) ListActiveByOffer(ctx context.Context, offerID string) ([]domain.Receipt, error) {
	args := m.Called(ctx, offerID)
	if r, _ := args.Get(0).([]domain.Receipt); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReceiptStore) ListActiveByNotification(ctx context.Context, notificationID string) ([]domain.Receipt, error) {
	args := m.Called(ctx, notificationID)
	if r, _ := args.Get(0).([]domain.Receipt); r != nil {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockReceiptStore) MarkWithdrawn(ctx context.Context, receiptIDs []string) error {
	return m.Called(ctx, receiptIDs).Error(0)
}

type mockDeviceStore struct{ mock.Mock }

func (m *mockDeviceStore) TokenForUser(ctx context.Context, uid string) (*string, error) {
	args := m.Called(ctx, uid)
	if t, _ := args.Get(0).(*string); t != nil {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockSender struct{ mock.Mock }

func (m *mockSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) (snsinfra.PushResult, error) {
	args := m.Called(ctx, token, title, body, data)
	return args.Get(0).(snsinfra.PushResult), args.Error(1)
}
func (m *mockSender) SendData(ctx context.Context, token string, data map[string]string) (snsinfra.PushResult, error) {
	args := m.Called(ctx, token, data)
	return args.Get(0).(snsinfra.PushResult), args.Error(1)
}

func sptr(v string) *string { return &v }

func receiptsFixture() []domain.Receipt {
	return []domain.Receipt{
		{ReceiptID: "r1", NotificationID: "n1", UID: "u1", OfferID: "o1"},
		{ReceiptID: "r2", NotificationID: "n1", UID: "u2", OfferID: "o1"},
	}
}

// --- tests ---

func TestRetractByOffer_NoReceipts(t *testing.T) {
	rs := &mockReceiptStore{}
	rs.On("ListActiveByOffer", mock.Anything, "o1").Return([]domain.Receipt{}, nil)

	svc := NewService(rs, &mockDeviceStore{}, nil)
	res, err := svc.RetractByOffer(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 0, Sent: 0}, res)
	rs.AssertNotCalled(t, "MarkWithdrawn", mock.Anything, mock.Anything)
}

func TestRetractByOffer_WithdrawsAndSends(t *testing.T) {
	rs := &mockReceiptStore{}
	rs.On("ListActiveByOffer", mock.Anything, "o1").Return(receiptsFixture(), nil)
	rs.On("MarkWithdrawn", mock.Anything, []string{"r1", "r2"}).Return(nil)
	ds := &mockDeviceStore{}
	ds.On("TokenForUser", mock.Anything, "u1").Return(sptr("tok-1"), nil)
	ds.On("TokenForUser", mock.Anything, "u2").Return(sptr("tok-2"), nil)
	snd := &mockSender{}
	snd.On("SendData", mock.Anything, mock.Anything, mock.MatchedBy(func(data map[string]string) bool {
		return data["type"] == "retract" &&
			data["withdrawn"] == "true" &&
			data["calltoaction"] == "withdraw_offer" &&
			data["target"] == "o1" &&
			data["notif_id"] == "n1"
	})).Return(snsinfra.PushResult{Success: true, StatusCode: 200}, nil)

	svc := NewService(rs, ds, snd)
	res, err := svc.RetractByOffer(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2, Sent: 2}, res)
	rs.AssertExpectations(t)
}

func TestRetract_NoCredentialsPersistsWithdrawalOnly(t *testing.T) {
	rs := &mockReceiptStore{}
	rs.On("ListActiveByOffer", mock.Anything, "o1").Return(receiptsFixture(), nil)
	rs.On("MarkWithdrawn", mock.Anything, []string{"r1", "r2"}).Return(nil)

	svc := NewService(rs, &mockDeviceStore{}, nil)
	res, err := svc.RetractByOffer(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2, Sent: 0}, res)
}

func TestRetract_SendFailureIsolated(t *testing.T) {
	rs := &mockReceiptStore{}
	rs.On("ListActiveByOffer", mock.Anything, "o1").Return(receiptsFixture(), nil)
	rs.On("MarkWithdrawn", mock.Anything, mock.Anything).Return(nil)
	ds := &mockDeviceStore{}
	ds.On("TokenForUser", mock.Anything, "u1").Return(sptr("tok-1"), nil)
	ds.On("TokenForUser", mock.Anything, "u2").Return(sptr("tok-2"), nil)
	snd := &mockSender{}
	snd.On("SendData", mock.Anything, "tok-1", mock.Anything).
		Return(snsinfra.PushResult{Success: false}, errors.New("unreachable"))
	snd.On("SendData", mock.Anything, "tok-2", mock.Anything).
		Return(snsinfra.PushResult{Success: true, StatusCode: 200}, nil)

	svc := NewService(rs, ds, snd)
	res, err := svc.RetractByOffer(context.Background(), "o1")

	require.NoError(t, err)
	assert.Equal(t, Result{Updated: 2, Sent: 1}, res)
}

func TestRetractByNotification_UsesNotificationIndex(t *testing.T) {
	rs := &mockReceiptStore{}
	rs.On("ListActiveByNotification", mock.Anything, "n1").Return([]domain.Receipt{
		{ReceiptID: "r1", NotificationID: "n1", UID: "u1", OfferID: "o1"},
	}, nil)
	rs.On("MarkWithdrawn", mock.Anything, []string{"r1"}).Return(nil)

	svc := NewService(rs, &mockDeviceStore{}, nil)
	res, err := svc.RetractByNotification(context.Background(), "n1")

	require.NoError(t, err)
	assert.Equal(t, 1, res.Updated)
}

func TestRetract_WithdrawFailurePropagates(t *testing.T) {
	rs := &mockReceiptStore{}
	rs.On("ListActiveByOffer", mock.Anything, "o1").Return(receiptsFixture(), nil)
	rs.On("MarkWithdrawn", mock.Anything, mock.Anything).Return(errors.New("dynamo down"))

	svc := NewService(rs, &mockDeviceStore{}, nil)
	_, err := svc.RetractByOffer(context.Background(), "o1")

	assert.Error(t, err)
}
