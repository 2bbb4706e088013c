package paymentservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/metrics"
	"github.com/GlebRadaev/memberhub/internal/payment"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

type mocks struct {
	orders     *MockOrders
	users      *MockUsers
	members    *MockMembers
	gateway    *payment.MockGateway
	dispatcher *MockDispatcher
}

func NewMock(t *testing.T) (*Service, *mocks) {
	ctrl := gomock.NewController(t)
	m := &mocks{
		orders:     NewMockOrders(ctrl),
		users:      NewMockUsers(ctrl),
		members:    NewMockMembers(ctrl),
		gateway:    payment.NewMockGateway(ctrl),
		dispatcher: NewMockDispatcher(ctrl),
	}
	return New(m.orders, m.users, m.members, m.gateway, m.dispatcher), m
}

func TestPay(t *testing.T) {
	service, m := NewMock(t)
	user := &domain.User{ID: 7, OpenID: "openid-7", Enabled: true}
	order := &domain.Order{OrderNo: "AF20240501000042", UserID: 7, ProductName: "VIP", PayAmount: 9900, PayStatus: domain.PayStatusPending}
	sig := &payment.PrepaySignature{AppID: "wx-app", Package: "prepay_id=wx1", SignType: "RSA"}

	tests := []struct {
		name          string
		prepareMock   func()
		expectedError error
	}{
		{
			name: "Prepay issued",
			prepareMock: func() {
				m.users.EXPECT().FindByID(gomock.Any(), 7).Return(user, nil)
				m.orders.EXPECT().CreateOrder(gomock.Any(), 3, 7, 42).Return(order, nil)
				m.gateway.EXPECT().Prepay(gomock.Any(), payment.PrepayRequest{
					OrderNo:     order.OrderNo,
					Description: "VIP",
					Amount:      9900,
					OpenID:      "openid-7",
					ClientIP:    "10.0.0.1",
				}).Return(sig, nil)
			},
		},
		{
			name: "Unknown user",
			prepareMock: func() {
				m.users.EXPECT().FindByID(gomock.Any(), 7).Return(nil, nil)
			},
			expectedError: domain.ErrUserNotFound,
		},
		{
			name: "Already a member",
			prepareMock: func() {
				m.users.EXPECT().FindByID(gomock.Any(), 7).Return(user, nil)
				m.orders.EXPECT().CreateOrder(gomock.Any(), 3, 7, 42).Return(nil, domain.ErrAlreadyMember)
			},
			expectedError: domain.ErrAlreadyMember,
		},
		{
			name: "Gateway fails",
			prepareMock: func() {
				m.users.EXPECT().FindByID(gomock.Any(), 7).Return(user, nil)
				m.orders.EXPECT().CreateOrder(gomock.Any(), 3, 7, 42).Return(order, nil)
				m.gateway.EXPECT().Prepay(gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("%w: http 500", domain.ErrGatewayInitiation))
			},
			expectedError: domain.ErrGatewayInitiation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			got, err := service.Pay(context.Background(), 3, 7, 42, "10.0.0.1")
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, sig, got)
		})
	}
}

func TestRepay(t *testing.T) {
	service, m := NewMock(t)
	user := &domain.User{ID: 7, OpenID: "openid-7", Enabled: true}

	m.orders.EXPECT().GetOrder(gomock.Any(), 7, "AF1").Return(&domain.Order{OrderNo: "AF1", PayStatus: domain.PayStatusSuccess}, nil)
	_, err := service.Repay(context.Background(), 7, "AF1", "")
	assert.ErrorIs(t, err, domain.ErrOrderNotPayable)

	m.orders.EXPECT().GetOrder(gomock.Any(), 7, "AF2").Return(nil, domain.ErrOrderNotFound)
	_, err = service.Repay(context.Background(), 7, "AF2", "")
	assert.ErrorIs(t, err, domain.ErrOrderNotFound)

	m.orders.EXPECT().GetOrder(gomock.Any(), 7, "AF3").Return(&domain.Order{OrderNo: "AF3", PayAmount: 9900, PayStatus: domain.PayStatusPending}, nil)
	m.users.EXPECT().FindByID(gomock.Any(), 7).Return(user, nil)
	m.members.EXPECT().FindByUserID(gomock.Any(), 7).Return(&domain.Membership{UserID: 7, Status: domain.MembershipInactive}, nil)
	m.gateway.EXPECT().Prepay(gomock.Any(), gomock.Any()).Return(&payment.PrepaySignature{Package: "prepay_id=wx3"}, nil)
	sig, err := service.Repay(context.Background(), 7, "AF3", "")
	require.NoError(t, err)
	assert.Equal(t, "prepay_id=wx3", sig.Package)
}

func TestRepayRefusesMember(t *testing.T) {
	service, m := NewMock(t)
	user := &domain.User{ID: 7, OpenID: "openid-7", Role: domain.RoleMember, Enabled: true}

	m.orders.EXPECT().GetOrder(gomock.Any(), 7, "AF4").Return(&domain.Order{OrderNo: "AF4", PayAmount: 9900, PayStatus: domain.PayStatusPending}, nil)
	m.users.EXPECT().FindByID(gomock.Any(), 7).Return(user, nil)
	m.members.EXPECT().FindByUserID(gomock.Any(), 7).Return(&domain.Membership{UserID: 7, Status: domain.MembershipActive, OpenType: domain.OpenTypeCode}, nil)
	m.gateway.EXPECT().Prepay(gomock.Any(), gomock.Any()).Times(0)

	sig, err := service.Repay(context.Background(), 7, "AF4", "10.0.0.1")
	assert.ErrorIs(t, err, domain.ErrAlreadyMember)
	assert.Nil(t, sig)
}

func TestRepayMembershipLookupFails(t *testing.T) {
	service, m := NewMock(t)

	m.orders.EXPECT().GetOrder(gomock.Any(), 7, "AF5").Return(&domain.Order{OrderNo: "AF5", PayStatus: domain.PayStatusPending}, nil)
	m.users.EXPECT().FindByID(gomock.Any(), 7).Return(&domain.User{ID: 7, Enabled: true}, nil)
	m.members.EXPECT().FindByUserID(gomock.Any(), 7).Return(nil, errors.New("db error"))

	_, err := service.Repay(context.Background(), 7, "AF5", "")
	assert.EqualError(t, err, "db error")
}

func TestHandleNotification(t *testing.T) {
	notification := payment.Notification{Timestamp: "1714564800", Nonce: "N1", Signature: "sig", Body: []byte(`{}`)}
	notice := &domain.PaymentNotice{OutTradeNo: "AF1", TradeState: "SUCCESS", Total: 9900}
	settled := &domain.Order{OrderNo: "AF1", PayStatus: domain.PayStatusSuccess, PromoterID: 42, PayAmount: 9900}

	tests := []struct {
		name          string
		outcome       string
		prepareMock   func(m *mocks)
		expectedError error
	}{
		{
			name:    "Settles once and dispatches commission",
			outcome: metrics.OutcomeSettled,
			prepareMock: func(m *mocks) {
				m.gateway.EXPECT().Decode(gomock.Any(), notification).Return(notice, nil)
				m.orders.EXPECT().SettleSuccess(gomock.Any(), notice).Return(settled, true, nil)
				m.dispatcher.EXPECT().Dispatch(*settled)
			},
		},
		{
			name:    "Duplicate delivery hands commission over again",
			outcome: metrics.OutcomeDuplicate,
			prepareMock: func(m *mocks) {
				m.gateway.EXPECT().Decode(gomock.Any(), notification).Return(notice, nil)
				m.orders.EXPECT().SettleSuccess(gomock.Any(), notice).Return(settled, false, nil)
				m.dispatcher.EXPECT().Dispatch(*settled)
			},
		},
		{
			name:    "Unpaid state does not dispatch",
			outcome: metrics.OutcomeDuplicate,
			prepareMock: func(m *mocks) {
				closed := &domain.PaymentNotice{OutTradeNo: "AF2", TradeState: "CLOSED"}
				m.gateway.EXPECT().Decode(gomock.Any(), notification).Return(closed, nil)
				m.orders.EXPECT().SettleSuccess(gomock.Any(), closed).
					Return(&domain.Order{OrderNo: "AF2", PayStatus: domain.PayStatusPending, PromoterID: 42}, false, nil)
			},
		},
		{
			name:    "Ignored event",
			outcome: metrics.OutcomeIgnored,
			prepareMock: func(m *mocks) {
				m.gateway.EXPECT().Decode(gomock.Any(), notification).Return(nil, fmt.Errorf("%w: REFUND.SUCCESS", payment.ErrIgnoredEvent))
			},
		},
		{
			name:    "Forged notification",
			outcome: metrics.OutcomeRejected,
			prepareMock: func(m *mocks) {
				m.gateway.EXPECT().Decode(gomock.Any(), notification).Return(nil, fmt.Errorf("%w: signature mismatch", domain.ErrGatewayVerification))
			},
			expectedError: domain.ErrGatewayVerification,
		},
		{
			name:    "Settlement fails",
			outcome: metrics.OutcomeFailed,
			prepareMock: func(m *mocks) {
				m.gateway.EXPECT().Decode(gomock.Any(), notification).Return(notice, nil)
				m.orders.EXPECT().SettleSuccess(gomock.Any(), notice).Return(nil, false, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, m := NewMock(t)
			tt.prepareMock(m)
			before := testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues(tt.outcome))

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			err := service.HandleNotification(ctx, notification)

			if tt.expectedError != nil {
				if errors.Is(tt.expectedError, domain.ErrGatewayVerification) {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, before+1, testutil.ToFloat64(metrics.WebhookEvents.WithLabelValues(tt.outcome)))
		})
	}
}
