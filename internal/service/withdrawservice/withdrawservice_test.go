package withdrawservice

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/GlebRadaev/memberhub/internal/pg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockLedger) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	ledger := NewMockLedger(ctrl)
	tx := pg.NewMockTXManager(ctrl)
	tx.EXPECT().Begin(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn pg.TransactionalFn) error {
		return fn(ctx)
	}).AnyTimes()
	service := New(repo, ledger, tx)
	service.now = func() time.Time { return fixedNow }
	return service, repo, ledger
}

func TestApply(t *testing.T) {
	service, repo, ledger := NewMock(t)
	tests := []struct {
		name          string
		amount        int64
		url           string
		prepareMock   func()
		expectedError error
	}{
		{
			name:          "Zero amount",
			amount:        0,
			url:           "https://img/qr.png",
			prepareMock:   func() {},
			expectedError: domain.ErrValidation,
		},
		{
			name:          "Missing qr image",
			amount:        500,
			url:           "  ",
			prepareMock:   func() {},
			expectedError: domain.ErrValidation,
		},
		{
			name:   "Insufficient balance",
			amount: 500,
			url:    "https://img/qr.png",
			prepareMock: func() {
				ledger.EXPECT().Freeze(gomock.Any(), 7, int64(500)).Return(nil, domain.ErrInsufficientBalance)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
		{
			name:   "Record insert fails",
			amount: 500,
			url:    "https://img/qr.png",
			prepareMock: func() {
				ledger.EXPECT().Freeze(gomock.Any(), 7, int64(500)).Return(&domain.Balance{UserID: 7, Frozen: 500}, nil)
				repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
		{
			name:   "Applied",
			amount: 500,
			url:    "https://img/qr.png",
			prepareMock: func() {
				ledger.EXPECT().Freeze(gomock.Any(), 7, int64(500)).Return(&domain.Balance{UserID: 7, Frozen: 500}, nil)
				repo.EXPECT().Create(gomock.Any(), &domain.WithdrawRecord{
					UserID:     7,
					Amount:     500,
					QRImageURL: "https://img/qr.png",
					Status:     domain.WithdrawPending,
				}).DoAndReturn(func(_ context.Context, r *domain.WithdrawRecord) (*domain.WithdrawRecord, error) {
					r.ID = 11
					return r, nil
				})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			record, err := service.Apply(context.Background(), 7, tt.amount, tt.url)
			if tt.expectedError != nil {
				if errors.Is(tt.expectedError, domain.ErrValidation) || errors.Is(tt.expectedError, domain.ErrInsufficientBalance) {
					assert.ErrorIs(t, err, tt.expectedError)
				} else {
					assert.EqualError(t, err, tt.expectedError.Error())
				}
				assert.Nil(t, record)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 11, record.ID)
			assert.Equal(t, domain.WithdrawPending, record.Status)
		})
	}
}

func TestHandle(t *testing.T) {
	service, repo, ledger := NewMock(t)
	pending := func() *domain.WithdrawRecord {
		return &domain.WithdrawRecord{ID: 11, UserID: 7, Amount: 500, Status: domain.WithdrawPending}
	}
	tests := []struct {
		name          string
		decision      int
		reason        string
		prepareMock   func()
		expectedError error
		expected      *domain.WithdrawRecord
	}{
		{
			name:          "Unknown decision",
			decision:      9,
			prepareMock:   func() {},
			expectedError: domain.ErrValidation,
		},
		{
			name:     "Record not found",
			decision: domain.WithdrawApproved,
			prepareMock: func() {
				repo.EXPECT().FindByIDForUpdate(gomock.Any(), 11).Return(nil, nil)
			},
			expectedError: domain.ErrRecordNotFound,
		},
		{
			name:     "Already handled",
			decision: domain.WithdrawRejected,
			prepareMock: func() {
				repo.EXPECT().FindByIDForUpdate(gomock.Any(), 11).Return(&domain.WithdrawRecord{ID: 11, Status: domain.WithdrawApproved}, nil)
			},
			expectedError: domain.ErrAlreadyHandled,
		},
		{
			name:     "Approve pays out the frozen amount",
			decision: domain.WithdrawApproved,
			reason:   "ignored on approval",
			prepareMock: func() {
				repo.EXPECT().FindByIDForUpdate(gomock.Any(), 11).Return(pending(), nil)
				ledger.EXPECT().Release(gomock.Any(), 7, int64(500)).Return(&domain.Balance{UserID: 7, WithdrawnTotal: 500}, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any()).Return(nil)
			},
			expected: &domain.WithdrawRecord{ID: 11, UserID: 7, Amount: 500, Status: domain.WithdrawApproved, HandledAt: &fixedNow, AdminID: 3},
		},
		{
			name:     "Reject returns the frozen amount",
			decision: domain.WithdrawRejected,
			reason:   "blurry qr",
			prepareMock: func() {
				repo.EXPECT().FindByIDForUpdate(gomock.Any(), 11).Return(pending(), nil)
				ledger.EXPECT().Unfreeze(gomock.Any(), 7, int64(500)).Return(&domain.Balance{UserID: 7, Available: 500}, nil)
				repo.EXPECT().UpdateStatus(gomock.Any(), gomock.Any()).Return(nil)
			},
			expected: &domain.WithdrawRecord{ID: 11, UserID: 7, Amount: 500, Status: domain.WithdrawRejected, HandledAt: &fixedNow, RejectReason: "blurry qr", AdminID: 3},
		},
		{
			name:     "Ledger refuses release",
			decision: domain.WithdrawApproved,
			prepareMock: func() {
				repo.EXPECT().FindByIDForUpdate(gomock.Any(), 11).Return(pending(), nil)
				ledger.EXPECT().Release(gomock.Any(), 7, int64(500)).Return(nil, domain.ErrInsufficientBalance)
			},
			expectedError: domain.ErrInsufficientBalance,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			record, err := service.Handle(context.Background(), 11, tt.decision, tt.reason, 3)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, record)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, record)
		})
	}
}

func TestList(t *testing.T) {
	service, repo, _ := NewMock(t)

	repo.EXPECT().List(gomock.Any(), domain.WithdrawFilter{Page: 1, PageSize: defaultPageSize}).
		Return([]domain.WithdrawRecord{{ID: 2}, {ID: 1}}, 2, nil)
	records, total, err := service.List(context.Background(), domain.WithdrawFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, records, 2)

	repo.EXPECT().List(gomock.Any(), domain.WithdrawFilter{Page: 3, PageSize: maxPageSize}).Return(nil, 0, nil)
	_, _, err = service.List(context.Background(), domain.WithdrawFilter{Page: 3, PageSize: 1000})
	require.NoError(t, err)

	bad := 7
	_, _, err = service.List(context.Background(), domain.WithdrawFilter{Status: &bad})
	assert.ErrorIs(t, err, domain.ErrValidation)

	repo.EXPECT().List(gomock.Any(), gomock.Any()).Return(nil, 0, errors.New("db error"))
	_, _, err = service.List(context.Background(), domain.WithdrawFilter{})
	assert.Error(t, err)
}

func TestGetUserRecords(t *testing.T) {
	service, repo, _ := NewMock(t)

	repo.EXPECT().FindByUserID(gomock.Any(), 7).Return([]domain.WithdrawRecord{{ID: 1, UserID: 7}}, nil)
	records, err := service.GetUserRecords(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, records, 1)

	repo.EXPECT().FindByUserID(gomock.Any(), 8).Return(nil, errors.New("db error"))
	_, err = service.GetUserRecords(context.Background(), 8)
	assert.Error(t, err)
}
