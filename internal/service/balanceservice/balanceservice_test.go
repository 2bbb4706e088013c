package balanceservice

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/stretchr/testify/assert"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T) (*Service, *MockRepo, *MockPromotionRepo) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepo(ctrl)
	promotionRepo := NewMockPromotionRepo(ctrl)
	service := New(repo, promotionRepo)
	return service, repo, promotionRepo
}

func TestGetBalance(t *testing.T) {
	service, repo, _ := NewMock(t)
	tests := []struct {
		name            string
		prepareMock     func()
		expectedBalance *domain.Balance
		expectedError   error
	}{
		{
			name: "Retrieve balance successfully",
			prepareMock: func() {
				repo.EXPECT().Get(gomock.Any(), 1).Return(&domain.Balance{UserID: 1, Available: 100, Frozen: 50}, nil)
			},
			expectedBalance: &domain.Balance{UserID: 1, Available: 100, Frozen: 50},
		},
		{
			name: "Missing row reads as zero",
			prepareMock: func() {
				repo.EXPECT().Get(gomock.Any(), 1).Return(nil, nil)
			},
			expectedBalance: &domain.Balance{UserID: 1},
		},
		{
			name: "Error retrieving balance",
			prepareMock: func() {
				repo.EXPECT().Get(gomock.Any(), 1).Return(nil, errors.New("db error"))
			},
			expectedError: errors.New("db error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()

			balance, err := service.GetBalance(context.Background(), 1)
			if tt.expectedError != nil {
				assert.EqualError(t, err, tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expectedBalance, balance)
			}
		})
	}
}

func TestEnsureBalance(t *testing.T) {
	service, repo, _ := NewMock(t)

	repo.EXPECT().Ensure(gomock.Any(), 1).Return(&domain.Balance{ID: 1, UserID: 1}, nil)
	balance, err := service.EnsureBalance(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, &domain.Balance{ID: 1, UserID: 1}, balance)

	repo.EXPECT().Ensure(gomock.Any(), 2).Return(nil, errors.New("db error"))
	_, err = service.EnsureBalance(context.Background(), 2)
	assert.Error(t, err)
}

func TestPrimitives(t *testing.T) {
	service, repo, _ := NewMock(t)
	insufficient := fmt.Errorf("%w: freeze", domain.ErrInsufficientBalance)

	tests := []struct {
		name        string
		amount      int64
		prepareMock func()
		call        func(ctx context.Context, userID int, amount int64) (*domain.Balance, error)
		expectedErr error
	}{
		{
			name:        "Credit rejects zero",
			amount:      0,
			prepareMock: func() {},
			call:        service.Credit,
			expectedErr: domain.ErrValidation,
		},
		{
			name:        "Debit rejects negative",
			amount:      -5,
			prepareMock: func() {},
			call:        service.Debit,
			expectedErr: domain.ErrValidation,
		},
		{
			name:   "Credit applied",
			amount: 990,
			prepareMock: func() {
				repo.EXPECT().Credit(gomock.Any(), 42, int64(990)).Return(&domain.Balance{UserID: 42, Available: 990}, nil)
			},
			call: service.Credit,
		},
		{
			name:   "Freeze without funds",
			amount: 500,
			prepareMock: func() {
				repo.EXPECT().Freeze(gomock.Any(), 42, int64(500)).Return(nil, insufficient)
			},
			call:        service.Freeze,
			expectedErr: domain.ErrInsufficientBalance,
		},
		{
			name:   "Release applied",
			amount: 500,
			prepareMock: func() {
				repo.EXPECT().Release(gomock.Any(), 42, int64(500)).Return(&domain.Balance{UserID: 42, WithdrawnTotal: 500}, nil)
			},
			call: service.Release,
		},
		{
			name:   "Unfreeze applied",
			amount: 500,
			prepareMock: func() {
				repo.EXPECT().Unfreeze(gomock.Any(), 42, int64(500)).Return(&domain.Balance{UserID: 42, Available: 500}, nil)
			},
			call: service.Unfreeze,
		},
		{
			name:   "Debit applied",
			amount: 1,
			prepareMock: func() {
				repo.EXPECT().Debit(gomock.Any(), 42, int64(1)).Return(&domain.Balance{UserID: 42}, nil)
			},
			call: service.Debit,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.prepareMock()
			balance, err := tt.call(context.Background(), 42, tt.amount)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				assert.Nil(t, balance)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, 42, balance.UserID)
		})
	}
}

func TestGetPromotions(t *testing.T) {
	service, _, promotionRepo := NewMock(t)

	promotionRepo.EXPECT().FindByPromoter(gomock.Any(), 42).Return([]domain.PromotionRecord{{OrderNo: "AF1", CommissionAmount: 990}}, nil)
	records, err := service.GetPromotions(context.Background(), 42)
	assert.NoError(t, err)
	assert.Len(t, records, 1)

	promotionRepo.EXPECT().FindByPromoter(gomock.Any(), 43).Return(nil, errors.New("db error"))
	_, err = service.GetPromotions(context.Background(), 43)
	assert.Error(t, err)
}
