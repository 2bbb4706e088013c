package userrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "openid", "phone", "nickname", "role", "is_promoter", "commission_rate", "enabled", "created_at", "last_login_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func TestRepository_FindByID(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		id        int
		mockSetup func()
		expectErr bool
		result    *domain.User
	}{
		{
			name: "Promoter found",
			id:   42,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
					WithArgs(42).
					WillReturnRows(pgxmock.NewRows(columns).
						AddRow(42, "o-42", "13800000000", "amy", 1, true, "0.1000", true, created, (*time.Time)(nil)))
			},
			result: &domain.User{
				ID: 42, OpenID: "o-42", Phone: "13800000000", Nickname: "amy", Role: 1, IsPromoter: true,
				CommissionRate: decimal.RequireFromString("0.1000"), Enabled: true, CreatedAt: created,
			},
		},
		{
			name: "User does not exist",
			id:   7,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
					WithArgs(7).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			id:   7,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = $1")).
					WithArgs(7).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			result, err := repo.FindByID(context.Background(), tt.id)

			if tt.expectErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			require.NoError(t, err)
			if tt.result == nil {
				assert.Nil(t, result)
				return
			}
			assert.True(t, tt.result.CommissionRate.Equal(result.CommissionRate))
			tt.result.CommissionRate = result.CommissionRate
			assert.Equal(t, tt.result, result)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByOpenID(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE openid = $1")).
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	user, err := repo.FindByOpenID(context.Background(), "missing")

	assert.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindOrCreate(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (openid) DO UPDATE")).
		WithArgs("o-1", "").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(1, "o-1", "", "", 0, false, "0.0000", true, created, (*time.Time)(nil)))

	user, err := repo.FindOrCreate(context.Background(), "o-1", "")

	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.True(t, user.CommissionRate.IsZero())

	mock.ExpectQuery(regexp.QuoteMeta("ON CONFLICT (openid) DO UPDATE")).
		WithArgs("o-2", "").
		WillReturnRows(pgxmock.NewRows(columns).
			AddRow(2, "o-2", "", "", 0, false, "not-a-number", true, created, (*time.Time)(nil)))

	_, err = repo.FindOrCreate(context.Background(), "o-2", "")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_SetRole(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $1 WHERE id = $2")).
		WithArgs(domain.RoleMember, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	assert.NoError(t, repo.SetRole(context.Background(), 3, domain.RoleMember))

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET role = $1 WHERE id = $2")).
		WithArgs(domain.RoleMember, 4).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	assert.ErrorIs(t, repo.SetRole(context.Background(), 4, domain.RoleMember), domain.ErrUserNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_TouchLastLogin(t *testing.T) {
	repo, mock := NewMock(t)
	at := time.Now()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users SET last_login_at = $1 WHERE id = $2")).
		WithArgs(at, 3).
		WillReturnError(errors.New("database error"))

	assert.Error(t, repo.TouchLastLogin(context.Background(), 3, at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdatePromoter(t *testing.T) {
	repo, mock := NewMock(t)
	rate := decimal.RequireFromString("0.15")
	promoterColumns := []string{"id", "is_promoter", "commission_rate", "promotion_link"}
	const link = "pages/index/index?key=Ab3dEf9h&promoterId=42"

	tests := []struct {
		name      string
		id        int
		mockSetup func()
		expectErr bool
		result    *domain.Promoter
	}{
		{
			name: "Promoter enabled",
			id:   42,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("promotion_link = CASE WHEN promotion_link = '' THEN $3 ELSE promotion_link END")).
					WithArgs(true, "0.15", link, 42).
					WillReturnRows(pgxmock.NewRows(promoterColumns).AddRow(42, true, "0.1500", link))
			},
			result: &domain.Promoter{UserID: 42, IsPromoter: true, CommissionRate: decimal.RequireFromString("0.1500"), Link: link},
		},
		{
			name: "User does not exist",
			id:   7,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
					WithArgs(true, "0.15", link, 7).
					WillReturnError(pgx.ErrNoRows)
			},
		},
		{
			name: "Database error",
			id:   8,
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("UPDATE users")).
					WithArgs(true, "0.15", link, 8).
					WillReturnError(errors.New("database error"))
			},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			promoter, err := repo.UpdatePromoter(context.Background(), tt.id, true, rate, link)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.result == nil {
				assert.Nil(t, promoter)
				return
			}
			assert.Equal(t, tt.result.UserID, promoter.UserID)
			assert.True(t, tt.result.CommissionRate.Equal(promoter.CommissionRate))
			assert.Equal(t, tt.result.Link, promoter.Link)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}
