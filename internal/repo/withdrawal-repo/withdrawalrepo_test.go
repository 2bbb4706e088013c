package withdrawalrepo

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/GlebRadaev/memberhub/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columns = []string{"id", "user_id", "amount", "qr_image_url", "status", "handled_at", "reject_reason", "admin_id", "created_at"}

func NewMock(t *testing.T) (*Repository, pgxmock.PgxPoolIface) {
	mockDB, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mockDB.Close)
	return New(mockDB), mockDB
}

func addRecord(rows *pgxmock.Rows, id, status int, created time.Time) *pgxmock.Rows {
	return rows.AddRow(id, 1, int64(500), "https://cdn/qr.png", status, (*time.Time)(nil), "", -1, created)
}

func TestRepository_Create(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO withdraw_records")).
		WithArgs(1, int64(500), "https://cdn/qr.png", domain.WithdrawPending).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(3, created))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO withdraw_records")).
		WithArgs(1, int64(500), "https://cdn/qr.png", domain.WithdrawPending).
		WillReturnError(errors.New("boom"))

	rec, err := repo.Create(context.Background(), &domain.WithdrawRecord{UserID: 1, Amount: 500, QRImageURL: "https://cdn/qr.png"})
	require.NoError(t, err)
	assert.Equal(t, 3, rec.ID)

	_, err = repo.Create(context.Background(), &domain.WithdrawRecord{UserID: 1, Amount: 500, QRImageURL: "https://cdn/qr.png"})
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByIDForUpdate(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM withdraw_records WHERE id = $1 FOR UPDATE")).
		WithArgs(3).
		WillReturnRows(addRecord(pgxmock.NewRows(columns), 3, domain.WithdrawPending, created))
	mock.ExpectQuery(regexp.QuoteMeta("FROM withdraw_records WHERE id = $1 FOR UPDATE")).
		WithArgs(4).
		WillReturnError(pgx.ErrNoRows)

	rec, err := repo.FindByIDForUpdate(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, &domain.WithdrawRecord{ID: 3, UserID: 1, Amount: 500, QRImageURL: "https://cdn/qr.png", AdminID: -1, CreatedAt: created}, rec)

	rec, err = repo.FindByIDForUpdate(context.Background(), 4)
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_UpdateStatus(t *testing.T) {
	repo, mock := NewMock(t)
	at := time.Now()
	rec := &domain.WithdrawRecord{ID: 3, Status: domain.WithdrawRejected, HandledAt: &at, RejectReason: "blurry qr", AdminID: 1}

	mock.ExpectExec(regexp.QuoteMeta("SET status = $1, handled_at = $2, reject_reason = $3, admin_id = $4 WHERE id = $5")).
		WithArgs(domain.WithdrawRejected, &at, "blurry qr", 1, 3).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	assert.NoError(t, repo.UpdateStatus(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_List(t *testing.T) {
	repo, mock := NewMock(t)
	created := time.Now()
	userID, status := 1, domain.WithdrawPending

	tests := []struct {
		name      string
		filter    domain.WithdrawFilter
		mockSetup func()
		total     int
		count     int
		expectErr bool
	}{
		{
			name:   "No filter",
			filter: domain.WithdrawFilter{Page: 1, PageSize: 20},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM withdraw_records")).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
				rows := pgxmock.NewRows(columns)
				addRecord(rows, 2, domain.WithdrawPending, created)
				addRecord(rows, 1, domain.WithdrawApproved, created)
				mock.ExpectQuery(regexp.QuoteMeta("FROM withdraw_records ORDER BY status ASC, id DESC LIMIT $1 OFFSET $2")).
					WithArgs(20, 0).
					WillReturnRows(rows)
			},
			total: 2,
			count: 2,
		},
		{
			name:   "User and status filter, second page",
			filter: domain.WithdrawFilter{UserID: &userID, Status: &status, Page: 2, PageSize: 10},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM withdraw_records WHERE user_id = $1 AND status = $2")).
					WithArgs(1, 0).
					WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(11))
				mock.ExpectQuery(regexp.QuoteMeta("WHERE user_id = $1 AND status = $2 ORDER BY status ASC, id DESC LIMIT $3 OFFSET $4")).
					WithArgs(1, 0, 10, 10).
					WillReturnRows(addRecord(pgxmock.NewRows(columns), 1, domain.WithdrawPending, created))
			},
			total: 11,
			count: 1,
		},
		{
			name:   "Count fails",
			filter: domain.WithdrawFilter{Page: 1, PageSize: 20},
			mockSetup: func() {
				mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM withdraw_records")).
					WillReturnError(errors.New("boom"))
			},
			expectErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.mockSetup()
			records, total, err := repo.List(context.Background(), tt.filter)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.total, total)
			assert.Len(t, records, tt.count)
		})
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRepository_FindByUserID(t *testing.T) {
	repo, mock := NewMock(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM withdraw_records WHERE user_id = $1 ORDER BY id DESC")).
		WithArgs(1).
		WillReturnRows(pgxmock.NewRows(columns))

	records, err := repo.FindByUserID(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.NoError(t, mock.ExpectationsWereMet())
}
