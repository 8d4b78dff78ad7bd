package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/namidia/namidia/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "postgres"), mock
}

func TestConfirmationRepository_FindConfirmation_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConfirmationRepository(db)

	mock.ExpectQuery("FROM confirmations").
		WithArgs("event-0000001", "Ana").
		WillReturnError(sql.ErrNoRows)

	got, err := repo.FindConfirmation(context.Background(), "event-0000001", "Ana")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConfirmationRepository_FindConfirmation_Found(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConfirmationRepository(db)

	id := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "event_id", "user_name", "user_email", "user_phone", "created_at"}).
		AddRow(id.String(), "event-0000001", "Ana", "ana@example.com", nil, time.Now())
	mock.ExpectQuery("FROM confirmations").WillReturnRows(rows)

	got, err := repo.FindConfirmation(context.Background(), "event-0000001", "Ana")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, id, got.ID)
	require.NotNil(t, got.UserEmail)
	assert.Equal(t, "ana@example.com", *got.UserEmail)
	assert.Nil(t, got.UserPhone)
}

func TestConfirmationRepository_CreateConfirmation_UniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConfirmationRepository(db)

	mock.ExpectExec("INSERT INTO confirmations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: confirmationUniqueConstraint})

	err := repo.CreateConfirmation(context.Background(), &model.Confirmation{
		ID: uuid.New(), EventID: "event-0000001", UserName: "Ana",
	})
	assert.ErrorIs(t, err, ErrConfirmationExists)
}

func TestCouponRepository_CreateCoupon(t *testing.T) {
	tests := []struct {
		name      string
		dbErr     error
		wantTaken bool
	}{
		{name: "code clash", dbErr: &pq.Error{Code: "23505", Constraint: couponCodeConstraint}, wantTaken: true},
		{name: "other unique constraint", dbErr: &pq.Error{Code: "23505", Constraint: "coupons_pkey"}},
		{name: "foreign key", dbErr: &pq.Error{Code: "23503", Message: "violates foreign key"}},
		{name: "connection", dbErr: errors.New("connection reset by peer")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			repo := NewCouponRepository(db)

			mock.ExpectExec("INSERT INTO coupons").WillReturnError(tt.dbErr)

			err := repo.CreateCoupon(context.Background(), &model.Coupon{ID: uuid.New(), Code: "NAMIDIA-ABC123"})
			require.Error(t, err)
			assert.Equal(t, tt.wantTaken, errors.Is(err, ErrCouponCodeTaken))
			if !tt.wantTaken {
				assert.Same(t, tt.dbErr, err, "store error is returned as is")
			}
		})
	}
}

func TestCouponRepository_CreateCoupon_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCouponRepository(db)

	c := &model.Coupon{ID: uuid.New(), Code: "NAMIDIA-ABC123", EventID: "event-0000001", ConfirmationID: uuid.New(), DiscountPercent: 10}
	mock.ExpectExec("INSERT INTO coupons").
		WithArgs(sqlmock.AnyArg(), "NAMIDIA-ABC123", "event-0000001", sqlmock.AnyArg(), 10, false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.CreateCoupon(context.Background(), c))
	assert.False(t, c.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func couponRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "code", "event_id", "confirmation_id", "discount_percent", "used", "used_at", "created_at"})
}

func TestCouponRepository_MarkCouponAsUsed(t *testing.T) {
	t.Run("redeemed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		now := time.Now()
		mock.ExpectQuery("UPDATE coupons").
			WillReturnRows(couponRows().AddRow(uuid.NewString(), "NAMIDIA-ABC123", "event-0000001", uuid.NewString(), 10, true, now, now))

		got, err := repo.MarkCouponAsUsed(context.Background(), "NAMIDIA-ABC123")
		require.NoError(t, err)
		assert.True(t, got.Used)
		require.NotNil(t, got.UsedAt)
	})

	t.Run("already used", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		now := time.Now()
		mock.ExpectQuery("UPDATE coupons").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("FROM coupons WHERE code").
			WillReturnRows(couponRows().AddRow(uuid.NewString(), "NAMIDIA-ABC123", "event-0000001", uuid.NewString(), 10, true, now, now))

		_, err := repo.MarkCouponAsUsed(context.Background(), "NAMIDIA-ABC123")
		assert.ErrorIs(t, err, model.ErrCouponAlreadyUsed)
	})

	t.Run("unknown code", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewCouponRepository(db)

		mock.ExpectQuery("UPDATE coupons").WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery("FROM coupons WHERE code").WillReturnError(sql.ErrNoRows)

		_, err := repo.MarkCouponAsUsed(context.Background(), "NAMIDIA-NOPE00")
		assert.ErrorIs(t, err, model.ErrCouponNotFound)
	})
}

func TestConfirmationRepository_GetEventStats(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewConfirmationRepository(db)

	mock.ExpectQuery("SELECT").
		WithArgs("event-0000001").
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "confirmations", "coupons_issued", "coupons_used"}).
			AddRow("event-0000001", 12, 11, 4))

	stats, err := repo.GetEventStats(context.Background(), "event-0000001")
	require.NoError(t, err)
	assert.Equal(t, int64(12), stats.Confirmations)
	assert.Equal(t, int64(11), stats.CouponsIssued)
	assert.Equal(t, int64(4), stats.CouponsUsed)
}

func TestProductRepository_GetStock(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("FROM products").
		WillReturnRows(sqlmock.NewRows([]string{"id", "stock"}).AddRow("p1", 4).AddRow("p2", 0))

	stock, err := repo.GetStock(context.Background(), []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"p1": 4, "p2": 0}, stock)
}

func TestProductRepository_GetStock_NoIDs(t *testing.T) {
	db, _ := newMockDB(t)
	repo := NewProductRepository(db)

	stock, err := repo.GetStock(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, stock)
}

func TestProductRepository_GetProduct_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewProductRepository(db)

	mock.ExpectQuery("FROM products").WithArgs("ghost").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetProduct(context.Background(), "ghost")
	assert.ErrorIs(t, err, model.ErrProductNotFound)
}

func newMiniredisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestCartRepository_Key(t *testing.T) {
	_, client := newMiniredisClient(t)

	repo := NewCartRepository(client, "namidia:cart:", time.Hour)
	assert.Equal(t, "namidia:cart:abc", repo.key("abc"))
}

func TestCartRepository_LoadSave(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewCartRepository(client, "namidia:cart:", time.Hour)
	ctx := context.Background()
	session := uuid.NewString()

	got, err := repo.Load(ctx, session)
	require.NoError(t, err, "missing key is not an error")
	assert.Nil(t, got)

	blob := []byte(`{"items":[{"product_id":"p1","quantity":2}]}`)
	require.NoError(t, repo.Save(ctx, session, blob))

	got, err = repo.Load(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, blob, got)
	assert.Equal(t, time.Hour, mr.TTL("namidia:cart:"+session))

	// Expired sessions read as empty carts
	mr.FastForward(time.Hour + time.Second)
	got, err = repo.Load(ctx, session)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCartRepository_ZeroTTLKeepsBlob(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewCartRepository(client, "namidia:cart:", 0)
	session := uuid.NewString()

	require.NoError(t, repo.Save(context.Background(), session, []byte("{}")))
	assert.Zero(t, mr.TTL("namidia:cart:"+session))
}

func TestCartRepository_StoreUnavailable(t *testing.T) {
	mr, client := newMiniredisClient(t)
	repo := NewCartRepository(client, "namidia:cart:", time.Hour)
	mr.Close()

	_, err := repo.Load(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load cart")

	err = repo.Save(context.Background(), uuid.NewString(), []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to save cart")
}
