package region_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"region-sync/core/database"
	"region-sync/core/record"
	"region-sync/core/region"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupSQLiteStore(t *testing.T, label string) *region.GormStore {
	t.Helper()
	db, err := database.Connect(database.Config{
		Driver: database.DriverSQLite,
		Name:   filepath.Join(t.TempDir(), "region.db"),
	})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return region.NewGormStore(label, db)
}

func TestGormStore_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t, region.Dakar)
	assert.Equal(t, region.Dakar, store.Label())

	stamp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := record.New(region.Dakar, stamp, decimal.NewFromInt(100), "rice", stamp)

	_, err := store.Save(ctx, rec)
	require.NoError(t, err)

	exists, err := store.ExistsByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	got, err := store.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "rice", got.Product)
	assert.True(t, decimal.NewFromInt(100).Equal(got.Amount))
	assert.True(t, stamp.Equal(got.UpdatedAt), "UpdatedAt must be persisted as given")
	assert.False(t, got.Deleted)
}

func TestGormStore_SaveUpserts(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t, region.Thies)

	stamp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := record.New(region.Thies, stamp, decimal.NewFromInt(100), "rice", stamp)
	_, err := store.Save(ctx, rec)
	require.NoError(t, err)

	rec.Amount = decimal.NewFromInt(150)
	rec.MarkDeleted(stamp.Add(5 * time.Minute))
	_, err = store.Save(ctx, rec)
	require.NoError(t, err)

	rows, err := store.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1, "tombstones are listed")

	got := rows[0]
	assert.True(t, decimal.NewFromInt(150).Equal(got.Amount))
	assert.True(t, got.Deleted)
	require.NotNil(t, got.DeletedAt)
	assert.True(t, stamp.Add(5*time.Minute).Equal(*got.DeletedAt))
	assert.True(t, stamp.Add(5*time.Minute).Equal(got.UpdatedAt))
}

func TestGormStore_NotFoundAndDelete(t *testing.T) {
	ctx := context.Background()
	store := setupSQLiteStore(t, region.SaintLouis)

	_, err := store.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, region.ErrRecordNotFound)

	stamp := time.Now().UTC()
	rec := record.New(region.SaintLouis, stamp, decimal.NewFromInt(1), "fish", stamp)
	_, err = store.Save(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, store.DeleteByID(ctx, rec.ID))

	exists, err := store.ExistsByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestGormStore_Unavailable(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT (.+) FROM `sales`").WillReturnError(assert.AnError)

	store := region.NewGormStore(region.Dakar, db)
	rows, err := store.ListAll(context.Background())
	assert.Nil(t, rows)
	assert.ErrorIs(t, err, region.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), region.Dakar)
}

func TestGormStore_LazyConnectRetries(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "region.db")

	attempts := 0
	down := true
	store := region.NewLazyGormStore(region.Thies, func() (*gorm.DB, error) {
		attempts++
		if down {
			return nil, errors.New("connection refused")
		}
		db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: path})
		if err != nil {
			return nil, err
		}
		return db, database.Migrate(db)
	})
	defer store.Close()

	_, err := store.ListAll(ctx)
	assert.ErrorIs(t, err, region.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), "connection refused")

	_, err = store.ExistsByID(ctx, uuid.New())
	assert.ErrorIs(t, err, region.ErrStoreUnavailable)
	assert.Equal(t, 2, attempts, "every call retries while disconnected")

	down = false
	stamp := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := record.New(region.Thies, stamp, decimal.NewFromInt(10), "millet", stamp)
	_, err = store.Save(ctx, rec)
	require.NoError(t, err)

	rows, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 3, attempts, "an open connection is reused")
}

func TestGormStore_TimeoutKeepsCause(t *testing.T) {
	store := setupSQLiteStore(t, region.Dakar)

	ctx, cancel := context.WithTimeout(context.Background(), 0)
	defer cancel()

	_, err := store.ListAll(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, region.ErrStoreUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
