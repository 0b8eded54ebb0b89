package record_test

import (
	"encoding/json"
	"testing"
	"time"

	"region-sync/core/record"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	rec := record.New("Dakar", day, decimal.NewFromInt(100), "rice", now)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.Equal(t, "Dakar", rec.Region)
	assert.Equal(t, now, rec.UpdatedAt)
	assert.True(t, rec.IsActive())
	assert.Nil(t, rec.DeletedAt)
	assert.True(t, day.Equal(rec.Date()))

	other := record.New("Dakar", day, decimal.NewFromInt(100), "rice", now)
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestMarkDeleted(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	deleted := created.Add(time.Hour)

	rec := record.New("Thies", created, decimal.NewFromInt(5), "millet", created)
	rec.MarkDeleted(deleted)

	assert.True(t, rec.Deleted)
	assert.False(t, rec.IsActive())
	require.NotNil(t, rec.DeletedAt)
	assert.Equal(t, deleted, *rec.DeletedAt)
	assert.Equal(t, deleted, rec.UpdatedAt)
}

func TestCloneFor(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := record.New("Dakar", now, decimal.RequireFromString("150.50"), "rice", now)
	rec.MarkDeleted(now.Add(time.Minute))

	clone := rec.CloneFor("Saint-Louis")

	assert.Equal(t, "Saint-Louis", clone.Region)
	assert.Equal(t, rec.ID, clone.ID)
	assert.Equal(t, rec.UpdatedAt, clone.UpdatedAt)
	assert.True(t, rec.Amount.Equal(clone.Amount))
	assert.True(t, clone.Deleted)
	require.NotNil(t, clone.DeletedAt)
	assert.Equal(t, *rec.DeletedAt, *clone.DeletedAt)

	// The clone must not share the tombstone timestamp with the source.
	*clone.DeletedAt = now
	assert.NotEqual(t, *rec.DeletedAt, *clone.DeletedAt)
	assert.Equal(t, "Dakar", rec.Region)
}

func TestNewerThan(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	older := record.Record{UpdatedAt: now}
	newer := record.Record{UpdatedAt: now.Add(time.Second)}

	assert.True(t, newer.NewerThan(older))
	assert.False(t, older.NewerThan(newer))
	assert.False(t, older.NewerThan(older))
}

func TestJSONShape(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	rec := record.New("Dakar", now, decimal.NewFromInt(100), "rice", now)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"id", "business_date", "amount", "product", "region", "updated_at", "deleted", "deleted_at"} {
		assert.Contains(t, fields, key)
	}
}
