package mocks

import (
	"context"

	"region-sync/core/record"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// Store is a mock implementation of region.Store
type Store struct {
	mock.Mock
}

func (m *Store) ListAll(ctx context.Context) ([]record.Record, error) {
	args := m.Called(ctx)
	if rows, ok := args.Get(0).([]record.Record); ok {
		return rows, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Store) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *Store) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	args := m.Called(ctx, rec)
	if saved, ok := args.Get(0).(record.Record); ok {
		return saved, args.Error(1)
	}
	return record.Record{}, args.Error(1)
}

func (m *Store) FindByID(ctx context.Context, id uuid.UUID) (record.Record, error) {
	args := m.Called(ctx, id)
	if rec, ok := args.Get(0).(record.Record); ok {
		return rec, args.Error(1)
	}
	return record.Record{}, args.Error(1)
}

func (m *Store) DeleteByID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
