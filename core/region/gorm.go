package region

import (
	"context"
	"errors"
	"sync"

	"region-sync/core/record"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var errNotConnected = errors.New("no database connection")

// Connector opens a region's database.
type Connector func() (*gorm.DB, error)

// GormStore is a Store backed by one region's database.
//
// A store built with NewLazyGormStore connects on first use and, while it has
// no connection, retries the connector on every call. A region that is down
// at startup therefore rejoins replication as soon as its database answers.
type GormStore struct {
	label   string
	connect Connector

	mu sync.Mutex
	db *gorm.DB
}

// NewGormStore creates a store for the region named label over an open connection.
func NewGormStore(label string, db *gorm.DB) *GormStore {
	return &GormStore{label: label, db: db}
}

// NewLazyGormStore creates a store that opens its connection with connect when needed.
func NewLazyGormStore(label string, connect Connector) *GormStore {
	return &GormStore{label: label, connect: connect}
}

// Label returns the region this store serves.
func (s *GormStore) Label() string {
	return s.label
}

// Connect opens the connection now if the store has none.
func (s *GormStore) Connect() error {
	_, err := s.conn("connect")
	return err
}

// Connected reports whether the store currently holds a connection.
func (s *GormStore) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db != nil
}

// Close releases the connection. A lazy store reconnects on its next call.
func (s *GormStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.db = nil
	return sqlDB.Close()
}

func (s *GormStore) conn(op string) (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db != nil {
		return s.db, nil
	}
	if s.connect == nil {
		return nil, unavailable(s.label, op, errNotConnected)
	}

	db, err := s.connect()
	if err != nil {
		return nil, unavailable(s.label, op, err)
	}
	s.db = db
	return db, nil
}

func (s *GormStore) ListAll(ctx context.Context) ([]record.Record, error) {
	db, err := s.conn("list")
	if err != nil {
		return nil, err
	}

	var rows []record.Record
	if err := db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, unavailable(s.label, "list", err)
	}
	return rows, nil
}

func (s *GormStore) ExistsByID(ctx context.Context, id uuid.UUID) (bool, error) {
	db, err := s.conn("exists")
	if err != nil {
		return false, err
	}

	var count int64
	err = db.WithContext(ctx).Model(&record.Record{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, unavailable(s.label, "exists", err)
	}
	return count > 0, nil
}

func (s *GormStore) Save(ctx context.Context, rec record.Record) (record.Record, error) {
	db, err := s.conn("save")
	if err != nil {
		return record.Record{}, err
	}

	// Upsert on the primary key; every column is overwritten, UpdatedAt included.
	err = db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&rec).Error
	if err != nil {
		return record.Record{}, unavailable(s.label, "save", err)
	}
	return rec, nil
}

func (s *GormStore) FindByID(ctx context.Context, id uuid.UUID) (record.Record, error) {
	db, err := s.conn("find")
	if err != nil {
		return record.Record{}, err
	}

	var rec record.Record
	err = db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return record.Record{}, ErrRecordNotFound
	}
	if err != nil {
		return record.Record{}, unavailable(s.label, "find", err)
	}
	return rec, nil
}

func (s *GormStore) DeleteByID(ctx context.Context, id uuid.UUID) error {
	db, err := s.conn("delete")
	if err != nil {
		return err
	}

	if err := db.WithContext(ctx).Where("id = ?", id).Delete(&record.Record{}).Error; err != nil {
		return unavailable(s.label, "delete", err)
	}
	return nil
}
