package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"or-schedule-backend/internal/model"
)

// Store defines the interface for all database operations. Writes that
// replace the whole case set are transactional so a failed compaction or
// optimization never leaves a partially rewritten schedule.
type Store interface {
	Initialize(ctx context.Context, cases []model.Case, surgeons []model.Surgeon, rooms []model.Room) error
	ListCases(ctx context.Context) ([]model.Case, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	ListSurgeons(ctx context.Context) ([]model.Surgeon, error)
	InsertCase(ctx context.Context, c model.Case) error
	InsertCases(ctx context.Context, cases []model.Case) error
	UpdateCase(ctx context.Context, c model.Case) error
	ReplaceAllCases(ctx context.Context, cases []model.Case) error
	DB() *gorm.DB
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying connection for handlers that manage reference
// data directly.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// Initialize seeds each table with the provided defaults, but only when the
// table is empty, so restarting the service never clobbers a working
// schedule.
func (s *gormStore) Initialize(ctx context.Context, cases []model.Case, surgeons []model.Surgeon, rooms []model.Room) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := seedIfEmpty(tx, &model.Room{}, rooms); err != nil {
			return fmt.Errorf("failed to seed rooms: %w", err)
		}
		if err := seedIfEmpty(tx, &model.Surgeon{}, surgeons); err != nil {
			return fmt.Errorf("failed to seed surgeons: %w", err)
		}
		if err := seedIfEmpty(tx, &model.Case{}, cases); err != nil {
			return fmt.Errorf("failed to seed cases: %w", err)
		}
		return nil
	})
}

func seedIfEmpty[T any](tx *gorm.DB, probe *T, defaults []T) error {
	var count int64
	if err := tx.Model(probe).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 || len(defaults) == 0 {
		return nil
	}
	return tx.Create(&defaults).Error
}

// ListCases returns all cases ordered by start time, ties broken by id.
func (s *gormStore) ListCases(ctx context.Context) ([]model.Case, error) {
	var cases []model.Case
	if err := s.db.WithContext(ctx).Order("start_time, id").Find(&cases).Error; err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return cases, nil
}

// ListRooms returns the canonical room list ordered by id.
func (s *gormStore) ListRooms(ctx context.Context) ([]model.Room, error) {
	var rooms []model.Room
	if err := s.db.WithContext(ctx).Order("id").Find(&rooms).Error; err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	return rooms, nil
}

// ListSurgeons returns the surgeon reference list ordered by id.
func (s *gormStore) ListSurgeons(ctx context.Context) ([]model.Surgeon, error) {
	var surgeons []model.Surgeon
	if err := s.db.WithContext(ctx).Order("id").Find(&surgeons).Error; err != nil {
		return nil, fmt.Errorf("failed to list surgeons: %w", err)
	}
	return surgeons, nil
}

// InsertCase stores a newly enriched case.
func (s *gormStore) InsertCase(ctx context.Context, c model.Case) error {
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return fmt.Errorf("failed to insert case %s: %w", c.ID, err)
	}
	return nil
}

// InsertCases stores a batch of cases in one transaction; either all of them
// land or none do.
func (s *gormStore) InsertCases(ctx context.Context, cases []model.Case) error {
	if len(cases) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&cases).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert %d cases: %w", len(cases), err)
	}
	return nil
}

// UpdateCase saves the full row for a moved or edited case.
func (s *gormStore) UpdateCase(ctx context.Context, c model.Case) error {
	res := s.db.WithContext(ctx).Model(&model.Case{ID: c.ID}).Select("*").Omit("created_at").Updates(&c)
	if res.Error != nil {
		return fmt.Errorf("failed to update case %s: %w", c.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("case %s: %w", c.ID, gorm.ErrRecordNotFound)
	}
	return nil
}

// ReplaceAllCases atomically swaps the whole case set, used after compaction
// and oracle optimization.
func (s *gormStore) ReplaceAllCases(ctx context.Context, cases []model.Case) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.Case{}).Error; err != nil {
			return err
		}
		if len(cases) == 0 {
			return nil
		}
		return tx.Create(&cases).Error
	})
	if err != nil {
		return fmt.Errorf("failed to replace case set: %w", err)
	}
	return nil
}
