// Package store persists activity events in sqlite through gorm. The
// event log is append-only; ids are assigned by the database and are
// monotonically increasing, which is all the query side relies on for
// ordering.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store wraps the database handle. The append path is serialized by a
// mutex so concurrent writers never interleave id assignment; reads
// take no lock and may observe a slightly stale view.
type Store struct {
	db *gorm.DB

	appendMu sync.Mutex
}

// Open opens (creating if needed) the sqlite database at dsn and runs
// migrations. Use ":memory:" for tests.
func Open(dsn string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", dsn, err)
	}

	// sqlite supports a single writer; keep the pool at one connection
	// so gorm never races the file lock.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&Activity{}, &Employee{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Append inserts one event row and fills in its assigned id. This is
// the only write-side critical section in the service.
func (s *Store) Append(ctx context.Context, row *Activity) error {
	s.appendMu.Lock()
	defer s.appendMu.Unlock()

	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("append activity: %w", err)
	}
	return nil
}

// DailySummary sums durations per event type for one employee on the
// given date ("2006-01-02"). Types with no events are absent from the
// map; callers treat absence as zero.
func (s *Store) DailySummary(ctx context.Context, employeeID int64, date string) (map[string]float64, error) {
	var rows []struct {
		EventType string
		Total     float64
	}
	err := s.db.WithContext(ctx).
		Model(&Activity{}).
		Select("event_type, SUM(duration) AS total").
		Where("employee_id = ? AND event_time LIKE ?", employeeID, date+"%").
		Group("event_type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("daily summary: %w", err)
	}

	summary := make(map[string]float64, len(rows))
	for _, r := range rows {
		summary[r.EventType] = r.Total
	}
	return summary, nil
}

// RecentEvents returns up to limit events for one employee, most
// recent first. Ids break ties between events in the same second.
func (s *Store) RecentEvents(ctx context.Context, employeeID int64, limit int) ([]Activity, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var rows []Activity
	err := s.db.WithContext(ctx).
		Where("employee_id = ?", employeeID).
		Order("event_time DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("recent events: %w", err)
	}
	return rows, nil
}

// UpsertEmployee creates or replaces an employee metadata row.
func (s *Store) UpsertEmployee(ctx context.Context, emp *Employee) error {
	if err := s.db.WithContext(ctx).Save(emp).Error; err != nil {
		return fmt.Errorf("upsert employee: %w", err)
	}
	return nil
}

// GetEmployee fetches one employee by id. Returns
// gorm.ErrRecordNotFound when absent.
func (s *Store) GetEmployee(ctx context.Context, id int64) (*Employee, error) {
	var emp Employee
	if err := s.db.WithContext(ctx).First(&emp, id).Error; err != nil {
		return nil, err
	}
	return &emp, nil
}
