package booking

import (
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"school-booking-server/internal/models"
)

// GormStore is the database-backed CapacityStore. gorm's default scope
// already excludes soft-deleted appointments; no status filter is applied,
// so cancelled appointments keep holding their capacity slot.
type GormStore struct {
	db        *gorm.DB
	forUpdate bool
}

// NewGormStore creates a CapacityStore over the given database handle. Pass
// a transaction handle to scope the reads to that transaction.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// ForUpdate returns a copy of the store whose capacity reads take
// SELECT ... FOR UPDATE row locks. Used inside the booking transaction so
// two concurrent submissions for the same dates serialize instead of both
// seeing the same free capacity.
func (s *GormStore) ForUpdate() *GormStore {
	return &GormStore{db: s.db, forUpdate: true}
}

// DailyFileSum sums dailyFileCount over all appointments on the date.
func (s *GormStore) DailyFileSum(date time.Time) (int, error) {
	query := s.db.Model(&models.Appointment{}).
		Where("appointment_date = ?", DateOnly(date))
	if s.forUpdate {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var sum int64
	if err := query.Select("COALESCE(SUM(daily_file_count), 0)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	return int(sum), nil
}

// EventOn looks up a calendar event on the date.
func (s *GormStore) EventOn(date time.Time) (string, bool, error) {
	var event models.CalendarEvent
	err := s.db.Where("event_date = ?", DateOnly(date)).First(&event).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return event.Name, true, nil
}
