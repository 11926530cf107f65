package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"school-booking-server/internal/booking"
	"school-booking-server/internal/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A pooled second connection would see a different in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, models.Migrate(db))
	return db
}

func seedAppointment(t *testing.T, db *gorm.DB, day string, dailyCount int, status models.AppointmentStatus) *models.Appointment {
	t.Helper()
	appt := models.Appointment{
		SchoolName:      "Riverside Primary",
		AppointmentDate: date(day),
		FileCount:       dailyCount,
		DailyFileCount:  dailyCount,
		Status:          status,
	}
	require.NoError(t, db.Create(&appt).Error)
	return &appt
}

func TestGormStore_DailyFileSum(t *testing.T) {
	db := newTestDB(t)
	store := booking.NewGormStore(db)

	seedAppointment(t, db, "2026-02-03", 120, models.StatusPending)
	seedAppointment(t, db, "2026-02-03", 60, models.StatusComplete)
	seedAppointment(t, db, "2026-02-04", 40, models.StatusPending)

	sum, err := store.DailyFileSum(date("2026-02-03"))
	require.NoError(t, err)
	assert.Equal(t, 180, sum)

	sum, err = store.DailyFileSum(date("2026-02-05"))
	require.NoError(t, err)
	assert.Zero(t, sum)
}

func TestGormStore_DailyFileSumExcludesSoftDeleted(t *testing.T) {
	db := newTestDB(t)
	store := booking.NewGormStore(db)

	seedAppointment(t, db, "2026-02-03", 120, models.StatusPending)
	deleted := seedAppointment(t, db, "2026-02-03", 60, models.StatusPending)
	require.NoError(t, db.Delete(deleted).Error)

	sum, err := store.DailyFileSum(date("2026-02-03"))
	require.NoError(t, err)
	assert.Equal(t, 120, sum)
}

// Cancelled appointments keep holding their capacity slot. This pins the
// current behavior: releasing the slot on cancellation would be a product
// decision, not a porting detail.
func TestGormStore_DailyFileSumIncludesCancelled(t *testing.T) {
	db := newTestDB(t)
	store := booking.NewGormStore(db)

	seedAppointment(t, db, "2026-02-03", 120, models.StatusPending)
	seedAppointment(t, db, "2026-02-03", 50, models.StatusCancelled)

	sum, err := store.DailyFileSum(date("2026-02-03"))
	require.NoError(t, err)
	assert.Equal(t, 170, sum)
}

func TestGormStore_EventOn(t *testing.T) {
	db := newTestDB(t)
	store := booking.NewGormStore(db)

	event := models.CalendarEvent{EventDate: date("2026-02-10"), Name: "Exam day"}
	require.NoError(t, db.Create(&event).Error)

	name, exists, err := store.EventOn(date("2026-02-10"))
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, "Exam day", name)

	_, exists, err = store.EventOn(date("2026-02-11"))
	require.NoError(t, err)
	assert.False(t, exists)
}
