package booking_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-booking-server/internal/booking"
	"school-booking-server/internal/models"
)

func TestCommit_SingleAllocationHasNoSplitMetadata(t *testing.T) {
	db := newTestDB(t)

	plan := booking.Plan{
		RequestedFiles: 40,
		Allocations:    []booking.Allocation{{Date: date("2026-02-03"), FileCount: 40}},
	}

	rows, err := booking.Commit(db, plan, booking.Request{
		SchoolName:   "Riverside Primary",
		AssignedByID: "admin-1",
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	appt := rows[0]
	assert.False(t, appt.IsSplit)
	assert.Nil(t, appt.SplitSequence)
	assert.Nil(t, appt.TotalSplits)
	assert.Nil(t, appt.ParentAppointmentID)
	assert.Equal(t, 40, appt.FileCount)
	assert.Equal(t, 40, appt.DailyFileCount)
	assert.Equal(t, models.StatusPending, appt.Status)
}

func TestCommit_SplitGroupLinksChildrenToPrimary(t *testing.T) {
	db := newTestDB(t)

	plan := booking.Plan{
		RequestedFiles: 450,
		Allocations: []booking.Allocation{
			{Date: date("2026-02-03"), FileCount: 200},
			{Date: date("2026-02-04"), FileCount: 200},
			{Date: date("2026-02-05"), FileCount: 50},
		},
	}

	rows, err := booking.Commit(db, plan, booking.Request{
		SchoolName:   "Hillcrest Secondary",
		AssignedByID: "school-7",
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	primary := rows[0]
	assert.True(t, primary.IsSplit)
	assert.Nil(t, primary.ParentAppointmentID, "the primary row owns the group and references no parent")
	require.NotNil(t, primary.SplitSequence)
	assert.Equal(t, 1, *primary.SplitSequence)

	for i, row := range rows {
		assert.True(t, row.IsSplit)
		require.NotNil(t, row.SplitSequence)
		assert.Equal(t, i+1, *row.SplitSequence)
		require.NotNil(t, row.TotalSplits)
		assert.Equal(t, 3, *row.TotalSplits)
		// Every row records the original request total alongside its own
		// daily share.
		assert.Equal(t, 450, row.FileCount)
		if i > 0 {
			require.NotNil(t, row.ParentAppointmentID)
			assert.Equal(t, primary.ID, *row.ParentAppointmentID)
		}
	}

	var persisted []models.Appointment
	require.NoError(t, db.Order("appointment_date asc").Find(&persisted).Error)
	require.Len(t, persisted, 3)
}

// End-to-end walk through the documented example: a day pre-loaded with 180
// files absorbs 20 of a 50-file request and the remaining 30 land on the
// next weekday.
func TestBookingFlow_EndToEnd(t *testing.T) {
	db := newTestDB(t)
	seedAppointment(t, db, "2026-02-03", 180, models.StatusPending)

	store := booking.NewGormStore(db)
	ledger := booking.NewLedger(store, 200)
	planner := booking.NewPlanner(ledger, 365)
	planner.Now = func() time.Time { return date("2026-01-15") }

	plan, err := planner.ValidateAndPlan(50, date("2026-02-03"))
	require.NoError(t, err)
	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, booking.Allocation{Date: date("2026-02-03"), FileCount: 20}, plan.Allocations[0])
	assert.Equal(t, booking.Allocation{Date: date("2026-02-04"), FileCount: 30}, plan.Allocations[1])

	rows, err := booking.Commit(db, plan, booking.Request{
		SchoolName:   "Riverside Primary",
		AssignedByID: "school-3",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.True(t, rows[0].IsSplit)
	require.NotNil(t, rows[0].TotalSplits)
	assert.Equal(t, 2, *rows[0].TotalSplits)

	// The capacity invariant holds after commit: neither day exceeds the
	// daily limit.
	for _, day := range []string{"2026-02-03", "2026-02-04"} {
		used, err := ledger.UsedCapacity(date(day))
		require.NoError(t, err)
		assert.LessOrEqual(t, used, 200)
	}
	used, err := ledger.UsedCapacity(date("2026-02-03"))
	require.NoError(t, err)
	assert.Equal(t, 200, used)
}

func TestBookingFlow_FailedPlanPersistsNothing(t *testing.T) {
	db := newTestDB(t)
	seedAppointment(t, db, "2026-02-03", 180, models.StatusPending)

	store := booking.NewGormStore(db)
	ledger := booking.NewLedger(store, 200)
	planner := booking.NewPlanner(ledger, 3) // tiny horizon forces exhaustion
	planner.Now = func() time.Time { return date("2026-01-15") }

	_, err := planner.ValidateAndPlan(5000, date("2026-02-03"))
	var capErr *booking.CapacityError
	require.ErrorAs(t, err, &capErr)

	var count int64
	require.NoError(t, db.Model(&models.Appointment{}).Count(&count).Error)
	assert.Equal(t, int64(1), count, "only the pre-seeded appointment remains")
}
