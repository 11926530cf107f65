package booking_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-booking-server/internal/booking"
)

const dayKey = "2006-01-02"

// fakeStore is an in-memory CapacityStore for pure planner tests.
type fakeStore struct {
	used        map[string]int    // date -> committed files
	events      map[string]string // date -> event name
	defaultUsed int               // usage reported for dates absent from used
}

func newFakeStore() *fakeStore {
	return &fakeStore{used: map[string]int{}, events: map[string]string{}}
}

func (f *fakeStore) DailyFileSum(date time.Time) (int, error) {
	if n, ok := f.used[date.Format(dayKey)]; ok {
		return n, nil
	}
	return f.defaultUsed, nil
}

func (f *fakeStore) EventOn(date time.Time) (string, bool, error) {
	name, ok := f.events[date.Format(dayKey)]
	return name, ok, nil
}

func date(s string) time.Time {
	t, err := time.Parse(dayKey, s)
	if err != nil {
		panic(err)
	}
	return t
}

// Fixed clock: Thursday 2026-01-15. All test start dates are relative to it.
func testClock() time.Time {
	return date("2026-01-15")
}

func newTestPlanner(store *fakeStore) *booking.Planner {
	ledger := booking.NewLedger(store, 200)
	planner := booking.NewPlanner(ledger, 365)
	planner.Now = testClock
	return planner
}

func TestPlan_ExactFitIsSingleAllocation(t *testing.T) {
	// Requesting exactly one day's capacity on an empty weekday fills that
	// day and nothing else.
	planner := newTestPlanner(newFakeStore())

	plan, err := planner.ValidateAndPlan(200, date("2026-02-03"))
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, date("2026-02-03"), plan.Allocations[0].Date)
	assert.Equal(t, 200, plan.Allocations[0].FileCount)
	assert.False(t, plan.IsSplit())
}

func TestPlan_SplitsAcrossConsecutiveDays(t *testing.T) {
	// Day one has 180 of 200 used; a 50-file request takes the leftover 20
	// and rolls the remaining 30 onto the next business day.
	store := newFakeStore()
	store.used["2026-02-03"] = 180
	planner := newTestPlanner(store)

	plan, err := planner.ValidateAndPlan(50, date("2026-02-03"))
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, booking.Allocation{Date: date("2026-02-03"), FileCount: 20}, plan.Allocations[0])
	assert.Equal(t, booking.Allocation{Date: date("2026-02-04"), FileCount: 30}, plan.Allocations[1])
	assert.True(t, plan.IsSplit())
}

func TestPlan_FullDayRollsToNextOpenDay(t *testing.T) {
	store := newFakeStore()
	store.used["2026-02-03"] = 200
	planner := newTestPlanner(store)

	plan, err := planner.ValidateAndPlan(1, date("2026-02-03"))
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 1)
	assert.Equal(t, date("2026-02-04"), plan.Allocations[0].Date)
}

func TestPlan_SkipsWeekends(t *testing.T) {
	// 2026-02-06 is a Friday. 250 files fill Friday and roll over Saturday
	// and Sunday onto Monday.
	planner := newTestPlanner(newFakeStore())

	plan, err := planner.ValidateAndPlan(250, date("2026-02-06"))
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, booking.Allocation{Date: date("2026-02-06"), FileCount: 200}, plan.Allocations[0])
	assert.Equal(t, booking.Allocation{Date: date("2026-02-09"), FileCount: 50}, plan.Allocations[1])
}

func TestPlan_SkipsEventDays(t *testing.T) {
	// An event on the day after the start date blocks it entirely, even
	// though it has zero prior appointments.
	store := newFakeStore()
	store.used["2026-02-03"] = 180
	store.events["2026-02-04"] = "Staff training"
	planner := newTestPlanner(store)

	plan, err := planner.ValidateAndPlan(50, date("2026-02-03"))
	require.NoError(t, err)

	require.Len(t, plan.Allocations, 2)
	assert.Equal(t, booking.Allocation{Date: date("2026-02-03"), FileCount: 20}, plan.Allocations[0])
	assert.Equal(t, booking.Allocation{Date: date("2026-02-05"), FileCount: 30}, plan.Allocations[1])
}

func TestPlan_ConservesRequestedTotal(t *testing.T) {
	tests := []struct {
		name      string
		requested int
		usedOnDay int
	}{
		{"fits first day", 10, 0},
		{"exactly fills first day", 200, 0},
		{"splits over two days", 350, 0},
		{"splits with partial first day", 50, 180},
		{"spans many days", 1337, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore()
			store.used["2026-02-03"] = tt.usedOnDay
			planner := newTestPlanner(store)

			plan, err := planner.ValidateAndPlan(tt.requested, date("2026-02-03"))
			require.NoError(t, err)

			total := 0
			for _, alloc := range plan.Allocations {
				total += alloc.FileCount
				assert.LessOrEqual(t, alloc.FileCount, 200)
			}
			assert.Equal(t, tt.requested, total)
			assert.Equal(t, tt.requested, plan.RequestedFiles)
		})
	}
}

func TestPlan_AllocationsAreDateOrdered(t *testing.T) {
	planner := newTestPlanner(newFakeStore())

	plan, err := planner.ValidateAndPlan(900, date("2026-02-03"))
	require.NoError(t, err)

	for i := 1; i < len(plan.Allocations); i++ {
		assert.True(t, plan.Allocations[i-1].Date.Before(plan.Allocations[i].Date))
	}
}

func TestPlan_CapacityExhausted(t *testing.T) {
	// Every day in the horizon already holds the full limit.
	store := newFakeStore()
	store.defaultUsed = 200
	planner := newTestPlanner(store)

	_, err := planner.ValidateAndPlan(1000, date("2026-02-03"))

	var capErr *booking.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 1000, capErr.RequestedFiles)
	assert.Equal(t, 1000, capErr.UnplacedFiles)
}

func TestPlan_CapacityExhaustedReportsShortfall(t *testing.T) {
	// Every day full except one: 200 of the 500 files get placed and the
	// shortfall is reported.
	store := newFakeStore()
	store.defaultUsed = 200
	store.used["2026-02-04"] = 0
	planner := newTestPlanner(store)

	_, err := planner.ValidateAndPlan(500, date("2026-02-03"))

	var capErr *booking.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 500, capErr.RequestedFiles)
	assert.Equal(t, 300, capErr.UnplacedFiles)
}

func TestPlan_RejectsNonPositiveFileCount(t *testing.T) {
	planner := newTestPlanner(newFakeStore())

	_, err := planner.Plan(0, date("2026-02-03"))
	assert.ErrorIs(t, err, booking.ErrInvalidFileCount)

	_, err = planner.Plan(-5, date("2026-02-03"))
	assert.ErrorIs(t, err, booking.ErrInvalidFileCount)
}

func TestValidateStartDate(t *testing.T) {
	store := newFakeStore()
	store.events["2026-02-11"] = "Parent conference"
	planner := newTestPlanner(store)

	tests := []struct {
		name       string
		start      time.Time
		wantReason booking.DateErrorReason
	}{
		{"today is rejected", date("2026-01-15"), booking.ReasonPastOrPresentDate},
		{"past date is rejected", date("2026-01-10"), booking.ReasonPastOrPresentDate},
		{"saturday is rejected", date("2026-02-07"), booking.ReasonWeekendDate},
		{"sunday is rejected", date("2026-02-08"), booking.ReasonWeekendDate},
		{"event day is rejected", date("2026-02-11"), booking.ReasonEventConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := planner.ValidateStartDate(tt.start)

			var dateErr *booking.DateError
			require.ErrorAs(t, err, &dateErr)
			assert.Equal(t, tt.wantReason, dateErr.Reason)
		})
	}

	t.Run("valid weekday passes", func(t *testing.T) {
		assert.NoError(t, planner.ValidateStartDate(date("2026-02-03")))
	})

	t.Run("event rejection names the event", func(t *testing.T) {
		err := planner.ValidateStartDate(date("2026-02-11"))

		var dateErr *booking.DateError
		require.ErrorAs(t, err, &dateErr)
		assert.Equal(t, "Parent conference", dateErr.EventName)
		assert.Contains(t, dateErr.Error(), "Parent conference")
	})
}

func TestValidateAndPlan_PrecheckRunsBeforeCapacity(t *testing.T) {
	// Booking for today fails with a date error even though the day is
	// completely open; the planner loop is never reached.
	planner := newTestPlanner(newFakeStore())

	_, err := planner.ValidateAndPlan(10, testClock())

	var dateErr *booking.DateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, booking.ReasonPastOrPresentDate, dateErr.Reason)

	var capErr *booking.CapacityError
	assert.False(t, errors.As(err, &capErr))
}

func TestValidateStartDate_NeverAdvancesTheStartDate(t *testing.T) {
	// A blocked start date is a hard rejection; only subsequent planning
	// days may be silently skipped.
	store := newFakeStore()
	store.events["2026-02-03"] = "Sports day"
	planner := newTestPlanner(store)

	_, err := planner.ValidateAndPlan(10, date("2026-02-03"))

	var dateErr *booking.DateError
	require.ErrorAs(t, err, &dateErr)
	assert.Equal(t, booking.ReasonEventConflict, dateErr.Reason)
}
