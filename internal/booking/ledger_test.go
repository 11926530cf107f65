package booking_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"school-booking-server/internal/booking"
)

func TestLedger_IsBlocked(t *testing.T) {
	store := newFakeStore()
	store.events["2026-02-03"] = "Open house"
	ledger := booking.NewLedger(store, 200)

	tests := []struct {
		name string
		day  string
		want bool
	}{
		{"saturday", "2026-02-07", true},
		{"sunday", "2026-02-08", true},
		{"event day", "2026-02-03", true},
		{"plain weekday", "2026-02-04", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blocked, err := ledger.IsBlocked(date(tt.day))
			require.NoError(t, err)
			assert.Equal(t, tt.want, blocked)
		})
	}
}

func TestLedger_UsedCapacityDefaultsToZero(t *testing.T) {
	ledger := booking.NewLedger(newFakeStore(), 200)

	used, err := ledger.UsedCapacity(date("2026-02-03"))
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestLedger_AvailableCapacity(t *testing.T) {
	store := newFakeStore()
	store.used["2026-02-03"] = 180
	store.used["2026-02-04"] = 200
	store.used["2026-02-05"] = 250 // overcommitted legacy data must clamp, not underflow
	store.events["2026-02-10"] = "Exam day"
	ledger := booking.NewLedger(store, 200)

	tests := []struct {
		name string
		day  string
		want int
	}{
		{"empty weekday has full limit", "2026-02-02", 200},
		{"partially used day", "2026-02-03", 20},
		{"full day", "2026-02-04", 0},
		{"overcommitted day clamps to zero", "2026-02-05", 0},
		{"weekend has zero regardless of usage", "2026-02-07", 0},
		{"event day has zero regardless of usage", "2026-02-10", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			available, err := ledger.AvailableCapacity(date(tt.day))
			require.NoError(t, err)
			assert.Equal(t, tt.want, available)
		})
	}
}
