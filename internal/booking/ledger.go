package booking

import (
	"time"
)

// CapacityStore is the read-side persistence interface the capacity engine
// depends on. The gorm implementation lives in store.go; tests substitute an
// in-memory fake.
type CapacityStore interface {
	// DailyFileSum returns the sum of dailyFileCount over all appointments
	// on the given date, excluding soft-deleted rows.
	DailyFileSum(date time.Time) (int, error)
	// EventOn reports whether a calendar event exists on the given date,
	// returning its name when one does.
	EventOn(date time.Time) (string, bool, error)
}

// Ledger answers capacity questions for single candidate dates. It is a pure
// query layer: nothing here writes, and queries that find nothing return
// zero, never an error.
type Ledger struct {
	Store      CapacityStore
	DailyLimit int // max files committed to a single calendar day
}

// NewLedger creates a Ledger with the given daily file limit.
func NewLedger(store CapacityStore, dailyLimit int) *Ledger {
	return &Ledger{Store: store, DailyLimit: dailyLimit}
}

// IsBlocked reports whether the date accepts no appointments at all: a
// weekend, or a day with a calendar event.
func (l *Ledger) IsBlocked(date time.Time) (bool, error) {
	date = DateOnly(date)
	if IsWeekend(date) {
		return true, nil
	}
	_, exists, err := l.Store.EventOn(date)
	if err != nil {
		return false, err
	}
	return exists, nil
}

// UsedCapacity returns how many files are already committed to the date.
// Cancelled appointments still count toward usage; only soft-deleted rows
// are excluded.
func (l *Ledger) UsedCapacity(date time.Time) (int, error) {
	return l.Store.DailyFileSum(DateOnly(date))
}

// AvailableCapacity returns how many more files the date can absorb: zero
// for blocked days, otherwise the daily limit minus current usage, floored
// at zero.
func (l *Ledger) AvailableCapacity(date time.Time) (int, error) {
	blocked, err := l.IsBlocked(date)
	if err != nil {
		return 0, err
	}
	if blocked {
		return 0, nil
	}
	used, err := l.UsedCapacity(date)
	if err != nil {
		return 0, err
	}
	if used >= l.DailyLimit {
		return 0, nil
	}
	return l.DailyLimit - used, nil
}
