package booking

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidFileCount is returned when a request asks for zero or a negative
// number of files.
var ErrInvalidFileCount = errors.New("requested file count must be a positive integer")

// DateErrorReason identifies which pre-check rule rejected a start date.
type DateErrorReason string

const (
	ReasonPastOrPresentDate DateErrorReason = "past_or_present_date"
	ReasonWeekendDate       DateErrorReason = "weekend_date"
	ReasonEventConflict     DateErrorReason = "event_conflict"
)

// DateError reports a start date rejected by the pre-check, before any
// capacity math runs. These are business-rule violations and are never
// retried.
type DateError struct {
	Reason    DateErrorReason
	Date      time.Time
	EventName string // set only for ReasonEventConflict
	message   string
}

func (e *DateError) Error() string {
	return e.message
}

func newDateError(reason DateErrorReason, date time.Time, message string) *DateError {
	return &DateError{Reason: reason, Date: date, message: message}
}

// CapacityError reports that the planner could not place the full request
// within the planning horizon. UnplacedFiles is how many files remained
// after every reachable day was tried.
type CapacityError struct {
	RequestedFiles int
	UnplacedFiles  int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf(
		"insufficient capacity: %d of the %d requested files could not be scheduled within the planning horizon",
		e.UnplacedFiles, e.RequestedFiles)
}
