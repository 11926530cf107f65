package booking

import (
	"fmt"
	"time"
)

// Allocation assigns part of a request to one calendar day.
type Allocation struct {
	Date      time.Time `json:"date"`
	FileCount int       `json:"fileCount"`
}

// Plan is the outcome of a successful planning run: the full request spread
// over one or more days in ascending date order. The first allocation is the
// primary record of the split group.
type Plan struct {
	RequestedFiles int
	Allocations    []Allocation
}

// IsSplit reports whether the plan spans more than one day.
func (p Plan) IsSplit() bool {
	return len(p.Allocations) > 1
}

// Planner converts a (requestedFiles, startDate) pair into either an
// allocation plan or a rejection. Planning is pure: the planner only reads
// through the ledger and leaves persistence to the caller.
type Planner struct {
	Ledger      *Ledger
	HorizonDays int              // day budget for the forward search
	Now         func() time.Time // injectable clock; defaults to time.Now
}

// NewPlanner creates a Planner over the given ledger.
func NewPlanner(ledger *Ledger, horizonDays int) *Planner {
	return &Planner{Ledger: ledger, HorizonDays: horizonDays}
}

func (p *Planner) today() time.Time {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return DateOnly(now())
}

// ValidateStartDate applies the submission pre-check. The start date must be
// valid on its own merits — unlike subsequent planning days it is never
// silently advanced. Rules are evaluated in order; the first failure wins.
func (p *Planner) ValidateStartDate(start time.Time) error {
	date := DateOnly(start)
	today := p.today()

	if date.Equal(today) {
		return newDateError(ReasonPastOrPresentDate, date,
			"appointments cannot be booked for today, please select a future date")
	}
	if date.Before(today) {
		return newDateError(ReasonPastOrPresentDate, date,
			"appointment date cannot be in the past")
	}
	if IsWeekend(date) {
		return newDateError(ReasonWeekendDate, date,
			"appointments cannot be booked on weekends")
	}
	name, exists, err := p.Ledger.Store.EventOn(date)
	if err != nil {
		return err
	}
	if exists {
		derr := newDateError(ReasonEventConflict, date,
			fmt.Sprintf("the selected date is blocked by the calendar event %q", name))
		derr.EventName = name
		return derr
	}
	return nil
}

// Plan walks forward from the start date, greedily filling each day's
// remaining capacity until the request is fully placed. Blocked days
// (weekends, event days) and full days are skipped but still consume the day
// budget. First-fit by calendar order; no look-ahead.
func (p *Planner) Plan(requestedFiles int, start time.Time) (Plan, error) {
	if requestedFiles <= 0 {
		return Plan{}, ErrInvalidFileCount
	}

	remaining := requestedFiles
	current := DateOnly(start)
	daysChecked := 0
	var allocations []Allocation

	for remaining > 0 && daysChecked < p.HorizonDays {
		available, err := p.Ledger.AvailableCapacity(current)
		if err != nil {
			return Plan{}, err
		}
		if available > 0 {
			take := remaining
			if available < take {
				take = available
			}
			allocations = append(allocations, Allocation{Date: current, FileCount: take})
			remaining -= take
		}
		current = nextDay(current)
		daysChecked++
	}

	if remaining > 0 {
		return Plan{}, &CapacityError{RequestedFiles: requestedFiles, UnplacedFiles: remaining}
	}
	return Plan{RequestedFiles: requestedFiles, Allocations: allocations}, nil
}

// ValidateAndPlan runs the pre-check and then the planning loop. This is the
// entry point the booking handler uses.
func (p *Planner) ValidateAndPlan(requestedFiles int, start time.Time) (Plan, error) {
	if err := p.ValidateStartDate(start); err != nil {
		return Plan{}, err
	}
	return p.Plan(requestedFiles, start)
}
