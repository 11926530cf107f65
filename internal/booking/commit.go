package booking

import (
	"gorm.io/gorm"

	"school-booking-server/internal/models"
)

// Request carries the submission details Commit needs besides the plan
// itself.
type Request struct {
	SchoolName   string
	Notes        string
	AssignedByID string
}

// Commit persists one Appointment row per allocation in the plan. The
// primary row is inserted first so the children can reference its generated
// id; the primary's own ParentAppointmentID stays NULL. Callers must run
// Commit inside the same transaction as the capacity reads that produced
// the plan, so a failed insert leaves no partial rows behind.
func Commit(tx *gorm.DB, plan Plan, req Request) ([]models.Appointment, error) {
	total := len(plan.Allocations)
	isSplit := total > 1

	rows := make([]models.Appointment, 0, total)
	var primaryID string

	for i, alloc := range plan.Allocations {
		appt := models.Appointment{
			SchoolName:      req.SchoolName,
			AppointmentDate: alloc.Date,
			FileCount:       plan.RequestedFiles,
			DailyFileCount:  alloc.FileCount,
			Status:          models.StatusPending,
			Notes:           req.Notes,
			IsSplit:         isSplit,
			AssignedByID:    req.AssignedByID,
		}
		if isSplit {
			seq := i + 1
			count := total
			appt.SplitSequence = &seq
			appt.TotalSplits = &count
		}
		if i > 0 {
			parent := primaryID
			appt.ParentAppointmentID = &parent
		}

		if err := tx.Create(&appt).Error; err != nil {
			return nil, err
		}
		if i == 0 {
			primaryID = appt.ID
		}
		rows = append(rows, appt)
	}

	return rows, nil
}
