package handlers

import (
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-booking-server/internal/booking"
	"school-booking-server/internal/config"
	"school-booking-server/internal/middleware"
	"school-booking-server/internal/models"
	"school-booking-server/internal/utils"
)

const dateLayout = "2006-01-02"

// AppointmentHandler handles appointment related requests.
type AppointmentHandler struct {
	DB  *gorm.DB
	Cfg *config.Config
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, cfg *config.Config) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Cfg: cfg}
}

// newPlanner builds the capacity engine over the given database handle,
// wired with the configured limits. Pass a transaction handle (with
// forUpdate) when the plan will be committed.
func (h *AppointmentHandler) newPlanner(store booking.CapacityStore) *booking.Planner {
	ledger := booking.NewLedger(store, h.Cfg.Booking.DailyFileLimit)
	return booking.NewPlanner(ledger, h.Cfg.Booking.PlanningHorizonDays)
}

// respondPlanError maps capacity-engine errors onto the response envelope.
// Date and capacity rejections are business-rule violations (400); anything
// else is an infrastructure failure.
func respondPlanError(c *gin.Context, err error) {
	var dateErr *booking.DateError
	if errors.As(err, &dateErr) {
		utils.BadRequest(c, dateErr.Error())
		return
	}
	var capErr *booking.CapacityError
	if errors.As(err, &capErr) {
		utils.BadRequest(c, capErr.Error())
		return
	}
	if errors.Is(err, booking.ErrInvalidFileCount) {
		utils.BadRequest(c, err.Error())
		return
	}
	utils.InternalServerError(c, "Failed to plan appointment: "+err.Error())
}

// resolveSchoolName decides which school an appointment belongs to: school
// accounts always book for their own school, admins must name one.
func resolveSchoolName(caller *models.User, requested string) (string, error) {
	if caller.Role == models.RoleSchool {
		return caller.SchoolName, nil
	}
	if requested == "" {
		return "", errors.New("school name is required when an admin books an appointment")
	}
	return requested, nil
}

func (h *AppointmentHandler) currentUser(c *gin.Context) (*models.User, bool) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return nil, false
	}
	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.Unauthorized(c, "User account not found")
		return nil, false
	}
	return &user, true
}

// CreateAppointmentRequest represents the request body for the direct
// (non-splitting) creation path used from the admin dashboard.
type CreateAppointmentRequest struct {
	SchoolName string `json:"schoolName"`
	Date       string `json:"date" binding:"required"`
	FileCount  int    `json:"fileCount" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

// CreateAppointment creates a single-day appointment. The whole request must
// fit the remaining capacity of the chosen day; requests above the
// per-appointment cap or the day's free capacity are rejected rather than
// split.
func (h *AppointmentHandler) CreateAppointment(c *gin.Context) {
	var req CreateAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caller, ok := h.currentUser(c)
	if !ok {
		return
	}

	if req.FileCount > h.Cfg.Booking.MaxFilesPerAppointment {
		utils.BadRequest(c, fmt.Sprintf("An appointment may not exceed %d files", h.Cfg.Booking.MaxFilesPerAppointment))
		return
	}

	schoolName, err := resolveSchoolName(caller, req.SchoolName)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	startDate, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	var created models.Appointment
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		store := booking.NewGormStore(tx).ForUpdate()
		planner := h.newPlanner(store)

		if err := planner.ValidateStartDate(startDate); err != nil {
			return err
		}
		available, err := planner.Ledger.AvailableCapacity(startDate)
		if err != nil {
			return err
		}
		if available < req.FileCount {
			return &booking.CapacityError{
				RequestedFiles: req.FileCount,
				UnplacedFiles:  req.FileCount - available,
			}
		}

		created = models.Appointment{
			SchoolName:      schoolName,
			AppointmentDate: booking.DateOnly(startDate),
			FileCount:       req.FileCount,
			DailyFileCount:  req.FileCount,
			Status:          models.StatusPending,
			Notes:           req.Notes,
			AssignedByID:    caller.ID,
		}
		return tx.Create(&created).Error
	})
	if txErr != nil {
		respondPlanError(c, txErr)
		return
	}

	h.notifyAdmins(models.NotificationAppointmentBooked, "New appointment booked",
		fmt.Sprintf("%s booked %d files for %s", schoolName, created.FileCount,
			created.AppointmentDate.Format(dateLayout)), caller.ID)

	utils.Created(c, "Appointment created successfully", created)
}

// BookAppointmentRequest represents the request body for the self-service
// calendar flow, which may split the request over several days.
type BookAppointmentRequest struct {
	SchoolName string `json:"schoolName"`
	StartDate  string `json:"startDate" binding:"required"`
	FileCount  int    `json:"fileCount" binding:"required,min=1"`
	Notes      string `json:"notes"`
}

// BookAppointmentResponse carries the persisted rows plus the plan summary.
type BookAppointmentResponse struct {
	RequestedFiles int                  `json:"requestedFiles"`
	IsSplit        bool                 `json:"isSplit"`
	TotalSplits    int                  `json:"totalSplits"`
	Allocations    []booking.Allocation `json:"allocations"`
	Appointments   []models.Appointment `json:"appointments"`
}

// BookAppointment runs the splitting flow: validate the start date, plan the
// allocation across days, and persist one appointment row per allocated day.
// Planning and persistence share one transaction with row locks on the
// capacity reads, so concurrent submissions cannot overcommit a day. A
// failed plan persists nothing.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	caller, ok := h.currentUser(c)
	if !ok {
		return
	}

	schoolName, err := resolveSchoolName(caller, req.SchoolName)
	if err != nil {
		utils.BadRequest(c, err.Error())
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		utils.BadRequest(c, "Invalid startDate, expected YYYY-MM-DD")
		return
	}

	var plan booking.Plan
	var rows []models.Appointment
	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		store := booking.NewGormStore(tx).ForUpdate()
		planner := h.newPlanner(store)

		var err error
		plan, err = planner.ValidateAndPlan(req.FileCount, startDate)
		if err != nil {
			return err
		}

		rows, err = booking.Commit(tx, plan, booking.Request{
			SchoolName:   schoolName,
			Notes:        req.Notes,
			AssignedByID: caller.ID,
		})
		return err
	})
	if txErr != nil {
		respondPlanError(c, txErr)
		return
	}

	notifType := models.NotificationAppointmentBooked
	title := "New appointment booked"
	if plan.IsSplit() {
		notifType = models.NotificationAppointmentSplit
		title = "Appointment split across multiple days"
	}
	h.notifyAdmins(notifType, title,
		fmt.Sprintf("%s booked %d files starting %s over %d day(s)",
			schoolName, req.FileCount, rows[0].AppointmentDate.Format(dateLayout), len(rows)), caller.ID)

	utils.Created(c, "Appointment booked successfully", BookAppointmentResponse{
		RequestedFiles: plan.RequestedFiles,
		IsSplit:        plan.IsSplit(),
		TotalSplits:    len(plan.Allocations),
		Allocations:    plan.Allocations,
		Appointments:   rows,
	})
}

// GetAppointments handles fetching appointments for the logged-in user.
// Admins see everything; school accounts see their own school's bookings.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	caller, ok := h.currentUser(c)
	if !ok {
		return
	}

	query := h.DB.Preload("AssignedBy").Order("appointment_date asc")

	var appointments []models.Appointment
	var err error
	if caller.Role == models.RoleAdmin {
		err = query.Find(&appointments).Error
	} else {
		err = query.Where("school_name = ?", caller.SchoolName).Find(&appointments).Error
	}
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
		return
	}

	utils.Success(c, "Appointments fetched successfully", appointments)
}

// GetAppointmentByID handles fetching a single appointment, including its
// split group members.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.Preload("AssignedBy").Preload("SplitChildren").Preload("Documents").
		First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	caller, ok := h.currentUser(c)
	if !ok {
		return
	}
	if caller.Role != models.RoleAdmin && caller.SchoolName != appointment.SchoolName {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appointment)
}

// UpdateAppointmentStatusRequest represents the request body for updating an
// appointment's status.
type UpdateAppointmentStatusRequest struct {
	Status models.AppointmentStatus `json:"status" binding:"required,oneof=complete cancelled"`
	Notes  string                   `json:"notes"` // Optional notes for status change (e.g., cancellation reason)
}

// UpdateAppointmentStatus transitions a pending appointment to complete or
// cancelled. Cancelling the primary record of a split group cancels the
// whole group. Cancelled rows are not deleted and keep holding their
// capacity slot.
func (h *AppointmentHandler) UpdateAppointmentStatus(c *gin.Context) {
	appointmentID := c.Param("id")

	var req UpdateAppointmentStatusRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	caller, ok := h.currentUser(c)
	if !ok {
		return
	}

	// Admins may complete or cancel; schools may only cancel their own
	// pending appointments.
	canUpdate := caller.Role == models.RoleAdmin ||
		(caller.SchoolName == appointment.SchoolName && req.Status == models.StatusCancelled)
	if !canUpdate {
		utils.Forbidden(c, "You are not authorized to perform this status transition.")
		return
	}
	if appointment.Status != models.StatusPending {
		utils.BadRequest(c, "Only pending appointments can change status")
		return
	}

	txErr := h.DB.Transaction(func(tx *gorm.DB) error {
		appointment.Status = req.Status
		if req.Notes != "" {
			appointment.Notes = req.Notes
		}
		if err := tx.Save(&appointment).Error; err != nil {
			return err
		}

		// Cancelling a split primary cancels its children too.
		if req.Status == models.StatusCancelled && appointment.IsSplit && appointment.ParentAppointmentID == nil {
			return tx.Model(&models.Appointment{}).
				Where("parent_appointment_id = ? AND status = ?", appointment.ID, models.StatusPending).
				Update("status", models.StatusCancelled).Error
		}
		return nil
	})
	if txErr != nil {
		utils.InternalServerError(c, "Failed to update appointment status: "+txErr.Error())
		return
	}

	if req.Status == models.StatusCancelled {
		h.notify(appointment.AssignedByID, models.NotificationAppointmentCancelled,
			"Appointment cancelled",
			fmt.Sprintf("The appointment for %s on %s was cancelled",
				appointment.SchoolName, appointment.AppointmentDate.Format(dateLayout)))
	}

	utils.Success(c, "Appointment status updated successfully", appointment)
}

// DeleteAppointment soft-deletes an appointment, releasing its capacity.
func (h *AppointmentHandler) DeleteAppointment(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	caller, ok := h.currentUser(c)
	if !ok {
		return
	}
	if caller.Role != models.RoleAdmin {
		utils.Forbidden(c, "Only admins can delete appointments")
		return
	}

	if err := h.DB.Delete(&appointment).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete appointment: "+err.Error())
		return
	}

	utils.Success(c, "Appointment deleted successfully", nil)
}

// CalendarDay is one day's availability in the booking calendar.
type CalendarDay struct {
	Date      string `json:"date"`
	Used      int    `json:"used"`
	Available int    `json:"available"`
	Blocked   bool   `json:"blocked"`
	EventName string `json:"eventName,omitempty"`
}

// GetCalendar returns the per-day availability map for one month, which the
// booking calendar renders before a school picks a start date.
func (h *AppointmentHandler) GetCalendar(c *gin.Context) {
	year, err := utils.QueryInt(c, "year")
	if err != nil {
		utils.BadRequest(c, "Invalid or missing year")
		return
	}
	month, err := utils.QueryInt(c, "month")
	if err != nil || month < 1 || month > 12 {
		utils.BadRequest(c, "Invalid or missing month")
		return
	}

	store := booking.NewGormStore(h.DB)
	ledger := booking.NewLedger(store, h.Cfg.Booking.DailyFileLimit)

	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	days := make([]CalendarDay, 0, 31)
	for d := first; d.Month() == time.Month(month); d = d.AddDate(0, 0, 1) {
		used, err := ledger.UsedCapacity(d)
		if err != nil {
			utils.InternalServerError(c, "Failed to read capacity: "+err.Error())
			return
		}
		available, err := ledger.AvailableCapacity(d)
		if err != nil {
			utils.InternalServerError(c, "Failed to read capacity: "+err.Error())
			return
		}
		blocked, err := ledger.IsBlocked(d)
		if err != nil {
			utils.InternalServerError(c, "Failed to read calendar events: "+err.Error())
			return
		}
		eventName, _, err := store.EventOn(d)
		if err != nil {
			utils.InternalServerError(c, "Failed to read calendar events: "+err.Error())
			return
		}

		days = append(days, CalendarDay{
			Date:      d.Format(dateLayout),
			Used:      used,
			Available: available,
			Blocked:   blocked,
			EventName: eventName,
		})
	}

	utils.Success(c, "Calendar fetched successfully", days)
}

// notify creates one notification row. Notifications are best-effort and
// never fail the main operation.
func (h *AppointmentHandler) notify(userID string, notifType models.NotificationType, title, body string) {
	notification := models.Notification{
		UserID: userID,
		Type:   notifType,
		Title:  title,
		Body:   body,
	}
	h.DB.Create(&notification)
}

// notifyAdmins notifies every admin account except the actor.
func (h *AppointmentHandler) notifyAdmins(notifType models.NotificationType, title, body, actorID string) {
	var admins []models.User
	if err := h.DB.Where("role = ?", models.RoleAdmin).Find(&admins).Error; err != nil {
		return
	}
	for _, admin := range admins {
		if admin.ID == actorID {
			continue
		}
		h.notify(admin.ID, notifType, title, body)
	}
}
