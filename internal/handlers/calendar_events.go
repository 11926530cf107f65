package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-booking-server/internal/booking"
	"school-booking-server/internal/models"
	"school-booking-server/internal/utils"
)

// CalendarEventHandler handles calendar event CRUD. Events block their day
// for booking, so they are admin-only to write.
type CalendarEventHandler struct {
	DB *gorm.DB
}

// NewCalendarEventHandler creates a new CalendarEventHandler.
func NewCalendarEventHandler(db *gorm.DB) *CalendarEventHandler {
	return &CalendarEventHandler{DB: db}
}

// CreateCalendarEventRequest represents the request body for creating an event.
type CreateCalendarEventRequest struct {
	Date        string `json:"date" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// CreateCalendarEvent creates a blocking event on a calendar day.
func (h *CalendarEventHandler) CreateCalendarEvent(c *gin.Context) {
	var req CreateCalendarEventRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	eventDate, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.BadRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}

	// One blocking event per day is enough; reject duplicates so event
	// names stay unambiguous in rejection messages.
	var existing models.CalendarEvent
	if err := h.DB.Where("event_date = ?", booking.DateOnly(eventDate)).First(&existing).Error; err == nil {
		utils.BadRequest(c, "A calendar event already exists on this date: "+existing.Name)
		return
	} else if err != gorm.ErrRecordNotFound {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}

	event := models.CalendarEvent{
		EventDate:   booking.DateOnly(eventDate),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.DB.Create(&event).Error; err != nil {
		utils.InternalServerError(c, "Failed to create calendar event: "+err.Error())
		return
	}

	utils.Created(c, "Calendar event created successfully", event)
}

// GetCalendarEvents lists events, optionally filtered to one month via
// ?year=&month=.
func (h *CalendarEventHandler) GetCalendarEvents(c *gin.Context) {
	query := h.DB.Order("event_date asc")

	if c.Query("year") != "" {
		year, err := utils.QueryInt(c, "year")
		if err != nil {
			utils.BadRequest(c, "Invalid year")
			return
		}
		month, err := utils.QueryInt(c, "month")
		if err != nil || month < 1 || month > 12 {
			utils.BadRequest(c, "Invalid or missing month")
			return
		}
		first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
		query = query.Where("event_date >= ? AND event_date < ?", first, first.AddDate(0, 1, 0))
	}

	var events []models.CalendarEvent
	if err := query.Find(&events).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch calendar events: "+err.Error())
		return
	}

	utils.Success(c, "Calendar events fetched successfully", events)
}

// GetCalendarEventByID fetches a single event.
func (h *CalendarEventHandler) GetCalendarEventByID(c *gin.Context) {
	var event models.CalendarEvent
	if err := h.DB.First(&event, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Calendar event not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}
	utils.Success(c, "Calendar event fetched successfully", event)
}

// UpdateCalendarEventRequest represents the request body for updating an event.
type UpdateCalendarEventRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateCalendarEvent updates an event's name or description. The date is
// immutable; moving an event means deleting it and creating a new one, so
// already-planned appointments stay consistent with what was blocked.
func (h *CalendarEventHandler) UpdateCalendarEvent(c *gin.Context) {
	var req UpdateCalendarEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Invalid request payload: "+err.Error())
		return
	}

	var event models.CalendarEvent
	if err := h.DB.First(&event, "id = ?", c.Param("id")).Error; err != nil {
		utils.NotFound(c, "Calendar event not found")
		return
	}

	if req.Name != "" {
		event.Name = req.Name
	}
	if req.Description != "" {
		event.Description = req.Description
	}

	if err := h.DB.Save(&event).Error; err != nil {
		utils.InternalServerError(c, "Failed to update calendar event: "+err.Error())
		return
	}

	utils.Success(c, "Calendar event updated successfully", event)
}

// DeleteCalendarEvent removes a blocking event, reopening its day.
func (h *CalendarEventHandler) DeleteCalendarEvent(c *gin.Context) {
	var event models.CalendarEvent
	if err := h.DB.First(&event, "id = ?", c.Param("id")).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Calendar event not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	if err := h.DB.Delete(&event).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete calendar event: "+err.Error())
		return
	}

	utils.Success(c, "Calendar event deleted successfully", nil)
}
