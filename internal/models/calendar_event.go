package models

import (
	"time"
)

// CalendarEvent blocks a calendar day for appointment planning. Any day
// carrying an event has zero capacity, independent of the daily file limit.
type CalendarEvent struct {
	BaseModel
	EventDate   time.Time `gorm:"index;not null" json:"eventDate"` // calendar day, midnight UTC
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
}
