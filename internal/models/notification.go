package models

import (
	"time"
)

// NotificationType categorizes a notification
type NotificationType string

const (
	NotificationAppointmentBooked    NotificationType = "appointment_booked"
	NotificationAppointmentSplit     NotificationType = "appointment_split"
	NotificationAppointmentCancelled NotificationType = "appointment_cancelled"
	NotificationMessageReceived      NotificationType = "message_received"
)

// Notification represents an in-app notification for a user
type Notification struct {
	BaseModel
	UserID string           `gorm:"size:36;index" json:"userId"`
	Type   NotificationType `gorm:"size:40" json:"type"`
	Title  string           `gorm:"size:255" json:"title"`
	Body   string           `gorm:"type:text" json:"body"`
	IsRead bool             `gorm:"default:false" json:"isRead"`
	ReadAt *time.Time       `json:"readAt,omitempty"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}
