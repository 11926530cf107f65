package models

import (
	"time"

	"gorm.io/gorm"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusComplete  AppointmentStatus = "complete"
	StatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents one day's worth of committed file-processing work
// for a school. A submission whose file count exceeds the remaining capacity
// of its start day is stored as several rows, one per allocated day, linked
// through ParentAppointmentID.
type Appointment struct {
	BaseModel
	SchoolName      string            `gorm:"size:255;not null" json:"schoolName"`
	AppointmentDate time.Time         `gorm:"index;not null" json:"appointmentDate"` // calendar day, midnight UTC
	FileCount       int               `gorm:"not null" json:"fileCount"`             // total files in the originating request
	DailyFileCount  int               `gorm:"not null" json:"dailyFileCount"`        // files allocated to this row's date
	Status          AppointmentStatus `gorm:"size:20;default:'pending'" json:"status"`
	Notes           string            `gorm:"type:text" json:"notes"`

	// Split-group metadata. SplitSequence and TotalSplits are NULL for a
	// stand-alone appointment; ParentAppointmentID is NULL on the primary
	// row and on non-split rows.
	IsSplit             bool    `gorm:"default:false" json:"isSplit"`
	SplitSequence       *int    `json:"splitSequence,omitempty"`
	TotalSplits         *int    `json:"totalSplits,omitempty"`
	ParentAppointmentID *string `gorm:"size:36;index" json:"parentAppointmentId,omitempty"`

	AssignedByID string         `gorm:"size:36;index" json:"assignedById"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	AssignedBy        User          `gorm:"foreignKey:AssignedByID" json:"-"`
	ParentAppointment *Appointment  `gorm:"foreignKey:ParentAppointmentID" json:"-"`
	SplitChildren     []Appointment `gorm:"foreignKey:ParentAppointmentID" json:"-"`

	Documents []AppointmentDocument `gorm:"foreignKey:AppointmentID" json:"documents,omitempty"`
}

// AppointmentDocument represents a file attached to an appointment
type AppointmentDocument struct {
	BaseModel
	AppointmentID string `json:"appointmentId" gorm:"not null;type:varchar(36);index"`
	FileName      string `json:"fileName" gorm:"not null"` // Original name of the file
	FileType      string `json:"fileType" gorm:"not null"` // MIME type of the file
	FileData      []byte `json:"-" gorm:"type:longblob;not null"`
}
