package handlers

import (
	"fmt"
	"io"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-booking-server/internal/middleware"
	"school-booking-server/internal/models"
	"school-booking-server/internal/utils"
)

// DocumentHandler handles the files schools attach to their appointments
// ahead of processing day.
type DocumentHandler struct {
	DB *gorm.DB
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(db *gorm.DB) *DocumentHandler {
	return &DocumentHandler{DB: db}
}

// documentResponse is the attachment metadata without the blob.
type documentResponse struct {
	ID            string `json:"id"`
	AppointmentID string `json:"appointmentId"`
	FileName      string `json:"fileName"`
	FileType      string `json:"fileType"`
	Size          int    `json:"size"`
}

func toDocumentResponse(doc *models.AppointmentDocument) documentResponse {
	return documentResponse{
		ID:            doc.ID,
		AppointmentID: doc.AppointmentID,
		FileName:      doc.FileName,
		FileType:      doc.FileType,
		Size:          len(doc.FileData),
	}
}

// canAccessAppointment checks whether the caller may touch the given
// appointment's documents: admins always, schools only their own.
func (h *DocumentHandler) canAccessAppointment(c *gin.Context, appointment *models.Appointment) bool {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return false
	}
	role, _ := middleware.GetUserRoleFromContext(c)
	if role == models.RoleAdmin {
		return true
	}
	var user models.User
	if err := h.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.Unauthorized(c, "User account not found")
		return false
	}
	if user.SchoolName != appointment.SchoolName {
		utils.Forbidden(c, "You are not authorized to access this appointment's documents.")
		return false
	}
	return true
}

// UploadDocument attaches a file to an appointment (multipart form field
// "file").
func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	appointmentID := c.Param("id")

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", appointmentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Appointment not found")
		} else {
			utils.InternalServerError(c, "Database error verifying appointment: "+err.Error())
		}
		return
	}

	if !h.canAccessAppointment(c, &appointment) {
		return
	}

	file, header, err := c.Request.FormFile("file") // "file" is the name of the form field
	if err != nil {
		utils.BadRequest(c, "Error retrieving file from form: "+err.Error())
		return
	}
	defer file.Close()

	fileData, err := io.ReadAll(file)
	if err != nil {
		utils.InternalServerError(c, "Error reading file content: "+err.Error())
		return
	}

	document := models.AppointmentDocument{
		AppointmentID: appointment.ID,
		FileName:      header.Filename,
		FileType:      header.Header.Get("Content-Type"),
		FileData:      fileData,
	}

	if err := h.DB.Create(&document).Error; err != nil {
		utils.InternalServerError(c, "Failed to store document: "+err.Error())
		return
	}

	utils.Created(c, "Document uploaded successfully", toDocumentResponse(&document))
}

// ListDocuments returns the metadata of every document on an appointment.
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
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

	if !h.canAccessAppointment(c, &appointment) {
		return
	}

	var documents []models.AppointmentDocument
	if err := h.DB.Where("appointment_id = ?", appointment.ID).Find(&documents).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch documents: "+err.Error())
		return
	}

	responses := make([]documentResponse, len(documents))
	for i := range documents {
		responses[i] = toDocumentResponse(&documents[i])
	}

	utils.Success(c, "Documents fetched successfully", responses)
}

// GetDocument streams one document's content back to the caller.
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	documentID := c.Param("documentId")

	var document models.AppointmentDocument
	if err := h.DB.First(&document, "id = ?", documentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Document not found")
		} else {
			utils.InternalServerError(c, "Database error fetching document: "+err.Error())
		}
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", document.AppointmentID).Error; err != nil {
		utils.InternalServerError(c, "Could not fetch parent appointment for authorization check.")
		return
	}

	if !h.canAccessAppointment(c, &appointment) {
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", document.FileName))
	c.Data(200, document.FileType, document.FileData)
}

// DeleteDocument removes a document from an appointment.
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	documentID := c.Param("documentId")

	var document models.AppointmentDocument
	if err := h.DB.First(&document, "id = ?", documentID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Document not found")
		} else {
			utils.InternalServerError(c, "Database error fetching document: "+err.Error())
		}
		return
	}

	var appointment models.Appointment
	if err := h.DB.First(&appointment, "id = ?", document.AppointmentID).Error; err != nil {
		utils.InternalServerError(c, "Could not fetch parent appointment for authorization check.")
		return
	}

	if !h.canAccessAppointment(c, &appointment) {
		return
	}

	if err := h.DB.Delete(&document).Error; err != nil {
		utils.InternalServerError(c, "Failed to delete document: "+err.Error())
		return
	}

	utils.Success(c, "Document deleted successfully", nil)
}
