package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"school-booking-server/internal/middleware"
	"school-booking-server/internal/models"
	"school-booking-server/internal/utils"
)

// MessageHandler handles messaging between school accounts and the
// processing office.
type MessageHandler struct {
	DB *gorm.DB
}

// NewMessageHandler creates a new MessageHandler.
func NewMessageHandler(db *gorm.DB) *MessageHandler {
	return &MessageHandler{DB: db}
}

// SendMessageRequest represents the request body for sending a message.
type SendMessageRequest struct {
	RecipientID     string `json:"recipientId" binding:"required,uuid"`
	Subject         string `json:"subject"`
	Content         string `json:"content" binding:"required"`
	ParentMessageID string `json:"parentMessageId"`
}

// SendMessage handles sending a new message. Schools message admins and
// admins message anyone; school-to-school messaging is not allowed.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	var req SendMessageRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	senderID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "Sender ID not found in token")
		return
	}
	if senderID == req.RecipientID {
		utils.BadRequest(c, "Cannot send a message to yourself.")
		return
	}

	var recipient models.User
	if err := h.DB.First(&recipient, "id = ?", req.RecipientID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Recipient user not found")
		} else {
			utils.InternalServerError(c, "Database error verifying recipient: "+err.Error())
		}
		return
	}

	senderRole, _ := middleware.GetUserRoleFromContext(c)
	if senderRole != models.RoleAdmin && recipient.Role != models.RoleAdmin {
		utils.Forbidden(c, "School accounts can only message the processing office.")
		return
	}

	message := models.Message{
		SenderID:   senderID,
		ReceiverID: req.RecipientID,
		Subject:    req.Subject,
		Content:    req.Content,
		Status:     models.MessageStatusSent,
	}
	if req.ParentMessageID != "" {
		if _, err := uuid.Parse(req.ParentMessageID); err == nil {
			message.ParentID = req.ParentMessageID
		}
	}

	if err := h.DB.Create(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to send message: "+err.Error())
		return
	}

	// Best-effort notification for the recipient.
	h.DB.Create(&models.Notification{
		UserID: recipient.ID,
		Type:   models.NotificationMessageReceived,
		Title:  "New message",
		Body:   req.Subject,
	})

	utils.Created(c, "Message sent successfully", message)
}

// GetMessagesForUser handles fetching messages for the logged-in user,
// either everything they are involved in or one conversation via ?withUser=.
func (h *MessageHandler) GetMessagesForUser(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var messages []models.Message
	query := h.DB.Preload("Sender").Preload("Receiver").Order("created_at asc")

	if otherUserID := c.Query("withUser"); otherUserID != "" {
		if _, err := uuid.Parse(otherUserID); err != nil {
			utils.BadRequest(c, "Invalid 'withUser' ID format")
			return
		}
		query = query.Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
			userID, otherUserID, otherUserID, userID)
	} else {
		query = query.Where("sender_id = ? OR receiver_id = ?", userID, userID)
	}

	if err := query.Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	// Viewing a conversation marks the messages addressed to the viewer as
	// read.
	now := time.Now()
	for i, msg := range messages {
		if msg.ReceiverID == userID && msg.Status == models.MessageStatusSent {
			messages[i].Status = models.MessageStatusRead
			messages[i].ReadAt = &now
			h.DB.Model(&messages[i]).Updates(map[string]interface{}{
				"status":  models.MessageStatusRead,
				"read_at": now,
			})
		}
	}

	utils.Success(c, "Messages fetched successfully", messages)
}

// ConversationPreview summarizes one conversation for the inbox list.
type ConversationPreview struct {
	Partner     models.UserSanitized `json:"partner"`
	LastMessage models.Message       `json:"lastMessage"`
	UnreadCount int64                `json:"unreadCount"`
}

// GetConversations handles fetching a list of conversations for the user:
// one entry per messaging partner with the latest message and unread count.
func (h *MessageHandler) GetConversations(c *gin.Context) {
	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var conversationPartners []struct {
		PartnerID string `gorm:"column:partner_id"`
	}

	err := h.DB.Raw(`
		SELECT DISTINCT partner_id FROM (
			SELECT receiver_id as partner_id FROM messages WHERE sender_id = ?
			UNION
			SELECT sender_id as partner_id FROM messages WHERE receiver_id = ?
		) AS partners
	`, userID, userID).Scan(&conversationPartners).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch conversation partners: "+err.Error())
		return
	}

	var previews []ConversationPreview
	for _, cp := range conversationPartners {
		var partnerUser models.User
		if err := h.DB.First(&partnerUser, "id = ?", cp.PartnerID).Error; err != nil {
			continue // Skip if partner user not found
		}

		var lastMessage models.Message
		err := h.DB.Preload("Sender").Preload("Receiver").
			Where("(sender_id = ? AND receiver_id = ?) OR (sender_id = ? AND receiver_id = ?)",
				userID, cp.PartnerID, cp.PartnerID, userID).
			Order("created_at desc").First(&lastMessage).Error
		if err != nil {
			continue
		}

		var unreadCount int64
		h.DB.Model(&models.Message{}).
			Where("sender_id = ? AND receiver_id = ? AND status = ?", cp.PartnerID, userID, models.MessageStatusSent).
			Count(&unreadCount)

		previews = append(previews, ConversationPreview{
			Partner:     partnerUser.Sanitize(),
			LastMessage: lastMessage,
			UnreadCount: unreadCount,
		})
	}

	utils.Success(c, "Conversations fetched successfully", previews)
}

// MarkMessageAsRead handles marking a specific message as read.
func (h *MessageHandler) MarkMessageAsRead(c *gin.Context) {
	messageID := c.Param("messageId")

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User not authenticated")
		return
	}

	var message models.Message
	if err := h.DB.First(&message, "id = ?", messageID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			utils.NotFound(c, "Message not found")
		} else {
			utils.InternalServerError(c, "Database error: "+err.Error())
		}
		return
	}

	// Only the recipient can mark a message as read
	if message.ReceiverID != userID {
		utils.Forbidden(c, "You are not authorized to mark this message as read.")
		return
	}

	if message.Status == models.MessageStatusRead {
		utils.Success(c, "Message already marked as read", message)
		return
	}

	now := time.Now()
	message.Status = models.MessageStatusRead
	message.ReadAt = &now
	if err := h.DB.Save(&message).Error; err != nil {
		utils.InternalServerError(c, "Failed to update message status: "+err.Error())
		return
	}

	utils.Success(c, "Message marked as read successfully", message)
}

// NewMessagesRequest represents the query params for getting new messages
type NewMessagesRequest struct {
	Since string `form:"since" binding:"required"`
}

// GetNewMessages handles fetching new messages since a given timestamp,
// used by the inbox polling loop.
func (h *MessageHandler) GetNewMessages(c *gin.Context) {
	var req NewMessagesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.BadRequest(c, "Invalid request: "+err.Error())
		return
	}

	userID, exists := middleware.GetUserIDFromContext(c)
	if !exists {
		utils.Unauthorized(c, "User ID not found in context")
		return
	}

	sinceTime, err := time.Parse(time.RFC3339, req.Since)
	if err != nil {
		utils.BadRequest(c, "Invalid timestamp format. Use RFC3339 format (e.g., 2006-01-02T15:04:05Z07:00)")
		return
	}

	var messages []models.Message
	if err := h.DB.Preload("Sender").Preload("Receiver").
		Where("(receiver_id = ? OR sender_id = ?) AND created_at > ?", userID, userID, sinceTime).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		utils.InternalServerError(c, "Failed to fetch messages: "+err.Error())
		return
	}

	utils.Success(c, "New messages fetched successfully", messages)
}
