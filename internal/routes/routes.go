package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"school-booking-server/internal/config"
	"school-booking-server/internal/handlers"
	"school-booking-server/internal/middleware"
	"school-booking-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db, cfg)
	calendarEventHandler := handlers.NewCalendarEventHandler(db)
	documentHandler := handlers.NewDocumentHandler(db)
	messageHandler := handlers.NewMessageHandler(db)
	notificationHandler := handlers.NewNotificationHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg)) // Apply JWT authentication middleware
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// School directory, used by admins when booking on a school's behalf
			userRoutes.GET("/schools", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.GetSchools)

			// Admin-only account management
			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Month availability map for the booking calendar
			appointmentRoutes.GET("/calendar", appointmentHandler.GetCalendar)

			// Direct single-day creation (no splitting), admin dashboard path
			appointmentRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.CreateAppointment)

			// Self-service calendar flow with multi-day splitting
			appointmentRoutes.POST("/book", appointmentHandler.BookAppointment)

			appointmentRoutes.GET("", appointmentHandler.GetAppointments) // Logic inside handler differentiates by role
			appointmentRoutes.GET("/:id", appointmentHandler.GetAppointmentByID)
			appointmentRoutes.PATCH("/:id/status", appointmentHandler.UpdateAppointmentStatus) // Authorization inside handler
			appointmentRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), appointmentHandler.DeleteAppointment)

			// Per-appointment document routes
			documentRoutes := appointmentRoutes.Group("/:id/documents")
			{
				documentRoutes.POST("", documentHandler.UploadDocument)
				documentRoutes.GET("", documentHandler.ListDocuments)
			}
		}

		// Document ids are globally unique, so fetch/delete live outside the
		// per-appointment group (authorization happens in the handler)
		private.GET("/documents/:documentId", documentHandler.GetDocument)
		private.DELETE("/documents/:documentId", documentHandler.DeleteDocument)

		// Calendar event routes: everyone can read, only admins can write
		eventRoutes := private.Group("/calendar-events")
		{
			eventRoutes.GET("", calendarEventHandler.GetCalendarEvents)
			eventRoutes.GET("/:id", calendarEventHandler.GetCalendarEventByID)

			eventAdminRoutes := eventRoutes.Group("")
			eventAdminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				eventAdminRoutes.POST("", calendarEventHandler.CreateCalendarEvent)
				eventAdminRoutes.PUT("/:id", calendarEventHandler.UpdateCalendarEvent)
				eventAdminRoutes.DELETE("/:id", calendarEventHandler.DeleteCalendarEvent)
			}
		}

		// Messaging routes
		messageRoutes := private.Group("/messages")
		{
			messageRoutes.POST("/send", messageHandler.SendMessage)
			messageRoutes.GET("", messageHandler.GetMessagesForUser)
			messageRoutes.GET("/new", messageHandler.GetNewMessages)
			messageRoutes.GET("/conversations", messageHandler.GetConversations)
			messageRoutes.PATCH("/:messageId/read", messageHandler.MarkMessageAsRead)
		}

		// Notification routes
		notificationRoutes := private.Group("/notifications")
		{
			notificationRoutes.GET("", notificationHandler.GetNotifications)
			notificationRoutes.PATCH("/read-all", notificationHandler.MarkAllNotificationsAsRead)
			notificationRoutes.PATCH("/:id/read", notificationHandler.MarkNotificationAsRead)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
