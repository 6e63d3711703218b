package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/matteo/veloclub/internal/app/controllers"
	"github.com/matteo/veloclub/internal/middleware"
	"github.com/matteo/veloclub/internal/pkg/websocket"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	authController *controllers.AuthController,
	userController *controllers.UserController,
	eventController *controllers.EventController,
	postController *controllers.PostController,
	wsHandler *websocket.Handler,
	authMiddleware *middleware.AuthMiddleware,
) {
	// API version group
	v1 := router.Group("/api/v1")

	// --- Public Auth routes ---
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh", authController.RefreshToken)
	}

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth(), authMiddleware.LoadUser())
	{
		authenticated.POST("/auth/logout", authController.Logout)

		// Own profile
		authenticated.GET("/users/me", userController.GetProfile)
		authenticated.PUT("/users/me", userController.UpdateProfile)

		// Member administration
		usersAdmin := authenticated.Group("/users")
		usersAdmin.Use(authMiddleware.AdminRequired())
		{
			usersAdmin.GET("", userController.GetAllUsers)
			usersAdmin.GET("/:id", userController.GetUserByID)
			usersAdmin.POST("/:id/approve", userController.ApproveUser)
			usersAdmin.PUT("/:id/active", userController.SetUserActive)
		}
		// Role changes are owner-only
		authenticated.PUT("/users/:id/role", authMiddleware.OwnerRequired(), userController.ChangeRole)

		// Events
		events := authenticated.Group("/events")
		{
			events.GET("", eventController.GetAllEvents)
			events.GET("/:id", eventController.GetEventByID)

			// Participation (any approved member)
			events.POST("/:id/participants", eventController.JoinEvent)
			events.PUT("/:id/participants/me", eventController.UpdateOwnParticipation)
			events.DELETE("/:id/participants/me", eventController.LeaveEvent)

			// Admin-only event management
			eventsAdmin := events.Group("")
			eventsAdmin.Use(authMiddleware.AdminRequired())
			{
				eventsAdmin.POST("", eventController.CreateEvent)
				eventsAdmin.PUT("/:id", eventController.UpdateEvent)
				eventsAdmin.PUT("/:id/status", eventController.ChangeEventStatus)

				eventsAdmin.POST("/:id/track", eventController.UploadTrack)
				eventsAdmin.DELETE("/:id/track", eventController.DeleteTrack)

				eventsAdmin.PUT("/:id/participants/:userId", eventController.UpdateParticipation)
				eventsAdmin.DELETE("/:id/participants/:userId", eventController.RemoveParticipant)

				eventsAdmin.POST("/:id/manual-participants", eventController.AddManualParticipant)
				eventsAdmin.DELETE("/:id/manual-participants/:manualId", eventController.RemoveManualParticipant)
			}
		}

		// Cancellation notifications feed
		authenticated.GET("/notifications", eventController.GetNotifications)

		// Notice board
		posts := authenticated.Group("/posts")
		{
			posts.GET("", postController.GetAllPosts)
			posts.GET("/:id", postController.GetPostByID)

			postsAdmin := posts.Group("")
			postsAdmin.Use(authMiddleware.AdminRequired())
			{
				postsAdmin.POST("", postController.CreatePost)
				postsAdmin.PUT("/:id", postController.UpdatePost)
				postsAdmin.DELETE("/:id", postController.DeletePost)
			}
		}

		// Live participant count feed
		authenticated.GET("/ws/counts", wsHandler.HandleConnection)
	}
}
