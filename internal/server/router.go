package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/studiolane/studiolane-backend/internal/handlers"
	"github.com/studiolane/studiolane-backend/internal/middleware"
)

type RouterConfig struct {
	AuthHandler           *handlers.AuthHandler
	AuthMiddleware        *middleware.AuthMiddleware
	HealthcheckHandler    *handlers.HealthcheckHandler
	BoardHandler          *handlers.BoardHandler
	ProjectHandler        *handlers.ProjectHandler
	RoomHandler           *handlers.RoomHandler
	ItemHandler           *handlers.ItemHandler
	EvidenceHandler       *handlers.EvidenceHandler
	StepVideoHandler      *handlers.StepVideoHandler
	ProjectCommentHandler *handlers.ProjectCommentHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", cfg.HealthcheckHandler.Healthcheck)
	router.POST("/register", cfg.AuthHandler.Register)
	router.POST("/login", cfg.AuthHandler.Login)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Auth
	protected.POST("/refresh", cfg.AuthHandler.Refresh)
	protected.POST("/logout", cfg.AuthHandler.Logout)

	// Boards
	protected.POST("/boards", cfg.BoardHandler.Create)
	protected.GET("/boards", cfg.BoardHandler.ListOwned)
	protected.GET("/boards/:board_id", cfg.BoardHandler.Get)
	protected.PATCH("/boards/:board_id", cfg.BoardHandler.Update)
	protected.DELETE("/boards/:board_id", cfg.BoardHandler.Delete)
	protected.PUT("/boards/:board_id/layout", cfg.BoardHandler.SaveLayout)
	protected.GET("/boards/:board_id/layout", cfg.BoardHandler.GetLayout)
	protected.GET("/boards/:board_id/items", cfg.BoardHandler.ListItems)
	protected.POST("/boards/:board_id/items/:item_id", cfg.BoardHandler.AddItem)
	protected.DELETE("/boards/:board_id/items/:item_id", cfg.BoardHandler.RemoveItem)
	protected.GET("/boards/:board_id/projects", cfg.ProjectHandler.ListByBoard)

	// Projects
	protected.POST("/projects", cfg.ProjectHandler.Create)
	protected.GET("/projects/:project_id", cfg.ProjectHandler.Get)
	protected.PATCH("/projects/:project_id", cfg.ProjectHandler.Update)
	protected.DELETE("/projects/:project_id", cfg.ProjectHandler.Delete)
	protected.GET("/projects/:project_id/rooms", cfg.RoomHandler.ListByProject)
	protected.PUT("/projects/:project_id/rooms/order", cfg.RoomHandler.Reorder)
	protected.GET("/projects/:project_id/comments", cfg.ProjectCommentHandler.ListByProject)

	// Rooms
	protected.POST("/rooms", cfg.RoomHandler.Create)
	protected.GET("/rooms/:room_id", cfg.RoomHandler.Get)
	protected.PATCH("/rooms/:room_id", cfg.RoomHandler.Rename)
	protected.DELETE("/rooms/:room_id", cfg.RoomHandler.Delete)

	// Items
	protected.POST("/items", cfg.ItemHandler.Create)
	protected.GET("/items", cfg.ItemHandler.ListOwned)
	protected.GET("/items/:item_id", cfg.ItemHandler.Get)
	protected.PATCH("/items/:item_id", cfg.ItemHandler.Update)
	protected.DELETE("/items/:item_id", cfg.ItemHandler.Delete)
	protected.PUT("/items/:item_id/room/:room_id", cfg.ItemHandler.PlaceInRoom)
	protected.DELETE("/items/:item_id/room", cfg.ItemHandler.RemoveFromRoom)

	// Step evidence
	protected.POST("/evidence", cfg.EvidenceHandler.Submit)
	protected.GET("/items/:item_id/evidence/:step_id", cfg.EvidenceHandler.DesignerHistory)
	protected.GET("/items/:item_id/evidence/:step_id/suppliers/:supplier_id", cfg.EvidenceHandler.OperatorHistory)
	protected.POST("/evidence/:evidence_id/comments", cfg.EvidenceHandler.AddComment)
	protected.GET("/evidence/:evidence_id/comments", cfg.EvidenceHandler.ListComments)

	// Step videos
	protected.POST("/videos", cfg.StepVideoHandler.Submit)
	protected.GET("/items/:item_id/videos/:step_number", cfg.StepVideoHandler.DesignerHistory)
	protected.GET("/items/:item_id/videos/:step_number/full", cfg.StepVideoHandler.OperatorHistory)
	protected.GET("/items/:item_id/videos/:step_number/current", cfg.StepVideoHandler.Current)
	protected.POST("/step-comments", cfg.StepVideoHandler.AddComment)
	protected.GET("/items/:item_id/step-comments/:step_number", cfg.StepVideoHandler.ListComments)

	// Project comments
	protected.POST("/comments", cfg.ProjectCommentHandler.Add)
	protected.PATCH("/comments/:comment_id", cfg.ProjectCommentHandler.Update)
	protected.DELETE("/comments/:comment_id", cfg.ProjectCommentHandler.Delete)

	return router
}
