package app

import (
	"github.com/gin-gonic/gin"

	"github.com/studiolane/studiolane-backend/internal/server"
)

func wireRouter(handlerset Handlers, middlewareset Middleware) *gin.Engine {
	return server.NewRouter(server.RouterConfig{
		AuthHandler:           handlerset.Auth,
		AuthMiddleware:        middlewareset.Auth,
		HealthcheckHandler:    handlerset.Healthcheck,
		BoardHandler:          handlerset.Board,
		ProjectHandler:        handlerset.Project,
		RoomHandler:           handlerset.Room,
		ItemHandler:           handlerset.Item,
		EvidenceHandler:       handlerset.Evidence,
		StepVideoHandler:      handlerset.StepVideo,
		ProjectCommentHandler: handlerset.ProjectComment,
	})
}
