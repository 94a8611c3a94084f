package app

import (
	"github.com/studiolane/studiolane-backend/internal/handlers"
	"github.com/studiolane/studiolane-backend/internal/logger"
)

type Handlers struct {
	Healthcheck    *handlers.HealthcheckHandler
	Auth           *handlers.AuthHandler
	Board          *handlers.BoardHandler
	Project        *handlers.ProjectHandler
	Room           *handlers.RoomHandler
	Item           *handlers.ItemHandler
	Evidence       *handlers.EvidenceHandler
	StepVideo      *handlers.StepVideoHandler
	ProjectComment *handlers.ProjectCommentHandler
}

func wireHandlers(log *logger.Logger, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Healthcheck:    handlers.NewHealthcheckHandler(),
		Auth:           handlers.NewAuthHandler(serviceset.Auth),
		Board:          handlers.NewBoardHandler(serviceset.Board),
		Project:        handlers.NewProjectHandler(serviceset.Project),
		Room:           handlers.NewRoomHandler(serviceset.Room),
		Item:           handlers.NewItemHandler(serviceset.Item),
		Evidence:       handlers.NewEvidenceHandler(serviceset.Evidence),
		StepVideo:      handlers.NewStepVideoHandler(serviceset.StepVideo),
		ProjectComment: handlers.NewProjectCommentHandler(serviceset.ProjectComment),
	}
}
