package app

import (
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/repos"
)

type Repos struct {
	User            repos.UserRepo
	UserToken       repos.UserTokenRepo
	FirmMember      repos.FirmMemberRepo
	Board           repos.BoardRepo
	BoardItem       repos.BoardItemRepo
	Project         repos.ProjectRepo
	Room            repos.RoomRepo
	Item            repos.ItemRepo
	Event           repos.EventRepo
	StepEvidence    repos.StepEvidenceRepo
	StepVideo       repos.StepVideoRepo
	StepComment     repos.StepCommentRepo
	EvidenceComment repos.EvidenceCommentRepo
	ProjectComment  repos.ProjectCommentRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:            repos.NewUserRepo(db, log),
		UserToken:       repos.NewUserTokenRepo(db, log),
		FirmMember:      repos.NewFirmMemberRepo(db, log),
		Board:           repos.NewBoardRepo(db, log),
		BoardItem:       repos.NewBoardItemRepo(db, log),
		Project:         repos.NewProjectRepo(db, log),
		Room:            repos.NewRoomRepo(db, log),
		Item:            repos.NewItemRepo(db, log),
		Event:           repos.NewEventRepo(db, log),
		StepEvidence:    repos.NewStepEvidenceRepo(db, log),
		StepVideo:       repos.NewStepVideoRepo(db, log),
		StepComment:     repos.NewStepCommentRepo(db, log),
		EvidenceComment: repos.NewEvidenceCommentRepo(db, log),
		ProjectComment:  repos.NewProjectCommentRepo(db, log),
	}
}
