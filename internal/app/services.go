package app

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/authz"
	"github.com/studiolane/studiolane-backend/internal/hooks"
	"github.com/studiolane/studiolane-backend/internal/ledger"
	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	Board          services.BoardService
	Project        services.ProjectService
	Room           services.RoomService
	Item           services.ItemService
	ProjectComment services.ProjectCommentService
	Evidence       ledger.EvidenceService
	StepVideo      ledger.VideoService
	Recorder       ledger.EventRecorder
	Resolver       *authz.Resolver
	Roles          authz.RoleDirectory
	HookRunner     *hooks.Runner
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet Repos, redisClient *redis.Client) Services {
	log.Info("Wiring services...")

	roles := authz.NewRoleDirectory(db, log, reposet.User)
	resolver := authz.NewResolver(db, log, reposet.Item, reposet.Board, reposet.Project, reposet.Room, reposet.FirmMember, roles)
	recorder := ledger.NewEventRecorder(db, log, reposet.Event)
	notifier := services.NewLogNotifier(log)
	hookRunner := hooks.NewRunner(log, hooks.LayoutCacheInvalidator(redisClient))

	return Services{
		Auth:           services.NewAuthService(db, log, reposet.User, reposet.UserToken, cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL),
		Board:          services.NewBoardService(db, log, resolver, roles, reposet.Board, reposet.BoardItem, reposet.Item, reposet.FirmMember, recorder, hookRunner),
		Project:        services.NewProjectService(db, log, resolver, reposet.Project, recorder),
		Room:           services.NewRoomService(db, log, resolver, reposet.Room, reposet.Item, recorder),
		Item:           services.NewItemService(db, log, resolver, reposet.Item, recorder),
		ProjectComment: services.NewProjectCommentService(db, log, resolver, reposet.ProjectComment, recorder, notifier),
		Evidence:       ledger.NewEvidenceService(db, log, resolver, reposet.Item, reposet.StepEvidence, reposet.EvidenceComment, recorder, notifier),
		StepVideo:      ledger.NewVideoService(db, log, resolver, reposet.Item, reposet.StepVideo, reposet.StepComment, recorder, notifier),
		Recorder:       recorder,
		Resolver:       resolver,
		Roles:          roles,
		HookRunner:     hookRunner,
	}
}
