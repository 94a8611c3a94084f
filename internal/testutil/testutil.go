package testutil

import (
	"os"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/studiolane/studiolane-backend/internal/logger"
	"github.com/studiolane/studiolane-backend/internal/types"
)

// DB opens the test database named by TEST_POSTGRES_DSN, or skips the test
// when the variable is unset. The schema is migrated once per open.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		tb.Skip("TEST_POSTGRES_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		tb.Fatalf("open test postgres: %v", err)
	}
	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		tb.Fatalf("enable uuid-ossp: %v", err)
	}
	if err := db.AutoMigrate(
		&types.User{},
		&types.UserToken{},
		&types.Firm{},
		&types.FirmMember{},
		&types.Board{},
		&types.BoardItem{},
		&types.Project{},
		&types.Room{},
		&types.Item{},
		&types.Event{},
		&types.StepEvidenceSubmission{},
		&types.EvidenceLink{},
		&types.StepVideoSubmission{},
		&types.StepVideoLink{},
		&types.StepComment{},
		&types.EvidenceComment{},
		&types.ProjectComment{},
	); err != nil {
		tb.Fatalf("automigrate: %v", err)
	}
	return db
}

// Tx hands the test a transaction that always rolls back, so tests never
// leak rows into each other.
func Tx(tb testing.TB, db *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := db.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		tx.Rollback()
	})
	return tx
}

// Logger returns a development logger for tests.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	log, err := logger.New("development")
	if err != nil {
		tb.Fatalf("init logger: %v", err)
	}
	return log
}

func SeedUser(tb testing.TB, tx *gorm.DB, role string, isAdmin bool) *types.User {
	tb.Helper()
	user := &types.User{
		ID:        uuid.New(),
		Email:     uuid.New().String() + "@example.com",
		Password:  "hashed",
		FirstName: "Test",
		LastName:  "User",
		Role:      role,
		IsAdmin:   isAdmin,
	}
	if err := tx.Create(user).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return user
}

func SeedFirm(tb testing.TB, tx *gorm.DB, name string) *types.Firm {
	tb.Helper()
	firm := &types.Firm{ID: uuid.New(), Name: name}
	if err := tx.Create(firm).Error; err != nil {
		tb.Fatalf("seed firm: %v", err)
	}
	return firm
}

func SeedFirmMember(tb testing.TB, tx *gorm.DB, firmID, userID uuid.UUID, status string) *types.FirmMember {
	tb.Helper()
	member := &types.FirmMember{
		ID:     uuid.New(),
		FirmID: firmID,
		UserID: userID,
		Status: status,
	}
	if err := tx.Create(member).Error; err != nil {
		tb.Fatalf("seed firm member: %v", err)
	}
	return member
}

func SeedBoard(tb testing.TB, tx *gorm.DB, ownerUserID uuid.UUID, ownerFirmID *uuid.UUID) *types.Board {
	tb.Helper()
	board := &types.Board{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		OwnerFirmID: ownerFirmID,
		Name:        "Test Board",
		ViewMode:    types.ViewModeGrid,
	}
	if err := tx.Create(board).Error; err != nil {
		tb.Fatalf("seed board: %v", err)
	}
	return board
}

func SeedProject(tb testing.TB, tx *gorm.DB, boardID uuid.UUID) *types.Project {
	tb.Helper()
	project := &types.Project{
		ID:      uuid.New(),
		BoardID: boardID,
		Name:    "Test Project",
		Status:  types.ProjectStatusDraft,
	}
	if err := tx.Create(project).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return project
}

func SeedRoom(tb testing.TB, tx *gorm.DB, projectID uuid.UUID, order int) *types.Room {
	tb.Helper()
	room := &types.Room{
		ID:           uuid.New(),
		ProjectID:    projectID,
		Name:         "Test Room",
		DisplayOrder: order,
	}
	if err := tx.Create(room).Error; err != nil {
		tb.Fatalf("seed room: %v", err)
	}
	return room
}

func SeedItem(tb testing.TB, tx *gorm.DB, ownerUserID uuid.UUID) *types.Item {
	tb.Helper()
	item := &types.Item{
		ID:          uuid.New(),
		OwnerUserID: ownerUserID,
		Name:        "Test Item",
		WidthCm:     10,
		HeightCm:    10,
		DepthCm:     10,
		CBM:         0.001,
	}
	if err := tx.Create(item).Error; err != nil {
		tb.Fatalf("seed item: %v", err)
	}
	return item
}
