package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/studiolane/studiolane-backend/internal/repos"
	"github.com/studiolane/studiolane-backend/internal/requestdata"
	"github.com/studiolane/studiolane-backend/internal/services"
	"github.com/studiolane/studiolane-backend/internal/svcerr"
	"github.com/studiolane/studiolane-backend/internal/testutil"
	"github.com/studiolane/studiolane-backend/internal/types"
)

func newAuthService(tb testing.TB) services.AuthService {
	tb.Helper()
	db := testutil.DB(tb)
	log := testutil.Logger(tb)
	return services.NewAuthService(db, log,
		repos.NewUserRepo(db, log),
		repos.NewUserTokenRepo(db, log),
		"test-secret",
		time.Hour,
		24*time.Hour,
	)
}

func TestRegisterNeverGrantsAdmin(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	email := uuid.New().String() + "@example.com"
	user := &types.User{
		Email:     email,
		Password:  "hunter22",
		FirstName: "Ada",
		LastName:  "Devine",
		IsAdmin:   true,
	}
	if err := svc.RegisterUser(ctx, user); err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.IsAdmin {
		t.Fatal("registration must never grant admin")
	}
	if user.Role != "designer" {
		t.Fatalf("expected default role designer, got %q", user.Role)
	}
	if user.Password == "hunter22" {
		t.Fatal("password must be stored hashed")
	}

	dup := &types.User{Email: email, Password: "other"}
	err := svc.RegisterUser(ctx, dup)
	wantKind(t, err, svcerr.KindConflict)
}

func TestLoginRefreshLogout(t *testing.T) {
	svc := newAuthService(t)
	ctx := context.Background()

	email := uuid.New().String() + "@example.com"
	if err := svc.RegisterUser(ctx, &types.User{Email: email, Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	_, _, err := svc.LoginUser(ctx, email, "wrong")
	wantKind(t, err, svcerr.KindAuthentication)

	access, refresh, err := svc.LoginUser(ctx, email, "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if access == "" || refresh == "" {
		t.Fatal("login must yield both tokens")
	}

	authed, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context from token: %v", err)
	}
	rd := requestdata.GetRequestData(authed)
	if rd == nil || rd.UserID == uuid.Nil {
		t.Fatal("authenticated context must carry the principal")
	}

	// rotation invalidates the old refresh token
	refreshCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{RefreshToken: refresh})
	newAccess, newRefresh, err := svc.RefreshUser(refreshCtx)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if newAccess == "" || newRefresh == "" || newRefresh == refresh {
		t.Fatal("refresh must rotate both tokens")
	}
	_, _, err = svc.RefreshUser(refreshCtx)
	wantKind(t, err, svcerr.KindAuthentication)

	logoutCtx := requestdata.WithRequestData(ctx, &requestdata.RequestData{TokenString: newAccess})
	if err := svc.LogoutUser(logoutCtx); err != nil {
		t.Fatalf("logout: %v", err)
	}
	_, _, err = svc.RefreshUser(requestdata.WithRequestData(ctx, &requestdata.RequestData{RefreshToken: newRefresh}))
	wantKind(t, err, svcerr.KindAuthentication)
}

func TestAdminDemotionTakesEffectImmediately(t *testing.T) {
	db := testutil.DB(t)
	svc := newAuthService(t)
	ctx := context.Background()

	email := uuid.New().String() + "@example.com"
	if err := svc.RegisterUser(ctx, &types.User{Email: email, Password: "hunter22"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := db.Model(&types.User{}).Where("email = ?", email).Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote: %v", err)
	}

	access, _, err := svc.LoginUser(ctx, email, "hunter22")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	authed, err := svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context: %v", err)
	}
	if rd := requestdata.GetRequestData(authed); rd == nil || !rd.IsAdmin {
		t.Fatal("admin status should be live after promotion")
	}

	// the token still carries the old claim, but the user row wins
	if err := db.Model(&types.User{}).Where("email = ?", email).Update("is_admin", false).Error; err != nil {
		t.Fatalf("demote: %v", err)
	}
	authed, err = svc.SetContextFromToken(ctx, access)
	if err != nil {
		t.Fatalf("set context after demotion: %v", err)
	}
	if rd := requestdata.GetRequestData(authed); rd == nil || rd.IsAdmin {
		t.Fatal("a demotion must take effect on the next request")
	}
}
