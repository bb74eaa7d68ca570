package integration

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/db"
	organizationdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	partnerdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/partner"
	postgresrepo "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/repository/postgres"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/test/integration/testutil"
)

func TestStaffAuthFlowWithPostgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	jwtManager := auth.NewJWTManager("test-issuer", "test-aud", "test-key")
	svc := auth.NewService(db.NewAuthRepository(pool), jwtManager, 15*time.Minute, 30*time.Minute, 6, true, "http://localhost/reset")

	admin, err := svc.BootstrapAdmin(ctx, "First Admin", "admin@nunmfb.test", "admin-pass")
	if err != nil {
		t.Fatalf("bootstrap admin: %v", err)
	}
	if admin.Role != auth.RoleAdmin {
		t.Fatalf("bootstrap role %s, want ADMIN", admin.Role)
	}

	// Only one bootstrap is allowed.
	if _, err := svc.BootstrapAdmin(ctx, "Second Admin", "admin2@nunmfb.test", "admin-pass"); !errors.Is(err, auth.ErrAdminExists) {
		t.Fatalf("expected ErrAdminExists, got %v", err)
	}

	login, err := svc.Login(ctx, "admin@nunmfb.test", "admin-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := jwtManager.Parse(login.AccessToken)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.UserID != admin.ID || claims.Type != auth.TokenTypeStaff {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	if _, err := svc.Login(ctx, "admin@nunmfb.test", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}

	if err := svc.ChangePassword(ctx, admin.ID, "admin-pass", "new-admin-pass"); err != nil {
		t.Fatalf("change password: %v", err)
	}
	if _, err := svc.Login(ctx, "admin@nunmfb.test", "new-admin-pass"); err != nil {
		t.Fatalf("login with new password: %v", err)
	}

	resetLink, err := svc.ForgotPassword(ctx, "admin@nunmfb.test")
	if err != nil {
		t.Fatalf("forgot password: %v", err)
	}
	u, err := url.Parse(resetLink)
	if err != nil {
		t.Fatalf("parse reset link: %v", err)
	}
	resetToken := u.Query().Get("token")
	if resetToken == "" {
		t.Fatalf("reset link carries no token: %s", resetLink)
	}
	if err := svc.ResetPassword(ctx, resetToken, "reset-pass-1"); err != nil {
		t.Fatalf("reset password: %v", err)
	}
	if _, err := svc.Login(ctx, "admin@nunmfb.test", "reset-pass-1"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}

	// Unknown emails get no disclosure and no link.
	link, err := svc.ForgotPassword(ctx, "nobody@nunmfb.test")
	if err != nil {
		t.Fatalf("forgot password unknown: %v", err)
	}
	if link != "" {
		t.Fatalf("expected empty link for unknown email, got %s", link)
	}
}

func TestPartnerInviteFlowWithPostgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	orgRepo := postgresrepo.NewOrganizationRepository(pool)
	orgSvc := organizationdomain.NewService(orgRepo)
	jwtManager := auth.NewJWTManager("test-issuer", "test-aud", "test-key")
	svc := partnerdomain.NewService(
		postgresrepo.NewPartnerRepository(pool),
		orgRepo,
		jwtManager,
		15*time.Minute,
		24*time.Hour,
		6,
		"http://localhost:5173",
	)

	org, err := orgSvc.Create(ctx, organizationdomain.CreateInput{Name: "Gamma Plc"})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}

	invite, err := svc.CreateInvite(ctx, partnerdomain.InviteInput{
		OrganizationID: org.ID,
		FullName:       "Chi Eze",
		Email:          "chi@gamma.test",
	})
	if err != nil {
		t.Fatalf("create invite: %v", err)
	}
	u, err := url.Parse(invite.InviteURL)
	if err != nil {
		t.Fatalf("parse invite url: %v", err)
	}
	rawToken := u.Query().Get("token")
	if rawToken == "" || strings.Contains(rawToken, "-") {
		t.Fatalf("unexpected invite token: %q", rawToken)
	}

	details, err := svc.ValidateInvite(ctx, rawToken)
	if err != nil {
		t.Fatalf("validate invite: %v", err)
	}
	if details.OrganizationName != "Gamma Plc" || details.Email != "chi@gamma.test" {
		t.Fatalf("unexpected invite details: %+v", details)
	}

	user, err := svc.CompleteInvite(ctx, rawToken, "partner-pass")
	if err != nil {
		t.Fatalf("complete invite: %v", err)
	}
	if !user.IsActive {
		t.Fatalf("completed user should be active")
	}

	// The invite is single-use.
	if _, err := svc.CompleteInvite(ctx, rawToken, "partner-pass"); !errors.Is(err, partnerdomain.ErrInvalidInvite) {
		t.Fatalf("expected ErrInvalidInvite on reuse, got %v", err)
	}

	login, err := svc.Login(ctx, "chi@gamma.test", "partner-pass")
	if err != nil {
		t.Fatalf("partner login: %v", err)
	}
	claims, err := jwtManager.Parse(login.AccessToken)
	if err != nil {
		t.Fatalf("parse partner token: %v", err)
	}
	if claims.Type != auth.TokenTypePartner || claims.OrganizationID != org.ID {
		t.Fatalf("unexpected partner claims: %+v", claims)
	}

	// An email bound to one organization cannot be invited by another.
	other, err := orgSvc.Create(ctx, organizationdomain.CreateInput{Name: "Delta LLC"})
	if err != nil {
		t.Fatalf("create second organization: %v", err)
	}
	if _, err := svc.CreateInvite(ctx, partnerdomain.InviteInput{
		OrganizationID: other.ID,
		FullName:       "Chi Eze",
		Email:          "chi@gamma.test",
	}); !errors.Is(err, partnerdomain.ErrEmailBound) {
		t.Fatalf("expected ErrEmailBound, got %v", err)
	}
}
