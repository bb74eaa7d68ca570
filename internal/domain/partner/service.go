package partner

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/auth"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrUserNotFound       = errors.New("partner user not found")
	ErrEmailBound         = errors.New("email belongs to another organization")
	ErrInvalidInvite      = errors.New("invite token invalid, used or expired")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password too short")
	ErrInvalid            = errors.New("invalid partner input")
)

type OrganizationGetter interface {
	GetByID(ctx context.Context, id int64) (*organization.Entity, error)
}

type LoginResult struct {
	AccessToken string `json:"access_token"`
	User        *User  `json:"user"`
}

type Service struct {
	repo           Repository
	orgs           OrganizationGetter
	jwt            *auth.JWTManager
	accessTTL      time.Duration
	inviteTTL      time.Duration
	minPasswordLen int
	frontendBase   string
	now            func() time.Time
}

func NewService(repo Repository, orgs OrganizationGetter, jwt *auth.JWTManager, accessTTL, inviteTTL time.Duration, minPasswordLen int, frontendBase string) *Service {
	return &Service{
		repo:           repo,
		orgs:           orgs,
		jwt:            jwt,
		accessTTL:      accessTTL,
		inviteTTL:      inviteTTL,
		minPasswordLen: minPasswordLen,
		frontendBase:   strings.TrimRight(frontendBase, "/"),
		now:            func() time.Time { return time.Now().UTC() },
	}
}

// CreateInvite upserts the partner user by email and issues a one-time
// invite token. The raw token appears only in the returned link; the
// stored row keeps its SHA-256 hash. An email already bound to a
// different organization is rejected.
func (s *Service) CreateInvite(ctx context.Context, in InviteInput) (*InviteResult, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.FullName = strings.TrimSpace(in.FullName)
	if in.Email == "" || in.FullName == "" {
		return nil, ErrInvalid
	}
	if in.Role == "" {
		in.Role = auth.RolePartnerAdmin
	}

	org, err := s.orgs.GetByID(ctx, in.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}

	user, err := s.repo.GetUserByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if user.OrganizationID != org.ID {
			return nil, ErrEmailBound
		}
		if user.FullName != in.FullName {
			user, err = s.repo.UpdateUserName(ctx, user.ID, in.FullName)
			if err != nil {
				return nil, err
			}
		}
	case errors.Is(err, pgx.ErrNoRows):
		user, err = s.repo.CreateUser(ctx, org.ID, in.FullName, in.Email, in.Role)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	rawToken := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	expiresAt := s.now().Add(s.inviteTTL)
	if _, err := s.repo.CreateInvite(ctx, user.ID, auth.HashInviteToken(rawToken), expiresAt); err != nil {
		return nil, err
	}

	return &InviteResult{
		User:      user,
		InviteURL: fmt.Sprintf("%s/partner/invite?token=%s", s.frontendBase, rawToken),
		ExpiresAt: expiresAt,
	}, nil
}

func (s *Service) validInvite(ctx context.Context, rawToken string) (*Invite, *User, error) {
	invite, err := s.repo.GetInviteByHash(ctx, auth.HashInviteToken(rawToken))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrInvalidInvite
		}
		return nil, nil, err
	}
	if invite.UsedAt != nil || s.now().After(invite.ExpiresAt) {
		return nil, nil, ErrInvalidInvite
	}
	user, err := s.repo.GetUserByID(ctx, invite.PartnerUserID)
	if err != nil {
		return nil, nil, err
	}
	return invite, user, nil
}

func (s *Service) ValidateInvite(ctx context.Context, rawToken string) (*InviteDetails, error) {
	_, user, err := s.validInvite(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	org, err := s.orgs.GetByID(ctx, user.OrganizationID)
	if err != nil {
		return nil, err
	}
	return &InviteDetails{Email: user.Email, FullName: user.FullName, OrganizationName: org.Name}, nil
}

// CompleteInvite sets the password, activates the user and burns the
// token.
func (s *Service) CompleteInvite(ctx context.Context, rawToken, password string) (*User, error) {
	invite, user, err := s.validInvite(ctx, rawToken)
	if err != nil {
		return nil, err
	}
	if len(password) < s.minPasswordLen {
		return nil, ErrWeakPassword
	}

	hashed, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user, err = s.repo.ActivateWithPassword(ctx, user.ID, hashed)
	if err != nil {
		return nil, err
	}
	if err := s.repo.MarkInviteUsed(ctx, invite.ID, s.now()); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || user.HashedPassword == "" || !auth.VerifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Mint(auth.Claims{
		UserID:         user.ID,
		Role:           user.Role,
		OrganizationID: user.OrganizationID,
		Type:           auth.TokenTypePartner,
	}, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: user}, nil
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, *organization.Entity, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, ErrUserNotFound
		}
		return nil, nil, err
	}
	org, err := s.orgs.GetByID(ctx, user.OrganizationID)
	if err != nil {
		return nil, nil, err
	}
	return user, org, nil
}

func (s *Service) ListUsers(ctx context.Context, organizationID int64) ([]User, error) {
	return s.repo.ListUsers(ctx, organizationID)
}

func (s *Service) SetUserActive(ctx context.Context, id int64, active bool) (*User, error) {
	user, err := s.repo.SetUserActive(ctx, id, active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *Service) DeleteUser(ctx context.Context, id int64) error {
	if _, err := s.repo.GetUserByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	return s.repo.DeleteUser(ctx, id)
}

func (s *Service) StaffLoans(ctx context.Context, organizationID int64) ([]StaffLoan, error) {
	return s.repo.StaffLoans(ctx, organizationID)
}

func (s *Service) MonthlyDue(ctx context.Context, organizationID int64, year, month int) (*MonthlyDue, error) {
	if year < 2000 || month < 1 || month > 12 {
		return nil, ErrInvalid
	}
	return s.repo.MonthlyDue(ctx, organizationID, year, month)
}
