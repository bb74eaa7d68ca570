package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/db"
	"github.com/jackc/pgx/v5"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrWeakPassword       = errors.New("password too short")
	ErrBootstrapDisabled  = errors.New("bootstrap disabled")
	ErrAdminExists        = errors.New("admin already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrWrongPassword      = errors.New("current password incorrect")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

type Repository interface {
	CreateUser(ctx context.Context, fullName, email, hashedPassword, role string) (*db.User, error)
	GetUserByID(ctx context.Context, userID int64) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	ListUsers(ctx context.Context) ([]*db.User, error)
	CountAdmins(ctx context.Context) (int64, error)
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	SetUserActive(ctx context.Context, userID int64, active bool) (*db.User, error)
}

type Service struct {
	repo             Repository
	jwt              *JWTManager
	accessTTL        time.Duration
	resetTTL         time.Duration
	minPasswordLen   int
	bootstrapEnabled bool
	resetBaseURL     string
}

type LoginResult struct {
	AccessToken string
	User        *db.User
}

func NewService(repo Repository, jwt *JWTManager, accessTTL, resetTTL time.Duration, minPasswordLen int, bootstrapEnabled bool, resetBaseURL string) *Service {
	return &Service{
		repo:             repo,
		jwt:              jwt,
		accessTTL:        accessTTL,
		resetTTL:         resetTTL,
		minPasswordLen:   minPasswordLen,
		bootstrapEnabled: bootstrapEnabled,
		resetBaseURL:     resetBaseURL,
	}
}

// Login authenticates a staff user. Unknown email, bad password and
// deactivated account all collapse into ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive || !VerifyPassword(password, user.HashedPassword) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.Mint(Claims{UserID: user.ID, Role: user.Role, Type: TokenTypeStaff}, s.accessTTL)
	if err != nil {
		return nil, err
	}
	return &LoginResult{AccessToken: token, User: user}, nil
}

func (s *Service) BootstrapAdmin(ctx context.Context, fullName, email, password string) (*db.User, error) {
	if !s.bootstrapEnabled {
		return nil, ErrBootstrapDisabled
	}
	n, err := s.repo.CountAdmins(ctx)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, ErrAdminExists
	}
	return s.createUser(ctx, fullName, email, password, RoleAdmin)
}

func (s *Service) CreateUser(ctx context.Context, fullName, email, password, role string) (*db.User, error) {
	return s.createUser(ctx, fullName, email, password, role)
}

func (s *Service) createUser(ctx context.Context, fullName, email, password, role string) (*db.User, error) {
	if len(password) < s.minPasswordLen {
		return nil, ErrWeakPassword
	}
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	hashed, err := HashPassword(password)
	if err != nil {
		return nil, err
	}
	return s.repo.CreateUser(ctx, fullName, email, hashed, role)
}

func (s *Service) ListUsers(ctx context.Context) ([]*db.User, error) {
	return s.repo.ListUsers(ctx)
}

func (s *Service) Me(ctx context.Context, userID int64) (*db.User, error) {
	user, err := s.repo.GetUserByID(ctx, userID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *Service) SetUserActive(ctx context.Context, userID int64, active bool) (*db.User, error) {
	user, err := s.repo.SetUserActive(ctx, userID, active)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return user, err
}

func (s *Service) ChangePassword(ctx context.Context, userID int64, current, next string) error {
	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	if !VerifyPassword(current, user.HashedPassword) {
		return ErrWrongPassword
	}
	if len(next) < s.minPasswordLen {
		return ErrWeakPassword
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, user.ID, hashed)
}

// AdminResetPassword sets a user's password without knowing the old one.
func (s *Service) AdminResetPassword(ctx context.Context, userID int64, next string) error {
	if len(next) < s.minPasswordLen {
		return ErrWeakPassword
	}
	if _, err := s.repo.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrUserNotFound
		}
		return err
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hashed)
}

// ForgotPassword mints a short-lived reset token and returns the reset link.
// It never discloses whether the email exists: unknown emails return an
// empty link and nil error so the handler can answer uniformly.
func (s *Service) ForgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", err
	}

	token, err := s.jwt.Mint(Claims{UserID: user.ID, Email: user.Email, Type: TokenTypeReset}, s.resetTTL)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s?token=%s", s.resetBaseURL, token), nil
}

func (s *Service) ResetPassword(ctx context.Context, token, next string) error {
	claims, err := s.jwt.Parse(token)
	if err != nil || claims.Type != TokenTypeReset {
		return ErrInvalidResetToken
	}
	if len(next) < s.minPasswordLen {
		return ErrWeakPassword
	}
	hashed, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, claims.UserID, hashed)
}
