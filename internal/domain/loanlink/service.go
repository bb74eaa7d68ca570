package loanlink

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound        = errors.New("loan link not found")
	ErrInactiveOrg     = errors.New("organization inactive")
	ErrInactiveProduct = errors.New("loan product inactive")
	ErrLinkUnavailable = errors.New("loan link inactive or expired")
)

type OrganizationGetter interface {
	GetByID(ctx context.Context, id int64) (*organization.Entity, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*product.Entity, error)
}

type Service struct {
	repo     Repository
	orgRepo  OrganizationGetter
	prodRepo ProductGetter
	now      func() time.Time
}

func NewService(repo Repository, orgRepo OrganizationGetter, prodRepo ProductGetter) *Service {
	return &Service{
		repo:     repo,
		orgRepo:  orgRepo,
		prodRepo: prodRepo,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	org, err := s.orgRepo.GetByID(ctx, in.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}
	if !org.IsActive {
		return nil, ErrInactiveOrg
	}

	prod, err := s.prodRepo.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	if !prod.IsActive {
		return nil, ErrInactiveProduct
	}

	token := strings.ReplaceAll(uuid.NewString(), "-", "")
	return s.repo.Create(ctx, in, token)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	link, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return link, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) Deactivate(ctx context.Context, id int64) (*Entity, error) {
	link, err := s.repo.SetActive(ctx, id, false)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return link, err
}

// Resolve validates a public link token for the unauthenticated
// application form.
func (s *Service) Resolve(ctx context.Context, token string) (*PublicView, error) {
	link, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !link.IsActive || (link.ExpiresAt != nil && s.now().After(*link.ExpiresAt)) {
		return nil, ErrLinkUnavailable
	}
	return s.repo.ResolvePublic(ctx, token)
}

// ValidLink returns the link itself after the same availability checks,
// for the public submission path.
func (s *Service) ValidLink(ctx context.Context, token string) (*Entity, error) {
	link, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !link.IsActive || (link.ExpiresAt != nil && s.now().After(*link.ExpiresAt)) {
		return nil, ErrLinkUnavailable
	}
	return link, nil
}
