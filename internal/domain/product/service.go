package product

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound = errors.New("loan product not found")
	ErrInvalid  = errors.New("invalid loan product input")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" || in.MaxTenorMonths < 1 {
		return nil, ErrInvalid
	}
	if in.MinAmount != nil && in.MaxAmount != nil && in.MinAmount.GreaterThan(*in.MaxAmount) {
		return nil, ErrInvalid
	}
	if in.RepaymentFrequency == "" {
		in.RepaymentFrequency = "MONTHLY"
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}

func (s *Service) List(ctx context.Context) ([]Entity, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Entity, error) {
	if in.MaxTenorMonths != nil && *in.MaxTenorMonths < 1 {
		return nil, ErrInvalid
	}
	p, err := s.repo.Update(ctx, id, in)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return p, err
}
