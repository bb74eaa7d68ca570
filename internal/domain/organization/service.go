package organization

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound  = errors.New("organization not found")
	ErrNameTaken = errors.New("organization name already exists")
	ErrInvalid   = errors.New("invalid organization input")
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, ErrInvalid
	}
	if _, err := s.repo.GetByName(ctx, in.Name); err == nil {
		return nil, ErrNameTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	org, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return org, err
}

func (s *Service) List(ctx context.Context) ([]Entity, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*Entity, error) {
	if in.Name != nil {
		trimmed := strings.TrimSpace(*in.Name)
		if trimmed == "" {
			return nil, ErrInvalid
		}
		if existing, err := s.repo.GetByName(ctx, trimmed); err == nil && existing.ID != id {
			return nil, ErrNameTaken
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		in.Name = &trimmed
	}
	org, err := s.repo.Update(ctx, id, in)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return org, err
}

func (s *Service) SetActive(ctx context.Context, id int64, active bool) (*Entity, error) {
	return s.Update(ctx, id, UpdateInput{IsActive: &active})
}
