package customer

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotFound       = errors.New("customer not found")
	ErrInvalid        = errors.New("invalid customer input")
	ErrAccountNumbers = errors.New("could not allocate a unique account number")
)

const accountNumberAttempts = 10

type Service struct {
	repo          Repository
	accountPrefix string
}

func NewService(repo Repository, accountPrefix string) *Service {
	return &Service{repo: repo, accountPrefix: accountPrefix}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.LastName) == "" {
		return nil, ErrInvalid
	}
	return s.repo.Create(ctx, in)
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	c, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// List returns all customers, or only those in the given organization
// when organizationID is non-zero.
func (s *Service) List(ctx context.Context, organizationID int64) ([]Entity, error) {
	return s.repo.List(ctx, organizationID)
}

func (s *Service) GetByStaffID(ctx context.Context, organizationID int64, staffID string) (*Entity, error) {
	c, err := s.repo.GetByStaffIDInOrg(ctx, organizationID, staffID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// FindInOrg locates an existing customer in the organization by BVN
// first, then by staff id. Either identifier may be empty.
func (s *Service) FindInOrg(ctx context.Context, organizationID int64, bvn, staffID string) (*Entity, error) {
	if bvn != "" {
		c, err := s.repo.GetByBVNInOrg(ctx, organizationID, bvn)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	if staffID != "" {
		c, err := s.repo.GetByStaffIDInOrg(ctx, organizationID, staffID)
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
	}
	return nil, ErrNotFound
}

func (s *Service) UpdateEmployment(ctx context.Context, id int64, in CreateInput) (*Entity, error) {
	c, err := s.repo.UpdateEmployment(ctx, id, in)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return c, err
}

// EnsureWallet assigns an internal account number if the customer does
// not already have one. 10 digits, fixed prefix, bounded retries on
// collision.
func (s *Service) EnsureWallet(ctx context.Context, id int64) (*Entity, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.NUNAccountNumber != "" {
		return c, nil
	}

	for i := 0; i < accountNumberAttempts; i++ {
		number, err := s.randomAccountNumber()
		if err != nil {
			return nil, err
		}
		taken, err := s.repo.AccountNumberExists(ctx, number)
		if err != nil {
			return nil, err
		}
		if taken {
			continue
		}
		return s.repo.SetAccountNumber(ctx, id, number)
	}
	return nil, ErrAccountNumbers
}

func (s *Service) randomAccountNumber() (string, error) {
	digits := 10 - len(s.accountPrefix)
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(digits)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%0*d", s.accountPrefix, digits, n), nil
}
