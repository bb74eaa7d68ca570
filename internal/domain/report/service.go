package report

import (
	"context"
	"errors"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var ErrInvalidPeriod = errors.New("invalid report period")

type OrganizationGetter interface {
	GetByID(ctx context.Context, id int64) (*organization.Entity, error)
}

type Service struct {
	repo Repository
	orgs OrganizationGetter
}

func NewService(repo Repository, orgs OrganizationGetter) *Service {
	return &Service{repo: repo, orgs: orgs}
}

func (s *Service) checkPeriod(year, month int) error {
	if year < 2000 || month < 1 || month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}

func (s *Service) checkOrg(ctx context.Context, organizationID int64) error {
	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return organization.ErrNotFound
		}
		return err
	}
	return nil
}

// Monthly builds the per-loan monthly report. Outstanding figures are
// floored at zero per loan before totalling.
func (s *Service) Monthly(ctx context.Context, organizationID int64, year, month int) (*MonthlyReport, error) {
	if err := s.checkPeriod(year, month); err != nil {
		return nil, err
	}
	if err := s.checkOrg(ctx, organizationID); err != nil {
		return nil, err
	}

	rows, err := s.repo.MonthlyLoans(ctx, organizationID, year, month)
	if err != nil {
		return nil, err
	}

	out := &MonthlyReport{
		OrganizationID:   organizationID,
		Year:             year,
		Month:            month,
		Loans:            rows,
		TotalExpected:    decimal.Zero,
		TotalPaid:        decimal.Zero,
		TotalOutstanding: decimal.Zero,
	}
	for i := range rows {
		if rows[i].Outstanding.IsNegative() {
			rows[i].Outstanding = decimal.Zero
		}
		out.TotalExpected = out.TotalExpected.Add(rows[i].Expected)
		out.TotalPaid = out.TotalPaid.Add(rows[i].Paid)
		out.TotalOutstanding = out.TotalOutstanding.Add(rows[i].Outstanding)
	}
	return out, nil
}

func (s *Service) Legacy(ctx context.Context, organizationID int64, year, month int) (*LegacyReport, error) {
	if err := s.checkPeriod(year, month); err != nil {
		return nil, err
	}
	if err := s.checkOrg(ctx, organizationID); err != nil {
		return nil, err
	}
	return s.repo.Legacy(ctx, organizationID, year, month)
}

func (s *Service) Dashboard(ctx context.Context, year, month int) (*DashboardSummary, error) {
	if err := s.checkPeriod(year, month); err != nil {
		return nil, err
	}
	return s.repo.Dashboard(ctx, year, month)
}
