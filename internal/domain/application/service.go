package application

import (
	"context"
	"errors"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loanlink"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound         = errors.New("loan application not found")
	ErrInvalid          = errors.New("invalid application input")
	ErrInactiveProduct  = errors.New("loan product inactive")
	ErrLinkMismatch     = errors.New("link does not match organization or product")
	ErrActiveLoan       = errors.New("customer has an active loan")
	ErrOpenApplication  = errors.New("customer has a pending application")
	ErrAmountOutOfRange = errors.New("requested amount outside product bounds")
	ErrUnaffordable     = errors.New("requested amount exceeds affordability limit")
	ErrMissingNetPay    = errors.New("net monthly pay required")
	ErrStatusNotAllowed = errors.New("status transition not allowed")
	ErrApprovedAmount   = errors.New("approval requires a positive approved amount")
	ErrAlreadyDisbursed = errors.New("application already disbursed")
)

// Affordability cap: requested <= net_pay * tenor * 0.75.
var affordabilityFactor = decimal.RequireFromString("0.75")

type CustomerDirectory interface {
	Get(ctx context.Context, id int64) (*customer.Entity, error)
	Create(ctx context.Context, in customer.CreateInput) (*customer.Entity, error)
	FindInOrg(ctx context.Context, organizationID int64, bvn, staffID string) (*customer.Entity, error)
	UpdateEmployment(ctx context.Context, id int64, in customer.CreateInput) (*customer.Entity, error)
	EnsureWallet(ctx context.Context, id int64) (*customer.Entity, error)
}

type ProductGetter interface {
	GetByID(ctx context.Context, id int64) (*product.Entity, error)
}

type LinkGetter interface {
	GetByID(ctx context.Context, id int64) (*loanlink.Entity, error)
}

type LinkResolver interface {
	ValidLink(ctx context.Context, token string) (*loanlink.Entity, error)
}

type LoanChecker interface {
	HasActiveLoan(ctx context.Context, customerID int64) (bool, error)
}

type Service struct {
	repo      Repository
	customers CustomerDirectory
	products  ProductGetter
	links     LinkGetter
	resolver  LinkResolver
	loans     LoanChecker
	now       func() time.Time
}

func NewService(repo Repository, customers CustomerDirectory, products ProductGetter, links LinkGetter, resolver LinkResolver, loans LoanChecker) *Service {
	return &Service{
		repo:      repo,
		customers: customers,
		products:  products,
		links:     links,
		resolver:  resolver,
		loans:     loans,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (*Entity, error) {
	if in.TenorMonths < 1 || !in.RequestedAmount.IsPositive() {
		return nil, ErrInvalid
	}

	cust, err := s.customers.Get(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}

	prod, err := s.products.GetByID(ctx, in.ProductID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, err
	}
	if !prod.IsActive {
		return nil, ErrInactiveProduct
	}

	if in.LinkID != nil {
		link, err := s.links.GetByID(ctx, *in.LinkID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, loanlink.ErrNotFound
			}
			return nil, err
		}
		if !link.IsActive {
			return nil, loanlink.ErrLinkUnavailable
		}
		if link.ProductID != prod.ID {
			return nil, ErrLinkMismatch
		}
		if cust.OrganizationID == nil || *cust.OrganizationID != link.OrganizationID {
			return nil, ErrLinkMismatch
		}
	}

	return s.repo.Create(ctx, in)
}

// SubmitPublic handles the unauthenticated application form behind a
// loan link: upsert the applicant within the link's organization, then
// apply the eligibility and affordability rules.
func (s *Service) SubmitPublic(ctx context.Context, token string, in PublicInput) (*Entity, error) {
	link, err := s.resolver.ValidLink(ctx, token)
	if err != nil {
		return nil, err
	}

	prod, err := s.products.GetByID(ctx, link.ProductID)
	if err != nil {
		return nil, err
	}
	if !prod.IsActive {
		return nil, ErrInactiveProduct
	}

	if in.TenorMonths < 1 || !in.RequestedAmount.IsPositive() {
		return nil, ErrInvalid
	}
	if in.NetMonthlyPay == nil || !in.NetMonthlyPay.IsPositive() {
		return nil, ErrMissingNetPay
	}

	custInput := customer.CreateInput{
		OrganizationID: &link.OrganizationID,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		PhoneNumber:    in.PhoneNumber,
		BVN:            in.BVN,
		StaffID:        in.StaffID,
		DateOfBirth:    in.DateOfBirth,
		EmployerName:   in.EmployerName,
		NetMonthlyPay:  in.NetMonthlyPay,
		BankName:       in.BankName,
		BankAccount:    in.BankAccount,
	}

	cust, err := s.customers.FindInOrg(ctx, link.OrganizationID, in.BVN, in.StaffID)
	switch {
	case err == nil:
		cust, err = s.customers.UpdateEmployment(ctx, cust.ID, custInput)
		if err != nil {
			return nil, err
		}
	case errors.Is(err, customer.ErrNotFound):
		cust, err = s.customers.Create(ctx, custInput)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	active, err := s.loans.HasActiveLoan(ctx, cust.ID)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, ErrActiveLoan
	}
	open, err := s.repo.HasOpenApplication(ctx, cust.ID)
	if err != nil {
		return nil, err
	}
	if open {
		return nil, ErrOpenApplication
	}

	if prod.MinAmount != nil && in.RequestedAmount.LessThan(*prod.MinAmount) {
		return nil, ErrAmountOutOfRange
	}
	if prod.MaxAmount != nil && in.RequestedAmount.GreaterThan(*prod.MaxAmount) {
		return nil, ErrAmountOutOfRange
	}

	limit := in.NetMonthlyPay.Mul(decimal.NewFromInt32(in.TenorMonths)).Mul(affordabilityFactor)
	if in.RequestedAmount.GreaterThan(limit) {
		return nil, ErrUnaffordable
	}

	return s.repo.Create(ctx, CreateInput{
		CustomerID:      cust.ID,
		ProductID:       prod.ID,
		LinkID:          &link.ID,
		RequestedAmount: in.RequestedAmount,
		TenorMonths:     in.TenorMonths,
		Purpose:         in.Purpose,
	})
}

func (s *Service) Get(ctx context.Context, id int64) (*Entity, error) {
	app, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return app, err
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Entity, error) {
	return s.repo.List(ctx, f)
}

func (s *Service) HistoryByCustomer(ctx context.Context, customerID int64) ([]Entity, error) {
	if _, err := s.customers.Get(ctx, customerID); err != nil {
		return nil, err
	}
	return s.repo.ListByCustomer(ctx, customerID)
}

// UpdateStatus moves an application between review states. DISBURSED is
// reserved for the disbursement flow; any evidence of disbursement
// locks the application.
func (s *Service) UpdateStatus(ctx context.Context, id int64, in StatusInput) (*Entity, error) {
	switch in.Status {
	case StatusPending, StatusUnderReview, StatusApproved, StatusRejected:
	default:
		return nil, ErrStatusNotAllowed
	}

	app, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if app.Status == StatusDisbursed {
		return nil, ErrAlreadyDisbursed
	}
	disbursed, err := s.repo.HasDisbursementEvidence(ctx, id)
	if err != nil {
		return nil, err
	}
	if disbursed {
		return nil, ErrAlreadyDisbursed
	}

	var approved *decimal.Decimal
	var decidedAt *time.Time
	if in.Status == StatusApproved {
		if in.ApprovedAmount == nil || !in.ApprovedAmount.IsPositive() {
			return nil, ErrApprovedAmount
		}
		approved = in.ApprovedAmount
		if _, err := s.customers.EnsureWallet(ctx, app.CustomerID); err != nil {
			return nil, err
		}
	}
	if in.Status == StatusApproved || in.Status == StatusRejected {
		t := s.now()
		decidedAt = &t
	}

	return s.repo.UpdateStatus(ctx, id, in.Status, approved, decidedAt)
}
