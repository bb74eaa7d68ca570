package remittance

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var (
	ErrTransactionNotFound = errors.New("inbound transaction not found")
	ErrAccountNotFound     = errors.New("remittance account not found")
	ErrAlreadyMatched      = errors.New("transaction already matched")
	ErrNothingToReverse    = errors.New("transaction has nothing to reverse")
	ErrDuplicateReference  = errors.New("transaction reference already exists")
	ErrMissingReference    = errors.New("transaction reference is required")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrAccountNumbers      = errors.New("could not allocate a unique account number")
)

const (
	defaultBankName = "NUN Microfinance Bank"
	defaultProvider = "INTERNAL_VIRTUAL"

	accountNumberAttempts = 10
)

// Event types published to the live admin feed.
const (
	EventIngested = "remittance.ingested"
	EventApplied  = "remittance.applied"
	EventReversed = "remittance.reversed"
)

type Event struct {
	Type           string          `json:"type"`
	TransactionID  int64           `json:"transaction_id"`
	OrganizationID int64           `json:"organization_id"`
	Reference      string          `json:"reference"`
	Amount         decimal.Decimal `json:"amount"`
	MatchStatus    string          `json:"match_status"`
	At             time.Time       `json:"at"`
}

// Publisher fans events out to connected dashboards. Implementations
// must not block.
type Publisher interface {
	Publish(event Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}

type OrganizationGetter interface {
	GetByID(ctx context.Context, id int64) (*organization.Entity, error)
}

type Service struct {
	repo          Repository
	orgs          OrganizationGetter
	publisher     Publisher
	accountPrefix string
	now           func() time.Time
}

func NewService(repo Repository, orgs OrganizationGetter, publisher Publisher, accountPrefix string) *Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	return &Service{
		repo:          repo,
		orgs:          orgs,
		publisher:     publisher,
		accountPrefix: accountPrefix,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CreateAccount returns the organization's active remittance account,
// creating one if none exists. With ForceNew the existing actives are
// retired first.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*Account, error) {
	org, err := s.orgs.GetByID(ctx, in.OrganizationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}

	existing, err := s.repo.GetActiveAccount(ctx, org.ID)
	switch {
	case err == nil:
		if !in.ForceNew {
			return existing, nil
		}
		if err := s.repo.DeactivateAccounts(ctx, org.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, err
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
		name := fmt.Sprintf("%s - Loan Remittance", org.Name)
		return s.repo.CreateAccount(ctx, org.ID, number, name, defaultBankName, defaultProvider)
	}
	return nil, ErrAccountNumbers
}

func (s *Service) ListAccounts(ctx context.Context, organizationID int64) ([]Account, error) {
	return s.repo.ListAccounts(ctx, organizationID)
}

func (s *Service) ActiveAccount(ctx context.Context, organizationID int64) (*Account, error) {
	acct, err := s.repo.GetActiveAccount(ctx, organizationID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	return acct, err
}

// Ingest records an inbound remittance and applies it immediately. The
// transaction stays UNMATCHED when the organization has nothing
// outstanding.
func (s *Service) Ingest(ctx context.Context, in IngestInput) (*ApplyResult, error) {
	tx, err := s.createTransaction(ctx, in)
	if err != nil {
		return nil, err
	}
	s.publish(EventIngested, tx)

	result, err := s.Apply(ctx, tx.ID)
	if err != nil {
		if errors.Is(err, ErrAlreadyMatched) {
			// A concurrent applier got there first.
			tx, getErr := s.repo.GetTransaction(ctx, tx.ID)
			if getErr != nil {
				return nil, getErr
			}
			allocs, getErr := s.repo.ListAllocations(ctx, tx.ID)
			if getErr != nil {
				return nil, getErr
			}
			return &ApplyResult{Transaction: tx, Allocations: allocs}, nil
		}
		return nil, err
	}
	return result, nil
}

// Remit records a partner-initiated remittance with a bank-generated
// reference. Allocation is left to the admin side or the worker.
func (s *Service) Remit(ctx context.Context, organizationID int64, amount decimal.Decimal, narration string) (*Transaction, error) {
	tx, err := s.createTransaction(ctx, IngestInput{
		OrganizationID: organizationID,
		Amount:         amount,
		Reference:      NewRemitReference(s.now()),
		Narration:      narration,
	})
	if err != nil {
		return nil, err
	}
	s.publish(EventIngested, tx)
	return tx, nil
}

func (s *Service) createTransaction(ctx context.Context, in IngestInput) (*Transaction, error) {
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if _, err := s.orgs.GetByID(ctx, in.OrganizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}

	in.Reference = strings.TrimSpace(in.Reference)
	if in.Reference == "" {
		return nil, ErrMissingReference
	}
	exists, err := s.repo.ReferenceExists(ctx, in.OrganizationID, in.Reference)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateReference
	}

	var accountID *int64
	if acct, err := s.repo.GetActiveAccount(ctx, in.OrganizationID); err == nil {
		accountID = &acct.ID
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	in.Amount = in.Amount.Round(2)
	return s.repo.CreateTransaction(ctx, in, accountID)
}

// Apply allocates an UNMATCHED transaction across the organization's
// unpaid repayments, oldest due first.
func (s *Service) Apply(ctx context.Context, transactionID int64) (*ApplyResult, error) {
	result, err := s.repo.Apply(ctx, transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	if result.Transaction.MatchStatus == StatusMatched {
		s.publish(EventApplied, result.Transaction)
	}
	return result, nil
}

// Reverse undoes a previously applied transaction by replaying its
// stored allocations in reverse, then parks it as DISPUTED.
func (s *Service) Reverse(ctx context.Context, transactionID int64) (*Transaction, error) {
	tx, err := s.repo.Reverse(ctx, transactionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTransactionNotFound
		}
		return nil, err
	}
	s.publish(EventReversed, tx)
	return tx, nil
}

func (s *Service) Transaction(ctx context.Context, id int64) (*Transaction, error) {
	tx, err := s.repo.GetTransaction(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrTransactionNotFound
	}
	return tx, err
}

func (s *Service) Transactions(ctx context.Context, organizationID int64) ([]TransactionView, error) {
	return s.repo.ListTransactions(ctx, organizationID)
}

func (s *Service) Allocations(ctx context.Context, transactionID int64) ([]Allocation, error) {
	if _, err := s.Transaction(ctx, transactionID); err != nil {
		return nil, err
	}
	return s.repo.ListAllocations(ctx, transactionID)
}

func (s *Service) Summary(ctx context.Context, organizationID int64) (*Summary, error) {
	if _, err := s.orgs.GetByID(ctx, organizationID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, organization.ErrNotFound
		}
		return nil, err
	}
	return s.repo.Summary(ctx, organizationID)
}

// UnmatchedIDs feeds the background applier.
func (s *Service) UnmatchedIDs(ctx context.Context, limit int32) ([]int64, error) {
	return s.repo.ListUnmatchedIDs(ctx, limit)
}

func (s *Service) publish(eventType string, tx *Transaction) {
	s.publisher.Publish(Event{
		Type:           eventType,
		TransactionID:  tx.ID,
		OrganizationID: tx.OrganizationID,
		Reference:      tx.Reference,
		Amount:         tx.Amount,
		MatchStatus:    tx.MatchStatus,
		At:             s.now(),
	})
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

// NewRemitReference generates RMT-<unix ts>-<8 hex>.
func NewRemitReference(now time.Time) string {
	buf := make([]byte, 4)
	_, _ = rand.Read(buf)
	return fmt.Sprintf("RMT-%d-%s", now.Unix(), hex.EncodeToString(buf))
}
