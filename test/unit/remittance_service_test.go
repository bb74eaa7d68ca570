package unit

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	organizationdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type orgGetterMock struct {
	orgs map[int64]*organizationdomain.Entity
}

func (m *orgGetterMock) GetByID(_ context.Context, id int64) (*organizationdomain.Entity, error) {
	if org, ok := m.orgs[id]; ok {
		return org, nil
	}
	return nil, pgx.ErrNoRows
}

type publisherMock struct {
	events []remittance.Event
}

func (m *publisherMock) Publish(event remittance.Event) {
	m.events = append(m.events, event)
}

// remitRepoMock keeps transactions, allocations and repayment state in
// memory and reuses the planner for Apply/Reverse, mirroring what the
// database transaction does.
type remitRepoMock struct {
	accounts     []remittance.Account
	transactions map[int64]*remittance.Transaction
	allocations  map[int64][]remittance.Allocation
	repayments   []remittance.RepaymentState
	nextTxID     int64
	nextAllocID  int64
}

func newRemitRepoMock() *remitRepoMock {
	return &remitRepoMock{
		transactions: map[int64]*remittance.Transaction{},
		allocations:  map[int64][]remittance.Allocation{},
	}
}

func (m *remitRepoMock) CreateAccount(_ context.Context, organizationID int64, accountNumber, accountName, bankName, provider string) (*remittance.Account, error) {
	acct := remittance.Account{
		ID:             int64(len(m.accounts) + 1),
		OrganizationID: organizationID,
		AccountNumber:  accountNumber,
		AccountName:    accountName,
		BankName:       bankName,
		Provider:       provider,
		IsActive:       true,
		CreatedAt:      time.Now().UTC(),
	}
	m.accounts = append(m.accounts, acct)
	return &acct, nil
}

func (m *remitRepoMock) GetActiveAccount(_ context.Context, organizationID int64) (*remittance.Account, error) {
	for i := range m.accounts {
		if m.accounts[i].OrganizationID == organizationID && m.accounts[i].IsActive {
			cp := m.accounts[i]
			return &cp, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *remitRepoMock) ListAccounts(_ context.Context, organizationID int64) ([]remittance.Account, error) {
	var out []remittance.Account
	for _, acct := range m.accounts {
		if organizationID == 0 || acct.OrganizationID == organizationID {
			out = append(out, acct)
		}
	}
	return out, nil
}

func (m *remitRepoMock) DeactivateAccounts(_ context.Context, organizationID int64) error {
	for i := range m.accounts {
		if m.accounts[i].OrganizationID == organizationID {
			m.accounts[i].IsActive = false
		}
	}
	return nil
}

func (m *remitRepoMock) AccountNumberExists(_ context.Context, accountNumber string) (bool, error) {
	for _, acct := range m.accounts {
		if acct.AccountNumber == accountNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m *remitRepoMock) CreateTransaction(_ context.Context, in remittance.IngestInput, accountID *int64) (*remittance.Transaction, error) {
	m.nextTxID++
	tx := &remittance.Transaction{
		ID:             m.nextTxID,
		OrganizationID: in.OrganizationID,
		AccountID:      accountID,
		Amount:         in.Amount,
		Reference:      in.Reference,
		Narration:      in.Narration,
		MatchStatus:    remittance.StatusUnmatched,
		ReceivedAt:     time.Now().UTC(),
	}
	m.transactions[tx.ID] = tx
	return tx, nil
}

func (m *remitRepoMock) GetTransaction(_ context.Context, id int64) (*remittance.Transaction, error) {
	if tx, ok := m.transactions[id]; ok {
		cp := *tx
		return &cp, nil
	}
	return nil, pgx.ErrNoRows
}

func (m *remitRepoMock) ReferenceExists(_ context.Context, organizationID int64, reference string) (bool, error) {
	for _, tx := range m.transactions {
		if tx.OrganizationID == organizationID && tx.Reference == reference {
			return true, nil
		}
	}
	return false, nil
}

func (m *remitRepoMock) ListTransactions(_ context.Context, organizationID int64) ([]remittance.TransactionView, error) {
	var out []remittance.TransactionView
	for _, tx := range m.transactions {
		if organizationID != 0 && tx.OrganizationID != organizationID {
			continue
		}
		applied := decimal.Zero
		for _, alloc := range m.allocations[tx.ID] {
			applied = applied.Add(alloc.AmountApplied)
		}
		out = append(out, remittance.TransactionView{
			Transaction:       *tx,
			AppliedAmount:     applied,
			UnallocatedAmount: tx.Amount.Sub(applied),
		})
	}
	return out, nil
}

func (m *remitRepoMock) ListAllocations(_ context.Context, transactionID int64) ([]remittance.Allocation, error) {
	return m.allocations[transactionID], nil
}

func (m *remitRepoMock) ListUnmatchedIDs(_ context.Context, limit int32) ([]int64, error) {
	var out []int64
	for id, tx := range m.transactions {
		if tx.MatchStatus == remittance.StatusUnmatched && int32(len(out)) < limit {
			out = append(out, id)
		}
	}
	return out, nil
}

func (m *remitRepoMock) Apply(_ context.Context, transactionID int64) (*remittance.ApplyResult, error) {
	tx, ok := m.transactions[transactionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if tx.MatchStatus == remittance.StatusMatched {
		return nil, remittance.ErrAlreadyMatched
	}

	plan := remittance.PlanApplication(tx.Amount, m.repayments)
	for _, p := range plan {
		for i := range m.repayments {
			if m.repayments[i].ID == p.RepaymentID {
				m.repayments[i].AmountPaid = p.NewAmountPaid
			}
		}
		m.nextAllocID++
		m.allocations[tx.ID] = append(m.allocations[tx.ID], remittance.Allocation{
			ID:            m.nextAllocID,
			TransactionID: tx.ID,
			RepaymentID:   p.RepaymentID,
			AmountApplied: p.AmountApplied,
			CreatedAt:     time.Now().UTC(),
		})
	}
	if len(plan) > 0 {
		now := time.Now().UTC()
		tx.MatchStatus = remittance.StatusMatched
		tx.MatchedAt = &now
	}
	cp := *tx
	return &remittance.ApplyResult{Transaction: &cp, Allocations: m.allocations[tx.ID]}, nil
}

func (m *remitRepoMock) Reverse(_ context.Context, transactionID int64) (*remittance.Transaction, error) {
	tx, ok := m.transactions[transactionID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	allocs := m.allocations[transactionID]
	if len(allocs) == 0 {
		return nil, remittance.ErrNothingToReverse
	}

	state := map[int64]remittance.RepaymentState{}
	for _, rep := range m.repayments {
		state[rep.ID] = rep
	}
	for _, ch := range remittance.PlanReversal(allocs, state) {
		for i := range m.repayments {
			if m.repayments[i].ID == ch.RepaymentID {
				m.repayments[i].AmountPaid = ch.NewAmountPaid
			}
		}
	}
	delete(m.allocations, transactionID)
	tx.MatchStatus = remittance.StatusDisputed
	tx.MatchedAt = nil
	cp := *tx
	return &cp, nil
}

func (m *remitRepoMock) Summary(_ context.Context, organizationID int64) (*remittance.Summary, error) {
	s := &remittance.Summary{OrganizationID: organizationID, TotalRemitted: decimal.Zero, TotalApplied: decimal.Zero, UnallocatedBalance: decimal.Zero, TotalOutstanding: decimal.Zero}
	// Every inbound transaction counts as remitted, DISPUTED included;
	// a reversal moves money back to the unallocated balance.
	for _, tx := range m.transactions {
		if tx.OrganizationID != organizationID {
			continue
		}
		s.TotalRemitted = s.TotalRemitted.Add(tx.Amount)
		s.TransactionCount++
		switch tx.MatchStatus {
		case remittance.StatusMatched:
			s.MatchedCount++
		case remittance.StatusUnmatched:
			s.UnmatchedCount++
		case remittance.StatusDisputed:
			s.DisputedCount++
		}
	}
	for txID, allocs := range m.allocations {
		if m.transactions[txID].OrganizationID != organizationID {
			continue
		}
		for _, alloc := range allocs {
			s.TotalApplied = s.TotalApplied.Add(alloc.AmountApplied)
		}
	}
	s.UnallocatedBalance = s.TotalRemitted.Sub(s.TotalApplied)
	for _, rep := range m.repayments {
		s.TotalOutstanding = s.TotalOutstanding.Add(rep.Outstanding())
	}
	return s, nil
}

func newRemitFixture(repayments []remittance.RepaymentState) (*remittance.Service, *remitRepoMock, *publisherMock) {
	repo := newRemitRepoMock()
	repo.repayments = repayments
	pub := &publisherMock{}
	orgs := &orgGetterMock{orgs: map[int64]*organizationdomain.Entity{
		9:  {ID: 9, Name: "Acme Ltd", IsActive: true},
		10: {ID: 10, Name: "Beta Corp", IsActive: true},
	}}
	return remittance.NewService(repo, orgs, pub, "248"), repo, pub
}

func TestIngestAppliesImmediately(t *testing.T) {
	svc, _, pub := newRemitFixture([]remittance.RepaymentState{
		{ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("0")},
		{ID: 2, AmountDue: dec("100.00"), AmountPaid: dec("0")},
	})

	result, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("150.00"),
		Reference:      "BANK-001",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Transaction.MatchStatus != remittance.StatusMatched {
		t.Fatalf("status %s, want MATCHED", result.Transaction.MatchStatus)
	}
	if len(result.Allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(result.Allocations))
	}

	var types []string
	for _, ev := range pub.events {
		types = append(types, ev.Type)
	}
	if len(types) != 2 || types[0] != remittance.EventIngested || types[1] != remittance.EventApplied {
		t.Fatalf("unexpected event sequence: %v", types)
	}
}

func TestIngestStaysUnmatchedWithNothingOutstanding(t *testing.T) {
	svc, _, pub := newRemitFixture(nil)

	result, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("150.00"),
		Reference:      "BANK-002",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Transaction.MatchStatus != remittance.StatusUnmatched {
		t.Fatalf("status %s, want UNMATCHED", result.Transaction.MatchStatus)
	}
	if len(result.Allocations) != 0 {
		t.Fatalf("expected no allocations, got %d", len(result.Allocations))
	}
	for _, ev := range pub.events {
		if ev.Type == remittance.EventApplied {
			t.Fatalf("applied event published for unmatched transaction")
		}
	}
}

func TestIngestRejectsDuplicateReferenceAndBadAmount(t *testing.T) {
	svc, _, _ := newRemitFixture(nil)

	in := remittance.IngestInput{OrganizationID: 9, Amount: dec("50.00"), Reference: "BANK-003"}
	if _, err := svc.Ingest(context.Background(), in); err != nil {
		t.Fatalf("first ingest: %v", err)
	}
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, remittance.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}

	in.Reference = "BANK-004"
	in.Amount = dec("0")
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, remittance.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	in.Amount = dec("10.00")
	in.OrganizationID = 404
	if _, err := svc.Ingest(context.Background(), in); !errors.Is(err, organizationdomain.ErrNotFound) {
		t.Fatalf("expected organization not found, got %v", err)
	}
}

func TestIngestRejectsMissingReference(t *testing.T) {
	svc, _, _ := newRemitFixture(nil)

	_, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("50.00"),
		Reference:      "   ",
	})
	if !errors.Is(err, remittance.ErrMissingReference) {
		t.Fatalf("expected ErrMissingReference, got %v", err)
	}
}

func TestReferenceUniquePerOrganization(t *testing.T) {
	svc, _, _ := newRemitFixture(nil)

	if _, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("50.00"),
		Reference:      "SHARED-REF",
	}); err != nil {
		t.Fatalf("first org ingest: %v", err)
	}

	// A different employer may reuse the same bank reference.
	if _, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 10,
		Amount:         dec("75.00"),
		Reference:      "SHARED-REF",
	}); err != nil {
		t.Fatalf("second org ingest: %v", err)
	}

	if _, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("25.00"),
		Reference:      "SHARED-REF",
	}); !errors.Is(err, remittance.ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference within one org, got %v", err)
	}
}

func TestReverseParksTransactionAsDisputed(t *testing.T) {
	svc, repo, pub := newRemitFixture([]remittance.RepaymentState{
		{ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("0")},
	})

	result, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("100.00"),
		Reference:      "BANK-005",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	tx, err := svc.Reverse(context.Background(), result.Transaction.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if tx.MatchStatus != remittance.StatusDisputed || tx.MatchedAt != nil {
		t.Fatalf("unexpected reversed transaction: %+v", tx)
	}
	if !repo.repayments[0].AmountPaid.Equal(dec("0")) {
		t.Fatalf("repayment not restored: %s", repo.repayments[0].AmountPaid)
	}
	if pub.events[len(pub.events)-1].Type != remittance.EventReversed {
		t.Fatalf("reversed event not published")
	}

	if _, err := svc.Reverse(context.Background(), result.Transaction.ID); !errors.Is(err, remittance.ErrNothingToReverse) {
		t.Fatalf("expected ErrNothingToReverse on second reverse, got %v", err)
	}
}

func TestSummaryCountsDisputedInRemitted(t *testing.T) {
	svc, _, _ := newRemitFixture([]remittance.RepaymentState{
		{ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("0")},
	})

	result, err := svc.Ingest(context.Background(), remittance.IngestInput{
		OrganizationID: 9,
		Amount:         dec("100.00"),
		Reference:      "BANK-006",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if _, err := svc.Reverse(context.Background(), result.Transaction.ID); err != nil {
		t.Fatalf("reverse: %v", err)
	}

	summary, err := svc.Summary(context.Background(), 9)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	// The money arrived even though its allocation is contested: remitted
	// keeps the amount and it all sits unallocated.
	if !summary.TotalRemitted.Equal(dec("100.00")) {
		t.Fatalf("total remitted %s, want 100.00", summary.TotalRemitted)
	}
	if !summary.TotalApplied.Equal(dec("0")) {
		t.Fatalf("total applied %s, want 0", summary.TotalApplied)
	}
	if !summary.TotalRemitted.Equal(summary.TotalApplied.Add(summary.UnallocatedBalance)) {
		t.Fatalf("summary does not balance: %+v", summary)
	}
	if summary.DisputedCount != 1 {
		t.Fatalf("disputed count %d, want 1", summary.DisputedCount)
	}
}

func TestRemitGeneratesBankReference(t *testing.T) {
	svc, _, _ := newRemitFixture(nil)

	tx, err := svc.Remit(context.Background(), 9, dec("250.00"), "payroll batch")
	if err != nil {
		t.Fatalf("remit: %v", err)
	}
	if !strings.HasPrefix(tx.Reference, "RMT-") {
		t.Fatalf("unexpected reference: %s", tx.Reference)
	}
	if tx.MatchStatus != remittance.StatusUnmatched {
		t.Fatalf("remit should leave allocation to the worker, got %s", tx.MatchStatus)
	}
}

func TestCreateAccountIdempotentUnlessForced(t *testing.T) {
	svc, _, _ := newRemitFixture(nil)

	first, err := svc.CreateAccount(context.Background(), remittance.CreateAccountInput{OrganizationID: 9})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if !strings.HasPrefix(first.AccountNumber, "248") || len(first.AccountNumber) != 10 {
		t.Fatalf("unexpected account number: %s", first.AccountNumber)
	}

	again, err := svc.CreateAccount(context.Background(), remittance.CreateAccountInput{OrganizationID: 9})
	if err != nil {
		t.Fatalf("create account again: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected the existing account back, got %d and %d", first.ID, again.ID)
	}

	forced, err := svc.CreateAccount(context.Background(), remittance.CreateAccountInput{OrganizationID: 9, ForceNew: true})
	if err != nil {
		t.Fatalf("force new account: %v", err)
	}
	if forced.ID == first.ID {
		t.Fatalf("forced account should be new")
	}
	active, err := svc.ActiveAccount(context.Background(), 9)
	if err != nil {
		t.Fatalf("active account: %v", err)
	}
	if active.ID != forced.ID {
		t.Fatalf("active account %d, want %d", active.ID, forced.ID)
	}
}
