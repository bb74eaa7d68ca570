package integration

import (
	"context"
	"testing"

	applicationdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/application"
	customerdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/customer"
	disbursementdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/disbursement"
	loandomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loan"
	loanlinkdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/loanlink"
	organizationdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/organization"
	productdomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/product"
	remittancedomain "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	postgresrepo "github.com/Mudampro/Salary-Based-Loan-Management-System/internal/repository/postgres"
	"github.com/Mudampro/Salary-Based-Loan-Management-System/test/integration/testutil"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// The whole lifecycle against postgres: public application behind a
// link, approval, disbursement, remittance ingest with allocation, and
// reversal.
func TestReconciliationLifecycleWithPostgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	annualRate := dec("6")

	orgRepo := postgresrepo.NewOrganizationRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	linkRepo := postgresrepo.NewLoanLinkRepository(pool)
	customerRepo := postgresrepo.NewCustomerRepository(pool)
	appRepo := postgresrepo.NewApplicationRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	disbRepo := postgresrepo.NewDisbursementRepository(pool)
	remitRepo := postgresrepo.NewRemittanceRepository(pool)

	orgSvc := organizationdomain.NewService(orgRepo)
	productSvc := productdomain.NewService(productRepo)
	linkSvc := loanlinkdomain.NewService(linkRepo, orgRepo, productRepo)
	customerSvc := customerdomain.NewService(customerRepo, "248")
	loanSvc := loandomain.NewService(loanRepo, annualRate)
	appSvc := applicationdomain.NewService(appRepo, customerSvc, productRepo, linkRepo, linkSvc, loanRepo)
	disbSvc := disbursementdomain.NewService(disbRepo, appSvc, customerSvc, annualRate)
	remitSvc := remittancedomain.NewService(remitRepo, orgRepo, nil, "248")

	org, err := orgSvc.Create(ctx, organizationdomain.CreateInput{Name: "Acme Ltd", ContactEmail: "hr@acme.test"})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}

	minAmount := dec("10000.00")
	maxAmount := dec("1000000.00")
	prod, err := productSvc.Create(ctx, productdomain.CreateInput{
		Name:           "Salary Advance",
		InterestRate:   annualRate,
		MaxTenorMonths: 12,
		MinAmount:      &minAmount,
		MaxAmount:      &maxAmount,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}

	link, err := linkSvc.Create(ctx, loanlinkdomain.CreateInput{OrganizationID: org.ID, ProductID: prod.ID})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	netPay := dec("100000.00")
	app, err := appSvc.SubmitPublic(ctx, link.Token, applicationdomain.PublicInput{
		FirstName:       "Ada",
		LastName:        "Obi",
		Email:           "ada@acme.test",
		BVN:             "12345678901",
		StaffID:         "EMP-001",
		NetMonthlyPay:   &netPay,
		RequestedAmount: dec("120000.00"),
		TenorMonths:     3,
	})
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}

	approved := dec("120000.00")
	if _, err := appSvc.UpdateStatus(ctx, app.ID, applicationdomain.StatusInput{
		Status:         applicationdomain.StatusApproved,
		ApprovedAmount: &approved,
	}); err != nil {
		t.Fatalf("approve application: %v", err)
	}

	_, ln, err := disbSvc.Disburse(ctx, app.ID, disbursementdomain.Input{}, 1)
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}
	// 120000 * (1 + 0.06 * 3/12) = 121800.00
	if !ln.TotalPayable.Equal(dec("121800.00")) {
		t.Fatalf("total payable %s, want 121800.00", ln.TotalPayable)
	}
	if ln.Status != loandomain.StatusActive {
		t.Fatalf("loan status %s, want ACTIVE", ln.Status)
	}

	reps, err := loanSvc.ListRepayments(ctx, ln.ID)
	if err != nil {
		t.Fatalf("list repayments: %v", err)
	}
	if len(reps) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(reps))
	}

	// Partial remittance covers the first installment and part of the
	// second.
	result, err := remitSvc.Ingest(ctx, remittancedomain.IngestInput{
		OrganizationID: org.ID,
		Amount:         dec("50000.00"),
		Reference:      "BANK-REF-1",
	})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if result.Transaction.MatchStatus != remittancedomain.StatusMatched {
		t.Fatalf("transaction status %s, want MATCHED", result.Transaction.MatchStatus)
	}
	if len(result.Allocations) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(result.Allocations))
	}

	reps, err = loanSvc.ListRepayments(ctx, ln.ID)
	if err != nil {
		t.Fatalf("list repayments after apply: %v", err)
	}
	if !reps[0].IsPaid || !reps[0].AmountPaid.Equal(dec("40600.00")) {
		t.Fatalf("first installment not settled: %+v", reps[0])
	}
	if reps[1].IsPaid || !reps[1].AmountPaid.Equal(dec("9400.00")) {
		t.Fatalf("second installment wrong: %+v", reps[1])
	}

	summary, err := remitSvc.Summary(ctx, org.ID)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if !summary.TotalRemitted.Equal(summary.TotalApplied.Add(summary.UnallocatedBalance)) {
		t.Fatalf("summary does not balance: %+v", summary)
	}
	if !summary.TotalApplied.Equal(dec("50000.00")) {
		t.Fatalf("total applied %s, want 50000.00", summary.TotalApplied)
	}

	// Reversal restores the exact prior state and parks the
	// transaction as DISPUTED.
	tx, err := remitSvc.Reverse(ctx, result.Transaction.ID)
	if err != nil {
		t.Fatalf("reverse: %v", err)
	}
	if tx.MatchStatus != remittancedomain.StatusDisputed || tx.MatchedAt != nil {
		t.Fatalf("unexpected reversed transaction: %+v", tx)
	}

	reps, err = loanSvc.ListRepayments(ctx, ln.ID)
	if err != nil {
		t.Fatalf("list repayments after reverse: %v", err)
	}
	for _, rep := range reps {
		if rep.IsPaid || !rep.AmountPaid.Equal(dec("0")) {
			t.Fatalf("repayment not restored: %+v", rep)
		}
	}

	allocs, err := remitSvc.Allocations(ctx, tx.ID)
	if err != nil {
		t.Fatalf("allocations after reverse: %v", err)
	}
	if len(allocs) != 0 {
		t.Fatalf("allocations should be deleted, got %d", len(allocs))
	}

	// The disputed transaction still counts as remitted money; it all
	// sits unallocated now.
	summary, err = remitSvc.Summary(ctx, org.ID)
	if err != nil {
		t.Fatalf("summary after reverse: %v", err)
	}
	if !summary.TotalRemitted.Equal(dec("50000.00")) {
		t.Fatalf("total remitted after reverse %s, want 50000.00", summary.TotalRemitted)
	}
	if !summary.TotalApplied.Equal(dec("0")) {
		t.Fatalf("total applied after reverse %s, want 0", summary.TotalApplied)
	}
	if !summary.TotalRemitted.Equal(summary.TotalApplied.Add(summary.UnallocatedBalance)) {
		t.Fatalf("summary does not balance after reverse: %+v", summary)
	}
	if summary.DisputedCount != 1 {
		t.Fatalf("disputed count %d, want 1", summary.DisputedCount)
	}
}

func TestFullRepaymentClosesLoanWithPostgres(t *testing.T) {
	pool := testutil.NewTestPool(t)
	defer pool.Close()
	testutil.ApplyMigrations(t, pool)
	testutil.ResetTables(t, pool)

	ctx := context.Background()
	annualRate := dec("6")

	orgRepo := postgresrepo.NewOrganizationRepository(pool)
	productRepo := postgresrepo.NewProductRepository(pool)
	linkRepo := postgresrepo.NewLoanLinkRepository(pool)
	customerRepo := postgresrepo.NewCustomerRepository(pool)
	appRepo := postgresrepo.NewApplicationRepository(pool)
	loanRepo := postgresrepo.NewLoanRepository(pool)
	disbRepo := postgresrepo.NewDisbursementRepository(pool)
	remitRepo := postgresrepo.NewRemittanceRepository(pool)

	orgSvc := organizationdomain.NewService(orgRepo)
	customerSvc := customerdomain.NewService(customerRepo, "248")
	linkSvc := loanlinkdomain.NewService(linkRepo, orgRepo, productRepo)
	loanSvc := loandomain.NewService(loanRepo, annualRate)
	appSvc := applicationdomain.NewService(appRepo, customerSvc, productRepo, linkRepo, linkSvc, loanRepo)
	disbSvc := disbursementdomain.NewService(disbRepo, appSvc, customerSvc, annualRate)
	remitSvc := remittancedomain.NewService(remitRepo, orgRepo, nil, "248")

	org, err := orgSvc.Create(ctx, organizationdomain.CreateInput{Name: "Beta Corp"})
	if err != nil {
		t.Fatalf("create organization: %v", err)
	}
	prod, err := productdomain.NewService(productRepo).Create(ctx, productdomain.CreateInput{
		Name:           "Payroll Loan",
		InterestRate:   annualRate,
		MaxTenorMonths: 12,
	})
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	link, err := linkSvc.Create(ctx, loanlinkdomain.CreateInput{OrganizationID: org.ID, ProductID: prod.ID})
	if err != nil {
		t.Fatalf("create link: %v", err)
	}

	netPay := dec("80000.00")
	app, err := appSvc.SubmitPublic(ctx, link.Token, applicationdomain.PublicInput{
		FirstName:       "Bola",
		LastName:        "Ade",
		BVN:             "10987654321",
		StaffID:         "EMP-002",
		NetMonthlyPay:   &netPay,
		RequestedAmount: dec("60000.00"),
		TenorMonths:     2,
	})
	if err != nil {
		t.Fatalf("submit application: %v", err)
	}
	approved := dec("60000.00")
	if _, err := appSvc.UpdateStatus(ctx, app.ID, applicationdomain.StatusInput{
		Status:         applicationdomain.StatusApproved,
		ApprovedAmount: &approved,
	}); err != nil {
		t.Fatalf("approve: %v", err)
	}
	_, ln, err := disbSvc.Disburse(ctx, app.ID, disbursementdomain.Input{}, 1)
	if err != nil {
		t.Fatalf("disburse: %v", err)
	}

	// Remit the full total payable in one transfer.
	if _, err := remitSvc.Ingest(ctx, remittancedomain.IngestInput{
		OrganizationID: org.ID,
		Amount:         ln.TotalPayable,
		Reference:      "BANK-REF-FULL",
	}); err != nil {
		t.Fatalf("ingest: %v", err)
	}

	closed, err := loanSvc.Get(ctx, ln.ID)
	if err != nil {
		t.Fatalf("get loan: %v", err)
	}
	if closed.Status != loandomain.StatusClosed {
		t.Fatalf("loan status %s, want CLOSED", closed.Status)
	}
}
