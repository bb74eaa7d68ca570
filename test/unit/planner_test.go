package unit

import (
	"testing"

	"github.com/Mudampro/Salary-Based-Loan-Management-System/internal/domain/remittance"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestPlanApplicationOldestFirst(t *testing.T) {
	repayments := []remittance.RepaymentState{
		{ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("0")},
		{ID: 2, AmountDue: dec("100.00"), AmountPaid: dec("0")},
		{ID: 3, AmountDue: dec("100.00"), AmountPaid: dec("0")},
	}

	plan := remittance.PlanApplication(dec("250.00"), repayments)
	if len(plan) != 3 {
		t.Fatalf("expected 3 allocations, got %d", len(plan))
	}
	if !plan[0].AmountApplied.Equal(dec("100.00")) || plan[0].RepaymentID != 1 {
		t.Fatalf("unexpected first allocation: %+v", plan[0])
	}
	if !plan[1].AmountApplied.Equal(dec("100.00")) || plan[1].RepaymentID != 2 {
		t.Fatalf("unexpected second allocation: %+v", plan[1])
	}
	if !plan[2].AmountApplied.Equal(dec("50.00")) || plan[2].RepaymentID != 3 {
		t.Fatalf("unexpected third allocation: %+v", plan[2])
	}
	if plan[0].IsPaid != true || plan[1].IsPaid != true || plan[2].IsPaid != false {
		t.Fatalf("unexpected paid flags: %+v", plan)
	}
	if !remittance.PlannedTotal(plan).Equal(dec("250.00")) {
		t.Fatalf("planned total %s, want 250.00", remittance.PlannedTotal(plan))
	}
}

func TestPlanApplicationSkipsSettledAndTopsUpPartials(t *testing.T) {
	repayments := []remittance.RepaymentState{
		{ID: 10, AmountDue: dec("100.00"), AmountPaid: dec("100.00")},
		{ID: 11, AmountDue: dec("100.00"), AmountPaid: dec("40.00")},
		{ID: 12, AmountDue: dec("100.00"), AmountPaid: dec("0")},
	}

	plan := remittance.PlanApplication(dec("80.00"), repayments)
	if len(plan) != 2 {
		t.Fatalf("expected 2 allocations, got %d", len(plan))
	}
	if plan[0].RepaymentID != 11 || !plan[0].AmountApplied.Equal(dec("60.00")) || !plan[0].IsPaid {
		t.Fatalf("unexpected top-up allocation: %+v", plan[0])
	}
	if plan[1].RepaymentID != 12 || !plan[1].AmountApplied.Equal(dec("20.00")) || plan[1].IsPaid {
		t.Fatalf("unexpected spillover allocation: %+v", plan[1])
	}
}

func TestPlanApplicationNeverExceedsAmount(t *testing.T) {
	repayments := []remittance.RepaymentState{
		{ID: 1, AmountDue: dec("33.33"), AmountPaid: dec("0")},
		{ID: 2, AmountDue: dec("33.33"), AmountPaid: dec("0")},
		{ID: 3, AmountDue: dec("33.34"), AmountPaid: dec("0")},
	}

	for _, amount := range []string{"0.01", "10.00", "33.33", "50.00", "99.99", "100.00", "500.00"} {
		plan := remittance.PlanApplication(dec(amount), repayments)
		total := remittance.PlannedTotal(plan)
		if total.GreaterThan(dec(amount)) {
			t.Fatalf("amount %s: planned total %s exceeds amount", amount, total)
		}
		for _, p := range plan {
			if !p.AmountApplied.IsPositive() {
				t.Fatalf("amount %s: non-positive allocation %+v", amount, p)
			}
		}
	}
}

func TestPlanApplicationNothingOutstanding(t *testing.T) {
	repayments := []remittance.RepaymentState{
		{ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("100.00")},
	}
	if plan := remittance.PlanApplication(dec("50.00"), repayments); len(plan) != 0 {
		t.Fatalf("expected empty plan, got %+v", plan)
	}
	if plan := remittance.PlanApplication(dec("50.00"), nil); len(plan) != 0 {
		t.Fatalf("expected empty plan for no repayments, got %+v", plan)
	}
}

func TestPlanReversalRestoresPriorState(t *testing.T) {
	// Forward pass.
	repayments := []remittance.RepaymentState{
		{ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("30.00")},
		{ID: 2, AmountDue: dec("100.00"), AmountPaid: dec("0")},
	}
	plan := remittance.PlanApplication(dec("120.00"), repayments)

	allocations := make([]remittance.Allocation, 0, len(plan))
	state := map[int64]remittance.RepaymentState{}
	for _, rep := range repayments {
		state[rep.ID] = rep
	}
	for _, p := range plan {
		allocations = append(allocations, remittance.Allocation{RepaymentID: p.RepaymentID, AmountApplied: p.AmountApplied})
		rep := state[p.RepaymentID]
		rep.AmountPaid = p.NewAmountPaid
		state[p.RepaymentID] = rep
	}

	// Reverse must land exactly on the pre-apply figures.
	changes := remittance.PlanReversal(allocations, state)
	if len(changes) != len(allocations) {
		t.Fatalf("expected %d changes, got %d", len(allocations), len(changes))
	}
	want := map[int64]decimal.Decimal{1: dec("30.00"), 2: dec("0")}
	for _, ch := range changes {
		if !ch.NewAmountPaid.Equal(want[ch.RepaymentID]) {
			t.Fatalf("repayment %d: new paid %s, want %s", ch.RepaymentID, ch.NewAmountPaid, want[ch.RepaymentID])
		}
		if ch.IsPaid {
			t.Fatalf("repayment %d should not stay paid after reversal", ch.RepaymentID)
		}
	}
}

func TestPlanReversalMultipleAllocationsSameRepayment(t *testing.T) {
	state := map[int64]remittance.RepaymentState{
		1: {ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("90.00")},
	}
	allocations := []remittance.Allocation{
		{RepaymentID: 1, AmountApplied: dec("50.00")},
		{RepaymentID: 1, AmountApplied: dec("40.00")},
	}

	changes := remittance.PlanReversal(allocations, state)
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}
	if !changes[0].NewAmountPaid.Equal(dec("40.00")) {
		t.Fatalf("first change new paid %s, want 40.00", changes[0].NewAmountPaid)
	}
	if !changes[1].NewAmountPaid.Equal(dec("0")) {
		t.Fatalf("second change new paid %s, want 0", changes[1].NewAmountPaid)
	}
}

func TestPlanReversalFloorsAtZero(t *testing.T) {
	state := map[int64]remittance.RepaymentState{
		1: {ID: 1, AmountDue: dec("100.00"), AmountPaid: dec("20.00")},
	}
	allocations := []remittance.Allocation{
		{RepaymentID: 1, AmountApplied: dec("50.00")},
	}

	changes := remittance.PlanReversal(allocations, state)
	if len(changes) != 1 || !changes[0].NewAmountPaid.Equal(dec("0")) {
		t.Fatalf("expected paid floored at zero, got %+v", changes)
	}
}
