package remittance

import (
	"github.com/shopspring/decimal"
)

// RepaymentState is the slice of a repayment row the planner needs.
type RepaymentState struct {
	ID         int64
	AmountDue  decimal.Decimal
	AmountPaid decimal.Decimal
}

func (r RepaymentState) Outstanding() decimal.Decimal {
	out := r.AmountDue.Sub(r.AmountPaid)
	if out.IsNegative() {
		return decimal.Zero
	}
	return out
}

// PlannedAllocation is one repayment update produced by PlanApplication.
type PlannedAllocation struct {
	RepaymentID   int64
	AmountApplied decimal.Decimal
	NewAmountPaid decimal.Decimal
	IsPaid        bool
}

// PlanApplication walks repayments in the order given (callers pass
// them sorted by due date, then installment number) and allocates
// min(remaining, outstanding) to each until the amount is exhausted.
// The planned total never exceeds amount.
func PlanApplication(amount decimal.Decimal, repayments []RepaymentState) []PlannedAllocation {
	remaining := amount
	var plan []PlannedAllocation
	for _, rep := range repayments {
		if !remaining.IsPositive() {
			break
		}
		outstanding := rep.Outstanding()
		if !outstanding.IsPositive() {
			continue
		}

		applied := decimal.Min(remaining, outstanding).Round(2)
		if !applied.IsPositive() {
			continue
		}

		newPaid := rep.AmountPaid.Add(applied)
		plan = append(plan, PlannedAllocation{
			RepaymentID:   rep.ID,
			AmountApplied: applied,
			NewAmountPaid: newPaid,
			IsPaid:        newPaid.GreaterThanOrEqual(rep.AmountDue),
		})
		remaining = remaining.Sub(applied)
	}
	return plan
}

// PlannedTotal sums a plan's applied amounts.
func PlannedTotal(plan []PlannedAllocation) decimal.Decimal {
	total := decimal.Zero
	for _, p := range plan {
		total = total.Add(p.AmountApplied)
	}
	return total
}

// ReversalChange is one repayment update produced by PlanReversal.
type ReversalChange struct {
	RepaymentID   int64
	NewAmountPaid decimal.Decimal
	IsPaid        bool
}

// PlanReversal inverts stored allocations exactly: each allocation's
// amount_applied is subtracted from its repayment, floored at zero. No
// plan is recomputed; the stored rows are the source of truth.
func PlanReversal(allocations []Allocation, repayments map[int64]RepaymentState) []ReversalChange {
	var changes []ReversalChange
	for _, alloc := range allocations {
		rep, ok := repayments[alloc.RepaymentID]
		if !ok {
			continue
		}
		newPaid := rep.AmountPaid.Sub(alloc.AmountApplied)
		if newPaid.IsNegative() {
			newPaid = decimal.Zero
		}
		changes = append(changes, ReversalChange{
			RepaymentID:   alloc.RepaymentID,
			NewAmountPaid: newPaid,
			IsPaid:        newPaid.GreaterThanOrEqual(rep.AmountDue) && rep.AmountDue.IsPositive(),
		})
		rep.AmountPaid = newPaid
		repayments[alloc.RepaymentID] = rep
	}
	return changes
}
