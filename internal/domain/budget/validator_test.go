package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finadmin/tesoreria/internal/domain/entity"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func approvedItem(conceptID *int64, paid string) *entity.LineItem {
	return &entity.LineItem{
		Kind:             entity.KindInvoice,
		ExpenseConceptID: conceptID,
		Authorization:    entity.AuthorizationApproved,
		AmountToPay:      dec(paid),
		AmountPaid:       dec(paid),
	}
}

func conceptID(id int64) *int64 { return &id }

func budgetRecord(conceptID int64, amount string) *entity.Budget {
	return &entity.Budget{ExpenseConceptID: conceptID, AssignedAmount: dec(amount)}
}

func TestComputeVerdict_WithinBudget(t *testing.T) {
	items := []*entity.LineItem{approvedItem(conceptID(1), "800.00")}
	budgets := []*entity.Budget{budgetRecord(1, "1000.00")}

	v := ComputeVerdict(items, budgets, nil)

	assert.False(t, v.RequiresAuthorization)
	assert.False(t, v.ExceedsTotal)
	assert.Empty(t, v.ExceededConcepts)
	assert.True(t, v.TotalOverage.Equal(dec("-200.00")))
}

func TestComputeVerdict_TotalExceeded(t *testing.T) {
	items := []*entity.LineItem{
		approvedItem(conceptID(1), "7000.00"),
		approvedItem(conceptID(2), "5000.00"),
	}
	budgets := []*entity.Budget{
		budgetRecord(1, "8000.00"),
		budgetRecord(2, "2000.00"),
	}

	v := ComputeVerdict(items, budgets, nil)

	assert.True(t, v.ExceedsTotal)
	assert.True(t, v.TotalOverage.Equal(dec("2000.00")))
	assert.True(t, v.RequiresAuthorization)
	require.Len(t, v.ExceededConcepts, 1)
	assert.Equal(t, int64(2), v.ExceededConcepts[0].ConceptID)
	assert.True(t, v.ExceededConcepts[0].Overage.Equal(dec("3000.00")))
}

func TestComputeVerdict_ConceptExceededButTotalNot(t *testing.T) {
	items := []*entity.LineItem{
		approvedItem(conceptID(1), "500.00"),
		approvedItem(conceptID(2), "300.00"),
	}
	budgets := []*entity.Budget{
		budgetRecord(1, "400.00"),
		budgetRecord(2, "2000.00"),
	}

	v := ComputeVerdict(items, budgets, map[int64]string{1: "Viáticos"})

	assert.False(t, v.ExceedsTotal)
	assert.True(t, v.RequiresAuthorization)
	require.Len(t, v.ExceededConcepts, 1)
	assert.Equal(t, "Viáticos", v.ExceededConcepts[0].ConceptName)
	assert.Contains(t, v.Reason(), "Viáticos")
}

func TestComputeVerdict_MultiScopeBudgetsAreSummed(t *testing.T) {
	// One concept funded through two routing paths: 1000 + 500. Spend of
	// 1400 stays within the combined 1500.
	items := []*entity.LineItem{approvedItem(conceptID(7), "1400.00")}
	budgets := []*entity.Budget{
		{ExpenseConceptID: 7, BranchID: 10, AssignedAmount: dec("1000.00")},
		{ExpenseConceptID: 7, BranchID: 20, AssignedAmount: dec("500.00")},
	}

	v := ComputeVerdict(items, budgets, nil)

	assert.False(t, v.RequiresAuthorization)
	assert.Empty(t, v.ExceededConcepts)
}

func TestComputeVerdict_EmptyBudgetSet(t *testing.T) {
	items := []*entity.LineItem{approvedItem(conceptID(1), "0.01")}

	v := ComputeVerdict(items, nil, nil)

	assert.True(t, v.TotalBudget.IsZero())
	assert.True(t, v.ExceedsTotal)
	assert.True(t, v.RequiresAuthorization)
}

func TestComputeVerdict_ZeroSpendNeverExceeds(t *testing.T) {
	v := ComputeVerdict(nil, nil, nil)

	assert.False(t, v.ExceedsTotal)
	assert.False(t, v.RequiresAuthorization)

	pending := []*entity.LineItem{{
		Authorization: entity.AuthorizationPending,
		AmountToPay:   dec("9999.00"),
	}}
	v = ComputeVerdict(pending, nil, nil)
	assert.True(t, v.TotalPaid.IsZero())
	assert.False(t, v.RequiresAuthorization)
}

func TestComputeVerdict_UnassignedConceptNeverFlagged(t *testing.T) {
	items := []*entity.LineItem{approvedItem(nil, "300.00")}
	budgets := []*entity.Budget{budgetRecord(1, "100.00")}

	v := ComputeVerdict(items, budgets, nil)

	// Total is exceeded (300 > 100) but the unassigned bucket itself is
	// never reported as an exceeded concept.
	assert.True(t, v.ExceedsTotal)
	assert.Empty(t, v.ExceededConcepts)
}

func TestComputeVerdict_ConceptWithNoBudgetRecords(t *testing.T) {
	items := []*entity.LineItem{approvedItem(conceptID(5), "10.00")}
	budgets := []*entity.Budget{budgetRecord(1, "1000.00")}

	v := ComputeVerdict(items, budgets, nil)

	require.Len(t, v.ExceededConcepts, 1)
	assert.True(t, v.ExceededConcepts[0].Budget.IsZero())
	assert.True(t, v.ExceededConcepts[0].Overage.Equal(dec("10.00")))
}

func TestComputeVerdict_RejectedItemsExcluded(t *testing.T) {
	rejected := approvedItem(conceptID(1), "500.00")
	rejected.Authorization = entity.AuthorizationRejected
	rejected.AmountPaid = decimal.Zero

	v := ComputeVerdict([]*entity.LineItem{rejected}, nil, nil)

	assert.True(t, v.TotalPaid.IsZero())
	assert.False(t, v.RequiresAuthorization)
}

func TestReason_ComposesTotalsAndConcepts(t *testing.T) {
	items := []*entity.LineItem{approvedItem(conceptID(3), "12000.00")}
	budgets := []*entity.Budget{budgetRecord(3, "10000.00")}

	v := ComputeVerdict(items, budgets, map[int64]string{3: "Renta"})

	reason := v.Reason()
	assert.Contains(t, reason, "12000.00")
	assert.Contains(t, reason, "10000.00")
	assert.Contains(t, reason, "2000.00")
	assert.Contains(t, reason, "Renta")
}

func TestExceededError_MatchesSentinel(t *testing.T) {
	err := &ExceededError{Verdict: Verdict{RequiresAuthorization: true}}
	assert.ErrorIs(t, err, entity.ErrBudgetExceeded)
}
