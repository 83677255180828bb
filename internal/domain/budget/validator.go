// Package budget implements the budget exceedance verdict: the pure
// comparison of a package's authorized spend against the assigned budgets of
// its company/brand/branch scope and payment month. The verdict is
// recomputed on demand at every transition boundary; no cached verdict is
// ever trusted across one.
package budget

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finadmin/tesoreria/internal/domain/entity"
)

// UnassignedConcept is the sentinel bucket for line items without an expense
// concept. Items in it are never flagged as exceeding since no budget can be
// matched to them.
const UnassignedConcept int64 = 0

// ConceptOverage describes one expense concept whose authorized spend
// exceeds its (multi-scope, summed) budget.
type ConceptOverage struct {
	ConceptID   int64           `json:"concept_id"`
	ConceptName string          `json:"concept_name,omitempty"`
	Budget      decimal.Decimal `json:"budget"`
	Paid        decimal.Decimal `json:"paid"`
	Overage     decimal.Decimal `json:"overage"`
}

// Verdict is the authorization requirement verdict for a package.
type Verdict struct {
	TotalBudget decimal.Decimal `json:"total_budget"`
	TotalPaid   decimal.Decimal `json:"total_paid"`

	ExceedsTotal bool `json:"exceeds_total"`
	// TotalOverage is TotalPaid - TotalBudget; negative when under budget.
	TotalOverage decimal.Decimal `json:"total_overage"`

	ExceededConcepts []ConceptOverage `json:"exceeded_concepts,omitempty"`

	RequiresAuthorization bool `json:"requires_authorization"`
}

// ComputeVerdict compares a package's authorized spend against its budget
// scope. Only approved line items count; budgets funding the same concept
// through different routing paths are summed before comparison. conceptNames
// is optional display metadata and may be nil.
func ComputeVerdict(items []*entity.LineItem, budgets []*entity.Budget, conceptNames map[int64]string) Verdict {
	totalBudget := decimal.Zero
	budgetByConcept := make(map[int64]decimal.Decimal)
	for _, b := range budgets {
		totalBudget = totalBudget.Add(b.AssignedAmount)
		budgetByConcept[b.ExpenseConceptID] = budgetByConcept[b.ExpenseConceptID].Add(b.AssignedAmount)
	}

	totalPaid := decimal.Zero
	paidByConcept := make(map[int64]decimal.Decimal)
	var conceptOrder []int64
	for _, item := range items {
		if !item.Approved() {
			continue
		}
		totalPaid = totalPaid.Add(item.AmountPaid)

		conceptID := UnassignedConcept
		if item.ExpenseConceptID != nil {
			conceptID = *item.ExpenseConceptID
		}
		if _, seen := paidByConcept[conceptID]; !seen {
			conceptOrder = append(conceptOrder, conceptID)
		}
		paidByConcept[conceptID] = paidByConcept[conceptID].Add(item.AmountPaid)
	}

	v := Verdict{
		TotalBudget:  totalBudget,
		TotalPaid:    totalPaid,
		ExceedsTotal: totalPaid.GreaterThan(totalBudget),
		TotalOverage: totalPaid.Sub(totalBudget),
	}

	for _, conceptID := range conceptOrder {
		if conceptID == UnassignedConcept {
			continue
		}
		conceptBudget := budgetByConcept[conceptID]
		conceptPaid := paidByConcept[conceptID]
		if conceptPaid.GreaterThan(conceptBudget) {
			v.ExceededConcepts = append(v.ExceededConcepts, ConceptOverage{
				ConceptID:   conceptID,
				ConceptName: conceptNames[conceptID],
				Budget:      conceptBudget,
				Paid:        conceptPaid,
				Overage:     conceptPaid.Sub(conceptBudget),
			})
		}
	}

	v.RequiresAuthorization = v.ExceedsTotal || len(v.ExceededConcepts) > 0
	return v
}

// Reason composes the human-readable description of what is exceeded and by
// how much. It becomes the folio's reason text and the itemized warning shown
// to the caller.
func (v Verdict) Reason() string {
	if !v.RequiresAuthorization {
		return "spend within assigned budget"
	}

	var parts []string
	if v.ExceedsTotal {
		parts = append(parts, fmt.Sprintf(
			"total paid %s exceeds total assigned budget %s by %s",
			v.TotalPaid.StringFixed(2), v.TotalBudget.StringFixed(2), v.TotalOverage.StringFixed(2)))
	}
	for _, c := range v.ExceededConcepts {
		name := c.ConceptName
		if name == "" {
			name = fmt.Sprintf("concept %d", c.ConceptID)
		}
		parts = append(parts, fmt.Sprintf(
			"%s: paid %s against budget %s (over by %s)",
			name, c.Paid.StringFixed(2), c.Budget.StringFixed(2), c.Overage.StringFixed(2)))
	}
	return strings.Join(parts, "; ")
}

// ExceededError carries the verdict through the error chain so callers can
// surface which concepts are exceeded and the next action to take.
type ExceededError struct {
	Verdict Verdict
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("budget exceeded: %s", e.Verdict.Reason())
}

// Unwrap lets errors.Is match entity.ErrBudgetExceeded.
func (e *ExceededError) Unwrap() error {
	return entity.ErrBudgetExceeded
}
