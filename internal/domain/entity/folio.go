package entity

import "time"

// AuthorizationFolio is an override credential that permits a
// budget-exceeding package to advance to treasury processing, subject to an
// external approver's decision. A folio is redeemable at most once and only
// while autorizado.
type AuthorizationFolio struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	PackageID int64  `json:"package_id"`
	Status    string `json:"status"`
	Redeemed  bool   `json:"redeemed"`

	Reason      string `json:"reason"`
	RequestedBy string `json:"requested_by"`

	CreatedAt  time.Time  `json:"created_at"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
}

// Terminal reports whether the folio reached a final approver decision.
func (f *AuthorizationFolio) Terminal() bool {
	return f.Status == FolioAutorizado || f.Status == FolioRechazado
}
