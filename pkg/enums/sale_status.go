package enums

import "fmt"

// SaleStatus maps to the sale_status enum in Postgres.
type SaleStatus string

const (
	SaleStatusCompleted SaleStatus = "completed"
	SaleStatusPending   SaleStatus = "pending"
	SaleStatusCanceled  SaleStatus = "canceled"
)

var validSaleStatuses = []SaleStatus{
	SaleStatusCompleted,
	SaleStatusPending,
	SaleStatusCanceled,
}

// String implements fmt.Stringer.
func (s SaleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SaleStatus.
func (s SaleStatus) IsValid() bool {
	for _, candidate := range validSaleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSaleStatus converts raw input into a SaleStatus. Empty input yields the default.
func ParseSaleStatus(value string) (SaleStatus, error) {
	if value == "" {
		return SaleStatusCompleted, nil
	}
	for _, candidate := range validSaleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sale status %q", value)
}
