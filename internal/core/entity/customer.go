package entity

// CustomerType selects the price list applied to a customer's waybills.
type CustomerType string

const (
	CustomerRetail         CustomerType = "USER_RETAIL"
	CustomerWholesale      CustomerType = "USER_WHOLESALE"
	CustomerSuperWholesale CustomerType = "USER_SUPER_WHOLESALE"
)

// Valid reports whether t is a known customer type.
func (t CustomerType) Valid() bool {
	switch t {
	case CustomerRetail, CustomerWholesale, CustomerSuperWholesale:
		return true
	}
	return false
}
