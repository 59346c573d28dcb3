package enum

// ── State machines (CHECK constrained in DB) ──

const (
	SaleStatusPending   = "PENDING"
	SaleStatusCompleted = "COMPLETED"
	SaleStatusCancelled = "CANCELLED"
)

// ── Closed value sets validated at the boundary ──

const (
	PaymentMethodCash     = "CASH"
	PaymentMethodCard     = "CARD"
	PaymentMethodTransfer = "TRANSFER"
	PaymentMethodCredit   = "CREDIT"
)

const (
	TaxTypePercentage = "PERCENTAGE"
	TaxTypeFixed      = "FIXED"
)

const (
	DiscountTypePercentage = "PERCENTAGE"
	DiscountTypeAmount     = "AMOUNT"
)

const (
	UserRoleOwner   = "OWNER"
	UserRoleManager = "MANAGER"
	UserRoleCashier = "CASHIER"
)

// IsValidPaymentMethod reports whether s is one of the supported methods.
func IsValidPaymentMethod(s string) bool {
	switch s {
	case PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer, PaymentMethodCredit:
		return true
	}
	return false
}
