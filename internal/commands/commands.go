// Package commands holds the explicit write-side DTOs passed from
// handlers to services. Every mutation has a named command; the HTTP
// layer never hands raw request maps to business logic.
package commands

import "time"

// ---------- Auth ----------

type RegisterCommand struct {
	Name            string
	Email           string
	Password        string
	Role            string
	Phone           string
	ApartmentNumber string
	Status          string
	MonthlyCharge   float64
}

type LoginCommand struct {
	Email    string
	Password string
}

// ---------- Users ----------

// ApproveUserCommand activates a pending account. The building fields
// are optional admin overrides applied at approval time.
type ApproveUserCommand struct {
	UserID          string
	AdminID         string
	MonthlyCharge   *float64
	ApartmentNumber string
	Status          string
}

type RejectUserCommand struct {
	UserID string
}

type UpdateUserCommand struct {
	UserID          string
	Name            string
	Email           string
	Phone           string
	ApartmentNumber string
	Status          string
	MonthlyCharge   *float64
}

type DeleteUserCommand struct {
	UserID  string
	ActorID string
}

// ---------- Payments ----------

// CreateChargesCommand creates one pending payment per resolved
// resident. An empty TargetResidents means every active non-admin
// resident.
type CreateChargesCommand struct {
	Amount          float64
	Description     string
	Period          string
	DueDate         time.Time
	Type            string
	TargetResidents []string
}

type SubmitPaymentCommand struct {
	PaymentID   string
	SubmitterID string
	Method      string
	Date        time.Time
	Reference   string
	Notes       string
}

type ConfirmPaymentCommand struct {
	PaymentID  string
	AdminID    string
	AdminNotes string
}

type RejectPaymentCommand struct {
	PaymentID  string
	AdminNotes string
}

// MarkPaymentPaidCommand settles a charge directly, recording both the
// payment details and the admin confirmation in one step.
type MarkPaymentPaidCommand struct {
	PaymentID string
	AdminID   string
	Method    string
	Date      time.Time
	Reference string
	Notes     string
}

type UpdatePaymentCommand struct {
	PaymentID   string
	Amount      float64
	Description string
	Period      string
	DueDate     time.Time
	Type        string
}

type DeletePaymentCommand struct {
	PaymentID string
}

// ---------- Expenses & fund ledger ----------

type CreateExpenseCommand struct {
	Amount      float64
	Description string
	Category    string
	Date        time.Time
	Vendor      string
	Notes       string
	ReceiptURL  string
	CreatedBy   string
}

type UpdateExpenseCommand struct {
	ExpenseID   string
	Amount      float64
	Description string
	Category    string
	Date        time.Time
	Vendor      string
	Notes       string
	ReceiptURL  string
}

type DeleteExpenseCommand struct {
	ExpenseID string
}

type AllocateFundsCommand struct {
	ExpenseID string
	Amount    float64
	AdminID   string
	Note      string
}

type RemoveAllocationCommand struct {
	ExpenseID    string
	AllocationID string
}
