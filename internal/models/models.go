package models

import "time"

// User roles.
const (
	RoleTenant   = "tenant"
	RoleLandlord = "landlord"
	RoleAdmin    = "admin"
)

// Occupancy statuses for residents.
const (
	OccupancyOwner  = "owner"
	OccupancyTenant = "tenant"
)

// User is an account plus its occupancy record. Non-admin accounts go
// through the approval gate: created inactive, then approved or rejected
// by an admin. Admin accounts are created active.
type User struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	Role            string     `json:"role"`
	Phone           string     `json:"phone,omitempty"`
	ApartmentNumber string     `json:"apartmentNumber,omitempty"`
	MonthlyCharge   float64    `json:"monthlyCharge"`
	Status          string     `json:"status,omitempty"`
	IsActive        bool       `json:"isActive"`
	ApprovedBy      string     `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// IsPending reports whether the account is still waiting on the approval
// gate. Rejected accounts are not pending.
func (u *User) IsPending() bool {
	return !u.IsActive && u.RejectedAt == nil
}

// Payment statuses. Overdue is never stored; it is derived at read time.
const (
	PaymentPending   = "pending"
	PaymentSubmitted = "submitted"
	PaymentPaid      = "paid"
	PaymentRejected  = "rejected"
	PaymentOverdue   = "overdue"
)

// Payment charge types.
const (
	TypeMonthlyCharge     = "monthly_charge"
	TypeSpecialAssessment = "special_assessment"
	TypeFine              = "fine"
	TypeOther             = "other"
)

// Payment methods accepted on submission.
const (
	MethodCash         = "cash"
	MethodBankTransfer = "bank_transfer"
	MethodCheck        = "check"
	MethodOther        = "other"
)

// PaymentSubmission holds the proof-of-payment details a resident
// submits. All fields are cleared when an admin rejects the submission.
type PaymentSubmission struct {
	Method      string     `json:"paymentMethod,omitempty"`
	Date        *time.Time `json:"paymentDate,omitempty"`
	Reference   string     `json:"reference,omitempty"`
	Notes       string     `json:"notes,omitempty"`
	SubmittedAt *time.Time `json:"submittedAt,omitempty"`
}

// Confirmation holds the admin side of the lifecycle. AdminNotes doubles
// as the slot for a rejection reason: both confirm and reject write the
// admin's last note here, intentionally.
type Confirmation struct {
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
	ConfirmedBy string     `json:"confirmedBy,omitempty"`
	AdminNotes  string     `json:"adminNotes,omitempty"`
}

// Payment is one charge obligation owed by one resident for one billing
// period.
type Payment struct {
	ID           string            `json:"id"`
	Amount       float64           `json:"amount"`
	Description  string            `json:"description"`
	Period       string            `json:"period"`
	DueDate      time.Time         `json:"dueDate"`
	Type         string            `json:"type"`
	ResidentID   string            `json:"resident"`
	Status       string            `json:"status"`
	Submission   PaymentSubmission `json:"paymentSubmission"`
	Confirmation Confirmation      `json:"confirmation"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// IsOverdue reports whether the charge is past due and still unsettled.
func (p *Payment) IsOverdue(now time.Time) bool {
	return (p.Status == PaymentPending || p.Status == PaymentRejected) && p.DueDate.Before(now)
}

// DisplayStatus returns the stored status, or "overdue" when derived.
func (p *Payment) DisplayStatus(now time.Time) string {
	if p.IsOverdue(now) {
		return PaymentOverdue
	}
	return p.Status
}

// CanSubmit reports whether a proof submission is a legal transition.
// Rejected submissions may be resubmitted.
func (p *Payment) CanSubmit() bool {
	return p.Status == PaymentPending || p.Status == PaymentRejected
}

// Expense categories.
var ExpenseCategories = []string{
	"cleaning",
	"electricity",
	"water",
	"repairs",
	"maintenance",
	"security",
	"salary",
	"utilities",
	"other",
}

// ValidCategory reports whether c is a known expense category.
func ValidCategory(c string) bool {
	for _, known := range ExpenseCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Derived expense settlement statuses.
const (
	ExpenseUnpaid        = "unpaid"
	ExpensePartiallyPaid = "partially_paid"
	ExpensePaid          = "paid"
)

// Allocation earmarks a portion of collected fund against one expense.
// Allocations are append-only; they are never edited in place, only
// removed by id.
type Allocation struct {
	ID          string    `json:"id"`
	Amount      float64   `json:"amount"`
	AllocatedAt time.Time `json:"allocatedAt"`
	AllocatedBy string    `json:"allocatedBy"`
	Note        string    `json:"note,omitempty"`
}

// Expense is one building expenditure with its fund allocations.
type Expense struct {
	ID          string       `json:"id"`
	Amount      float64      `json:"amount"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Date        time.Time    `json:"date"`
	Vendor      string       `json:"vendor,omitempty"`
	Notes       string       `json:"notes,omitempty"`
	ReceiptURL  string       `json:"receiptUrl,omitempty"`
	CreatedBy   string       `json:"createdBy"`
	Allocations []Allocation `json:"allocations"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// AllocatedTotal sums all allocations applied to the expense.
func (e *Expense) AllocatedTotal() float64 {
	var total float64
	for _, a := range e.Allocations {
		total += a.Amount
	}
	return total
}

// RemainingAmount is the unfunded remainder, floored at zero.
func (e *Expense) RemainingAmount() float64 {
	rem := e.Amount - e.AllocatedTotal()
	if rem < 0 {
		return 0
	}
	return rem
}

// ComputedStatus derives the settlement status from the allocations.
func (e *Expense) ComputedStatus() string {
	allocated := e.AllocatedTotal()
	switch {
	case allocated <= 0:
		return ExpenseUnpaid
	case allocated < e.Amount:
		return ExpensePartiallyPaid
	default:
		return ExpensePaid
	}
}
