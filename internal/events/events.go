package events

import "time"

// Event types
const (
	UserRegistered = "user.registered"
	UserApproved   = "user.approved"
	UserRejected   = "user.rejected"
	UserDeleted    = "user.deleted"

	ChargesCreated   = "charges.created"
	PaymentSubmitted = "payment.submitted"
	PaymentConfirmed = "payment.confirmed"
	PaymentRejected  = "payment.rejected"

	ExpenseCreated    = "expense.created"
	FundsAllocated    = "funds.allocated"
	AllocationRemoved = "allocation.removed"
)

// Stream names
const (
	UserEventsStream    = "user.events"
	PaymentEventsStream = "payment.events"
	ExpenseEventsStream = "expense.events"
)

// Base event structure
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// User events
type UserRegisteredEvent struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Role   string `json:"role"`
}

type UserApprovedEvent struct {
	UserID  string `json:"userId"`
	AdminID string `json:"adminId"`
}

type UserRejectedEvent struct {
	UserID string `json:"userId"`
}

type UserDeletedEvent struct {
	UserID string `json:"userId"`
}

// Payment events
type ChargesCreatedEvent struct {
	Count  int     `json:"count"`
	Amount float64 `json:"amount"`
	Period string  `json:"period"`
}

type PaymentSubmittedEvent struct {
	PaymentID  string `json:"paymentId"`
	ResidentID string `json:"residentId"`
	Method     string `json:"method"`
}

type PaymentConfirmedEvent struct {
	PaymentID string  `json:"paymentId"`
	AdminID   string  `json:"adminId"`
	Amount    float64 `json:"amount"`
}

type PaymentRejectedEvent struct {
	PaymentID string `json:"paymentId"`
}

// Expense events
type ExpenseCreatedEvent struct {
	ExpenseID string  `json:"expenseId"`
	Category  string  `json:"category"`
	Amount    float64 `json:"amount"`
}

type FundsAllocatedEvent struct {
	ExpenseID    string  `json:"expenseId"`
	AllocationID string  `json:"allocationId"`
	Amount       float64 `json:"amount"`
	AdminID      string  `json:"adminId"`
}

type AllocationRemovedEvent struct {
	ExpenseID    string `json:"expenseId"`
	AllocationID string `json:"allocationId"`
}
