package models

import "time"

// PaymentView is the read projection of a payment. Status carries the
// derived value: a pending or rejected charge past its due date is
// presented as "overdue" even though that is never stored.
type PaymentView struct {
	Payment
	Status string `json:"status"`
}

// NewPaymentView builds the API projection for one payment as of now.
func NewPaymentView(p *Payment, now time.Time) *PaymentView {
	return &PaymentView{Payment: *p, Status: p.DisplayStatus(now)}
}

// NewPaymentViews builds projections for a list, preserving order.
func NewPaymentViews(payments []*Payment, now time.Time) []*PaymentView {
	views := make([]*PaymentView, 0, len(payments))
	for _, p := range payments {
		views = append(views, NewPaymentView(p, now))
	}
	return views
}

// ExpenseView is the read projection of an expense with its derived
// allocation fields materialised for the API response.
type ExpenseView struct {
	Expense
	AllocatedTotal  float64 `json:"allocatedTotal"`
	RemainingAmount float64 `json:"remainingAmount"`
	ComputedStatus  string  `json:"computedStatus"`
}

// NewExpenseView builds the API projection for one expense.
func NewExpenseView(e *Expense) *ExpenseView {
	return &ExpenseView{
		Expense:         *e,
		AllocatedTotal:  e.AllocatedTotal(),
		RemainingAmount: e.RemainingAmount(),
		ComputedStatus:  e.ComputedStatus(),
	}
}

// NewExpenseViews builds projections for a list, preserving order.
func NewExpenseViews(expenses []*Expense) []*ExpenseView {
	views := make([]*ExpenseView, 0, len(expenses))
	for _, e := range expenses {
		views = append(views, NewExpenseView(e))
	}
	return views
}

// UserStats aggregates the account population.
type UserStats struct {
	TotalUsers           int     `json:"totalUsers"`
	ActiveUsers          int     `json:"activeUsers"`
	PendingUsers         int     `json:"pendingUsers"`
	TotalAdmins          int     `json:"totalAdmins"`
	TotalTenants         int     `json:"totalTenants"`
	TotalOwners          int     `json:"totalOwners"`
	TotalMonthlyCharges  float64 `json:"totalMonthlyCharges"`
	AverageMonthlyCharge float64 `json:"averageMonthlyCharge"`
}

// PaymentTotals buckets charge amounts by display status.
type PaymentTotals struct {
	Count         int     `json:"count"`
	TotalAmount   float64 `json:"totalAmount"`
	PaidAmount    float64 `json:"paidAmount"`
	PendingAmount float64 `json:"pendingAmount"`
	OverdueAmount float64 `json:"overdueAmount"`
}

// PaymentStats is the /payments/stats payload.
type PaymentStats struct {
	Total          PaymentTotals `json:"total"`
	AveragePayment float64       `json:"averagePayment"`
}

// ExpenseStats is the /expenses/stats payload: one bucket per calendar
// month of the requested year, plus per-category sums.
type ExpenseStats struct {
	Year              int                `json:"year"`
	MonthlyTotals     [12]float64        `json:"monthlyTotals"`
	CategoryTotals    map[string]float64 `json:"categoryTotals"`
	GrandTotal        float64            `json:"grandTotal"`
	CurrentMonthTotal float64            `json:"currentMonthTotal"`
}

// FundOverview is the /expenses/overview payload. It is recomputed from
// source records on every call, never cached.
type FundOverview struct {
	PaidRevenue         float64 `json:"paidRevenue"`
	TotalExpenses       float64 `json:"totalExpenses"`
	AllocatedToExpenses float64 `json:"allocatedToExpenses"`
	FundBalance         float64 `json:"fundBalance"`
	OutstandingExpenses float64 `json:"outstandingExpenses"`
}
