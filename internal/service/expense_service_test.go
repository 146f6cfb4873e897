package service

import (
	"strings"
	"testing"
	"time"

	"github.com/salahe03/residex/internal/apperr"
	"github.com/salahe03/residex/internal/commands"
	"github.com/salahe03/residex/internal/models"
)

func newTestExpenseService(expenses *fakeExpenseStore, payments *fakePaymentStore) (*ExpenseService, *stubPublisher) {
	pub := &stubPublisher{}
	svc := NewExpenseService(expenses, payments, pub)
	svc.now = func() time.Time { return testNow }
	return svc, pub
}

func paidPayment(id string, amount float64) *models.Payment {
	p := pendingCharge(id, "usr-aaa1111111", testNow.AddDate(0, -1, 0))
	p.Status = models.PaymentPaid
	p.Amount = amount
	return p
}

func expenseFixture(id string, amount float64, category string, date time.Time) *models.Expense {
	return &models.Expense{
		ID:          id,
		Amount:      amount,
		Description: "Fixture " + id,
		Category:    category,
		Date:        date,
		CreatedBy:   "usr-admin00001",
		Allocations: []models.Allocation{},
	}
}

func TestCreateExpenseValidation(t *testing.T) {
	svc, _ := newTestExpenseService(newFakeExpenseStore(), newFakePaymentStore())

	tests := []struct {
		name string
		cmd  commands.CreateExpenseCommand
	}{
		{
			name: "missing amount",
			cmd:  commands.CreateExpenseCommand{Description: "x", Category: "cleaning", Date: testNow},
		},
		{
			name: "unknown category",
			cmd:  commands.CreateExpenseCommand{Amount: 100, Description: "x", Category: "gambling", Date: testNow},
		},
		{
			name: "missing date",
			cmd:  commands.CreateExpenseCommand{Amount: 100, Description: "x", Category: "cleaning"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.Create(tt.cmd); !apperr.IsKind(err, apperr.KindValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestCreateExpense(t *testing.T) {
	svc, pub := newTestExpenseService(newFakeExpenseStore(), newFakePaymentStore())

	view, err := svc.Create(commands.CreateExpenseCommand{
		Amount:      350,
		Description: "Elevator maintenance contract",
		Category:    "maintenance",
		Date:        testNow,
		Vendor:      "LiftCo",
		CreatedBy:   "usr-admin00001",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if view.ComputedStatus != models.ExpenseUnpaid {
		t.Errorf("new expense status = %q, want unpaid", view.ComputedStatus)
	}
	if view.RemainingAmount != 350 {
		t.Errorf("remaining = %v, want 350", view.RemainingAmount)
	}
	if len(pub.published) != 1 {
		t.Errorf("expected 1 published event, got %d", len(pub.published))
	}
}

func TestAllocateWithinCaps(t *testing.T) {
	// fund: 1000 collected, expense needs 400
	payments := newFakePaymentStore(paidPayment("pay-000000001", 1000))
	expenses := newFakeExpenseStore(expenseFixture("exp-000000001", 400, "repairs", testNow))
	svc, _ := newTestExpenseService(expenses, payments)

	result, err := svc.Allocate(commands.AllocateFundsCommand{
		ExpenseID: "exp-000000001", Amount: 300, AdminID: "usr-admin00001",
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if result.Expense.ComputedStatus != models.ExpensePartiallyPaid {
		t.Errorf("status after partial allocation = %q, want partially_paid", result.Expense.ComputedStatus)
	}
	if result.Expense.RemainingAmount != 100 {
		t.Errorf("remaining = %v, want 100", result.Expense.RemainingAmount)
	}
	if result.Overview.FundBalance != 700 {
		t.Errorf("fund balance = %v, want 700", result.Overview.FundBalance)
	}

	// remaining is 100, so 200 exceeds the cap
	_, err = svc.Allocate(commands.AllocateFundsCommand{
		ExpenseID: "exp-000000001", Amount: 200, AdminID: "usr-admin00001",
	})
	if !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !strings.Contains(err.Error(), "100.00") {
		t.Errorf("error should cite the computed maximum, got %q", err.Error())
	}

	// exactly the remainder settles the expense
	result, err = svc.Allocate(commands.AllocateFundsCommand{
		ExpenseID: "exp-000000001", Amount: 100, AdminID: "usr-admin00001",
	})
	if err != nil {
		t.Fatalf("Allocate remainder: %v", err)
	}
	if result.Expense.ComputedStatus != models.ExpensePaid {
		t.Errorf("status after full allocation = %q, want paid", result.Expense.ComputedStatus)
	}
	if result.Overview.FundBalance != 600 {
		t.Errorf("fund balance = %v, want 600", result.Overview.FundBalance)
	}
}

func TestAllocateLimitedByFundBalance(t *testing.T) {
	// only 50 collected against a 400 expense; the fund is the binding cap
	payments := newFakePaymentStore(paidPayment("pay-000000001", 50))
	expenses := newFakeExpenseStore(expenseFixture("exp-000000001", 400, "repairs", testNow))
	svc, _ := newTestExpenseService(expenses, payments)

	_, err := svc.Allocate(commands.AllocateFundsCommand{
		ExpenseID: "exp-000000001", Amount: 60, AdminID: "usr-admin00001",
	})
	if !apperr.IsKind(err, apperr.KindInsufficientFunds) {
		t.Fatalf("expected insufficient funds, got %v", err)
	}
	if !strings.Contains(err.Error(), "50.00") {
		t.Errorf("error should cite the fund balance as the max, got %q", err.Error())
	}

	if _, err := svc.Allocate(commands.AllocateFundsCommand{
		ExpenseID: "exp-000000001", Amount: 50, AdminID: "usr-admin00001",
	}); err != nil {
		t.Fatalf("allocating exactly the fund balance should pass: %v", err)
	}
}

func TestAllocateRejectsNonPositiveAmounts(t *testing.T) {
	payments := newFakePaymentStore(paidPayment("pay-000000001", 500))
	expenses := newFakeExpenseStore(expenseFixture("exp-000000001", 400, "repairs", testNow))
	svc, _ := newTestExpenseService(expenses, payments)

	for _, amount := range []float64{0, -10} {
		if _, err := svc.Allocate(commands.AllocateFundsCommand{
			ExpenseID: "exp-000000001", Amount: amount, AdminID: "usr-admin00001",
		}); !apperr.IsKind(err, apperr.KindInsufficientFunds) {
			t.Errorf("amount %v: expected insufficient funds, got %v", amount, err)
		}
	}
}

func TestRemoveAllocationReturnsFunds(t *testing.T) {
	payments := newFakePaymentStore(paidPayment("pay-000000001", 1000))
	expenses := newFakeExpenseStore(expenseFixture("exp-000000001", 400, "repairs", testNow))
	svc, _ := newTestExpenseService(expenses, payments)

	allocated, err := svc.Allocate(commands.AllocateFundsCommand{
		ExpenseID: "exp-000000001", Amount: 400, AdminID: "usr-admin00001",
	})
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	allocationID := allocated.Expense.Allocations[0].ID

	result, err := svc.RemoveAllocation(commands.RemoveAllocationCommand{
		ExpenseID: "exp-000000001", AllocationID: allocationID,
	})
	if err != nil {
		t.Fatalf("RemoveAllocation: %v", err)
	}
	if result.Expense.ComputedStatus != models.ExpenseUnpaid {
		t.Errorf("status after removal = %q, want unpaid", result.Expense.ComputedStatus)
	}
	if result.Overview.FundBalance != 1000 {
		t.Errorf("fund balance after removal = %v, want 1000", result.Overview.FundBalance)
	}

	if _, err := svc.RemoveAllocation(commands.RemoveAllocationCommand{
		ExpenseID: "exp-000000001", AllocationID: "alc-missing000",
	}); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Errorf("expected not found for unknown allocation, got %v", err)
	}
}

func TestOverview(t *testing.T) {
	payments := newFakePaymentStore(
		paidPayment("pay-000000001", 600),
		paidPayment("pay-000000002", 400),
		pendingCharge("pay-000000003", "usr-aaa1111111", testNow), // not paid, excluded
	)
	e := expenseFixture("exp-000000001", 500, "electricity", testNow)
	e.Allocations = []models.Allocation{{ID: "alc-000000001", Amount: 200, AllocatedAt: testNow, AllocatedBy: "usr-admin00001"}}
	expenses := newFakeExpenseStore(e, expenseFixture("exp-000000002", 300, "water", testNow))
	svc, _ := newTestExpenseService(expenses, payments)

	overview, err := svc.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if overview.PaidRevenue != 1000 {
		t.Errorf("paid revenue = %v, want 1000", overview.PaidRevenue)
	}
	if overview.TotalExpenses != 800 {
		t.Errorf("total expenses = %v, want 800", overview.TotalExpenses)
	}
	if overview.AllocatedToExpenses != 200 {
		t.Errorf("allocated = %v, want 200", overview.AllocatedToExpenses)
	}
	if overview.FundBalance != 800 {
		t.Errorf("fund balance = %v, want 800", overview.FundBalance)
	}
	if overview.OutstandingExpenses != 600 {
		t.Errorf("outstanding = %v, want 600", overview.OutstandingExpenses)
	}
}

func TestExpenseStats(t *testing.T) {
	expenses := newFakeExpenseStore(
		expenseFixture("exp-000000001", 100, "cleaning", time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)),
		expenseFixture("exp-000000002", 200, "cleaning", time.Date(2026, time.March, 5, 0, 0, 0, 0, time.UTC)),
		expenseFixture("exp-000000003", 300, "repairs", time.Date(2026, time.March, 20, 0, 0, 0, 0, time.UTC)),
		expenseFixture("exp-000000004", 999, "repairs", time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)),
	)
	svc, _ := newTestExpenseService(expenses, newFakePaymentStore())

	stats, err := svc.Stats(commands.ExpenseStatsQuery{Year: 2026})
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Year != 2026 {
		t.Errorf("year = %d, want 2026", stats.Year)
	}
	if stats.MonthlyTotals[0] != 100 {
		t.Errorf("January total = %v, want 100", stats.MonthlyTotals[0])
	}
	if stats.MonthlyTotals[2] != 500 {
		t.Errorf("March total = %v, want 500", stats.MonthlyTotals[2])
	}
	if stats.GrandTotal != 600 {
		t.Errorf("grand total = %v, want 600; prior-year rows must be excluded", stats.GrandTotal)
	}
	if stats.CategoryTotals["cleaning"] != 300 || stats.CategoryTotals["repairs"] != 300 {
		t.Errorf("category totals = %v", stats.CategoryTotals)
	}
	// testNow is March 2026, so the current-month figure is the March bucket
	if stats.CurrentMonthTotal != 500 {
		t.Errorf("current month total = %v, want 500", stats.CurrentMonthTotal)
	}

	past, err := svc.Stats(commands.ExpenseStatsQuery{Year: 2025})
	if err != nil {
		t.Fatalf("Stats 2025: %v", err)
	}
	if past.CurrentMonthTotal != 0 {
		t.Errorf("current month total for a past year = %v, want 0", past.CurrentMonthTotal)
	}
	if past.GrandTotal != 999 {
		t.Errorf("2025 grand total = %v, want 999", past.GrandTotal)
	}
}

func TestUpdateExpense(t *testing.T) {
	expenses := newFakeExpenseStore(expenseFixture("exp-000000001", 400, "repairs", testNow))
	svc, _ := newTestExpenseService(expenses, newFakePaymentStore())

	view, err := svc.Update(commands.UpdateExpenseCommand{
		ExpenseID:   "exp-000000001",
		Amount:      450,
		Description: "Roof repair, revised quote",
		Category:    "repairs",
		Date:        testNow,
		Vendor:      "RoofCo",
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if view.Amount != 450 || view.Vendor != "RoofCo" {
		t.Errorf("update not applied: %+v", view)
	}

	if _, err := svc.Update(commands.UpdateExpenseCommand{
		ExpenseID: "exp-000000001", Amount: 450,
		Description: "x", Category: "gambling", Date: testNow,
	}); !apperr.IsKind(err, apperr.KindValidation) {
		t.Errorf("expected validation error for bad category, got %v", err)
	}
}
